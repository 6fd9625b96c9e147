package models

import (
	"time"

	"gorm.io/gorm"
)

// Lead represents a prospective trainee being nurtured
type Lead struct {
	gorm.Model
	OrganizationID uint `gorm:"not null;index" json:"organization_id"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `gorm:"index" json:"email"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`

	// Pipeline status
	Status string `gorm:"default:'new'" json:"status"` // new, contacted, qualified, won, lost

	// Contact preferences
	IsUnsubscribed bool `gorm:"default:false" json:"is_unsubscribed"`

	// Metadata
	Source      string     `json:"source"` // form, import, api
	LastContact *time.Time `json:"last_contact"`

	// Relations
	Activities  []LeadActivity      `gorm:"foreignKey:LeadID" json:"activities,omitempty"`
	Enrollments []NurtureEnrollment `gorm:"foreignKey:LeadID" json:"enrollments,omitempty"`
}

// LeadActivity is the append-only audit trail of outbound messages and
// other touch points for a lead
type LeadActivity struct {
	gorm.Model
	LeadID         uint  `gorm:"not null;index" json:"lead_id"`
	OrganizationID uint  `gorm:"not null;index" json:"organization_id"`
	TaskID         *uint `gorm:"index" json:"task_id,omitempty"`

	ActivityType string    `gorm:"not null" json:"activity_type"` // message_sent, message_failed, message_simulated
	Channel      string    `json:"channel"`
	Content      string    `gorm:"type:text" json:"content"`
	MessageID    string    `json:"message_id"`
	ActivityAt   time.Time `gorm:"not null" json:"activity_at"`
	Details      string    `gorm:"type:text" json:"details"`

	// Relations
	Lead Lead `json:"-"`
}
