package models

import "gorm.io/gorm"

// Channel values for nurture steps and tasks
const (
	ChannelSMS      = "sms"
	ChannelWhatsApp = "whatsapp"
	ChannelEmail    = "email"
)

// NurtureSequence represents a named multi-step follow-up scenario.
// The (organization_id, name) pair is unique so the default-sequence
// bootstrapper can find-or-create without producing duplicates.
type NurtureSequence struct {
	gorm.Model
	OrganizationID uint `gorm:"not null;index;uniqueIndex:idx_nurture_sequences_org_name" json:"organization_id"`

	Name        string `gorm:"not null;uniqueIndex:idx_nurture_sequences_org_name" json:"name"`
	Description string `json:"description"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	// Relations
	Steps []NurtureStep `gorm:"foreignKey:SequenceID" json:"steps,omitempty"`
}

// NurtureStep represents one planned message within a sequence.
// DelayInHours is relative to the previous step, not to enrollment time.
type NurtureStep struct {
	gorm.Model
	SequenceID uint `gorm:"not null;index" json:"sequence_id"`

	StepOrder    int    `gorm:"not null" json:"step_order"` // 1-based
	Channel      string `gorm:"not null" json:"channel"`    // sms, whatsapp, email
	Type         string `gorm:"not null" json:"type"`       // mirrors channel today
	DelayInHours int    `gorm:"not null;default:0" json:"delay_in_hours"`
	Content      string `gorm:"type:text;not null" json:"content"`
	Subject      string `json:"subject"` // email only
}
