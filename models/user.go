package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a platform account belonging to an organization.
// Registration and login live in a separate identity service; this row
// only carries what the JWT middleware needs to authorize requests.
type User struct {
	gorm.Model
	OrganizationID uint `gorm:"not null;index" json:"organization_id"`

	Email string `gorm:"not null;index" json:"email"`
	Name  string `json:"name"`
	Role  string `gorm:"default:'member'" json:"role"` // admin, member

	// Status
	IsActive     bool `gorm:"default:true" json:"is_active"`
	TokenVersion int  `gorm:"default:0" json:"-"`

	LastLoginAt *time.Time `json:"last_login_at"`

	// Relations
	Organization Organization `json:"-"`
}
