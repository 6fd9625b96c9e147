package models

import "gorm.io/gorm"

// Organization represents a training organization using the platform
type Organization struct {
	gorm.Model
	Name  string `gorm:"not null" json:"name"`
	Siret string `json:"siret"`

	// Status
	IsActive bool `gorm:"default:true" json:"is_active"`

	// Relations
	Users          []User          `gorm:"foreignKey:OrganizationID" json:"users,omitempty"`
	Leads          []Lead          `gorm:"foreignKey:OrganizationID" json:"leads,omitempty"`
	ChannelConfigs []ChannelConfig `gorm:"foreignKey:OrganizationID" json:"channel_configs,omitempty"`
}

// ChannelConfig holds per-organization transport settings for one channel
type ChannelConfig struct {
	gorm.Model
	OrganizationID uint   `gorm:"not null;index;uniqueIndex:idx_channel_configs_org_channel" json:"organization_id"`
	Channel        string `gorm:"not null;uniqueIndex:idx_channel_configs_org_channel" json:"channel"` // sms, whatsapp, email

	// SMS / WhatsApp gateway settings
	GatewayURL string `json:"gateway_url"`
	APIKey     string `json:"-"`
	FromNumber string `json:"from_number"`

	// SMTP settings (email channel only)
	SMTPHost     string `json:"smtp_host"`
	SMTPPort     int    `gorm:"default:587" json:"smtp_port"`
	SMTPUsername string `json:"smtp_username"`
	SMTPPassword string `json:"-"`
	FromEmail    string `json:"from_email"`
	FromName     string `json:"from_name"`

	IsActive bool `gorm:"default:true" json:"is_active"`
}
