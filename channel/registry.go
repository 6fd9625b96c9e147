package channel

import (
	"context"
	"fmt"

	"nurtura/models"

	"gorm.io/gorm"
)

// Registry resolves adapters from the channel_configs table, keyed on
// (organization, channel).
type Registry struct {
	DB *gorm.DB
}

func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{DB: db}
}

func (r *Registry) Resolve(ctx context.Context, organizationID uint, ch string) (Adapter, error) {
	var cfg models.ChannelConfig
	err := r.DB.WithContext(ctx).
		Where("organization_id = ? AND channel = ? AND is_active = ?", organizationID, ch, true).
		First(&cfg).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotConfigured
		}
		return nil, fmt.Errorf("failed to load channel config: %w", err)
	}

	switch ch {
	case models.ChannelSMS:
		return NewSMSAdapter(cfg.GatewayURL, cfg.APIKey, cfg.FromNumber), nil
	case models.ChannelWhatsApp:
		return NewWhatsAppAdapter(cfg.GatewayURL, cfg.APIKey, cfg.FromNumber), nil
	case models.ChannelEmail:
		return NewEmailAdapter(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.FromEmail, cfg.FromName), nil
	default:
		return nil, fmt.Errorf("unknown channel %q", ch)
	}
}
