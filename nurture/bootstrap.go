package nurture

import (
	"context"
	"fmt"

	"nurtura/models"

	"gorm.io/gorm"
)

// defaultSteps is the canonical 3-step no-answer follow-up: a quick
// WhatsApp nudge one hour after enrollment, an SMS reminder the next day
// and a final WhatsApp attempt the day after that.
func defaultSteps() []models.NurtureStep {
	return []models.NurtureStep{
		{
			StepOrder:    1,
			Channel:      models.ChannelWhatsApp,
			Type:         models.ChannelWhatsApp,
			DelayInHours: 1,
			Content:      "Hi {{firstName}}, we tried to reach you about your training project. Is there a good time to talk?",
		},
		{
			StepOrder:    2,
			Channel:      models.ChannelSMS,
			Type:         models.ChannelSMS,
			DelayInHours: 23,
			Content:      "Hi {{firstName}}, just a reminder: your training advisor is trying to reach you. Call us back when you can.",
		},
		{
			StepOrder:    3,
			Channel:      models.ChannelWhatsApp,
			Type:         models.ChannelWhatsApp,
			DelayInHours: 24,
			Content:      "{{firstName}}, last call from us about your training application. Reply here and we will take it from there.",
		},
	}
}

// EnsureDefaultSequence returns the organization's sequence with the given
// name, creating it with the canonical step list if it does not exist yet.
// The unique index on (organization_id, name) makes concurrent invocations
// safe: the loser of the race re-reads the winner's row.
func (s *Service) EnsureDefaultSequence(ctx context.Context, organizationID uint, name string) (*models.NurtureSequence, error) {
	var existing models.NurtureSequence
	err := s.DB.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order ASC")
		}).
		Where("organization_id = ? AND name = ? AND is_active = ?", organizationID, name, true).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to look up default sequence: %w", err)
	}

	sequence := models.NurtureSequence{
		OrganizationID: organizationID,
		Name:           name,
		Description:    "Automatic follow-up for leads that could not be reached",
		IsActive:       true,
		Steps:          defaultSteps(),
	}

	if err := s.DB.WithContext(ctx).Create(&sequence).Error; err != nil {
		// Likely lost a concurrent create on the (org, name) unique index
		var winner models.NurtureSequence
		lookupErr := s.DB.WithContext(ctx).
			Preload("Steps", func(db *gorm.DB) *gorm.DB {
				return db.Order("step_order ASC")
			}).
			Where("organization_id = ? AND name = ?", organizationID, name).
			First(&winner).Error
		if lookupErr == nil {
			return &winner, nil
		}
		return nil, fmt.Errorf("failed to create default sequence: %w", err)
	}

	s.Logger.WithField("organization_id", organizationID).Info("Created default nurture sequence")
	return &sequence, nil
}
