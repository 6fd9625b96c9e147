package nurture

import (
	"context"
	"testing"

	"nurtura/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDefaultSequence(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(db, nil)
	ctx := context.Background()

	org := createTestOrg(t, db)

	t.Run("Success - Creates the canonical follow-up on first use", func(t *testing.T) {
		sequence, err := service.EnsureDefaultSequence(ctx, org.ID, "No-answer follow-up")
		require.NoError(t, err)
		assert.True(t, sequence.IsActive)
		require.Len(t, sequence.Steps, 3)

		assert.Equal(t, models.ChannelWhatsApp, sequence.Steps[0].Channel)
		assert.Equal(t, 1, sequence.Steps[0].DelayInHours)
		assert.Equal(t, models.ChannelSMS, sequence.Steps[1].Channel)
		assert.Equal(t, 23, sequence.Steps[1].DelayInHours)
		assert.Equal(t, models.ChannelWhatsApp, sequence.Steps[2].Channel)
		assert.Equal(t, 24, sequence.Steps[2].DelayInHours)

		for i, step := range sequence.Steps {
			assert.Equal(t, i+1, step.StepOrder)
			assert.NotEmpty(t, step.Content)
		}
	})

	t.Run("Success - Second call returns the same sequence", func(t *testing.T) {
		first, err := service.EnsureDefaultSequence(ctx, org.ID, "Idempotence check")
		require.NoError(t, err)

		second, err := service.EnsureDefaultSequence(ctx, org.ID, "Idempotence check")
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)

		var count int64
		require.NoError(t, db.Model(&models.NurtureSequence{}).
			Where("organization_id = ? AND name = ?", org.ID, "Idempotence check").
			Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Success - Same name in another organization is independent", func(t *testing.T) {
		otherOrg := createTestOrg(t, db)

		mine, err := service.EnsureDefaultSequence(ctx, org.ID, "Shared name")
		require.NoError(t, err)
		theirs, err := service.EnsureDefaultSequence(ctx, otherOrg.ID, "Shared name")
		require.NoError(t, err)

		assert.NotEqual(t, mine.ID, theirs.ID)
	})

	t.Run("Success - Default sequence is enrollable end to end", func(t *testing.T) {
		sequence, err := service.EnsureDefaultSequence(ctx, org.ID, "Enrollable default")
		require.NoError(t, err)

		lead := createTestLead(t, db, org.ID, "bootstrap")
		enrollment, err := service.Enroll(ctx, lead.ID, sequence.ID, org.ID)
		require.NoError(t, err)

		var tasks int64
		require.NoError(t, db.Model(&models.NurtureTask{}).
			Where("enrollment_id = ?", enrollment.ID).
			Count(&tasks).Error)
		assert.Equal(t, int64(3), tasks)
	})
}
