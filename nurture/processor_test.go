package nurture

import (
	"context"
	"errors"
	"testing"
	"time"

	"nurtura/channel"
	"nurtura/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func makeDueTask(t *testing.T, db *gorm.DB, enrollment *models.NurtureEnrollment, ch string, scheduledAt time.Time) *models.NurtureTask {
	task := models.NurtureTask{
		LeadID:         enrollment.LeadID,
		OrganizationID: enrollment.OrganizationID,
		EnrollmentID:   &enrollment.ID,
		Channel:        ch,
		Type:           ch,
		Content:        "Hello there",
		ScheduledAt:    scheduledAt,
		Status:         models.TaskStatusPending,
	}
	require.NoError(t, db.Create(&task).Error)
	return &task
}

func enrollLead(t *testing.T, db *gorm.DB, service *Service, orgID uint, firstName, sequenceName string) (*models.Lead, *models.NurtureEnrollment) {
	lead := createTestLead(t, db, orgID, firstName)
	sequence := createTestSequence(t, db, orgID, sequenceName, []models.NurtureStep{
		{StepOrder: 1, Channel: models.ChannelSMS, Type: models.ChannelSMS, DelayInHours: 0, Content: "Hi {{firstName}}"},
	})
	enrollment, err := service.Enroll(context.Background(), lead.ID, sequence.ID, orgID)
	require.NoError(t, err)
	return lead, enrollment
}

func TestProcessDueTasks(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Dispatches due tasks and marks them executed", func(t *testing.T) {
		db := setupTestDB(t)
		sms := &fakeAdapter{}
		service := newTestService(db, &fakeResolver{adapters: map[string]channel.Adapter{
			models.ChannelSMS: sms,
		}})

		org := createTestOrg(t, db)
		lead, enrollment := enrollLead(t, db, service, org.ID, "jean", "Due sequence")

		count, err := service.ProcessDueTasks(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		require.Equal(t, 1, sms.sentCount())
		assert.Equal(t, lead.Phone, sms.sent[0].To)
		assert.Equal(t, "Hi jean", sms.sent[0].Body)

		var task models.NurtureTask
		require.NoError(t, db.Where("enrollment_id = ?", enrollment.ID).First(&task).Error)
		assert.Equal(t, models.TaskStatusExecuted, task.Status)
		assert.NotNil(t, task.ExecutedAt)

		// An audit row is written for the send
		var activity models.LeadActivity
		require.NoError(t, db.Where("task_id = ?", task.ID).First(&activity).Error)
		assert.Equal(t, ActivityMessageSent, activity.ActivityType)
		assert.Equal(t, models.ChannelSMS, activity.Channel)
		assert.NotEmpty(t, activity.MessageID)

		var updatedLead models.Lead
		require.NoError(t, db.First(&updatedLead, lead.ID).Error)
		assert.NotNil(t, updatedLead.LastContact)
	})

	t.Run("Success - Future tasks are left alone", func(t *testing.T) {
		db := setupTestDB(t)
		sms := &fakeAdapter{}
		service := newTestService(db, &fakeResolver{adapters: map[string]channel.Adapter{
			models.ChannelSMS: sms,
		}})

		org := createTestOrg(t, db)
		lead := createTestLead(t, db, org.ID, "future")
		enrollment := models.NurtureEnrollment{
			LeadID:         lead.ID,
			SequenceID:     1,
			OrganizationID: org.ID,
			Status:         models.EnrollmentStatusActive,
		}
		require.NoError(t, db.Create(&enrollment).Error)
		makeDueTask(t, db, &enrollment, models.ChannelSMS, time.Now().Add(2*time.Hour))

		count, err := service.ProcessDueTasks(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
		assert.Equal(t, 0, sms.sentCount())
	})

	t.Run("Success - Missing adapter is simulated, not failed", func(t *testing.T) {
		db := setupTestDB(t)
		service := newTestService(db, nil) // resolver with no adapters

		org := createTestOrg(t, db)
		_, enrollment := enrollLead(t, db, service, org.ID, "gap", "Gap sequence")

		count, err := service.ProcessDueTasks(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		var task models.NurtureTask
		require.NoError(t, db.Where("enrollment_id = ?", enrollment.ID).First(&task).Error)
		assert.Equal(t, models.TaskStatusExecuted, task.Status)

		var activity models.LeadActivity
		require.NoError(t, db.Where("task_id = ?", task.ID).First(&activity).Error)
		assert.Equal(t, ActivityMessageSimulated, activity.ActivityType)
	})

	t.Run("Failure - Adapter error marks the task failed without retry", func(t *testing.T) {
		db := setupTestDB(t)
		sms := &fakeAdapter{err: errors.New("gateway unreachable")}
		service := newTestService(db, &fakeResolver{adapters: map[string]channel.Adapter{
			models.ChannelSMS: sms,
		}})

		org := createTestOrg(t, db)
		_, enrollment := enrollLead(t, db, service, org.ID, "failing", "Failing sequence")

		count, err := service.ProcessDueTasks(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		var task models.NurtureTask
		require.NoError(t, db.Where("enrollment_id = ?", enrollment.ID).First(&task).Error)
		assert.Equal(t, models.TaskStatusFailed, task.Status)
		assert.Contains(t, task.LastError, "gateway unreachable")

		var activity models.LeadActivity
		require.NoError(t, db.Where("task_id = ?", task.ID).First(&activity).Error)
		assert.Equal(t, ActivityMessageFailed, activity.ActivityType)

		// A second pass must not pick the failed task up again
		count, err = service.ProcessDueTasks(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("Failure - One failing task does not abort the batch", func(t *testing.T) {
		db := setupTestDB(t)
		sms := &fakeAdapter{err: errors.New("boom")}
		whatsapp := &fakeAdapter{}
		service := newTestService(db, &fakeResolver{adapters: map[string]channel.Adapter{
			models.ChannelSMS:      sms,
			models.ChannelWhatsApp: whatsapp,
		}})

		org := createTestOrg(t, db)
		lead := createTestLead(t, db, org.ID, "mixed")
		enrollment := models.NurtureEnrollment{
			LeadID:         lead.ID,
			SequenceID:     1,
			OrganizationID: org.ID,
			Status:         models.EnrollmentStatusActive,
		}
		require.NoError(t, db.Create(&enrollment).Error)
		failing := makeDueTask(t, db, &enrollment, models.ChannelSMS, time.Now().Add(-2*time.Hour))
		succeeding := makeDueTask(t, db, &enrollment, models.ChannelWhatsApp, time.Now().Add(-1*time.Hour))

		count, err := service.ProcessDueTasks(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.Equal(t, 1, whatsapp.sentCount())

		var failed, executed models.NurtureTask
		require.NoError(t, db.First(&failed, failing.ID).Error)
		require.NoError(t, db.First(&executed, succeeding.ID).Error)
		assert.Equal(t, models.TaskStatusFailed, failed.Status)
		assert.Equal(t, models.TaskStatusExecuted, executed.Status)
	})

	t.Run("Success - Enrollment completes when the last task finishes", func(t *testing.T) {
		db := setupTestDB(t)
		sms := &fakeAdapter{}
		service := newTestService(db, &fakeResolver{adapters: map[string]channel.Adapter{
			models.ChannelSMS: sms,
		}})

		org := createTestOrg(t, db)
		_, enrollment := enrollLead(t, db, service, org.ID, "finisher", "Finishing sequence")

		count, err := service.ProcessDueTasks(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		var completed models.NurtureEnrollment
		require.NoError(t, db.First(&completed, enrollment.ID).Error)
		assert.Equal(t, models.EnrollmentStatusCompleted, completed.Status)
		assert.NotNil(t, completed.CompletedAt)

		// Running another pass over the already-terminal tasks is a no-op
		count, err = service.ProcessDueTasks(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("Success - Failed tasks also count toward completion", func(t *testing.T) {
		db := setupTestDB(t)
		sms := &fakeAdapter{err: errors.New("down")}
		service := newTestService(db, &fakeResolver{adapters: map[string]channel.Adapter{
			models.ChannelSMS: sms,
		}})

		org := createTestOrg(t, db)
		_, enrollment := enrollLead(t, db, service, org.ID, "unlucky", "Unlucky sequence")

		_, err := service.ProcessDueTasks(ctx)
		require.NoError(t, err)

		var completed models.NurtureEnrollment
		require.NoError(t, db.First(&completed, enrollment.ID).Error)
		assert.Equal(t, models.EnrollmentStatusCompleted, completed.Status)
	})

	t.Run("Success - Enrollment stays active while tasks remain", func(t *testing.T) {
		db := setupTestDB(t)
		sms := &fakeAdapter{}
		service := newTestService(db, &fakeResolver{adapters: map[string]channel.Adapter{
			models.ChannelSMS: sms,
		}})

		org := createTestOrg(t, db)
		lead := createTestLead(t, db, org.ID, "patient")
		enrollment := models.NurtureEnrollment{
			LeadID:         lead.ID,
			SequenceID:     1,
			OrganizationID: org.ID,
			Status:         models.EnrollmentStatusActive,
		}
		require.NoError(t, db.Create(&enrollment).Error)
		makeDueTask(t, db, &enrollment, models.ChannelSMS, time.Now().Add(-1*time.Hour))
		makeDueTask(t, db, &enrollment, models.ChannelSMS, time.Now().Add(6*time.Hour))

		count, err := service.ProcessDueTasks(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		var stillActive models.NurtureEnrollment
		require.NoError(t, db.First(&stillActive, enrollment.ID).Error)
		assert.Equal(t, models.EnrollmentStatusActive, stillActive.Status)
	})

	t.Run("Success - Claimed tasks are skipped by a second pass", func(t *testing.T) {
		db := setupTestDB(t)
		sms := &fakeAdapter{}
		service := newTestService(db, &fakeResolver{adapters: map[string]channel.Adapter{
			models.ChannelSMS: sms,
		}})

		org := createTestOrg(t, db)
		lead := createTestLead(t, db, org.ID, "claimed")
		enrollment := models.NurtureEnrollment{
			LeadID:         lead.ID,
			SequenceID:     1,
			OrganizationID: org.ID,
			Status:         models.EnrollmentStatusActive,
		}
		require.NoError(t, db.Create(&enrollment).Error)
		task := makeDueTask(t, db, &enrollment, models.ChannelSMS, time.Now().Add(-1*time.Hour))

		// Simulate a concurrent processor having claimed the task already
		require.NoError(t, db.Model(&models.NurtureTask{}).
			Where("id = ?", task.ID).
			Update("status", models.TaskStatusExecuting).Error)

		count, err := service.ProcessDueTasks(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
		assert.Equal(t, 0, sms.sentCount())
	})
}
