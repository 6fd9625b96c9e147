package nurture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nurtura/channel"
	"nurtura/models"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Activity types recorded by the processor
const (
	ActivityMessageSent      = "message_sent"
	ActivityMessageFailed    = "message_failed"
	ActivityMessageSimulated = "message_simulated"
)

// ProcessDueTasks executes every pending task whose scheduled time has
// passed. Each task is claimed with an optimistic status transition before
// dispatching, so an overlapping pass (or a second process) skips tasks
// already taken. A task failure is terminal and isolated: it never aborts
// the rest of the batch and the task is not retried. Returns the number of
// tasks this pass claimed and handled.
func (s *Service) ProcessDueTasks(ctx context.Context) (int, error) {
	now := time.Now()

	var due []models.NurtureTask
	err := s.DB.WithContext(ctx).
		Preload("Lead").
		Where("status = ? AND scheduled_at <= ?", models.TaskStatusPending, now).
		Order("scheduled_at ASC, id ASC").
		Find(&due).Error
	if err != nil {
		return 0, fmt.Errorf("failed to select due tasks: %w", err)
	}

	processed := 0
	for i := range due {
		task := &due[i]

		claimed, err := s.claimTask(ctx, task)
		if err != nil {
			s.Logger.WithError(err).WithField("task_id", task.ID).Error("Failed to claim task")
			continue
		}
		if !claimed {
			// Another pass got there first
			continue
		}

		s.executeTask(ctx, task)
		processed++

		if task.EnrollmentID != nil {
			if err := s.completeEnrollmentIfDone(ctx, *task.EnrollmentID, time.Now()); err != nil {
				s.Logger.WithError(err).WithField("enrollment_id", *task.EnrollmentID).
					Error("Failed to run enrollment completion check")
			}
		}
	}

	if processed > 0 {
		s.Logger.WithField("count", processed).Info("Processed due nurture tasks")
	}
	return processed, nil
}

// claimTask transitions a task pending -> executing, conditioned on the row
// still being pending. Returns false when a concurrent pass already claimed
// it.
func (s *Service) claimTask(ctx context.Context, task *models.NurtureTask) (bool, error) {
	res := s.DB.WithContext(ctx).Model(&models.NurtureTask{}).
		Where("id = ? AND status = ?", task.ID, models.TaskStatusPending).
		Update("status", models.TaskStatusExecuting)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Service) executeTask(ctx context.Context, task *models.NurtureTask) {
	messageID := uuid.New().String()

	simulated, dispatchErr := s.dispatch(ctx, task)

	// The audit row is written regardless of outcome
	switch {
	case simulated:
		s.recordActivity(ctx, task, ActivityMessageSimulated, messageID, "no adapter configured, send simulated")
	case dispatchErr != nil:
		s.recordActivity(ctx, task, ActivityMessageFailed, messageID, dispatchErr.Error())
	default:
		s.recordActivity(ctx, task, ActivityMessageSent, messageID, "")
	}

	if dispatchErr != nil {
		s.Logger.WithFields(logrus.Fields{
			"task_id": task.ID,
			"lead_id": task.LeadID,
			"channel": task.Channel,
		}).WithError(dispatchErr).Error("Nurture task dispatch failed")

		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("channel", task.Channel)
			scope.SetExtra("task_id", task.ID)
			sentry.CaptureException(dispatchErr)
		})

		if err := s.DB.WithContext(ctx).Model(task).Updates(map[string]interface{}{
			"status":     models.TaskStatusFailed,
			"last_error": dispatchErr.Error(),
		}).Error; err != nil {
			s.Logger.WithError(err).WithField("task_id", task.ID).Error("Failed to mark task failed")
		}
		return
	}

	now := time.Now()
	if err := s.DB.WithContext(ctx).Model(task).Updates(map[string]interface{}{
		"status":      models.TaskStatusExecuted,
		"executed_at": now,
	}).Error; err != nil {
		s.Logger.WithError(err).WithField("task_id", task.ID).Error("Failed to mark task executed")
		return
	}

	if err := s.DB.WithContext(ctx).Model(&models.Lead{}).
		Where("id = ?", task.LeadID).
		Update("last_contact", now).Error; err != nil {
		s.Logger.WithError(err).WithField("lead_id", task.LeadID).Warn("Failed to update lead last contact")
	}
}

// dispatch sends the task's content through the adapter configured for its
// organization and channel. A missing adapter is a configuration gap, not a
// failure: the send is simulated and only logged.
func (s *Service) dispatch(ctx context.Context, task *models.NurtureTask) (simulated bool, err error) {
	adapter, err := s.Channels.Resolve(ctx, task.OrganizationID, task.Channel)
	if err != nil {
		if errors.Is(err, channel.ErrNotConfigured) {
			s.Logger.WithFields(logrus.Fields{
				"task_id":         task.ID,
				"organization_id": task.OrganizationID,
				"channel":         task.Channel,
			}).Info("No adapter configured, simulating send")
			return true, nil
		}
		return false, fmt.Errorf("failed to resolve channel adapter: %w", err)
	}

	msg := channel.Message{
		To:      task.Lead.Phone,
		Body:    task.Content,
		Subject: task.Subject,
	}
	if task.Channel == models.ChannelEmail {
		msg.To = task.Lead.Email
	}

	if err := adapter.Send(ctx, msg); err != nil {
		return false, err
	}
	return false, nil
}

// completeEnrollmentIfDone marks an enrollment completed once no task of it
// is pending or mid-execution. Failed and cancelled tasks count as done:
// completion means "no more work", not "full success". The status condition
// on the update makes the check safe to run twice.
func (s *Service) completeEnrollmentIfDone(ctx context.Context, enrollmentID uint, now time.Time) error {
	var remaining int64
	err := s.DB.WithContext(ctx).Model(&models.NurtureTask{}).
		Where("enrollment_id = ? AND status IN ?", enrollmentID,
			[]string{models.TaskStatusPending, models.TaskStatusExecuting}).
		Count(&remaining).Error
	if err != nil {
		return fmt.Errorf("failed to count remaining tasks: %w", err)
	}
	if remaining > 0 {
		return nil
	}

	res := s.DB.WithContext(ctx).Model(&models.NurtureEnrollment{}).
		Where("id = ? AND status = ?", enrollmentID, models.EnrollmentStatusActive).
		Updates(map[string]interface{}{
			"status":       models.EnrollmentStatusCompleted,
			"completed_at": now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to complete enrollment: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		s.Logger.WithField("enrollment_id", enrollmentID).Info("Nurture enrollment completed")
	}
	return nil
}
