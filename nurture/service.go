package nurture

import (
	"context"
	"fmt"
	"time"

	"nurtura/channel"
	"nurtura/models"
	"nurtura/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service is the nurturing engine: it enrolls leads into sequences,
// materializes the scheduled tasks and later executes the due ones.
type Service struct {
	DB       *gorm.DB
	Channels channel.Resolver
	Logger   *logrus.Logger
}

func NewService(db *gorm.DB, channels channel.Resolver, logger *logrus.Logger) *Service {
	return &Service{
		DB:       db,
		Channels: channels,
		Logger:   logger,
	}
}

// Enroll puts a lead into a sequence. Any previous active enrollment for
// the lead is superseded (cancelled together with its pending tasks), then
// one pending task per step is created with cumulative delay offsets and
// content hydrated against the lead's current fields. The whole operation
// runs in one transaction so a failure leaves nothing partial behind.
func (s *Service) Enroll(ctx context.Context, leadID, sequenceID, organizationID uint) (*models.NurtureEnrollment, error) {
	var sequence models.NurtureSequence
	err := s.DB.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order ASC")
		}).
		Where("id = ? AND organization_id = ?", sequenceID, organizationID).
		First(&sequence).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrSequenceNotFound
		}
		return nil, fmt.Errorf("failed to load sequence: %w", err)
	}

	if len(sequence.Steps) == 0 {
		return nil, ErrEmptySequence
	}

	var lead models.Lead
	if err := s.DB.WithContext(ctx).First(&lead, leadID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to load lead: %w", err)
	}

	now := time.Now()
	enrollment := models.NurtureEnrollment{
		LeadID:         leadID,
		SequenceID:     sequence.ID,
		OrganizationID: organizationID,
		Status:         models.EnrollmentStatusActive,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.cancelActiveEnrollments(tx, leadID, now); err != nil {
			return err
		}

		if err := tx.Create(&enrollment).Error; err != nil {
			return fmt.Errorf("failed to create enrollment: %w", err)
		}

		// Walk the steps in order, accumulating the relative delays into
		// absolute timestamps. Content is snapshotted here so later lead
		// edits never alter an already-queued message.
		cumulativeHours := 0
		tasks := make([]models.NurtureTask, 0, len(sequence.Steps))
		for _, step := range sequence.Steps {
			cumulativeHours += step.DelayInHours
			tasks = append(tasks, models.NurtureTask{
				LeadID:         leadID,
				OrganizationID: organizationID,
				EnrollmentID:   &enrollment.ID,
				StepID:         step.ID,
				Channel:        step.Channel,
				Type:           step.Type,
				Content:        Hydrate(step.Content, lead),
				Subject:        Hydrate(step.Subject, lead),
				ScheduledAt:    now.Add(time.Duration(cumulativeHours) * time.Hour),
				Status:         models.TaskStatusPending,
			})
		}

		if err := tx.Create(&tasks).Error; err != nil {
			return fmt.Errorf("failed to create tasks: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{
		"lead_id":       leadID,
		"sequence_id":   sequence.ID,
		"enrollment_id": enrollment.ID,
		"tasks":         len(sequence.Steps),
	}).Info("Lead enrolled in nurture sequence")

	return &enrollment, nil
}

// CancelActiveEnrollments cancels every active enrollment of a lead along
// with its still-pending tasks. Used on explicit cancellation (unsubscribe,
// disqualification); Enroll applies the same logic before creating a new
// enrollment.
func (s *Service) CancelActiveEnrollments(ctx context.Context, leadID uint) error {
	now := time.Now()
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.cancelActiveEnrollments(tx, leadID, now)
	})
}

func (s *Service) cancelActiveEnrollments(tx *gorm.DB, leadID uint, now time.Time) error {
	var active []models.NurtureEnrollment
	if err := tx.Where("lead_id = ? AND status = ?", leadID, models.EnrollmentStatusActive).
		Find(&active).Error; err != nil {
		return fmt.Errorf("failed to find active enrollments: %w", err)
	}

	for _, enrollment := range active {
		if err := tx.Model(&models.NurtureTask{}).
			Where("enrollment_id = ? AND status = ?", enrollment.ID, models.TaskStatusPending).
			Update("status", models.TaskStatusCancelled).Error; err != nil {
			return fmt.Errorf("failed to cancel pending tasks: %w", err)
		}

		if err := tx.Model(&models.NurtureEnrollment{}).
			Where("id = ?", enrollment.ID).
			Updates(map[string]interface{}{
				"status":       models.EnrollmentStatusCancelled,
				"cancelled_at": now,
			}).Error; err != nil {
			return fmt.Errorf("failed to cancel enrollment: %w", err)
		}

		s.Logger.WithFields(logrus.Fields{
			"lead_id":       leadID,
			"enrollment_id": enrollment.ID,
		}).Info("Superseded active enrollment")
	}
	return nil
}

// recordActivity appends an audit row for a task outcome. The trail is
// fire-and-forget: a write failure is logged and never fails the task.
func (s *Service) recordActivity(ctx context.Context, task *models.NurtureTask, activityType, messageID, details string) {
	activity := models.LeadActivity{
		LeadID:         task.LeadID,
		OrganizationID: task.OrganizationID,
		TaskID:         utils.Pointer(task.ID),
		ActivityType:   activityType,
		Channel:        task.Channel,
		Content:        task.Content,
		MessageID:      messageID,
		ActivityAt:     time.Now(),
		Details:        details,
	}
	if err := s.DB.WithContext(ctx).Create(&activity).Error; err != nil {
		s.Logger.WithError(err).WithField("task_id", task.ID).Warn("Failed to record lead activity")
	}
}
