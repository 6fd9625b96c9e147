package models

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment statuses
const (
	EnrollmentStatusActive    = "active"
	EnrollmentStatusCompleted = "completed"
	EnrollmentStatusCancelled = "cancelled"
)

// Task statuses. A task is claimed (pending -> executing) before dispatch
// so two overlapping processor passes cannot send it twice; executed,
// failed and cancelled are terminal.
const (
	TaskStatusPending   = "pending"
	TaskStatusExecuting = "executing"
	TaskStatusExecuted  = "executed"
	TaskStatusFailed    = "failed"
	TaskStatusCancelled = "cancelled"
)

// NurtureEnrollment represents one lead's traversal of one sequence.
// A lead has at most one active enrollment at any time; enrolling again
// supersedes (cancels) the previous one.
type NurtureEnrollment struct {
	gorm.Model
	LeadID         uint `gorm:"not null;index" json:"lead_id"`
	SequenceID     uint `gorm:"not null;index" json:"sequence_id"`
	OrganizationID uint `gorm:"not null;index" json:"organization_id"`

	Status      string     `gorm:"default:'active';index" json:"status"` // active, completed, cancelled
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	// Relations
	Lead     Lead            `json:"-"`
	Sequence NurtureSequence `json:"-"`
	Tasks    []NurtureTask   `gorm:"foreignKey:EnrollmentID" json:"tasks,omitempty"`
}

// NurtureTask is one concrete, time-stamped message materialized from a
// step at enrollment time. Content is hydrated once at creation so later
// edits to the lead or the sequence never change an already-queued message.
type NurtureTask struct {
	gorm.Model
	LeadID         uint  `gorm:"not null;index" json:"lead_id"`
	OrganizationID uint  `gorm:"not null;index" json:"organization_id"`
	EnrollmentID   *uint `gorm:"index" json:"enrollment_id,omitempty"` // nil for ad hoc tasks
	StepID         uint  `gorm:"index" json:"step_id"`

	Channel     string    `gorm:"not null" json:"channel"`
	Type        string    `gorm:"not null" json:"type"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Subject     string    `json:"subject"`
	ScheduledAt time.Time `gorm:"not null;index" json:"scheduled_at"`

	Status     string     `gorm:"default:'pending';index" json:"status"` // pending, executing, executed, failed, cancelled
	ExecutedAt *time.Time `json:"executed_at"`
	LastError  string     `json:"last_error"`

	// Relations
	Lead       Lead               `json:"-"`
	Enrollment *NurtureEnrollment `json:"-"`
}
