package testrun

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrInvalidTestRunID is returned when test_run_id is not set.
	ErrInvalidTestRunID = errors.New("test_run_id is required")

	// ErrInvalidStepIndex is returned when step_index is negative.
	ErrInvalidStepIndex = errors.New("step_index must not be negative")
)

// StepRecord is one executed statement of a run, in execution order.
// Replayed statements appear once per execution.
type StepRecord struct {
	ID              uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	TestRunID       uuid.UUID `json:"test_run_id" gorm:"type:char(36);not null;uniqueIndex:idx_test_run_steps_run_index"`
	StepIndex       int       `json:"step_index" gorm:"not null;uniqueIndex:idx_test_run_steps_run_index"`
	Text            string    `json:"text" gorm:"type:text;not null"`
	Error           string    `json:"error,omitempty" gorm:"type:text"`
	Skipped         bool      `json:"skipped" gorm:"not null;default:false"`
	ScreenshotCount int       `json:"screenshot_count" gorm:"not null;default:0"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName pins the table created by the migrations.
func (StepRecord) TableName() string {
	return "test_run_steps"
}

// BeforeCreate hook to generate UUID before creating a new step record
func (s *StepRecord) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Failed reports whether the statement produced an error.
func (s *StepRecord) Failed() bool {
	return s.Error != ""
}

// Validate checks if the step has valid required fields.
func (s *StepRecord) Validate() error {
	if s.TestRunID == uuid.Nil {
		return ErrInvalidTestRunID
	}
	if s.StepIndex < 0 {
		return ErrInvalidStepIndex
	}
	return nil
}
