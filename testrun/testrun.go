// Package testrun records the history of script runs: one TestRun per
// execution, a StepRecord per executed statement and an Artifact per file
// written to blob storage.
package testrun

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrTestRunNotFound is returned when a test run is not found.
	ErrTestRunNotFound = errors.New("test run not found")

	// ErrInvalidScriptName is returned when script_name is not set.
	ErrInvalidScriptName = errors.New("script_name is required")

	// ErrInvalidStatus is returned when status is invalid.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrTestRunNotRunning is returned when trying to complete a test run that's not running.
	ErrTestRunNotRunning = errors.New("test run is not running")

	// ErrTestRunAlreadyStarted is returned when trying to start an already started test run.
	ErrTestRunAlreadyStarted = errors.New("test run already started")
)

// Status represents the status of a test run.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	// StatusPassed means no statement failed.
	StatusPassed Status = "passed"
	// StatusRecovered means statements failed but a catch-error handled each one.
	StatusRecovered Status = "recovered"
	// StatusFailed means the script ended with an error nobody caught.
	StatusFailed Status = "failed"
	// StatusAborted means the script stopped early.
	StatusAborted Status = "aborted"
)

// IsValid checks if the status is valid.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusPassed, StatusRecovered, StatusFailed, StatusAborted:
		return true
	default:
		return false
	}
}

// IsFinal checks if the status is a final status (can't be changed).
func (s Status) IsFinal() bool {
	switch s {
	case StatusPassed, StatusRecovered, StatusFailed, StatusAborted:
		return true
	default:
		return false
	}
}

// IsSuccess reports whether the run should count as green.
func (s Status) IsSuccess() bool {
	return s == StatusPassed || s == StatusRecovered
}

// StatusForReport maps the outcome of an interpreter run to a Status.
func StatusForReport(exitedEarly, outstandingError bool, errorCount int) Status {
	switch {
	case exitedEarly:
		return StatusAborted
	case outstandingError:
		return StatusFailed
	case errorCount > 0:
		return StatusRecovered
	default:
		return StatusPassed
	}
}

// TestRun is one execution of a script.
type TestRun struct {
	ID               uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	ScriptName       string     `json:"script_name" gorm:"type:varchar(255);not null;index:idx_test_runs_script_name"`
	ScriptPath       string     `json:"script_path" gorm:"type:varchar(1024)"`
	Status           Status     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index:idx_test_runs_status"`
	ExitedEarly      bool       `json:"exited_early" gorm:"not null;default:false"`
	OutstandingError bool       `json:"outstanding_error" gorm:"not null;default:false"`
	StatementCount   int        `json:"statement_count" gorm:"not null;default:0"`
	ErrorCount       int        `json:"error_count" gorm:"not null;default:0"`
	Notes            string     `json:"notes" gorm:"type:text"`
	StartedAt        *time.Time `json:"started_at,omitempty" gorm:"index:idx_test_runs_started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName pins the table created by the migrations.
func (TestRun) TableName() string {
	return "test_runs"
}

// BeforeCreate hook to generate UUID before creating a new test run
func (tr *TestRun) BeforeCreate(tx *gorm.DB) error {
	if tr.ID == uuid.Nil {
		tr.ID = uuid.New()
	}
	return nil
}

// Validate checks if the test run has valid required fields.
func (tr *TestRun) Validate() error {
	if tr.ScriptName == "" {
		return ErrInvalidScriptName
	}
	if !tr.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// Duration is the wall time between start and completion, or zero while
// the run is still going.
func (tr *TestRun) Duration() time.Duration {
	if tr.StartedAt == nil || tr.CompletedAt == nil {
		return 0
	}
	return tr.CompletedAt.Sub(*tr.StartedAt)
}

// Start sets the started_at timestamp and changes status to running.
// Returns an error if the test run has already been started.
func (tr *TestRun) Start() error {
	if tr.StartedAt != nil {
		return ErrTestRunAlreadyStarted
	}
	now := time.Now()
	tr.StartedAt = &now
	tr.Status = StatusRunning
	return nil
}

// Outcome is what a finished run reports back to its history row.
type Outcome struct {
	Status           Status
	ExitedEarly      bool
	OutstandingError bool
	StatementCount   int
	ErrorCount       int
	Notes            string
}

// Complete sets the completed_at timestamp and the outcome.
// Returns an error if the test run is not currently running.
func (tr *TestRun) Complete(out Outcome) error {
	if tr.Status != StatusRunning {
		return ErrTestRunNotRunning
	}
	if !out.Status.IsFinal() {
		return ErrInvalidStatus
	}
	now := time.Now()
	tr.CompletedAt = &now
	tr.Status = out.Status
	tr.ExitedEarly = out.ExitedEarly
	tr.OutstandingError = out.OutstandingError
	tr.StatementCount = out.StatementCount
	tr.ErrorCount = out.ErrorCount
	if out.Notes != "" {
		tr.Notes = out.Notes
	}
	return nil
}
