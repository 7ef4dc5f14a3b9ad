package testrun

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrInvalidArtifactKind is returned when the artifact kind is invalid.
	ErrInvalidArtifactKind = errors.New("invalid artifact kind")

	// ErrInvalidArtifactPath is returned when path is empty.
	ErrInvalidArtifactPath = errors.New("path is required")
)

// ArtifactKind is what a stored file contains.
type ArtifactKind string

const (
	ArtifactScreenshot ArtifactKind = "screenshot"
	ArtifactReportJSON ArtifactKind = "report_json"
	ArtifactReportHTML ArtifactKind = "report_html"
)

// IsValid checks if the artifact kind is valid.
func (k ArtifactKind) IsValid() bool {
	switch k {
	case ArtifactScreenshot, ArtifactReportJSON, ArtifactReportHTML:
		return true
	default:
		return false
	}
}

// Artifact is a file a run stored in blob storage.
type Artifact struct {
	ID          uuid.UUID    `json:"id" gorm:"type:char(36);primaryKey"`
	TestRunID   uuid.UUID    `json:"test_run_id" gorm:"type:char(36);not null;index:idx_test_run_artifacts_run"`
	Kind        ArtifactKind `json:"kind" gorm:"type:varchar(20);not null"`
	Path        string       `json:"path" gorm:"type:varchar(1024);not null"`
	ContentType string       `json:"content_type,omitempty" gorm:"type:varchar(128)"`
	Size        int64        `json:"size" gorm:"not null;default:0"`
	CreatedAt   time.Time    `json:"created_at"`
}

// TableName pins the table created by the migrations.
func (Artifact) TableName() string {
	return "test_run_artifacts"
}

// BeforeCreate hook to generate UUID before creating a new artifact
func (a *Artifact) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Validate checks if the artifact has valid required fields.
func (a *Artifact) Validate() error {
	if a.TestRunID == uuid.Nil {
		return ErrInvalidTestRunID
	}
	if !a.Kind.IsValid() {
		return ErrInvalidArtifactKind
	}
	if a.Path == "" {
		return ErrInvalidArtifactPath
	}
	return nil
}
