package testrun

import (
	"context"

	"github.com/google/uuid"
	"github.com/hairizuanbinnoorazman/uiscript/logger"
	"gorm.io/gorm"
)

// GormArtifactStore implements ArtifactStore using gorm.
type GormArtifactStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewGormArtifactStore creates a new gorm-backed artifact store.
func NewGormArtifactStore(db *gorm.DB, log logger.Logger) *GormArtifactStore {
	return &GormArtifactStore{
		db:     db,
		logger: log,
	}
}

// Create creates a new artifact in the database.
func (s *GormArtifactStore) Create(ctx context.Context, artifact *Artifact) error {
	if err := artifact.Validate(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(artifact).Error; err != nil {
		s.logger.Error(ctx, "failed to create artifact", map[string]interface{}{
			"error":       err.Error(),
			"test_run_id": artifact.TestRunID,
			"path":        artifact.Path,
		})
		return err
	}

	s.logger.Debug(ctx, "artifact created", map[string]interface{}{
		"artifact_id": artifact.ID,
		"test_run_id": artifact.TestRunID,
		"kind":        artifact.Kind,
	})
	return nil
}

// ListByTestRun returns the artifacts of a run in creation order.
func (s *GormArtifactStore) ListByTestRun(ctx context.Context, testRunID uuid.UUID) ([]*Artifact, error) {
	var artifacts []*Artifact
	err := s.db.WithContext(ctx).
		Where("test_run_id = ?", testRunID).
		Order("created_at ASC, path ASC").
		Find(&artifacts).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list artifacts", map[string]interface{}{
			"error":       err.Error(),
			"test_run_id": testRunID,
		})
		return nil, err
	}
	return artifacts, nil
}
