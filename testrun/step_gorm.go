package testrun

import (
	"context"

	"github.com/google/uuid"
	"github.com/hairizuanbinnoorazman/uiscript/logger"
	"gorm.io/gorm"
)

// GormStepStore implements StepStore using gorm.
type GormStepStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewGormStepStore creates a new gorm-backed step store.
func NewGormStepStore(db *gorm.DB, log logger.Logger) *GormStepStore {
	return &GormStepStore{
		db:     db,
		logger: log,
	}
}

// CreateBatch stores steps in one transaction.
func (s *GormStepStore) CreateBatch(ctx context.Context, steps []*StepRecord) error {
	if len(steps) == 0 {
		return nil
	}
	for _, step := range steps {
		if err := step.Validate(); err != nil {
			return err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(steps, 100).Error
	})
	if err != nil {
		s.logger.Error(ctx, "failed to create step records", map[string]interface{}{
			"error":       err.Error(),
			"test_run_id": steps[0].TestRunID,
			"count":       len(steps),
		})
		return err
	}

	s.logger.Debug(ctx, "step records created", map[string]interface{}{
		"test_run_id": steps[0].TestRunID,
		"count":       len(steps),
	})
	return nil
}

// ListByTestRun returns the steps of a run ordered by step_index.
func (s *GormStepStore) ListByTestRun(ctx context.Context, testRunID uuid.UUID) ([]*StepRecord, error) {
	var steps []*StepRecord
	err := s.db.WithContext(ctx).
		Where("test_run_id = ?", testRunID).
		Order("step_index ASC").
		Find(&steps).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list step records", map[string]interface{}{
			"error":       err.Error(),
			"test_run_id": testRunID,
		})
		return nil, err
	}
	return steps, nil
}
