package testrun

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hairizuanbinnoorazman/uiscript/logger"
	"gorm.io/gorm"
)

// GormStore implements the Store interface on any gorm dialect.
type GormStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewGormStore creates a new gorm-backed test run store.
func NewGormStore(db *gorm.DB, log logger.Logger) *GormStore {
	return &GormStore{
		db:     db,
		logger: log,
	}
}

// Create creates a new test run in the database.
func (s *GormStore) Create(ctx context.Context, testRun *TestRun) error {
	if testRun.Status == "" {
		testRun.Status = StatusPending
	}

	if err := testRun.Validate(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(testRun).Error; err != nil {
		s.logger.Error(ctx, "failed to create test run", map[string]interface{}{
			"error":       err.Error(),
			"script_name": testRun.ScriptName,
		})
		return err
	}

	s.logger.Info(ctx, "test run created", map[string]interface{}{
		"test_run_id": testRun.ID,
		"script_name": testRun.ScriptName,
	})
	return nil
}

// GetByID retrieves a test run by its ID.
func (s *GormStore) GetByID(ctx context.Context, id uuid.UUID) (*TestRun, error) {
	var testRun TestRun
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&testRun).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTestRunNotFound
		}
		s.logger.Error(ctx, "failed to get test run by ID", map[string]interface{}{
			"error":       err.Error(),
			"test_run_id": id,
		})
		return nil, err
	}
	return &testRun, nil
}

// Update updates a test run with the given setters.
func (s *GormStore) Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error {
	testRun, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	for _, setter := range setters {
		if err := setter(testRun); err != nil {
			return err
		}
	}

	return s.save(ctx, testRun, "test run updated")
}

func (s *GormStore) scoped(ctx context.Context, filter Filter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&TestRun{})
	if filter.ScriptName != "" {
		q = q.Where("script_name = ?", filter.ScriptName)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	return q
}

// List retrieves a page of test runs, newest first.
func (s *GormStore) List(ctx context.Context, filter Filter, limit, offset int) ([]*TestRun, error) {
	var testRuns []*TestRun
	err := s.scoped(ctx, filter).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&testRuns).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list test runs", map[string]interface{}{
			"error":       err.Error(),
			"script_name": filter.ScriptName,
			"status":      filter.Status,
			"limit":       limit,
			"offset":      offset,
		})
		return nil, err
	}
	return testRuns, nil
}

// Count returns how many test runs match filter.
func (s *GormStore) Count(ctx context.Context, filter Filter) (int64, error) {
	var n int64
	if err := s.scoped(ctx, filter).Count(&n).Error; err != nil {
		s.logger.Error(ctx, "failed to count test runs", map[string]interface{}{
			"error": err.Error(),
		})
		return 0, err
	}
	return n, nil
}

// Start marks a test run as started (sets started_at, changes status to running).
func (s *GormStore) Start(ctx context.Context, id uuid.UUID) error {
	testRun, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := testRun.Start(); err != nil {
		return err
	}

	return s.save(ctx, testRun, "test run started")
}

// Complete marks a test run as completed with its outcome.
func (s *GormStore) Complete(ctx context.Context, id uuid.UUID, outcome Outcome) error {
	testRun, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := testRun.Complete(outcome); err != nil {
		return err
	}

	return s.save(ctx, testRun, "test run completed")
}

func (s *GormStore) save(ctx context.Context, testRun *TestRun, msg string) error {
	if err := s.db.WithContext(ctx).Save(testRun).Error; err != nil {
		s.logger.Error(ctx, "failed to save test run", map[string]interface{}{
			"error":       err.Error(),
			"test_run_id": testRun.ID,
		})
		return err
	}

	s.logger.Info(ctx, msg, map[string]interface{}{
		"test_run_id": testRun.ID,
		"status":      testRun.Status,
	})
	return nil
}
