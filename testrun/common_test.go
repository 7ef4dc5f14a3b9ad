package testrun

import (
	"testing"
	"time"

	"github.com/hairizuanbinnoorazman/uiscript/logger"
	"github.com/hairizuanbinnoorazman/uiscript/testutil"
	"gorm.io/gorm"
)

type testStores struct {
	db        *gorm.DB
	runs      *GormStore
	steps     *GormStepStore
	artifacts *GormArtifactStore
}

// setupTestStores creates an in-memory database with every run history table.
func setupTestStores(t *testing.T) testStores {
	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &TestRun{}, &StepRecord{}, &Artifact{})

	log := logger.NewTestLogger()
	return testStores{
		db:        db,
		runs:      NewGormStore(db, log),
		steps:     NewGormStepStore(db, log),
		artifacts: NewGormArtifactStore(db, log),
	}
}

// createTestRun creates a test run with default values.
func createTestRun(scriptName string, status Status, createdAt time.Time) *TestRun {
	return &TestRun{
		ScriptName: scriptName,
		ScriptPath: "scripts/" + scriptName + ".sui",
		Status:     status,
		CreatedAt:  createdAt,
	}
}
