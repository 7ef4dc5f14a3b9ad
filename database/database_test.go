package database

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hairizuanbinnoorazman/uiscript/logger"
	"github.com/hairizuanbinnoorazman/uiscript/testrun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDriver(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", DriverSQLite, false},
		{"sqlite", DriverSQLite, false},
		{"SQLite3", DriverSQLite, false},
		{"mysql", DriverMySQL, false},
		{"postgres", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeDriver(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedDriver)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN(Config{
		Host:     "db.internal",
		Port:     3307,
		User:     "sui",
		Password: "s3cret",
		Database: "uiscript",
	})

	assert.True(t, strings.HasPrefix(dsn, "sui:s3cret@tcp(db.internal:3307)/uiscript?"))
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "multiStatements=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	_, err := Connect(Config{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestMigrations_SQLite(t *testing.T) {
	db, err := Connect(Config{
		Driver:       "sqlite",
		Path:         filepath.Join(t.TempDir(), "history.db"),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	version, dirty, err := Version(sqlDB, DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
	assert.False(t, dirty)

	require.NoError(t, RunMigrations(sqlDB, DriverSQLite))
	require.NoError(t, RunMigrations(sqlDB, DriverSQLite), "applying twice is a no-op")

	version, _, err = Version(sqlDB, DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)

	for _, table := range []string{"test_runs", "test_run_steps", "test_run_artifacts"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	t.Run("schema matches the run history models", func(t *testing.T) {
		ctx := context.Background()
		log := logger.NewTestLogger()
		runs := testrun.NewGormStore(db, log)
		steps := testrun.NewGormStepStore(db, log)
		artifacts := testrun.NewGormArtifactStore(db, log)

		tr := &testrun.TestRun{ScriptName: "login"}
		require.NoError(t, runs.Create(ctx, tr))
		require.NoError(t, runs.Start(ctx, tr.ID))
		require.NoError(t, steps.CreateBatch(ctx, []*testrun.StepRecord{
			{TestRunID: tr.ID, StepIndex: 0, Text: `url "https://example.com"`},
		}))
		require.NoError(t, artifacts.Create(ctx, &testrun.Artifact{
			TestRunID: tr.ID, Kind: testrun.ArtifactReportJSON, Path: "login/report.json", Size: 10,
		}))
		require.NoError(t, runs.Complete(ctx, tr.ID, testrun.Outcome{Status: testrun.StatusPassed, StatementCount: 1}))

		got, err := runs.GetByID(ctx, tr.ID)
		require.NoError(t, err)
		assert.Equal(t, testrun.StatusPassed, got.Status)
	})

	t.Run("steps need an existing run", func(t *testing.T) {
		steps := testrun.NewGormStepStore(db, logger.NewTestLogger())
		err := steps.CreateBatch(context.Background(), []*testrun.StepRecord{
			{TestRunID: [16]byte{1}, StepIndex: 0, Text: "refresh"},
		})
		assert.Error(t, err)
	})

	require.NoError(t, RollbackMigration(sqlDB, DriverSQLite))
	assert.False(t, db.Migrator().HasTable("test_run_steps"))
	assert.True(t, db.Migrator().HasTable("test_runs"))

	require.NoError(t, RollbackMigration(sqlDB, DriverSQLite))
	assert.False(t, db.Migrator().HasTable("test_runs"))

	require.NoError(t, RollbackMigration(sqlDB, DriverSQLite), "nothing left to roll back")
}
