package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/hairizuanbinnoorazman/uiscript/database"
	"github.com/hairizuanbinnoorazman/uiscript/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, database.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "uiscript.db", cfg.Database.Path)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, 15*time.Minute, cfg.Storage.S3PresignExpiry)
	assert.Equal(t, "rod", cfg.Browser.Driver)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 1, cfg.Runner.Workers)
	assert.Equal(t, []time.Duration{0, 5 * time.Second, 10 * time.Second, 20 * time.Second, 30 * time.Second}, cfg.Interpreter.Backoff)
	assert.Equal(t, time.Second, cfg.Interpreter.CommandDelay)
	assert.Equal(t, 10, cfg.Interpreter.MaxScopeClimb)
	assert.False(t, cfg.Interpreter.Highlight)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("SUI_LOG_LEVEL", "debug")
	t.Setenv("SUI_DATABASE_DRIVER", "mysql")
	t.Setenv("SUI_RUNNER_WORKERS", "4")
	t.Setenv("SUI_INTERPRETER_BACKOFF", "0 2")
	t.Setenv("SUI_BROWSER_HEADLESS", "false")
	t.Setenv("SUI_INTERPRETER_HIGHLIGHT", "true")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 4, cfg.Runner.Workers)
	assert.Equal(t, []time.Duration{0, 2 * time.Second}, cfg.Interpreter.Backoff)
	assert.False(t, cfg.Browser.Headless)
	assert.True(t, cfg.Interpreter.Highlight)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "sui.yaml", `
storage:
  type: s3
  s3_bucket: reports
  s3_prefix: nightly
interpreter:
  backoff: ["0s", "250ms"]
  command_delay: 0s
server:
  port: 9090
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "s3", cfg.Storage.Type)
	assert.Equal(t, "reports", cfg.Storage.S3Bucket)
	assert.Equal(t, []time.Duration{0, 250 * time.Millisecond}, cfg.Interpreter.Backoff)
	assert.Equal(t, time.Duration(0), cfg.Interpreter.CommandDelay)
	assert.Equal(t, 9090, cfg.Server.Port)

	sc := cfg.storageConfig()
	assert.Equal(t, "reports", sc.Bucket)
	assert.Equal(t, "nightly", sc.Prefix)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := testutil.WriteFile(t, t.TempDir(), "sui.yaml", "interpreter:\n  backoff: [\"soon\"]\n")
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "invalid interpreter.backoff")
}

func TestParseDurations(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []time.Duration
		wantErr bool
	}{
		{"go durations", []string{"1s", "1m"}, []time.Duration{time.Second, time.Minute}, false},
		{"bare seconds", []string{"0", "5"}, []time.Duration{0, 5 * time.Second}, false},
		{"blank entries skipped", []string{" ", "2s"}, []time.Duration{2 * time.Second}, false},
		{"garbage", []string{"later"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDurations(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
