package testrun

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   bool
	}{
		{"pending is valid", StatusPending, true},
		{"running is valid", StatusRunning, true},
		{"passed is valid", StatusPassed, true},
		{"recovered is valid", StatusRecovered, true},
		{"failed is valid", StatusFailed, true},
		{"aborted is valid", StatusAborted, true},
		{"invalid status", Status("skipped"), false},
		{"empty status", Status(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.IsValid())
		})
	}
}

func TestStatus_IsFinal(t *testing.T) {
	tests := []struct {
		name        string
		status      Status
		wantFinal   bool
		wantSuccess bool
	}{
		{"passed", StatusPassed, true, true},
		{"recovered", StatusRecovered, true, true},
		{"failed", StatusFailed, true, false},
		{"aborted", StatusAborted, true, false},
		{"pending", StatusPending, false, false},
		{"running", StatusRunning, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantFinal, tt.status.IsFinal())
			assert.Equal(t, tt.wantSuccess, tt.status.IsSuccess())
		})
	}
}

func TestStatusForReport(t *testing.T) {
	tests := []struct {
		name        string
		exitedEarly bool
		outstanding bool
		errors      int
		want        Status
	}{
		{"clean run", false, false, 0, StatusPassed},
		{"caught errors", false, false, 2, StatusRecovered},
		{"uncaught error", false, true, 1, StatusFailed},
		{"exited early", true, false, 3, StatusAborted},
		{"exited early wins over outstanding", true, true, 1, StatusAborted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusForReport(tt.exitedEarly, tt.outstanding, tt.errors))
		})
	}
}

func TestTestRun_Validate(t *testing.T) {
	tests := []struct {
		name    string
		testRun TestRun
		wantErr error
	}{
		{
			name:    "valid test run",
			testRun: TestRun{ScriptName: "login", Status: StatusPending},
		},
		{
			name:    "missing script name",
			testRun: TestRun{Status: StatusPending},
			wantErr: ErrInvalidScriptName,
		},
		{
			name:    "invalid status",
			testRun: TestRun{ScriptName: "login", Status: Status("bogus")},
			wantErr: ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.testRun.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTestRun_Start(t *testing.T) {
	t.Run("successfully start test run", func(t *testing.T) {
		tr := &TestRun{ScriptName: "login", Status: StatusPending}

		err := tr.Start()
		assert.NoError(t, err)
		assert.NotNil(t, tr.StartedAt)
		assert.Equal(t, StatusRunning, tr.Status)
		assert.WithinDuration(t, time.Now(), *tr.StartedAt, time.Second)
	})

	t.Run("cannot start already started test run", func(t *testing.T) {
		now := time.Now()
		tr := &TestRun{ScriptName: "login", Status: StatusRunning, StartedAt: &now}

		err := tr.Start()
		assert.ErrorIs(t, err, ErrTestRunAlreadyStarted)
		assert.Equal(t, now, *tr.StartedAt)
	})
}

func TestTestRun_Complete(t *testing.T) {
	running := func() *TestRun {
		now := time.Now()
		return &TestRun{ScriptName: "login", Status: StatusRunning, StartedAt: &now}
	}

	t.Run("records the outcome", func(t *testing.T) {
		tr := running()

		err := tr.Complete(Outcome{
			Status:           StatusFailed,
			OutstandingError: true,
			StatementCount:   7,
			ErrorCount:       1,
			Notes:            `locate "Submit": element not found`,
		})
		assert.NoError(t, err)
		assert.NotNil(t, tr.CompletedAt)
		assert.Equal(t, StatusFailed, tr.Status)
		assert.True(t, tr.OutstandingError)
		assert.False(t, tr.ExitedEarly)
		assert.Equal(t, 7, tr.StatementCount)
		assert.Equal(t, 1, tr.ErrorCount)
		assert.Equal(t, `locate "Submit": element not found`, tr.Notes)
		assert.GreaterOrEqual(t, tr.Duration(), time.Duration(0))
	})

	t.Run("keeps existing notes when none given", func(t *testing.T) {
		tr := running()
		tr.Notes = "nightly"

		assert.NoError(t, tr.Complete(Outcome{Status: StatusPassed}))
		assert.Equal(t, "nightly", tr.Notes)
	})

	t.Run("cannot complete non-running test run", func(t *testing.T) {
		tr := &TestRun{ScriptName: "login", Status: StatusPending}

		assert.ErrorIs(t, tr.Complete(Outcome{Status: StatusPassed}), ErrTestRunNotRunning)
		assert.Equal(t, time.Duration(0), tr.Duration())
	})

	t.Run("cannot complete with non-final status", func(t *testing.T) {
		tr := running()

		assert.ErrorIs(t, tr.Complete(Outcome{Status: StatusPending}), ErrInvalidStatus)
		assert.ErrorIs(t, tr.Complete(Outcome{Status: StatusRunning}), ErrInvalidStatus)
	})
}

func TestStepRecord_Validate(t *testing.T) {
	runID := uuid.New()

	tests := []struct {
		name    string
		step    StepRecord
		wantErr error
	}{
		{"valid", StepRecord{TestRunID: runID, StepIndex: 0, Text: "refresh"}, nil},
		{"missing run", StepRecord{StepIndex: 0, Text: "refresh"}, ErrInvalidTestRunID},
		{"negative index", StepRecord{TestRunID: runID, StepIndex: -1}, ErrInvalidStepIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.step.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestArtifact_Validate(t *testing.T) {
	runID := uuid.New()

	tests := []struct {
		name     string
		artifact Artifact
		wantErr  error
	}{
		{"valid screenshot", Artifact{TestRunID: runID, Kind: ArtifactScreenshot, Path: "login/login_screenshot_1.png"}, nil},
		{"valid report", Artifact{TestRunID: runID, Kind: ArtifactReportHTML, Path: "login/report.html"}, nil},
		{"missing run", Artifact{Kind: ArtifactReportJSON, Path: "login/report.json"}, ErrInvalidTestRunID},
		{"invalid kind", Artifact{TestRunID: runID, Kind: "video", Path: "login/run.mp4"}, ErrInvalidArtifactKind},
		{"missing path", Artifact{TestRunID: runID, Kind: ArtifactScreenshot}, ErrInvalidArtifactPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.artifact.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
