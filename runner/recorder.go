package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/hairizuanbinnoorazman/uiscript/interpreter"
	"github.com/hairizuanbinnoorazman/uiscript/logger"
	"github.com/hairizuanbinnoorazman/uiscript/report"
	"github.com/hairizuanbinnoorazman/uiscript/storage"
	"github.com/hairizuanbinnoorazman/uiscript/testrun"
)

// Finish completes a recording once the script has stopped.
type Finish func(ctx context.Context, rep *interpreter.Report) (*report.Manifest, error)

// Recorder persists runs. Begin is called before the script starts.
type Recorder interface {
	Begin(ctx context.Context, job Job) (Finish, error)
}

// ReportRecorder only renders report artifacts.
type ReportRecorder struct {
	renderer *report.Renderer
}

// NewReportRecorder creates a recorder that writes artifacts through renderer.
func NewReportRecorder(renderer *report.Renderer) *ReportRecorder {
	return &ReportRecorder{renderer: renderer}
}

func (r *ReportRecorder) Begin(ctx context.Context, job Job) (Finish, error) {
	return func(ctx context.Context, rep *interpreter.Report) (*report.Manifest, error) {
		return r.renderer.Render(ctx, rep)
	}, nil
}

// HistoryRecorder stores every run in the run history database, and its
// artifacts in blob storage when a renderer is configured.
type HistoryRecorder struct {
	runs      testrun.Store
	steps     testrun.StepStore
	artifacts testrun.ArtifactStore
	renderer  *report.Renderer
	logger    logger.Logger
}

// NewHistoryRecorder creates a new history recorder. renderer may be nil.
func NewHistoryRecorder(runs testrun.Store, steps testrun.StepStore, artifacts testrun.ArtifactStore, renderer *report.Renderer, log logger.Logger) *HistoryRecorder {
	return &HistoryRecorder{
		runs:      runs,
		steps:     steps,
		artifacts: artifacts,
		renderer:  renderer,
		logger:    log,
	}
}

// Begin creates the run row and marks it running.
func (h *HistoryRecorder) Begin(ctx context.Context, job Job) (Finish, error) {
	tr := &testrun.TestRun{
		ScriptName: job.Name,
		ScriptPath: job.Path,
	}
	if err := h.runs.Create(ctx, tr); err != nil {
		return nil, err
	}
	if err := h.runs.Start(ctx, tr.ID); err != nil {
		return nil, err
	}

	return func(ctx context.Context, rep *interpreter.Report) (*report.Manifest, error) {
		return h.finish(ctx, tr, rep)
	}, nil
}

func (h *HistoryRecorder) finish(ctx context.Context, tr *testrun.TestRun, rep *interpreter.Report) (*report.Manifest, error) {
	var errs []error

	steps := make([]*testrun.StepRecord, 0, len(rep.Statements))
	for i, s := range rep.Statements {
		steps = append(steps, &testrun.StepRecord{
			TestRunID:       tr.ID,
			StepIndex:       i,
			Text:            s.Text,
			Error:           s.Error,
			Skipped:         s.Skipped,
			ScreenshotCount: len(s.Screenshots),
		})
	}
	if err := h.steps.CreateBatch(ctx, steps); err != nil {
		errs = append(errs, fmt.Errorf("failed to store steps: %w", err))
	}

	var m *report.Manifest
	if h.renderer != nil {
		var err error
		if m, err = h.renderer.Render(ctx, rep); err != nil {
			errs = append(errs, err)
		} else if err := h.storeArtifacts(ctx, tr, m); err != nil {
			errs = append(errs, err)
		}
	}

	outcome := testrun.Outcome{
		Status:           testrun.StatusForReport(rep.ExitedEarly, rep.OutstandingError, rep.ErrorCount()),
		ExitedEarly:      rep.ExitedEarly,
		OutstandingError: rep.OutstandingError,
		StatementCount:   len(rep.Statements),
		ErrorCount:       rep.ErrorCount(),
		Notes:            rep.TerminalError,
	}
	if err := h.runs.Complete(ctx, tr.ID, outcome); err != nil {
		errs = append(errs, fmt.Errorf("failed to complete run: %w", err))
	} else if len(errs) > 0 {
		note := "recording incomplete: " + errors.Join(errs...).Error()
		if err := h.runs.Update(ctx, tr.ID, testrun.AppendNotes(note)); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		h.logger.Error(ctx, "run recorded with errors", map[string]interface{}{
			"test_run_id": tr.ID,
			"errors":      len(errs),
		})
	}
	return m, errors.Join(errs...)
}

func (h *HistoryRecorder) storeArtifacts(ctx context.Context, tr *testrun.TestRun, m *report.Manifest) error {
	kinds := make(map[string]testrun.ArtifactKind, len(m.Screenshots)+2)
	for _, p := range m.Screenshots {
		kinds[p] = testrun.ArtifactScreenshot
	}
	kinds[m.JSON] = testrun.ArtifactReportJSON
	kinds[m.HTML] = testrun.ArtifactReportHTML

	for _, p := range m.Paths() {
		a := &testrun.Artifact{
			TestRunID:   tr.ID,
			Kind:        kinds[p],
			Path:        p,
			ContentType: storage.ContentType(p),
			Size:        m.Sizes[p],
		}
		if err := h.artifacts.Create(ctx, a); err != nil {
			return fmt.Errorf("failed to store artifact %s: %w", p, err)
		}
	}
	return nil
}
