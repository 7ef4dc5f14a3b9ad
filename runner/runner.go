// Package runner executes many scripts at once. Every job gets its own
// browser session and interpreter, so nothing is shared between them.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hairizuanbinnoorazman/uiscript/browser"
	"github.com/hairizuanbinnoorazman/uiscript/environment"
	"github.com/hairizuanbinnoorazman/uiscript/interpreter"
	"github.com/hairizuanbinnoorazman/uiscript/logger"
	"github.com/hairizuanbinnoorazman/uiscript/parser"
	"github.com/hairizuanbinnoorazman/uiscript/report"
	"github.com/hairizuanbinnoorazman/uiscript/testrun"
)

// ErrNotRun is recorded for jobs the pool never reached because the
// context ended first.
var ErrNotRun = errors.New("job was not run")

// DriverFactory opens a fresh browser session.
type DriverFactory func(ctx context.Context) (browser.Driver, error)

// Job is one script to execute.
type Job struct {
	Name     string
	Path     string
	Source   string
	StartURL string
	// Values are defined as variables before the script starts.
	Values map[string]string
}

// Result is the outcome of one job.
type Result struct {
	Job    Job
	Status testrun.Status
	Report *interpreter.Report
	// Manifest is set when a recorder rendered artifacts.
	Manifest *report.Manifest
	// ParseError is set when the script never ran because it did not parse.
	ParseError error
	// Err covers session, navigation and recording failures.
	Err      error
	Duration time.Duration
}

// Failed reports whether the job should fail the overall run.
func (r Result) Failed() bool {
	return r.ParseError != nil || r.Err != nil || !r.Status.IsSuccess()
}

// Runner executes jobs on a bounded worker pool.
type Runner struct {
	factory  DriverFactory
	workers  int
	opts     []interpreter.Option
	recorder Recorder
	logger   logger.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers bounds how many scripts run at the same time.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithInterpreterOptions are applied to every interpreter the runner creates.
func WithInterpreterOptions(opts ...interpreter.Option) Option {
	return func(r *Runner) { r.opts = append(r.opts, opts...) }
}

// WithRecorder persists every finished job.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

func WithLogger(l logger.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// New creates a runner that opens sessions through factory.
func New(factory DriverFactory, opts ...Option) *Runner {
	r := &Runner{
		factory: factory,
		workers: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.NewLogrusLogger("info")
	}
	return r
}

// Run executes jobs and returns their results in input order.
func (r *Runner) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	done := make([]bool, len(jobs))

	pool := NewWorkerPool(r.workers, r.logger)
	pool.Run(ctx, len(jobs), func(ctx context.Context, i int) {
		results[i] = r.runOne(ctx, jobs[i])
		done[i] = true
	})

	for i := range jobs {
		if !done[i] {
			results[i] = Result{Job: jobs[i], Status: testrun.StatusAborted, Err: ErrNotRun}
		}
	}
	return results
}

func (r *Runner) runOne(ctx context.Context, job Job) (res Result) {
	ctx = logger.ContextWithRun(ctx, job.Name)
	start := time.Now()
	res = Result{Job: job, Status: testrun.StatusAborted}
	defer func() { res.Duration = time.Since(start) }()

	stmts, err := parser.ParseString(job.Source)
	if err != nil {
		r.logger.Error(ctx, "script did not parse", map[string]interface{}{
			"path":  job.Path,
			"error": err.Error(),
		})
		res.Status = testrun.StatusFailed
		res.ParseError = err
		return res
	}

	var finish Finish
	if r.recorder != nil {
		if finish, err = r.recorder.Begin(ctx, job); err != nil {
			res.Err = fmt.Errorf("failed to record run start: %w", err)
			return res
		}
	}

	rep := r.execute(ctx, job, stmts)
	res.Report = rep
	res.Status = testrun.StatusForReport(rep.ExitedEarly, rep.OutstandingError, rep.ErrorCount())

	if finish != nil {
		// Record even when the run was cancelled.
		m, err := finish(context.WithoutCancel(ctx), rep)
		res.Manifest = m
		if err != nil {
			res.Err = fmt.Errorf("failed to record run: %w", err)
		}
	}

	r.logger.Info(ctx, "job finished", map[string]interface{}{
		"status": res.Status,
		"errors": rep.ErrorCount(),
	})
	return res
}

// execute opens a session, runs the script and closes the session. Session
// failures become a report that exited early.
func (r *Runner) execute(ctx context.Context, job Job, stmts []parser.Stmt) *interpreter.Report {
	aborted := func(err error) *interpreter.Report {
		now := time.Now()
		return &interpreter.Report{
			Name:          job.Name,
			StartedAt:     now,
			FinishedAt:    now,
			ExitedEarly:   true,
			TerminalError: err.Error(),
		}
	}

	driver, err := r.factory(ctx)
	if err != nil {
		r.logger.Error(ctx, "failed to open browser session", map[string]interface{}{
			"error": err.Error(),
		})
		return aborted(fmt.Errorf("failed to open browser session: %w", err))
	}
	defer func() {
		if err := driver.Close(); err != nil {
			r.logger.Warn(ctx, "failed to close browser session", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	if job.StartURL != "" {
		if err := driver.Navigate(ctx, job.StartURL); err != nil {
			return aborted(fmt.Errorf("failed to open start url: %w", err))
		}
	}

	opts := append([]interpreter.Option{interpreter.WithLogger(r.logger)}, r.opts...)
	if len(job.Values) > 0 {
		env := environment.New()
		for k, v := range job.Values {
			env.Set(k, v)
		}
		opts = append(opts, interpreter.WithEnvironment(env))
	}
	return interpreter.New(driver, opts...).Run(ctx, job.Name, stmts)
}

// Failed counts failed results.
func Failed(results []Result) int {
	n := 0
	for _, res := range results {
		if res.Failed() {
			n++
		}
	}
	return n
}

// Reports returns the reports of every job that ran.
func Reports(results []Result) []*interpreter.Report {
	var out []*interpreter.Report
	for _, res := range results {
		if res.Report != nil {
			out = append(out, res.Report)
		}
	}
	return out
}
