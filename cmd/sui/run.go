package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hairizuanbinnoorazman/uiscript/report"
	"github.com/hairizuanbinnoorazman/uiscript/runner"
	"github.com/hairizuanbinnoorazman/uiscript/storage"
	"github.com/spf13/cobra"
)

// ErrRunsFailed makes the process exit non-zero when a script failed.
var ErrRunsFailed = errors.New("runs failed")

type runOptions struct {
	static    bool
	data      string
	url       string
	workers   int
	headless  bool
	highlight bool
	record    bool
	output    string
}

func newRunCmd(a *app) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Run scripts",
		Long:  "Run every script file given, or every .sui file in the given directories.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("headless") {
				a.cfg.Browser.Headless = opts.headless
			}
			if cmd.Flags().Changed("highlight") {
				a.cfg.Interpreter.Highlight = opts.highlight
			}
			if !cmd.Flags().Changed("workers") {
				opts.workers = a.cfg.Runner.Workers
			}
			if !cmd.Flags().Changed("record") {
				opts.record = a.cfg.Runner.Record
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.run(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.static, "static", false, "use the offline HTML driver instead of a browser")
	cmd.Flags().StringVar(&opts.data, "data", "", "CSV data table; each row runs every script once")
	cmd.Flags().StringVar(&opts.url, "url", "", "page to open before each script starts")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 1, "scripts to run at the same time")
	cmd.Flags().BoolVar(&opts.headless, "headless", true, "run the browser without a window")
	cmd.Flags().BoolVar(&opts.highlight, "highlight", false, "draw a border around each located element")
	cmd.Flags().BoolVar(&opts.record, "record", false, "store runs in the history database")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "directory for screenshots and reports")

	return cmd
}

func (a *app) run(ctx context.Context, stdout, stderr io.Writer, paths []string, opts runOptions) error {
	jobs, err := runner.LoadJobs(paths, opts.data)
	if err != nil {
		return err
	}
	if opts.url != "" {
		jobs = runner.WithStartURL(jobs, opts.url)
	}

	runnerOpts := []runner.Option{
		runner.WithWorkers(opts.workers),
		runner.WithLogger(a.logger),
		runner.WithInterpreterOptions(a.cfg.interpreterOptions()...),
	}

	var renderer *report.Renderer
	if opts.output != "" || opts.record {
		storageCfg := a.cfg.storageConfig()
		if opts.output != "" {
			storageCfg.Type = "local"
			storageCfg.BaseDir = opts.output
		}
		blob, err := storage.New(ctx, storageCfg)
		if err != nil {
			return err
		}
		renderer = report.NewRenderer(blob, a.logger)
	}

	switch {
	case opts.record:
		h, err := a.openHistory(ctx)
		if err != nil {
			return err
		}
		defer h.Close()
		runnerOpts = append(runnerOpts, runner.WithRecorder(
			runner.NewHistoryRecorder(h.runs, h.steps, h.artifacts, renderer, a.logger)))
	case renderer != nil:
		runnerOpts = append(runnerOpts, runner.WithRecorder(runner.NewReportRecorder(renderer)))
	}

	a.logger.Info(ctx, "running scripts", map[string]interface{}{
		"jobs":    len(jobs),
		"workers": opts.workers,
		"static":  opts.static,
	})

	r := runner.New(a.driverFactory(opts.static), runnerOpts...)
	results := r.Run(ctx, jobs)

	for _, res := range results {
		switch {
		case res.ParseError != nil:
			fmt.Fprintf(stderr, "%s: script did not parse\n%v\n", res.Job.Name, res.ParseError)
		case res.Err != nil:
			fmt.Fprintf(stderr, "%s: %v\n", res.Job.Name, res.Err)
		}
	}

	report.PrintSummary(stdout, runner.Reports(results)...)

	for _, res := range results {
		if res.Manifest != nil {
			fmt.Fprintf(stdout, "report: %s\n", res.Manifest.HTML)
		}
	}

	if n := runner.Failed(results); n > 0 {
		return fmt.Errorf("%w: %d of %d", ErrRunsFailed, n, len(results))
	}
	return nil
}
