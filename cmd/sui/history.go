package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/hairizuanbinnoorazman/uiscript/testrun"
	"github.com/spf13/cobra"
)

type historyOptions struct {
	limit  int
	offset int
	script string
	status string
	json   bool
}

func newHistoryCmd(a *app) *cobra.Command {
	var opts historyOptions

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer h.Close()
			return listHistory(cmd.Context(), cmd.OutOrStdout(), h.runs, opts)
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.json, "json", false, "output as JSON")
	cmd.Flags().IntVar(&opts.limit, "limit", 20, "maximum number of runs")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "runs to skip")
	cmd.Flags().StringVar(&opts.script, "script", "", "only runs of this script")
	cmd.Flags().StringVar(&opts.status, "status", "", "only runs with this status")

	showCmd := &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show the statements of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run ID: %w", err)
			}
			h, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer h.Close()
			return showRun(cmd.Context(), cmd.OutOrStdout(), h.runs, h.steps, id, opts.json)
		},
	}
	cmd.AddCommand(showCmd)

	return cmd
}

func listHistory(ctx context.Context, w io.Writer, runs testrun.Store, opts historyOptions) error {
	filter := testrun.Filter{
		ScriptName: opts.script,
		Status:     testrun.Status(opts.status),
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return fmt.Errorf("%w: %q", testrun.ErrInvalidStatus, opts.status)
	}

	list, err := runs.List(ctx, filter, opts.limit, opts.offset)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if opts.json {
		return printJSON(w, list)
	}

	rows := make([][]string, 0, len(list))
	for _, tr := range list {
		rows = append(rows, []string{
			tr.ID.String(),
			tr.ScriptName,
			string(tr.Status),
			strconv.Itoa(tr.ErrorCount) + "/" + strconv.Itoa(tr.StatementCount),
			formatTime(tr.StartedAt),
			formatDuration(tr.Duration()),
		})
	}
	printTable(w, []string{"ID", "SCRIPT", "STATUS", "ERRORS", "STARTED", "DURATION"}, rows)
	return nil
}

func showRun(ctx context.Context, w io.Writer, runs testrun.Store, steps testrun.StepStore, id uuid.UUID, asJSON bool) error {
	tr, err := runs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	records, err := steps.ListByTestRun(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list steps: %w", err)
	}

	if asJSON {
		return printJSON(w, struct {
			*testrun.TestRun
			Steps []*testrun.StepRecord `json:"steps"`
		}{tr, records})
	}

	fmt.Fprintf(w, "%s  %s  %s\n", tr.ScriptName, tr.Status, formatDuration(tr.Duration()))
	if tr.Notes != "" {
		fmt.Fprintf(w, "notes: %s\n", tr.Notes)
	}

	rows := make([][]string, 0, len(records))
	for _, s := range records {
		result := "ok"
		switch {
		case s.Skipped:
			result = "skip"
		case s.Failed():
			result = s.Error
		}
		rows = append(rows, []string{strconv.Itoa(s.StepIndex + 1), s.Text, result})
	}
	printTable(w, []string{"#", "STATEMENT", "RESULT"}, rows)
	return nil
}
