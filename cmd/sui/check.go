package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/hairizuanbinnoorazman/uiscript/parser"
	"github.com/hairizuanbinnoorazman/uiscript/runner"
	"github.com/spf13/cobra"
)

// ErrInvalidScripts is returned by check when any script did not parse.
var ErrInvalidScripts = errors.New("scripts have errors")

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [paths...]",
		Short: "Parse scripts without running them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.OutOrStdout(), args)
		},
	}
}

// runCheck prints one line per malformed script line, formatted as
// path:line: message.
func runCheck(w io.Writer, paths []string) error {
	jobs, err := runner.LoadJobs(paths, "")
	if err != nil {
		return err
	}

	bad := 0
	for _, job := range jobs {
		stmts, err := parser.ParseString(job.Source)
		if err == nil {
			fmt.Fprintf(w, "%s: ok (%d statements)\n", job.Path, len(stmts))
			continue
		}
		bad++

		var perrs parser.ParseErrors
		if !errors.As(err, &perrs) {
			fmt.Fprintf(w, "%s: %v\n", job.Path, err)
			continue
		}
		for _, pe := range perrs {
			if pe.Token != "" {
				fmt.Fprintf(w, "%s:%d: %s (at %s)\n", job.Path, pe.Line, pe.Message, pe.Token)
			} else {
				fmt.Fprintf(w, "%s:%d: %s\n", job.Path, pe.Line, pe.Message)
			}
		}
	}

	if bad > 0 {
		return fmt.Errorf("%w: %d of %d", ErrInvalidScripts, bad, len(jobs))
	}
	return nil
}
