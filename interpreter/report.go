package interpreter

import "time"

// ExecutedStmt is the outcome of one attempted top-level statement.
type ExecutedStmt struct {
	Text        string   `json:"text"`
	Error       string   `json:"error,omitempty"`
	Skipped     bool     `json:"skipped,omitempty"`
	Screenshots [][]byte `json:"-"`
}

// Report is the result of one script run.
type Report struct {
	Name       string         `json:"name"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Statements []ExecutedStmt `json:"statements"`

	// ExitedEarly is set when a terminal failure stopped the run: a second
	// failure after try-again, a failing catch-error handler or cancellation.
	ExitedEarly   bool   `json:"exited_early"`
	TerminalError string `json:"terminal_error,omitempty"`

	// OutstandingError is set when the script ran to the end with an error
	// that no catch-error line handled.
	OutstandingError bool `json:"outstanding_error"`
}

// Passed reports whether the run finished without an unhandled failure.
func (r *Report) Passed() bool {
	return !r.ExitedEarly && !r.OutstandingError
}

// ErrorCount returns how many recorded statements failed.
func (r *Report) ErrorCount() int {
	n := 0
	for _, s := range r.Statements {
		if s.Error != "" {
			n++
		}
	}
	return n
}

// ScreenshotCount returns the number of screenshots taken during the run.
func (r *Report) ScreenshotCount() int {
	n := 0
	for _, s := range r.Statements {
		n += len(s.Screenshots)
	}
	return n
}

// Duration is the wall time of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
