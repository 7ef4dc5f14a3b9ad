package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/hairizuanbinnoorazman/uiscript/interpreter"
	"github.com/hairizuanbinnoorazman/uiscript/testrun"
)

type palette struct {
	ok, bad, warn, faint, bold lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	return palette{
		ok:    r.NewStyle().Foreground(lipgloss.Color("2")),
		bad:   r.NewStyle().Foreground(lipgloss.Color("1")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("3")),
		faint: r.NewStyle().Faint(true),
		bold:  r.NewStyle().Bold(true),
	}
}

func (p palette) status(s testrun.Status) string {
	label := strings.ToUpper(string(s))
	switch s {
	case testrun.StatusPassed:
		return p.ok.Render(label)
	case testrun.StatusRecovered:
		return p.warn.Render(label)
	default:
		return p.bad.Render(label)
	}
}

// PrintSummary writes one block per report and a closing tally. Colour is
// only emitted when w is a terminal.
func PrintSummary(w io.Writer, reports ...*interpreter.Report) {
	p := newPalette(w)
	tally := make(map[testrun.Status]int)

	for _, rep := range reports {
		status := testrun.StatusForReport(rep.ExitedEarly, rep.OutstandingError, rep.ErrorCount())
		tally[status]++

		fmt.Fprintf(w, "%s  %s  %s\n", p.status(status), p.bold.Render(rep.Name),
			p.faint.Render(rep.Duration().Round(time.Millisecond).String()))

		for _, s := range rep.Statements {
			switch {
			case s.Skipped:
				fmt.Fprintln(w, "  "+p.faint.Render("skip")+"  "+p.faint.Render(s.Text))
			case s.Error != "":
				fmt.Fprintln(w, "  "+p.bad.Render("err ")+"  "+s.Text)
				fmt.Fprintln(w, "        "+p.faint.Render(s.Error))
			default:
				fmt.Fprintln(w, "  "+p.ok.Render("ok  ")+"  "+s.Text)
			}
		}
		if rep.TerminalError != "" {
			fmt.Fprintln(w, "  "+p.bad.Render("stopped: "+rep.TerminalError))
		}
	}

	parts := make([]string, 0, 4)
	for _, s := range []testrun.Status{testrun.StatusPassed, testrun.StatusRecovered, testrun.StatusFailed, testrun.StatusAborted} {
		if tally[s] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", tally[s], s))
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "nothing ran")
	}
	fmt.Fprintf(w, "%d run(s): %s\n", len(reports), strings.Join(parts, ", "))
}
