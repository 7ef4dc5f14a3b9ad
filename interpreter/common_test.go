package interpreter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hairizuanbinnoorazman/uiscript/browser"
	"github.com/hairizuanbinnoorazman/uiscript/browser/staticdom"
	"github.com/hairizuanbinnoorazman/uiscript/logger"
	"github.com/hairizuanbinnoorazman/uiscript/parser"
	"github.com/stretchr/testify/require"
)

// newTestInterpreter creates an interpreter over a static page with every
// pause disabled.
func newTestInterpreter(t *testing.T, page string, opts ...Option) (*Interpreter, *staticdom.Driver, *logger.TestLogger) {
	t.Helper()

	d, err := staticdom.NewFromString(page)
	require.NoError(t, err)

	log := logger.NewTestLogger()
	base := []Option{
		WithLogger(log),
		WithBackoff([]time.Duration{0}),
		WithCommandDelay(0),
		WithTypeSettle(0),
	}
	return New(d, append(base, opts...)...), d, log
}

func mustParse(t *testing.T, src string) []parser.Stmt {
	t.Helper()

	stmts, err := parser.ParseString(src)
	require.NoError(t, err)
	return stmts
}

func runScript(t *testing.T, in *Interpreter, src string) *Report {
	t.Helper()
	return in.Run(context.Background(), t.Name(), mustParse(t, src))
}

func writePage(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func statementTexts(rep *Report) []string {
	out := make([]string, len(rep.Statements))
	for i, s := range rep.Statements {
		out[i] = s.Text
	}
	return out
}

func failedStatements(rep *Report) []string {
	var out []string
	for _, s := range rep.Statements {
		if s.Error != "" {
			out = append(out, s.Text)
		}
	}
	return out
}

func attribute(t *testing.T, el browser.Element, name string) string {
	t.Helper()

	v, _, err := el.Attribute(context.Background(), name)
	require.NoError(t, err)
	return v
}

func findOne(t *testing.T, d browser.Driver, by browser.By) browser.Element {
	t.Helper()

	els, err := d.FindAll(context.Background(), by)
	require.NoError(t, err)
	require.Len(t, els, 1)
	return els[0]
}

func tagOf(t *testing.T, el browser.Element) string {
	t.Helper()

	tag, err := el.TagName(context.Background())
	require.NoError(t, err)
	return tag
}
