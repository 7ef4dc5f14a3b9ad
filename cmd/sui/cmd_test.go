package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/hairizuanbinnoorazman/uiscript/logger"
	"github.com/hairizuanbinnoorazman/uiscript/testrun"
	"github.com/hairizuanbinnoorazman/uiscript/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loginPage = `<html><body>
<form>
  <label for="email">Email</label><input id="email" name="email">
  <button>Sign in</button>
</form>
</body></html>`

func newTestApp(t *testing.T) *app {
	t.Helper()

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	cfg.Interpreter.Backoff = nil
	cfg.Interpreter.CommandDelay = 0
	cfg.Interpreter.TypeSettle = 0
	cfg.Database.Path = filepath.Join(t.TempDir(), "history.db")

	return &app{cfg: cfg, logger: logger.NewTestLogger()}
}

func TestRunCheck(t *testing.T) {
	dir := t.TempDir()
	good := testutil.WriteFile(t, dir, "good.sui", "locate \"Email\" and type \"a@b.c\"\nlocate \"Sign in\" and click")

	var out bytes.Buffer
	require.NoError(t, runCheck(&out, []string{good}))
	assert.Contains(t, out.String(), good+": ok (2 statements)")

	bad := testutil.WriteFile(t, dir, "bad.sui", "refresh\nlocate \"open")
	out.Reset()
	err := runCheck(&out, []string{dir})
	assert.ErrorIs(t, err, ErrInvalidScripts)
	assert.Contains(t, out.String(), bad+":2: unterminated string literal")
	assert.Contains(t, out.String(), good+": ok")
}

func TestApp_Run(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	page := testutil.WriteFile(t, dir, "login.html", loginPage)
	script := testutil.WriteFile(t, dir, "scripts/login.sui", "locate \"Email\" and type \"<user>\"\nlocate \"Sign in\" and click\nscreenshot")
	table := testutil.WriteFile(t, dir, "users.csv", "user\nalice\nbob\n")

	a := newTestApp(t)
	var stdout, stderr bytes.Buffer
	err := a.run(ctx, &stdout, &stderr, []string{script}, runOptions{
		static:  true,
		data:    table,
		url:     page,
		workers: 1,
		record:  true,
		output:  filepath.Join(dir, "out"),
	})
	require.NoError(t, err, stderr.String())
	assert.Contains(t, stdout.String(), "2 run(s): 2 passed")
	assert.Contains(t, stdout.String(), "report: login-test-run-0/report.html")

	h, err := a.openHistory(ctx)
	require.NoError(t, err)
	defer h.Close()

	var list bytes.Buffer
	require.NoError(t, listHistory(ctx, &list, h.runs, historyOptions{limit: 10}))
	assert.Contains(t, list.String(), "login-test-run-0")
	assert.Contains(t, list.String(), "login-test-run-1")

	runs, err := h.runs.List(ctx, testrun.Filter{ScriptName: "login-test-run-1"}, 1, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, testrun.StatusPassed, runs[0].Status)

	var show bytes.Buffer
	require.NoError(t, showRun(ctx, &show, h.runs, h.steps, runs[0].ID, false))
	assert.Contains(t, show.String(), `type "bob"`)
}

func TestApp_RunFailureExitsNonZero(t *testing.T) {
	dir := t.TempDir()
	page := testutil.WriteFile(t, dir, "login.html", loginPage)
	script := testutil.WriteFile(t, dir, "missing.sui", `locate "Nowhere" and click`)

	a := newTestApp(t)
	var stdout, stderr bytes.Buffer
	err := a.run(context.Background(), &stdout, &stderr, []string{script}, runOptions{
		static:  true,
		url:     page,
		workers: 1,
	})

	assert.ErrorIs(t, err, ErrRunsFailed)
	assert.Contains(t, stdout.String(), "1 run(s): 1 failed")
}

func TestListHistory_InvalidStatus(t *testing.T) {
	a := newTestApp(t)
	h, err := a.openHistory(context.Background())
	require.NoError(t, err)
	defer h.Close()

	err = listHistory(context.Background(), &bytes.Buffer{}, h.runs, historyOptions{limit: 5, status: "exploded"})
	assert.ErrorIs(t, err, testrun.ErrInvalidStatus)
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "sui dev")
}
