// Package interpreter executes parsed scripts against a browser driver.
//
// Execution is a two-mode state machine. In Normal mode statements run in
// order. A failing statement switches to ErrorSync, where statements are
// only remembered until a catch-error line runs its recovery commands and
// returns to Normal. try-again replays every statement since the previous
// catch-error line once; a second failure during the replay stops the run.
package interpreter

import (
	"context"
	"fmt"
	"time"

	"github.com/hairizuanbinnoorazman/uiscript/browser"
	"github.com/hairizuanbinnoorazman/uiscript/environment"
	"github.com/hairizuanbinnoorazman/uiscript/logger"
	"github.com/hairizuanbinnoorazman/uiscript/parser"
)

// Mode is the interpreter's error-handling state.
type Mode uint8

const (
	ModeNormal Mode = iota
	ModeErrorSync
)

func (m Mode) String() string {
	if m == ModeErrorSync {
		return "error-sync"
	}
	return "normal"
}

// DefaultBackoff is the pause before each attempt of the locator chain.
var DefaultBackoff = []time.Duration{
	0,
	5 * time.Second,
	10 * time.Second,
	20 * time.Second,
	30 * time.Second,
}

const (
	DefaultCommandDelay  = time.Second
	DefaultTypeSettle    = time.Second
	DefaultMaxScopeClimb = 10
	DefaultLabelDepth    = 5
)

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the logger for execution events.
func WithLogger(l logger.Logger) Option {
	return func(in *Interpreter) { in.logger = l }
}

// WithEnvironment shares a pre-populated variable environment.
func WithEnvironment(env *environment.Environment) Option {
	return func(in *Interpreter) { in.env = env }
}

// WithBackoff sets the pauses before each locate attempt. The number of
// entries is the number of attempts.
func WithBackoff(waits []time.Duration) Option {
	return func(in *Interpreter) {
		if len(waits) == 0 {
			waits = []time.Duration{0}
		}
		in.backoff = waits
	}
}

// WithCommandDelay sets the pause before every command.
func WithCommandDelay(d time.Duration) Option {
	return func(in *Interpreter) { in.commandDelay = d }
}

// WithTypeSettle sets the pause between clicking an element and typing into
// whatever became active.
func WithTypeSettle(d time.Duration) Option {
	return func(in *Interpreter) { in.typeSettle = d }
}

// WithMaxScopeClimb bounds how many ancestors of an "under" base are tried.
func WithMaxScopeClimb(n int) Option {
	return func(in *Interpreter) { in.maxScopeClimb = n }
}

// WithLabelDepth bounds the ancestor search when redirecting a label to its control.
func WithLabelDepth(n int) Option {
	return func(in *Interpreter) { in.labelDepth = n }
}

// WithHighlight draws a border around each located element and removes it
// from the previously located one.
func WithHighlight(on bool) Option {
	return func(in *Interpreter) { in.highlight = on }
}

// WithSleep replaces the pause implementation.
func WithSleep(fn SleepFunc) Option {
	return func(in *Interpreter) { in.sleep = fn }
}

// instruction is an entry of the pending stack: either a parsed statement
// or the marker that ends a retried block.
type instruction struct {
	stmt   parser.Stmt
	resume bool
}

// Interpreter runs statements for one browser session. It is not safe for
// concurrent use.
type Interpreter struct {
	driver browser.Driver
	env    *environment.Environment
	logger logger.Logger

	backoff       []time.Duration
	commandDelay  time.Duration
	typeSettle    time.Duration
	maxScopeClimb int
	labelDepth    int
	highlight     bool
	sleep         SleepFunc

	pending     []instruction
	mode        Mode
	triedAgain  bool
	replay      []parser.Stmt
	focused     browser.Element
	scope       browser.Element
	lastLocator string
	highlighted browser.Element
	screenshots [][]byte
}

// New creates an Interpreter that drives d.
func New(d browser.Driver, opts ...Option) *Interpreter {
	in := &Interpreter{
		driver:        d,
		env:           environment.New(),
		backoff:       DefaultBackoff,
		commandDelay:  DefaultCommandDelay,
		typeSettle:    DefaultTypeSettle,
		maxScopeClimb: DefaultMaxScopeClimb,
		labelDepth:    DefaultLabelDepth,
		sleep:         sleepContext,
	}
	for _, opt := range opts {
		opt(in)
	}
	if in.logger == nil {
		in.logger = logger.NewLogrusLogger("info")
	}
	return in
}

// Environment returns the variables of this session.
func (in *Interpreter) Environment() *environment.Environment {
	return in.env
}

// Mode returns the current error-handling mode.
func (in *Interpreter) Mode() Mode {
	return in.mode
}

// TriedAgain reports whether a try-again block is in progress.
func (in *Interpreter) TriedAgain() bool {
	return in.triedAgain
}

// Run executes stmts and returns the report. Variables persist across runs
// of the same Interpreter; everything else starts fresh.
func (in *Interpreter) Run(ctx context.Context, name string, stmts []parser.Stmt) *Report {
	ctx = logger.ContextWithRun(ctx, name)
	in.reset()

	rep := &Report{Name: name, StartedAt: time.Now()}
	for i := len(stmts) - 1; i >= 0; i-- {
		in.push(instruction{stmt: stmts[i]})
	}

	in.logger.Info(ctx, "script started", map[string]interface{}{
		"statements": len(stmts),
	})

	for len(in.pending) > 0 {
		if err := ctx.Err(); err != nil {
			in.abort(ctx, rep, err)
			break
		}

		ins := in.pop()
		if ins.resume {
			in.triedAgain = false
			in.replay = nil
			in.logger.Debug(ctx, "retried block completed", nil)
			continue
		}

		if err := in.step(ctx, rep, ins.stmt); err != nil {
			in.abort(ctx, rep, err)
			break
		}
	}

	if !rep.ExitedEarly {
		if err := ctx.Err(); err != nil {
			in.abort(ctx, rep, err)
		}
	}
	rep.OutstandingError = !rep.ExitedEarly && in.mode == ModeErrorSync
	rep.FinishedAt = time.Now()

	in.logger.Info(ctx, "script finished", map[string]interface{}{
		"exited_early":      rep.ExitedEarly,
		"outstanding_error": rep.OutstandingError,
		"errors":            rep.ErrorCount(),
		"duration_ms":       rep.Duration().Milliseconds(),
	})
	return rep
}

func (in *Interpreter) reset() {
	in.pending = nil
	in.mode = ModeNormal
	in.triedAgain = false
	in.replay = nil
	in.focused = nil
	in.scope = nil
	in.lastLocator = ""
	in.highlighted = nil
	in.screenshots = nil
}

func (in *Interpreter) abort(ctx context.Context, rep *Report, err error) {
	rep.ExitedEarly = true
	rep.TerminalError = err.Error()
	in.logger.Error(ctx, "script stopped", map[string]interface{}{
		"error": err.Error(),
	})
}

func (in *Interpreter) push(ins instruction) {
	in.pending = append(in.pending, ins)
}

func (in *Interpreter) pop() instruction {
	last := len(in.pending) - 1
	ins := in.pending[last]
	in.pending = in.pending[:last]
	return ins
}

// step runs one statement. A non-nil return is terminal.
func (in *Interpreter) step(ctx context.Context, rep *Report, stmt parser.Stmt) error {
	catch, isCatch := stmt.(parser.CatchErrStmt)
	if !isCatch {
		in.replay = append(in.replay, stmt)
	}

	if in.mode == ModeErrorSync {
		if !isCatch {
			in.logger.Debug(ctx, "skipping statement until catch-error", map[string]interface{}{
				"statement": stmt.String(),
			})
			return nil
		}

		in.mode = ModeNormal
		err := in.execCmdStmt(ctx, catch.Body)
		// A try-again in the body has already taken the buffer; anything
		// else starts a new block here.
		in.replay = nil
		in.record(rep, stmt, err)
		if err != nil {
			return fmt.Errorf("catch-error handler failed: %w", err)
		}
		return nil
	}

	var err error
	switch s := stmt.(type) {
	case parser.CatchErrStmt:
		// No pending error: the recovery line is dead code for this run.
		in.replay = nil
		in.recordSkipped(rep, stmt)
		return nil
	case parser.CmdStmt:
		err = in.execCmdStmt(ctx, s)
	case parser.IfStmt:
		err = in.execIf(ctx, s)
	case parser.SetVariableStmt:
		in.env.Set(s.Name, s.Value)
	case parser.CommentStmt:
	case parser.UnderStmt:
		err = in.execUnder(ctx, s)
	case parser.UnderActiveElementStmt:
		err = in.execUnderActiveElement(ctx, s)
	default:
		err = fmt.Errorf("%w: %T", ErrUnsupportedStatement, stmt)
	}

	in.record(rep, stmt, err)
	if err == nil {
		return nil
	}

	if in.triedAgain {
		return fmt.Errorf("failed again after try-again: %w", err)
	}

	in.mode = ModeErrorSync
	in.logger.Warn(ctx, "statement failed", map[string]interface{}{
		"statement": stmt.String(),
		"error":     err.Error(),
	})
	return nil
}

func (in *Interpreter) record(rep *Report, stmt parser.Stmt, err error) {
	rec := ExecutedStmt{Text: stmt.String(), Screenshots: in.screenshots}
	if err != nil {
		rec.Error = err.Error()
	}
	in.screenshots = nil
	rep.Statements = append(rep.Statements, rec)
}

func (in *Interpreter) recordSkipped(rep *Report, stmt parser.Stmt) {
	rep.Statements = append(rep.Statements, ExecutedStmt{Text: stmt.String(), Skipped: true})
}

func (in *Interpreter) execCmdStmt(ctx context.Context, cs parser.CmdStmt) error {
	for _, c := range cs.Cmds() {
		if err := in.execCmd(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) execIf(ctx context.Context, s parser.IfStmt) error {
	if err := in.execCmd(ctx, s.Condition); err != nil {
		in.logger.Debug(ctx, "if condition failed, skipping branch", map[string]interface{}{
			"condition": s.Condition.String(),
			"error":     err.Error(),
		})
		return nil
	}
	return in.execCmdStmt(ctx, s.Then)
}

func (in *Interpreter) execUnder(ctx context.Context, s parser.UnderStmt) error {
	text, err := in.env.Resolve(s.Base)
	if err != nil {
		return err
	}
	base, err := in.locate(ctx, text, true)
	if err != nil {
		return err
	}

	in.scope = base
	defer func() { in.scope = nil }()
	return in.execCmdStmt(ctx, s.Body)
}

func (in *Interpreter) execUnderActiveElement(ctx context.Context, s parser.UnderActiveElementStmt) error {
	base, err := in.driver.ActiveElement(ctx)
	if err != nil {
		return err
	}

	in.scope = base
	defer func() { in.scope = nil }()
	return in.execCmdStmt(ctx, s.Body)
}

// tryAgain schedules every statement since the last catch-error line to run
// again, followed by the marker that clears the retry flag.
func (in *Interpreter) tryAgain(ctx context.Context) error {
	if in.triedAgain {
		return ErrAlreadyTriedAgain
	}
	in.triedAgain = true

	in.push(instruction{resume: true})
	for i := len(in.replay) - 1; i >= 0; i-- {
		in.push(instruction{stmt: in.replay[i]})
	}

	in.logger.Info(ctx, "trying again", map[string]interface{}{
		"statements": len(in.replay),
	})
	in.replay = nil
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
