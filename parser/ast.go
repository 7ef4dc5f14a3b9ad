package parser

import "strings"

// ParamKind distinguishes literal arguments from variable references.
type ParamKind uint8

const (
	ParamLiteral ParamKind = iota
	ParamVariable
)

// CmdParam is a command argument. Variables are resolved at execution
// time, never at parse time.
type CmdParam struct {
	Kind  ParamKind
	Value string
}

// Literal builds a literal parameter.
func Literal(v string) CmdParam { return CmdParam{Kind: ParamLiteral, Value: v} }

// Var builds a variable reference parameter.
func Var(name string) CmdParam { return CmdParam{Kind: ParamVariable, Value: name} }

func (p CmdParam) String() string {
	if p.Kind == ParamVariable {
		return p.Value
	}
	return `"` + p.Value + `"`
}

// Cmd is one primitive browser action.
type Cmd interface {
	String() string
	cmd()
}

type (
	Locate         struct{ Param CmdParam }
	LocateNoScroll struct{ Param CmdParam }
	Type           struct{ Param CmdParam }
	Click          struct{}
	Refresh        struct{}
	TryAgain       struct{}
	Screenshot     struct{}
	ReadTo         struct{ Variable string }
	URL            struct{ Param CmdParam }
	Press          struct{ Param CmdParam }
	Chill          struct{ Param CmdParam }
	Select         struct{ Param CmdParam }
	DragTo         struct{ Param CmdParam }
	Upload         struct{ Param CmdParam }
	AcceptAlert    struct{}
	DismissAlert   struct{}
)

func (Locate) cmd()         {}
func (LocateNoScroll) cmd() {}
func (Type) cmd()           {}
func (Click) cmd()          {}
func (Refresh) cmd()        {}
func (TryAgain) cmd()       {}
func (Screenshot) cmd()     {}
func (ReadTo) cmd()         {}
func (URL) cmd()            {}
func (Press) cmd()          {}
func (Chill) cmd()          {}
func (Select) cmd()         {}
func (DragTo) cmd()         {}
func (Upload) cmd()         {}
func (AcceptAlert) cmd()    {}
func (DismissAlert) cmd()   {}

func (c Locate) String() string         { return "locate " + c.Param.String() }
func (c LocateNoScroll) String() string { return "locate-no-scroll " + c.Param.String() }
func (c Type) String() string           { return "type " + c.Param.String() }
func (Click) String() string            { return "click" }
func (Refresh) String() string          { return "refresh" }
func (TryAgain) String() string         { return "try-again" }
func (Screenshot) String() string       { return "screenshot" }
func (c ReadTo) String() string         { return "read-to " + c.Variable }
func (c URL) String() string            { return "url " + c.Param.String() }
func (c Press) String() string          { return "press " + c.Param.String() }
func (c Chill) String() string          { return "chill " + c.Param.String() }
func (c Select) String() string         { return "select " + c.Param.String() }
func (c DragTo) String() string         { return "drag-to " + c.Param.String() }
func (c Upload) String() string         { return "upload " + c.Param.String() }
func (AcceptAlert) String() string      { return "accept-alert" }
func (DismissAlert) String() string     { return "dismiss-alert" }

// Stmt is one parsed script line.
type Stmt interface {
	String() string
	stmt()
}

// CmdStmt is a non-empty chain of commands joined by "and".
// Execution stops at the first failing command.
type CmdStmt struct {
	Head Cmd
	Tail *CmdStmt
}

// Chain builds a CmdStmt from one or more commands.
func Chain(first Cmd, rest ...Cmd) CmdStmt {
	cs := CmdStmt{Head: first}
	if len(rest) > 0 {
		tail := Chain(rest[0], rest[1:]...)
		cs.Tail = &tail
	}
	return cs
}

// Cmds flattens the chain.
func (cs CmdStmt) Cmds() []Cmd {
	out := []Cmd{cs.Head}
	for t := cs.Tail; t != nil; t = t.Tail {
		out = append(out, t.Head)
	}
	return out
}

func (cs CmdStmt) String() string {
	parts := make([]string, 0, 2)
	for _, c := range cs.Cmds() {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, " and ")
}

// IfStmt runs Then only when Condition succeeds. A failing condition is
// swallowed.
type IfStmt struct {
	Condition Cmd
	Then      CmdStmt
}

// SetVariableStmt is `save "value" as name`.
type SetVariableStmt struct {
	Name  string
	Value string
}

// CommentStmt holds a full `#` line.
type CommentStmt struct {
	Text string
}

// CatchErrStmt is a recovery line.
type CatchErrStmt struct {
	Body CmdStmt
}

// UnderStmt restricts element lookups in Body to descendants of the
// element located by Base.
type UnderStmt struct {
	Base CmdParam
	Body CmdStmt
}

// UnderActiveElementStmt scopes Body to the browser's active element.
type UnderActiveElementStmt struct {
	Body CmdStmt
}

func (CmdStmt) stmt()                {}
func (IfStmt) stmt()                 {}
func (SetVariableStmt) stmt()        {}
func (CommentStmt) stmt()            {}
func (CatchErrStmt) stmt()           {}
func (UnderStmt) stmt()              {}
func (UnderActiveElementStmt) stmt() {}

func (s IfStmt) String() string {
	return "if " + s.Condition.String() + " then " + s.Then.String()
}

func (s SetVariableStmt) String() string {
	return `save "` + s.Value + `" as ` + s.Name
}

func (s CommentStmt) String() string { return s.Text }

func (s CatchErrStmt) String() string { return "catch-error: " + s.Body.String() }

func (s UnderStmt) String() string {
	return "under " + s.Base.String() + " " + s.Body.String()
}

func (s UnderActiveElementStmt) String() string {
	return "under-active-element " + s.Body.String()
}
