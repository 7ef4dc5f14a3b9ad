// Package parser builds statements from the scanner's token stream.
package parser

import (
	"fmt"
	"strings"

	"github.com/hairizuanbinnoorazman/uiscript/scanner"
)

// ParseError records one malformed line.
type ParseError struct {
	Line    int
	Token   string
	Message string
}

// Error implements the error interface.
func (e ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("line %d: %s (at %s)", e.Line, e.Message, e.Token)
}

// ParseErrors collects every per-line error of a script.
type ParseErrors []ParseError

// Error joins all collected messages, one per line.
func (e ParseErrors) Error() string {
	msgs := make([]string, len(e))
	for i, pe := range e {
		msgs[i] = pe.Error()
	}
	return strings.Join(msgs, "\n")
}

// ParseString scans and parses src in one step.
func ParseString(src string) ([]Stmt, error) {
	return Parse(scanner.Scan(src))
}

// Parse converts tokens into statements, one per non-empty line. A bad line
// does not stop parsing of later lines, but if any line failed the result is
// nil statements and a ParseErrors value listing every failure.
func Parse(tokens []scanner.Token) ([]Stmt, error) {
	var (
		stmts []Stmt
		errs  ParseErrors
		line  []scanner.Token
	)

	flush := func(lineNo int) {
		if len(line) == 0 {
			return
		}
		p := &lineParser{tokens: line, line: lineNo}
		stmt, err := p.parseLine()
		if err != nil {
			errs = append(errs, *err)
		} else {
			stmts = append(stmts, stmt)
		}
		line = line[:0]
	}

	for _, tok := range tokens {
		switch tok.Kind {
		case scanner.EOF:
			flush(tok.Line)
			return finish(stmts, errs)
		case scanner.EOL:
			flush(tok.Line)
		default:
			line = append(line, tok)
		}
	}

	// Streams are expected to end with EOF; tolerate a missing one.
	if len(line) > 0 {
		flush(line[0].Line)
	}
	return finish(stmts, errs)
}

func finish(stmts []Stmt, errs ParseErrors) ([]Stmt, error) {
	if len(errs) > 0 {
		return nil, errs
	}
	return stmts, nil
}

// lineParser parses the tokens of a single line.
type lineParser struct {
	tokens []scanner.Token
	pos    int
	line   int
}

func (p *lineParser) peek() (scanner.Token, bool) {
	if p.pos >= len(p.tokens) {
		return scanner.Token{Kind: scanner.EOL, Line: p.line}, false
	}
	return p.tokens[p.pos], true
}

func (p *lineParser) advance() scanner.Token {
	tok, _ := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *lineParser) errorAt(tok scanner.Token, format string, args ...interface{}) *ParseError {
	return &ParseError{Line: p.line, Token: tok.String(), Message: fmt.Sprintf(format, args...)}
}

func (p *lineParser) expect(kind scanner.Kind) (scanner.Token, *ParseError) {
	tok, _ := p.peek()
	if tok.Kind != kind {
		return tok, p.errorAt(tok, "expected %s", kind)
	}
	return p.advance(), nil
}

func (p *lineParser) parseLine() (Stmt, *ParseError) {
	for _, tok := range p.tokens {
		if tok.Kind == scanner.Illegal {
			return nil, p.errorAt(tok, "unterminated string literal")
		}
	}

	stmt, err := p.parseStmt()
	if err != nil {
		return nil, err
	}

	if tok, ok := p.peek(); ok {
		return nil, p.errorAt(tok, "unexpected token after statement")
	}
	return stmt, nil
}

func (p *lineParser) parseStmt() (Stmt, *ParseError) {
	tok, _ := p.peek()

	switch tok.Kind {
	case scanner.If:
		p.advance()
		cond, err := p.parseCmd()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(scanner.Then); err != nil {
			return nil, err
		}
		then, err := p.parseCmdStmt()
		if err != nil {
			return nil, err
		}
		return IfStmt{Condition: cond, Then: then}, nil

	case scanner.Under:
		p.advance()
		base, err := p.parseParam()
		if err != nil {
			return nil, err
		}
		body, err := p.parseCmdStmt()
		if err != nil {
			return nil, err
		}
		return UnderStmt{Base: base, Body: body}, nil

	case scanner.UnderActiveElement:
		p.advance()
		body, err := p.parseCmdStmt()
		if err != nil {
			return nil, err
		}
		return UnderActiveElementStmt{Body: body}, nil

	case scanner.Comment:
		p.advance()
		return CommentStmt{Text: tok.Lexeme}, nil

	case scanner.CatchError:
		p.advance()
		body, err := p.parseCmdStmt()
		if err != nil {
			return nil, err
		}
		return CatchErrStmt{Body: body}, nil

	case scanner.Save:
		p.advance()
		value, err := p.expect(scanner.String)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(scanner.As); err != nil {
			return nil, err
		}
		name, err := p.expect(scanner.Variable)
		if err != nil {
			return nil, err
		}
		return SetVariableStmt{Name: name.Lexeme, Value: value.Lexeme}, nil
	}

	return p.parseCmdStmt()
}

func (p *lineParser) parseCmdStmt() (CmdStmt, *ParseError) {
	head, err := p.parseCmd()
	if err != nil {
		return CmdStmt{}, err
	}

	cs := CmdStmt{Head: head}
	if tok, ok := p.peek(); ok && tok.Kind == scanner.And {
		p.advance()
		tail, err := p.parseCmdStmt()
		if err != nil {
			return CmdStmt{}, err
		}
		cs.Tail = &tail
	}
	return cs, nil
}

func (p *lineParser) parseCmd() (Cmd, *ParseError) {
	tok, ok := p.peek()
	if !ok {
		return nil, p.errorAt(tok, "expected a command")
	}
	if !tok.Kind.IsCommand() {
		return nil, p.errorAt(tok, "expected a command")
	}
	p.advance()

	switch tok.Kind {
	case scanner.Click:
		return Click{}, nil
	case scanner.Refresh:
		return Refresh{}, nil
	case scanner.TryAgain:
		return TryAgain{}, nil
	case scanner.Screenshot:
		return Screenshot{}, nil
	case scanner.AcceptAlert:
		return AcceptAlert{}, nil
	case scanner.DismissAlert:
		return DismissAlert{}, nil
	case scanner.ReadTo:
		name, err := p.expect(scanner.Variable)
		if err != nil {
			return nil, err
		}
		return ReadTo{Variable: name.Lexeme}, nil
	}

	param, err := p.parseParam()
	if err != nil {
		return nil, err
	}

	switch tok.Kind {
	case scanner.Locate:
		return Locate{Param: param}, nil
	case scanner.LocateNoScroll:
		return LocateNoScroll{Param: param}, nil
	case scanner.Type:
		return Type{Param: param}, nil
	case scanner.URL:
		return URL{Param: param}, nil
	case scanner.Press:
		return Press{Param: param}, nil
	case scanner.Chill:
		return Chill{Param: param}, nil
	case scanner.Select:
		return Select{Param: param}, nil
	case scanner.DragTo:
		return DragTo{Param: param}, nil
	case scanner.Upload:
		return Upload{Param: param}, nil
	}

	return nil, p.errorAt(tok, "unknown command")
}

func (p *lineParser) parseParam() (CmdParam, *ParseError) {
	tok, _ := p.peek()
	switch tok.Kind {
	case scanner.String:
		p.advance()
		return Literal(tok.Lexeme), nil
	case scanner.Variable:
		p.advance()
		return Var(tok.Lexeme), nil
	}
	return CmdParam{}, p.errorAt(tok, "expected a string or variable argument")
}
