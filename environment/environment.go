// Package environment stores script variables for one interpreter session.
package environment

import (
	"errors"
	"fmt"

	"github.com/hairizuanbinnoorazman/uiscript/parser"
)

// ErrUndefinedVariable is returned when a script reads a variable that was
// never saved.
var ErrUndefinedVariable = errors.New("variable is not yet defined")

// Environment maps variable names to string values. Last write wins.
type Environment struct {
	values map[string]string
}

// New creates an empty environment.
func New() *Environment {
	return &Environment{values: make(map[string]string)}
}

// Set stores value under name, overwriting any previous value.
func (e *Environment) Set(name, value string) {
	e.values[name] = value
}

// Get returns the value stored under name.
func (e *Environment) Get(name string) (string, bool) {
	v, ok := e.values[name]
	return v, ok
}

// Resolve returns the string a command parameter stands for.
func (e *Environment) Resolve(p parser.CmdParam) (string, error) {
	if p.Kind == parser.ParamLiteral {
		return p.Value, nil
	}
	v, ok := e.Get(p.Value)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUndefinedVariable, p.Value)
	}
	return v, nil
}

// Len returns the number of defined variables.
func (e *Environment) Len() int {
	return len(e.values)
}
