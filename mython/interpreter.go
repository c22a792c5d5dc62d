package mython

import (
	"errors"
	"io"
)

// Interpreter runs programs against a persistent set of globals, so a later
// Run sees the variables and classes earlier runs defined. That is what a
// REPL session needs; one-shot execution goes through Run.
type Interpreter struct {
	ctx     *Context
	globals Closure
	classes map[string]*Class
}

func NewInterpreter(out io.Writer) *Interpreter {
	return &Interpreter{
		ctx:     NewContext(out),
		globals: make(Closure),
		classes: make(map[string]*Class),
	}
}

// SetOutput redirects program output for subsequent runs.
func (i *Interpreter) SetOutput(out io.Writer) {
	i.ctx = NewContext(out)
}

// Globals exposes the root closure.
func (i *Interpreter) Globals() Closure {
	return i.globals
}

// Run tokenizes, parses and executes source. Lexical, parse and runtime
// errors are returned as-is; a return statement at top level is a runtime
// error.
func (i *Interpreter) Run(source string) error {
	program, err := i.parse(source)
	if err != nil {
		return err
	}
	if _, err := program.Execute(i.globals, i.ctx); err != nil {
		var ret *returnSignal
		if errors.As(err, &ret) {
			return newRuntimeError("return outside of a method body")
		}
		return err
	}
	return nil
}

func (i *Interpreter) parse(source string) (*Compound, error) {
	lex, err := NewLexer(source)
	if err != nil {
		return nil, err
	}
	return newParser(lex, i.classes).parseProgram()
}

// Run executes source once, writing program output to out.
func Run(source string, out io.Writer) error {
	return NewInterpreter(out).Run(source)
}

// Check parses source without executing it.
func Check(source string) error {
	_, err := NewInterpreter(io.Discard).parse(source)
	return err
}
