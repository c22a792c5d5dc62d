package mython

import (
	"bytes"
	"errors"
	"io"
)

// Statement is a node of the executable syntax tree. Execute runs the node
// against a closure and a context and yields the node's value. Errors abort
// the whole evaluation except for the internal return signal, which only
// MethodBody absorbs.
type Statement interface {
	Execute(closure Closure, ctx *Context) (ObjectHolder, error)
}

type NumericConst struct {
	value int
}

func NewNumericConst(value int) *NumericConst {
	return &NumericConst{value: value}
}

func (s *NumericConst) Execute(Closure, *Context) (ObjectHolder, error) {
	return Own(NewNumber(s.value)), nil
}

type StringConst struct {
	value string
}

func NewStringConst(value string) *StringConst {
	return &StringConst{value: value}
}

func (s *StringConst) Execute(Closure, *Context) (ObjectHolder, error) {
	return Own(NewString(s.value)), nil
}

type BoolConst struct {
	value bool
}

func NewBoolConst(value bool) *BoolConst {
	return &BoolConst{value: value}
}

func (s *BoolConst) Execute(Closure, *Context) (ObjectHolder, error) {
	return Own(NewBool(s.value)), nil
}

type NoneConst struct{}

func NewNoneConst() *NoneConst {
	return &NoneConst{}
}

func (s *NoneConst) Execute(Closure, *Context) (ObjectHolder, error) {
	return None(), nil
}

// VariableValue resolves a chain of dotted names: the first in the closure,
// each following one in the fields of the instance the chain has reached.
type VariableValue struct {
	dottedIDs []string
}

func NewVariableValue(dottedIDs ...string) *VariableValue {
	return &VariableValue{dottedIDs: dottedIDs}
}

func (s *VariableValue) Execute(closure Closure, _ *Context) (ObjectHolder, error) {
	value, ok := closure[s.dottedIDs[0]]
	if !ok {
		return None(), newRuntimeError("Not find variable")
	}
	for _, name := range s.dottedIDs[1:] {
		inst, ok := TryAs[*ClassInstance](value)
		if !ok {
			return None(), newRuntimeError("Not find variable")
		}
		value, ok = inst.Fields()[name]
		if !ok {
			return None(), newRuntimeError("Not find variable")
		}
	}
	return value, nil
}

// Assignment binds a name in the closure, inserting or overwriting.
type Assignment struct {
	name string
	rv   Statement
}

func NewAssignment(name string, rv Statement) *Assignment {
	return &Assignment{name: name, rv: rv}
}

func (s *Assignment) Execute(closure Closure, ctx *Context) (ObjectHolder, error) {
	value, err := s.rv.Execute(closure, ctx)
	if err != nil {
		return None(), err
	}
	closure[s.name] = value
	return value, nil
}

// FieldAssignment sets a field on the instance a variable chain resolves
// to. The target is evaluated before the right-hand side.
type FieldAssignment struct {
	target *VariableValue
	field  string
	rv     Statement
}

func NewFieldAssignment(target *VariableValue, field string, rv Statement) *FieldAssignment {
	return &FieldAssignment{target: target, field: field, rv: rv}
}

func (s *FieldAssignment) Execute(closure Closure, ctx *Context) (ObjectHolder, error) {
	object, err := s.target.Execute(closure, ctx)
	if err != nil {
		return None(), err
	}
	inst, ok := TryAs[*ClassInstance](object)
	if !ok {
		return None(), newRuntimeError("Not find variable")
	}
	value, err := s.rv.Execute(closure, ctx)
	if err != nil {
		return None(), err
	}
	inst.Fields()[s.field] = value
	return value, nil
}

// Print evaluates its arguments left to right and writes them to the
// context output, space-separated and newline-terminated.
type Print struct {
	args []Statement
}

func NewPrint(args ...Statement) *Print {
	return &Print{args: args}
}

// PrintVariable builds a print statement for a single named variable.
func PrintVariable(name string) *Print {
	return NewPrint(NewVariableValue(name))
}

func (s *Print) Execute(closure Closure, ctx *Context) (ObjectHolder, error) {
	out := ctx.Output()
	for i, arg := range s.args {
		value, err := arg.Execute(closure, ctx)
		if err != nil {
			return None(), err
		}
		if err := printHolder(value, out, ctx); err != nil {
			return None(), err
		}
		if i < len(s.args)-1 {
			if _, err := io.WriteString(out, " "); err != nil {
				return None(), err
			}
		}
	}
	if _, err := io.WriteString(out, "\n"); err != nil {
		return None(), err
	}
	return None(), nil
}

// Stringify renders its argument the way print would and yields the result
// as a new String.
type Stringify struct {
	arg Statement
}

func NewStringify(arg Statement) *Stringify {
	return &Stringify{arg: arg}
}

func (s *Stringify) Execute(closure Closure, ctx *Context) (ObjectHolder, error) {
	value, err := s.arg.Execute(closure, ctx)
	if err != nil {
		return None(), err
	}
	var buf bytes.Buffer
	if err := printHolder(value, &buf, ctx); err != nil {
		return None(), err
	}
	return Own(NewString(buf.String())), nil
}

// MethodCall evaluates the receiver, then the arguments left to right, and
// dispatches through the instance's class.
type MethodCall struct {
	object Statement
	method string
	args   []Statement
}

func NewMethodCall(object Statement, method string, args []Statement) *MethodCall {
	return &MethodCall{object: object, method: method, args: args}
}

func (s *MethodCall) Execute(closure Closure, ctx *Context) (ObjectHolder, error) {
	object, err := s.object.Execute(closure, ctx)
	if err != nil {
		return None(), err
	}
	inst, ok := TryAs[*ClassInstance](object)
	if !ok {
		return None(), newRuntimeError("Unknown method name: %s", s.method)
	}
	args, err := executeArgs(s.args, closure, ctx)
	if err != nil {
		return None(), err
	}
	return inst.Call(s.method, args, ctx)
}

func executeArgs(args []Statement, closure Closure, ctx *Context) ([]ObjectHolder, error) {
	actual := make([]ObjectHolder, 0, len(args))
	for _, arg := range args {
		value, err := arg.Execute(closure, ctx)
		if err != nil {
			return nil, err
		}
		actual = append(actual, value)
	}
	return actual, nil
}

// Compound executes statements in order and yields no value.
type Compound struct {
	statements []Statement
}

func NewCompound(statements ...Statement) *Compound {
	return &Compound{statements: statements}
}

func (s *Compound) Append(stmt Statement) {
	s.statements = append(s.statements, stmt)
}

func (s *Compound) Execute(closure Closure, ctx *Context) (ObjectHolder, error) {
	for _, stmt := range s.statements {
		if _, err := stmt.Execute(closure, ctx); err != nil {
			return None(), err
		}
	}
	return None(), nil
}

// MethodBody wraps a method's statements. It is the single boundary at
// which a return signal stops unwinding: a body that completes without
// returning yields None.
type MethodBody struct {
	body Statement
}

func NewMethodBody(body Statement) *MethodBody {
	return &MethodBody{body: body}
}

func (s *MethodBody) Execute(closure Closure, ctx *Context) (ObjectHolder, error) {
	if _, err := s.body.Execute(closure, ctx); err != nil {
		var ret *returnSignal
		if errors.As(err, &ret) {
			return ret.value, nil
		}
		return None(), err
	}
	return None(), nil
}

// Return evaluates its expression and starts unwinding with the result.
type Return struct {
	statement Statement
}

func NewReturn(statement Statement) *Return {
	return &Return{statement: statement}
}

func (s *Return) Execute(closure Closure, ctx *Context) (ObjectHolder, error) {
	value, err := s.statement.Execute(closure, ctx)
	if err != nil {
		return None(), err
	}
	return None(), &returnSignal{value: value}
}

// ClassDefinition registers a class object in the closure under its name.
type ClassDefinition struct {
	cls ObjectHolder
}

func NewClassDefinition(cls ObjectHolder) *ClassDefinition {
	return &ClassDefinition{cls: cls}
}

func (s *ClassDefinition) Execute(closure Closure, _ *Context) (ObjectHolder, error) {
	cls, ok := TryAs[*Class](s.cls)
	if !ok {
		return None(), newRuntimeError("Not find variable")
	}
	closure[cls.Name()] = s.cls
	return s.cls, nil
}

type IfElse struct {
	condition Statement
	ifBody    Statement
	elseBody  Statement
}

// NewIfElse builds a conditional; elseBody may be nil.
func NewIfElse(condition, ifBody, elseBody Statement) *IfElse {
	return &IfElse{condition: condition, ifBody: ifBody, elseBody: elseBody}
}

func (s *IfElse) Execute(closure Closure, ctx *Context) (ObjectHolder, error) {
	condition, err := s.condition.Execute(closure, ctx)
	if err != nil {
		return None(), err
	}
	if IsTrue(condition) {
		return s.ifBody.Execute(closure, ctx)
	}
	if s.elseBody != nil {
		return s.elseBody.Execute(closure, ctx)
	}
	return None(), nil
}

// NewInstanceStmt allocates the node's instance and, when the class defines
// an __init__ of matching arity, runs it with the evaluated arguments. The
// node owns the instance; the result is a shared holder to it.
type NewInstanceStmt struct {
	instance *ClassInstance
	args     []Statement
}

func NewNewInstance(cls *Class, args []Statement) *NewInstanceStmt {
	return &NewInstanceStmt{instance: NewClassInstance(cls), args: args}
}

func (s *NewInstanceStmt) Execute(closure Closure, ctx *Context) (ObjectHolder, error) {
	args, err := executeArgs(s.args, closure, ctx)
	if err != nil {
		return None(), err
	}
	if s.instance.HasMethod(initMethod, len(args)) {
		if _, err := s.instance.Call(initMethod, args, ctx); err != nil {
			return None(), err
		}
	}
	return Share(s.instance), nil
}
