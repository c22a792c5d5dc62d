package mython

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

const (
	selfName   = "self"
	initMethod = "__init__"
	strMethod  = "__str__"
	addMethod  = "__add__"
	eqMethod   = "__eq__"
	ltMethod   = "__lt__"
)

// Context is the execution environment the evaluator runs against. It owns
// the output sink that print writes to.
type Context struct {
	out io.Writer
}

func NewContext(out io.Writer) *Context {
	return &Context{out: out}
}

// Output returns the sink program output is written to.
func (c *Context) Output() io.Writer {
	return c.out
}

// Object is a runtime value. Print renders the value the way the language
// shows it to the user: numbers in decimal, strings without quotes.
type Object interface {
	Print(out io.Writer, ctx *Context) error
}

// Closure is a variable environment: a flat name-to-value map.
type Closure map[string]ObjectHolder

// ObjectHolder is a handle to an Object. The zero holder is None and
// doubles as the language-level None value. Own wraps a freshly created
// value; Share wraps a value owned elsewhere, such as self inside a method
// call. Under the host garbage collector both keep the object alive; the
// distinction is kept as API intent.
type ObjectHolder struct {
	data Object
}

func Own(obj Object) ObjectHolder {
	return ObjectHolder{data: obj}
}

func Share(obj Object) ObjectHolder {
	return ObjectHolder{data: obj}
}

func None() ObjectHolder {
	return ObjectHolder{}
}

// IsValid reports whether the holder references an object. None holders
// are not valid.
func (h ObjectHolder) IsValid() bool {
	return h.data != nil
}

func (h ObjectHolder) Get() Object {
	return h.data
}

// TryAs returns the held object as V when it is one.
func TryAs[V Object](h ObjectHolder) (V, bool) {
	v, ok := h.data.(V)
	return v, ok
}

// IsType reports whether the held object is a V.
func IsType[V Object](h ObjectHolder) bool {
	_, ok := h.data.(V)
	return ok
}

// IsTrue coerces a value to a boolean: nonzero numbers, non-empty strings
// and true are truthy; everything else, including None, classes and
// instances, is falsy.
func IsTrue(h ObjectHolder) bool {
	switch v := h.data.(type) {
	case *Number:
		return v.value != 0
	case *String:
		return v.value != ""
	case *Bool:
		return v.value
	}
	return false
}

type Number struct {
	value int
}

func NewNumber(value int) *Number {
	return &Number{value: value}
}

func (n *Number) Value() int {
	return n.value
}

func (n *Number) Print(out io.Writer, _ *Context) error {
	_, err := io.WriteString(out, strconv.Itoa(n.value))
	return err
}

type String struct {
	value string
}

func NewString(value string) *String {
	return &String{value: value}
}

func (s *String) Value() string {
	return s.value
}

func (s *String) Print(out io.Writer, _ *Context) error {
	_, err := io.WriteString(out, s.value)
	return err
}

type Bool struct {
	value bool
}

func NewBool(value bool) *Bool {
	return &Bool{value: value}
}

func (b *Bool) Value() bool {
	return b.value
}

func (b *Bool) Print(out io.Writer, _ *Context) error {
	text := "False"
	if b.value {
		text = "True"
	}
	_, err := io.WriteString(out, text)
	return err
}

// Method is a named, parameter-bearing body owned by a class.
type Method struct {
	Name         string
	FormalParams []string
	Body         Statement
}

// Class is a user-defined type: an ordered method table plus an optional
// parent. The parent must outlive every class that references it.
type Class struct {
	name    string
	methods []*Method
	parent  *Class
}

func NewClass(name string, methods []*Method, parent *Class) *Class {
	return &Class{name: name, methods: methods, parent: parent}
}

func (c *Class) Name() string {
	return c.name
}

func (c *Class) Parent() *Class {
	return c.parent
}

// methodNamed finds the first method with the given name in this class or,
// failing that, up the parent chain. Arity is not considered here.
func (c *Class) methodNamed(name string) *Method {
	for _, m := range c.methods {
		if m.Name == name {
			return m
		}
	}
	if c.parent != nil {
		return c.parent.methodNamed(name)
	}
	return nil
}

// GetMethod resolves name with an exact formal-parameter count. The child
// class wins at the first name hit; there is no further search when the
// arity of that hit does not match.
func (c *Class) GetMethod(name string, argCount int) *Method {
	m := c.methodNamed(name)
	if m != nil && len(m.FormalParams) == argCount {
		return m
	}
	return nil
}

func (c *Class) Print(out io.Writer, _ *Context) error {
	_, err := fmt.Fprintf(out, "Class %s", c.name)
	return err
}

// ClassInstance is an object created from a class. Its fields live in a
// closure of their own.
type ClassInstance struct {
	cls    *Class
	fields Closure
}

func NewClassInstance(cls *Class) *ClassInstance {
	return &ClassInstance{cls: cls, fields: make(Closure)}
}

func (ci *ClassInstance) Class() *Class {
	return ci.cls
}

func (ci *ClassInstance) Fields() Closure {
	return ci.fields
}

func (ci *ClassInstance) HasMethod(name string, argCount int) bool {
	return ci.cls.GetMethod(name, argCount) != nil
}

// Call resolves and invokes a method on this instance. The method body runs
// in a fresh closure holding self and one binding per formal parameter.
func (ci *ClassInstance) Call(name string, args []ObjectHolder, ctx *Context) (ObjectHolder, error) {
	m := ci.cls.GetMethod(name, len(args))
	if m == nil {
		return None(), newRuntimeError("Unknown method name: %s", name)
	}
	return ci.callMethod(m, args, ctx)
}

func (ci *ClassInstance) callMethod(m *Method, args []ObjectHolder, ctx *Context) (ObjectHolder, error) {
	local := make(Closure, len(args)+1)
	local[selfName] = Share(ci)
	for i, param := range m.FormalParams {
		local[param] = args[i]
	}
	return m.Body.Execute(local, ctx)
}

// Print renders the instance through its zero-argument __str__ when it has
// one, and as an identity token otherwise.
func (ci *ClassInstance) Print(out io.Writer, ctx *Context) error {
	if ci.HasMethod(strMethod, 0) {
		result, err := ci.Call(strMethod, nil, ctx)
		if err != nil {
			return err
		}
		return printHolder(result, out, ctx)
	}
	_, err := fmt.Fprintf(out, "<%s instance at %p>", ci.cls.name, ci)
	return err
}

// printHolder renders a holder, writing None for the null holder.
func printHolder(h ObjectHolder, out io.Writer, ctx *Context) error {
	if !h.IsValid() {
		_, err := io.WriteString(out, "None")
		return err
	}
	return h.Get().Print(out, ctx)
}

// FormatValue renders a value the way print would and returns the text.
func FormatValue(h ObjectHolder) string {
	var buf bytes.Buffer
	if err := printHolder(h, &buf, NewContext(&buf)); err != nil {
		return "<" + err.Error() + ">"
	}
	return buf.String()
}
