package mython

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func runProgram(t *testing.T, source string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Run(source, &buf); err != nil {
		t.Fatalf("run failed: %v\nsource:\n%s", err, source)
	}
	return buf.String()
}

func runExpectError(t *testing.T, source string) error {
	t.Helper()
	err := Run(source, &bytes.Buffer{})
	if err == nil {
		t.Fatalf("expected an error\nsource:\n%s", source)
	}
	return err
}

func TestRunArithmetic(t *testing.T) {
	cases := []struct {
		source string
		want   string
	}{
		{"print 1+2*3\n", "7\n"},
		{"print (1+2)*3\n", "9\n"},
		{"print 10-2-3\n", "5\n"},
		{"print 7/2\n", "3\n"},
		{"print -5\n", "-5\n"},
		{"print 2*3-1\n", "5\n"},
		{"print 'ab'+'cd'\n", "abcd\n"},
	}
	for _, tc := range cases {
		if got := runProgram(t, tc.source); got != tc.want {
			t.Fatalf("source %q: output %q, want %q", tc.source, got, tc.want)
		}
	}
}

func TestRunNone(t *testing.T) {
	got := runProgram(t, "x = None\nprint x\n")
	if got != "None\n" {
		t.Fatalf("output %q, want %q", got, "None\n")
	}
}

func TestRunComparisons(t *testing.T) {
	got := runProgram(t, "print 1 < 2, 2 <= 2, 3 > 2, 2 >= 3, 1 == 1, 1 != 1\n")
	if got != "True True True False True False\n" {
		t.Fatalf("output %q", got)
	}
}

func TestRunLogic(t *testing.T) {
	got := runProgram(t, "print 1 and '', 0 or 'x', not 0, True and False\n")
	if got != "False True True False\n" {
		t.Fatalf("output %q", got)
	}
}

func TestRunTruthinessBranch(t *testing.T) {
	source := "if '':\n  print 'a'\nelse:\n  print 'b'\n"
	if got := runProgram(t, source); got != "b\n" {
		t.Fatalf("output %q, want %q", got, "b\n")
	}
}

func TestRunClassWithFieldsAndMethods(t *testing.T) {
	source := `class Rect:
  def __init__(self, w, h):
    self.w = w
    self.h = h
  def area(self):
    return self.w * self.h

r = Rect(3, 4)
print r.area()
`
	if got := runProgram(t, source); got != "12\n" {
		t.Fatalf("output %q, want %q", got, "12\n")
	}
}

func TestRunInheritance(t *testing.T) {
	source := `class A:
  def f(self):
    return 1

class B(A):
  def g(self):
    return self.f() + 1

print B().g()
`
	if got := runProgram(t, source); got != "2\n" {
		t.Fatalf("output %q, want %q", got, "2\n")
	}
}

func TestRunOverride(t *testing.T) {
	source := `class A:
  def who(self):
    return 'A'

class B(A):
  def who(self):
    return 'B'

a = A()
b = B()
print a.who(), b.who()
`
	if got := runProgram(t, source); got != "A B\n" {
		t.Fatalf("output %q, want %q", got, "A B\n")
	}
}

func TestRunStrDunder(t *testing.T) {
	source := `class Pt:
  def __init__(self, x, y):
    self.x = x
    self.y = y
  def __str__(self):
    return '(' + str(self.x) + ', ' + str(self.y) + ')'

p = Pt(1, 2)
print p, str(p)
`
	if got := runProgram(t, source); got != "(1, 2) (1, 2)\n" {
		t.Fatalf("output %q", got)
	}
}

func TestRunAddDunder(t *testing.T) {
	source := `class Acc:
  def __init__(self, v):
    self.v = v
  def __add__(self, rhs):
    return self.v + rhs

print Acc(10) + 5
`
	if got := runProgram(t, source); got != "15\n" {
		t.Fatalf("output %q, want %q", got, "15\n")
	}
}

func TestRunEqDunder(t *testing.T) {
	source := `class Cm:
  def __init__(self, length):
    self.length = length
  def __eq__(self, rhs):
    return self.length == rhs
  def __lt__(self, rhs):
    return self.length < rhs

c = Cm(50)
print c == 50, c == 51, c < 51, c > 49
`
	if got := runProgram(t, source); got != "True False True True\n" {
		t.Fatalf("output %q", got)
	}
}

func TestRunNonLocalReturn(t *testing.T) {
	source := `class Sign:
  def of(self, x):
    if x > 0:
      return 'pos'
    if x < 0:
      return 'neg'
    return 'zero'

s = Sign()
print s.of(3), s.of(0-4), s.of(0)
`
	if got := runProgram(t, source); got != "pos neg zero\n" {
		t.Fatalf("output %q", got)
	}
}

func TestRunFieldChain(t *testing.T) {
	source := `class Leaf:
  def __init__(self, value):
    self.value = value

class Node:
  def __init__(self, leaf):
    self.leaf = leaf

n = Node(Leaf(8))
print n.leaf.value
n.leaf.value = 9
print n.leaf.value
`
	if got := runProgram(t, source); got != "8\n9\n" {
		t.Fatalf("output %q", got)
	}
}

func TestRunChainedCalls(t *testing.T) {
	source := `class Counter:
  def __init__(self):
    self.n = 0
  def inc(self):
    self.n = self.n + 1
    return self
  def value(self):
    return self.n

c = Counter()
print c.inc().inc().value()
`
	if got := runProgram(t, source); got != "2\n" {
		t.Fatalf("output %q", got)
	}
}

func TestRunSingleLineSuite(t *testing.T) {
	source := "if 1: print 'yes'\n"
	if got := runProgram(t, source); got != "yes\n" {
		t.Fatalf("output %q", got)
	}
}

func TestRunDivisionByZero(t *testing.T) {
	err := runExpectError(t, "print 1/0\n")
	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) {
		t.Fatalf("expected RuntimeError, got %v", err)
	}
	if rtErr.Msg != "Division by zero" {
		t.Fatalf("unexpected message: %q", rtErr.Msg)
	}
}

func TestRunUnknownVariable(t *testing.T) {
	err := runExpectError(t, "print ghost\n")
	if err.Error() != "Not find variable" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunUnknownMethod(t *testing.T) {
	source := "class C:\n  def f(self):\n    return 1\n\nc = C()\nprint c.g()\n"
	err := runExpectError(t, source)
	if err.Error() != "Unknown method name: g" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunArityMismatchIsUnknownMethod(t *testing.T) {
	source := "class C:\n  def f(self, x):\n    return x\n\nc = C()\nprint c.f()\n"
	err := runExpectError(t, source)
	if err.Error() != "Unknown method name: f" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunNoShortCircuit(t *testing.T) {
	// Both operand sides always evaluate, so the division error surfaces
	// even though the left side already decides the result.
	err := runExpectError(t, "print 0 and 1/0\n")
	if err.Error() != "Division by zero" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunTopLevelReturn(t *testing.T) {
	err := runExpectError(t, "return 1\n")
	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) {
		t.Fatalf("expected RuntimeError, got %v", err)
	}
}

func TestRunUndeclaredBaseClass(t *testing.T) {
	err := runExpectError(t, "class B(A):\n  def f(self):\n    return 1\n")
	var pErr *parseError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestInterpreterKeepsGlobalsAcrossRuns(t *testing.T) {
	var buf bytes.Buffer
	interp := NewInterpreter(&buf)

	if err := interp.Run("x = 20\n"); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if err := interp.Run("class Doubler:\n  def apply(self, n):\n    return n * 2\n"); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if err := interp.Run("print Doubler().apply(x) + 2\n"); err != nil {
		t.Fatalf("third run failed: %v", err)
	}
	if got := buf.String(); got != "42\n" {
		t.Fatalf("output %q, want %q", got, "42\n")
	}

	if _, ok := interp.Globals()["x"]; !ok {
		t.Fatalf("globals lost between runs")
	}
}

func TestInterpreterSetOutput(t *testing.T) {
	var first, second bytes.Buffer
	interp := NewInterpreter(&first)
	if err := interp.Run("print 1\n"); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	interp.SetOutput(&second)
	if err := interp.Run("print 2\n"); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if first.String() != "1\n" || second.String() != "2\n" {
		t.Fatalf("output not redirected: %q / %q", first.String(), second.String())
	}
}

func TestCheckParsesWithoutExecuting(t *testing.T) {
	if err := Check("class C:\n  def f(self):\n    return 1\n\nprint C().f()\n"); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if err := Check("print )\n"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestRunWithCommentsAndBlankLines(t *testing.T) {
	source := `# greeting program

name = 'world'  # the audience

if name:
  # say hello
  print 'hello, ' + name
`
	if got := runProgram(t, source); got != "hello, world\n" {
		t.Fatalf("output %q", got)
	}
}

func TestRunStringEscapesEndToEnd(t *testing.T) {
	got := runProgram(t, "print 'a\\tb', 'c\\nd'\n")
	if !strings.Contains(got, "a\tb") || !strings.Contains(got, "c\nd") {
		t.Fatalf("escapes not honored: %q", got)
	}
}
