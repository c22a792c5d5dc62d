package mython

// binaryOperation holds the operand pair shared by the arithmetic and
// logical nodes. Both operands are always evaluated, left first.
type binaryOperation struct {
	lhs Statement
	rhs Statement
}

func (b *binaryOperation) operands(closure Closure, ctx *Context) (ObjectHolder, ObjectHolder, error) {
	lhs, err := b.lhs.Execute(closure, ctx)
	if err != nil {
		return None(), None(), err
	}
	rhs, err := b.rhs.Execute(closure, ctx)
	if err != nil {
		return None(), None(), err
	}
	return lhs, rhs, nil
}

// Add sums numbers, concatenates strings, and otherwise defers to a
// one-argument __add__ on a left-hand instance.
type Add struct {
	binaryOperation
}

func NewAdd(lhs, rhs Statement) *Add {
	return &Add{binaryOperation{lhs: lhs, rhs: rhs}}
}

func (s *Add) Execute(closure Closure, ctx *Context) (ObjectHolder, error) {
	lhs, rhs, err := s.operands(closure, ctx)
	if err != nil {
		return None(), err
	}

	if ln, ok := TryAs[*Number](lhs); ok {
		if rn, ok := TryAs[*Number](rhs); ok {
			return Own(NewNumber(ln.Value() + rn.Value())), nil
		}
	}
	if ls, ok := TryAs[*String](lhs); ok {
		if rs, ok := TryAs[*String](rhs); ok {
			return Own(NewString(ls.Value() + rs.Value())), nil
		}
	}
	if inst, ok := TryAs[*ClassInstance](lhs); ok && inst.HasMethod(addMethod, 1) {
		return inst.Call(addMethod, []ObjectHolder{rhs}, ctx)
	}

	return None(), newRuntimeError("No __add__ method")
}

type Sub struct {
	binaryOperation
}

func NewSub(lhs, rhs Statement) *Sub {
	return &Sub{binaryOperation{lhs: lhs, rhs: rhs}}
}

func (s *Sub) Execute(closure Closure, ctx *Context) (ObjectHolder, error) {
	lhs, rhs, err := s.operands(closure, ctx)
	if err != nil {
		return None(), err
	}
	ln, rn, err := numberOperands(lhs, rhs)
	if err != nil {
		return None(), err
	}
	return Own(NewNumber(ln - rn)), nil
}

type Mult struct {
	binaryOperation
}

func NewMult(lhs, rhs Statement) *Mult {
	return &Mult{binaryOperation{lhs: lhs, rhs: rhs}}
}

func (s *Mult) Execute(closure Closure, ctx *Context) (ObjectHolder, error) {
	lhs, rhs, err := s.operands(closure, ctx)
	if err != nil {
		return None(), err
	}
	ln, rn, err := numberOperands(lhs, rhs)
	if err != nil {
		return None(), err
	}
	return Own(NewNumber(ln * rn)), nil
}

// Div divides integers, truncating toward zero.
type Div struct {
	binaryOperation
}

func NewDiv(lhs, rhs Statement) *Div {
	return &Div{binaryOperation{lhs: lhs, rhs: rhs}}
}

func (s *Div) Execute(closure Closure, ctx *Context) (ObjectHolder, error) {
	lhs, rhs, err := s.operands(closure, ctx)
	if err != nil {
		return None(), err
	}
	ln, rn, err := numberOperands(lhs, rhs)
	if err != nil {
		return None(), err
	}
	if rn == 0 {
		return None(), newRuntimeError("Division by zero")
	}
	return Own(NewNumber(ln / rn)), nil
}

func numberOperands(lhs, rhs ObjectHolder) (int, int, error) {
	ln, lok := TryAs[*Number](lhs)
	rn, rok := TryAs[*Number](rhs)
	if !lok || !rok {
		return 0, 0, newRuntimeError("lhs or rhs not Number")
	}
	return ln.Value(), rn.Value(), nil
}

// Or evaluates both operands and yields their truthiness disjunction.
// There is no short-circuiting.
type Or struct {
	binaryOperation
}

func NewOr(lhs, rhs Statement) *Or {
	return &Or{binaryOperation{lhs: lhs, rhs: rhs}}
}

func (s *Or) Execute(closure Closure, ctx *Context) (ObjectHolder, error) {
	lhs, rhs, err := s.operands(closure, ctx)
	if err != nil {
		return None(), err
	}
	return Own(NewBool(IsTrue(lhs) || IsTrue(rhs))), nil
}

// And evaluates both operands and yields their truthiness conjunction.
// There is no short-circuiting.
type And struct {
	binaryOperation
}

func NewAnd(lhs, rhs Statement) *And {
	return &And{binaryOperation{lhs: lhs, rhs: rhs}}
}

func (s *And) Execute(closure Closure, ctx *Context) (ObjectHolder, error) {
	lhs, rhs, err := s.operands(closure, ctx)
	if err != nil {
		return None(), err
	}
	return Own(NewBool(IsTrue(lhs) && IsTrue(rhs))), nil
}

type Not struct {
	arg Statement
}

func NewNot(arg Statement) *Not {
	return &Not{arg: arg}
}

func (s *Not) Execute(closure Closure, ctx *Context) (ObjectHolder, error) {
	value, err := s.arg.Execute(closure, ctx)
	if err != nil {
		return None(), err
	}
	return Own(NewBool(!IsTrue(value))), nil
}

// Comparison applies a Comparator to its evaluated operands and yields a
// Bool.
type Comparison struct {
	binaryOperation
	cmp Comparator
}

func NewComparison(cmp Comparator, lhs, rhs Statement) *Comparison {
	return &Comparison{binaryOperation: binaryOperation{lhs: lhs, rhs: rhs}, cmp: cmp}
}

func (s *Comparison) Execute(closure Closure, ctx *Context) (ObjectHolder, error) {
	lhs, rhs, err := s.operands(closure, ctx)
	if err != nil {
		return None(), err
	}
	result, err := s.cmp(lhs, rhs, ctx)
	if err != nil {
		return None(), err
	}
	return Own(NewBool(result)), nil
}
