package mython

import "strings"

// Comparator is the pluggable relation a Comparison node evaluates.
type Comparator func(lhs, rhs ObjectHolder, ctx *Context) (bool, error)

// makeComparison implements the shared dispatch for Equal and Less: a class
// instance with a matching one-argument method decides for itself, the
// primitive kinds compare structurally, and everything else is an error.
// cmp receives a three-way comparison result (<0, 0, >0).
func makeComparison(lhs, rhs ObjectHolder, ctx *Context, name string, cmp func(int) bool) (bool, error) {
	if lhs.IsValid() && rhs.IsValid() {
		if inst, ok := TryAs[*ClassInstance](lhs); ok && inst.HasMethod(name, 1) {
			result, err := inst.Call(name, []ObjectHolder{rhs}, ctx)
			if err != nil {
				return false, err
			}
			return IsTrue(result), nil
		}

		if ls, ok := TryAs[*String](lhs); ok {
			if rs, ok := TryAs[*String](rhs); ok {
				return cmp(strings.Compare(ls.value, rs.value)), nil
			}
		}
		if ln, ok := TryAs[*Number](lhs); ok {
			if rn, ok := TryAs[*Number](rhs); ok {
				return cmp(threeWay(ln.value, rn.value)), nil
			}
		}
		if lb, ok := TryAs[*Bool](lhs); ok {
			if rb, ok := TryAs[*Bool](rhs); ok {
				return cmp(threeWay(boolRank(lb.value), boolRank(rb.value))), nil
			}
		}
	}
	return false, newRuntimeError("Cannot compare objects for %s", name)
}

func threeWay(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Equal reports lhs == rhs. Two None values are equal; instances dispatch
// to their __eq__.
func Equal(lhs, rhs ObjectHolder, ctx *Context) (bool, error) {
	if !lhs.IsValid() && !rhs.IsValid() {
		return true, nil
	}
	return makeComparison(lhs, rhs, ctx, eqMethod, func(c int) bool { return c == 0 })
}

// Less reports lhs < rhs; instances dispatch to their __lt__.
func Less(lhs, rhs ObjectHolder, ctx *Context) (bool, error) {
	return makeComparison(lhs, rhs, ctx, ltMethod, func(c int) bool { return c < 0 })
}

func NotEqual(lhs, rhs ObjectHolder, ctx *Context) (bool, error) {
	eq, err := Equal(lhs, rhs, ctx)
	return !eq, err
}

func Greater(lhs, rhs ObjectHolder, ctx *Context) (bool, error) {
	less, err := Less(lhs, rhs, ctx)
	if err != nil || less {
		return false, err
	}
	eq, err := Equal(lhs, rhs, ctx)
	return !eq, err
}

func LessOrEqual(lhs, rhs ObjectHolder, ctx *Context) (bool, error) {
	greater, err := Greater(lhs, rhs, ctx)
	return !greater, err
}

func GreaterOrEqual(lhs, rhs ObjectHolder, ctx *Context) (bool, error) {
	less, err := Less(lhs, rhs, ctx)
	return !less, err
}
