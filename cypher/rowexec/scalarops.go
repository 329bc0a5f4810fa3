package rowexec

import (
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/zacernst/nmetl-core/cypher/ast"
	"github.com/zacernst/nmetl-core/fact"
)

// numericValue coerces a scalar to a float64 for arithmetic/comparison,
// using cast for the bool->numeric conversion Scalar itself does not
// provide (§4.6 "coerce to numeric").
func numericValue(s fact.Scalar) (float64, bool) {
	switch s.Kind() {
	case fact.KindInt:
		return float64(s.Int()), true
	case fact.KindFloat:
		return s.Float(), true
	case fact.KindBool:
		v, err := cast.ToFloat64E(s.Bool())
		if err != nil {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}

// evalArithmetic implements §4.6's Arithmetic(op, lhs, rhs): null
// propagates from either operand, division/modulo by zero fails with
// DivisionByZero, and integer operands stay integer except for Div, which
// always produces a float (true division).
func evalArithmetic(op ast.ArithOp, l, r fact.Scalar) (fact.Scalar, error) {
	if l.IsNull() || r.IsNull() {
		return fact.Null, nil
	}
	if op == ast.Div {
		lv, lok := numericValue(l)
		rv, rok := numericValue(r)
		if !lok || !rok {
			return fact.Scalar{}, ErrTypeError.New("arithmetic requires numeric operands")
		}
		if rv == 0 {
			return fact.Scalar{}, ErrDivisionByZero.New()
		}
		return fact.Float(lv / rv), nil
	}

	if l.Kind() == fact.KindInt && r.Kind() == fact.KindInt {
		li, ri := l.Int(), r.Int()
		switch op {
		case ast.Add:
			return fact.Int(li + ri), nil
		case ast.Sub:
			return fact.Int(li - ri), nil
		case ast.Mul:
			return fact.Int(li * ri), nil
		case ast.Mod:
			if ri == 0 {
				return fact.Scalar{}, ErrDivisionByZero.New()
			}
			return fact.Int(li % ri), nil
		}
	}

	lv, lok := numericValue(l)
	rv, rok := numericValue(r)
	if !lok || !rok {
		return fact.Scalar{}, ErrTypeError.New("arithmetic requires numeric operands")
	}
	switch op {
	case ast.Add:
		return fact.Float(lv + rv), nil
	case ast.Sub:
		return fact.Float(lv - rv), nil
	case ast.Mul:
		return fact.Float(lv * rv), nil
	case ast.Mod:
		if rv == 0 {
			return fact.Scalar{}, ErrDivisionByZero.New()
		}
		return fact.Float(math.Mod(lv, rv)), nil
	}
	return fact.Scalar{}, ErrTypeError.New("unrecognized arithmetic operator")
}

// evalComparison implements §4.6's Comparison(op, lhs, rhs): three-valued,
// null if either operand is null. Equality/inequality use Scalar's
// structural equality directly (kind-safe, never errors); ordering
// comparisons require both operands to be numeric or both strings.
func evalComparison(op ast.CompareOp, l, r fact.Scalar) (fact.Scalar, error) {
	if l.IsNull() || r.IsNull() {
		return fact.Null, nil
	}
	switch op {
	case ast.Eq:
		return fact.Bool(l.Equal(r)), nil
	case ast.Neq:
		return fact.Bool(!l.Equal(r)), nil
	}

	if l.Kind() == fact.KindString && r.Kind() == fact.KindString {
		c := strings.Compare(l.Str(), r.Str())
		return fact.Bool(orderResult(op, c)), nil
	}
	lv, lok := numericValue(l)
	rv, rok := numericValue(r)
	if !lok || !rok {
		return fact.Scalar{}, ErrTypeError.New("comparison requires two numbers or two strings")
	}
	c := 0
	switch {
	case lv < rv:
		c = -1
	case lv > rv:
		c = 1
	}
	return fact.Bool(orderResult(op, c)), nil
}

func orderResult(op ast.CompareOp, cmp int) bool {
	switch op {
	case ast.Lt:
		return cmp < 0
	case ast.Lte:
		return cmp <= 0
	case ast.Gt:
		return cmp > 0
	case ast.Gte:
		return cmp >= 0
	default:
		return false
	}
}

// ternary is Kleene three-valued logic's truth domain.
type ternary int8

const (
	tUnknown ternary = iota
	tTrue
	tFalse
)

func toTernary(s fact.Scalar) (ternary, error) {
	if s.IsNull() {
		return tUnknown, nil
	}
	if s.Kind() != fact.KindBool {
		return tUnknown, ErrTypeError.New("boolean operator applied to a non-boolean, non-null value")
	}
	if s.Bool() {
		return tTrue, nil
	}
	return tFalse, nil
}

func fromTernary(t ternary) fact.Scalar {
	switch t {
	case tTrue:
		return fact.Bool(true)
	case tFalse:
		return fact.Bool(false)
	default:
		return fact.Null
	}
}

// evalAnd/evalOr/evalNot implement §4.6's Kleene three-valued logic: a
// false AND anything is false even if the other operand is null; a true OR
// anything is true even if the other operand is null; otherwise null
// propagates.
func evalAnd(l, r fact.Scalar) (fact.Scalar, error) {
	lt, err := toTernary(l)
	if err != nil {
		return fact.Scalar{}, err
	}
	rt, err := toTernary(r)
	if err != nil {
		return fact.Scalar{}, err
	}
	if lt == tFalse || rt == tFalse {
		return fact.Bool(false), nil
	}
	if lt == tUnknown || rt == tUnknown {
		return fact.Null, nil
	}
	return fact.Bool(true), nil
}

func evalOr(l, r fact.Scalar) (fact.Scalar, error) {
	lt, err := toTernary(l)
	if err != nil {
		return fact.Scalar{}, err
	}
	rt, err := toTernary(r)
	if err != nil {
		return fact.Scalar{}, err
	}
	if lt == tTrue || rt == tTrue {
		return fact.Bool(true), nil
	}
	if lt == tUnknown || rt == tUnknown {
		return fact.Null, nil
	}
	return fact.Bool(false), nil
}

func evalNot(v fact.Scalar) (fact.Scalar, error) {
	t, err := toTernary(v)
	if err != nil {
		return fact.Scalar{}, err
	}
	if t == tUnknown {
		return fact.Null, nil
	}
	return fact.Bool(t == tFalse), nil
}
