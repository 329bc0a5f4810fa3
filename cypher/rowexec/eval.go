package rowexec

import (
	"math"
	"strings"

	"github.com/zacernst/nmetl-core/cypher/ast"
	"github.com/zacernst/nmetl-core/cypher/plan"
	"github.com/zacernst/nmetl-core/fact"
	"github.com/zacernst/nmetl-core/store"
)

// Eval evaluates a single expression node against one projection, per the
// per-node semantics of §4.6. Collect and Size may only appear inside an
// aggregated WITH alias (evaluated by evalAggregation instead); reaching
// them here is a TypeError.
func Eval(n ast.Node, s *store.FactStore, π plan.Projection) (fact.Scalar, error) {
	switch e := n.(type) {
	case *ast.Literal:
		return e.Value, nil

	case *ast.Variable:
		v, ok := π.Get(e.Name)
		if !ok {
			return fact.Null, nil
		}
		return v, nil

	case *ast.AttrLookup:
		entity, ok := π.Get(e.Var)
		if !ok {
			return fact.Null, nil
		}
		val, found, err := s.GetAttribute(entity.Str(), e.Attr)
		if err != nil {
			return fact.Scalar{}, err
		}
		if !found {
			return fact.Null, nil
		}
		return val, nil

	case *ast.Arithmetic:
		l, err := Eval(e.LHS, s, π)
		if err != nil {
			return fact.Scalar{}, err
		}
		r, err := Eval(e.RHS, s, π)
		if err != nil {
			return fact.Scalar{}, err
		}
		return evalArithmetic(e.Op, l, r)

	case *ast.Comparison:
		l, err := Eval(e.LHS, s, π)
		if err != nil {
			return fact.Scalar{}, err
		}
		r, err := Eval(e.RHS, s, π)
		if err != nil {
			return fact.Scalar{}, err
		}
		return evalComparison(e.Op, l, r)

	case *ast.And:
		l, err := Eval(e.LHS, s, π)
		if err != nil {
			return fact.Scalar{}, err
		}
		r, err := Eval(e.RHS, s, π)
		if err != nil {
			return fact.Scalar{}, err
		}
		return evalAnd(l, r)

	case *ast.Or:
		l, err := Eval(e.LHS, s, π)
		if err != nil {
			return fact.Scalar{}, err
		}
		r, err := Eval(e.RHS, s, π)
		if err != nil {
			return fact.Scalar{}, err
		}
		return evalOr(l, r)

	case *ast.Not:
		v, err := Eval(e.Inner, s, π)
		if err != nil {
			return fact.Scalar{}, err
		}
		return evalNot(v)

	case *ast.FuncCall:
		return evalFuncCall(e, s, π)

	case *ast.Collect, *ast.Size:
		return fact.Scalar{}, ErrTypeError.New("COLLECT/SIZE may only appear in an aggregated WITH alias")

	default:
		return fact.Scalar{}, ErrTypeError.New("unsupported expression node")
	}
}

// builtins are the functions reachable through the grammar's bare
// "function(expr, ...)" production (§4.2). §4.6 defines no concrete
// function library; abs is included as a minimal, obviously-total example
// so FuncCall has somewhere real to dispatch to.
var builtins = map[string]func([]fact.Scalar) (fact.Scalar, error){
	"abs": func(args []fact.Scalar) (fact.Scalar, error) {
		if len(args) != 1 {
			return fact.Scalar{}, ErrTypeError.New("abs takes exactly one argument")
		}
		v := args[0]
		if v.IsNull() {
			return fact.Null, nil
		}
		switch v.Kind() {
		case fact.KindInt:
			n := v.Int()
			if n < 0 {
				n = -n
			}
			return fact.Int(n), nil
		case fact.KindFloat:
			return fact.Float(math.Abs(v.Float())), nil
		default:
			return fact.Scalar{}, ErrTypeError.New("abs expects a numeric argument")
		}
	},
}

func evalFuncCall(e *ast.FuncCall, s *store.FactStore, π plan.Projection) (fact.Scalar, error) {
	args := make([]fact.Scalar, len(e.Args))
	for i, a := range e.Args {
		v, err := Eval(a, s, π)
		if err != nil {
			return fact.Scalar{}, err
		}
		args[i] = v
	}
	fn, ok := builtins[strings.ToLower(e.Name)]
	if !ok {
		return fact.Scalar{}, ErrTypeError.New("unknown function " + e.Name)
	}
	return fn(args)
}
