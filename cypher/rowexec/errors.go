// Package rowexec implements C7: evaluating WITH (with grouping and
// aggregation), WHERE, and RETURN over the stream of plan.Projection values
// produced by cypher/sat (§4.6).
package rowexec

import goerrors "gopkg.in/src-d/go-errors.v1"

// ErrUnknownVariable is raised when an expression references a variable
// name that is not in scope: not a pattern variable, and (past a WITH
// boundary) not a WITH alias name either (§7 "UnknownVariable", raised by
// C4/C7).
var ErrUnknownVariable = goerrors.NewKind("unknown variable %q")

// ErrTypeError is raised when an expression is evaluated against a value of
// the wrong type: a WHERE predicate that is non-boolean non-null, a
// comparison between incomparable kinds, an aggregation expression outside
// an aggregated WITH clause, or a call to an unknown function (§7
// "TypeError").
var ErrTypeError = goerrors.NewKind("type error: %s")

// ErrDivisionByZero is raised by arithmetic division or modulo by zero
// (§7 "DivisionByZero").
var ErrDivisionByZero = goerrors.NewKind("division by zero")
