package trigger

import (
	goerrors "gopkg.in/src-d/go-errors.v1"
)

// ErrTriggerFunctionError wraps a panic/error raised by a trigger's function
// body (§7 "TriggerFunctionError"). Dispatch isolates it: the offending
// fact/trigger pair is logged and abandoned, other triggers continue.
var ErrTriggerFunctionError = goerrors.NewKind("trigger %s failed on fact %s: %s")

// ErrBadOutputKind is raised at Register time when an OutputKind names a
// variable that is not among the query's MATCH pattern variables, and when
// an OutputKind is applied to a pattern projection that has no binding for
// one of its variables.
var ErrBadOutputKind = goerrors.NewKind("output kind references %q, which is not a MATCH pattern variable")
