// Package plan implements C5: compiling a pattern (cypher/ast.RelChainList)
// plus a fact store into a CNF instance whose satisfying assignments
// correspond exactly to pattern matches (§4.4).
package plan

import "github.com/zacernst/nmetl-core/fact"

// Binding is a single variable → value entry. Value is a node/relationship
// id during pattern matching; rowexec widens it to scalars once WITH/RETURN
// expressions are evaluated.
type Binding struct {
	Var   string
	Value fact.Scalar
}

// Projection is an immutable mapping from variable name to a bound value
// (§3 "Projection"). Pattern-matching projections always bind entity ids,
// carried as fact.String(id) so a single Scalar-keyed type serves both the
// pattern stage and the expression stage.
type Projection struct {
	order []string
	vals  map[string]fact.Scalar
}

// NewProjection builds a Projection with a stable key order matching the
// order keys are first set (so output column order is deterministic for a
// given solver enumeration order, §4.6 "Determinism").
func NewProjection() Projection {
	return Projection{vals: map[string]fact.Scalar{}}
}

// With returns a copy of p with name bound to v, preserving p's key order
// and appending name if new. Projection is immutable (§3 "Projection:
// created by C6/C7; immutable"); mutating methods always return a copy.
func (p Projection) With(name string, v fact.Scalar) Projection {
	out := Projection{
		order: append(append([]string(nil), p.order...)),
		vals:  make(map[string]fact.Scalar, len(p.vals)+1),
	}
	for k, val := range p.vals {
		out.vals[k] = val
	}
	if _, exists := p.vals[name]; !exists {
		out.order = append(out.order, name)
	}
	out.vals[name] = v
	return out
}

// WithEntity is a convenience for With(name, fact.String(entityID)), used
// throughout pattern matching where bound values are always entity ids.
func (p Projection) WithEntity(name, entityID string) Projection {
	return p.With(name, fact.String(entityID))
}

// Get returns the value bound to name and whether it was bound.
func (p Projection) Get(name string) (fact.Scalar, bool) {
	v, ok := p.vals[name]
	return v, ok
}

// Keys returns the bound variable names in first-bound order.
func (p Projection) Keys() []string {
	return append([]string(nil), p.order...)
}

// Len reports the number of bound variables.
func (p Projection) Len() int { return len(p.order) }

// ProjectionList is an ordered sequence of projections (§3).
type ProjectionList []Projection
