package trigger

import (
	uuid "github.com/satori/go.uuid"

	"github.com/zacernst/nmetl-core/cypher/plan"
	"github.com/zacernst/nmetl-core/fact"
)

// OutputKind interprets a trigger function's return value into zero or more
// new facts (§4.7 step 2). Its variables name MATCH pattern variables, not
// RETURN aliases — WITH/RETURN may rename or drop the pattern variable an
// output kind writes to before the query's final projection is built (e.g.
// Scenario E's "MATCH (c:City) WITH c.has_beach AS b RETURN b" never
// re-exposes "c"), so apply is given the pattern-stage projection
// (rowexec.ExecuteTracked's second return value), not the RETURN-stream one.
type OutputKind interface {
	// variables returns every pattern variable name this output kind reads,
	// so Register can verify each one is bound by the query's MATCH pattern.
	variables() []string
	// apply builds the emitted facts from ret (the trigger function's
	// return value) and pattern (the pre-WITH projection the firing row was
	// matched to). isRelVar reports whether a given pattern variable name is
	// bound to a relationship rather than a node, per the trigger's query.
	apply(pattern plan.Projection, ret fact.Scalar, isRelVar func(string) bool) ([]fact.Fact, error)
}

// VariableAttribute emits NodeHasAttribute(pattern[Var], Attribute,
// return_value) (§4.7 step 2, first case). Despite the name it applies
// equally to a relationship-bound variable, producing a
// RelationshipHasAttribute instead; Var's binding determines which.
type VariableAttribute struct {
	Var       string
	Attribute string
}

func (v VariableAttribute) variables() []string { return []string{v.Var} }

func (v VariableAttribute) apply(pattern plan.Projection, ret fact.Scalar, isRelVar func(string) bool) ([]fact.Fact, error) {
	if ret.IsNull() {
		// A null return usually means the function's inputs aren't fully
		// populated yet (e.g. Scenario E firing before has_beach is set).
		// Writing that through as a stored null would coexist forever
		// alongside whatever real value arrives later — store.FactStore
		// keys on (entity, attribute, value), so distinct values for the
		// same attribute do not overwrite, they accumulate — leaving
		// get_attribute permanently ambiguous. Skip instead; the trigger
		// re-fires once the real value lands.
		return nil, nil
	}
	b, ok := pattern.Get(v.Var)
	if !ok {
		return nil, ErrBadOutputKind.New(v.Var)
	}
	if isRelVar(v.Var) {
		return []fact.Fact{fact.NewRelationshipHasAttribute(b.Str(), v.Attribute, ret)}, nil
	}
	return []fact.Fact{fact.NewNodeHasAttribute(b.Str(), v.Attribute, ret)}, nil
}

// NodeRelationship emits a fresh relationship between projection[SrcVar]
// and projection[TgtVar] labeled RelLabel (§4.7 step 2, second case): one
// RelationshipHasLabel, one RelationshipHasSource, one RelationshipHasTarget,
// sharing a freshly generated rel_id.
//
// The source spec does not say what role the function's return value plays
// for this output kind (only VariableAttribute consumes it directly as the
// attribute value). This implementation treats it as a gate: a null or
// `false` return value means "do not create this relationship", anything
// else means "create it". This is recorded as an explicit design decision.
type NodeRelationship struct {
	SrcVar   string
	RelLabel string
	TgtVar   string
}

func (r NodeRelationship) variables() []string { return []string{r.SrcVar, r.TgtVar} }

func (r NodeRelationship) apply(pattern plan.Projection, ret fact.Scalar, isRelVar func(string) bool) ([]fact.Fact, error) {
	if ret.IsNull() {
		return nil, nil
	}
	if ret.Kind() == fact.KindBool && !ret.Bool() {
		return nil, nil
	}
	src, ok := pattern.Get(r.SrcVar)
	if !ok {
		return nil, ErrBadOutputKind.New(r.SrcVar)
	}
	tgt, ok := pattern.Get(r.TgtVar)
	if !ok {
		return nil, ErrBadOutputKind.New(r.TgtVar)
	}
	relID := uuid.NewV4().String() // v1.2.0: NewV4 returns a value, never an error
	return []fact.Fact{
		fact.NewRelationshipHasLabel(relID, r.RelLabel),
		fact.NewRelationshipHasSource(relID, src.Str()),
		fact.NewRelationshipHasTarget(relID, tgt.Str()),
	}, nil
}
