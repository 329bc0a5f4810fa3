package trigger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zacernst/nmetl-core/fact"
	"github.com/zacernst/nmetl-core/store"
)

func TestScenarioETriggerFiring(t *testing.T) {
	s := store.NewFactStore(nil)
	d := NewDispatcher(s)

	var sandy fact.Scalar
	_, err := d.Register(
		"MATCH (c:City) WITH c.has_beach AS b RETURN b",
		func(args map[string]fact.Scalar) (fact.Scalar, error) {
			sandy = args["b"]
			return args["b"], nil
		},
		VariableAttribute{Var: "c", Attribute: "sandy"},
	)
	require.NoError(t, err)

	_, err = d.Ingest(fact.NewNodeHasLabel("x", "City"))
	require.NoError(t, err)
	_, err = d.Ingest(fact.NewNodeHasAttribute("x", "has_beach", fact.Bool(true)))
	require.NoError(t, err)

	require.True(t, sandy.Bool())
	got, found, err := s.GetAttribute("x", "sandy")
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, got.Bool())
}

func TestRegisterRejectsOutputVariableNotInPattern(t *testing.T) {
	s := store.NewFactStore(nil)
	d := NewDispatcher(s)
	_, err := d.Register(
		"MATCH (c:City) RETURN c",
		func(args map[string]fact.Scalar) (fact.Scalar, error) { return fact.Bool(true), nil },
		VariableAttribute{Var: "nonexistent", Attribute: "sandy"},
	)
	require.Error(t, err)
}

func TestRegisterAcceptsOutputVariableDroppedByWith(t *testing.T) {
	// Scenario E's own shape: the output kind names a MATCH pattern
	// variable ("c") that WITH/RETURN never re-exposes (RETURN only
	// surfaces "b"). Registration must succeed — output variables are
	// checked against the pattern, not the RETURN alias set.
	s := store.NewFactStore(nil)
	d := NewDispatcher(s)
	_, err := d.Register(
		"MATCH (c:City) WITH c.has_beach AS b RETURN b",
		func(args map[string]fact.Scalar) (fact.Scalar, error) { return args["b"], nil },
		VariableAttribute{Var: "c", Attribute: "sandy"},
	)
	require.NoError(t, err)
}

func TestRegisterRejectsUnknownVariableInQuery(t *testing.T) {
	s := store.NewFactStore(nil)
	d := NewDispatcher(s)
	_, err := d.Register(
		"MATCH (c:City) RETURN q",
		func(args map[string]fact.Scalar) (fact.Scalar, error) { return fact.Bool(true), nil },
		VariableAttribute{Var: "q", Attribute: "sandy"},
	)
	require.Error(t, err)
}

func TestTriggerFunctionErrorIsIsolated(t *testing.T) {
	s := store.NewFactStore(nil)
	d := NewDispatcher(s)

	calls := 0
	_, err := d.Register(
		"MATCH (c:City) WITH c.has_beach AS b RETURN b",
		func(args map[string]fact.Scalar) (fact.Scalar, error) {
			calls++
			return fact.Scalar{}, ErrTriggerFunctionError.New(TriggerID(0), "test", "boom")
		},
		VariableAttribute{Var: "c", Attribute: "sandy"},
	)
	require.NoError(t, err)

	require.NoError(t, s.Put(fact.NewNodeHasLabel("x", "City")))
	emitted, err := d.Ingest(fact.NewNodeHasAttribute("x", "has_beach", fact.Bool(true)))
	require.NoError(t, err)
	require.Empty(t, emitted)
	require.Equal(t, 1, calls)

	_, found, err := s.GetAttribute("x", "sandy")
	require.NoError(t, err)
	require.False(t, found)
}

func TestNodeRelationshipOutputKind(t *testing.T) {
	s := store.NewFactStore(nil)
	d := NewDispatcher(s)

	require.NoError(t, s.Put(fact.NewNodeHasLabel("michigan", "State")))

	_, err := d.Register(
		"MATCH (c:City) RETURN c",
		func(args map[string]fact.Scalar) (fact.Scalar, error) {
			return fact.Bool(true), nil
		},
		NodeRelationship{SrcVar: "c", RelLabel: "In", TgtVar: "c"},
	)
	require.NoError(t, err)

	emitted, err := d.Ingest(fact.NewNodeHasLabel("kalamazoo", "City"))
	require.NoError(t, err)

	var sawLabel bool
	for _, f := range emitted {
		if f.Kind() == fact.RelationshipHasLabel && f.Label() == "In" {
			sawLabel = true
		}
	}
	require.True(t, sawLabel)
}

func TestVariableAttributeOnRelationshipVariable(t *testing.T) {
	// VariableAttribute must emit RelationshipHasAttribute, not
	// NodeHasAttribute, when Var is bound to a relationship pattern
	// variable rather than a node one.
	s := store.NewFactStore(nil)
	d := NewDispatcher(s)

	require.NoError(t, s.Put(fact.NewNodeHasLabel("kalamazoo", "City")))
	require.NoError(t, s.Put(fact.NewNodeHasLabel("michigan", "State")))
	require.NoError(t, s.Put(fact.NewRelationshipHasSource("r1", "kalamazoo")))
	require.NoError(t, s.Put(fact.NewRelationshipHasTarget("r1", "michigan")))

	_, err := d.Register(
		"MATCH (c:City)-[r:In]->(s:State) RETURN r",
		func(args map[string]fact.Scalar) (fact.Scalar, error) { return fact.Bool(true), nil },
		VariableAttribute{Var: "r", Attribute: "verified"},
	)
	require.NoError(t, err)

	_, err = d.Ingest(fact.NewRelationshipHasLabel("r1", "In"))
	require.NoError(t, err)

	got, found, err := s.GetAttribute("r1", "verified")
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, got.Bool())
}

func TestFuelBoundsReentrantDispatch(t *testing.T) {
	// A trigger that (in principle) could keep re-firing on its own output
	// must stop once fuel is exhausted rather than recursing forever.
	s := store.NewFactStore(nil)
	d := NewDispatcher(s, WithFuel(1))

	n := 0
	_, err := d.Register(
		"MATCH (c:City) RETURN c",
		func(args map[string]fact.Scalar) (fact.Scalar, error) {
			n++
			return fact.Bool(true), nil
		},
		VariableAttribute{Var: "c", Attribute: "visited"},
	)
	require.NoError(t, err)

	_, err = d.Ingest(fact.NewNodeHasLabel("x", "City"))
	require.NoError(t, err)
	require.Less(t, n, 10)
}
