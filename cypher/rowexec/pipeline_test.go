package rowexec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zacernst/nmetl-core/cypher/parse"
	"github.com/zacernst/nmetl-core/cypher/plan"
	"github.com/zacernst/nmetl-core/cypher/sat"
	"github.com/zacernst/nmetl-core/fact"
	"github.com/zacernst/nmetl-core/store"
)

func run(t *testing.T, s *store.FactStore, query string, assumptions plan.Assumption) plan.ProjectionList {
	t.Helper()
	q, err := parse.Parse(query)
	require.NoError(t, err)
	require.NoError(t, CheckVariables(q))
	cnf, err := plan.Compile(q.Match.Pattern, s, assumptions)
	require.NoError(t, err)
	matches, _ := sat.Solve(cnf)
	out, err := Execute(q, s, matches)
	require.NoError(t, err)
	return out
}

func TestWhereFilter(t *testing.T) {
	// Scenario C.
	s := store.NewFactStore(nil)
	require.NoError(t, s.Put(fact.NewNodeHasLabel("p1", "Person")))
	require.NoError(t, s.Put(fact.NewNodeHasAttribute("p1", "age", fact.Int(20))))
	require.NoError(t, s.Put(fact.NewNodeHasLabel("p2", "Person")))
	require.NoError(t, s.Put(fact.NewNodeHasAttribute("p2", "age", fact.Int(40))))

	out := run(t, s, "MATCH (p:Person) WITH p.age AS a WHERE a = 40 RETURN a", nil)
	require.Len(t, out, 1)
	a, ok := out[0].Get("a")
	require.True(t, ok)
	require.Equal(t, int64(40), a.Int())
}

func TestAggregation(t *testing.T) {
	// Scenario D.
	s := store.NewFactStore(nil)
	require.NoError(t, s.Put(fact.NewNodeHasLabel("s1", "State")))
	require.NoError(t, s.Put(fact.NewNodeHasAttribute("s1", "name", fact.String("Michigan"))))
	cities := []struct {
		id       string
		hasBeach bool
	}{{"c1", true}, {"c2", true}, {"c3", false}}
	for i, c := range cities {
		require.NoError(t, s.Put(fact.NewNodeHasLabel(c.id, "City")))
		require.NoError(t, s.Put(fact.NewNodeHasAttribute(c.id, "has_beach", fact.Bool(c.hasBeach))))
		relID := "r" + string(rune('1'+i))
		require.NoError(t, s.Put(fact.NewRelationshipHasLabel(relID, "In")))
		require.NoError(t, s.Put(fact.NewRelationshipHasSource(relID, c.id)))
		require.NoError(t, s.Put(fact.NewRelationshipHasTarget(relID, "s1")))
	}

	out := run(t, s,
		`MATCH (c:City)-[r:In]->(s:State) WITH s.name AS name, COLLECT(c.has_beach) AS bs RETURN name, bs`,
		nil)
	require.Len(t, out, 1)
	name, _ := out[0].Get("name")
	require.Equal(t, "Michigan", name.Str())
	bs, _ := out[0].Get("bs")
	require.Equal(t, fact.KindList, bs.Kind())
	require.Len(t, bs.List(), 3)
}

func TestAggregationWithNoGroupByAliases(t *testing.T) {
	// §9 Open question: every alias aggregated -> exactly one output row.
	s := store.NewFactStore(nil)
	for _, id := range []string{"p1", "p2", "p3"} {
		require.NoError(t, s.Put(fact.NewNodeHasLabel(id, "Person")))
	}
	out := run(t, s, "MATCH (p:Person) WITH SIZE(COLLECT(p)) AS n RETURN n", nil)
	require.Len(t, out, 1)
	n, _ := out[0].Get("n")
	require.Equal(t, int64(3), n.Int())
}

func TestAssumptionRestricts(t *testing.T) {
	// Scenario F.
	s := store.NewFactStore(nil)
	require.NoError(t, s.Put(fact.NewNodeHasLabel("kalamazoo", "City")))
	require.NoError(t, s.Put(fact.NewNodeHasLabel("michigan", "State")))
	require.NoError(t, s.Put(fact.NewRelationshipHasLabel("r1", "In")))
	require.NoError(t, s.Put(fact.NewRelationshipHasSource("r1", "kalamazoo")))
	require.NoError(t, s.Put(fact.NewRelationshipHasTarget("r1", "michigan")))

	out := run(t, s, "MATCH (c:City)-[r:In]->(s:State) RETURN c", plan.Assumption{"s": "michigan"})
	require.Len(t, out, 1)
	c, _ := out[0].Get("c")
	require.Equal(t, "kalamazoo", c.Str())

	out = run(t, s, "MATCH (c:City)-[r:In]->(s:State) RETURN c", plan.Assumption{"s": "wisconsin"})
	require.Len(t, out, 0)
}

func TestCheckVariablesRejectsUnknownName(t *testing.T) {
	q, err := parse.Parse("MATCH (p:Person) RETURN q")
	require.NoError(t, err)
	err = CheckVariables(q)
	require.Error(t, err)
}

func TestCheckVariablesRejectsPatternVarPastWithBoundary(t *testing.T) {
	q, err := parse.Parse("MATCH (p:Person) WITH p.age AS a RETURN p")
	require.NoError(t, err)
	err = CheckVariables(q)
	require.Error(t, err)
}

func TestDivisionByZero(t *testing.T) {
	s := store.NewFactStore(nil)
	require.NoError(t, s.Put(fact.NewNodeHasLabel("p1", "Person")))
	require.NoError(t, s.Put(fact.NewNodeHasAttribute("p1", "age", fact.Int(10))))

	q, err := parse.Parse("MATCH (p:Person) WITH p.age / 0 AS a RETURN a")
	require.NoError(t, err)
	cnf, err := plan.Compile(q.Match.Pattern, s, nil)
	require.NoError(t, err)
	matches, _ := sat.Solve(cnf)
	_, err = Execute(q, s, matches)
	require.Error(t, err)
	require.True(t, ErrDivisionByZero.Is(err))
}

func TestInvariant1ProjectionSetMatchesManualEnumeration(t *testing.T) {
	// Scenario A, checked via set equality rather than exact slice order
	// (Invariant 1), exercising go-cmp's order-independent comparison.
	s := store.NewFactStore(nil)
	require.NoError(t, s.Put(fact.NewNodeHasLabel("n1", "Person")))
	require.NoError(t, s.Put(fact.NewNodeHasLabel("n2", "Person")))
	require.NoError(t, s.Put(fact.NewNodeHasLabel("n3", "Company")))

	got := run(t, s, "MATCH (p:Person) RETURN p", nil)

	want := plan.NewProjection()
	wantList := plan.ProjectionList{want.With("p", fact.String("n2")), want.With("p", fact.String("n1"))}
	requireSameProjectionSet(t, wantList, got)
}

func TestThreeValuedWhereRejectsNullAndFalse(t *testing.T) {
	s := store.NewFactStore(nil)
	require.NoError(t, s.Put(fact.NewNodeHasLabel("p1", "Person")))
	require.NoError(t, s.Put(fact.NewNodeHasLabel("p2", "Person")))
	require.NoError(t, s.Put(fact.NewNodeHasAttribute("p1", "age", fact.Int(40))))
	// p2 has no age attribute at all, so p2.age evaluates to null.
	require.NoError(t, s.Put(fact.NewNodeHasLabel("p3", "Person")))
	require.NoError(t, s.Put(fact.NewNodeHasAttribute("p3", "age", fact.Int(30))))
	// p3.age = 40 evaluates to false.

	out := run(t, s, "MATCH (p:Person) WHERE p.age = 40 RETURN p", nil)
	require.Len(t, out, 1)
	v, _ := out[0].Get("p")
	require.Equal(t, "p1", v.Str())
}
