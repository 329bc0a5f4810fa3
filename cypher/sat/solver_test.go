package sat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zacernst/nmetl-core/cypher/parse"
	"github.com/zacernst/nmetl-core/cypher/plan"
	"github.com/zacernst/nmetl-core/fact"
	"github.com/zacernst/nmetl-core/store"
)

func compile(t *testing.T, s *store.FactStore, query string, assumptions plan.Assumption) *plan.CNF {
	t.Helper()
	q, err := parse.Parse(query)
	require.NoError(t, err)
	cnf, err := plan.Compile(q.Match.Pattern, s, assumptions)
	require.NoError(t, err)
	return cnf
}

func TestSolveSimpleLabelMatch(t *testing.T) {
	// Scenario A.
	s := store.NewFactStore(nil)
	require.NoError(t, s.Put(fact.NewNodeHasLabel("n1", "Person")))
	require.NoError(t, s.Put(fact.NewNodeHasLabel("n2", "Person")))
	require.NoError(t, s.Put(fact.NewNodeHasLabel("n3", "Company")))

	cnf := compile(t, s, "MATCH (p:Person) RETURN p", nil)
	models, stats := Solve(cnf)

	var got []string
	for _, m := range models {
		v, _ := m.Get("p")
		got = append(got, v.Str())
	}
	require.ElementsMatch(t, []string{"n1", "n2"}, got)
	require.Equal(t, 2, stats.ModelsFound)
}

func TestSolveRelationshipMatch(t *testing.T) {
	// Scenario B.
	s := store.NewFactStore(nil)
	require.NoError(t, s.Put(fact.NewNodeHasLabel("kalamazoo", "City")))
	require.NoError(t, s.Put(fact.NewNodeHasLabel("michigan", "State")))
	require.NoError(t, s.Put(fact.NewRelationshipHasLabel("r1", "In")))
	require.NoError(t, s.Put(fact.NewRelationshipHasSource("r1", "kalamazoo")))
	require.NoError(t, s.Put(fact.NewRelationshipHasTarget("r1", "michigan")))

	cnf := compile(t, s, "MATCH (c:City)-[r:In]->(s:State) RETURN c, s", nil)
	models, _ := Solve(cnf)
	require.Len(t, models, 1)
	c, _ := models[0].Get("c")
	st, _ := models[0].Get("s")
	require.Equal(t, "kalamazoo", c.Str())
	require.Equal(t, "michigan", st.Str())
}

func TestSolveReversedDirectionMatchesSameRelationship(t *testing.T) {
	s := store.NewFactStore(nil)
	require.NoError(t, s.Put(fact.NewNodeHasLabel("kalamazoo", "City")))
	require.NoError(t, s.Put(fact.NewNodeHasLabel("michigan", "State")))
	require.NoError(t, s.Put(fact.NewRelationshipHasLabel("r1", "In")))
	require.NoError(t, s.Put(fact.NewRelationshipHasSource("r1", "kalamazoo")))
	require.NoError(t, s.Put(fact.NewRelationshipHasTarget("r1", "michigan")))

	cnf := compile(t, s, "MATCH (s:State)<-[r:In]-(c:City) RETURN c, s", nil)
	models, _ := Solve(cnf)
	require.Len(t, models, 1)
	c, _ := models[0].Get("c")
	st, _ := models[0].Get("s")
	require.Equal(t, "kalamazoo", c.Str())
	require.Equal(t, "michigan", st.Str())
}

func TestSolveUndirectedMatchesEitherOrientation(t *testing.T) {
	s := store.NewFactStore(nil)
	require.NoError(t, s.Put(fact.NewNodeHasLabel("a", "Person")))
	require.NoError(t, s.Put(fact.NewNodeHasLabel("b", "Person")))
	require.NoError(t, s.Put(fact.NewRelationshipHasLabel("r1", "Knows")))
	require.NoError(t, s.Put(fact.NewRelationshipHasSource("r1", "a")))
	require.NoError(t, s.Put(fact.NewRelationshipHasTarget("r1", "b")))

	cnf := compile(t, s, "MATCH (x:Person)-[r:Knows]-(y:Person) RETURN x, y", nil)
	models, _ := Solve(cnf)

	found := false
	for _, m := range models {
		x, _ := m.Get("x")
		y, _ := m.Get("y")
		if x.Str() == "a" && y.Str() == "b" {
			found = true
		}
	}
	require.True(t, found)
}

func TestSolveAssumptionRestricts(t *testing.T) {
	// Scenario F.
	s := store.NewFactStore(nil)
	require.NoError(t, s.Put(fact.NewNodeHasLabel("kalamazoo", "City")))
	require.NoError(t, s.Put(fact.NewNodeHasLabel("michigan", "State")))
	require.NoError(t, s.Put(fact.NewRelationshipHasLabel("r1", "In")))
	require.NoError(t, s.Put(fact.NewRelationshipHasSource("r1", "kalamazoo")))
	require.NoError(t, s.Put(fact.NewRelationshipHasTarget("r1", "michigan")))

	cnf := compile(t, s, "MATCH (c:City)-[r:In]->(s:State) RETURN c", plan.Assumption{"s": "michigan"})
	models, _ := Solve(cnf)
	require.Len(t, models, 1)
	c, _ := models[0].Get("c")
	require.Equal(t, "kalamazoo", c.Str())

	cnf = compile(t, s, "MATCH (c:City)-[r:In]->(s:State) RETURN c", plan.Assumption{"s": "wisconsin"})
	models, _ = Solve(cnf)
	require.Len(t, models, 0)
}

func TestSolveNoMatchesIsEmpty(t *testing.T) {
	s := store.NewFactStore(nil)
	cnf := compile(t, s, "MATCH (p:Person) RETURN p", nil)
	models, stats := Solve(cnf)
	require.Len(t, models, 0)
	require.Equal(t, 0, stats.ModelsFound)
}
