package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zacernst/nmetl-core/cypher/parse"
	"github.com/zacernst/nmetl-core/fact"
	"github.com/zacernst/nmetl-core/store"
)

func TestCompileSimpleLabelMatch(t *testing.T) {
	// Scenario A.
	s := store.NewFactStore(nil)
	require.NoError(t, s.Put(fact.NewNodeHasLabel("n1", "Person")))
	require.NoError(t, s.Put(fact.NewNodeHasLabel("n2", "Person")))
	require.NoError(t, s.Put(fact.NewNodeHasLabel("n3", "Company")))

	q, err := parse.Parse("MATCH (p:Person) RETURN p")
	require.NoError(t, err)

	cnf, err := Compile(q.Match.Pattern, s, nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"n1", "n2"}, candidateEntities(cnf, "p"))
	require.NotEmpty(t, cnf.Clauses)
}

func TestCompileRelationshipMatch(t *testing.T) {
	// Scenario B.
	s := store.NewFactStore(nil)
	require.NoError(t, s.Put(fact.NewNodeHasLabel("kalamazoo", "City")))
	require.NoError(t, s.Put(fact.NewNodeHasLabel("michigan", "State")))
	require.NoError(t, s.Put(fact.NewRelationshipHasLabel("r1", "In")))
	require.NoError(t, s.Put(fact.NewRelationshipHasSource("r1", "kalamazoo")))
	require.NoError(t, s.Put(fact.NewRelationshipHasTarget("r1", "michigan")))

	q, err := parse.Parse("MATCH (c:City)-[r:In]->(s:State) RETURN c, s")
	require.NoError(t, err)

	cnf, err := Compile(q.Match.Pattern, s, nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"kalamazoo"}, candidateEntities(cnf, "c"))
	require.ElementsMatch(t, []string{"michigan"}, candidateEntities(cnf, "s"))
	require.ElementsMatch(t, []string{"r1"}, candidateEntities(cnf, "r"))
}

func TestCompileAssumptionNotACandidateIsUnsat(t *testing.T) {
	s := store.NewFactStore(nil)
	require.NoError(t, s.Put(fact.NewNodeHasLabel("kalamazoo", "City")))
	require.NoError(t, s.Put(fact.NewNodeHasLabel("michigan", "State")))
	require.NoError(t, s.Put(fact.NewRelationshipHasLabel("r1", "In")))
	require.NoError(t, s.Put(fact.NewRelationshipHasSource("r1", "kalamazoo")))
	require.NoError(t, s.Put(fact.NewRelationshipHasTarget("r1", "michigan")))

	q, err := parse.Parse("MATCH (c:City)-[r:In]->(s:State) RETURN c")
	require.NoError(t, err)

	cnf, err := Compile(q.Match.Pattern, s, Assumption{"s": "wisconsin"})
	require.NoError(t, err)

	contradictory := false
	for _, cl := range cnf.Clauses {
		if len(cl) == 1 && cl[0].Var() != 0 {
			for _, other := range cnf.Clauses {
				if len(other) == 1 && other[0] == -cl[0] {
					contradictory = true
				}
			}
		}
	}
	require.True(t, contradictory)
}

func candidateEntities(c *CNF, v string) []string {
	var out []string
	for _, id := range c.VarsFor(v) {
		b, _ := c.Binding(id)
		out = append(out, b.EntityID)
	}
	return out
}
