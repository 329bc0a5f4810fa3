package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zacernst/nmetl-core/fact"
)

func TestPutContainsIdempotent(t *testing.T) {
	s := NewFactStore(nil)
	f := fact.NewNodeHasLabel("n1", "Person")

	ok, err := s.Contains(f)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Put(f))
	ok, err = s.Contains(f)
	require.NoError(t, err)
	require.True(t, ok)

	// Round-trip invariant 4: put after contains-true is still a no-op.
	require.NoError(t, s.Put(f))
	ok, err = s.Contains(f)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestNodesWithLabel(t *testing.T) {
	s := NewFactStore(nil)
	require.NoError(t, s.Put(fact.NewNodeHasLabel("n1", "Person")))
	require.NoError(t, s.Put(fact.NewNodeHasLabel("n2", "Person")))
	require.NoError(t, s.Put(fact.NewNodeHasLabel("n3", "Company")))

	persons, err := s.NodesWithLabel("Person")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"n1", "n2"}, persons)

	companies, err := s.NodesWithLabel("Company")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"n3"}, companies)
}

func TestRelationshipEndpoints(t *testing.T) {
	s := NewFactStore(nil)
	require.NoError(t, s.Put(fact.NewRelationshipHasLabel("r1", "In")))
	require.NoError(t, s.Put(fact.NewRelationshipHasSource("r1", "kalamazoo")))
	require.NoError(t, s.Put(fact.NewRelationshipHasTarget("r1", "michigan")))

	rels, err := s.RelationshipsWithLabel("In")
	require.NoError(t, err)
	require.Equal(t, []string{"r1"}, rels)

	src, ok, err := s.SourceOf("r1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "kalamazoo", src)

	tgt, ok, err := s.TargetOf("r1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "michigan", tgt)
}

func TestGetAttribute(t *testing.T) {
	s := NewFactStore(nil)
	require.NoError(t, s.Put(fact.NewNodeHasAttribute("n1", "age", fact.Int(40))))

	v, ok, err := s.GetAttribute("n1", "age")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(40), v.Int())

	_, ok, err = s.GetAttribute("n1", "missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGetAttributeAmbiguous(t *testing.T) {
	s := NewFactStore(nil)
	require.NoError(t, s.Put(fact.NewNodeHasAttribute("n1", "age", fact.Int(40))))
	require.NoError(t, s.Put(fact.NewNodeHasAttribute("n1", "age", fact.Int(41))))

	_, _, err := s.GetAttribute("n1", "age")
	require.Error(t, err)
	require.True(t, ErrAmbiguousAttribute.Is(err))
}

func TestGetNodeLabel(t *testing.T) {
	s := NewFactStore(nil)
	require.NoError(t, s.Put(fact.NewNodeHasLabel("n1", "Person")))

	label, ok, err := s.GetNodeLabel("n1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Person", label)

	_, ok, err = s.GetNodeLabel("missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestScanPrefixConsistentSnapshot(t *testing.T) {
	s := NewFactStore(nil)
	require.NoError(t, s.Put(fact.NewNodeHasLabel("n1", "Person")))
	require.NoError(t, s.Put(fact.NewNodeHasLabel("n2", "Person")))

	facts, err := s.ScanPrefix(fact.NodeLabelPrefix("Person"))
	require.NoError(t, err)
	require.Len(t, facts, 2)
}

func TestWithBloomSidecarStillFindsExisting(t *testing.T) {
	s := NewFactStore(nil, WithBloomSidecar(16, 0.01))
	f := fact.NewNodeHasLabel("n1", "Person")
	require.NoError(t, s.Put(f))

	ok, err := s.Contains(f)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Contains(fact.NewNodeHasLabel("n2", "Person"))
	require.NoError(t, err)
	require.False(t, ok)
}
