package ast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zacernst/nmetl-core/fact"
)

func TestWalkPreOrder(t *testing.T) {
	lit1 := &Literal{Value: fact.Int(1)}
	lit2 := &Literal{Value: fact.Int(2)}
	v := &Variable{Name: "foo"}
	call := &FuncCall{Name: "bar", Args: []Node{lit1, lit2}}
	and := &And{LHS: v, RHS: call}
	n := &Not{Inner: and}

	var visited []Node
	Walk(VisitorFunc(func(node Node) Visitor {
		visited = append(visited, node)
		return VisitorFunc(func(node Node) Visitor {
			visited = append(visited, node)
			return VisitorFunc(func(node Node) Visitor {
				visited = append(visited, node)
				return nil
			})
		})
	}), n)

	require.Equal(t, []Node{n, and, v, call}, visited[:4])
}

func TestWalkStopsOnNilReturn(t *testing.T) {
	lit := &Literal{Value: fact.Int(1)}
	call := &FuncCall{Name: "f", Args: []Node{lit}}

	var visited []Node
	Walk(VisitorFunc(func(node Node) Visitor {
		visited = append(visited, node)
		if _, ok := node.(*FuncCall); ok {
			return nil
		}
		return VisitorFunc(func(node Node) Visitor {
			visited = append(visited, node)
			return nil
		})
	}), call)

	require.Equal(t, []Node{call}, visited)
}

func TestWalkPairs(t *testing.T) {
	lit := &Literal{Value: fact.Int(1)}
	v := &Variable{Name: "x"}
	and := &And{LHS: v, RHS: lit}

	pairs := WalkPairs(and)
	require.Len(t, pairs, 3)
	require.Nil(t, pairs[0].Parent)
	require.Equal(t, Node(and), pairs[0].Child)
	require.Equal(t, Node(and), pairs[1].Parent)
	require.Equal(t, Node(v), pairs[1].Child)
}

func TestIsAggregated(t *testing.T) {
	lookup := &AttrLookup{Var: "c", Attr: "has_beach"}
	collected := &Alias{Expr: &Collect{Inner: lookup}, Name: "bs"}
	plain := &Alias{Expr: lookup, Name: "b"}

	require.True(t, collected.IsAggregated())
	require.False(t, plain.IsAggregated())
}

func TestRelChainListVariables(t *testing.T) {
	city := &PatternNode{Var: "c", Label: "City"}
	state := &PatternNode{Var: "s", Label: "State"}
	rel := &PatternRel{Var: "r", Label: "In", Dir: LeftToRight}
	list := &RelChainList{Chains: []*RelChain{{Src: city, Rel: rel, Tgt: state}}}

	require.Equal(t, []string{"c", "r", "s"}, list.Variables())
}
