// Package ast defines the tagged-variant AST produced by cypher/parse (C4):
// pattern nodes (graph shape) and expression nodes (WITH/WHERE/RETURN),
// plus the uniform, non-recursive traversal used by the evaluator (C7) and
// the compiler (C5).
package ast

import "sort"

// Position records a node's source range, for error messages (§4.3 "records
// its source range for error messages").
type Position struct {
	Offset int
	Length int
}

// Node is implemented by every AST variant: pattern nodes and expression
// nodes alike. Children returns the immediate sub-nodes in a fixed,
// deterministic order so that Walk and WalkPairs produce stable traversals.
type Node interface {
	Children() []Node
	Pos() Position
}

// Direction tags a pattern relationship's arrow direction.
type Direction uint8

const (
	// LeftToRight is "-[r]->".
	LeftToRight Direction = iota
	// RightToLeft is "<-[r]-".
	RightToLeft
	// Either is the undirected "-[r]-" form (§4.4 "Direction handling").
	Either
)

// PropMap is a literal property map attached to a pattern node, e.g.
// "(n:Label {key: value})". The compiler (C5) does not currently consult
// PropMap when building candidate sets; it is carried through parsing so
// that future constraint tightening (filtering candidates by property
// before the SAT encoding) has somewhere to read from, and so the AST is a
// faithful rendering of the grammar in §4.2.
type PropMap map[string]Node

// PatternNode is a graph pattern node: "(var:Label {prop_map})" (§4.3
// "Node(var, label, prop_map)"). Var and Label are "" when omitted by the
// query.
type PatternNode struct {
	Position Position
	Var      string
	Label    string
	Props    PropMap
}

func (n *PatternNode) Pos() Position { return n.Position }
func (n *PatternNode) Children() []Node {
	keys := make([]string, 0, len(n.Props))
	for k := range n.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []Node
	for _, k := range keys {
		out = append(out, n.Props[k])
	}
	return out
}

// PatternRel is a graph pattern relationship: "-[var:Label]->" or its
// mirrored/undirected forms (§4.3 "Relationship(var, label, direction)").
type PatternRel struct {
	Position Position
	Var      string
	Label    string
	Dir      Direction
}

func (r *PatternRel) Pos() Position    { return r.Position }
func (r *PatternRel) Children() []Node { return nil }

// RelChain is one hop of a MATCH pattern: a source node, a relationship,
// and a target node (§4.3 "RelationshipChain(src_node, rel, tgt_node)").
// Rel and Tgt are nil for a bare node pattern with no relationship (e.g.
// "MATCH (p:Person)"), which the grammar's "node { relationship node }"
// production allows with zero repetitions.
type RelChain struct {
	Position Position
	Src      *PatternNode
	Rel      *PatternRel
	Tgt      *PatternNode
}

func (c *RelChain) Pos() Position { return c.Position }
func (c *RelChain) Children() []Node {
	var out []Node
	if c.Src != nil {
		out = append(out, c.Src)
	}
	if c.Rel != nil {
		out = append(out, c.Rel)
	}
	if c.Tgt != nil {
		out = append(out, c.Tgt)
	}
	return out
}

// RelChainList is the full MATCH pattern: a comma-separated list of
// relationship chains (§4.3 "RelationshipChainList").
type RelChainList struct {
	Position Position
	Chains   []*RelChain
}

func (l *RelChainList) Pos() Position { return l.Position }
func (l *RelChainList) Children() []Node {
	out := make([]Node, len(l.Chains))
	for i, c := range l.Chains {
		out[i] = c
	}
	return out
}

// Variables returns every distinct pattern variable name bound by the
// pattern (node and relationship variables alike), in first-appearance
// order. Anonymous ("") variables are omitted.
func (l *RelChainList) Variables() []string {
	seen := map[string]bool{}
	var out []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}
	for _, c := range l.Chains {
		if c.Src != nil {
			add(c.Src.Var)
		}
		if c.Rel != nil {
			add(c.Rel.Var)
		}
		if c.Tgt != nil {
			add(c.Tgt.Var)
		}
	}
	return out
}

// IsRelationshipVar reports whether name is bound to a relationship pattern
// variable (as opposed to a node pattern variable) anywhere in the pattern.
func (l *RelChainList) IsRelationshipVar(name string) bool {
	for _, c := range l.Chains {
		if c.Rel != nil && c.Rel.Var == name {
			return true
		}
	}
	return false
}

// Match is "MATCH rel_chain_list [WITH ...] [WHERE ...]" (§4.3 "Match(pattern, with?, where?)").
type Match struct {
	Position Position
	Pattern  *RelChainList
	With     *With
	Where    *Where
}

func (m *Match) Pos() Position { return m.Position }
func (m *Match) Children() []Node {
	out := []Node{m.Pattern}
	if m.With != nil {
		out = append(out, m.With)
	}
	if m.Where != nil {
		out = append(out, m.Where)
	}
	return out
}

// Cypher is the top-level AST produced by the parser: "MATCH ... RETURN ..."
// (§4.3 "Cypher(Match, Return)").
type Cypher struct {
	Position Position
	Match    *Match
	Return   *Return
}

func (c *Cypher) Pos() Position { return c.Position }
func (c *Cypher) Children() []Node {
	return []Node{c.Match, c.Return}
}
