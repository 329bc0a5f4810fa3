package trigger

import (
	"github.com/zacernst/nmetl-core/cypher/ast"
	"github.com/zacernst/nmetl-core/fact"
	"github.com/zacernst/nmetl-core/store"
)

// candidateSeeds implements §4.7 step 1: given a newly-ingested fact f,
// determine which of t's pattern variables could plausibly be bound to
// which entity, so the query only needs to be re-run with that single
// variable pinned rather than re-enumerated from scratch.
func candidateSeeds(s *store.FactStore, t *Trigger, f fact.Fact) []seed {
	switch f.Kind() {
	case fact.NodeHasLabel:
		return nodeVarsWithLabel(t, f.Label(), f.NodeID())

	case fact.NodeHasAttribute:
		var out []seed
		out = append(out, nodeVarsReferencingAttr(t, f.Attribute(), f.NodeID())...)
		if label, ok, err := s.GetNodeLabel(f.NodeID()); err == nil && ok {
			out = append(out, nodeVarsWithLabel(t, label, f.NodeID())...)
		}
		return out

	case fact.RelationshipHasLabel:
		return relVarsWithLabel(t, f.Label(), f.RelID())

	case fact.RelationshipHasAttribute:
		var out []seed
		out = append(out, relVarsReferencingAttr(t, f.Attribute(), f.RelID())...)
		if label, ok := relLabelOf(s, f.RelID()); ok {
			out = append(out, relVarsWithLabel(t, label, f.RelID())...)
		}
		return out

	case fact.RelationshipHasSource, fact.RelationshipHasTarget:
		if label, ok := relLabelOf(s, f.RelID()); ok {
			return relVarsWithLabel(t, label, f.RelID())
		}
		return nil

	default:
		return nil
	}
}

func relLabelOf(s *store.FactStore, relID string) (string, bool) {
	facts, err := s.ScanPrefix(fact.RelationshipLabelAllPrefix())
	if err != nil {
		return "", false
	}
	for _, f := range facts {
		if f.RelID() == relID {
			return f.Label(), true
		}
	}
	return "", false
}

func nodeVarsWithLabel(t *Trigger, label, nodeID string) []seed {
	var out []seed
	for _, chain := range t.Query.Match.Pattern.Chains {
		for _, n := range []*ast.PatternNode{chain.Src, chain.Tgt} {
			if n != nil && n.Var != "" && n.Label == label {
				out = append(out, seed{variable: n.Var, entityID: nodeID})
			}
		}
	}
	return out
}

func relVarsWithLabel(t *Trigger, label, relID string) []seed {
	var out []seed
	for _, chain := range t.Query.Match.Pattern.Chains {
		if chain.Rel != nil && chain.Rel.Var != "" && chain.Rel.Label == label {
			out = append(out, seed{variable: chain.Rel.Var, entityID: relID})
		}
	}
	return out
}

// nodeVarsReferencingAttr finds pattern variables v (node or relationship)
// such that the WHERE predicate or some WITH/RETURN alias expression contains
// v.attr (§4.7 step 1, second bullet).
func nodeVarsReferencingAttr(t *Trigger, attr, nodeID string) []seed {
	patternVars := map[string]bool{}
	for _, v := range t.Query.Match.Pattern.Variables() {
		patternVars[v] = true
	}
	seen := map[string]bool{}
	var out []seed
	add := func(varName string) {
		if !patternVars[varName] || seen[varName] {
			return
		}
		seen[varName] = true
		out = append(out, seed{variable: varName, entityID: nodeID})
	}

	visit := func(n ast.Node) {
		var walkFn ast.VisitorFunc
		walkFn = func(node ast.Node) ast.Visitor {
			if lookup, ok := node.(*ast.AttrLookup); ok && lookup.Attr == attr {
				add(lookup.Var)
				return nil
			}
			return walkFn
		}
		ast.Walk(walkFn, n)
	}

	if t.Query.Match.With != nil {
		for _, a := range t.Query.Match.With.Aliases {
			visit(a.Expr)
		}
	}
	for _, a := range t.Query.Return.Aliases {
		visit(a.Expr)
	}
	if t.Query.Match.Where != nil {
		visit(t.Query.Match.Where.Predicate)
	}
	return out
}

func relVarsReferencingAttr(t *Trigger, attr, relID string) []seed {
	// Relationship variables share the same AttrLookup shape as node
	// variables; the only distinction is which pattern variable set they
	// are drawn from.
	relVars := map[string]bool{}
	for _, chain := range t.Query.Match.Pattern.Chains {
		if chain.Rel != nil && chain.Rel.Var != "" {
			relVars[chain.Rel.Var] = true
		}
	}
	seen := map[string]bool{}
	var out []seed
	add := func(varName string) {
		if !relVars[varName] || seen[varName] {
			return
		}
		seen[varName] = true
		out = append(out, seed{variable: varName, entityID: relID})
	}
	visit := func(n ast.Node) {
		var walkFn ast.VisitorFunc
		walkFn = func(node ast.Node) ast.Visitor {
			if lookup, ok := node.(*ast.AttrLookup); ok && lookup.Attr == attr {
				add(lookup.Var)
				return nil
			}
			return walkFn
		}
		ast.Walk(walkFn, n)
	}
	if t.Query.Match.With != nil {
		for _, a := range t.Query.Match.With.Aliases {
			visit(a.Expr)
		}
	}
	for _, a := range t.Query.Return.Aliases {
		visit(a.Expr)
	}
	if t.Query.Match.Where != nil {
		visit(t.Query.Match.Where.Predicate)
	}
	return out
}
