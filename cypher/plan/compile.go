package plan

import (
	"github.com/zacernst/nmetl-core/cypher/ast"
	"github.com/zacernst/nmetl-core/store"
)

// Assumption is a partial projection pinned before query compilation,
// restricting matches to those consistent with it (§3 "Assumption",
// GLOSSARY). It binds pattern variable name to an entity id.
type Assumption map[string]string

// Compile builds the CNF instance for pattern against s, honoring
// assumptions (§4.4). Candidate enumeration, exactly-one encoding,
// relationship endpoint implications, and assumption unit clauses are
// constructed in the order described there. An assumption naming a variable
// not present in pattern is ignored; an assumption whose value is not among
// the variable's candidates makes the returned CNF unsatisfiable (a
// contradictory pair of unit clauses is added rather than surfacing an
// error — §7 treats UNSAT as an internal, non-error outcome of C6).
func Compile(pattern *ast.RelChainList, s *store.FactStore, assumptions Assumption) (*CNF, error) {
	c := newCNF()

	labelOf := map[string]string{}
	isRelVar := map[string]bool{}
	candidates := map[string][]string{}

	collectVar := func(name, label string, rel bool) {
		if name == "" {
			return
		}
		if _, seen := labelOf[name]; seen {
			return
		}
		labelOf[name] = label
		isRelVar[name] = rel
	}
	for _, chain := range pattern.Chains {
		if chain.Src != nil {
			collectVar(chain.Src.Var, chain.Src.Label, false)
		}
		if chain.Rel != nil {
			collectVar(chain.Rel.Var, chain.Rel.Label, true)
		}
		if chain.Tgt != nil {
			collectVar(chain.Tgt.Var, chain.Tgt.Label, false)
		}
	}

	// 1. Candidate enumeration (§4.4 step 1). Iterated in sorted-name order,
	// not map order, so CNF variable-id allocation (and thus clause and
	// enumeration order) is reproducible across runs for a given store.
	for _, name := range sortedKeys(labelOf) {
		label := labelOf[name]
		var cand []string
		var err error
		if isRelVar[name] {
			cand, err = s.RelationshipsWithLabel(label)
		} else {
			cand, err = s.NodesWithLabel(label)
		}
		if err != nil {
			return nil, err
		}
		candidates[name] = cand
		for _, id := range cand {
			c.idFor(name, id)
		}
	}
	candSet := map[string]map[string]bool{}
	for name, ids := range candidates {
		set := make(map[string]bool, len(ids))
		for _, id := range ids {
			set[id] = true
		}
		candSet[name] = set
	}

	// 2. Exactly-one per variable (§4.4 step 2). A variable with zero
	// candidates can never be satisfied; force global UNSAT rather than
	// silently imposing no constraint on it.
	for _, name := range sortedKeys(labelOf) {
		ids := c.VarsFor(name)
		if len(ids) == 0 {
			aux := c.freshAux()
			c.addClause(Literal(aux))
			c.addClause(Literal(-aux))
			continue
		}
		atLeastOne := make(Clause, len(ids))
		for i, id := range ids {
			atLeastOne[i] = Literal(id)
		}
		c.Clauses = append(c.Clauses, atLeastOne)
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				c.addClause(Literal(-ids[i]), Literal(-ids[j]))
			}
		}
	}

	// 3. Relationship endpoint implications (§4.4 step 3), with direction
	// handling (§4.4 "Direction handling").
	for _, chain := range pattern.Chains {
		if chain.Rel == nil {
			continue
		}
		if err := compileEndpointImplications(c, s, chain, candSet); err != nil {
			return nil, err
		}
	}

	// 4. Assumption clauses (§4.4 step 4).
	for v, e := range assumptions {
		if _, known := labelOf[v]; !known {
			continue
		}
		if !candSet[v][e] {
			// Unsatisfiable: force a contradiction via a fresh auxiliary
			// variable pinned both true and false.
			aux := c.freshAux()
			c.addClause(Literal(aux))
			c.addClause(Literal(-aux))
			continue
		}
		id := c.idFor(v, e)
		c.addClause(Literal(id))
	}

	return c, nil
}

func compileEndpointImplications(c *CNF, s *store.FactStore, chain *ast.RelChain, candSet map[string]map[string]bool) error {
	relVar := chain.Rel.Var
	srcVar := ""
	if chain.Src != nil {
		srcVar = chain.Src.Var
	}
	tgtVar := ""
	if chain.Tgt != nil {
		tgtVar = chain.Tgt.Var
	}

	for _, r_c := range c.VarsFor(relVar) {
		binding, _ := c.Binding(r_c)
		relID := binding.EntityID
		sc, sOK, err := s.SourceOf(relID)
		if err != nil {
			return err
		}
		tc, tOK, err := s.TargetOf(relID)
		if err != nil {
			return err
		}
		if !sOK || !tOK {
			c.addClause(Literal(-r_c))
			continue
		}

		forwardOK := candSet[srcVar][sc] && candSet[tgtVar][tc]
		reverseOK := candSet[srcVar][tc] && candSet[tgtVar][sc]

		switch chain.Rel.Dir {
		case ast.LeftToRight:
			addDirectedImplication(c, r_c, srcVar, sc, tgtVar, tc, forwardOK)
		case ast.RightToLeft:
			addDirectedImplication(c, r_c, srcVar, tc, tgtVar, sc, reverseOK)
		default: // ast.Either: disjunction of both directed cases (§4.4, option (a)).
			switch {
			case !forwardOK && !reverseOK:
				c.addClause(Literal(-r_c))
			case forwardOK && !reverseOK:
				addDirectedImplication(c, r_c, srcVar, sc, tgtVar, tc, true)
			case reverseOK && !forwardOK:
				addDirectedImplication(c, r_c, srcVar, tc, tgtVar, sc, true)
			default:
				d := c.auxDirVar(relVar)
				srcFwd := c.idFor(srcVar, sc)
				tgtFwd := c.idFor(tgtVar, tc)
				srcRev := c.idFor(srcVar, tc)
				tgtRev := c.idFor(tgtVar, sc)
				c.addClause(Literal(-r_c), Literal(-d), Literal(srcFwd))
				c.addClause(Literal(-r_c), Literal(-d), Literal(tgtFwd))
				c.addClause(Literal(-r_c), Literal(d), Literal(srcRev))
				c.addClause(Literal(-r_c), Literal(d), Literal(tgtRev))
			}
		}
	}
	return nil
}

// addDirectedImplication adds the two implication clauses of §4.4 step 3
// for a single resolved (source, target) assignment, or a unit clause
// killing the relationship candidate if that assignment is impossible.
func addDirectedImplication(c *CNF, relID int, srcVar, srcEntity, tgtVar, tgtEntity string, ok bool) {
	if !ok {
		c.addClause(Literal(-relID))
		return
	}
	if srcVar != "" {
		c.addClause(Literal(-relID), Literal(c.idFor(srcVar, srcEntity)))
	}
	if tgtVar != "" {
		c.addClause(Literal(-relID), Literal(c.idFor(tgtVar, tgtEntity)))
	}
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	// Deterministic compilation order matters for test stability; the
	// candidate-id allocation order (not this iteration order) is what
	// ultimately drives SAT enumeration order, but sorting here keeps
	// clause lists reproducible across runs for a given fact store.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
