// Package sat implements C6: driving a SAT solver to enumerate every
// satisfying model of the CNF produced by cypher/plan, decoding each model
// back into a plan.Projection (§4.5). No SAT or constraint-solving library
// appears anywhere in the retrieved example corpus, so this is a
// from-scratch implementation, grounded on the textbook CDCL algorithm
// description cited by §4.5 rather than on any teacher file: unit
// propagation to fixpoint, conflict detection, and backtracking search with
// a "try true then false" branching rule. Conflict-driven backtracking here
// is chronological rather than a full non-chronological first-UIP jump —
// correct and adequate for the candidate-set sizes this compiler produces,
// at the cost of the asymptotic speed a production CDCL solver gets from
// clause learning across decision levels.
package sat

import "github.com/zacernst/nmetl-core/cypher/plan"

type lbool int8

const (
	lUndef lbool = 0
	lTrue  lbool = 1
	lFalse lbool = -1
)

// Stats accumulates per-solve counters (SPEC_FULL.md §4's supplemented
// "per-query solve statistics" feature, grounded on the original solver's
// instrumentation). Solve populates it and returns it alongside the model
// stream; rowexec and the engine do not consume it.
type Stats struct {
	Decisions    int
	Conflicts    int
	Propagations int
	ModelsFound  int
}

type decisionFrame struct {
	v          int
	trailPos   int
	triedFalse bool
}

type solver struct {
	numVars   int
	clauses   []plan.Clause
	assign    []lbool
	trail     []int
	decisions []decisionFrame
}

func newSolver(numVars int, clauses []plan.Clause) *solver {
	return &solver{
		numVars: numVars,
		clauses: append([]plan.Clause(nil), clauses...),
		assign:  make([]lbool, numVars+1),
	}
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (s *solver) litValue(lit int) lbool {
	v := absInt(lit)
	a := s.assign[v]
	if lit < 0 {
		return -a
	}
	return a
}

func (s *solver) assignLit(lit int) {
	v := absInt(lit)
	if lit > 0 {
		s.assign[v] = lTrue
	} else {
		s.assign[v] = lFalse
	}
	s.trail = append(s.trail, lit)
}

func (s *solver) undoTrailTo(pos int) {
	for len(s.trail) > pos {
		lit := s.trail[len(s.trail)-1]
		s.trail = s.trail[:len(s.trail)-1]
		s.assign[absInt(lit)] = lUndef
	}
}

// propagate scans every clause to fixpoint, assigning any literal that is
// the sole unassigned literal of an otherwise-false clause. It reports
// whether a conflict (a clause with every literal false) was found.
func (s *solver) propagate(stats *Stats) bool {
	for {
		changed := false
		for _, c := range s.clauses {
			satisfied := false
			unassignedCount := 0
			var unassignedLit int
			for _, l := range c {
				v := s.litValue(int(l))
				if v == lTrue {
					satisfied = true
					break
				}
				if v == lUndef {
					unassignedCount++
					unassignedLit = int(l)
				}
			}
			if satisfied {
				continue
			}
			if unassignedCount == 0 {
				return true // conflict: every literal false
			}
			if unassignedCount == 1 {
				s.assignLit(unassignedLit)
				stats.Propagations++
				changed = true
			}
		}
		if !changed {
			return false
		}
	}
}

func (s *solver) pickUnassigned() (int, bool) {
	for v := 1; v <= s.numVars; v++ {
		if s.assign[v] == lUndef {
			return v, true
		}
	}
	return 0, false
}

func (s *solver) decide(v int) {
	s.decisions = append(s.decisions, decisionFrame{v: v, trailPos: len(s.trail)})
	s.assignLit(v)
}

// backtrack undoes assignments back through decision frames until it finds
// one whose "false" branch has not yet been tried, flips it, and returns
// true; it returns false once every decision has been exhausted (UNSAT from
// the current search root).
func (s *solver) backtrack() bool {
	for len(s.decisions) > 0 {
		top := &s.decisions[len(s.decisions)-1]
		s.undoTrailTo(top.trailPos)
		if !top.triedFalse {
			top.triedFalse = true
			s.assignLit(-top.v)
			return true
		}
		s.decisions = s.decisions[:len(s.decisions)-1]
	}
	return false
}

// search drives unit propagation and decisions until either every variable
// is assigned with no conflict (a model), or the search space is exhausted.
func (s *solver) search(stats *Stats) bool {
	for {
		if s.propagate(stats) {
			stats.Conflicts++
			if !s.backtrack() {
				return false
			}
			continue
		}
		v, ok := s.pickUnassigned()
		if !ok {
			return true
		}
		stats.Decisions++
		s.decide(v)
	}
}

// Solve enumerates every satisfying model of cnf, decoding each one into a
// plan.Projection over cnf's pattern variables (§4.5 "Contract"). After each
// model, a blocking clause over the pattern-variable literals (not the
// auxiliary direction variables cypher/plan may have introduced) is added
// before resuming search, per §4.5's "Performance note": since the blocking
// clause mentions no auxiliary variable, any assignment differing only in
// auxiliary state is rejected without being enumerated as a distinct model.
func Solve(cnf *plan.CNF) (plan.ProjectionList, Stats) {
	var stats Stats
	s := newSolver(cnf.NumVars(), cnf.Clauses)

	var out plan.ProjectionList
	for {
		if !s.search(&stats) {
			return out, stats
		}
		stats.ModelsFound++
		out = append(out, decodeModel(s, cnf))

		blocking := blockingClause(s, cnf)
		s.clauses = append(s.clauses, blocking)
		if !s.backtrack() {
			return out, stats
		}
	}
}

func decodeModel(s *solver, cnf *plan.CNF) plan.Projection {
	proj := plan.NewProjection()
	for _, v := range cnf.PatternVariables() {
		for _, id := range cnf.VarsFor(v) {
			if s.assign[id] == lTrue {
				binding, _ := cnf.Binding(id)
				proj = proj.WithEntity(v, binding.EntityID)
				break
			}
		}
	}
	return proj
}

func blockingClause(s *solver, cnf *plan.CNF) plan.Clause {
	var lits []plan.Literal
	for _, v := range cnf.PatternVariables() {
		for _, id := range cnf.VarsFor(v) {
			if s.assign[id] == lTrue {
				lits = append(lits, plan.Literal(-id))
			}
		}
	}
	return plan.Clause(lits)
}
