// Package trigger implements the reactive dispatcher of C8: a registered
// query + function fires on every new fact whose label matches one of the
// query's pattern variables, and the function's return value is folded back
// into the store as new facts (§4.7).
package trigger

import (
	"github.com/sirupsen/logrus"

	"github.com/zacernst/nmetl-core/cypher/ast"
	"github.com/zacernst/nmetl-core/cypher/parse"
	"github.com/zacernst/nmetl-core/cypher/plan"
	"github.com/zacernst/nmetl-core/cypher/rowexec"
	"github.com/zacernst/nmetl-core/cypher/sat"
	"github.com/zacernst/nmetl-core/fact"
	"github.com/zacernst/nmetl-core/store"
)

// TriggerID identifies a registered trigger.
type TriggerID uint64

// Func is a trigger's function: invoked with one map entry per RETURN
// alias, keyed by alias name (the Go rendering of the source's "function
// parameter names must equal RETURN alias names" — a Go func value carries
// no recoverable parameter names at runtime, so the alias→argument binding
// is expressed as a map instead of positional/named parameters).
type Func func(args map[string]fact.Scalar) (fact.Scalar, error)

// Trigger is one registered query + function + output pair (§4.7
// "Registration").
type Trigger struct {
	ID         TriggerID
	Source     string
	Query      *ast.Cypher
	ParamNames []string
	Fn         Func
	Output     OutputKind
}

// Dispatcher owns the registered triggers and runs dispatch against a
// FactStore (§4.7 "Dispatch", §5 "reactive runtime fact/trigger cycle").
type Dispatcher struct {
	store    *store.FactStore
	triggers []*Trigger
	nextID   TriggerID
	fuel     int // 0 means unlimited (§4.7 "Open question")
}

// Option configures a Dispatcher at construction time.
type Option func(*Dispatcher)

// WithFuel bounds the number of re-entrant dispatch rounds a single
// externally-submitted fact may trigger, guarding against non-terminating
// trigger cycles (§4.7 "implementations MAY add a per-fact trigger fuel
// counter"). n <= 0 means unlimited.
func WithFuel(n int) Option {
	return func(d *Dispatcher) { d.fuel = n }
}

// NewDispatcher builds a Dispatcher over s.
func NewDispatcher(s *store.FactStore, opts ...Option) *Dispatcher {
	d := &Dispatcher{store: s}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Register parses cypherSource, validates it, and records a new trigger
// (§4.7 "Registration", SPEC_FULL §4 "Parameter/variable name validation at
// registration time"). ParamNames is the query's RETURN alias list, used to
// build Fn's argument map. output.variables() names MATCH pattern variables
// (not RETURN aliases — §4.7 step 2's output kinds write onto entities bound
// by the pattern, which WITH/RETURN may rename or drop entirely, e.g.
// Scenario E's VariableAttribute{Var: "c", ...} against a query whose RETURN
// only exposes "b"), so it is checked eagerly against the pattern's variable
// set, so a typo surfaces at registration rather than at first dispatch.
func (d *Dispatcher) Register(cypherSource string, fn Func, output OutputKind) (TriggerID, error) {
	q, err := parse.Parse(cypherSource)
	if err != nil {
		return 0, err
	}
	if err := rowexec.CheckVariables(q); err != nil {
		return 0, err
	}

	params := make([]string, len(q.Return.Aliases))
	for i, a := range q.Return.Aliases {
		params[i] = a.Name
	}
	patternVars := make(map[string]bool)
	for _, v := range q.Match.Pattern.Variables() {
		patternVars[v] = true
	}
	for _, v := range output.variables() {
		if !patternVars[v] {
			return 0, ErrBadOutputKind.New(v)
		}
	}

	d.nextID++
	t := &Trigger{
		ID:         d.nextID,
		Source:     cypherSource,
		Query:      q,
		ParamNames: params,
		Fn:         fn,
		Output:     output,
	}
	d.triggers = append(d.triggers, t)
	return t.ID, nil
}

// Ingest stores f and runs dispatch (§4.7 "Dispatch"): every trigger whose
// seed variables match f is re-run with that seed pinned as an assumption,
// and every resulting projection invokes the trigger's function. Facts
// emitted by trigger functions are recursively ingested ("Submit emitted
// facts back to the ingestion stage; they will re-enter dispatch"), bounded
// by the configured fuel. Ingest returns every fact transitively emitted as
// a result of f, including f's own direct effects; it does not return an
// error for a failed trigger invocation (that is isolated and logged per
// §7), only for a store failure while checking for or storing f or any
// fact transitively emitted from it.
func (d *Dispatcher) Ingest(f fact.Fact) ([]fact.Fact, error) {
	return d.ingest(f, d.fuel)
}

func (d *Dispatcher) ingest(f fact.Fact, budget int) ([]fact.Fact, error) {
	// Dispatch fires "on every new fact" (§4.7 step "Dispatch"); re-submitting
	// a fact the store already has is not new, so skip it rather than
	// re-running every trigger whose seed still matches it. Without this, a
	// trigger that re-derives a fact about the same entity it fired on (e.g.
	// VariableAttribute writing back onto its own seed node) would re-trigger
	// itself on its own idempotent output forever, since Put-ing an
	// already-stored fact is harmless but indistinguishable from new input.
	already, err := d.store.Contains(f)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, nil
	}
	if err := d.store.Put(f); err != nil {
		return nil, err
	}

	var emitted []fact.Fact
	for _, t := range d.triggers {
		seen := map[seed]bool{}
		for _, seed := range candidateSeeds(d.store, t, f) {
			if seen[seed] {
				continue
			}
			seen[seed] = true
			rows, err := d.runWithSeed(t, seed)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"trigger": t.ID,
					"fact":    f.String(),
				}).WithError(err).Error("trigger query failed")
				continue
			}
			for _, row := range rows {
				out, err := d.invoke(t, f, row)
				if err != nil {
					logrus.WithFields(logrus.Fields{
						"trigger": t.ID,
						"fact":    f.String(),
					}).WithError(err).Error("trigger function failed")
					continue
				}
				emitted = append(emitted, out...)
			}
		}
	}

	if d.fuel > 0 && budget <= 0 {
		if len(emitted) > 0 {
			logrus.WithFields(logrus.Fields{"fact": f.String()}).
				Warn("trigger fuel exhausted, dropping re-entrant facts")
		}
		return emitted, nil
	}

	nextBudget := budget
	if d.fuel > 0 {
		nextBudget = budget - 1
	}
	// Collect into a fresh slice rather than appending to emitted while
	// iterating it: emitted's length is fixed at range-start, so appending
	// to it in place would silently skip transitively-emitted facts.
	all := append([]fact.Fact(nil), emitted...)
	for _, e := range emitted {
		more, err := d.ingest(e, nextBudget)
		if err != nil {
			return nil, err
		}
		all = append(all, more...)
	}
	return all, nil
}

// seed is a single candidate (pattern variable -> bound entity id) to run a
// trigger's query against via an assumption (§4.4 step 4).
type seed struct {
	variable string
	entityID string
}

// dispatchRow pairs one query result with the pattern-stage projection it
// was derived from: out feeds Fn's RETURN-alias argument map, pattern feeds
// OutputKind.apply's MATCH-pattern-variable lookups (§4.7 step 2).
type dispatchRow struct {
	out     plan.Projection
	pattern plan.Projection
}

func (d *Dispatcher) runWithSeed(t *Trigger, sd seed) ([]dispatchRow, error) {
	cnf, err := plan.Compile(t.Query.Match.Pattern, d.store, plan.Assumption{sd.variable: sd.entityID})
	if err != nil {
		return nil, err
	}
	matches, _ := sat.Solve(cnf)
	out, patternOf, err := rowexec.ExecuteTracked(t.Query, d.store, matches)
	if err != nil {
		return nil, err
	}
	rows := make([]dispatchRow, len(out))
	for i := range out {
		rows[i] = dispatchRow{out: out[i], pattern: patternOf[i]}
	}
	return rows, nil
}

func (d *Dispatcher) invoke(t *Trigger, f fact.Fact, row dispatchRow) (emitted []fact.Fact, err error) {
	defer func() {
		if r := recover(); r != nil {
			emitted, err = nil, ErrTriggerFunctionError.New(t.ID, f.String(), r)
		}
	}()
	args := make(map[string]fact.Scalar, len(t.ParamNames))
	for _, name := range t.ParamNames {
		v, _ := row.out.Get(name)
		args[name] = v
	}
	ret, err := t.Fn(args)
	if err != nil {
		return nil, ErrTriggerFunctionError.New(t.ID, f.String(), err)
	}
	return t.Output.apply(row.pattern, ret, t.Query.Match.Pattern.IsRelationshipVar)
}
