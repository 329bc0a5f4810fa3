// Package nmetlcore is a graph-pattern query engine with reactive triggers:
// an append-only fact store (store.FactStore), a Cypher subset compiled to
// CNF and solved with a SAT-based enumerator (cypher/plan, cypher/sat), a
// three-valued evaluator (cypher/rowexec), and a trigger dispatcher that
// re-derives facts from query results (trigger.Dispatcher). Engine wires
// these together behind the two operations external callers need:
// ExecuteQuery and RegisterTrigger (§6 "External interfaces").
package nmetlcore

import (
	"github.com/zacernst/nmetl-core/cypher/parse"
	"github.com/zacernst/nmetl-core/cypher/plan"
	"github.com/zacernst/nmetl-core/cypher/rowexec"
	"github.com/zacernst/nmetl-core/cypher/sat"
	"github.com/zacernst/nmetl-core/fact"
	"github.com/zacernst/nmetl-core/store"
	"github.com/zacernst/nmetl-core/trigger"
)

// Config configures a new Engine. Every field has a documented default
// applied by New when left at its zero value.
type Config struct {
	// KV backs the fact store. Defaults to an in-memory store.NewMemKV; pass
	// a store.BoltKV (via store.OpenBoltKV) for a persistent engine.
	KV store.KV
	// RetryPolicy governs backoff around KV operations (§4.1 "Failure
	// model"). Defaults to store.DefaultRetryPolicy.
	RetryPolicy *store.RetryPolicy
	// BloomExpectedKeys and BloomFalsePositiveRate, if BloomExpectedKeys is
	// nonzero, attach a bloom-filter sidecar accelerating negative contains
	// lookups (§6 "Persisted state layout"). Disabled by default; when
	// enabled, a BloomFalsePositiveRate of zero or less means 0.01.
	BloomExpectedKeys      uint64
	BloomFalsePositiveRate float64
	// TriggerFuel bounds re-entrant trigger dispatch per externally
	// submitted fact (§4.7 "Open question"). Zero means unlimited.
	TriggerFuel int
}

// Engine is the top-level handle: one fact store, one trigger dispatcher.
type Engine struct {
	Store      *store.FactStore
	Dispatcher *trigger.Dispatcher
}

// New builds an Engine from cfg. A nil cfg is equivalent to &Config{}.
func New(cfg *Config) *Engine {
	if cfg == nil {
		cfg = &Config{}
	}

	var opts []store.Option
	if cfg.RetryPolicy != nil {
		opts = append(opts, store.WithRetryPolicy(*cfg.RetryPolicy))
	}
	if cfg.BloomExpectedKeys > 0 {
		rate := cfg.BloomFalsePositiveRate
		if rate <= 0 {
			rate = 0.01
		}
		opts = append(opts, store.WithBloomSidecar(cfg.BloomExpectedKeys, rate))
	}
	s := store.NewFactStore(cfg.KV, opts...)

	var dispatchOpts []trigger.Option
	if cfg.TriggerFuel > 0 {
		dispatchOpts = append(dispatchOpts, trigger.WithFuel(cfg.TriggerFuel))
	}
	return &Engine{
		Store:      s,
		Dispatcher: trigger.NewDispatcher(s, dispatchOpts...),
	}
}

// Put ingests a single fact: stores it and runs trigger dispatch, per §4.7
// ("Submit emitted facts back to the ingestion stage; they will re-enter
// dispatch"). It returns every fact transitively emitted as a result.
func (e *Engine) Put(f fact.Fact) ([]fact.Fact, error) {
	return e.Dispatcher.Ingest(f)
}

// ExecuteQuery implements §6's exposed query interface: parse query, compile
// its pattern against the current store state (optionally pinned by
// assumptions), enumerate solutions, and run the WITH/WHERE/RETURN
// pipeline. assumptions may be nil for an unconstrained query.
func (e *Engine) ExecuteQuery(query string, assumptions plan.Assumption) (plan.ProjectionList, error) {
	q, err := parse.Parse(query)
	if err != nil {
		return nil, err
	}
	if err := rowexec.CheckVariables(q); err != nil {
		return nil, err
	}
	cnf, err := plan.Compile(q.Match.Pattern, e.Store, assumptions)
	if err != nil {
		return nil, err
	}
	matches, _ := sat.Solve(cnf)
	return rowexec.Execute(q, e.Store, matches)
}

// RegisterTrigger implements §6's exposed trigger registration interface.
func (e *Engine) RegisterTrigger(query string, fn trigger.Func, output trigger.OutputKind) (trigger.TriggerID, error) {
	return e.Dispatcher.Register(query, fn, output)
}
