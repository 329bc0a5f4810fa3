package rowexec

import (
	"strconv"
	"strings"

	"github.com/zacernst/nmetl-core/cypher/ast"
	"github.com/zacernst/nmetl-core/cypher/plan"
	"github.com/zacernst/nmetl-core/fact"
	"github.com/zacernst/nmetl-core/store"
)

// Execute runs the full C7 pipeline of §4.6: "pattern_projections →
// with_clause.evaluate → where_clause.evaluate → return_clause.evaluate",
// over the matches already enumerated by cypher/sat.
func Execute(q *ast.Cypher, s *store.FactStore, patternProjections plan.ProjectionList) (plan.ProjectionList, error) {
	out, _, err := ExecuteTracked(q, s, patternProjections)
	return out, err
}

// ExecuteTracked runs the same pipeline as Execute, but additionally
// returns the pattern-stage projection each output row was derived from,
// aligned index-for-index with the returned ProjectionList. WITH/RETURN
// may rename or drop pattern variables entirely before the final
// projection is built (e.g. Scenario E's "WITH c.has_beach AS b RETURN b"
// never re-exposes "c"), so callers that still need to resolve a pattern
// variable against the row that produced a result — trigger dispatch's
// OutputKind, §4.7 step 2 — must use this pattern-stage projection rather
// than the RETURN-stream one Execute returns.
func ExecuteTracked(q *ast.Cypher, s *store.FactStore, patternProjections plan.ProjectionList) (plan.ProjectionList, plan.ProjectionList, error) {
	withOut, withSrc := patternProjections, patternProjections
	if q.Match.With != nil {
		var err error
		withOut, withSrc, err = evalWith(q.Match.With, s, patternProjections)
		if err != nil {
			return nil, nil, err
		}
	}
	whereOut, whereSrc, err := evalWhere(q.Match.Where, s, withOut, withSrc)
	if err != nil {
		return nil, nil, err
	}
	retOut, err := evalReturn(q.Return, s, whereOut)
	if err != nil {
		return nil, nil, err
	}
	return retOut, whereSrc, nil
}

// evalWith implements §4.6's WITH clause semantics: a plain per-row
// projection if no alias is aggregated, or group-by-then-aggregate if at
// least one is. src is returned aligned with out: the pattern-stage
// projection each out row was computed from (see ExecuteTracked).
func evalWith(with *ast.With, s *store.FactStore, in plan.ProjectionList) (out, src plan.ProjectionList, err error) {
	aggregated := false
	for _, a := range with.Aliases {
		if a.IsAggregated() {
			aggregated = true
			break
		}
	}
	if !aggregated {
		out = make(plan.ProjectionList, 0, len(in))
		src = make(plan.ProjectionList, 0, len(in))
		for _, π := range in {
			next := plan.NewProjection()
			for _, a := range with.Aliases {
				v, err := Eval(a.Expr, s, π)
				if err != nil {
					return nil, nil, err
				}
				next = next.With(a.Name, v)
			}
			out = append(out, next)
			src = append(src, π)
		}
		return out, src, nil
	}
	return evalAggregatedWith(with, s, in)
}

// evalAggregatedWith implements §4.6's group-by-then-aggregate path: rows
// are bucketed by the tuple of group-by (non-aggregated) alias values, and
// one output row is produced per bucket. Each bucket's representative
// source row (its first member) is returned in src: every row in a bucket
// shares the same value for any pattern variable pinned by an assumption
// (§4.4 step 4), which is the only case trigger dispatch (§4.7) relies on
// src for, so picking the first is as good as picking any other.
func evalAggregatedWith(with *ast.With, s *store.FactStore, in plan.ProjectionList) (out, src plan.ProjectionList, err error) {
	var groupAliases, aggAliases []*ast.Alias
	for _, a := range with.Aliases {
		if a.IsAggregated() {
			aggAliases = append(aggAliases, a)
		} else {
			groupAliases = append(groupAliases, a)
		}
	}

	type bucket struct {
		groupVals []fact.Scalar
		rows      []plan.Projection
	}
	order := []string{}
	buckets := map[string]*bucket{}

	for _, π := range in {
		vals := make([]fact.Scalar, len(groupAliases))
		var keyParts []string
		for i, a := range groupAliases {
			v, err := Eval(a.Expr, s, π)
			if err != nil {
				return nil, nil, err
			}
			vals[i] = v
			h, err := v.Hash()
			if err != nil {
				return nil, nil, err
			}
			keyParts = append(keyParts, strconv.FormatUint(h, 36))
		}
		key := strings.Join(keyParts, "|")
		b, ok := buckets[key]
		if !ok {
			b = &bucket{groupVals: vals}
			buckets[key] = b
			order = append(order, key)
		}
		b.rows = append(b.rows, π)
	}

	// §9 "Open question — aggregation with no group-by aliases": with zero
	// group-by aliases every row falls into the single empty-tuple bucket,
	// aggregating across all pattern matches. Seed that bucket explicitly
	// so a query with only aggregated aliases still produces one output
	// row even though the loop above never executes when in is empty.
	if len(groupAliases) == 0 && len(order) == 0 {
		order = append(order, "")
		buckets[""] = &bucket{rows: nil}
	}

	out = make(plan.ProjectionList, 0, len(order))
	src = make(plan.ProjectionList, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		next := plan.NewProjection()
		for i, a := range groupAliases {
			next = next.With(a.Name, b.groupVals[i])
		}
		for _, a := range aggAliases {
			v, err := evalAggregation(a.Expr, s, b.rows)
			if err != nil {
				return nil, nil, err
			}
			next = next.With(a.Name, v)
		}
		out = append(out, next)
		if len(b.rows) > 0 {
			src = append(src, b.rows[0])
		} else {
			src = append(src, plan.NewProjection())
		}
	}
	return out, src, nil
}

// evalAggregation implements §4.6's "Aggregation evaluation": Collect(e)
// collects e's value (including nulls) across every row of the bucket;
// Size(Collect(e)) counts the non-null values. No other aggregation shape
// is defined by §4.6.
func evalAggregation(expr ast.Node, s *store.FactStore, bucket []plan.Projection) (fact.Scalar, error) {
	switch e := expr.(type) {
	case *ast.Collect:
		vals := make([]fact.Scalar, len(bucket))
		for i, π := range bucket {
			v, err := Eval(e.Inner, s, π)
			if err != nil {
				return fact.Scalar{}, err
			}
			vals[i] = v
		}
		return fact.List(vals), nil

	case *ast.Size:
		collect, ok := e.Inner.(*ast.Collect)
		if !ok {
			return fact.Scalar{}, ErrTypeError.New("SIZE must wrap COLLECT")
		}
		count := int64(0)
		for _, π := range bucket {
			v, err := Eval(collect.Inner, s, π)
			if err != nil {
				return fact.Scalar{}, err
			}
			if !v.IsNull() {
				count++
			}
		}
		return fact.Int(count), nil

	default:
		return fact.Scalar{}, ErrTypeError.New("unsupported aggregation expression")
	}
}

// evalWhere implements §4.6's WHERE clause semantics: keep only rows whose
// predicate evaluates to the boolean true; null and false both reject. src
// is filtered in lockstep with in, preserving the out[i]/src[i] alignment
// ExecuteTracked promises.
func evalWhere(where *ast.Where, s *store.FactStore, in, src plan.ProjectionList) (plan.ProjectionList, plan.ProjectionList, error) {
	if where == nil {
		return in, src, nil
	}
	out := make(plan.ProjectionList, 0, len(in))
	outSrc := make(plan.ProjectionList, 0, len(in))
	for i, π := range in {
		v, err := Eval(where.Predicate, s, π)
		if err != nil {
			return nil, nil, err
		}
		if v.IsNull() {
			continue
		}
		if v.Kind() != fact.KindBool {
			return nil, nil, ErrTypeError.New("WHERE predicate must evaluate to a boolean or null")
		}
		if v.Bool() {
			out = append(out, π)
			outSrc = append(outSrc, src[i])
		}
	}
	return out, outSrc, nil
}

// evalReturn implements §4.6's RETURN clause semantics: evaluate each alias
// against each surviving row, keyed by alias name.
func evalReturn(ret *ast.Return, s *store.FactStore, in plan.ProjectionList) (plan.ProjectionList, error) {
	out := make(plan.ProjectionList, 0, len(in))
	for _, π := range in {
		next := plan.NewProjection()
		for _, a := range ret.Aliases {
			v, err := Eval(a.Expr, s, π)
			if err != nil {
				return nil, err
			}
			next = next.With(a.Name, v)
		}
		out = append(out, next)
	}
	return out, nil
}
