package rowexec

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/zacernst/nmetl-core/cypher/plan"
)

// projectionSet renders a ProjectionList as a comparable, order-independent
// set of string-keyed rows, so cmp.Diff with cmpopts.SortSlices can assert
// set equality regardless of solver enumeration order (Invariant 1:
// "execute_query returns the same projections as a set").
func projectionSet(list plan.ProjectionList) []map[string]string {
	out := make([]map[string]string, len(list))
	for i, π := range list {
		row := make(map[string]string, π.Len())
		for _, k := range π.Keys() {
			v, _ := π.Get(k)
			row[k] = v.String()
		}
		out[i] = row
	}
	return out
}

func requireSameProjectionSet(t *testing.T, want, got plan.ProjectionList) {
	t.Helper()
	sortRows := cmpopts.SortSlices(func(a, b map[string]string) bool {
		return mapKey(a) < mapKey(b)
	})
	if diff := cmp.Diff(projectionSet(want), projectionSet(got), sortRows); diff != "" {
		t.Fatalf("projection sets differ (-want +got):\n%s", diff)
	}
}

func mapKey(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out string
	for _, k := range keys {
		out += k + "=" + m[k] + ";"
	}
	return out
}
