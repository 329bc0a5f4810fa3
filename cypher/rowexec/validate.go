package rowexec

import (
	"github.com/zacernst/nmetl-core/cypher/ast"
)

// CheckVariables statically verifies that every Variable and AttrLookup
// reference in q resolves to something in scope (§7 "UnknownVariable",
// raised by C4/C7). A WITH clause closes the pattern's variable scope: the
// WHERE and RETURN clauses of a query with a WITH only see the WITH's alias
// names, not the original pattern variables (§4.6 pipeline order). A query
// with no WITH sees the pattern variables directly in WHERE and RETURN.
func CheckVariables(q *ast.Cypher) error {
	patternScope := scopeOf(q.Match.Pattern.Variables())

	scope := patternScope
	if q.Match.With != nil {
		if err := checkAliasesScope(q.Match.With.Aliases, patternScope); err != nil {
			return err
		}
		scope = scopeOf(aliasNames(q.Match.With.Aliases))
	}

	if q.Match.Where != nil {
		if err := checkNodeScope(q.Match.Where.Predicate, scope); err != nil {
			return err
		}
	}
	return checkAliasesScope(q.Return.Aliases, scope)
}

func scopeOf(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func aliasNames(aliases []*ast.Alias) []string {
	out := make([]string, len(aliases))
	for i, a := range aliases {
		out[i] = a.Name
	}
	return out
}

func checkAliasesScope(aliases []*ast.Alias, scope map[string]bool) error {
	for _, a := range aliases {
		if err := checkNodeScope(a.Expr, scope); err != nil {
			return err
		}
	}
	return nil
}

func checkNodeScope(n ast.Node, scope map[string]bool) error {
	var firstErr error
	var visit ast.VisitorFunc
	visit = func(node ast.Node) ast.Visitor {
		if firstErr != nil {
			return nil
		}
		name := ""
		switch e := node.(type) {
		case *ast.Variable:
			name = e.Name
		case *ast.AttrLookup:
			name = e.Var
		default:
			return visit
		}
		if !scope[name] {
			firstErr = ErrUnknownVariable.New(name)
		}
		return nil
	}
	ast.Walk(visit, n)
	return firstErr
}
