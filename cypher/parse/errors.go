// Package parse implements C3: parsing the Cypher subset of §4.2 into the
// typed AST of cypher/ast.
package parse

import goerrors "gopkg.in/src-d/go-errors.v1"

// ErrSyntax is raised on any grammar mismatch (§4.2 "Error policy":
// "A syntactic mismatch fails with SyntaxError(offset, expected, got)").
// The parser does no semantic checking; ErrSyntax is the only error it
// raises.
var ErrSyntax = goerrors.NewKind("syntax error at offset %d: expected %s, got %s")
