package lex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func tokenize(t *testing.T, src string) []Token {
	t.Helper()
	l := NewLexer(src)
	require.NoError(t, l.Run())
	return l.Tokens()
}

func TestLexSimpleMatch(t *testing.T) {
	toks := tokenize(t, "MATCH (p:Person) RETURN p")
	types := make([]TokenType, len(toks))
	for i, tk := range toks {
		types[i] = tk.Type
	}
	require.Equal(t, []TokenType{
		KeywordToken, LeftParenToken, IdentifierToken, ColonToken, IdentifierToken,
		RightParenToken, KeywordToken, IdentifierToken, EOFToken,
	}, types)
}

func TestLexRelationshipArrow(t *testing.T) {
	toks := tokenize(t, "(c:City)-[r:In]->(s:State)")
	var vals []string
	for _, tk := range toks {
		if tk.Type != EOFToken {
			vals = append(vals, tk.Value)
		}
	}
	require.Equal(t, []string{
		"(", "c", ":", "City", ")", "-", "[", "r", ":", "In", "]", "-", ">", "(", "s", ":", "State", ")",
	}, vals)
}

func TestLexNumbers(t *testing.T) {
	toks := tokenize(t, "40 1.5 c.age")
	require.Equal(t, IntToken, toks[0].Type)
	require.Equal(t, "40", toks[0].Value)
	require.Equal(t, FloatToken, toks[1].Type)
	require.Equal(t, "1.5", toks[1].Value)
	require.Equal(t, IdentifierToken, toks[2].Type)
	require.Equal(t, DotToken, toks[3].Type)
	require.Equal(t, IdentifierToken, toks[4].Type)
}

func TestLexStringLiteral(t *testing.T) {
	toks := tokenize(t, `"hello world"`)
	require.Equal(t, StringToken, toks[0].Type)
	require.Equal(t, "hello world", toks[0].Value)
}

func TestLexOperators(t *testing.T) {
	toks := tokenize(t, "= <> < <= > >=")
	vals := make([]string, 0, len(toks)-1)
	for _, tk := range toks {
		if tk.Type == OpToken {
			vals = append(vals, tk.Value)
		}
	}
	require.Equal(t, []string{"=", "<>", "<", "<=", ">", ">="}, vals)
}

func TestLexKeywordsCaseInsensitive(t *testing.T) {
	toks := tokenize(t, "match where")
	require.Equal(t, KeywordToken, toks[0].Type)
	require.Equal(t, "MATCH", toks[0].Value)
	require.Equal(t, KeywordToken, toks[1].Type)
	require.Equal(t, "WHERE", toks[1].Value)
}

func TestLexUnterminatedStringErrors(t *testing.T) {
	l := NewLexer(`"unterminated`)
	err := l.Run()
	require.Error(t, err)
}
