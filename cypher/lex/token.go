// Package lex tokenizes the Cypher subset grammar of §4.2. It follows the
// teacher's hand-rolled state-machine lexer (dolthub-go-mysql-server's
// parse package: NewLexer/Run/Next driving stateFunc transitions) rather
// than a parser-combinator library, since the accepted grammar is small
// and fixed.
package lex

// TokenType tags the lexical class of a Token.
type TokenType int

const (
	ErrorToken TokenType = iota
	EOFToken
	KeywordToken
	IdentifierToken
	IntToken
	FloatToken
	StringToken
	OpToken
	LeftParenToken
	RightParenToken
	LeftBracketToken
	RightBracketToken
	LeftBraceToken
	RightBraceToken
	DotToken
	CommaToken
	ColonToken
	HyphenToken
)

func (t TokenType) String() string {
	switch t {
	case ErrorToken:
		return "error"
	case EOFToken:
		return "eof"
	case KeywordToken:
		return "keyword"
	case IdentifierToken:
		return "identifier"
	case IntToken:
		return "int"
	case FloatToken:
		return "float"
	case StringToken:
		return "string"
	case OpToken:
		return "operator"
	case LeftParenToken:
		return "'('"
	case RightParenToken:
		return "')'"
	case LeftBracketToken:
		return "'['"
	case RightBracketToken:
		return "']'"
	case LeftBraceToken:
		return "'{'"
	case RightBraceToken:
		return "'}'"
	case DotToken:
		return "'.'"
	case CommaToken:
		return "','"
	case ColonToken:
		return "':'"
	case HyphenToken:
		return "'-'"
	default:
		return "unknown"
	}
}

// Token is one lexical token: its class, its literal text, and the byte
// offset it started at (used for SyntaxError reporting, §4.2).
type Token struct {
	Type   TokenType
	Value  string
	Offset int
}

// keywords is the set of reserved words recognized by lexIdentifier;
// everything else tokenizes as IdentifierToken. Comparisons are
// case-insensitive, matching Cypher convention.
var keywords = map[string]bool{
	"MATCH":   true,
	"WITH":    true,
	"WHERE":   true,
	"RETURN":  true,
	"AS":      true,
	"AND":     true,
	"OR":      true,
	"NOT":     true,
	"TRUE":    true,
	"FALSE":   true,
	"NULL":    true,
	"COLLECT": true,
	"SIZE":    true,
}
