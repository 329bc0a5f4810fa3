package parse

import (
	"strconv"

	"github.com/zacernst/nmetl-core/cypher/ast"
	"github.com/zacernst/nmetl-core/cypher/lex"
	"github.com/zacernst/nmetl-core/fact"
)

// Parse tokenizes and parses src against the grammar of §4.2, producing a
// *ast.Cypher. It performs no semantic checking (that is C4/C7's job); the
// only error it can return is ErrSyntax.
func Parse(src string) (*ast.Cypher, error) {
	l := lex.NewLexer(src)
	if err := l.Run(); err != nil {
		return nil, ErrSyntax.New(0, "a valid token", err.Error())
	}
	p := &parser{tokens: l.Tokens()}
	return p.parseCypher()
}

type parser struct {
	tokens []lex.Token
	pos    int
}

func (p *parser) cur() lex.Token {
	return p.tokens[p.pos]
}

func (p *parser) advance() lex.Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *parser) atType(tt lex.TokenType) bool {
	return p.cur().Type == tt
}

func (p *parser) atKeyword(kw string) bool {
	t := p.cur()
	return t.Type == lex.KeywordToken && t.Value == kw
}

func (p *parser) expectType(tt lex.TokenType, expected string) (lex.Token, error) {
	if !p.atType(tt) {
		return lex.Token{}, p.syntaxErr(expected)
	}
	return p.advance(), nil
}

func (p *parser) expectKeyword(kw string) (lex.Token, error) {
	if !p.atKeyword(kw) {
		return lex.Token{}, p.syntaxErr("keyword " + kw)
	}
	return p.advance(), nil
}

func (p *parser) syntaxErr(expected string) error {
	t := p.cur()
	got := t.Value
	if t.Type == lex.EOFToken {
		got = "end of input"
	}
	return ErrSyntax.New(t.Offset, expected, got)
}

func (p *parser) parseCypher() (*ast.Cypher, error) {
	match, err := p.parseMatch()
	if err != nil {
		return nil, err
	}
	ret, err := p.parseReturn()
	if err != nil {
		return nil, err
	}
	if !p.atType(lex.EOFToken) {
		return nil, p.syntaxErr("end of input")
	}
	return &ast.Cypher{Match: match, Return: ret}, nil
}

func (p *parser) parseMatch() (*ast.Match, error) {
	if _, err := p.expectKeyword("MATCH"); err != nil {
		return nil, err
	}
	pattern, err := p.parseRelChainList()
	if err != nil {
		return nil, err
	}

	m := &ast.Match{Pattern: pattern}
	if p.atKeyword("WITH") {
		with, err := p.parseWith()
		if err != nil {
			return nil, err
		}
		m.With = with
	}
	if p.atKeyword("WHERE") {
		where, err := p.parseWhere()
		if err != nil {
			return nil, err
		}
		m.Where = where
	}
	return m, nil
}

func (p *parser) parseRelChainList() (*ast.RelChainList, error) {
	var chains []*ast.RelChain
	for {
		if err := p.parseSingleChain(&chains); err != nil {
			return nil, err
		}
		if p.atType(lex.CommaToken) {
			p.advance()
			continue
		}
		break
	}
	return &ast.RelChainList{Chains: chains}, nil
}

// parseSingleChain parses one "node { relationship node }" production,
// appending one *ast.RelChain per hop (or a single Rel==nil chain if there
// is no relationship at all).
func (p *parser) parseSingleChain(chains *[]*ast.RelChain) error {
	first, err := p.parsePatternNode()
	if err != nil {
		return err
	}
	cur := first
	hops := 0
	for p.atType(lex.HyphenToken) || (p.atType(lex.OpToken) && p.cur().Value == "<") {
		rel, err := p.parsePatternRel()
		if err != nil {
			return err
		}
		next, err := p.parsePatternNode()
		if err != nil {
			return err
		}
		*chains = append(*chains, &ast.RelChain{Src: cur, Rel: rel, Tgt: next})
		cur = next
		hops++
	}
	if hops == 0 {
		*chains = append(*chains, &ast.RelChain{Src: first})
	}
	return nil
}

func (p *parser) parsePatternNode() (*ast.PatternNode, error) {
	start := p.cur().Offset
	if _, err := p.expectType(lex.LeftParenToken, "'('"); err != nil {
		return nil, err
	}
	n := &ast.PatternNode{Position: ast.Position{Offset: start}}
	if p.atType(lex.IdentifierToken) {
		n.Var = p.advance().Value
	}
	if p.atType(lex.ColonToken) {
		p.advance()
		label, err := p.expectType(lex.IdentifierToken, "a label")
		if err != nil {
			return nil, err
		}
		n.Label = label.Value
	}
	if p.atType(lex.LeftBraceToken) {
		props, err := p.parsePropMap()
		if err != nil {
			return nil, err
		}
		n.Props = props
	}
	if _, err := p.expectType(lex.RightParenToken, "')'"); err != nil {
		return nil, err
	}
	return n, nil
}

func (p *parser) parsePropMap() (ast.PropMap, error) {
	if _, err := p.expectType(lex.LeftBraceToken, "'{'"); err != nil {
		return nil, err
	}
	props := ast.PropMap{}
	for !p.atType(lex.RightBraceToken) {
		key, err := p.expectType(lex.IdentifierToken, "a property name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expectType(lex.ColonToken, "':'"); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		props[key.Value] = val
		if p.atType(lex.CommaToken) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expectType(lex.RightBraceToken, "'}'"); err != nil {
		return nil, err
	}
	return props, nil
}

// parsePatternRel parses one of the three relationship forms (§4.2):
// "-[...]->", "<-[...]-", "-[...]-".
func (p *parser) parsePatternRel() (*ast.PatternRel, error) {
	start := p.cur().Offset
	leftArrow := false
	if p.atType(lex.OpToken) && p.cur().Value == "<" {
		p.advance()
		leftArrow = true
	}
	if _, err := p.expectType(lex.HyphenToken, "'-'"); err != nil {
		return nil, err
	}
	if _, err := p.expectType(lex.LeftBracketToken, "'['"); err != nil {
		return nil, err
	}
	r := &ast.PatternRel{Position: ast.Position{Offset: start}}
	if p.atType(lex.IdentifierToken) {
		r.Var = p.advance().Value
	}
	if p.atType(lex.ColonToken) {
		p.advance()
		label, err := p.expectType(lex.IdentifierToken, "a label")
		if err != nil {
			return nil, err
		}
		r.Label = label.Value
	}
	if _, err := p.expectType(lex.RightBracketToken, "']'"); err != nil {
		return nil, err
	}
	if _, err := p.expectType(lex.HyphenToken, "'-'"); err != nil {
		return nil, err
	}
	rightArrow := false
	if p.atType(lex.OpToken) && p.cur().Value == ">" {
		p.advance()
		rightArrow = true
	}

	switch {
	case leftArrow && rightArrow:
		return nil, p.syntaxErr("a single-direction relationship, not both '<' and '>'")
	case leftArrow:
		r.Dir = ast.RightToLeft
	case rightArrow:
		r.Dir = ast.LeftToRight
	default:
		r.Dir = ast.Either
	}
	return r, nil
}

func (p *parser) parseWith() (*ast.With, error) {
	start := p.cur().Offset
	if _, err := p.expectKeyword("WITH"); err != nil {
		return nil, err
	}
	aliases, err := p.parseAliasList()
	if err != nil {
		return nil, err
	}
	return &ast.With{Position: ast.Position{Offset: start}, Aliases: aliases}, nil
}

func (p *parser) parseWhere() (*ast.Where, error) {
	start := p.cur().Offset
	if _, err := p.expectKeyword("WHERE"); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Where{Position: ast.Position{Offset: start}, Predicate: expr}, nil
}

func (p *parser) parseReturn() (*ast.Return, error) {
	start := p.cur().Offset
	if _, err := p.expectKeyword("RETURN"); err != nil {
		return nil, err
	}
	aliases, err := p.parseAliasList()
	if err != nil {
		return nil, err
	}
	return &ast.Return{Position: ast.Position{Offset: start}, Aliases: aliases}, nil
}

func (p *parser) parseAliasList() ([]*ast.Alias, error) {
	var out []*ast.Alias
	for {
		a, err := p.parseAlias()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
		if p.atType(lex.CommaToken) {
			p.advance()
			continue
		}
		break
	}
	return out, nil
}

func (p *parser) parseAlias() (*ast.Alias, error) {
	start := p.cur().Offset
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	name := exprSourceName(expr)
	if p.atKeyword("AS") {
		p.advance()
		ident, err := p.expectType(lex.IdentifierToken, "an alias name")
		if err != nil {
			return nil, err
		}
		name = ident.Value
	}
	return &ast.Alias{Position: ast.Position{Offset: start}, Expr: expr, Name: name}, nil
}

// exprSourceName derives the default column name for an alias with no
// explicit "AS name". Variables, attribute lookups, literals, COLLECT and
// SIZE render as their source text and function calls as "name(...)"; every
// other expression yields "".
func exprSourceName(n ast.Node) string {
	switch e := n.(type) {
	case *ast.Variable:
		return e.Name
	case *ast.AttrLookup:
		return e.Var + "." + e.Attr
	case *ast.Literal:
		return e.Value.String()
	case *ast.Collect:
		return "COLLECT(" + exprSourceName(e.Inner) + ")"
	case *ast.Size:
		return "SIZE(" + exprSourceName(e.Inner) + ")"
	case *ast.FuncCall:
		return e.Name + "(...)"
	default:
		return ""
	}
}

// Expression grammar, precedence low to high:
//
//	expr       := orExpr
//	orExpr     := andExpr { "OR" andExpr }
//	andExpr    := notExpr { "AND" notExpr }
//	notExpr    := "NOT" notExpr | comparison
//	comparison := additive [ compareOp additive ]
//	additive   := multiplicative { ("+" | "-") multiplicative }
//	multiplicative := unary { ("*" | "/" | "%") unary }
//	unary      := "-" unary | primary
//	primary    := literal | var | var "." attr | funcCall | "(" expr ")"
func (p *parser) parseExpr() (ast.Node, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (ast.Node, error) {
	start := p.cur().Offset
	lhs, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("OR") {
		p.advance()
		rhs, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		lhs = &ast.Or{Position: ast.Position{Offset: start}, LHS: lhs, RHS: rhs}
	}
	return lhs, nil
}

func (p *parser) parseAnd() (ast.Node, error) {
	start := p.cur().Offset
	lhs, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("AND") {
		p.advance()
		rhs, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		lhs = &ast.And{Position: ast.Position{Offset: start}, LHS: lhs, RHS: rhs}
	}
	return lhs, nil
}

func (p *parser) parseNot() (ast.Node, error) {
	if p.atKeyword("NOT") {
		start := p.advance().Offset
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.Not{Position: ast.Position{Offset: start}, Inner: inner}, nil
	}
	return p.parseComparison()
}

var compareOps = map[string]ast.CompareOp{
	"=": ast.Eq, "<>": ast.Neq, "!=": ast.Neq,
	"<": ast.Lt, "<=": ast.Lte, ">": ast.Gt, ">=": ast.Gte,
}

func (p *parser) parseComparison() (ast.Node, error) {
	start := p.cur().Offset
	lhs, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if p.atType(lex.OpToken) {
		if op, ok := compareOps[p.cur().Value]; ok {
			p.advance()
			rhs, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			return &ast.Comparison{Position: ast.Position{Offset: start}, Op: op, LHS: lhs, RHS: rhs}, nil
		}
	}
	return lhs, nil
}

func (p *parser) parseAdditive() (ast.Node, error) {
	start := p.cur().Offset
	lhs, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.atType(lex.HyphenToken) || (p.atType(lex.OpToken) && p.cur().Value == "+") {
		var op ast.ArithOp
		if p.atType(lex.HyphenToken) {
			op = ast.Sub
		} else {
			op = ast.Add
		}
		p.advance()
		rhs, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		lhs = &ast.Arithmetic{Position: ast.Position{Offset: start}, Op: op, LHS: lhs, RHS: rhs}
	}
	return lhs, nil
}

func (p *parser) parseMultiplicative() (ast.Node, error) {
	start := p.cur().Offset
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.atType(lex.OpToken) && (p.cur().Value == "*" || p.cur().Value == "/" || p.cur().Value == "%") {
		var op ast.ArithOp
		switch p.cur().Value {
		case "*":
			op = ast.Mul
		case "/":
			op = ast.Div
		case "%":
			op = ast.Mod
		}
		p.advance()
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs = &ast.Arithmetic{Position: ast.Position{Offset: start}, Op: op, LHS: lhs, RHS: rhs}
	}
	return lhs, nil
}

func (p *parser) parseUnary() (ast.Node, error) {
	if p.atType(lex.HyphenToken) {
		start := p.advance().Offset
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Arithmetic{
			Position: ast.Position{Offset: start},
			Op:       ast.Sub,
			LHS:      &ast.Literal{Value: fact.Int(0)},
			RHS:      inner,
		}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (ast.Node, error) {
	t := p.cur()
	switch t.Type {
	case lex.IntToken:
		p.advance()
		v, err := strconv.ParseInt(t.Value, 10, 64)
		if err != nil {
			return nil, ErrSyntax.New(t.Offset, "a valid integer", t.Value)
		}
		return &ast.Literal{Position: ast.Position{Offset: t.Offset}, Value: fact.Int(v)}, nil
	case lex.FloatToken:
		p.advance()
		v, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return nil, ErrSyntax.New(t.Offset, "a valid float", t.Value)
		}
		return &ast.Literal{Position: ast.Position{Offset: t.Offset}, Value: fact.Float(v)}, nil
	case lex.StringToken:
		p.advance()
		return &ast.Literal{Position: ast.Position{Offset: t.Offset}, Value: fact.String(t.Value)}, nil
	case lex.LeftParenToken:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectType(lex.RightParenToken, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case lex.KeywordToken:
		switch t.Value {
		case "TRUE":
			p.advance()
			return &ast.Literal{Position: ast.Position{Offset: t.Offset}, Value: fact.Bool(true)}, nil
		case "FALSE":
			p.advance()
			return &ast.Literal{Position: ast.Position{Offset: t.Offset}, Value: fact.Bool(false)}, nil
		case "NULL":
			p.advance()
			return &ast.Literal{Position: ast.Position{Offset: t.Offset}, Value: fact.Null}, nil
		case "COLLECT":
			p.advance()
			inner, err := p.parseParenthesizedExpr()
			if err != nil {
				return nil, err
			}
			return &ast.Collect{Position: ast.Position{Offset: t.Offset}, Inner: inner}, nil
		case "SIZE":
			p.advance()
			inner, err := p.parseParenthesizedExpr()
			if err != nil {
				return nil, err
			}
			return &ast.Size{Position: ast.Position{Offset: t.Offset}, Inner: inner}, nil
		}
		return nil, p.syntaxErr("an expression")
	case lex.IdentifierToken:
		p.advance()
		if p.atType(lex.LeftParenToken) {
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			return &ast.FuncCall{Position: ast.Position{Offset: t.Offset}, Name: t.Value, Args: args}, nil
		}
		if p.atType(lex.DotToken) {
			p.advance()
			attr, err := p.expectType(lex.IdentifierToken, "an attribute name")
			if err != nil {
				return nil, err
			}
			return &ast.AttrLookup{Position: ast.Position{Offset: t.Offset}, Var: t.Value, Attr: attr.Value}, nil
		}
		return &ast.Variable{Position: ast.Position{Offset: t.Offset}, Name: t.Value}, nil
	default:
		return nil, p.syntaxErr("an expression")
	}
}

func (p *parser) parseParenthesizedExpr() (ast.Node, error) {
	if _, err := p.expectType(lex.LeftParenToken, "'('"); err != nil {
		return nil, err
	}
	inner, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectType(lex.RightParenToken, "')'"); err != nil {
		return nil, err
	}
	return inner, nil
}

func (p *parser) parseArgList() ([]ast.Node, error) {
	if _, err := p.expectType(lex.LeftParenToken, "'('"); err != nil {
		return nil, err
	}
	var args []ast.Node
	for !p.atType(lex.RightParenToken) {
		a, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.atType(lex.CommaToken) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expectType(lex.RightParenToken, "')'"); err != nil {
		return nil, err
	}
	return args, nil
}
