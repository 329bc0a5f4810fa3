package ast

import "github.com/zacernst/nmetl-core/fact"

// ArithOp is an arithmetic operator (§4.2 grammar "arithmetic").
type ArithOp uint8

const (
	Add ArithOp = iota
	Sub
	Mul
	Div
	Mod
)

// CompareOp is a comparison operator.
type CompareOp uint8

const (
	Eq CompareOp = iota
	Neq
	Lt
	Lte
	Gt
	Gte
)

// Literal is a constant scalar (§4.3 "Literal(scalar)").
type Literal struct {
	Position Position
	Value    fact.Scalar
}

func (l *Literal) Pos() Position    { return l.Position }
func (l *Literal) Children() []Node { return nil }

// Variable is a bare pattern-variable reference (§4.3 "Variable(name)").
type Variable struct {
	Position Position
	Name     string
}

func (v *Variable) Pos() Position    { return v.Position }
func (v *Variable) Children() []Node { return nil }

// AttrLookup is "var.attr" (§4.3 "ObjectAttributeLookup(var, attr)").
type AttrLookup struct {
	Position Position
	Var      string
	Attr     string
}

func (a *AttrLookup) Pos() Position    { return a.Position }
func (a *AttrLookup) Children() []Node { return nil }

// Arithmetic is a binary arithmetic expression (§4.3 "Arithmetic(op, lhs, rhs)").
type Arithmetic struct {
	Position Position
	Op       ArithOp
	LHS, RHS Node
}

func (a *Arithmetic) Pos() Position    { return a.Position }
func (a *Arithmetic) Children() []Node { return []Node{a.LHS, a.RHS} }

// Comparison is a binary comparison expression (§4.3 "Comparison(op, lhs, rhs)").
type Comparison struct {
	Position Position
	Op       CompareOp
	LHS, RHS Node
}

func (c *Comparison) Pos() Position    { return c.Position }
func (c *Comparison) Children() []Node { return []Node{c.LHS, c.RHS} }

// And is Kleene-logic conjunction (§4.3 "And/Or/Not").
type And struct {
	Position Position
	LHS, RHS Node
}

func (a *And) Pos() Position    { return a.Position }
func (a *And) Children() []Node { return []Node{a.LHS, a.RHS} }

// Or is Kleene-logic disjunction.
type Or struct {
	Position Position
	LHS, RHS Node
}

func (o *Or) Pos() Position    { return o.Position }
func (o *Or) Children() []Node { return []Node{o.LHS, o.RHS} }

// Not is Kleene-logic negation.
type Not struct {
	Position Position
	Inner    Node
}

func (n *Not) Pos() Position    { return n.Position }
func (n *Not) Children() []Node { return []Node{n.Inner} }

// Collect is the COLLECT(expr) aggregation (§4.3 "Collect(inner_expr)").
type Collect struct {
	Position Position
	Inner    Node
}

func (c *Collect) Pos() Position    { return c.Position }
func (c *Collect) Children() []Node { return []Node{c.Inner} }

// Size is the SIZE(expr) aggregation (§4.3 "Size(inner)"). Per §4.6, the
// form that matters for group aggregation is SIZE(COLLECT(expr)); Inner is
// whatever expression SIZE wraps (typically a *Collect).
type Size struct {
	Position Position
	Inner    Node
}

func (s *Size) Pos() Position    { return s.Position }
func (s *Size) Children() []Node { return []Node{s.Inner} }

// FuncCall is a named function application, e.g. "abs(x)". The grammar
// (§4.2) lists bare "function(expr, ...)" alongside COLLECT/SIZE; those two
// get their own node types because they drive aggregation detection (§4.6),
// everything else parses to FuncCall.
type FuncCall struct {
	Position Position
	Name     string
	Args     []Node
}

func (f *FuncCall) Pos() Position { return f.Position }
func (f *FuncCall) Children() []Node {
	return f.Args
}

// Alias is a projection element: "expr [AS name]" (§4.3 "Alias(expr, name)").
// If the query omits "AS name", the parser derives Name from the expression:
// a variable, attribute lookup, literal, COLLECT or SIZE renders as its
// source text, a function call as "name(...)", and any other expression
// (arithmetic, comparison, boolean) leaves Name empty.
type Alias struct {
	Position Position
	Expr     Node
	Name     string
}

func (a *Alias) Pos() Position    { return a.Position }
func (a *Alias) Children() []Node { return []Node{a.Expr} }

// IsAggregated reports whether a contains a Collect or Size sub-node
// anywhere in its expression tree (§4.6 "aggregated iff expr contains a
// Collect or Size sub-node", GLOSSARY "Aggregation alias").
func (a *Alias) IsAggregated() bool {
	found := false
	var visit VisitorFunc
	visit = func(n Node) Visitor {
		switch n.(type) {
		case *Collect, *Size:
			found = true
			return nil
		}
		return visit
	}
	Walk(visit, a.Expr)
	return found
}

// With is the WITH clause: an ordered alias list (§4.3 "WithClause(aliases)").
type With struct {
	Position Position
	Aliases  []*Alias
}

func (w *With) Pos() Position { return w.Position }
func (w *With) Children() []Node {
	out := make([]Node, len(w.Aliases))
	for i, a := range w.Aliases {
		out[i] = a
	}
	return out
}

// Where is the WHERE clause (§4.3 "Where(predicate)").
type Where struct {
	Position  Position
	Predicate Node
}

func (w *Where) Pos() Position    { return w.Position }
func (w *Where) Children() []Node { return []Node{w.Predicate} }

// Return is the RETURN clause: an ordered alias list (§4.3 "Return(aliases)").
type Return struct {
	Position Position
	Aliases  []*Alias
}

func (r *Return) Pos() Position { return r.Position }
func (r *Return) Children() []Node {
	out := make([]Node, len(r.Aliases))
	for i, a := range r.Aliases {
		out[i] = a
	}
	return out
}
