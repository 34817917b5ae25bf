package ast

import (
	"strconv"
	"strings"

	"github.com/dr8co/zinc/token"
)

// Identifier is a bare name reference.
type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) expressionNode() {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) Loc() token.Location { return i.Token.Location }
func (i *Identifier) String() string { return i.Value }

// IntegerLiteral carries its literal text rather than a fixed-width Go
// integer: Zinc integers may be up to 248 bits wide, and `field`
// literals exceed int64 range. The semantic analyzer parses this text
// with math/big once the literal's type is known.
type IntegerLiteral struct {
	Token token.Token
	Text  string // cleaned of `_` separators; "0x..." or decimal
}

func (n *IntegerLiteral) expressionNode() {}
func (n *IntegerLiteral) TokenLiteral() string { return n.Token.Literal }
func (n *IntegerLiteral) Loc() token.Location { return n.Token.Location }
func (n *IntegerLiteral) String() string { return n.Text }

// BooleanLiteral is `true` or `false`.
type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (b *BooleanLiteral) expressionNode() {}
func (b *BooleanLiteral) TokenLiteral() string { return b.Token.Literal }
func (b *BooleanLiteral) Loc() token.Location { return b.Token.Location }
func (b *BooleanLiteral) String() string { return b.Token.Literal }

// StringLiteral is a quoted string literal, used only in attribute
// arguments and diagnostics — Zinc values proved by the VM are
// numeric/boolean/composite, never strings.
type StringLiteral struct {
	Token token.Token
	Value string
}

func (s *StringLiteral) expressionNode() {}
func (s *StringLiteral) TokenLiteral() string { return s.Token.Literal }
func (s *StringLiteral) Loc() token.Location { return s.Token.Location }
func (s *StringLiteral) String() string { return "\"" + s.Value + "\"" }

// ArrayLiteral is `[e1, e2, ...]`.
type ArrayLiteral struct {
	Token    token.Token
	Elements []Expression
}

func (a *ArrayLiteral) expressionNode() {}
func (a *ArrayLiteral) TokenLiteral() string { return a.Token.Literal }
func (a *ArrayLiteral) Loc() token.Location { return a.Token.Location }
func (a *ArrayLiteral) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// TupleLiteral is `(e1, e2, ...)`.
type TupleLiteral struct {
	Token    token.Token
	Elements []Expression
}

func (t *TupleLiteral) expressionNode() {}
func (t *TupleLiteral) TokenLiteral() string { return t.Token.Literal }
func (t *TupleLiteral) Loc() token.Location { return t.Token.Location }
func (t *TupleLiteral) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// StructFieldValue is one `name: expr` entry of a struct literal.
type StructFieldValue struct {
	Name  string
	Value Expression
}

// StructLiteral is `TypeName { field: expr, ... }`.
type StructLiteral struct {
	Token    token.Token
	TypeName string
	Fields   []StructFieldValue
}

func (s *StructLiteral) expressionNode() {}
func (s *StructLiteral) TokenLiteral() string { return s.Token.Literal }
func (s *StructLiteral) Loc() token.Location { return s.Token.Location }
func (s *StructLiteral) String() string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = f.Name + ": " + f.Value.String()
	}
	return s.TypeName + " { " + strings.Join(parts, ", ") + " }"
}

// PrefixExpression is a unary operator applied to its operand: `!x`,
// `-x`.
type PrefixExpression struct {
	Token    token.Token
	Operator string
	Right    Expression
}

func (p *PrefixExpression) expressionNode() {}
func (p *PrefixExpression) TokenLiteral() string { return p.Token.Literal }
func (p *PrefixExpression) Loc() token.Location { return p.Token.Location }
func (p *PrefixExpression) String() string {
	return "(" + p.Operator + p.Right.String() + ")"
}

// InfixExpression is a binary operator applied to two operands.
type InfixExpression struct {
	Token    token.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (i *InfixExpression) expressionNode() {}
func (i *InfixExpression) TokenLiteral() string { return i.Token.Literal }
func (i *InfixExpression) Loc() token.Location { return i.Token.Location }
func (i *InfixExpression) String() string {
	return "(" + i.Left.String() + " " + i.Operator + " " + i.Right.String() + ")"
}

// AssignExpression is `place = value`, the lowest-precedence operator.
type AssignExpression struct {
	Token token.Token
	Left  Expression
	Value Expression
}

func (a *AssignExpression) expressionNode() {}
func (a *AssignExpression) TokenLiteral() string { return a.Token.Literal }
func (a *AssignExpression) Loc() token.Location { return a.Token.Location }
func (a *AssignExpression) String() string {
	return "(" + a.Left.String() + " = " + a.Value.String() + ")"
}

// CastExpression is `expr as Type`.
type CastExpression struct {
	Token token.Token
	Left  Expression
	Type  TypeExpr
}

func (c *CastExpression) expressionNode() {}
func (c *CastExpression) TokenLiteral() string { return c.Token.Literal }
func (c *CastExpression) Loc() token.Location { return c.Token.Location }
func (c *CastExpression) String() string {
	return "(" + c.Left.String() + " as " + c.Type.String() + ")"
}

// IndexExpression is `left[index]`.
type IndexExpression struct {
	Token token.Token
	Left  Expression
	Index Expression
}

func (i *IndexExpression) expressionNode() {}
func (i *IndexExpression) TokenLiteral() string { return i.Token.Literal }
func (i *IndexExpression) Loc() token.Location { return i.Token.Location }
func (i *IndexExpression) String() string {
	return "(" + i.Left.String() + "[" + i.Index.String() + "])"
}

// SliceExpression is `left[low..high]`.
type SliceExpression struct {
	Token token.Token
	Left  Expression
	Low   Expression
	High  Expression
}

func (s *SliceExpression) expressionNode() {}
func (s *SliceExpression) TokenLiteral() string { return s.Token.Literal }
func (s *SliceExpression) Loc() token.Location { return s.Token.Location }
func (s *SliceExpression) String() string {
	return "(" + s.Left.String() + "[" + s.Low.String() + ".." + s.High.String() + "])"
}

// TupleIndexExpression is `left.N`, selecting a tuple element by
// position.
type TupleIndexExpression struct {
	Token token.Token
	Left  Expression
	Index int
}

func (t *TupleIndexExpression) expressionNode() {}
func (t *TupleIndexExpression) TokenLiteral() string { return t.Token.Literal }
func (t *TupleIndexExpression) Loc() token.Location { return t.Token.Location }
func (t *TupleIndexExpression) String() string {
	return "(" + t.Left.String() + "." + strconv.Itoa(t.Index) + ")"
}

// FieldAccessExpression is `left.field`, the Access precedence level.
type FieldAccessExpression struct {
	Token token.Token
	Left  Expression
	Field string
}

func (f *FieldAccessExpression) expressionNode() {}
func (f *FieldAccessExpression) TokenLiteral() string { return f.Token.Literal }
func (f *FieldAccessExpression) Loc() token.Location { return f.Token.Location }
func (f *FieldAccessExpression) String() string {
	return "(" + f.Left.String() + "." + f.Field + ")"
}

// PathExpression is `a::b::c`, the highest-precedence level, used to
// reach module items, enum variants and impl-block associated
// constants/functions.
type PathExpression struct {
	Token    token.Token
	Segments []string
}

func (p *PathExpression) expressionNode() {}
func (p *PathExpression) TokenLiteral() string { return p.Token.Literal }
func (p *PathExpression) Loc() token.Location { return p.Token.Location }
func (p *PathExpression) String() string { return strings.Join(p.Segments, "::") }

// CallExpression is `function(arg1, arg2, ...)`. Generic callees have
// their type arguments inferred from the argument positions rather
// than spelled at the call site.
type CallExpression struct {
	Token     token.Token
	Function  Expression
	Arguments []Expression
}

func (c *CallExpression) expressionNode() {}
func (c *CallExpression) TokenLiteral() string { return c.Token.Literal }
func (c *CallExpression) Loc() token.Location { return c.Token.Location }
func (c *CallExpression) String() string {
	args := make([]string, len(c.Arguments))
	for i, a := range c.Arguments {
		args[i] = a.String()
	}
	return c.Function.String() + "(" + strings.Join(args, ", ") + ")"
}

// IfExpression is `if cond { consequence } else { alternative }`.
// Zinc is expression-oriented, so `if`/`else` yields a value.
type IfExpression struct {
	Token       token.Token
	Condition   Expression
	Consequence *BlockStatement
	Alternative *BlockStatement // nil if there is no else branch
}

func (i *IfExpression) expressionNode() {}
func (i *IfExpression) TokenLiteral() string { return i.Token.Literal }
func (i *IfExpression) Loc() token.Location { return i.Token.Location }
func (i *IfExpression) String() string {
	var out strings.Builder
	out.WriteString("if " + i.Condition.String() + " " + i.Consequence.String())
	if i.Alternative != nil {
		out.WriteString(" else " + i.Alternative.String())
	}
	return out.String()
}
