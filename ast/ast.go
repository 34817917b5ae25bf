// Package ast defines the abstract syntax tree produced by the parser
// for Zinc programs.
//
// Nodes are grouped into three categories: items
// (fn, const, type, struct, enum, contract, impl, use, mod),
// statements (let, for, match, expression, local-impl) and
// expressions (a binary tree over operands, built by the parser's
// precedence-climbing layers). Every node is built once by the parser
// and never mutated after it leaves the parser
// — the semantic analyzer produces a separate typed IR rather than
// rewriting these nodes in place.
package ast

import (
	"strings"

	"github.com/dr8co/zinc/token"
)

// Node is the base interface implemented by every syntax tree node.
type Node interface {
	TokenLiteral() string
	String() string
	Loc() token.Location
}

// Item is a top-level (or module-level) declaration.
type Item interface {
	Node
	itemNode()
}

// Statement is a node inside a function or block body.
type Statement interface {
	Node
	statementNode()
}

// Expression is a node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// TypeExpr is a syntactic type reference, as written in source — the
// semantic analyzer resolves it to a types.Type.
type TypeExpr interface {
	Node
	typeExprNode()
}

// Attribute is a declarative annotation parsed from `#[...]` syntax
// and attached to an Item.
type Attribute struct {
	TokenTok token.Token
	Kind     AttributeKind
	Msg      *ZksyncMsgAttr // set only when Kind == AttrZksyncMsg
}

// AttributeKind enumerates the fixed attribute set.
type AttributeKind int

const (
	AttrTest AttributeKind = iota
	AttrShouldPanic
	AttrIgnore
	AttrZksyncMsg
)

// ZksyncMsgAttr holds the `zksync::msg` attribute's four ordered
// fields.
type ZksyncMsgAttr struct {
	Sender       string
	Recipient    string
	TokenAddress string
	Amount       string
}

// Program is the root node: a sequence of top-level items.
type Program struct {
	Items []Item
}

func (p *Program) TokenLiteral() string {
	if len(p.Items) > 0 {
		return p.Items[0].TokenLiteral()
	}
	return ""
}

func (p *Program) Loc() token.Location {
	if len(p.Items) > 0 {
		return p.Items[0].Loc()
	}
	return token.Location{}
}

func (p *Program) String() string {
	var out strings.Builder
	for _, it := range p.Items {
		out.WriteString(it.String())
		out.WriteString("\n")
	}
	return out.String()
}

// ---- shared small types ----

// Parameter is a single function parameter: a name and its declared type.
type Parameter struct {
	Name string
	Type TypeExpr
}

// Field is a single struct/contract field: a name and its declared type.
type Field struct {
	Name string
	Type TypeExpr
}

func identList(names []string) string { return strings.Join(names, ", ") }
