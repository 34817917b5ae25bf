package ast

import (
	"fmt"
	"strings"

	"github.com/dr8co/zinc/token"
)

// NamedType is a type referenced by name: a primitive (`bool`,
// `field`, `u8`..`i248`) or a path to a declared
// struct/enum/contract/alias. Unit, written `()`, parses as an empty
// TupleType instead.
type NamedType struct {
	Token token.Token
	Path  []string
}

func (t *NamedType) typeExprNode() {}
func (t *NamedType) TokenLiteral() string { return t.Token.Literal }
func (t *NamedType) Loc() token.Location { return t.Token.Location }
func (t *NamedType) String() string { return strings.Join(t.Path, "::") }

// ArrayType is `[T; N]`.
type ArrayType struct {
	Token   token.Token
	Element TypeExpr
	Size    Expression
}

func (t *ArrayType) typeExprNode() {}
func (t *ArrayType) TokenLiteral() string { return t.Token.Literal }
func (t *ArrayType) Loc() token.Location { return t.Token.Location }
func (t *ArrayType) String() string {
	return fmt.Sprintf("[%s; %s]", t.Element.String(), t.Size.String())
}

// TupleType is `(T1, T2, ...)`.
type TupleType struct {
	Token    token.Token
	Elements []TypeExpr
}

func (t *TupleType) typeExprNode() {}
func (t *TupleType) TokenLiteral() string { return t.Token.Literal }
func (t *TupleType) Loc() token.Location { return t.Token.Location }
func (t *TupleType) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
