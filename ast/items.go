package ast

import (
	"strings"

	"github.com/dr8co/zinc/token"
)

// FunctionItem is a top-level or impl-scoped `fn` declaration.
type FunctionItem struct {
	Token      token.Token
	Name       string
	Generics   []string
	Parameters []Parameter
	ReturnType TypeExpr // nil means unit
	Body       *BlockStatement
	Attributes []Attribute
}

func (f *FunctionItem) itemNode() {}
func (f *FunctionItem) TokenLiteral() string { return f.Token.Literal }
func (f *FunctionItem) Loc() token.Location { return f.Token.Location }
func (f *FunctionItem) String() string {
	var out strings.Builder
	out.WriteString("fn ")
	out.WriteString(f.Name)
	if len(f.Generics) > 0 {
		out.WriteString("<" + identList(f.Generics) + ">")
	}
	out.WriteString("(")
	params := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		params[i] = p.Name + ": " + p.Type.String()
	}
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(")")
	if f.ReturnType != nil {
		out.WriteString(" -> " + f.ReturnType.String())
	}
	out.WriteString(" ")
	out.WriteString(f.Body.String())
	return out.String()
}

// ConstItem is `const NAME: Type = expr;`.
type ConstItem struct {
	Token token.Token
	Name  string
	Type  TypeExpr
	Value Expression
}

func (c *ConstItem) itemNode() {}
func (c *ConstItem) TokenLiteral() string { return c.Token.Literal }
func (c *ConstItem) Loc() token.Location { return c.Token.Location }
func (c *ConstItem) String() string {
	return "const " + c.Name + ": " + c.Type.String() + " = " + c.Value.String() + ";"
}

// TypeItem is a type alias: `type Name = Type;`.
type TypeItem struct {
	Token token.Token
	Name  string
	Type  TypeExpr
}

func (t *TypeItem) itemNode() {}
func (t *TypeItem) TokenLiteral() string { return t.Token.Literal }
func (t *TypeItem) Loc() token.Location { return t.Token.Location }
func (t *TypeItem) String() string {
	return "type " + t.Name + " = " + t.Type.String() + ";"
}

// StructItem is `struct Name { field: Type, ... }`.
type StructItem struct {
	Token  token.Token
	Name   string
	Fields []Field
}

func (s *StructItem) itemNode() {}
func (s *StructItem) TokenLiteral() string { return s.Token.Literal }
func (s *StructItem) Loc() token.Location { return s.Token.Location }
func (s *StructItem) String() string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = f.Name + ": " + f.Type.String()
	}
	return "struct " + s.Name + " { " + strings.Join(parts, ", ") + " }"
}

// EnumItem is `enum Name { Variant1, Variant2, ... }`.
type EnumItem struct {
	Token    token.Token
	Name     string
	Variants []string
}

func (e *EnumItem) itemNode() {}
func (e *EnumItem) TokenLiteral() string { return e.Token.Literal }
func (e *EnumItem) Loc() token.Location { return e.Token.Location }
func (e *EnumItem) String() string {
	return "enum " + e.Name + " { " + identList(e.Variants) + " }"
}

// ContractItem is `contract Name { fields...; statements/fns... }`.
type ContractItem struct {
	Token      token.Token
	Name       string
	Fields     []Field
	Statements []Statement
}

func (c *ContractItem) itemNode() {}
func (c *ContractItem) TokenLiteral() string { return c.Token.Literal }
func (c *ContractItem) Loc() token.Location { return c.Token.Location }
func (c *ContractItem) String() string {
	var out strings.Builder
	out.WriteString("contract " + c.Name + " {\n")
	for _, f := range c.Fields {
		out.WriteString("  " + f.Name + ": " + f.Type.String() + ";\n")
	}
	for _, s := range c.Statements {
		out.WriteString("  " + s.String() + "\n")
	}
	out.WriteString("}")
	return out.String()
}

// ImplItem is `impl TypeName { const/fn ... }` — a trait-like
// implementation block associating items with the named type.
type ImplItem struct {
	Token    token.Token
	TypeName string
	Items    []Item
}

func (i *ImplItem) itemNode() {}
func (i *ImplItem) TokenLiteral() string { return i.Token.Literal }
func (i *ImplItem) Loc() token.Location { return i.Token.Location }
func (i *ImplItem) String() string {
	var out strings.Builder
	out.WriteString("impl " + i.TypeName + " {\n")
	for _, it := range i.Items {
		out.WriteString("  " + it.String() + "\n")
	}
	out.WriteString("}")
	return out.String()
}

// UseItem is `use path::to::item [as alias];`, a single re-binding
// in the current scope. The trailing `;` is mandatory.
type UseItem struct {
	Token token.Token
	Path  []string
	Alias string // empty means no alias
}

func (u *UseItem) itemNode() {}
func (u *UseItem) TokenLiteral() string { return u.Token.Literal }
func (u *UseItem) Loc() token.Location { return u.Token.Location }
func (u *UseItem) String() string {
	s := "use " + strings.Join(u.Path, "::")
	if u.Alias != "" {
		s += " as " + u.Alias
	}
	return s + ";"
}

// ModItem is `mod name { items... }`.
type ModItem struct {
	Token token.Token
	Name  string
	Items []Item
}

func (m *ModItem) itemNode() {}
func (m *ModItem) TokenLiteral() string { return m.Token.Literal }
func (m *ModItem) Loc() token.Location { return m.Token.Location }
func (m *ModItem) String() string {
	var out strings.Builder
	out.WriteString("mod " + m.Name + " {\n")
	for _, it := range m.Items {
		out.WriteString("  " + it.String() + "\n")
	}
	out.WriteString("}")
	return out.String()
}
