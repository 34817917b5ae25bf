package parser

import (
	"github.com/dr8co/zinc/ast"
	"github.com/dr8co/zinc/token"
)

// parseTypeExpr parses a syntactic type reference: a named type (a
// primitive, a sized integer, or a path to a declared item), an array
// type `[T; N]`, or a tuple type `(T1, T2, ...)` — the empty tuple
// `()` doubles as the unit type. currentToken is the first token of
// the type on entry.
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	switch p.currentToken.Type {
	case token.Lbracket:
		return p.parseArrayType()
	case token.Lparen:
		return p.parseTupleType()
	default:
		return p.parseNamedType()
	}
}

func (p *Parser) parseNamedType() ast.TypeExpr {
	tok := p.currentToken
	switch tok.Type {
	case token.Ident, token.Bool, token.Field, token.UnsignedW, token.SignedW:
		path := []string{tok.Literal}
		for p.peekIs(token.DoubleColon) {
			p.nextToken()
			if !p.expectPeek(token.Ident, "expected an identifier after `::` in a type path") {
				break
			}
			path = append(path, p.currentToken.Literal)
		}
		return &ast.NamedType{Token: tok, Path: path}
	default:
		p.errors = append(p.errors, &Error{
			Kind: ErrExpected, Wanted: []string{"a type"}, Found: string(tok.Type), Location: tok.Location,
		})
		return &ast.NamedType{Token: tok, Path: []string{tok.Literal}}
	}
}

func (p *Parser) parseArrayType() ast.TypeExpr {
	tok := p.currentToken
	p.nextToken()
	elem := p.parseTypeExpr()

	if !p.expectPeek(token.Semicolon, "expected `;` between an array's element type and its size") {
		return &ast.ArrayType{Token: tok, Element: elem}
	}
	p.nextToken()
	size := p.parseExpression(Lowest)

	p.expectPeek(token.Rbracket, "expected `]` to close an array type")
	return &ast.ArrayType{Token: tok, Element: elem, Size: size}
}

func (p *Parser) parseTupleType() ast.TypeExpr {
	tok := p.currentToken
	if p.peekIs(token.Rparen) {
		p.nextToken()
		return &ast.TupleType{Token: tok}
	}

	var elems []ast.TypeExpr
	p.nextToken()
	elems = append(elems, p.parseTypeExpr())
	for p.peekIs(token.Comma) {
		p.nextToken()
		if p.peekIs(token.Rparen) {
			break
		}
		p.nextToken()
		elems = append(elems, p.parseTypeExpr())
	}

	p.expectPeek(token.Rparen, "expected `)` to close a tuple type")
	return &ast.TupleType{Token: tok, Elements: elems}
}
