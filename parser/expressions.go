package parser

import (
	"strconv"

	"github.com/dr8co/zinc/ast"
	"github.com/dr8co/zinc/token"
)

// Precedence levels, lowest to highest. Each level's
// parse function obtains its operand by delegating to the next level
// down this list, then optionally folds using its own operator set —
// precedence is enforced by the call chain, not by a table lookup.
const (
	Lowest = iota
	Assignment
	Or
	Xor
	And
	Comparison
	AddSub
	MulDivRem
	Casting
	Unary
	Access
	Path
)

// parseExpression parses starting at the given minimum precedence: it
// enters the call chain at the level whose entry point first rejects
// operators below precedence. Most callers pass Lowest; let-statement
// initializers pass Assignment+1 to keep `let x = y = 1` from being
// read as `x = (y = 1)` nested a second time.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	switch {
	case precedence <= Assignment:
		return p.parseAssignment()
	case precedence <= Or:
		return p.parseOr()
	case precedence <= Xor:
		return p.parseXor()
	case precedence <= And:
		return p.parseAnd()
	case precedence <= Comparison:
		return p.parseComparison()
	case precedence <= AddSub:
		return p.parseAddSub()
	case precedence <= MulDivRem:
		return p.parseMulDivRem()
	case precedence <= Casting:
		return p.parseCasting()
	case precedence <= Unary:
		return p.parseUnary()
	case precedence <= Access:
		return p.parseAccess()
	default:
		return p.parsePath()
	}
}

func (p *Parser) parseAssignment() ast.Expression {
	left := p.parseOr()
	if p.peekIs(token.Assign) {
		opTok := p.peekToken
		p.nextToken()
		p.nextToken()
		value := p.parseAssignment()
		return &ast.AssignExpression{Token: opTok, Left: left, Value: value}
	}
	return left
}

func (p *Parser) parseOr() ast.Expression {
	left := p.parseXor()
	for p.peekIs(token.PipePipe) {
		opTok := p.peekToken
		p.nextToken()
		p.nextToken()
		right := p.parseXor()
		left = &ast.InfixExpression{Token: opTok, Left: left, Operator: opTok.Literal, Right: right}
	}
	return left
}

func (p *Parser) parseXor() ast.Expression {
	left := p.parseAnd()
	for p.peekIs(token.Caret) {
		opTok := p.peekToken
		p.nextToken()
		p.nextToken()
		right := p.parseAnd()
		left = &ast.InfixExpression{Token: opTok, Left: left, Operator: opTok.Literal, Right: right}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expression {
	left := p.parseComparison()
	for p.peekIs(token.AmpAmp) {
		opTok := p.peekToken
		p.nextToken()
		p.nextToken()
		right := p.parseComparison()
		left = &ast.InfixExpression{Token: opTok, Left: left, Operator: opTok.Literal, Right: right}
	}
	return left
}

func (p *Parser) parseComparison() ast.Expression {
	left := p.parseAddSub()
	for p.peekIs(token.Eq) || p.peekIs(token.NotEq) || p.peekIs(token.Lt) ||
		p.peekIs(token.Lte) || p.peekIs(token.Gt) || p.peekIs(token.Gte) {
		opTok := p.peekToken
		p.nextToken()
		p.nextToken()
		right := p.parseAddSub()
		left = &ast.InfixExpression{Token: opTok, Left: left, Operator: opTok.Literal, Right: right}
	}
	return left
}

func (p *Parser) parseAddSub() ast.Expression {
	left := p.parseMulDivRem()
	for p.peekIs(token.Plus) || p.peekIs(token.Minus) {
		opTok := p.peekToken
		p.nextToken()
		p.nextToken()
		right := p.parseMulDivRem()
		left = &ast.InfixExpression{Token: opTok, Left: left, Operator: opTok.Literal, Right: right}
	}
	return left
}

func (p *Parser) parseMulDivRem() ast.Expression {
	left := p.parseCasting()
	for p.peekIs(token.Asterisk) || p.peekIs(token.Slash) || p.peekIs(token.Percent) {
		opTok := p.peekToken
		p.nextToken()
		p.nextToken()
		right := p.parseCasting()
		left = &ast.InfixExpression{Token: opTok, Left: left, Operator: opTok.Literal, Right: right}
	}
	return left
}

// parseCasting folds the postfix `as Type` operator, which binds
// between MulDivRem and Unary.
func (p *Parser) parseCasting() ast.Expression {
	left := p.parseUnary()
	for p.peekIs(token.As) {
		opTok := p.peekToken
		p.nextToken()
		p.nextToken()
		typ := p.parseTypeExpr()
		left = &ast.CastExpression{Token: opTok, Left: left, Type: typ}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expression {
	if p.curIs(token.Bang) || p.curIs(token.Minus) {
		tok := p.currentToken
		p.nextToken()
		right := p.parseUnary()
		return &ast.PrefixExpression{Token: tok, Operator: tok.Literal, Right: right}
	}
	return p.parseAccess()
}

// parseAccess folds the postfix call/index/slice/field/tuple-index
// operators, all of which may chain onto a single path atom:
// `f(x).field[0]`.
func (p *Parser) parseAccess() ast.Expression {
	left := p.parsePath()
	for {
		switch {
		case p.peekIs(token.Lparen):
			p.nextToken()
			left = p.parseCallExpression(left)
		case p.peekIs(token.Lbracket):
			p.nextToken()
			left = p.parseIndexOrSlice(left)
		case p.peekIs(token.Dot):
			p.nextToken()
			left = p.parseDotAccess(left)
		default:
			return left
		}
	}
}

// parsePath folds `a::b::c` segments into a single path atom, the
// tightest-binding level.
func (p *Parser) parsePath() ast.Expression {
	first := p.parsePrimary()
	ident, ok := first.(*ast.Identifier)
	if !ok || !p.peekIs(token.DoubleColon) {
		return first
	}

	segments := []string{ident.Value}
	for p.peekIs(token.DoubleColon) {
		p.nextToken()
		if !p.expectPeek(token.Ident, "expected an identifier after `::`") {
			return &ast.PathExpression{Token: ident.Token, Segments: segments}
		}
		segments = append(segments, p.currentToken.Literal)
	}
	return &ast.PathExpression{Token: ident.Token, Segments: segments}
}

func (p *Parser) parsePrimary() ast.Expression {
	switch p.currentToken.Type {
	case token.Ident:
		return p.parseIdentifierOrStruct()
	case token.Int:
		return &ast.IntegerLiteral{Token: p.currentToken, Text: p.currentToken.Literal}
	case token.True, token.False:
		return &ast.BooleanLiteral{Token: p.currentToken, Value: p.curIs(token.True)}
	case token.String:
		return &ast.StringLiteral{Token: p.currentToken, Value: p.currentToken.Literal}
	case token.Lparen:
		return p.parseParenOrTuple()
	case token.Lbracket:
		return p.parseArrayLiteral()
	case token.If:
		return p.parseIfExpression()
	default:
		p.errors = append(p.errors, &Error{
			Kind: ErrExpected, Wanted: []string{"an expression"}, Found: string(p.currentToken.Type),
			Location: p.currentToken.Location,
		})
		return nil
	}
}

// parseIdentifierOrStruct disambiguates a bare name from a struct
// literal `Name { field: value, ... }`. Struct literals are suppressed
// inside if-conditions, for-range ends and match scrutinees
// (p.noStructLiteral), matching the restriction
// that lets `if x { ... }` read its `{` as the consequence block
// rather than the start of a literal.
func (p *Parser) parseIdentifierOrStruct() ast.Expression {
	ident := &ast.Identifier{Token: p.currentToken, Value: p.currentToken.Literal}
	if !p.noStructLiteral && p.peekIs(token.Lbrace) {
		return p.parseStructLiteral(ident)
	}
	return ident
}

func (p *Parser) parseStructLiteral(name *ast.Identifier) ast.Expression {
	lit := &ast.StructLiteral{Token: name.Token, TypeName: name.Value}
	p.nextToken() // current = '{'

	if p.peekIs(token.Rbrace) {
		p.nextToken()
		return lit
	}

	for {
		if !p.expectPeek(token.Ident, "expected a field name") {
			return lit
		}
		fieldName := p.currentToken.Literal
		if !p.expectPeek(token.Colon, "expected `:` after a field name") {
			return lit
		}
		p.nextToken()
		val := p.parseExpression(Lowest)
		lit.Fields = append(lit.Fields, ast.StructFieldValue{Name: fieldName, Value: val})

		if p.peekIs(token.Comma) {
			p.nextToken()
			if p.peekIs(token.Rbrace) {
				break
			}
			continue
		}
		break
	}
	if !p.expectPeek(token.Rbrace, "expected `}` to close the struct literal") {
		return lit
	}
	return lit
}

// parseParenOrTuple handles `()` (the unit value, a zero-element
// tuple), `(expr)` grouping, and `(e1, e2, ...)` tuple literals.
func (p *Parser) parseParenOrTuple() ast.Expression {
	tok := p.currentToken
	if p.peekIs(token.Rparen) {
		p.nextToken()
		return &ast.TupleLiteral{Token: tok}
	}

	p.nextToken()
	first := p.parseExpression(Lowest)

	if p.peekIs(token.Comma) {
		elems := []ast.Expression{first}
		for p.peekIs(token.Comma) {
			p.nextToken()
			if p.peekIs(token.Rparen) {
				break
			}
			p.nextToken()
			elems = append(elems, p.parseExpression(Lowest))
		}
		p.expectPeek(token.Rparen, "expected `)` to close the tuple")
		return &ast.TupleLiteral{Token: tok, Elements: elems}
	}

	p.expectPeek(token.Rparen, "expected `)` to close the parenthesized expression")
	return first
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	tok := p.currentToken
	elems := p.parseExpressionList(token.Rbracket)
	return &ast.ArrayLiteral{Token: tok, Elements: elems}
}

// parseExpressionList parses a comma-separated list ending in end,
// with currentToken on the opening delimiter on entry.
func (p *Parser) parseExpressionList(end token.Type) []ast.Expression {
	var list []ast.Expression
	if p.peekIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	list = append(list, p.parseExpression(Lowest))
	for p.peekIs(token.Comma) {
		p.nextToken()
		if p.peekIs(end) {
			break
		}
		p.nextToken()
		list = append(list, p.parseExpression(Lowest))
	}
	p.expectPeek(end, "expected a closing delimiter")
	return list
}

func (p *Parser) parseCallExpression(fn ast.Expression) ast.Expression {
	call := &ast.CallExpression{Token: p.currentToken, Function: fn}
	call.Arguments = p.parseExpressionList(token.Rparen)
	return call
}

func (p *Parser) parseIndexOrSlice(left ast.Expression) ast.Expression {
	tok := p.currentToken
	p.nextToken()
	first := p.parseExpression(Lowest)

	if p.peekIs(token.DotDot) {
		p.nextToken()
		p.nextToken()
		high := p.parseExpression(Lowest)
		p.expectPeek(token.Rbracket, "expected `]` to close a slice")
		return &ast.SliceExpression{Token: tok, Left: left, Low: first, High: high}
	}

	p.expectPeek(token.Rbracket, "expected `]` to close an index")
	return &ast.IndexExpression{Token: tok, Left: left, Index: first}
}

func (p *Parser) parseDotAccess(left ast.Expression) ast.Expression {
	tok := p.currentToken
	if p.peekIs(token.Int) {
		p.nextToken()
		idx, err := strconv.Atoi(p.currentToken.Literal)
		if err != nil {
			p.errors = append(p.errors, &Error{
				Kind: ErrExpectedLiteral, Wanted: []string{"a tuple index"}, Found: p.currentToken.Literal,
				Location: p.currentToken.Location,
			})
			return left
		}
		return &ast.TupleIndexExpression{Token: tok, Left: left, Index: idx}
	}
	if !p.expectPeek(token.Ident, "expected a field name or tuple index after `.`") {
		return left
	}
	return &ast.FieldAccessExpression{Token: tok, Left: left, Field: p.currentToken.Literal}
}

// parseIfExpression parses `if cond { ... } [else { ... }]`, including
// `else if` chains, which nest as a single-statement alternative block
// wrapping a further IfExpression.
func (p *Parser) parseIfExpression() ast.Expression {
	expr := &ast.IfExpression{Token: p.currentToken}
	p.nextToken()

	prevNoStruct := p.noStructLiteral
	p.noStructLiteral = true
	expr.Condition = p.parseExpression(Lowest)
	p.noStructLiteral = prevNoStruct

	if !p.expectPeek(token.Lbrace, "expected `{` to start the if-branch") {
		return expr
	}
	expr.Consequence = p.parseBlockStatement()

	if !p.peekIs(token.Else) {
		return expr
	}
	p.nextToken()

	if p.peekIs(token.If) {
		p.nextToken()
		nested := p.parseIfExpression()
		expr.Alternative = &ast.BlockStatement{
			Token:      p.currentToken,
			Statements: []ast.Statement{&ast.ExpressionStatement{Token: p.currentToken, Expression: nested}},
		}
		return expr
	}

	if !p.expectPeek(token.Lbrace, "expected `{` to start the else-branch") {
		return expr
	}
	expr.Alternative = p.parseBlockStatement()
	return expr
}
