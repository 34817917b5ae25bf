// Package parser implements Zinc's syntax analyzer: a recursive-descent
// parser over the token stream produced by [lexer.Lexer].
//
// Expression parsing is a layered precedence climb, one function per
// level, in this fixed order:
//
//	Assignment < Or < Xor < And < Comparison < AddSub < MulDivRem <
//	Casting < Unary < Access < Path
//
// Each level parses its left operand by delegating to the next-higher
// level, then optionally folds with its own operator(s) — precedence
// is enforced by this layering, not by re-balancing a flat token
// stream. The parser carries a single token of lookahead
// (`peekToken`), threaded uniformly through every sub-parser; the
// `contract` statement additionally models its production as an
// explicit per-state transition machine, since its
// shape (an optional field list followed by a statement list) doesn't
// fit the uniform expression climb.
//
// The parser is fail-fast: callers should stop after the first
// reported [Error] rather than attempt recovery.
package parser

import (
	"github.com/dr8co/zinc/ast"
	"github.com/dr8co/zinc/lexer"
	"github.com/dr8co/zinc/token"
)

// Parser turns a token stream into a syntax tree.
type Parser struct {
	l      *lexer.Lexer
	errors []*Error

	currentToken token.Token
	peekToken    token.Token

	// noStructLiteral suppresses struct-literal parsing of `Name {`
	// while parsing an if-condition, a for-range end or a match
	// scrutinee, so `if x { ... }` reads `{` as the consequence block
	// rather than the start of a literal.
	noStructLiteral bool
}

// New creates a Parser reading from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns the syntactic errors accumulated so far. The parser
// is fail-fast: ParseProgram stops at the first error, so this slice
// holds at most one entry in normal use, but subparsers may append
// more before the caller notices.
func (p *Parser) Errors() []*Error { return p.errors }

func (p *Parser) nextToken() {
	p.currentToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curIs(t token.Type) bool { return p.currentToken.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.Type, hint string) bool {
	if p.peekIs(t) {
		p.nextToken()
		return true
	}
	p.errors = append(p.errors, &Error{
		Kind:     ErrExpected,
		Wanted:   []string{string(t)},
		Found:    string(p.peekToken.Type),
		Hint:     hint,
		Location: p.peekToken.Location,
	})
	return false
}

func (p *Parser) expectIdentifier() (string, bool) {
	if !p.peekIs(token.Ident) {
		p.errors = append(p.errors, &Error{
			Kind:     ErrExpectedIdentifier,
			Wanted:   []string{"identifier"},
			Found:    string(p.peekToken.Type),
			Location: p.peekToken.Location,
		})
		return "", false
	}
	p.nextToken()
	return p.currentToken.Literal, true
}

// ParseProgram parses a complete compilation unit: a sequence of
// top-level items, failing fast on the first error.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	for !p.curIs(token.EOF) {
		item := p.parseItem()
		if len(p.errors) > 0 {
			return program
		}
		if item != nil {
			program.Items = append(program.Items, item)
		}
		p.nextToken()
	}
	return program
}

// parseItem dispatches on the current token's keyword to the matching
// item sub-parser.
func (p *Parser) parseItem() ast.Item {
	attrs := p.parseAttributes()

	switch p.currentToken.Type {
	case token.Function:
		return p.parseFunctionItem(attrs)
	case token.Const:
		return p.parseConstItem()
	case token.TypeKw:
		return p.parseTypeItem()
	case token.Struct:
		return p.parseStructItem()
	case token.Enum:
		return p.parseEnumItem()
	case token.Contract:
		return p.parseContractItem()
	case token.Impl:
		return p.parseImplItem()
	case token.Use:
		return p.parseUseItem()
	case token.Mod:
		return p.parseModItem()
	default:
		p.errors = append(p.errors, &Error{
			Kind:     ErrExpected,
			Wanted:   []string{"fn", "const", "type", "struct", "enum", "contract", "impl", "use", "mod"},
			Found:    string(p.currentToken.Type),
			Hint:     "expected a top-level item",
			Location: p.currentToken.Location,
		})
		return nil
	}
}

// parseAttributes consumes zero or more `#[...]` attribute lists
// preceding an item. `zksync::msg` additionally
// requires exactly four key/value pairs in the fixed order
// `sender, recipient, token_address, amount`; any deviation is a
// structured Expected error rather than a silently-ignored attribute.
func (p *Parser) parseAttributes() []ast.Attribute {
	var attrs []ast.Attribute
	for p.curIs(token.Hash) {
		tok := p.currentToken
		if !p.expectPeek(token.Lbracket, "attributes are written `#[name]` or `#[name(...)]`") {
			return attrs
		}
		name, ok := p.expectIdentifierOrKeyword()
		if !ok {
			return attrs
		}

		attr := ast.Attribute{TokenTok: tok}
		switch name {
		case "test":
			attr.Kind = ast.AttrTest
		case "should_panic":
			attr.Kind = ast.AttrShouldPanic
		case "ignore":
			attr.Kind = ast.AttrIgnore
		default:
			if name == "zksync" {
				if !p.expectPeek(token.DoubleColon, "expected `zksync::msg(...)`") {
					return attrs
				}
				if !p.expectPeek(token.Ident, "expected `msg` after `zksync::`") || p.currentToken.Literal != "msg" {
					p.errors = append(p.errors, &Error{
						Kind: ErrExpected, Wanted: []string{"msg"}, Found: p.currentToken.Literal,
						Hint: "only `zksync::msg` is a recognized attribute path", Location: p.currentToken.Location,
					})
					return attrs
				}
				attr.Kind = ast.AttrZksyncMsg
				attr.Msg = p.parseZksyncMsgArgs()
			} else {
				p.errors = append(p.errors, &Error{
					Kind: ErrExpected, Wanted: []string{"test", "should_panic", "ignore", "zksync::msg"},
					Found: name, Location: tok.Location,
				})
				return attrs
			}
		}

		if !p.expectPeek(token.Rbracket, "expected `]` to close the attribute") {
			return attrs
		}
		attrs = append(attrs, attr)
		p.nextToken()
	}
	return attrs
}

func (p *Parser) expectIdentifierOrKeyword() (string, bool) {
	p.nextToken()
	if p.currentToken.Literal == "" {
		p.errors = append(p.errors, &Error{
			Kind: ErrExpectedIdentifier, Wanted: []string{"identifier"}, Found: string(p.currentToken.Type),
			Location: p.currentToken.Location,
		})
		return "", false
	}
	return p.currentToken.Literal, true
}

// parseZksyncMsgArgs parses the fixed-order `(sender = e, recipient =
// e, token_address = e, amount = e)` argument list.
func (p *Parser) parseZksyncMsgArgs() *ast.ZksyncMsgAttr {
	msg := &ast.ZksyncMsgAttr{}
	wantOrder := []string{"sender", "recipient", "token_address", "amount"}

	if !p.expectPeek(token.Lparen, "zksync::msg requires its four fields, e.g. zksync::msg(sender = 1, recipient = 2, token_address = 3, amount = 4)") {
		return msg
	}

	fields := []*string{&msg.Sender, &msg.Recipient, &msg.TokenAddress, &msg.Amount}
	for i, want := range wantOrder {
		if !p.expectPeek(token.Ident, "expected field name `"+want+"`") {
			return msg
		}
		if p.currentToken.Literal != want {
			p.errors = append(p.errors, &Error{
				Kind: ErrExpected, Wanted: []string{want}, Found: p.currentToken.Literal,
				Hint: "zksync::msg fields must appear in the order sender, recipient, token_address, amount",
				Location: p.currentToken.Location,
			})
			return msg
		}
		if !p.expectPeek(token.Assign, "expected `=` after field name") {
			return msg
		}
		if !p.expectPeek(token.Int, "zksync::msg fields must be integer literals") {
			return msg
		}
		*fields[i] = p.currentToken.Literal

		if i < len(wantOrder)-1 {
			if !p.expectPeek(token.Comma, "expected `,` between zksync::msg fields") {
				return msg
			}
		}
	}
	if !p.expectPeek(token.Rparen, "expected `)` to close zksync::msg") {
		return msg
	}
	return msg
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.currentToken}

	p.nextToken()
	for !p.curIs(token.Rbrace) && !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		if len(p.errors) > 0 {
			return block
		}
		block.Statements = append(block.Statements, stmt)
		p.nextToken()
	}
	return block
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.currentToken.Type {
	case token.Let:
		return p.parseLetStatement()
	case token.For:
		return p.parseForStatement()
	case token.Match:
		return p.parseMatchStatement()
	case token.Return:
		return p.parseReturnStatement()
	case token.Impl:
		tok := p.currentToken
		impl := p.parseImplItem()
		return &ast.LocalImplStatement{Token: tok, Impl: impl}
	case token.Function:
		tok := p.currentToken
		item := p.parseFunctionItem(nil)
		fn, ok := item.(*ast.FunctionItem)
		if !ok {
			return &ast.ExpressionStatement{Token: tok}
		}
		return &ast.LocalFnStatement{Token: tok, Fn: fn}
	case token.Const:
		tok := p.currentToken
		item := p.parseConstItem()
		return &ast.LocalConstStatement{Token: tok, Const: item.(*ast.ConstItem)}
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseLetStatement() *ast.LetStatement {
	stmt := &ast.LetStatement{Token: p.currentToken}

	if p.peekIs(token.Mut) {
		p.nextToken()
		stmt.Mutable = true
	}

	name, ok := p.expectIdentifier()
	if !ok {
		return stmt
	}
	stmt.Name = name

	if p.peekIs(token.Colon) {
		p.nextToken()
		p.nextToken()
		stmt.Type = p.parseTypeExpr()
	}

	if !p.expectPeek(token.Assign, "let bindings must be initialized, e.g. `let x: u8 = 1;`") {
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(Assignment + 1)

	if p.peekIs(token.Semicolon) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseForStatement() *ast.ForStatement {
	stmt := &ast.ForStatement{Token: p.currentToken}

	name, ok := p.expectIdentifier()
	if !ok {
		return stmt
	}
	stmt.Iterator = name

	if !p.expectPeek(token.In, "expected `in` after the loop variable, e.g. `for i in 0..10 { ... }`") {
		return stmt
	}
	p.nextToken()
	stmt.RangeStart = p.parseExpression(Lowest)

	if !p.expectPeek(token.DotDot, "for-loops iterate over a `start..end` range") {
		return stmt
	}
	p.nextToken()
	prevNoStruct := p.noStructLiteral
	p.noStructLiteral = true
	stmt.RangeEnd = p.parseExpression(Lowest)
	p.noStructLiteral = prevNoStruct

	if !p.expectPeek(token.Lbrace, "expected `{` to start the loop body") {
		return stmt
	}
	stmt.Body = p.parseBlockStatement()
	return stmt
}

func (p *Parser) parseMatchStatement() *ast.MatchStatement {
	stmt := &ast.MatchStatement{Token: p.currentToken}
	p.nextToken()
	prevNoStruct := p.noStructLiteral
	p.noStructLiteral = true
	stmt.Scrutinee = p.parseExpression(Lowest)
	p.noStructLiteral = prevNoStruct

	if !p.expectPeek(token.Lbrace, "expected `{` to start the match arms") {
		return stmt
	}
	p.nextToken()

	for !p.curIs(token.Rbrace) && !p.curIs(token.EOF) {
		arm := ast.MatchArm{}
		arm.Pattern = p.parsePattern()

		if !p.expectPeek(token.Arrow, "expected `=>` after a match pattern") {
			return stmt
		}
		p.nextToken()
		arm.Body = p.parseExpression(Lowest)
		stmt.Arms = append(stmt.Arms, arm)

		if p.peekIs(token.Comma) {
			p.nextToken()
		}
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parsePattern() ast.Pattern {
	switch p.currentToken.Type {
	case token.Underscore:
		return &ast.WildcardPattern{Token: p.currentToken}
	case token.Ident:
		return &ast.BindingPattern{Token: p.currentToken, Name: p.currentToken.Literal}
	default:
		tok := p.currentToken
		expr := p.parseExpression(Lowest)
		return &ast.LiteralPattern{Token: tok, Value: expr}
	}
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	stmt := &ast.ReturnStatement{Token: p.currentToken}

	if p.peekIs(token.Semicolon) {
		p.nextToken()
		return stmt
	}
	p.nextToken()
	stmt.ReturnValue = p.parseExpression(Lowest)

	if p.peekIs(token.Semicolon) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	stmt := &ast.ExpressionStatement{Token: p.currentToken}
	stmt.Expression = p.parseExpression(Lowest)

	if p.peekIs(token.Semicolon) {
		p.nextToken()
		stmt.Terminated = true
	}
	return stmt
}
