package parser

import (
	"github.com/dr8co/zinc/ast"
	"github.com/dr8co/zinc/token"
)

func (p *Parser) parseFunctionItem(attrs []ast.Attribute) ast.Item {
	fn := &ast.FunctionItem{Token: p.currentToken, Attributes: attrs}

	name, ok := p.expectIdentifier()
	if !ok {
		return fn
	}
	fn.Name = name

	if p.peekIs(token.Lt) {
		p.nextToken()
		fn.Generics = p.parseGenericParams()
	}

	if !p.expectPeek(token.Lparen, "expected `(` to start the parameter list") {
		return fn
	}
	fn.Parameters = p.parseParameterList()

	if p.peekIs(token.MinusArrow) {
		p.nextToken()
		p.nextToken()
		fn.ReturnType = p.parseTypeExpr()
	}

	if !p.expectPeek(token.Lbrace, "expected `{` to start the function body") {
		return fn
	}
	fn.Body = p.parseBlockStatement()
	return fn
}

func (p *Parser) parseGenericParams() []string {
	var names []string
	if p.peekIs(token.Gt) {
		p.nextToken()
		return names
	}
	name, ok := p.expectIdentifier()
	if !ok {
		return names
	}
	names = append(names, name)
	for p.peekIs(token.Comma) {
		p.nextToken()
		name, ok := p.expectIdentifier()
		if !ok {
			return names
		}
		names = append(names, name)
	}
	p.expectPeek(token.Gt, "expected `>` to close the generic parameter list")
	return names
}

func (p *Parser) parseParameterList() []ast.Parameter {
	var params []ast.Parameter
	if p.peekIs(token.Rparen) {
		p.nextToken()
		return params
	}
	p.nextToken()
	params = append(params, p.parseParameter())
	for p.peekIs(token.Comma) {
		p.nextToken()
		p.nextToken()
		params = append(params, p.parseParameter())
	}
	p.expectPeek(token.Rparen, "expected `)` to close the parameter list")
	return params
}

func (p *Parser) parseParameter() ast.Parameter {
	name := p.currentToken.Literal
	if !p.expectPeek(token.Colon, "expected `:` between a parameter name and its type") {
		return ast.Parameter{Name: name}
	}
	p.nextToken()
	return ast.Parameter{Name: name, Type: p.parseTypeExpr()}
}

func (p *Parser) parseConstItem() ast.Item {
	item := &ast.ConstItem{Token: p.currentToken}

	name, ok := p.expectIdentifier()
	if !ok {
		return item
	}
	item.Name = name

	if !p.expectPeek(token.Colon, "const declarations require an explicit type, e.g. `const N: u8 = 1;`") {
		return item
	}
	p.nextToken()
	item.Type = p.parseTypeExpr()

	if !p.expectPeek(token.Assign, "expected `=` after a const's type") {
		return item
	}
	p.nextToken()
	item.Value = p.parseExpression(Lowest)

	p.expectPeek(token.Semicolon, "expected `;` to terminate a const declaration")
	return item
}

func (p *Parser) parseTypeItem() ast.Item {
	item := &ast.TypeItem{Token: p.currentToken}

	name, ok := p.expectIdentifier()
	if !ok {
		return item
	}
	item.Name = name

	if !p.expectPeek(token.Assign, "expected `=` in a type alias, e.g. `type Amount = u64;`") {
		return item
	}
	p.nextToken()
	item.Type = p.parseTypeExpr()

	p.expectPeek(token.Semicolon, "expected `;` to terminate a type alias")
	return item
}

func (p *Parser) parseStructItem() ast.Item {
	item := &ast.StructItem{Token: p.currentToken}

	name, ok := p.expectIdentifier()
	if !ok {
		return item
	}
	item.Name = name

	if !p.expectPeek(token.Lbrace, "expected `{` to start the struct's fields") {
		return item
	}
	if p.peekIs(token.Rbrace) {
		p.nextToken()
		return item
	}

	for {
		if !p.expectPeek(token.Ident, "expected a field name") {
			return item
		}
		fieldName := p.currentToken.Literal
		if !p.expectPeek(token.Colon, "expected `:` after a field name") {
			return item
		}
		p.nextToken()
		typ := p.parseTypeExpr()
		item.Fields = append(item.Fields, ast.Field{Name: fieldName, Type: typ})

		if p.peekIs(token.Comma) {
			p.nextToken()
			if p.peekIs(token.Rbrace) {
				break
			}
			continue
		}
		break
	}
	p.expectPeek(token.Rbrace, "expected `}` to close the struct")
	return item
}

func (p *Parser) parseEnumItem() ast.Item {
	item := &ast.EnumItem{Token: p.currentToken}

	name, ok := p.expectIdentifier()
	if !ok {
		return item
	}
	item.Name = name

	if !p.expectPeek(token.Lbrace, "expected `{` to start the enum's variants") {
		return item
	}
	if p.peekIs(token.Rbrace) {
		p.nextToken()
		return item
	}

	for {
		variantName, ok := p.expectIdentifier()
		if !ok {
			return item
		}
		item.Variants = append(item.Variants, variantName)

		if p.peekIs(token.Comma) {
			p.nextToken()
			if p.peekIs(token.Rbrace) {
				break
			}
			continue
		}
		break
	}
	p.expectPeek(token.Rbrace, "expected `}` to close the enum")
	return item
}

// contractState names each stage of the contract production's
// hand-rolled state machine: a contract is a keyword, a name, then an
// optional leading field list, then a statement sequence — a shape
// that doesn't fit the uniform item/statement dispatch the rest of
// the parser uses, since a field declaration (`name: Type;`) and a
// statement beginning with a bare identifier are only distinguished
// by the token one past the name.
type contractState int

const (
	contractStateName contractState = iota
	contractStateOpenBrace
	contractStateFields
	contractStateBody
)

func (p *Parser) parseContractItem() ast.Item {
	item := &ast.ContractItem{Token: p.currentToken}
	state := contractStateName

	for {
		switch state {
		case contractStateName:
			name, ok := p.expectIdentifier()
			if !ok {
				return item
			}
			item.Name = name
			state = contractStateOpenBrace

		case contractStateOpenBrace:
			if !p.expectPeek(token.Lbrace, "expected `{` to start the contract body") {
				return item
			}
			if p.peekIs(token.Rbrace) {
				p.nextToken()
				return item
			}
			state = contractStateFields

		case contractStateFields:
			if !p.peekIs(token.Ident) {
				state = contractStateBody
				continue
			}
			// Consume the identifier; only now, with it as
			// currentToken, can the single token of lookahead
			// reveal whether it is a field name (followed by `:`)
			// or the start of an ordinary statement.
			p.nextToken()
			if p.peekIs(token.Colon) {
				fieldName := p.currentToken.Literal
				p.nextToken()
				p.nextToken()
				typ := p.parseTypeExpr()
				item.Fields = append(item.Fields, ast.Field{Name: fieldName, Type: typ})
				if !p.expectPeek(token.Semicolon, "expected `;` after a contract field") {
					return item
				}
				state = contractStateFields
				continue
			}
			stmt := p.parseStatement()
			if len(p.errors) > 0 {
				return item
			}
			item.Statements = append(item.Statements, stmt)
			state = contractStateBody

		case contractStateBody:
			if p.peekIs(token.Rbrace) {
				p.nextToken()
				return item
			}
			p.nextToken()
			stmt := p.parseStatement()
			if len(p.errors) > 0 {
				return item
			}
			item.Statements = append(item.Statements, stmt)
			state = contractStateBody
		}
	}
}

func (p *Parser) parseImplItem() *ast.ImplItem {
	item := &ast.ImplItem{Token: p.currentToken}

	name, ok := p.expectIdentifier()
	if !ok {
		return item
	}
	item.TypeName = name

	if !p.expectPeek(token.Lbrace, "expected `{` to start an impl block") {
		return item
	}
	p.nextToken()
	for !p.curIs(token.Rbrace) && !p.curIs(token.EOF) {
		it := p.parseItem()
		if len(p.errors) > 0 {
			return item
		}
		if it != nil {
			item.Items = append(item.Items, it)
		}
		p.nextToken()
	}
	return item
}

func (p *Parser) parseUseItem() ast.Item {
	item := &ast.UseItem{Token: p.currentToken}

	name, ok := p.expectIdentifier()
	if !ok {
		return item
	}
	item.Path = append(item.Path, name)

	for p.peekIs(token.DoubleColon) {
		p.nextToken()
		name, ok := p.expectIdentifier()
		if !ok {
			return item
		}
		item.Path = append(item.Path, name)
	}

	if p.peekIs(token.As) {
		p.nextToken()
		alias, ok := p.expectIdentifier()
		if !ok {
			return item
		}
		item.Alias = alias
	}

	p.expectPeek(token.Semicolon, "use declarations must end with `;`")
	return item
}

func (p *Parser) parseModItem() ast.Item {
	item := &ast.ModItem{Token: p.currentToken}

	name, ok := p.expectIdentifier()
	if !ok {
		return item
	}
	item.Name = name

	if !p.expectPeek(token.Lbrace, "expected `{` to start a module body") {
		return item
	}
	p.nextToken()
	for !p.curIs(token.Rbrace) && !p.curIs(token.EOF) {
		it := p.parseItem()
		if len(p.errors) > 0 {
			return item
		}
		if it != nil {
			item.Items = append(item.Items, it)
		}
		p.nextToken()
	}
	return item
}
