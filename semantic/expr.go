package semantic

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/dr8co/zinc/ast"
	"github.com/dr8co/zinc/scope"
	"github.com/dr8co/zinc/token"
	"github.com/dr8co/zinc/types"
)

// resolveTypeExpr turns a syntactic type reference into a types.Type,
// substituting a generic parameter name for its instantiated type when
// subst is non-nil.
func (a *Analyzer) resolveTypeExpr(te ast.TypeExpr, sc *scope.Scope, subst map[string]*types.Type) (*types.Type, *Error) {
	switch t := te.(type) {
	case *ast.NamedType:
		if len(t.Path) == 1 {
			name := t.Path[0]
			switch t.Token.Type {
			case token.Bool:
				return types.BoolType(), nil
			case token.Field:
				return types.FieldType(), nil
			case token.UnsignedW:
				w, werr := parseWidth(name[1:])
				if werr != nil {
					return nil, errAt(te.Loc(), ErrUnsupported, "%s", werr.Error())
				}
				return types.UintType(w), nil
			case token.SignedW:
				w, werr := parseWidth(name[1:])
				if werr != nil {
					return nil, errAt(te.Loc(), ErrUnsupported, "%s", werr.Error())
				}
				return types.IntType(w), nil
			}
			if subst != nil {
				if st, ok := subst[name]; ok {
					return st, nil
				}
			}
		}
		item, err := sc.LookupPath(t.Path)
		if err != nil {
			return nil, errAt(te.Loc(), ErrUndeclared, "%s", err.Error())
		}
		if item.Kind != scope.Type {
			return nil, errAt(te.Loc(), ErrUnsupported, "%q does not name a type", t.String())
		}
		return item.Type, nil
	case *ast.ArrayType:
		elem, err := a.resolveTypeExpr(t.Element, sc, subst)
		if err != nil {
			return nil, err
		}
		n, nerr := a.foldConstInt(t.Size, sc, subst)
		if nerr != nil {
			return nil, nerr
		}
		return types.ArrayType(elem, n), nil
	case *ast.TupleType:
		if len(t.Elements) == 0 {
			return types.UnitType(), nil
		}
		elems := make([]*types.Type, len(t.Elements))
		for i, e := range t.Elements {
			et, err := a.resolveTypeExpr(e, sc, subst)
			if err != nil {
				return nil, err
			}
			elems[i] = et
		}
		return types.TupleType(elems...), nil
	}
	return nil, errAt(te.Loc(), ErrUnsupported, "unsupported type expression")
}

// foldConstInt evaluates expr, which must reduce to a compile-time
// integer constant: array sizes, indices and slice bounds are never
// runtime-variable, since a fixed-shape bytecode stream has no way to
// represent a variable array length.
func (a *Analyzer) foldConstInt(expr ast.Expression, sc *scope.Scope, subst map[string]*types.Type) (int64, *Error) {
	v, err := a.analyzeExpr(expr, sc, nil, nil)
	if err != nil {
		return 0, err
	}
	ce, ok := v.(*ConstExpr)
	if !ok {
		return 0, errAt(expr.Loc(), ErrNotConstant, "expected a compile-time-constant integer")
	}
	return ce.Value.Int64(), nil
}

func parseWidth(digits string) (int, error) {
	n := 0
	for _, c := range digits {
		n = n*10 + int(c-'0')
	}
	if n < 1 || n > types.MaxWidth {
		return 0, &foldError{"integer bit widths must be between 1 and " + strconv.Itoa(types.MaxWidth)}
	}
	return n, nil
}

// parseIntLiteralText parses an IntegerLiteral's cleaned text
// (decimal or "0x..." hex) into a big.Int.
func parseIntLiteralText(text string) (*big.Int, bool) {
	base := 10
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		text = text[2:]
		base = 16
	}
	return new(big.Int).SetString(text, base)
}

// analyzeBlock analyzes every statement of block, producing the typed
// Block IR. The block's value is its final statement's expression when
// that statement is an *unterminated* ExpressionStatement; a trailing
// `;` makes it an ordinary discarded statement.
func (a *Analyzer) analyzeBlock(block *ast.BlockStatement, sc *scope.Scope, fc *funcContext) *Block {
	b := &Block{Type: types.UnitType()}
	for i, stmt := range block.Statements {
		last := i == len(block.Statements)-1
		if last {
			if es, ok := stmt.(*ast.ExpressionStatement); ok && es.Expression != nil && !es.Terminated {
				var expected *types.Type
				if fc != nil && block == fc.decl.Body {
					expected = fc.irFn.ReturnType
				}
				val, err := a.analyzeExpr(es.Expression, sc, fc, expected)
				if err != nil {
					a.errors = append(a.errors, err)
					continue
				}
				b.Value = val
				b.Type = val.ExprType()
				continue
			}
		}
		if s := a.analyzeStatement(stmt, sc, fc); s != nil {
			b.Stmts = append(b.Stmts, s)
		}
	}
	return b
}

func (a *Analyzer) analyzeStatement(stmt ast.Statement, sc *scope.Scope, fc *funcContext) Stmt {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		var declared *types.Type
		if s.Type != nil {
			dt, err := a.resolveTypeExpr(s.Type, sc, fcSubst(fc))
			if err != nil {
				a.errors = append(a.errors, err)
			} else {
				declared = dt
			}
		}
		val, err := a.analyzeExpr(s.Value, sc, fc, declared)
		if err != nil {
			a.errors = append(a.errors, err)
			return nil
		}
		if declared == nil {
			declared = val.ExprType()
		} else if !declared.Equal(val.ExprType()) {
			a.errorf(s.Loc(), ErrTypeMismatch, "let %q declared as %s but initialized with %s", s.Name, declared, val.ExprType())
		}
		addr := a.allocAddr(wordSize(declared))
		item := &scope.Item{Kind: scope.Variable, Name: s.Name, ID: scope.NextID(), Type: declared, Mutable: s.Mutable, Location: s.Loc()}
		if derr := sc.Define(item); derr != nil {
			a.errorf(s.Loc(), ErrAlreadyDeclared, "%s", derr.Error())
			return nil
		}
		a.varAddrs[item.ID] = addr
		return &LetStmt{Name: s.Name, Addr: addr, Type: declared, Value: val}

	case *ast.LocalConstStatement:
		a.analyzeLocalConst(s.Const, sc)
		return nil

	case *ast.ForStatement:
		return a.analyzeFor(s, sc, fc)

	case *ast.MatchStatement:
		return a.analyzeMatch(s, sc, fc)

	case *ast.ReturnStatement:
		var val Expr
		got := types.UnitType()
		if s.ReturnValue != nil {
			v, err := a.analyzeExpr(s.ReturnValue, sc, fc, funcReturnType(fc))
			if err != nil {
				a.errors = append(a.errors, err)
				return nil
			}
			val = v
			got = v.ExprType()
		}
		if want := funcReturnType(fc); want != nil && !want.Equal(got) {
			a.errorf(s.Loc(), ErrTypeMismatch, "return yields %s but the function returns %s", got, want)
		}
		return &ReturnStmt{Value: val}

	case *ast.ExpressionStatement:
		if s.Expression == nil {
			return nil
		}
		val, err := a.analyzeExpr(s.Expression, sc, fc, nil)
		if err != nil {
			a.errors = append(a.errors, err)
			return nil
		}
		return &ExprStmt{Expr: val}

	case *ast.LocalImplStatement:
		a.analyzeImpl(s.Impl)
		return nil

	case *ast.LocalFnStatement:
		a.registerFunction(s.Fn, sc)
		return nil
	}
	a.errorf(stmt.Loc(), ErrUnsupported, "unsupported statement")
	return nil
}

func fcSubst(fc *funcContext) map[string]*types.Type {
	if fc == nil {
		return nil
	}
	return fc.subst
}

func funcReturnType(fc *funcContext) *types.Type {
	if fc == nil {
		return nil
	}
	return fc.irFn.ReturnType
}

// analyzeLocalConst folds a function-body-local `const` and defines
// it in sc without registering it at program scope — only
// module-level consts are witnessed in Program.Consts.
func (a *Analyzer) analyzeLocalConst(item *ast.ConstItem, sc *scope.Scope) {
	if !a.checkReserved(item.Name, item.Loc()) {
		return
	}
	declared, err := a.resolveTypeExpr(item.Type, sc, nil)
	if err != nil {
		a.errors = append(a.errors, err)
		return
	}
	value, verr := a.analyzeExpr(item.Value, sc, nil, declared)
	if verr != nil {
		a.errors = append(a.errors, verr)
		return
	}
	if !declared.Equal(value.ExprType()) {
		a.errorf(item.Loc(), ErrTypeMismatch, "const %q declared as %s but initialized with %s", item.Name, declared, value.ExprType())
		return
	}
	if !isConstant(value) {
		a.errorf(item.Loc(), ErrNotConstant, "const %q's initializer is not a compile-time constant", item.Name)
		return
	}
	scopeItem := &scope.Item{Kind: scope.Constant, Name: item.Name, ID: scope.NextID(), Type: declared, Location: item.Loc()}
	if derr := sc.Define(scopeItem); derr != nil {
		a.errorf(item.Loc(), ErrAlreadyDeclared, "%s", derr.Error())
		return
	}
	if ce, ok := value.(*ConstExpr); ok {
		a.constValues[scopeItem.ID] = ce.Value
		return
	}
	a.constExprs[scopeItem.ID] = value
}

// analyzeFor unrolls `for i in start..end { body }` at compile time:
// both bounds must fold to constants, since a fixed-shape bytecode
// stream has no runtime-variable trip count. Each iteration
// re-analyzes body in its own child scope with the iterator bound to
// that iteration's concrete value.
func (a *Analyzer) analyzeFor(s *ast.ForStatement, sc *scope.Scope, fc *funcContext) Stmt {
	start, serr := a.foldConstInt(s.RangeStart, sc, fcSubst(fc))
	if serr != nil {
		a.errors = append(a.errors, serr)
		return nil
	}
	end, eerr := a.foldConstInt(s.RangeEnd, sc, fcSubst(fc))
	if eerr != nil {
		a.errors = append(a.errors, eerr)
		return nil
	}
	if end < start {
		end = start // an empty range iterates zero times
	}
	iterAddr := a.allocAddr(1)
	bodies := make([]*Block, 0, end-start)
	for i := start; i < end; i++ {
		iterScope := scope.New(sc)
		item := &scope.Item{Kind: scope.Constant, Name: s.Iterator, ID: scope.NextID(), Type: types.IntType(64), Location: s.Loc()}
		_ = iterScope.Define(item)
		a.constValues[item.ID] = big.NewInt(i)
		bodies = append(bodies, a.analyzeBlock(s.Body, iterScope, fc))
	}
	return &ForStmt{IterAddr: iterAddr, Start: start, End: end, Bodies: bodies}
}

// analyzeMatch lowers a `match` statement into a cascading IfExpr
// chain wrapped in an ExprStmt: the syntax tree keeps match as its
// own node, but the VM has no match opcode, only If/Else/EndIf.
func (a *Analyzer) analyzeMatch(s *ast.MatchStatement, sc *scope.Scope, fc *funcContext) Stmt {
	scrutinee, err := a.analyzeExpr(s.Scrutinee, sc, fc, nil)
	if err != nil {
		a.errors = append(a.errors, err)
		return nil
	}
	expr := a.buildMatchChain(scrutinee, s.Arms, sc, fc)
	if expr == nil {
		return nil
	}
	return &ExprStmt{Expr: expr}
}

func (a *Analyzer) buildMatchChain(scrutinee Expr, arms []ast.MatchArm, sc *scope.Scope, fc *funcContext) Expr {
	if len(arms) == 0 {
		return &ConstExpr{Type: types.UnitType(), Value: big.NewInt(0)}
	}
	arm := arms[0]
	rest := arms[1:]

	armScope := sc
	if bp, ok := arm.Pattern.(*ast.BindingPattern); ok {
		armScope = scope.New(sc)
		item := &scope.Item{Kind: scope.Constant, Name: bp.Name, ID: scope.NextID(), Type: scrutinee.ExprType(), Location: bp.Loc()}
		_ = armScope.Define(item)
		if ce, ok := scrutinee.(*ConstExpr); ok {
			a.constValues[item.ID] = ce.Value
		}
	}

	body, err := a.analyzeExpr(arm.Body, armScope, fc, nil)
	if err != nil {
		a.errors = append(a.errors, err)
		return nil
	}

	switch arm.Pattern.(type) {
	case *ast.WildcardPattern, *ast.BindingPattern:
		// Unconditional: every remaining arm is unreachable, matching
		// `match`'s "first arm wins" semantics.
		return body
	}

	lit, ok := arm.Pattern.(*ast.LiteralPattern)
	if !ok {
		a.errorf(arm.Pattern.Loc(), ErrUnsupported, "unsupported match pattern")
		return body
	}
	litVal, lerr := a.analyzeExpr(lit.Value, sc, fc, scrutinee.ExprType())
	if lerr != nil {
		a.errors = append(a.errors, lerr)
		return body
	}
	cond := &BinaryExpr{Op: "==", Left: scrutinee, Right: litVal, Type: types.BoolType()}
	elseExpr := a.buildMatchChain(scrutinee, rest, sc, fc)
	thenBlock := &Block{Value: body, Type: body.ExprType()}
	var elseBlock *Block
	if elseExpr != nil {
		elseBlock = &Block{Value: elseExpr, Type: elseExpr.ExprType()}
	}
	resultType := body.ExprType()
	return &IfExpr{Cond: cond, Then: thenBlock, Else: elseBlock, Type: resultType}
}

// analyzeExpr is the core typed-IR builder: it walks one expression
// node, assigns it a type, folds it to a ConstExpr when every operand
// is itself constant, and reports a semantic Error through the
// returned *Error rather than panicking. expected carries the
// context's target type (nil when none is known) so integer literals
// and generic literal-typed composites can be resolved without an
// explicit suffix.
func (a *Analyzer) analyzeExpr(expr ast.Expression, sc *scope.Scope, fc *funcContext, expected *types.Type) (Expr, *Error) {
	switch e := expr.(type) {
	case *ast.Identifier:
		return a.analyzeIdentifier(e, sc)

	case *ast.IntegerLiteral:
		v, ok := parseIntLiteralText(e.Text)
		if !ok {
			return nil, errAt(e.Loc(), ErrUnsupported, "invalid integer literal %q", e.Text)
		}
		t := expected
		if t == nil || !t.IsNumeric() {
			// No contextual type: default to u32, widening to u248 and
			// then field for literals past each range, so a large
			// literal can still be written and cast.
			t = types.UintType(32)
			if !t.InRange(v) {
				t = types.UintType(types.MaxWidth)
			}
			if !t.InRange(v) {
				t = types.FieldType()
			}
		}
		if err := rangeCheck(t, v); err != nil {
			return nil, errAt(e.Loc(), ErrConstOverflow, "%s", err.Error())
		}
		return &ConstExpr{Type: t, Value: v}, nil

	case *ast.BooleanLiteral:
		return &ConstExpr{Type: types.BoolType(), Value: boolToBig(e.Value)}, nil

	case *ast.StringLiteral:
		return nil, errAt(e.Loc(), ErrUnsupported, "string values are not representable in a proved computation")

	case *ast.PrefixExpression:
		return a.analyzePrefix(e, sc, fc, expected)

	case *ast.InfixExpression:
		return a.analyzeInfix(e, sc, fc, expected)

	case *ast.AssignExpression:
		return a.analyzeAssign(e, sc, fc)

	case *ast.CastExpression:
		return a.analyzeCast(e, sc, fc)

	case *ast.IndexExpression:
		return a.analyzeIndex(e, sc, fc, expected)

	case *ast.SliceExpression:
		return a.analyzeSlice(e, sc, fc, expected)

	case *ast.TupleIndexExpression:
		return a.analyzeTupleIndex(e, sc, fc)

	case *ast.FieldAccessExpression:
		return a.analyzeFieldAccess(e, sc, fc)

	case *ast.PathExpression:
		return a.analyzePath(e, sc)

	case *ast.CallExpression:
		return a.analyzeCall(e, sc, fc)

	case *ast.IfExpression:
		return a.analyzeIf(e, sc, fc, expected)

	case *ast.ArrayLiteral:
		return a.analyzeArray(e, sc, fc, expected)

	case *ast.TupleLiteral:
		return a.analyzeTuple(e, sc, fc, expected)

	case *ast.StructLiteral:
		return a.analyzeStructLit(e, sc, fc)

	case *ast.BlockStatement:
		b := a.analyzeBlock(e, scope.New(sc), fc)
		return &BlockExpr{Block: b}, nil
	}
	return nil, errAt(expr.Loc(), ErrUnsupported, "unsupported expression")
}

func (a *Analyzer) analyzeIdentifier(e *ast.Identifier, sc *scope.Scope) (Expr, *Error) {
	item, ok := sc.Lookup(e.Value)
	if !ok {
		return nil, errAt(e.Loc(), ErrUndeclared, "undeclared name %q", e.Value)
	}
	switch item.Kind {
	case scope.Variable:
		addr, ok := a.varAddrs[item.ID]
		if !ok {
			return nil, errAt(e.Loc(), ErrUnsupported, "%q has no storage address", e.Value)
		}
		return &VarExpr{Name: e.Value, Addr: addr, Type: item.Type}, nil
	case scope.Constant, scope.Variant:
		if v, ok := a.constValues[item.ID]; ok {
			return &ConstExpr{Type: item.Type, Value: v}, nil
		}
		if v, ok := a.constExprs[item.ID]; ok {
			return v, nil
		}
		return nil, errAt(e.Loc(), ErrUnsupported, "%q must be called, not used as a value", e.Value)
	}
	return nil, errAt(e.Loc(), ErrUnsupported, "%q cannot be used as a value", e.Value)
}

func (a *Analyzer) analyzePrefix(e *ast.PrefixExpression, sc *scope.Scope, fc *funcContext, expected *types.Type) (Expr, *Error) {
	right, err := a.analyzeExpr(e.Right, sc, fc, expected)
	if err != nil {
		return nil, err
	}
	rt := right.ExprType()
	if e.Operator == "!" && rt.Kind != types.Bool {
		return nil, errAt(e.Loc(), ErrTypeMismatch, "! requires a bool operand, found %s", rt)
	}
	if e.Operator == "-" && !rt.IsNumeric() {
		return nil, errAt(e.Loc(), ErrTypeMismatch, "unary - requires a numeric operand, found %s", rt)
	}
	if ce, ok := right.(*ConstExpr); ok {
		v, ferr := foldUnary(e.Operator, ce.Value, rt)
		if ferr != nil {
			return nil, errAt(e.Loc(), ErrConstOverflow, "%s", ferr.Error())
		}
		t := rt
		if e.Operator == "!" {
			t = types.BoolType()
		}
		return &ConstExpr{Type: t, Value: v}, nil
	}
	t := rt
	if e.Operator == "!" {
		t = types.BoolType()
	}
	return &UnaryExpr{Op: e.Operator, Operand: right, Type: t}, nil
}

func (a *Analyzer) analyzeInfix(e *ast.InfixExpression, sc *scope.Scope, fc *funcContext, expected *types.Type) (Expr, *Error) {
	left, err := a.analyzeExpr(e.Left, sc, fc, expected)
	if err != nil {
		return nil, err
	}
	lt := left.ExprType()
	rightExpected := lt
	if isLogical(e.Operator) {
		rightExpected = types.BoolType()
	}
	right, rerr := a.analyzeExpr(e.Right, sc, fc, rightExpected)
	if rerr != nil {
		return nil, rerr
	}
	rt := right.ExprType()

	switch {
	case isLogical(e.Operator):
		if lt.Kind != types.Bool || rt.Kind != types.Bool {
			return nil, errAt(e.Loc(), ErrTypeMismatch, "%s requires bool operands", e.Operator)
		}
	default:
		if !lt.Equal(rt) {
			return nil, errAt(e.Loc(), ErrTypeMismatch, "operand types differ: %s vs %s", lt, rt)
		}
		if !isComparison(e.Operator) && !lt.IsNumeric() {
			return nil, errAt(e.Loc(), ErrTypeMismatch, "%s requires numeric operands, found %s", e.Operator, lt)
		}
	}

	lc, lok := left.(*ConstExpr)
	rc, rok := right.(*ConstExpr)
	if lok && rok {
		v, t, ferr := foldBinary(e.Operator, lc.Value, rc.Value, lt)
		if ferr != nil {
			return nil, errAt(e.Loc(), ErrConstOverflow, "%s", ferr.Error())
		}
		return &ConstExpr{Type: t, Value: v}, nil
	}

	resultType := lt
	if isComparison(e.Operator) || isLogical(e.Operator) {
		resultType = types.BoolType()
	}
	return &BinaryExpr{Op: e.Operator, Left: left, Right: right, Type: resultType}, nil
}

func isComparison(op string) bool {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		return true
	}
	return false
}

func isLogical(op string) bool { return op == "&&" || op == "||" }

func (a *Analyzer) analyzeAssign(e *ast.AssignExpression, sc *scope.Scope, fc *funcContext) (Expr, *Error) {
	ident, ok := e.Left.(*ast.Identifier)
	if !ok {
		return nil, errAt(e.Loc(), ErrInvalidAssignTarget, "assignment target must be a bound local name")
	}
	item, ok := sc.Lookup(ident.Value)
	if !ok {
		return nil, errAt(e.Loc(), ErrUndeclared, "undeclared name %q", ident.Value)
	}
	if item.Kind != scope.Variable || !item.Mutable {
		return nil, errAt(e.Loc(), ErrInvalidAssignTarget, "%q is not a mutable local", ident.Value)
	}
	val, err := a.analyzeExpr(e.Value, sc, fc, item.Type)
	if err != nil {
		return nil, err
	}
	if !item.Type.Equal(val.ExprType()) {
		return nil, errAt(e.Loc(), ErrTypeMismatch, "cannot assign %s to %q of type %s", val.ExprType(), ident.Value, item.Type)
	}
	return &AssignExpr{Addr: a.varAddrs[item.ID], Size: wordSize(item.Type), Value: val, Type: types.UnitType()}, nil
}

func (a *Analyzer) analyzeCast(e *ast.CastExpression, sc *scope.Scope, fc *funcContext) (Expr, *Error) {
	left, err := a.analyzeExpr(e.Left, sc, fc, nil)
	if err != nil {
		return nil, err
	}
	to, terr := a.resolveTypeExpr(e.Type, sc, fcSubst(fc))
	if terr != nil {
		return nil, terr
	}
	from := left.ExprType()
	if !from.IsNumeric() || !to.IsNumeric() {
		return nil, errAt(e.Loc(), ErrInvalidCast, "cast requires numeric types, found %s as %s", from, to)
	}
	// field -> integer loses the value's range and is rejected; the
	// embedding only goes the other way.
	if from.Kind == types.Field && to.Kind != types.Field {
		return nil, errAt(e.Loc(), ErrInvalidCast, "cannot cast field to %s", to)
	}
	if ce, ok := left.(*ConstExpr); ok {
		return &ConstExpr{Type: to, Value: foldCast(ce.Value, to)}, nil
	}
	return &CastExpr{Operand: left, From: from, To: to}, nil
}

// analyzeIndex selects one element of an array. The context's expected
// type, when known, is the element type — threaded to the base as an
// array expectation so a literal base's elements pick it up.
func (a *Analyzer) analyzeIndex(e *ast.IndexExpression, sc *scope.Scope, fc *funcContext, expected *types.Type) (Expr, *Error) {
	var baseExpected *types.Type
	if expected != nil {
		baseExpected = types.ArrayType(expected, -1)
	}
	base, err := a.analyzeExpr(e.Left, sc, fc, baseExpected)
	if err != nil {
		return nil, err
	}
	bt := base.ExprType()
	if bt.Kind != types.Array {
		return nil, errAt(e.Loc(), ErrTypeMismatch, "indexing requires an array, found %s", bt)
	}
	idx, ierr := a.foldConstInt(e.Index, sc, fcSubst(fc))
	if ierr != nil {
		return nil, ierr
	}
	if idx < 0 || idx >= bt.Length {
		return nil, errAt(e.Loc(), ErrIndexOutOfRange, "index %d out of range for array of length %d", idx, bt.Length)
	}
	// Indexing a literal array with a constant index folds to the
	// selected element.
	if ae, ok := base.(*ArrayExpr); ok {
		if ce, ok := ae.Elements[idx].(*ConstExpr); ok {
			return ce, nil
		}
	}
	return &IndexExpr{Base: base, Index: idx, Type: bt.Element}, nil
}

func (a *Analyzer) analyzeSlice(e *ast.SliceExpression, sc *scope.Scope, fc *funcContext, expected *types.Type) (Expr, *Error) {
	var baseExpected *types.Type
	if expected != nil && expected.Kind == types.Array {
		baseExpected = types.ArrayType(expected.Element, -1)
	}
	base, err := a.analyzeExpr(e.Left, sc, fc, baseExpected)
	if err != nil {
		return nil, err
	}
	bt := base.ExprType()
	if bt.Kind != types.Array {
		return nil, errAt(e.Loc(), ErrTypeMismatch, "slicing requires an array, found %s", bt)
	}
	low, lerr := a.foldConstInt(e.Low, sc, fcSubst(fc))
	if lerr != nil {
		return nil, lerr
	}
	high, herr := a.foldConstInt(e.High, sc, fcSubst(fc))
	if herr != nil {
		return nil, herr
	}
	if low < 0 || high > bt.Length || low > high {
		return nil, errAt(e.Loc(), ErrSliceOutOfRange, "slice [%d..%d] out of range for array of length %d", low, high, bt.Length)
	}
	result := types.ArrayType(bt.Element, high-low)
	// A constant-bounds slice of a literal array folds to the selected
	// window, the same way constant indexing folds to its element.
	if ae, ok := base.(*ArrayExpr); ok {
		return &ArrayExpr{Elements: ae.Elements[low:high], Type: result}, nil
	}
	return &SliceExpr{Base: base, Low: low, High: high, ElemType: bt.Element, Type: result}, nil
}

func (a *Analyzer) analyzeTupleIndex(e *ast.TupleIndexExpression, sc *scope.Scope, fc *funcContext) (Expr, *Error) {
	base, err := a.analyzeExpr(e.Left, sc, fc, nil)
	if err != nil {
		return nil, err
	}
	bv, ok := base.(*VarExpr)
	if !ok || bv.Type.Kind != types.Tuple {
		return nil, errAt(e.Loc(), ErrTypeMismatch, "tuple-index access requires a stored tuple value")
	}
	if e.Index < 0 || e.Index >= len(bv.Type.Elems) {
		return nil, errAt(e.Loc(), ErrIndexOutOfRange, "tuple has no element %d", e.Index)
	}
	offset := 0
	for i := 0; i < e.Index; i++ {
		offset += wordSize(bv.Type.Elems[i])
	}
	return &VarExpr{Name: bv.Name, Addr: bv.Addr + offset, Type: bv.Type.Elems[e.Index]}, nil
}

func (a *Analyzer) analyzeFieldAccess(e *ast.FieldAccessExpression, sc *scope.Scope, fc *funcContext) (Expr, *Error) {
	base, err := a.analyzeExpr(e.Left, sc, fc, nil)
	if err != nil {
		return nil, err
	}
	bv, ok := base.(*VarExpr)
	if !ok || (bv.Type.Kind != types.Struct && bv.Type.Kind != types.Contract) {
		return nil, errAt(e.Loc(), ErrTypeMismatch, "field access requires a stored struct or contract value")
	}
	offset := 0
	for _, f := range bv.Type.Fields {
		if f.Name == e.Field {
			return &VarExpr{Name: bv.Name + "." + e.Field, Addr: bv.Addr + offset, Type: f.Type}, nil
		}
		offset += wordSize(f.Type)
	}
	return nil, errAt(e.Loc(), ErrUndeclared, "%s has no field %q", bv.Type, e.Field)
}

func (a *Analyzer) analyzePath(e *ast.PathExpression, sc *scope.Scope) (Expr, *Error) {
	item, err := sc.LookupPath(e.Segments)
	if err != nil {
		return nil, errAt(e.Loc(), ErrUndeclared, "%s", err.Error())
	}
	if v, ok := a.constValues[item.ID]; ok {
		return &ConstExpr{Type: item.Type, Value: v}, nil
	}
	if v, ok := a.constExprs[item.ID]; ok {
		return v, nil
	}
	return nil, errAt(e.Loc(), ErrUnsupported, "%q cannot be used as a value here", e.String())
}

func (a *Analyzer) analyzeCall(c *ast.CallExpression, sc *scope.Scope, fc *funcContext) (Expr, *Error) {
	var item *scope.Item
	switch target := c.Function.(type) {
	case *ast.Identifier:
		it, ok := sc.Lookup(target.Value)
		if !ok {
			return nil, errAt(c.Loc(), ErrUndeclared, "undeclared function %q", target.Value)
		}
		item = it
	case *ast.PathExpression:
		it, lerr := sc.LookupPath(target.Segments)
		if lerr != nil {
			return nil, errAt(c.Loc(), ErrUndeclared, "%s", lerr.Error())
		}
		item = it
	default:
		return nil, errAt(c.Loc(), ErrUnsupported, "call target must be a named function")
	}

	entry, ok := a.funcDecls[item.ID]
	if !ok {
		return nil, errAt(c.Loc(), ErrUnsupported, "%q is not callable", item.Name)
	}
	if len(c.Arguments) != len(entry.Decl.Parameters) {
		return nil, errAt(c.Loc(), ErrArityMismatch, "%q expects %d argument(s), got %d", item.Name, len(entry.Decl.Parameters), len(c.Arguments))
	}

	args := make([]Expr, len(c.Arguments))
	argTypes := make([]*types.Type, len(c.Arguments))
	for i, argExpr := range c.Arguments {
		var expected *types.Type
		if len(entry.Decl.Generics) == 0 {
			if pt, perr := a.resolveTypeExpr(entry.Decl.Parameters[i].Type, entry.Scope, nil); perr == nil {
				expected = pt
			}
		}
		ae, aerr := a.analyzeExpr(argExpr, sc, fc, expected)
		if aerr != nil {
			return nil, aerr
		}
		args[i] = ae
		argTypes[i] = ae.ExprType()
	}

	var key []*types.Type
	if len(entry.Decl.Generics) > 0 {
		key = argTypes
	}
	callee := a.instantiate(entry.Decl, entry.Scope, key)
	if len(callee.Params) == len(argTypes) {
		for i, p := range callee.Params {
			if !p.Type.Equal(argTypes[i]) {
				return nil, errAt(c.Loc(), ErrTypeMismatch, "argument %d to %q: expected %s, found %s", i, item.Name, p.Type, argTypes[i])
			}
		}
	}
	return &CallExpr{Callee: callee, Args: args, Type: callee.ReturnType}, nil
}

func (a *Analyzer) analyzeIf(e *ast.IfExpression, sc *scope.Scope, fc *funcContext, expected *types.Type) (Expr, *Error) {
	cond, err := a.analyzeExpr(e.Condition, sc, fc, types.BoolType())
	if err != nil {
		return nil, err
	}
	if cond.ExprType().Kind != types.Bool {
		return nil, errAt(e.Loc(), ErrTypeMismatch, "if condition must be bool, found %s", cond.ExprType())
	}
	then := a.analyzeBlock(e.Consequence, scope.New(sc), fc)
	if e.Alternative == nil {
		if then.Type.Kind != types.Unit {
			return nil, errAt(e.Loc(), ErrTypeMismatch, "if without else must yield (), found %s", then.Type)
		}
		return &IfExpr{Cond: cond, Then: then, Type: types.UnitType()}, nil
	}
	els := a.analyzeBlock(e.Alternative, scope.New(sc), fc)
	if !then.Type.Equal(els.Type) {
		return nil, errAt(e.Loc(), ErrTypeMismatch, "if/else branches disagree: %s vs %s", then.Type, els.Type)
	}
	return &IfExpr{Cond: cond, Then: then, Else: els, Type: then.Type}, nil
}

func (a *Analyzer) analyzeArray(e *ast.ArrayLiteral, sc *scope.Scope, fc *funcContext, expected *types.Type) (Expr, *Error) {
	var elemExpected *types.Type
	if expected != nil && expected.Kind == types.Array {
		elemExpected = expected.Element
	}
	elements := make([]Expr, len(e.Elements))
	var elemType *types.Type
	for i, el := range e.Elements {
		v, err := a.analyzeExpr(el, sc, fc, elemExpected)
		if err != nil {
			return nil, err
		}
		if elemExpected != nil && !elemExpected.Equal(v.ExprType()) {
			return nil, errAt(el.Loc(), ErrPushingInvalidType, "expected %q, found %q", elemExpected.String(), v.ExprType().String())
		}
		if elemType == nil {
			elemType = v.ExprType()
			if elemExpected == nil {
				elemExpected = elemType
			}
		} else if !elemType.Equal(v.ExprType()) {
			return nil, errAt(el.Loc(), ErrPushingInvalidType, "expected %q, found %q", elemType.String(), v.ExprType().String())
		}
		elements[i] = v
	}
	if elemType == nil {
		elemType = types.UnitType()
	}
	return &ArrayExpr{Elements: elements, Type: types.ArrayType(elemType, int64(len(elements)))}, nil
}

func (a *Analyzer) analyzeTuple(e *ast.TupleLiteral, sc *scope.Scope, fc *funcContext, expected *types.Type) (Expr, *Error) {
	elements := make([]Expr, len(e.Elements))
	elemTypes := make([]*types.Type, len(e.Elements))
	for i, el := range e.Elements {
		var exp *types.Type
		if expected != nil && expected.Kind == types.Tuple && i < len(expected.Elems) {
			exp = expected.Elems[i]
		}
		v, err := a.analyzeExpr(el, sc, fc, exp)
		if err != nil {
			return nil, err
		}
		elements[i] = v
		elemTypes[i] = v.ExprType()
	}
	return &TupleExpr{Elements: elements, Type: types.TupleType(elemTypes...)}, nil
}

func (a *Analyzer) analyzeStructLit(e *ast.StructLiteral, sc *scope.Scope, fc *funcContext) (Expr, *Error) {
	item, ok := sc.Lookup(e.TypeName)
	if !ok || item.Kind != scope.Type || (item.Type.Kind != types.Struct && item.Type.Kind != types.Contract) {
		return nil, errAt(e.Loc(), ErrUndeclared, "%q is not a declared struct or contract", e.TypeName)
	}
	byName := make(map[string]ast.Expression, len(e.Fields))
	for _, f := range e.Fields {
		byName[f.Name] = f.Value
	}
	elements := make([]Expr, len(item.Type.Fields))
	for i, f := range item.Type.Fields {
		valExpr, ok := byName[f.Name]
		if !ok {
			return nil, errAt(e.Loc(), ErrArityMismatch, "%q is missing field %q", e.TypeName, f.Name)
		}
		v, err := a.analyzeExpr(valExpr, sc, fc, f.Type)
		if err != nil {
			return nil, err
		}
		if !f.Type.Equal(v.ExprType()) {
			return nil, errAt(valExpr.Loc(), ErrTypeMismatch, "field %q: expected %s, found %s", f.Name, f.Type, v.ExprType())
		}
		elements[i] = v
	}
	// A struct/contract literal is laid out as its fields'
	// concatenated words, in declared order — the same flattened shape
	// a TupleExpr already produces, so it is reused here tagged with
	// the struct's own named Type instead of minting an unused composite.
	return &TupleExpr{Elements: elements, Type: item.Type}, nil
}
