package semantic

import (
	"math/big"
	"strings"

	"github.com/dr8co/zinc/ast"
	"github.com/dr8co/zinc/scope"
	"github.com/dr8co/zinc/token"
	"github.com/dr8co/zinc/types"
)

// Analyzer drives one full pass over a syntax tree, producing the
// typed IR described in ir.go. A fresh Analyzer is created per
// compile; its root scope is seeded with the built-in type ids. Item
// ids come from the process-wide scope.NextID counter, which New does
// not reset, so a compile's ids start at the built-in count only after
// scope.ResetIndex.
type Analyzer struct {
	root   *scope.Scope
	errors []*Error

	program *Program

	funcDecls map[int]*funcDeclEntry // scope item id -> declaration + the scope it was declared in
	instances map[string]*Function   // monomorphisation cache, keyed by "name(argTypeTuple)"

	constValues map[int]*big.Int // scope item id -> folded constant value, for Constant items
	constExprs  map[int]Expr     // scope item id -> folded composite value (arrays, tuples)
	varAddrs    map[int]int      // scope item id -> data-stack address, for Variable items

	frameSize int // current function's monotone address allocator
}

// New creates an Analyzer ready to analyze one compilation unit.
func New() *Analyzer {
	return &Analyzer{
		root:        scope.NewRoot(),
		funcDecls:   make(map[int]*funcDeclEntry),
		instances:   make(map[string]*Function),
		constValues: make(map[int]*big.Int),
		constExprs:  make(map[int]Expr),
		varAddrs:    make(map[int]int),
		program:     &Program{},
	}
}

// Errors returns every error accumulated so far. Analysis does not
// stop at the first semantic error the way the parser does — it keeps
// walking sibling items so a single compile reports as much as it can
// — but the emitter is never invoked unless this slice is empty.
func (a *Analyzer) Errors() []*Error { return a.errors }

func (a *Analyzer) errorf(loc token.Location, kind, format string, args ...interface{}) {
	a.errors = append(a.errors, errAt(loc, kind, format, args...))
}

// Analyze runs the full semantic pass over prog and returns the typed
// IR. Errors accumulate in a.Errors(); callers must check Errors()
// before trusting the returned Program.
func (a *Analyzer) Analyze(prog *ast.Program) *Program {
	// Pass 1: register every struct/enum/contract/type-alias name so
	// later field/parameter type references resolve regardless of
	// declaration order within the same pass.
	for _, item := range prog.Items {
		a.registerType(item, a.root)
	}
	// Pass 2: register function signatures and fold module-level
	// consts, in source order (a const may reference an
	// earlier-declared const).
	var mainDecl *ast.FunctionItem
	for _, item := range prog.Items {
		switch it := item.(type) {
		case *ast.FunctionItem:
			a.registerFunction(it, a.root)
			if it.Name == "main" {
				mainDecl = it
			}
		case *ast.ConstItem:
			a.analyzeModuleConst(it, a.root)
		case *ast.UseItem:
			a.analyzeUse(it, a.root)
		case *ast.ImplItem:
			a.analyzeImpl(it)
		case *ast.ModItem:
			a.analyzeMod(it, a.root)
		case *ast.ContractItem:
			a.analyzeContract(it)
		}
	}

	// Pass 3: instantiate main first (so it lands at Functions[0] for
	// the VM's entry convention), then every other non-generic
	// top-level function reachable or not.
	if mainDecl != nil {
		a.instantiate(mainDecl, a.root, nil)
	}
	for _, item := range prog.Items {
		fn, ok := item.(*ast.FunctionItem)
		if !ok || fn == mainDecl || len(fn.Generics) > 0 {
			continue
		}
		a.instantiate(fn, a.root, nil)
	}
	return a.program
}

// registerType pre-declares struct/enum/contract/type-alias names.
func (a *Analyzer) registerType(item ast.Item, sc *scope.Scope) {
	switch it := item.(type) {
	case *ast.StructItem:
		fields := make([]types.StructField, len(it.Fields))
		for i, f := range it.Fields {
			// Field types are resolved in a second sweep below, once
			// every struct/enum name exists; the nil Type left here is
			// filled in by resolveFieldTypes.
			fields[i] = types.StructField{Name: f.Name}
		}
		t := types.StructType(it.Name, fields)
		a.defineType(it.Name, t, it.Loc(), sc)
	case *ast.EnumItem:
		t := types.EnumType(it.Name, it.Variants)
		a.defineType(it.Name, t, it.Loc(), sc)
		if enumItem, ok := sc.LookupLocal(it.Name); ok && enumItem.Inner != nil {
			for i, v := range it.Variants {
				vi := &scope.Item{Kind: scope.Variant, Name: v, ID: scope.NextID(), Type: t, Location: it.Loc()}
				_ = enumItem.Inner.Define(vi)
				a.constValues[vi.ID] = big.NewInt(int64(i))
			}
		}
	case *ast.ContractItem:
		fields := make([]types.StructField, len(it.Fields))
		for i, f := range it.Fields {
			fields[i] = types.StructField{Name: f.Name}
		}
		t := types.ContractType(it.Name, fields)
		a.defineType(it.Name, t, it.Loc(), sc)
	case *ast.TypeItem:
		resolved, err := a.resolveTypeExpr(it.Type, sc, nil)
		if err != nil {
			a.errors = append(a.errors, err)
			return
		}
		// Alias: reuse the existing scope item's id if the target is
		// itself a named declared type; otherwise mint one id for the
		// alias.
		if existing, ok := sc.Lookup(it.Type.String()); ok {
			_ = sc.Define(&scope.Item{Kind: scope.Type, Name: it.Name, ID: existing.ID, Type: resolved, Location: it.Loc(), Inner: existing.Inner})
		} else {
			a.defineType(it.Name, resolved, it.Loc(), sc)
		}
	}

	// Second sweep: now that every struct/enum name is registered,
	// resolve struct field types that reference each other.
	if it, ok := item.(*ast.StructItem); ok {
		a.resolveFieldTypes(it.Name, it.Fields, sc)
	}
	if it, ok := item.(*ast.ContractItem); ok {
		a.resolveFieldTypes(it.Name, it.Fields, sc)
	}
}

func (a *Analyzer) resolveFieldTypes(name string, fields []ast.Field, sc *scope.Scope) {
	declared, ok := sc.LookupLocal(name)
	if !ok || declared.Type == nil {
		return // registration itself already failed and reported
	}
	for i, f := range fields {
		ft, err := a.resolveTypeExpr(f.Type, sc, nil)
		if err != nil {
			a.errors = append(a.errors, err)
			continue
		}
		declared.Type.Fields[i].Type = ft
	}
}

// checkReserved rejects declarations that reuse the `std` root the
// built-in type paths hang off — a user-declared `std` would shadow
// every built-in id.
func (a *Analyzer) checkReserved(name string, loc token.Location) bool {
	if name == "std" {
		a.errorf(loc, ErrReservedIdentifier, "%q is reserved for built-in declarations", name)
		return false
	}
	return true
}

func (a *Analyzer) defineType(name string, t *types.Type, loc token.Location, sc *scope.Scope) {
	if !a.checkReserved(name, loc) {
		return
	}
	item := &scope.Item{Kind: scope.Type, Name: name, ID: scope.NextID(), Type: t, Location: loc, Inner: scope.New(sc)}
	if err := sc.Define(item); err != nil {
		a.errorf(loc, ErrAlreadyDeclared, "%s", err.Error())
	}
}

// registerFunction resolves a function's signature and
// defines it in sc as a Constant item of Fn type — the scope item-kind
// enum has no dedicated Function variant, so a callable
// top-level declaration is modeled the same way a `const` binding to
// a value is: a named, typed, immutable entity.
func (a *Analyzer) registerFunction(fn *ast.FunctionItem, sc *scope.Scope) {
	if !a.checkReserved(fn.Name, fn.Loc()) {
		return
	}
	if len(fn.Generics) > 0 {
		// Generic signatures are resolved per instantiation; only the
		// name needs a scope slot so calls can find the declaration.
		item := &scope.Item{Kind: scope.Constant, Name: fn.Name, ID: scope.NextID(), Location: fn.Loc()}
		if err := sc.Define(item); err != nil {
			a.errorf(fn.Loc(), ErrAlreadyDeclared, "%s", err.Error())
			return
		}
		a.funcDecls[item.ID] = &funcDeclEntry{Decl: fn, Scope: sc}
		return
	}

	params := make([]*types.Type, len(fn.Parameters))
	for i, p := range fn.Parameters {
		pt, err := a.resolveTypeExpr(p.Type, sc, nil)
		if err != nil {
			a.errors = append(a.errors, err)
			pt = types.UnitType()
		}
		params[i] = pt
	}
	ret := types.UnitType()
	if fn.ReturnType != nil {
		rt, err := a.resolveTypeExpr(fn.ReturnType, sc, nil)
		if err != nil {
			a.errors = append(a.errors, err)
		} else {
			ret = rt
		}
	}
	fnType := types.FnType(params, ret)
	item := &scope.Item{Kind: scope.Constant, Name: fn.Name, ID: scope.NextID(), Type: fnType, Location: fn.Loc()}
	if err := sc.Define(item); err != nil {
		a.errorf(fn.Loc(), ErrAlreadyDeclared, "%s", err.Error())
		return
	}
	a.funcDecls[item.ID] = &funcDeclEntry{Decl: fn, Scope: sc}
}

// funcDeclEntry pairs a function's syntax tree with the scope it was
// declared in, so a later call site can resolve its parameter types
// and instantiate it in the right lexical context (module scope, or
// an impl block's associated scope).
type funcDeclEntry struct {
	Decl  *ast.FunctionItem
	Scope *scope.Scope
}

// analyzeModuleConst folds a top-level `const` declaration and
// defines it in sc.
func (a *Analyzer) analyzeModuleConst(item *ast.ConstItem, sc *scope.Scope) {
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
	if err := sc.Define(scopeItem); err != nil {
		a.errorf(item.Loc(), ErrAlreadyDeclared, "%s", err.Error())
		return
	}
	if ce, ok := value.(*ConstExpr); ok {
		a.constValues[scopeItem.ID] = ce.Value
		a.program.Consts = append(a.program.Consts, &Const{Name: item.Name, Type: declared, Value: ce.Value})
		return
	}
	a.constExprs[scopeItem.ID] = value
}

// isConstant reports whether a typed expression is a fully folded
// compile-time value: a scalar constant, or an array/tuple whose
// elements all are.
func isConstant(e Expr) bool {
	switch x := e.(type) {
	case *ConstExpr:
		return true
	case *ArrayExpr:
		for _, el := range x.Elements {
			if !isConstant(el) {
				return false
			}
		}
		return true
	case *TupleExpr:
		for _, el := range x.Elements {
			if !isConstant(el) {
				return false
			}
		}
		return true
	}
	return false
}

// analyzeUse resolves `use path [as alias];` and adds a single
// re-binding in sc under alias (or the path's final segment).
func (a *Analyzer) analyzeUse(item *ast.UseItem, sc *scope.Scope) {
	name := item.Alias
	if name == "" {
		name = item.Path[len(item.Path)-1]
	}
	resolved, err := sc.LookupPath(item.Path)
	if err != nil {
		a.errorf(item.Loc(), ErrUndeclared, "%s", err.Error())
		return
	}
	alias := *resolved
	alias.Name = name
	if err := sc.Define(&alias); err != nil {
		a.errorf(item.Loc(), ErrAlreadyDeclared, "%s", err.Error())
	}
}

// analyzeMod declares `mod name { items... }` as a Module scope entry
// whose inner scope holds the module's own declarations, so qualified
// paths (`name::item`) and `use` bindings resolve through LookupPath.
// Types register
// first so the module's consts and function signatures can reference
// them regardless of order, mirroring the top-level two-pass shape.
func (a *Analyzer) analyzeMod(item *ast.ModItem, sc *scope.Scope) {
	if !a.checkReserved(item.Name, item.Loc()) {
		return
	}
	inner := scope.New(sc)
	modItem := &scope.Item{Kind: scope.Module, Name: item.Name, ID: scope.NextID(), Location: item.Loc(), Inner: inner}
	if err := sc.Define(modItem); err != nil {
		a.errorf(item.Loc(), ErrAlreadyDeclared, "%s", err.Error())
		return
	}
	for _, sub := range item.Items {
		a.registerType(sub, inner)
	}
	for _, sub := range item.Items {
		switch it := sub.(type) {
		case *ast.FunctionItem:
			a.registerFunction(it, inner)
		case *ast.ConstItem:
			a.analyzeModuleConst(it, inner)
		case *ast.UseItem:
			a.analyzeUse(it, inner)
		case *ast.ModItem:
			a.analyzeMod(it, inner)
		}
	}
}

// analyzeContract registers a contract's fields and methods under the
// contract type's own associated scope: `Vault::deposit` resolves
// the same way an impl block's associated items do.
func (a *Analyzer) analyzeContract(item *ast.ContractItem) {
	target, ok := a.root.Lookup(item.Name)
	if !ok {
		return // registerType already reported the failure
	}
	if target.Inner == nil {
		target.Inner = scope.New(a.root)
	}
	for _, f := range item.Fields {
		ft, err := a.resolveTypeExpr(f.Type, a.root, nil)
		if err != nil {
			a.errors = append(a.errors, err)
			continue
		}
		_ = target.Inner.Define(&scope.Item{Kind: scope.Field, Name: f.Name, ID: scope.NextID(), Type: ft, Location: item.Loc()})
	}
	for _, stmt := range item.Statements {
		switch s := stmt.(type) {
		case *ast.LocalFnStatement:
			a.registerFunction(s.Fn, target.Inner)
		case *ast.LocalConstStatement:
			a.analyzeModuleConst(s.Const, target.Inner)
		default:
			a.errorf(stmt.Loc(), ErrUnsupported, "contract bodies hold field, const and fn declarations")
		}
	}
}

// analyzeImpl associates the block's consts and functions with the
// named type's own scope, so `T::name` resolves via LookupPath.
func (a *Analyzer) analyzeImpl(item *ast.ImplItem) {
	target, ok := a.root.Lookup(item.TypeName)
	if !ok {
		a.errorf(item.Loc(), ErrUndeclared, "impl target %q is not a declared type", item.TypeName)
		return
	}
	if target.Inner == nil {
		target.Inner = scope.New(a.root)
	}
	for _, sub := range item.Items {
		switch it := sub.(type) {
		case *ast.FunctionItem:
			a.registerFunction(it, target.Inner)
		case *ast.ConstItem:
			a.analyzeModuleConst(it, target.Inner)
		}
	}
}

// instantiate monomorphises fn against argTypes (nil for a
// non-generic call, meaning "use the declared parameter types
// directly"), returning the cached copy on a repeat instantiation key.
func (a *Analyzer) instantiate(fn *ast.FunctionItem, declScope *scope.Scope, argTypes []*types.Type) *Function {
	key := instantiationKey(fn.Name, argTypes)
	if existing, ok := a.instances[key]; ok {
		return existing
	}

	subst := map[string]*types.Type{}
	for i, g := range fn.Generics {
		if argTypes != nil && i < len(argTypes) {
			subst[g] = argTypes[i]
		}
	}
	// Positional inference: a bare generic-named parameter type picks
	// up the concrete type of the argument at the same position.
	if len(fn.Generics) > 0 && argTypes != nil {
		for i, p := range fn.Parameters {
			if named, ok := p.Type.(*ast.NamedType); ok && len(named.Path) == 1 {
				if _, isGeneric := indexOf(fn.Generics, named.Path[0]); isGeneric && i < len(argTypes) {
					subst[named.Path[0]] = argTypes[i]
				}
			}
		}
	}

	params := make([]Param, len(fn.Parameters))
	frame := 0
	for i, p := range fn.Parameters {
		pt, err := a.resolveTypeExpr(p.Type, declScope, subst)
		if err != nil {
			a.errors = append(a.errors, err)
			pt = types.UnitType()
		}
		params[i] = Param{Name: p.Name, Type: pt, Addr: frame}
		frame += wordSize(pt)
	}
	ret := types.UnitType()
	if fn.ReturnType != nil {
		rt, err := a.resolveTypeExpr(fn.ReturnType, declScope, subst)
		if err != nil {
			a.errors = append(a.errors, err)
		} else {
			ret = rt
		}
	}

	a.checkAttributes(fn.Attributes, fn.Loc())

	genericKey := ""
	if argTypes != nil {
		genericKey = key
	}
	irFn := &Function{Name: fn.Name, GenericKey: genericKey, Params: params, ReturnType: ret, Attributes: fn.Attributes}
	a.instances[key] = irFn // registered before the body is walked, so recursive calls resolve
	a.program.Functions = append(a.program.Functions, irFn)

	bodyScope := scope.New(declScope)
	for _, p := range params {
		item := &scope.Item{Kind: scope.Variable, Name: p.Name, ID: scope.NextID(), Type: p.Type, Location: fn.Loc()}
		_ = bodyScope.Define(item)
		a.varAddrs[item.ID] = p.Addr
	}

	savedFrame := a.frameSize
	a.frameSize = frame
	funcCtx := &funcContext{decl: fn, declScope: declScope, irFn: irFn, subst: subst}
	body := a.analyzeBlock(fn.Body, bodyScope, funcCtx)
	irFn.Body = body
	irFn.FrameSize = a.frameSize
	a.frameSize = savedFrame

	if ret.Kind != types.Unit && !blockReturns(body) {
		valType := unitTypeIfNil(body)
		if !valType.Equal(ret) {
			a.errorf(fn.Loc(), ErrTypeMismatch, "function %q returns %s but its body yields %s", fn.Name, ret, valType)
		}
	}
	return irFn
}

func unitTypeIfNil(b *Block) *types.Type {
	if b.Value == nil {
		return types.UnitType()
	}
	return b.Value.ExprType()
}

// blockReturns reports whether b ends in an explicit return, in which
// case its (absent) trailing value is not the function's yield.
func blockReturns(b *Block) bool {
	if b.Value != nil || len(b.Stmts) == 0 {
		return false
	}
	_, ok := b.Stmts[len(b.Stmts)-1].(*ReturnStmt)
	return ok
}

func indexOf(ss []string, s string) (int, bool) {
	for i, v := range ss {
		if v == s {
			return i, true
		}
	}
	return -1, false
}

func instantiationKey(name string, argTypes []*types.Type) string {
	if argTypes == nil {
		return name + "()"
	}
	parts := make([]string, len(argTypes))
	for i, t := range argTypes {
		parts[i] = t.String()
	}
	return name + "(" + strings.Join(parts, ",") + ")"
}

// wordSize returns the number of data-stack words a value of type t
// occupies; the emitter needs the same layout, so the computation
// itself lives in types.WordSize and this is just a local alias.
func wordSize(t *types.Type) int { return types.WordSize(t) }

// funcContext carries the per-function state analyzeBlock/analyzeExpr
// need: the function's own declaration/scope (for resolving further
// generic-typed locals) and the IR function node being built.
type funcContext struct {
	decl      *ast.FunctionItem
	declScope *scope.Scope
	irFn      *Function
	subst     map[string]*types.Type
}

func (a *Analyzer) allocAddr(size int) int {
	addr := a.frameSize
	a.frameSize += size
	return addr
}
