package semantic

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dr8co/zinc/lexer"
	"github.com/dr8co/zinc/parser"
	"github.com/dr8co/zinc/scope"
	"github.com/dr8co/zinc/types"
)

func analyzeSource(t *testing.T, src string) (*Program, []*Error) {
	t.Helper()
	p := parser.New(lexer.New(src, 0))
	prog := p.ParseProgram()
	require.Empty(t, p.Errors(), "parse errors for %q", src)
	a := New()
	ir := a.Analyze(prog)
	return ir, a.Errors()
}

func requireClean(t *testing.T, src string) *Program {
	t.Helper()
	ir, errs := analyzeSource(t, src)
	require.Empty(t, errs, "semantic errors for %q", src)
	return ir
}

func firstError(t *testing.T, src string) *Error {
	t.Helper()
	_, errs := analyzeSource(t, src)
	require.NotEmpty(t, errs, "expected a semantic error for %q", src)
	return errs[0]
}

// TestConstFolding covers the first end-to-end scenario: a constant
// initializer reduces to a single folded value of the declared type.
func TestConstFolding(t *testing.T) {
	ir := requireClean(t, "const X: u8 = 1 + 2;\nfn main() { }")
	require.Len(t, ir.Consts, 1)
	assert.Equal(t, "X", ir.Consts[0].Name)
	assert.Equal(t, "u8", ir.Consts[0].Type.String())
	assert.Zero(t, ir.Consts[0].Value.Cmp(big.NewInt(3)))
}

func TestLocalConstFoldsIntoBody(t *testing.T) {
	ir := requireClean(t, "fn main() -> u8 { const X: u8 = 1 + 2; X }")
	require.Len(t, ir.Functions, 1)
	val, ok := ir.Functions[0].Body.Value.(*ConstExpr)
	require.True(t, ok, "body value should fold to a constant, got %T", ir.Functions[0].Body.Value)
	assert.Zero(t, val.Value.Cmp(big.NewInt(3)))
	assert.Equal(t, "u8", val.Type.String())
}

// TestPushingInvalidType covers scenario 2: a bool in a u8 array
// literal is a structured element-type error, not a generic mismatch.
func TestPushingInvalidType(t *testing.T) {
	err := firstError(t, "fn main() { const A: [u8; 2] = [1, false]; }")
	assert.Equal(t, ErrPushingInvalidType, err.Kind)
	assert.Contains(t, err.Message, `"u8"`)
	assert.Contains(t, err.Message, `"bool"`)
}

// TestIndexOutOfRange covers scenario 3: constant indexing is bounds
// checked at compile time.
func TestIndexOutOfRange(t *testing.T) {
	err := firstError(t, "fn main() { const V: u8 = [1, 2, 3, 4, 5][5]; }")
	assert.Equal(t, ErrIndexOutOfRange, err.Kind)
	assert.Contains(t, err.Message, "5")
}

func TestConstIndexFolds(t *testing.T) {
	ir := requireClean(t, "fn main() -> u32 { [10, 20, 30][1] }")
	val, ok := ir.Functions[0].Body.Value.(*ConstExpr)
	require.True(t, ok)
	assert.Zero(t, val.Value.Cmp(big.NewInt(20)))
}

func TestSliceBounds(t *testing.T) {
	requireClean(t, "fn main() { const W: [u8; 2] = [1, 2, 3, 4, 5][1..3]; }")

	err := firstError(t, "fn main() { const S: [u8; 2] = [1, 2, 3][2..1]; }")
	assert.Equal(t, ErrSliceOutOfRange, err.Kind)

	err = firstError(t, "fn main() { const S: [u8; 4] = [1, 2, 3][0..4]; }")
	assert.Equal(t, ErrSliceOutOfRange, err.Kind)
}

func TestConstOverflow(t *testing.T) {
	err := firstError(t, "fn main() { const X: u8 = 200 + 100; }")
	assert.Equal(t, ErrConstOverflow, err.Kind)
	assert.Contains(t, err.Message, "u8")
}

func TestDivisionByZeroConst(t *testing.T) {
	err := firstError(t, "fn main() { const X: u8 = 1 / 0; }")
	assert.Equal(t, ErrConstOverflow, err.Kind)
	assert.Contains(t, err.Message, "division by zero")
}

func TestCastRules(t *testing.T) {
	// Widening and narrowing between integers, integer -> field.
	requireClean(t, "fn main() -> u16 { 200 as u16 }")
	requireClean(t, "fn main() -> field { 42 as field }")

	// field -> integer loses range information and is rejected.
	err := firstError(t, "fn main() -> u8 { (1 as field) as u8 }")
	assert.Equal(t, ErrInvalidCast, err.Kind)

	// bool is not castable at all.
	err = firstError(t, "fn main() -> u8 { true as u8 }")
	assert.Equal(t, ErrInvalidCast, err.Kind)
}

func TestCastFolding(t *testing.T) {
	ir := requireClean(t, "fn main() -> i8 { 200 as i8 }")
	val, ok := ir.Functions[0].Body.Value.(*ConstExpr)
	require.True(t, ok)
	// 200 reinterpreted under i8 is 200-256.
	assert.Zero(t, val.Value.Cmp(big.NewInt(-56)))
}

func TestIfElseBranchTypesMustAgree(t *testing.T) {
	err := firstError(t, "fn main() -> u8 { let c: bool = true; if c { 1 as u8 } else { true } }")
	assert.Equal(t, ErrTypeMismatch, err.Kind)
}

func TestOperandTypesMustMatch(t *testing.T) {
	err := firstError(t, "fn main() -> u16 { let a: u8 = 1; let b: u16 = 2; a + b }")
	assert.Equal(t, ErrTypeMismatch, err.Kind)
}

func TestAssignmentRequiresMutable(t *testing.T) {
	err := firstError(t, "fn main() { let x: u8 = 1; x = 2; }")
	assert.Equal(t, ErrInvalidAssignTarget, err.Kind)

	requireClean(t, "fn main() { let mut x: u8 = 1; x = 2; }")
}

// TestMonomorphisation checks that identical instantiation keys share
// one copy while distinct argument-type tuples get their own.
func TestMonomorphisation(t *testing.T) {
	ir := requireClean(t, `fn id<T>(x: T) -> T { x }
fn main() {
  let a: u8 = id(1 as u8);
  let b: u8 = id(2 as u8);
  let c: bool = id(true);
}`)
	names := make(map[string]int)
	for _, fn := range ir.Functions {
		names[fn.GenericKey]++
	}
	assert.Len(t, ir.Functions, 3, "main + id(u8) + id(bool), with id(u8) shared")
	assert.Equal(t, 1, names["id(u8)"])
	assert.Equal(t, 1, names["id(bool)"])
}

func TestModuleAndUseBinding(t *testing.T) {
	ir := requireClean(t, `mod math { const PI_APPROX: u16 = 314; }
use math::PI_APPROX as PI;
fn main() -> u16 { PI }`)
	val, ok := ir.Functions[0].Body.Value.(*ConstExpr)
	require.True(t, ok)
	assert.Zero(t, val.Value.Cmp(big.NewInt(314)))
}

func TestPathResolvesModuleConst(t *testing.T) {
	ir := requireClean(t, `mod math { const PI_APPROX: u16 = 314; }
fn main() -> u16 { math::PI_APPROX }`)
	val, ok := ir.Functions[0].Body.Value.(*ConstExpr)
	require.True(t, ok)
	assert.Zero(t, val.Value.Cmp(big.NewInt(314)))
}

func TestImplAssociatedConst(t *testing.T) {
	ir := requireClean(t, `struct Point { x: u8, y: u8 }
impl Point { const ORIGIN_X: u8 = 0; }
fn main() -> u8 { Point::ORIGIN_X }`)
	val, ok := ir.Functions[0].Body.Value.(*ConstExpr)
	require.True(t, ok)
	assert.Zero(t, val.Value.Sign())
}

func TestImplAssociatedFunction(t *testing.T) {
	ir := requireClean(t, `struct Point { x: u8, y: u8 }
impl Point { fn double(v: u8) -> u8 { v + v } }
fn main() -> u8 { Point::double(3 as u8) }`)
	require.Len(t, ir.Functions, 2)
	call, ok := ir.Functions[0].Body.Value.(*CallExpr)
	require.True(t, ok)
	assert.Equal(t, "double", call.Callee.Name)
}

func TestContractMethodsResolve(t *testing.T) {
	requireClean(t, `contract Vault {
  balance: u248;
  fn fee(amount: u248) -> u248 { amount / 100 }
}
fn main() -> u248 { Vault::fee(500 as u248) }`)
}

func TestEnumVariantsAreConstants(t *testing.T) {
	ir := requireClean(t, `enum State { Idle, Busy, Done }
fn main() -> u8 { let s: State = State::Busy; 0 }`)
	require.Len(t, ir.Functions, 1)
}

func TestTypeAliasSharesIdentity(t *testing.T) {
	scope.ResetIndex()
	src := `struct Point { x: u8, y: u8 }
type Location = Point;
fn main() { }`
	requireClean(t, src)
	a := New()
	a.Analyze(parser.New(lexer.New(src, 0)).ParseProgram())
	point, ok := a.root.Lookup("Point")
	require.True(t, ok)
	alias, ok := a.root.Lookup("Location")
	require.True(t, ok)
	assert.Equal(t, point.ID, alias.ID)
}

func TestUndeclaredName(t *testing.T) {
	err := firstError(t, "fn main() -> u8 { missing }")
	assert.Equal(t, ErrUndeclared, err.Kind)
	assert.Contains(t, err.Message, "missing")
}

func TestDuplicateDeclarationRejected(t *testing.T) {
	err := firstError(t, "fn main() { let x: u8 = 1; let x: u8 = 2; }")
	assert.Equal(t, ErrAlreadyDeclared, err.Kind)
}

func TestShadowingInInnerScope(t *testing.T) {
	requireClean(t, "fn main() { let x: u8 = 1; if true { let x: u16 = 2; } }")
}

func TestReservedIdentifier(t *testing.T) {
	err := firstError(t, "fn main() { const std: u8 = 1; }")
	assert.Equal(t, ErrReservedIdentifier, err.Kind)
}

func TestShouldPanicRequiresTest(t *testing.T) {
	_, errs := analyzeSource(t, "#[should_panic]\nfn lonely() { }\nfn main() { }")
	require.NotEmpty(t, errs)
	assert.Equal(t, ErrAttributeShape, errs[0].Kind)
}

func TestForLoopUnrolls(t *testing.T) {
	ir := requireClean(t, "fn main() { let mut acc: u32 = 0; for i in 0..4 { acc = acc + 1; } }")
	var loop *ForStmt
	for _, s := range ir.Functions[0].Body.Stmts {
		if f, ok := s.(*ForStmt); ok {
			loop = f
		}
	}
	require.NotNil(t, loop)
	assert.Len(t, loop.Bodies, 4)
}

func TestForBoundsMustBeConstant(t *testing.T) {
	err := firstError(t, "fn main(n: u8) { for i in 0..n { let x: u8 = 1; } }")
	assert.Equal(t, ErrNotConstant, err.Kind)
}

func TestMatchLowersToIfChain(t *testing.T) {
	ir := requireClean(t, `fn main() -> u8 { let x: u8 = 1; match x { 0 => 10, 1 => 20, _ => 30, } 0 }`)
	require.Len(t, ir.Functions, 1)
}

func TestMainIsFirstFunction(t *testing.T) {
	ir := requireClean(t, "fn helper() -> u8 { 1 }\nfn main() -> u8 { helper() }")
	require.Len(t, ir.Functions, 2)
	assert.Equal(t, "main", ir.Functions[0].Name)
}

func TestFieldArithmeticWrapsModulus(t *testing.T) {
	src := "fn main() -> field { (1 as field) + (" + new(big.Int).Sub(types.FieldModulus, big.NewInt(1)).String() + " as field) }"
	ir := requireClean(t, src)
	val, ok := ir.Functions[0].Body.Value.(*ConstExpr)
	require.True(t, ok)
	assert.Zero(t, val.Value.Sign(), "p-1 + 1 should wrap to 0 in the scalar field")
}
