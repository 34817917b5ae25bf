package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dr8co/zinc/ast"
	"github.com/dr8co/zinc/lexer"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := New(lexer.New(src, 0))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, errs)
	}
	return prog
}

// parseBody parses `fn main() { <src> }` and returns main's statements.
func parseBody(t *testing.T, src string) []ast.Statement {
	t.Helper()
	prog := parseProgram(t, "fn main() { "+src+" }")
	fn, ok := prog.Items[0].(*ast.FunctionItem)
	if !ok {
		t.Fatalf("expected a FunctionItem, got %T", prog.Items[0])
	}
	return fn.Body.Statements
}

// exprString parses src as a single expression statement and returns
// its parenthesized String rendering.
func exprString(t *testing.T, src string) string {
	t.Helper()
	stmts := parseBody(t, src)
	if len(stmts) != 1 {
		t.Fatalf("expected one statement, got %d", len(stmts))
	}
	es, ok := stmts[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected an ExpressionStatement, got %T", stmts[0])
	}
	return es.Expression.String()
}

// TestOperatorPrecedence checks the layered precedence climb: every
// level binds tighter than the one below it, in the fixed order
// Assignment < Or < Xor < And < Comparison < AddSub < MulDivRem <
// Casting < Unary < Access < Path.
func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 * 2 + 3", "((1 * 2) + 3)"},
		{"a && b || c", "((a && b) || c)"},
		{"a ^ b && c", "(a ^ (b && c))"},
		{"a == b + 1", "(a == (b + 1))"},
		{"a < b == c > d", "(((a < b) == c) > d)"},
		{"-x * y", "((-x) * y)"},
		{"!a && b", "((!a) && b)"},
		{"x as u16 + 1", "((x as u16) + 1)"},
		{"1 + 2 - 3", "((1 + 2) - 3)"},
		{"10 / 2 % 3", "((10 / 2) % 3)"},
		{"m = 1 + 2", "(m = (1 + 2))"},
		{"a[0] + b[1]", "((a[0]) + (b[1]))"},
		{"p.x * p.y", "((p.x) * (p.y))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
	}
	for _, tt := range tests {
		if got := exprString(t, tt.input); got != tt.want {
			t.Errorf("%q parsed as %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseLetStatement(t *testing.T) {
	stmts := parseBody(t, "let mut total: u64 = 0;")
	let, ok := stmts[0].(*ast.LetStatement)
	if !ok {
		t.Fatalf("expected LetStatement, got %T", stmts[0])
	}
	if let.Name != "total" || !let.Mutable {
		t.Errorf("got name=%q mutable=%v, want total/true", let.Name, let.Mutable)
	}
	if let.Type == nil || let.Type.String() != "u64" {
		t.Errorf("got type %v, want u64", let.Type)
	}
}

func TestParseForStatement(t *testing.T) {
	stmts := parseBody(t, "for i in 0..8 { let x: u8 = 1; }")
	f, ok := stmts[0].(*ast.ForStatement)
	if !ok {
		t.Fatalf("expected ForStatement, got %T", stmts[0])
	}
	if f.Iterator != "i" {
		t.Errorf("iterator = %q, want i", f.Iterator)
	}
	if f.RangeStart.String() != "0" || f.RangeEnd.String() != "8" {
		t.Errorf("range = %s..%s, want 0..8", f.RangeStart, f.RangeEnd)
	}
}

func TestParseMatchStatement(t *testing.T) {
	stmts := parseBody(t, "match x { 0 => 10, 1 => 20, _ => 30, }")
	m, ok := stmts[0].(*ast.MatchStatement)
	if !ok {
		t.Fatalf("expected MatchStatement, got %T", stmts[0])
	}
	if len(m.Arms) != 3 {
		t.Fatalf("got %d arms, want 3", len(m.Arms))
	}
	if _, ok := m.Arms[0].Pattern.(*ast.LiteralPattern); !ok {
		t.Errorf("arm 0 pattern = %T, want LiteralPattern", m.Arms[0].Pattern)
	}
	if _, ok := m.Arms[2].Pattern.(*ast.WildcardPattern); !ok {
		t.Errorf("arm 2 pattern = %T, want WildcardPattern", m.Arms[2].Pattern)
	}
}

// TestParseContract drives the contract production's state machine:
// leading fields (identifier followed by `:`) then a statement list.
func TestParseContract(t *testing.T) {
	prog := parseProgram(t, `contract Vault {
  balance: u248;
  owner: field;
  fn deposit(amount: u248) -> u248 { amount }
}`)
	c, ok := prog.Items[0].(*ast.ContractItem)
	if !ok {
		t.Fatalf("expected ContractItem, got %T", prog.Items[0])
	}
	if c.Name != "Vault" {
		t.Errorf("name = %q, want Vault", c.Name)
	}
	if len(c.Fields) != 2 || c.Fields[0].Name != "balance" || c.Fields[1].Name != "owner" {
		t.Fatalf("fields = %+v, want balance, owner", c.Fields)
	}
	if len(c.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(c.Statements))
	}
}

func TestParseContractWithoutIdentifier(t *testing.T) {
	p := New(lexer.New("contract { }", 0))
	p.ParseProgram()
	errs := p.Errors()
	if len(errs) == 0 {
		t.Fatal("expected an error for a contract without an identifier")
	}
	if errs[0].Kind != ErrExpectedIdentifier {
		t.Errorf("kind = %q, want %q", errs[0].Kind, ErrExpectedIdentifier)
	}
}

func TestParseUseRequiresSemicolon(t *testing.T) {
	p := New(lexer.New("use std::crypto", 0))
	p.ParseProgram()
	errs := p.Errors()
	if len(errs) == 0 {
		t.Fatal("expected an error for `use` without a trailing `;`")
	}
	if errs[0].Kind != ErrExpected {
		t.Errorf("kind = %q, want %q", errs[0].Kind, ErrExpected)
	}
	if len(errs[0].Wanted) != 1 || errs[0].Wanted[0] != ";" {
		t.Errorf("wanted = %v, want [;]", errs[0].Wanted)
	}
}

func TestParseUseWithAlias(t *testing.T) {
	prog := parseProgram(t, "use std::crypto::schnorr as sig;")
	u, ok := prog.Items[0].(*ast.UseItem)
	if !ok {
		t.Fatalf("expected UseItem, got %T", prog.Items[0])
	}
	if len(u.Path) != 3 || u.Path[2] != "schnorr" || u.Alias != "sig" {
		t.Errorf("got path=%v alias=%q", u.Path, u.Alias)
	}
}

func TestParseAttributes(t *testing.T) {
	prog := parseProgram(t, `#[test]
#[should_panic]
fn overflows() { }`)
	fn := prog.Items[0].(*ast.FunctionItem)
	if len(fn.Attributes) != 2 {
		t.Fatalf("got %d attributes, want 2", len(fn.Attributes))
	}
	if fn.Attributes[0].Kind != ast.AttrTest || fn.Attributes[1].Kind != ast.AttrShouldPanic {
		t.Errorf("kinds = %v, %v", fn.Attributes[0].Kind, fn.Attributes[1].Kind)
	}
}

func TestParseZksyncMsgAttribute(t *testing.T) {
	prog := parseProgram(t, `#[zksync::msg(sender = 1, recipient = 2, token_address = 3, amount = 4)]
fn transfer() { }`)
	fn := prog.Items[0].(*ast.FunctionItem)
	if len(fn.Attributes) != 1 || fn.Attributes[0].Kind != ast.AttrZksyncMsg {
		t.Fatalf("attributes = %+v", fn.Attributes)
	}
	msg := fn.Attributes[0].Msg
	if msg.Sender != "1" || msg.Recipient != "2" || msg.TokenAddress != "3" || msg.Amount != "4" {
		t.Errorf("msg = %+v", msg)
	}
}

// TestParseZksyncMsgFieldOrder checks that the four fields are
// required in the exact order sender, recipient, token_address, amount.
func TestParseZksyncMsgFieldOrder(t *testing.T) {
	p := New(lexer.New(`#[zksync::msg(recipient = 2, sender = 1, token_address = 3, amount = 4)]
fn transfer() { }`, 0))
	p.ParseProgram()
	errs := p.Errors()
	if len(errs) == 0 {
		t.Fatal("expected an error for out-of-order zksync::msg fields")
	}
	if len(errs[0].Wanted) != 1 || errs[0].Wanted[0] != "sender" {
		t.Errorf("wanted = %v, want [sender]", errs[0].Wanted)
	}
}

func TestParseGenericFunction(t *testing.T) {
	prog := parseProgram(t, "fn id<T>(x: T) -> T { x }")
	fn := prog.Items[0].(*ast.FunctionItem)
	if len(fn.Generics) != 1 || fn.Generics[0] != "T" {
		t.Errorf("generics = %v, want [T]", fn.Generics)
	}
	if len(fn.Parameters) != 1 || fn.Parameters[0].Type.String() != "T" {
		t.Errorf("parameters = %+v", fn.Parameters)
	}
}

func TestParseIfElseChain(t *testing.T) {
	got := exprString(t, "if a { 1 } else if b { 2 } else { 3 }")
	want := "if a { 1 } else { if b { 2 } else { 3 } }"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// TestRoundTrip is the lex/parse round-trip property: pretty-printing
// an accepted program and re-parsing it yields a structurally equal
// tree, compared here by their canonical printed forms (locations are
// positional bookkeeping, not structure).
func TestRoundTrip(t *testing.T) {
	sources := []string{
		"fn main() { let x: u8 = 1 + 2 * 3; }",
		"const LIMIT: u64 = 1000;\nfn main() -> u64 { LIMIT }",
		"type Amount = u248;\nstruct Transfer { to: field, amount: Amount }",
		"enum State { Idle, Busy, Done }",
		"use std::crypto::schnorr as sig;",
		"mod math { const PI_APPROX: u16 = 314; }",
		"impl Point { fn norm(self_x: u32) -> u32 { self_x * self_x } }",
		"contract Vault {\n  balance: u248;\n  fn total(extra: u248) -> u248 { balance + extra }\n}",
		"fn main() { for i in 0..4 { let sq: u32 = 1; } }",
		"fn main() { match x { 0 => 1, _ => 2, } }",
		"fn main() -> u8 { if c { 1 } else { 2 } }",
		"fn pick(xs: [u8; 5]) -> u8 { xs[2] }",
		"fn window(xs: [u8; 5]) -> [u8; 2] { xs[1..3] }",
		"fn widen(x: u8) -> field { x as field }",
		"fn pair() -> (u8, bool) { (1, true) }",
	}
	for _, src := range sources {
		first := parseProgram(t, src).String()
		second := parseProgram(t, first).String()
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("round trip diverged for %q (-first +reparsed):\n%s", src, diff)
		}
	}
}
