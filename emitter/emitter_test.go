package emitter

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dr8co/zinc/bytecode"
	"github.com/dr8co/zinc/lexer"
	"github.com/dr8co/zinc/parser"
	"github.com/dr8co/zinc/semantic"
)

func emitSource(t *testing.T, src string) *bytecode.Program {
	t.Helper()
	p := parser.New(lexer.New(src, 0))
	prog := p.ParseProgram()
	require.Empty(t, p.Errors(), "parse errors for %q", src)
	a := semantic.New()
	ir := a.Analyze(prog)
	require.Empty(t, a.Errors(), "semantic errors for %q", src)
	bc, err := Emit(ir)
	require.NoError(t, err)
	return bc
}

func opcodes(code []bytecode.Instruction) []bytecode.Opcode {
	ops := make([]bytecode.Opcode, len(code))
	for i, ins := range code {
		ops[i] = ins.Op
	}
	return ops
}

func TestEmitLetAndLoad(t *testing.T) {
	bc := emitSource(t, "fn main() -> u8 { let x: u8 = 7; x }")
	want := []bytecode.Opcode{bytecode.OpPush, bytecode.OpStore, bytecode.OpLoad, bytecode.OpReturn}
	assert.Equal(t, want, opcodes(bc.Code))
	assert.Zero(t, bc.Code[0].Value.Cmp(big.NewInt(7)))
	assert.Equal(t, uint32(1), bc.Code[3].OutputSize)
}

func TestEmitConditional(t *testing.T) {
	bc := emitSource(t, "fn main() -> u8 { let c: bool = true; if c { 1 as u8 } else { 2 as u8 } }")
	want := []bytecode.Opcode{
		bytecode.OpPush, bytecode.OpStore, // let c
		bytecode.OpLoad, bytecode.OpIf,
		bytecode.OpPush,
		bytecode.OpElse,
		bytecode.OpPush,
		bytecode.OpEndIf,
		bytecode.OpReturn,
	}
	assert.Equal(t, want, opcodes(bc.Code))
}

func TestEmitExpressionStatementPopsValue(t *testing.T) {
	bc := emitSource(t, "fn main() { let a: u8 = 1; a + a; }")
	ops := opcodes(bc.Code)
	assert.Contains(t, ops, bytecode.OpPop, "an expression statement's unused value must be popped")
}

func TestEmitCallPatchesEntry(t *testing.T) {
	bc := emitSource(t, `fn double(v: u8) -> u8 { v + v }
fn main() -> u8 { double(3 as u8) }`)

	require.Len(t, bc.Functions, 2)
	assert.Equal(t, "main", bc.Functions[0].Name)
	assert.Equal(t, uint32(0), bc.Functions[0].Address)

	var call *bytecode.Instruction
	for i := range bc.Code {
		if bc.Code[i].Op == bytecode.OpCall {
			call = &bc.Code[i]
		}
	}
	require.NotNil(t, call, "expected a Call instruction")
	assert.Equal(t, bc.Functions[1].Address, call.Entry, "Call entry must be patched to the callee's address")
	assert.Equal(t, uint32(1), call.InputSize)
}

func TestEmitUnrolledLoop(t *testing.T) {
	bc := emitSource(t, "fn main() { let mut acc: u16 = 0; for i in 0..3 { acc = acc + 1; } }")
	stores := 0
	for _, ins := range bc.Code {
		if ins.Op == bytecode.OpStore {
			stores++
		}
	}
	// let acc + per-iteration (iterator store + acc store) * 3.
	assert.Equal(t, 1+3*2, stores)
}

func TestEmitSlice(t *testing.T) {
	bc := emitSource(t, "fn main() -> u8 { let xs: [u8; 5] = [1, 2, 3, 4, 5]; let w: [u8; 2] = xs[1..3]; w[0] }")
	var slice *bytecode.Instruction
	for i := range bc.Code {
		if bc.Code[i].Op == bytecode.OpSlice {
			slice = &bc.Code[i]
		}
	}
	require.NotNil(t, slice)
	assert.Equal(t, uint32(5), slice.TotalLen)
	assert.Equal(t, uint32(2), slice.SliceLen)
	assert.Equal(t, uint32(1), slice.Offset)
}

func TestEmitExplicitReturn(t *testing.T) {
	bc := emitSource(t, "fn main() -> u8 { return 4 as u8; }")
	ops := opcodes(bc.Code)
	require.NotEmpty(t, ops)
	assert.Equal(t, bytecode.OpReturn, ops[len(ops)-1])
	returns := 0
	for _, op := range ops {
		if op == bytecode.OpReturn {
			returns++
		}
	}
	assert.Equal(t, 1, returns, "exactly one Return per function body")
}

func TestInputDescriptorMatchesEntryParams(t *testing.T) {
	bc := emitSource(t, "fn main(a: u8, ok: bool) { }")
	assert.Contains(t, string(bc.InputDesc), `"a"`)
	assert.Contains(t, string(bc.InputDesc), `"ok"`)
}
