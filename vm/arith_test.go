package vm

import (
	"math/big"
	"testing"

	"github.com/dr8co/zinc/bytecode"
)

func TestCastNarrowingTruncates(t *testing.T) {
	prog := &bytecode.Program{
		Functions: []bytecode.FunctionEntry{{Name: "main", Address: 0}},
		Code: []bytecode.Instruction{
			push(300, bytecode.TagUnsigned, 16),
			{Op: bytecode.OpCast, ToTag: bytecode.TagUnsigned, Width: 8},
			{Op: bytecode.OpReturn, OutputSize: 1},
		},
	}
	results, err := New(prog).Run(nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// 300 mod 256 = 44
	if results[0].Int.Cmp(big.NewInt(44)) != 0 {
		t.Fatalf("got %s, want 44", results[0].Int)
	}
}

func TestCastToSignedNegative(t *testing.T) {
	prog := &bytecode.Program{
		Functions: []bytecode.FunctionEntry{{Name: "main", Address: 0}},
		Code: []bytecode.Instruction{
			push(200, bytecode.TagUnsigned, 8), // 0xC8
			{Op: bytecode.OpCast, ToTag: bytecode.TagSigned, Signed: true, Width: 8},
			{Op: bytecode.OpReturn, OutputSize: 1},
		},
	}
	results, err := New(prog).Run(nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// 200 as i8 is 200-256 = -56
	if results[0].Int.Cmp(big.NewInt(-56)) != 0 {
		t.Fatalf("got %s, want -56", results[0].Int)
	}
}

func TestExecNeg(t *testing.T) {
	vm := New(&bytecode.Program{Functions: []bytecode.FunctionEntry{{Name: "main"}}})
	vm.push(Value{Type: bytecode.Type{Tag: bytecode.TagSigned, Width: 8}, Int: big.NewInt(5)})
	if err := vm.execNeg(); err != nil {
		t.Fatalf("execNeg: %v", err)
	}
	got, _ := vm.pop()
	if got.Int.Cmp(big.NewInt(-5)) != 0 {
		t.Fatalf("got %s, want -5", got.Int)
	}
}

func TestExecNot(t *testing.T) {
	vm := New(&bytecode.Program{Functions: []bytecode.FunctionEntry{{Name: "main"}}})
	vm.push(boolValue(true))
	if err := vm.execNot(); err != nil {
		t.Fatalf("execNot: %v", err)
	}
	got, _ := vm.pop()
	if got.truthy() {
		t.Fatal("!true should be false")
	}
}
