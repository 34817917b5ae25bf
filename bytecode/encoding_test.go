package bytecode

import (
	"bytes"
	"math/big"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	prog := &Program{
		Functions: []FunctionEntry{
			{Name: "main", Address: 0, InputSize: 0},
			{Name: "add(u8,u8)", Address: 5, InputSize: 2},
		},
		InputDesc: []byte(`[]`),
		Code: []Instruction{
			{Op: OpPush, Value: big.NewInt(42), ValueType: Type{Tag: TagUnsigned, Width: 8}},
			{Op: OpPush, Value: big.NewInt(-7), ValueType: Type{Tag: TagSigned, Width: 16}},
			{Op: OpAdd},
			{Op: OpLoad, Addr: 3, Size: 2},
			{Op: OpStore, Addr: 1, Size: 1},
			{Op: OpCast, ToTag: TagField, Signed: false, Width: 0},
			{Op: OpCast, ToTag: TagSigned, Signed: true, Width: 32},
			{Op: OpCall, Entry: 5, InputSize: 2},
			{Op: OpReturn, OutputSize: 1},
			{Op: OpSlice, TotalLen: 4, SliceLen: 2, Offset: 1},
			{Op: OpIf},
			{Op: OpElse},
			{Op: OpEndIf},
			{Op: OpExit},
		},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, prog); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(got.Functions) != len(prog.Functions) {
		t.Fatalf("got %d functions, want %d", len(got.Functions), len(prog.Functions))
	}
	for i, fn := range prog.Functions {
		if got.Functions[i] != fn {
			t.Errorf("function %d = %+v, want %+v", i, got.Functions[i], fn)
		}
	}

	if !bytes.Equal(got.InputDesc, prog.InputDesc) {
		t.Errorf("InputDesc = %q, want %q", got.InputDesc, prog.InputDesc)
	}

	if len(got.Code) != len(prog.Code) {
		t.Fatalf("got %d instructions, want %d", len(got.Code), len(prog.Code))
	}
	for i, ins := range prog.Code {
		g := got.Code[i]
		if g.Op != ins.Op {
			t.Errorf("instruction %d op = %v, want %v", i, g.Op, ins.Op)
			continue
		}
		switch ins.Op {
		case OpPush:
			if g.Value.Cmp(ins.Value) != 0 || g.ValueType != ins.ValueType {
				t.Errorf("instruction %d Push = %v %+v, want %v %+v", i, g.Value, g.ValueType, ins.Value, ins.ValueType)
			}
		case OpCast:
			if g.ToTag != ins.ToTag || g.Signed != ins.Signed || g.Width != ins.Width {
				t.Errorf("instruction %d Cast = %+v, want %+v", i, g, ins)
			}
		}
	}
}

func TestDecodeBadMagic(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("NOPE1234")))
	if err == nil {
		t.Fatal("expected an error for a bad magic header")
	}
}

func TestTwosComplementBytesRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 127, -128, 255, -255, 1 << 20, -(1 << 20)}
	for _, v := range values {
		want := big.NewInt(v)
		raw := twosComplementBytes(want)
		got := fromTwosComplementBytes(raw)
		if got.Cmp(want) != 0 {
			t.Errorf("twosComplementBytes round trip for %d: got %s", v, got)
		}
	}
}

func TestDisassemble(t *testing.T) {
	prog := &Program{
		Functions: []FunctionEntry{{Name: "main", Address: 0, InputSize: 0}},
		Code: []Instruction{
			{Op: OpPush, Value: big.NewInt(1), ValueType: Type{Tag: TagUnsigned, Width: 8}},
			{Op: OpCast, ToTag: TagField},
			{Op: OpReturn, OutputSize: 1},
		},
	}
	out := prog.Disassemble()
	if !bytes.Contains([]byte(out), []byte("fn main @0")) {
		t.Errorf("disassembly missing function header: %q", out)
	}
	if !bytes.Contains([]byte(out), []byte("Cast field")) {
		t.Errorf("disassembly missing field-cast rendering: %q", out)
	}
}
