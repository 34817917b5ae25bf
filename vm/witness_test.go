package vm

import (
	"math/big"
	"testing"

	"github.com/dr8co/zinc/bytecode"
)

func TestWitnessDecode(t *testing.T) {
	desc := []InputField{
		{Name: "amount", Type: bytecode.TagUnsigned, Width: 248},
		{Name: "ok", Type: bytecode.TagBool},
	}
	raw := []byte(`{"amount": "123456789012345678901234567890", "ok": true}`)

	values, err := DecodeWitness(raw, desc)
	if err != nil {
		t.Fatalf("DecodeWitness: %v", err)
	}
	want, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	if values[0].Int.Cmp(want) != 0 {
		t.Errorf("amount = %s, want %s", values[0].Int, want)
	}
	if !values[1].truthy() {
		t.Error("ok should decode to true")
	}
}

func TestWitnessMissingField(t *testing.T) {
	desc := []InputField{{Name: "x", Type: bytecode.TagUnsigned, Width: 8}}
	if _, err := DecodeWitness([]byte(`{}`), desc); err == nil {
		t.Fatal("expected an error for a missing witness field")
	}
}

// TestWitnessIntegerMustBeString enforces the witness JSON convention:
// integers are strings, so arbitrary precision survives the transport.
func TestWitnessIntegerMustBeString(t *testing.T) {
	desc := []InputField{{Name: "x", Type: bytecode.TagUnsigned, Width: 8}}
	if _, err := DecodeWitness([]byte(`{"x": 5}`), desc); err == nil {
		t.Fatal("expected an error for a bare JSON number")
	}
}

func TestWitnessRangeChecked(t *testing.T) {
	desc := []InputField{{Name: "x", Type: bytecode.TagUnsigned, Width: 8}}
	if _, err := DecodeWitness([]byte(`{"x": "256"}`), desc); err == nil {
		t.Fatal("expected an error for 256 as u8")
	}
}

func TestWitnessEncodeRoundTrip(t *testing.T) {
	desc := []InputField{
		{Name: "sum", Type: bytecode.TagUnsigned, Width: 64},
		{Name: "valid", Type: bytecode.TagBool},
	}
	values := []Value{
		{Type: bytecode.Type{Tag: bytecode.TagUnsigned, Width: 64}, Int: big.NewInt(99)},
		boolValue(true),
	}
	raw, err := EncodeWitness(values, desc)
	if err != nil {
		t.Fatalf("EncodeWitness: %v", err)
	}
	back, err := DecodeWitness(raw, desc)
	if err != nil {
		t.Fatalf("DecodeWitness: %v", err)
	}
	if back[0].Int.Cmp(values[0].Int) != 0 || !back[1].truthy() {
		t.Fatalf("round trip diverged: %v", back)
	}
}

func TestParseInputDescRoundTrip(t *testing.T) {
	fields := []InputField{{Name: "a", Type: bytecode.TagSigned, Width: 16}}
	raw, err := EncodeInputDesc(fields)
	if err != nil {
		t.Fatalf("EncodeInputDesc: %v", err)
	}
	back, err := ParseInputDesc(raw)
	if err != nil {
		t.Fatalf("ParseInputDesc: %v", err)
	}
	if len(back) != 1 || back[0] != fields[0] {
		t.Fatalf("round trip diverged: %+v", back)
	}
}
