package types

import (
	"math/big"
	"testing"
)

func TestBounds(t *testing.T) {
	tests := []struct {
		typ     *Type
		wantMin int64
		wantMax int64
	}{
		{UintType(8), 0, 256},
		{UintType(1), 0, 2},
		{IntType(8), -128, 128},
		{IntType(4), -8, 8},
	}
	for _, tt := range tests {
		min, max := tt.typ.Bounds()
		if min.Cmp(big.NewInt(tt.wantMin)) != 0 || max.Cmp(big.NewInt(tt.wantMax)) != 0 {
			t.Errorf("%s: Bounds() = [%s, %s), want [%d, %d)", tt.typ, min, max, tt.wantMin, tt.wantMax)
		}
	}
}

func TestInRange(t *testing.T) {
	u8 := UintType(8)
	if !u8.InRange(big.NewInt(255)) {
		t.Error("255 should be in range for u8")
	}
	if u8.InRange(big.NewInt(256)) {
		t.Error("256 should be out of range for u8")
	}
	if u8.InRange(big.NewInt(-1)) {
		t.Error("-1 should be out of range for u8")
	}

	field := FieldType()
	if !field.InRange(big.NewInt(0)) {
		t.Error("0 should be in range for field")
	}
	if field.InRange(new(big.Int).Neg(big.NewInt(1))) {
		t.Error("-1 should be out of range for field")
	}
	if field.InRange(FieldModulus) {
		t.Error("the modulus itself should be out of range for field")
	}
}

func TestEqual(t *testing.T) {
	if !UintType(8).Equal(UintType(8)) {
		t.Error("u8 should equal u8")
	}
	if UintType(8).Equal(UintType(16)) {
		t.Error("u8 should not equal u16")
	}
	if UintType(8).Equal(IntType(8)) {
		t.Error("u8 should not equal i8")
	}

	arr1 := ArrayType(UintType(8), 3)
	arr2 := ArrayType(UintType(8), 3)
	arr3 := ArrayType(UintType(8), 4)
	if !arr1.Equal(arr2) {
		t.Error("[u8; 3] should equal [u8; 3]")
	}
	if arr1.Equal(arr3) {
		t.Error("[u8; 3] should not equal [u8; 4]")
	}

	tup1 := TupleType(UintType(8), BoolType())
	tup2 := TupleType(UintType(8), BoolType())
	if !tup1.Equal(tup2) {
		t.Error("(u8, bool) should equal (u8, bool)")
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		typ  *Type
		want string
	}{
		{UnitType(), "()"},
		{BoolType(), "bool"},
		{FieldType(), "field"},
		{UintType(32), "u32"},
		{IntType(8), "i8"},
		{ArrayType(UintType(8), 4), "[u8; 4]"},
		{TupleType(UintType(8), BoolType()), "(u8, bool)"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestWordSize(t *testing.T) {
	tests := []struct {
		typ  *Type
		want int
	}{
		{UnitType(), 0},
		{BoolType(), 1},
		{UintType(8), 1},
		{FieldType(), 1},
		{ArrayType(UintType(8), 4), 4},
		{ArrayType(ArrayType(UintType(8), 2), 3), 6},
		{TupleType(UintType(8), BoolType(), FieldType()), 3},
		{StructType("Point", []StructField{{Name: "x", Type: UintType(8)}, {Name: "y", Type: UintType(8)}}), 2},
	}
	for _, tt := range tests {
		if got := WordSize(tt.typ); got != tt.want {
			t.Errorf("WordSize(%s) = %d, want %d", tt.typ, got, tt.want)
		}
	}
}
