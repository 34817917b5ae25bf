// Package types implements Zinc's type lattice: `unit`, `bool`,
// arbitrary-bitwidth signed/unsigned integers, the scalar `field`
// type, and the composite array/tuple/struct/enum/fn/contract types.
//
// Range checks and field-modulus arithmetic use math/big throughout,
// since integer values may be up to 248 bits wide and field elements
// are bounded by a ~254-bit prime — both well past int64 range.
package types

import (
	"math/big"
	"strconv"
)

// Kind tags which member of the type lattice a Type value is.
type Kind int

const (
	Unit Kind = iota
	Bool
	UnsignedInt
	SignedInt
	Field
	Array
	Tuple
	Struct
	Enum
	Fn
	Contract
)

func (k Kind) String() string {
	switch k {
	case Unit:
		return "()"
	case Bool:
		return "bool"
	case UnsignedInt:
		return "uN"
	case SignedInt:
		return "iN"
	case Field:
		return "field"
	case Array:
		return "array"
	case Tuple:
		return "tuple"
	case Struct:
		return "struct"
	case Enum:
		return "enum"
	case Fn:
		return "fn"
	case Contract:
		return "contract"
	}
	return "unknown"
}

// FieldModulus is the scalar-field prime every `field` value is
// reduced modulo. This is BLS12-381's scalar field order, the
// proof-system modulus the original toolchain targets.
var FieldModulus, _ = new(big.Int).SetString(
	"52435875175126190479447740508185965837690552500527637822603658699938581184513", 10)

// MaxWidth is the largest bit-width a `u<N>`/`i<N>` type may declare.
const MaxWidth = 248

// StructField is a single struct/contract member: a name and its type.
type StructField struct {
	Name string
	Type *Type
}

// Type is one member of the lattice, tagged by Kind with the payload
// fields relevant to that kind populated.
type Type struct {
	Kind Kind

	Width int // UnsignedInt/SignedInt: 1..248

	Element  *Type    // Array
	Length   int64    // Array
	Elems    []*Type  // Tuple
	Fields   []StructField // Struct/Contract
	Name     string   // Struct/Enum/Contract/Fn
	Variants []string // Enum

	Params []*Type // Fn
	Result *Type   // Fn
}

func UnitType() *Type  { return &Type{Kind: Unit} }
func BoolType() *Type  { return &Type{Kind: Bool} }
func FieldType() *Type { return &Type{Kind: Field} }

// UintType returns the unsigned integer type of the given width.
func UintType(width int) *Type { return &Type{Kind: UnsignedInt, Width: width} }

// IntType returns the signed integer type of the given width.
func IntType(width int) *Type { return &Type{Kind: SignedInt, Width: width} }

func ArrayType(elem *Type, length int64) *Type {
	return &Type{Kind: Array, Element: elem, Length: length}
}

func TupleType(elems ...*Type) *Type { return &Type{Kind: Tuple, Elems: elems} }

func StructType(name string, fields []StructField) *Type {
	return &Type{Kind: Struct, Name: name, Fields: fields}
}

func EnumType(name string, variants []string) *Type {
	return &Type{Kind: Enum, Name: name, Variants: variants}
}

func ContractType(name string, fields []StructField) *Type {
	return &Type{Kind: Contract, Name: name, Fields: fields}
}

func FnType(params []*Type, result *Type) *Type {
	return &Type{Kind: Fn, Params: params, Result: result}
}

// IsInteger reports whether t is a sized signed or unsigned integer.
func (t *Type) IsInteger() bool { return t.Kind == UnsignedInt || t.Kind == SignedInt }

// IsNumeric reports whether arithmetic operators accept t.
func (t *Type) IsNumeric() bool { return t.IsInteger() || t.Kind == Field }

// Equal reports structural equality between two types.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case UnsignedInt, SignedInt:
		return t.Width == other.Width
	case Array:
		return t.Length == other.Length && t.Element.Equal(other.Element)
	case Tuple:
		if len(t.Elems) != len(other.Elems) {
			return false
		}
		for i := range t.Elems {
			if !t.Elems[i].Equal(other.Elems[i]) {
				return false
			}
		}
		return true
	case Struct, Enum, Contract:
		return t.Name == other.Name
	case Fn:
		if !t.Result.Equal(other.Result) || len(t.Params) != len(other.Params) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].Equal(other.Params[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (t *Type) String() string {
	switch t.Kind {
	case Unit:
		return "()"
	case Bool:
		return "bool"
	case Field:
		return "field"
	case UnsignedInt:
		return "u" + strconv.Itoa(t.Width)
	case SignedInt:
		return "i" + strconv.Itoa(t.Width)
	case Array:
		return "[" + t.Element.String() + "; " + strconv.FormatInt(t.Length, 10) + "]"
	case Tuple:
		s := "("
		for i, e := range t.Elems {
			if i > 0 {
				s += ", "
			}
			s += e.String()
		}
		return s + ")"
	case Struct, Enum, Contract:
		return t.Name
	case Fn:
		s := "fn("
		for i, p := range t.Params {
			if i > 0 {
				s += ", "
			}
			s += p.String()
		}
		s += ")"
		if t.Result != nil && t.Result.Kind != Unit {
			s += " -> " + t.Result.String()
		}
		return s
	}
	return "?"
}

// Bounds returns the inclusive/exclusive range [min, max) a value of
// an integer type may hold. Panics for
// non-integer types — callers must check IsInteger first.
func (t *Type) Bounds() (min, max *big.Int) {
	switch t.Kind {
	case UnsignedInt:
		max = new(big.Int).Lsh(big.NewInt(1), uint(t.Width))
		return big.NewInt(0), max
	case SignedInt:
		half := new(big.Int).Lsh(big.NewInt(1), uint(t.Width-1))
		min = new(big.Int).Neg(half)
		return min, half
	default:
		panic("types: Bounds called on a non-integer type")
	}
}

// InRange reports whether v satisfies t's declared range: the
// unsigned/signed bounds for integer types, or `0 <= v < p` for
// field.
func (t *Type) InRange(v *big.Int) bool {
	if t.Kind == Field {
		return v.Sign() >= 0 && v.Cmp(FieldModulus) < 0
	}
	min, max := t.Bounds()
	return v.Cmp(min) >= 0 && v.Cmp(max) < 0
}

// WordSize returns the number of data-stack words a value of type t
// occupies, in the row-major (arrays) / declared-order (tuples,
// structs) memory layout composites flatten to.
func WordSize(t *Type) int {
	switch t.Kind {
	case Unit:
		return 0
	case Array:
		return int(t.Length) * WordSize(t.Element)
	case Tuple:
		n := 0
		for _, e := range t.Elems {
			n += WordSize(e)
		}
		return n
	case Struct, Contract:
		n := 0
		for _, f := range t.Fields {
			n += WordSize(f.Type)
		}
		return n
	default:
		return 1
	}
}
