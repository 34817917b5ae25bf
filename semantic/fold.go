package semantic

import (
	"math/big"

	"github.com/dr8co/zinc/types"
)

// foldBinary evaluates a binary operator over two known constant
// operands at compile time, mirroring vm/arith.go's execBinary exactly
// so folding a subexpression never disagrees with what the VM would
// compute for the same values at runtime. t is the shared operand
// type for arithmetic/bitwise ops; comparisons and logical ops always
// yield bool regardless of t.
func foldBinary(op string, left, right *big.Int, t *types.Type) (*big.Int, *types.Type, error) {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		c := left.Cmp(right)
		var b bool
		switch op {
		case "==":
			b = c == 0
		case "!=":
			b = c != 0
		case "<":
			b = c < 0
		case "<=":
			b = c <= 0
		case ">":
			b = c > 0
		default:
			b = c >= 0
		}
		return boolToBig(b), types.BoolType(), nil
	case "&&", "||":
		l, r := left.Sign() != 0, right.Sign() != 0
		var b bool
		if op == "&&" {
			b = l && r
		} else {
			b = l || r
		}
		return boolToBig(b), types.BoolType(), nil
	}

	result := new(big.Int)
	switch op {
	case "+":
		result.Add(left, right)
	case "-":
		result.Sub(left, right)
	case "*":
		result.Mul(left, right)
	case "&":
		result.And(left, right)
	case "|":
		result.Or(left, right)
	case "^":
		result.Xor(left, right)
	case "/", "%":
		if right.Sign() == 0 {
			return nil, nil, errDivisionByZero
		}
		quot, rem := new(big.Int), new(big.Int)
		quot.DivMod(left, right, rem)
		if op == "/" {
			result = quot
		} else {
			result = rem
		}
	default:
		return nil, nil, errUnknownOp(op)
	}

	if err := rangeCheck(t, result); err != nil {
		return nil, nil, err
	}
	return result, t, nil
}

// foldUnary evaluates `-x`/`!x` on a known constant operand.
func foldUnary(op string, v *big.Int, t *types.Type) (*big.Int, error) {
	switch op {
	case "-":
		result := new(big.Int).Neg(v)
		if err := rangeCheck(t, result); err != nil {
			return nil, err
		}
		return result, nil
	case "!":
		return boolToBig(v.Sign() == 0), nil
	}
	return nil, errUnknownOp(op)
}

// foldCast reinterprets v under to's width/signedness, truncating or
// sign-extending exactly the way vm.execCast does at runtime.
func foldCast(v *big.Int, to *types.Type) *big.Int {
	if to.Kind == types.Field {
		out := new(big.Int).Mod(v, types.FieldModulus)
		if out.Sign() < 0 {
			out.Add(out, types.FieldModulus)
		}
		return out
	}
	if !to.IsInteger() {
		return v
	}
	mod := new(big.Int).Lsh(big.NewInt(1), uint(to.Width))
	truncated := new(big.Int).Mod(v, mod)
	if truncated.Sign() < 0 {
		truncated.Add(truncated, mod)
	}
	if to.Kind == types.SignedInt {
		half := new(big.Int).Lsh(big.NewInt(1), uint(to.Width-1))
		if truncated.Cmp(half) >= 0 {
			truncated.Sub(truncated, mod)
		}
	}
	return truncated
}

// rangeCheck validates v against t's declared bit width, wrapping
// field values modulo the field prime rather than erroring.
func rangeCheck(t *types.Type, v *big.Int) error {
	if t == nil {
		return nil
	}
	if t.Kind == types.Field {
		if v.Sign() < 0 || v.Cmp(types.FieldModulus) >= 0 {
			v.Mod(v, types.FieldModulus)
			if v.Sign() < 0 {
				v.Add(v, types.FieldModulus)
			}
		}
		return nil
	}
	if t.IsInteger() && !t.InRange(v) {
		return errConstOverflow(t, v)
	}
	return nil
}

func boolToBig(b bool) *big.Int {
	if b {
		return big.NewInt(1)
	}
	return big.NewInt(0)
}

type foldError struct{ msg string }

func (e *foldError) Error() string { return e.msg }

var errDivisionByZero = &foldError{"division by zero in a constant expression"}

func errUnknownOp(op string) error { return &foldError{"unsupported constant operator " + op} }

func errConstOverflow(t *types.Type, v *big.Int) error {
	return &foldError{"value " + v.String() + " out of range for " + t.String()}
}
