package vm

import (
	"math/big"
	"strconv"

	"github.com/pkg/errors"

	"github.com/dr8co/zinc/bytecode"
	"github.com/dr8co/zinc/types"
)

// execBinary pops the right then left operand (the left was pushed
// first, so it sits one deeper — the usual "[a, b] -> [a op b]" stack
// convention), applies op, range-checks the result against the operand type for
// arithmetic/bitwise ops, and pushes it back.
func (vm *VM) execBinary(op bytecode.Opcode) error {
	right, err := vm.pop()
	if err != nil {
		return err
	}
	left, err := vm.pop()
	if err != nil {
		return err
	}
	if left.Type.Tag != right.Type.Tag || left.Type.Width != right.Type.Width {
		return fault(vm.ip(), ErrTypeMismatch, "binary operand types differ")
	}

	switch op {
	case bytecode.OpEq, bytecode.OpNe, bytecode.OpLt, bytecode.OpLe, bytecode.OpGt, bytecode.OpGe:
		vm.push(compare(op, left, right))
		return nil
	}

	result := new(big.Int)
	switch op {
	case bytecode.OpAdd:
		result.Add(left.Int, right.Int)
	case bytecode.OpSub:
		result.Sub(left.Int, right.Int)
	case bytecode.OpMul:
		result.Mul(left.Int, right.Int)
	case bytecode.OpAnd:
		result.And(left.Int, right.Int)
	case bytecode.OpOr:
		result.Or(left.Int, right.Int)
	case bytecode.OpXor:
		result.Xor(left.Int, right.Int)
	case bytecode.OpDiv, bytecode.OpRem:
		if right.Int.Sign() == 0 {
			return fault(vm.ip(), ErrDivisionByZero, "")
		}
		// Euclidean division/modulus (math/big.Int.DivMod): the
		// quotient pairs with a remainder in [0, |divisor|), so
		// `a = (a/b)*b + (a%b)` holds for every sign combination and
		// Rem over (9,4) (9,-4) (-9,4) (-9,-4) yields 1, 1, 3, 3.
		quot := new(big.Int)
		rem := new(big.Int)
		quot.DivMod(left.Int, right.Int, rem)
		if op == bytecode.OpDiv {
			result = quot
		} else {
			result = rem
		}
	default:
		return fault(vm.ip(), ErrInvalidInstruction, op.String())
	}

	if err := checkRange(left.Type, result); err != nil {
		return fault(vm.ip(), ErrOverflow, err.Error())
	}
	vm.push(Value{Type: left.Type, Int: result})
	return nil
}

func compare(op bytecode.Opcode, left, right Value) Value {
	c := left.Int.Cmp(right.Int)
	switch op {
	case bytecode.OpEq:
		return boolValue(c == 0)
	case bytecode.OpNe:
		return boolValue(c != 0)
	case bytecode.OpLt:
		return boolValue(c < 0)
	case bytecode.OpLe:
		return boolValue(c <= 0)
	case bytecode.OpGt:
		return boolValue(c > 0)
	default: // OpGe
		return boolValue(c >= 0)
	}
}

func (vm *VM) execNeg() error {
	v, err := vm.pop()
	if err != nil {
		return err
	}
	result := new(big.Int).Neg(v.Int)
	if err := checkRange(v.Type, result); err != nil {
		return fault(vm.ip(), ErrOverflow, err.Error())
	}
	vm.push(Value{Type: v.Type, Int: result})
	return nil
}

func (vm *VM) execNot() error {
	v, err := vm.pop()
	if err != nil {
		return err
	}
	if v.Type.Tag != bytecode.TagBool {
		return fault(vm.ip(), ErrTypeMismatch, "Not requires a bool operand")
	}
	vm.push(boolValue(!v.truthy()))
	return nil
}

// execCast reinterprets the popped operand under the instruction's
// target width/signedness: narrowing truncates to the low bits,
// widening sign- or zero-extends.
func (vm *VM) execCast(ins bytecode.Instruction) error {
	v, err := vm.pop()
	if err != nil {
		return err
	}

	if ins.ToTag == bytecode.TagField {
		reduced := new(big.Int).Mod(v.Int, types.FieldModulus)
		vm.push(Value{Type: bytecode.Type{Tag: bytecode.TagField}, Int: reduced})
		return nil
	}

	mod := new(big.Int).Lsh(big.NewInt(1), uint(ins.Width))
	truncated := new(big.Int).Mod(v.Int, mod)

	tag := bytecode.TagUnsigned
	if ins.Signed {
		tag = bytecode.TagSigned
		half := new(big.Int).Lsh(big.NewInt(1), uint(ins.Width-1))
		if truncated.Cmp(half) >= 0 {
			truncated.Sub(truncated, mod)
		}
	}
	vm.push(Value{Type: bytecode.Type{Tag: tag, Width: ins.Width}, Int: truncated})
	return nil
}

// checkRange validates a result against t's declared bit width or the
// field modulus.
func checkRange(t bytecode.Type, v *big.Int) error {
	switch t.Tag {
	case bytecode.TagField:
		if v.Sign() < 0 || v.Cmp(types.FieldModulus) >= 0 {
			v.Mod(v, types.FieldModulus)
		}
		return nil
	case bytecode.TagUnsigned:
		max := new(big.Int).Lsh(big.NewInt(1), uint(t.Width))
		if v.Sign() < 0 || v.Cmp(max) >= 0 {
			return errOverflow(t, v)
		}
	case bytecode.TagSigned:
		half := new(big.Int).Lsh(big.NewInt(1), uint(t.Width-1))
		min := new(big.Int).Neg(half)
		if v.Cmp(min) < 0 || v.Cmp(half) >= 0 {
			return errOverflow(t, v)
		}
	}
	return nil
}

func errOverflow(t bytecode.Type, v *big.Int) error {
	return errors.New("value " + v.String() + " out of range for " + typeString(t))
}

// typeString renders a bytecode.Type the way diagnostics want it
// (`u32`, `i8`, `field`, `bool`), independent of bytecode.Disassemble's
// unexported formatter.
func typeString(t bytecode.Type) string {
	switch t.Tag {
	case bytecode.TagUnit:
		return "()"
	case bytecode.TagBool:
		return "bool"
	case bytecode.TagField:
		return "field"
	case bytecode.TagUnsigned:
		return "u" + strconv.Itoa(int(t.Width))
	case bytecode.TagSigned:
		return "i" + strconv.Itoa(int(t.Width))
	}
	return "?"
}
