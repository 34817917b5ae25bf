package vm

import (
	"math/big"

	"github.com/dr8co/zinc/bytecode"
)

// Value is a runtime value on either the evaluation stack or the
// data stack: a big-integer payload tagged with its bytecode-level
// type. Booleans are represented as 0/1 under TagBool so comparison
// and branch instructions share the same integer machinery as
// arithmetic ones.
type Value struct {
	Type bytecode.Type
	Int  *big.Int
}

func boolValue(b bool) Value {
	if b {
		return Value{Type: bytecode.Type{Tag: bytecode.TagBool}, Int: big.NewInt(1)}
	}
	return Value{Type: bytecode.Type{Tag: bytecode.TagBool}, Int: big.NewInt(0)}
}

func (v Value) truthy() bool {
	return v.Int != nil && v.Int.Sign() != 0
}

// String renders a Value for display: `true`/`false` for TagBool,
// otherwise its integer payload in decimal.
func (v Value) String() string {
	if v.Type.Tag == bytecode.TagBool {
		if v.truthy() {
			return "true"
		}
		return "false"
	}
	if v.Int == nil {
		return "0"
	}
	return v.Int.String()
}
