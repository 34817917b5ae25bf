package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders p's function table and code stream as assembly
// text, one `%04d OpName operands...` line per instruction, operands
// rendered per opcode.
func (p *Program) Disassemble() string {
	var out strings.Builder

	for _, fn := range p.Functions {
		fmt.Fprintf(&out, "fn %s @%d (input_size=%d)\n", fn.Name, fn.Address, fn.InputSize)
	}
	if len(p.Functions) > 0 {
		out.WriteString("\n")
	}

	for i, ins := range p.Code {
		fmt.Fprintf(&out, "%04d %s\n", i, formatInstruction(ins))
	}
	return out.String()
}

func formatInstruction(ins Instruction) string {
	switch ins.Op {
	case OpPush:
		return fmt.Sprintf("Push %s %s", ins.Value.String(), formatType(ins.ValueType))
	case OpPop:
		return fmt.Sprintf("Pop %d", ins.Count)
	case OpLoad:
		return fmt.Sprintf("Load %d %d", ins.Addr, ins.Size)
	case OpStore:
		return fmt.Sprintf("Store %d %d", ins.Addr, ins.Size)
	case OpCast:
		if ins.ToTag == TagField {
			return "Cast field"
		}
		return fmt.Sprintf("Cast signed=%v %d", ins.Signed, ins.Width)
	case OpLoopBegin:
		return fmt.Sprintf("LoopBegin %d", ins.Count)
	case OpCall:
		return fmt.Sprintf("Call %d %d", ins.Entry, ins.InputSize)
	case OpReturn:
		return fmt.Sprintf("Return %d", ins.OutputSize)
	case OpSlice:
		return fmt.Sprintf("Slice %d %d %d", ins.TotalLen, ins.SliceLen, ins.Offset)
	case OpLoadPushArray:
		return fmt.Sprintf("LoadPushArray %d %d", ins.Addr, ins.Size)
	default:
		return ins.Op.String()
	}
}

func formatType(t Type) string {
	switch t.Tag {
	case TagUnit:
		return "()"
	case TagBool:
		return "bool"
	case TagField:
		return "field"
	case TagUnsigned:
		return fmt.Sprintf("u%d", t.Width)
	case TagSigned:
		return fmt.Sprintf("i%d", t.Width)
	}
	return "?"
}
