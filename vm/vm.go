// Package vm implements Zinc's stack-based virtual machine: an
// evaluation stack, a random-access per-frame data stack, a frame
// stack for call bookkeeping, and a branch-state stack that gives
// conditional execution its "both sides run, merge at EndIf"
// discipline — the shape a zero-knowledge witness generator needs
// from a straight-line trace.
package vm

import (
	"math/big"

	"github.com/dr8co/zinc/bytecode"
	"github.com/pkg/errors"
)

const maxFrames = 1024
const maxDataWords = 1 << 20

// branchFrame is the bookkeeping attached to one open
// If/Else/EndIf triple. Both sides of the branch execute against the
// same starting data-stack contents; writes are buffered per side and
// merged — conditionally selected by cond — when EndIf closes the
// frame. Evaluation-stack growth during each side is buffered the
// same way and muxed at EndIf.
//
// Nested branches each get their own frame; a write inside an inner
// branch is recorded only against that innermost frame, which is
// sufficient for single-level if/else programs and keeps the merge
// rule simple: an outer branch sees the inner branch's already-merged
// result as an ordinary write.
type branchFrame struct {
	cond     bool
	onElse   bool
	evalBase int

	orig        map[int]Value // addr -> pre-branch value, first touch wins
	thenWrites  map[int]Value // writes committed while on the then-side
	writes      map[int]Value // writes accumulating on the current side
	thenResults []Value       // eval-stack growth captured at Else (or EndIf if no Else)
}

// VM executes a compiled Program against an optional witness.
type VM struct {
	program *bytecode.Program

	eval []Value
	data []Value

	frames    []*Frame
	framesIdx int

	branches []*branchFrame
}

// New creates a VM ready to run program starting at its first
// function's entry point (conventionally function 0, `main`).
func New(program *bytecode.Program) *VM {
	return &VM{program: program}
}

func (vm *VM) currentFrame() *Frame { return vm.frames[vm.framesIdx-1] }

func (vm *VM) pushFrame(f *Frame) error {
	if vm.framesIdx >= maxFrames {
		return fault(vm.ip(), ErrStackUnderflow, "frame stack overflow")
	}
	f.branchBase = len(vm.branches)
	if vm.framesIdx == len(vm.frames) {
		vm.frames = append(vm.frames, f)
	} else {
		vm.frames[vm.framesIdx] = f
	}
	vm.framesIdx++
	return nil
}

func (vm *VM) popFrame() *Frame {
	vm.framesIdx--
	return vm.frames[vm.framesIdx]
}

func (vm *VM) ip() int {
	if vm.framesIdx == 0 {
		return -1
	}
	return vm.currentFrame().ip
}

// Run executes the program's entry function (conventionally function
// 0, `main`) to completion with args seeded onto the data stack at
// base 0, and returns whatever values remain on the evaluation stack
// (the function's declared outputs, in push order).
func (vm *VM) Run(args []Value) ([]Value, error) {
	if len(vm.program.Functions) == 0 {
		return nil, errors.New("vm: program has no functions")
	}
	entry := vm.program.Functions[0]
	if uint32(len(args)) != entry.InputSize {
		return nil, errors.Errorf("vm: entry function expects %d inputs, got %d", entry.InputSize, len(args))
	}
	for i, v := range args {
		if err := vm.ensureData(i); err != nil {
			return nil, err
		}
		vm.data[i] = v
	}
	if err := vm.pushFrame(NewFrame(int(entry.Address), 0, len(vm.program.Code))); err != nil {
		return nil, err
	}

	for vm.framesIdx > 0 {
		frame := vm.currentFrame()
		frame.ip++
		if frame.ip >= len(vm.program.Code) {
			break
		}
		ins := vm.program.Code[frame.ip]

		if err := vm.exec(ins); err != nil {
			return nil, err
		}
		if ins.Op == bytecode.OpExit {
			break
		}
	}
	return vm.eval, nil
}

func (vm *VM) exec(ins bytecode.Instruction) error {
	frame := vm.currentFrame()

	switch ins.Op {
	case bytecode.OpPush:
		vm.push(Value{Type: ins.ValueType, Int: new(big.Int).Set(ins.Value)})

	case bytecode.OpPop:
		for i := uint32(0); i < ins.Count; i++ {
			if _, err := vm.pop(); err != nil {
				return err
			}
		}

	case bytecode.OpLoad:
		for i := uint32(0); i < ins.Size; i++ {
			v, err := vm.readData(frame.basePointer + int(ins.Addr) + int(i))
			if err != nil {
				return err
			}
			vm.push(v)
		}

	case bytecode.OpStore:
		vals := make([]Value, ins.Size)
		for i := int(ins.Size) - 1; i >= 0; i-- {
			v, err := vm.pop()
			if err != nil {
				return err
			}
			vals[i] = v
		}
		for i, v := range vals {
			vm.writeData(frame.basePointer+int(ins.Addr)+i, v)
		}

	case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpRem,
		bytecode.OpAnd, bytecode.OpOr, bytecode.OpXor,
		bytecode.OpEq, bytecode.OpNe, bytecode.OpLt, bytecode.OpLe, bytecode.OpGt, bytecode.OpGe:
		return vm.execBinary(ins.Op)

	case bytecode.OpNeg:
		return vm.execNeg()

	case bytecode.OpNot:
		return vm.execNot()

	case bytecode.OpCast:
		return vm.execCast(ins)

	case bytecode.OpIf:
		return vm.execIf()

	case bytecode.OpElse:
		return vm.execElse()

	case bytecode.OpEndIf:
		return vm.execEndIf()

	case bytecode.OpLoopBegin, bytecode.OpLoopEnd:
		// The emitter never produces these: for-loop bounds must be
		// constants and every loop is unrolled before emission. When a
		// program carries them anyway, the VM skips them as no-ops.

	case bytecode.OpCall:
		return vm.execCall(ins)

	case bytecode.OpReturn:
		return vm.execReturn(ins)

	case bytecode.OpSlice:
		return vm.execSlice(ins)

	case bytecode.OpLoadPushArray:
		for i := uint32(0); i < ins.Size; i++ {
			v, err := vm.readData(frame.basePointer + int(ins.Addr) + int(i))
			if err != nil {
				return err
			}
			vm.push(v)
		}

	case bytecode.OpExit:
		vm.framesIdx = 0

	default:
		return fault(frame.ip, ErrInvalidInstruction, ins.Op.String())
	}
	return nil
}

func (vm *VM) push(v Value) { vm.eval = append(vm.eval, v) }

func (vm *VM) pop() (Value, error) {
	if len(vm.eval) == 0 {
		return Value{}, fault(vm.ip(), ErrStackUnderflow, "evaluation stack")
	}
	v := vm.eval[len(vm.eval)-1]
	vm.eval = vm.eval[:len(vm.eval)-1]
	return v, nil
}

func (vm *VM) ensureData(idx int) error {
	if idx < 0 || idx >= maxDataWords {
		return fault(vm.ip(), ErrIndexOutOfBounds, "data stack address out of range")
	}
	for idx >= len(vm.data) {
		vm.data = append(vm.data, Value{})
	}
	return nil
}

func (vm *VM) readData(idx int) (Value, error) {
	if err := vm.ensureData(idx); err != nil {
		return Value{}, err
	}
	return vm.data[idx], nil
}

func (vm *VM) writeData(idx int, v Value) {
	_ = vm.ensureData(idx)
	if len(vm.branches) > 0 {
		vm.recordBranchWrite(idx, v)
		return
	}
	vm.data[idx] = v
}
