package vm

import "github.com/dr8co/zinc/bytecode"

// execCall pops the callee's arguments off the evaluation stack (in
// declaration order — the first-pushed argument sits deepest, mirroring
// OpStore's addressing), gives them a fresh region of the data stack as
// the new frame's base, and pushes a frame that resumes the caller at
// the Call instruction's own address once the callee returns.
func (vm *VM) execCall(ins bytecode.Instruction) error {
	args := make([]Value, ins.InputSize)
	for i := int(ins.InputSize) - 1; i >= 0; i-- {
		v, err := vm.pop()
		if err != nil {
			return err
		}
		args[i] = v
	}
	callerIP := vm.ip()
	basePointer := len(vm.data)
	for i, v := range args {
		vm.commitData(basePointer+i, v)
	}
	return vm.pushFrame(NewFrame(int(ins.Entry), basePointer, callerIP))
}

// execReturn pops the callee's declared output values, tears down its
// frame, pushes the results back onto the caller's evaluation stack,
// and resumes the caller at the instruction after its Call. Returning
// with an If still open would tear down the frame mid-branch, so it
// is a fatal structural error.
func (vm *VM) execReturn(ins bytecode.Instruction) error {
	if len(vm.branches) > vm.currentFrame().branchBase {
		return fault(vm.ip(), ErrBranchMalformed, "Return inside an open branch")
	}
	results := make([]Value, ins.OutputSize)
	for i := int(ins.OutputSize) - 1; i >= 0; i-- {
		v, err := vm.pop()
		if err != nil {
			return err
		}
		results[i] = v
	}
	returned := vm.popFrame()
	for _, v := range results {
		vm.push(v)
	}
	if vm.framesIdx > 0 {
		vm.currentFrame().ip = returned.returnIP
	}
	return nil
}

// execSlice pops a TotalLen-element array off the evaluation stack
// (element 0 pushed first, deepest) and pushes back only the
// SliceLen-element window starting at Offset, in the same order.
// Offset+SliceLen exceeding TotalLen is a bounds error rather than a
// silent clamp, matching the index instructions' bounds behavior.
func (vm *VM) execSlice(ins bytecode.Instruction) error {
	if ins.Offset+ins.SliceLen > ins.TotalLen {
		return fault(vm.ip(), ErrIndexOutOfBounds, "slice range exceeds array length")
	}
	elems := make([]Value, ins.TotalLen)
	for i := int(ins.TotalLen) - 1; i >= 0; i-- {
		v, err := vm.pop()
		if err != nil {
			return err
		}
		elems[i] = v
	}
	window := elems[ins.Offset : ins.Offset+ins.SliceLen]
	for _, v := range window {
		vm.push(v)
	}
	return nil
}
