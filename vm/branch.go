package vm

// execIf pops the condition and opens a new branchFrame. Both the
// then-side and (if present) else-side execute unconditionally from
// here; writeData buffers their data-stack writes instead of applying
// them, so a zero-knowledge backend can later express the merge as a
// constant-time multiplexer rather than a data-dependent branch.
func (vm *VM) execIf() error {
	cond, err := vm.pop()
	if err != nil {
		return err
	}
	vm.branches = append(vm.branches, &branchFrame{
		cond:     cond.truthy(),
		evalBase: len(vm.eval),
		orig:     make(map[int]Value),
	})
	return nil
}

// execElse closes out the then-side: its eval-stack growth beyond
// evalBase is captured as thenResults and popped back off, restoring
// the stack to its pre-branch depth so the else-side starts from the
// same baseline. The then-side's accumulated writes move into
// thenWrites and a fresh buffer opens for the else-side.
func (vm *VM) execElse() error {
	bf := vm.currentBranch()
	if bf == nil || bf.onElse {
		return fault(vm.ip(), ErrBranchMalformed, "Else without matching If")
	}
	bf.thenResults = append([]Value(nil), vm.eval[bf.evalBase:]...)
	vm.eval = vm.eval[:bf.evalBase]

	bf.thenWrites = bf.writes
	bf.writes = nil
	bf.onElse = true
	return nil
}

// execEndIf closes the innermost branch frame, selecting the
// then-side or else-side outcome according to cond. Eval-stack
// results from the winning side are pushed back; the losing side's
// are discarded. Every address either side wrote gets cond-selected
// between its buffered value and the pre-branch original, then
// written through writeData: straight to the data stack, or into the
// enclosing branch's buffer when this branch is nested.
func (vm *VM) execEndIf() error {
	bf := vm.currentBranch()
	if bf == nil || len(vm.branches) <= vm.currentFrame().branchBase {
		return fault(vm.ip(), ErrBranchMalformed, "EndIf without matching If")
	}
	vm.branches = vm.branches[:len(vm.branches)-1]

	var elseWrites map[int]Value
	var elseResults []Value
	if bf.onElse {
		elseResults = append([]Value(nil), vm.eval[bf.evalBase:]...)
		vm.eval = vm.eval[:bf.evalBase]
		elseWrites = bf.writes
	} else {
		// No else clause: the then-side's results and writes are what
		// an absent else branch leaves unchanged.
		bf.thenResults = append([]Value(nil), vm.eval[bf.evalBase:]...)
		vm.eval = vm.eval[:bf.evalBase]
		bf.thenWrites = bf.writes
		elseResults = bf.thenResults
		elseWrites = nil
	}

	if bf.cond {
		vm.eval = append(vm.eval, bf.thenResults...)
	} else {
		vm.eval = append(vm.eval, elseResults...)
	}

	touched := make(map[int]struct{}, len(bf.thenWrites)+len(elseWrites))
	for addr := range bf.thenWrites {
		touched[addr] = struct{}{}
	}
	for addr := range elseWrites {
		touched[addr] = struct{}{}
	}

	for addr := range touched {
		chosen := bf.orig[addr]
		if bf.cond {
			if v, ok := bf.thenWrites[addr]; ok {
				chosen = v
			}
		} else if v, ok := elseWrites[addr]; ok {
			chosen = v
		}
		vm.writeData(addr, chosen)
	}
	return nil
}

func (vm *VM) currentBranch() *branchFrame {
	if len(vm.branches) == 0 {
		return nil
	}
	return vm.branches[len(vm.branches)-1]
}

// recordBranchWrite buffers a data-stack write against the innermost
// open branch frame instead of applying it immediately, remembering
// the address's pre-branch value the first time it's touched so
// execEndIf can fall back to it for whichever side didn't write it.
func (vm *VM) recordBranchWrite(idx int, v Value) {
	bf := vm.currentBranch()
	if _, seen := bf.orig[idx]; !seen {
		bf.orig[idx] = vm.data[idx]
	}
	if bf.writes == nil {
		bf.writes = make(map[int]Value)
	}
	bf.writes[idx] = v
}

// commitData writes directly to the data stack, bypassing branch
// buffering — used only by execCall to place a callee's arguments.
func (vm *VM) commitData(idx int, v Value) {
	_ = vm.ensureData(idx)
	vm.data[idx] = v
}
