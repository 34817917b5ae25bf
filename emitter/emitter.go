// Package emitter implements Zinc's bytecode emitter: a
// single forward pass over the typed IR [semantic.Program] that
// lowers every construct to the fixed instruction set [bytecode]
// defines, and assembles the program's function table.
//
// Function addresses are only known once every function has been
// walked (a function may call one declared later in source order, or
// itself), so Call instructions are emitted with a placeholder Entry
// and backpatched once the whole program has been walked.
package emitter

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/dr8co/zinc/bytecode"
	"github.com/dr8co/zinc/semantic"
	"github.com/dr8co/zinc/types"
	"github.com/dr8co/zinc/vm"
)

// Error is an emission-time error: a bug-class
// failure that indicates the typed IR fed to the emitter violates an
// invariant the semantic analyzer was supposed to guarantee (e.g.
// mismatched branch stack effect). These should never surface from a
// program the analyzer accepted; they are reported rather than
// panicked so a caller can still produce a diagnostic.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

func errf(format string, args ...interface{}) *Error {
	return &Error{msg: errors.Errorf(format, args...).Error()}
}

type pendingCall struct {
	index  int
	callee *semantic.Function
}

type emitter struct {
	code     []bytecode.Instruction
	funcAddr map[*semantic.Function]uint32
	pending  []pendingCall
	err      *Error
}

// Emit lowers prog into a complete bytecode.Program. Callers must only
// invoke Emit on a Program with no outstanding semantic.Analyzer
// errors.
func Emit(prog *semantic.Program) (*bytecode.Program, error) {
	e := &emitter{funcAddr: make(map[*semantic.Function]uint32)}

	ordered := orderFunctions(prog.Functions)

	entries := make([]bytecode.FunctionEntry, 0, len(ordered))
	for _, fn := range ordered {
		addr := uint32(len(e.code))
		e.funcAddr[fn] = addr
		e.emitFunction(fn)
		if e.err != nil {
			return nil, e.err
		}
		entries = append(entries, bytecode.FunctionEntry{
			Name:      functionEntryName(fn),
			Address:   addr,
			InputSize: uint32(paramWordSize(fn)),
		})
	}

	for _, pc := range e.pending {
		addr, ok := e.funcAddr[pc.callee]
		if !ok {
			return nil, errf("emitter: call to unresolved function %q", pc.callee.Name)
		}
		e.code[pc.index].Entry = addr
	}

	inputDesc, err := inputDescriptor(ordered)
	if err != nil {
		return nil, err
	}

	return &bytecode.Program{
		Functions: entries,
		InputDesc: inputDesc,
		Code:      e.code,
	}, nil
}

// orderFunctions puts the function named "main" first, since the VM
// runs conventionally "function 0" as the program's entry point
// (vm/vm.go). Every other function keeps its declaration order.
func orderFunctions(fns []*semantic.Function) []*semantic.Function {
	ordered := make([]*semantic.Function, 0, len(fns))
	var main *semantic.Function
	for _, fn := range fns {
		if fn.Name == "main" && fn.GenericKey == "" && main == nil {
			main = fn
			continue
		}
		ordered = append(ordered, fn)
	}
	if main != nil {
		ordered = append([]*semantic.Function{main}, ordered...)
	}
	return ordered
}

func functionEntryName(fn *semantic.Function) string {
	if fn.GenericKey != "" {
		return fn.GenericKey
	}
	return fn.Name
}

func paramWordSize(fn *semantic.Function) int {
	n := 0
	for _, p := range fn.Params {
		n += types.WordSize(p.Type)
	}
	return n
}

func (e *emitter) emitFunction(fn *semantic.Function) {
	returned := e.emitStmts(fn.Body.Stmts)
	if returned {
		return
	}
	size := 0
	if fn.Body.Value != nil {
		e.emitExpr(fn.Body.Value)
		size = types.WordSize(fn.Body.Value.ExprType())
	}
	e.emit(bytecode.Instruction{Op: bytecode.OpReturn, OutputSize: uint32(size)})
}

// emitStmts emits a statement list and reports whether an explicit
// `return` was reached.
func (e *emitter) emitStmts(stmts []semantic.Stmt) bool {
	for _, s := range stmts {
		if e.emitStmt(s) {
			return true
		}
		if e.err != nil {
			return true
		}
	}
	return false
}

func (e *emitter) emitStmt(stmt semantic.Stmt) bool {
	switch s := stmt.(type) {
	case *semantic.LetStmt:
		e.emitExpr(s.Value)
		e.emit(bytecode.Instruction{Op: bytecode.OpStore, Addr: uint32(s.Addr), Size: uint32(types.WordSize(s.Type))})

	case *semantic.ExprStmt:
		e.emitExpr(s.Expr)
		if size := types.WordSize(s.Expr.ExprType()); size > 0 {
			e.emit(bytecode.Instruction{Op: bytecode.OpPop, Count: uint32(size)})
		}

	case *semantic.ForStmt:
		for i, body := range s.Bodies {
			iterVal := s.Start + int64(i)
			e.emit(bytecode.Instruction{
				Op:        bytecode.OpPush,
				Value:     bigFromInt64(iterVal),
				ValueType: bytecode.Type{Tag: bytecode.TagSigned, Width: 64},
			})
			e.emit(bytecode.Instruction{Op: bytecode.OpStore, Addr: uint32(s.IterAddr), Size: 1})
			if e.emitStmts(body.Stmts) {
				continue
			}
			if body.Value != nil {
				e.emitExpr(body.Value)
				if size := types.WordSize(body.Value.ExprType()); size > 0 {
					e.emit(bytecode.Instruction{Op: bytecode.OpPop, Count: uint32(size)})
				}
			}
		}

	case *semantic.ReturnStmt:
		size := 0
		if s.Value != nil {
			e.emitExpr(s.Value)
			size = types.WordSize(s.Value.ExprType())
		}
		e.emit(bytecode.Instruction{Op: bytecode.OpReturn, OutputSize: uint32(size)})
		return true

	default:
		e.err = errf("emitter: unsupported statement %T", stmt)
		return true
	}
	return false
}

func (e *emitter) emitExpr(expr semantic.Expr) {
	if e.err != nil {
		return
	}
	switch x := expr.(type) {
	case *semantic.ConstExpr:
		e.emit(bytecode.Instruction{Op: bytecode.OpPush, Value: x.Value, ValueType: typeTag(x.Type)})

	case *semantic.VarExpr:
		e.emit(bytecode.Instruction{Op: bytecode.OpLoad, Addr: uint32(x.Addr), Size: uint32(types.WordSize(x.Type))})

	case *semantic.BinaryExpr:
		e.emitExpr(x.Left)
		e.emitExpr(x.Right)
		e.emit(bytecode.Instruction{Op: binaryOpcode(x.Op)})

	case *semantic.UnaryExpr:
		e.emitExpr(x.Operand)
		if x.Op == "!" {
			e.emit(bytecode.Instruction{Op: bytecode.OpNot})
		} else {
			e.emit(bytecode.Instruction{Op: bytecode.OpNeg})
		}

	case *semantic.CastExpr:
		e.emitExpr(x.Operand)
		toType := typeTag(x.To)
		e.emit(bytecode.Instruction{
			Op:     bytecode.OpCast,
			ToTag:  toType.Tag,
			Signed: x.To.Kind == types.SignedInt,
			Width:  toType.Width,
		})

	case *semantic.IfExpr:
		e.emitIf(x)

	case *semantic.CallExpr:
		for _, arg := range x.Args {
			e.emitExpr(arg)
		}
		idx := len(e.code)
		e.emit(bytecode.Instruction{Op: bytecode.OpCall, InputSize: uint32(paramWordSize(x.Callee))})
		e.pending = append(e.pending, pendingCall{index: idx, callee: x.Callee})

	case *semantic.IndexExpr:
		base, ok := x.Base.(*semantic.VarExpr)
		if !ok {
			e.err = errf("emitter: index base must be a variable (got %T)", x.Base)
			return
		}
		elemSize := types.WordSize(x.Type)
		addr := base.Addr + int(x.Index)*elemSize
		e.emit(bytecode.Instruction{Op: bytecode.OpLoad, Addr: uint32(addr), Size: uint32(elemSize)})

	case *semantic.SliceExpr:
		base, ok := x.Base.(*semantic.VarExpr)
		if !ok {
			e.err = errf("emitter: slice base must be a variable (got %T)", x.Base)
			return
		}
		arrType := base.Type
		e.emit(bytecode.Instruction{Op: bytecode.OpLoadPushArray, Addr: uint32(base.Addr), Size: uint32(types.WordSize(arrType))})
		e.emit(bytecode.Instruction{
			Op:       bytecode.OpSlice,
			TotalLen: uint32(arrType.Length),
			SliceLen: uint32(x.High - x.Low),
			Offset:   uint32(x.Low),
		})

	case *semantic.ArrayExpr:
		for _, el := range x.Elements {
			e.emitExpr(el)
		}

	case *semantic.TupleExpr:
		for _, el := range x.Elements {
			e.emitExpr(el)
		}

	case *semantic.AssignExpr:
		e.emitExpr(x.Value)
		e.emit(bytecode.Instruction{Op: bytecode.OpStore, Addr: uint32(x.Addr), Size: uint32(x.Size)})

	case *semantic.BlockExpr:
		if e.emitStmts(x.Stmts) {
			return
		}
		if x.Value != nil {
			e.emitExpr(x.Value)
		}

	default:
		e.err = errf("emitter: unsupported expression %T", expr)
	}
}

// emitIf lowers a conditional expression to `<cond>; If; <then>;
// [Else; <else>;] EndIf`. Both branches must leave an
// identical stack effect — checked here by comparing each side's
// pushed word count against the IfExpr's own unified type, since a
// mismatch would mean the analyzer's type unification and the
// emitter's lowering have fallen out of step.
func (e *emitter) emitIf(x *semantic.IfExpr) {
	e.emitExpr(x.Cond)
	e.emit(bytecode.Instruction{Op: bytecode.OpIf})

	wantSize := types.WordSize(x.Type)

	thenSize := e.emitBranchBody(x.Then)
	if e.err != nil {
		return
	}
	if thenSize != wantSize {
		e.err = errf("emitter: if-branch stack effect %d does not match result type %s (%d words)", thenSize, x.Type, wantSize)
		return
	}

	if x.Else != nil {
		e.emit(bytecode.Instruction{Op: bytecode.OpElse})
		elseSize := e.emitBranchBody(x.Else)
		if e.err != nil {
			return
		}
		if elseSize != wantSize {
			e.err = errf("emitter: else-branch stack effect %d does not match result type %s (%d words)", elseSize, x.Type, wantSize)
			return
		}
	} else if wantSize != 0 {
		e.err = errf("emitter: if-expression without an else branch cannot yield a %s value", x.Type)
		return
	}

	e.emit(bytecode.Instruction{Op: bytecode.OpEndIf})
}

// emitBranchBody emits one branch's statements and trailing value,
// returning the number of words it pushes onto the evaluation stack.
// Both sides of a conditional execute straight-line, so an early
// `return` inside a branch has no lowering.
func (e *emitter) emitBranchBody(b *semantic.Block) int {
	if e.emitStmts(b.Stmts) {
		if e.err == nil {
			e.err = errf("emitter: return inside a conditional branch cannot be lowered")
		}
		return 0
	}
	if b.Value == nil {
		return 0
	}
	e.emitExpr(b.Value)
	return types.WordSize(b.Value.ExprType())
}

func (e *emitter) emit(ins bytecode.Instruction) {
	e.code = append(e.code, ins)
}

func typeTag(t *types.Type) bytecode.Type {
	switch t.Kind {
	case types.Bool:
		return bytecode.Type{Tag: bytecode.TagBool}
	case types.UnsignedInt:
		return bytecode.Type{Tag: bytecode.TagUnsigned, Width: uint16(t.Width)}
	case types.SignedInt:
		return bytecode.Type{Tag: bytecode.TagSigned, Width: uint16(t.Width)}
	case types.Field:
		return bytecode.Type{Tag: bytecode.TagField}
	default:
		return bytecode.Type{Tag: bytecode.TagUnit}
	}
}

func binaryOpcode(op string) bytecode.Opcode {
	switch op {
	case "+":
		return bytecode.OpAdd
	case "-":
		return bytecode.OpSub
	case "*":
		return bytecode.OpMul
	case "/":
		return bytecode.OpDiv
	case "%":
		return bytecode.OpRem
	case "&&":
		return bytecode.OpAnd
	case "||":
		return bytecode.OpOr
	case "^":
		return bytecode.OpXor
	case "==":
		return bytecode.OpEq
	case "!=":
		return bytecode.OpNe
	case "<":
		return bytecode.OpLt
	case "<=":
		return bytecode.OpLe
	case ">":
		return bytecode.OpGt
	case ">=":
		return bytecode.OpGe
	default:
		return bytecode.OpExit // unreachable for analyzer-accepted IR
	}
}

func bigFromInt64(v int64) *big.Int { return big.NewInt(v) }

// inputDescriptor builds the entry function's witness shape: one
// field per top-level parameter, in declaration order. Composite
// parameters are described by their own element type's tag — the
// witness JSON itself still carries one leaf value per word; see
// vm.DecodeWitness for the scalar case this covers fully.
func inputDescriptor(fns []*semantic.Function) ([]byte, error) {
	if len(fns) == 0 {
		return vm.EncodeInputDesc(nil)
	}
	entry := fns[0]
	fields := make([]vm.InputField, 0, len(entry.Params))
	for _, p := range entry.Params {
		tag := typeTag(p.Type)
		fields = append(fields, vm.InputField{Name: p.Name, Type: tag.Tag, Width: tag.Width})
	}
	return vm.EncodeInputDesc(fields)
}
