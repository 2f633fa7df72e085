package ir

import (
	"tlog.app/go/errors"

	"ebbir/internal/immediates"
	"ebbir/internal/types"
)

// FuncBuilder appends instructions to a function one EBB at a time.
//
// The first fatal error sticks: every later call does nothing and returns
// zero values, and Finish returns the error. A function whose builder failed
// must be discarded.
type FuncBuilder struct {
	fn      *Function
	current Ebb
	placed  bool
	err     error
}

// NewFuncBuilder starts a new function.
func NewFuncBuilder(name ExternalName, sig Signature) *FuncBuilder {
	return &FuncBuilder{fn: NewFunction(name, sig)}
}

// BuilderFor continues building an existing function.
func BuilderFor(f *Function) *FuncBuilder {
	return &FuncBuilder{fn: f}
}

// Func returns the function under construction.
func (b *FuncBuilder) Func() *Function { return b.fn }

// Err returns the sticky error.
func (b *FuncBuilder) Err() error { return b.err }

// Finish returns the function, or the first fatal error.
func (b *FuncBuilder) Finish() (*Function, error) {
	if b.err != nil {
		return nil, b.err
	}

	return b.fn, nil
}

func (b *FuncBuilder) fail(err error) bool {
	if err != nil && b.err == nil {
		b.err = err
	}

	return b.err != nil
}

// CreateEbb appends a new EBB to the layout.
func (b *FuncBuilder) CreateEbb() Ebb {
	if b.err != nil {
		return 0
	}

	ebb, err := b.fn.AppendEbb()
	b.fail(err)

	return ebb
}

// Param appends a parameter to ebb.
func (b *FuncBuilder) Param(ebb Ebb, t types.Type) Value {
	if b.err != nil {
		return 0
	}

	v, err := b.fn.AppendEbbParam(ebb, t)
	b.fail(err)

	return v
}

// EntryParams gives ebb one parameter per signature parameter.
func (b *FuncBuilder) EntryParams(ebb Ebb) []Value {
	var vs []Value

	for _, p := range b.fn.Signature.Params {
		vs = append(vs, b.Param(ebb, p.Type))
	}

	return vs
}

// SwitchToEbb makes ebb the target of subsequent instructions.
func (b *FuncBuilder) SwitchToEbb(ebb Ebb) {
	b.current = ebb
	b.placed = true
}

// Ins appends an arbitrary instruction to the current EBB.
func (b *FuncBuilder) Ins(data InstructionData, ctrl types.Type) (Inst, []Value) {
	if b.err != nil {
		return 0, nil
	}

	if !b.placed {
		b.fail(errors.Wrap(ErrNotInLayout, "no current ebb for %v", data.Opcode))
		return 0, nil
	}

	inst, results, err := b.fn.AppendInst(b.current, data, ctrl)
	if b.fail(err) {
		return 0, nil
	}

	return inst, results
}

func (b *FuncBuilder) single(data InstructionData, ctrl types.Type) Value {
	_, results := b.Ins(data, ctrl)
	if len(results) == 0 {
		return 0
	}

	return results[0]
}

// Preamble

func (b *FuncBuilder) StackSlot(kind StackSlotKind, size uint32) StackSlot {
	if b.err != nil {
		return 0
	}

	ss, err := b.fn.CreateStackSlot(StackSlotData{Kind: kind, Size: size})
	b.fail(err)

	return ss
}

func (b *FuncBuilder) GlobalVar(data GlobalVarData) GlobalVar {
	if b.err != nil {
		return 0
	}

	gv, err := b.fn.CreateGlobalVar(data)
	b.fail(err)

	return gv
}

func (b *FuncBuilder) Heap(data HeapData) Heap {
	if b.err != nil {
		return 0
	}

	h, err := b.fn.CreateHeap(data)
	b.fail(err)

	return h
}

func (b *FuncBuilder) ImportSignature(sig Signature) SigRef {
	if b.err != nil {
		return 0
	}

	ref, err := b.fn.ImportSignature(sig)
	b.fail(err)

	return ref
}

func (b *FuncBuilder) ImportFunction(name ExternalName, sig SigRef) FuncRef {
	if b.err != nil {
		return 0
	}

	ref, err := b.fn.ImportFunction(ExtFuncData{Name: name, Signature: sig})
	b.fail(err)

	return ref
}

func (b *FuncBuilder) JumpTable(entries ...Ebb) JumpTable {
	if b.err != nil {
		return 0
	}

	jt, err := b.fn.CreateJumpTable(JumpTableData{Entries: entries})
	b.fail(err)

	return jt
}

// Constants

func (b *FuncBuilder) Iconst(t types.Type, imm int64) Value {
	return b.single(InstructionData{Opcode: OpIconst, Imm: immediates.Imm64(imm)}, t)
}

func (b *FuncBuilder) F32const(x immediates.Ieee32) Value {
	return b.single(InstructionData{Opcode: OpF32const, Ieee32: x}, types.Invalid)
}

func (b *FuncBuilder) F64const(x immediates.Ieee64) Value {
	return b.single(InstructionData{Opcode: OpF64const, Ieee64: x}, types.Invalid)
}

func (b *FuncBuilder) Bconst(t types.Type, x bool) Value {
	return b.single(InstructionData{Opcode: OpBconst, Bool: x}, t)
}

// Arithmetic

// Unary appends a one-operand instruction whose type follows its operand.
func (b *FuncBuilder) Unary(op Opcode, x Value) Value {
	return b.single(InstructionData{Opcode: op, Args: []Value{x}}, types.Invalid)
}

// Convert appends a conversion to type t.
func (b *FuncBuilder) Convert(op Opcode, t types.Type, x Value) Value {
	return b.single(InstructionData{Opcode: op, Args: []Value{x}}, t)
}

// Binary appends a two-operand instruction.
func (b *FuncBuilder) Binary(op Opcode, x, y Value) Value {
	return b.single(InstructionData{Opcode: op, Args: []Value{x, y}}, types.Invalid)
}

// BinaryImm appends an instruction with one operand and an immediate.
func (b *FuncBuilder) BinaryImm(op Opcode, x Value, imm int64) Value {
	return b.single(InstructionData{Opcode: op, Args: []Value{x}, Imm: immediates.Imm64(imm)}, types.Invalid)
}

func (b *FuncBuilder) Iadd(x, y Value) Value { return b.Binary(OpIadd, x, y) }
func (b *FuncBuilder) Isub(x, y Value) Value { return b.Binary(OpIsub, x, y) }
func (b *FuncBuilder) Imul(x, y Value) Value { return b.Binary(OpImul, x, y) }
func (b *FuncBuilder) IaddImm(x Value, imm int64) Value { return b.BinaryImm(OpIaddImm, x, imm) }
func (b *FuncBuilder) Copy(x Value) Value { return b.Unary(OpCopy, x) }

func (b *FuncBuilder) Select(c, x, y Value) Value {
	return b.single(InstructionData{Opcode: OpSelect, Args: []Value{c, x, y}}, types.Invalid)
}

// Comparisons

func (b *FuncBuilder) Icmp(cc immediates.IntCC, x, y Value) Value {
	return b.single(InstructionData{Opcode: OpIcmp, IntCC: cc, Args: []Value{x, y}}, types.Invalid)
}

func (b *FuncBuilder) IcmpImm(cc immediates.IntCC, x Value, imm int64) Value {
	return b.single(InstructionData{Opcode: OpIcmpImm, IntCC: cc, Args: []Value{x}, Imm: immediates.Imm64(imm)}, types.Invalid)
}

func (b *FuncBuilder) Ifcmp(x, y Value) Value { return b.Binary(OpIfcmp, x, y) }

func (b *FuncBuilder) IfcmpImm(x Value, imm int64) Value { return b.BinaryImm(OpIfcmpImm, x, imm) }

func (b *FuncBuilder) Fcmp(cc immediates.FloatCC, x, y Value) Value {
	return b.single(InstructionData{Opcode: OpFcmp, FloatCC: cc, Args: []Value{x, y}}, types.Invalid)
}

func (b *FuncBuilder) Ffcmp(x, y Value) Value { return b.Binary(OpFfcmp, x, y) }

func (b *FuncBuilder) Trueif(cc immediates.IntCC, flags Value) Value {
	return b.single(InstructionData{Opcode: OpTrueif, IntCC: cc, Args: []Value{flags}}, types.Invalid)
}

func (b *FuncBuilder) Selectif(t types.Type, cc immediates.IntCC, flags, x, y Value) Value {
	return b.single(InstructionData{Opcode: OpSelectif, IntCC: cc, Args: []Value{flags, x, y}}, t)
}

// Memory

func (b *FuncBuilder) Load(t types.Type, flags immediates.MemFlags, p Value, off int32) Value {
	return b.single(InstructionData{Opcode: OpLoad, Flags: flags, Args: []Value{p}, Offset: immediates.Offset32(off)}, t)
}

func (b *FuncBuilder) Store(flags immediates.MemFlags, x, p Value, off int32) Inst {
	inst, _ := b.Ins(InstructionData{Opcode: OpStore, Flags: flags, Args: []Value{x, p}, Offset: immediates.Offset32(off)}, types.Invalid)
	return inst
}

func (b *FuncBuilder) StackLoad(t types.Type, ss StackSlot, off int32) Value {
	return b.single(InstructionData{Opcode: OpStackLoad, StackSlot: ss, Offset: immediates.Offset32(off)}, t)
}

func (b *FuncBuilder) StackStore(x Value, ss StackSlot, off int32) Inst {
	inst, _ := b.Ins(InstructionData{Opcode: OpStackStore, Args: []Value{x}, StackSlot: ss, Offset: immediates.Offset32(off)}, types.Invalid)
	return inst
}

func (b *FuncBuilder) StackAddr(t types.Type, ss StackSlot, off int32) Value {
	return b.single(InstructionData{Opcode: OpStackAddr, StackSlot: ss, Offset: immediates.Offset32(off)}, t)
}

func (b *FuncBuilder) GlobalValue(t types.Type, gv GlobalVar) Value {
	return b.single(InstructionData{Opcode: OpGlobalValue, GlobalVar: gv}, t)
}

func (b *FuncBuilder) HeapAddr(t types.Type, heap Heap, x Value, size uint32) Value {
	return b.single(InstructionData{Opcode: OpHeapAddr, Heap: heap, Args: []Value{x}, Size: immediates.Uimm32(size)}, t)
}

// Calls

func (b *FuncBuilder) Call(fn FuncRef, args ...Value) []Value {
	_, results := b.Ins(InstructionData{Opcode: OpCall, FuncRef: fn, Args: args}, types.Invalid)
	return results
}

func (b *FuncBuilder) CallIndirect(sig SigRef, callee Value, args ...Value) []Value {
	all := append([]Value{callee}, args...)
	_, results := b.Ins(InstructionData{Opcode: OpCallIndirect, SigRef: sig, Args: all}, types.Invalid)

	return results
}

func (b *FuncBuilder) FuncAddr(t types.Type, fn FuncRef) Value {
	return b.single(InstructionData{Opcode: OpFuncAddr, FuncRef: fn}, t)
}

// Control flow

func (b *FuncBuilder) Jump(dest Ebb, args ...Value) Inst {
	inst, _ := b.Ins(InstructionData{Opcode: OpJump, Dest: dest, Args: args}, types.Invalid)
	return inst
}

func (b *FuncBuilder) Fallthrough(dest Ebb, args ...Value) Inst {
	inst, _ := b.Ins(InstructionData{Opcode: OpFallthrough, Dest: dest, Args: args}, types.Invalid)
	return inst
}

func (b *FuncBuilder) Brz(x Value, dest Ebb, args ...Value) Inst {
	return b.branch(OpBrz, []Value{x}, dest, args)
}

func (b *FuncBuilder) Brnz(x Value, dest Ebb, args ...Value) Inst {
	return b.branch(OpBrnz, []Value{x}, dest, args)
}

func (b *FuncBuilder) BrIcmp(cc immediates.IntCC, x, y Value, dest Ebb, args ...Value) Inst {
	inst, _ := b.Ins(InstructionData{Opcode: OpBrIcmp, IntCC: cc, Dest: dest, Args: append([]Value{x, y}, args...)}, types.Invalid)
	return inst
}

func (b *FuncBuilder) Brif(cc immediates.IntCC, flags Value, dest Ebb, args ...Value) Inst {
	inst, _ := b.Ins(InstructionData{Opcode: OpBrif, IntCC: cc, Dest: dest, Args: append([]Value{flags}, args...)}, types.Invalid)
	return inst
}

func (b *FuncBuilder) Brff(cc immediates.FloatCC, flags Value, dest Ebb, args ...Value) Inst {
	inst, _ := b.Ins(InstructionData{Opcode: OpBrff, FloatCC: cc, Dest: dest, Args: append([]Value{flags}, args...)}, types.Invalid)
	return inst
}

func (b *FuncBuilder) BrTable(x Value, jt JumpTable) Inst {
	inst, _ := b.Ins(InstructionData{Opcode: OpBrTable, Args: []Value{x}, Table: jt}, types.Invalid)
	return inst
}

func (b *FuncBuilder) Return(args ...Value) Inst {
	inst, _ := b.Ins(InstructionData{Opcode: OpReturn, Args: args}, types.Invalid)
	return inst
}

func (b *FuncBuilder) Trap(code immediates.TrapCode) Inst {
	inst, _ := b.Ins(InstructionData{Opcode: OpTrap, Trap: code}, types.Invalid)
	return inst
}

func (b *FuncBuilder) Trapz(x Value, code immediates.TrapCode) Inst {
	inst, _ := b.Ins(InstructionData{Opcode: OpTrapz, Args: []Value{x}, Trap: code}, types.Invalid)
	return inst
}

func (b *FuncBuilder) Trapnz(x Value, code immediates.TrapCode) Inst {
	inst, _ := b.Ins(InstructionData{Opcode: OpTrapnz, Args: []Value{x}, Trap: code}, types.Invalid)
	return inst
}

func (b *FuncBuilder) Trapif(cc immediates.IntCC, flags Value, code immediates.TrapCode) Inst {
	inst, _ := b.Ins(InstructionData{Opcode: OpTrapif, IntCC: cc, Args: []Value{flags}, Trap: code}, types.Invalid)
	return inst
}

func (b *FuncBuilder) Nop() Inst {
	inst, _ := b.Ins(InstructionData{Opcode: OpNop}, types.Invalid)
	return inst
}

func (b *FuncBuilder) branch(op Opcode, fixed []Value, dest Ebb, args []Value) Inst {
	inst, _ := b.Ins(InstructionData{Opcode: op, Dest: dest, Args: append(fixed, args...)}, types.Invalid)
	return inst
}
