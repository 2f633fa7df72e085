package ir

import (
	"ebbir/internal/immediates"
)

// InstructionData holds an opcode and its operands. Which fields are
// meaningful depends on the opcode's Format; the rest stay zero.
type InstructionData struct {
	Opcode Opcode

	// Args holds the fixed value operands followed by the variable list
	// (branch arguments, call arguments or return values).
	Args []Value

	Imm     immediates.Imm64
	Ieee32  immediates.Ieee32
	Ieee64  immediates.Ieee64
	Bool    bool
	Lane    immediates.Uimm8
	IntCC   immediates.IntCC
	FloatCC immediates.FloatCC
	Trap    immediates.TrapCode
	Flags   immediates.MemFlags
	Offset  immediates.Offset32
	Size    immediates.Uimm32

	Dest      Ebb
	Table     JumpTable
	FuncRef   FuncRef
	SigRef    SigRef
	StackSlot StackSlot
	GlobalVar GlobalVar
	Heap      Heap
}

// FixedArgs returns the fixed value operands.
func (d *InstructionData) FixedArgs() []Value {
	n := d.Opcode.Format().NumFixed()
	if n > len(d.Args) {
		return d.Args
	}

	return d.Args[:n]
}

// VariableArgs returns the value list that follows the fixed operands.
func (d *InstructionData) VariableArgs() []Value {
	n := d.Opcode.Format().NumFixed()
	if n > len(d.Args) {
		return nil
	}

	return d.Args[n:]
}

// BranchKind classifies the control transfer of an instruction.
type BranchKind uint8

const (
	NotABranch BranchKind = iota
	// SingleDest transfers to Dest with the variable arguments.
	SingleDest
	// TableDest transfers to one of the entries of a jump table.
	TableDest
)

// BranchInfo describes where an instruction may transfer control.
type BranchInfo struct {
	Kind  BranchKind
	Dest  Ebb
	Args  []Value
	Table JumpTable
}

// AnalyzeBranch returns the branch destinations of the instruction.
func (d *InstructionData) AnalyzeBranch() BranchInfo {
	switch d.Opcode.Format() {
	case FormatJump, FormatBranch, FormatBranchInt, FormatBranchFloat, FormatBranchIcmp:
		return BranchInfo{Kind: SingleDest, Dest: d.Dest, Args: d.VariableArgs()}
	case FormatBranchTable:
		return BranchInfo{Kind: TableDest, Table: d.Table}
	default:
		return BranchInfo{}
	}
}

// CallKind classifies calls.
type CallKind uint8

const (
	NotACall CallKind = iota
	DirectCall
	IndirectCall
)

// CallInfo describes the callee and arguments of a call.
type CallInfo struct {
	Kind    CallKind
	FuncRef FuncRef
	SigRef  SigRef
	Args    []Value
}

// AnalyzeCall returns the call information of the instruction.
func (d *InstructionData) AnalyzeCall() CallInfo {
	switch d.Opcode.Format() {
	case FormatCall:
		return CallInfo{Kind: DirectCall, FuncRef: d.FuncRef, Args: d.VariableArgs()}
	case FormatCallIndirect:
		return CallInfo{Kind: IndirectCall, SigRef: d.SigRef, Args: d.VariableArgs()}
	default:
		return CallInfo{}
	}
}

// EntityRefs calls fn for every preamble or EBB reference of the
// instruction that its format makes meaningful.
func (d *InstructionData) EntityRefs(fn func(AnyEntity)) {
	switch d.Opcode.Format() {
	case FormatJump, FormatBranch, FormatBranchInt, FormatBranchFloat, FormatBranchIcmp:
		fn(AnyEbb(d.Dest))
	case FormatBranchTable:
		fn(AnyJumpTable(d.Table))
	case FormatCall, FormatFuncAddr:
		fn(AnyFuncRef(d.FuncRef))
	case FormatCallIndirect:
		fn(AnySigRef(d.SigRef))
	case FormatStackLoad, FormatStackStore:
		fn(AnyStackSlot(d.StackSlot))
	case FormatUnaryGlobalVar:
		fn(AnyGlobalVar(d.GlobalVar))
	case FormatHeapAddr:
		fn(AnyHeap(d.Heap))
	}
}

// ValueDefKind tells whether a value is an EBB parameter or a result.
type ValueDefKind uint8

const (
	DefResult ValueDefKind = iota
	DefParam
)

// ValueDef is the unique definition site of a value.
type ValueDef struct {
	Kind ValueDefKind
	Inst Inst
	Ebb  Ebb
	Num  int
}

// ResultDef returns the definition of result num of inst.
func ResultDef(inst Inst, num int) ValueDef {
	return ValueDef{Kind: DefResult, Inst: inst, Num: num}
}

// ParamDef returns the definition of parameter num of ebb.
func ParamDef(ebb Ebb, num int) ValueDef {
	return ValueDef{Kind: DefParam, Ebb: ebb, Num: num}
}
