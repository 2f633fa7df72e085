package ir

import (
	"tlog.app/go/errors"

	"ebbir/internal/entity"
	"ebbir/internal/types"
)

// Function is one unit of compilation: a signature, the preamble tables,
// the data flow graph and the layout. Nothing in it refers to another
// Function.
type Function struct {
	Name      ExternalName
	Signature Signature

	StackSlots *entity.Table[StackSlot, StackSlotData]
	GlobalVars *entity.Table[GlobalVar, GlobalVarData]
	Heaps      *entity.Table[Heap, HeapData]
	JumpTables *entity.Table[JumpTable, JumpTableData]

	DFG    *DataFlowGraph
	Layout *Layout

	Limits Limits
}

// NewFunction returns an empty function with the default limits.
func NewFunction(name ExternalName, sig Signature) *Function {
	return NewFunctionWithLimits(name, sig, DefaultLimits)
}

// NewFunctionWithLimits returns an empty function with custom capacity
// ceilings. Zero fields take the default.
func NewFunctionWithLimits(name ExternalName, sig Signature, limits Limits) *Function {
	if limits.Primary == 0 {
		limits.Primary = DefaultLimits.Primary
	}

	if limits.Secondary == 0 {
		limits.Secondary = DefaultLimits.Secondary
	}

	if limits.Args == 0 {
		limits.Args = DefaultLimits.Args
	}

	dfg := NewDataFlowGraph(limits)

	return &Function{
		Name:       name,
		Signature:  sig,
		StackSlots: entity.NewTable[StackSlot, StackSlotData]("stack slots", limits.Secondary),
		GlobalVars: entity.NewTable[GlobalVar, GlobalVarData]("global variables", limits.Secondary),
		Heaps:      entity.NewTable[Heap, HeapData]("heaps", limits.Secondary),
		JumpTables: entity.NewTable[JumpTable, JumpTableData]("jump tables", limits.Secondary),
		DFG:        dfg,
		Layout:     NewLayout(dfg),
		Limits:     limits,
	}
}

// CreateStackSlot declares a stack slot.
func (f *Function) CreateStackSlot(data StackSlotData) (StackSlot, error) {
	return f.StackSlots.Push(data)
}

// CreateGlobalVar declares a global variable. Deref bases are not checked
// here; a chain can only be validated once all its links exist.
func (f *Function) CreateGlobalVar(data GlobalVarData) (GlobalVar, error) {
	return f.GlobalVars.Push(data)
}

// CreateHeap declares a heap.
func (f *Function) CreateHeap(data HeapData) (Heap, error) {
	return f.Heaps.Push(data)
}

// ImportSignature declares a signature for indirect calls and external
// functions.
func (f *Function) ImportSignature(sig Signature) (SigRef, error) {
	return f.DFG.Signatures.Push(sig)
}

// ImportFunction declares an external function.
func (f *Function) ImportFunction(data ExtFuncData) (FuncRef, error) {
	return f.DFG.ExtFuncs.Push(data)
}

// CreateJumpTable declares a jump table.
func (f *Function) CreateJumpTable(data JumpTableData) (JumpTable, error) {
	return f.JumpTables.Push(data)
}

// EntryBlock returns the first EBB in the layout.
func (f *Function) EntryBlock() (Ebb, bool) {
	return f.Layout.EntryBlock()
}

// AppendEbb creates an EBB and adds it at the end of the layout.
func (f *Function) AppendEbb() (Ebb, error) {
	ebb, err := f.DFG.MakeEbb()
	if err != nil {
		return 0, err
	}

	if err := f.Layout.AppendEbb(ebb); err != nil {
		return 0, err
	}

	return ebb, nil
}

// AppendEbbParam adds a parameter of type t to ebb.
func (f *Function) AppendEbbParam(ebb Ebb, t types.Type) (Value, error) {
	return f.DFG.AppendEbbParam(ebb, t)
}

// AppendInst creates an instruction with its results at the end of ebb.
// ctrl is the controlling type of a polymorphic opcode; pass
// types.Invalid to infer it from the typevar operand.
func (f *Function) AppendInst(ebb Ebb, data InstructionData, ctrl types.Type) (Inst, []Value, error) {
	if !f.DFG.EbbValid(ebb) || !f.Layout.IsEbbInserted(ebb) {
		return 0, nil, errors.Wrap(ErrInvalidEntity, "append %v to %v", data.Opcode, ebb)
	}

	if last, ok := f.Layout.LastInst(ebb); ok && f.DFG.InstData(last).Opcode.IsTerminator() {
		return 0, nil, errors.Wrap(ErrTerminated, "append %v to %v", data.Opcode, ebb)
	}

	if err := f.checkInst(&data); err != nil {
		return 0, nil, errors.Wrap(err, "append %v to %v", data.Opcode, ebb)
	}

	if ctrl == types.Invalid {
		ctrl = f.DFG.InferCtrlType(&data)
	}

	inst, err := f.DFG.MakeInst(data)
	if err != nil {
		return 0, nil, err
	}

	results, err := f.DFG.MakeInstResults(inst, ctrl)
	if err != nil {
		return 0, nil, err
	}

	if err := f.Layout.AppendInst(inst, ebb); err != nil {
		return 0, nil, err
	}

	return inst, results, nil
}

// checkInst rejects instructions that could not be represented at all:
// unknown opcodes, operand counts that do not fit the format, and entity
// references out of bounds.
func (f *Function) checkInst(data *InstructionData) error {
	if !data.Opcode.Valid() {
		return errors.Wrap(ErrInvalidEntity, "opcode %d", uint8(data.Opcode))
	}

	format := data.Opcode.Format()

	if n := len(data.Args); n < format.NumFixed() || !format.HasVariableArgs() && n != format.NumFixed() {
		return errors.Wrap(ErrOperandCount, "%d operands", n)
	}

	if err := entity.CheckCapacity("arguments", uint64(len(data.Args)), f.Limits.Args); err != nil {
		return errors.Wrap(ErrTooManyArgs, "%v", err)
	}

	for _, v := range data.Args {
		if !f.DFG.ValueValid(v) {
			return errors.Wrap(ErrInvalidEntity, "%v", v)
		}
	}

	var bad *AnyEntity

	data.EntityRefs(func(e AnyEntity) {
		if bad == nil && !f.EntityValid(e) {
			bad = &e
		}
	})

	if bad != nil {
		return errors.Wrap(ErrInvalidEntity, "%v", *bad)
	}

	return nil
}

// EntityValid reports whether e names an existing entity of f.
func (f *Function) EntityValid(e AnyEntity) bool {
	switch e.Kind {
	case KindFunction:
		return true
	case KindStackSlot:
		return f.StackSlots.Valid(StackSlot(e.Index))
	case KindGlobalVar:
		return f.GlobalVars.Valid(GlobalVar(e.Index))
	case KindHeap:
		return f.Heaps.Valid(Heap(e.Index))
	case KindSigRef:
		return f.DFG.Signatures.Valid(SigRef(e.Index))
	case KindFuncRef:
		return f.DFG.ExtFuncs.Valid(FuncRef(e.Index))
	case KindJumpTable:
		return f.JumpTables.Valid(JumpTable(e.Index))
	case KindEbb:
		return f.DFG.EbbValid(Ebb(e.Index))
	case KindInst:
		return f.DFG.InstValid(Inst(e.Index))
	case KindValue:
		return f.DFG.ValueValid(Value(e.Index))
	default:
		return false
	}
}

// String returns the function in canonical text form.
func (f *Function) String() string {
	return PrintFunction(f)
}
