package ir

import (
	"tlog.app/go/errors"

	"ebbir/internal/entity"
	"ebbir/internal/types"
)

// EbbData is the parameter list of an EBB.
type EbbData struct {
	Params []Value
}

// ValueData is the type and definition site of a value.
type ValueData struct {
	Type types.Type
	Def  ValueDef
}

// DataFlowGraph owns instructions, values and EBB parameters, along with
// the signatures and external functions that calls refer to.
type DataFlowGraph struct {
	insts   *entity.Table[Inst, InstructionData]
	results *entity.SecondaryMap[Inst, []Value]
	ctrl    *entity.SecondaryMap[Inst, types.Type]
	ebbs    *entity.Table[Ebb, EbbData]
	values  *entity.Table[Value, ValueData]

	Signatures *entity.Table[SigRef, Signature]
	ExtFuncs   *entity.Table[FuncRef, ExtFuncData]

	maxArgs uint64
}

// NewDataFlowGraph returns an empty graph with the given limits.
func NewDataFlowGraph(limits Limits) *DataFlowGraph {
	return &DataFlowGraph{
		insts:      entity.NewTable[Inst, InstructionData]("instructions", limits.Primary),
		results:    entity.NewSecondaryMap[Inst, []Value](nil),
		ctrl:       entity.NewSecondaryMap[Inst](types.Invalid),
		ebbs:       entity.NewTable[Ebb, EbbData]("ebbs", limits.Primary),
		values:     entity.NewTable[Value, ValueData]("values", limits.Primary),
		Signatures: entity.NewTable[SigRef, Signature]("signatures", limits.Secondary),
		ExtFuncs:   entity.NewTable[FuncRef, ExtFuncData]("external functions", limits.Secondary),
		maxArgs:    limits.Args,
	}
}

func (d *DataFlowGraph) NumInsts() int  { return d.insts.Len() }
func (d *DataFlowGraph) NumEbbs() int   { return d.ebbs.Len() }
func (d *DataFlowGraph) NumValues() int { return d.values.Len() }

func (d *DataFlowGraph) InstValid(i Inst) bool   { return d.insts.Valid(i) }
func (d *DataFlowGraph) EbbValid(e Ebb) bool     { return d.ebbs.Valid(e) }
func (d *DataFlowGraph) ValueValid(v Value) bool { return d.values.Valid(v) }

// InstData returns the mutable data of inst, which must be valid.
func (d *DataFlowGraph) InstData(inst Inst) *InstructionData {
	return d.insts.At(inst)
}

// InstResults returns the results of inst.
func (d *DataFlowGraph) InstResults(inst Inst) []Value {
	return d.results.Get(inst)
}

// FirstResult returns the first result of inst.
func (d *DataFlowGraph) FirstResult(inst Inst) (Value, bool) {
	r := d.results.Get(inst)
	if len(r) == 0 {
		return 0, false
	}

	return r[0], true
}

// CtrlType returns the controlling type inst was created with.
func (d *DataFlowGraph) CtrlType(inst Inst) types.Type {
	return d.ctrl.Get(inst)
}

// EbbParams returns the parameters of ebb.
func (d *DataFlowGraph) EbbParams(ebb Ebb) []Value {
	data, ok := d.ebbs.Get(ebb)
	if !ok {
		return nil
	}

	return data.Params
}

// ValueType returns the type of v, or Invalid for an unknown value.
func (d *DataFlowGraph) ValueType(v Value) types.Type {
	data, ok := d.values.Get(v)
	if !ok {
		return types.Invalid
	}

	return data.Type
}

// ValueDef returns where v is defined. v must be valid.
func (d *DataFlowGraph) ValueDef(v Value) ValueDef {
	return d.values.At(v).Def
}

// MakeEbb creates an EBB that is not yet in any layout.
func (d *DataFlowGraph) MakeEbb() (Ebb, error) {
	return d.ebbs.Push(EbbData{})
}

// AppendEbbParam adds a parameter of type t to ebb.
func (d *DataFlowGraph) AppendEbbParam(ebb Ebb, t types.Type) (Value, error) {
	data, ok := d.ebbs.Get(ebb)
	if !ok {
		return 0, errors.Wrap(ErrInvalidEntity, "append param to %v", ebb)
	}

	if err := entity.CheckCapacity(ebb.String()+" params", uint64(len(data.Params))+1, d.maxArgs); err != nil {
		return 0, errors.Wrap(ErrTooManyArgs, "%v", err)
	}

	v, err := d.values.Push(ValueData{Type: t, Def: ParamDef(ebb, len(data.Params))})
	if err != nil {
		return 0, err
	}

	data.Params = append(data.Params, v)

	return v, nil
}

// MakeInst creates an instruction without results and without inserting it
// in the layout. No operand is checked.
func (d *DataFlowGraph) MakeInst(data InstructionData) (Inst, error) {
	return d.insts.Push(data)
}

// InferCtrlType returns the controlling type implied by the typevar operand
// of data, or Invalid if it has none.
func (d *DataFlowGraph) InferCtrlType(data *InstructionData) types.Type {
	idx := data.Opcode.TypevarOperand()
	if idx < 0 || idx >= len(data.Args) {
		return types.Invalid
	}

	return d.ValueType(data.Args[idx])
}

// ResultTypes computes the result types of data under ctrl.
func (d *DataFlowGraph) ResultTypes(data *InstructionData, ctrl types.Type) ([]types.Type, error) {
	if sig, ok, err := d.CallSignature(data); err != nil {
		return nil, err
	} else if ok {
		return sig.ReturnTypes(), nil
	}

	cs := data.Opcode.ResultConstraints()
	r := make([]types.Type, len(cs))

	for i, c := range cs {
		r[i] = c.Resolve(ctrl)
	}

	return r, nil
}

// CallSignature returns the callee signature of a call instruction.
func (d *DataFlowGraph) CallSignature(data *InstructionData) (*Signature, bool, error) {
	call := data.AnalyzeCall()

	ref := call.SigRef

	switch call.Kind {
	case NotACall:
		return nil, false, nil
	case DirectCall:
		f, ok := d.ExtFuncs.Get(call.FuncRef)
		if !ok {
			return nil, false, errors.Wrap(ErrInvalidEntity, "%v", call.FuncRef)
		}

		ref = f.Signature
	}

	sig, ok := d.Signatures.Get(ref)
	if !ok {
		return nil, false, errors.Wrap(ErrInvalidEntity, "%v", ref)
	}

	return sig, true, nil
}

// MakeInstResults allocates the results of inst under ctrl.
func (d *DataFlowGraph) MakeInstResults(inst Inst, ctrl types.Type) ([]Value, error) {
	data, ok := d.insts.Get(inst)
	if !ok {
		return nil, errors.Wrap(ErrInvalidEntity, "%v", inst)
	}

	tys, err := d.ResultTypes(data, ctrl)
	if err != nil {
		return nil, errors.Wrap(err, "results of %v", data.Opcode)
	}

	d.ctrl.Set(inst, ctrl)

	for _, t := range tys {
		if _, err := d.AttachNewResult(inst, t); err != nil {
			return nil, err
		}
	}

	return d.results.Get(inst), nil
}

// AttachNewResult creates a value of type t as the next result of inst.
func (d *DataFlowGraph) AttachNewResult(inst Inst, t types.Type) (Value, error) {
	rs := d.results.Ref(inst)

	v, err := d.values.Push(ValueData{Type: t, Def: ResultDef(inst, len(*rs))})
	if err != nil {
		return 0, err
	}

	*rs = append(*rs, v)

	return v, nil
}

// AttachResult makes the existing value v the next result of inst and
// redirects its definition there. The previous definition site still lists
// v; rewriting passes are expected to detach it.
func (d *DataFlowGraph) AttachResult(inst Inst, v Value) {
	rs := d.results.Ref(inst)
	d.values.At(v).Def = ResultDef(inst, len(*rs))
	*rs = append(*rs, v)
}

// DetachResults clears the result list of inst and returns the old list.
// The values keep pointing at inst until they are attached elsewhere.
func (d *DataFlowGraph) DetachResults(inst Inst) []Value {
	rs := d.results.Get(inst)
	d.results.Set(inst, nil)

	return rs
}
