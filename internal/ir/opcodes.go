package ir

import (
	"ebbir/internal/types"
)

// Format is the shape of an instruction's operands. It decides which
// InstructionData fields are meaningful and how the text form is spelled.
type Format uint8

const (
	FormatNullary Format = iota
	FormatUnary
	FormatUnaryImm
	FormatUnaryIeee32
	FormatUnaryIeee64
	FormatUnaryBool
	FormatUnaryGlobalVar
	FormatBinary
	FormatBinaryImm
	FormatTernary
	FormatMultiAry
	FormatInsertLane
	FormatExtractLane
	FormatIntCompare
	FormatIntCompareImm
	FormatIntCond
	FormatFloatCompare
	FormatFloatCond
	FormatIntSelect
	FormatJump
	FormatBranch
	FormatBranchInt
	FormatBranchFloat
	FormatBranchIcmp
	FormatBranchTable
	FormatCall
	FormatCallIndirect
	FormatFuncAddr
	FormatLoad
	FormatStore
	FormatStackLoad
	FormatStackStore
	FormatHeapAddr
	FormatTrap
	FormatCondTrap
	FormatIntCondTrap
	FormatFloatCondTrap
)

type formatInfo struct {
	// fixed is the number of leading value operands. The rest, if the format
	// takes a variable list, are branch, call or return arguments.
	fixed    int
	variable bool
}

var formats = [...]formatInfo{
	FormatNullary:        {},
	FormatUnary:          {fixed: 1},
	FormatUnaryImm:       {},
	FormatUnaryIeee32:    {},
	FormatUnaryIeee64:    {},
	FormatUnaryBool:      {},
	FormatUnaryGlobalVar: {},
	FormatBinary:         {fixed: 2},
	FormatBinaryImm:      {fixed: 1},
	FormatTernary:        {fixed: 3},
	FormatMultiAry:       {variable: true},
	FormatInsertLane:     {fixed: 2},
	FormatExtractLane:    {fixed: 1},
	FormatIntCompare:     {fixed: 2},
	FormatIntCompareImm:  {fixed: 1},
	FormatIntCond:        {fixed: 1},
	FormatFloatCompare:   {fixed: 2},
	FormatFloatCond:      {fixed: 1},
	FormatIntSelect:      {fixed: 3},
	FormatJump:           {variable: true},
	FormatBranch:         {fixed: 1, variable: true},
	FormatBranchInt:      {fixed: 1, variable: true},
	FormatBranchFloat:    {fixed: 1, variable: true},
	FormatBranchIcmp:     {fixed: 2, variable: true},
	FormatBranchTable:    {fixed: 1},
	FormatCall:           {variable: true},
	FormatCallIndirect:   {fixed: 1, variable: true},
	FormatFuncAddr:       {},
	FormatLoad:           {fixed: 1},
	FormatStore:          {fixed: 2},
	FormatStackLoad:      {},
	FormatStackStore:     {fixed: 1},
	FormatHeapAddr:       {fixed: 1},
	FormatTrap:           {},
	FormatCondTrap:       {fixed: 1},
	FormatIntCondTrap:    {fixed: 1},
	FormatFloatCondTrap:  {fixed: 1},
}

// NumFixed returns the number of fixed value operands of the format.
func (f Format) NumFixed() int { return formats[f].fixed }

// HasVariableArgs reports whether the format ends in a value list.
func (f Format) HasVariableArgs() bool { return formats[f].variable }

// ConstraintKind is how an operand or result type relates to the
// controlling type variable.
type ConstraintKind uint8

const (
	// Same is exactly the controlling type.
	Same ConstraintKind = iota
	// Concrete is a fixed type independent of the controlling type.
	Concrete
	// Free is any type of a class, independent of the controlling type.
	Free
	// AsBool is the boolean type with the shape of the controlling type.
	AsBool
	// LaneOf is the lane type of the controlling type.
	LaneOf
)

// Constraint restricts the type of one operand or result.
type Constraint struct {
	Kind  ConstraintKind
	Type  types.Type
	Class types.Class
}

var (
	same   = Constraint{Kind: Same}
	asBool = Constraint{Kind: AsBool}
	laneOf = Constraint{Kind: LaneOf}
)

func concrete(t types.Type) Constraint { return Constraint{Kind: Concrete, Type: t} }

func free(c types.Class) Constraint { return Constraint{Kind: Free, Class: c} }

func constraints(c ...Constraint) []Constraint { return c }

// Resolve returns the concrete type for the constraint under ctrl, or
// Invalid for Free constraints.
func (c Constraint) Resolve(ctrl types.Type) types.Type {
	switch c.Kind {
	case Same:
		return ctrl
	case Concrete:
		return c.Type
	case AsBool:
		return ctrl.AsBool()
	case LaneOf:
		return ctrl.Lane()
	default:
		return types.Invalid
	}
}

// WidthRelation constrains a conversion's operand width against its result.
type WidthRelation uint8

const (
	NoRelation WidthRelation = iota
	// ResultWider requires a narrower operand with the same lane count.
	ResultWider
	// ResultNarrower requires a wider operand with the same lane count.
	ResultNarrower
	// SameWidth requires an operand of the same total bit width.
	SameWidth
)

type opFlags uint16

const (
	isTerminator opFlags = 1 << iota
	isBranch
	isCall
	isReturn
	canLoad
	canStore
	canTrap
	movesMemory // spill and fill
)

type opInfo struct {
	name   string
	format Format
	flags  opFlags

	// ctrl is the class of the controlling type variable, ClassNone for
	// monomorphic opcodes.
	ctrl types.Class

	// typevarOperand is the fixed operand whose type is the controlling type.
	// -1 means the controlling type must be given explicitly.
	typevarOperand int

	results []Constraint
	args    []Constraint

	width WidthRelation
}

// Opcode identifies an instruction.
type Opcode uint8

const (
	OpInvalid Opcode = iota

	OpJump
	OpFallthrough
	OpBrz
	OpBrnz
	OpBrIcmp
	OpBrif
	OpBrff
	OpBrTable
	OpReturn
	OpTrap
	OpTrapz
	OpTrapnz
	OpTrapif
	OpTrapff

	OpCall
	OpCallIndirect
	OpFuncAddr

	OpLoad
	OpUload8
	OpSload8
	OpUload16
	OpSload16
	OpUload32
	OpSload32
	OpStore
	OpIstore8
	OpIstore16
	OpIstore32
	OpStackLoad
	OpStackStore
	OpStackAddr
	OpGlobalValue
	OpHeapAddr

	OpIconst
	OpF32const
	OpF64const
	OpBconst

	OpNop
	OpCopy
	OpSpill
	OpFill
	OpSelect
	OpSelectif

	OpIadd
	OpIsub
	OpImul
	OpUdiv
	OpSdiv
	OpUrem
	OpSrem
	OpIaddImm
	OpImulImm
	OpUdivImm
	OpSdivImm
	OpUremImm
	OpSremImm
	OpIrsubImm

	OpBand
	OpBor
	OpBxor
	OpBnot
	OpBandImm
	OpBorImm
	OpBxorImm
	OpIshl
	OpUshr
	OpSshr
	OpRotl
	OpRotr
	OpIshlImm
	OpUshrImm
	OpSshrImm
	OpClz
	OpCtz
	OpPopcnt

	OpIcmp
	OpIcmpImm
	OpIfcmp
	OpIfcmpImm
	OpFcmp
	OpFfcmp
	OpTrueif
	OpTrueff

	OpFadd
	OpFsub
	OpFmul
	OpFdiv
	OpFmin
	OpFmax
	OpFcopysign
	OpFneg
	OpFabs
	OpSqrt
	OpCeil
	OpFloor
	OpTrunc
	OpNearest
	OpFma

	OpUextend
	OpSextend
	OpIreduce
	OpFpromote
	OpFdemote
	OpFcvtToUint
	OpFcvtToSint
	OpFcvtFromUint
	OpFcvtFromSint
	OpBitcast
	OpBint

	OpSplat
	OpInsertlane
	OpExtractlane

	numOpcodes
)

var opcodes = [numOpcodes]opInfo{
	OpInvalid: {name: "invalid", typevarOperand: -1},

	OpJump:        {name: "jump", format: FormatJump, flags: isTerminator | isBranch, typevarOperand: -1},
	OpFallthrough: {name: "fallthrough", format: FormatJump, flags: isTerminator | isBranch, typevarOperand: -1},
	OpBrz:         {name: "brz", format: FormatBranch, flags: isBranch, ctrl: types.ClassTestable, args: constraints(same)},
	OpBrnz:        {name: "brnz", format: FormatBranch, flags: isBranch, ctrl: types.ClassTestable, args: constraints(same)},
	OpBrIcmp:      {name: "br_icmp", format: FormatBranchIcmp, flags: isBranch, ctrl: types.ClassIB, args: constraints(same, same)},
	OpBrif:        {name: "brif", format: FormatBranchInt, flags: isBranch, typevarOperand: -1, args: constraints(concrete(types.IFlags))},
	OpBrff:        {name: "brff", format: FormatBranchFloat, flags: isBranch, typevarOperand: -1, args: constraints(concrete(types.FFlags))},
	OpBrTable:     {name: "br_table", format: FormatBranchTable, flags: isTerminator | isBranch, ctrl: types.ClassIB, args: constraints(same)},
	OpReturn:      {name: "return", format: FormatMultiAry, flags: isTerminator | isReturn, typevarOperand: -1},
	OpTrap:        {name: "trap", format: FormatTrap, flags: isTerminator | canTrap, typevarOperand: -1},
	OpTrapz:       {name: "trapz", format: FormatCondTrap, flags: canTrap, ctrl: types.ClassTestable, args: constraints(same)},
	OpTrapnz:      {name: "trapnz", format: FormatCondTrap, flags: canTrap, ctrl: types.ClassTestable, args: constraints(same)},
	OpTrapif:      {name: "trapif", format: FormatIntCondTrap, flags: canTrap, typevarOperand: -1, args: constraints(concrete(types.IFlags))},
	OpTrapff:      {name: "trapff", format: FormatFloatCondTrap, flags: canTrap, typevarOperand: -1, args: constraints(concrete(types.FFlags))},

	OpCall:         {name: "call", format: FormatCall, flags: isCall, typevarOperand: -1},
	OpCallIndirect: {name: "call_indirect", format: FormatCallIndirect, flags: isCall, ctrl: types.ClassIAddr, args: constraints(same)},
	OpFuncAddr:     {name: "func_addr", format: FormatFuncAddr, ctrl: types.ClassIAddr, typevarOperand: -1, results: constraints(same)},

	OpLoad:    {name: "load", format: FormatLoad, flags: canLoad | canTrap, ctrl: types.ClassMem, typevarOperand: -1, results: constraints(same), args: constraints(free(types.ClassIAddr))},
	OpUload8:  {name: "uload8", format: FormatLoad, flags: canLoad | canTrap, ctrl: types.ClassInt, typevarOperand: -1, results: constraints(same), args: constraints(free(types.ClassIAddr))},
	OpSload8:  {name: "sload8", format: FormatLoad, flags: canLoad | canTrap, ctrl: types.ClassInt, typevarOperand: -1, results: constraints(same), args: constraints(free(types.ClassIAddr))},
	OpUload16: {name: "uload16", format: FormatLoad, flags: canLoad | canTrap, ctrl: types.ClassInt, typevarOperand: -1, results: constraints(same), args: constraints(free(types.ClassIAddr))},
	OpSload16: {name: "sload16", format: FormatLoad, flags: canLoad | canTrap, ctrl: types.ClassInt, typevarOperand: -1, results: constraints(same), args: constraints(free(types.ClassIAddr))},
	OpUload32: {name: "uload32", format: FormatLoad, flags: canLoad | canTrap, typevarOperand: -1, results: constraints(concrete(types.I64)), args: constraints(free(types.ClassIAddr))},
	OpSload32: {name: "sload32", format: FormatLoad, flags: canLoad | canTrap, typevarOperand: -1, results: constraints(concrete(types.I64)), args: constraints(free(types.ClassIAddr))},

	OpStore:      {name: "store", format: FormatStore, flags: canStore | canTrap, ctrl: types.ClassMem, args: constraints(same, free(types.ClassIAddr))},
	OpIstore8:    {name: "istore8", format: FormatStore, flags: canStore | canTrap, ctrl: types.ClassInt, args: constraints(same, free(types.ClassIAddr))},
	OpIstore16:   {name: "istore16", format: FormatStore, flags: canStore | canTrap, ctrl: types.ClassInt, args: constraints(same, free(types.ClassIAddr))},
	OpIstore32:   {name: "istore32", format: FormatStore, flags: canStore | canTrap, typevarOperand: -1, args: constraints(concrete(types.I64), free(types.ClassIAddr))},
	OpStackLoad:  {name: "stack_load", format: FormatStackLoad, flags: canLoad, ctrl: types.ClassMem, typevarOperand: -1, results: constraints(same)},
	OpStackStore: {name: "stack_store", format: FormatStackStore, flags: canStore, ctrl: types.ClassMem, args: constraints(same)},
	OpStackAddr:  {name: "stack_addr", format: FormatStackLoad, ctrl: types.ClassIAddr, typevarOperand: -1, results: constraints(same)},
	OpGlobalValue: {
		name: "global_value", format: FormatUnaryGlobalVar, ctrl: types.ClassIAddr, typevarOperand: -1,
		results: constraints(same),
	},
	OpHeapAddr: {
		name: "heap_addr", format: FormatHeapAddr, flags: canTrap, ctrl: types.ClassIAddr, typevarOperand: -1,
		results: constraints(same), args: constraints(free(types.ClassIB)),
	},

	OpIconst:   {name: "iconst", format: FormatUnaryImm, ctrl: types.ClassInt, typevarOperand: -1, results: constraints(same)},
	OpF32const: {name: "f32const", format: FormatUnaryIeee32, typevarOperand: -1, results: constraints(concrete(types.F32))},
	OpF64const: {name: "f64const", format: FormatUnaryIeee64, typevarOperand: -1, results: constraints(concrete(types.F64))},
	OpBconst:   {name: "bconst", format: FormatUnaryBool, ctrl: types.ClassBool, typevarOperand: -1, results: constraints(same)},

	OpNop:      {name: "nop", format: FormatNullary, typevarOperand: -1},
	OpCopy:     {name: "copy", format: FormatUnary, ctrl: types.ClassAny, results: constraints(same), args: constraints(same)},
	OpSpill:    {name: "spill", format: FormatUnary, flags: movesMemory, ctrl: types.ClassAny, results: constraints(same), args: constraints(same)},
	OpFill:     {name: "fill", format: FormatUnary, flags: movesMemory, ctrl: types.ClassAny, results: constraints(same), args: constraints(same)},
	OpSelect:   {name: "select", format: FormatTernary, ctrl: types.ClassAny, typevarOperand: 1, results: constraints(same), args: constraints(free(types.ClassTestable), same, same)},
	OpSelectif: {name: "selectif", format: FormatIntSelect, ctrl: types.ClassAny, typevarOperand: 1, results: constraints(same), args: constraints(concrete(types.IFlags), same, same)},

	OpIadd:     binary("iadd", types.ClassInt),
	OpIsub:     binary("isub", types.ClassInt),
	OpImul:     binary("imul", types.ClassInt),
	OpUdiv:     trapping(binary("udiv", types.ClassInt)),
	OpSdiv:     trapping(binary("sdiv", types.ClassInt)),
	OpUrem:     trapping(binary("urem", types.ClassInt)),
	OpSrem:     trapping(binary("srem", types.ClassInt)),
	OpIaddImm:  binaryImm("iadd_imm"),
	OpImulImm:  binaryImm("imul_imm"),
	OpUdivImm:  trapping(binaryImm("udiv_imm")),
	OpSdivImm:  trapping(binaryImm("sdiv_imm")),
	OpUremImm:  trapping(binaryImm("urem_imm")),
	OpSremImm:  trapping(binaryImm("srem_imm")),
	OpIrsubImm: binaryImm("irsub_imm"),

	OpBand:    binary("band", types.ClassAny),
	OpBor:     binary("bor", types.ClassAny),
	OpBxor:    binary("bxor", types.ClassAny),
	OpBnot:    unary("bnot", types.ClassAny),
	OpBandImm: binaryImm("band_imm"),
	OpBorImm:  binaryImm("bor_imm"),
	OpBxorImm: binaryImm("bxor_imm"),
	OpIshl:    shift("ishl"),
	OpUshr:    shift("ushr"),
	OpSshr:    shift("sshr"),
	OpRotl:    shift("rotl"),
	OpRotr:    shift("rotr"),
	OpIshlImm: binaryImm("ishl_imm"),
	OpUshrImm: binaryImm("ushr_imm"),
	OpSshrImm: binaryImm("sshr_imm"),
	OpClz:     unary("clz", types.ClassIB),
	OpCtz:     unary("ctz", types.ClassIB),
	OpPopcnt:  unary("popcnt", types.ClassIB),

	OpIcmp:    {name: "icmp", format: FormatIntCompare, ctrl: types.ClassInt, results: constraints(asBool), args: constraints(same, same)},
	OpIcmpImm: {name: "icmp_imm", format: FormatIntCompareImm, ctrl: types.ClassIB, results: constraints(concrete(types.B1)), args: constraints(same)},
	OpIfcmp:   {name: "ifcmp", format: FormatBinary, ctrl: types.ClassIB, results: constraints(concrete(types.IFlags)), args: constraints(same, same)},
	OpIfcmpImm: {
		name: "ifcmp_imm", format: FormatBinaryImm, ctrl: types.ClassIB,
		results: constraints(concrete(types.IFlags)), args: constraints(same),
	},
	OpFcmp:   {name: "fcmp", format: FormatFloatCompare, ctrl: types.ClassFloat, results: constraints(asBool), args: constraints(same, same)},
	OpFfcmp:  {name: "ffcmp", format: FormatBinary, ctrl: types.ClassFloat, results: constraints(concrete(types.FFlags)), args: constraints(same, same)},
	OpTrueif: {name: "trueif", format: FormatIntCond, typevarOperand: -1, results: constraints(concrete(types.B1)), args: constraints(concrete(types.IFlags))},
	OpTrueff: {name: "trueff", format: FormatFloatCond, typevarOperand: -1, results: constraints(concrete(types.B1)), args: constraints(concrete(types.FFlags))},

	OpFadd:      binary("fadd", types.ClassFloat),
	OpFsub:      binary("fsub", types.ClassFloat),
	OpFmul:      binary("fmul", types.ClassFloat),
	OpFdiv:      binary("fdiv", types.ClassFloat),
	OpFmin:      binary("fmin", types.ClassFloat),
	OpFmax:      binary("fmax", types.ClassFloat),
	OpFcopysign: binary("fcopysign", types.ClassFloat),
	OpFneg:      unary("fneg", types.ClassFloat),
	OpFabs:      unary("fabs", types.ClassFloat),
	OpSqrt:      unary("sqrt", types.ClassFloat),
	OpCeil:      unary("ceil", types.ClassFloat),
	OpFloor:     unary("floor", types.ClassFloat),
	OpTrunc:     unary("trunc", types.ClassFloat),
	OpNearest:   unary("nearest", types.ClassFloat),
	OpFma:       {name: "fma", format: FormatTernary, ctrl: types.ClassFloat, results: constraints(same), args: constraints(same, same, same)},

	OpUextend:      conversion("uextend", types.ClassInt, types.ClassInt, ResultWider),
	OpSextend:      conversion("sextend", types.ClassInt, types.ClassInt, ResultWider),
	OpIreduce:      conversion("ireduce", types.ClassInt, types.ClassInt, ResultNarrower),
	OpFpromote:     conversion("fpromote", types.ClassFloat, types.ClassFloat, ResultWider),
	OpFdemote:      conversion("fdemote", types.ClassFloat, types.ClassFloat, ResultNarrower),
	OpFcvtToUint:   trapping(conversion("fcvt_to_uint", types.ClassIB, types.ClassFB, NoRelation)),
	OpFcvtToSint:   trapping(conversion("fcvt_to_sint", types.ClassIB, types.ClassFB, NoRelation)),
	OpFcvtFromUint: conversion("fcvt_from_uint", types.ClassFB, types.ClassIB, NoRelation),
	OpFcvtFromSint: conversion("fcvt_from_sint", types.ClassFB, types.ClassIB, NoRelation),
	OpBitcast:      conversion("bitcast", types.ClassMem, types.ClassMem, SameWidth),
	OpBint:         conversion("bint", types.ClassIB, types.ClassBool, NoRelation),

	OpSplat:       {name: "splat", format: FormatUnary, ctrl: types.ClassVector, typevarOperand: -1, results: constraints(same), args: constraints(laneOf)},
	OpInsertlane:  {name: "insertlane", format: FormatInsertLane, ctrl: types.ClassVector, results: constraints(same), args: constraints(same, laneOf)},
	OpExtractlane: {name: "extractlane", format: FormatExtractLane, ctrl: types.ClassVector, results: constraints(laneOf), args: constraints(same)},
}

func binary(name string, class types.Class) opInfo {
	return opInfo{name: name, format: FormatBinary, ctrl: class, results: constraints(same), args: constraints(same, same)}
}

func binaryImm(name string) opInfo {
	return opInfo{name: name, format: FormatBinaryImm, ctrl: types.ClassIB, results: constraints(same), args: constraints(same)}
}

func unary(name string, class types.Class) opInfo {
	return opInfo{name: name, format: FormatUnary, ctrl: class, results: constraints(same), args: constraints(same)}
}

func shift(name string) opInfo {
	return opInfo{name: name, format: FormatBinary, ctrl: types.ClassInt, results: constraints(same), args: constraints(same, free(types.ClassIB))}
}

func conversion(name string, result, arg types.Class, width WidthRelation) opInfo {
	return opInfo{
		name: name, format: FormatUnary, ctrl: result, typevarOperand: -1,
		results: constraints(same), args: constraints(free(arg)), width: width,
	}
}

func trapping(op opInfo) opInfo {
	op.flags |= canTrap
	return op
}

var opcodeByName = func() map[string]Opcode {
	m := make(map[string]Opcode, numOpcodes)
	for op := OpInvalid + 1; op < numOpcodes; op++ {
		m[opcodes[op].name] = op
	}

	return m
}()

// LookupOpcode finds an opcode by its text name.
func LookupOpcode(name string) (Opcode, bool) {
	op, ok := opcodeByName[name]
	return op, ok
}

func (op Opcode) info() *opInfo {
	if op >= numOpcodes {
		return &opcodes[OpInvalid]
	}

	return &opcodes[op]
}

func (op Opcode) String() string { return op.info().name }

// Valid reports whether op is a real opcode.
func (op Opcode) Valid() bool { return op > OpInvalid && op < numOpcodes }

// Format returns the operand format.
func (op Opcode) Format() Format { return op.info().format }

// IsTerminator reports whether control never falls through op.
func (op Opcode) IsTerminator() bool { return op.info().flags&isTerminator != 0 }

// IsBranch reports whether op may transfer control to another EBB.
func (op Opcode) IsBranch() bool { return op.info().flags&isBranch != 0 }

// IsCall reports whether op calls a function.
func (op Opcode) IsCall() bool { return op.info().flags&isCall != 0 }

// IsReturn reports whether op returns from the function.
func (op Opcode) IsReturn() bool { return op.info().flags&isReturn != 0 }

// CanLoad reports whether op reads memory.
func (op Opcode) CanLoad() bool { return op.info().flags&canLoad != 0 }

// CanStore reports whether op writes memory.
func (op Opcode) CanStore() bool { return op.info().flags&canStore != 0 }

// CanTrap reports whether op may trap.
func (op Opcode) CanTrap() bool { return op.info().flags&canTrap != 0 }

// MovesMemory reports whether op moves its controlling type through memory:
// loads, stores, spills and fills.
func (op Opcode) MovesMemory() bool {
	return op.info().flags&(canLoad|canStore|movesMemory) != 0
}

// IsPolymorphic reports whether op has a controlling type variable.
func (op Opcode) IsPolymorphic() bool { return op.info().ctrl != types.ClassNone }

// CtrlClass returns the class of the controlling type variable.
func (op Opcode) CtrlClass() types.Class { return op.info().ctrl }

// TypevarOperand returns the index of the fixed operand that determines the
// controlling type, or -1 when it is given explicitly.
func (op Opcode) TypevarOperand() int {
	if !op.IsPolymorphic() {
		return -1
	}

	return op.info().typevarOperand
}

// ResultConstraints returns the constraints on fixed results. Calls have
// results from their signature instead.
func (op Opcode) ResultConstraints() []Constraint { return op.info().results }

// ArgConstraints returns the constraints on fixed value operands.
func (op Opcode) ArgConstraints() []Constraint { return op.info().args }

// WidthRelation returns the width rule of a conversion.
func (op Opcode) WidthRelation() WidthRelation { return op.info().width }

// WritesFlags reports whether op produces a CPU flags value.
func (op Opcode) WritesFlags() bool {
	for _, c := range op.info().results {
		if c.Kind == Concrete && c.Type.IsFlags() {
			return true
		}
	}

	return false
}
