package ir

import (
	"fmt"

	"ebbir/internal/entity"
)

// Entity references. Each is a dense index into a table owned by one
// Function; none is meaningful outside it.
type (
	Ebb       uint32
	Inst      uint32
	Value     uint32
	StackSlot uint32
	GlobalVar uint32
	Heap      uint32
	SigRef    uint32
	FuncRef   uint32
	JumpTable uint32
)

// NoEbb marks an absent EBB, such as a hole in a jump table.
const NoEbb = Ebb(entity.Reserved)

func (e Ebb) String() string       { return fmt.Sprintf("ebb%d", uint32(e)) }
func (i Inst) String() string      { return fmt.Sprintf("inst%d", uint32(i)) }
func (v Value) String() string     { return fmt.Sprintf("v%d", uint32(v)) }
func (s StackSlot) String() string { return fmt.Sprintf("ss%d", uint32(s)) }
func (g GlobalVar) String() string { return fmt.Sprintf("gv%d", uint32(g)) }
func (h Heap) String() string      { return fmt.Sprintf("heap%d", uint32(h)) }
func (s SigRef) String() string    { return fmt.Sprintf("sig%d", uint32(s)) }
func (f FuncRef) String() string   { return fmt.Sprintf("fn%d", uint32(f)) }
func (j JumpTable) String() string { return fmt.Sprintf("jt%d", uint32(j)) }

// EntityKind tells which table an AnyEntity refers to.
type EntityKind uint8

const (
	KindFunction EntityKind = iota
	KindStackSlot
	KindGlobalVar
	KindHeap
	KindSigRef
	KindFuncRef
	KindJumpTable
	KindEbb
	KindInst
	KindValue
)

// IsPreamble reports whether the kind is declared in the function preamble.
func (k EntityKind) IsPreamble() bool {
	return k >= KindStackSlot && k <= KindJumpTable
}

// AnyEntity names any entity of a function, or the function itself. It is
// the location type of verifier findings.
type AnyEntity struct {
	Kind  EntityKind
	Index uint32
}

// Entity constructors.
func AnyFunction() AnyEntity             { return AnyEntity{Kind: KindFunction} }
func AnyEbb(e Ebb) AnyEntity             { return AnyEntity{KindEbb, uint32(e)} }
func AnyInst(i Inst) AnyEntity           { return AnyEntity{KindInst, uint32(i)} }
func AnyValue(v Value) AnyEntity         { return AnyEntity{KindValue, uint32(v)} }
func AnyStackSlot(s StackSlot) AnyEntity { return AnyEntity{KindStackSlot, uint32(s)} }
func AnyGlobalVar(g GlobalVar) AnyEntity { return AnyEntity{KindGlobalVar, uint32(g)} }
func AnyHeap(h Heap) AnyEntity           { return AnyEntity{KindHeap, uint32(h)} }
func AnySigRef(s SigRef) AnyEntity       { return AnyEntity{KindSigRef, uint32(s)} }
func AnyFuncRef(f FuncRef) AnyEntity     { return AnyEntity{KindFuncRef, uint32(f)} }
func AnyJumpTable(j JumpTable) AnyEntity { return AnyEntity{KindJumpTable, uint32(j)} }

func (a AnyEntity) String() string {
	switch a.Kind {
	case KindFunction:
		return "function"
	case KindStackSlot:
		return StackSlot(a.Index).String()
	case KindGlobalVar:
		return GlobalVar(a.Index).String()
	case KindHeap:
		return Heap(a.Index).String()
	case KindSigRef:
		return SigRef(a.Index).String()
	case KindFuncRef:
		return FuncRef(a.Index).String()
	case KindJumpTable:
		return JumpTable(a.Index).String()
	case KindEbb:
		return Ebb(a.Index).String()
	case KindInst:
		return Inst(a.Index).String()
	case KindValue:
		return Value(a.Index).String()
	default:
		return "entity?"
	}
}
