package ir

import (
	"fmt"
	"strings"

	"ebbir/internal/immediates"
)

// StackSlotKind says who owns a stack slot.
type StackSlotKind uint8

const (
	// ExplicitSlot is created by the frontend and may have its address taken.
	ExplicitSlot StackSlotKind = iota
	// SpillSlot is private to the register allocator.
	SpillSlot
	// IncomingArg is a stack-passed argument in the caller's frame.
	IncomingArg
	// OutgoingArg is space for a stack-passed argument of a call.
	OutgoingArg
)

var slotKindNames = [...]string{
	ExplicitSlot: "explicit_slot",
	SpillSlot:    "spill_slot",
	IncomingArg:  "incoming_arg",
	OutgoingArg:  "outgoing_arg",
}

func (k StackSlotKind) String() string { return slotKindNames[k] }

// ParseStackSlotKind parses a slot kind keyword.
func ParseStackSlotKind(s string) (StackSlotKind, bool) {
	for i, n := range slotKindNames {
		if n == s {
			return StackSlotKind(i), true
		}
	}

	return 0, false
}

// StackSlotData declares a region of the stack frame.
type StackSlotData struct {
	Kind StackSlotKind
	Size uint32

	// Align is a power of two, zero when unconstrained.
	Align uint32

	// Offset is fixed for argument slots and set by layout for the rest.
	Offset    int32
	HasOffset bool
}

func (s StackSlotData) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %d", s.Kind, s.Size)

	if s.Align != 0 {
		fmt.Fprintf(&b, ", align %d", s.Align)
	}

	if s.HasOffset {
		fmt.Fprintf(&b, ", offset %d", s.Offset)
	}

	return b.String()
}

// ExternalNameKind distinguishes the two spellings of an external name.
type ExternalNameKind uint8

const (
	// TestcaseName is a free-form "%name".
	TestcaseName ExternalNameKind = iota
	// UserName is a numeric "uN:M" pair chosen by the embedder.
	UserName
)

// ExternalName names a symbol resolved outside the function.
type ExternalName struct {
	Kind      ExternalNameKind
	Name      string
	Namespace uint32
	Index     uint32
}

// Testcase returns a "%name" external name.
func Testcase(name string) ExternalName {
	return ExternalName{Kind: TestcaseName, Name: name}
}

// User returns a "uN:M" external name.
func User(namespace, index uint32) ExternalName {
	return ExternalName{Kind: UserName, Namespace: namespace, Index: index}
}

func (n ExternalName) String() string {
	if n.Kind == UserName {
		return fmt.Sprintf("u%d:%d", n.Namespace, n.Index)
	}

	return "%" + n.Name
}

// GlobalVarKind is the way a global variable computes its address.
type GlobalVarKind uint8

const (
	// VMContextGV is a constant offset from the VM context pointer.
	VMContextGV GlobalVarKind = iota
	// DerefGV loads a pointer from another global and adds an offset.
	DerefGV
	// SymbolGV is an address resolved by the linker.
	SymbolGV
)

// GlobalVarData declares a global variable.
type GlobalVarData struct {
	Kind      GlobalVarKind
	Offset    immediates.Offset32
	Base      GlobalVar
	Name      ExternalName
	Colocated bool
}

func (g GlobalVarData) String() string {
	switch g.Kind {
	case VMContextGV:
		return "vmctx" + g.Offset.String()
	case DerefGV:
		return fmt.Sprintf("deref(%s)%s", g.Base, g.Offset)
	default:
		if g.Colocated {
			return "globalsym colocated " + g.Name.String()
		}

		return "globalsym " + g.Name.String()
	}
}

// HeapStyle selects between a fixed and a resizable heap.
type HeapStyle uint8

const (
	StaticHeap HeapStyle = iota
	DynamicHeap
)

// HeapBaseKind says where a heap's base address comes from.
type HeapBaseKind uint8

const (
	// HeapBaseGlobal takes the base from a global variable.
	HeapBaseGlobal HeapBaseKind = iota
	// HeapBaseReservedReg keeps the base in a reserved register. It is
	// accepted and printed but carries no further semantics.
	HeapBaseReservedReg
)

// HeapData declares a sandboxed memory region.
type HeapData struct {
	Style    HeapStyle
	BaseKind HeapBaseKind
	Base     GlobalVar
	Min      immediates.Imm64
	Guard    immediates.Imm64

	// Bound is the byte size of a static heap.
	Bound immediates.Imm64

	// BoundGV holds the current size of a dynamic heap.
	BoundGV GlobalVar
}

func (h HeapData) String() string {
	var b strings.Builder

	if h.Style == StaticHeap {
		b.WriteString("static ")
	} else {
		b.WriteString("dynamic ")
	}

	if h.BaseKind == HeapBaseReservedReg {
		b.WriteString("reserved_reg")
	} else {
		b.WriteString(h.Base.String())
	}

	fmt.Fprintf(&b, ", min %s", h.Min)

	if h.Style == StaticHeap {
		fmt.Fprintf(&b, ", bound %s", h.Bound)
	} else {
		fmt.Fprintf(&b, ", bound %s", h.BoundGV)
	}

	fmt.Fprintf(&b, ", guard %s", h.Guard)

	return b.String()
}

// ExtFuncData declares a function that may be called directly.
type ExtFuncData struct {
	Name      ExternalName
	Signature SigRef
	Colocated bool
}

func (f ExtFuncData) String() string {
	if f.Colocated {
		return fmt.Sprintf("colocated %s %s", f.Name, f.Signature)
	}

	return fmt.Sprintf("%s %s", f.Name, f.Signature)
}

// JumpTableData lists the targets of a br_table. NoEbb marks a hole that
// falls through.
type JumpTableData struct {
	Entries []Ebb
}

func (j JumpTableData) String() string {
	var b strings.Builder

	b.WriteString("jump_table")

	for i, e := range j.Entries {
		if i != 0 {
			b.WriteString(",")
		}

		b.WriteString(" ")

		if e == NoEbb {
			b.WriteString("0")
		} else {
			b.WriteString(e.String())
		}
	}

	return b.String()
}
