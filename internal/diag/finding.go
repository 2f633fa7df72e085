package diag

import (
	"fmt"
	"strings"

	"tlog.app/go/errors"

	"ebbir/internal/entity"
	"ebbir/internal/ir"
)

// Category names the invariant a finding violates. The order of the
// constants is the order findings of one location are reported in.
type Category uint8

const (
	CatEntities Category = iota
	CatLayout
	CatSSA
	CatBranches
	CatGlobals
	CatHeaps
	CatFlags
	CatTypes
	CatLimits
	CatReader
)

var categoryNames = [...]string{
	CatEntities: "entities",
	CatLayout:   "layout",
	CatSSA:      "ssa",
	CatBranches: "branches",
	CatGlobals:  "globals",
	CatHeaps:    "heaps",
	CatFlags:    "flags",
	CatTypes:    "types",
	CatLimits:   "limits",
	CatReader:   "reader",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}

	return fmt.Sprintf("category%d", uint8(c))
}

// Position is a 1-based line and column in a source text.
type Position struct {
	Line   int
	Column int
}

func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }

// Finding is one located violation.
type Finding struct {
	Code     string
	Category Category

	// Location is the offending entity. Function is the location of
	// findings about the function as a whole.
	Location ir.AnyEntity

	// Inst is the instruction a value or EBB finding was observed at,
	// when there is one.
	Inst    ir.Inst
	HasInst bool

	Message string
	Notes   []string
	Help    string

	// Position and Length are filled by the reader or by a resolver.
	Position Position
	Length   int
}

func (f Finding) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s", f.Location, f.Message)

	if f.HasInst && (f.Location.Kind != ir.KindInst || ir.Inst(f.Location.Index) != f.Inst) {
		fmt.Fprintf(&b, " (at %v)", f.Inst)
	}

	fmt.Fprintf(&b, " [%s %s]", f.Code, f.Category)

	return b.String()
}

// FindingBuilder provides a fluent interface for creating findings.
type FindingBuilder struct {
	f Finding
}

// NewFinding starts a finding at loc.
func NewFinding(code string, cat Category, loc ir.AnyEntity, format string, args ...any) *FindingBuilder {
	return &FindingBuilder{
		f: Finding{
			Code:     code,
			Category: cat,
			Location: loc,
			Message:  fmt.Sprintf(format, args...),
			Length:   1,
		},
	}
}

// At records the instruction the finding was observed at.
func (b *FindingBuilder) At(inst ir.Inst) *FindingBuilder {
	b.f.Inst, b.f.HasInst = inst, true
	return b
}

func (b *FindingBuilder) WithNote(format string, args ...any) *FindingBuilder {
	b.f.Notes = append(b.f.Notes, fmt.Sprintf(format, args...))
	return b
}

func (b *FindingBuilder) WithHelp(help string) *FindingBuilder {
	b.f.Help = help
	return b
}

func (b *FindingBuilder) WithPosition(pos Position, length int) *FindingBuilder {
	b.f.Position, b.f.Length = pos, length
	return b
}

// Build returns the completed finding.
func (b *FindingBuilder) Build() Finding {
	return b.f
}

// FatalCode maps a construction error to its F01xx code. Errors that are
// not construction errors map to the empty string.
func FatalCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, entity.ErrCapacity):
		return FatalCapacity
	case errors.Is(err, ir.ErrTerminated):
		return FatalTerminated
	case errors.Is(err, ir.ErrTooManyArgs):
		return FatalTooMany
	case errors.Is(err, ir.ErrOperandCount):
		return FatalOperands
	case errors.Is(err, ir.ErrInvalidEntity):
		return FatalEntity
	case errors.Is(err, ir.ErrNotInLayout), errors.Is(err, ir.ErrAlreadyInLayout):
		return FatalLayout
	default:
		return ""
	}
}
