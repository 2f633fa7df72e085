package ir

import (
	"slices"

	"tlog.app/go/errors"

	"ebbir/internal/entity"
)

// Layout is the order of EBBs in a function and of instructions within
// each EBB. The first EBB is the entry block.
type Layout struct {
	// dfg allocates the ids the layout may hold. A nil dfg accepts any id.
	dfg *DataFlowGraph

	ebbs    []Ebb
	ebbPos  *entity.SecondaryMap[Ebb, int]
	insts   *entity.SecondaryMap[Ebb, []Inst]
	instEbb *entity.SecondaryMap[Inst, Ebb]
	instPos *entity.SecondaryMap[Inst, int]
}

// NewLayout returns an empty layout for the entities of dfg.
func NewLayout(dfg *DataFlowGraph) *Layout {
	return &Layout{
		dfg:     dfg,
		ebbPos:  entity.NewSecondaryMap[Ebb](-1),
		insts:   entity.NewSecondaryMap[Ebb, []Inst](nil),
		instEbb: entity.NewSecondaryMap[Inst](NoEbb),
		instPos: entity.NewSecondaryMap[Inst](-1),
	}
}

// Ebbs returns the EBBs in layout order. The slice must not be modified.
func (l *Layout) Ebbs() []Ebb { return l.ebbs }

// EntryBlock returns the first EBB.
func (l *Layout) EntryBlock() (Ebb, bool) {
	if len(l.ebbs) == 0 {
		return 0, false
	}

	return l.ebbs[0], true
}

// IsEbbInserted reports whether ebb is in the layout.
func (l *Layout) IsEbbInserted(ebb Ebb) bool {
	return l.ebbPos.Get(ebb) >= 0
}

// EbbPosition returns the index of ebb in layout order, or -1.
func (l *Layout) EbbPosition(ebb Ebb) int {
	return l.ebbPos.Get(ebb)
}

// AppendEbb adds ebb at the end of the layout.
func (l *Layout) AppendEbb(ebb Ebb) error {
	if l.dfg != nil && !l.dfg.EbbValid(ebb) {
		return errors.Wrap(ErrInvalidEntity, "append %v", ebb)
	}

	if l.IsEbbInserted(ebb) {
		return errors.Wrap(ErrAlreadyInLayout, "%v", ebb)
	}

	l.ebbPos.Set(ebb, len(l.ebbs))
	l.ebbs = append(l.ebbs, ebb)

	return nil
}

// EbbInsts returns the instructions of ebb in order. The slice must not be
// modified.
func (l *Layout) EbbInsts(ebb Ebb) []Inst {
	return l.insts.Get(ebb)
}

// LastInst returns the final instruction of ebb.
func (l *Layout) LastInst(ebb Ebb) (Inst, bool) {
	insts := l.insts.Get(ebb)
	if len(insts) == 0 {
		return 0, false
	}

	return insts[len(insts)-1], true
}

// InstEbb returns the EBB containing inst.
func (l *Layout) InstEbb(inst Inst) (Ebb, bool) {
	ebb := l.instEbb.Get(inst)
	return ebb, ebb != NoEbb
}

// InstPosition returns the index of inst within its EBB, or -1.
func (l *Layout) InstPosition(inst Inst) int {
	return l.instPos.Get(inst)
}

// AppendInst adds inst at the end of ebb.
func (l *Layout) AppendInst(inst Inst, ebb Ebb) error {
	if l.dfg != nil && !l.dfg.InstValid(inst) {
		return errors.Wrap(ErrInvalidEntity, "append %v to %v", inst, ebb)
	}

	if !l.IsEbbInserted(ebb) {
		return errors.Wrap(ErrNotInLayout, "append %v to %v", inst, ebb)
	}

	if _, ok := l.InstEbb(inst); ok {
		return errors.Wrap(ErrAlreadyInLayout, "%v", inst)
	}

	insts := l.insts.Ref(ebb)

	l.instEbb.Set(inst, ebb)
	l.instPos.Set(inst, len(*insts))
	*insts = append(*insts, inst)

	return nil
}

// InsertInstBefore inserts inst immediately before before.
func (l *Layout) InsertInstBefore(inst, before Inst) error {
	if l.dfg != nil && !l.dfg.InstValid(inst) {
		return errors.Wrap(ErrInvalidEntity, "insert %v before %v", inst, before)
	}

	ebb, ok := l.InstEbb(before)
	if !ok {
		return errors.Wrap(ErrNotInLayout, "%v", before)
	}

	if _, ok := l.InstEbb(inst); ok {
		return errors.Wrap(ErrAlreadyInLayout, "%v", inst)
	}

	insts := l.insts.Ref(ebb)
	pos := l.instPos.Get(before)

	*insts = slices.Insert(*insts, pos, inst)
	l.instEbb.Set(inst, ebb)
	l.renumber(*insts, pos)

	return nil
}

// RemoveInst takes inst out of the layout. The instruction data stays in the
// data flow graph.
func (l *Layout) RemoveInst(inst Inst) error {
	ebb, ok := l.InstEbb(inst)
	if !ok {
		return errors.Wrap(ErrNotInLayout, "%v", inst)
	}

	insts := l.insts.Ref(ebb)
	pos := l.instPos.Get(inst)

	*insts = slices.Delete(*insts, pos, pos+1)
	l.instEbb.Set(inst, NoEbb)
	l.instPos.Set(inst, -1)
	l.renumber(*insts, pos)

	return nil
}

func (l *Layout) renumber(insts []Inst, from int) {
	for i := from; i < len(insts); i++ {
		l.instPos.Set(insts[i], i)
	}
}
