package ir

import (
	"ebbir/internal/entity"
)

// BlockPredecessor is an edge into an EBB: the EBB holding the branch and
// the branch instruction itself.
type BlockPredecessor struct {
	Ebb  Ebb
	Inst Inst
}

// ControlFlowGraph holds the predecessor and successor edges of every EBB in
// the layout. It is recomputed from scratch, never updated in place.
type ControlFlowGraph struct {
	preds *entity.SecondaryMap[Ebb, []BlockPredecessor]
	succs *entity.SecondaryMap[Ebb, []Ebb]
}

// ComputeCFG derives the control flow graph of f. Branches to EBBs that do
// not exist or are not in the layout produce no edge.
func ComputeCFG(f *Function) *ControlFlowGraph {
	cfg := &ControlFlowGraph{
		preds: entity.NewSecondaryMap[Ebb, []BlockPredecessor](nil),
		succs: entity.NewSecondaryMap[Ebb, []Ebb](nil),
	}

	for _, ebb := range f.Layout.Ebbs() {
		for _, inst := range f.Layout.EbbInsts(ebb) {
			VisitBranchTargets(f, inst, func(dest Ebb) {
				if f.DFG.EbbValid(dest) && f.Layout.IsEbbInserted(dest) {
					cfg.addEdge(ebb, inst, dest)
				}
			})
		}
	}

	return cfg
}

// VisitBranchTargets calls fn for each destination of inst, including every
// filled entry of a jump table.
func VisitBranchTargets(f *Function, inst Inst, fn func(Ebb)) {
	if !f.DFG.InstValid(inst) {
		return
	}

	info := f.DFG.InstData(inst).AnalyzeBranch()

	switch info.Kind {
	case SingleDest:
		fn(info.Dest)
	case TableDest:
		jt, ok := f.JumpTables.Get(info.Table)
		if !ok {
			return
		}

		for _, dest := range jt.Entries {
			if dest != NoEbb {
				fn(dest)
			}
		}
	}
}

func (c *ControlFlowGraph) addEdge(from Ebb, inst Inst, to Ebb) {
	p := c.preds.Ref(to)
	*p = append(*p, BlockPredecessor{Ebb: from, Inst: inst})

	s := c.succs.Ref(from)
	for _, e := range *s {
		if e == to {
			return
		}
	}

	*s = append(*s, to)
}

// Preds returns the edges into ebb in layout order of the branches.
func (c *ControlFlowGraph) Preds(ebb Ebb) []BlockPredecessor {
	return c.preds.Get(ebb)
}

// Succs returns the distinct successors of ebb in order of first branch.
func (c *ControlFlowGraph) Succs(ebb Ebb) []Ebb {
	return c.succs.Get(ebb)
}
