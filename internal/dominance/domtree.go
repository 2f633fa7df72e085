// Package dominance computes the dominator tree of a function.
//
// The immediate dominator of an EBB is the branch instruction in the
// dominating EBB rather than the EBB itself. Conditional branches may sit in
// the middle of an EBB, so this gives exact dominance between instructions.
package dominance

import (
	"ebbir/internal/entity"
	"ebbir/internal/ir"
)

// Internal RPO numbering: 0 is unreachable, 1 is reachable but not yet
// numbered, and the entry block starts at entryRPO.
const (
	unreachable = 0
	seen        = 1
	entryRPO    = 2
)

type node struct {
	rpo     uint32
	idom    ir.Inst
	hasIdom bool
}

// Tree is the dominator tree of one function. It is computed from scratch
// and never updated.
type Tree struct {
	layout    *ir.Layout
	nodes     *entity.SecondaryMap[ir.Ebb, node]
	postorder []ir.Ebb
	entry     ir.Ebb
	hasEntry  bool
}

// Compute builds the dominator tree of f from cfg.
func Compute(f *ir.Function, cfg *ir.ControlFlowGraph) *Tree {
	t := &Tree{
		layout: f.Layout,
		nodes:  entity.NewSecondaryMap[ir.Ebb](node{}),
	}

	t.entry, t.hasEntry = f.EntryBlock()
	if !t.hasEntry {
		return t
	}

	t.computePostorder(cfg)

	// Number EBBs in reverse postorder and make a first guess at each
	// immediate dominator using predecessors that already have one.
	n := len(t.postorder)
	for i := n - 1; i >= 0; i-- {
		ebb := t.postorder[i]
		t.nodes.Ref(ebb).rpo = uint32(n-1-i) + entryRPO

		if ebb == t.entry {
			continue
		}

		if idom, ok := t.computeIdom(ebb, cfg); ok {
			nd := t.nodes.Ref(ebb)
			nd.idom, nd.hasIdom = idom, true
		}
	}

	// Irreducible control flow can need more passes.
	for changed := true; changed; {
		changed = false

		for i := n - 1; i >= 0; i-- {
			ebb := t.postorder[i]
			if ebb == t.entry {
				continue
			}

			idom, ok := t.computeIdom(ebb, cfg)
			if !ok {
				continue
			}

			nd := t.nodes.Ref(ebb)
			if !nd.hasIdom || nd.idom != idom {
				nd.idom, nd.hasIdom = idom, true
				changed = true
			}
		}
	}

	return t
}

type visit struct {
	ebb  ir.Ebb
	done bool
}

func (t *Tree) computePostorder(cfg *ir.ControlFlowGraph) {
	stack := []visit{{ebb: t.entry}}

	for len(stack) != 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.done {
			t.postorder = append(t.postorder, top.ebb)
			continue
		}

		if t.nodes.Get(top.ebb).rpo != unreachable {
			continue
		}

		t.nodes.Ref(top.ebb).rpo = seen
		stack = append(stack, visit{ebb: top.ebb, done: true})

		// Push in reverse so the first successor is visited first.
		succs := cfg.Succs(top.ebb)
		for i := len(succs) - 1; i >= 0; i-- {
			if t.nodes.Get(succs[i]).rpo == unreachable {
				stack = append(stack, visit{ebb: succs[i]})
			}
		}
	}
}

// computeIdom intersects the dominator chains of every predecessor that is
// already placed in the tree.
func (t *Tree) computeIdom(ebb ir.Ebb, cfg *ir.ControlFlowGraph) (ir.Inst, bool) {
	var (
		idom  ir.BlockPredecessor
		found bool
	)

	for _, pred := range cfg.Preds(ebb) {
		pn := t.nodes.Get(pred.Ebb)
		if pn.rpo < entryRPO || pred.Ebb != t.entry && !pn.hasIdom {
			continue
		}

		if !found {
			idom, found = pred, true
			continue
		}

		idom = t.commonDominator(idom, pred)
	}

	return idom.Inst, found
}

// commonDominator returns the nearest program point dominating both a and b.
func (t *Tree) commonDominator(a, b ir.BlockPredecessor) ir.BlockPredecessor {
	for a.Ebb != b.Ebb {
		ra, rb := t.nodes.Get(a.Ebb).rpo, t.nodes.Get(b.Ebb).rpo

		if ra < rb {
			next, ok := t.up(b.Ebb)
			if !ok {
				return a
			}

			b = next
		} else {
			next, ok := t.up(a.Ebb)
			if !ok {
				return b
			}

			a = next
		}
	}

	if t.layout.InstPosition(a.Inst) <= t.layout.InstPosition(b.Inst) {
		return a
	}

	return b
}

func (t *Tree) up(ebb ir.Ebb) (ir.BlockPredecessor, bool) {
	nd := t.nodes.Get(ebb)
	if !nd.hasIdom {
		return ir.BlockPredecessor{}, false
	}

	e, ok := t.layout.InstEbb(nd.idom)
	if !ok {
		return ir.BlockPredecessor{}, false
	}

	return ir.BlockPredecessor{Ebb: e, Inst: nd.idom}, true
}

// IsReachable reports whether ebb can be reached from the entry block.
func (t *Tree) IsReachable(ebb ir.Ebb) bool {
	return t.nodes.Get(ebb).rpo != unreachable
}

// Idom returns the branch instruction that immediately dominates ebb. The
// entry block and unreachable EBBs have none.
func (t *Tree) Idom(ebb ir.Ebb) (ir.Inst, bool) {
	nd := t.nodes.Get(ebb)
	return nd.idom, nd.hasIdom
}

// RPONumber returns the position of ebb in reverse postorder, starting at 1
// for the entry block. Unreachable EBBs return 0.
func (t *Tree) RPONumber(ebb ir.Ebb) int {
	rpo := t.nodes.Get(ebb).rpo
	if rpo < entryRPO {
		return 0
	}

	return int(rpo - entryRPO + 1)
}

// Postorder returns the reachable EBBs in postorder. The slice must not be
// modified.
func (t *Tree) Postorder() []ir.Ebb {
	return t.postorder
}

// ProgramPoint is either the start of an EBB or an instruction.
type ProgramPoint struct {
	Ebb    ir.Ebb
	Inst   ir.Inst
	IsInst bool
}

// AtEbb returns the program point at the top of ebb, where its parameters
// are defined.
func AtEbb(ebb ir.Ebb) ProgramPoint { return ProgramPoint{Ebb: ebb} }

// AtInst returns the program point of inst.
func AtInst(inst ir.Inst) ProgramPoint { return ProgramPoint{Inst: inst, IsInst: true} }

// Dominates reports whether every path from the entry to b passes through a.
// An instruction dominates itself. b must be in the layout.
func (t *Tree) Dominates(a ProgramPoint, b ir.Inst) bool {
	if !a.IsInst {
		ebbB, ok := t.layout.InstEbb(b)
		if !ok {
			return false
		}

		if ebbB == a.Ebb {
			return true
		}

		_, ok = t.lastDominator(a.Ebb, b)

		return ok
	}

	ebbA, ok := t.layout.InstEbb(a.Inst)
	if !ok {
		return false
	}

	last, ok := t.lastDominator(ebbA, b)
	if !ok {
		return false
	}

	return t.layout.InstPosition(a.Inst) <= t.layout.InstPosition(last)
}

// lastDominator walks b up the tree until it reaches EBB a, returning the
// instruction in a through which every path to b leaves a.
func (t *Tree) lastDominator(a ir.Ebb, b ir.Inst) (ir.Inst, bool) {
	ebbB, ok := t.layout.InstEbb(b)
	if !ok {
		return 0, false
	}

	rpoA := t.nodes.Get(a).rpo

	for rpoA < t.nodes.Get(ebbB).rpo {
		next, ok := t.up(ebbB)
		if !ok {
			return 0, false
		}

		ebbB, b = next.Ebb, next.Inst
	}

	if ebbB != a {
		return 0, false
	}

	return b, true
}
