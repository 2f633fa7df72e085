package verifier

import (
	"nikand.dev/go/heap"

	"ebbir/internal/diag"
	"ebbir/internal/entity"
	"ebbir/internal/ir"
)

// liveFlags is the flags value live at a program point, if any.
type liveFlags struct {
	v  ir.Value
	ok bool
}

type flagsJob struct {
	ebb  ir.Ebb
	prio int
}

func flagsJobLess(d []flagsJob, i, j int) bool {
	return d[i].prio < d[j].prio
}

// checkFlags runs a backward liveness analysis over flags values only.
//
// The live-in flags value of every EBB is computed to a fixpoint first,
// with EBBs visited in postorder so successors tend to settle before their
// predecessors. A final scan of every EBB then reports the violations.
func checkFlags(c *Context, r *Report) {
	f := c.Func

	if !usesFlags(c) {
		return
	}

	prio := entity.NewSecondaryMap[ir.Ebb](0)
	for i, ebb := range c.Domtree.Postorder() {
		prio.Set(ebb, i+1)
	}

	// Unreachable EBBs go last, in layout order.
	n := len(c.Domtree.Postorder())
	for i, ebb := range f.Layout.Ebbs() {
		if prio.Get(ebb) == 0 {
			prio.Set(ebb, n+1+i)
		}
	}

	liveIn := entity.NewSecondaryMap[ir.Ebb](liveFlags{})
	queued := entity.NewSecondaryMap[ir.Ebb](false)

	work := heap.Heap[flagsJob]{Less: flagsJobLess}

	for _, ebb := range f.Layout.Ebbs() {
		work.Push(flagsJob{ebb: ebb, prio: prio.Get(ebb)})
		queued.Set(ebb, true)
	}

	for work.Len() != 0 {
		ebb := work.Pop().ebb
		queued.Set(ebb, false)

		live := scanFlags(c, ebb, liveIn, nil)

		// A live-in value is only ever set once, which bounds the work even
		// when conflicting values reach the same EBB.
		if !live.ok || liveIn.Get(ebb).ok {
			continue
		}

		liveIn.Set(ebb, live)

		for _, pred := range c.CFG.Preds(ebb) {
			if !queued.Get(pred.Ebb) {
				work.Push(flagsJob{ebb: pred.Ebb, prio: prio.Get(pred.Ebb)})
				queued.Set(pred.Ebb, true)
			}
		}
	}

	for _, ebb := range f.Layout.Ebbs() {
		scanFlags(c, ebb, liveIn, r)
	}
}

// usesFlags reports whether any laid out instruction reads a flags value.
func usesFlags(c *Context) bool {
	f := c.Func

	for _, ebb := range f.Layout.Ebbs() {
		for _, inst := range c.laidOut(ebb) {
			for _, v := range f.DFG.InstData(inst).Args {
				if f.DFG.ValueType(v).IsFlags() {
					return true
				}
			}
		}
	}

	return false
}

// scanFlags walks ebb backwards and returns its live-in flags value. When r
// is not nil, violations are reported to it.
func scanFlags(c *Context, ebb ir.Ebb, liveIn *entity.SecondaryMap[ir.Ebb, liveFlags], r *Report) liveFlags {
	f := c.Func

	var live liveFlags

	report := func(code string, loc ir.AnyEntity, inst ir.Inst, format string, args ...any) {
		if r != nil {
			r.add(diag.NewFinding(code, diag.CatFlags, loc, format, args...).At(inst))
		}
	}

	insts := c.laidOut(ebb)

	for i := len(insts) - 1; i >= 0; i-- {
		inst := insts[i]
		data := f.DFG.InstData(inst)

		// Flags live into a branch target are live at the branch.
		ir.VisitBranchTargets(f, inst, func(dest ir.Ebb) {
			in := liveIn.Get(dest)
			if !in.ok {
				return
			}

			switch {
			case !live.ok:
				live = in
			case live.v != in.v:
				report(diag.FlagsAcrossEdges, ir.AnyInst(inst), inst,
					"%v needs %v live but %v is already live", dest, in.v, live.v)
			}
		})

		defined := false

		for _, res := range f.DFG.InstResults(inst) {
			if !f.DFG.ValueType(res).IsFlags() {
				continue
			}

			defined = true

			switch {
			case live.ok && live.v == res:
				live = liveFlags{}
			case live.ok:
				report(diag.FlagsClobbered, ir.AnyValue(live.v), inst,
					"%v clobbers live flags %v", inst, live.v)
			}
		}

		if !defined && live.ok && c.ClobbersFlags(data.Opcode) {
			report(diag.FlagsClobbered, ir.AnyValue(live.v), inst,
				"%s clobbers live flags %v", data.Opcode, live.v)
		}

		for _, arg := range data.Args {
			if !f.DFG.ValueType(arg).IsFlags() {
				continue
			}

			switch {
			case !live.ok:
				live = liveFlags{v: arg, ok: true}
			case live.v != arg:
				report(diag.FlagsOverlap, ir.AnyValue(arg), inst,
					"%v and %v would both be live", arg, live.v)
			}
		}
	}

	// Parameters are defined at the top of the EBB.
	for _, p := range f.DFG.EbbParams(ebb) {
		if live.ok && live.v == p {
			live = liveFlags{}
		}
	}

	return live
}
