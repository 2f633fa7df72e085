package verifier

import (
	"ebbir/internal/diag"
	"ebbir/internal/ir"
)

// checkLayout verifies terminator placement, the entry block and that every
// branch target is laid out.
func checkLayout(c *Context, r *Report) {
	f := c.Func

	entry, ok := f.EntryBlock()
	if !ok {
		r.add(diag.NewFinding(diag.MissingEntry, diag.CatLayout, ir.AnyFunction(), "function has no entry block"))
	} else {
		checkEntryParams(c, entry, r)
	}

	for _, ebb := range f.Layout.Ebbs() {
		if len(f.Layout.EbbInsts(ebb)) == 0 {
			r.add(diag.NewFinding(diag.EmptyEbb, diag.CatLayout, ir.AnyEbb(ebb), "%v has no instructions", ebb))
			continue
		}

		insts := c.laidOut(ebb)

		for i, inst := range insts {
			if got, ok := f.Layout.InstEbb(inst); !ok || got != ebb {
				r.add(diag.NewFinding(diag.InstNotInLayout, diag.CatLayout, ir.AnyInst(inst),
					"%v is listed in %v but placed elsewhere", inst, ebb))
			}

			op := f.DFG.InstData(inst).Opcode
			last := i == len(insts)-1

			switch {
			case last && !op.IsTerminator():
				r.add(diag.NewFinding(diag.MissingTerminator, diag.CatLayout, ir.AnyEbb(ebb),
					"%v does not end in a terminator", ebb).
					At(inst).
					WithNote("last instruction is %s", op).
					WithHelp("end the EBB with a jump, return or trap"))
			case !last && op.IsTerminator():
				r.add(diag.NewFinding(diag.EarlyTerminator, diag.CatLayout, ir.AnyInst(inst),
					"terminator %s is not the last instruction of %v", op, ebb))
			}

			ir.VisitBranchTargets(f, inst, func(dest ir.Ebb) {
				if f.DFG.EbbValid(dest) && !f.Layout.IsEbbInserted(dest) {
					r.add(diag.NewFinding(diag.EbbNotInLayout, diag.CatLayout, ir.AnyInst(inst),
						"branch target %v is not in the layout", dest))
				}
			})
		}
	}
}

func checkEntryParams(c *Context, entry ir.Ebb, r *Report) {
	f := c.Func
	params := f.DFG.EbbParams(entry)
	sig := f.Signature.ParamTypes()

	if len(params) != len(sig) {
		r.add(diag.NewFinding(diag.EntryParamMismatch, diag.CatLayout, ir.AnyEbb(entry),
			"entry block has %d parameters, signature has %d", len(params), len(sig)))

		return
	}

	for i, v := range params {
		if got := f.DFG.ValueType(v); got != sig[i] {
			r.add(diag.NewFinding(diag.EntryParamMismatch, diag.CatLayout, ir.AnyEbb(entry),
				"entry parameter %v has type %s, signature wants %s", v, typeName(got), sig[i]))
		}
	}
}
