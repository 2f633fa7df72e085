package verifier

import (
	"ebbir/internal/diag"
	"ebbir/internal/ir"
)

// checkEntities reports every reference to an entity that does not exist:
// operands, results and entity operands of laid out instructions, EBB
// parameters, and the links between preamble entities.
func checkEntities(c *Context, r *Report) {
	f := c.Func

	bad := func(loc, ref ir.AnyEntity, what string) *diag.FindingBuilder {
		return diag.NewFinding(diag.InvalidEntity, diag.CatEntities, loc, "%s %v does not exist", what, ref)
	}

	for gv, data := range f.GlobalVars.All() {
		if data.Kind == ir.DerefGV && !f.GlobalVars.Valid(data.Base) {
			r.add(bad(ir.AnyGlobalVar(gv), ir.AnyGlobalVar(data.Base), "deref base"))
		}
	}

	for h, data := range f.Heaps.All() {
		if data.BaseKind == ir.HeapBaseGlobal && !f.GlobalVars.Valid(data.Base) {
			r.add(bad(ir.AnyHeap(h), ir.AnyGlobalVar(data.Base), "heap base"))
		}

		if data.Style == ir.DynamicHeap && !f.GlobalVars.Valid(data.BoundGV) {
			r.add(bad(ir.AnyHeap(h), ir.AnyGlobalVar(data.BoundGV), "heap bound"))
		}
	}

	for fn, data := range f.DFG.ExtFuncs.All() {
		if !f.DFG.Signatures.Valid(data.Signature) {
			r.add(bad(ir.AnyFuncRef(fn), ir.AnySigRef(data.Signature), "signature"))
		}
	}

	for jt, data := range f.JumpTables.All() {
		for _, e := range data.Entries {
			if e != ir.NoEbb && !f.DFG.EbbValid(e) {
				r.add(bad(ir.AnyJumpTable(jt), ir.AnyEbb(e), "jump table entry"))
			}
		}
	}

	for _, ebb := range f.Layout.Ebbs() {
		if !f.DFG.EbbValid(ebb) {
			r.add(bad(ir.AnyFunction(), ir.AnyEbb(ebb), "laid out EBB"))
		}

		for _, v := range f.DFG.EbbParams(ebb) {
			if !f.DFG.ValueValid(v) {
				r.add(bad(ir.AnyEbb(ebb), ir.AnyValue(v), "parameter"))
			}
		}

		for _, inst := range f.Layout.EbbInsts(ebb) {
			if !f.DFG.InstValid(inst) {
				r.add(bad(ir.AnyEbb(ebb), ir.AnyInst(inst), "laid out instruction"))
				continue
			}

			checkInstEntities(c, inst, r)
		}
	}
}

func checkInstEntities(c *Context, inst ir.Inst, r *Report) {
	f := c.Func
	data := f.DFG.InstData(inst)

	if !data.Opcode.Valid() {
		r.add(diag.NewFinding(diag.InvalidEntity, diag.CatEntities, ir.AnyInst(inst), "unknown opcode %d", uint8(data.Opcode)))
		return
	}

	for _, v := range data.Args {
		if !f.DFG.ValueValid(v) {
			r.add(diag.NewFinding(diag.InvalidEntity, diag.CatEntities, ir.AnyInst(inst), "operand %v does not exist", v))
		}
	}

	for _, v := range f.DFG.InstResults(inst) {
		if !f.DFG.ValueValid(v) {
			r.add(diag.NewFinding(diag.InvalidEntity, diag.CatEntities, ir.AnyInst(inst), "result %v does not exist", v))
		}
	}

	data.EntityRefs(func(e ir.AnyEntity) {
		if !f.EntityValid(e) {
			r.add(diag.NewFinding(diag.InvalidEntity, diag.CatEntities, ir.AnyInst(inst), "%v does not exist", e))
		}
	})
}
