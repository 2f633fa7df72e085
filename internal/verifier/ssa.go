package verifier

import (
	"fmt"

	"ebbir/internal/diag"
	"ebbir/internal/dominance"
	"ebbir/internal/ir"
)

// checkSSA verifies that every value has exactly one definition and that
// every use in reachable code is dominated by it.
func checkSSA(c *Context, r *Report) {
	f := c.Func

	for _, ebb := range f.Layout.Ebbs() {
		for i, v := range f.DFG.EbbParams(ebb) {
			if f.DFG.ValueValid(v) && f.DFG.ValueDef(v) != ir.ParamDef(ebb, i) {
				r.add(inconsistent(c, v, ir.ParamDef(ebb, i)))
			}
		}

		reachable := c.Domtree.IsReachable(ebb)

		for _, inst := range c.laidOut(ebb) {
			for i, v := range f.DFG.InstResults(inst) {
				if f.DFG.ValueValid(v) && f.DFG.ValueDef(v) != ir.ResultDef(inst, i) {
					r.add(inconsistent(c, v, ir.ResultDef(inst, i)))
				}
			}

			for _, v := range f.DFG.InstData(inst).Args {
				if f.DFG.ValueValid(v) {
					checkUse(c, v, inst, reachable, r)
				}
			}
		}
	}
}

func inconsistent(c *Context, v ir.Value, listed ir.ValueDef) *diag.FindingBuilder {
	return diag.NewFinding(diag.InconsistentDef, diag.CatSSA, ir.AnyValue(v),
		"%v is listed at %s but defined at %s", v, defString(listed), defString(c.Func.DFG.ValueDef(v)))
}

func defString(d ir.ValueDef) string {
	if d.Kind == ir.DefParam {
		return fmt.Sprintf("%v parameter %d", d.Ebb, d.Num)
	}

	return fmt.Sprintf("%v result %d", d.Inst, d.Num)
}

func checkUse(c *Context, v ir.Value, inst ir.Inst, reachable bool, r *Report) {
	f := c.Func
	def := f.DFG.ValueDef(v)

	finding := func(code, format string, args ...any) {
		r.add(diag.NewFinding(code, diag.CatSSA, ir.AnyValue(v), format, args...).At(inst))
	}

	var (
		point  dominance.ProgramPoint
		defEbb ir.Ebb
	)

	switch def.Kind {
	case ir.DefResult:
		if !f.DFG.InstValid(def.Inst) {
			finding(diag.InconsistentDef, "%v is defined by %v, which does not exist", v, def.Inst)
			return
		}

		rs := f.DFG.InstResults(def.Inst)
		if def.Num >= len(rs) || rs[def.Num] != v {
			finding(diag.InconsistentDef, "%v is not among the results of its defining %v", v, def.Inst)
			return
		}

		if def.Inst == inst {
			finding(diag.SelfReference, "%v uses its own result %v", inst, v)
			return
		}

		ebb, ok := f.Layout.InstEbb(def.Inst)
		if !ok {
			finding(diag.DefNotInLayout, "%v is defined by %v, which is not in the layout", v, def.Inst)
			return
		}

		point, defEbb = dominance.AtInst(def.Inst), ebb

	case ir.DefParam:
		ps := f.DFG.EbbParams(def.Ebb)
		if !f.DFG.EbbValid(def.Ebb) || def.Num >= len(ps) || ps[def.Num] != v {
			finding(diag.InconsistentDef, "%v is not among the parameters of %v", v, def.Ebb)
			return
		}

		if !f.Layout.IsEbbInserted(def.Ebb) {
			finding(diag.DefNotInLayout, "%v is a parameter of %v, which is not in the layout", v, def.Ebb)
			return
		}

		point, defEbb = dominance.AtEbb(def.Ebb), def.Ebb
	}

	if !reachable || c.Domtree.Dominates(point, inst) {
		return
	}

	if !c.Domtree.IsReachable(defEbb) {
		finding(diag.UnreachableDefUsed, "%v is defined in unreachable %v", v, defEbb)
		return
	}

	finding(diag.UseNotDominated, "use of %v is not dominated by its definition", v)
}
