package verifier

import (
	"ebbir/internal/diag"
	"ebbir/internal/ir"
	"ebbir/internal/types"
)

// checkBranches matches branch arguments against target parameters, return
// values against the signature and call operands against the callee.
func checkBranches(c *Context, r *Report) {
	f := c.Func

	for jt, data := range f.JumpTables.All() {
		for _, e := range data.Entries {
			if e == ir.NoEbb || !f.DFG.EbbValid(e) {
				continue
			}

			if n := len(f.DFG.EbbParams(e)); n != 0 {
				r.add(diag.NewFinding(diag.JumpTableParams, diag.CatBranches, ir.AnyJumpTable(jt),
					"%v targets %v, which has %d parameters", jt, e, n))
			}
		}
	}

	for _, ebb := range f.Layout.Ebbs() {
		for _, inst := range c.laidOut(ebb) {
			data := f.DFG.InstData(inst)

			if br := data.AnalyzeBranch(); br.Kind == ir.SingleDest && f.DFG.EbbValid(br.Dest) {
				checkBranchArgs(c, inst, br, r)
			}

			if data.Opcode.IsReturn() {
				matchTypes(c, inst, diag.ReturnMismatch, "return value", data.VariableArgs(), f.Signature.ReturnTypes(), r)
			}

			if data.Opcode.IsCall() {
				sig, ok, err := f.DFG.CallSignature(data)
				if err != nil || !ok {
					continue
				}

				matchTypes(c, inst, diag.CallArgMismatch, "call argument", data.VariableArgs(), sig.ParamTypes(), r)
				matchTypes(c, inst, diag.CallResultMismatch, "call result", f.DFG.InstResults(inst), sig.ReturnTypes(), r)
			}
		}
	}
}

func checkBranchArgs(c *Context, inst ir.Inst, br ir.BranchInfo, r *Report) {
	f := c.Func
	params := f.DFG.EbbParams(br.Dest)

	if len(br.Args) != len(params) {
		r.add(diag.NewFinding(diag.BranchArity, diag.CatBranches, ir.AnyInst(inst),
			"branch to %v passes %d arguments, %v has %d parameters", br.Dest, len(br.Args), br.Dest, len(params)))

		return
	}

	for i, v := range br.Args {
		if !f.DFG.ValueValid(v) {
			continue
		}

		want := f.DFG.ValueType(params[i])
		if got := f.DFG.ValueType(v); got != want {
			r.add(diag.NewFinding(diag.BranchArgType, diag.CatBranches, ir.AnyInst(inst),
				"argument %d to %v is %v of type %s, expected %s", i, br.Dest, v, typeName(got), typeName(want)))
		}
	}
}

// matchTypes compares a value list against a type list, reporting a count
// mismatch once and each differing type separately.
func matchTypes(c *Context, inst ir.Inst, code, what string, vs []ir.Value, want []types.Type, r *Report) {
	f := c.Func

	if len(vs) != len(want) {
		r.add(diag.NewFinding(code, diag.CatBranches, ir.AnyInst(inst),
			"%d %ss, expected %d", len(vs), what, len(want)))

		return
	}

	for i, v := range vs {
		if !f.DFG.ValueValid(v) {
			continue
		}

		if got := f.DFG.ValueType(v); got != want[i] {
			r.add(diag.NewFinding(code, diag.CatBranches, ir.AnyInst(inst),
				"%s %d is %v of type %s, expected %s", what, i, v, typeName(got), typeName(want[i])))
		}
	}
}
