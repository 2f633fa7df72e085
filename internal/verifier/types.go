package verifier

import (
	"ebbir/internal/diag"
	"ebbir/internal/ir"
	"ebbir/internal/types"
)

// checkTypes verifies every instruction against the type constraints of its
// opcode and every signature against what a call can carry.
func checkTypes(c *Context, r *Report) {
	f := c.Func

	checkSignature(&f.Signature, ir.AnyFunction(), r)

	for ref, sig := range f.DFG.Signatures.All() {
		checkSignature(sig, ir.AnySigRef(ref), r)
	}

	for _, ebb := range f.Layout.Ebbs() {
		for _, inst := range c.laidOut(ebb) {
			if f.DFG.InstData(inst).Opcode.Valid() {
				checkInstTypes(c, inst, r)
			}
		}
	}
}

func checkSignature(sig *ir.Signature, loc ir.AnyEntity, r *Report) {
	for _, list := range []struct {
		what   string
		params []ir.AbiParam
	}{
		{"parameter", sig.Params},
		{"return value", sig.Returns},
	} {
		for i, p := range list.params {
			if p.Type.IsFlags() {
				r.add(diag.NewFinding(diag.SignatureType, diag.CatTypes, loc,
					"%s %d has flags type %v", list.what, i, p.Type).
					WithHelp("flags cannot live across a call; pass an icmp result instead"))
			}
		}
	}
}

func checkInstTypes(c *Context, inst ir.Inst, r *Report) {
	f := c.Func
	data := f.DFG.InstData(inst)
	op := data.Opcode
	ctrl := f.DFG.CtrlType(inst)
	loc := ir.AnyInst(inst)

	finding := func(code, format string, args ...any) {
		r.add(diag.NewFinding(code, diag.CatTypes, loc, format, args...))
	}

	// ctrlOK is false when constraints relative to ctrl cannot be checked.
	ctrlOK := true

	if op.IsPolymorphic() {
		switch {
		case ctrl == types.Invalid:
			finding(diag.CtrlType, "cannot determine the controlling type of %s", op)
			ctrlOK = false
		case op.MovesMemory() && (ctrl.IsBool() || ctrl.IsFlags()):
			r.add(diag.NewFinding(diag.MemoryResident, diag.CatTypes, loc, "%s moves %v through memory", op, ctrl).
				WithNote("boolean and flags values are never memory resident"))
		case !op.CtrlClass().Contains(ctrl, c.PointerType()):
			finding(diag.CtrlType, "%s cannot be controlled by %v, expected %s", op, ctrl, op.CtrlClass())
			ctrlOK = false
		}
	}

	check := func(code, what string, i int, v ir.Value, cons ir.Constraint) {
		if !f.DFG.ValueValid(v) {
			return
		}

		got := f.DFG.ValueType(v)

		if cons.Kind == ir.Free {
			if !cons.Class.Contains(got, c.PointerType()) {
				finding(code, "%s %d of %s is %v of type %s, expected %s", what, i, op, v, typeName(got), cons.Class)
			}

			return
		}

		if cons.Kind != ir.Concrete && !ctrlOK {
			return
		}

		if want := cons.Resolve(ctrl); got != want {
			finding(code, "%s %d of %s is %v of type %s, expected %v", what, i, op, v, typeName(got), want)
		}
	}

	// Mirrors the operand count rule of Function.AppendInst.
	format := op.Format()
	switch n := len(data.Args); {
	case format.HasVariableArgs() && n < format.NumFixed():
		finding(diag.OperandCount, "%s takes at least %d operands, got %d", op, format.NumFixed(), n)
	case !format.HasVariableArgs() && n != format.NumFixed():
		finding(diag.OperandCount, "%s takes %d operands, got %d", op, format.NumFixed(), n)
	}

	fixed := data.FixedArgs()
	for i, cons := range op.ArgConstraints() {
		if i >= len(fixed) {
			break
		}

		check(diag.OperandType, "operand", i, fixed[i], cons)
	}

	// Call results come from the callee signature and are matched there.
	if !op.IsCall() {
		results := f.DFG.InstResults(inst)
		cons := op.ResultConstraints()

		if len(results) != len(cons) {
			finding(diag.ResultCount, "%s has %d results, expected %d", op, len(results), len(cons))
		} else {
			for i, v := range results {
				check(diag.ResultType, "result", i, v, cons[i])
			}
		}
	}

	if ctrlOK && op.WidthRelation() != ir.NoRelation && len(fixed) != 0 {
		checkWidth(c, inst, op, fixed[0], ctrl, r)
	}

	switch op.Format() {
	case ir.FormatExtractLane, ir.FormatInsertLane:
		if ctrlOK && ctrl.IsVector() && int(data.Lane) >= ctrl.Lanes() {
			finding(diag.ImmediateInvalid, "lane %d is out of range for %v", data.Lane, ctrl)
		}
	}
}

func checkWidth(c *Context, inst ir.Inst, op ir.Opcode, arg ir.Value, res types.Type, r *Report) {
	from := c.Func.DFG.ValueType(arg)
	if !from.IsValid() {
		return
	}

	var ok bool

	switch op.WidthRelation() {
	case ir.ResultWider:
		ok = from.Lanes() == res.Lanes() && from.LaneBits() < res.LaneBits()
	case ir.ResultNarrower:
		ok = from.Lanes() == res.Lanes() && from.LaneBits() > res.LaneBits()
	case ir.SameWidth:
		ok = from.Bits() == res.Bits()
	}

	if ok {
		return
	}

	r.add(diag.NewFinding(diag.ConversionWidth, diag.CatTypes, ir.AnyInst(inst),
		"%s cannot convert %v to %v", op, from, res).
		WithNote("%s requires %s", op, widthRule(op.WidthRelation())))
}

func widthRule(w ir.WidthRelation) string {
	switch w {
	case ir.ResultWider:
		return "a wider result with the same lane count"
	case ir.ResultNarrower:
		return "a narrower result with the same lane count"
	default:
		return "an operand and result of the same width"
	}
}
