package verifier

import (
	"tlog.app/go/errors"

	"ebbir/internal/entity"
	"ebbir/internal/ir"
)

// checkLimits compares every table and list size against the function
// limits. The tables enforce their limits on insertion, but argument lists
// of instructions made directly through the data flow graph are not checked
// there. A violation is fatal.
func checkLimits(c *Context, r *Report) {
	f := c.Func
	lim := f.Limits

	fail := func(err error) {
		if r.Fatal == nil {
			r.Fatal = err
		}
	}

	for _, t := range []struct {
		name  string
		n     int
		limit uint64
	}{
		{"instructions", f.DFG.NumInsts(), lim.Primary},
		{"ebbs", f.DFG.NumEbbs(), lim.Primary},
		{"values", f.DFG.NumValues(), lim.Primary},
		{"stack slots", f.StackSlots.Len(), lim.Secondary},
		{"global variables", f.GlobalVars.Len(), lim.Secondary},
		{"heaps", f.Heaps.Len(), lim.Secondary},
		{"jump tables", f.JumpTables.Len(), lim.Secondary},
		{"signatures", f.DFG.Signatures.Len(), lim.Secondary},
		{"external functions", f.DFG.ExtFuncs.Len(), lim.Secondary},
	} {
		if err := entity.CheckCapacity(t.name, uint64(t.n), t.limit); err != nil {
			fail(err)
		}
	}

	args := func(name string, n int) {
		if err := entity.CheckCapacity(name, uint64(n), lim.Args); err != nil {
			fail(errors.Wrap(ir.ErrTooManyArgs, "%v", err))
		}
	}

	args("signature parameters", len(f.Signature.Params))
	args("signature returns", len(f.Signature.Returns))

	for ref, sig := range f.DFG.Signatures.All() {
		args(ref.String()+" parameters", len(sig.Params))
		args(ref.String()+" returns", len(sig.Returns))
	}

	for _, ebb := range f.Layout.Ebbs() {
		args(ebb.String()+" parameters", len(f.DFG.EbbParams(ebb)))

		for _, inst := range c.laidOut(ebb) {
			args(inst.String()+" arguments", len(f.DFG.InstData(inst).Args))
		}
	}
}
