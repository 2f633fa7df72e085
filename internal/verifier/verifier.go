// Package verifier checks the structural invariants of a function.
//
// Verification runs a fixed battery of independent checks over a read-only
// Context. Every check always runs and reports everything it finds, so one
// malformed function yields its complete list of findings in one pass.
// Findings come back in a deterministic order whatever the execution order.
package verifier

import (
	"cmp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	"tlog.app/go/errors"

	"ebbir/internal/diag"
	"ebbir/internal/dominance"
	"ebbir/internal/ir"
	"ebbir/internal/types"
)

var log = commonlog.GetLogger("ebbir.verifier")

// Target describes the machine properties the verifier depends on.
type Target interface {
	// PointerType is the iAddr type, i32 or i64.
	PointerType() types.Type
	// ClobbersFlags reports whether the encoding of op destroys the CPU
	// flags even though op does not produce a flags value.
	ClobbersFlags(op ir.Opcode) bool
}

// Options control a verification run.
type Options struct {
	// Target may be nil: both i32 and i64 are then accepted as addresses
	// and only flags-producing instructions clobber flags.
	Target Target

	// Parallel runs each check in its own goroutine.
	Parallel bool
}

// Context is the read-only input shared by all checks.
type Context struct {
	Func    *ir.Function
	CFG     *ir.ControlFlowGraph
	Domtree *dominance.Tree
	Target  Target
}

// NewContext computes the control flow graph and dominator tree of f.
func NewContext(f *ir.Function, target Target) *Context {
	cfg := ir.ComputeCFG(f)

	return &Context{
		Func:    f,
		CFG:     cfg,
		Domtree: dominance.Compute(f, cfg),
		Target:  target,
	}
}

// PointerType returns the target pointer type, or Invalid without a target.
func (c *Context) PointerType() types.Type {
	if c.Target == nil {
		return types.Invalid
	}

	return c.Target.PointerType()
}

// ClobbersFlags reports whether op destroys any live flags value.
func (c *Context) ClobbersFlags(op ir.Opcode) bool {
	return op.WritesFlags() || c.Target != nil && c.Target.ClobbersFlags(op)
}

// laidOut returns the instructions of ebb that exist in the data flow
// graph. The entities check reports the others.
func (c *Context) laidOut(ebb ir.Ebb) []ir.Inst {
	insts := c.Func.Layout.EbbInsts(ebb)

	unknown := func(inst ir.Inst) bool { return !c.Func.DFG.InstValid(inst) }
	if !slices.ContainsFunc(insts, unknown) {
		return insts
	}

	return slices.DeleteFunc(slices.Clone(insts), unknown)
}

// Report collects the output of one check.
type Report struct {
	Findings []diag.Finding
	Fatal    error
}

func (r *Report) add(b *diag.FindingBuilder) {
	r.Findings = append(r.Findings, b.Build())
}

// Check is one independent member of the battery.
type Check struct {
	Name     string
	Category diag.Category
	Run      func(c *Context, r *Report)
}

// Battery is the list of checks run by Verify, in category order.
var Battery = []Check{
	{Name: "entities", Category: diag.CatEntities, Run: checkEntities},
	{Name: "layout", Category: diag.CatLayout, Run: checkLayout},
	{Name: "ssa", Category: diag.CatSSA, Run: checkSSA},
	{Name: "branches", Category: diag.CatBranches, Run: checkBranches},
	{Name: "globals", Category: diag.CatGlobals, Run: checkGlobals},
	{Name: "heaps", Category: diag.CatHeaps, Run: checkHeaps},
	{Name: "flags", Category: diag.CatFlags, Run: checkFlags},
	{Name: "types", Category: diag.CatTypes, Run: checkTypes},
	{Name: "limits", Category: diag.CatLimits, Run: checkLimits},
}

// Verify checks f and returns its findings in deterministic order. A
// capacity violation is returned as a fatal error, never as a finding; the
// findings of the other checks are still returned alongside it.
func Verify(f *ir.Function, opts Options) ([]diag.Finding, error) {
	return Run(NewContext(f, opts.Target), Battery, opts.Parallel)
}

// Run executes checks against c.
func Run(c *Context, checks []Check, parallel bool) ([]diag.Finding, error) {
	reports := make([]Report, len(checks))

	run := func(i int) {
		start := time.Now()
		checks[i].Run(c, &reports[i])
		log.Debugf("%s: check %s: %d findings in %s", c.Func.Name, checks[i].Name, len(reports[i].Findings), time.Since(start))
	}

	if parallel {
		var wg sync.WaitGroup

		for i := range checks {
			wg.Add(1)

			go func(i int) {
				defer wg.Done()
				run(i)
			}(i)
		}

		wg.Wait()
	} else {
		for i := range checks {
			run(i)
		}
	}

	var (
		findings []diag.Finding
		fatal    error
	)

	for i := range reports {
		findings = append(findings, reports[i].Findings...)

		if fatal == nil && reports[i].Fatal != nil {
			fatal = errors.Wrap(reports[i].Fatal, "verify %v", c.Func.Name)
		}
	}

	c.Sort(findings)

	return findings, fatal
}

type sortKey struct {
	group   int
	major   int
	minor   int
	kind    ir.EntityKind
	index   uint32
	cat     diag.Category
	code    string
	message string
}

// Key groups: function-wide first, then preamble entities, then laid out
// code, then EBBs and instructions outside the layout.
const (
	groupFunction = iota
	groupPreamble
	groupLayout
	groupDetached
)

func (c *Context) key(f *diag.Finding) sortKey {
	k := sortKey{
		kind:    f.Location.Kind,
		index:   f.Location.Index,
		cat:     f.Category,
		code:    f.Code,
		message: f.Message,
	}

	detached := func() {
		k.group = groupDetached
		k.major, k.minor = int(f.Location.Kind), int(f.Location.Index)
	}

	at := func(inst ir.Inst) {
		ebb, ok := c.Func.Layout.InstEbb(inst)
		if !ok {
			detached()
			return
		}

		k.group = groupLayout
		k.major = c.Func.Layout.EbbPosition(ebb)
		k.minor = c.Func.Layout.InstPosition(inst)
	}

	atEbb := func(ebb ir.Ebb) {
		if !c.Func.Layout.IsEbbInserted(ebb) {
			detached()
			return
		}

		k.group = groupLayout
		k.major = c.Func.Layout.EbbPosition(ebb)
		k.minor = -1
	}

	switch {
	case f.Location.Kind == ir.KindFunction:
		k.group = groupFunction
	case f.Location.Kind.IsPreamble():
		k.group = groupPreamble
		k.major, k.minor = int(f.Location.Kind), int(f.Location.Index)
	case f.HasInst:
		at(f.Inst)
	case f.Location.Kind == ir.KindInst:
		at(ir.Inst(f.Location.Index))
	case f.Location.Kind == ir.KindEbb:
		atEbb(ir.Ebb(f.Location.Index))
	case f.Location.Kind == ir.KindValue:
		v := ir.Value(f.Location.Index)
		if !c.Func.DFG.ValueValid(v) {
			detached()
			break
		}

		def := c.Func.DFG.ValueDef(v)
		if def.Kind == ir.DefParam {
			atEbb(def.Ebb)
		} else {
			at(def.Inst)
		}
	}

	return k
}

// Sort orders findings by location, then category, code and message.
func (c *Context) Sort(fs []diag.Finding) {
	type keyed struct {
		k sortKey
		f diag.Finding
	}

	ks := make([]keyed, len(fs))
	for i := range fs {
		ks[i] = keyed{k: c.key(&fs[i]), f: fs[i]}
	}

	slices.SortStableFunc(ks, func(a, b keyed) int {
		return cmp.Or(
			cmp.Compare(a.k.group, b.k.group),
			cmp.Compare(a.k.major, b.k.major),
			cmp.Compare(a.k.minor, b.k.minor),
			cmp.Compare(a.k.cat, b.k.cat),
			strings.Compare(a.k.code, b.k.code),
			strings.Compare(a.k.message, b.k.message),
			cmp.Compare(a.k.kind, b.k.kind),
			cmp.Compare(a.k.index, b.k.index),
		)
	})

	for i := range ks {
		fs[i] = ks[i].f
	}
}

// typeName prints Invalid types in a way that reads well in messages.
func typeName(t types.Type) string {
	if t == types.Invalid {
		return "no type"
	}

	return t.String()
}
