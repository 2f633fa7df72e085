package verifier

import (
	"strings"

	"ebbir/internal/diag"
	"ebbir/internal/ir"
)

const (
	unvisited = iota
	inProgress
	done
)

// checkGlobals reports each cycle in the global variable deref chains once,
// at the first member reached by a traversal in index order.
func checkGlobals(c *Context, r *Report) {
	f := c.Func
	n := f.GlobalVars.Len()
	state := make([]uint8, n)

	var path []ir.GlobalVar

	for start := range f.GlobalVars.Keys() {
		if state[start] != unvisited {
			continue
		}

		path = path[:0]
		gv := start

		// Every global has at most one base, so the traversal is a walk.
		for {
			state[gv] = inProgress
			path = append(path, gv)

			data := f.GlobalVars.At(gv)
			if data.Kind != ir.DerefGV || !f.GlobalVars.Valid(data.Base) {
				break
			}

			next := data.Base

			if state[next] == inProgress {
				reportCycle(path, next, r)
				break
			}

			if state[next] == done {
				break
			}

			gv = next
		}

		for _, p := range path {
			state[p] = done
		}
	}
}

func reportCycle(path []ir.GlobalVar, head ir.GlobalVar, r *Report) {
	var chain []string

	for i, gv := range path {
		if gv != head {
			continue
		}

		for _, p := range path[i:] {
			chain = append(chain, p.String())
		}

		break
	}

	chain = append(chain, head.String())

	b := diag.NewFinding(diag.DerefCycle, diag.CatGlobals, ir.AnyGlobalVar(head), "%v is part of a cyclic deref chain", head).
		WithNote("chain: %s", strings.Join(chain, " -> "))

	if len(chain) == 2 {
		b.WithHelp("a global variable cannot dereference itself")
	}

	r.add(b)
}

// checkHeaps verifies heap bounds and sizes. Missing base and bound globals
// are reported by the entity check.
func checkHeaps(c *Context, r *Report) {
	for h, data := range c.Func.Heaps.All() {
		loc := ir.AnyHeap(h)

		switch data.Style {
		case ir.DynamicHeap:
			if data.Bound != 0 {
				r.add(diag.NewFinding(diag.HeapBound, diag.CatHeaps, loc,
					"dynamic %v has literal bound %v", h, data.Bound).
					WithHelp("a dynamic heap takes its bound from a global variable"))
			}
		case ir.StaticHeap:
			if data.Bound < data.Min {
				r.add(diag.NewFinding(diag.HeapMinBound, diag.CatHeaps, loc,
					"static %v has bound %v below its minimum size %v", h, data.Bound, data.Min))
			}
		}

		for _, s := range []struct {
			name string
			val  int64
		}{
			{"min", int64(data.Min)},
			{"bound", int64(data.Bound)},
			{"guard", int64(data.Guard)},
		} {
			if s.val < 0 {
				r.add(diag.NewFinding(diag.HeapSize, diag.CatHeaps, loc, "%v has negative %s %d", h, s.name, s.val))
			}
		}
	}
}
