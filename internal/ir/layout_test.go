package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"

	"ebbir/internal/immediates"
	"ebbir/internal/types"
)

func TestLayoutInsertAndRemove(t *testing.T) {
	f := NewFunction(Testcase("layout"), Signature{})
	ebb, err := f.AppendEbb()
	require.NoError(t, err)

	a, _, err := f.AppendInst(ebb, InstructionData{Opcode: OpNop}, types.Invalid)
	require.NoError(t, err)
	ret, _, err := f.AppendInst(ebb, InstructionData{Opcode: OpReturn}, types.Invalid)
	require.NoError(t, err)

	mid, err := f.DFG.MakeInst(InstructionData{Opcode: OpNop})
	require.NoError(t, err)
	require.NoError(t, f.Layout.InsertInstBefore(mid, ret))

	assert.Equal(t, []Inst{a, mid, ret}, f.Layout.EbbInsts(ebb))
	assert.Equal(t, 1, f.Layout.InstPosition(mid))
	assert.Equal(t, 2, f.Layout.InstPosition(ret))

	require.NoError(t, f.Layout.RemoveInst(a))
	assert.Equal(t, []Inst{mid, ret}, f.Layout.EbbInsts(ebb))
	assert.Equal(t, 0, f.Layout.InstPosition(mid))
	assert.Equal(t, -1, f.Layout.InstPosition(a))

	_, ok := f.Layout.InstEbb(a)
	assert.False(t, ok)
	assert.True(t, f.DFG.InstValid(a), "removed instructions keep their data")

	err = f.Layout.RemoveInst(a)
	assert.True(t, errors.Is(err, ErrNotInLayout))

	err = f.Layout.AppendInst(mid, ebb)
	assert.True(t, errors.Is(err, ErrAlreadyInLayout))
}

func TestLayoutRejectsUnallocatedEntities(t *testing.T) {
	f := NewFunction(Testcase("unallocated"), Signature{})
	ebb, err := f.AppendEbb()
	require.NoError(t, err)

	ret, _, err := f.AppendInst(ebb, InstructionData{Opcode: OpReturn}, types.Invalid)
	require.NoError(t, err)

	err = f.Layout.AppendInst(Inst(99), ebb)
	assert.True(t, errors.Is(err, ErrInvalidEntity), "append: %v", err)

	err = f.Layout.InsertInstBefore(Inst(99), ret)
	assert.True(t, errors.Is(err, ErrInvalidEntity), "insert: %v", err)

	err = f.Layout.AppendEbb(Ebb(7))
	assert.True(t, errors.Is(err, ErrInvalidEntity), "ebb: %v", err)

	assert.Equal(t, []Inst{ret}, f.Layout.EbbInsts(ebb))
	assert.Equal(t, []Ebb{ebb}, f.Layout.Ebbs())
}

func TestLayoutEbbOrder(t *testing.T) {
	f := NewFunction(Testcase("order"), Signature{})

	loose, err := f.DFG.MakeEbb()
	require.NoError(t, err)

	e1, err := f.AppendEbb()
	require.NoError(t, err)

	assert.False(t, f.Layout.IsEbbInserted(loose))
	assert.Equal(t, -1, f.Layout.EbbPosition(loose))
	assert.Equal(t, 0, f.Layout.EbbPosition(e1))

	require.NoError(t, f.Layout.AppendEbb(loose))
	assert.Equal(t, []Ebb{e1, loose}, f.Layout.Ebbs())
	assert.True(t, errors.Is(f.Layout.AppendEbb(loose), ErrAlreadyInLayout))

	entry, _ := f.EntryBlock()
	assert.Equal(t, e1, entry)
}

func TestAttachAndDetachResults(t *testing.T) {
	b := NewFuncBuilder(Testcase("rewrite"), Signature{})
	ebb := b.CreateEbb()
	b.SwitchToEbb(ebb)
	x := b.Iconst(types.I32, 1)
	y := b.Iconst(types.I32, 2)
	b.Return()

	f, err := b.Finish()
	require.NoError(t, err)

	xi := f.DFG.ValueDef(x).Inst
	yi := f.DFG.ValueDef(y).Inst

	old := f.DFG.DetachResults(xi)
	assert.Equal(t, []Value{x}, old)
	assert.Empty(t, f.DFG.InstResults(xi))

	f.DFG.AttachResult(yi, x)
	assert.Equal(t, []Value{y, x}, f.DFG.InstResults(yi))
	assert.Equal(t, ResultDef(yi, 1), f.DFG.ValueDef(x))
}

func TestControlFlowGraph(t *testing.T) {
	b := NewFuncBuilder(Testcase("cfg"), NewSignature([]types.Type{types.I32}, nil))
	ebb0 := b.CreateEbb()
	ebb1 := b.CreateEbb()
	ebb2 := b.CreateEbb()
	ebb3 := b.CreateEbb()
	jt := b.JumpTable(ebb2, NoEbb, ebb3)
	v0 := b.EntryParams(ebb0)[0]

	b.SwitchToEbb(ebb0)
	brz := b.Brz(v0, ebb2)
	jump := b.Jump(ebb1)

	b.SwitchToEbb(ebb1)
	table := b.BrTable(v0, jt)

	b.SwitchToEbb(ebb2)
	b.Trap(immediates.Unreachable)

	b.SwitchToEbb(ebb3)
	b.Return()

	f, err := b.Finish()
	require.NoError(t, err)

	cfg := ComputeCFG(f)

	assert.Equal(t, []Ebb{ebb2, ebb1}, cfg.Succs(ebb0))
	assert.Equal(t, []Ebb{ebb2, ebb3}, cfg.Succs(ebb1))
	assert.Empty(t, cfg.Succs(ebb3))

	assert.Equal(t, []BlockPredecessor{{ebb0, brz}, {ebb1, table}}, cfg.Preds(ebb2))
	assert.Equal(t, []BlockPredecessor{{ebb0, jump}}, cfg.Preds(ebb1))
	assert.Empty(t, cfg.Preds(ebb0))
}
