package verifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/errors"

	"ebbir/internal/diag"
	"ebbir/internal/immediates"
	"ebbir/internal/ir"
	"ebbir/internal/types"
)

// ============================================================================
// Helpers
// ============================================================================

func sig(params, returns []types.Type) ir.Signature {
	return ir.NewSignature(params, returns)
}

func build(t *testing.T, b *ir.FuncBuilder) *ir.Function {
	t.Helper()

	f, err := b.Finish()
	require.NoError(t, err)

	return f
}

func verify(t *testing.T, f *ir.Function) []diag.Finding {
	t.Helper()

	findings, err := Verify(f, Options{})
	require.NoError(t, err)

	return findings
}

func codes(fs []diag.Finding) []string {
	r := make([]string, len(fs))
	for i, f := range fs {
		r[i] = f.Code
	}

	return r
}

type clobberTarget struct {
	ptr     types.Type
	clobber ir.Opcode
}

func (t clobberTarget) PointerType() types.Type { return t.ptr }

func (t clobberTarget) ClobbersFlags(op ir.Opcode) bool { return op == t.clobber }

// ============================================================================
// Basic scenarios
// ============================================================================

func TestValidFunction(t *testing.T) {
	b := ir.NewFuncBuilder(ir.Testcase("sum"), sig([]types.Type{types.I32, types.I32}, []types.Type{types.I32}))
	ebb0 := b.CreateEbb()
	ps := b.EntryParams(ebb0)

	b.SwitchToEbb(ebb0)
	v := b.Iadd(ps[0], ps[1])
	b.Return(v)

	assert.Empty(t, verify(t, build(t, b)))
}

func TestMissingTerminator(t *testing.T) {
	b := ir.NewFuncBuilder(ir.Testcase("open"), ir.Signature{})
	ebb0 := b.CreateEbb()

	b.SwitchToEbb(ebb0)
	b.Iconst(types.I32, 1)

	f := build(t, b)
	findings := verify(t, f)

	require.Equal(t, []string{diag.MissingTerminator}, codes(findings))

	got := findings[0]
	assert.Equal(t, ir.AnyEbb(ebb0), got.Location)
	assert.True(t, got.HasInst)
	assert.Equal(t, f.Layout.EbbInsts(ebb0)[0], got.Inst)
	assert.Equal(t, diag.CatLayout, got.Category)
	assert.NotEmpty(t, got.Help)
}

func TestSelfDerefCycle(t *testing.T) {
	b := ir.NewFuncBuilder(ir.Testcase("cycle"), ir.Signature{})
	gv := b.GlobalVar(ir.GlobalVarData{Kind: ir.DerefGV, Base: 0})
	ebb0 := b.CreateEbb()

	b.SwitchToEbb(ebb0)
	b.Return()

	findings := verify(t, build(t, b))

	require.Equal(t, []string{diag.DerefCycle}, codes(findings))
	assert.Equal(t, ir.AnyGlobalVar(gv), findings[0].Location)
	assert.Equal(t, []string{"chain: gv0 -> gv0"}, findings[0].Notes)
}

func TestLongDerefCycleReportedOnce(t *testing.T) {
	b := ir.NewFuncBuilder(ir.Testcase("cycle3"), ir.Signature{})
	b.GlobalVar(ir.GlobalVarData{Kind: ir.VMContextGV})
	b.GlobalVar(ir.GlobalVarData{Kind: ir.DerefGV, Base: 2})
	b.GlobalVar(ir.GlobalVarData{Kind: ir.DerefGV, Base: 3})
	b.GlobalVar(ir.GlobalVarData{Kind: ir.DerefGV, Base: 1})
	b.GlobalVar(ir.GlobalVarData{Kind: ir.DerefGV, Base: 0})
	ebb0 := b.CreateEbb()

	b.SwitchToEbb(ebb0)
	b.Return()

	findings := verify(t, build(t, b))

	require.Equal(t, []string{diag.DerefCycle}, codes(findings))
	assert.Equal(t, ir.AnyGlobalVar(1), findings[0].Location)
	assert.Equal(t, []string{"chain: gv1 -> gv2 -> gv3 -> gv1"}, findings[0].Notes)
	assert.Empty(t, findings[0].Help)
}

func TestBranchArity(t *testing.T) {
	b := ir.NewFuncBuilder(ir.Testcase("arity"), ir.Signature{})
	ebb0 := b.CreateEbb()
	ebb1 := b.CreateEbb()
	b.Param(ebb1, types.I32)

	b.SwitchToEbb(ebb0)
	jump := b.Jump(ebb1)

	b.SwitchToEbb(ebb1)
	b.Return()

	findings := verify(t, build(t, b))

	require.Equal(t, []string{diag.BranchArity}, codes(findings))
	assert.Equal(t, ir.AnyInst(jump), findings[0].Location)
	assert.Equal(t, "branch to ebb1 passes 0 arguments, ebb1 has 1 parameters", findings[0].Message)
}

func TestBranchArgType(t *testing.T) {
	b := ir.NewFuncBuilder(ir.Testcase("argtype"), ir.Signature{})
	ebb0 := b.CreateEbb()
	ebb1 := b.CreateEbb()
	b.Param(ebb1, types.I32)

	b.SwitchToEbb(ebb0)
	v := b.Iconst(types.I64, 1)
	b.Jump(ebb1, v)

	b.SwitchToEbb(ebb1)
	b.Return()

	assert.Equal(t, []string{diag.BranchArgType}, codes(verify(t, build(t, b))))
}

func TestFlagsClobberedBySecondCompare(t *testing.T) {
	b := ir.NewFuncBuilder(ir.Testcase("flags"), sig([]types.Type{types.I32, types.I32}, nil))
	ebb0 := b.CreateEbb()
	ebb1 := b.CreateEbb()
	ps := b.EntryParams(ebb0)

	b.SwitchToEbb(ebb0)
	f0 := b.Ifcmp(ps[0], ps[1])
	b.Ifcmp(ps[1], ps[0])
	b.Trapif(immediates.SignedLessThan, f0, immediates.IntegerOverflow)
	b.Brif(immediates.IntEqual, f0, ebb1)
	b.Jump(ebb1)

	b.SwitchToEbb(ebb1)
	b.Return()

	f := build(t, b)
	findings := verify(t, f)

	require.Equal(t, []string{diag.FlagsClobbered}, codes(findings))
	assert.Equal(t, ir.AnyValue(f0), findings[0].Location)
	assert.Equal(t, f.Layout.EbbInsts(ebb0)[1], findings[0].Inst)
}

// ============================================================================
// Flags
// ============================================================================

func flagsAcrossIadd(t *testing.T) *ir.Function {
	t.Helper()

	b := ir.NewFuncBuilder(ir.Testcase("clobber"), sig([]types.Type{types.I64, types.I64}, nil))
	ebb0 := b.CreateEbb()
	ps := b.EntryParams(ebb0)

	b.SwitchToEbb(ebb0)
	fl := b.Ifcmp(ps[0], ps[1])
	b.Iadd(ps[0], ps[1])
	b.Trapif(immediates.IntEqual, fl, immediates.TrapCode(0))
	b.Return()

	return build(t, b)
}

func TestTargetClobbersFlags(t *testing.T) {
	f := flagsAcrossIadd(t)

	assert.Empty(t, verify(t, f), "iadd keeps flags without a target")

	findings, err := Verify(f, Options{Target: clobberTarget{ptr: types.I64, clobber: ir.OpIadd}})
	require.NoError(t, err)
	require.Equal(t, []string{diag.FlagsClobbered}, codes(findings))
	assert.Equal(t, "iadd clobbers live flags v2", findings[0].Message)
}

func TestFlagsLiveAcrossLoop(t *testing.T) {
	b := ir.NewFuncBuilder(ir.Testcase("loop"), sig([]types.Type{types.I32, types.I32}, nil))
	ebb0 := b.CreateEbb()
	ebb1 := b.CreateEbb()
	ebb2 := b.CreateEbb()
	ps := b.EntryParams(ebb0)

	b.SwitchToEbb(ebb0)
	fl := b.Ifcmp(ps[0], ps[1])
	b.Jump(ebb1)

	b.SwitchToEbb(ebb1)
	b.Brif(immediates.IntEqual, fl, ebb2)
	b.Ifcmp(ps[1], ps[0])
	b.Jump(ebb1)

	b.SwitchToEbb(ebb2)
	b.Return()

	findings := verify(t, build(t, b))

	require.Equal(t, []string{diag.FlagsClobbered}, codes(findings))
	assert.Equal(t, ir.AnyValue(fl), findings[0].Location)
}

func TestTwoFlagsLiveAtOnce(t *testing.T) {
	b := ir.NewFuncBuilder(ir.Testcase("overlap"), sig([]types.Type{types.I32, types.I32}, nil))
	ebb0 := b.CreateEbb()
	ps := b.EntryParams(ebb0)

	b.SwitchToEbb(ebb0)
	f0 := b.Ifcmp(ps[0], ps[1])
	f1 := b.Ifcmp(ps[1], ps[0])
	b.Trapif(immediates.IntEqual, f1, immediates.TrapCode(0))
	b.Trapif(immediates.IntEqual, f0, immediates.TrapCode(0))
	b.Return()

	findings := verify(t, build(t, b))

	assert.Contains(t, codes(findings), diag.FlagsOverlap)
	assert.Contains(t, codes(findings), diag.FlagsClobbered)

	for _, f := range findings {
		assert.Equal(t, diag.CatFlags, f.Category)
	}
}

// ============================================================================
// Entities, heaps and jump tables
// ============================================================================

func TestDanglingOperand(t *testing.T) {
	f := ir.NewFunction(ir.Testcase("dangling"), ir.Signature{})

	ebb, err := f.AppendEbb()
	require.NoError(t, err)

	ret, err := f.DFG.MakeInst(ir.InstructionData{Opcode: ir.OpReturn, Args: []ir.Value{99}})
	require.NoError(t, err)
	require.NoError(t, f.Layout.AppendInst(ret, ebb))

	findings := verify(t, f)

	require.Equal(t, []string{diag.InvalidEntity, diag.ReturnMismatch}, codes(findings))
	assert.Equal(t, "operand v99 does not exist", findings[0].Message)
}

func TestOperandCount(t *testing.T) {
	f := ir.NewFunction(ir.Testcase("count"), sig([]types.Type{types.I32}, nil))

	ebb, err := f.AppendEbb()
	require.NoError(t, err)
	v0, err := f.AppendEbbParam(ebb, types.I32)
	require.NoError(t, err)

	for _, args := range [][]ir.Value{{v0}, {v0, v0, v0}} {
		inst, err := f.DFG.MakeInst(ir.InstructionData{Opcode: ir.OpIadd, Args: args})
		require.NoError(t, err)
		require.NoError(t, f.Layout.AppendInst(inst, ebb))
		_, err = f.DFG.MakeInstResults(inst, types.I32)
		require.NoError(t, err)
	}

	_, _, err = f.AppendInst(ebb, ir.InstructionData{Opcode: ir.OpReturn}, types.Invalid)
	require.NoError(t, err)

	findings := verify(t, f)

	require.Equal(t, []string{diag.OperandCount, diag.OperandCount}, codes(findings))
	assert.Equal(t, "iadd takes 2 operands, got 1", findings[0].Message)
	assert.Equal(t, "iadd takes 2 operands, got 3", findings[1].Message)
}

func TestUnallocatedInstInLayout(t *testing.T) {
	f := ir.NewFunction(ir.Testcase("unallocated"), ir.Signature{})

	ebb, err := f.AppendEbb()
	require.NoError(t, err)
	ret, _, err := f.AppendInst(ebb, ir.InstructionData{Opcode: ir.OpReturn}, types.Invalid)
	require.NoError(t, err)

	// A layout detached from the data flow graph takes any id.
	raw := ir.NewLayout(nil)
	require.NoError(t, raw.AppendEbb(ebb))
	require.NoError(t, raw.AppendInst(ir.Inst(99), ebb))
	require.NoError(t, raw.AppendInst(ret, ebb))
	f.Layout = raw

	for _, parallel := range []bool{false, true} {
		var findings []diag.Finding

		require.NotPanics(t, func() {
			findings, err = Verify(f, Options{Parallel: parallel})
		})
		require.NoError(t, err)

		require.Equal(t, []string{diag.InvalidEntity}, codes(findings), "parallel %v", parallel)
		assert.Equal(t, "laid out instruction inst99 does not exist", findings[0].Message)
		assert.Equal(t, ir.AnyEbb(ebb), findings[0].Location)
	}
}

func TestHeapRules(t *testing.T) {
	b := ir.NewFuncBuilder(ir.Testcase("heaps"), ir.Signature{})
	base := b.GlobalVar(ir.GlobalVarData{Kind: ir.VMContextGV})
	bound := b.GlobalVar(ir.GlobalVarData{Kind: ir.DerefGV, Base: base, Offset: 8})

	b.Heap(ir.HeapData{Style: ir.StaticHeap, Base: base, Min: 0x1000, Bound: 0x10000, Guard: 0x1000})
	b.Heap(ir.HeapData{Style: ir.DynamicHeap, Base: base, BoundGV: bound, Bound: 0x10})
	b.Heap(ir.HeapData{Style: ir.StaticHeap, Base: base, Guard: -1})
	b.Heap(ir.HeapData{Style: ir.DynamicHeap, Base: base, BoundGV: 7})

	ebb0 := b.CreateEbb()
	b.SwitchToEbb(ebb0)
	b.Return()

	findings := verify(t, build(t, b))

	require.Equal(t, []string{diag.HeapBound, diag.HeapSize, diag.InvalidEntity}, codes(findings))
	assert.Equal(t, ir.AnyHeap(1), findings[0].Location)
	assert.Equal(t, ir.AnyHeap(2), findings[1].Location)
	assert.Equal(t, ir.AnyHeap(3), findings[2].Location)
}

func TestJumpTableTargetWithParams(t *testing.T) {
	b := ir.NewFuncBuilder(ir.Testcase("jt"), sig([]types.Type{types.I32}, nil))
	ebb0 := b.CreateEbb()
	ebb1 := b.CreateEbb()
	ebb2 := b.CreateEbb()
	p := b.EntryParams(ebb0)[0]
	b.Param(ebb2, types.I32)

	jt := b.JumpTable(ebb1, ebb2)

	b.SwitchToEbb(ebb0)
	b.BrTable(p, jt)

	b.SwitchToEbb(ebb1)
	b.Return()

	b.SwitchToEbb(ebb2)
	b.Return()

	findings := verify(t, build(t, b))

	require.Equal(t, []string{diag.JumpTableParams}, codes(findings))
	assert.Equal(t, ir.AnyJumpTable(jt), findings[0].Location)
}

func TestEmptyEbbAndEarlyTerminator(t *testing.T) {
	f := ir.NewFunction(ir.Testcase("shape"), ir.Signature{})

	ebb0, err := f.AppendEbb()
	require.NoError(t, err)

	_, err = f.AppendEbb()
	require.NoError(t, err)

	for range 2 {
		inst, err := f.DFG.MakeInst(ir.InstructionData{Opcode: ir.OpReturn})
		require.NoError(t, err)
		require.NoError(t, f.Layout.AppendInst(inst, ebb0))
	}

	assert.Equal(t, []string{diag.EarlyTerminator, diag.EmptyEbb}, codes(verify(t, f)))
}

// ============================================================================
// SSA
// ============================================================================

func TestUseNotDominated(t *testing.T) {
	b := ir.NewFuncBuilder(ir.Testcase("dom"), sig([]types.Type{types.I32}, []types.Type{types.I32}))
	ebb0 := b.CreateEbb()
	ebb1 := b.CreateEbb()
	ebb2 := b.CreateEbb()
	p := b.EntryParams(ebb0)[0]

	b.SwitchToEbb(ebb0)
	b.Brz(p, ebb1)
	b.Jump(ebb2)

	b.SwitchToEbb(ebb1)
	v := b.Iconst(types.I32, 7)
	b.Jump(ebb2)

	b.SwitchToEbb(ebb2)
	ret := b.Return(v)

	findings := verify(t, build(t, b))

	require.Equal(t, []string{diag.UseNotDominated}, codes(findings))
	assert.Equal(t, ir.AnyValue(v), findings[0].Location)
	assert.Equal(t, ret, findings[0].Inst)
}

func TestUseOfUnreachableDefinition(t *testing.T) {
	b := ir.NewFuncBuilder(ir.Testcase("unreach"), sig(nil, []types.Type{types.I32}))
	ebb0 := b.CreateEbb()
	ebb1 := b.CreateEbb()

	b.SwitchToEbb(ebb1)
	v := b.Iconst(types.I32, 1)
	b.Return(v)

	b.SwitchToEbb(ebb0)
	b.Return(v)

	assert.Equal(t, []string{diag.UnreachableDefUsed}, codes(verify(t, build(t, b))))
}

func TestUnreachableCodeIsNotDominanceChecked(t *testing.T) {
	b := ir.NewFuncBuilder(ir.Testcase("dead"), sig([]types.Type{types.I32}, []types.Type{types.I32}))
	ebb0 := b.CreateEbb()
	ebb1 := b.CreateEbb()
	ebb2 := b.CreateEbb()
	p := b.EntryParams(ebb0)[0]

	b.SwitchToEbb(ebb0)
	b.Return(p)

	b.SwitchToEbb(ebb2)
	v := b.Iconst(types.I32, 1)
	b.Jump(ebb1)

	b.SwitchToEbb(ebb1)
	b.Return(v)

	assert.Empty(t, verify(t, build(t, b)))
}

// ============================================================================
// Types
// ============================================================================

func TestStoredBoolIsMemoryResident(t *testing.T) {
	b := ir.NewFuncBuilder(ir.Testcase("membool"), sig([]types.Type{types.I64}, nil))
	ebb0 := b.CreateEbb()
	p := b.EntryParams(ebb0)[0]

	b.SwitchToEbb(ebb0)
	x := b.Bconst(types.B1, true)
	b.Store(immediates.MemFlags(0), x, p, 0)
	b.Return()

	findings := verify(t, build(t, b))

	require.Equal(t, []string{diag.MemoryResident}, codes(findings))
	assert.Equal(t, "store moves b1 through memory", findings[0].Message)
}

func TestOperandTypeMismatch(t *testing.T) {
	b := ir.NewFuncBuilder(ir.Testcase("mixed"), sig([]types.Type{types.I32, types.I64}, []types.Type{types.I32}))
	ebb0 := b.CreateEbb()
	ps := b.EntryParams(ebb0)

	b.SwitchToEbb(ebb0)
	v := b.Iadd(ps[0], ps[1])
	b.Return(v)

	findings := verify(t, build(t, b))

	require.Equal(t, []string{diag.OperandType}, codes(findings))
	assert.Equal(t, "operand 1 of iadd is v1 of type i64, expected i32", findings[0].Message)
}

func TestConversionWidth(t *testing.T) {
	b := ir.NewFuncBuilder(ir.Testcase("widen"), sig([]types.Type{types.I32}, []types.Type{types.I32}))
	ebb0 := b.CreateEbb()
	p := b.EntryParams(ebb0)[0]

	b.SwitchToEbb(ebb0)
	v := b.Convert(ir.OpUextend, types.I32, p)
	b.Return(v)

	assert.Equal(t, []string{diag.ConversionWidth}, codes(verify(t, build(t, b))))
}

func TestFlagsInSignature(t *testing.T) {
	b := ir.NewFuncBuilder(ir.Testcase("sigflags"), sig([]types.Type{types.IFlags}, nil))
	ebb0 := b.CreateEbb()
	b.EntryParams(ebb0)

	b.SwitchToEbb(ebb0)
	b.Return()

	findings := verify(t, build(t, b))

	require.Equal(t, []string{diag.SignatureType}, codes(findings))
	assert.Equal(t, ir.AnyFunction(), findings[0].Location)
}

func TestAddressWidthFollowsTarget(t *testing.T) {
	b := ir.NewFuncBuilder(ir.Testcase("addr"), sig([]types.Type{types.I32}, []types.Type{types.I32}))
	ebb0 := b.CreateEbb()
	p := b.EntryParams(ebb0)[0]

	b.SwitchToEbb(ebb0)
	v := b.Load(types.I32, immediates.MemFlags(0), p, 0)
	b.Return(v)

	f := build(t, b)

	assert.Empty(t, verify(t, f), "i32 addresses are accepted without a target")

	findings, err := Verify(f, Options{Target: clobberTarget{ptr: types.I64}})
	require.NoError(t, err)
	assert.Equal(t, []string{diag.OperandType}, codes(findings))
}

// ============================================================================
// Limits
// ============================================================================

func TestArgumentLimitIsFatal(t *testing.T) {
	f := ir.NewFunctionWithLimits(ir.Testcase("wide"), ir.Signature{}, ir.Limits{Args: 2})

	ebb, err := f.AppendEbb()
	require.NoError(t, err)

	var args []ir.Value

	for i := range 3 {
		_, rs, err := f.AppendInst(ebb, ir.InstructionData{Opcode: ir.OpIconst, Imm: immediates.Imm64(i)}, types.I32)
		require.NoError(t, err)

		args = append(args, rs[0])
	}

	ret, err := f.DFG.MakeInst(ir.InstructionData{Opcode: ir.OpReturn, Args: args})
	require.NoError(t, err)
	require.NoError(t, f.Layout.AppendInst(ret, ebb))

	findings, err := Verify(f, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ir.ErrTooManyArgs))
	assert.Equal(t, diag.FatalTooMany, diag.FatalCode(err))

	// The rest of the battery still reports.
	assert.Equal(t, []string{diag.ReturnMismatch}, codes(findings))
}

// ============================================================================
// Ordering
// ============================================================================

func brokenEverywhere(t *testing.T) *ir.Function {
	t.Helper()

	b := ir.NewFuncBuilder(ir.Testcase("broken"), sig([]types.Type{types.IFlags, types.I32}, nil))
	b.GlobalVar(ir.GlobalVarData{Kind: ir.DerefGV, Base: 0})
	b.Heap(ir.HeapData{Style: ir.StaticHeap, BaseKind: ir.HeapBaseReservedReg, Min: 0x1000, Bound: 0x10})

	ebb0 := b.CreateEbb()
	ebb1 := b.CreateEbb()
	ebb2 := b.CreateEbb()
	ps := b.EntryParams(ebb0)
	b.Param(ebb2, types.I64)

	b.SwitchToEbb(ebb0)
	b.Brz(ps[1], ebb2)
	b.Jump(ebb1)

	b.SwitchToEbb(ebb1)
	v := b.Iconst(types.I32, 3)
	b.Iadd(v, v)

	b.SwitchToEbb(ebb2)
	b.Return(v)

	return build(t, b)
}

func TestFindingOrder(t *testing.T) {
	f := brokenEverywhere(t)

	// Function, then preamble, then layout position; the return carries an
	// ssa and a branches finding, ordered by category.
	assert.Equal(t, []string{
		diag.SignatureType,
		diag.DerefCycle,
		diag.HeapMinBound,
		diag.BranchArity,
		diag.MissingTerminator,
		diag.UseNotDominated,
		diag.ReturnMismatch,
	}, codes(verify(t, f)))
}

func TestParallelMatchesSequential(t *testing.T) {
	f := brokenEverywhere(t)

	seq, err := Verify(f, Options{})
	require.NoError(t, err)

	for range 20 {
		par, err := Verify(f, Options{Parallel: true})
		require.NoError(t, err)
		assert.Equal(t, seq, par)
	}
}

func TestEveryCheckRuns(t *testing.T) {
	names := make([]string, len(Battery))
	for i, c := range Battery {
		names[i] = c.Name
	}

	assert.Equal(t, []string{"entities", "layout", "ssa", "branches", "globals", "heaps", "flags", "types", "limits"}, names)
}
