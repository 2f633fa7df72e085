package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ebbir/internal/immediates"
	"ebbir/internal/types"
)

func TestPrintFunction(t *testing.T) {
	b := NewFuncBuilder(Testcase("sample"), NewSignature([]types.Type{types.I32}, []types.Type{types.I32}))

	ss := b.StackSlot(ExplicitSlot, 8)
	gv0 := b.GlobalVar(GlobalVarData{Kind: VMContextGV, Offset: 16})
	gv1 := b.GlobalVar(GlobalVarData{Kind: DerefGV, Base: gv0, Offset: -8})
	heap := b.Heap(HeapData{Style: StaticHeap, Base: gv1, Min: 0x1000, Bound: 0x1_0000_0000, Guard: 0x8000_0000})
	sig := b.ImportSignature(NewSignature([]types.Type{types.I32}, nil))
	fn := b.ImportFunction(Testcase("callee"), sig)

	ebb0 := b.CreateEbb()
	ebb1 := b.CreateEbb()
	v0 := b.EntryParams(ebb0)[0]

	b.SwitchToEbb(ebb0)
	v1 := b.Iconst(types.I32, 10)
	v2 := b.Iadd(v0, v1)
	b.StackStore(v2, ss, 4)
	base := b.HeapAddr(types.I64, heap, v0, 4)
	v4 := b.Load(types.I32, immediates.NoTrap, base, 0)
	b.Call(fn, v4)
	b.Brz(v4, ebb1, v2)
	b.Return(v2)

	v5 := b.Param(ebb1, types.I32)
	b.SwitchToEbb(ebb1)
	b.Return(v5)

	f, err := b.Finish()
	require.NoError(t, err)

	want := `function %sample(i32) -> i32 {
    ss0 = explicit_slot 8
    gv0 = vmctx+16
    gv1 = deref(gv0)-8
    heap0 = static gv1, min 4096, bound 0x0001_0000_0000, guard 0x8000_0000
    sig0 = (i32)
    fn0 = %callee sig0

ebb0(v0: i32):
    v1 = iconst.i32 10
    v2 = iadd v0, v1
    stack_store v2, ss0+4
    v3 = heap_addr.i64 heap0, v0, 4
    v4 = load.i32 notrap v3
    call fn0(v4)
    brz v4, ebb1(v2)
    return v2

ebb1(v5: i32):
    return v5
}
`
	assert.Equal(t, want, f.String())
}

func TestPrintPreambleVariants(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"spill slot", StackSlotData{Kind: SpillSlot, Size: 4, Align: 4}.String(), "spill_slot 4, align 4"},
		{"incoming arg", StackSlotData{Kind: IncomingArg, Size: 8, Offset: -16, HasOffset: true}.String(), "incoming_arg 8, offset -16"},
		{"vmctx no offset", GlobalVarData{Kind: VMContextGV}.String(), "vmctx"},
		{"symbol", GlobalVarData{Kind: SymbolGV, Name: User(1, 2), Colocated: true}.String(), "globalsym colocated u1:2"},
		{"dynamic heap", HeapData{Style: DynamicHeap, Base: 0, BoundGV: 1, Guard: 4096}.String(), "dynamic gv0, min 0, bound gv1, guard 4096"},
		{"reserved reg", HeapData{BaseKind: HeapBaseReservedReg}.String(), "static reserved_reg, min 0, bound 0, guard 0"},
		{"jump table", JumpTableData{Entries: []Ebb{1, NoEbb, 2}}.String(), "jump_table ebb1, 0, ebb2"},
		{"empty jump table", JumpTableData{}.String(), "jump_table"},
		{"colocated fn", ExtFuncData{Name: Testcase("f"), Signature: 3, Colocated: true}.String(), "colocated %f sig3"},
		{
			"signature",
			Signature{
				Params:   []AbiParam{{Type: types.I32, Extension: ExtUext}, {Type: types.I64, Purpose: PurposeVMContext}},
				Returns:  []AbiParam{{Type: types.F64}},
				CallConv: CallConvSystemV,
			}.String(),
			"(i32 uext, i64 vmctx) -> f64 system_v",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestFormatInst(t *testing.T) {
	b := NewFuncBuilder(Testcase("fmt"), Signature{})
	ebb := b.CreateEbb()
	b.SwitchToEbb(ebb)
	x := b.Iconst(types.I64, 100000)
	fl := b.IfcmpImm(x, -5)
	b.Trapif(immediates.UnsignedLessThan, fl, immediates.User(3))
	b.Return()

	f, err := b.Finish()
	require.NoError(t, err)

	insts := f.Layout.EbbInsts(ebb)
	assert.Equal(t, "v0 = iconst.i64 0x0001_86a0", FormatInst(f, insts[0]))
	assert.Equal(t, "v1 = ifcmp_imm v0, -5", FormatInst(f, insts[1]))
	assert.Equal(t, "trapif ult v1, user3", FormatInst(f, insts[2]))
	assert.Equal(t, "inst99", FormatInst(f, Inst(99)))
}
