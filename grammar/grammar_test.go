package grammar_test

import (
	"testing"

	"github.com/alecthomas/participle/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ebbir/grammar"
)

func TestSample(t *testing.T) {
	file, err := grammar.ParseFile(`../internal/reader/testdata/sample.clif`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	require.Len(t, file.Functions, 1)

	fn := file.Functions[0]
	assert.Equal(t, "%sample", fn.Name.String())
	assert.Equal(t, 1, len(fn.Signature.Params))
	assert.Equal(t, "i32", fn.Signature.Params[0].Type)
	assert.Equal(t, "i32", fn.Signature.Returns[0].Type)

	// Validate preamble
	require.Equal(t, 6, len(fn.Preamble))
	assert.Equal(t, "ss0", fn.Preamble[0].Name.Value)
	assert.Equal(t, "explicit_slot", fn.Preamble[0].StackSlot.Kind)
	assert.Equal(t, "8", fn.Preamble[0].StackSlot.Size)
	assert.Equal(t, "+16", fn.Preamble[1].GlobalVar.VMContext.Offset)
	assert.Equal(t, "gv0", fn.Preamble[2].GlobalVar.Deref.Base.Value)
	assert.Equal(t, "-8", fn.Preamble[2].GlobalVar.Deref.Offset)

	heap := fn.Preamble[3].Heap
	assert.Equal(t, "static", heap.Style)
	assert.Equal(t, "gv1", heap.Base.Value)
	require.Len(t, heap.Attrs, 3)
	assert.Equal(t, "bound", heap.Attrs[1].Key)
	assert.Equal(t, "0x0001_0000_0000", heap.Attrs[1].Value)

	assert.Len(t, fn.Preamble[4].Signature.Params, 1)
	assert.Equal(t, "%callee", fn.Preamble[5].Function.Name.String())
	assert.Equal(t, "sig0", fn.Preamble[5].Function.Signature.Value)

	// Validate EBBs
	require.Equal(t, 2, len(fn.Ebbs))
	ebb0 := fn.Ebbs[0]
	assert.Equal(t, "ebb0", ebb0.Name.Value)
	assert.Equal(t, "v0", ebb0.Params[0].Value.Value)
	assert.Equal(t, "i32", ebb0.Params[0].Type)
	assert.Equal(t, 8, len(ebb0.Insts))

	iconst := ebb0.Insts[0]
	assert.Equal(t, "v1", iconst.Results[0].Value)
	assert.Equal(t, "iconst", iconst.Opcode.Value)
	assert.Equal(t, "i32", iconst.CtrlType)
	assert.Equal(t, "10", iconst.Operands[0].Int)

	store := ebb0.Insts[2]
	assert.Empty(t, store.Results)
	assert.Equal(t, "stack_store", store.Opcode.Value)
	checkOperands(t, store, "v2", ",", "ss0", "+4")

	load := ebb0.Insts[4]
	checkOperands(t, load, "notrap", "v3")

	brz := ebb0.Insts[6]
	checkOperands(t, brz, "v4", ",", "ebb1", "(")
	assert.Equal(t, "v2", brz.Operands[3].List.Values[0].Value)

	assert.Equal(t, "ebb1", fn.Ebbs[1].Name.Value)
	assert.Equal(t, 1, len(fn.Ebbs[1].Insts))
}

func checkOperands(t *testing.T, inst *grammar.Inst, want ...string) {
	t.Helper()

	require.Equal(t, len(want), len(inst.Operands), "operands of %s", inst.Opcode.Value)

	for i, op := range inst.Operands {
		var got string

		switch {
		case op.Comma:
			got = ","
		case op.Int != "":
			got = op.Int
		case op.Float != "":
			got = op.Float
		case op.Ident != "":
			got = op.Ident
		case op.List != nil:
			got = "("
		}

		assert.Equal(t, want[i], got, "operand %d of %s", i, inst.Opcode.Value)
	}
}

func TestMultipleResultsAndFloats(t *testing.T) {
	src := `; two functions
function u0:1() -> f64 cold {
ebb0:
    v0, v1 = isplit v9
    v2 = f64const -0x1.8p3
    v3 = f32const NaN
    return v2
}

function %empty() {
ebb0:
    return
}
`
	file, err := grammar.ParseString("floats.clif", src)
	require.NoError(t, err)
	require.Len(t, file.Functions, 2)

	fn := file.Functions[0]
	assert.Equal(t, "u0:1", fn.Name.String())
	assert.Equal(t, "cold", fn.Signature.CallConv)

	insts := fn.Ebbs[0].Insts
	assert.Equal(t, "v0", insts[0].Results[0].Value)
	assert.Equal(t, "v1", insts[0].Results[1].Value)
	assert.Equal(t, "-0x1.8p3", insts[1].Operands[0].Float)
	assert.Equal(t, "NaN", insts[2].Operands[0].Float)

	assert.Equal(t, 4, insts[0].Pos.Line)
	assert.Equal(t, 5, insts[0].Pos.Column)
	assert.Equal(t, 10, insts[1].Opcode.Pos.Column)
}

func TestSyntaxErrorPosition(t *testing.T) {
	_, err := grammar.ParseString("bad.clif", "function %f() {\nebb0:\n    v0 = = iconst.i32 1\n}\n")
	require.Error(t, err)

	var perr participle.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 3, perr.Position().Line)
	assert.Equal(t, "bad.clif", perr.Position().Filename)
}

func TestEbbHeaderEndsInstructions(t *testing.T) {
	src := "function %f() {\nebb0:\n    jump ebb1\nebb1(v0: i32, v1: b1):\n    return\n}\n"

	file, err := grammar.ParseString("headers.clif", src)
	require.NoError(t, err)

	ebbs := file.Functions[0].Ebbs
	require.Len(t, ebbs, 2)
	assert.Len(t, ebbs[0].Insts, 1)
	assert.Equal(t, "b1", ebbs[1].Params[1].Type)
}
