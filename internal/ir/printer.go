package ir

import (
	"fmt"
	"strings"
)

// Printer writes functions in the canonical text form accepted by the
// reader.
type Printer struct {
	indent int
	output strings.Builder
}

// NewPrinter creates a new IR printer
func NewPrinter() *Printer {
	return &Printer{indent: 0}
}

// PrintFunction returns the canonical text of f.
func PrintFunction(f *Function) string {
	p := NewPrinter()
	p.printFunction(f)
	return p.output.String()
}

// FormatInst returns the text of one instruction, results included.
func FormatInst(f *Function, inst Inst) string {
	if !f.DFG.InstValid(inst) {
		return inst.String()
	}

	p := NewPrinter()
	p.printInst(f, inst)
	return p.output.String()
}

// Helper methods

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("    ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) write(format string, args ...interface{}) {
	p.output.WriteString(fmt.Sprintf(format, args...))
}

func (p *Printer) printFunction(f *Function) {
	p.writeLine("function %s%s {", f.Name, f.Signature)
	p.indent++

	preamble := p.printPreamble(f)

	p.indent--

	for i, ebb := range f.Layout.Ebbs() {
		if i > 0 || preamble {
			p.writeLine("")
		}

		p.printEbbHeader(f, ebb)

		p.indent++
		for _, inst := range f.Layout.EbbInsts(ebb) {
			p.writeIndent()
			p.printInst(f, inst)
			p.write("\n")
		}
		p.indent--
	}

	p.writeLine("}")
}

func (p *Printer) printPreamble(f *Function) bool {
	wrote := false

	for ss, data := range f.StackSlots.All() {
		p.writeLine("%s = %s", ss, data)
		wrote = true
	}

	for gv, data := range f.GlobalVars.All() {
		p.writeLine("%s = %s", gv, data)
		wrote = true
	}

	for h, data := range f.Heaps.All() {
		p.writeLine("%s = %s", h, data)
		wrote = true
	}

	for sig, data := range f.DFG.Signatures.All() {
		p.writeLine("%s = %s", sig, data)
		wrote = true
	}

	for fn, data := range f.DFG.ExtFuncs.All() {
		p.writeLine("%s = %s", fn, data)
		wrote = true
	}

	for jt, data := range f.JumpTables.All() {
		p.writeLine("%s = %s", jt, data)
		wrote = true
	}

	return wrote
}

func (p *Printer) printEbbHeader(f *Function, ebb Ebb) {
	params := f.DFG.EbbParams(ebb)
	if len(params) == 0 {
		p.writeLine("%s:", ebb)
		return
	}

	parts := make([]string, len(params))
	for i, v := range params {
		parts[i] = fmt.Sprintf("%s: %s", v, f.DFG.ValueType(v))
	}

	p.writeLine("%s(%s):", ebb, strings.Join(parts, ", "))
}

func (p *Printer) printInst(f *Function, inst Inst) {
	dfg := f.DFG
	data := dfg.InstData(inst)

	if results := dfg.InstResults(inst); len(results) != 0 {
		p.write("%s = ", valueList(results))
	}

	p.write("%s", data.Opcode)

	if ctrl := dfg.CtrlType(inst); data.Opcode.IsPolymorphic() {
		tv := data.Opcode.TypevarOperand()
		if tv < 0 || tv >= len(data.Args) || dfg.ValueType(data.Args[tv]) != ctrl {
			p.write(".%s", ctrl)
		}
	}

	if ops := p.operands(data); ops != "" {
		p.write(" %s", ops)
	}
}

// operands spells the operands of data after the opcode.
func (p *Printer) operands(data *InstructionData) string {
	args := data.Args
	fixed := data.FixedArgs()
	varargs := data.VariableArgs()

	arg := func(i int) string {
		if i < len(fixed) {
			return fixed[i].String()
		}

		return "v?"
	}

	dest := func() string {
		if len(varargs) == 0 {
			return data.Dest.String()
		}

		return fmt.Sprintf("%s(%s)", data.Dest, valueList(varargs))
	}

	mem := func(base string) string {
		return base + data.Offset.String()
	}

	withFlags := func(s string) string {
		if data.Flags == 0 {
			return s
		}

		return data.Flags.String() + " " + s
	}

	switch data.Opcode.Format() {
	case FormatNullary:
		return ""
	case FormatUnary:
		return arg(0)
	case FormatUnaryImm:
		return data.Imm.String()
	case FormatUnaryIeee32:
		return data.Ieee32.String()
	case FormatUnaryIeee64:
		return data.Ieee64.String()
	case FormatUnaryBool:
		return fmt.Sprintf("%t", data.Bool)
	case FormatUnaryGlobalVar:
		return data.GlobalVar.String()
	case FormatBinary:
		return arg(0) + ", " + arg(1)
	case FormatBinaryImm:
		return arg(0) + ", " + data.Imm.String()
	case FormatTernary:
		return arg(0) + ", " + arg(1) + ", " + arg(2)
	case FormatMultiAry:
		return valueList(args)
	case FormatInsertLane:
		return fmt.Sprintf("%s, %s, %s", arg(0), data.Lane, arg(1))
	case FormatExtractLane:
		return fmt.Sprintf("%s, %s", arg(0), data.Lane)
	case FormatIntCompare:
		return fmt.Sprintf("%s %s, %s", data.IntCC, arg(0), arg(1))
	case FormatIntCompareImm:
		return fmt.Sprintf("%s %s, %s", data.IntCC, arg(0), data.Imm)
	case FormatIntCond:
		return fmt.Sprintf("%s %s", data.IntCC, arg(0))
	case FormatFloatCompare:
		return fmt.Sprintf("%s %s, %s", data.FloatCC, arg(0), arg(1))
	case FormatFloatCond:
		return fmt.Sprintf("%s %s", data.FloatCC, arg(0))
	case FormatIntSelect:
		return fmt.Sprintf("%s %s, %s, %s", data.IntCC, arg(0), arg(1), arg(2))
	case FormatJump:
		return dest()
	case FormatBranch:
		return arg(0) + ", " + dest()
	case FormatBranchInt:
		return fmt.Sprintf("%s %s, %s", data.IntCC, arg(0), dest())
	case FormatBranchFloat:
		return fmt.Sprintf("%s %s, %s", data.FloatCC, arg(0), dest())
	case FormatBranchIcmp:
		return fmt.Sprintf("%s %s, %s, %s", data.IntCC, arg(0), arg(1), dest())
	case FormatBranchTable:
		return arg(0) + ", " + data.Table.String()
	case FormatCall:
		return fmt.Sprintf("%s(%s)", data.FuncRef, valueList(varargs))
	case FormatCallIndirect:
		return fmt.Sprintf("%s, %s(%s)", data.SigRef, arg(0), valueList(varargs))
	case FormatFuncAddr:
		return data.FuncRef.String()
	case FormatLoad:
		return withFlags(mem(arg(0)))
	case FormatStore:
		return withFlags(arg(0) + ", " + mem(arg(1)))
	case FormatStackLoad:
		return mem(data.StackSlot.String())
	case FormatStackStore:
		return arg(0) + ", " + mem(data.StackSlot.String())
	case FormatHeapAddr:
		return fmt.Sprintf("%s, %s, %s", data.Heap, arg(0), data.Size)
	case FormatTrap:
		return data.Trap.String()
	case FormatCondTrap:
		return arg(0) + ", " + data.Trap.String()
	case FormatIntCondTrap:
		return fmt.Sprintf("%s %s, %s", data.IntCC, arg(0), data.Trap)
	case FormatFloatCondTrap:
		return fmt.Sprintf("%s %s, %s", data.FloatCC, arg(0), data.Trap)
	default:
		return valueList(args)
	}
}

func valueList(vs []Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}

	return strings.Join(parts, ", ")
}
