// Package reader builds functions from the textual IR.
//
// The reader checks syntax, names and immediates, but not structure: a
// function with a missing terminator or a bad branch reads fine and is left
// for the verifier. Values may be used before the line that defines them;
// such forward references are patched once the whole function is read.
package reader

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/tliron/commonlog"

	"ebbir/grammar"
	"ebbir/internal/diag"
	"ebbir/internal/immediates"
	"ebbir/internal/ir"
	"ebbir/internal/types"
)

var log = commonlog.GetLogger("ebbir.reader")

// Parsed is one function read from text, with the positions of its
// entities.
type Parsed struct {
	Func   *ir.Function
	Source *SourceMap
}

// Parse reads every function in text. name is the file name used in error
// positions.
func Parse(name, text string) ([]*Parsed, error) {
	file, err := grammar.ParseString(name, text)
	if err != nil {
		return nil, syntaxError(name, err)
	}

	out := make([]*Parsed, 0, len(file.Functions))

	for _, g := range file.Functions {
		p, err := readFunction(name, g)
		if err != nil {
			return nil, err
		}

		log.Debugf("%s: read %s: %d ebbs, %d instructions", name, p.Func.Name, len(p.Func.Layout.Ebbs()), p.Func.DFG.NumInsts())

		out = append(out, p)
	}

	return out, nil
}

// ParseFunction reads text holding exactly one function.
func ParseFunction(name, text string) (*Parsed, error) {
	ps, err := Parse(name, text)
	if err != nil {
		return nil, err
	}

	if len(ps) != 1 {
		return nil, &Error{Code: diag.ReaderSyntax, Filename: name, Message: "expected one function, found " + strconv.Itoa(len(ps))}
	}

	return ps[0], nil
}

type fixup struct {
	inst ir.Inst
	arg  int
	name string
	pos  lexer.Position
}

type funcReader struct {
	filename string
	f        *ir.Function
	src      *SourceMap

	// decls maps preamble names to their index within their kind.
	decls  map[string]uint32
	ebbs   map[string]ir.Ebb
	values map[string]ir.Value

	fixups []fixup
}

func readFunction(filename string, g *grammar.Function) (*Parsed, error) {
	name, err := externalName(filename, g.Name)
	if err != nil {
		return nil, err
	}

	sig, err := signature(filename, g.Signature)
	if err != nil {
		return nil, err
	}

	r := &funcReader{
		filename: filename,
		f:        ir.NewFunction(name, sig),
		src:      newSourceMap(),
		decls:    make(map[string]uint32),
		ebbs:     make(map[string]ir.Ebb),
		values:   make(map[string]ir.Value),
	}

	r.src.def(ir.AnyFunction(), g.Name.Pos, len(g.Name.String()))

	// Names first, so global variables and jump tables may refer to
	// entities declared after them.
	if err := r.declare(g.Preamble); err != nil {
		return nil, err
	}

	if err := r.createEbbs(g.Ebbs); err != nil {
		return nil, err
	}

	if err := r.define(g.Preamble); err != nil {
		return nil, err
	}

	for _, ebb := range g.Ebbs {
		if err := r.readEbb(ebb); err != nil {
			return nil, err
		}
	}

	if err := r.resolve(); err != nil {
		return nil, err
	}

	return &Parsed{Func: r.f, Source: r.src}, nil
}

func (r *funcReader) errorf(code string, pos lexer.Position, length int, format string, args ...any) error {
	return newError(code, r.filename, pos, length, format, args...)
}

func (r *funcReader) buildError(pos lexer.Position, err error) error {
	e := newError(diag.ReaderBuild, r.filename, pos, 1, "%v", err)
	e.Err = err

	return e
}

// entityName reports whether name is prefix followed by a decimal number.
func entityName(name, prefix string) bool {
	num, ok := strings.CutPrefix(name, prefix)
	if !ok || num == "" {
		return false
	}

	for _, c := range num {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}

func externalName(filename string, n *grammar.ExtName) (ir.ExternalName, error) {
	if n.User == "" {
		return ir.Testcase(strings.TrimPrefix(n.Testcase, "%")), nil
	}

	ns, idx, _ := strings.Cut(strings.TrimPrefix(n.User, "u"), ":")

	a, err := strconv.ParseUint(ns, 10, 32)
	if err == nil {
		var b uint64

		b, err = strconv.ParseUint(idx, 10, 32)
		if err == nil {
			return ir.User(uint32(a), uint32(b)), nil
		}
	}

	return ir.ExternalName{}, newError(diag.ReaderImmediate, filename, n.Pos, len(n.User), "invalid external name %s", n.User)
}

func signature(filename string, g *grammar.Signature) (ir.Signature, error) {
	sig := ir.Signature{CallConv: ir.CallConvFast}

	if g.CallConv != "" {
		sig.CallConv, _ = ir.ParseCallConv(g.CallConv)
	}

	var err error

	if sig.Params, err = abiParams(filename, g.Params); err != nil {
		return sig, err
	}

	if sig.Returns, err = abiParams(filename, g.Returns); err != nil {
		return sig, err
	}

	return sig, nil
}

func abiParams(filename string, ps []*grammar.AbiParam) ([]ir.AbiParam, error) {
	var out []ir.AbiParam

	for _, p := range ps {
		t, ok := types.Parse(p.Type)
		if !ok {
			return nil, newError(diag.ReaderUnknownType, filename, p.Pos, len(p.Type), "unknown type %q", p.Type)
		}

		a := ir.AbiParam{Type: t}

		switch p.Extension {
		case "uext":
			a.Extension = ir.ExtUext
		case "sext":
			a.Extension = ir.ExtSext
		}

		if p.Purpose != "" {
			a.Purpose, _ = ir.ParsePurpose(p.Purpose)
		}

		out = append(out, a)
	}

	return out, nil
}

// declKind returns the name prefix and description of a declaration.
func declKind(d *grammar.Decl) (prefix, what string) {
	switch {
	case d.StackSlot != nil:
		return "ss", "stack slot"
	case d.GlobalVar != nil:
		return "gv", "global variable"
	case d.Heap != nil:
		return "heap", "heap"
	case d.Signature != nil:
		return "sig", "signature"
	case d.Function != nil:
		return "fn", "function"
	default:
		return "jt", "jump table"
	}
}

func (r *funcReader) declare(decls []*grammar.Decl) error {
	counts := make(map[string]uint32)

	for _, d := range decls {
		prefix, what := declKind(d)
		name := d.Name.Value

		if !entityName(name, prefix) {
			return r.errorf(diag.ReaderDeclaration, d.Name.Pos, d.Name.Len(),
				"%s declares a %s; expected a name like %s0", name, what, prefix)
		}

		if _, dup := r.decls[name]; dup {
			return r.errorf(diag.ReaderDuplicate, d.Name.Pos, d.Name.Len(), "%s is declared twice", name)
		}

		r.decls[name] = counts[prefix]
		counts[prefix]++
	}

	return nil
}

// ref resolves a preamble name of the given kind.
func (r *funcReader) ref(prefix, name string, pos lexer.Position) (uint32, error) {
	idx, ok := r.decls[name]
	if !ok || !entityName(name, prefix) {
		return 0, r.errorf(diag.ReaderUndefined, pos, len(name), "%s is not declared", name)
	}

	return idx, nil
}

func (r *funcReader) createEbbs(ebbs []*grammar.Ebb) error {
	for _, g := range ebbs {
		name := g.Name.Value

		if !entityName(name, "ebb") {
			return r.errorf(diag.ReaderDeclaration, g.Name.Pos, g.Name.Len(), "expected an EBB name like ebb0, found %s", name)
		}

		if _, dup := r.ebbs[name]; dup {
			return r.errorf(diag.ReaderDuplicate, g.Name.Pos, g.Name.Len(), "%s is defined twice", name)
		}

		ebb, err := r.f.AppendEbb()
		if err != nil {
			return r.buildError(g.Name.Pos, err)
		}

		r.ebbs[name] = ebb
		r.src.def(ir.AnyEbb(ebb), g.Name.Pos, g.Name.Len())
	}

	return nil
}

func (r *funcReader) define(decls []*grammar.Decl) error {
	for _, d := range decls {
		var (
			e   ir.AnyEntity
			err error
		)

		switch {
		case d.StackSlot != nil:
			e, err = r.stackSlot(d)
		case d.GlobalVar != nil:
			e, err = r.globalVar(d)
		case d.Heap != nil:
			e, err = r.heap(d)
		case d.Signature != nil:
			e, err = r.importSignature(d)
		case d.Function != nil:
			e, err = r.importFunction(d)
		default:
			e, err = r.jumpTable(d)
		}

		if err != nil {
			return err
		}

		r.src.def(e, d.Name.Pos, d.Name.Len())
	}

	return nil
}

func (r *funcReader) imm(kv *grammar.KeyValue) (immediates.Imm64, error) {
	v, err := immediates.ParseImm64(kv.Value)
	if err != nil {
		return 0, r.errorf(diag.ReaderImmediate, kv.Pos, len(kv.Key), "%s: %v", kv.Key, err)
	}

	return v, nil
}

func (r *funcReader) offset(pos lexer.Position, s string) (immediates.Offset32, error) {
	if s == "" {
		return 0, nil
	}

	v, err := immediates.ParseOffset32(s)
	if err != nil {
		return 0, r.errorf(diag.ReaderImmediate, pos, len(s), "%v", err)
	}

	return v, nil
}

func (r *funcReader) stackSlot(d *grammar.Decl) (ir.AnyEntity, error) {
	g := d.StackSlot
	kind, _ := ir.ParseStackSlotKind(g.Kind)

	size, err := immediates.ParseUimm32(g.Size)
	if err != nil {
		return ir.AnyEntity{}, r.errorf(diag.ReaderImmediate, d.Pos, d.Name.Len(), "%v", err)
	}

	data := ir.StackSlotData{Kind: kind, Size: uint32(size)}

	for _, kv := range g.Attrs {
		v, err := r.imm(kv)
		if err != nil {
			return ir.AnyEntity{}, err
		}

		switch kv.Key {
		case "align":
			if v <= 0 || v&(v-1) != 0 || v > 1<<31 {
				return ir.AnyEntity{}, r.errorf(diag.ReaderDeclaration, kv.Pos, len(kv.Key), "alignment %d is not a power of two", v)
			}

			data.Align = uint32(v)
		case "offset":
			if v < -1<<31 || v > 1<<31-1 {
				return ir.AnyEntity{}, r.errorf(diag.ReaderImmediate, kv.Pos, len(kv.Key), "offset %d does not fit in 32 bits", v)
			}

			data.Offset, data.HasOffset = int32(v), true
		default:
			return ir.AnyEntity{}, r.errorf(diag.ReaderDeclaration, kv.Pos, len(kv.Key), "unknown stack slot attribute %q", kv.Key)
		}
	}

	ss, err := r.f.CreateStackSlot(data)
	if err != nil {
		return ir.AnyEntity{}, r.buildError(d.Pos, err)
	}

	return ir.AnyStackSlot(ss), nil
}

func (r *funcReader) globalVar(d *grammar.Decl) (ir.AnyEntity, error) {
	g := d.GlobalVar

	var (
		data ir.GlobalVarData
		err  error
	)

	switch {
	case g.VMContext != nil:
		data.Kind = ir.VMContextGV
		data.Offset, err = r.offset(d.Pos, g.VMContext.Offset)
	case g.Deref != nil:
		var base uint32

		data.Kind = ir.DerefGV

		if base, err = r.ref("gv", g.Deref.Base.Value, g.Deref.Base.Pos); err == nil {
			data.Base = ir.GlobalVar(base)
			data.Offset, err = r.offset(d.Pos, g.Deref.Offset)
		}
	default:
		data.Kind = ir.SymbolGV
		data.Colocated = g.Symbol.Colocated
		data.Name, err = externalName(r.filename, g.Symbol.Name)
	}

	if err != nil {
		return ir.AnyEntity{}, err
	}

	gv, err := r.f.CreateGlobalVar(data)
	if err != nil {
		return ir.AnyEntity{}, r.buildError(d.Pos, err)
	}

	return ir.AnyGlobalVar(gv), nil
}

func (r *funcReader) heap(d *grammar.Decl) (ir.AnyEntity, error) {
	g := d.Heap

	var data ir.HeapData

	if g.Style == "dynamic" {
		data.Style = ir.DynamicHeap
	}

	if g.Base.Value == "reserved_reg" {
		data.BaseKind = ir.HeapBaseReservedReg
	} else {
		base, err := r.ref("gv", g.Base.Value, g.Base.Pos)
		if err != nil {
			return ir.AnyEntity{}, err
		}

		data.Base = ir.GlobalVar(base)
	}

	bound := false

	for _, kv := range g.Attrs {
		var err error

		switch kv.Key {
		case "min":
			data.Min, err = r.imm(kv)
		case "guard":
			data.Guard, err = r.imm(kv)
		case "bound":
			bound = true

			if data.Style == ir.DynamicHeap {
				var gv uint32

				gv, err = r.ref("gv", kv.Value, kv.Pos)
				data.BoundGV = ir.GlobalVar(gv)
			} else {
				data.Bound, err = r.imm(kv)
			}
		default:
			err = r.errorf(diag.ReaderDeclaration, kv.Pos, len(kv.Key), "unknown heap attribute %q", kv.Key)
		}

		if err != nil {
			return ir.AnyEntity{}, err
		}
	}

	if !bound && data.Style == ir.DynamicHeap {
		return ir.AnyEntity{}, r.errorf(diag.ReaderDeclaration, d.Name.Pos, d.Name.Len(),
			"dynamic %s needs a bound global variable", d.Name.Value)
	}

	h, err := r.f.CreateHeap(data)
	if err != nil {
		return ir.AnyEntity{}, r.buildError(d.Pos, err)
	}

	return ir.AnyHeap(h), nil
}

func (r *funcReader) importSignature(d *grammar.Decl) (ir.AnyEntity, error) {
	sig, err := signature(r.filename, d.Signature)
	if err != nil {
		return ir.AnyEntity{}, err
	}

	ref, err := r.f.ImportSignature(sig)
	if err != nil {
		return ir.AnyEntity{}, r.buildError(d.Pos, err)
	}

	return ir.AnySigRef(ref), nil
}

func (r *funcReader) importFunction(d *grammar.Decl) (ir.AnyEntity, error) {
	g := d.Function

	name, err := externalName(r.filename, g.Name)
	if err != nil {
		return ir.AnyEntity{}, err
	}

	sig, err := r.ref("sig", g.Signature.Value, g.Signature.Pos)
	if err != nil {
		return ir.AnyEntity{}, err
	}

	fn, err := r.f.ImportFunction(ir.ExtFuncData{Name: name, Signature: ir.SigRef(sig), Colocated: g.Colocated})
	if err != nil {
		return ir.AnyEntity{}, r.buildError(d.Pos, err)
	}

	return ir.AnyFuncRef(fn), nil
}

func (r *funcReader) jumpTable(d *grammar.Decl) (ir.AnyEntity, error) {
	var data ir.JumpTableData

	for _, e := range d.JumpTable.Entries {
		if e.Value == "0" {
			data.Entries = append(data.Entries, ir.NoEbb)
			continue
		}

		ebb, ok := r.ebbs[e.Value]
		if !ok {
			return ir.AnyEntity{}, r.errorf(diag.ReaderUndefined, e.Pos, len(e.Value), "%s is not defined", e.Value)
		}

		data.Entries = append(data.Entries, ebb)
	}

	jt, err := r.f.CreateJumpTable(data)
	if err != nil {
		return ir.AnyEntity{}, r.buildError(d.Pos, err)
	}

	return ir.AnyJumpTable(jt), nil
}

func (r *funcReader) defValue(id grammar.PosIdent, v ir.Value) error {
	if !entityName(id.Value, "v") {
		return r.errorf(diag.ReaderDeclaration, id.Pos, id.Len(), "expected a value name like v0, found %s", id.Value)
	}

	if _, dup := r.values[id.Value]; dup {
		return r.errorf(diag.ReaderDuplicate, id.Pos, id.Len(), "%s is defined twice", id.Value)
	}

	r.values[id.Value] = v
	r.src.def(ir.AnyValue(v), id.Pos, id.Len())

	return nil
}

func (r *funcReader) readEbb(g *grammar.Ebb) error {
	ebb := r.ebbs[g.Name.Value]

	for _, p := range g.Params {
		t, ok := types.Parse(p.Type)
		if !ok {
			return r.errorf(diag.ReaderUnknownType, p.Pos, p.Value.Len(), "unknown type %q", p.Type)
		}

		v, err := r.f.AppendEbbParam(ebb, t)
		if err != nil {
			return r.buildError(p.Pos, err)
		}

		if err := r.defValue(p.Value, v); err != nil {
			return err
		}
	}

	for _, inst := range g.Insts {
		if err := r.readInst(ebb, inst); err != nil {
			return err
		}
	}

	return nil
}

func (r *funcReader) readInst(ebb ir.Ebb, g *grammar.Inst) error {
	op, ok := ir.LookupOpcode(g.Opcode.Value)
	if !ok {
		return r.errorf(diag.ReaderUnknownOp, g.Opcode.Pos, g.Opcode.Len(), "unknown opcode %q", g.Opcode.Value)
	}

	data := ir.InstructionData{Opcode: op}
	c := &operands{r: r, inst: g, ops: g.Operands}

	if err := c.decode(&data); err != nil {
		return err
	}

	ctrl, err := r.ctrlType(g, &data, c.pending)
	if err != nil {
		return err
	}

	inst, err := r.f.DFG.MakeInst(data)
	if err != nil {
		return r.buildError(g.Opcode.Pos, err)
	}

	if err := r.f.Layout.AppendInst(inst, ebb); err != nil {
		return r.buildError(g.Opcode.Pos, err)
	}

	results, err := r.f.DFG.MakeInstResults(inst, ctrl)
	if err != nil {
		return r.buildError(g.Opcode.Pos, err)
	}

	if len(g.Results) != len(results) {
		return r.errorf(diag.ReaderBuild, g.Opcode.Pos, g.Opcode.Len(),
			"%s produces %d results, %d are named", op, len(results), len(g.Results))
	}

	for i, id := range g.Results {
		if err := r.defValue(*id, results[i]); err != nil {
			return err
		}
	}

	for _, fx := range c.pending {
		fx.inst = inst
		r.fixups = append(r.fixups, fx)
	}

	r.src.def(ir.AnyInst(inst), g.Opcode.Pos, g.Opcode.Len())

	return nil
}

// ctrlType is the explicit type suffix, or the type of the typevar operand.
func (r *funcReader) ctrlType(g *grammar.Inst, data *ir.InstructionData, pending []fixup) (types.Type, error) {
	op := data.Opcode

	if g.CtrlType != "" {
		t, ok := types.Parse(g.CtrlType)
		if !ok {
			return types.Invalid, r.errorf(diag.ReaderUnknownType, g.Opcode.Pos, g.Opcode.Len(), "unknown type %q", g.CtrlType)
		}

		if !op.IsPolymorphic() {
			return types.Invalid, r.errorf(diag.ReaderTypeInfer, g.Opcode.Pos, g.Opcode.Len(), "%s takes no type suffix", op)
		}

		return t, nil
	}

	if !op.IsPolymorphic() {
		return types.Invalid, nil
	}

	tv := op.TypevarOperand()
	if tv < 0 || tv >= len(data.Args) {
		return types.Invalid, r.errorf(diag.ReaderTypeInfer, g.Opcode.Pos, g.Opcode.Len(),
			"%s needs a type suffix, as in %s.i32", op, op)
	}

	for _, fx := range pending {
		if fx.arg == tv {
			return types.Invalid, r.errorf(diag.ReaderTypeInfer, fx.pos, len(fx.name),
				"type of %s is not known yet; write %s with a type suffix", fx.name, op)
		}
	}

	return r.f.DFG.ValueType(data.Args[tv]), nil
}

func (r *funcReader) resolve() error {
	for _, fx := range r.fixups {
		v, ok := r.values[fx.name]
		if !ok {
			return r.errorf(diag.ReaderUndefined, fx.pos, len(fx.name), "%s is not defined", fx.name)
		}

		r.f.DFG.InstData(fx.inst).Args[fx.arg] = v
	}

	return nil
}
