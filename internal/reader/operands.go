package reader

import (
	"github.com/alecthomas/participle/v2/lexer"

	"ebbir/grammar"
	"ebbir/internal/diag"
	"ebbir/internal/entity"
	"ebbir/internal/immediates"
	"ebbir/internal/ir"
)

// operands decodes the flat operand tokens of one instruction according to
// its format.
type operands struct {
	r       *funcReader
	inst    *grammar.Inst
	ops     []*grammar.Operand
	next    int
	pending []fixup
}

func (c *operands) peek() *grammar.Operand {
	if c.next < len(c.ops) {
		return c.ops[c.next]
	}

	return nil
}

func describe(o *grammar.Operand) string {
	switch {
	case o == nil:
		return "end of line"
	case o.Comma:
		return `","`
	case o.Float != "":
		return o.Float
	case o.Int != "":
		return o.Int
	case o.Ident != "":
		return o.Ident
	default:
		return `"("`
	}
}

func width(o *grammar.Operand) int {
	switch {
	case o.Float != "":
		return len(o.Float)
	case o.Int != "":
		return len(o.Int)
	case o.Ident != "":
		return len(o.Ident)
	default:
		return 1
	}
}

// errorf reports at the current operand, or at the last one read when the
// line has ended.
func (c *operands) errorf(code, format string, args ...any) error {
	pos, length := c.inst.Opcode.Pos, c.inst.Opcode.Len()

	switch {
	case c.peek() != nil:
		pos, length = c.peek().Pos, width(c.peek())
	case c.next > 0:
		pos, length = c.ops[c.next-1].Pos, width(c.ops[c.next-1])
	}

	return c.r.errorf(code, pos, length, format, args...)
}

func (c *operands) expect(what string) error {
	return c.errorf(diag.ReaderSyntax, "expected %s, found %s", what, describe(c.peek()))
}

func (c *operands) comma() error {
	if o := c.peek(); o != nil && o.Comma {
		c.next++
		return nil
	}

	return c.expect(`","`)
}

func (c *operands) ident(what string) (*grammar.Operand, error) {
	o := c.peek()
	if o == nil || o.Ident == "" {
		return nil, c.expect(what)
	}

	c.next++

	return o, nil
}

func (c *operands) integer(what string) (*grammar.Operand, error) {
	o := c.peek()
	if o == nil || o.Int == "" {
		return nil, c.expect(what)
	}

	c.next++

	return o, nil
}

func (c *operands) end() error {
	if o := c.peek(); o != nil {
		return c.errorf(diag.ReaderSyntax, "unexpected %s after the operands of %s", describe(o), c.inst.Opcode.Value)
	}

	return nil
}

// use appends a value operand. Names not defined yet become fixups.
func (c *operands) use(d *ir.InstructionData, name string, pos lexer.Position) error {
	if !entityName(name, "v") {
		return c.r.errorf(diag.ReaderSyntax, pos, len(name), "expected a value, found %s", name)
	}

	if v, ok := c.r.values[name]; ok {
		d.Args = append(d.Args, v)
		return nil
	}

	c.pending = append(c.pending, fixup{arg: len(d.Args), name: name, pos: pos})
	d.Args = append(d.Args, ir.Value(entity.Reserved))

	return nil
}

func (c *operands) value(d *ir.InstructionData) error {
	o, err := c.ident("a value")
	if err != nil {
		return err
	}

	return c.use(d, o.Ident, o.Pos)
}

// values reads a possibly empty comma separated value list.
func (c *operands) values(d *ir.InstructionData) error {
	if c.peek() == nil {
		return nil
	}

	for {
		if err := c.value(d); err != nil {
			return err
		}

		if o := c.peek(); o == nil || !o.Comma {
			return nil
		}

		c.next++
	}
}

// list reads a parenthesized argument list.
func (c *operands) list(d *ir.InstructionData, required bool) error {
	o := c.peek()
	if o == nil || o.List == nil {
		if required {
			return c.expect("an argument list")
		}

		return nil
	}

	c.next++

	for _, id := range o.List.Values {
		if err := c.use(d, id.Value, id.Pos); err != nil {
			return err
		}
	}

	return nil
}

func (c *operands) dest(d *ir.InstructionData) error {
	o, err := c.ident("a destination EBB")
	if err != nil {
		return err
	}

	ebb, ok := c.r.ebbs[o.Ident]
	if !ok {
		return c.r.errorf(diag.ReaderUndefined, o.Pos, len(o.Ident), "%s is not defined", o.Ident)
	}

	d.Dest = ebb

	return c.list(d, false)
}

func (c *operands) entity(prefix, what string) (uint32, error) {
	o, err := c.ident(what)
	if err != nil {
		return 0, err
	}

	return c.r.ref(prefix, o.Ident, o.Pos)
}

func (c *operands) imm64() (immediates.Imm64, error) {
	o, err := c.integer("an integer immediate")
	if err != nil {
		return 0, err
	}

	v, err := immediates.ParseImm64(o.Int)
	if err != nil {
		return 0, c.r.errorf(diag.ReaderImmediate, o.Pos, len(o.Int), "%v", err)
	}

	return v, nil
}

func (c *operands) intCC() (immediates.IntCC, error) {
	o, err := c.ident("an integer condition code")
	if err != nil {
		return 0, err
	}

	cc, ok := immediates.ParseIntCC(o.Ident)
	if !ok {
		return 0, c.r.errorf(diag.ReaderImmediate, o.Pos, len(o.Ident), "unknown integer condition code %q", o.Ident)
	}

	return cc, nil
}

func (c *operands) floatCC() (immediates.FloatCC, error) {
	o, err := c.ident("a float condition code")
	if err != nil {
		return 0, err
	}

	cc, ok := immediates.ParseFloatCC(o.Ident)
	if !ok {
		return 0, c.r.errorf(diag.ReaderImmediate, o.Pos, len(o.Ident), "unknown float condition code %q", o.Ident)
	}

	return cc, nil
}

func (c *operands) trap() (immediates.TrapCode, error) {
	o, err := c.ident("a trap code")
	if err != nil {
		return 0, err
	}

	code, ok := immediates.ParseTrapCode(o.Ident)
	if !ok {
		return 0, c.r.errorf(diag.ReaderImmediate, o.Pos, len(o.Ident), "unknown trap code %q", o.Ident)
	}

	return code, nil
}

func (c *operands) float() (*grammar.Operand, error) {
	o := c.peek()
	if o == nil || o.Float == "" {
		return nil, c.expect("a float literal")
	}

	c.next++

	return o, nil
}

// memFlags reads any leading memory flag keywords.
func (c *operands) memFlags() immediates.MemFlags {
	var flags immediates.MemFlags

	for o := c.peek(); o != nil && o.Ident != "" && flags.Set(o.Ident); o = c.peek() {
		c.next++
	}

	return flags
}

// offset reads an optional signed offset.
func (c *operands) offset() (immediates.Offset32, error) {
	o := c.peek()
	if o == nil || o.Int == "" {
		return 0, nil
	}

	c.next++

	v, err := immediates.ParseOffset32(o.Int)
	if err != nil {
		return 0, c.r.errorf(diag.ReaderImmediate, o.Pos, len(o.Int), "%v", err)
	}

	return v, nil
}

func seq(steps ...func() error) error {
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	return nil
}

// decode fills d from the operand tokens. The spelling of each format
// matches the printer.
func (c *operands) decode(d *ir.InstructionData) error {
	v := func() error { return c.value(d) }
	comma := c.comma
	dest := func() error { return c.dest(d) }
	args := func() error { return c.list(d, true) }

	imm := func() (err error) {
		d.Imm, err = c.imm64()
		return err
	}
	intCC := func() (err error) {
		d.IntCC, err = c.intCC()
		return err
	}
	floatCC := func() (err error) {
		d.FloatCC, err = c.floatCC()
		return err
	}
	trap := func() (err error) {
		d.Trap, err = c.trap()
		return err
	}
	offset := func() (err error) {
		d.Offset, err = c.offset()
		return err
	}
	flags := func() error {
		d.Flags = c.memFlags()
		return nil
	}

	lane := func() error {
		o, err := c.integer("a lane index")
		if err != nil {
			return err
		}

		if d.Lane, err = immediates.ParseUimm8(o.Int); err != nil {
			return c.r.errorf(diag.ReaderImmediate, o.Pos, len(o.Int), "%v", err)
		}

		return nil
	}
	size := func() error {
		o, err := c.integer("an access size")
		if err != nil {
			return err
		}

		if d.Size, err = immediates.ParseUimm32(o.Int); err != nil {
			return c.r.errorf(diag.ReaderImmediate, o.Pos, len(o.Int), "%v", err)
		}

		return nil
	}
	ieee32 := func() error {
		o, err := c.float()
		if err != nil {
			return err
		}

		if d.Ieee32, err = immediates.ParseIeee32(o.Float); err != nil {
			return c.r.errorf(diag.ReaderImmediate, o.Pos, len(o.Float), "%v", err)
		}

		return nil
	}
	ieee64 := func() error {
		o, err := c.float()
		if err != nil {
			return err
		}

		if d.Ieee64, err = immediates.ParseIeee64(o.Float); err != nil {
			return c.r.errorf(diag.ReaderImmediate, o.Pos, len(o.Float), "%v", err)
		}

		return nil
	}
	boolean := func() error {
		o, err := c.ident("true or false")
		if err != nil {
			return err
		}

		switch o.Ident {
		case "true":
			d.Bool = true
		case "false":
		default:
			return c.r.errorf(diag.ReaderImmediate, o.Pos, len(o.Ident), "expected true or false, found %s", o.Ident)
		}

		return nil
	}

	gv := func() error {
		idx, err := c.entity("gv", "a global variable")
		d.GlobalVar = ir.GlobalVar(idx)

		return err
	}
	heap := func() error {
		idx, err := c.entity("heap", "a heap")
		d.Heap = ir.Heap(idx)

		return err
	}
	slot := func() error {
		idx, err := c.entity("ss", "a stack slot")
		d.StackSlot = ir.StackSlot(idx)

		return err
	}
	table := func() error {
		idx, err := c.entity("jt", "a jump table")
		d.Table = ir.JumpTable(idx)

		return err
	}
	fn := func() error {
		idx, err := c.entity("fn", "a function reference")
		d.FuncRef = ir.FuncRef(idx)

		return err
	}
	sig := func() error {
		idx, err := c.entity("sig", "a signature reference")
		d.SigRef = ir.SigRef(idx)

		return err
	}

	var err error

	switch d.Opcode.Format() {
	case ir.FormatNullary:
	case ir.FormatUnary:
		err = seq(v)
	case ir.FormatUnaryImm:
		err = seq(imm)
	case ir.FormatUnaryIeee32:
		err = seq(ieee32)
	case ir.FormatUnaryIeee64:
		err = seq(ieee64)
	case ir.FormatUnaryBool:
		err = seq(boolean)
	case ir.FormatUnaryGlobalVar:
		err = seq(gv)
	case ir.FormatBinary:
		err = seq(v, comma, v)
	case ir.FormatBinaryImm:
		err = seq(v, comma, imm)
	case ir.FormatTernary:
		err = seq(v, comma, v, comma, v)
	case ir.FormatMultiAry:
		err = c.values(d)
	case ir.FormatInsertLane:
		err = seq(v, comma, lane, comma, v)
	case ir.FormatExtractLane:
		err = seq(v, comma, lane)
	case ir.FormatIntCompare:
		err = seq(intCC, v, comma, v)
	case ir.FormatIntCompareImm:
		err = seq(intCC, v, comma, imm)
	case ir.FormatIntCond:
		err = seq(intCC, v)
	case ir.FormatFloatCompare:
		err = seq(floatCC, v, comma, v)
	case ir.FormatFloatCond:
		err = seq(floatCC, v)
	case ir.FormatIntSelect:
		err = seq(intCC, v, comma, v, comma, v)
	case ir.FormatJump:
		err = seq(dest)
	case ir.FormatBranch:
		err = seq(v, comma, dest)
	case ir.FormatBranchInt:
		err = seq(intCC, v, comma, dest)
	case ir.FormatBranchFloat:
		err = seq(floatCC, v, comma, dest)
	case ir.FormatBranchIcmp:
		err = seq(intCC, v, comma, v, comma, dest)
	case ir.FormatBranchTable:
		err = seq(v, comma, table)
	case ir.FormatCall:
		err = seq(fn, args)
	case ir.FormatCallIndirect:
		err = seq(sig, comma, v, args)
	case ir.FormatFuncAddr:
		err = seq(fn)
	case ir.FormatLoad:
		err = seq(flags, v, offset)
	case ir.FormatStore:
		err = seq(flags, v, comma, v, offset)
	case ir.FormatStackLoad:
		err = seq(slot, offset)
	case ir.FormatStackStore:
		err = seq(v, comma, slot, offset)
	case ir.FormatHeapAddr:
		err = seq(heap, comma, v, comma, size)
	case ir.FormatTrap:
		err = seq(trap)
	case ir.FormatCondTrap:
		err = seq(v, comma, trap)
	case ir.FormatIntCondTrap:
		err = seq(intCC, v, comma, trap)
	case ir.FormatFloatCondTrap:
		err = seq(floatCC, v, comma, trap)
	}

	if err != nil {
		return err
	}

	return c.end()
}
