package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// File is a sequence of functions.
type File struct {
	Pos       lexer.Position
	Functions []*Function `EOL* ( @@ EOL* )*`
}

type Function struct {
	Pos       lexer.Position
	EndPos    lexer.Position
	Name      *ExtName   `"function" @@`
	Signature *Signature `@@ "{" EOL+`
	Preamble  []*Decl    `( @@ EOL+ )*`
	Ebbs      []*Ebb     `@@* "}"`
}

// ExtName is "%name" or "uN:M".
type ExtName struct {
	Pos      lexer.Position
	Testcase string `  @Name`
	User     string `| @UserName`
}

type Signature struct {
	Pos      lexer.Position
	Params   []*AbiParam `"(" ( @@ ( "," @@ )* )? ")"`
	Returns  []*AbiParam `( "->" @@ ( "," @@ )* )?`
	CallConv string      `@( "fast" | "cold" | "system_v" | "fastcall" | "baldrdash" )?`
}

type AbiParam struct {
	Pos       lexer.Position
	Type      string `@Ident`
	Extension string `@( "uext" | "sext" )?`
	Purpose   string `@( "sret" | "link" | "fp" | "csr" | "vmctx" )?`
}

// Decl is one preamble line: "name = entity".
type Decl struct {
	Pos       lexer.Position
	EndPos    lexer.Position
	Name      PosIdent       `@@ "="`
	StackSlot *StackSlotDecl `( @@`
	GlobalVar *GlobalVarDecl `| @@`
	Heap      *HeapDecl      `| @@`
	Signature *Signature     `| @@`
	Function  *FuncDecl      `| @@`
	JumpTable *JumpTableDecl `| @@ )`
}

type StackSlotDecl struct {
	Kind  string      `@( "explicit_slot" | "spill_slot" | "incoming_arg" | "outgoing_arg" )`
	Size  string      `@Integer`
	Attrs []*KeyValue `( "," @@ )*`
}

// KeyValue is a "key value" attribute such as "align 8" or "bound gv1".
type KeyValue struct {
	Pos   lexer.Position
	Key   string `@Ident`
	Value string `@( Integer | Ident )`
}

type GlobalVarDecl struct {
	VMContext *VMContextGV `  @@`
	Deref     *DerefGV     `| @@`
	Symbol    *SymbolGV    `| @@`
}

type VMContextGV struct {
	Offset string `"vmctx" @Integer?`
}

type DerefGV struct {
	Base   PosIdent `"deref" "(" @@ ")"`
	Offset string   `@Integer?`
}

type SymbolGV struct {
	Colocated bool     `"globalsym" @"colocated"?`
	Name      *ExtName `@@`
}

type HeapDecl struct {
	Style string      `@( "static" | "dynamic" )`
	Base  PosIdent    `@@`
	Attrs []*KeyValue `( "," @@ )*`
}

type FuncDecl struct {
	Colocated bool     `@"colocated"?`
	Name      *ExtName `@@`
	Signature PosIdent `@@`
}

type JumpTableDecl struct {
	Entries []*JumpEntry `"jump_table" ( @@ ( "," @@ )* )?`
}

// JumpEntry is an EBB name or "0" for a hole.
type JumpEntry struct {
	Pos   lexer.Position
	Value string `@( Ident | Integer )`
}

// Ebb is a header line followed by instruction lines.
type Ebb struct {
	Pos    lexer.Position
	Name   PosIdent    `@@`
	Params []*EbbParam `( "(" ( @@ ( "," @@ )* )? ")" )? ":" EOL+`
	Insts  []*Inst     `@@*`
}

type EbbParam struct {
	Pos   lexer.Position
	Value PosIdent `@@ ":"`
	Type  string   `@Ident`
}

// Inst is one instruction line. The operands are kept as a flat token
// sequence; their meaning depends on the opcode's format.
type Inst struct {
	Pos      lexer.Position
	EndPos   lexer.Position
	Results  []*PosIdent `(?! Ident ( "(" | ":" ) ) ( @@ ( "," @@ )* "=" )?`
	Opcode   PosIdent    `@@`
	CtrlType string      `( "." @Ident )?`
	Operands []*Operand  `@@* EOL+`
}

type Operand struct {
	Pos   lexer.Position
	Comma bool       `  @","`
	Float string     `| @Float`
	Int   string     `| @Integer`
	Ident string     `| @Ident`
	List  *ValueList `| @@`
}

// ValueList is a parenthesized argument list such as "ebb1(v2, v3)".
type ValueList struct {
	Pos    lexer.Position
	Values []*PosIdent `"(" ( @@ ( "," @@ )* )? ")"`
}
