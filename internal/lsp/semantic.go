package lsp

import (
	"github.com/alecthomas/participle/v2/lexer"

	"ebbir/grammar"
)

// SemanticToken represents a single LSP semantic token entry
// Line and StartChar are 0-based positions
// TokenType is an index into the semanticTokenTypes array
// TokenModifiers is a bitmask based on semanticTokenModifiers
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int // index into semanticTokenTypes
	TokenModifiers int // bitmask
}

// collectSemanticTokens walks a parsed file in source order.
func collectSemanticTokens(file *grammar.File) []SemanticToken {
	var tokens []SemanticToken

	if file == nil {
		return tokens
	}

	for _, fn := range file.Functions {
		tokens = append(tokens, walkFunction(fn)...)
	}

	return tokens
}

func walkFunction(fn *grammar.Function) []SemanticToken {
	var tokens []SemanticToken

	tokens = append(tokens, makeToken(fn.Pos, len("function"), "keyword", 0)...)
	tokens = append(tokens, makeToken(fn.Name.Pos, len(fn.Name.String()), "function", 1)...)
	tokens = append(tokens, walkSignature(fn.Signature)...)

	for _, d := range fn.Preamble {
		tokens = append(tokens, makeToken(d.Name.Pos, d.Name.Len(), "property", 1)...)

		if d.Signature != nil {
			tokens = append(tokens, walkSignature(d.Signature)...)
		}
	}

	for _, ebb := range fn.Ebbs {
		tokens = append(tokens, walkEbb(ebb)...)
	}

	return tokens
}

func walkSignature(sig *grammar.Signature) []SemanticToken {
	var tokens []SemanticToken

	for _, p := range sig.Params {
		tokens = append(tokens, makeToken(p.Pos, len(p.Type), "type", 0)...)
	}

	for _, p := range sig.Returns {
		tokens = append(tokens, makeToken(p.Pos, len(p.Type), "type", 0)...)
	}

	return tokens
}

func walkEbb(ebb *grammar.Ebb) []SemanticToken {
	var tokens []SemanticToken

	tokens = append(tokens, makeToken(ebb.Name.Pos, ebb.Name.Len(), "namespace", 1)...)

	for _, p := range ebb.Params {
		tokens = append(tokens, makeToken(p.Value.Pos, p.Value.Len(), "parameter", 1)...)
	}

	for _, inst := range ebb.Insts {
		tokens = append(tokens, walkInst(inst)...)
	}

	return tokens
}

func walkInst(inst *grammar.Inst) []SemanticToken {
	var tokens []SemanticToken

	for _, r := range inst.Results {
		tokens = append(tokens, makeToken(r.Pos, r.Len(), "variable", 1)...)
	}

	tokens = append(tokens, makeToken(inst.Opcode.Pos, inst.Opcode.Len(), "operator", 0)...)

	if inst.CtrlType != "" {
		// The suffix follows the opcode and its dot on the same line.
		pos := inst.Opcode.Pos
		pos.Column += inst.Opcode.Len() + 1
		tokens = append(tokens, makeToken(pos, len(inst.CtrlType), "type", 0)...)
	}

	for _, op := range inst.Operands {
		switch {
		case op.Int != "":
			tokens = append(tokens, makeToken(op.Pos, len(op.Int), "number", 0)...)
		case op.Float != "":
			tokens = append(tokens, makeToken(op.Pos, len(op.Float), "number", 0)...)
		case op.Ident != "":
			tokens = append(tokens, makeToken(op.Pos, len(op.Ident), identTokenType(op.Ident), 0)...)
		case op.List != nil:
			for _, v := range op.List.Values {
				tokens = append(tokens, makeToken(v.Pos, v.Len(), "variable", 0)...)
			}
		}
	}

	return tokens
}

// identTokenType classifies an operand identifier by its entity prefix.
func identTokenType(ident string) string {
	switch {
	case hasNumberSuffix(ident, "v"):
		return "variable"
	case hasNumberSuffix(ident, "ebb"):
		return "namespace"
	case hasNumberSuffix(ident, "fn"):
		return "function"
	case hasNumberSuffix(ident, "ss"), hasNumberSuffix(ident, "gv"), hasNumberSuffix(ident, "heap"),
		hasNumberSuffix(ident, "sig"), hasNumberSuffix(ident, "jt"):
		return "property"
	default:
		// condition codes, trap codes and memory flags
		return "modifier"
	}
}

func hasNumberSuffix(s, prefix string) bool {
	if len(s) <= len(prefix) || s[:len(prefix)] != prefix {
		return false
	}

	for _, c := range s[len(prefix):] {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}

// makeToken creates a semantic token for a given position and length
func makeToken(pos lexer.Position, length int, tokenType string, declModifier int) []SemanticToken {
	if length <= 0 || pos.Line == 0 {
		return nil
	}

	return []SemanticToken{{
		Line:           uint32(pos.Line - 1),   // LSP uses 0-based line numbers
		StartChar:      uint32(pos.Column - 1), // LSP uses 0-based column numbers
		Length:         uint32(length),
		TokenType:      indexOf(tokenType, SemanticTokenTypes),
		TokenModifiers: declModifier << indexOf("declaration", SemanticTokenModifiers),
	}}
}

// indexOf returns the index of a string in a slice, or 0 if not found
func indexOf(target string, list []string) int {
	for i, v := range list {
		if v == target {
			return i
		}
	}
	return 0 // Default to first token type if not found
}
