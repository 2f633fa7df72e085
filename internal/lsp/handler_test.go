package lsp_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"ebbir/internal/config"
	"ebbir/internal/diag"
	"ebbir/internal/lsp"
)

const testdata = "../reader/testdata"

func openFile(t *testing.T, h *lsp.Handler, ctx *glsp.Context, name string) protocol.DocumentUri {
	t.Helper()

	absPath, err := filepath.Abs(filepath.Join(testdata, name))
	require.NoError(t, err, "Failed to get absolute path")

	text, err := os.ReadFile(absPath)
	require.NoError(t, err)

	uri := "file://" + filepath.ToSlash(absPath)

	err = h.TextDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "clif", Version: 1, Text: string(text)},
	})
	require.NoError(t, err)

	return uri
}

// recorder captures published diagnostics.
type recorder struct {
	published []*protocol.PublishDiagnosticsParams
}

func (r *recorder) context() *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {
			if method == protocol.ServerTextDocumentPublishDiagnostics {
				r.published = append(r.published, params.(*protocol.PublishDiagnosticsParams))
			}
		},
	}
}

func (r *recorder) last(t *testing.T) []protocol.Diagnostic {
	t.Helper()
	require.NotEmpty(t, r.published, "nothing published")

	return r.published[len(r.published)-1].Diagnostics
}

func TestTextDocumentSemanticTokensFull(t *testing.T) {
	handler := lsp.NewHandler(nil)
	var rec recorder

	ctx := rec.context()
	uri := openFile(t, handler, ctx, "valid.clif")

	tokens, err := handler.TextDocumentSemanticTokensFull(ctx, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err, "TextDocumentSemanticTokensFull returned error")
	require.NotNil(t, tokens, "Returned tokens should not be nil")

	decoded, err := decodeSemanticTokens(tokens.Data)
	require.NoError(t, err, "Failed to decode semantic tokens")
	require.Len(t, decoded, 17)

	assertToken(t, &decoded[0], 2, 1, 8, "keyword", nil)
	assertToken(t, &decoded[1], 2, 10, 6, "function", []string{"declaration"})
	assertToken(t, &decoded[2], 2, 17, 3, "type", nil)
	assertToken(t, &decoded[3], 2, 25, 3, "type", nil)
	assertToken(t, &decoded[4], 3, 1, 4, "namespace", []string{"declaration"})
	assertToken(t, &decoded[5], 3, 6, 2, "parameter", []string{"declaration"})
	assertToken(t, &decoded[6], 4, 5, 2, "variable", []string{"declaration"})
	assertToken(t, &decoded[7], 4, 10, 8, "operator", nil)
	assertToken(t, &decoded[8], 4, 19, 2, "variable", nil)
	assertToken(t, &decoded[9], 4, 23, 1, "number", nil)
	assertToken(t, &decoded[10], 5, 5, 4, "operator", nil)
	assertToken(t, &decoded[11], 5, 10, 4, "namespace", nil)
	assertToken(t, &decoded[12], 5, 15, 2, "variable", nil)
	assertToken(t, &decoded[13], 7, 1, 4, "namespace", []string{"declaration"})
	assertToken(t, &decoded[14], 7, 6, 2, "parameter", []string{"declaration"})
	assertToken(t, &decoded[15], 8, 5, 6, "operator", nil)
	assertToken(t, &decoded[16], 8, 12, 2, "variable", nil)
}

func TestCtrlTypeToken(t *testing.T) {
	handler := lsp.NewHandler(nil)
	var rec recorder

	ctx := rec.context()
	uri := openFile(t, handler, ctx, "sample.clif")

	tokens, err := handler.TextDocumentSemanticTokensFull(ctx, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)

	decoded, err := decodeSemanticTokens(tokens.Data)
	require.NoError(t, err)

	// v1 = iconst.i32 10
	var found bool

	for i := range decoded {
		if decoded[i].Line == 10 && decoded[i].Type == "type" {
			assertToken(t, &decoded[i], 10, 17, 3, "type", nil)
			found = true
		}
	}

	assert.True(t, found, "no type token on line 10")
}

func TestDiagnosticsOnOpen(t *testing.T) {
	handler := lsp.NewHandler(config.Default())
	var rec recorder

	openFile(t, handler, rec.context(), "missing_terminator.clif")

	diagnostics := rec.last(t)
	require.Len(t, diagnostics, 1)

	d := diagnostics[0]
	assert.Equal(t, diag.MissingTerminator, d.Code.Value)
	assert.Equal(t, "ebbcheck-layout", *d.Source)
	assert.Equal(t, protocol.Position{Line: 6, Character: 0}, d.Range.Start)
	assert.Equal(t, protocol.Position{Line: 6, Character: 4}, d.Range.End)
	assert.Contains(t, d.Message, "help:")
}

func TestDiagnosticsClearedOnChange(t *testing.T) {
	handler := lsp.NewHandler(nil)
	var rec recorder

	ctx := rec.context()
	uri := openFile(t, handler, ctx, "branch_arity.clif")
	require.Len(t, rec.last(t), 1)

	fixed, err := os.ReadFile(filepath.Join(testdata, "valid.clif"))
	require.NoError(t, err)

	err = handler.TextDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: string(fixed)}},
	})
	require.NoError(t, err)

	diagnostics := rec.last(t)
	assert.NotNil(t, diagnostics)
	assert.Empty(t, diagnostics)

	require.NoError(t, handler.TextDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))

	_, err = handler.TextDocumentSemanticTokensFull(ctx, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	assert.Error(t, err)
}

func TestReaderErrorDiagnostic(t *testing.T) {
	text := "function %f() {\nebb0:\n    v0 = frobnicate.i32 1\n    return\n}\n"

	diagnostics := lsp.Diagnose("bad.clif", text, config.Default())
	require.Len(t, diagnostics, 1)

	d := diagnostics[0]
	assert.Equal(t, diag.ReaderUnknownOp, d.Code.Value)
	assert.Equal(t, "ebbcheck-reader", *d.Source)
	assert.Equal(t, protocol.Position{Line: 2, Character: 9}, d.Range.Start)
	assert.Equal(t, protocol.Position{Line: 2, Character: 19}, d.Range.End)
}

func TestDiagnoseUsesTarget(t *testing.T) {
	text := "function %f(i32) {\nebb0(v0: i32):\n    v1 = load.i32 v0\n    return\n}\n"

	wide := lsp.Diagnose("addr.clif", text, config.Default())
	require.Len(t, wide, 1, "i32 address on a 64-bit target")
	assert.Equal(t, diag.OperandType, wide[0].Code.Value)

	narrow, err := config.Parse([]byte("[target]\npointer-width = 32\n"))
	require.NoError(t, err)
	assert.Empty(t, lsp.Diagnose("addr.clif", text, narrow))
}

type DecodedToken struct {
	Index     int
	Line      uint32
	Char      uint32
	Length    uint32
	Type      string
	Modifiers []string
}

func decodeSemanticTokens(raw []uint32) ([]DecodedToken, error) {
	if len(raw)%5 != 0 {
		return nil, fmt.Errorf("raw token data length %d is not a multiple of 5", len(raw))
	}

	var (
		decoded []DecodedToken
		line    uint32
		char    uint32
	)

	for i := 0; i < len(raw); i += 5 {
		deltaLine := raw[i]
		deltaStart := raw[i+1]
		length := raw[i+2]
		tokenTypeIdx := raw[i+3]
		tokenModMask := raw[i+4]

		if deltaLine == 0 {
			char += deltaStart
		} else {
			line += deltaLine
			char = deltaStart
		}

		var modifiers []string
		for j, name := range lsp.SemanticTokenModifiers {
			if tokenModMask&(1<<j) != 0 {
				modifiers = append(modifiers, name)
			}
		}

		decoded = append(decoded, DecodedToken{
			Index:     i / 5,
			Line:      line + 1, // LSP uses 0-based indexing
			Char:      char + 1, // LSP uses 0-based indexing
			Length:    length,
			Type:      lsp.SemanticTokenTypes[tokenTypeIdx],
			Modifiers: modifiers,
		})
	}

	return decoded, nil
}

func assertToken(t *testing.T, token *DecodedToken, expectedLine, expectedChar, expectedLength uint32, expectedType string, expectedModifiers []string) {
	require.Equal(t, expectedLine, token.Line, "line mismatch (expected line %d)", expectedLine)
	require.Equal(t, expectedChar, token.Char, "char mismatch (expected char %d)", expectedChar)
	require.Equal(t, expectedLength, token.Length, "length mismatch")
	require.Equal(t, expectedType, token.Type, "type mismatch")
	require.ElementsMatch(t, expectedModifiers, token.Modifiers, "modifiers mismatch")
}
