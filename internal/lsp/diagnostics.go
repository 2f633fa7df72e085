package lsp

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
	"tlog.app/go/errors"

	"ebbir/internal/config"
	"ebbir/internal/diag"
	"ebbir/internal/ir"
	"ebbir/internal/reader"
	"ebbir/internal/verifier"
)

// Diagnose reads and verifies text. A reader error yields one diagnostic;
// otherwise every function is verified and each finding becomes one. The
// result is never nil so publishing it clears stale diagnostics.
func Diagnose(filename, text string, cfg *config.Config) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}

	parsed, err := reader.Parse(filename, text)
	if err != nil {
		var rerr *reader.Error
		if errors.As(err, &rerr) {
			return append(diagnostics, ConvertReaderError(rerr))
		}

		return append(diagnostics, protocol.Diagnostic{
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("ebbcheck-reader"),
			Message:  err.Error(),
		})
	}

	opts := verifier.Options{Parallel: cfg.Parallel}
	if cfg.Target != nil {
		opts.Target = cfg.Target
	}

	for _, p := range parsed {
		findings, fatal := verifier.Verify(p.Func, opts)

		for _, f := range findings {
			diagnostics = append(diagnostics, ConvertFinding(f, p.Source))
		}

		if fatal != nil {
			diagnostics = append(diagnostics, convertFatal(fatal, p.Source))
		}
	}

	return diagnostics
}

// ConvertReaderError transforms a reader error into an LSP diagnostic.
func ConvertReaderError(err *reader.Error) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range:    toRange(err.Pos, err.Length),
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Code:     &protocol.IntegerOrString{Value: err.Code},
		Source:   ptrString("ebbcheck-reader"),
		Message:  err.Message,
	}
}

// ConvertFinding transforms a verifier finding into an LSP diagnostic placed
// at the definition of the offending entity.
func ConvertFinding(f diag.Finding, src *reader.SourceMap) protocol.Diagnostic {
	pos, length := locate(f, src)

	var msg strings.Builder

	msg.WriteString(f.Message)

	for _, note := range f.Notes {
		msg.WriteString("\nnote: ")
		msg.WriteString(note)
	}

	if f.Help != "" {
		msg.WriteString("\nhelp: ")
		msg.WriteString(f.Help)
	}

	return protocol.Diagnostic{
		Range:    toRange(pos, length),
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Code:     &protocol.IntegerOrString{Value: f.Code},
		Source:   ptrString("ebbcheck-" + f.Category.String()),
		Message:  msg.String(),
	}
}

func convertFatal(err error, src *reader.SourceMap) protocol.Diagnostic {
	pos, length, _ := src.Span(ir.AnyFunction())

	d := protocol.Diagnostic{
		Range:    toRange(pos, length),
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("ebbcheck-limits"),
		Message:  err.Error(),
	}

	if code := diag.FatalCode(err); code != "" {
		d.Code = &protocol.IntegerOrString{Value: code}
	}

	return d
}

// locate falls back from the finding's entity to its instruction and then to
// the function name.
func locate(f diag.Finding, src *reader.SourceMap) (diag.Position, int) {
	if f.Position.IsValid() {
		return f.Position, f.Length
	}

	if pos, length, ok := src.Span(f.Location); ok {
		return pos, length
	}

	if f.HasInst {
		if pos, length, ok := src.Span(ir.AnyInst(f.Inst)); ok {
			return pos, length
		}
	}

	pos, length, _ := src.Span(ir.AnyFunction())

	return pos, length
}

func toRange(pos diag.Position, length int) protocol.Range {
	if !pos.IsValid() {
		return protocol.Range{}
	}

	if length <= 0 {
		length = 1
	}

	start := protocol.Position{
		Line:      uint32(pos.Line - 1),   // Convert to 0-based indexing
		Character: uint32(pos.Column - 1), // Convert to 0-based indexing
	}

	end := start
	end.Character += uint32(length)

	return protocol.Range{Start: start, End: end}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}
