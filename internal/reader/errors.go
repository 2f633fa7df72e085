package reader

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"ebbir/internal/diag"
)

// Error is a positioned reader error. Reading stops at the first one.
type Error struct {
	Code     string
	Filename string
	Pos      diag.Position
	Length   int
	Message  string

	// Err is the underlying construction error, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Filename, e.Pos.Line, e.Pos.Column, e.Message)
	}

	return fmt.Sprintf("%s: %s", e.Filename, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func position(p lexer.Position) diag.Position {
	return diag.Position{Line: p.Line, Column: p.Column}
}

func newError(code string, filename string, pos lexer.Position, length int, format string, args ...any) *Error {
	return &Error{
		Code:     code,
		Filename: filename,
		Pos:      position(pos),
		Length:   length,
		Message:  fmt.Sprintf(format, args...),
	}
}

// syntaxError converts a participle error.
func syntaxError(filename string, err error) *Error {
	pe, ok := err.(participle.Error)
	if !ok {
		return &Error{Code: diag.ReaderSyntax, Filename: filename, Message: err.Error(), Err: err}
	}

	return &Error{
		Code:     diag.ReaderSyntax,
		Filename: filename,
		Pos:      position(pe.Position()),
		Length:   1,
		Message:  pe.Message(),
		Err:      err,
	}
}
