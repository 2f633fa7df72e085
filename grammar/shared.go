package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// PosIdent is an identifier together with its source span.
type PosIdent struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Value  string `@Ident`
}

// Len is the length of the identifier in columns.
func (p PosIdent) Len() int {
	return len(p.Value)
}

// String returns the external name as it was written.
func (n *ExtName) String() string {
	if n.User != "" {
		return n.User
	}

	return n.Testcase
}
