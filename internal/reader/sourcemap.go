package reader

import (
	"github.com/alecthomas/participle/v2/lexer"

	"ebbir/internal/diag"
	"ebbir/internal/ir"
)

type span struct {
	pos    diag.Position
	length int
}

// SourceMap records where each entity of a parsed function was defined.
// It implements diag.Resolver.
type SourceMap struct {
	spans map[ir.AnyEntity]span
}

func newSourceMap() *SourceMap {
	return &SourceMap{spans: make(map[ir.AnyEntity]span)}
}

func (m *SourceMap) def(e ir.AnyEntity, pos lexer.Position, length int) {
	m.spans[e] = span{pos: position(pos), length: length}
}

// Position returns the definition position of e.
func (m *SourceMap) Position(e ir.AnyEntity) (diag.Position, bool) {
	s, ok := m.spans[e]
	return s.pos, ok
}

// Span returns the definition position of e and the length of its name.
func (m *SourceMap) Span(e ir.AnyEntity) (diag.Position, int, bool) {
	s, ok := m.spans[e]
	return s.pos, s.length, ok
}

// Len returns the number of located entities.
func (m *SourceMap) Len() int { return len(m.spans) }
