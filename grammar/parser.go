package grammar

import (
	"os"

	"github.com/alecthomas/participle/v2"
	"tlog.app/go/errors"
)

var parser = participle.MustBuild[File](
	participle.Lexer(ClifLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(participle.MaxLookahead),
)

// ParseString parses the text of a .clif file. Syntax errors are returned as
// participle.Error, which carries the position.
func ParseString(filename, source string) (*File, error) {
	return parser.ParseString(filename, source)
}

// ParseFile reads and parses a .clif file.
func ParseFile(path string) (*File, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read %s", path)
	}

	return ParseString(path, string(source))
}
