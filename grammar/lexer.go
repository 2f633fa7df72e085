package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// ClifLexer tokenizes the textual IR. Newlines are significant: every
// declaration, EBB header and instruction ends at one.
var ClifLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Comments run to the end of the line
		{"Comment", `;[^\n]*`, nil},

		// External names
		{"Name", `%[A-Za-z0-9_]+`, nil},
		{"UserName", `u[0-9]+:[0-9]+`, nil},

		// Float literals (must come before integers and identifiers)
		{"Float", `[-+]?(0x[0-9a-fA-F_]*\.[0-9a-fA-F_]*p[-+]?[0-9]+|0\.0|Inf\b|s?NaN(:0x[0-9a-fA-F]+)?)`, nil},

		// Integers carry their sign, so offsets like "+16" are one token
		{"Integer", `[-+]?(0x[0-9a-fA-F_]+|[0-9][0-9_]*)`, nil},

		// Opcodes, types, entities and keywords
		{"Ident", `[A-Za-z_][A-Za-z0-9_]*`, nil},

		{"Arrow", `->`, nil},
		{"Punctuation", `[(){}=:,.]`, nil},

		{"EOL", `\n`, nil},
		{"Whitespace", `[ \t\r]+`, nil},
	},
})
