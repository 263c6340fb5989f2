package parser

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var ScriptLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Line and block comments
		{"Comment", `//[^\n]*|/\*(?:[^*]|\*+[^*/])*\*+/`, nil},

		// String literals, either quote style
		{"String", `"(?:\\.|[^"\\\n])*"|'(?:\\.|[^'\\\n])*'`, nil},

		// Numeric literals (must come before punctuation so ".5" is a number)
		{"Number", `0[xX][0-9a-fA-F]+|0[oO][0-7]+|0[bB][01]+|(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?`, nil},

		// Keywords and identifiers
		{"Ident", `[a-zA-Z_$][a-zA-Z0-9_$]*`, nil},

		// Operators and punctuation, longest first
		{"Punct", `>>>=|\.\.\.|===|!==|\*\*=|<<=|>>=|>>>|&&=|\|\|=|\?\?=|=>|==|!=|<=|>=|&&|\|\||\?\?|\+\+|--|\+=|-=|\*=|/=|%=|&=|\|=|\^=|\*\*|<<|>>|[-+*/%=<>!~&|^?:;,.(){}\[\]]`, nil},

		// Whitespace
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
