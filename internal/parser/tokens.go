package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"

	"jsopt/internal/errors"
)

// reserved words never name a binding, label or variable.
var reserved = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true, "do": true,
	"else": true, "enum": true, "export": true, "extends": true, "false": true,
	"finally": true, "for": true, "function": true, "if": true, "import": true,
	"in": true, "instanceof": true, "new": true, "null": true, "return": true,
	"super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true,
	"with": true, "yield": true,
}

var (
	identToken  = ScriptLexer.Symbols()["Ident"]
	punctToken  = ScriptLexer.Symbols()["Punct"]
	numberToken = ScriptLexer.Symbols()["Number"]
	stringToken = ScriptLexer.Symbols()["String"]
)

type unsupportedWord struct {
	code      string
	construct string
}

// unsupportedWords introduce forms the grammar has no production for.
var unsupportedWords = map[string]unsupportedWord{
	"try":      {errors.ErrorStatement, "try statements"},
	"catch":    {errors.ErrorStatement, "try statements"},
	"finally":  {errors.ErrorStatement, "try statements"},
	"switch":   {errors.ErrorStatement, "switch statements"},
	"case":     {errors.ErrorStatement, "switch statements"},
	"default":  {errors.ErrorStatement, "switch statements"},
	"class":    {errors.ErrorStatement, "classes"},
	"extends":  {errors.ErrorStatement, "classes"},
	"super":    {errors.ErrorStatement, "classes"},
	"with":     {errors.ErrorStatement, "with statements"},
	"import":   {errors.ErrorStatement, "module syntax"},
	"export":   {errors.ErrorStatement, "module syntax"},
	"enum":     {errors.ErrorStatement, "enum declarations"},
	"debugger": {errors.ErrorStatement, "debugger statements"},
	"yield":    {errors.ErrorGenerator, "yield expressions"},
}

// scan lexes source without whitespace and comments. A line break after
// return, break or continue ends the statement, as does a line break in
// front of ++ or --, so scan inserts the semicolon the line break stands
// for. A line break after throw is a syntax error.
func scan(filename, source string) ([]lexer.Token, error) {
	lex, err := ScriptLexer.LexString(filename, source)
	if err != nil {
		return nil, err
	}
	symbols := ScriptLexer.Symbols()
	elided := map[lexer.TokenType]bool{symbols["Whitespace"]: true, symbols["Comment"]: true}

	var raw []lexer.Token
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		if elided[tok.Type] {
			continue
		}
		raw = append(raw, tok)
		if tok.EOF() {
			break
		}
	}

	out := make([]lexer.Token, 0, len(raw))
	for i, tok := range raw {
		word := tok.Type == identToken && !propertyName(raw, i)
		if u, ok := unsupportedWords[tok.Value]; ok && word {
			return nil, errors.Unsupported(u.code, u.construct, position(tok.Pos))
		}
		if (isPunct(tok, "++") || isPunct(tok, "--")) && i > 0 &&
			lineBreakBetween(raw[i-1], tok) && endsOperand(raw[i-1]) {
			out = append(out, semicolonAfter(raw[i-1]))
		}
		out = append(out, tok)

		if !word || i+1 == len(raw) || !lineBreakBetween(tok, raw[i+1]) {
			continue
		}
		switch tok.Value {
		case "return", "break", "continue":
			if !isPunct(raw[i+1], ";") {
				out = append(out, semicolonAfter(tok))
			}
		case "throw":
			return nil, errors.Syntax("line break is not allowed after throw", position(raw[i+1].Pos))
		}
	}
	return out, nil
}

// propertyName reports whether the word at i names a property, as in
// a.default or {default: 1}, rather than standing for itself.
func propertyName(tokens []lexer.Token, i int) bool {
	if i == 0 {
		return false
	}
	prev := tokens[i-1]
	if isPunct(prev, ".") {
		return true
	}
	return i+1 < len(tokens) && isPunct(tokens[i+1], ":") && (isPunct(prev, "{") || isPunct(prev, ","))
}

// endsOperand reports whether an expression can end with tok.
func endsOperand(tok lexer.Token) bool {
	switch tok.Type {
	case numberToken, stringToken:
		return true
	case identToken:
		switch tok.Value {
		case "this", "null", "true", "false":
			return true
		}
		return !reserved[tok.Value]
	}
	return isPunct(tok, ")") || isPunct(tok, "]") || isPunct(tok, "}")
}

func lineBreakBetween(a, b lexer.Token) bool {
	return b.Pos.Line > endLine(a)
}

func endLine(tok lexer.Token) int {
	return tok.Pos.Line + strings.Count(tok.Value, "\n")
}

func isPunct(tok lexer.Token, value string) bool {
	return tok.Type == punctToken && tok.Value == value
}

// semicolonAfter is an inserted ";" placed right behind tok.
func semicolonAfter(tok lexer.Token) lexer.Token {
	pos := tok.Pos
	pos.Offset += len(tok.Value)
	pos.Column += utf8.RuneCountInString(tok.Value)
	return lexer.Token{Type: punctToken, Value: ";", Pos: pos}
}

// tokenStream replays scanned tokens to the parser.
type tokenStream struct {
	tokens []lexer.Token
	next   int
}

func (s *tokenStream) Next() (lexer.Token, error) {
	tok := s.tokens[s.next]
	if s.next < len(s.tokens)-1 {
		s.next++
	}
	return tok, nil
}

// tokenIndex maps the offset of each token to its position in tokens.
func tokenIndex(tokens []lexer.Token) map[int]int {
	index := make(map[int]int, len(tokens))
	for i, tok := range tokens {
		index[tok.Pos.Offset] = i
	}
	return index
}
