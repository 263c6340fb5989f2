package lsp

import (
	"cmp"
	"slices"
	"unicode/utf16"

	"jsopt/internal/ast"
)

// SemanticTokenTypes is the legend of token types the server reports.
var SemanticTokenTypes = []string{
	"function",
	"variable",
	"parameter",
	"property",
}

// SemanticTokenModifiers is the legend of modifier bits.
var SemanticTokenModifiers = []string{
	"declaration",
}

const declaration = 1 << 0

// SemanticToken is one classified name. Line and StartChar are 0-based;
// StartChar and Length count UTF-16 units.
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int // index into SemanticTokenTypes
	TokenModifiers int // bitmask over SemanticTokenModifiers
}

func collectSemanticTokens(program *ast.Program) []SemanticToken {
	var tokens []SemanticToken
	if program == nil {
		return tokens
	}

	callees := map[ast.Node]bool{}
	// for-in heads carry the position of the loop keyword
	imprecise := map[ast.Node]bool{}

	ast.Inspect(program, func(n ast.Node) bool {
		switch v := n.(type) {
		case *ast.ForInStmt:
			if v.Decl != nil {
				for _, d := range v.Decl.Decls {
					imprecise[d] = true
				}
			}
			if v.Target != nil {
				imprecise[v.Target] = true
			}
		case *ast.CallExpr:
			callees[v.Callee] = true
		case *ast.NewExpr:
			callees[v.Callee] = true
		case *ast.Param:
			if v.Name != "" {
				pos := v.Pos
				if v.Rest {
					pos.Column += len("...")
				}
				tokens = appendToken(tokens, pos, v.Name, "parameter", declaration)
			}
		case *ast.Declarator:
			if v.Name != "" && !imprecise[v] {
				tokens = appendToken(tokens, v.Pos, v.Name, "variable", declaration)
			}
		case *ast.Property:
			if !v.Computed && !v.Spread && v.Key != "" && ast.IsIdentifierName(v.Key) {
				if _, shorthand := v.Value.(*ast.Ident); !shorthand || v.Value.NodePos() != v.Pos {
					tokens = appendToken(tokens, v.Pos, v.Key, "property", declaration)
				}
			}
		case *ast.Ident:
			if imprecise[v] {
				break
			}
			kind := "variable"
			if callees[v] {
				kind = "function"
			}
			tokens = appendToken(tokens, v.Pos, v.Name, kind, 0)
		}
		return true
	})

	slices.SortStableFunc(tokens, func(a, b SemanticToken) int {
		if c := cmp.Compare(a.Line, b.Line); c != 0 {
			return c
		}
		return cmp.Compare(a.StartChar, b.StartChar)
	})
	return tokens
}

func appendToken(tokens []SemanticToken, pos ast.Position, name, kind string, modifiers int) []SemanticToken {
	if pos.Line < 1 || pos.Column < 1 {
		return tokens
	}
	return append(tokens, SemanticToken{
		Line:           uint32(pos.Line - 1),
		StartChar:      uint32(pos.Column - 1),
		Length:         utf16Len(name),
		TokenType:      slices.Index(SemanticTokenTypes, kind),
		TokenModifiers: modifiers,
	})
}

// encodeSemanticTokens packs tokens into the relative five-integer form
// of the wire protocol.
func encodeSemanticTokens(tokens []SemanticToken) []uint32 {
	data := []uint32{}
	var prevLine, prevStart uint32

	for _, token := range tokens {
		deltaLine := token.Line - prevLine
		deltaStart := token.StartChar
		if deltaLine == 0 {
			deltaStart = token.StartChar - prevStart
		}

		data = append(data, deltaLine, deltaStart, token.Length, uint32(token.TokenType), uint32(token.TokenModifiers))

		prevLine = token.Line
		prevStart = token.StartChar
	}

	return data
}

func utf16Len(s string) uint32 {
	return uint32(len(utf16.Encode([]rune(s))))
}
