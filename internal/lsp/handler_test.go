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

	"jsopt/internal/errors"
	"jsopt/internal/lsp"
)

type published struct {
	uri         string
	diagnostics []protocol.Diagnostic
}

func newContext(sent *[]published) *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {
			if method != protocol.ServerTextDocumentPublishDiagnostics {
				return
			}
			p := params.(*protocol.PublishDiagnosticsParams)
			*sent = append(*sent, published{uri: p.URI, diagnostics: p.Diagnostics})
		},
	}
}

func open(t *testing.T, h *lsp.Handler, ctx *glsp.Context, uri, text string) {
	t.Helper()
	err := h.TextDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "javascript", Version: 1, Text: text},
	})
	require.NoError(t, err)
}

func TestInitialize(t *testing.T) {
	h := lsp.NewHandler("jsopt", "1.2.3")

	result, err := h.Initialize(&glsp.Context{}, &protocol.InitializeParams{})
	require.NoError(t, err)

	res, ok := result.(*protocol.InitializeResult)
	require.True(t, ok)
	assert.Equal(t, true, res.Capabilities.DocumentFormattingProvider)
	require.NotNil(t, res.ServerInfo)
	assert.Equal(t, "jsopt", res.ServerInfo.Name)
	assert.Equal(t, "1.2.3", *res.ServerInfo.Version)
}

func TestDiagnostics(t *testing.T) {
	var sent []published
	ctx := newContext(&sent)
	h := lsp.NewHandler("jsopt", "test")
	uri := "file:///work/a.js"

	open(t, h, ctx, uri, "var a = 1;\nb: while (a) { break b; }\n")
	require.Len(t, sent, 1)
	assert.Equal(t, uri, sent[0].uri)
	require.Len(t, sent[0].diagnostics, 1)

	d := sent[0].diagnostics[0]
	assert.Equal(t, uint32(1), d.Range.Start.Line)
	assert.Equal(t, uint32(0), d.Range.Start.Character)
	assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
	assert.Equal(t, errors.ErrorLabel, d.Code.Value)

	err := h.TextDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "var a = 1;\n"}},
	})
	require.NoError(t, err)
	require.Len(t, sent, 2)
	assert.Empty(t, sent[1].diagnostics)

	err = h.TextDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                3,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "var = ;"}},
	})
	require.NoError(t, err)
	require.Len(t, sent, 3)
	require.Len(t, sent[2].diagnostics, 1)
	assert.Equal(t, errors.ErrorSyntax, sent[2].diagnostics[0].Code.Value)

	err = h.TextDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	require.Len(t, sent, 4)
	assert.Empty(t, sent[3].diagnostics)
}

func TestFormatting(t *testing.T) {
	var sent []published
	ctx := newContext(&sent)
	h := lsp.NewHandler("jsopt", "test")
	uri := "file:///work/b.js"

	open(t, h, ctx, uri, "function f(a){if(a){g();}}")

	edits, err := h.TextDocumentFormatting(ctx, &protocol.DocumentFormattingParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, "function f(a) {\n  if (a) {\n    g();\n  }\n}\n", edits[0].NewText)
	assert.Equal(t, protocol.Position{Line: 0, Character: 26}, edits[0].Range.End)

	open(t, h, ctx, uri, edits[0].NewText)
	edits, err = h.TextDocumentFormatting(ctx, &protocol.DocumentFormattingParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	assert.Empty(t, edits)
}

func TestTextDocumentSemanticTokensFull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.js")
	source := "function add(a, b) {\n  var sum = a + b;\n  return log(sum);\n}\n"
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	uri := "file://" + filepath.ToSlash(path)

	var sent []published
	h := lsp.NewHandler("jsopt", "test")
	tokens, err := h.TextDocumentSemanticTokensFull(newContext(&sent), &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	require.NotNil(t, tokens)
	require.Len(t, sent, 1, "reading an unopened file publishes its diagnostics")

	decoded, err := decodeSemanticTokens(tokens.Data)
	require.NoError(t, err)
	require.Len(t, decoded, 7)

	assertToken(t, &decoded[0], 1, 14, 1, "parameter", []string{"declaration"})
	assertToken(t, &decoded[1], 1, 17, 1, "parameter", []string{"declaration"})
	assertToken(t, &decoded[2], 2, 7, 3, "variable", []string{"declaration"})
	assertToken(t, &decoded[3], 2, 13, 1, "variable", nil)
	assertToken(t, &decoded[4], 2, 17, 1, "variable", nil)
	assertToken(t, &decoded[5], 3, 10, 3, "function", nil)
	assertToken(t, &decoded[6], 3, 14, 3, "variable", nil)
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
			Line:      line + 1, // 1-based like editor line numbers
			Char:      char + 1,
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
