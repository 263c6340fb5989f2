package lsp

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"jsopt/internal/ast"
	"jsopt/internal/ir"
	"jsopt/internal/parser"
)

var log = commonlog.GetLogger("jsopt.lsp")

// Handler implements the language server for scripts accepted by the
// optimizer. Every open document is parsed and lowered on change so that
// constructs the optimizer rejects show up as diagnostics in the editor.
type Handler struct {
	name    string
	version string

	mu      sync.RWMutex
	content map[string]string
	asts    map[string]*ast.Program
}

// NewHandler creates a Handler that reports itself as name and version.
func NewHandler(name, version string) *Handler {
	return &Handler{
		name:    name,
		version: version,
		content: make(map[string]string),
		asts:    make(map[string]*ast.Program),
	}
}

// Initialize responds to the client's initialize request and advertises the server's capabilities
func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("initialize")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			DocumentFormattingProvider: true,
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes:     SemanticTokenTypes,
					TokenModifiers: SemanticTokenModifiers,
				},
				Full: ptrBool(true),
			},
		},
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    h.name,
			Version: &h.version,
		},
	}, nil
}

func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Info("initialized")
	return nil
}

func (h *Handler) Shutdown(ctx *glsp.Context) error {
	log.Info("shutdown")
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (h *Handler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

// TextDocumentDidOpen caches the opened text and publishes its diagnostics.
func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	log.Debugf("opened %s", params.TextDocument.URI)
	return h.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

// TextDocumentDidChange replaces the cached text. Only full document sync
// is advertised, so the last whole-text change wins.
func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	log.Debugf("changed %s", params.TextDocument.URI)

	text, ok := "", false
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text, ok = c.Text, true
		case protocol.TextDocumentContentChangeEvent:
			if c.Range == nil {
				text, ok = c.Text, true
			}
		}
	}
	if !ok {
		return nil
	}
	return h.update(ctx, params.TextDocument.URI, text)
}

// TextDocumentDidClose drops the document and clears its diagnostics.
func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	log.Debugf("closed %s", params.TextDocument.URI)

	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}

	h.mu.Lock()
	delete(h.content, path)
	delete(h.asts, path)
	h.mu.Unlock()

	sendDiagnosticNotification(ctx, params.TextDocument.URI, []protocol.Diagnostic{})
	return nil
}

// TextDocumentFormatting reprints the whole document. Documents that do
// not parse are left alone.
func (h *Handler) TextDocumentFormatting(ctx *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	program, err := h.getOrUpdateAST(ctx, params.TextDocument.URI)
	if err != nil || program == nil {
		return nil, err
	}

	h.mu.RLock()
	text := h.content[path]
	h.mu.RUnlock()

	formatted := ast.Print(program, ast.PrintOptions{}) + "\n"
	if formatted == text {
		return []protocol.TextEdit{}, nil
	}

	return []protocol.TextEdit{{
		Range:   protocol.Range{Start: protocol.Position{}, End: endOf(text)},
		NewText: formatted,
	}}, nil
}

// TextDocumentSemanticTokensFull classifies the declarations and names of
// the whole document.
func (h *Handler) TextDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	program, err := h.getOrUpdateAST(ctx, params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	return &protocol.SemanticTokens{Data: encodeSemanticTokens(collectSemanticTokens(program))}, nil
}

// update parses and lowers text, caching the tree when it parses, and
// publishes the resulting diagnostics. An empty list clears earlier ones.
func (h *Handler) update(ctx *glsp.Context, uri protocol.DocumentUri, text string) error {
	path, err := uriToPath(uri)
	if err != nil {
		return err
	}

	diagnostics := []protocol.Diagnostic{}
	program, err := parser.ParseSource(path, text)
	if err == nil {
		_, err = ir.BuildProgram(program)
	} else {
		program = nil
	}
	if err != nil {
		diagnostics = append(diagnostics, ConvertError(err)...)
	}

	h.mu.Lock()
	h.content[path] = text
	if program != nil {
		h.asts[path] = program
	} else {
		delete(h.asts, path)
	}
	h.mu.Unlock()

	sendDiagnosticNotification(ctx, uri, diagnostics)
	return nil
}

// getOrUpdateAST returns the cached tree for uri, reading the file from
// disk when the client never opened it.
func (h *Handler) getOrUpdateAST(ctx *glsp.Context, uri protocol.DocumentUri) (*ast.Program, error) {
	path, err := uriToPath(uri)
	if err != nil {
		return nil, err
	}

	h.mu.RLock()
	program, parsed := h.asts[path]
	_, known := h.content[path]
	h.mu.RUnlock()
	if parsed || known {
		return program, nil
	}

	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if err := h.update(ctx, uri, string(text)); err != nil {
		return nil, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.asts[path], nil
}

// uriToPath converts a file URI to a platform-local path.
func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path

	// /C:/dir/file.js on Windows
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}

	return filepath.FromSlash(path), nil
}

// endOf is the position just past the last character of text.
func endOf(text string) protocol.Position {
	line := strings.Count(text, "\n")
	last := text[strings.LastIndex(text, "\n")+1:]
	return protocol.Position{Line: uint32(line), Character: utf16Len(last)}
}

func sendDiagnosticNotification(ctx *glsp.Context, uri protocol.DocumentUri, diagnostics []protocol.Diagnostic) {
	if ctx == nil || ctx.Notify == nil {
		return
	}
	log.Debugf("publishing %d diagnostic(s) for %s", len(diagnostics), uri)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
