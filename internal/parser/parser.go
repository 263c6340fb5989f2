package parser

import (
	"fmt"
	"os"
	"sync"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"jsopt/internal/ast"
	"jsopt/internal/errors"
)

var (
	buildOnce   sync.Once
	scriptParse *participle.Parser[Program]
	buildErr    error
)

func grammarParser() (*participle.Parser[Program], error) {
	buildOnce.Do(func() {
		scriptParse, buildErr = participle.Build[Program](
			participle.Lexer(ScriptLexer),
			participle.Elide("Whitespace", "Comment"),
			participle.UseLookahead(1024),
		)
	})
	return scriptParse, buildErr
}

// ParseFile reads and parses a script from disk.
func ParseFile(path string) (*ast.Program, string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}
	program, err := ParseSource(path, string(source))
	return program, string(source), err
}

// ParseSource parses script text. Syntax errors come back as
// *errors.CompilerError with the offending position.
func ParseSource(filename, source string) (*ast.Program, error) {
	p, err := grammarParser()
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}

	tokens, err := scan(filename, source)
	if err != nil {
		return nil, syntaxError(filename, err)
	}
	peeker, err := lexer.Upgrade(&tokenStream{tokens: tokens})
	if err != nil {
		return nil, syntaxError(filename, err)
	}
	tree, err := p.ParseFromLexer(peeker)
	if err != nil {
		return nil, syntaxError(filename, err)
	}

	c := &converter{tokens: tokens, index: tokenIndex(tokens)}
	return c.program(tree)
}

func syntaxError(filename string, err error) error {
	if _, ok := errors.AsCompilerError(err); ok {
		return err
	}
	pe, ok := err.(participle.Error)
	if !ok {
		return fmt.Errorf("unexpected parser failure: %w", err)
	}
	ce := errors.NewCompileError(errors.ErrorSyntax, pe.Message(), position(pe.Position())).
		WithHelp("only the supported script subset can be optimized").
		Build()
	if ce.Position.Filename == "" {
		ce.Position.Filename = filename
	}
	return &ce
}

func position(p lexer.Position) ast.Position {
	return ast.Position{
		Filename: p.Filename,
		Offset:   p.Offset,
		Line:     p.Line,
		Column:   p.Column,
	}
}
