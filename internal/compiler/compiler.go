package compiler

import (
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	"github.com/xyproto/env/v2"

	"jsopt/internal/ast"
	"jsopt/internal/emit"
	"jsopt/internal/ir"
	"jsopt/internal/optimize"
	"jsopt/internal/parser"
)

var log = commonlog.GetLogger("jsopt.compiler")

// Options select what Compile produces.
type Options struct {
	// OptimizeForSize avoids rewrites that make the output longer.
	OptimizeForSize bool
	// OutputIR returns the IR as lowered, before any pass runs, instead
	// of source.
	OutputIR bool
	// Compact prints the output without optional whitespace.
	Compact bool
}

// OptionsFromEnv returns options set by JSOPT_SIZE, JSOPT_IR and
// JSOPT_COMPACT.
func OptionsFromEnv() Options {
	return Options{
		OptimizeForSize: env.Bool("JSOPT_SIZE"),
		OutputIR:        env.Bool("JSOPT_IR"),
		Compact:         env.Bool("JSOPT_COMPACT"),
	}
}

// Source is script text with the name used in diagnostics.
type Source struct {
	Name string
	Text string
}

// Compile optimizes input, which is an *ast.Program, a Source or the path
// of a script file. Errors in the input come back as *errors.CompilerError.
func Compile(input any, opts Options) (string, error) {
	switch in := input.(type) {
	case *ast.Program:
		return compileProgram(in, opts)
	case Source:
		return CompileSource(in.Name, in.Text, opts)
	case string:
		return CompileFile(in, opts)
	}
	return "", fmt.Errorf("unsupported compiler input %T", input)
}

// CompileSource parses and optimizes script text.
func CompileSource(name, text string, opts Options) (string, error) {
	log.Debugf("parsing %s", name)
	program, err := parser.ParseSource(name, text)
	if err != nil {
		return "", err
	}
	return compileProgram(program, opts)
}

// CompileFile reads, parses and optimizes a script file.
func CompileFile(path string, opts Options) (string, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return CompileSource(path, string(text), opts)
}

func compileProgram(program *ast.Program, opts Options) (string, error) {
	p, err := ir.BuildProgram(program)
	if err != nil {
		return "", err
	}
	log.Debugf("lowered %d function(s) into %d block(s)", len(p.Functions), len(p.Blocks))

	if opts.OutputIR {
		return ir.Print(p), nil
	}

	rounds := optimize.Run(p, optimize.Options{OptimizeForSize: opts.OptimizeForSize})
	log.Infof("optimized in %d round(s)", rounds)

	out, err := emit.Program(p)
	if err != nil {
		return "", err
	}
	return ast.Print(out, ast.PrintOptions{Compact: opts.Compact}), nil
}
