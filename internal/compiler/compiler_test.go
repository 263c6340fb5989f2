package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsopt/internal/errors"
	"jsopt/internal/parser"
)

func TestCompileSource(t *testing.T) {
	out, err := CompileSource("a.js", `function f(){ var x = 1; return 2; }`, Options{Compact: true})
	require.NoError(t, err)
	assert.Equal(t, "function f(){return 2;}", out)
}

func TestCompilePretty(t *testing.T) {
	out, err := CompileSource("a.js", `function f(a){ if (a) { g(); } }`, Options{})
	require.NoError(t, err)
	assert.Equal(t, "function f(a) {\n  if (a) {\n    g();\n  }\n}", out)
}

func TestCompileInputs(t *testing.T) {
	source := `var a = 2+2; var b = 2+2;`
	opts := Options{Compact: true}

	fromSource, err := Compile(Source{Name: "a.js", Text: source}, opts)
	require.NoError(t, err)

	tree, err := parser.ParseSource("a.js", source)
	require.NoError(t, err)
	fromTree, err := Compile(tree, opts)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "a.js")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	fromFile, err := Compile(path, opts)
	require.NoError(t, err)

	assert.Equal(t, "var a=4;var b=4;", fromSource)
	assert.Equal(t, fromSource, fromTree)
	assert.Equal(t, fromSource, fromFile)

	_, err = Compile(42, opts)
	assert.Error(t, err)
}

func TestCompileIR(t *testing.T) {
	out, err := CompileSource("a.js", `function f(a){ return a.b; }`, Options{OutputIR: true})
	require.NoError(t, err)
	assert.Contains(t, out, "program\n")
	assert.Contains(t, out, "function #1 f(a)")
	assert.Contains(t, out, "return")
}

func TestCompileIRSkipsPasses(t *testing.T) {
	out, err := CompileSource("a.js", `function f(){ var x = 1; return 2; }`, Options{OutputIR: true})
	require.NoError(t, err)
	assert.Regexp(t, `t\d+_\d+ = 1\n`, out)
	assert.Contains(t, out, "return 2")

	optimized, err := CompileSource("a.js", `function f(){ var x = 1; return 2; }`, Options{Compact: true})
	require.NoError(t, err)
	assert.NotContains(t, optimized, "1")
}

func TestCompileErrors(t *testing.T) {
	_, err := CompileSource("bad.js", `a: for(;;) {}`, Options{})
	require.Error(t, err)
	ce, ok := errors.AsCompilerError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorLabel, ce.Code)

	_, err = CompileSource("bad.js", `var = 1;`, Options{})
	require.Error(t, err)
	ce, ok = errors.AsCompilerError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorSyntax, ce.Code)

	_, err = CompileFile(filepath.Join(t.TempDir(), "missing.js"), Options{})
	require.Error(t, err)
	_, ok = errors.AsCompilerError(err)
	assert.False(t, ok)
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("JSOPT_SIZE", "true")
	t.Setenv("JSOPT_IR", "")
	t.Setenv("JSOPT_COMPACT", "1")

	opts := OptionsFromEnv()
	assert.True(t, opts.OptimizeForSize)
	assert.False(t, opts.OutputIR)
	assert.True(t, opts.Compact)
}

func TestCompileLineBreakAfterReturn(t *testing.T) {
	out, err := CompileSource("a.js", "function f(){ var x = 5\n return\n x + 1\n}", Options{Compact: true})
	require.NoError(t, err)
	assert.NotContains(t, out, "6")
	assert.NotContains(t, out, "x")
}

func TestCompileRejectsTry(t *testing.T) {
	_, err := CompileSource("a.js", "function t(){ try { throw 1 } catch(e) { return e } }", Options{})
	require.Error(t, err)
	ce, ok := errors.AsCompilerError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorStatement, ce.Code)
	assert.Equal(t, 1, ce.Position.Line)
	assert.Equal(t, 15, ce.Position.Column)
}
