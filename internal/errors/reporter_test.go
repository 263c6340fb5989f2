package errors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsopt/internal/ast"
)

func TestErrorReporter(t *testing.T) {
	source := `function f() {
    outer: while (x) {
        break outer;
    }
}`

	reporter := NewErrorReporter("test.js", source)

	err := Unsupported(ErrorLabel, "labeled statements", ast.Position{Line: 2, Column: 5})
	formatted := reporter.FormatError(*err)

	// Should contain error level and code
	assert.Contains(t, formatted, "error["+ErrorLabel+"]")
	assert.Contains(t, formatted, "labeled statements are not supported")

	// Should contain location
	assert.Contains(t, formatted, "test.js:2:5")

	// Should contain the offending line and a suggestion
	assert.Contains(t, formatted, "outer: while (x) {")
	assert.Contains(t, formatted, "unlabeled break")
}

func TestCompilerErrorString(t *testing.T) {
	err := NewCompileError(ErrorSyntax, "unexpected token \"}\"", ast.Position{Filename: "a.js", Line: 4, Column: 2}).Build()
	assert.Equal(t, "a.js:4:2: error[E0150]: unexpected token \"}\"", err.Error())

	internal := Internal("missing definition for %s", "t1_2")
	assert.Equal(t, "error[E0900]: missing definition for t1_2", internal.Error())
}

func TestUnsupportedVerbAgreement(t *testing.T) {
	pos := ast.Position{Line: 1, Column: 1}

	assert.Equal(t, "generator functions are not supported", Unsupported(ErrorGenerator, "generator functions", pos).Message)
	assert.Equal(t, "destructuring is not supported", Unsupported(ErrorDestructuring, "destructuring", pos).Message)
}

func TestLoopClosureError(t *testing.T) {
	err := Unsupported(ErrorLoopClosure, "closures over let/const in a loop body", ast.Position{Line: 3, Column: 9})
	assert.Equal(t, ErrorLoopClosure, err.Code)
	require.Len(t, err.Notes, 1)
	require.Len(t, err.Suggestions, 1)
	assert.Contains(t, err.Suggestions[0].Message, "'var'")
}

func TestUseBeforeDeclaration(t *testing.T) {
	err := UseBeforeDeclaration("count", ast.Position{Line: 1, Column: 13})
	assert.Equal(t, ErrorUseBeforeDecl, err.Code)
	assert.Equal(t, 5, err.Length)
	assert.Contains(t, err.Message, "'count'")
}

func TestAsCompilerError(t *testing.T) {
	wrapped := fmt.Errorf("compile: %w", InvalidAssignTarget(ast.Position{Line: 1, Column: 1}))

	ce, ok := AsCompilerError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrorAssignTarget, ce.Code)

	_, ok = AsCompilerError(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestErrorMarkerCreation(t *testing.T) {
	// "variable" in `let variable = value;` is 8 chars at column 5
	underline := marker(5, 8, Error)

	// Should have correct spacing and marker length
	spaces := strings.Count(underline, " ")
	assert.Equal(t, 4, spaces) // column 5 means 4 spaces before
	carets := strings.Count(underline, "^")
	assert.Equal(t, 8, carets) // 8 character length
}

func TestErrorCategories(t *testing.T) {
	assert.Equal(t, "Unsupported", GetErrorCategory(ErrorSpread))
	assert.Equal(t, "Parser", GetErrorCategory(ErrorSyntax))
	assert.Equal(t, "Internal", GetErrorCategory(ErrorInternal))
	assert.Equal(t, "Input is nested too deeply", GetErrorDescription(ErrorNestingTooDeep))
	assert.Equal(t, "Unknown error code", GetErrorDescription("E9999"))
}

func TestErrorLevels(t *testing.T) {
	source := `test`
	reporter := NewErrorReporter("test.js", source)
	pos := ast.Position{Line: 1, Column: 1}

	// Test different error levels produce different colors
	errorErr := CompilerError{Level: Error, Message: "test error", Position: pos}
	warningErr := CompilerError{Level: Warning, Message: "test warning", Position: pos}

	errorFormatted := reporter.FormatError(errorErr)
	warningFormatted := reporter.FormatError(warningErr)

	assert.Contains(t, errorFormatted, "error:")
	assert.Contains(t, warningFormatted, "warning:")
}

func TestFormatErrorDescribesCode(t *testing.T) {
	source := "var a = 1;\nfunction t(){ try { f() } finally { g() } }"
	reporter := NewErrorReporter("a.js", source)

	formatted := reporter.FormatError(*Unsupported(ErrorStatement, "try statements", ast.Position{Line: 2, Column: 15}))

	assert.Contains(t, formatted, "error[E0110]: try statements are not supported")
	assert.Contains(t, formatted, "--> a.js:2:15")
	assert.Contains(t, formatted, "1 | var a = 1;")
	assert.Contains(t, formatted, "^ statement form is not supported")
	assert.Contains(t, formatted, "= help: only the supported script subset can be optimized")
}

func TestFormatErrorWithoutPosition(t *testing.T) {
	reporter := NewErrorReporter("a.js", "f();")

	formatted := reporter.FormatError(*Internal("missing definition for %s", "t1_2"))

	assert.Contains(t, formatted, "error[E0900]: missing definition for t1_2")
	assert.Contains(t, formatted, "--> a.js\n")
	assert.NotContains(t, formatted, "^")
	assert.Contains(t, formatted, "= note: this is a bug in the optimizer")
	assert.Contains(t, formatted, "= help: the input is valid")
}

func TestFormatErrorKeepsOwnHelp(t *testing.T) {
	reporter := NewErrorReporter("a.js", "var = 1;")
	err := NewCompileError(ErrorSyntax, "unexpected token \"=\"", ast.Position{Line: 1, Column: 5}).
		WithHelp("only the supported script subset can be optimized").
		Build()

	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "^ syntax error")
	assert.Equal(t, 1, strings.Count(formatted, "help:"))
}
