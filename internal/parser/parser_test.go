package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsopt/internal/ast"
	"jsopt/internal/errors"
)

func roundTrip(t *testing.T, source string) string {
	t.Helper()
	program, err := ParseSource("test.js", source)
	require.NoError(t, err)
	return ast.Print(program, ast.PrintOptions{Compact: true})
}

func TestParseStatements(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{"var list", `var a = 1, b;`, "var a=1,b;"},
		{"let and const", `let a = 1; const b = 2;`, "let a=1;const b=2;"},
		{"if else", `if (a) b(); else c();`, "if(a){b();}else{c();}"},
		{"while", `while (i < 3) { i++; }`, "while(i<3){i++;}"},
		{"do while", `do { x(); } while (y)`, "do{x();}while(y);"},
		{"for in", `for (var k in o) { f(k); }`, "for(var k in o){f(k);}"},
		{"for of", `for (v of list) f(v);`, "for(v of list){f(v);}"},
		{"function", `function add(a, b) { return a + b; }`, "function add(a,b){return a+b;}"},
		{"throw", `throw new Error("bad");`, `throw new Error("bad");`},
		{"empty statement", `;`, ";"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, roundTrip(t, tt.source))
		})
	}
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{`x = a + b * c;`, "x=a+b*c;"},
		{`x = (a + b) * c;`, "x=(a+b)*c;"},
		{`x = a - (b - c);`, "x=a-(b-c);"},
		{`x = a || b && c;`, "x=a||b&&c;"},
		{`x = a ? b : c ? d : e;`, "x=a?b:c?d:e;"},
		{`x = !a.b;`, "x=!a.b;"},
		{`x = typeof a === "string";`, `x=typeof a==="string";`},
		{`x = -(-a);`, "x=- -a;"},
		{`a.b.c(1)[2];`, "a.b.c(1)[2];"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.expected, roundTrip(t, tt.source))
		})
	}
}

func TestParseLiterals(t *testing.T) {
	program, err := ParseSource("test.js", `x = [1, "two", true, null, {a: 1, "b c": 2, [k]: 3}, 0x10, .5];`)
	require.NoError(t, err)
	require.Len(t, program.Body, 1)

	stmt, ok := program.Body[0].(*ast.ExprStmt)
	require.True(t, ok)
	assign, ok := stmt.X.(*ast.AssignExpr)
	require.True(t, ok)
	array, ok := assign.Value.(*ast.ArrayLit)
	require.True(t, ok)
	require.Len(t, array.Elems, 7)

	obj, ok := array.Elems[4].(*ast.ObjectLit)
	require.True(t, ok)
	require.Len(t, obj.Props, 3)
	assert.Equal(t, "a", obj.Props[0].Key)
	assert.Equal(t, "b c", obj.Props[1].Key)
	assert.True(t, obj.Props[2].Computed)

	hex, ok := array.Elems[5].(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, float64(16), hex.Num)

	half, ok := array.Elems[6].(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, 0.5, half.Num)
}

func TestParsePositions(t *testing.T) {
	program, err := ParseSource("test.js", "var a;\n  b();")
	require.NoError(t, err)
	require.Len(t, program.Body, 2)

	pos := program.Body[1].NodePos()
	assert.Equal(t, 2, pos.Line)
	assert.Equal(t, 3, pos.Column)
}

func TestParseSyntaxError(t *testing.T) {
	_, err := ParseSource("bad.js", "var = ;")
	require.Error(t, err)

	ce, ok := errors.AsCompilerError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorSyntax, ce.Code)
	assert.Equal(t, "bad.js", ce.Position.Filename)
	assert.Equal(t, 1, ce.Position.Line)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.js")
	require.NoError(t, os.WriteFile(path, []byte("f();\n"), 0o644))

	program, source, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "f();\n", source)
	assert.Len(t, program.Body, 1)

	_, _, err = ParseFile(filepath.Join(t.TempDir(), "missing.js"))
	assert.Error(t, err)
}

func TestParseLineBreakEndsStatement(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{"return", "function f() { var x = 5\n  return\n  x + 1\n}", "function f(){var x=5;return;x+1;}"},
		{"return with value", "function f() { return x +\n 1 }", "function f(){return x+1;}"},
		{"return across block comment", "function f() { return /*\n*/ 1 }", "function f(){return;1;}"},
		{"break", "while (a) { break\n  foo }", "while(a){break;foo;}"},
		{"continue", "while (a) { continue\n  foo }", "while(a){continue;foo;}"},
		{"postfix on next line", "a\n++b", "a;++b;"},
		{"postfix on same line", "a++\nb", "a++;b;"},
		{"after operator", "x = a +\n++b", "x=a+ ++b;"},
		{"statements on separate lines", "a = 1\nb = 2", "a=1;b=2;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, roundTrip(t, tt.source))
		})
	}
}

func TestParseThrowLineBreak(t *testing.T) {
	_, err := ParseSource("bad.js", "function f() { throw\n new Error() }")
	require.Error(t, err)

	ce, ok := errors.AsCompilerError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorSyntax, ce.Code)
	assert.Equal(t, 2, ce.Position.Line)
}

func TestParseRejectsUnsupportedStatements(t *testing.T) {
	tests := []struct {
		source string
		code   string
	}{
		{"function t() { try { throw 1 } catch (e) { return e } }", errors.ErrorStatement},
		{"switch (x) { case 1: f() }", errors.ErrorStatement},
		{"class A { m() {} }", errors.ErrorStatement},
		{"with (o) { f() }", errors.ErrorStatement},
		{"import x from 'y'", errors.ErrorStatement},
		{"debugger;", errors.ErrorStatement},
		{"function g() { yield 1 }", errors.ErrorGenerator},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			_, err := ParseSource("bad.js", tt.source)
			require.Error(t, err)
			ce, ok := errors.AsCompilerError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, ce.Code)
		})
	}
}

func TestParseReservedWords(t *testing.T) {
	for _, source := range []string{
		"var if = 1;",
		"x = new + 1;",
		"function in() {}",
		"f(else);",
		"for (var this in o) {}",
		"o = {for};",
	} {
		t.Run(source, func(t *testing.T) {
			_, err := ParseSource("bad.js", source)
			require.Error(t, err)
			ce, ok := errors.AsCompilerError(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrorSyntax, ce.Code)
		})
	}

	assert.Equal(t, "x=a.default+b.class;", roundTrip(t, "x = a.default + b.class;"))
	assert.Equal(t, "x={default:1,if:2};", roundTrip(t, "x = {default: 1, if: 2};"))
}

func TestParseStatementSeparator(t *testing.T) {
	for _, source := range []string{
		"a() b()",
		"x = 1 y = 2",
		"if (a) b() c()",
		"var a = 1 var b = 2",
	} {
		t.Run(source, func(t *testing.T) {
			_, err := ParseSource("bad.js", source)
			require.Error(t, err)
			ce, ok := errors.AsCompilerError(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrorSyntax, ce.Code)
		})
	}

	assert.Equal(t, "function f(){}g();", roundTrip(t, "function f() {} g()"))
	assert.Equal(t, "do{x();}while(y);z();", roundTrip(t, "do { x() } while (y) z()"))
}
