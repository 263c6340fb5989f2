package emit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsopt/internal/ast"
	"jsopt/internal/ir"
	"jsopt/internal/optimize"
	"jsopt/internal/parser"
)

func compile(t *testing.T, source string) string {
	t.Helper()
	tree, err := parser.ParseSource("test.js", source)
	require.NoError(t, err)
	program, err := ir.BuildProgram(tree)
	require.NoError(t, err)
	optimize.Run(program, optimize.Options{})
	out, err := Program(program)
	require.NoError(t, err)
	return ast.Print(out, ast.PrintOptions{Compact: true})
}

func TestDeadBindingIsCulled(t *testing.T) {
	out := compile(t, `function f(){ var x = 1; return 2; }`)
	assert.Equal(t, "function f(){return 2;}", out)
}

func TestKnownBranchIsRemoved(t *testing.T) {
	out := compile(t, `function f(){ var a=[1,2,3]; if (a.length-3) { console.log("HI"); } }`)
	assert.Equal(t, "function f(){}", out)
}

func TestInstanceWritesFoldIntoLiteral(t *testing.T) {
	out := compile(t, `function f(){ var x={a:1,b:2}; x.c=3; return x; }`)
	assert.Equal(t, "function f(){return {a:1,b:2,c:3};}", out)
	assert.NotContains(t, out, "$")
}

func TestPendingDefinitionsAreSubstituted(t *testing.T) {
	out := compile(t, `function f(a){ return a.b + a.c; }`)
	assert.Equal(t, "function f(a){return a.b+a.c;}", out)
}

func TestArithmeticOverCallsIsSubstituted(t *testing.T) {
	out := compile(t, `function f(){ var x = g(), y = h(), z = k(); return x + y + z; }`)
	assert.Equal(t, "function f(){return g()+h()+k();}", out)
}

func TestSwappedCallsKeepTheirOrder(t *testing.T) {
	out := compile(t, `function f(){ var x = g(), y = h(); return y - x; }`)
	require.Contains(t, out, "g()")
	require.Contains(t, out, "h()")
	assert.Less(t, strings.Index(out, "g()"), strings.Index(out, "h()"))
	assert.NotContains(t, out, "h()-g()")
}

func TestReadBeforeWriteKeepsRegister(t *testing.T) {
	out := compile(t, `function f(a){ var x = a.b; a.b = 2; return x; }`)
	assert.Equal(t, "function f(a){var $0=a.b;a.b=2;return $0;}", out)
}

func TestIfElse(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{
			name:     "both arms",
			source:   `function f(a){ if (a) { g(); } else { h(); } }`,
			expected: "function f(a){if(a){g();}else{h();}}",
		},
		{
			name:     "empty then arm",
			source:   `function f(a){ if (a) {} else { h(); } }`,
			expected: "function f(a){if(!a){h();}}",
		},
		{
			name:     "both arms empty",
			source:   `function f(a){ if (a) {} }`,
			expected: "function f(a){}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, compile(t, tt.source))
		})
	}
}

func TestLoops(t *testing.T) {
	t.Run("infinite loop", func(t *testing.T) {
		out := compile(t, `function f(){ for(;;){ g(); } }`)
		assert.Equal(t, "function f(){for(;;){g();}}", out)
	})

	t.Run("do-while running once", func(t *testing.T) {
		out := compile(t, `function f(){ do { g(); } while (false); }`)
		assert.Equal(t, "function f(){g();}", out)
	})

	t.Run("while loop never entered", func(t *testing.T) {
		out := compile(t, `function f(){ while (false) { g(); } return 1; }`)
		assert.Equal(t, "function f(){return 1;}", out)
	})

	t.Run("counting loop", func(t *testing.T) {
		out := compile(t, `function f(){ var i = 0; while (i < 3) { i++; } return i; }`)
		assert.Contains(t, out, "while(")
		assert.Regexp(t, `return \$\d+;}$`, out)
	})
}

func TestDirectivesStayFirst(t *testing.T) {
	out := compile(t, `"use strict"; var a; g(a);`)
	assert.Equal(t, `"use strict";var a;g(a);`, out)
}

func TestSequenceConversion(t *testing.T) {
	q := &sequence{}
	q.stmt(declare("$0", ast.Name("x")))
	q.stmt(ast.Expression(ast.Name("y")))
	q.stmt(&ast.VarDecl{Kind: ast.Var, Decls: []*ast.Declarator{{Name: "$1"}}})
	q.stmt(&ast.IfStmt{Test: ast.Name("c"), Then: &ast.BlockStmt{}})

	require.Len(t, q.list, 3)
	assert.Equal(t, []string{"$0", "$1"}, q.names)
	assert.Equal(t, "$0=x", ast.Print(q.list[0], ast.PrintOptions{Compact: true}))
	assert.Equal(t, "c?void 0:void 0", ast.Print(q.list[2], ast.PrintOptions{Compact: true}))
}

func TestNegate(t *testing.T) {
	x := ast.Name("x")
	assert.Equal(t, x, negate(&ast.UnaryExpr{Op: "!", X: x}))
	assert.Equal(t, "!x", ast.Print(negate(x), ast.PrintOptions{}))
}
