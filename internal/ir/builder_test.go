package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsopt/internal/errors"
	"jsopt/internal/parser"
)

func build(t *testing.T, source string) *Program {
	t.Helper()
	tree, err := parser.ParseSource("test.js", source)
	require.NoError(t, err)
	program, err := BuildProgram(tree)
	require.NoError(t, err)
	return program
}

func findFunction(t *testing.T, p *Program, name string) *Function {
	t.Helper()
	for _, fn := range p.Functions {
		if fn.Name == name {
			return fn
		}
	}
	require.Failf(t, "function not found", "no function named %q", name)
	return nil
}

func collect[T Stmt](p *Program, fn *Function) []T {
	var out []T
	p.ForEachStmt(fn, func(s Stmt) {
		if x, ok := s.(T); ok {
			out = append(out, x)
		}
	})
	return out
}

func TestBuildGlobals(t *testing.T) {
	p := build(t, `var b; var a = 1; function c(){} d = 2;`)

	assert.ElementsMatch(t, []string{"a", "b"}, p.Globals)
	assert.True(t, p.AssignedGlobals["a"])
	assert.True(t, p.AssignedGlobals["d"])
	assert.False(t, p.AssignedGlobals["b"])

	decls := collect[*FuncDecl](p, p.Functions[TopFunc])
	require.Len(t, decls, 1)
	assert.Equal(t, "c", decls[0].Name)
	assert.True(t, decls[0].Dst.IsNamed())
}

func TestBuildReservesSourceNames(t *testing.T) {
	p := build(t, `var $0 = 1;`)
	assert.True(t, p.Reserved["$0"])
	assert.Equal(t, "$1", p.NextRegister())

	p.ResetRegisters()
	assert.Equal(t, "$1", p.NextRegister())
	assert.Equal(t, "$2", p.NextRegister())
}

func TestBuildPinsCapturedLocals(t *testing.T) {
	p := build(t, `function f(){ var n = 0; return function(){ return n; }; }`)

	f := findFunction(t, p, "f")
	assert.Equal(t, []string{"n"}, f.Pinned)

	writes := collect[*Assign](p, f)
	var named bool
	for _, a := range writes {
		if a.Dst.IsNamed() && a.Dst.Name == "n" {
			named = true
		}
	}
	assert.True(t, named, "pinned locals are written by name")

	var inner *Function
	for _, fn := range p.Functions {
		if fn.Parent == f.ID {
			inner = fn
		}
	}
	require.NotNil(t, inner)
	returns := collect[*Return](p, inner)
	require.Len(t, returns, 1)
	assert.Equal(t, Expr(Local{Name: "n", Pinned: true}), returns[0].Value)
}

func TestBuildRenamesBlockFunctions(t *testing.T) {
	p := build(t, `function f(){ if (x) { function g(){} g(); } }`)

	var names []string
	for _, fn := range p.Functions {
		for _, d := range collect[*FuncDecl](p, fn) {
			names = append(names, d.Name)
		}
	}
	assert.Contains(t, names, "g$1")
}

func TestBuildIfMergesValues(t *testing.T) {
	p := build(t, `function f(a){ var x = 0; if (a) { x = 1; } return x; }`)
	f := findFunction(t, p, "f")

	returns := collect[*Return](p, f)
	require.Len(t, returns, 1)
	ref, ok := returns[0].Value.(TempRef)
	require.True(t, ok)
	require.True(t, p.IsPhi(ref.ID))

	merge := p.DefValue(ref.ID).(*Phi)
	assert.Len(t, merge.Copies, 2)
	for _, cp := range merge.Copies {
		assert.True(t, cp.Dst.IsPhi())
		assert.Equal(t, ref.ID, cp.Dst.Temp)
	}

	branches := collect[*If](p, f)
	require.Len(t, branches, 1)
	assert.Equal(t, NoBlock, branches[0].Else)
}

func TestBuildTernaryMerges(t *testing.T) {
	p := build(t, `function f(a){ return a ? 1 : 2; }`)
	f := findFunction(t, p, "f")

	returns := collect[*Return](p, f)
	require.Len(t, returns, 1)
	ref, ok := returns[0].Value.(TempRef)
	require.True(t, ok)
	assert.True(t, p.IsPhi(ref.ID))
}

func TestBuildLoops(t *testing.T) {
	p := build(t, `function f(o){ var i = 0; while (i < 3) { i = i + 1; } var k; for (k in o) { g(k); } return i; }`)
	f := findFunction(t, p, "f")

	loops := collect[*Loop](p, f)
	require.Len(t, loops, 2)

	while := loops[0]
	assert.Equal(t, While, while.Kind)
	assert.NotEqual(t, NoBlock, while.Test)
	assert.NotEqual(t, NoBlock, while.Body)
	assert.IsType(t, TempRef{}, while.Cond)

	forIn := loops[1]
	assert.Equal(t, ForIn, forIn.Kind)
	assert.True(t, forIn.Each.IsPhi())
	assert.Equal(t, Expr(Local{Name: "o"}), forIn.Object)

	returns := collect[*Return](p, f)
	require.Len(t, returns, 1)
	ref, ok := returns[0].Value.(TempRef)
	require.True(t, ok)
	assert.True(t, p.IsPhi(ref.ID), "the counter is carried around the loop")
}

func TestBuildBreakAndContinue(t *testing.T) {
	p := build(t, `function f(){ while (g()) { if (h()) break; continue; } }`)
	f := findFunction(t, p, "f")

	loops := collect[*Loop](p, f)
	require.Len(t, loops, 1)
	breaks := collect[*Break](p, f)
	continues := collect[*Continue](p, f)
	require.Len(t, breaks, 1)
	require.Len(t, continues, 1)
	assert.Same(t, loops[0], breaks[0].Loop)
	assert.Same(t, loops[0], continues[0].Loop)
}

func TestBuildEffects(t *testing.T) {
	p := build(t, `function f(o){ var a = {}; a.x = 1; o.y = 2; g(); }`)
	f := findFunction(t, p, "f")

	sets := collect[*PropSet](p, f)
	require.Len(t, sets, 2)
	require.Len(t, sets[0].Effects, 1)
	assert.Equal(t, Mutation, sets[0].Effects[0].Kind)
	assert.True(t, sets[0].Effects[0].Target.IsTemp())
	assert.Equal(t, Mutation, sets[1].Effects[0].Kind)
	assert.True(t, sets[1].Effects[0].Target.IsNamed())

	var calls int
	for _, a := range collect[*Assign](p, f) {
		if _, ok := a.Value.(*Call); ok {
			calls++
			assert.True(t, HasIo(a.Effects))
		}
	}
	assert.Equal(t, 1, calls)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		code   string
	}{
		{"labeled statement", `a: while (x) { break a; }`, errors.ErrorLabel},
		{"return outside function", `return 1;`, errors.ErrorSyntax},
		{"use before declaration", `function f(){ g(x); let x = 1; }`, errors.ErrorUseBeforeDecl},
		{"closure over loop binding", `while (g()) { let v = 1; h(function(){ return v; }); }`, errors.ErrorLoopClosure},
		{"generator", `function* f(){}`, errors.ErrorGenerator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := parser.ParseSource("test.js", tt.source)
			require.NoError(t, err)
			_, err = BuildProgram(tree)
			require.Error(t, err)
			ce, ok := errors.AsCompilerError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, ce.Code)
		})
	}
}

func TestReferences(t *testing.T) {
	p := build(t, `function f(a){ var x = a.b; return x + x; }`)
	f := findFunction(t, p, "f")
	refs := References(p)

	for _, a := range collect[*Assign](p, f) {
		if _, ok := a.Value.(*Member); ok {
			assert.Equal(t, 2, refs.Count(a.Dst.Temp))
		}
		if _, ok := a.Value.(*Binary); ok {
			assert.Equal(t, 1, refs.Count(a.Dst.Temp))
		}
	}
}

func TestPrint(t *testing.T) {
	p := build(t, `function f(a){ return a.b + 1; }`)
	text := Print(p)

	assert.True(t, strings.HasPrefix(text, "program\n"))
	assert.Contains(t, text, "function #1 f(a)")
	assert.Contains(t, text, "a[\"b\"]")
	assert.Contains(t, text, "return t")
	assert.Equal(t, text, PrintProgram(p))
}
