package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsopt/internal/ir"
	"jsopt/internal/parser"
)

func build(t *testing.T, source string) *ir.Program {
	t.Helper()
	tree, err := parser.ParseSource("test.js", source)
	require.NoError(t, err)
	program, err := ir.BuildProgram(tree)
	require.NoError(t, err)
	return program
}

func function(t *testing.T, p *ir.Program, name string) *ir.Function {
	t.Helper()
	for _, fn := range p.Functions {
		if fn.Name == name {
			return fn
		}
	}
	require.Failf(t, "function not found", "no function named %q", name)
	return nil
}

// statements collects the statements of fn in reachable blocks.
func statements(p *ir.Program, fn *ir.Function) []ir.Stmt {
	var out []ir.Stmt
	p.ForEachStmt(fn, func(s ir.Stmt) { out = append(out, s) })
	return out
}

func tempDefs(p *ir.Program, fn *ir.Function) []*ir.Assign {
	var out []*ir.Assign
	for _, s := range statements(p, fn) {
		if a, ok := s.(*ir.Assign); ok && a.Dst.IsTemp() {
			out = append(out, a)
		}
	}
	return out
}

func TestNewPipeline(t *testing.T) {
	pipeline := NewPipeline(Options{})

	var names []string
	for _, pass := range pipeline.Passes() {
		names = append(names, pass.Name())
		assert.NotEmpty(t, pass.Description())
	}
	assert.Equal(t, []string{
		"liveness",
		"simplify",
		"branchElimination",
		"controlFlowGraph",
		"commonSubexpressions",
		"instanceInlining",
		"temporaryMaterialization",
		"deadStatementCulling",
	}, names)
}

var fixpointSources = []string{
	`function f(){ var x = 1; return 2; }`,
	`function f(){ var a=[1,2,3]; if (a.length-3) { console.log("HI"); } }`,
	`function f(){ var x={a:1,b:2}; x.c=3; return x; }`,
	`function f(a){ var s = 0; for (var i = 0; i < a.length; i++) { s += a[i]; } return s; }`,
	`var n = 0; function inc(){ n = n + 1; return n; } inc();`,
}

// corpus adds branches, loop exits, closures and object tracking to the
// fixpoint sources.
var corpus = append(append([]string(nil), fixpointSources...),
	`function f(a, b){ var x = a; if (b) { x = a + 1; } else if (a) { x = g(); } return x * 2; }`,
	`function f(o){ var k, n = 0; for (k in o) { if (o[k]) { n++; continue; } break; } return n; }`,
	`function f(a){ var i = 0; do { i = i + a; } while (i < 10); while (i) { i--; } return i; }`,
	`function f(x){ var y = x * 2; return function(z){ return y + z + x; }; }`,
	`function f(a){ var o = {n: a}; o.n = o.n + 1; var p = o.n > 1 ? o : null; return p && p.n; }`,
)

func TestPipelineReachesFixpoint(t *testing.T) {
	for _, source := range fixpointSources {
		t.Run(source, func(t *testing.T) {
			p := build(t, source)
			rounds := Run(p, Options{})
			assert.Less(t, rounds, MaxRounds)

			before := ir.Print(p)
			NewPipeline(Options{}).RunOnce(p)
			assert.Equal(t, before, ir.Print(p))
		})
	}
}

func TestLiveness(t *testing.T) {
	p := build(t, `function f(){ var x = 1; var y = g(); return 2; }`)
	Apply(&Liveness{}, p)

	fn := function(t, p, "f")
	var sawCall, sawLiteral bool
	for _, a := range tempDefs(p, fn) {
		switch v := a.Value.(type) {
		case *ir.Call:
			sawCall = true
			assert.True(t, a.Live, "calls have effects")
		case ir.Literal:
			if v == ir.Num(1) {
				sawLiteral = true
				assert.False(t, a.Live, "unused value")
			}
		}
	}
	assert.True(t, sawCall)
	assert.True(t, sawLiteral)

	for _, s := range statements(p, fn) {
		if r, ok := s.(*ir.Return); ok {
			assert.True(t, r.Live)
		}
	}
}

func TestLivenessKeepsWritesToReturnedObject(t *testing.T) {
	p := build(t, `function f(k){ var o = {}; o[k] = 1; return o; }`)
	Apply(&Liveness{}, p)

	var set *ir.PropSet
	for _, s := range statements(p, function(t, p, "f")) {
		if x, ok := s.(*ir.PropSet); ok {
			set = x
		}
	}
	require.NotNil(t, set)
	assert.True(t, set.Live)
}

func TestSimplifyFoldsConstants(t *testing.T) {
	p := build(t, `function f(){ return 1 + 2 * 3; }`)
	Run(p, Options{})

	var ret *ir.Return
	for _, s := range statements(p, function(t, p, "f")) {
		if r, ok := s.(*ir.Return); ok {
			ret = r
		}
	}
	require.NotNil(t, ret)
	assert.Equal(t, ir.Expr(ir.Num(7)), ret.Value)
}

func TestSimplifyForSizeKeepsLongLiterals(t *testing.T) {
	s := &Simplify{OptimizeForSize: true}
	p := build(t, `function f(){ var x = "a long string"; return x; }`)
	Apply(&Liveness{}, p)
	Apply(s, p)

	for _, st := range statements(p, function(t, p, "f")) {
		if r, ok := st.(*ir.Return); ok {
			_, isRef := r.Value.(ir.TempRef)
			assert.True(t, isRef, "long literal is not copied into its use")
		}
	}
}

func TestBranchEliminationKnownCondition(t *testing.T) {
	p := build(t, `function f(){ if (0) { g(); } else { h(); } }`)
	Apply(&Liveness{}, p)
	Apply(&Simplify{}, p)
	Apply(&BranchElimination{}, p)

	var branch *ir.If
	for _, s := range statements(p, function(t, p, "f")) {
		if x, ok := s.(*ir.If); ok {
			branch = x
		}
	}
	require.NotNil(t, branch)
	assert.Equal(t, int8(-1), branch.Known)
	assert.True(t, p.Blocks[branch.Then].Dead)
	assert.False(t, p.Blocks[branch.Else].Dead)
}

func TestBranchEliminationLoops(t *testing.T) {
	p := build(t, `function f(){ while (false) { g(); } do { h(); } while (0); for (;;) { g(); } }`)
	Apply(&Liveness{}, p)
	Apply(&BranchElimination{}, p)

	var loops []*ir.Loop
	for _, s := range statements(p, function(t, p, "f")) {
		if l, ok := s.(*ir.Loop); ok {
			loops = append(loops, l)
		}
	}
	require.Len(t, loops, 3)
	assert.True(t, loops[0].Eliminated)
	assert.True(t, loops[1].Once)
	assert.True(t, loops[2].Infinite)
}

func TestControlFlowGraph(t *testing.T) {
	p := build(t, `function f(a){ if (a) { return 1; } else { return 2; } }`)
	Apply(&ControlFlowGraph{}, p)

	fn := function(t, p, "f")
	entry := p.Blocks[fn.Entry()]
	require.IsType(t, &ir.If{}, entry.Last())
	branch := entry.Last().(*ir.If)

	assert.ElementsMatch(t, []ir.Edge{{To: branch.Then}, {To: branch.Else}}, entry.Succs)
	assert.Equal(t, []ir.Edge{{To: entry.ID}}, p.Blocks[branch.Then].Preds)
	assert.Empty(t, p.Blocks[branch.Then].Succs)

	require.NotEqual(t, ir.NoBlock, entry.Next)
	assert.True(t, p.Blocks[entry.Next].Dead, "no path reaches the code after both returns")
}

func TestControlFlowGraphLoopBackEdge(t *testing.T) {
	p := build(t, `function f(){ while (g()) { h(); } }`)
	Apply(&ControlFlowGraph{}, p)

	var loop *ir.Loop
	for _, s := range statements(p, function(t, p, "f")) {
		if l, ok := s.(*ir.Loop); ok {
			loop = l
		}
	}
	require.NotNil(t, loop)
	test := p.Blocks[loop.Test]
	assert.Contains(t, test.Preds, ir.Edge{To: p.ChainEnd(loop.Body), Weak: true})
	assert.Contains(t, test.Succs, ir.Edge{To: loop.Body})
}

func TestCommonSubexpressions(t *testing.T) {
	p := build(t, `var a = 2+2; var b = 2+2;`)
	Apply(&CommonSubexpressions{}, p)

	defs := tempDefs(p, p.Functions[ir.TopFunc])
	require.Len(t, defs, 2)
	assert.IsType(t, &ir.Binary{}, defs[0].Value)
	assert.Equal(t, ir.Expr(ir.Ref(defs[0].Dst.Temp)), defs[1].Value)
}

func TestCommonSubexpressionsStayInTheirBranch(t *testing.T) {
	p := build(t, `function f(a, b){ if (a) { g(a * b); } else { g(b * a); } return a * b; }`)
	Apply(&CommonSubexpressions{}, p)

	products := 0
	for _, a := range tempDefs(p, function(t, p, "f")) {
		if _, ok := a.Value.(*ir.Binary); ok {
			products++
		}
	}
	assert.Equal(t, 3, products)
}

func TestCommonSubexpressionsForgetVolatileReads(t *testing.T) {
	p := build(t, `function f(o){ var x = o.p; o.p = 1; var y = o.p; return x + y; }`)
	Apply(&CommonSubexpressions{}, p)

	members := 0
	for _, a := range tempDefs(p, function(t, p, "f")) {
		if _, ok := a.Value.(*ir.Member); ok {
			members++
		}
	}
	assert.Equal(t, 2, members)
}

func TestInstanceInlining(t *testing.T) {
	p := build(t, `function f(){ var x={a:1}; x.b=2; x.a=3; var y=[]; y.push(4); y[1]=5; return [x, y]; }`)
	Run(p, Options{})

	fn := function(t, p, "f")
	var object *ir.NewObject
	var array *ir.NewArray
	for _, s := range statements(p, fn) {
		switch x := s.(type) {
		case *ir.PropSet:
			assert.Fail(t, "write was not folded", ir.Print(p))
		case *ir.Assign:
			switch v := x.Value.(type) {
			case *ir.NewObject:
				object = v
			case *ir.NewArray:
				if len(v.Elems) == 2 && array == nil {
					array = v
				}
			}
		}
	}

	require.NotNil(t, object)
	require.Len(t, object.Props, 2)
	assert.Equal(t, "a", object.Props[0].Key)
	assert.Equal(t, ir.Expr(ir.Num(3)), object.Props[0].Value)
	assert.Equal(t, "b", object.Props[1].Key)

	require.NotNil(t, array)
	assert.Equal(t, []ir.Expr{ir.Num(4), ir.Num(5)}, array.Elems)
}

func TestInstanceInliningStopsAtEscape(t *testing.T) {
	p := build(t, `function f(){ var x={}; g(x); x.a=1; return x; }`)
	Run(p, Options{})

	sets := 0
	for _, s := range statements(p, function(t, p, "f")) {
		if _, ok := s.(*ir.PropSet); ok {
			sets++
		}
	}
	assert.Equal(t, 1, sets)
}

func TestTemporaryMaterialization(t *testing.T) {
	p := build(t, `function f(a){ var x = a.b; return x + x; }`)
	Run(p, Options{})

	for _, def := range tempDefs(p, function(t, p, "f")) {
		switch def.Value.(type) {
		case *ir.Member:
			assert.Equal(t, ir.MatRegister, def.Mat, "used twice")
		case *ir.Binary:
			assert.Equal(t, ir.MatInline, def.Mat, "single use of registers")
		}
	}
}

func TestTemporaryMaterializationDiscardsUnusedCalls(t *testing.T) {
	p := build(t, `function f(){ var x = g(); }`)
	Run(p, Options{})

	stmts := statements(p, function(t, p, "f"))
	require.Len(t, stmts, 1)
	x, ok := stmts[0].(*ir.ExprStmt)
	require.True(t, ok)
	assert.IsType(t, &ir.Call{}, x.X)
}

func TestDeadStatementCulling(t *testing.T) {
	p := build(t, `function f(){ var x = 1; var y = 2; return 3; }`)
	Apply(&Liveness{}, p)
	Apply(&DeadStatementCulling{}, p)

	stmts := statements(p, function(t, p, "f"))
	require.Len(t, stmts, 1)
	assert.IsType(t, &ir.Return{}, stmts[0])
}
