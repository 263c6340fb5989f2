package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsopt/internal/ir"
)

// definitions lists the statements defining each temp in reachable blocks
// of every function.
func definitions(p *ir.Program) map[ir.TempID][]ir.Stmt {
	defs := map[ir.TempID][]ir.Stmt{}
	for _, fn := range p.Functions {
		p.ForEachStmt(fn, func(s ir.Stmt) {
			var dst ir.Lvalue
			switch x := s.(type) {
			case *ir.Assign:
				dst = x.Dst
			case *ir.FuncDecl:
				dst = x.Dst
			default:
				return
			}
			if dst.IsTemp() {
				defs[dst.Temp] = append(defs[dst.Temp], s)
			}
		})
	}
	return defs
}

// reachable reports whether a path of successor edges leads from one
// block to the other.
func reachable(p *ir.Program, from, to ir.BlockID) bool {
	seen := map[ir.BlockID]bool{from: true}
	queue := []ir.BlockID{from}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == to {
			return true
		}
		for _, e := range p.Blocks[id].Succs {
			if !seen[e.To] {
				seen[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}
	return false
}

// encloses reports whether function inner is outer or nested in it.
func encloses(p *ir.Program, outer, inner ir.FuncID) bool {
	for id := inner; id != ir.NoFunc; id = p.Functions[id].Parent {
		if id == outer {
			return true
		}
	}
	return false
}

func optimized(t *testing.T, source string) *ir.Program {
	t.Helper()
	p := build(t, source)
	Run(p, Options{})
	Apply(&ControlFlowGraph{}, p)
	return p
}

func TestTempsHaveOneDefinition(t *testing.T) {
	for _, source := range corpus {
		t.Run(source, func(t *testing.T) {
			lowered := build(t, source)
			for temp, defs := range definitions(lowered) {
				assert.Len(t, defs, 1, "%s after lowering", temp)
			}

			p := optimized(t, source)
			defs := definitions(p)
			for temp, list := range defs {
				assert.Len(t, list, 1, "%s after optimizing", temp)
			}
			for temp := range ir.References(p) {
				assert.Contains(t, defs, temp, "%s is read but never defined", temp)
			}
		})
	}
}

func TestTempUsesAreReachableFromDefinitions(t *testing.T) {
	for _, source := range corpus {
		t.Run(source, func(t *testing.T) {
			p := optimized(t, source)
			defs := definitions(p)

			for temp, uses := range ir.References(p) {
				require.Len(t, defs[temp], 1, "%s", temp)
				from := defs[temp][0].Meta().Block
				for _, use := range uses {
					defFunc, useFunc := p.Blocks[from].Func, p.Blocks[use.Block].Func
					if defFunc != useFunc {
						assert.True(t, encloses(p, defFunc, useFunc), "%s escapes its function", temp)
						continue
					}
					assert.True(t, reachable(p, from, use.Block),
						"%s defined in block %d is read in block %d", temp, from, use.Block)
				}
			}
		})
	}
}

func TestLiveStatementsReadLiveDefinitions(t *testing.T) {
	for _, source := range corpus {
		t.Run(source, func(t *testing.T) {
			p := optimized(t, source)
			defs := definitions(p)

			for temp := range ir.References(p) {
				require.Len(t, defs[temp], 1, "%s", temp)
				assert.True(t, defs[temp][0].Meta().Live, "%s is read by a live statement", temp)
			}
		})
	}
}
