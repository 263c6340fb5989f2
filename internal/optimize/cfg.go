package optimize

import (
	"jsopt/internal/ir"
)

// ControlFlowGraph links blocks along the paths control can take and marks
// blocks no path reaches as dead. Back-edges of loops are weak.
type ControlFlowGraph struct {
	program *ir.Program
}

func (g *ControlFlowGraph) Name() string {
	return "controlFlowGraph"
}

func (g *ControlFlowGraph) Description() string {
	return "Builds block successor edges and drops unreachable blocks"
}

func (g *ControlFlowGraph) VisitFunction(p *ir.Program, f *ir.Function) {
	g.program = p
	for _, id := range f.Blocks {
		blk := p.Blocks[id]
		blk.Succs = nil
		blk.Preds = nil
	}
	if f.Entry() == ir.NoBlock {
		return
	}
	g.chain(f.Entry())

	reached := map[ir.BlockID]bool{f.Entry(): true}
	queue := []ir.BlockID{f.Entry()}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, e := range p.Blocks[id].Succs {
			if !reached[e.To] {
				reached[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}
	for _, id := range f.Blocks {
		if blk := p.Blocks[id]; !reached[id] && !blk.Dead {
			markDead(p, id)
		}
	}
}

func (g *ControlFlowGraph) edge(from, to ir.BlockID, weak bool) {
	if to == ir.NoBlock {
		return
	}
	src, dst := g.program.Blocks[from], g.program.Blocks[to]
	src.Succs = append(src.Succs, ir.Edge{To: to, Weak: weak})
	dst.Preds = append(dst.Preds, ir.Edge{To: from, Weak: weak})
}

// chain adds the edges of a block chain and returns its last block and
// whether control can fall off its end.
func (g *ControlFlowGraph) chain(id ir.BlockID) (ir.BlockID, bool) {
	for {
		blk := g.program.Blocks[id]
		falls := g.terminator(blk)
		if blk.Next == ir.NoBlock {
			return id, falls
		}
		id = blk.Next
	}
}

// arm walks a contained chain and links its end to target.
func (g *ControlFlowGraph) arm(id, target ir.BlockID) {
	if end, falls := g.chain(id); falls {
		g.edge(end, target, false)
	}
}

// terminator adds the edges leaving blk according to its last statement.
func (g *ControlFlowGraph) terminator(blk *ir.Block) bool {
	p := g.program
	next := blk.Next

	switch s := blk.Last().(type) {
	case *ir.If:
		if s.Known != -1 {
			g.edge(blk.ID, s.Then, false)
			g.arm(s.Then, next)
		}
		if s.Else != ir.NoBlock {
			if s.Known != 1 {
				g.edge(blk.ID, s.Else, false)
				g.arm(s.Else, next)
			}
		} else if s.Known != 1 {
			g.edge(blk.ID, next, false)
		}
		return false

	case *ir.Loop:
		g.loop(blk, s)
		return false

	case *ir.Return, *ir.Throw:
		return false

	case *ir.Break:
		g.edge(blk.ID, p.Blocks[s.Loop.Block].Next, false)
		return false

	case *ir.Continue:
		l := s.Loop
		switch l.Kind {
		case ir.While:
			g.edge(blk.ID, l.Test, true)
		case ir.DoWhile:
			g.edge(blk.ID, l.Test, false)
		default:
			g.edge(blk.ID, l.Body, true)
			g.edge(blk.ID, p.Blocks[l.Block].Next, false)
		}
		return false
	}

	if next != ir.NoBlock {
		g.edge(blk.ID, next, false)
		return false
	}
	return true
}

func (g *ControlFlowGraph) loop(blk *ir.Block, l *ir.Loop) {
	next := blk.Next
	if l.Eliminated {
		g.edge(blk.ID, next, false)
		return
	}

	switch l.Kind {
	case ir.While:
		g.edge(blk.ID, l.Test, false)
		if end, falls := g.chain(l.Test); falls {
			g.edge(end, l.Body, false)
			if !l.Infinite {
				g.edge(end, next, false)
			}
		}
		if end, falls := g.chain(l.Body); falls {
			g.edge(end, l.Test, true)
		}

	case ir.DoWhile:
		g.edge(blk.ID, l.Body, false)
		if end, falls := g.chain(l.Body); falls {
			g.edge(end, l.Test, false)
		}
		if end, falls := g.chain(l.Test); falls {
			if !l.Once {
				g.edge(end, l.Body, true)
			}
			if !l.Infinite {
				g.edge(end, next, false)
			}
		}

	default:
		g.edge(blk.ID, l.Body, false)
		g.edge(blk.ID, next, false)
		if end, falls := g.chain(l.Body); falls {
			g.edge(end, l.Body, true)
			g.edge(end, next, false)
		}
	}
}
