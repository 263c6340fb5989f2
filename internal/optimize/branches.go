package optimize

import (
	"jsopt/internal/ir"
)

// BranchElimination records conditions that simplified to a known truth
// value and marks the branch that can no longer run dead.
type BranchElimination struct{}

func (b *BranchElimination) Name() string {
	return "branchElimination"
}

func (b *BranchElimination) Description() string {
	return "Removes branches and loops whose condition is known"
}

func (b *BranchElimination) VisitStatement(p *ir.Program, s ir.Stmt) {
	switch x := s.(type) {
	case *ir.If:
		if x.Known == 0 {
			x.Known = known(p, x.Cond)
		}
		switch x.Known {
		case 1:
			if x.Else != ir.NoBlock {
				markDead(p, x.Else)
			}
		case -1:
			markDead(p, x.Then)
		}

	case *ir.Loop:
		if x.Kind != ir.While && x.Kind != ir.DoWhile || x.Eliminated || x.Once || x.Infinite {
			return
		}
		if x.Test != ir.NoBlock && p.Blocks[x.Test].Dead {
			return
		}
		switch known(p, x.Cond) {
		case 1:
			x.Infinite = true
		case -1:
			if x.Kind == ir.While {
				if pureChain(p, x.Test) {
					x.Eliminated = true
					x.Meta().Live = false
					markDead(p, x.Test)
					markDead(p, x.Body)
				}
				return
			}
			if !jumpsTo(p, x, x.Body) {
				x.Once = true
			}
		}
	}
}

// known returns 1 or -1 when e is certainly truthy or falsy.
func known(p *ir.Program, e ir.Expr) int8 {
	switch x := e.(type) {
	case ir.Literal:
		if x.Truthy() {
			return 1
		}
		return -1
	case ir.FuncRef:
		return 1
	case ir.TempRef:
		switch def := p.Def(x.ID).(type) {
		case *ir.FuncDecl:
			return 1
		case *ir.Assign:
			switch def.Value.(type) {
			case *ir.NewObject, *ir.NewArray, ir.FuncRef:
				return 1
			}
		}
	}
	return 0
}

// pureChain reports whether a block chain only computes temps without
// effects.
func pureChain(p *ir.Program, id ir.BlockID) bool {
	for id != ir.NoBlock {
		blk := p.Blocks[id]
		for _, s := range blk.Stmts {
			a, ok := s.(*ir.Assign)
			if !ok || !a.Dst.IsTemp() || len(a.Effects) > 0 {
				return false
			}
		}
		id = blk.Next
	}
	return true
}

// jumpsTo reports whether a break or continue inside the chain targets l.
func jumpsTo(p *ir.Program, l *ir.Loop, id ir.BlockID) bool {
	for id != ir.NoBlock {
		blk := p.Blocks[id]
		if blk.Dead {
			return false
		}
		for _, s := range blk.Stmts {
			switch x := s.(type) {
			case *ir.Break:
				if x.Loop == l {
					return true
				}
			case *ir.Continue:
				if x.Loop == l {
					return true
				}
			}
			for _, inner := range ir.Contained(s) {
				if jumpsTo(p, l, inner) {
					return true
				}
			}
		}
		id = blk.Next
	}
	return false
}
