package optimize

import (
	"jsopt/internal/ir"
)

// DeadStatementCulling removes every statement not marked live, keeping
// the order of the survivors.
type DeadStatementCulling struct{}

func (d *DeadStatementCulling) Name() string {
	return "deadStatementCulling"
}

func (d *DeadStatementCulling) Description() string {
	return "Removes statements that are not live"
}

// VisitProgram drops copies that no longer reach their merge temp.
func (d *DeadStatementCulling) VisitProgram(p *ir.Program) {
	for _, fn := range p.Functions {
		p.ForEachStmt(fn, func(s ir.Stmt) {
			a, ok := s.(*ir.Assign)
			if !ok {
				return
			}
			merge, ok := a.Value.(*ir.Phi)
			if !ok {
				return
			}
			kept := merge.Copies[:0]
			for _, cp := range merge.Copies {
				if cp.Live && !p.Blocks[cp.Block].Dead {
					kept = append(kept, cp)
				}
			}
			merge.Copies = kept
		})
	}
}

func (d *DeadStatementCulling) VisitBlock(p *ir.Program, blk *ir.Block) {
	kept := blk.Stmts[:0]
	for _, s := range blk.Stmts {
		if s.Meta().Live {
			kept = append(kept, s)
			continue
		}
		if t, ok := ir.DefinedTemp(s); ok && p.Def(t) == s {
			p.DropDef(t)
		}
		for _, inner := range ir.Contained(s) {
			markDead(p, inner)
		}
	}
	blk.Stmts = kept
}
