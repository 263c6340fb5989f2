package ir

// Use is one occurrence of a temp as an operand.
type Use struct {
	Stmt  Stmt
	Block BlockID
}

// ReferenceMap lists every use of every temp.
type ReferenceMap map[TempID][]Use

// References collects the uses of all temps in live statements of
// reachable blocks. A loop condition is used at the end of the loop's test
// chain, where it is evaluated.
func References(p *Program) ReferenceMap {
	refs := ReferenceMap{}
	for _, fn := range p.Functions {
		p.ForEachStmt(fn, func(s Stmt) {
			if !s.Meta().Live {
				return
			}
			block := s.Meta().Block
			if l, ok := s.(*Loop); ok {
				if r, ok := l.Object.(TempRef); ok {
					refs[r.ID] = append(refs[r.ID], Use{Stmt: s, Block: block})
				}
				if r, ok := l.Cond.(TempRef); ok {
					refs[r.ID] = append(refs[r.ID], Use{Stmt: s, Block: p.ChainEnd(l.Test)})
				}
				return
			}
			for _, t := range StmtTempRefs(s) {
				refs[t] = append(refs[t], Use{Stmt: s, Block: block})
			}
		})
	}
	return refs
}

// Count returns the number of uses of t.
func (r ReferenceMap) Count(t TempID) int {
	return len(r[t])
}
