package optimize

import (
	"jsopt/internal/ir"
)

// TemporaryMaterialization decides how every temp reaches its uses: in a
// named register, substituted at its single use, or not at all.
type TemporaryMaterialization struct {
	program *ir.Program
	refs    ir.ReferenceMap
}

// declarationCost approximates the text a register declaration adds.
const declarationCost = 8

func (m *TemporaryMaterialization) Name() string {
	return "temporaryMaterialization"
}

func (m *TemporaryMaterialization) Description() string {
	return "Chooses between registers and inline substitution for temps"
}

func (m *TemporaryMaterialization) VisitProgram(p *ir.Program) {
	m.program = p
	var defs []*ir.Assign
	for _, fn := range p.Functions {
		p.ForEachStmt(fn, func(s ir.Stmt) {
			if a, ok := s.(*ir.Assign); ok && a.Dst.IsTemp() && a.Live {
				a.Mat = ir.MatUnset
				defs = append(defs, a)
			}
		})
	}

	m.refs = ir.References(p)
	for _, a := range defs {
		m.coalesce(a)
	}
	for _, a := range defs {
		if a.Live {
			m.decide(a)
		}
	}
}

// coalesce replaces every use of a plain copy of another temp with the
// original. Copies of merge temps are snapshots and stay.
func (m *TemporaryMaterialization) coalesce(a *ir.Assign) {
	src, ok := a.Value.(ir.TempRef)
	if !ok || m.program.IsPhi(src.ID) {
		return
	}
	t := a.Dst.Temp
	for _, use := range m.refs[t] {
		ir.ForEachOperand(use.Stmt, func(slot *ir.Expr) {
			if r, ok := (*slot).(ir.TempRef); ok && r.ID == t {
				*slot = src
			}
		})
	}
	m.refs[src.ID] = append(m.refs[src.ID], m.refs[t]...)
	delete(m.refs, t)
	a.Live = false
}

func (m *TemporaryMaterialization) decide(a *ir.Assign) {
	t := a.Dst.Temp
	if _, ok := a.Value.(*ir.Phi); ok {
		a.Mat = ir.MatRegister
		return
	}

	uses := m.refs[t]
	switch {
	case len(uses) == 0:
		if len(a.Effects) == 0 {
			a.Live = false
			return
		}
		m.discard(a)

	case len(uses) == 1:
		switch {
		case m.positionIndependent(a):
			a.Mat = ir.MatInline
		case uses[0].Block == a.Block:
			a.Mat = ir.MatPending
		default:
			a.Mat = ir.MatRegister
		}

	default:
		a.Mat = ir.MatRegister
		if lit, ok := a.Value.(ir.Literal); ok {
			n := len(uses)
			size := len(lit.Source())
			if n*size <= size+declarationCost+2*n {
				a.Mat = ir.MatInline
			}
		}
	}
}

// discard turns an unused definition with effects into a bare expression
// statement.
func (m *TemporaryMaterialization) discard(a *ir.Assign) {
	p := m.program
	blk := p.Blocks[a.Block]
	e := &ir.ExprStmt{StmtMeta: a.StmtMeta, X: a.Value}
	for i, s := range blk.Stmts {
		if s == ir.Stmt(a) {
			blk.Stmts[i] = e
			break
		}
	}
	p.DropDef(a.Dst.Temp)
}

// positionIndependent reports whether a definition can be evaluated at
// any later point with the same result and no observable difference.
func (m *TemporaryMaterialization) positionIndependent(a *ir.Assign) bool {
	return len(a.Effects) == 0 && m.independent(a.Value)
}

func (m *TemporaryMaterialization) independent(e ir.Expr) bool {
	p := m.program
	switch x := e.(type) {
	case ir.Literal, ir.This, ir.Arguments:
		return true
	case ir.Local:
		return !x.Pinned
	case ir.Ident:
		return !p.AssignedGlobals[x.Name]
	case ir.TempRef:
		if p.IsPhi(x.ID) {
			return false
		}
		if def, ok := p.Def(x.ID).(*ir.Assign); ok {
			return def.Mat != ir.MatPending
		}
		return true
	case *ir.Unary:
		return m.independent(x.X)
	case *ir.Binary:
		return m.independent(x.L) && m.independent(x.R)
	}
	return false
}
