package optimize

import (
	"jsopt/internal/ir"
)

// Liveness marks the statements the program's observable behavior depends
// on. Roots are control transfers, loops and effects on storage other
// code can see; everything a live statement reads is live in turn.
type Liveness struct {
	program   *ir.Program
	work      []ir.Stmt
	mutations map[ir.TempID][]ir.Stmt
}

func (l *Liveness) Name() string {
	return "liveness"
}

func (l *Liveness) Description() string {
	return "Marks statements whose effects or values are observable"
}

func (l *Liveness) VisitProgram(p *ir.Program) {
	l.program = p
	l.work = nil
	l.mutations = map[ir.TempID][]ir.Stmt{}

	var all []ir.Stmt
	for _, fn := range p.Functions {
		p.ForEachStmt(fn, func(s ir.Stmt) {
			m := s.Meta()
			m.Live = false
			m.Escapes = false
			all = append(all, s)
		})
	}

	for _, s := range all {
		for _, e := range s.Meta().Effects {
			if e.Kind == ir.Mutation && e.Target.IsTemp() && l.construction(e.Target.Temp) {
				l.mutations[e.Target.Temp] = append(l.mutations[e.Target.Temp], s)
			}
		}
	}

	for _, s := range all {
		if l.root(s) {
			l.mark(s)
		}
	}
	for len(l.work) > 0 {
		s := l.work[len(l.work)-1]
		l.work = l.work[:len(l.work)-1]
		l.propagate(s)
	}
}

// construction reports whether t holds a fresh object or array literal.
func (l *Liveness) construction(t ir.TempID) bool {
	switch l.program.DefValue(t).(type) {
	case *ir.NewObject, *ir.NewArray:
		return true
	}
	return false
}

func (l *Liveness) root(s ir.Stmt) bool {
	switch x := s.(type) {
	case *ir.Return, *ir.Throw, *ir.Break, *ir.Continue:
		return true
	case *ir.Loop:
		return !x.Eliminated
	}
	for _, e := range s.Meta().Effects {
		switch {
		case e.Kind == ir.Io:
			return true
		case !e.Target.IsTemp():
			return true
		case !l.construction(e.Target.Temp):
			return true
		}
	}
	return false
}

func (l *Liveness) mark(s ir.Stmt) {
	if s == nil || s.Meta().Live {
		return
	}
	s.Meta().Live = true
	l.work = append(l.work, s)
}

func (l *Liveness) markTemp(t ir.TempID) {
	l.mark(l.program.Def(t))
}

// propagate marks what a live statement depends on.
func (l *Liveness) propagate(s ir.Stmt) {
	p := l.program
	l.mark(s.Meta().Parent)

	switch x := s.(type) {
	case *ir.Loop:
		if x.Object != nil {
			l.operand(x.Object)
		}
		if x.Cond != nil && x.Test != ir.NoBlock && !p.Blocks[x.Test].Dead {
			l.operand(x.Cond)
		}
		if x.Each.IsPhi() {
			l.markTemp(x.Each.Temp)
		}
		return
	case *ir.Assign:
		if x.Dst.IsPhi() {
			l.markTemp(x.Dst.Temp)
		}
		if merge, ok := x.Value.(*ir.Phi); ok {
			for _, cp := range merge.Copies {
				if !p.Blocks[cp.Block].Dead {
					l.mark(cp)
				}
			}
		}
		if call, ok := x.Value.(*ir.Call); ok {
			l.escape(call.Args)
		}
	case *ir.ExprStmt:
		if call, ok := x.X.(*ir.Call); ok {
			l.escape(call.Args)
		}
	}

	if t, ok := ir.DefinedTemp(s); ok {
		for _, m := range l.mutations[t] {
			l.mark(m)
		}
	}
	ir.ForEachOperand(s, func(slot *ir.Expr) {
		l.operand(*slot)
	})
}

func (l *Liveness) operand(e ir.Expr) {
	if r, ok := e.(ir.TempRef); ok {
		l.markTemp(r.ID)
	}
}

// escape flags call arguments as reachable by unknown code.
func (l *Liveness) escape(args []ir.Expr) {
	for _, a := range args {
		if r, ok := a.(ir.TempRef); ok {
			if def := l.program.Def(r.ID); def != nil {
				def.Meta().Escapes = true
			}
		}
	}
}
