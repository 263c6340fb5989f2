package optimize

import (
	"jsopt/internal/ir"
)

// InstanceInlining folds property writes and pushes on a fresh object or
// array literal back into the literal. The construction moves down to the
// folded write, which is then dropped. Tracking is per block; any other
// use of the instance ends it.
type InstanceInlining struct {
	refs ir.ReferenceMap
}

// tracked is an instance whose construction can still absorb writes.
type tracked struct {
	def *ir.Assign
}

func (in *InstanceInlining) Name() string {
	return "instanceInlining"
}

func (in *InstanceInlining) Description() string {
	return "Folds writes to fresh object and array literals into the literal"
}

func (in *InstanceInlining) VisitProgram(p *ir.Program) {
	in.refs = ir.References(p)
}

func (in *InstanceInlining) VisitBlock(p *ir.Program, blk *ir.Block) {
	live := map[ir.TempID]*tracked{}

	for i := 0; i < len(blk.Stmts); i++ {
		s := blk.Stmts[i]
		if !s.Meta().Live {
			continue
		}

		if t, inst := in.fold(p, live, s); inst != nil {
			s.Meta().Live = false
			s.Meta().Effects = nil
			blk.Stmts = moveAfter(blk.Stmts, inst.def, s)
			log.Debugf("folded write into %s", t)
			i--
			continue
		}

		for _, t := range ir.StmtTempRefs(s) {
			delete(live, t)
		}
		if a, ok := s.(*ir.Assign); ok && a.Dst.IsTemp() && len(a.Effects) == 0 {
			switch a.Value.(type) {
			case *ir.NewObject, *ir.NewArray:
				live[a.Dst.Temp] = &tracked{def: a}
			}
		}
		if clobbers(s) {
			for t, inst := range live {
				if readsVolatile(p, inst.def.Value) {
					delete(live, t)
				}
			}
		}
	}
}

// fold merges s into a tracked construction when s is a literal-key write
// or an unused push on it.
func (in *InstanceInlining) fold(p *ir.Program, live map[ir.TempID]*tracked, s ir.Stmt) (ir.TempID, *tracked) {
	var object ir.Expr
	switch x := s.(type) {
	case *ir.PropSet:
		object = x.Object
	case *ir.Assign:
		call, ok := x.Value.(*ir.Call)
		if !ok || call.Object == nil || !x.Dst.IsTemp() || in.refs.Count(x.Dst.Temp) > 0 {
			return ir.TempID{}, nil
		}
		object = call.Object
	default:
		return ir.TempID{}, nil
	}
	r, ok := object.(ir.TempRef)
	if !ok {
		return ir.TempID{}, nil
	}
	inst := live[r.ID]
	if inst == nil {
		return ir.TempID{}, nil
	}

	switch x := s.(type) {
	case *ir.PropSet:
		if x.Value == object || !foldSet(inst.def.Value, x.Key, x.Value) {
			return ir.TempID{}, nil
		}
	case *ir.Assign:
		call := x.Value.(*ir.Call)
		arr, ok := inst.def.Value.(*ir.NewArray)
		if !ok || call.Key != ir.Expr(ir.Str("push")) {
			return ir.TempID{}, nil
		}
		for _, a := range call.Args {
			if a == object {
				return ir.TempID{}, nil
			}
		}
		arr.Elems = append(arr.Elems, call.Args...)
		p.DropDef(x.Dst.Temp)
	}
	return r.ID, inst
}

// foldSet applies object[key] = value to a literal.
func foldSet(construction ir.Expr, key, value ir.Expr) bool {
	name, ok := ir.PropertyKey(key)
	if !ok || name == "__proto__" {
		return false
	}
	switch c := construction.(type) {
	case *ir.NewObject:
		for _, prop := range c.Props {
			if prop.KeyExpr != nil || prop.Key == "__proto__" {
				return false
			}
		}
		for _, prop := range c.Props {
			if prop.Key == name {
				prop.Value = value
				return true
			}
		}
		c.Props = append(c.Props, &ir.Prop{Key: name, Value: value})
		return true
	case *ir.NewArray:
		idx, ok := ir.ArrayIndex(name)
		switch {
		case !ok || idx > len(c.Elems):
			return false
		case idx == len(c.Elems):
			c.Elems = append(c.Elems, value)
		default:
			c.Elems[idx] = value
		}
		return true
	}
	return false
}

// readsVolatile reports whether a construction captures a value that a
// later write could change.
func readsVolatile(p *ir.Program, construction ir.Expr) bool {
	found := false
	ir.ForEachExprOperand(&construction, func(slot *ir.Expr) {
		if volatile(p, *slot) {
			found = true
		}
	})
	return found
}

// moveAfter moves def to just after anchor.
func moveAfter(list []ir.Stmt, def *ir.Assign, anchor ir.Stmt) []ir.Stmt {
	out := make([]ir.Stmt, 0, len(list))
	for _, s := range list {
		if s == ir.Stmt(def) {
			continue
		}
		out = append(out, s)
		if s == anchor {
			out = append(out, def)
		}
	}
	return out
}
