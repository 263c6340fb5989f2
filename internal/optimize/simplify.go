package optimize

import (
	"jsopt/internal/ast"
	"jsopt/internal/ir"
)

// Simplify replaces operands with the trivial value their temp is known to
// hold and folds operations whose operands are all known. It never removes
// statements; a folded definition is left for liveness and culling.
type Simplify struct {
	// OptimizeForSize only substitutes literals no longer than a temp name.
	OptimizeForSize bool
}

// maxSizeLiteral is the longest literal substituted when optimizing for size.
const maxSizeLiteral = 5

func (s *Simplify) Name() string {
	return "simplify"
}

func (s *Simplify) Description() string {
	return "Folds constants and substitutes temps by their known values"
}

func (s *Simplify) VisitStatement(p *ir.Program, st ir.Stmt) {
	ir.ForEachOperand(st, func(slot *ir.Expr) {
		*slot = s.Resolve(p, *slot)
	})

	switch x := st.(type) {
	case *ir.Assign:
		x.Value = s.fold(p, x.Value)
		if x.Dst.IsTemp() {
			x.Effects = ir.ExprEffects(x.Value)
		}
	case *ir.ExprStmt:
		x.X = s.fold(p, x.X)
	case *ir.PropSet:
		x.Effects = []ir.Effect{ir.MutationOf(x.Object)}
	}
}

// Resolve returns the best known trivial form of e: the literal, name or
// receiver a chain of copies ends in. Merge temps and temps holding
// anything else resolve to themselves.
func (s *Simplify) Resolve(p *ir.Program, e ir.Expr) ir.Expr {
	for i := 0; i < 64; i++ {
		def := defOf(p, e)
		if def == nil {
			return e
		}
		switch v := def.Value.(type) {
		case ir.TempRef:
			if p.IsPhi(v.ID) {
				return e
			}
			e = v
			continue
		case ir.Literal:
			if s.OptimizeForSize && len(v.Source()) > maxSizeLiteral {
				return e
			}
			return v
		case ir.Local:
			if v.Pinned {
				return e
			}
			return v
		case ir.This, ir.Arguments:
			return v
		case ir.Ident:
			if p.AssignedGlobals[v.Name] {
				return e
			}
			return v
		}
		return e
	}
	return e
}

// stable reports whether an operand recorded in an instance generation can
// still be referenced where the generation is read.
func stable(p *ir.Program, e ir.Expr) bool {
	switch x := e.(type) {
	case ir.Literal, ir.This, ir.Arguments:
		return true
	case ir.Local:
		return !x.Pinned
	case ir.Ident:
		return !p.AssignedGlobals[x.Name]
	case ir.TempRef:
		def := p.Def(x.ID)
		return def != nil && def.Meta().Live
	}
	return false
}

func (s *Simplify) fold(p *ir.Program, e ir.Expr) ir.Expr {
	switch x := e.(type) {
	case *ir.Unary:
		if lit, ok := x.X.(ir.Literal); ok {
			if v, ok := foldUnary(x.Op, lit); ok {
				return v
			}
			return e
		}
		return s.foldUnaryOperand(p, x)

	case *ir.Binary:
		l, lok := x.L.(ir.Literal)
		if !lok {
			return e
		}
		switch x.Op {
		case "&&", "||", "??":
			if v, ok := foldLogical(x.Op, l, x.R); ok {
				return v
			}
			return e
		}
		if r, ok := x.R.(ir.Literal); ok {
			if v, ok := foldBinary(x.Op, l, r); ok {
				return v
			}
		}

	case *ir.Member:
		return s.foldMember(p, x)
	}
	return e
}

// foldUnaryOperand folds operators whose result only depends on what kind
// of value a temp holds.
func (s *Simplify) foldUnaryOperand(p *ir.Program, x *ir.Unary) ir.Expr {
	kind := ""
	switch v := x.X.(type) {
	case ir.TempRef:
		switch def := p.Def(v.ID).(type) {
		case *ir.Assign:
			switch def.Value.(type) {
			case *ir.NewObject, *ir.NewArray:
				kind = "object"
			case ir.FuncRef:
				kind = "function"
			}
		case *ir.FuncDecl:
			kind = "function"
		}
	case ir.This, ir.Arguments, ir.Local:
		if x.Op == "void" {
			return ir.Undefined()
		}
	}
	if kind == "" {
		return x
	}
	switch x.Op {
	case "typeof":
		return ir.Str(kind)
	case "!":
		return ir.Bool(false)
	case "void":
		return ir.Undefined()
	}
	return x
}

func (s *Simplify) foldMember(p *ir.Program, m *ir.Member) ir.Expr {
	key, ok := ir.PropertyKey(m.Key)
	if !ok {
		return m
	}
	if lit, ok := m.Object.(ir.Literal); ok {
		if lit.Kind == ast.StringLit && key == "length" {
			return ir.Num(float64(stringLength(lit.Str)))
		}
		return m
	}

	r, ok := m.Object.(ir.TempRef)
	if !ok || m.Gen < 0 {
		return m
	}
	in := p.Instances[r.ID]
	if in == nil || m.Gen >= len(in.Gens) {
		return m
	}
	gen := in.Gens[m.Gen]

	var v ir.Expr
	if in.Array {
		if key == "length" {
			return ir.Num(float64(len(gen.Elems)))
		}
		idx, ok := ir.ArrayIndex(key)
		if !ok || idx >= len(gen.Elems) {
			return m
		}
		v = gen.Elems[idx]
	} else {
		if gen.Computed {
			return m
		}
		v = gen.Props[key]
	}
	if v == nil || !stable(p, v) {
		return m
	}
	return s.Resolve(p, v)
}
