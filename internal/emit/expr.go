package emit

import (
	"jsopt/internal/ast"
	"jsopt/internal/errors"
	"jsopt/internal/ir"
)

// consume prepares the pending definitions for a statement reading roots.
// Pending definitions are substituted when the statement reads a suffix of
// them and the substituted order keeps every read and effect where it was;
// anything else is declared in a register ahead of the statement. Pure
// arithmetic over substituted calls follows the calls into the statement.
func (e *Emitter) consume(out *[]ast.Stmt, roots ...ir.Expr) {
	st := e.fn
	if len(st.pending) == 0 {
		return
	}

	p := &plan{e: e, used: map[int]bool{}}
	now := len(st.pending)
	for i := range roots {
		ir.ForEachExprOperand(&roots[i], func(slot *ir.Expr) {
			p.visit(*slot, now)
		})
	}

	from := len(st.pending)
	if p.ordered() {
		for k := range p.used {
			from = min(from, k)
		}
		for k := from; k < len(st.pending); k++ {
			if !p.used[k] {
				from = len(st.pending)
				break
			}
		}
	}
	if from == len(st.pending) && len(p.used) > 0 {
		log.Debugf("flushing %d pending definition(s)", len(st.pending))
	}

	e.declarePending(out, st.pending[:from])
	for _, def := range st.pending[from:] {
		st.subst[def.Dst.Temp] = true
	}
}

// done clears the pending state after the consuming statement.
func (e *Emitter) done() {
	st := e.fn
	st.pending = nil
	clear(st.index)
	clear(st.subst)
}

// flush declares every pending definition in a register.
func (e *Emitter) flush(out *[]ast.Stmt) {
	e.declarePending(out, e.fn.pending)
	e.done()
}

func (e *Emitter) declarePending(out *[]ast.Stmt, defs []*ir.Assign) {
	for _, def := range defs {
		value := e.value(def.Value)
		*out = append(*out, declare(e.register(def.Dst.Temp), value))
		delete(e.fn.index, def.Dst.Temp)
	}
}

// plan records the order in which a statement would evaluate substituted
// definitions and reads of storage that can change.
type plan struct {
	e      *Emitter
	used   map[int]bool
	events []int
}

func (p *plan) visit(x ir.Expr, now int) {
	st := p.e.fn
	switch v := x.(type) {
	case ir.TempRef:
		if k, ok := st.index[v.ID]; ok {
			p.used[k] = true
			def := st.pending[k]
			ir.ForEachExprOperand(&def.Value, func(slot *ir.Expr) {
				p.visit(*slot, k)
			})
			if !pure(def) {
				p.events = append(p.events, k)
			}
			return
		}
		if p.e.program.IsPhi(v.ID) {
			p.events = append(p.events, now)
		}
	case ir.Local:
		if v.Pinned {
			p.events = append(p.events, now)
		}
	case ir.Ident:
		if p.e.program.AssignedGlobals[v.Name] {
			p.events = append(p.events, now)
		}
	}
}

// pure reports whether def computes its value from its operands alone.
// Where a pure definition is evaluated only matters for the reads among
// its operands, which visit records on their own.
func pure(def *ir.Assign) bool {
	if len(def.Effects) > 0 {
		return false
	}
	switch v := def.Value.(type) {
	case *ir.Unary:
		return true
	case *ir.Binary:
		return v.Op != "in" && v.Op != "instanceof"
	}
	return false
}

func (p *plan) ordered() bool {
	for i := 1; i < len(p.events); i++ {
		if p.events[i] < p.events[i-1] {
			return false
		}
	}
	return true
}

// value builds a compound or trivial expression.
func (e *Emitter) value(x ir.Expr) ast.Expr {
	switch v := x.(type) {
	case *ir.Unary:
		return &ast.UnaryExpr{Op: v.Op, X: e.expr(v.X)}

	case *ir.Binary:
		l, r := e.expr(v.L), e.expr(v.R)
		switch v.Op {
		case "&&", "||", "??":
			return &ast.LogicalExpr{Op: v.Op, Left: l, Right: r}
		}
		return &ast.BinaryExpr{Op: v.Op, Left: l, Right: r}

	case *ir.Member:
		return e.member(v.Object, v.Key)

	case *ir.Call:
		var callee ast.Expr
		if v.Object != nil {
			callee = e.member(v.Object, v.Key)
		} else {
			callee = e.expr(v.Callee)
			if _, ok := callee.(*ast.MemberExpr); ok {
				// detach the receiver
				callee = &ast.SeqExpr{List: []ast.Expr{ast.Num(0), callee}}
			}
		}
		args := make([]ast.Expr, len(v.Args))
		for i, a := range v.Args {
			args[i] = e.expr(a)
		}
		if v.New {
			return &ast.NewExpr{Callee: callee, Args: args}
		}
		return &ast.CallExpr{Callee: callee, Args: args}

	case *ir.NewObject:
		props := make([]*ast.Property, len(v.Props))
		for i, prop := range v.Props {
			props[i] = &ast.Property{Key: prop.Key, Value: e.expr(prop.Value)}
			if prop.KeyExpr != nil {
				props[i].Computed = true
				props[i].KeyExpr = e.expr(prop.KeyExpr)
			}
		}
		return &ast.ObjectLit{Props: props}

	case *ir.NewArray:
		elems := make([]ast.Expr, len(v.Elems))
		for i, el := range v.Elems {
			elems[i] = e.expr(el)
		}
		return &ast.ArrayLit{Elems: elems}

	case *ir.Delete:
		return &ast.UnaryExpr{Op: "delete", X: e.member(v.Object, v.Key)}

	case *ir.Phi:
		panic(errors.Internal("merge value used as an expression"))
	}
	return e.expr(x)
}

// expr builds a trivial operand, substituting inline and pending temps.
func (e *Emitter) expr(x ir.Expr) ast.Expr {
	switch v := x.(type) {
	case ir.Literal:
		return v.AST()
	case ir.Ident:
		return ast.Name(v.Name)
	case ir.Local:
		return ast.Name(v.Name)
	case ir.This:
		return &ast.ThisExpr{}
	case ir.Arguments:
		return ast.Name("arguments")
	case ir.Raw:
		return ast.Raw(v.Text)
	case ir.FuncRef:
		return &ast.FuncExpr{Func: e.function(v.Func, e.program.Functions[v.Func].Name)}
	case ir.TempRef:
		return e.temp(v.ID)
	}
	panic(errors.Internal("compound %T used as an operand", x))
}

func (e *Emitter) temp(t ir.TempID) ast.Expr {
	switch def := e.program.Def(t).(type) {
	case *ir.FuncDecl:
		return ast.Name(def.Name)
	case *ir.Assign:
		if _, ok := def.Value.(*ir.Phi); ok {
			return ast.Name(e.register(t))
		}
		if def.Mat == ir.MatInline || e.fn.subst[t] {
			return e.value(def.Value)
		}
		if _, ok := e.names[t]; !ok && def.Mat == ir.MatPending {
			panic(errors.Internal("%s read before its definition", t))
		}
		return ast.Name(e.register(t))
	case nil:
		panic(errors.Internal("%s has no definition", t))
	}
	panic(errors.Internal("%s is not a value", t))
}

// member builds object[key], using dot notation for identifier keys.
func (e *Emitter) member(object, key ir.Expr) *ast.MemberExpr {
	obj := e.expr(object)
	if lit, ok := key.(ir.Literal); ok && lit.Kind == ast.StringLit && ast.IsIdentifierName(lit.Str) {
		return &ast.MemberExpr{Object: obj, Name: lit.Str}
	}
	return &ast.MemberExpr{Object: obj, Property: e.expr(key), Computed: true}
}
