package ir

import (
	"strings"

	"jsopt/internal/ast"
	"jsopt/internal/errors"
)

// value lowers an expression and returns a trivial operand holding its
// result. Compound results are defined in temps.
func (b *Builder) value(c ctx, e ast.Expr) Expr {
	c.depth++
	if c.depth > MaxDepth {
		panic(errors.NestingTooDeep(MaxDepth, e.NodePos()))
	}

	switch e := e.(type) {
	case *ast.Literal:
		return Literal{Kind: e.Kind, Num: e.Num, Str: e.Str, Bool: e.Bool}

	case *ast.Ident:
		return b.read(c, e.Name, e.Pos)

	case *ast.ThisExpr:
		return This{}

	case *ast.RawExpr:
		return b.temp(c, Raw{Text: e.Text}, e.Pos)

	case *ast.FuncExpr:
		fn := b.buildFunction(c, e.Func)
		return b.temp(c, FuncRef{Func: fn.ID}, e.Pos)

	case *ast.ArrayLit:
		return b.arrayLit(c, e)

	case *ast.ObjectLit:
		return b.objectLit(c, e)

	case *ast.SpreadElement:
		panic(errors.Unsupported(errors.ErrorSpread, "spread elements", e.Pos))

	case *ast.UnaryExpr:
		return b.unary(c, e)

	case *ast.UpdateExpr:
		op := "+"
		if e.Op == "--" {
			op = "-"
		}
		return b.modify(c, e.X, false, e.Pos, func(old Expr) (Expr, Expr) {
			num := b.temp(c, &Unary{Op: "+", X: old}, e.Pos)
			next := b.temp(c, &Binary{Op: op, L: num, R: Num(1)}, e.Pos)
			if e.Prefix {
				return next, next
			}
			return next, num
		})

	case *ast.BinaryExpr:
		ops := b.operands(c, e.Left, e.Right)
		return b.temp(c, &Binary{Op: e.Op, L: ops[0], R: ops[1]}, e.Pos)

	case *ast.LogicalExpr:
		return b.logical(c, e)

	case *ast.AssignExpr:
		return b.assign(c, e)

	case *ast.CondExpr:
		cond := b.value(c, e.Test)
		result := &Binding{Name: "?:"}
		b.branch(c, cond,
			func(in ctx) { result.Value = b.value(in, e.Then) },
			func(in ctx) { result.Value = b.value(in, e.Else) },
			[]*Binding{result}, e.Pos)
		return result.Value

	case *ast.CallExpr:
		return b.call(c, e.Callee, e.Args, false, e.Pos)

	case *ast.NewExpr:
		return b.call(c, e.Callee, e.Args, true, e.Pos)

	case *ast.MemberExpr:
		obj, key, _ := b.memberParts(c, e)
		return b.temp(c, &Member{Object: obj, Key: key, Gen: b.generation(c, obj)}, e.Pos)

	case *ast.SeqExpr:
		var last Expr = Undefined()
		for _, x := range e.List {
			last = b.value(c, x)
		}
		return last
	}

	return b.temp(c, Raw{Text: ast.Print(e, ast.PrintOptions{Compact: true})}, e.NodePos())
}

// operands lowers expressions left to right. A read of a name that may be
// reassigned is captured in a temp when a later operand could run code.
func (b *Builder) operands(c ctx, list ...ast.Expr) []Expr {
	out := make([]Expr, len(list))
	for i, e := range list {
		out[i] = b.value(c, e)
		if b.volatile(out[i]) && !simpleAST(list[i+1:]) {
			out[i] = b.temp(c, out[i], e.NodePos())
		}
	}
	return out
}

// volatile reports whether a trivial operand reads storage other code can
// write.
func (b *Builder) volatile(e Expr) bool {
	switch x := e.(type) {
	case Ident:
		return b.program.AssignedGlobals[x.Name]
	case Local:
		return x.Pinned
	}
	return false
}

func simpleAST(list []ast.Expr) bool {
	for _, e := range list {
		switch e.(type) {
		case *ast.Literal, *ast.Ident, *ast.ThisExpr, *ast.FuncExpr:
		default:
			return false
		}
	}
	return true
}

// simpleOperand reports whether the right side of a logical operator can
// be evaluated unconditionally.
func (b *Builder) simpleOperand(c ctx, e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.Literal, *ast.ThisExpr:
		return true
	case *ast.Ident:
		binding := c.scope.Resolve(e.Name)
		if binding == nil {
			return e.Name == "undefined"
		}
		return binding.Tracked() && binding.Value != nil
	}
	return false
}

// memberParts lowers the object and key of a member expression, followed
// by any extra operands, in evaluation order.
func (b *Builder) memberParts(c ctx, m *ast.MemberExpr, extra ...ast.Expr) (Expr, Expr, []Expr) {
	list := []ast.Expr{m.Object}
	if m.Computed {
		list = append(list, m.Property)
	}
	ops := b.operands(c, append(list, extra...)...)
	if m.Computed {
		b.escape(ops[1])
		return ops[0], ops[1], ops[2:]
	}
	return ops[0], Str(m.Name), ops[1:]
}

func (b *Builder) unary(c ctx, e *ast.UnaryExpr) Expr {
	if e.Op == "delete" {
		switch x := e.X.(type) {
		case *ast.MemberExpr:
			obj, key, _ := b.memberParts(c, x)
			b.escape(obj)
			return b.temp(c, &Delete{Object: obj, Key: key}, e.Pos)
		case *ast.Ident:
			if c.scope.Resolve(x.Name) != nil {
				// declared bindings cannot be deleted
				return Bool(false)
			}
			return b.temp(c, Raw{Text: ast.Print(e, ast.PrintOptions{Compact: true})}, e.Pos)
		default:
			b.value(c, e.X)
			return Bool(true)
		}
	}
	x := b.value(c, e.X)
	return b.temp(c, &Unary{Op: e.Op, X: x}, e.Pos)
}

// modify lowers a read-modify-write of a name or member. fn receives the
// old value and returns the value to store and the value of the whole
// expression. effectful is set when fn may run arbitrary code, in which
// case a reassignable old value is captured first.
func (b *Builder) modify(c ctx, target ast.Expr, effectful bool, pos ast.Position, fn func(old Expr) (Expr, Expr)) Expr {
	switch t := target.(type) {
	case *ast.Ident:
		binding := c.scope.Resolve(t.Name)
		old := b.read(c, t.Name, t.Pos)
		if effectful && b.volatile(old) {
			old = b.temp(c, old, t.Pos)
		}
		next, result := fn(old)
		b.write(c, binding, t.Name, next, pos)
		return result

	case *ast.MemberExpr:
		obj, key, _ := b.memberParts(c, t)
		if effectful && b.volatile(obj) {
			obj = b.temp(c, obj, t.Pos)
		}
		old := b.temp(c, &Member{Object: obj, Key: key, Gen: b.generation(c, obj)}, t.Pos)
		next, result := fn(old)
		b.propSet(c, obj, key, next, pos)
		return result

	case *ast.ArrayLit, *ast.ObjectLit:
		panic(errors.Unsupported(errors.ErrorDestructuring, "destructuring assignments", target.NodePos()))
	}
	panic(errors.InvalidAssignTarget(target.NodePos()))
}

func (b *Builder) assign(c ctx, e *ast.AssignExpr) Expr {
	switch e.Op {
	case "=":
		switch t := e.Target.(type) {
		case *ast.Ident:
			binding := c.scope.Resolve(t.Name)
			v := b.value(c, e.Value)
			return b.write(c, binding, t.Name, v, e.Pos)
		case *ast.MemberExpr:
			obj, key, rest := b.memberParts(c, t, e.Value)
			b.propSet(c, obj, key, rest[0], e.Pos)
			return rest[0]
		case *ast.ArrayLit, *ast.ObjectLit:
			panic(errors.Unsupported(errors.ErrorDestructuring, "destructuring assignments", e.Target.NodePos()))
		}
		panic(errors.InvalidAssignTarget(e.Target.NodePos()))

	case "&&=", "||=", "??=":
		if m, ok := e.Target.(*ast.MemberExpr); ok && !repeatable(m) {
			panic(errors.Unsupported(errors.ErrorAssignTarget, "logical assignment to a computed member", e.Target.NodePos()))
		}
		return b.value(c, &ast.LogicalExpr{
			Pos:   e.Pos,
			Op:    strings.TrimSuffix(e.Op, "="),
			Left:  e.Target,
			Right: &ast.AssignExpr{Pos: e.Pos, Op: "=", Target: e.Target, Value: e.Value},
		})
	}

	op := strings.TrimSuffix(e.Op, "=")
	return b.modify(c, e.Target, !simpleAST([]ast.Expr{e.Value}), e.Pos, func(old Expr) (Expr, Expr) {
		v := b.value(c, e.Value)
		next := b.temp(c, &Binary{Op: op, L: old, R: v}, e.Pos)
		return next, next
	})
}

// repeatable reports whether a member target can be evaluated twice
// without observable difference.
func repeatable(m *ast.MemberExpr) bool {
	switch m.Object.(type) {
	case *ast.Ident, *ast.ThisExpr:
	default:
		return false
	}
	if !m.Computed {
		return true
	}
	switch m.Property.(type) {
	case *ast.Literal, *ast.Ident:
		return true
	}
	return false
}

// logical lowers &&, || and ??. A right side that is safe to evaluate
// unconditionally stays a plain binary operation; anything else becomes
// an if statement merging into a temp.
func (b *Builder) logical(c ctx, e *ast.LogicalExpr) Expr {
	l := b.value(c, e.Left)
	if b.simpleOperand(c, e.Right) {
		r := b.value(c, e.Right)
		return b.temp(c, &Binary{Op: e.Op, L: l, R: r}, e.Pos)
	}
	if b.volatile(l) {
		l = b.temp(c, l, e.Pos)
	}

	result := &Binding{Name: e.Op, Value: l}
	right := func(in ctx) { result.Value = b.value(in, e.Right) }
	switch e.Op {
	case "||":
		b.branch(c, l, func(ctx) {}, right, []*Binding{result}, e.Pos)
	case "??":
		cond := b.temp(c, &Binary{Op: "==", L: l, R: Null()}, e.Pos)
		b.branch(c, cond, right, nil, []*Binding{result}, e.Pos)
	default:
		b.branch(c, l, right, nil, []*Binding{result}, e.Pos)
	}
	return result.Value
}

func (b *Builder) call(c ctx, callee ast.Expr, args []ast.Expr, isNew bool, pos ast.Position) Expr {
	for _, a := range args {
		if _, ok := a.(*ast.SpreadElement); ok {
			panic(errors.Unsupported(errors.ErrorSpread, "spread arguments", a.NodePos()))
		}
	}

	call := &Call{New: isNew}
	if m, ok := callee.(*ast.MemberExpr); ok && !isNew {
		call.Object, call.Key, call.Args = b.memberParts(c, m, args...)
		if in := b.instance(c, call.Object, true); in != nil && in.Array && call.Key == Expr(Str("push")) {
			gen, _ := in.Next()
			gen.Elems = append(gen.Elems, call.Args...)
		} else {
			b.escape(call.Object)
		}
	} else {
		ops := b.operands(c, append([]ast.Expr{callee}, args...)...)
		call.Callee, call.Args = ops[0], ops[1:]
		b.escape(call.Callee)
	}
	b.escape(call.Args...)
	return b.temp(c, call, pos)
}

func (b *Builder) arrayLit(c ctx, e *ast.ArrayLit) Expr {
	for _, el := range e.Elems {
		if _, ok := el.(*ast.SpreadElement); ok {
			panic(errors.Unsupported(errors.ErrorSpread, "spread elements", el.NodePos()))
		}
	}
	elems := b.operands(c, e.Elems...)
	b.escape(elems...)
	t := b.temp(c, &NewArray{Elems: elems}, e.Pos)
	b.track(c, t, &Generation{Props: map[string]Expr{}, Elems: append([]Expr(nil), elems...)}, true)
	return t
}

func (b *Builder) objectLit(c ctx, e *ast.ObjectLit) Expr {
	var list []ast.Expr
	for _, p := range e.Props {
		if p.Spread {
			panic(errors.Unsupported(errors.ErrorSpread, "object spread", p.Pos))
		}
		if p.Computed {
			list = append(list, p.KeyExpr)
		}
		list = append(list, p.Value)
	}
	vals := b.operands(c, list...)
	b.escape(vals...)

	gen := &Generation{Props: map[string]Expr{}}
	props := make([]*Prop, 0, len(e.Props))
	i := 0
	for _, p := range e.Props {
		prop := &Prop{Key: p.Key}
		if p.Computed {
			prop.KeyExpr = vals[i]
			i++
		}
		prop.Value = vals[i]
		i++
		switch {
		case p.Computed, p.Key == "__proto__":
			gen.Computed = true
		default:
			gen.Props[p.Key] = prop.Value
		}
		props = append(props, prop)
	}

	t := b.temp(c, &NewObject{Props: props}, e.Pos)
	b.track(c, t, gen, false)
	return t
}
