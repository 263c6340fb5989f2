package ir

import (
	"jsopt/internal/ast"
	"jsopt/internal/errors"
)

// body lowers a statement list. Function declarations are hoisted to the
// start of the list; nothing after a terminating statement is lowered.
func (b *Builder) body(c ctx, list []ast.Stmt) {
	for _, s := range list {
		if decl, ok := s.(*ast.FunctionDecl); ok {
			b.functionDecl(c, decl)
		}
	}
	for _, s := range list {
		if c.cur.terminated {
			return
		}
		b.stmt(c, s)
	}
}

func (b *Builder) functionDecl(c ctx, decl *ast.FunctionDecl) {
	fn := b.buildFunction(c, decl.Func)
	binding := c.scope.Names[decl.Func.Name]
	if binding == nil {
		panic(errors.Internal("function %q was not declared", decl.Func.Name))
	}

	s := &FuncDecl{Func: fn.ID, Name: binding.EmitName}
	s.Pos = decl.Pos
	switch {
	case binding.Global:
		s.Dst = GlobalLvalue(binding.Name)
		s.Effects = []Effect{{Kind: Mutation, Target: s.Dst}}
	case binding.Pinned:
		s.Dst = NamedLvalue(binding.EmitName)
		s.Effects = []Effect{{Kind: Mutation, Target: s.Dst}}
	default:
		t := b.program.NewTemp(c.cur.block.ID)
		s.Dst = TempLvalue(t)
		b.program.SetDef(t, s)
		binding.Value = Ref(t)
	}
	b.emit(c, s)
}

func (b *Builder) stmt(c ctx, s ast.Stmt) {
	c.depth++
	if c.depth > MaxDepth {
		panic(errors.NestingTooDeep(MaxDepth, s.NodePos()))
	}

	switch s := s.(type) {
	case *ast.VarDecl:
		b.varDecl(c, s)

	case *ast.FunctionDecl:
		// hoisted by body

	case *ast.BlockStmt:
		inner := c
		if scope := b.scopes[s]; scope != nil {
			inner.scope = scope
		}
		b.body(inner, s.Body)

	case *ast.ExprStmt:
		b.exprStmt(c, s)

	case *ast.IfStmt:
		cond := b.value(c, s.Test)
		var els func(ctx)
		if s.Else != nil {
			els = func(in ctx) { b.stmt(in, s.Else) }
		}
		b.branch(c, cond, func(in ctx) { b.stmt(in, s.Then) }, els, nil, s.Pos)

	case *ast.WhileStmt:
		b.loop(c, While, s.Test, s.Body, nil, s.Pos)

	case *ast.DoWhileStmt:
		b.loop(c, DoWhile, s.Test, s.Body, nil, s.Pos)

	case *ast.ForStmt:
		inner := c
		if head := b.scopes[s]; head != nil {
			inner.scope = head
		}
		if s.Init != nil {
			b.stmt(inner, s.Init)
		}
		test := s.Test
		if test == nil {
			test = ast.Bool(true)
		}
		b.loop(inner, While, test, s.Body, s.Update, s.Pos)

	case *ast.ForInStmt:
		b.forIn(c, s)

	case *ast.BreakStmt:
		b.jump(c, false, s.Pos)

	case *ast.ContinueStmt:
		b.jump(c, true, s.Pos)

	case *ast.ReturnStmt:
		if c.fn.ID == TopFunc {
			panic(errors.Syntax("return outside of a function", s.Pos))
		}
		var v Expr = Undefined()
		if s.Arg != nil {
			v = b.value(c, s.Arg)
		}
		b.escape(v)
		r := &Return{Value: v}
		r.Pos = s.Pos
		b.emit(c, r)
		c.cur.terminated = true

	case *ast.ThrowStmt:
		v := b.value(c, s.Arg)
		b.escape(v)
		t := &Throw{Value: v}
		t.Pos = s.Pos
		b.emit(c, t)
		c.cur.terminated = true

	case *ast.EmptyStmt:

	case *ast.LabeledStmt:
		panic(errors.Unsupported(errors.ErrorLabel, "labeled statements", s.Pos))

	default:
		panic(errors.Internal("unexpected %s statement", s.NodeType()))
	}
}

func (b *Builder) varDecl(c ctx, v *ast.VarDecl) {
	for _, decl := range v.Decls {
		binding := c.scope.Resolve(decl.Name)
		var value Expr
		switch {
		case decl.Init != nil:
			value = b.value(c, decl.Init)
		case v.Kind != ast.Var:
			value = Undefined()
		}
		if binding != nil {
			binding.Declared = true
		}
		if value != nil {
			b.write(c, binding, decl.Name, value, decl.Pos)
		}
	}
}

func (b *Builder) exprStmt(c ctx, s *ast.ExprStmt) {
	if lit, ok := s.X.(*ast.Literal); ok && lit.Kind == ast.StringLit {
		// directives such as "use strict" must survive
		e := &ExprStmt{X: Str(lit.Str)}
		e.Pos = s.Pos
		e.Effects = []Effect{IoEffect}
		b.emit(c, e)
		return
	}
	b.value(c, s.X)
}

// carried returns the visible tracked bindings assigned anywhere in nodes,
// outside nested functions. force is always included when tracked.
func (b *Builder) carried(c ctx, force *Binding, nodes ...ast.Node) []*Binding {
	names := map[string]bool{}
	if force != nil {
		names[force.Name] = true
	}
	for _, node := range nodes {
		if node == nil {
			continue
		}
		ast.Inspect(node, func(n ast.Node) bool {
			switch n := n.(type) {
			case *ast.Function:
				return false
			case *ast.AssignExpr:
				if id, ok := n.Target.(*ast.Ident); ok {
					names[id.Name] = true
				}
			case *ast.UpdateExpr:
				if id, ok := n.X.(*ast.Ident); ok {
					names[id.Name] = true
				}
			case *ast.Declarator:
				if n.Init != nil {
					names[n.Name] = true
				}
			case *ast.ForInStmt:
				if id, ok := n.Target.(*ast.Ident); ok {
					names[id.Name] = true
				}
				if n.Decl != nil {
					for _, d := range n.Decl.Decls {
						names[d.Name] = true
					}
				}
			}
			return true
		})
	}

	var out []*Binding
	for _, binding := range b.visible(c) {
		if names[binding.Name] && c.scope.Resolve(binding.Name) == binding {
			out = append(out, binding)
		}
	}
	return out
}

// enterLoop defines a merge temp for every carried binding, copies the
// binding's current value into it and emits the loop.
func (b *Builder) enterLoop(c ctx, l *Loop, carried []*Binding) *loopFrame {
	b.forgetInstances()
	frame := &loopFrame{loop: l, head: c.scope, outer: c.loop}
	for _, binding := range carried {
		phi, def := b.newPhi(c.cur.block.ID, l.Pos)
		b.emit(c, def)
		if binding.Value != nil {
			b.emit(c, b.copyInto(phi, binding.Value, l.Pos))
		}
		binding.Value = Ref(phi)
		frame.carried = append(frame.carried, carriedBinding{binding: binding, phi: phi})
	}
	b.emit(c, l)
	return frame
}

// exitLoop moves the cursor past the loop.
func (b *Builder) exitLoop(c ctx, frame *loopFrame) {
	for _, cb := range frame.carried {
		cb.binding.Value = Ref(cb.phi)
	}
	loopBlock := b.program.Blocks[frame.loop.Block]
	cont := b.program.NewBlock(c.fn.ID)
	loopBlock.Next = cont.ID
	cont.Prev = loopBlock.ID
	cont.Parent = loopBlock.Parent
	c.cur.block = cont
	b.forgetInstances()
}

// sync copies the current values of carried bindings into their merge
// registers. Sources that are themselves merge registers of this loop are
// snapshotted first so the copies behave as one parallel assignment.
func (b *Builder) sync(c ctx, frame *loopFrame, pos ast.Position) {
	dests := map[TempID]bool{}
	for _, cb := range frame.carried {
		dests[cb.phi] = true
	}

	type pendingCopy struct {
		phi   TempID
		value Expr
	}
	var copies []pendingCopy
	for _, cb := range frame.carried {
		v := cb.binding.Value
		if v == nil || v == Expr(Ref(cb.phi)) {
			continue
		}
		if r, ok := v.(TempRef); ok && dests[r.ID] {
			v = b.temp(c, v, pos)
		}
		copies = append(copies, pendingCopy{phi: cb.phi, value: v})
	}
	for _, cp := range copies {
		b.emit(c, b.copyInto(cp.phi, cp.value, pos))
	}
	for _, cb := range frame.carried {
		cb.binding.Value = Ref(cb.phi)
	}
}

func (b *Builder) loopContext(c ctx, frame *loopFrame, blk *Block) ctx {
	inner := c
	inner.cur = &cursor{block: blk}
	inner.parent = frame.loop
	inner.nest = c.nest + 1
	inner.loop = frame
	return inner
}

// loop lowers while, do-while and three-clause for loops. The test is
// lowered into the loop's test block chain; the update runs at the end of
// the body and before every continue.
func (b *Builder) loop(c ctx, kind LoopKind, test ast.Expr, body ast.Stmt, update ast.Expr, pos ast.Position) {
	var nodes []ast.Node
	if test != nil {
		nodes = append(nodes, test)
	}
	if update != nil {
		nodes = append(nodes, update)
	}
	nodes = append(nodes, body)

	l := &Loop{Kind: kind, Test: NoBlock, Body: NoBlock}
	l.Pos = pos
	frame := b.enterLoop(c, l, b.carried(c, nil, nodes...))
	frame.update = update

	testBlk := b.program.NewBlock(c.fn.ID)
	testBlk.Parent = l
	l.Test = testBlk.ID
	bodyBlk := b.program.NewBlock(c.fn.ID)
	bodyBlk.Parent = l
	l.Body = bodyBlk.ID

	lowerTest := func() {
		tc := b.loopContext(c, frame, testBlk)
		l.Cond = b.value(tc, test)
		b.sync(tc, frame, pos)
	}

	if kind == While {
		lowerTest()
	}

	bc := b.loopContext(c, frame, bodyBlk)
	b.stmt(bc, body)
	if !bc.cur.terminated {
		b.runUpdate(bc, frame)
		b.sync(bc, frame, pos)
	}

	if kind == DoWhile {
		for _, cb := range frame.carried {
			cb.binding.Value = Ref(cb.phi)
		}
		lowerTest()
	}

	b.exitLoop(c, frame)
}

// runUpdate lowers the update clause of a three-clause for loop in its head scope.
func (b *Builder) runUpdate(c ctx, frame *loopFrame) {
	if frame.update == nil {
		return
	}
	uc := c
	uc.scope = frame.head
	b.value(uc, frame.update)
}

func (b *Builder) forIn(c ctx, s *ast.ForInStmt) {
	object := b.value(c, s.Right)
	b.escape(object)

	inner := c
	var name string
	if s.Decl != nil {
		name = s.Decl.Decls[0].Name
		if head := b.scopes[s]; head != nil {
			inner.scope = head
		}
	} else {
		name = s.Target.(*ast.Ident).Name
	}
	binding := inner.scope.Resolve(name)
	if binding != nil && s.Decl != nil {
		binding.Declared = true
	}

	kind := ForIn
	if s.Of {
		kind = ForOf
	}
	l := &Loop{Kind: kind, Test: NoBlock, Body: NoBlock, Object: object}
	l.Pos = s.Pos

	var force *Binding
	if binding != nil && binding.Tracked() {
		force = binding
	}
	frame := b.enterLoop(inner, l, b.carried(inner, force, s.Body))

	switch {
	case binding == nil || binding.Global:
		b.program.AssignedGlobals[name] = true
		l.Each = GlobalLvalue(name)
	case binding.Pinned:
		l.Each = NamedLvalue(binding.EmitName)
	default:
		for _, cb := range frame.carried {
			if cb.binding == binding {
				l.Each = PhiLvalue(cb.phi)
			}
		}
	}
	if l.Each.IsNamed() {
		l.Effects = []Effect{{Kind: Mutation, Target: l.Each}}
	}

	bodyBlk := b.program.NewBlock(c.fn.ID)
	bodyBlk.Parent = l
	l.Body = bodyBlk.ID

	bc := b.loopContext(inner, frame, bodyBlk)
	b.stmt(bc, s.Body)
	if !bc.cur.terminated {
		b.sync(bc, frame, s.Pos)
	}
	b.exitLoop(inner, frame)
}

// jump lowers break and continue.
func (b *Builder) jump(c ctx, isContinue bool, pos ast.Position) {
	frame := c.loop
	if frame == nil {
		if isContinue {
			panic(errors.Syntax("continue outside of a loop", pos))
		}
		panic(errors.Syntax("break outside of a loop", pos))
	}

	var s Stmt
	if isContinue {
		b.runUpdate(c, frame)
		b.sync(c, frame, pos)
		s = &Continue{Loop: frame.loop}
	} else {
		b.sync(c, frame, pos)
		s = &Break{Loop: frame.loop}
	}
	s.Meta().Pos = pos
	b.emit(c, s)
	c.cur.terminated = true
}
