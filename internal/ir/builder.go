package ir

import (
	"jsopt/internal/ast"
	"jsopt/internal/errors"
)

// Builder converts a syntax tree to IR
type Builder struct {
	program *Program
	scopes  map[ast.Node]*Scope
	funcs   map[*ast.Function]*Function

	// tracking maps instance temps whose shape is still known to the
	// nesting level they were created at
	tracking map[TempID]int
}

// cursor is the insertion point of a straight-line region. A terminated
// cursor follows a return, throw, break or continue.
type cursor struct {
	block      *Block
	terminated bool
}

// loopFrame carries the state break and continue need.
type loopFrame struct {
	loop    *Loop
	carried []carriedBinding
	update  ast.Expr
	head    *Scope
	outer   *loopFrame
}

// carriedBinding is a local reassigned inside a loop; its value lives in
// the merge register phi across iterations.
type carriedBinding struct {
	binding *Binding
	phi     TempID
}

// ctx is the lowering context. It is passed by value; the cursor is
// shared by everything lowered into the same region.
type ctx struct {
	scope  *Scope
	fn     *Function
	cur    *cursor
	loop   *loopFrame
	parent Stmt
	nest   int
	depth  int
}

// NewBuilder creates a new IR builder
func NewBuilder() *Builder {
	return &Builder{
		tracking: map[TempID]int{},
	}
}

// Build converts a syntax tree to IR. Unsupported input aborts with a
// *errors.CompilerError.
func (b *Builder) Build(program *ast.Program) (result *Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(*errors.CompilerError)
			if !ok {
				panic(r)
			}
			result, err = nil, ce
		}
	}()

	b.program = NewProgram()
	d := newDiscovery(b.program)
	d.program(program)
	b.scopes = d.scopes
	b.funcs = d.funcs

	top := b.program.Functions[TopFunc]
	entry := b.program.NewBlock(TopFunc)
	c := ctx{scope: top.Scope, fn: top, cur: &cursor{block: entry}}
	b.body(c, program.Body)

	return b.program, nil
}

// buildFunction lowers a nested function into its own blocks.
func (b *Builder) buildFunction(c ctx, f *ast.Function) *Function {
	fn := b.funcs[f]
	if fn == nil {
		panic(errors.Internal("function %q was not discovered", f.Name))
	}
	if fn.Entry() != NoBlock {
		// lowered twice: a loop update repeated at a continue
		panic(errors.Unsupported(errors.ErrorUpdateClosure, "function expressions in loop updates", f.Pos))
	}
	entry := b.program.NewBlock(fn.ID)
	inner := ctx{scope: fn.Scope, fn: fn, cur: &cursor{block: entry}, depth: c.depth + 1}

	saved := b.tracking
	b.tracking = map[TempID]int{}
	defer func() { b.tracking = saved }()

	for _, binding := range fn.Scope.Bindings() {
		if binding.Kind == BindVar && binding.Tracked() {
			binding.Value = b.temp(inner, Undefined(), binding.Pos)
		}
	}

	for _, p := range f.Params {
		if p.Default == nil {
			continue
		}
		name := &ast.Ident{Pos: p.Pos, Name: p.Name}
		b.stmt(inner, &ast.IfStmt{
			Pos: p.Pos,
			Test: &ast.BinaryExpr{
				Pos:   p.Pos,
				Op:    "===",
				Left:  name,
				Right: &ast.UnaryExpr{Pos: p.Pos, Op: "void", X: ast.Num(0)},
			},
			Then: &ast.ExprStmt{Pos: p.Pos, X: &ast.AssignExpr{Pos: p.Pos, Op: "=", Target: name, Value: p.Default}},
		})
	}

	b.body(inner, f.Body)
	return fn
}

// emit appends s at the cursor.
func (b *Builder) emit(c ctx, s Stmt) {
	m := s.Meta()
	m.Block = c.cur.block.ID
	m.Parent = c.parent
	m.Live = true
	c.cur.block.Stmts = append(c.cur.block.Stmts, s)
}

// insertBefore places s ahead of anchor in its block.
func (b *Builder) insertBefore(anchor Stmt, s Stmt) {
	blk := b.program.Blocks[anchor.Meta().Block]
	m := s.Meta()
	m.Block = blk.ID
	m.Parent = anchor.Meta().Parent
	m.Live = true
	for i, x := range blk.Stmts {
		if x == anchor {
			blk.Stmts = append(blk.Stmts[:i], append([]Stmt{s}, blk.Stmts[i:]...)...)
			return
		}
	}
	panic(errors.Internal("anchor statement not found in block %d", blk.ID))
}

// temp defines a fresh temp holding value and returns a reference to it.
func (b *Builder) temp(c ctx, value Expr, pos ast.Position) TempRef {
	t := b.program.NewTemp(c.cur.block.ID)
	a := &Assign{Dst: TempLvalue(t), Value: value}
	a.Pos = pos
	a.Effects = ExprEffects(value)
	b.emit(c, a)
	b.program.SetDef(t, a)
	return Ref(t)
}

// newPhi allocates a merge temp defined in blk.
func (b *Builder) newPhi(blk BlockID, pos ast.Position) (TempID, *Assign) {
	t := b.program.NewTemp(blk)
	a := &Assign{Dst: TempLvalue(t), Value: &Phi{}}
	a.Pos = pos
	b.program.SetDef(t, a)
	return t, a
}

// copyInto builds a copy of value into the register of phi. The caller
// places the statement.
func (b *Builder) copyInto(phi TempID, value Expr, pos ast.Position) *Assign {
	b.escape(value)
	a := &Assign{Dst: PhiLvalue(phi), Value: value}
	a.Pos = pos
	merge, ok := b.program.DefValue(phi).(*Phi)
	if !ok {
		panic(errors.Internal("%s is not a merge temp", phi))
	}
	merge.Copies = append(merge.Copies, a)
	return a
}

// named writes value to a global or pinned name.
func (b *Builder) named(c ctx, dst Lvalue, value Expr, pos ast.Position) {
	b.escape(value)
	a := &Assign{Dst: dst, Value: value}
	a.Pos = pos
	a.Effects = []Effect{{Kind: Mutation, Target: dst}}
	b.emit(c, a)
}

// read returns the current value of a name.
func (b *Builder) read(c ctx, name string, pos ast.Position) Expr {
	binding := c.scope.Resolve(name)
	if binding == nil {
		switch {
		case name == "undefined":
			return Undefined()
		case name == "arguments" && c.fn.ID != TopFunc:
			return Arguments{}
		}
		return Ident{Name: name}
	}
	b.checkDeclared(c, binding, pos)
	switch {
	case binding.Global:
		return Ident{Name: name}
	case binding.Pinned:
		return Local{Name: binding.EmitName, Pinned: true}
	case binding.Value == nil:
		panic(errors.Internal("binding %q has no value", name))
	}
	return binding.Value
}

func (b *Builder) checkDeclared(c ctx, binding *Binding, pos ast.Position) {
	if binding.Lexical() && !binding.Declared && binding.Scope.Owner() == c.fn.ID {
		panic(errors.UseBeforeDeclaration(binding.Name, pos))
	}
}

// write stores value into a name and returns the value of the assignment.
func (b *Builder) write(c ctx, binding *Binding, name string, value Expr, pos ast.Position) Expr {
	if binding != nil {
		b.checkDeclared(c, binding, pos)
	}
	if binding == nil || binding.Global {
		b.program.AssignedGlobals[name] = true
		b.named(c, GlobalLvalue(name), value, pos)
		return value
	}
	if binding.Pinned || binding.Kind == BindSelf {
		b.named(c, NamedLvalue(binding.EmitName), value, pos)
		return value
	}
	if _, ok := value.(TempRef); !ok {
		value = b.temp(c, value, pos)
	}
	binding.Value = value
	return value
}

// visible returns the tracked bindings reachable from the current scope
// inside the current function, innermost scope first.
func (b *Builder) visible(c ctx) []*Binding {
	var out []*Binding
	for s := c.scope; s != nil && s.Owner() == c.fn.ID; s = s.Parent {
		for _, binding := range s.Bindings() {
			if binding.Tracked() && binding.Kind != BindSelf {
				out = append(out, binding)
			}
		}
		if s == s.FuncScope {
			break
		}
	}
	return out
}

func values(bindings []*Binding) []Expr {
	out := make([]Expr, len(bindings))
	for i, binding := range bindings {
		out[i] = binding.Value
	}
	return out
}

func restore(bindings []*Binding, vals []Expr) {
	for i, binding := range bindings {
		binding.Value = vals[i]
	}
}

// arm is one path reaching the end of an if statement.
type arm struct {
	vals []Expr
	end  *Block
	pre  bool
}

// branch lowers a two-way conditional and merges the values of every
// visible binding, plus extra, at the continuation. A binding whose value
// differs between live paths gets a merge temp defined ahead of the if.
func (b *Builder) branch(c ctx, cond Expr, then, els func(ctx), extra []*Binding, pos ast.Position) *If {
	tracked := append(b.visible(c), extra...)
	before := values(tracked)

	s := &If{Cond: cond, Then: NoBlock, Else: NoBlock}
	s.Pos = pos
	b.emit(c, s)
	condBlock := c.cur.block

	lower := func(fn func(ctx)) (BlockID, *arm) {
		blk := b.program.NewBlock(c.fn.ID)
		blk.Parent = s
		inner := c
		inner.cur = &cursor{block: blk}
		inner.parent = s
		inner.nest = c.nest + 1
		fn(inner)
		vals := values(tracked)
		restore(tracked, before)
		if inner.cur.terminated {
			return blk.ID, nil
		}
		return blk.ID, &arm{vals: vals, end: inner.cur.block}
	}

	var live []*arm
	thenID, thenArm := lower(then)
	s.Then = thenID
	if thenArm != nil {
		live = append(live, thenArm)
	}
	if els != nil {
		elseID, elseArm := lower(els)
		s.Else = elseID
		if elseArm != nil {
			live = append(live, elseArm)
		}
	} else {
		live = append(live, &arm{vals: before, end: condBlock, pre: true})
	}

	cont := b.program.NewBlock(c.fn.ID)
	condBlock.Next = cont.ID
	cont.Prev = condBlock.ID
	cont.Parent = condBlock.Parent
	c.cur.block = cont

	if len(live) == 0 {
		c.cur.terminated = true
		return s
	}

	for i, binding := range tracked {
		first := live[0].vals[i]
		same := true
		for _, a := range live[1:] {
			if a.vals[i] != first || a.vals[i] == nil {
				same = false
			}
		}
		if same || first == nil {
			binding.Value = first
			continue
		}

		phi, def := b.newPhi(condBlock.ID, pos)
		b.insertBefore(s, def)
		for _, a := range live {
			cp := b.copyInto(phi, a.vals[i], pos)
			if a.pre {
				b.insertBefore(s, cp)
				continue
			}
			cp.Block = a.end.ID
			cp.Parent = s
			cp.Live = true
			a.end.Stmts = append(a.end.Stmts, cp)
		}
		binding.Value = Ref(phi)
	}
	return s
}

// escape stops tracking an instance whose reference leaves the reach of
// literal-key folding.
func (b *Builder) escape(values ...Expr) {
	for _, v := range values {
		if r, ok := v.(TempRef); ok {
			delete(b.tracking, r.ID)
		}
	}
}

// forgetInstances drops all instance tracking.
func (b *Builder) forgetInstances() {
	clear(b.tracking)
}

// track starts tracking a freshly constructed instance.
func (b *Builder) track(c ctx, t TempRef, gen *Generation, array bool) {
	b.program.Instances[t.ID] = &Instance{Temp: t.ID, Array: array, Gens: []*Generation{gen}}
	b.tracking[t.ID] = c.nest
}

// instance returns the tracked instance behind object, if any.
func (b *Builder) instance(c ctx, object Expr, sameNest bool) *Instance {
	r, ok := object.(TempRef)
	if !ok {
		return nil
	}
	nest, ok := b.tracking[r.ID]
	if !ok || sameNest && nest != c.nest {
		return nil
	}
	return b.program.Instances[r.ID]
}

// generation returns the shape a read of object observes, or -1.
func (b *Builder) generation(c ctx, object Expr) int {
	if in := b.instance(c, object, false); in != nil {
		return in.Current()
	}
	return -1
}

// noteSet records a property write in the shape of a tracked instance.
func (b *Builder) noteSet(c ctx, object, key, value Expr) {
	in := b.instance(c, object, true)
	if in == nil {
		b.escape(object)
		return
	}
	k, ok := PropertyKey(key)
	if !ok || k == "__proto__" {
		b.escape(object)
		return
	}
	if in.Array {
		cur := in.Gens[in.Current()]
		idx, isIndex := ArrayIndex(k)
		if !isIndex || idx > len(cur.Elems) {
			b.escape(object)
			return
		}
		gen, _ := in.Next()
		if idx == len(gen.Elems) {
			gen.Elems = append(gen.Elems, value)
		} else {
			gen.Elems[idx] = value
		}
		return
	}
	gen, _ := in.Next()
	gen.Props[k] = value
}

// propSet lowers Object[Key] = Value.
func (b *Builder) propSet(c ctx, object, key, value Expr, pos ast.Position) {
	b.escape(value, key)
	b.noteSet(c, object, key, value)
	s := &PropSet{Object: object, Key: key, Value: value}
	s.Pos = pos
	s.Effects = []Effect{MutationOf(object)}
	b.emit(c, s)
}
