package ir

import (
	"fmt"

	"jsopt/internal/ast"
	"jsopt/internal/errors"
)

// MaxDepth bounds statement and expression nesting during lowering.
const MaxDepth = 256

// discovery resolves every name in the program before lowering: it builds
// the scope tree, decides which locals are pinned (captured by a nested
// function) and assigns output names. Unsupported constructs are rejected
// here so lowering never sees them.
type discovery struct {
	prog   *Program
	scopes map[ast.Node]*Scope
	funcs  map[*ast.Function]*Function

	fn     *Function
	scope  *Scope
	loops  int
	depth  int
	blocks map[FuncID][]*Scope
}

func newDiscovery(prog *Program) *discovery {
	return &discovery{
		prog:   prog,
		scopes: map[ast.Node]*Scope{},
		funcs:  map[*ast.Function]*Function{},
		blocks: map[FuncID][]*Scope{},
	}
}

func (d *discovery) newScope(parent *Scope, fn FuncID) *Scope {
	s := d.prog.NewScope(parent, fn)
	owner := fn
	if fn == NoFunc {
		owner = s.Owner()
	}
	d.blocks[owner] = append(d.blocks[owner], s)
	return s
}

func (d *discovery) program(p *ast.Program) {
	top := d.prog.Functions[TopFunc]
	scope := d.newScope(nil, TopFunc)
	top.Scope = scope
	d.scopes[p] = scope
	d.fn, d.scope = top, scope

	d.hoist(p.Body, scope, true)
	for _, b := range scope.Bindings() {
		b.Global = true
		b.EmitName = b.Name
		if b.Kind != BindFunction {
			d.prog.Globals = append(d.prog.Globals, b.Name)
		}
	}

	d.statements(p.Body)
	d.assignNames()
}

// hoist declares the bindings a statement list introduces in scope. Only a
// function scope collects var declarations, which are gathered from the
// whole body except nested functions.
func (d *discovery) hoist(body []ast.Stmt, scope *Scope, function bool) {
	if function {
		for _, s := range body {
			ast.Inspect(s, func(n ast.Node) bool {
				switch n := n.(type) {
				case *ast.Function, *ast.FuncExpr:
					return false
				case *ast.FunctionDecl:
					return false
				case *ast.VarDecl:
					if n.Kind == ast.Var {
						for _, decl := range n.Decls {
							if decl.Pattern != nil {
								panic(errors.Unsupported(errors.ErrorDestructuring, "destructuring declarations", decl.Pos))
							}
							scope.Declare(decl.Name, BindVar, decl.Pos)
						}
					}
				}
				return true
			})
		}
	}

	for _, s := range body {
		switch s := s.(type) {
		case *ast.VarDecl:
			if s.Kind == ast.Var {
				continue
			}
			kind := BindLet
			if s.Kind == ast.Const {
				kind = BindConst
			}
			for _, decl := range s.Decls {
				if decl.Pattern != nil {
					panic(errors.Unsupported(errors.ErrorDestructuring, "destructuring declarations", decl.Pos))
				}
				b := scope.Declare(decl.Name, kind, decl.Pos)
				b.InLoop = d.loops > 0
			}
		case *ast.FunctionDecl:
			scope.Declare(s.Func.Name, BindFunction, s.Pos)
		}
	}
}

func (d *discovery) function(f *ast.Function, expression bool) *Function {
	if f.Generator {
		panic(errors.Unsupported(errors.ErrorGenerator, "generator functions", f.Pos))
	}
	fn := d.prog.NewFunction(f.Name, d.fn.ID)
	fn.Expression = expression
	d.funcs[f] = fn
	d.reserve(f.Name)

	scope := d.newScope(d.scope, fn.ID)
	fn.Scope = scope
	d.scopes[f] = scope

	for _, p := range f.Params {
		switch {
		case p.Pattern != nil:
			panic(errors.Unsupported(errors.ErrorDestructuring, "destructuring parameters", p.Pos))
		case p.Rest:
			panic(errors.Unsupported(errors.ErrorSpread, "rest parameters", p.Pos))
		}
		d.reserve(p.Name)
		b := scope.Declare(p.Name, BindParam, p.Pos)
		b.Value = Local{Name: p.Name}
		b.EmitName = p.Name
		fn.Params = append(fn.Params, &Param{Name: p.Name})
	}

	d.hoist(f.Body, scope, true)

	if expression && f.Name != "" && scope.Names[f.Name] == nil {
		self := scope.Declare(f.Name, BindSelf, f.Pos)
		self.Value = Local{Name: f.Name}
		self.EmitName = f.Name
	}

	savedFn, savedScope, savedLoops := d.fn, d.scope, d.loops
	d.fn, d.scope, d.loops = fn, scope, 0
	for _, p := range f.Params {
		if p.Default != nil {
			d.expr(p.Default)
		}
	}
	d.statements(f.Body)
	d.fn, d.scope, d.loops = savedFn, savedScope, savedLoops

	if fn.UsesArguments {
		for _, p := range f.Params {
			d.pin(scope.Names[p.Name])
		}
	}
	for i, p := range f.Params {
		fn.Params[i].Pinned = scope.Names[p.Name].Pinned
	}
	return fn
}

func (d *discovery) enter(pos ast.Position) {
	d.depth++
	if d.depth > MaxDepth {
		panic(errors.NestingTooDeep(MaxDepth, pos))
	}
}

func (d *discovery) leave() { d.depth-- }

func (d *discovery) statements(list []ast.Stmt) {
	for _, s := range list {
		d.stmt(s)
	}
}

func (d *discovery) stmt(s ast.Stmt) {
	d.enter(s.NodePos())
	defer d.leave()

	switch s := s.(type) {
	case *ast.VarDecl:
		d.varDecl(s)

	case *ast.FunctionDecl:
		d.function(s.Func, false)

	case *ast.BlockStmt:
		scope := d.newScope(d.scope, NoFunc)
		d.scopes[s] = scope
		d.hoist(s.Body, scope, false)
		saved := d.scope
		d.scope = scope
		d.statements(s.Body)
		d.scope = saved

	case *ast.IfStmt:
		d.expr(s.Test)
		d.body(s.Then)
		if s.Else != nil {
			d.body(s.Else)
		}

	case *ast.ForStmt:
		saved := d.scope
		if decl, ok := s.Init.(*ast.VarDecl); ok && decl.Kind != ast.Var {
			head := d.newScope(d.scope, NoFunc)
			d.scopes[s] = head
			d.loops++
			d.hoist([]ast.Stmt{decl}, head, false)
			d.loops--
			d.scope = head
		}
		if s.Init != nil {
			d.stmt(s.Init)
		}
		d.loops++
		if s.Test != nil {
			d.expr(s.Test)
		}
		if s.Update != nil {
			d.expr(s.Update)
		}
		d.body(s.Body)
		d.loops--
		d.scope = saved

	case *ast.ForInStmt:
		d.expr(s.Right)
		saved := d.scope
		if s.Decl != nil {
			if len(s.Decl.Decls) != 1 || s.Decl.Decls[0].Init != nil {
				panic(errors.Syntax("for-in and for-of declarations take a single binding without initializer", s.Decl.Pos))
			}
			decl := s.Decl.Decls[0]
			if decl.Pattern != nil {
				panic(errors.Unsupported(errors.ErrorDestructuring, "destructuring declarations", decl.Pos))
			}
			if s.Decl.Kind != ast.Var {
				head := d.newScope(d.scope, NoFunc)
				d.scopes[s] = head
				d.loops++
				d.hoist([]ast.Stmt{s.Decl}, head, false)
				d.loops--
				d.scope = head
			}
			d.reference(decl.Name, decl.Pos, true)
		} else {
			switch t := s.Target.(type) {
			case *ast.Ident:
				d.reference(t.Name, t.Pos, true)
			case *ast.ArrayLit, *ast.ObjectLit:
				panic(errors.Unsupported(errors.ErrorDestructuring, "destructuring loop targets", s.Target.NodePos()))
			default:
				panic(errors.Unsupported(errors.ErrorAssignTarget, "member expressions as loop targets", s.Target.NodePos()))
			}
		}
		d.loops++
		d.body(s.Body)
		d.loops--
		d.scope = saved

	case *ast.WhileStmt:
		d.loops++
		d.expr(s.Test)
		d.body(s.Body)
		d.loops--

	case *ast.DoWhileStmt:
		d.loops++
		d.body(s.Body)
		d.expr(s.Test)
		d.loops--

	case *ast.ReturnStmt:
		if s.Arg != nil {
			d.expr(s.Arg)
		}

	case *ast.ThrowStmt:
		d.expr(s.Arg)

	case *ast.BreakStmt:
		if s.Label != "" {
			panic(errors.Unsupported(errors.ErrorLabel, "labeled break statements", s.Pos))
		}

	case *ast.ContinueStmt:
		if s.Label != "" {
			panic(errors.Unsupported(errors.ErrorLabel, "labeled continue statements", s.Pos))
		}

	case *ast.LabeledStmt:
		panic(errors.Unsupported(errors.ErrorLabel, "labeled statements", s.Pos))

	case *ast.ExprStmt:
		d.expr(s.X)

	case *ast.EmptyStmt:
	}
}

// body checks the single-statement body of an if or loop.
func (d *discovery) body(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.VarDecl:
		if s.Kind != ast.Var {
			panic(errors.Syntax("lexical declaration cannot appear in a single-statement context", s.Pos))
		}
	case *ast.FunctionDecl:
		panic(errors.Syntax("function declaration cannot appear in a single-statement context", s.Pos))
	}
	d.stmt(s)
}

func (d *discovery) varDecl(v *ast.VarDecl) {
	for _, decl := range v.Decls {
		if decl.Pattern != nil {
			panic(errors.Unsupported(errors.ErrorDestructuring, "destructuring declarations", decl.Pos))
		}
		if v.Kind == ast.Const && decl.Init == nil {
			panic(errors.Syntax(fmt.Sprintf("missing initializer in const declaration of '%s'", decl.Name), decl.Pos))
		}
		if decl.Init != nil {
			d.expr(decl.Init)
			d.reference(decl.Name, decl.Pos, true)
		} else {
			d.reserve(decl.Name)
		}
	}
}

func (d *discovery) expr(e ast.Expr) {
	d.enter(e.NodePos())
	defer d.leave()

	switch e := e.(type) {
	case *ast.Ident:
		d.reference(e.Name, e.Pos, false)

	case *ast.Literal, *ast.ThisExpr, *ast.RawExpr:

	case *ast.ArrayLit:
		for _, el := range e.Elems {
			if _, ok := el.(*ast.SpreadElement); ok {
				panic(errors.Unsupported(errors.ErrorSpread, "spread elements", el.NodePos()))
			}
			d.expr(el)
		}

	case *ast.ObjectLit:
		for _, p := range e.Props {
			if p.Spread {
				panic(errors.Unsupported(errors.ErrorSpread, "object spread", p.Pos))
			}
			if p.Computed {
				d.expr(p.KeyExpr)
			}
			d.expr(p.Value)
		}

	case *ast.SpreadElement:
		panic(errors.Unsupported(errors.ErrorSpread, "spread elements", e.Pos))

	case *ast.FuncExpr:
		d.function(e.Func, true)

	case *ast.UnaryExpr:
		d.expr(e.X)

	case *ast.UpdateExpr:
		d.target(e.X)

	case *ast.BinaryExpr:
		d.expr(e.Left)
		d.expr(e.Right)

	case *ast.LogicalExpr:
		d.expr(e.Left)
		d.expr(e.Right)

	case *ast.AssignExpr:
		d.target(e.Target)
		d.expr(e.Value)

	case *ast.CondExpr:
		d.expr(e.Test)
		d.expr(e.Then)
		d.expr(e.Else)

	case *ast.CallExpr:
		d.call(e.Callee, e.Args)

	case *ast.NewExpr:
		d.call(e.Callee, e.Args)

	case *ast.MemberExpr:
		d.expr(e.Object)
		if e.Computed {
			d.expr(e.Property)
		}

	case *ast.SeqExpr:
		for _, x := range e.List {
			d.expr(x)
		}
	}
}

func (d *discovery) call(callee ast.Expr, args []ast.Expr) {
	d.expr(callee)
	for _, a := range args {
		if _, ok := a.(*ast.SpreadElement); ok {
			panic(errors.Unsupported(errors.ErrorSpread, "spread arguments", a.NodePos()))
		}
		d.expr(a)
	}
}

func (d *discovery) target(e ast.Expr) {
	switch t := e.(type) {
	case *ast.Ident:
		d.reference(t.Name, t.Pos, true)
	case *ast.MemberExpr:
		d.expr(t)
	case *ast.ArrayLit, *ast.ObjectLit:
		panic(errors.Unsupported(errors.ErrorDestructuring, "destructuring assignments", e.NodePos()))
	default:
		panic(errors.InvalidAssignTarget(e.NodePos()))
	}
}

// reference resolves a name from the current scope. Locals of an enclosing
// function become pinned; writes to free or top-level names are recorded.
func (d *discovery) reference(name string, pos ast.Position, write bool) *Binding {
	d.reserve(name)
	b := d.scope.Resolve(name)
	if b == nil {
		if name == "arguments" && d.fn.ID != TopFunc {
			d.fn.UsesArguments = true
		}
		if write {
			d.prog.AssignedGlobals[name] = true
		}
		return nil
	}
	if b.Global {
		if write {
			d.prog.AssignedGlobals[name] = true
		}
		return b
	}
	if b.Scope.Owner() != d.fn.ID {
		d.pin(b)
	}
	return b
}

func (d *discovery) pin(b *Binding) {
	if b.Pinned {
		return
	}
	if b.Lexical() && b.InLoop {
		panic(errors.Unsupported(errors.ErrorLoopClosure, fmt.Sprintf("closures over '%s'", b.Name), b.Pos))
	}
	b.Pinned = true
}

func (d *discovery) reserve(name string) {
	if name != "" {
		d.prog.Reserved[name] = true
	}
}

// assignNames picks output names for the locals that keep a name in the
// output. Block-scoped names are always renamed since they are declared
// at function level.
func (d *discovery) assignNames() {
	for _, fn := range d.prog.Functions {
		claimed := map[string]bool{}
		claim := func(name string) string {
			if !claimed[name] {
				claimed[name] = true
				return name
			}
			return d.fresh(name, claimed)
		}

		for _, p := range fn.Params {
			claimed[p.Name] = true
		}
		for _, b := range fn.Scope.Bindings() {
			if b.Global || b.Kind == BindParam {
				claimed[b.Name] = true
				continue
			}
			if b.Kind == BindSelf {
				continue
			}
			if b.Pinned || b.Kind == BindFunction {
				b.EmitName = claim(b.Name)
			}
		}
		if self := fn.Scope.Names[fn.Name]; self != nil && self.Kind == BindSelf {
			self.EmitName = claim(fn.Name)
		}

		for _, scope := range d.blocks[fn.ID] {
			if scope == fn.Scope {
				continue
			}
			for _, b := range scope.Bindings() {
				if b.Pinned || b.Kind == BindFunction {
					b.EmitName = d.fresh(b.Name, claimed)
				}
			}
		}

		for _, scope := range d.blocks[fn.ID] {
			for _, b := range scope.Bindings() {
				if b.Pinned && !b.Global && b.Kind != BindParam && b.Kind != BindSelf && b.Kind != BindFunction {
					fn.Pinned = append(fn.Pinned, b.EmitName)
				}
			}
		}
	}
}

func (d *discovery) fresh(name string, claimed map[string]bool) string {
	for k := 1; ; k++ {
		candidate := fmt.Sprintf("%s$%d", name, k)
		if !claimed[candidate] && !d.prog.Reserved[candidate] {
			claimed[candidate] = true
			return candidate
		}
	}
}
