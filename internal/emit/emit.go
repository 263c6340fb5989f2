package emit

import (
	"github.com/tliron/commonlog"

	"jsopt/internal/ast"
	"jsopt/internal/errors"
	"jsopt/internal/ir"
)

// Emission turns the live statements of an optimized program back into a
// syntax tree. Temps the materialization pass left in registers become
// var declarations named $0, $1, ...; the others are substituted into the
// statement that reads them when that keeps every effect in place.

var log = commonlog.GetLogger("jsopt.emit")

// Emitter converts IR to a syntax tree
type Emitter struct {
	program *ir.Program
	names   map[ir.TempID]string
	fn      *funcState
}

// funcState is the emission state of the function being written.
type funcState struct {
	fn *ir.Function

	// pending holds single-use definitions waiting for their reader.
	pending []*ir.Assign
	index   map[ir.TempID]int
	subst   map[ir.TempID]bool

	// needDecl holds names this function declares by name; declared
	// those already written with var.
	needDecl map[string]bool
	declared map[string]bool
	order    []string

	phis map[ir.TempID]*ast.VarDecl
}

// NewEmitter creates a new emitter
func NewEmitter(program *ir.Program) *Emitter {
	return &Emitter{program: program, names: map[ir.TempID]string{}}
}

// Program emits a whole program. Broken invariants surface as a
// *errors.CompilerError.
func Program(program *ir.Program) (*ast.Program, error) {
	return NewEmitter(program).Emit()
}

// Emit emits the top-level function and everything it references.
func (e *Emitter) Emit() (result *ast.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(*errors.CompilerError)
			if !ok {
				panic(r)
			}
			result, err = nil, ce
		}
	}()

	e.program.ResetRegisters()
	top := e.program.Functions[ir.TopFunc]
	body := e.body(top, e.program.Globals)
	log.Debugf("emitted %d top-level statements", len(body))
	return &ast.Program{Body: body}, nil
}

// body emits a function body, declaring names that are never written
// with a var statement after the directives.
func (e *Emitter) body(fn *ir.Function, names []string) []ast.Stmt {
	saved := e.fn
	state := &funcState{
		fn:       fn,
		index:    map[ir.TempID]int{},
		subst:    map[ir.TempID]bool{},
		needDecl: map[string]bool{},
		declared: map[string]bool{},
		phis:     map[ir.TempID]*ast.VarDecl{},
	}
	for _, name := range names {
		if !state.needDecl[name] {
			state.needDecl[name] = true
			state.order = append(state.order, name)
		}
	}
	e.fn = state
	defer func() { e.fn = saved }()

	var out []ast.Stmt
	e.chain(fn.Entry(), &out)
	e.flush(&out)

	var rest []*ast.Declarator
	for _, name := range state.order {
		if !state.declared[name] {
			rest = append(rest, &ast.Declarator{Name: name})
		}
	}
	if len(rest) == 0 {
		return out
	}
	header := &ast.VarDecl{Kind: ast.Var, Decls: rest}
	i := 0
	for i < len(out) && directive(out[i]) {
		i++
	}
	return append(out[:i:i], append([]ast.Stmt{header}, out[i:]...)...)
}

func directive(s ast.Stmt) bool {
	x, ok := s.(*ast.ExprStmt)
	if !ok {
		return false
	}
	lit, ok := x.X.(*ast.Literal)
	return ok && lit.Kind == ast.StringLit
}

// function emits a nested function.
func (e *Emitter) function(id ir.FuncID, name string) *ast.Function {
	fn := e.program.Functions[id]
	params := make([]*ast.Param, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = &ast.Param{Name: p.Name}
	}
	return &ast.Function{Name: name, Params: params, Body: e.body(fn, fn.Pinned)}
}

// register returns the name of a temp kept in a register.
func (e *Emitter) register(t ir.TempID) string {
	if name, ok := e.names[t]; ok {
		return name
	}
	name := e.program.NextRegister()
	e.names[t] = name
	return name
}

// chain emits a block chain.
func (e *Emitter) chain(id ir.BlockID, out *[]ast.Stmt) {
	for id != ir.NoBlock {
		blk := e.program.Blocks[id]
		if blk.Dead {
			return
		}
		for _, s := range blk.Stmts {
			if s.Meta().Live {
				e.stmt(s, out)
			}
		}
		id = blk.Next
	}
}

// contained emits a block chain into a fresh list.
func (e *Emitter) contained(id ir.BlockID) []ast.Stmt {
	var out []ast.Stmt
	e.chain(id, &out)
	e.flush(&out)
	return out
}

func (e *Emitter) stmt(s ir.Stmt, out *[]ast.Stmt) {
	switch x := s.(type) {
	case *ir.Assign:
		e.assign(x, out)

	case *ir.ExprStmt:
		e.consume(out, x.X)
		*out = append(*out, ast.Expression(e.value(x.X)))
		e.done()

	case *ir.PropSet:
		e.consume(out, x.Object, x.Key, x.Value)
		target := e.member(x.Object, x.Key)
		value := e.expr(x.Value)
		*out = append(*out, ast.Expression(&ast.AssignExpr{Op: "=", Target: target, Value: value}))
		e.done()

	case *ir.Return:
		e.consume(out, x.Value)
		r := &ast.ReturnStmt{}
		if !ir.IsUndefined(x.Value) {
			r.Arg = e.expr(x.Value)
		}
		*out = append(*out, r)
		e.done()

	case *ir.Throw:
		e.consume(out, x.Value)
		*out = append(*out, &ast.ThrowStmt{Arg: e.expr(x.Value)})
		e.done()

	case *ir.If:
		e.ifStmt(x, out)

	case *ir.Loop:
		e.loop(x, out)

	case *ir.Break:
		e.flush(out)
		*out = append(*out, &ast.BreakStmt{})

	case *ir.Continue:
		e.flush(out)
		*out = append(*out, &ast.ContinueStmt{})

	case *ir.FuncDecl:
		e.flush(out)
		if x.Dst.IsNamed() {
			e.fn.declared[x.Name] = true
		}
		*out = append(*out, &ast.FunctionDecl{Func: e.function(x.Func, x.Name)})

	default:
		panic(errors.Internal("cannot emit %T", s))
	}
}

func (e *Emitter) assign(a *ir.Assign, out *[]ast.Stmt) {
	switch {
	case a.Dst.IsTemp():
		t := a.Dst.Temp
		if _, ok := a.Value.(*ir.Phi); ok {
			e.flush(out)
			decl := &ast.VarDecl{Kind: ast.Var, Decls: []*ast.Declarator{{Name: e.register(t)}}}
			e.fn.phis[t] = decl
			*out = append(*out, decl)
			return
		}
		switch a.Mat {
		case ir.MatInline:
			return
		case ir.MatPending:
			e.fn.index[t] = len(e.fn.pending)
			e.fn.pending = append(e.fn.pending, a)
			return
		}
		e.consume(out, a.Value)
		value := e.value(a.Value)
		*out = append(*out, declare(e.register(t), value))
		e.done()

	case a.Dst.IsPhi():
		t := a.Dst.Temp
		e.consume(out, a.Value)
		value := e.expr(a.Value)
		if decl := e.fn.phis[t]; decl != nil && len(*out) > 0 && (*out)[len(*out)-1] == ast.Stmt(decl) && decl.Decls[0].Init == nil {
			decl.Decls[0].Init = value
		} else {
			*out = append(*out, ast.Expression(&ast.AssignExpr{Op: "=", Target: ast.Name(e.register(t)), Value: value}))
		}
		e.done()

	default:
		name := a.Dst.Name
		e.consume(out, a.Value)
		value := e.expr(a.Value)
		if e.fn.needDecl[name] && !e.fn.declared[name] {
			e.fn.declared[name] = true
			*out = append(*out, declare(name, value))
		} else {
			*out = append(*out, ast.Expression(&ast.AssignExpr{Op: "=", Target: ast.Name(name), Value: value}))
		}
		e.done()
	}
}

func declare(name string, value ast.Expr) *ast.VarDecl {
	return &ast.VarDecl{Kind: ast.Var, Decls: []*ast.Declarator{{Name: name, Init: value}}}
}

func (e *Emitter) ifStmt(s *ir.If, out *[]ast.Stmt) {
	switch s.Known {
	case 1:
		e.flush(out)
		e.chain(s.Then, out)
		return
	case -1:
		e.flush(out)
		if s.Else != ir.NoBlock {
			e.chain(s.Else, out)
		}
		return
	}

	e.consume(out, s.Cond)
	cond := e.expr(s.Cond)
	silent := e.quiet(s.Cond)
	e.done()

	then := e.contained(s.Then)
	var els []ast.Stmt
	if s.Else != ir.NoBlock {
		els = e.contained(s.Else)
	}

	switch {
	case len(then) == 0 && len(els) == 0:
		if !silent {
			*out = append(*out, ast.Expression(cond))
		}
	case len(then) == 0:
		*out = append(*out, &ast.IfStmt{Test: negate(cond), Then: &ast.BlockStmt{Body: els}})
	default:
		stmt := &ast.IfStmt{Test: cond, Then: &ast.BlockStmt{Body: then}}
		switch {
		case len(els) == 1:
			if elseIf, ok := els[0].(*ast.IfStmt); ok {
				stmt.Else = elseIf
			} else {
				stmt.Else = &ast.BlockStmt{Body: els}
			}
		case len(els) > 1:
			stmt.Else = &ast.BlockStmt{Body: els}
		}
		*out = append(*out, stmt)
	}
}

// quiet reports whether evaluating an operand on its own can be skipped.
func (e *Emitter) quiet(x ir.Expr) bool {
	switch x := x.(type) {
	case ir.Literal, ir.This, ir.Arguments, ir.Local, ir.FuncRef:
		return true
	case ir.TempRef:
		if e.fn.subst[x.ID] {
			return false
		}
		switch def := e.program.Def(x.ID).(type) {
		case *ir.FuncDecl:
			return true
		case *ir.Assign:
			return def.Mat != ir.MatInline
		}
	}
	return false
}

// negate inverts a condition for use as an if test.
func negate(x ast.Expr) ast.Expr {
	if u, ok := x.(*ast.UnaryExpr); ok && u.Op == "!" {
		return u.X
	}
	return &ast.UnaryExpr{Op: "!", X: x}
}
