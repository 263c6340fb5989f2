package emit

import (
	"jsopt/internal/ast"
	"jsopt/internal/errors"
	"jsopt/internal/ir"
)

func (e *Emitter) loop(l *ir.Loop, out *[]ast.Stmt) {
	if l.Eliminated {
		return
	}
	e.flush(out)

	switch l.Kind {
	case ir.While:
		test := e.test(l, out)
		if _, ok := test.(*ast.Literal); ok && l.Infinite {
			*out = append(*out, &ast.ForStmt{Body: &ast.BlockStmt{Body: e.contained(l.Body)}})
			return
		}
		*out = append(*out, &ast.WhileStmt{Test: test, Body: &ast.BlockStmt{Body: e.contained(l.Body)}})

	case ir.DoWhile:
		if l.Once {
			e.chain(l.Body, out)
			e.flush(out)
			if !e.program.Blocks[l.Test].Dead {
				e.chain(l.Test, out)
				e.consume(out, l.Cond)
				if !e.quiet(l.Cond) {
					*out = append(*out, ast.Expression(e.expr(l.Cond)))
				}
				e.done()
			}
			return
		}
		body := e.contained(l.Body)
		var test ast.Expr = ast.Bool(false)
		if !e.program.Blocks[l.Test].Dead {
			test = e.test(l, out)
		}
		*out = append(*out, &ast.DoWhileStmt{Body: &ast.BlockStmt{Body: body}, Test: test})

	case ir.ForIn, ir.ForOf:
		e.consume(out, l.Object)
		right := e.expr(l.Object)
		e.done()

		stmt := &ast.ForInStmt{Of: l.Kind == ir.ForOf, Right: right}
		switch {
		case l.Each.IsPhi():
			stmt.Target = ast.Name(e.register(l.Each.Temp))
		case e.fn.needDecl[l.Each.Name] && !e.fn.declared[l.Each.Name]:
			e.fn.declared[l.Each.Name] = true
			stmt.Decl = &ast.VarDecl{Kind: ast.Var, Decls: []*ast.Declarator{{Name: l.Each.Name}}}
		default:
			stmt.Target = ast.Name(l.Each.Name)
		}
		stmt.Body = &ast.BlockStmt{Body: e.contained(l.Body)}
		*out = append(*out, stmt)

	default:
		panic(errors.Internal("unknown loop kind %s", l.Kind))
	}
}

// test emits the test chain of a loop as one expression. Statements in
// the chain become a comma sequence ahead of the condition; the names
// they declare are declared before the loop.
func (e *Emitter) test(l *ir.Loop, out *[]ast.Stmt) ast.Expr {
	var stmts []ast.Stmt
	e.chain(l.Test, &stmts)
	e.consume(&stmts, l.Cond)
	cond := e.expr(l.Cond)
	e.done()

	if len(stmts) == 0 {
		return cond
	}
	seq := &sequence{}
	for _, s := range stmts {
		seq.stmt(s)
	}
	if len(seq.names) > 0 {
		decls := make([]*ast.Declarator, len(seq.names))
		for i, name := range seq.names {
			decls[i] = &ast.Declarator{Name: name}
		}
		*out = append(*out, &ast.VarDecl{Kind: ast.Var, Decls: decls})
	}
	return &ast.SeqExpr{List: append(seq.list, cond)}
}

// sequence converts statements to comma-separated expressions.
type sequence struct {
	list  []ast.Expr
	names []string
}

func (q *sequence) stmt(s ast.Stmt) {
	if x := q.expr(s); x != nil {
		q.list = append(q.list, x)
	}
}

func (q *sequence) expr(s ast.Stmt) ast.Expr {
	switch x := s.(type) {
	case *ast.ExprStmt:
		return x.X
	case *ast.VarDecl:
		var list []ast.Expr
		for _, d := range x.Decls {
			q.names = append(q.names, d.Name)
			if d.Init != nil {
				list = append(list, &ast.AssignExpr{Op: "=", Target: ast.Name(d.Name), Value: d.Init})
			}
		}
		switch len(list) {
		case 0:
			return nil
		case 1:
			return list[0]
		}
		return &ast.SeqExpr{List: list}
	case *ast.IfStmt:
		return &ast.CondExpr{Test: x.Test, Then: q.arm(x.Then), Else: q.arm(x.Else)}
	case *ast.BlockStmt:
		return q.arm(x)
	}
	panic(errors.Internal("%s cannot appear in a loop test", s.NodeType()))
}

func (q *sequence) arm(s ast.Stmt) ast.Expr {
	if s == nil {
		return ast.Undefined()
	}
	block, ok := s.(*ast.BlockStmt)
	if !ok {
		if x := q.expr(s); x != nil {
			return x
		}
		return ast.Undefined()
	}
	var list []ast.Expr
	for _, inner := range block.Body {
		if x := q.expr(inner); x != nil {
			list = append(list, x)
		}
	}
	switch len(list) {
	case 0:
		return ast.Undefined()
	case 1:
		return list[0]
	}
	return &ast.SeqExpr{List: list}
}
