package ast

// Inspect traverses the tree rooted at node in depth-first order, calling
// fn for each node. When fn returns false the node's children are skipped.
// Function bodies are entered like any other child.
func Inspect(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	switch n := node.(type) {
	case *Program:
		inspectStmts(n.Body, fn)
	case *Function:
		for _, p := range n.Params {
			Inspect(p, fn)
		}
		inspectStmts(n.Body, fn)
	case *Param:
		inspectExpr(n.Pattern, fn)
		inspectExpr(n.Default, fn)
	case *VarDecl:
		for _, d := range n.Decls {
			Inspect(d, fn)
		}
	case *Declarator:
		inspectExpr(n.Pattern, fn)
		inspectExpr(n.Init, fn)
	case *FunctionDecl:
		Inspect(n.Func, fn)
	case *BlockStmt:
		inspectStmts(n.Body, fn)
	case *IfStmt:
		inspectExpr(n.Test, fn)
		inspectStmt(n.Then, fn)
		inspectStmt(n.Else, fn)
	case *ForStmt:
		inspectStmt(n.Init, fn)
		inspectExpr(n.Test, fn)
		inspectExpr(n.Update, fn)
		inspectStmt(n.Body, fn)
	case *ForInStmt:
		if n.Decl != nil {
			Inspect(n.Decl, fn)
		}
		inspectExpr(n.Target, fn)
		inspectExpr(n.Right, fn)
		inspectStmt(n.Body, fn)
	case *WhileStmt:
		inspectExpr(n.Test, fn)
		inspectStmt(n.Body, fn)
	case *DoWhileStmt:
		inspectStmt(n.Body, fn)
		inspectExpr(n.Test, fn)
	case *ReturnStmt:
		inspectExpr(n.Arg, fn)
	case *ThrowStmt:
		inspectExpr(n.Arg, fn)
	case *ExprStmt:
		inspectExpr(n.X, fn)
	case *LabeledStmt:
		inspectStmt(n.Body, fn)
	case *ArrayLit:
		for _, e := range n.Elems {
			inspectExpr(e, fn)
		}
	case *ObjectLit:
		for _, p := range n.Props {
			Inspect(p, fn)
		}
	case *Property:
		inspectExpr(n.KeyExpr, fn)
		inspectExpr(n.Value, fn)
	case *SpreadElement:
		inspectExpr(n.Arg, fn)
	case *FuncExpr:
		Inspect(n.Func, fn)
	case *UnaryExpr:
		inspectExpr(n.X, fn)
	case *UpdateExpr:
		inspectExpr(n.X, fn)
	case *BinaryExpr:
		inspectExpr(n.Left, fn)
		inspectExpr(n.Right, fn)
	case *LogicalExpr:
		inspectExpr(n.Left, fn)
		inspectExpr(n.Right, fn)
	case *AssignExpr:
		inspectExpr(n.Target, fn)
		inspectExpr(n.Value, fn)
	case *CondExpr:
		inspectExpr(n.Test, fn)
		inspectExpr(n.Then, fn)
		inspectExpr(n.Else, fn)
	case *CallExpr:
		inspectExpr(n.Callee, fn)
		for _, a := range n.Args {
			inspectExpr(a, fn)
		}
	case *NewExpr:
		inspectExpr(n.Callee, fn)
		for _, a := range n.Args {
			inspectExpr(a, fn)
		}
	case *MemberExpr:
		inspectExpr(n.Object, fn)
		inspectExpr(n.Property, fn)
	case *SeqExpr:
		for _, e := range n.List {
			inspectExpr(e, fn)
		}
	}
}

// typed nil interfaces must not reach Inspect
func inspectExpr(e Expr, fn func(Node) bool) {
	if e != nil {
		Inspect(e, fn)
	}
}

func inspectStmt(s Stmt, fn func(Node) bool) {
	if s != nil {
		Inspect(s, fn)
	}
}

func inspectStmts(list []Stmt, fn func(Node) bool) {
	for _, s := range list {
		Inspect(s, fn)
	}
}
