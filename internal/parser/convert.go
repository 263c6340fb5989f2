package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"

	"jsopt/internal/ast"
	"jsopt/internal/errors"
)

// converter turns the participle tree into ast nodes. The first
// malformed literal or misplaced word it meets is kept in err.
type converter struct {
	err error

	tokens []lexer.Token
	index  map[int]int
}

func (c *converter) fail(code, message string, pos lexer.Position) {
	if c.err != nil {
		return
	}
	ce := errors.NewCompileError(code, message, position(pos)).Build()
	c.err = &ce
}

func (c *converter) program(p *Program) (*ast.Program, error) {
	out := &ast.Program{Pos: position(p.Pos)}
	out.Body = c.statements(p.Statements)
	if c.err != nil {
		return nil, c.err
	}
	return out, nil
}

func (c *converter) statements(list []*Statement) []ast.Stmt {
	out := make([]ast.Stmt, 0, len(list))
	for i, s := range list {
		if i > 0 && list[i-1].Do == nil {
			c.separated(s)
		}
		out = append(out, c.statement(s))
	}
	return out
}

// separated checks that s starts on a new line when the statement in
// front of it did not end with ";" or "}".
func (c *converter) separated(s *Statement) {
	i, ok := c.index[s.Pos.Offset]
	if !ok || i == 0 {
		return
	}
	prev := c.tokens[i-1]
	if isPunct(prev, ";") || isPunct(prev, "}") || lineBreakBetween(prev, c.tokens[i]) {
		return
	}
	c.fail(errors.ErrorSyntax, "expected \";\" or a line break before this statement", s.Pos)
}

// name checks that an identifier is not a reserved word.
func (c *converter) name(name string, pos lexer.Position) string {
	if reserved[name] {
		c.fail(errors.ErrorSyntax, fmt.Sprintf("'%s' is a reserved word", name), pos)
	}
	return name
}

func (c *converter) statement(s *Statement) ast.Stmt {
	pos := position(s.Pos)
	switch {
	case s.Function != nil:
		return &ast.FunctionDecl{Pos: pos, Func: c.function(s.Function)}
	case s.Var != nil:
		return c.varDecl(s.Var.Decl)
	case s.If != nil:
		out := &ast.IfStmt{Pos: pos, Test: c.expression(s.If.Test), Then: c.statement(s.If.Then)}
		if s.If.Else != nil {
			out.Else = c.statement(s.If.Else)
		}
		return out
	case s.ForIn != nil:
		f := s.ForIn
		out := &ast.ForInStmt{
			Pos:   pos,
			Of:    f.Op == "of",
			Right: c.expression(f.Right),
			Body:  c.statement(f.Body),
		}
		if f.Kind != "" {
			out.Decl = &ast.VarDecl{
				Pos:   pos,
				Kind:  ast.VarKind(f.Kind),
				Decls: []*ast.Declarator{{Pos: pos, Name: c.name(f.Name, s.Pos)}},
			}
		} else {
			out.Target = &ast.Ident{Pos: pos, Name: c.name(f.Name, s.Pos)}
		}
		return out
	case s.For != nil:
		f := s.For
		out := &ast.ForStmt{Pos: pos, Body: c.statement(f.Body)}
		if f.Init != nil {
			if f.Init.Var != nil {
				out.Init = c.varDecl(f.Init.Var)
			} else {
				out.Init = &ast.ExprStmt{Pos: pos, X: c.expression(f.Init.Expr)}
			}
		}
		if f.Test != nil {
			out.Test = c.expression(f.Test)
		}
		if f.Update != nil {
			out.Update = c.expression(f.Update)
		}
		return out
	case s.While != nil:
		return &ast.WhileStmt{Pos: pos, Test: c.expression(s.While.Test), Body: c.statement(s.While.Body)}
	case s.Do != nil:
		return &ast.DoWhileStmt{Pos: pos, Body: c.statement(s.Do.Body), Test: c.expression(s.Do.Test)}
	case s.Return != nil:
		out := &ast.ReturnStmt{Pos: pos}
		if s.Return.Value != nil {
			out.Arg = c.expression(s.Return.Value)
		}
		return out
	case s.Break != nil:
		out := &ast.BreakStmt{Pos: pos}
		if s.Break.Label != nil {
			out.Label = c.name(*s.Break.Label, s.Pos)
		}
		return out
	case s.Continue != nil:
		out := &ast.ContinueStmt{Pos: pos}
		if s.Continue.Label != nil {
			out.Label = c.name(*s.Continue.Label, s.Pos)
		}
		return out
	case s.Throw != nil:
		return &ast.ThrowStmt{Pos: pos, Arg: c.expression(s.Throw.Value)}
	case s.Labeled != nil:
		return &ast.LabeledStmt{Pos: pos, Label: c.name(s.Labeled.Label, s.Pos), Body: c.statement(s.Labeled.Body)}
	case s.Block != nil:
		return &ast.BlockStmt{Pos: pos, Body: c.statements(s.Block.Statements)}
	case s.Expr != nil:
		return &ast.ExprStmt{Pos: pos, X: c.expression(s.Expr.Expr)}
	default:
		return &ast.EmptyStmt{Pos: pos}
	}
}

func (c *converter) varDecl(d *VarDecl) *ast.VarDecl {
	out := &ast.VarDecl{Pos: position(d.Pos), Kind: ast.VarKind(d.Kind)}
	for _, decl := range d.Decls {
		name, pattern := c.bindingTarget(decl.Target)
		item := &ast.Declarator{Pos: position(decl.Pos), Name: name, Pattern: pattern}
		if decl.Init != nil {
			item.Init = c.assignment(decl.Init)
		}
		out.Decls = append(out.Decls, item)
	}
	return out
}

func (c *converter) bindingTarget(t *BindingTarget) (string, ast.Expr) {
	switch {
	case t.Name != nil:
		return c.name(*t.Name, t.Pos), nil
	case t.Array != nil:
		return "", c.arrayLit(t.Array)
	default:
		return "", c.objectLit(t.Object)
	}
}

func (c *converter) function(f *FunctionLit) *ast.Function {
	out := &ast.Function{Pos: position(f.Pos), Generator: f.Generator}
	if f.Name != nil {
		out.Name = c.name(*f.Name, f.Pos)
	}
	for _, p := range f.Params {
		name, pattern := c.bindingTarget(p.Target)
		param := &ast.Param{Pos: position(p.Pos), Name: name, Pattern: pattern, Rest: p.Rest}
		if p.Default != nil {
			param.Default = c.assignment(p.Default)
		}
		out.Params = append(out.Params, param)
	}
	out.Body = c.statements(f.Body)
	return out
}

func (c *converter) expression(e *Expression) ast.Expr {
	if len(e.List) == 1 {
		return c.assignment(e.List[0])
	}
	out := &ast.SeqExpr{Pos: position(e.Pos)}
	for _, a := range e.List {
		out.List = append(out.List, c.assignment(a))
	}
	return out
}

func (c *converter) assignment(a *Assignment) ast.Expr {
	target := c.conditional(a.Target)
	if a.Tail == nil {
		return target
	}
	return &ast.AssignExpr{
		Pos:    position(a.Pos),
		Op:     a.Tail.Op,
		Target: target,
		Value:  c.assignment(a.Tail.Value),
	}
}

func (c *converter) conditional(e *Conditional) ast.Expr {
	test := c.binary(e.Test)
	if e.Tail == nil {
		return test
	}
	return &ast.CondExpr{
		Pos:  position(e.Pos),
		Test: test,
		Then: c.assignment(e.Tail.Then),
		Else: c.assignment(e.Tail.Else),
	}
}

// binary applies operator precedence to the flat operator chain using
// precedence climbing; "**" is right-associative.
func (c *converter) binary(b *Binary) ast.Expr {
	operands := []ast.Expr{c.unary(b.Left)}
	for _, op := range b.Ops {
		operands = append(operands, c.unary(op.Right))
	}
	pos := 0
	var climb func(lhs ast.Expr, min int) ast.Expr
	climb = func(lhs ast.Expr, min int) ast.Expr {
		for pos < len(b.Ops) {
			op := b.Ops[pos]
			prec := ast.BinaryPrecedence(op.Operator)
			if prec < min {
				break
			}
			pos++
			rhs := operands[pos]
			for pos < len(b.Ops) {
				next := ast.BinaryPrecedence(b.Ops[pos].Operator)
				if next > prec || next == prec && b.Ops[pos].Operator == "**" {
					rhs = climb(rhs, next)
					continue
				}
				break
			}
			lhs = combine(op, lhs, rhs)
		}
		return lhs
	}
	return climb(operands[0], 0)
}

func combine(op *BinaryOp, left, right ast.Expr) ast.Expr {
	pos := position(op.Pos)
	switch op.Operator {
	case "&&", "||", "??":
		return &ast.LogicalExpr{Pos: pos, Op: op.Operator, Left: left, Right: right}
	default:
		return &ast.BinaryExpr{Pos: pos, Op: op.Operator, Left: left, Right: right}
	}
}

func (c *converter) unary(u *Unary) ast.Expr {
	if u.Prefix != nil {
		operand := c.unary(u.Prefix.Operand)
		pos := position(u.Prefix.Pos)
		if u.Prefix.Op == "++" || u.Prefix.Op == "--" {
			return &ast.UpdateExpr{Pos: pos, Op: u.Prefix.Op, Prefix: true, X: operand}
		}
		return &ast.UnaryExpr{Pos: pos, Op: u.Prefix.Op, X: operand}
	}
	x := c.chain(u.Postfix.Chain)
	if u.Postfix.Update != "" {
		return &ast.UpdateExpr{Pos: position(u.Postfix.Pos), Op: u.Postfix.Update, X: x}
	}
	return x
}

func (c *converter) chain(ch *CallChain) ast.Expr {
	x := c.chainHead(ch.Head)
	for _, s := range ch.Suffixes {
		if s.Member != nil {
			x = c.member(x, s.Member)
			continue
		}
		x = &ast.CallExpr{Pos: position(s.Call.Pos), Callee: x, Args: c.arguments(s.Call)}
	}
	return x
}

func (c *converter) chainHead(h *ChainHead) ast.Expr {
	if h.Primary != nil {
		return c.primary(h.Primary)
	}
	n := h.New
	callee := c.chainHead(n.Callee)
	for _, m := range n.Members {
		callee = c.member(callee, m)
	}
	out := &ast.NewExpr{Pos: position(n.Pos), Callee: callee}
	if n.Args != nil {
		out.Args = c.arguments(n.Args)
	} else {
		out.Args = []ast.Expr{}
	}
	return out
}

func (c *converter) member(object ast.Expr, m *MemberSuffix) ast.Expr {
	pos := position(m.Pos)
	if m.Dot != nil {
		return &ast.MemberExpr{Pos: pos, Object: object, Name: *m.Dot}
	}
	return &ast.MemberExpr{Pos: pos, Object: object, Property: c.expression(m.Index), Computed: true}
}

func (c *converter) arguments(a *Arguments) []ast.Expr {
	out := make([]ast.Expr, 0, len(a.Args))
	for _, arg := range a.Args {
		out = append(out, c.argument(arg))
	}
	return out
}

func (c *converter) argument(a *Argument) ast.Expr {
	value := c.assignment(a.Value)
	if a.Spread {
		return &ast.SpreadElement{Pos: position(a.Pos), Arg: value}
	}
	return value
}

func (c *converter) primary(p *Primary) ast.Expr {
	pos := position(p.Pos)
	switch {
	case p.Function != nil:
		return &ast.FuncExpr{Pos: pos, Func: c.function(p.Function)}
	case p.Array != nil:
		return c.arrayLit(p.Array)
	case p.Object != nil:
		return c.objectLit(p.Object)
	case p.Number != nil:
		v, ok := ast.ParseNumber(*p.Number)
		if !ok {
			c.fail(errors.ErrorSyntax, "malformed number literal "+*p.Number, p.Pos)
		}
		return &ast.Literal{Pos: pos, Kind: ast.NumberLit, Num: v}
	case p.String != nil:
		return &ast.Literal{Pos: pos, Kind: ast.StringLit, Str: c.unquote(*p.String, p.Pos)}
	case p.Bool != nil:
		return &ast.Literal{Pos: pos, Kind: ast.BoolLit, Bool: *p.Bool == "true"}
	case p.Null:
		return &ast.Literal{Pos: pos, Kind: ast.NullLit}
	case p.This:
		return &ast.ThisExpr{Pos: pos}
	case p.Ident != nil:
		return &ast.Ident{Pos: pos, Name: c.name(*p.Ident, p.Pos)}
	default:
		return c.expression(p.Paren)
	}
}

func (c *converter) arrayLit(a *ArrayLit) *ast.ArrayLit {
	out := &ast.ArrayLit{Pos: position(a.Pos), Elems: []ast.Expr{}}
	for _, el := range a.Elems {
		out.Elems = append(out.Elems, c.argument(el))
	}
	return out
}

func (c *converter) objectLit(o *ObjectLit) *ast.ObjectLit {
	out := &ast.ObjectLit{Pos: position(o.Pos)}
	for _, p := range o.Props {
		pos := position(p.Pos)
		if p.Spread != nil {
			out.Props = append(out.Props, &ast.Property{Pos: pos, Spread: true, Value: c.assignment(p.Spread)})
			continue
		}
		prop := &ast.Property{Pos: pos}
		key := p.Pair.Key
		switch {
		case key.Computed != nil:
			prop.Computed = true
			prop.KeyExpr = c.assignment(key.Computed)
		case key.Name != nil:
			prop.Key = *key.Name
		case key.String != nil:
			prop.Key = c.unquote(*key.String, key.Pos)
		default:
			v, ok := ast.ParseNumber(*key.Number)
			if !ok {
				c.fail(errors.ErrorSyntax, "malformed number literal "+*key.Number, key.Pos)
			}
			prop.Key = ast.FormatNumber(v)
		}
		if p.Pair.Value != nil {
			prop.Value = c.assignment(p.Pair.Value)
		} else if key.Name != nil {
			prop.Value = &ast.Ident{Pos: pos, Name: c.name(*key.Name, key.Pos)}
		} else {
			c.fail(errors.ErrorSyntax, "object property is missing a value", key.Pos)
		}
		out.Props = append(out.Props, prop)
	}
	return out
}

// unquote decodes a single- or double-quoted string token.
func (c *converter) unquote(tok string, pos lexer.Position) string {
	body := tok[1 : len(tok)-1]
	if !strings.ContainsRune(body, '\\') {
		return body
	}
	var b strings.Builder
	for i := 0; i < len(body); {
		r, size := utf8.DecodeRuneInString(body[i:])
		if r != '\\' {
			b.WriteRune(r)
			i += size
			continue
		}
		i++
		if i >= len(body) {
			break
		}
		esc := body[i]
		i++
		switch esc {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\n':
		case 'x':
			if i+2 > len(body) {
				c.fail(errors.ErrorSyntax, "malformed \\x escape", pos)
				return body
			}
			n, err := strconv.ParseUint(body[i:i+2], 16, 8)
			if err != nil {
				c.fail(errors.ErrorSyntax, "malformed \\x escape", pos)
				return body
			}
			b.WriteRune(rune(n))
			i += 2
		case 'u':
			hex := ""
			if i < len(body) && body[i] == '{' {
				end := strings.IndexByte(body[i:], '}')
				if end < 0 {
					c.fail(errors.ErrorSyntax, "malformed \\u escape", pos)
					return body
				}
				hex = body[i+1 : i+end]
				i += end + 1
			} else if i+4 <= len(body) {
				hex = body[i : i+4]
				i += 4
			}
			n, err := strconv.ParseUint(hex, 16, 32)
			if err != nil {
				c.fail(errors.ErrorSyntax, "malformed \\u escape", pos)
				return body
			}
			b.WriteRune(rune(n))
		default:
			b.WriteByte(esc)
		}
	}
	return b.String()
}
