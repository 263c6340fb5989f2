package ast

import (
	"fmt"
	"strings"
)

// PrintOptions controls the layout of printed source.
type PrintOptions struct {
	// Compact drops all optional whitespace and newlines.
	Compact bool
	// Indent is the per-level indentation in pretty mode, two spaces
	// when empty.
	Indent string
}

// Operator precedence, higher binds tighter.
const (
	precSequence = iota + 1
	precAssign
	precConditional
	precNullish
	precOr
	precAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precExponent
	precUnary
	precUpdate
	precCall
	precMember
	precPrimary
)

var binaryPrecedence = map[string]int{
	"??": precNullish, "||": precOr, "&&": precAnd,
	"|": precBitOr, "^": precBitXor, "&": precBitAnd,
	"==": precEquality, "!=": precEquality, "===": precEquality, "!==": precEquality,
	"<": precRelational, ">": precRelational, "<=": precRelational, ">=": precRelational,
	"in": precRelational, "instanceof": precRelational,
	"<<": precShift, ">>": precShift, ">>>": precShift,
	"+": precAdditive, "-": precAdditive,
	"*": precMultiplicative, "/": precMultiplicative, "%": precMultiplicative,
	"**": precExponent,
}

// BinaryPrecedence returns the binding power of a binary or logical
// operator, or 0 for unknown operators.
func BinaryPrecedence(op string) int {
	return binaryPrecedence[op]
}

// Print renders a program, statement or expression as source text.
func Print(node Node, opts PrintOptions) string {
	p := &printer{opts: opts}
	if p.opts.Indent == "" {
		p.opts.Indent = "  "
	}
	switch n := node.(type) {
	case *Program:
		p.stmts(n.Body)
	case Stmt:
		p.stmt(n)
	case Expr:
		p.expr(n, precSequence)
	case *Function:
		p.function(n)
	default:
		panic(fmt.Sprintf("ast: cannot print %T", node))
	}
	return strings.TrimRight(p.out.String(), "\n")
}

type printer struct {
	opts   PrintOptions
	out    strings.Builder
	indent int
	last   byte
}

func (p *printer) raw(s string) {
	if s == "" {
		return
	}
	p.out.WriteString(s)
	p.last = s[len(s)-1]
}

// word writes s, separating it from the previous output when the two
// would otherwise lex as one token.
func (p *printer) word(s string) {
	if s == "" {
		return
	}
	if needsSpace(p.last, s[0]) {
		p.raw(" ")
	}
	p.raw(s)
}

func needsSpace(prev, next byte) bool {
	if isWordByte(prev) && isWordByte(next) {
		return true
	}
	if (prev == '+' || prev == '-') && prev == next {
		return true
	}
	return false
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c >= 0x80
}

func (p *printer) space() {
	if !p.opts.Compact {
		p.raw(" ")
	}
}

func (p *printer) newline() {
	if p.opts.Compact {
		return
	}
	p.raw("\n")
	for i := 0; i < p.indent; i++ {
		p.raw(p.opts.Indent)
	}
}

func (p *printer) stmts(list []Stmt) {
	for i, s := range list {
		if i > 0 {
			p.newline()
		}
		p.stmt(s)
	}
}

func (p *printer) body(list []Stmt) {
	p.raw("{")
	if len(list) > 0 {
		p.indent++
		p.newline()
		p.stmts(list)
		p.indent--
		p.newline()
	}
	p.raw("}")
}

// block prints a statement in braces, unwrapping an existing block.
func (p *printer) block(s Stmt) {
	if b, ok := s.(*BlockStmt); ok {
		p.body(b.Body)
		return
	}
	if s == nil {
		p.body(nil)
		return
	}
	p.body([]Stmt{s})
}

func (p *printer) stmt(s Stmt) {
	switch s := s.(type) {
	case *VarDecl:
		p.varDecl(s)
		p.raw(";")
	case *FunctionDecl:
		p.function(s.Func)
	case *BlockStmt:
		p.body(s.Body)
	case *IfStmt:
		p.word("if")
		p.space()
		p.raw("(")
		p.expr(s.Test, precSequence)
		p.raw(")")
		p.space()
		p.block(s.Then)
		if s.Else != nil {
			p.space()
			p.word("else")
			if elseIf, ok := s.Else.(*IfStmt); ok {
				p.raw(" ")
				p.stmt(elseIf)
			} else {
				p.space()
				p.block(s.Else)
			}
		}
	case *ForStmt:
		p.word("for")
		p.space()
		p.raw("(")
		switch init := s.Init.(type) {
		case *VarDecl:
			p.varDecl(init)
		case *ExprStmt:
			p.expr(init.X, precSequence)
		}
		p.raw(";")
		if s.Test != nil {
			p.space()
			p.expr(s.Test, precSequence)
		}
		p.raw(";")
		if s.Update != nil {
			p.space()
			p.expr(s.Update, precSequence)
		}
		p.raw(")")
		p.space()
		p.block(s.Body)
	case *ForInStmt:
		p.word("for")
		p.space()
		p.raw("(")
		if s.Decl != nil {
			p.varDecl(s.Decl)
		} else {
			p.expr(s.Target, precCall)
		}
		if s.Of {
			p.word("of")
		} else {
			p.word("in")
		}
		p.raw(" ")
		p.expr(s.Right, precAssign)
		p.raw(")")
		p.space()
		p.block(s.Body)
	case *WhileStmt:
		p.word("while")
		p.space()
		p.raw("(")
		p.expr(s.Test, precSequence)
		p.raw(")")
		p.space()
		p.block(s.Body)
	case *DoWhileStmt:
		p.word("do")
		p.space()
		p.block(s.Body)
		p.space()
		p.word("while")
		p.space()
		p.raw("(")
		p.expr(s.Test, precSequence)
		p.raw(");")
	case *BreakStmt:
		p.word("break")
		if s.Label != "" {
			p.raw(" ")
			p.word(s.Label)
		}
		p.raw(";")
	case *ContinueStmt:
		p.word("continue")
		if s.Label != "" {
			p.raw(" ")
			p.word(s.Label)
		}
		p.raw(";")
	case *ReturnStmt:
		p.word("return")
		if s.Arg != nil {
			p.raw(" ")
			p.expr(s.Arg, precSequence)
		}
		p.raw(";")
	case *ThrowStmt:
		p.word("throw")
		p.raw(" ")
		p.expr(s.Arg, precSequence)
		p.raw(";")
	case *ExprStmt:
		if startsAmbiguously(s.X) {
			p.raw("(")
			p.expr(s.X, precSequence)
			p.raw(")")
		} else {
			p.expr(s.X, precSequence)
		}
		p.raw(";")
	case *EmptyStmt:
		p.raw(";")
	case *LabeledStmt:
		p.word(s.Label)
		p.raw(":")
		p.space()
		p.stmt(s.Body)
	default:
		panic(fmt.Sprintf("ast: unknown statement %T", s))
	}
}

func (p *printer) varDecl(d *VarDecl) {
	p.word(string(d.Kind))
	p.raw(" ")
	for i, decl := range d.Decls {
		if i > 0 {
			p.raw(",")
			p.space()
		}
		if decl.Pattern != nil {
			p.expr(decl.Pattern, precAssign)
		} else {
			p.word(decl.Name)
		}
		if decl.Init != nil {
			p.space()
			p.raw("=")
			p.space()
			p.expr(decl.Init, precAssign)
		}
	}
}

func (p *printer) function(f *Function) {
	p.word("function")
	if f.Generator {
		p.raw("*")
	}
	if f.Name != "" {
		p.raw(" ")
		p.word(f.Name)
	}
	p.raw("(")
	for i, param := range f.Params {
		if i > 0 {
			p.raw(",")
			p.space()
		}
		if param.Rest {
			p.raw("...")
		}
		if param.Pattern != nil {
			p.expr(param.Pattern, precAssign)
		} else {
			p.word(param.Name)
		}
		if param.Default != nil {
			p.space()
			p.raw("=")
			p.space()
			p.expr(param.Default, precAssign)
		}
	}
	p.raw(")")
	p.space()
	p.body(f.Body)
}

// startsAmbiguously reports whether an expression statement would begin
// with "function" or "{" and so be read as a declaration or block.
func startsAmbiguously(e Expr) bool {
	for {
		switch n := e.(type) {
		case *FuncExpr, *ObjectLit:
			return true
		case *BinaryExpr:
			e = n.Left
		case *LogicalExpr:
			e = n.Left
		case *AssignExpr:
			e = n.Target
		case *CondExpr:
			e = n.Test
		case *CallExpr:
			e = n.Callee
		case *MemberExpr:
			e = n.Object
		case *SeqExpr:
			if len(n.List) == 0 {
				return false
			}
			e = n.List[0]
		case *UpdateExpr:
			if n.Prefix {
				return false
			}
			e = n.X
		default:
			return false
		}
	}
}

func precedenceOf(e Expr) int {
	switch n := e.(type) {
	case *SeqExpr:
		return precSequence
	case *AssignExpr:
		return precAssign
	case *CondExpr:
		return precConditional
	case *BinaryExpr:
		return binaryPrecedence[n.Op]
	case *LogicalExpr:
		return binaryPrecedence[n.Op]
	case *UnaryExpr:
		return precUnary
	case *UpdateExpr:
		return precUpdate
	case *CallExpr:
		return precCall
	case *NewExpr:
		if n.Args == nil {
			return precMember
		}
		return precCall
	case *MemberExpr:
		return precMember
	case *Literal:
		if n.Kind == UndefinedLit || n.Kind == NumberLit && (n.Num < 0 || FormatNumber(n.Num)[0] == '-') {
			return precUnary
		}
		return precPrimary
	case *RawExpr:
		return precSequence
	default:
		return precPrimary
	}
}

func (p *printer) expr(e Expr, min int) {
	if precedenceOf(e) < min {
		p.raw("(")
		p.exprInner(e)
		p.raw(")")
		return
	}
	p.exprInner(e)
}

func (p *printer) exprInner(e Expr) {
	switch n := e.(type) {
	case *Ident:
		p.word(n.Name)
	case *Literal:
		p.literal(n)
	case *ThisExpr:
		p.word("this")
	case *RawExpr:
		p.word(n.Text)
	case *ArrayLit:
		p.raw("[")
		for i, el := range n.Elems {
			if i > 0 {
				p.raw(",")
				p.space()
			}
			p.expr(el, precAssign)
		}
		p.raw("]")
	case *ObjectLit:
		p.object(n)
	case *SpreadElement:
		p.raw("...")
		p.expr(n.Arg, precAssign)
	case *FuncExpr:
		p.function(n.Func)
	case *UnaryExpr:
		if isWordByte(n.Op[0]) {
			p.word(n.Op)
			p.raw(" ")
		} else {
			p.word(n.Op)
		}
		p.expr(n.X, precUnary)
	case *UpdateExpr:
		if n.Prefix {
			p.word(n.Op)
			p.expr(n.X, precUnary)
		} else {
			p.expr(n.X, precCall)
			p.raw(n.Op)
		}
	case *BinaryExpr:
		p.binary(n.Op, n.Left, n.Right)
	case *LogicalExpr:
		p.binary(n.Op, n.Left, n.Right)
	case *AssignExpr:
		p.expr(n.Target, precCall)
		p.space()
		p.raw(n.Op)
		p.space()
		p.expr(n.Value, precAssign)
	case *CondExpr:
		p.expr(n.Test, precNullish)
		p.space()
		p.raw("?")
		p.space()
		p.expr(n.Then, precAssign)
		p.space()
		p.raw(":")
		p.space()
		p.expr(n.Else, precAssign)
	case *CallExpr:
		p.expr(n.Callee, precCall)
		p.args(n.Args)
	case *NewExpr:
		p.word("new")
		p.raw(" ")
		if containsCall(n.Callee) {
			p.raw("(")
			p.exprInner(n.Callee)
			p.raw(")")
		} else {
			p.expr(n.Callee, precMember)
		}
		p.args(n.Args)
	case *MemberExpr:
		if lit, ok := n.Object.(*Literal); ok && lit.Kind == NumberLit {
			p.raw("(")
			p.exprInner(lit)
			p.raw(")")
		} else {
			p.expr(n.Object, precCall)
		}
		if n.Computed {
			p.raw("[")
			p.expr(n.Property, precSequence)
			p.raw("]")
		} else if IsIdentifierName(n.Name) {
			p.raw(".")
			p.raw(n.Name)
		} else {
			p.raw("[")
			p.raw(quote(n.Name))
			p.raw("]")
		}
	case *SeqExpr:
		for i, x := range n.List {
			if i > 0 {
				p.raw(",")
				p.space()
			}
			p.expr(x, precAssign)
		}
	default:
		panic(fmt.Sprintf("ast: unknown expression %T", e))
	}
}

func (p *printer) binary(op string, left, right Expr) {
	prec := binaryPrecedence[op]
	leftMin, rightMin := prec, prec+1
	if op == "**" {
		leftMin, rightMin = prec+1, prec
		if _, ok := left.(*UnaryExpr); ok {
			leftMin = precPrimary
		}
	}
	if op == "??" || op == "||" || op == "&&" {
		leftMin = mixedLogicalMin(op, left, leftMin)
		rightMin = mixedLogicalMin(op, right, rightMin)
	}
	p.expr(left, leftMin)
	if isWordByte(op[0]) {
		p.raw(" ")
		p.word(op)
		p.raw(" ")
	} else {
		p.space()
		p.word(op)
		p.space()
	}
	p.expr(right, rightMin)
}

// mixedLogicalMin forces parentheses when "??" is combined with "||"
// or "&&", which the grammar does not allow unparenthesized.
func mixedLogicalMin(op string, operand Expr, min int) int {
	l, ok := operand.(*LogicalExpr)
	if !ok {
		return min
	}
	if (op == "??") != (l.Op == "??") {
		return precPrimary
	}
	return min
}

func containsCall(e Expr) bool {
	for {
		switch n := e.(type) {
		case *CallExpr:
			return true
		case *MemberExpr:
			e = n.Object
		default:
			return false
		}
	}
}

func (p *printer) args(args []Expr) {
	p.raw("(")
	for i, a := range args {
		if i > 0 {
			p.raw(",")
			p.space()
		}
		p.expr(a, precAssign)
	}
	p.raw(")")
}

func (p *printer) object(n *ObjectLit) {
	p.raw("{")
	if len(n.Props) == 0 {
		p.raw("}")
		return
	}
	p.space()
	for i, prop := range n.Props {
		if i > 0 {
			p.raw(",")
			p.space()
		}
		switch {
		case prop.Spread:
			p.raw("...")
			p.expr(prop.Value, precAssign)
			continue
		case prop.Computed:
			p.raw("[")
			p.expr(prop.KeyExpr, precAssign)
			p.raw("]")
		case IsIdentifierName(prop.Key):
			p.word(prop.Key)
		default:
			p.raw(quote(prop.Key))
		}
		if prop.Value == nil {
			continue
		}
		p.raw(":")
		p.space()
		p.expr(prop.Value, precAssign)
	}
	p.space()
	p.raw("}")
}

func (p *printer) literal(l *Literal) {
	switch l.Kind {
	case NumberLit:
		p.word(FormatNumber(l.Num))
	case StringLit:
		p.raw(quote(l.Str))
	case BoolLit:
		if l.Bool {
			p.word("true")
		} else {
			p.word("false")
		}
	case NullLit:
		p.word("null")
	case UndefinedLit:
		p.word("void")
		p.raw(" 0")
	}
}

// LiteralSource returns the printed form of a literal.
func LiteralSource(l *Literal) string {
	return Print(l, PrintOptions{Compact: true})
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\u2028', '\u2029':
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\x%02x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Quote renders s as a double-quoted string literal.
func Quote(s string) string {
	return quote(s)
}
