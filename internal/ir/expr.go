package ir

import "jsopt/internal/ast"

// Expr is an IR expression. Trivial expressions are plain values and may
// appear as operands; compound expressions are pointers and only appear as
// the right-hand side of an assignment or as an expression statement.
type Expr interface {
	expr()
}

// Literal is a constant. Kind reuses the syntax tree's literal kinds.
type Literal struct {
	Kind ast.LiteralKind
	Num  float64
	Str  string
	Bool bool
}

// TempRef reads a temp.
type TempRef struct {
	ID TempID
}

// Ident reads a free or top-level name.
type Ident struct {
	Name string
}

// Local reads a parameter, a captured local or a function expression's
// own name. Pinned locals may change between reads.
type Local struct {
	Name   string
	Pinned bool
}

type This struct{}

type Arguments struct{}

// FuncRef evaluates to a closure over the function.
type FuncRef struct {
	Func FuncID
}

// Raw is source text passed through unanalyzed.
type Raw struct {
	Text string
}

type Unary struct {
	Op string
	X  Expr
}

type Binary struct {
	Op string
	L  Expr
	R  Expr
}

// Member is a property read. Gen is the instance generation the read
// observed, or -1.
type Member struct {
	Object Expr
	Key    Expr
	Gen    int
}

// Call is a call or construction. Method calls carry Object and Key and
// no Callee.
type Call struct {
	Callee Expr
	Object Expr
	Key    Expr
	Args   []Expr
	New    bool
}

// Prop is an object literal member. KeyExpr is set for computed keys.
type Prop struct {
	Key     string
	KeyExpr Expr
	Value   Expr
}

type NewObject struct {
	Props []*Prop
}

type NewArray struct {
	Elems []Expr
}

// Phi merges the values copied into its register on converging paths.
type Phi struct {
	Copies []*Assign
}

type Delete struct {
	Object Expr
	Key    Expr
}

func (Literal) expr()    {}
func (TempRef) expr()    {}
func (Ident) expr()      {}
func (Local) expr()      {}
func (This) expr()       {}
func (Arguments) expr()  {}
func (FuncRef) expr()    {}
func (Raw) expr()        {}
func (*Unary) expr()     {}
func (*Binary) expr()    {}
func (*Member) expr()    {}
func (*Call) expr()      {}
func (*NewObject) expr() {}
func (*NewArray) expr()  {}
func (*Phi) expr()       {}
func (*Delete) expr()    {}

// Literal constructors

func Num(v float64) Literal { return Literal{Kind: ast.NumberLit, Num: v} }
func Str(v string) Literal  { return Literal{Kind: ast.StringLit, Str: v} }
func Bool(v bool) Literal   { return Literal{Kind: ast.BoolLit, Bool: v} }
func Null() Literal         { return Literal{Kind: ast.NullLit} }
func Undefined() Literal    { return Literal{Kind: ast.UndefinedLit} }
func Ref(t TempID) TempRef  { return TempRef{ID: t} }

// IsUndefined reports whether e is the undefined literal.
func IsUndefined(e Expr) bool {
	l, ok := e.(Literal)
	return ok && l.Kind == ast.UndefinedLit
}

// IsTrivial reports whether e may be used as an operand.
func IsTrivial(e Expr) bool {
	switch e.(type) {
	case Literal, TempRef, Ident, Local, This, Arguments, FuncRef, Raw:
		return true
	}
	return false
}

// Source renders a literal the way the printer would.
func (l Literal) Source() string {
	return ast.LiteralSource(l.AST())
}

// AST converts the literal into a syntax node.
func (l Literal) AST() *ast.Literal {
	return &ast.Literal{Kind: l.Kind, Num: l.Num, Str: l.Str, Bool: l.Bool}
}

// Truthy returns the boolean value of a literal.
func (l Literal) Truthy() bool {
	switch l.Kind {
	case ast.NumberLit:
		return l.Num != 0 && l.Num == l.Num
	case ast.StringLit:
		return l.Str != ""
	case ast.BoolLit:
		return l.Bool
	default:
		return false
	}
}

// ForEachExprOperand calls fn with a pointer to every trivial operand slot
// of e in evaluation order. A trivial e is its own single slot.
func ForEachExprOperand(e *Expr, fn func(slot *Expr)) {
	switch x := (*e).(type) {
	case *Unary:
		fn(&x.X)
	case *Binary:
		fn(&x.L)
		fn(&x.R)
	case *Member:
		fn(&x.Object)
		fn(&x.Key)
	case *Call:
		if x.Object != nil {
			fn(&x.Object)
			fn(&x.Key)
		} else {
			fn(&x.Callee)
		}
		for i := range x.Args {
			fn(&x.Args[i])
		}
	case *NewObject:
		for _, p := range x.Props {
			if p.KeyExpr != nil {
				fn(&p.KeyExpr)
			}
			fn(&p.Value)
		}
	case *NewArray:
		for i := range x.Elems {
			fn(&x.Elems[i])
		}
	case *Delete:
		fn(&x.Object)
		fn(&x.Key)
	case *Phi:
	default:
		fn(e)
	}
}

// TempRefs returns the temps read by e in evaluation order.
func TempRefs(e Expr) []TempID {
	var out []TempID
	ForEachExprOperand(&e, func(slot *Expr) {
		if r, ok := (*slot).(TempRef); ok {
			out = append(out, r.ID)
		}
	})
	return out
}

// PropertyKey returns the property name a literal key denotes.
func PropertyKey(key Expr) (string, bool) {
	l, ok := key.(Literal)
	if !ok {
		return "", false
	}
	switch l.Kind {
	case ast.StringLit:
		return l.Str, true
	case ast.NumberLit:
		return ast.FormatNumber(l.Num), true
	case ast.BoolLit:
		if l.Bool {
			return "true", true
		}
		return "false", true
	case ast.NullLit:
		return "null", true
	case ast.UndefinedLit:
		return "undefined", true
	}
	return "", false
}

// ArrayIndex reports whether a property name is a canonical array index.
func ArrayIndex(key string) (int, bool) {
	if key == "" || len(key) > 9 || key != "0" && key[0] == '0' {
		return 0, false
	}
	n := 0
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
