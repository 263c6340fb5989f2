package ir

import "jsopt/internal/ast"

// Stmt is an IR statement. Every statement embeds StmtMeta.
type Stmt interface {
	Meta() *StmtMeta
	stmt()
}

// StmtMeta is the bookkeeping shared by all statements.
type StmtMeta struct {
	Block   BlockID
	Live    bool
	Escapes bool

	// Parent is the if or loop statement containing this statement's block.
	Parent Stmt

	Effects []Effect
	Pos     ast.Position
}

func (m *StmtMeta) Meta() *StmtMeta { return m }

// Materialize is the emission decision for a temp definition
type Materialize int

const (
	MatUnset Materialize = iota
	MatRegister
	MatInline
	MatPending
)

func (m Materialize) String() string {
	switch m {
	case MatRegister:
		return "reg"
	case MatInline:
		return "inline"
	case MatPending:
		return "pending"
	default:
		return ""
	}
}

// Assign stores a value. With a temp destination it is the temp's definition.
type Assign struct {
	StmtMeta
	Dst   Lvalue
	Value Expr
	Mat   Materialize
}

// ExprStmt evaluates an expression for its effects.
type ExprStmt struct {
	StmtMeta
	X Expr
}

// PropSet writes Object[Key] = Value.
type PropSet struct {
	StmtMeta
	Object Expr
	Key    Expr
	Value  Expr
}

type Return struct {
	StmtMeta
	Value Expr
}

type Throw struct {
	StmtMeta
	Value Expr
}

// If branches on Cond. Known is 1 or -1 once the condition is proven
// true or false.
type If struct {
	StmtMeta
	Cond  Expr
	Then  BlockID
	Else  BlockID
	Known int8
}

// LoopKind distinguishes loop statements
type LoopKind int

const (
	While LoopKind = iota
	DoWhile
	ForIn
	ForOf
)

func (k LoopKind) String() string {
	switch k {
	case DoWhile:
		return "do-while"
	case ForIn:
		return "for-in"
	case ForOf:
		return "for-of"
	default:
		return "while"
	}
}

// Loop repeats Body. While and do-while loops evaluate the Test block
// chain and then Cond on every iteration; for-in and for-of loops store
// each key or value of Object into Each.
type Loop struct {
	StmtMeta
	Kind   LoopKind
	Test   BlockID
	Cond   Expr
	Body   BlockID
	Each   Lvalue
	Object Expr

	Eliminated bool
	Once       bool
	Infinite   bool
}

type Break struct {
	StmtMeta
	Loop *Loop
}

type Continue struct {
	StmtMeta
	Loop *Loop
}

// FuncDecl binds a declared function. Name is the emitted name.
type FuncDecl struct {
	StmtMeta
	Dst  Lvalue
	Func FuncID
	Name string
}

func (*Assign) stmt()   {}
func (*ExprStmt) stmt() {}
func (*PropSet) stmt()  {}
func (*Return) stmt()   {}
func (*Throw) stmt()    {}
func (*If) stmt()       {}
func (*Loop) stmt()     {}
func (*Break) stmt()    {}
func (*Continue) stmt() {}
func (*FuncDecl) stmt() {}

// DefinedTemp returns the temp a statement defines.
func DefinedTemp(s Stmt) (TempID, bool) {
	switch x := s.(type) {
	case *Assign:
		if x.Dst.IsTemp() {
			return x.Dst.Temp, true
		}
	case *FuncDecl:
		if x.Dst.IsTemp() {
			return x.Dst.Temp, true
		}
	}
	return TempID{}, false
}

// Contained returns the blocks owned by an if or loop statement in
// evaluation order.
func Contained(s Stmt) []BlockID {
	switch x := s.(type) {
	case *If:
		if x.Else != NoBlock {
			return []BlockID{x.Then, x.Else}
		}
		return []BlockID{x.Then}
	case *Loop:
		if x.Kind == DoWhile {
			return []BlockID{x.Body, x.Test}
		}
		if x.Test != NoBlock {
			return []BlockID{x.Test, x.Body}
		}
		return []BlockID{x.Body}
	}
	return nil
}

// ForEachOperand calls fn with every trivial operand slot of s in
// evaluation order.
func ForEachOperand(s Stmt, fn func(slot *Expr)) {
	switch x := s.(type) {
	case *Assign:
		ForEachExprOperand(&x.Value, fn)
	case *ExprStmt:
		ForEachExprOperand(&x.X, fn)
	case *PropSet:
		fn(&x.Object)
		fn(&x.Key)
		fn(&x.Value)
	case *Return:
		fn(&x.Value)
	case *Throw:
		fn(&x.Value)
	case *If:
		fn(&x.Cond)
	case *Loop:
		if x.Object != nil {
			fn(&x.Object)
		}
		if x.Cond != nil {
			fn(&x.Cond)
		}
	}
}

// StmtTempRefs returns the temps s reads, one entry per occurrence.
func StmtTempRefs(s Stmt) []TempID {
	var out []TempID
	ForEachOperand(s, func(slot *Expr) {
		if r, ok := (*slot).(TempRef); ok {
			out = append(out, r.ID)
		}
	})
	return out
}
