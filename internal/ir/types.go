package ir

import (
	"fmt"

	"jsopt/internal/ast"
)

// IR types and structures for the script optimizer.
// The IR keeps every value in a single-assignment temporary; blocks, functions
// and scopes live in flat arenas on the Program and refer to each other by id.

// BlockID indexes Program.Blocks.
type BlockID int

// FuncID indexes Program.Functions. Function 0 is the synthetic top level.
type FuncID int

const (
	NoBlock BlockID = -1
	NoFunc  FuncID  = -1
	TopFunc FuncID  = 0
)

// TempID identifies a single-assignment value by its defining block and slot.
type TempID struct {
	Block BlockID
	Var   int
}

func (t TempID) String() string {
	return fmt.Sprintf("t%d_%d", t.Block, t.Var)
}

// Program represents the entire script in IR form
type Program struct {
	Blocks    []*Block
	Functions []*Function

	// Reserved holds every identifier spelled in the source so generated
	// names never collide with one.
	Reserved map[string]bool

	// AssignedGlobals holds free or top-level names written anywhere.
	AssignedGlobals map[string]bool

	// Globals lists declared top-level variables in declaration order.
	Globals []string

	// Instances tracks object and array literal constructions.
	Instances map[TempID]*Instance

	defs         map[TempID]Stmt
	nextScope    int
	nextRegister int
}

// NewProgram creates an empty program with its top-level function.
func NewProgram() *Program {
	p := &Program{
		Reserved:        map[string]bool{},
		AssignedGlobals: map[string]bool{},
		Instances:       map[TempID]*Instance{},
		defs:            map[TempID]Stmt{},
	}
	p.NewFunction("", NoFunc)
	return p
}

// Function represents a function in IR form
type Function struct {
	ID         FuncID
	Name       string
	Params     []*Param
	Blocks     []BlockID
	Parent     FuncID
	Expression bool
	Scope      *Scope

	// Pinned lists the emitted names of captured locals that are not
	// parameters; they are declared by name at the top of the body.
	Pinned []string

	UsesArguments bool
}

// Entry returns the id of the function's first block.
func (f *Function) Entry() BlockID {
	if len(f.Blocks) == 0 {
		return NoBlock
	}
	return f.Blocks[0]
}

// Param represents a formal parameter
type Param struct {
	Name   string
	Pinned bool
}

// Edge is a control-flow edge. Weak edges are loop back-edges.
type Edge struct {
	To   BlockID
	Weak bool
}

// Block represents a straight-line sequence of statements
type Block struct {
	ID     BlockID
	Func   FuncID
	Stmts  []Stmt
	Next   BlockID
	Prev   BlockID
	Parent Stmt
	Dead   bool

	Succs []Edge
	Preds []Edge

	vars int
}

// Last returns the final statement of the block, or nil.
func (b *Block) Last() Stmt {
	if len(b.Stmts) == 0 {
		return nil
	}
	return b.Stmts[len(b.Stmts)-1]
}

// NewFunction allocates a function with no blocks.
func (p *Program) NewFunction(name string, parent FuncID) *Function {
	f := &Function{ID: FuncID(len(p.Functions)), Name: name, Parent: parent}
	p.Functions = append(p.Functions, f)
	return f
}

// NewBlock allocates a block owned by fn.
func (p *Program) NewBlock(fn FuncID) *Block {
	b := &Block{ID: BlockID(len(p.Blocks)), Func: fn, Next: NoBlock, Prev: NoBlock}
	p.Blocks = append(p.Blocks, b)
	f := p.Functions[fn]
	f.Blocks = append(f.Blocks, b.ID)
	return b
}

// Block returns the block with the given id.
func (p *Program) Block(id BlockID) *Block {
	return p.Blocks[id]
}

// Function returns the function with the given id.
func (p *Program) Function(id FuncID) *Function {
	return p.Functions[id]
}

// NewTemp allocates the next temp slot of block b.
func (p *Program) NewTemp(b BlockID) TempID {
	blk := p.Blocks[b]
	t := TempID{Block: b, Var: blk.vars}
	blk.vars++
	return t
}

// Def returns the statement defining t.
func (p *Program) Def(t TempID) Stmt {
	return p.defs[t]
}

// SetDef records s as the definition of t.
func (p *Program) SetDef(t TempID, s Stmt) {
	p.defs[t] = s
}

// DropDef forgets the definition of t.
func (p *Program) DropDef(t TempID) {
	delete(p.defs, t)
}

// DefValue returns the value assigned to t, or nil when t is not defined by an Assign.
func (p *Program) DefValue(t TempID) Expr {
	if a, ok := p.defs[t].(*Assign); ok {
		return a.Value
	}
	return nil
}

// IsPhi reports whether t is a merge temp.
func (p *Program) IsPhi(t TempID) bool {
	_, ok := p.DefValue(t).(*Phi)
	return ok
}

// NextRegister returns a fresh register name that does not collide with
// any source identifier.
func (p *Program) NextRegister() string {
	for {
		name := fmt.Sprintf("$%d", p.nextRegister)
		p.nextRegister++
		if !p.Reserved[name] {
			return name
		}
	}
}

// ResetRegisters restarts register numbering.
func (p *Program) ResetRegisters() {
	p.nextRegister = 0
}

// ForEachStmt calls fn for every statement of every live block of f in
// structured order, descending into contained blocks after their owner.
func (p *Program) ForEachStmt(f *Function, fn func(s Stmt)) {
	var walk func(id BlockID)
	walk = func(id BlockID) {
		for id != NoBlock {
			b := p.Blocks[id]
			if b.Dead {
				return
			}
			for _, s := range append([]Stmt(nil), b.Stmts...) {
				fn(s)
				for _, inner := range Contained(s) {
					walk(inner)
				}
			}
			id = b.Next
		}
	}
	walk(f.Entry())
}

// ChainEnd follows Next links from id and returns the final block.
func (p *Program) ChainEnd(id BlockID) BlockID {
	for id != NoBlock && p.Blocks[id].Next != NoBlock {
		id = p.Blocks[id].Next
	}
	return id
}

// BindingKind distinguishes how a name was declared
type BindingKind int

const (
	BindVar BindingKind = iota
	BindLet
	BindConst
	BindParam
	BindFunction
	BindSelf
)

// Binding maps a source name to its current value.
type Binding struct {
	Name  string
	Kind  BindingKind
	Scope *Scope
	Pos   ast.Position

	// Value is the current trivial value of an unpinned local.
	Value Expr

	Pinned   bool
	Global   bool
	Declared bool
	InLoop   bool

	// EmitName is the output name of pinned and function bindings.
	EmitName string

	order int
}

// Lexical reports whether the binding has let or const semantics.
func (b *Binding) Lexical() bool {
	return b.Kind == BindLet || b.Kind == BindConst
}

// Tracked reports whether the binding's value lives in temps.
func (b *Binding) Tracked() bool {
	return !b.Pinned && !b.Global
}

// Scope is a node of the lexical scope tree
type Scope struct {
	ID        int
	Func      FuncID
	Parent    *Scope
	FuncScope *Scope
	Names     map[string]*Binding
	order     []*Binding
}

// NewScope creates a scope. A scope with fn != NoFunc is a function scope.
func (p *Program) NewScope(parent *Scope, fn FuncID) *Scope {
	s := &Scope{ID: p.nextScope, Func: fn, Parent: parent, Names: map[string]*Binding{}}
	p.nextScope++
	if fn != NoFunc {
		s.FuncScope = s
	} else if parent != nil {
		s.FuncScope = parent.FuncScope
	}
	return s
}

// Declare adds a binding unless the name already exists in this scope.
func (s *Scope) Declare(name string, kind BindingKind, pos ast.Position) *Binding {
	if b, ok := s.Names[name]; ok {
		if kind == BindFunction {
			b.Kind = BindFunction
		}
		return b
	}
	b := &Binding{Name: name, Kind: kind, Scope: s, Pos: pos, order: len(s.order)}
	s.Names[name] = b
	s.order = append(s.order, b)
	return b
}

// Bindings returns the scope's bindings in declaration order.
func (s *Scope) Bindings() []*Binding {
	return s.order
}

// Resolve walks parent links until a binding is found.
func (s *Scope) Resolve(name string) *Binding {
	for sc := s; sc != nil; sc = sc.Parent {
		if b, ok := sc.Names[name]; ok {
			return b
		}
	}
	return nil
}

// Owner returns the function the scope belongs to.
func (s *Scope) Owner() FuncID {
	return s.FuncScope.Func
}

// Instance records the known shapes of an object or array literal.
type Instance struct {
	Temp  TempID
	Array bool
	Gens  []*Generation
}

// Generation is the known shape after a tracked mutation.
type Generation struct {
	Props    map[string]Expr
	Elems    []Expr
	Computed bool
}

// Current returns the newest generation index.
func (in *Instance) Current() int {
	return len(in.Gens) - 1
}

// Next copies the newest generation and returns the copy and its index.
func (in *Instance) Next() (*Generation, int) {
	cur := in.Gens[len(in.Gens)-1]
	g := &Generation{Props: map[string]Expr{}, Elems: append([]Expr(nil), cur.Elems...), Computed: cur.Computed}
	for k, v := range cur.Props {
		g.Props[k] = v
	}
	in.Gens = append(in.Gens, g)
	return g, len(in.Gens) - 1
}
