package ast

type Node interface {
	NodePos() Position
	NodeType() NodeType
}

type Stmt interface {
	Node
	isStmt()
}

type Expr interface {
	Node
	isExpr()
}

// Program is a whole source file.
type Program struct {
	Pos  Position
	Body []Stmt
}

// Function is shared by declarations and expressions.
// Example: "function add(a, b = 1, ...rest) { return a + b; }"
type Function struct {
	Pos       Position
	Name      string
	Params    []*Param
	Body      []Stmt
	Generator bool
}

// Param is a formal parameter. Pattern is set instead of Name for
// destructuring targets, which the optimizer rejects.
type Param struct {
	Pos     Position
	Name    string
	Pattern Expr
	Default Expr
	Rest    bool
}

// VarDecl is a var, let or const declaration list.
type VarDecl struct {
	Pos   Position
	Kind  VarKind
	Decls []*Declarator
}

type Declarator struct {
	Pos     Position
	Name    string
	Pattern Expr
	Init    Expr
}

type FunctionDecl struct {
	Pos  Position
	Func *Function
}

type BlockStmt struct {
	Pos  Position
	Body []Stmt
}

type IfStmt struct {
	Pos  Position
	Test Expr
	Then Stmt
	Else Stmt
}

// ForStmt is the three-clause loop. Init is a *VarDecl, an *ExprStmt or nil.
type ForStmt struct {
	Pos    Position
	Init   Stmt
	Test   Expr
	Update Expr
	Body   Stmt
}

// ForInStmt covers both for-in and for-of. Exactly one of Decl and
// Target is set.
type ForInStmt struct {
	Pos    Position
	Of     bool
	Decl   *VarDecl
	Target Expr
	Right  Expr
	Body   Stmt
}

type WhileStmt struct {
	Pos  Position
	Test Expr
	Body Stmt
}

type DoWhileStmt struct {
	Pos  Position
	Body Stmt
	Test Expr
}

type BreakStmt struct {
	Pos   Position
	Label string
}

type ContinueStmt struct {
	Pos   Position
	Label string
}

type ReturnStmt struct {
	Pos Position
	Arg Expr
}

type ThrowStmt struct {
	Pos Position
	Arg Expr
}

type ExprStmt struct {
	Pos Position
	X   Expr
}

type EmptyStmt struct {
	Pos Position
}

type LabeledStmt struct {
	Pos   Position
	Label string
	Body  Stmt
}

type Ident struct {
	Pos  Position
	Name string
}

type Literal struct {
	Pos  Position
	Kind LiteralKind
	Num  float64
	Str  string
	Bool bool
}

type ThisExpr struct {
	Pos Position
}

type ArrayLit struct {
	Pos   Position
	Elems []Expr
}

type ObjectLit struct {
	Pos   Position
	Props []*Property
}

// Property is an object literal member. Computed keys keep their
// expression in KeyExpr; Spread members carry only Value.
type Property struct {
	Pos      Position
	Key      string
	KeyExpr  Expr
	Computed bool
	Spread   bool
	Value    Expr
}

type SpreadElement struct {
	Pos Position
	Arg Expr
}

type FuncExpr struct {
	Pos  Position
	Func *Function
}

type UnaryExpr struct {
	Pos Position
	Op  string
	X   Expr
}

type UpdateExpr struct {
	Pos    Position
	Op     string
	Prefix bool
	X      Expr
}

type BinaryExpr struct {
	Pos   Position
	Op    string
	Left  Expr
	Right Expr
}

type LogicalExpr struct {
	Pos   Position
	Op    string
	Left  Expr
	Right Expr
}

type AssignExpr struct {
	Pos    Position
	Op     string
	Target Expr
	Value  Expr
}

type CondExpr struct {
	Pos  Position
	Test Expr
	Then Expr
	Else Expr
}

type CallExpr struct {
	Pos    Position
	Callee Expr
	Args   []Expr
}

type NewExpr struct {
	Pos    Position
	Callee Expr
	Args   []Expr
}

// MemberExpr is "a.b" when Computed is false (Name holds b) and
// "a[b]" otherwise (Property holds b).
type MemberExpr struct {
	Pos      Position
	Object   Expr
	Name     string
	Property Expr
	Computed bool
}

type SeqExpr struct {
	Pos  Position
	List []Expr
}

// RawExpr is passed through to the output untouched.
type RawExpr struct {
	Pos  Position
	Text string
}

func (n *Program) NodePos() Position       { return n.Pos }
func (n *Function) NodePos() Position      { return n.Pos }
func (n *Param) NodePos() Position         { return n.Pos }
func (n *VarDecl) NodePos() Position       { return n.Pos }
func (n *Declarator) NodePos() Position    { return n.Pos }
func (n *FunctionDecl) NodePos() Position  { return n.Pos }
func (n *BlockStmt) NodePos() Position     { return n.Pos }
func (n *IfStmt) NodePos() Position        { return n.Pos }
func (n *ForStmt) NodePos() Position       { return n.Pos }
func (n *ForInStmt) NodePos() Position     { return n.Pos }
func (n *WhileStmt) NodePos() Position     { return n.Pos }
func (n *DoWhileStmt) NodePos() Position   { return n.Pos }
func (n *BreakStmt) NodePos() Position     { return n.Pos }
func (n *ContinueStmt) NodePos() Position  { return n.Pos }
func (n *ReturnStmt) NodePos() Position    { return n.Pos }
func (n *ThrowStmt) NodePos() Position     { return n.Pos }
func (n *ExprStmt) NodePos() Position      { return n.Pos }
func (n *EmptyStmt) NodePos() Position     { return n.Pos }
func (n *LabeledStmt) NodePos() Position   { return n.Pos }
func (n *Ident) NodePos() Position         { return n.Pos }
func (n *Literal) NodePos() Position       { return n.Pos }
func (n *ThisExpr) NodePos() Position      { return n.Pos }
func (n *ArrayLit) NodePos() Position      { return n.Pos }
func (n *ObjectLit) NodePos() Position     { return n.Pos }
func (n *Property) NodePos() Position      { return n.Pos }
func (n *SpreadElement) NodePos() Position { return n.Pos }
func (n *FuncExpr) NodePos() Position      { return n.Pos }
func (n *UnaryExpr) NodePos() Position     { return n.Pos }
func (n *UpdateExpr) NodePos() Position    { return n.Pos }
func (n *BinaryExpr) NodePos() Position    { return n.Pos }
func (n *LogicalExpr) NodePos() Position   { return n.Pos }
func (n *AssignExpr) NodePos() Position    { return n.Pos }
func (n *CondExpr) NodePos() Position      { return n.Pos }
func (n *CallExpr) NodePos() Position      { return n.Pos }
func (n *NewExpr) NodePos() Position       { return n.Pos }
func (n *MemberExpr) NodePos() Position    { return n.Pos }
func (n *SeqExpr) NodePos() Position       { return n.Pos }
func (n *RawExpr) NodePos() Position       { return n.Pos }

func (*Program) NodeType() NodeType       { return PROGRAM }
func (*Function) NodeType() NodeType      { return FUNCTION }
func (*Param) NodeType() NodeType         { return PARAM }
func (*VarDecl) NodeType() NodeType       { return VAR_DECL }
func (*Declarator) NodeType() NodeType    { return DECLARATOR }
func (*FunctionDecl) NodeType() NodeType  { return FUNCTION_DECL }
func (*BlockStmt) NodeType() NodeType     { return BLOCK }
func (*IfStmt) NodeType() NodeType        { return IF }
func (*ForStmt) NodeType() NodeType       { return FOR }
func (*ForInStmt) NodeType() NodeType     { return FOR_IN }
func (*WhileStmt) NodeType() NodeType     { return WHILE }
func (*DoWhileStmt) NodeType() NodeType   { return DO_WHILE }
func (*BreakStmt) NodeType() NodeType     { return BREAK }
func (*ContinueStmt) NodeType() NodeType  { return CONTINUE }
func (*ReturnStmt) NodeType() NodeType    { return RETURN }
func (*ThrowStmt) NodeType() NodeType     { return THROW }
func (*ExprStmt) NodeType() NodeType      { return EXPR_STMT }
func (*EmptyStmt) NodeType() NodeType     { return EMPTY }
func (*LabeledStmt) NodeType() NodeType   { return LABELED }
func (*Ident) NodeType() NodeType         { return IDENT }
func (*Literal) NodeType() NodeType       { return LITERAL }
func (*ThisExpr) NodeType() NodeType      { return THIS }
func (*ArrayLit) NodeType() NodeType      { return ARRAY }
func (*ObjectLit) NodeType() NodeType     { return OBJECT }
func (*Property) NodeType() NodeType      { return PROPERTY }
func (*SpreadElement) NodeType() NodeType { return SPREAD }
func (*FuncExpr) NodeType() NodeType      { return FUNCTION_EXPR }
func (*UnaryExpr) NodeType() NodeType     { return UNARY }
func (*UpdateExpr) NodeType() NodeType    { return UPDATE }
func (*BinaryExpr) NodeType() NodeType    { return BINARY }
func (*LogicalExpr) NodeType() NodeType   { return LOGICAL }
func (*AssignExpr) NodeType() NodeType    { return ASSIGN }
func (*CondExpr) NodeType() NodeType      { return CONDITIONAL }
func (*CallExpr) NodeType() NodeType      { return CALL }
func (*NewExpr) NodeType() NodeType       { return NEW }
func (*MemberExpr) NodeType() NodeType    { return MEMBER }
func (*SeqExpr) NodeType() NodeType       { return SEQUENCE }
func (*RawExpr) NodeType() NodeType       { return RAW }

func (*VarDecl) isStmt()      {}
func (*FunctionDecl) isStmt() {}
func (*BlockStmt) isStmt()    {}
func (*IfStmt) isStmt()       {}
func (*ForStmt) isStmt()      {}
func (*ForInStmt) isStmt()    {}
func (*WhileStmt) isStmt()    {}
func (*DoWhileStmt) isStmt()  {}
func (*BreakStmt) isStmt()    {}
func (*ContinueStmt) isStmt() {}
func (*ReturnStmt) isStmt()   {}
func (*ThrowStmt) isStmt()    {}
func (*ExprStmt) isStmt()     {}
func (*EmptyStmt) isStmt()    {}
func (*LabeledStmt) isStmt()  {}

func (*Ident) isExpr()         {}
func (*Literal) isExpr()       {}
func (*ThisExpr) isExpr()      {}
func (*ArrayLit) isExpr()      {}
func (*ObjectLit) isExpr()     {}
func (*SpreadElement) isExpr() {}
func (*FuncExpr) isExpr()      {}
func (*UnaryExpr) isExpr()     {}
func (*UpdateExpr) isExpr()    {}
func (*BinaryExpr) isExpr()    {}
func (*LogicalExpr) isExpr()   {}
func (*AssignExpr) isExpr()    {}
func (*CondExpr) isExpr()      {}
func (*CallExpr) isExpr()      {}
func (*NewExpr) isExpr()       {}
func (*MemberExpr) isExpr()    {}
func (*SeqExpr) isExpr()       {}
func (*RawExpr) isExpr()       {}

// Convenience constructors used by the emitter and by tests.

func Num(v float64) *Literal       { return &Literal{Kind: NumberLit, Num: v} }
func Str(v string) *Literal        { return &Literal{Kind: StringLit, Str: v} }
func Bool(v bool) *Literal         { return &Literal{Kind: BoolLit, Bool: v} }
func Null() *Literal               { return &Literal{Kind: NullLit} }
func Undefined() *Literal          { return &Literal{Kind: UndefinedLit} }
func Name(name string) *Ident      { return &Ident{Name: name} }
func Raw(text string) *RawExpr     { return &RawExpr{Text: text} }
func Expression(x Expr) *ExprStmt  { return &ExprStmt{X: x} }
