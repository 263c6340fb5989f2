package parser

import "github.com/alecthomas/participle/v2/lexer"

type Program struct {
	Pos        lexer.Position
	Statements []*Statement `@@*`
}

type Statement struct {
	Pos      lexer.Position
	Function *FunctionLit       `  @@`
	Var      *VarStatement      `| @@`
	If       *IfStatement       `| @@`
	ForIn    *ForInStatement    `| @@`
	For      *ForStatement      `| @@`
	While    *WhileStatement    `| @@`
	Do       *DoStatement       `| @@`
	Return   *ReturnStatement   `| @@`
	Break    *BreakStatement    `| @@`
	Continue *ContinueStatement `| @@`
	Throw    *ThrowStatement    `| @@`
	Labeled  *LabeledStatement  `| @@`
	Block    *BlockStatement    `| @@`
	Empty    bool               `| @";"`
	Expr     *ExprStatement     `| @@`
}

type FunctionLit struct {
	Pos       lexer.Position
	Keyword   string       `@"function"`
	Generator bool         `@"*"?`
	Name      *string      `@Ident?`
	Params    []*Param     `"(" ( @@ ( "," @@ )* )? ")"`
	Body      []*Statement `"{" @@* "}"`
}

type Param struct {
	Pos     lexer.Position
	Rest    bool           `@"..."?`
	Target  *BindingTarget `@@`
	Default *Assignment    `( "=" @@ )?`
}

type BindingTarget struct {
	Pos    lexer.Position
	Name   *string    `  @Ident`
	Array  *ArrayLit  `| @@`
	Object *ObjectLit `| @@`
}

type VarStatement struct {
	Decl *VarDecl `@@ ";"?`
}

type VarDecl struct {
	Pos   lexer.Position
	Kind  string        `@("var" | "let" | "const")`
	Decls []*Declarator `@@ ( "," @@ )*`
}

type Declarator struct {
	Pos    lexer.Position
	Target *BindingTarget `@@`
	Init   *Assignment    `( "=" @@ )?`
}

type IfStatement struct {
	Pos  lexer.Position
	Test *Expression `"if" "(" @@ ")"`
	Then *Statement  `@@`
	Else *Statement  `( "else" @@ )?`
}

type ForInStatement struct {
	Pos   lexer.Position
	Kind  string      `"for" "(" @("var" | "let" | "const")?`
	Name  string      `@Ident`
	Op    string      `@("in" | "of")`
	Right *Expression `@@ ")"`
	Body  *Statement  `@@`
}

type ForStatement struct {
	Pos    lexer.Position
	Init   *ForInit    `"for" "(" @@? ";"`
	Test   *Expression `@@? ";"`
	Update *Expression `@@? ")"`
	Body   *Statement  `@@`
}

type ForInit struct {
	Var  *VarDecl    `  @@`
	Expr *Expression `| @@`
}

type WhileStatement struct {
	Pos  lexer.Position
	Test *Expression `"while" "(" @@ ")"`
	Body *Statement  `@@`
}

type DoStatement struct {
	Pos  lexer.Position
	Body *Statement  `"do" @@`
	Test *Expression `"while" "(" @@ ")" ";"?`
}

type ReturnStatement struct {
	Pos     lexer.Position
	Keyword string      `@"return"`
	Value   *Expression `@@? ";"?`
}

type BreakStatement struct {
	Pos     lexer.Position
	Keyword string  `@"break"`
	Label   *string `@Ident? ";"?`
}

type ContinueStatement struct {
	Pos     lexer.Position
	Keyword string  `@"continue"`
	Label   *string `@Ident? ";"?`
}

type ThrowStatement struct {
	Pos   lexer.Position
	Value *Expression `"throw" @@ ";"?`
}

type LabeledStatement struct {
	Pos   lexer.Position
	Label string     `@Ident ":"`
	Body  *Statement `@@`
}

type BlockStatement struct {
	Pos        lexer.Position
	Open       string       `@"{"`
	Statements []*Statement `@@* "}"`
}

type ExprStatement struct {
	Pos  lexer.Position
	Expr *Expression `@@ ";"?`
}

// Expression is a comma-separated sequence.
type Expression struct {
	Pos  lexer.Position
	List []*Assignment `@@ ( "," @@ )*`
}

type Assignment struct {
	Pos    lexer.Position
	Target *Conditional `@@`
	Tail   *AssignTail  `@@?`
}

type AssignTail struct {
	Op    string      `@("=" | "+=" | "-=" | "*=" | "/=" | "%=" | "**=" | "<<=" | ">>=" | ">>>=" | "&=" | "|=" | "^=" | "&&=" | "||=" | "??=")`
	Value *Assignment `@@`
}

type Conditional struct {
	Pos  lexer.Position
	Test *Binary   `@@`
	Tail *CondTail `@@?`
}

type CondTail struct {
	Then *Assignment `"?" @@`
	Else *Assignment `":" @@`
}

// Binary is a flat operator chain; precedence is applied during
// conversion.
type Binary struct {
	Pos  lexer.Position
	Left *Unary      `@@`
	Ops  []*BinaryOp `@@*`
}

type BinaryOp struct {
	Pos      lexer.Position
	Operator string `@("??" | "||" | "&&" | "|" | "^" | "&" | "===" | "!==" | "==" | "!=" | "<=" | ">=" | "<" | ">" | "instanceof" | "in" | "<<" | ">>>" | ">>" | "+" | "-" | "**" | "*" | "/" | "%")`
	Right    *Unary `@@`
}

type Unary struct {
	Pos     lexer.Position
	Prefix  *PrefixOp `  @@`
	Postfix *Postfix  `| @@`
}

type PrefixOp struct {
	Pos     lexer.Position
	Op      string `@("!" | "-" | "+" | "~" | "++" | "--" | "typeof" | "void" | "delete")`
	Operand *Unary `@@`
}

type Postfix struct {
	Pos    lexer.Position
	Chain  *CallChain `@@`
	Update string     `@("++" | "--")?`
}

type CallChain struct {
	Pos      lexer.Position
	Head     *ChainHead `@@`
	Suffixes []*Suffix  `@@*`
}

type ChainHead struct {
	New     *NewTarget `  @@`
	Primary *Primary   `| @@`
}

type NewTarget struct {
	Pos     lexer.Position
	Keyword string          `@"new"`
	Callee  *ChainHead      `@@`
	Members []*MemberSuffix `@@*`
	Args    *Arguments      `@@?`
}

type Suffix struct {
	Member *MemberSuffix `  @@`
	Call   *Arguments    `| @@`
}

type MemberSuffix struct {
	Pos   lexer.Position
	Dot   *string     `  "." @Ident`
	Index *Expression `| "[" @@ "]"`
}

type Arguments struct {
	Pos  lexer.Position
	Open string      `@"("`
	Args []*Argument `( @@ ( "," @@ )* ","? )? ")"`
}

type Argument struct {
	Pos    lexer.Position
	Spread bool        `@"..."?`
	Value  *Assignment `@@`
}

type Primary struct {
	Pos      lexer.Position
	Function *FunctionLit `  @@`
	Array    *ArrayLit    `| @@`
	Object   *ObjectLit   `| @@`
	Number   *string      `| @Number`
	String   *string      `| @String`
	Bool     *string      `| @("true" | "false")`
	Null     bool         `| @"null"`
	This     bool         `| @"this"`
	Ident    *string      `| @Ident`
	Paren    *Expression  `| "(" @@ ")"`
}

type ArrayLit struct {
	Pos   lexer.Position
	Open  string      `@"["`
	Elems []*Argument `( @@ ( "," @@ )* ","? )? "]"`
}

type ObjectLit struct {
	Pos   lexer.Position
	Open  string         `@"{"`
	Props []*PropertyLit `( @@ ( "," @@ )* ","? )? "}"`
}

type PropertyLit struct {
	Pos    lexer.Position
	Spread *Assignment   `  "..." @@`
	Pair   *PropertyPair `| @@`
}

type PropertyPair struct {
	Key   *PropertyKey `@@`
	Value *Assignment  `( ":" @@ )?`
}

type PropertyKey struct {
	Pos      lexer.Position
	Computed *Assignment `  "[" @@ "]"`
	Name     *string     `| @Ident`
	String   *string     `| @String`
	Number   *string     `| @Number`
}
