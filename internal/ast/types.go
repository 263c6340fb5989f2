package ast

import "fmt"

type NodeType int

const (
	ILLEGAL NodeType = iota

	// Top level
	PROGRAM
	FUNCTION
	PARAM

	// Statements
	VAR_DECL
	DECLARATOR
	FUNCTION_DECL
	BLOCK
	IF
	FOR
	FOR_IN
	WHILE
	DO_WHILE
	BREAK
	CONTINUE
	RETURN
	THROW
	EXPR_STMT
	EMPTY
	LABELED

	// Expressions
	IDENT
	LITERAL
	THIS
	ARRAY
	OBJECT
	PROPERTY
	SPREAD
	FUNCTION_EXPR
	UNARY
	UPDATE
	BINARY
	LOGICAL
	ASSIGN
	CONDITIONAL
	CALL
	NEW
	MEMBER
	SEQUENCE
	RAW
)

var nodeTypeNames = map[NodeType]string{
	ILLEGAL:       "Illegal",
	PROGRAM:       "Program",
	FUNCTION:      "Function",
	PARAM:         "Param",
	VAR_DECL:      "VarDecl",
	DECLARATOR:    "Declarator",
	FUNCTION_DECL: "FunctionDecl",
	BLOCK:         "Block",
	IF:            "If",
	FOR:           "For",
	FOR_IN:        "ForIn",
	WHILE:         "While",
	DO_WHILE:      "DoWhile",
	BREAK:         "Break",
	CONTINUE:      "Continue",
	RETURN:        "Return",
	THROW:         "Throw",
	EXPR_STMT:     "ExprStmt",
	EMPTY:         "Empty",
	LABELED:       "Labeled",
	IDENT:         "Ident",
	LITERAL:       "Literal",
	THIS:          "This",
	ARRAY:         "Array",
	OBJECT:        "Object",
	PROPERTY:      "Property",
	SPREAD:        "Spread",
	FUNCTION_EXPR: "FunctionExpr",
	UNARY:         "Unary",
	UPDATE:        "Update",
	BINARY:        "Binary",
	LOGICAL:       "Logical",
	ASSIGN:        "Assign",
	CONDITIONAL:   "Conditional",
	CALL:          "Call",
	NEW:           "New",
	MEMBER:        "Member",
	SEQUENCE:      "Sequence",
	RAW:           "Raw",
}

func (t NodeType) String() string {
	if name, ok := nodeTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("NodeType(%d)", int(t))
}

// Position tracks location information for error reporting and tooling
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

func (p Position) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// LiteralKind distinguishes the primitive literal forms.
type LiteralKind int

const (
	NumberLit LiteralKind = iota
	StringLit
	BoolLit
	NullLit
	UndefinedLit
)

// VarKind is the declaration keyword of a variable declaration.
type VarKind string

const (
	Var   VarKind = "var"
	Let   VarKind = "let"
	Const VarKind = "const"
)
