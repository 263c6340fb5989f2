package ast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in       float64
		expected string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{42, "42"},
		{-1.5, "-1.5"},
		{0.000001, "0.000001"},
		{1e-7, "1e-7"},
		{1e21, "1e+21"},
		{123456789012345680000, "123456789012345680000"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatNumber(tt.in))
		})
	}
}

func TestParseNumber(t *testing.T) {
	for text, expected := range map[string]float64{"0x1F": 31, "0o17": 15, "0b101": 5, "1.5e3": 1500, ".5": 0.5} {
		v, ok := ParseNumber(text)
		assert.True(t, ok, text)
		assert.Equal(t, expected, v, text)
	}

	_, ok := ParseNumber("0xZZ")
	assert.False(t, ok)
}

func TestIsIdentifierName(t *testing.T) {
	assert.True(t, IsIdentifierName("a"))
	assert.True(t, IsIdentifierName("$0"))
	assert.True(t, IsIdentifierName("_x9"))
	assert.False(t, IsIdentifierName(""))
	assert.False(t, IsIdentifierName("9a"))
	assert.False(t, IsIdentifierName("b c"))
}

func TestPrintNodes(t *testing.T) {
	program := &Program{Body: []Stmt{
		&VarDecl{Kind: Var, Decls: []*Declarator{{Name: "x", Init: Undefined()}}},
		&IfStmt{
			Test: &UnaryExpr{Op: "!", X: Name("x")},
			Then: &BlockStmt{Body: []Stmt{&ReturnStmt{Arg: Num(1)}}},
		},
		&ExprStmt{X: &BinaryExpr{Op: "-", Left: Name("a"), Right: &UnaryExpr{Op: "-", X: Name("b")}}},
	}}

	assert.Equal(t, "var x=void 0;if(!x){return 1;}a- -b;", Print(program, PrintOptions{Compact: true}))
	assert.Equal(t, "var x = void 0;\nif (!x) {\n\treturn 1;\n}\na - -b;", Print(program, PrintOptions{Indent: "\t"}))
}
