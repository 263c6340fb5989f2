package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jsopt/internal/ir"
)

func TestFoldBinary(t *testing.T) {
	tests := []struct {
		op       string
		l, r     ir.Literal
		expected ir.Literal
		ok       bool
	}{
		{"+", ir.Num(2), ir.Num(2), ir.Num(4), true},
		{"+", ir.Str("a"), ir.Num(1), ir.Str("a1"), true},
		{"+", ir.Num(1), ir.Null(), ir.Num(1), true},
		{"+", ir.Str("x"), ir.Undefined(), ir.Str("xundefined"), true},
		{"-", ir.Num(3), ir.Num(3), ir.Num(0), true},
		{"*", ir.Bool(true), ir.Num(5), ir.Num(5), true},
		{"/", ir.Num(1), ir.Num(0), ir.Literal{}, false},
		{"/", ir.Num(0), ir.Num(0), ir.Literal{}, false},
		{"*", ir.Num(-1), ir.Num(0), ir.Literal{}, false},
		{"%", ir.Num(7), ir.Num(4), ir.Num(3), true},
		{"-", ir.Str("abc"), ir.Num(1), ir.Literal{}, false},
		{"|", ir.Num(1.5), ir.Num(0), ir.Num(1), true},
		{"<<", ir.Num(1), ir.Num(33), ir.Num(2), true},
		{">>>", ir.Num(-1), ir.Num(28), ir.Num(15), true},
		{"===", ir.Num(1), ir.Str("1"), ir.Bool(false), true},
		{"==", ir.Null(), ir.Undefined(), ir.Bool(true), true},
		{"==", ir.Num(1), ir.Bool(true), ir.Bool(true), true},
		{"==", ir.Num(1), ir.Str("1"), ir.Literal{}, false},
		{"!=", ir.Null(), ir.Num(0), ir.Bool(true), true},
		{"<", ir.Str("a"), ir.Str("b"), ir.Bool(true), true},
		{"<", ir.Str("é"), ir.Str("b"), ir.Literal{}, false},
		{">=", ir.Num(2), ir.Null(), ir.Bool(true), true},
		{"<", ir.Num(1), ir.Undefined(), ir.Literal{}, false},
		{"in", ir.Str("a"), ir.Str("b"), ir.Literal{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.l.Source()+" "+tt.op+" "+tt.r.Source(), func(t *testing.T) {
			got, ok := foldBinary(tt.op, tt.l, tt.r)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestFoldUnary(t *testing.T) {
	tests := []struct {
		op       string
		x        ir.Literal
		expected ir.Literal
		ok       bool
	}{
		{"!", ir.Num(0), ir.Bool(true), true},
		{"!", ir.Str(""), ir.Bool(true), true},
		{"!", ir.Str("0"), ir.Bool(false), true},
		{"void", ir.Num(1), ir.Undefined(), true},
		{"typeof", ir.Null(), ir.Str("object"), true},
		{"typeof", ir.Undefined(), ir.Str("undefined"), true},
		{"-", ir.Num(0), ir.Literal{}, false},
		{"-", ir.Num(3), ir.Num(-3), true},
		{"+", ir.Bool(true), ir.Num(1), true},
		{"+", ir.Str("12"), ir.Literal{}, false},
		{"~", ir.Num(5), ir.Num(-6), true},
	}

	for _, tt := range tests {
		t.Run(tt.op+" "+tt.x.Source(), func(t *testing.T) {
			got, ok := foldUnary(tt.op, tt.x)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestFoldLogical(t *testing.T) {
	right := ir.Ident{Name: "x"}

	got, ok := foldLogical("&&", ir.Num(0), right)
	assert.True(t, ok)
	assert.Equal(t, ir.Expr(ir.Num(0)), got)

	got, ok = foldLogical("||", ir.Num(0), right)
	assert.True(t, ok)
	assert.Equal(t, ir.Expr(right), got)

	got, ok = foldLogical("??", ir.Num(0), right)
	assert.True(t, ok)
	assert.Equal(t, ir.Expr(ir.Num(0)), got)

	got, ok = foldLogical("??", ir.Null(), right)
	assert.True(t, ok)
	assert.Equal(t, ir.Expr(right), got)
}

func TestStringLength(t *testing.T) {
	assert.Equal(t, 3, stringLength("abc"))
	assert.Equal(t, 2, stringLength("😀"))
	assert.Equal(t, 0, stringLength(""))
}
