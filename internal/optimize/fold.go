package optimize

import (
	"math"
	"strings"
	"unicode/utf16"

	"jsopt/internal/ast"
	"jsopt/internal/ir"
)

// Constant folding over literal operands. Folding never produces NaN,
// an infinity or negative zero, none of which has a literal form.

func foldUnary(op string, x ir.Literal) (ir.Literal, bool) {
	switch op {
	case "!":
		return ir.Bool(!x.Truthy()), true
	case "void":
		return ir.Undefined(), true
	case "typeof":
		return ir.Str(typeOf(x)), true
	case "-":
		n, ok := toNumber(x)
		if !ok || n == 0 {
			return ir.Literal{}, false
		}
		return number(-n)
	case "+":
		n, ok := toNumber(x)
		if !ok {
			return ir.Literal{}, false
		}
		return number(n)
	case "~":
		n, ok := toNumber(x)
		if !ok {
			return ir.Literal{}, false
		}
		return number(float64(^toInt32(n)))
	}
	return ir.Literal{}, false
}

func foldBinary(op string, l, r ir.Literal) (ir.Literal, bool) {
	switch op {
	case "+":
		if l.Kind == ast.StringLit || r.Kind == ast.StringLit {
			ls, lok := toString(l)
			rs, rok := toString(r)
			if !lok || !rok {
				return ir.Literal{}, false
			}
			return ir.Str(ls + rs), true
		}
		return arithmetic(l, r, func(a, b float64) float64 { return a + b })
	case "-":
		return arithmetic(l, r, func(a, b float64) float64 { return a - b })
	case "*":
		return arithmetic(l, r, func(a, b float64) float64 { return a * b })
	case "/":
		return arithmetic(l, r, func(a, b float64) float64 { return a / b })
	case "%":
		return arithmetic(l, r, math.Mod)
	case "&", "|", "^", "<<", ">>", ">>>":
		a, aok := toNumber(l)
		b, bok := toNumber(r)
		if !aok || !bok {
			return ir.Literal{}, false
		}
		return number(bitwise(op, a, b))
	case "===":
		return ir.Bool(strictEquals(l, r)), true
	case "!==":
		return ir.Bool(!strictEquals(l, r)), true
	case "==", "!=":
		eq, ok := looseEquals(l, r)
		if !ok {
			return ir.Literal{}, false
		}
		return ir.Bool(eq == (op == "==")), true
	case "<", ">", "<=", ">=":
		return compare(op, l, r)
	}
	return ir.Literal{}, false
}

// foldLogical picks the operand a logical operator with a known left side
// evaluates to.
func foldLogical(op string, l ir.Literal, r ir.Expr) (ir.Expr, bool) {
	switch op {
	case "&&":
		if l.Truthy() {
			return r, true
		}
		return l, true
	case "||":
		if l.Truthy() {
			return l, true
		}
		return r, true
	case "??":
		if l.Kind == ast.NullLit || l.Kind == ast.UndefinedLit {
			return r, true
		}
		return l, true
	}
	return nil, false
}

func number(n float64) (ir.Literal, bool) {
	if math.IsNaN(n) || math.IsInf(n, 0) || n == 0 && math.Signbit(n) {
		return ir.Literal{}, false
	}
	return ir.Num(n), true
}

func arithmetic(l, r ir.Literal, fn func(a, b float64) float64) (ir.Literal, bool) {
	a, aok := toNumber(l)
	b, bok := toNumber(r)
	if !aok || !bok {
		return ir.Literal{}, false
	}
	return number(fn(a, b))
}

func typeOf(x ir.Literal) string {
	switch x.Kind {
	case ast.NumberLit:
		return "number"
	case ast.StringLit:
		return "string"
	case ast.BoolLit:
		return "boolean"
	case ast.NullLit:
		return "object"
	default:
		return "undefined"
	}
}

// toNumber converts literals whose numeric value is exact. Strings other
// than the empty string are left alone.
func toNumber(x ir.Literal) (float64, bool) {
	switch x.Kind {
	case ast.NumberLit:
		return x.Num, true
	case ast.BoolLit:
		if x.Bool {
			return 1, true
		}
		return 0, true
	case ast.NullLit:
		return 0, true
	case ast.StringLit:
		if strings.TrimSpace(x.Str) == "" {
			return 0, true
		}
	}
	return 0, false
}

func toString(x ir.Literal) (string, bool) {
	switch x.Kind {
	case ast.StringLit:
		return x.Str, true
	case ast.NumberLit:
		return ast.FormatNumber(x.Num), true
	case ast.BoolLit:
		if x.Bool {
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

// toInt32 implements the ToInt32 conversion for finite values.
func toInt32(n float64) int32 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return int32(uint32(int64(math.Mod(math.Trunc(n), 1<<32))))
}

func bitwise(op string, a, b float64) float64 {
	x, y := toInt32(a), toInt32(b)
	shift := uint32(y) & 31
	switch op {
	case "&":
		return float64(x & y)
	case "|":
		return float64(x | y)
	case "^":
		return float64(x ^ y)
	case "<<":
		return float64(x << shift)
	case ">>":
		return float64(x >> shift)
	default:
		return float64(uint32(x) >> shift)
	}
}

func strictEquals(l, r ir.Literal) bool {
	if l.Kind != r.Kind {
		return false
	}
	switch l.Kind {
	case ast.NumberLit:
		return l.Num == r.Num
	case ast.StringLit:
		return l.Str == r.Str
	case ast.BoolLit:
		return l.Bool == r.Bool
	}
	return true
}

func nullish(x ir.Literal) bool {
	return x.Kind == ast.NullLit || x.Kind == ast.UndefinedLit
}

func looseEquals(l, r ir.Literal) (bool, bool) {
	switch {
	case l.Kind == r.Kind:
		return strictEquals(l, r), true
	case nullish(l) || nullish(r):
		return nullish(l) && nullish(r), true
	case l.Kind == ast.StringLit || r.Kind == ast.StringLit:
		return false, false
	}
	a, _ := toNumber(l)
	b, _ := toNumber(r)
	return a == b, true
}

func compare(op string, l, r ir.Literal) (ir.Literal, bool) {
	if l.Kind == ast.StringLit && r.Kind == ast.StringLit {
		if !ascii(l.Str) || !ascii(r.Str) {
			return ir.Literal{}, false
		}
		c := strings.Compare(l.Str, r.Str)
		return ir.Bool(ordered(op, float64(c), 0)), true
	}
	if l.Kind == ast.StringLit || r.Kind == ast.StringLit {
		return ir.Literal{}, false
	}
	a, aok := toNumber(l)
	b, bok := toNumber(r)
	if !aok || !bok {
		return ir.Literal{}, false
	}
	return ir.Bool(ordered(op, a, b)), true
}

func ordered(op string, a, b float64) bool {
	switch op {
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	default:
		return a >= b
	}
}

func ascii(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// stringLength returns the length of s in UTF-16 code units.
func stringLength(s string) int {
	return len(utf16.Encode([]rune(s)))
}
