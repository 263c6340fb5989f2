package optimize

import (
	"maps"
	"sort"
	"strings"

	"jsopt/internal/ir"
)

// CommonSubexpressions rewrites a pure computation that repeats one
// available on every path to it into a reference to the earlier temp.
// Availability flows into contained blocks as a copy, so sibling branches
// never see each other's results. Computations reading storage that other
// statements can change are only reused within a block and forgotten at
// the first statement that may write.
type CommonSubexpressions struct {
	program *ir.Program
}

type available map[string]ir.TempID

var commutative = map[string]bool{
	"*": true, "&": true, "|": true, "^": true,
	"==": true, "!=": true, "===": true, "!==": true,
}

func (c *CommonSubexpressions) Name() string {
	return "commonSubexpressions"
}

func (c *CommonSubexpressions) Description() string {
	return "Reuses pure expressions already computed on every path"
}

func (c *CommonSubexpressions) VisitFunction(p *ir.Program, f *ir.Function) {
	c.program = p
	if f.Entry() != ir.NoBlock {
		c.chain(f.Entry(), available{})
	}
}

func (c *CommonSubexpressions) chain(id ir.BlockID, stable available) {
	for id != ir.NoBlock {
		blk := c.program.Blocks[id]
		if blk.Dead {
			return
		}
		local := available{}
		for _, s := range blk.Stmts {
			if !s.Meta().Live {
				continue
			}
			c.stmt(s, stable, local)
			if clobbers(s) {
				clear(local)
			}

			switch x := s.(type) {
			case *ir.If:
				for _, inner := range ir.Contained(x) {
					c.chain(inner, maps.Clone(stable))
				}
			case *ir.Loop:
				switch x.Kind {
				case ir.While:
					head := maps.Clone(stable)
					c.chain(x.Test, head)
					c.chain(x.Body, head)
				default:
					for _, inner := range ir.Contained(x) {
						c.chain(inner, maps.Clone(stable))
					}
				}
			}
		}
		id = blk.Next
	}
}

func (c *CommonSubexpressions) stmt(s ir.Stmt, stable, local available) {
	a, ok := s.(*ir.Assign)
	if !ok || !a.Dst.IsTemp() || len(a.Effects) > 0 {
		return
	}
	key, isVolatile, ok := c.key(a.Value)
	if !ok {
		return
	}
	table := stable
	if isVolatile {
		table = local
	}
	if prev, found := table[key]; found {
		log.Debugf("reusing %s for %s", prev, a.Dst.Temp)
		a.Value = ir.Ref(prev)
		a.Effects = nil
		return
	}
	table[key] = a.Dst.Temp
}

// key canonicalizes a pure computation. Operands of commutative operators
// are ordered so both spellings share a key.
func (c *CommonSubexpressions) key(e ir.Expr) (string, bool, bool) {
	isVolatile := false
	operand := func(x ir.Expr) string {
		if volatile(c.program, x) {
			isVolatile = true
		}
		return ir.ExprString(x)
	}

	var key string
	switch x := e.(type) {
	case *ir.Unary:
		key = x.Op + " " + operand(x.X)
	case *ir.Binary:
		l, r := operand(x.L), operand(x.R)
		if commutative[x.Op] {
			pair := []string{l, r}
			sort.Strings(pair)
			l, r = pair[0], pair[1]
		}
		key = strings.Join([]string{l, x.Op, r}, " ")
	case *ir.Member:
		isVolatile = true
		key = ir.ExprString(x)
		operand(x.Object)
	default:
		return "", false, false
	}
	return key, isVolatile, true
}
