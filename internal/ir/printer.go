package ir

import (
	"fmt"
	"strings"

	"jsopt/internal/ast"
)

// Printer provides pretty-printing for IR
type Printer struct {
	program *Program
	indent  int
	output  strings.Builder
}

// NewPrinter creates a new IR printer
func NewPrinter(program *Program) *Printer {
	return &Printer{program: program}
}

// Print returns the string representation of an IR program
func Print(program *Program) string {
	p := NewPrinter(program)
	p.printProgram()
	return p.output.String()
}

// Helper methods

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printProgram() {
	for _, fn := range p.program.Functions {
		p.printFunction(fn)
	}
}

func (p *Printer) printFunction(fn *Function) {
	if fn.ID == TopFunc {
		p.writeLine("program")
	} else {
		params := make([]string, len(fn.Params))
		for i, param := range fn.Params {
			params[i] = param.Name
			if param.Pinned {
				params[i] = "%" + param.Name
			}
		}
		name := fn.Name
		if name == "" {
			name = "<anonymous>"
		}
		p.writeLine("function #%d %s(%s)", fn.ID, name, strings.Join(params, ", "))
	}
	if len(fn.Pinned) > 0 {
		p.writeLine("  pinned %s", strings.Join(fn.Pinned, ", "))
	}
	p.indent++
	p.printChain(fn.Entry())
	p.indent--
}

func (p *Printer) printChain(id BlockID) {
	for id != NoBlock {
		blk := p.program.Blocks[id]
		switch {
		case blk.Dead:
			p.writeLine("%d: dead", blk.ID)
			return
		case blk.Prev != NoBlock:
			p.writeLine("%d: (continued %d)", blk.ID, blk.Prev)
		default:
			p.writeLine("%d:", blk.ID)
		}
		p.indent++
		for _, s := range blk.Stmts {
			p.writeLine("%s", p.stmtString(s))
			for _, inner := range Contained(s) {
				p.indent++
				p.printChain(inner)
				p.indent--
			}
		}
		p.indent--
		id = blk.Next
	}
}

func (p *Printer) stmtString(s Stmt) string {
	var text string
	switch x := s.(type) {
	case *Assign:
		op := "="
		if !x.Dst.IsTemp() {
			op = ":="
		}
		text = fmt.Sprintf("%s %s %s", x.Dst, op, ExprString(x.Value))
		if x.Mat != MatUnset {
			text += " [" + x.Mat.String() + "]"
		}
	case *ExprStmt:
		text = ExprString(x.X)
	case *PropSet:
		text = fmt.Sprintf("%s[%s] = %s", ExprString(x.Object), ExprString(x.Key), ExprString(x.Value))
	case *Return:
		text = "return " + ExprString(x.Value)
	case *Throw:
		text = "throw " + ExprString(x.Value)
	case *If:
		text = fmt.Sprintf("if %s then %d", ExprString(x.Cond), x.Then)
		if x.Else != NoBlock {
			text += fmt.Sprintf(" else %d", x.Else)
		}
		switch x.Known {
		case 1:
			text += " (true)"
		case -1:
			text += " (false)"
		}
	case *Loop:
		text = p.loopString(x)
	case *Break:
		text = fmt.Sprintf("break %d", x.Loop.Body)
	case *Continue:
		text = fmt.Sprintf("continue %d", x.Loop.Body)
	case *FuncDecl:
		text = fmt.Sprintf("%s = function #%d %s", x.Dst, x.Func, x.Name)
	default:
		text = fmt.Sprintf("<%T>", s)
	}
	if !s.Meta().Live {
		text += " ; dead"
	}
	return text
}

func (p *Printer) loopString(l *Loop) string {
	var b strings.Builder
	switch l.Kind {
	case ForIn, ForOf:
		word := "in"
		if l.Kind == ForOf {
			word = "of"
		}
		fmt.Fprintf(&b, "for %s %s %s body %d", l.Each, word, ExprString(l.Object), l.Body)
	default:
		cond := "<none>"
		if l.Cond != nil {
			cond = ExprString(l.Cond)
		}
		fmt.Fprintf(&b, "%s %s test %d body %d", l.Kind, cond, l.Test, l.Body)
	}
	switch {
	case l.Eliminated:
		b.WriteString(" (eliminated)")
	case l.Once:
		b.WriteString(" (once)")
	case l.Infinite:
		b.WriteString(" (infinite)")
	}
	return b.String()
}

// ExprString renders an expression in IR text form.
func ExprString(e Expr) string {
	switch x := e.(type) {
	case nil:
		return "<nil>"
	case Literal:
		return x.Source()
	case TempRef:
		return x.ID.String()
	case Ident:
		return "@" + x.Name
	case Local:
		if x.Pinned {
			return "%" + x.Name
		}
		return x.Name
	case This:
		return "this"
	case Arguments:
		return "arguments"
	case FuncRef:
		return fmt.Sprintf("#%d", x.Func)
	case Raw:
		return "raw(" + x.Text + ")"
	case *Unary:
		if ast.IsIdentifierName(x.Op) {
			return x.Op + " " + ExprString(x.X)
		}
		return x.Op + ExprString(x.X)
	case *Binary:
		return fmt.Sprintf("%s %s %s", ExprString(x.L), x.Op, ExprString(x.R))
	case *Member:
		text := fmt.Sprintf("%s[%s]", ExprString(x.Object), ExprString(x.Key))
		if x.Gen >= 0 {
			text += fmt.Sprintf("@g%d", x.Gen)
		}
		return text
	case *Call:
		var callee string
		if x.Object != nil {
			callee = fmt.Sprintf("%s[%s]", ExprString(x.Object), ExprString(x.Key))
		} else {
			callee = ExprString(x.Callee)
		}
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			args[i] = ExprString(a)
		}
		text := fmt.Sprintf("%s(%s)", callee, strings.Join(args, ", "))
		if x.New {
			text = "new " + text
		}
		return text
	case *NewObject:
		props := make([]string, len(x.Props))
		for i, prop := range x.Props {
			key := ast.Quote(prop.Key)
			if prop.KeyExpr != nil {
				key = "[" + ExprString(prop.KeyExpr) + "]"
			}
			props[i] = key + ": " + ExprString(prop.Value)
		}
		return "{" + strings.Join(props, ", ") + "}"
	case *NewArray:
		elems := make([]string, len(x.Elems))
		for i, el := range x.Elems {
			elems[i] = ExprString(el)
		}
		return "[" + strings.Join(elems, ", ") + "]"
	case *Phi:
		return "phi"
	case *Delete:
		return fmt.Sprintf("delete %s[%s]", ExprString(x.Object), ExprString(x.Key))
	}
	return fmt.Sprintf("<%T>", e)
}
