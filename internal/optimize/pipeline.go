package optimize

import (
	"github.com/tliron/commonlog"

	"jsopt/internal/ir"
)

// This file contains the pass driver. Every pass is total over the program
// and rewrites the IR in place; the pipeline runs the passes in a fixed
// order and repeats them until the IR text stops changing.

var log = commonlog.GetLogger("jsopt.optimize")

// MaxRounds bounds how often the pipeline is repeated.
const MaxRounds = 8

// Pass represents a single analysis or transformation over the IR. A pass
// implements any of the visitor interfaces below; the driver calls them in
// program, function, block, statement order.
type Pass interface {
	Name() string
	Description() string
}

type ProgramVisitor interface {
	VisitProgram(p *ir.Program)
}

type FunctionVisitor interface {
	VisitFunction(p *ir.Program, f *ir.Function)
}

type BlockVisitor interface {
	VisitBlock(p *ir.Program, b *ir.Block)
}

type StatementVisitor interface {
	VisitStatement(p *ir.Program, s ir.Stmt)
}

// Options tune the passes.
type Options struct {
	// OptimizeForSize disables simplifications that make output longer.
	OptimizeForSize bool
}

// Pipeline manages the sequence of optimization passes
type Pipeline struct {
	passes []Pass
}

// NewPipeline creates a pipeline with the default passes in order.
func NewPipeline(opts Options) *Pipeline {
	pipeline := &Pipeline{}

	pipeline.AddPass(&Liveness{})
	pipeline.AddPass(&Simplify{OptimizeForSize: opts.OptimizeForSize})
	pipeline.AddPass(&BranchElimination{})
	pipeline.AddPass(&ControlFlowGraph{})
	pipeline.AddPass(&CommonSubexpressions{})
	pipeline.AddPass(&InstanceInlining{})
	pipeline.AddPass(&TemporaryMaterialization{})
	pipeline.AddPass(&DeadStatementCulling{})

	return pipeline
}

// AddPass adds an optimization pass to the pipeline
func (p *Pipeline) AddPass(pass Pass) {
	p.passes = append(p.passes, pass)
}

// Passes returns the passes in execution order.
func (p *Pipeline) Passes() []Pass {
	return p.passes
}

// RunOnce applies every pass once.
func (p *Pipeline) RunOnce(program *ir.Program) {
	for _, pass := range p.passes {
		log.Debugf("pass %s: %s", pass.Name(), pass.Description())
		Apply(pass, program)
	}
}

// Run repeats the pipeline until the IR text reaches a fixpoint and returns
// the number of rounds it took.
func (p *Pipeline) Run(program *ir.Program) int {
	prev := ir.Print(program)
	for round := 1; ; round++ {
		p.RunOnce(program)
		text := ir.Print(program)
		if text == prev || round == MaxRounds {
			log.Infof("optimized in %d round(s)", round)
			return round
		}
		prev = text
	}
}

// Run optimizes a program with the default pipeline.
func Run(program *ir.Program, opts Options) int {
	return NewPipeline(opts).Run(program)
}

// Apply invokes the hooks pass implements over every non-dead block of
// every function. Statement hooks see live statements only.
func Apply(pass Pass, program *ir.Program) {
	if v, ok := pass.(ProgramVisitor); ok {
		v.VisitProgram(program)
	}
	fv, _ := pass.(FunctionVisitor)
	bv, _ := pass.(BlockVisitor)
	sv, _ := pass.(StatementVisitor)
	if fv == nil && bv == nil && sv == nil {
		return
	}

	var chain func(id ir.BlockID)
	chain = func(id ir.BlockID) {
		for id != ir.NoBlock {
			blk := program.Blocks[id]
			if blk.Dead {
				return
			}
			if bv != nil {
				bv.VisitBlock(program, blk)
			}
			for _, s := range append([]ir.Stmt(nil), blk.Stmts...) {
				if !s.Meta().Live {
					continue
				}
				if sv != nil {
					sv.VisitStatement(program, s)
				}
				for _, inner := range ir.Contained(s) {
					chain(inner)
				}
			}
			id = blk.Next
		}
	}

	for _, fn := range program.Functions {
		if fv != nil {
			fv.VisitFunction(program, fn)
		}
		if bv != nil || sv != nil {
			chain(fn.Entry())
		}
	}
}

// markDead marks a block chain and everything it contains unreachable.
func markDead(p *ir.Program, id ir.BlockID) {
	for id != ir.NoBlock {
		blk := p.Blocks[id]
		blk.Dead = true
		for _, s := range blk.Stmts {
			s.Meta().Live = false
			for _, inner := range ir.Contained(s) {
				markDead(p, inner)
			}
		}
		id = blk.Next
	}
}

// defOf returns the live assignment defining the temp e refers to.
func defOf(p *ir.Program, e ir.Expr) *ir.Assign {
	r, ok := e.(ir.TempRef)
	if !ok {
		return nil
	}
	a, _ := p.Def(r.ID).(*ir.Assign)
	return a
}

// volatile reports whether a trivial operand reads storage that other
// statements can write.
func volatile(p *ir.Program, e ir.Expr) bool {
	switch x := e.(type) {
	case ir.TempRef:
		return p.IsPhi(x.ID)
	case ir.Local:
		return x.Pinned
	case ir.Ident:
		return p.AssignedGlobals[x.Name]
	}
	return false
}

// clobbers reports whether s may change what volatile operands read.
func clobbers(s ir.Stmt) bool {
	if len(s.Meta().Effects) > 0 {
		return true
	}
	switch x := s.(type) {
	case *ir.Assign:
		return !x.Dst.IsTemp()
	case *ir.Loop:
		return true
	}
	return false
}
