package ir

// This file provides the main entry point for the IR system.
// The IR keeps every local value in a single-assignment temp; passes in
// package optimize rewrite it in place and package emit turns it back
// into a syntax tree.

import (
	"jsopt/internal/ast"
)

// BuildProgram is the main entry point for converting a syntax tree to IR
func BuildProgram(program *ast.Program) (*Program, error) {
	return NewBuilder().Build(program)
}

// PrintProgram returns a pretty-printed representation of the IR
func PrintProgram(program *Program) string {
	return Print(program)
}
