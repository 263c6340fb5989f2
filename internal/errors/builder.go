package errors

import (
	stderrors "errors"
	"fmt"

	"jsopt/internal/ast"
)

// CompileErrorBuilder provides a fluent interface for creating compile errors
type CompileErrorBuilder struct {
	err CompilerError
}

// NewCompileError creates a new error builder
func NewCompileError(code, message string, pos ast.Position) *CompileErrorBuilder {
	return &CompileErrorBuilder{
		err: CompilerError{
			Level:    Error,
			Code:     code,
			Message:  message,
			Position: pos,
			Length:   1,
		},
	}
}

// WithLength sets the length of the error span
func (b *CompileErrorBuilder) WithLength(length int) *CompileErrorBuilder {
	b.err.Length = length
	return b
}

// WithSuggestion adds a suggestion to the error
func (b *CompileErrorBuilder) WithSuggestion(message string) *CompileErrorBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{Message: message})
	return b
}

// WithNote adds a note to the error
func (b *CompileErrorBuilder) WithNote(note string) *CompileErrorBuilder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

// WithHelp adds help text to the error
func (b *CompileErrorBuilder) WithHelp(help string) *CompileErrorBuilder {
	b.err.HelpText = help
	return b
}

// Build returns the completed compiler error
func (b *CompileErrorBuilder) Build() CompilerError {
	return b.err
}

// Unsupported reports a construct outside the optimizable subset.
func Unsupported(code, construct string, pos ast.Position) *CompilerError {
	builder := NewCompileError(code, fmt.Sprintf("%s %s not supported", construct, verb(construct)), pos)
	switch code {
	case ErrorLabel:
		builder = builder.WithSuggestion("restructure the loop so that an unlabeled break or continue is enough")
	case ErrorDestructuring:
		builder = builder.WithSuggestion("bind the value to a name and read its members explicitly")
	case ErrorSpread:
		builder = builder.WithSuggestion("use apply, concat or explicit assignments instead")
	case ErrorLoopClosure:
		builder = builder.WithNote("each iteration would need its own binding").
			WithSuggestion("declare the binding with 'var' or move the closure out of the loop")
	}
	ce := builder.Build()
	return &ce
}

func verb(construct string) string {
	if len(construct) > 0 && construct[len(construct)-1] == 's' {
		return "are"
	}
	return "is"
}

// UseBeforeDeclaration reports a read of a let/const binding ahead of its declaration.
func UseBeforeDeclaration(name string, pos ast.Position) *CompilerError {
	ce := NewCompileError(ErrorUseBeforeDecl, fmt.Sprintf("'%s' is used before its declaration", name), pos).
		WithLength(len(name)).
		WithNote("let and const bindings are not hoisted").
		Build()
	return &ce
}

// InvalidAssignTarget reports an assignment whose target is not a name or member.
func InvalidAssignTarget(pos ast.Position) *CompilerError {
	ce := NewCompileError(ErrorAssignTarget, "invalid assignment target", pos).
		WithHelp("only names and member expressions can be assigned").
		Build()
	return &ce
}

// NestingTooDeep reports input that exceeds the lowering depth limit.
func NestingTooDeep(limit int, pos ast.Position) *CompilerError {
	ce := NewCompileError(ErrorNestingTooDeep, fmt.Sprintf("nesting exceeds %d levels", limit), pos).Build()
	return &ce
}

// Syntax reports input that no script engine would accept.
func Syntax(message string, pos ast.Position) *CompilerError {
	ce := NewCompileError(ErrorSyntax, message, pos).Build()
	return &ce
}

// Internal reports a broken optimizer invariant.
func Internal(format string, args ...any) *CompilerError {
	ce := NewCompileError(ErrorInternal, fmt.Sprintf(format, args...), ast.Position{}).
		WithNote("this is a bug in the optimizer").
		Build()
	return &ce
}

// AsCompilerError unwraps err into a *CompilerError when it carries one.
func AsCompilerError(err error) (*CompilerError, bool) {
	var ce *CompilerError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
