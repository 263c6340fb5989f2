package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"jsopt/internal/errors"
)

// ConvertError turns a parse or lowering failure into diagnostics. Errors
// that carry no source position are reported on the first line.
func ConvertError(err error) []protocol.Diagnostic {
	if err == nil {
		return nil
	}

	ce, ok := errors.AsCompilerError(err)
	if !ok {
		return []protocol.Diagnostic{{
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("jsopt"),
			Message:  err.Error(),
		}}
	}

	line := max(ce.Position.Line-1, 0)
	start := max(ce.Position.Column-1, 0)
	length := ce.Length
	if length <= 0 {
		length = 1
	}

	message := ce.Message
	if ce.HelpText != "" {
		message += "\nhelp: " + ce.HelpText
	}

	return []protocol.Diagnostic{{
		Range: protocol.Range{
			Start: protocol.Position{Line: uint32(line), Character: uint32(start)},
			End:   protocol.Position{Line: uint32(line), Character: uint32(start + length)},
		},
		Severity: ptrSeverity(severity(ce.Level)),
		Code:     &protocol.IntegerOrString{Value: ce.Code},
		Source:   ptrString("jsopt"),
		Message:  message,
	}}
}

func severity(level errors.ErrorLevel) protocol.DiagnosticSeverity {
	switch level {
	case errors.Warning:
		return protocol.DiagnosticSeverityWarning
	case errors.Note:
		return protocol.DiagnosticSeverityInformation
	case errors.Help:
		return protocol.DiagnosticSeverityHint
	}
	return protocol.DiagnosticSeverityError
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}
