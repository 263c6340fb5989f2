package errors

// Error codes for the jsopt optimizer.
//
// Error code ranges:
// E0100-E0149: Unsupported input constructs
// E0150-E0199: Parser errors
// E0900-E0999: Internal errors

const (
	// E0101: Labeled statements and labeled break/continue
	ErrorLabel = "E0101"

	// E0102: Destructuring patterns in declarations or parameters
	ErrorDestructuring = "E0102"

	// E0103: Spread and rest syntax
	ErrorSpread = "E0103"

	// E0104: Generator functions
	ErrorGenerator = "E0104"

	// E0105: Assignment to something that is not a name or member
	ErrorAssignTarget = "E0105"

	// E0106: let/const read before its declaration
	ErrorUseBeforeDecl = "E0106"

	// E0107: Statement or expression nesting too deep to lower
	ErrorNestingTooDeep = "E0107"

	// E0108: let/const captured by a closure inside a loop body
	ErrorLoopClosure = "E0108"

	// E0109: Function expression in a for-loop update reached through continue
	ErrorUpdateClosure = "E0109"

	// E0110: try, switch, class, with and other statement forms outside the subset
	ErrorStatement = "E0110"

	// E0150: Input is not valid script syntax
	ErrorSyntax = "E0150"

	// E0900: Optimizer invariant broken
	ErrorInternal = "E0900"
)

// GetErrorDescription returns a human-readable description of the error code
func GetErrorDescription(code string) string {
	switch code {
	case ErrorLabel:
		return "Labeled statements are not supported"
	case ErrorDestructuring:
		return "Destructuring patterns are not supported"
	case ErrorSpread:
		return "Spread and rest syntax is not supported"
	case ErrorGenerator:
		return "Generator functions are not supported"
	case ErrorAssignTarget:
		return "Invalid assignment target"
	case ErrorUseBeforeDecl:
		return "Binding is read before its declaration"
	case ErrorNestingTooDeep:
		return "Input is nested too deeply"
	case ErrorLoopClosure:
		return "Block-scoped binding captured inside a loop"
	case ErrorUpdateClosure:
		return "Function expression in a loop update"
	case ErrorStatement:
		return "Statement form is not supported"
	case ErrorSyntax:
		return "Syntax error"
	case ErrorInternal:
		return "Internal optimizer error"
	default:
		return "Unknown error code"
	}
}

// GetErrorCategory returns the category of the error based on its code
func GetErrorCategory(code string) string {
	switch {
	case code >= "E0100" && code < "E0150":
		return "Unsupported"
	case code >= "E0150" && code < "E0200":
		return "Parser"
	case code >= "E0900" && code < "E1000":
		return "Internal"
	default:
		return "Unknown"
	}
}
