// Package repl reads scripts a line at a time and prints what the
// optimizer makes of each one.
package repl

import (
	"bufio"
	"fmt"
	"io"

	"jsopt/internal/compiler"
	"jsopt/internal/errors"
)

const PROMPT = ">> "

// Start compiles every line read from in as a separate script and writes
// the result, or the formatted error, to out. It returns when in is
// exhausted.
func Start(in io.Reader, out io.Writer, opts compiler.Options) error {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, PROMPT)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := scanner.Text()
		if line == "" {
			continue
		}

		result, err := compiler.CompileSource("<stdin>", line, opts)
		if err != nil {
			if ce, ok := errors.AsCompilerError(err); ok {
				fmt.Fprint(out, errors.NewErrorReporter("<stdin>", line).FormatError(*ce))
			} else {
				fmt.Fprintln(out, err)
			}
			continue
		}
		fmt.Fprintln(out, result)
	}
}
