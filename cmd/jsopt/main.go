// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"jsopt/internal/compiler"
	"jsopt/internal/errors"
	"jsopt/internal/repl"
)

func main() {
	opts := compiler.OptionsFromEnv()

	flag.BoolVar(&opts.OutputIR, "ir", opts.OutputIR, "print the optimized IR instead of source")
	flag.BoolVar(&opts.OptimizeForSize, "size", opts.OptimizeForSize, "avoid rewrites that grow the output")
	flag.BoolVar(&opts.Compact, "compact", opts.Compact, "omit optional whitespace")
	output := flag.String("o", "", "write the result to `file` instead of stdout")
	verbose := flag.Int("v", 0, "log verbosity (0 quiet, 1 info, 2 debug)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: jsopt [flags] [file.js]")
		fmt.Fprintln(os.Stderr, "Without a file, each line read from stdin is optimized on its own.")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(1)
	}
	commonlog.Configure(*verbose, nil)

	if flag.NArg() == 0 {
		fmt.Println("jsopt REPL")
		if err := repl.Start(os.Stdin, os.Stdout, opts); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	startTime := time.Now()
	path := flag.Arg(0)

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read file: %v\n", err)
		os.Exit(1)
	}

	result, err := compiler.CompileSource(path, string(source), opts)
	duration := formatDuration(time.Since(startTime))
	if err != nil {
		if ce, ok := errors.AsCompilerError(err); ok {
			fmt.Fprint(os.Stderr, errors.NewErrorReporter(path, string(source)).FormatError(*ce))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		color.Red("Optimization failed after %s", duration)
		os.Exit(1)
	}

	if *output == "" {
		fmt.Println(result)
		return
	}
	if err := os.WriteFile(*output, []byte(result+"\n"), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write file: %v\n", err)
		os.Exit(1)
	}
	color.Green("Optimized %s into %s in %s", path, *output, duration)
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
