// Command egg is a thin driver over internal/program (spec §6: the real CLI
// driver is out of scope, so this one stays minimal). It reads a script from
// a file argument, from -e, or from one of the built-in spec §8
// demonstration scenarios, then compiles and runs it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"egg/internal/program"
	"egg/internal/source"
	"egg/internal/syntax"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("egg", flag.ContinueOnError)
	n := fs.Int("scenario", 0, "run the given spec demonstration scenario (1-6) instead of a file")
	inline := fs.String("e", "", "run the given inline script instead of a file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	src, code := intake(fs, *n, *inline)
	if code != 0 {
		return code
	}

	root, err := syntax.Parse(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "egg:", err)
		return 1
	}

	p := program.New()
	module, err := p.Compile(src.Resource, root)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	result, err := p.Run(context.Background(), module)
	if err != nil {
		fmt.Fprintln(os.Stderr, "egg: internal error:", err)
		return 1
	}

	for _, rec := range p.Diagnostics() {
		fmt.Println(rec.String())
	}
	if result.IsFlowControl() {
		fmt.Fprintf(os.Stderr, "egg: program ended with an uncaught %s\n", result.Flags())
		return 1
	}
	return p.ExitCode()
}

// intake resolves the three input modes to one Source; a non-zero code means
// usage or read failure.
func intake(fs *flag.FlagSet, n int, inline string) (source.Source, int) {
	switch {
	case n != 0:
		if n < 1 || n > len(scenarios) {
			fmt.Fprintf(os.Stderr, "egg: unknown -scenario=%d (valid: 1-%d)\n", n, len(scenarios))
			return source.Source{}, 2
		}
		return source.FromString(fmt.Sprintf("<scenario-%d>", n), scenarios[n-1]), 0
	case inline != "":
		return source.FromString("<inline>", inline), 0
	case fs.NArg() == 1:
		src, err := source.FromFile(fs.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, "egg:", err)
			return source.Source{}, 1
		}
		return src, 0
	default:
		fmt.Fprintln(os.Stderr, "usage: egg [-scenario N | -e SCRIPT | FILE]")
		return source.Source{}, 2
	}
}
