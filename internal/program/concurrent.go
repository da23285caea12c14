package program

import (
	"context"

	"golang.org/x/sync/errgroup"

	"egg/internal/diag"
	"egg/internal/syntax"
	"egg/internal/value"
)

// RunSpec pairs a self-contained Program with the module it should compile
// and run — each spec must own its own Program (and therefore its own
// allocator/basket/forge/sink), satisfying spec §5's "no shared mutable
// state crosses threads" for concurrent script execution.
type RunSpec struct {
	Program  *Program
	Resource string
	Root     *syntax.Node
}

// RunResult is one RunSpec's outcome.
type RunResult struct {
	Resource    string
	Value       value.Value
	Diagnostics []diag.Record
}

// RunConcurrent compiles and runs each spec on its own goroutine (spec §5:
// "multiple programs may run in parallel on distinct threads if each owns
// its own allocator, basket, and program state"), returning once every spec
// has finished or the first one returns an internal (non-script) error.
// Script-level throws are NOT errors here — they come back as ordinary
// Throw-flagged RunResult.Value entries, matching Runner.Run's own contract.
func RunConcurrent(ctx context.Context, specs []RunSpec) ([]RunResult, error) {
	results := make([]RunResult, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	for i := range specs {
		i := i
		spec := specs[i]
		g.Go(func() error {
			module, err := spec.Program.Compile(spec.Resource, spec.Root)
			if err != nil {
				return err
			}
			v, err := spec.Program.Run(gctx, module)
			if err != nil {
				return err
			}
			results[i] = RunResult{
				Resource:    spec.Resource,
				Value:       v,
				Diagnostics: spec.Program.Diagnostics(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
