// Package program implements the embedder-facing Program API of spec §6:
// "The embedder: constructs an allocator, basket, and VM; creates a program
// builder; registers built-in symbols (assert, print, and primitive-type
// handles); compiles one or more modules; creates a runner; invokes run()."
// Grounded on teacher:cmd/sentra/main.go's bootstrap sequence (allocator →
// loader → vm → run) and orig:ovum/program.h/.cpp's Program API shape,
// wiring together every other component package behind one constructor.
package program

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"egg/internal/basket"
	"egg/internal/diag"
	"egg/internal/ir"
	"egg/internal/memory"
	"egg/internal/runtime"
	"egg/internal/syntax"
	"egg/internal/types"
	"egg/internal/value"
)

// Program bundles one self-contained toolchain instance: its own allocator,
// basket, type forge, diagnostics sink, and runtime (spec §5: "Multiple
// programs may run in parallel on distinct threads if each owns its own
// allocator, basket, and program state; no shared mutable state crosses
// threads"). Each instance carries a correlation id so logs from several
// concurrently-running programs can be told apart.
type Program struct {
	id      uuid.UUID
	alloc   *memory.Allocator
	basket  *basket.Basket
	forge   *types.Forge
	sink    *diag.Sink
	common  types.Common
	rt      *runtime.Runtime
	globals map[string]value.Value
}

// Option configures a Program at construction time.
type Option func(*Program)

// WithAllocator overrides the program's allocator, e.g. to share bookkeeping
// across a caller-managed pool. Most embedders should leave this unset.
func WithAllocator(a *memory.Allocator) Option {
	return func(p *Program) { p.alloc = a }
}

// WithSink overrides the diagnostics sink, e.g. so a caller can keep logging
// into one sink across several sequential compiles.
func WithSink(s *diag.Sink) Option {
	return func(p *Program) { p.sink = s }
}

// WithForge overrides the type forge. Sharing a forge across programs is
// safe (it is internally synchronized, spec §4.4) and avoids re-interning
// identical structural types when an embedder runs many short scripts.
func WithForge(f *types.Forge) Option {
	return func(p *Program) { p.forge = f }
}

// New assembles a Program: allocator, basket, forge (with metashapes
// bootstrapped, SPEC_FULL §3), diagnostics sink, the assert/print builtins,
// and a Runtime wired over all of it (spec §6 bootstrap sequence).
func New(opts ...Option) *Program {
	p := &Program{id: uuid.New()}
	for _, opt := range opts {
		opt(p)
	}
	if p.alloc == nil {
		p.alloc = memory.NewAllocator()
	}
	if p.sink == nil {
		p.sink = diag.NewSink()
	}
	if p.forge == nil {
		p.forge = types.NewForge()
	}
	p.basket = basket.New()
	p.common = p.forge.Common()
	p.forge.BootstrapMetashapes(p.common)
	p.rt = runtime.New(p.forge, p.sink, p.basket, p.alloc)
	p.globals = p.registerBuiltins()
	return p
}

// ID returns this program's correlation id, surfaced in diagnostics when
// several programs run concurrently (spec §5).
func (p *Program) ID() uuid.UUID { return p.id }

// Forge returns the program's type forge.
func (p *Program) Forge() *types.Forge { return p.forge }

// Sink returns the program's diagnostics sink.
func (p *Program) Sink() *diag.Sink { return p.sink }

// Basket returns the program's object-graph basket.
func (p *Program) Basket() *basket.Basket { return p.basket }

// Allocator returns the program's bookkeeping allocator.
func (p *Program) Allocator() *memory.Allocator { return p.alloc }

// Diagnostics returns every diagnostic record logged so far, across every
// Compile/Run call this Program has made.
func (p *Program) Diagnostics() []diag.Record { return p.sink.Records() }

// ExitCode maps the worst diagnostic severity logged so far to the driver's
// stable exit codes (spec §6).
func (p *Program) ExitCode() int { return p.sink.ExitCode() }

// Statistics renders a combined allocator/basket usage summary for
// diagnostic dumps (SPEC_FULL §3 "Basket Statistics").
func (p *Program) Statistics() string {
	return fmt.Sprintf("%s; %s", p.alloc.Statistics(), p.basket.Statistics())
}

// CompileErr is returned by Compile when the compiler logged one or more
// errors; the module itself is unrecoverable in that case (spec §4.6.7).
type CompileErr struct {
	Resource string
	Records  []diag.Record
}

func (e *CompileErr) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "program: compiling %q failed:", e.Resource)
	for _, r := range e.Records {
		if r.Severity == diag.Error {
			sb.WriteString("\n  " + r.String())
		}
	}
	return sb.String()
}

// Compile lowers a parsed syntax tree into Module IR, reporting diagnostics
// into the program's sink (spec §4.6.1). root is whatever the external
// lexer/parser produced (out of scope here, spec §1); internal/syntax only
// stands in for its node shape.
func (p *Program) Compile(resource string, root *syntax.Node) (*ir.Module, error) {
	before := len(p.sink.Records())
	module := newCompiler(p).Compile(resource, root)
	if module == nil {
		return nil, &CompileErr{Resource: resource, Records: p.sink.Records()[before:]}
	}
	return module, nil
}

// Runner executes compiled modules against one Program's runtime and global
// scope (spec §6 "creates a runner; invokes run()").
type Runner struct {
	p *Program
}

// NewRunner creates a Runner bound to p's runtime, basket, and globals.
func (p *Program) NewRunner() *Runner {
	return &Runner{p: p}
}

// Run executes module's root block. The returned value may itself carry a
// Throw flag (an uncaught script exception, spec §6 "Unhandled throws at
// program top-level become the program's result"); err is non-nil only for
// an internal fault.
func (r *Runner) Run(ctx context.Context, module *ir.Module) (value.Value, error) {
	return r.p.rt.Run(ctx, module, r.p.globals)
}

// Run is a convenience wrapper equivalent to NewRunner().Run(ctx, module).
func (p *Program) Run(ctx context.Context, module *ir.Module) (value.Value, error) {
	return p.NewRunner().Run(ctx, module)
}

// ReleaseResult marks v's object payload (if any) as no longer held by the
// embedder, so the next Collect/Purge can reclaim it (spec §8 testable
// property 1).
func (p *Program) ReleaseResult(v value.Value) {
	runtime.ReleaseRoot(v)
}
