package program

import (
	"context"
	"strings"

	"egg/internal/compiler"
	"egg/internal/diag"
	"egg/internal/ir"
	"egg/internal/runtime"
	"egg/internal/text"
	"egg/internal/types"
	"egg/internal/value"
)

// stringFailure is the generic thrown payload for a failing assert reached
// through the first-class-value fallback path (nativeAssert).
var stringFailure = text.New("assertion failed")

// newCompiler builds a compiler bound to p's forge and sink; internal/compiler
// separately registers the same assert/print/primitive-type symbol *types*
// into its own root expression context (spec §4.6.1) — registerBuiltins here
// supplies the matching runtime *values* those symbols resolve to.
func newCompiler(p *Program) *compiler.Compiler {
	return compiler.New(p.forge, p.sink)
}

// registerBuiltins constructs the assert/print NativeFunction values as
// roots kept outside the program's basket (spec §6 "Built-ins"). Their compile-time
// signatures must match exactly what internal/compiler.registerBuiltins
// declares, since a guard/assignability check comparing the two would
// otherwise fail for a perfectly legal `f(print)`-shaped expression.
func (p *Program) registerBuiltins() map[string]value.Value {
	assertSig := p.forge.ForgeFunctionType(&types.Callable{
		ReturnType: p.common.Void,
		Parameters: []types.Parameter{
			{Name: "predicate", Type: p.common.Any, Flags: types.Required},
		},
	})
	printSig := p.forge.ForgeFunctionType(&types.Callable{
		ReturnType: p.common.Void,
		Parameters: []types.Parameter{
			{Name: "values", Type: p.common.AnyQ, Flags: types.Variadic},
		},
	})

	assertFn := runtime.NewNativeFunction("assert", assertSig, p.nativeAssert)
	printFn := runtime.NewNativeFunction("print", printSig, p.nativePrint)

	return map[string]value.Value{
		"assert": p.rt.RegisterBuiltin(assertFn),
		"print":  p.rt.RegisterBuiltin(printFn),
	}
}

// nativePrint implements spec §6 "print(...): serialises each argument and
// emits an Information user log record". The compiler lowers direct
// `print(...)` calls through the same ir.ExprCall path as any other call (no
// special-casing, unlike assert), so this is reached for every invocation.
func (p *Program) nativePrint(ctx context.Context, r *runtime.Runtime, args []value.Value) (value.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = runtime.Describe(a)
	}
	p.sink.Logf(diag.SourceUser, diag.Information, ir.Range{}, "%s", strings.Join(parts, ""))
	return value.Void, nil
}

// nativeAssert is the fallback path reached only when `assert` flows through
// as a first-class value (e.g. `var f = assert; f(x == y)`) rather than
// being called directly by name — the direct-call shape is special-cased in
// internal/runtime.evalAssert to keep the richer "left=.. right=.." failure
// message (spec §4.6.6), which isn't recoverable here since the predicate
// sub-expression has already been evaluated down to a single Bool value.
func (p *Program) nativeAssert(ctx context.Context, r *runtime.Runtime, args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Value{}, diag.Internal("assert called with no predicate")
	}
	b, ok := args[0].Bool()
	if !ok {
		return value.Value{}, diag.Internal("assert predicate did not evaluate to bool")
	}
	if b {
		return value.Void, nil
	}
	thrown := value.NewString(stringFailure)
	return value.NewThrow(&thrown), nil
}
