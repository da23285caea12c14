// Package runtime implements the tree-walking interpreter (spec component
// I): it executes a compiled Module IR directly, with no separate bytecode
// stage (spec §1 Non-goal, §4.7).
package runtime

import (
	"context"

	"egg/internal/basket"
	"egg/internal/diag"
	"egg/internal/ir"
	"egg/internal/memory"
	"egg/internal/text"
	"egg/internal/types"
	"egg/internal/value"
)

// cancelledMessage is the thrown payload when cooperative cancellation
// fires mid-execution (spec §5.1).
var cancelledMessage = text.New("operation cancelled")

// Runtime is the shared, reentrant interpreter state a compiled module
// executes against: the type forge (for assignability/shape queries), the
// diagnostics sink, the basket owning every object this run allocates, and
// the bookkeeping allocator (spec §4.1, §4.3, §4.4 wired together exactly
// as internal/program's embedder assembles them, spec §6).
type Runtime struct {
	forge  *types.Forge
	sink   *diag.Sink
	basket *basket.Basket
	alloc  *memory.Allocator
}

// New creates a Runtime over the given collaborators. None may be nil.
func New(forge *types.Forge, sink *diag.Sink, bsk *basket.Basket, alloc *memory.Allocator) *Runtime {
	return &Runtime{forge: forge, sink: sink, basket: bsk, alloc: alloc}
}

// Env threads the per-call interpreter state through every exec/eval call:
// the active scope chain, the current generator (non-nil only while
// executing a generator's body), and the exception currently being handled
// (non-nil only while executing a catch block, for bare `throw;`). It is
// small and copied by value at scope boundaries rather than mutated in
// place, mirroring the compiler's own ExprContext/StmtContext chaining.
type Env struct {
	rt        *Runtime
	ctx       context.Context
	scope     *Scope
	generator *generatorState
	exception *value.Value
}

func (e Env) withScope(s *Scope) Env {
	e.scope = s
	return e
}

func (e Env) withException(v *value.Value) Env {
	e.exception = v
	return e
}

// Run executes module's root block in a fresh root scope seeded with
// globals (the builtins internal/program registers, spec §6), returning
// whatever flow-control value the root block produced (most commonly Void,
// or a Throw if the program raised uncaught). err is non-nil only for an
// internal fault, never for a script-level throw.
func (r *Runtime) Run(ctx context.Context, module *ir.Module, globals map[string]value.Value) (value.Value, error) {
	root := newScope(nil)
	for name, v := range globals {
		root.declare(name, value.NewSlot(v))
	}
	env := Env{rt: r, ctx: ctx, scope: root}
	return r.execStmt(env, module.Root)
}

// checkCancelled reports the cooperative-cancellation fault (spec §5.1
// "resource model... honoured at loop backedges and call boundaries") as an
// internal Throw-shaped value so callers can propagate it through ordinary
// flow-control plumbing instead of threading a second error return
// everywhere.
func checkCancelled(ctx context.Context) (value.Value, bool) {
	select {
	case <-ctx.Done():
		msg := value.NewString(cancelledMessage)
		return value.NewThrow(&msg), true
	default:
		return value.Value{}, false
	}
}

// bindParams builds the call-local scope for invoking fn with args: a
// capture frame holding fn's captured slots (shared, not copied — mutating
// a captured variable through one closure is visible to every closure that
// captured it, spec §4.7), with a child scope binding each parameter.
func (r *Runtime) bindParams(fn *FunctionObject, args []value.Value) *Scope {
	captures := &Scope{vars: fn.Captures}
	inner := newScope(captures)
	for i, p := range fn.Params {
		if p.Flags&types.Variadic != 0 {
			rest := args[i:]
			elems := make([]*value.Slot, len(rest))
			for j, v := range rest {
				demoteIfObject(v)
				elems[j] = value.NewSlot(v)
			}
			arr := &ArrayObject{Elements: elems, Typ: r.forge.ForgeCompositeShape(&types.Shape{
				Iterable:  &types.Iterable{ElementType: p.Type},
				Indexable: &types.Indexable{ResultType: p.Type, IndexType: nil, Access: types.Get},
			})}
			arr.root = true
			r.take(arr)
			inner.declare(p.Name, value.NewSlot(value.NewObject(arr)))
			break
		}
		var v value.Value
		if i < len(args) {
			v = args[i]
		} else {
			v = zeroValue(p.Type)
		}
		demoteIfObject(v)
		inner.declare(p.Name, value.NewSlot(v))
	}
	return inner
}

// callFunction invokes a non-generator FunctionObject and returns its
// settled result value (Void if it fell off the end, the returned value if
// it hit `return`, or an uncaught Throw propagated to the caller).
func (r *Runtime) callFunction(e Env, fn *FunctionObject, args []value.Value) (value.Value, error) {
	if v, cancelled := checkCancelled(e.ctx); cancelled {
		return v, nil
	}
	callEnv := e.withScope(r.bindParams(fn, args))
	callEnv.generator = nil
	callEnv.exception = nil
	result, err := r.execStmt(callEnv, fn.Body)
	if err != nil {
		return value.Value{}, err
	}
	switch {
	case result.Is(types.Throw):
		return result, nil
	case result.Is(types.Return):
		if inner := result.Inner(); inner != nil {
			return *inner, nil
		}
		return value.Void, nil
	default:
		return value.Void, nil
	}
}

// zeroValue picks the default payload a declared-but-undefined variable of
// type t gets (spec §4.6.2 "Declare": "a slot whose kind matches the
// declared type"). Nullable/object-flavoured declarations default to Null
// so the slot's fixed kind accepts any later assignment; this means a bare
// `int? x;` cannot be pre/post-incremented before its first assignment.
func zeroValue(t *types.Type) value.Value {
	switch {
	case t.Flags.HasAny(types.Bool) && !t.Flags.HasAny(types.Null|types.Object):
		return value.False
	case t.Flags.HasAny(types.Int) && !t.Flags.HasAny(types.Null|types.Object):
		return value.NewInt(0)
	case t.Flags.HasAny(types.Float) && !t.Flags.HasAny(types.Null|types.Object):
		return value.NewFloat(0)
	case t.Flags.HasAny(types.String) && !t.Flags.HasAny(types.Null|types.Object):
		return value.NewString(text.Empty())
	default:
		return value.Null
	}
}

// runtimeTypeOf returns the dynamic type a value should be checked against
// for guard/catch assignability: an object reports its own runtime shape,
// everything else reports its primitive flag set (spec §3.3, §4.7).
func runtimeTypeOf(forge *types.Forge, v value.Value) *types.Type {
	if obj, ok := v.AsObject(); ok {
		return obj.RuntimeType()
	}
	return forge.ForgePrimitive(v.Flags())
}
