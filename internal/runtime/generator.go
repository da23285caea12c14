package runtime

import (
	"context"

	"github.com/pkg/errors"

	"egg/internal/types"
	"egg/internal/value"
)

// errGeneratorAbandoned unwinds a generator body whose consumer stopped
// pulling (a `break` out of a for-each, most commonly). It never surfaces to
// the embedder: the body goroutine swallows it on its way out.
var errGeneratorAbandoned = errors.New("runtime: generator abandoned by its consumer")

// generatorState is the rendezvous channel pair between a generator's body
// goroutine and whatever is pulling its iterator (spec §4.7 "Generators":
// "execution suspends at a yield point and resumes exactly where it left
// off... cooperative and single-threaded"). Go's goroutines are the
// idiomatic mechanism for this; see DESIGN.md for why this is a deliberate
// departure from the design note's hand-rolled-state-machine suggestion.
// The unbuffered channels enforce strict hand-off: only one side of the
// pair is ever runnable at a time, preserving the single-threaded guarantee
// even though two goroutines exist.
type generatorState struct {
	resume    chan struct{}
	yield     chan generatorMsg
	cancel    chan struct{}
	done      bool
	cancelled bool
}

type generatorMsg struct {
	val      value.Value
	hasValue bool
	finished bool
	thrown   *value.Value
	err      error
}

// abandon unblocks and ends the body goroutine of a generator that will not
// be pulled again, so an early-exited consumer does not leak it (spec §4.7:
// release on all exit paths, flow control included). Safe to call more than
// once and after the generator has already finished.
func (gs *generatorState) abandon() {
	if !gs.cancelled {
		gs.cancelled = true
		gs.done = true
		close(gs.cancel)
	}
}

// startGenerator spawns fn's body as a generator goroutine bound to args,
// returning an IteratorObject over its yielded elements (spec §4.7, §8
// scenario 4: "calling a generator-declared function returns an iterator").
func (r *Runtime) startGenerator(e Env, fn *FunctionObject, args []value.Value) *IteratorObject {
	gs := &generatorState{
		resume: make(chan struct{}),
		yield:  make(chan generatorMsg),
		cancel: make(chan struct{}),
	}

	genEnv := e
	genEnv.scope = r.bindParams(fn, args)
	genEnv.generator = gs
	genEnv.exception = nil

	go func() {
		result, err := r.execStmt(genEnv, fn.Body)
		var msg generatorMsg
		switch {
		case errors.Is(err, errGeneratorAbandoned):
			return
		case err != nil:
			msg = generatorMsg{finished: true, err: err}
		case result.Is(types.Throw):
			msg = generatorMsg{finished: true, thrown: result.Inner()}
		default:
			msg = generatorMsg{finished: true}
		}
		select {
		case gs.yield <- msg:
		case <-gs.cancel:
		}
	}()

	callable, _ := types.SoleCallable(fn.Sig)
	typ := r.forge.ForgeIterableType(&types.Iterable{ElementType: callable.YieldType})

	it := &IteratorObject{Typ: typ, abandon: gs.abandon}
	it.basketHandle.root = true
	it.next = func(ctx context.Context) (value.Value, bool, error) {
		if gs.done {
			return value.Void, false, nil
		}
		if it.started {
			select {
			case gs.resume <- struct{}{}:
			case <-ctx.Done():
				gs.abandon()
				return value.Value{}, false, ctx.Err()
			}
		}
		it.started = true
		var msg generatorMsg
		select {
		case msg = <-gs.yield:
		case <-ctx.Done():
			gs.abandon()
			return value.Value{}, false, ctx.Err()
		}
		if msg.err != nil {
			gs.done = true
			return value.Value{}, false, msg.err
		}
		if msg.finished {
			gs.done = true
			if msg.thrown != nil {
				return value.NewThrow(msg.thrown), false, nil
			}
			return value.Void, false, nil
		}
		return msg.val, msg.hasValue, nil
	}
	return it
}

// yieldValue is called from execStmt's StmtYield handling to hand one
// element to the consumer and block until resumed.
func (gs *generatorState) yieldValue(ctx context.Context, v value.Value) error {
	select {
	case gs.yield <- generatorMsg{val: v, hasValue: true}:
	case <-gs.cancel:
		return errGeneratorAbandoned
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-gs.resume:
		return nil
	case <-gs.cancel:
		return errGeneratorAbandoned
	case <-ctx.Done():
		return ctx.Err()
	}
}
