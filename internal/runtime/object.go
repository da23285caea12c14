package runtime

import (
	"context"
	"fmt"

	"egg/internal/ir"
	"egg/internal/refs"
	"egg/internal/types"
	"egg/internal/value"
)

// basketHandle implements the refs.Collectable plumbing shared by every
// runtime object (spec component D wiring, orig:ovum/basket.cpp objects
// embed the same bookkeeping). root starts true for a freshly constructed
// object. demote clears it as soon as the object's value is stored into any
// slot: a scope variable, a parameter, an array element or an object
// property. Only a value that is never stored, such as an expression
// temporary or a Run result, keeps its root flag.
type basketHandle struct {
	bsk  refs.BasketTag
	root bool
}

func (h *basketHandle) SoftIsRoot() bool              { return h.root }
func (h *basketHandle) SoftGetBasket() refs.BasketTag { return h.bsk }
func (h *basketHandle) SoftSetBasket(tag refs.BasketTag) refs.BasketTag {
	prev := h.bsk
	h.bsk = tag
	return prev
}
func (h *basketHandle) demote() { h.root = false }

// demoteIfObject clears the root flag of v's object payload, if any. It is
// called whenever v is stored into a slot, whether that slot belongs to a
// scope or to a container.
func demoteIfObject(v value.Value) {
	if obj, ok := v.AsObject(); ok {
		if h, ok := obj.(interface{ demote() }); ok {
			h.demote()
		}
	}
}

// ReleaseRoot clears the root flag of v's object payload, if any, letting a
// subsequent Basket.Collect reclaim it as ordinary graph memory instead of
// treating it as a GC root forever (spec §8 testable property 1: "provided
// the program released its result value"). Embedders call this once they
// are done holding onto a Run result.
func ReleaseRoot(v value.Value) {
	demoteIfObject(v)
}

// ArrayObject backs ExprArray values: a dense, mutable, index-addressable
// sequence (spec §4.6.4 "Array").
type ArrayObject struct {
	basketHandle
	Elements []*value.Slot
	Typ      *types.Type
}

func (a *ArrayObject) RuntimeType() *types.Type { return a.Typ }

func (a *ArrayObject) SoftVisitLinks(visit refs.Visitor) {
	for _, slot := range a.Elements {
		if obj, ok := slot.Get().AsObject(); ok {
			visit(obj)
		}
	}
}

// DotObject backs ExprObject and ExprEon values: a named-property bag
// (spec §4.6.4 "Object", "Eon").
type DotObject struct {
	basketHandle
	Properties map[string]*value.Slot
	Order      []string
	Typ        *types.Type
}

func (d *DotObject) RuntimeType() *types.Type { return d.Typ }

func (d *DotObject) SoftVisitLinks(visit refs.Visitor) {
	for _, slot := range d.Properties {
		if obj, ok := slot.Get().AsObject(); ok {
			visit(obj)
		}
	}
}

func (d *DotObject) get(name string) (*value.Slot, bool) {
	slot, ok := d.Properties[name]
	return slot, ok
}

// PointerObject backs ExprReference values: a live handle onto another
// slot (spec §4.6.4 "Reference"/"Dereference").
type PointerObject struct {
	basketHandle
	Target *value.Slot
	Typ    *types.Type
}

func (p *PointerObject) RuntimeType() *types.Type { return p.Typ }

func (p *PointerObject) SoftVisitLinks(visit refs.Visitor) {
	if obj, ok := p.Target.Get().AsObject(); ok {
		visit(obj)
	}
}

// FunctionObject backs a compiled ExprFunctionConstruct: a body plus the
// specific slots it captured from its defining lexical environment (spec
// §4.7 "closures capture slots, not values: mutating a captured variable is
// visible to every closure that captured it").
type FunctionObject struct {
	basketHandle
	Name        string
	Body        *ir.Node // StmtBlock, or StmtGeneratorInvoke wrapping one
	Params      []types.Parameter
	Captures    map[string]*value.Slot
	Sig         *types.Type
	IsGenerator bool
}

func (f *FunctionObject) RuntimeType() *types.Type { return f.Sig }

func (f *FunctionObject) SoftVisitLinks(visit refs.Visitor) {
	for _, slot := range f.Captures {
		if obj, ok := slot.Get().AsObject(); ok {
			visit(obj)
		}
	}
}

// NativeFunction backs a host-provided builtin such as `print` (spec §6
// "registers built-in symbols"). It never participates in cycles, so
// SoftVisitLinks is a no-op.
type NativeFunction struct {
	basketHandle
	Name string
	Sig  *types.Type
	Fn   func(ctx context.Context, r *Runtime, args []value.Value) (value.Value, error)
}

func (n *NativeFunction) RuntimeType() *types.Type    { return n.Sig }
func (n *NativeFunction) SoftVisitLinks(refs.Visitor) {}

// IteratorObject backs a generator's produced iterator (spec §4.7
// "Generators"); only startGenerator constructs one, and for-each over an
// array or a string does not use it. next is called with the
// unbuffered-channel protocol already resolved.
type IteratorObject struct {
	basketHandle
	Typ     *types.Type
	started bool
	next    func(ctx context.Context) (value.Value, bool, error)
	abandon func() // non-nil only for generator-backed iterators
}

func (it *IteratorObject) RuntimeType() *types.Type    { return it.Typ }
func (it *IteratorObject) SoftVisitLinks(refs.Visitor) {}

// Next pulls the next element: (value, true, nil) for an element, (Void,
// false, nil) on clean exhaustion, (throwValue, false, nil) when the
// generator body raised, or (_, _, err) on an internal fault.
func (it *IteratorObject) Next(ctx context.Context) (value.Value, bool, error) {
	return it.next(ctx)
}

// Abandon releases whatever backs the iterator without pulling further
// elements: for a generator-backed iterator it ends the suspended body
// goroutine. Safe to call on an exhausted generator.
func (it *IteratorObject) Abandon() {
	if it.abandon != nil {
		it.abandon()
	}
}

func (r *Runtime) take(obj refs.Collectable) {
	if err := r.basket.Take(obj); err != nil {
		// A freshly constructed object can never already belong to another
		// basket; surface a loud internal error if that invariant ever
		// breaks instead of silently dropping it.
		panic(fmt.Sprintf("runtime: %v", err))
	}
}
