// Package refs implements the hard/soft dual reference core (spec
// component C): lock-free hard reference counting plus the soft-pointer
// protocol a Basket uses to walk the object graph during collection.
package refs

import "sync/atomic"

// Visitor is invoked by a Collectable's SoftVisitLinks for each outgoing
// soft link it holds.
type Visitor func(target Collectable)

// BasketTag identifies the basket a Collectable currently belongs to. It is
// an opaque comparable handle; the basket package defines the concrete type
// satisfying it to avoid an import cycle between refs and basket.
type BasketTag interface {
	IsBasketTag()
}

// Collectable is any object a Basket can own and mark-and-sweep over (spec
// §3.6, glossary "Collectable").
type Collectable interface {
	// SoftIsRoot reports whether this object should be treated as a GC root.
	SoftIsRoot() bool
	// SoftVisitLinks calls visit once for every collectable this object
	// holds a soft reference to.
	SoftVisitLinks(visit Visitor)
	// SoftGetBasket returns the basket this object currently belongs to, or
	// nil if none.
	SoftGetBasket() BasketTag
	// SoftSetBasket implements the ownership transition state machine of
	// spec §4.3 and returns the previous basket tag.
	SoftSetBasket(tag BasketTag) BasketTag
}

// Hard is an atomically reference-counted strong pointer to a value of type
// T. Acquire/Release are lock-free per spec §4.3 and §5.
type Hard[T any] struct {
	value T
	count *int64
}

// NewHard wraps value in a hard reference with an initial count of one.
func NewHard[T any](value T) Hard[T] {
	count := int64(1)
	return Hard[T]{value: value, count: &count}
}

// Get returns the referenced value.
func (h Hard[T]) Get() T {
	return h.value
}

// Valid reports whether this Hard was constructed via NewHard (as opposed to
// a zero value).
func (h Hard[T]) Valid() bool {
	return h.count != nil
}

// Acquire increments the reference count and returns h for chaining.
func (h Hard[T]) Acquire() Hard[T] {
	if h.count != nil {
		atomic.AddInt64(h.count, 1)
	}
	return h
}

// Release decrements the reference count, returning the count after
// decrement. Callers that observe 0 are responsible for tearing down the
// referenced value; Hard itself holds no finalizer (Go's GC still owns
// `value`'s memory — this tracks the *logical* ownership protocol the
// compiler/runtime reason about, per spec §3.5/§4.3).
func (h Hard[T]) Release() int64 {
	if h.count == nil {
		return 0
	}
	return atomic.AddInt64(h.count, -1)
}

// Count returns the current reference count.
func (h Hard[T]) Count() int64 {
	if h.count == nil {
		return 0
	}
	return atomic.LoadInt64(h.count)
}
