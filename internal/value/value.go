// Package value implements the polymorphic value model (spec component F):
// immutable singletons, mutable boxes ("slots"), and the atomic mutation
// operators the runtime dispatches through.
package value

import (
	"egg/internal/refs"
	"egg/internal/text"
	"egg/internal/types"
)

// Flags reuses the type forge's bit-set (spec §3.1 is shared between values
// and types: "Exactly one simple-type bit is set unless the value carries a
// flow-control marker").
type Flags = types.Flags

// Object is the minimal contract a runtime object value must satisfy to
// participate in the value model: basket membership (it is a
// refs.Collectable) and a runtime type for assignability/shape queries. The
// runtime package defines the richer dotable/indexable/callable/pointable
// dispatch surfaces on top of this.
type Object interface {
	refs.Collectable
	RuntimeType() *types.Type
}

// Value is a sum over primitive payloads, an object reference, and the
// flow-control markers (orig:ovum/value.h's IValue, collapsed into a plain
// struct since Go values don't need the Slot/Value indirection C++ uses to
// support soft links to a stable address — internal/value.Slot below is
// where that stability lives).
type Value struct {
	flags Flags
	b     bool
	i     int64
	f     float64
	s     text.String
	obj   Object
	inner *Value      // Throw's wrapped exception, Return's result, Yield's element
	typ   *types.Type // the manifested type, when flags carries TypeKind
}

// Flags reports which bit(s) are set on v.
func (v Value) Flags() Flags { return v.flags }

// Is reports whether v carries (at least) the given flag.
func (v Value) Is(f Flags) bool { return v.flags.HasAny(f) }

// IsFlowControl reports whether v is a Break/Continue/Return/Yield/Throw
// marker that must abort evaluation of the enclosing construct (spec
// §4.5.1).
func (v Value) IsFlowControl() bool { return v.flags.HasAny(types.FlowControl) }

// --- constructors -----------------------------------------------------

// Void, Null, True, False, Break, Continue are process-wide singletons (spec
// §3.2). Rethrow is the canonical "throw;" marker: a Throw value whose inner
// is nil.
var (
	Void     = Value{flags: types.Void}
	Null     = Value{flags: types.Null}
	True     = Value{flags: types.Bool, b: true}
	False    = Value{flags: types.Bool, b: false}
	Break    = Value{flags: types.Break}
	Continue = Value{flags: types.Continue}
	Rethrow  = Value{flags: types.Throw, inner: nil}
)

// NewBool returns True or False.
func NewBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// NewInt wraps an int64 payload.
func NewInt(i int64) Value { return Value{flags: types.Int, i: i} }

// NewFloat wraps a float64 payload.
func NewFloat(f float64) Value { return Value{flags: types.Float, f: f} }

// NewString wraps a text.String payload.
func NewString(s text.String) Value { return Value{flags: types.String, s: s} }

// NewObject wraps an Object reference.
func NewObject(o Object) Value { return Value{flags: types.Object, obj: o} }

// NewManifestation wraps a type value itself (spec §4.6.4 "Manifestation":
// a bare type keyword evaluated in expression position), used to resolve
// static members like `int.max`.
func NewManifestation(t *types.Type) Value { return Value{flags: types.TypeKind, typ: t} }

// Manifests returns the wrapped type and true if v is a type manifestation.
func (v Value) Manifests() (*types.Type, bool) { return v.typ, v.flags.HasAny(types.TypeKind) }

// NewReturn wraps an optional result value.
func NewReturn(inner *Value) Value { return Value{flags: types.Return, inner: inner} }

// NewYield wraps an element value.
func NewYield(inner Value) Value { return Value{flags: types.Yield, inner: &inner} }

// NewThrow wraps an inner exception value. A nil inner means rethrow.
func NewThrow(inner *Value) Value { return Value{flags: types.Throw, inner: inner} }

// --- accessors ----------------------------------------------------------

// Bool returns the payload and true if v is a Bool.
func (v Value) Bool() (bool, bool) { return v.b, v.flags.HasAny(types.Bool) }

// Int returns the payload and true if v is an Int.
func (v Value) Int() (int64, bool) { return v.i, v.flags.HasAny(types.Int) }

// Float returns the payload and true if v is a Float.
func (v Value) Float() (float64, bool) { return v.f, v.flags.HasAny(types.Float) }

// String returns the payload and true if v is a String.
func (v Value) String() (text.String, bool) { return v.s, v.flags.HasAny(types.String) }

// AsObject returns the payload and true if v is an Object.
func (v Value) AsObject() (Object, bool) { return v.obj, v.flags.HasAny(types.Object) }

// Inner returns the flow-control payload (Return/Yield/Throw), or nil.
func (v Value) Inner() *Value { return v.inner }

// IsRethrow reports whether v is the bare `throw;` marker.
func (v Value) IsRethrow() bool { return v.flags.HasAny(types.Throw) && v.inner == nil }

// ToFloat widens an Int value to Float, per the assignability promotion
// rule (spec §4.4); panics if v is not Arithmetic.
func (v Value) ToFloat() Value {
	if v.flags.HasAny(types.Float) {
		return v
	}
	if v.flags.HasAny(types.Int) {
		return NewFloat(float64(v.i))
	}
	panic("value: ToFloat on non-arithmetic value")
}
