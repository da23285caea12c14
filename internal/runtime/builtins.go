package runtime

import (
	"context"

	"egg/internal/types"
	"egg/internal/value"
)

// NewNativeFunction wraps a host-provided builtin (spec §6 "registers
// built-in symbols") in a NativeFunction value, not yet owned by any basket.
// Callers outside this package cannot flip an object's root flag directly
// (basketHandle is unexported), so internal/program goes through
// RegisterBuiltin below rather than constructing+rooting a NativeFunction
// itself.
func NewNativeFunction(name string, sig *types.Type, fn func(ctx context.Context, r *Runtime, args []value.Value) (value.Value, error)) *NativeFunction {
	return &NativeFunction{Name: name, Sig: sig, Fn: fn}
}

// RegisterBuiltin marks n as a root and returns the Value an embedder seeds
// into the program's global scope (spec §6 "Program API": "registers
// built-in symbols"). A builtin lives for the lifetime of the program, so it
// is not handed to r's basket: neither Collect nor Purge reclaims it or
// counts it.
func (r *Runtime) RegisterBuiltin(n *NativeFunction) value.Value {
	n.root = true
	return value.NewObject(n)
}
