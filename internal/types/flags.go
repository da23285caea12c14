// Package types implements the type forge (spec component E): construction,
// deduplication and querying of structural types.
package types

import "strings"

// Flags is a bit-set over the primitive value kinds (spec §3.1).
type Flags uint32

const (
	None     Flags = 0
	Void     Flags = 1 << 0
	Null     Flags = 1 << 1
	Bool     Flags = 1 << 2
	Int      Flags = 1 << 3
	Float    Flags = 1 << 4
	String   Flags = 1 << 5
	Object   Flags = 1 << 6
	TypeKind Flags = 1 << 7 // a value that is itself a Type (manifestation, spec §4.6.4)
	Break    Flags = 1 << 8
	Continue Flags = 1 << 9
	Return   Flags = 1 << 10
	Yield    Flags = 1 << 11
	Throw    Flags = 1 << 12
)

// Derived masks (spec §3.1).
const (
	Arithmetic  = Int | Float
	Any         = Bool | Int | Float | String | Object
	AnyQ        = Any | Null
	FlowControl = Break | Continue | Return | Yield | Throw
)

// Has reports whether all bits of other are set in f.
func (f Flags) Has(other Flags) bool { return f&other == other }

// HasAny reports whether any bit of other is set in f.
func (f Flags) HasAny(other Flags) bool { return f&other != 0 }

// Set returns f with other's bits set.
func (f Flags) Set(other Flags) Flags { return f | other }

// Clear returns f with other's bits cleared.
func (f Flags) Clear(other Flags) Flags { return f &^ other }

var names = []struct {
	bit  Flags
	text string
}{
	{Void, "void"}, {Null, "null"}, {Bool, "bool"}, {Int, "int"}, {Float, "float"},
	{String, "string"}, {Object, "object"}, {TypeKind, "type"},
	{Break, "break"}, {Continue, "continue"}, {Return, "return"}, {Yield, "yield"}, {Throw, "throw"},
}

// String renders the canonical "|"-joined basal-flag name, e.g. "int|float",
// matching the original's Print::describe (orig:ovum/print.h), used both for
// diagnostics and as the hash-cons key component for primitive flags.
func (f Flags) String() string {
	if f == None {
		return "none"
	}
	var parts []string
	for _, n := range names {
		if f.HasAny(n.bit) {
			parts = append(parts, n.text)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}
