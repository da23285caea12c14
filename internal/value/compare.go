package value

import "egg/internal/types"

// CompareMode selects promoting vs strictly-binary equality (spec §4.5.3,
// supplemented per SPEC_FULL §3 from orig:ovum/value.h's
// `ValueCompare::PromoteInts`).
type CompareMode int

const (
	// Binary compares without numeric promotion: an Int and an equal-valued
	// Float are NOT equal. The runtime's own comparisons use PromoteInts;
	// nothing in the runtime compares with Binary.
	Binary CompareMode = iota
	// PromoteInts promotes an Int operand to Float before comparing,
	// matching `==`'s general "any type" deep-equality note (spec §4.6.5).
	PromoteInts
)

// Equal reports whether a and b are equal under mode. "Two values are equal
// iff their flag sets are equal and their payloads compare equal; floats use
// IEEE-equal with NaN != NaN" (spec §4.5.3).
func Equal(a, b Value, mode CompareMode) bool {
	af, bf := a.flags, b.flags
	if mode == PromoteInts {
		if af.HasAny(types.Int) && bf.HasAny(types.Float) {
			return float64(a.i) == b.f
		}
		if af.HasAny(types.Float) && bf.HasAny(types.Int) {
			return a.f == float64(b.i)
		}
	}
	if af != bf {
		return false
	}
	switch {
	case af.HasAny(types.Void), af.HasAny(types.Null), af.HasAny(types.Break), af.HasAny(types.Continue):
		return true
	case af.HasAny(types.Bool):
		return a.b == b.b
	case af.HasAny(types.Int):
		return a.i == b.i
	case af.HasAny(types.Float):
		return a.f == b.f // NaN != NaN falls out of IEEE == naturally
	case af.HasAny(types.String):
		return a.s.Equal(b.s)
	case af.HasAny(types.Object):
		return a.obj == b.obj
	case af.HasAny(types.Throw), af.HasAny(types.Return), af.HasAny(types.Yield):
		if a.inner == nil || b.inner == nil {
			return a.inner == b.inner
		}
		return Equal(*a.inner, *b.inner, mode)
	default:
		return false
	}
}

// ordinal fixes a stable order across primitive kinds for Compare, matching
// "Ordering across values of different primitive kinds compares flag
// ordinals first" (spec §4.5.3).
func ordinal(f Flags) int {
	switch {
	case f.HasAny(types.Void):
		return 0
	case f.HasAny(types.Null):
		return 1
	case f.HasAny(types.Bool):
		return 2
	case f.HasAny(types.Int):
		return 3
	case f.HasAny(types.Float):
		return 4
	case f.HasAny(types.String):
		return 5
	case f.HasAny(types.Object):
		return 6
	default:
		return 7
	}
}

// Compare returns -1, 0, or 1. For arithmetic values it is consistent
// ("compare(x,y) + compare(y,x) == 0", spec §8 property 4) as long as
// neither is NaN.
func Compare(a, b Value) int {
	oa, ob := ordinal(a.flags), ordinal(b.flags)
	if oa != ob {
		if oa < ob {
			return -1
		}
		return 1
	}
	switch {
	case a.flags.HasAny(types.Bool):
		return boolCompare(a.b, b.b)
	case a.flags.HasAny(types.Int):
		return int64Compare(a.i, b.i)
	case a.flags.HasAny(types.Float):
		return float64Compare(a.f, b.f)
	case a.flags.HasAny(types.String):
		return a.s.CompareTo(b.s)
	default:
		return 0
	}
}

func boolCompare(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}

func int64Compare(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func float64Compare(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
