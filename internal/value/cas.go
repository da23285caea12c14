package value

import (
	"math"
	"sync/atomic"

	"golang.org/x/exp/constraints"
)

// Number is the constraint satisfied by the CAS-able arithmetic payload
// kinds (spec §4.5.2 bullet 2: "atomic for primitive boxes (CAS loop for
// floats and non-commutative ops)").
type Number interface {
	constraints.Integer | constraints.Float
}

// casLoop atomically applies fn to the value addressed by bits (encoded via
// toBits/fromBits) until the swap commits uncontested, returning the prior
// value. Shared by the Int and Float slot kinds instead of hand-duplicating
// the loop per type.
func casLoop[T Number](addr *uint64, toBits func(T) uint64, fromBits func(uint64) T, fn func(T) T) T {
	for {
		old := atomic.LoadUint64(addr)
		oldVal := fromBits(old)
		newBits := toBits(fn(oldVal))
		if atomic.CompareAndSwapUint64(addr, old, newBits) {
			return oldVal
		}
	}
}

func int64ToBits(i int64) uint64     { return uint64(i) }
func bitsToInt64(b uint64) int64     { return int64(b) }
func float64ToBits(f float64) uint64 { return math.Float64bits(f) }
func bitsToFloat64(b uint64) float64 { return math.Float64frombits(b) }
