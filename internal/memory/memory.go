// Package memory implements the allocator and immutable byte-blob substrate
// every other subsystem builds on (spec component A).
package memory

import (
	"sync/atomic"

	"github.com/dustin/go-humanize"
)

// Statistics reports aggregate allocator usage. Collection is optional for
// callers that don't care about the overhead of tracking it.
type Statistics struct {
	BlocksOwned uint64
	BytesOwned  uint64
}

// String renders a human-readable summary, e.g. "12 blocks, 3.4 kB".
func (s Statistics) String() string {
	return humanize.Comma(int64(s.BlocksOwned)) + " blocks, " + humanize.Bytes(s.BytesOwned)
}

// Allocator tracks aggregate allocation statistics. It does not itself manage
// raw memory (Go's runtime owns that); its job is alignment-aware sizing and
// bookkeeping for diagnostics, mirroring the "aligned allocate/deallocate"
// contract of spec §4.1 in a garbage-collected host language.
type Allocator struct {
	blocks int64
	bytes  int64
}

// NewAllocator returns a zeroed allocator ready for use.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Allocate reserves n bytes aligned to align (must be a power of two) and
// returns a zero-filled slice of exactly n bytes. The alignment only affects
// bookkeeping here since Go slices are already suitably aligned for their
// element type; callers that need hardware alignment guarantees should not
// rely on this.
func (a *Allocator) Allocate(n int, align int) []byte {
	if align <= 0 {
		align = 1
	}
	padded := (n + align - 1) / align * align
	atomic.AddInt64(&a.blocks, 1)
	atomic.AddInt64(&a.bytes, int64(padded))
	return make([]byte, n, padded)
}

// Deallocate releases bookkeeping for a previously allocated slice. Go's GC
// reclaims the backing array; this only updates statistics.
func (a *Allocator) Deallocate(b []byte) {
	atomic.AddInt64(&a.blocks, -1)
	atomic.AddInt64(&a.bytes, -int64(cap(b)))
}

// Statistics returns a snapshot of current allocator usage.
func (a *Allocator) Statistics() Statistics {
	blocks := atomic.LoadInt64(&a.blocks)
	bytes := atomic.LoadInt64(&a.bytes)
	if blocks < 0 {
		blocks = 0
	}
	if bytes < 0 {
		bytes = 0
	}
	return Statistics{BlocksOwned: uint64(blocks), BytesOwned: uint64(bytes)}
}
