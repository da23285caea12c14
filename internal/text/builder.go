package text

import "egg/internal/memory"

// Builder accumulates String fragments and produces a single String,
// reusing the memory.Builder single-chunk rule.
type Builder struct {
	alloc *memory.Allocator
	mem   *memory.Builder
	len   int
}

// NewBuilder creates a string builder backed by alloc (may be nil).
func NewBuilder(alloc *memory.Allocator) *Builder {
	return &Builder{alloc: alloc, mem: memory.NewBuilder(alloc)}
}

// WriteString appends s.
func (b *Builder) WriteString(s String) *Builder {
	if s.blob != nil {
		b.mem.AddBlob(s.blob)
	}
	b.len += s.length
	return b
}

// Len returns the codepoint count accumulated so far.
func (b *Builder) Len() int {
	return b.len
}

// Build finalises the builder into a String.
func (b *Builder) Build() String {
	blob := b.mem.Build()
	return String{blob: blob, length: b.len}
}
