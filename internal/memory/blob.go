package memory

// Blob is an immutable contiguous byte sequence. Once constructed its
// contents never change; sharing a Blob across values/strings is always
// safe.
type Blob struct {
	data []byte
}

// empty is the shared singleton for zero-length blobs (spec §4.1).
var empty = &Blob{data: []byte{}}

// Empty returns the shared empty blob.
func Empty() *Blob {
	return empty
}

// NewBlob wraps data as an immutable Blob. The caller must not retain or
// mutate data afterwards; callers that can't make that guarantee should copy
// first.
func NewBlob(data []byte) *Blob {
	if len(data) == 0 {
		return empty
	}
	return &Blob{data: data}
}

// Bytes returns the underlying bytes. Callers must treat the result as
// read-only.
func (b *Blob) Bytes() []byte {
	return b.data
}

// Len returns the byte length of the blob.
func (b *Blob) Len() int {
	return len(b.data)
}

// Builder concatenates zero or more byte ranges into a single immutable Blob.
// Per spec §4.1: if exactly one chunk was added and it is itself a Blob, the
// builder returns that object unchanged (no copy); otherwise it allocates one
// contiguous blob and copies every chunk into it.
type Builder struct {
	alloc  *Allocator
	chunks [][]byte
	single *Blob
}

// NewBuilder creates a memory builder backed by alloc (may be nil, in which
// case no allocator statistics are tracked).
func NewBuilder(alloc *Allocator) *Builder {
	return &Builder{alloc: alloc}
}

// AddBytes appends a raw byte range.
func (b *Builder) AddBytes(chunk []byte) *Builder {
	if len(chunk) == 0 {
		return b
	}
	b.single = nil
	b.chunks = append(b.chunks, chunk)
	return b
}

// AddBlob appends an existing Blob's bytes, remembering identity so a
// single-chunk build can return it unchanged.
func (b *Builder) AddBlob(blob *Blob) *Builder {
	if blob == nil || blob.Len() == 0 {
		return b
	}
	if len(b.chunks) == 0 {
		b.single = blob
	} else {
		b.single = nil
	}
	b.chunks = append(b.chunks, blob.data)
	return b
}

// Build finalises the builder into a single immutable Blob.
func (b *Builder) Build() *Blob {
	switch len(b.chunks) {
	case 0:
		return empty
	case 1:
		if b.single != nil {
			return b.single
		}
	}
	total := 0
	for _, c := range b.chunks {
		total += len(c)
	}
	var out []byte
	if b.alloc != nil {
		out = b.alloc.Allocate(total, 1)
	} else {
		out = make([]byte, total)
	}
	pos := 0
	for _, c := range b.chunks {
		pos += copy(out[pos:], c)
	}
	return &Blob{data: out}
}
