package memory

import "testing"

func TestBuilderSingleChunkReuse(t *testing.T) {
	alloc := NewAllocator()
	blob := NewBlob([]byte("hello"))
	b := NewBuilder(alloc)
	b.AddBlob(blob)
	out := b.Build()
	if out != blob {
		t.Fatalf("expected single-chunk build to return the same Blob pointer")
	}
}

func TestBuilderConcatenation(t *testing.T) {
	tests := []struct {
		name   string
		chunks [][]byte
		want   string
	}{
		{"empty", nil, ""},
		{"two chunks", [][]byte{[]byte("foo"), []byte("bar")}, "foobar"},
		{"three chunks", [][]byte{[]byte("a"), []byte("b"), []byte("c")}, "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(nil)
			for _, c := range tt.chunks {
				b.AddBytes(c)
			}
			out := b.Build()
			if string(out.Bytes()) != tt.want {
				t.Fatalf("got %q, want %q", out.Bytes(), tt.want)
			}
		})
	}
}

func TestEmptyBlobSingleton(t *testing.T) {
	if NewBlob(nil) != Empty() {
		t.Fatalf("expected NewBlob(nil) to return the shared empty singleton")
	}
	if NewBuilder(nil).Build() != Empty() {
		t.Fatalf("expected an empty builder to produce the shared empty singleton")
	}
}

func TestAllocatorStatistics(t *testing.T) {
	a := NewAllocator()
	buf := a.Allocate(10, 8)
	stats := a.Statistics()
	if stats.BlocksOwned != 1 {
		t.Fatalf("expected 1 block owned, got %d", stats.BlocksOwned)
	}
	if stats.BytesOwned < 10 {
		t.Fatalf("expected at least 10 bytes owned, got %d", stats.BytesOwned)
	}
	a.Deallocate(buf)
	stats = a.Statistics()
	if stats.BlocksOwned != 0 {
		t.Fatalf("expected 0 blocks owned after deallocate, got %d", stats.BlocksOwned)
	}
}
