package text

import "testing"

func TestCodepointIndexing(t *testing.T) {
	s := New("héllo")
	if s.Len() != 5 {
		t.Fatalf("expected 5 codepoints, got %d", s.Len())
	}
	got, ok := s.At(1)
	if !ok || got.Go() != "é" {
		t.Fatalf("expected codepoint 1 to be %q, got %q (ok=%v)", "é", got.Go(), ok)
	}
}

func TestSliceNegativeFromEnd(t *testing.T) {
	s := New("hello world")
	if got := s.Slice(-5, -1).Go(); got != "worl" {
		t.Fatalf("expected %q, got %q", "worl", got)
	}
}

func TestRepeatIdentity(t *testing.T) {
	s := New("ab")
	if got := s.Repeat(nil, 0); got.Len() != 0 {
		t.Fatalf("repeat(0) should be empty, got %q", got.Go())
	}
	if got := s.Repeat(nil, 3).Go(); got != "ababab" {
		t.Fatalf("expected ababab, got %q", got)
	}
}

func TestConcatLengthIdentity(t *testing.T) {
	a := New("foo")
	b := New("bar")
	c := Concat(nil, a, b)
	if c.Len() != a.Len()+b.Len() {
		t.Fatalf("expected concatenated length %d, got %d", a.Len()+b.Len(), c.Len())
	}
}

func TestIndexOf(t *testing.T) {
	s := New("abcabc")
	if got := s.IndexOfString(New("bc"), 0); got != 1 {
		t.Fatalf("expected index 1, got %d", got)
	}
	if got := s.LastIndexOfString(New("bc"), -1); got != 4 {
		t.Fatalf("expected last index 4, got %d", got)
	}
	if got := s.IndexOfString(New("zz"), 0); got != -1 {
		t.Fatalf("expected -1 for missing needle, got %d", got)
	}
}

func TestReplaceUnlimited(t *testing.T) {
	s := New("a.b.c.d")
	got := s.Replace(nil, New("."), New("-"), -1)
	if got.Go() != "a-b-c-d" {
		t.Fatalf("expected a-b-c-d, got %q", got.Go())
	}
}

func TestPad(t *testing.T) {
	s := New("7")
	if got := s.PadLeft(nil, 3, New("0")).Go(); got != "007" {
		t.Fatalf("expected 007, got %q", got)
	}
	if got := s.PadRight(nil, 3, New("0")).Go(); got != "700" {
		t.Fatalf("expected 700, got %q", got)
	}
}

func TestCompareTo(t *testing.T) {
	if New("a").CompareTo(New("b")) >= 0 {
		t.Fatalf("expected a < b")
	}
	if New("a").CompareTo(New("a")) != 0 {
		t.Fatalf("expected a == a")
	}
}
