package source

import (
	"strings"
	"testing"
)

func TestFromStringStripsBOM(t *testing.T) {
	s := FromString("inline", "\ufeffprint(1);")
	if s.Text != "print(1);" {
		t.Fatalf("expected BOM stripped, got %q", s.Text)
	}
}

func TestNormalizeLineEndings(t *testing.T) {
	s := FromString("inline", "a\r\nb\rc\n")
	if s.Text != "a\nb\nc\n" {
		t.Fatalf("expected normalized line endings, got %q", s.Text)
	}
}

func TestFromEntry(t *testing.T) {
	s, err := FromEntry("box:/main.egg", strings.NewReader("print(1);"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Resource != "box:/main.egg" || s.Text != "print(1);" {
		t.Fatalf("unexpected source: %+v", s)
	}
}

func TestCursorAdvanceNewline(t *testing.T) {
	c := NewCursor()
	c = c.Advance('a')
	if c.Line != 1 || c.Column != 2 {
		t.Fatalf("expected line 1 col 2, got %+v", c)
	}
	c = c.Advance('\n')
	if c.Line != 2 || c.Column != 1 {
		t.Fatalf("expected line 2 col 1, got %+v", c)
	}
}
