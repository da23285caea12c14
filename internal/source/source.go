// Package source implements the source-intake abstraction of spec §6: read
// program text from a plain string, a file, or an eggbox entry, normalizing
// BOM and line endings and tracking a resource name for diagnostics. The
// eggbox container format itself (zip/directory/embedded resources) stays
// out of scope per spec §1; FromEntry accepts anything that already looks
// like an opened entry (an io.Reader plus its name).
package source

import (
	"bytes"
	"io"
	"os"
	"unicode/utf8"
)

const byteOrderMark = '\ufeff'

// Source is normalized program text plus the resource name diagnostics
// should report against.
type Source struct {
	Resource string
	Text     string
}

// FromString wraps raw text already in memory, e.g. an embedder's inline
// script or a test fixture. The resource name is used only for diagnostics.
func FromString(resource, text string) Source {
	return Source{Resource: resource, Text: normalize(text)}
}

// FromFile reads resource from disk.
func FromFile(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, err
	}
	return Source{Resource: path, Text: normalize(string(data))}, nil
}

// FromEntry reads an already-opened eggbox entry (spec §6 "a file, or an
// eggbox entry (zip/directory/embedded)"); the eggbox layer that resolves a
// name to a Reader is the embedder's responsibility, out of scope here.
func FromEntry(name string, r io.Reader) (Source, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return Source{}, err
	}
	return Source{Resource: name, Text: normalize(buf.String())}, nil
}

// normalize strips a leading UTF-8 BOM and rewrites CRLF/CR line endings to
// LF, matching "UTF-8 with optional BOM; line endings normalised" (spec §6).
func normalize(text string) string {
	text = stripBOM(text)
	if !bytes.ContainsAny([]byte(text), "\r") {
		return text
	}
	var sb bytes.Buffer
	sb.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\r' {
			sb.WriteByte('\n')
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func stripBOM(text string) string {
	r, size := utf8.DecodeRuneInString(text)
	if r == byteOrderMark {
		return text[size:]
	}
	return text
}

// Cursor tracks the current line/column while scanning Text, for
// diagnostics that need a live position rather than a node's fixed Range
// (spec §6: "the current line and column are tracked for diagnostics").
type Cursor struct {
	Line, Column int
}

// NewCursor starts at line 1, column 1 (1-based, matching ir.Range).
func NewCursor() Cursor {
	return Cursor{Line: 1, Column: 1}
}

// Advance moves the cursor past r, wrapping the column on newlines.
func (c Cursor) Advance(r rune) Cursor {
	if r == '\n' {
		return Cursor{Line: c.Line + 1, Column: 1}
	}
	return Cursor{Line: c.Line, Column: c.Column + 1}
}
