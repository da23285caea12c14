// Package text implements Egg's immutable, codepoint-indexed string type
// (spec component B). All indices and lengths are codepoint counts, never
// byte offsets.
package text

import (
	"strings"
	"unicode/utf8"

	"egg/internal/memory"
)

// String is an immutable UTF-8 sequence tagged with its codepoint count.
type String struct {
	blob   *memory.Blob
	length int
}

var emptyString = String{blob: memory.Empty(), length: 0}

// Empty returns the canonical empty string.
func Empty() String {
	return emptyString
}

// New wraps s as an egg String, counting codepoints eagerly.
func New(s string) String {
	if s == "" {
		return emptyString
	}
	return String{blob: memory.NewBlob([]byte(s)), length: utf8.RuneCountInString(s)}
}

// Len returns the codepoint count.
func (s String) Len() int {
	return s.length
}

// IsEmpty reports whether the string has zero codepoints.
func (s String) IsEmpty() bool {
	return s.length == 0
}

// Raw returns the underlying UTF-8 bytes. Treat as read-only.
func (s String) Raw() []byte {
	if s.blob == nil {
		return nil
	}
	return s.blob.Bytes()
}

// Go converts back to a native Go string (a copy of the bytes).
func (s String) Go() string {
	return string(s.Raw())
}

// runeAt walks codepoints to find the byte offset and rune value at
// codepoint index i. O(n) per spec §4.2. Returns ok=false on an
// out-of-range index or malformed UTF-8.
func (s String) runeAt(i int) (r rune, byteOff int, size int, ok bool) {
	if i < 0 || i >= s.length {
		return 0, 0, 0, false
	}
	data := s.Raw()
	pos := 0
	for idx := 0; idx <= i; idx++ {
		rn, sz := utf8.DecodeRune(data[pos:])
		if rn == utf8.RuneError && sz <= 1 {
			return 0, 0, 0, false
		}
		if idx == i {
			return rn, pos, sz, true
		}
		pos += sz
	}
	return 0, 0, 0, false
}

// At returns the single-codepoint string at codepoint index i.
func (s String) At(i int) (String, bool) {
	_, off, size, ok := s.runeAt(i)
	if !ok {
		return emptyString, false
	}
	return New(string(s.Raw()[off : off+size])), true
}

// normalizeRange resolves begin/end with negative-from-end semantics
// (spec §4.2 slice), clamped to [0, length].
func (s String) normalizeRange(begin, end int) (int, int) {
	n := s.length
	if begin < 0 {
		begin += n
	}
	if end < 0 {
		end += n
	}
	if begin < 0 {
		begin = 0
	}
	if end > n {
		end = n
	}
	if begin > n {
		begin = n
	}
	if end < begin {
		end = begin
	}
	return begin, end
}

// Slice returns the codepoint range [begin, end), with negative indices
// counted from the end.
func (s String) Slice(begin, end int) String {
	begin, end = s.normalizeRange(begin, end)
	if begin >= end {
		return emptyString
	}
	data := s.Raw()
	pos := 0
	startByte, endByte := -1, len(data)
	idx := 0
	for pos < len(data) {
		if idx == begin {
			startByte = pos
		}
		if idx == end {
			endByte = pos
			break
		}
		_, sz := utf8.DecodeRune(data[pos:])
		pos += sz
		idx++
	}
	if startByte == -1 {
		startByte = len(data)
	}
	return New(string(data[startByte:endByte]))
}

// Concat returns a new string equal to s followed by t, built via a memory
// Builder so the single-chunk-reuse rule (spec §4.1) applies when one side
// is empty.
func Concat(alloc *memory.Allocator, s, t String) String {
	b := memory.NewBuilder(alloc)
	if s.blob != nil {
		b.AddBlob(s.blob)
	}
	if t.blob != nil {
		b.AddBlob(t.blob)
	}
	blob := b.Build()
	return String{blob: blob, length: s.length + t.length}
}

// Equal reports codepoint-wise equality.
func (s String) Equal(o String) bool {
	return s.Go() == o.Go()
}

// CompareTo returns -1, 0, or 1 comparing s to o codepoint-wise.
func (s String) CompareTo(o String) int {
	a, b := s.Go(), o.Go()
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// Hash returns an FNV-1a hash of the raw bytes, suitable for map keys.
func (s String) Hash() uint64 {
	var h uint64 = 14695981039346656037
	for _, b := range s.Raw() {
		h ^= uint64(b)
		h *= 1099511628211
	}
	return h
}

// StartsWith reports whether s begins with prefix.
func (s String) StartsWith(prefix String) bool {
	return strings.HasPrefix(s.Go(), prefix.Go())
}

// EndsWith reports whether s ends with suffix.
func (s String) EndsWith(suffix String) bool {
	return strings.HasSuffix(s.Go(), suffix.Go())
}

// Contains reports whether needle occurs anywhere in s.
func (s String) Contains(needle String) bool {
	return strings.Contains(s.Go(), needle.Go())
}

// IndexOfCodepoint returns the first codepoint index of r at or after
// `from`, or -1 if absent.
func (s String) IndexOfCodepoint(r rune, from int) int {
	if from < 0 {
		from = 0
	}
	for i := from; i < s.length; i++ {
		cp, _, _, ok := s.runeAt(i)
		if ok && cp == r {
			return i
		}
	}
	return -1
}

// IndexOfString returns the codepoint index of the first occurrence of
// needle at or after codepoint index `from`, or -1.
func (s String) IndexOfString(needle String, from int) int {
	if needle.IsEmpty() {
		if from < 0 {
			from = 0
		}
		if from > s.length {
			return -1
		}
		return from
	}
	for i := from; i <= s.length-needle.length; i++ {
		if i < 0 {
			continue
		}
		if s.Slice(i, i+needle.length).Equal(needle) {
			return i
		}
	}
	return -1
}

// LastIndexOfString returns the codepoint index of the last occurrence of
// needle at or before codepoint index `before` (before<0 means search the
// whole string), or -1.
func (s String) LastIndexOfString(needle String, before int) int {
	limit := s.length
	if before >= 0 && before < limit {
		limit = before
	}
	if needle.IsEmpty() {
		return limit
	}
	best := -1
	for i := 0; i <= limit-needle.length; i++ {
		if s.Slice(i, i+needle.length).Equal(needle) {
			best = i
		}
	}
	return best
}

// LastIndexOfCodepoint returns the codepoint index of the last occurrence of
// r, or -1.
func (s String) LastIndexOfCodepoint(r rune) int {
	best := -1
	for i := 0; i < s.length; i++ {
		cp, _, _, ok := s.runeAt(i)
		if ok && cp == r {
			best = i
		}
	}
	return best
}

// Repeat returns s concatenated with itself n times (n<=0 yields empty).
func (s String) Repeat(alloc *memory.Allocator, n int) String {
	if n <= 0 || s.IsEmpty() {
		return emptyString
	}
	out := emptyString
	for i := 0; i < n; i++ {
		out = Concat(alloc, out, s)
	}
	return out
}

// Replace substitutes up to `occurrences` instances of needle with
// replacement (left to right). A negative occurrences count means
// unlimited, matching spec §4.2.
func (s String) Replace(alloc *memory.Allocator, needle, replacement String, occurrences int) String {
	if needle.IsEmpty() {
		return s
	}
	n := occurrences
	if n < 0 {
		n = -1
	}
	src := s.Go()
	replaced := strings.Replace(src, needle.Go(), replacement.Go(), n)
	return New(replaced)
}

// PadLeft pads s on the left with pad (repeated/truncated as needed) until
// it reaches `width` codepoints.
func (s String) PadLeft(alloc *memory.Allocator, width int, pad String) String {
	if s.length >= width || pad.IsEmpty() {
		return s
	}
	needed := width - s.length
	filler := padding(alloc, pad, needed)
	return Concat(alloc, filler, s)
}

// PadRight pads s on the right until it reaches `width` codepoints.
func (s String) PadRight(alloc *memory.Allocator, width int, pad String) String {
	if s.length >= width || pad.IsEmpty() {
		return s
	}
	needed := width - s.length
	filler := padding(alloc, pad, needed)
	return Concat(alloc, s, filler)
}

func padding(alloc *memory.Allocator, pad String, needed int) String {
	reps := needed/pad.Len() + 1
	full := pad.Repeat(alloc, reps)
	return full.Slice(0, needed)
}
