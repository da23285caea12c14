package syntax

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"egg/internal/source"
)

// tokenKind enumerates every lexeme class the parser dispatches on.
type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenIdent
	tokenInt
	tokenFloat
	tokenString
	tokenKeyword
	tokenPunct
)

// token is one scanned lexeme plus the span it covers in the source.
type token struct {
	kind tokenKind
	text string // identifier/keyword/punctuation spelling
	intV int64
	fltV float64
	strV string // decoded string-literal payload
	rng  Range
}

func (t token) String() string {
	switch t.kind {
	case tokenEOF:
		return "end of input"
	case tokenString:
		return strconv.Quote(t.strV)
	default:
		return fmt.Sprintf("%q", t.text)
	}
}

var keywords = map[string]bool{
	"if": true, "else": true, "while": true, "do": true, "for": true,
	"switch": true, "case": true, "default": true, "break": true,
	"continue": true, "return": true, "yield": true, "throw": true,
	"try": true, "catch": true, "finally": true, "type": true, "var": true,
	"true": true, "false": true, "null": true, "void": true,
}

// punctuation spellings ordered longest-first so the scanner always takes
// the longest match (">>>=" before ">>>" before ">>" before ">").
var punctuation = []string{
	">>>=", ">>>", ">>=", "<<=", "&&=", "||=", "??=", "!!=", "...",
	">>", "<<", "<=", ">=", "==", "!=", "&&", "||", "??", "!!",
	"++", "--", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<|", ">|",
	"+", "-", "*", "/", "%", "&", "|", "^", "~", "!", "<", ">", "=",
	"(", ")", "{", "}", "[", "]", ",", ";", ":", ".", "?",
}

// scanner turns a Source's normalized text into a token stream. Line and
// column tracking rides on source.Cursor so diagnostics agree with whatever
// the intake layer reported.
type scanner struct {
	src    source.Source
	offset int
	cursor source.Cursor
}

func newScanner(src source.Source) *scanner {
	return &scanner{src: src, cursor: source.NewCursor()}
}

// scan tokenizes the whole source, ending with a tokenEOF marker.
func (s *scanner) scan() ([]token, error) {
	var tokens []token
	for {
		s.skipBlanks()
		if s.atEnd() {
			tokens = append(tokens, token{kind: tokenEOF, rng: s.hereRange()})
			return tokens, nil
		}
		tok, err := s.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
}

func (s *scanner) next() (token, error) {
	start := s.cursor
	r, _ := utf8.DecodeRuneInString(s.rest())
	switch {
	case r == '"':
		return s.scanString(start)
	case unicode.IsDigit(r):
		return s.scanNumber(start), nil
	case r == '_' || unicode.IsLetter(r):
		return s.scanIdent(start), nil
	}
	for _, p := range punctuation {
		if len(s.rest()) >= len(p) && s.rest()[:len(p)] == p {
			s.take(len(p))
			return token{kind: tokenPunct, text: p, rng: s.spanFrom(start)}, nil
		}
	}
	return token{}, s.errorf(start, "unexpected character %q", r)
}

func (s *scanner) scanIdent(start source.Cursor) token {
	begin := s.offset
	for !s.atEnd() {
		r, size := utf8.DecodeRuneInString(s.rest())
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		s.take(size)
	}
	text := s.src.Text[begin:s.offset]
	kind := tokenIdent
	if keywords[text] {
		kind = tokenKeyword
	}
	return token{kind: kind, text: text, rng: s.spanFrom(start)}
}

func (s *scanner) scanNumber(start source.Cursor) token {
	begin := s.offset
	for !s.atEnd() && isDigitByte(s.src.Text[s.offset]) {
		s.take(1)
	}
	isFloat := false
	if s.offset+1 < len(s.src.Text) && s.src.Text[s.offset] == '.' && isDigitByte(s.src.Text[s.offset+1]) {
		isFloat = true
		s.take(1)
		for !s.atEnd() && isDigitByte(s.src.Text[s.offset]) {
			s.take(1)
		}
	}
	text := s.src.Text[begin:s.offset]
	if isFloat {
		f, _ := strconv.ParseFloat(text, 64)
		return token{kind: tokenFloat, text: text, fltV: f, rng: s.spanFrom(start)}
	}
	i, _ := strconv.ParseInt(text, 10, 64)
	return token{kind: tokenInt, text: text, intV: i, rng: s.spanFrom(start)}
}

func (s *scanner) scanString(start source.Cursor) (token, error) {
	s.take(1) // opening quote
	var sb []byte
	for {
		if s.atEnd() {
			return token{}, s.errorf(start, "unterminated string literal")
		}
		c := s.src.Text[s.offset]
		if c == '"' {
			s.take(1)
			return token{kind: tokenString, text: string(sb), strV: string(sb), rng: s.spanFrom(start)}, nil
		}
		if c == '\n' {
			return token{}, s.errorf(start, "unterminated string literal")
		}
		if c == '\\' {
			s.take(1)
			if s.atEnd() {
				return token{}, s.errorf(start, "unterminated string literal")
			}
			esc := s.src.Text[s.offset]
			switch esc {
			case 'n':
				sb = append(sb, '\n')
			case 't':
				sb = append(sb, '\t')
			case 'r':
				sb = append(sb, '\r')
			case '"':
				sb = append(sb, '"')
			case '\\':
				sb = append(sb, '\\')
			case '0':
				sb = append(sb, 0)
			default:
				return token{}, s.errorf(start, "unknown escape sequence \\%c", esc)
			}
			s.take(1)
			continue
		}
		_, size := utf8.DecodeRuneInString(s.rest())
		sb = append(sb, s.src.Text[s.offset:s.offset+size]...)
		s.take(size)
	}
}

// skipBlanks consumes whitespace, // line comments, and /* */ block comments.
func (s *scanner) skipBlanks() {
	for !s.atEnd() {
		c := s.src.Text[s.offset]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			s.take(1)
		case c == '/' && s.offset+1 < len(s.src.Text) && s.src.Text[s.offset+1] == '/':
			for !s.atEnd() && s.src.Text[s.offset] != '\n' {
				s.take(1)
			}
		case c == '/' && s.offset+1 < len(s.src.Text) && s.src.Text[s.offset+1] == '*':
			s.take(2)
			for !s.atEnd() {
				if s.src.Text[s.offset] == '*' && s.offset+1 < len(s.src.Text) && s.src.Text[s.offset+1] == '/' {
					s.take(2)
					break
				}
				s.take(1)
			}
		default:
			return
		}
	}
}

func (s *scanner) atEnd() bool  { return s.offset >= len(s.src.Text) }
func (s *scanner) rest() string { return s.src.Text[s.offset:] }

// take advances past n bytes, keeping the cursor's line/column in step.
func (s *scanner) take(n int) {
	end := s.offset + n
	for s.offset < end {
		r, size := utf8.DecodeRuneInString(s.src.Text[s.offset:])
		s.cursor = s.cursor.Advance(r)
		s.offset += size
	}
}

func (s *scanner) spanFrom(start source.Cursor) Range {
	return Range{
		File:        s.src.Resource,
		StartLine:   start.Line,
		StartColumn: start.Column,
		EndLine:     s.cursor.Line,
		EndColumn:   s.cursor.Column,
	}
}

func (s *scanner) hereRange() Range {
	return s.spanFrom(s.cursor)
}

func (s *scanner) errorf(at source.Cursor, format string, args ...interface{}) error {
	return fmt.Errorf("%s:%d:%d: %s", s.src.Resource, at.Line, at.Column, fmt.Sprintf(format, args...))
}

func isDigitByte(c byte) bool { return c >= '0' && c <= '9' }
