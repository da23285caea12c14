package program

import (
	"context"
	"strings"
	"testing"

	"egg/internal/diag"
	"egg/internal/source"
	"egg/internal/syntax"
	"egg/internal/types"
)

// runSource drives the whole pipeline — intake, parse, compile, run — the
// way cmd/egg does, and returns the program plus its result value.
func runSource(t *testing.T, text string) (*Program, []string) {
	t.Helper()
	src := source.FromString("test.egg", text)
	root, err := syntax.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	p := New()
	module, err := p.Compile(src.Resource, root)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, err := p.Run(context.Background(), module); err != nil {
		t.Fatalf("run: %v", err)
	}
	return p, userMessages(p.Diagnostics())
}

func TestSourcePipeline(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "hello world",
			text: `print("Hello, world!");`,
			want: []string{"Hello, world!"},
		},
		{
			name: "while loop with increment",
			text: `int i = 0; while (i < 3) { print(i); i++; }`,
			want: []string{"0", "1", "2"},
		},
		{
			name: "function call",
			text: `int f(int x) { return x * x; } print(f(5));`,
			want: []string{"25"},
		},
		{
			name: "generator for-each",
			text: `int f() { yield 1; yield 2; } for (int v : f()) print(v);`,
			want: []string{"1", "2"},
		},
		{
			name: "try catch finally",
			text: `try { throw "bad"; } catch (string s) { print(s); } finally { print("done"); }`,
			want: []string{"bad", "done"},
		},
		{
			name: "for loop with hoisted initializer",
			text: `for (int i = 0; i < 2; i++) { print(i); }`,
			want: []string{"0", "1"},
		},
		{
			name: "nested if else",
			text: `int x = 2; if (x == 1) { print("one"); } else if (x == 2) { print("two"); } else { print("many"); }`,
			want: []string{"two"},
		},
		{
			name: "recursion through early symbol declaration",
			text: `int fib(int n) { if (n < 2) { return n; } return fib(n - 1) + fib(n - 2); } print(fib(10));`,
			want: []string{"55"},
		},
		{
			name: "closure captures outer variable",
			text: `int base = 10; int add(int x) { return base + x; } print(add(5));`,
			want: []string{"15"},
		},
		{
			name: "switch with default",
			text: `int x = 3; switch (x) { case 1, 2: print("low"); break; default: print("other"); }`,
			want: []string{"other"},
		},
		{
			name: "switch clause ends without break",
			text: `int x = 1; switch (x) { case 1: print("one"); default: print("other"); }`,
			want: []string{"one"},
		},
		{
			name: "switch continue falls through to next clause",
			text: `int x = 1; switch (x) { case 1: print("one"); continue; default: print("other"); }`,
			want: []string{"one", "other"},
		},
		{
			name: "switch continue wraps round-robin",
			text: `int x = 2; switch (x) { case 1: print("one"); case 2: print("two"); continue; }`,
			want: []string{"two", "one"},
		},
		{
			name: "for-each break abandons generator early",
			text: `int f() { yield 1; yield 2; yield 3; } for (int v : f()) { if (v == 2) break; print(v); }`,
			want: []string{"1"},
		},
		{
			name: "array literal iteration",
			text: `for (int v : [4, 5, 6]) print(v);`,
			want: []string{"4", "5", "6"},
		},
		{
			name: "ternary and float promotion",
			text: `float f = 1; print(true ? f + 0.5 : 0.0);`,
			want: []string{"1.5"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := runSource(t, tt.text)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// assert(2 + 2 == 5); parsed from source must carry the predicate operands
// into the failure message (spec §8 scenario 6).
func TestSourceAssertFailure(t *testing.T) {
	src := source.FromString("test.egg", `assert(2 + 2 == 5);`)
	root, err := syntax.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	p := New()
	module, err := p.Compile(src.Resource, root)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	result, err := p.Run(context.Background(), module)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !result.Is(types.Throw) {
		t.Fatalf("expected an uncaught Throw result")
	}
	inner := result.Inner()
	s, ok := inner.String()
	if !ok {
		t.Fatalf("expected a string exception, got %v", inner.Flags())
	}
	msg := s.Go()
	for _, want := range []string{"left=4", "operator===", "right=5"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("assertion message %q missing %q", msg, want)
		}
	}
}

// A case/default clause with no statements is a compile error.
func TestSourceSwitchEmptyClauseRejected(t *testing.T) {
	src := source.FromString("empty.egg", `int x = 1; switch (x) { case 1: default: print("other"); }`)
	root, err := syntax.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	p := New()
	if _, err := p.Compile(src.Resource, root); err == nil {
		t.Fatalf("expected a compile error for an empty case clause")
	}
	var found bool
	for _, r := range p.Diagnostics() {
		if r.Severity == diag.Error && strings.Contains(r.Message, "at least one statement") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no empty-clause diagnostic; got %v", p.Diagnostics())
	}
}

// Compile errors from parsed source carry the resource and position of the
// offending token.
func TestSourceCompileErrorCarriesPosition(t *testing.T) {
	src := source.FromString("broken.egg", "int x = 1;\nprint(nope);")
	root, err := syntax.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	p := New()
	if _, err := p.Compile(src.Resource, root); err == nil {
		t.Fatalf("expected a compile error for an undefined name")
	}
	var found bool
	for _, r := range p.Diagnostics() {
		if r.Severity == diag.Error && strings.Contains(r.Message, "nope") {
			found = true
			if r.Range.StartLine != 2 {
				t.Fatalf("diagnostic line = %d, want 2", r.Range.StartLine)
			}
		}
	}
	if !found {
		t.Fatalf("no diagnostic mentioning the undefined name; got %v", p.Diagnostics())
	}
}
