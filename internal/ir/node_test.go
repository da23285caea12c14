package ir

import "testing"

func TestNewNodeCarriesRange(t *testing.T) {
	rng := Range{File: "test.egg", StartLine: 3, StartColumn: 1, EndLine: 3, EndColumn: 10}
	n := NewNode(StmtExpression, rng)
	if n.Range != rng {
		t.Fatalf("expected range to propagate verbatim, got %+v", n.Range)
	}
	if len(n.Children) != 0 {
		t.Fatalf("expected no children")
	}
}

func TestNewNodeChildren(t *testing.T) {
	lhs := NewNode(ExprLiteral, Range{})
	rhs := NewNode(ExprLiteral, Range{})
	n := NewNode(ExprBinary, Range{}, lhs, rhs)
	if len(n.Children) != 2 || n.Children[0] != lhs || n.Children[1] != rhs {
		t.Fatalf("expected children to be stored in order")
	}
}

func TestAcquireRelease(t *testing.T) {
	n := NewNode(ExprLiteral, Range{})
	n.Acquire()
	if got := n.Release(); got != 1 {
		t.Fatalf("expected refcount 1 after acquire+release, got %d", got)
	}
	if got := n.Release(); got != 0 {
		t.Fatalf("expected refcount 0 after final release, got %d", got)
	}
}

func TestModuleHoldsRoot(t *testing.T) {
	root := NewNode(StmtBlock, Range{})
	m := Module{Resource: "test.egg", Root: root}
	if m.Root != root {
		t.Fatalf("expected module to hold the same root pointer")
	}
}
