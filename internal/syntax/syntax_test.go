package syntax

import "testing"

func TestNewIntLiteral(t *testing.T) {
	n := NewIntLiteral(Range{}, 42)
	if n.Kind != ExprLiteral || n.LiteralKind != LiteralInt || n.IntValue != 42 {
		t.Fatalf("unexpected literal node: %+v", n)
	}
}

func TestNewOpChildren(t *testing.T) {
	lhs := NewIntLiteral(Range{}, 2)
	rhs := NewIntLiteral(Range{}, 2)
	n := NewOp(ExprBinary, Range{}, "+", lhs, rhs)
	if n.Operator != "+" || len(n.Children) != 2 {
		t.Fatalf("unexpected binary node: %+v", n)
	}
}

func TestNewNameVariable(t *testing.T) {
	n := NewName(ExprVariable, Range{}, "x")
	if n.Name != "x" {
		t.Fatalf("expected name x, got %q", n.Name)
	}
}
