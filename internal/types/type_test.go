package types

import "testing"

func TestNullableIdempotence(t *testing.T) {
	f := NewForge()
	a := f.ForgePrimitive(Int)
	up := f.ForgeNullable(a, true)
	down := f.ForgeNullable(up, false)
	if down != a {
		t.Fatalf("expected ForgeNullable(ForgeNullable(a,true),false) to be pointer-equal to a")
	}
}

func TestUnionCommutativeAndIdempotent(t *testing.T) {
	f := NewForge()
	a := f.ForgePrimitive(Int)
	b := f.ForgePrimitive(String)
	if f.ForgeUnion(a, b) != f.ForgeUnion(b, a) {
		t.Fatalf("expected union to be commutative")
	}
	if f.ForgeUnion(a, a) != a {
		t.Fatalf("expected union with self to be idempotent")
	}
}

func TestStructuralIdentity(t *testing.T) {
	f := NewForge()
	a := f.ForgePrimitive(Int | String)
	b := f.ForgePrimitive(String | Int)
	if a != b {
		t.Fatalf("expected structurally identical flag sets to be pointer-equal")
	}
}

func TestAssignabilityPromotion(t *testing.T) {
	f := NewForge()
	c := f.Common()
	if got := f.IsTypeAssignable(c.Float, c.Int); got != Always {
		t.Fatalf("expected Int->Float to be Always assignable (promotion), got %v", got)
	}
	if got := f.IsTypeAssignable(c.Int, c.Float); got != Never {
		t.Fatalf("expected Float->Int to be Never assignable, got %v", got)
	}
	if got := f.IsTypeAssignable(c.AnyQ, c.Int); got != Always {
		t.Fatalf("expected Int->AnyQ to be Always assignable, got %v", got)
	}
	union := f.ForgeUnion(c.Int, c.String)
	if got := f.IsTypeAssignable(union, c.Int); got != Always {
		t.Fatalf("expected Int->(Int|String) to be Always, got %v", got)
	}
	if got := f.IsTypeAssignable(c.Int, union); got != Sometimes {
		t.Fatalf("expected (Int|String)->Int to be Sometimes, got %v", got)
	}
	if got := f.IsTypeAssignable(c.Bool, c.String); got != Never {
		t.Fatalf("expected String->Bool to be Never, got %v", got)
	}
}

func TestIterationTypeDerivation(t *testing.T) {
	f := NewForge()
	c := f.Common()
	elemInt := f.ForgeIterableType(&Iterable{ElementType: c.Int})
	if got := f.ForgeIterationType(elemInt); got != c.Int {
		t.Fatalf("expected element type Int, got %v", got)
	}
	if got := f.ForgeIterationType(c.String); got != c.String {
		t.Fatalf("expected string iteration type to be string (one codepoint)")
	}
	if got := f.ForgeIterationType(c.Int); got != nil {
		t.Fatalf("expected non-iterable type to yield nil, got %v", got)
	}
}

func TestMutatabilityNeverOnBadOp(t *testing.T) {
	f := NewForge()
	c := f.Common()
	if got := f.IsTypeMutatable(c.Float, OpShiftLeft, c.Int); got != MutNeverLeft {
		t.Fatalf("expected ShiftLeft on float target to be NeverLeft, got %v", got)
	}
	if got := f.IsTypeMutatable(c.Int, OpAdd, c.Int); got != MutAlways {
		t.Fatalf("expected int += int to be Always, got %v", got)
	}
}

func TestArrayElementTypeDeduction(t *testing.T) {
	f := NewForge()
	c := f.Common()
	// [1,2,3] => Int
	b := f.CreateComplexBuilder()
	b.Add(c.Int).Add(c.Int).Add(c.Int)
	if got := b.Build(); got != c.Int {
		t.Fatalf("expected [1,2,3] to infer Int, got %v", got)
	}
	// [1, 2.0] => Int|Float
	b2 := f.CreateComplexBuilder()
	b2.Add(c.Int).Add(c.Float)
	if got := b2.Build(); got != f.ForgeUnion(c.Int, c.Float) {
		t.Fatalf("expected [1,2.0] to infer Int|Float, got %v", got)
	}
}
