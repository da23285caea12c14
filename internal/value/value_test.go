package value

import (
	"testing"

	"egg/internal/types"
)

func TestSingletons(t *testing.T) {
	if !Void.Is(types.Void) || !Null.Is(types.Null) {
		t.Fatalf("expected Void/Null singletons to carry their flags")
	}
	if !True.Is(types.Bool) || !False.Is(types.Bool) {
		t.Fatalf("expected True/False to carry Bool flag")
	}
}

func TestPostIncrementReturnsPrior(t *testing.T) {
	s := NewSlot(NewInt(5))
	prior, err := s.Mutate(types.OpIncrement, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := prior.Int(); v != 5 {
		t.Fatalf("expected prior value 5, got %d", v)
	}
	if v, _ := s.Get().Int(); v != 6 {
		t.Fatalf("expected slot to now hold 6, got %d", v)
	}
}

func TestIntegerDivideByZero(t *testing.T) {
	s := NewSlot(NewInt(10))
	_, err := s.Mutate(types.OpDivide, func() (Value, error) { return NewInt(0), nil })
	if err == nil {
		t.Fatalf("expected division by zero to error")
	}
}

func TestFloatDivideByZeroIsInf(t *testing.T) {
	s := NewSlot(NewFloat(1.0))
	_, err := s.Mutate(types.OpDivide, func() (Value, error) { return NewFloat(0), nil })
	if err != nil {
		t.Fatalf("unexpected error for float divide by zero: %v", err)
	}
	f, _ := s.Get().Float()
	one, zero := 1.0, 0.0
	if f != one/zero {
		t.Fatalf("expected +Inf, got %v", f)
	}
}

func TestShortCircuitDoesNotEvaluateRHS(t *testing.T) {
	s := NewSlot(NewInt(5))
	// We can only drive the bool-flavoured short circuits via a bool slot.
	bs := NewSlot(False)
	called := false
	_, err := bs.Mutate(types.OpIfTrue, func() (Value, error) {
		called = true
		return False, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Fatalf("expected rhs not to be evaluated when predicate already satisfied")
	}
	_ = s
}

func TestEqualityNaN(t *testing.T) {
	nan := NewFloat(nanValue())
	if Equal(nan, nan, Binary) {
		t.Fatalf("expected NaN != NaN")
	}
}

func TestCompareSymmetry(t *testing.T) {
	a, b := NewInt(3), NewInt(7)
	if Compare(a, b)+Compare(b, a) != 0 {
		t.Fatalf("expected compare(a,b)+compare(b,a) == 0")
	}
}

func nanValue() float64 {
	var zero float64
	return zero / zero
}
