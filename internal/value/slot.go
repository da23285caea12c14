package value

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"egg/internal/types"
)

func floatMod(lhs, rhs float64) float64 { return math.Mod(lhs, rhs) }

// ErrNotMutable is returned when Mutate is called on a Slot holding an
// immutable value kind it was never meant to wrap (spec §3.2: "immutable
// ones reject mutation with a runtime error").
var ErrNotMutable = errors.New("value: slot does not support mutation")

// ErrUnsupportedOp is returned when op is not legal for the slot's current
// payload kind (spec §4.5.2 bullet 3).
var ErrUnsupportedOp = errors.New("value: operator not supported for this value's type")

// ErrIncompatibleRHS is returned when the right-hand value's flags don't fit
// the operator's requirement.
var ErrIncompatibleRHS = errors.New("value: right-hand value has an incompatible type")

// ErrDivideByZero is raised for integer division/remainder by zero (spec
// §4.5.2: "Division and remainder by zero on integers raise a runtime
// error").
var ErrDivideByZero = errors.New("value: integer division or remainder by zero")

// Slot is a mutable box holding exactly one Value, supporting the atomic
// mutation operators of spec §4.5.2. A Slot is the runtime-visible
// counterpart of orig:ovum/value.h's `Slot`: "stable in terms of location in
// memory" — it is what a variable, property, or array element is bound to.
//
// Mutation correctness for the Int/Float payload kinds is implemented with a
// lock-free CAS loop (internal/value/cas.go); String/Object/polymorphic
// slots use a mutex, which spec's design notes explicitly sanction as an
// alternative ("CAS or a per-box mutex", spec §9).
type Slot struct {
	kind  Flags // which payload kind this slot was constructed to hold
	ibits uint64
	mu    sync.Mutex
	cur   Value
}

// NewSlot creates a mutable slot initialised to v. The slot's kind is fixed
// to v's flags at construction (a slot doesn't change which primitive kind
// it holds across its lifetime, matching the compiler's static typing of
// variables).
func NewSlot(v Value) *Slot {
	s := &Slot{kind: v.flags, cur: v}
	if v.flags.HasAny(types.Int) {
		s.ibits = int64ToBits(v.i)
	} else if v.flags.HasAny(types.Float) {
		s.ibits = float64ToBits(v.f)
	}
	return s
}

// Get returns the slot's current value.
func (s *Slot) Get() Value {
	if s.kind.HasAny(types.Int) {
		return NewInt(bitsToInt64(atomic.LoadUint64(&s.ibits)))
	}
	if s.kind.HasAny(types.Float) {
		return NewFloat(bitsToFloat64(atomic.LoadUint64(&s.ibits)))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

func (s *Slot) setLocked(v Value) {
	s.cur = v
}

// RHSThunk lazily produces the right-hand operand. Short-circuit ops
// (IfVoid/IfNull/IfFalse/IfTrue) must not call it when the current value
// already satisfies the predicate (spec §4.5.2 bullet 4).
type RHSThunk func() (Value, error)

// Mutate applies op to the slot, returning the *prior* value (spec §4.5.2
// bullet 1: "used by post-increment semantics").
func (s *Slot) Mutate(op types.MutationOp, rhs RHSThunk) (Value, error) {
	switch op {
	case types.OpIfVoid, types.OpIfNull, types.OpIfFalse, types.OpIfTrue:
		return s.mutateShortCircuit(op, rhs)
	}

	switch {
	case s.kind.HasAny(types.Int):
		return s.mutateInt(op, rhs)
	case s.kind.HasAny(types.Float):
		return s.mutateFloat(op, rhs)
	default:
		return s.mutateGeneric(op, rhs)
	}
}

func (s *Slot) mutateShortCircuit(op types.MutationOp, rhs RHSThunk) (Value, error) {
	prior := s.Get()
	satisfied := false
	switch op {
	case types.OpIfVoid:
		satisfied = !prior.Is(types.Void)
	case types.OpIfNull:
		satisfied = !prior.Is(types.Null)
	case types.OpIfFalse:
		b, _ := prior.Bool()
		satisfied = b
	case types.OpIfTrue:
		b, _ := prior.Bool()
		satisfied = !b
	}
	if satisfied {
		return prior, nil
	}
	next, err := rhs()
	if err != nil {
		return prior, err
	}
	s.mu.Lock()
	s.setLocked(next)
	s.mu.Unlock()
	return prior, nil
}

func (s *Slot) mutateInt(op types.MutationOp, rhs RHSThunk) (Value, error) {
	if op == types.OpIncrement || op == types.OpDecrement {
		delta := int64(1)
		if op == types.OpDecrement {
			delta = -1
		}
		prior := casLoop(&s.ibits, int64ToBits, bitsToInt64, func(v int64) int64 { return v + delta })
		return NewInt(prior), nil
	}
	rv, err := rhs()
	if err != nil {
		return Value{}, err
	}
	if !rv.Is(types.Int) {
		return Value{}, errors.Wrapf(ErrIncompatibleRHS, "int slot requires an int right-hand side for %v", op)
	}
	rhsVal := rv.i
	var opErr error
	prior := casLoop(&s.ibits, int64ToBits, bitsToInt64, func(v int64) int64 {
		out, err := applyIntOp(op, v, rhsVal)
		if err != nil {
			opErr = err
			return v
		}
		return out
	})
	if opErr != nil {
		return Value{}, opErr
	}
	return NewInt(prior), nil
}

func applyIntOp(op types.MutationOp, lhs, rhs int64) (int64, error) {
	switch op {
	case types.OpAssign:
		return rhs, nil
	case types.OpAdd:
		return lhs + rhs, nil
	case types.OpSubtract:
		return lhs - rhs, nil
	case types.OpMultiply:
		return lhs * rhs, nil
	case types.OpDivide:
		if rhs == 0 {
			return 0, ErrDivideByZero
		}
		return lhs / rhs, nil
	case types.OpRemainder:
		if rhs == 0 {
			return 0, ErrDivideByZero
		}
		return lhs % rhs, nil
	case types.OpBitwiseAnd:
		return lhs & rhs, nil
	case types.OpBitwiseOr:
		return lhs | rhs, nil
	case types.OpBitwiseXor:
		return lhs ^ rhs, nil
	case types.OpShiftLeft:
		return lhs << uint(rhs), nil
	case types.OpShiftRight:
		return lhs >> uint(rhs), nil
	case types.OpShiftRightUnsigned:
		return int64(uint64(lhs) >> uint(rhs)), nil
	default:
		return 0, errors.Wrapf(ErrUnsupportedOp, "%v on int", op)
	}
}

func (s *Slot) mutateFloat(op types.MutationOp, rhs RHSThunk) (Value, error) {
	if op == types.OpIncrement || op == types.OpDecrement {
		delta := 1.0
		if op == types.OpDecrement {
			delta = -1.0
		}
		prior := casLoop(&s.ibits, float64ToBits, bitsToFloat64, func(v float64) float64 { return v + delta })
		return NewFloat(prior), nil
	}
	rv, err := rhs()
	if err != nil {
		return Value{}, err
	}
	if rv.Is(types.Int) {
		rv = rv.ToFloat()
	}
	if !rv.Is(types.Float) {
		return Value{}, errors.Wrapf(ErrIncompatibleRHS, "float slot requires an arithmetic right-hand side for %v", op)
	}
	rhsVal := rv.f
	var opErr error
	prior := casLoop(&s.ibits, float64ToBits, bitsToFloat64, func(v float64) float64 {
		out, err := applyFloatOp(op, v, rhsVal)
		if err != nil {
			opErr = err
			return v
		}
		return out
	})
	if opErr != nil {
		return Value{}, opErr
	}
	return NewFloat(prior), nil
}

func applyFloatOp(op types.MutationOp, lhs, rhs float64) (float64, error) {
	switch op {
	case types.OpAssign:
		return rhs, nil
	case types.OpAdd:
		return lhs + rhs, nil
	case types.OpSubtract:
		return lhs - rhs, nil
	case types.OpMultiply:
		return lhs * rhs, nil
	case types.OpDivide:
		return lhs / rhs, nil // IEEE semantics: +-Inf/NaN, no error (spec §4.5.2)
	case types.OpRemainder:
		return floatMod(lhs, rhs), nil
	default:
		return 0, errors.Wrapf(ErrUnsupportedOp, "%v on float", op)
	}
}

// mutateGeneric handles String, Object, and any other non-numeric payload
// kind under a plain mutex, per spec §9's sanctioned "CAS or a per-box
// mutex" alternative.
func (s *Slot) mutateGeneric(op types.MutationOp, rhs RHSThunk) (Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prior := s.cur
	switch op {
	case types.OpAssign:
		next, err := rhs()
		if err != nil {
			return prior, err
		}
		s.setLocked(next)
		return prior, nil
	default:
		return prior, errors.Wrapf(ErrUnsupportedOp, "%v on %v", op, s.kind)
	}
}
