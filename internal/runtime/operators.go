package runtime

import (
	"math"

	"egg/internal/diag"
	"egg/internal/ir"
	"egg/internal/value"
)

// applyUnary implements spec §4.6.5's unary operator table over an already
// evaluated operand.
func applyUnary(op ir.UnaryOp, v value.Value) (value.Value, error) {
	switch op {
	case ir.UnaryNegate:
		if f, ok := v.Float(); ok {
			return value.NewFloat(-f), nil
		}
		if i, ok := v.Int(); ok {
			return value.NewInt(-i), nil
		}
		return value.Value{}, diag.Internal("unary - on non-arithmetic value")
	case ir.UnaryBitwiseNot:
		i, ok := v.Int()
		if !ok {
			return value.Value{}, diag.Internal("unary ~ on non-int value")
		}
		return value.NewInt(^i), nil
	case ir.UnaryLogicalNot:
		b, ok := v.Bool()
		if !ok {
			return value.Value{}, diag.Internal("unary ! on non-bool value")
		}
		return value.NewBool(!b), nil
	default:
		return value.Value{}, diag.Internal("unknown unary operator %d", op)
	}
}

// applyBinary implements the non-short-circuit entries of spec §4.6.5's
// binary operator table over already evaluated operands. ??, !!, ||, && are
// handled by the caller before operands are both evaluated, since they are
// lazy in the right-hand side.
func applyBinary(op ir.BinaryOp, lhs, rhs value.Value) (value.Value, error) {
	switch op {
	case ir.BinaryEqual:
		return value.NewBool(value.Equal(lhs, rhs, value.PromoteInts)), nil
	case ir.BinaryNotEqual:
		return value.NewBool(!value.Equal(lhs, rhs, value.PromoteInts)), nil
	case ir.BinaryLess, ir.BinaryLessEqual, ir.BinaryGreater, ir.BinaryGreaterEqual:
		return applyRelational(op, lhs, rhs)
	}

	if lb, lok := lhs.Bool(); lok {
		if rb, rok := rhs.Bool(); rok {
			if v, ok, err := applyBoolBinary(op, lb, rb); ok {
				return v, err
			}
		}
	}

	li, lIsInt := lhs.Int()
	ri, rIsInt := rhs.Int()
	if lIsInt && rIsInt {
		return applyIntBinary(op, li, ri)
	}
	lf, rf := lhs.ToFloat(), rhs.ToFloat()
	lff, _ := lf.Float()
	rff, _ := rf.Float()
	return applyFloatBinary(op, lff, rff)
}

func applyRelational(op ir.BinaryOp, lhs, rhs value.Value) (value.Value, error) {
	var c int
	li, lIsInt := lhs.Int()
	ri, rIsInt := rhs.Int()
	if lIsInt && rIsInt {
		c = intCompare(li, ri)
	} else {
		lf, _ := lhs.ToFloat().Float()
		rf, _ := rhs.ToFloat().Float()
		c = floatCompare(lf, rf)
	}
	switch op {
	case ir.BinaryLess:
		return value.NewBool(c < 0), nil
	case ir.BinaryLessEqual:
		return value.NewBool(c <= 0), nil
	case ir.BinaryGreater:
		return value.NewBool(c > 0), nil
	case ir.BinaryGreaterEqual:
		return value.NewBool(c >= 0), nil
	default:
		return value.Value{}, diag.Internal("not a relational operator %d", op)
	}
}

func intCompare(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func floatCompare(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func applyBoolBinary(op ir.BinaryOp, a, b bool) (value.Value, bool, error) {
	switch op {
	case ir.BinaryBitwiseAnd:
		return value.NewBool(a && b), true, nil
	case ir.BinaryBitwiseOr:
		return value.NewBool(a || b), true, nil
	case ir.BinaryBitwiseXor:
		return value.NewBool(a != b), true, nil
	default:
		return value.Value{}, false, nil
	}
}

func applyIntBinary(op ir.BinaryOp, a, b int64) (value.Value, error) {
	switch op {
	case ir.BinaryAdd:
		return value.NewInt(a + b), nil
	case ir.BinarySubtract:
		return value.NewInt(a - b), nil
	case ir.BinaryMultiply:
		return value.NewInt(a * b), nil
	case ir.BinaryDivide:
		if b == 0 {
			return value.Value{}, value.ErrDivideByZero
		}
		return value.NewInt(a / b), nil
	case ir.BinaryRemainder:
		if b == 0 {
			return value.Value{}, value.ErrDivideByZero
		}
		return value.NewInt(a % b), nil
	case ir.BinaryMin:
		if a < b {
			return value.NewInt(a), nil
		}
		return value.NewInt(b), nil
	case ir.BinaryMax:
		if a > b {
			return value.NewInt(a), nil
		}
		return value.NewInt(b), nil
	case ir.BinaryShiftLeft:
		return value.NewInt(a << uint64(b&63)), nil
	case ir.BinaryShiftRight:
		return value.NewInt(a >> uint64(b&63)), nil
	case ir.BinaryShiftRightUnsigned:
		return value.NewInt(int64(uint64(a) >> uint64(b&63))), nil
	case ir.BinaryBitwiseAnd:
		return value.NewInt(a & b), nil
	case ir.BinaryBitwiseOr:
		return value.NewInt(a | b), nil
	case ir.BinaryBitwiseXor:
		return value.NewInt(a ^ b), nil
	default:
		return value.Value{}, diag.Internal("unknown int binary operator %d", op)
	}
}

func applyFloatBinary(op ir.BinaryOp, a, b float64) (value.Value, error) {
	switch op {
	case ir.BinaryAdd:
		return value.NewFloat(a + b), nil
	case ir.BinarySubtract:
		return value.NewFloat(a - b), nil
	case ir.BinaryMultiply:
		return value.NewFloat(a * b), nil
	case ir.BinaryDivide:
		return value.NewFloat(a / b), nil // IEEE: no error on zero divisor
	case ir.BinaryRemainder:
		return value.NewFloat(math.Mod(a, b)), nil
	case ir.BinaryMin:
		return value.NewFloat(math.Min(a, b)), nil
	case ir.BinaryMax:
		return value.NewFloat(math.Max(a, b)), nil
	default:
		return value.Value{}, diag.Internal("operator %d is not valid on float operands", op)
	}
}
