// Package oracle computes the expected results of integer binary operators
// on fixed-width operands. Fixture programs compare what the generated code
// computes against these values.
package oracle

import (
	"errors"
	"fmt"
	"math/big"

	"irforge/internal/ir"
	"irforge/internal/numeric"
)

// ErrUndefined marks operations whose result is poison or undefined
// behaviour for the given operands.
var ErrUndefined = errors.New("undefined result")

// UndefinedError explains why an operation has no defined result.
type UndefinedError struct {
	Op     ir.BinaryOp
	Bits   uint32
	Reason string
}

func (e *UndefinedError) Error() string {
	return fmt.Sprintf("%s i%d: %s", e.Op, e.Bits, e.Reason)
}

func (e *UndefinedError) Unwrap() error { return ErrUndefined }

func undefined(op ir.BinaryOp, bits uint32, reason string) error {
	return &UndefinedError{Op: op, Bits: bits, Reason: reason}
}

// Eval applies op to lhs and rhs as iN bit patterns. Operands may be given
// signed or unsigned; only their low bits matter. The result is returned
// in two's complement form, the way integer constants are stored.
func Eval(op ir.BinaryOp, bits uint32, lhs, rhs *big.Int) (*big.Int, error) {
	if bits == 0 {
		return nil, undefined(op, bits, "zero width")
	}
	if op.IsFloat() {
		return nil, fmt.Errorf("oracle: %s is not an integer operator", op)
	}
	su, sv := numeric.WrapSigned(lhs, bits), numeric.WrapSigned(rhs, bits)
	uu, uv := numeric.WrapUnsigned(lhs, bits), numeric.WrapUnsigned(rhs, bits)

	var r *big.Int
	switch op {
	case ir.OpAdd:
		r = new(big.Int).Add(uu, uv)
	case ir.OpSub:
		r = new(big.Int).Sub(uu, uv)
	case ir.OpMul:
		r = new(big.Int).Mul(uu, uv)
	case ir.OpUDiv, ir.OpURem:
		if uv.Sign() == 0 {
			return nil, undefined(op, bits, "division by zero")
		}
		if op == ir.OpUDiv {
			r = new(big.Int).Quo(uu, uv)
		} else {
			r = new(big.Int).Rem(uu, uv)
		}
	case ir.OpSDiv, ir.OpSRem:
		if sv.Sign() == 0 {
			return nil, undefined(op, bits, "division by zero")
		}
		if isMinSigned(su, bits) && sv.Cmp(big.NewInt(-1)) == 0 {
			return nil, undefined(op, bits, "signed overflow")
		}
		// Quo and Rem truncate toward zero like sdiv/srem.
		if op == ir.OpSDiv {
			r = new(big.Int).Quo(su, sv)
		} else {
			r = new(big.Int).Rem(su, sv)
		}
	case ir.OpShl, ir.OpLShr, ir.OpAShr:
		if uv.Cmp(big.NewInt(int64(bits))) >= 0 {
			return nil, undefined(op, bits, "shift amount "+uv.String()+" exceeds width")
		}
		n := uint(uv.Uint64())
		switch op {
		case ir.OpShl:
			r = new(big.Int).Lsh(uu, n)
		case ir.OpLShr:
			r = new(big.Int).Rsh(uu, n)
		default:
			r = new(big.Int).Rsh(su, n) // Rsh rounds toward -inf: arithmetic
		}
	case ir.OpAnd:
		r = new(big.Int).And(uu, uv)
	case ir.OpOr:
		r = new(big.Int).Or(uu, uv)
	case ir.OpXor:
		r = new(big.Int).Xor(uu, uv)
	default:
		return nil, fmt.Errorf("oracle: unknown operator %s", op)
	}
	return numeric.WrapSigned(r, bits), nil
}

func isMinSigned(v *big.Int, bits uint32) bool {
	lo := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	return v.Cmp(lo.Neg(lo)) == 0
}

// EvalInt64 is Eval for widths up to 64 bits.
func EvalInt64(op ir.BinaryOp, bits uint32, lhs, rhs int64) (int64, error) {
	if bits > 64 {
		return 0, fmt.Errorf("oracle: i%d does not fit int64", bits)
	}
	r, err := Eval(op, bits, big.NewInt(lhs), big.NewInt(rhs))
	if err != nil {
		return 0, err
	}
	return r.Int64(), nil
}

// EvalBool is Eval on i1.
func EvalBool(op ir.BinaryOp, lhs, rhs bool) (bool, error) {
	r, err := Eval(op, 1, boolInt(lhs), boolInt(rhs))
	if err != nil {
		return false, err
	}
	return r.Sign() != 0, nil
}

func boolInt(b bool) *big.Int {
	if b {
		return big.NewInt(1)
	}
	return new(big.Int)
}

// IntegerOps lists the operators Eval accepts, in opcode order.
func IntegerOps() []ir.BinaryOp {
	return []ir.BinaryOp{
		ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpUDiv, ir.OpSDiv, ir.OpURem, ir.OpSRem,
		ir.OpShl, ir.OpLShr, ir.OpAShr, ir.OpAnd, ir.OpOr, ir.OpXor,
	}
}
