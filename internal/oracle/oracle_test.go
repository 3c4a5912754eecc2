package oracle_test

import (
	"errors"
	"math/big"
	"testing"

	"irforge/internal/ir"
	"irforge/internal/oracle"
)

func TestEvalInt64(t *testing.T) {
	tests := []struct {
		name     string
		op       ir.BinaryOp
		bits     uint32
		lhs, rhs int64
		want     int64
	}{
		{"add wraps", ir.OpAdd, 8, 127, 1, -128},
		{"sub wraps", ir.OpSub, 8, -128, 1, 127},
		{"mul wraps", ir.OpMul, 16, 300, 300, 24464},
		{"udiv sees unsigned", ir.OpUDiv, 8, -2, 2, 127},
		{"sdiv truncates", ir.OpSDiv, 8, -7, 2, -3},
		{"urem sees unsigned", ir.OpURem, 8, -1, 10, 5},
		{"srem follows dividend", ir.OpSRem, 32, -7, 2, -1},
		{"shl drops high bits", ir.OpShl, 8, 0x41, 1, -126},
		{"lshr fills zeros", ir.OpLShr, 8, -128, 7, 1},
		{"ashr fills sign", ir.OpAShr, 8, -128, 7, -1},
		{"and", ir.OpAnd, 64, -1, 0x0F0F, 0x0F0F},
		{"or", ir.OpOr, 12, 0x800, 1, -2047},
		{"xor", ir.OpXor, 64, -1, 0, -1},
		{"i64 add overflow", ir.OpAdd, 64, -1 << 63, -1 << 63, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := oracle.EvalInt64(tt.op, tt.bits, tt.lhs, tt.rhs)
			if err != nil {
				t.Fatalf("EvalInt64: %v", err)
			}
			if got != tt.want {
				t.Fatalf("%s i%d %d, %d = %d, want %d", tt.op, tt.bits, tt.lhs, tt.rhs, got, tt.want)
			}
		})
	}
}

func TestEvalUndefined(t *testing.T) {
	tests := []struct {
		name     string
		op       ir.BinaryOp
		bits     uint32
		lhs, rhs int64
	}{
		{"udiv by zero", ir.OpUDiv, 32, 1, 0},
		{"srem by zero", ir.OpSRem, 32, 1, 0},
		{"sdiv overflow", ir.OpSDiv, 8, -128, -1},
		{"srem overflow", ir.OpSRem, 16, -32768, -1},
		{"shift by width", ir.OpShl, 16, 1, 16},
		{"negative shift is huge", ir.OpLShr, 8, 1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := oracle.EvalInt64(tt.op, tt.bits, tt.lhs, tt.rhs)
			if !errors.Is(err, oracle.ErrUndefined) {
				t.Fatalf("expected ErrUndefined, got %v", err)
			}
			var ue *oracle.UndefinedError
			if !errors.As(err, &ue) || ue.Op != tt.op {
				t.Fatalf("expected *UndefinedError for %s, got %#v", tt.op, err)
			}
		})
	}
}

func TestEvalBool(t *testing.T) {
	tests := []struct {
		op       ir.BinaryOp
		lhs, rhs bool
		want     bool
		undef    bool
	}{
		{op: ir.OpAdd, lhs: true, rhs: true, want: false},
		{op: ir.OpSub, lhs: false, rhs: true, want: true},
		{op: ir.OpMul, lhs: true, rhs: true, want: true},
		{op: ir.OpUDiv, lhs: true, rhs: true, want: true},
		{op: ir.OpUDiv, lhs: true, rhs: false, undef: true},
		{op: ir.OpSDiv, lhs: true, rhs: true, undef: true},
		{op: ir.OpURem, lhs: true, rhs: true, want: false},
		{op: ir.OpXor, lhs: true, rhs: false, want: true},
	}
	for _, tt := range tests {
		got, err := oracle.EvalBool(tt.op, tt.lhs, tt.rhs)
		if tt.undef {
			if !errors.Is(err, oracle.ErrUndefined) {
				t.Errorf("%s %v, %v: expected undefined, got %v", tt.op, tt.lhs, tt.rhs, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s %v, %v: %v", tt.op, tt.lhs, tt.rhs, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s %v, %v = %v, want %v", tt.op, tt.lhs, tt.rhs, got, tt.want)
		}
	}
}

func TestEvalWide(t *testing.T) {
	hi := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	got, err := oracle.Eval(ir.OpAdd, 128, hi, big.NewInt(1))
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	want := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	if got.Cmp(want) != 0 {
		t.Fatalf("i128 max+1 = %s, want %s", got, want)
	}
}

func TestEvalRejectsFloatOps(t *testing.T) {
	if _, err := oracle.EvalInt64(ir.OpFAdd, 32, 1, 1); err == nil || errors.Is(err, oracle.ErrUndefined) {
		t.Fatalf("expected a usage error, got %v", err)
	}
	if len(oracle.IntegerOps()) != 13 {
		t.Fatalf("IntegerOps = %d operators", len(oracle.IntegerOps()))
	}
}
