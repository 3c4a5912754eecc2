package irbuilder

import (
	"irforge/internal/ir"
	"irforge/internal/types"
)

// checkCast rejects a conversion the opcode cannot perform. Every opcode
// except bitcast works lane by lane, so vector operands must have the
// same lane count on both sides.
func (mb *ModuleBuilder) checkCast(op ir.CastOp, from, to types.TypeID) error {
	in := mb.m.Types
	reject := func(why string) error {
		return buildErr(KindUnsupportedType, op.String(), "%s to %s: %s", in.Format(from), in.Format(to), why)
	}
	if op == ir.CastBitcast {
		fb, fp, fok := castBits(in, from)
		tb, tp, tok := castBits(in, to)
		switch {
		case !fok || !tok:
			return reject("not a first-class scalar or vector")
		case fp != tp:
			return reject("pointer and non-pointer")
		case fp == 0 && fb != tb:
			return reject("bit sizes differ")
		}
		return nil
	}

	ft, fn, fok := castLane(in, from)
	tt, tn, tok := castLane(in, to)
	if !fok || !tok {
		return reject("unknown type")
	}
	if fn != tn {
		return reject("lane counts differ")
	}
	ok := false
	switch op {
	case ir.CastTrunc:
		ok = ft.IsInteger() && tt.IsInteger() && tt.Bits < ft.Bits
	case ir.CastZExt, ir.CastSExt:
		ok = ft.IsInteger() && tt.IsInteger() && tt.Bits > ft.Bits
	case ir.CastFPTrunc:
		ok = ft.IsFloat() && tt.IsFloat() && tt.Bits < ft.Bits
	case ir.CastFPExt:
		ok = ft.IsFloat() && tt.IsFloat() && tt.Bits > ft.Bits
	case ir.CastFPToUI, ir.CastFPToSI:
		ok = ft.IsFloat() && tt.IsInteger()
	case ir.CastUIToFP, ir.CastSIToFP:
		ok = ft.IsInteger() && tt.IsFloat()
	case ir.CastPtrToInt:
		ok = ft.Kind == types.KindPointer && tt.IsInteger()
	case ir.CastIntToPtr:
		ok = ft.IsInteger() && tt.Kind == types.KindPointer
	case ir.CastAddrSpaceCast:
		ok = ft.Kind == types.KindPointer && tt.Kind == types.KindPointer
	}
	if !ok {
		return reject("incompatible operand and result")
	}
	return nil
}

// castLane splits a vector into its element descriptor and lane count.
// Scalars have zero lanes.
func castLane(in *types.Interner, id types.TypeID) (types.Type, uint64, bool) {
	t, ok := in.Lookup(id)
	if !ok {
		return types.Type{}, 0, false
	}
	if t.Kind != types.KindVector {
		return t, 0, true
	}
	elem, ok := in.Lookup(t.Elem)
	return elem, t.Count, ok
}

// castBits sizes a bitcast operand. Pointers and vectors of pointers
// report their pointer count instead of a bit size.
func castBits(in *types.Interner, id types.TypeID) (bits, ptrs uint64, ok bool) {
	elem, lanes, ok := castLane(in, id)
	if !ok {
		return 0, 0, false
	}
	n := max(lanes, 1)
	switch {
	case elem.Kind == types.KindPointer:
		return 0, n, true
	case elem.IsInteger() || elem.IsFloat():
		return uint64(elem.Bits) * n, 0, true
	}
	return 0, 0, false
}
