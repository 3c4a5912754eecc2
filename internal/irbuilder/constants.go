package irbuilder

import (
	"math"
	"math/big"
	"slices"

	"irforge/internal/ir"
	"irforge/internal/numeric"
	"irforge/internal/types"
)

// Every constructor registers a new symbol; equal constants are not merged.

func (mb *ModuleBuilder) constant(c *ir.Constant) ir.ValueID {
	return mb.m.Symbols.Register(ir.Symbol{Kind: ir.SymConst, Type: c.Type, Const: c})
}

// I1 returns true or false.
func (mb *ModuleBuilder) I1(v bool) ir.ValueID {
	var n int64
	if v {
		n = 1
	}
	return mb.Int(mb.m.Types.Builtins().I1, n)
}

func (mb *ModuleBuilder) I8(v int8) ir.ValueID   { return mb.Int(mb.m.Types.Builtins().I8, int64(v)) }
func (mb *ModuleBuilder) I16(v int16) ir.ValueID { return mb.Int(mb.m.Types.Builtins().I16, int64(v)) }
func (mb *ModuleBuilder) I32(v int32) ir.ValueID { return mb.Int(mb.m.Types.Builtins().I32, int64(v)) }
func (mb *ModuleBuilder) I64(v int64) ir.ValueID { return mb.Int(mb.m.Types.Builtins().I64, v) }

// Int returns an integer constant of type typ, wrapped to its width.
// Widths above 64 bits are stored as big integers.
func (mb *ModuleBuilder) Int(typ types.TypeID, v int64) ir.ValueID {
	tt := mb.m.Types.MustLookup(typ)
	if tt.Bits > 64 {
		return mb.BigInt(typ, big.NewInt(v))
	}
	return mb.constant(&ir.Constant{Kind: ir.ConstInt, Type: typ, Int: numeric.WrapInt64(v, tt.Bits)})
}

// BigInt returns an arbitrary-width integer constant.
func (mb *ModuleBuilder) BigInt(typ types.TypeID, v *big.Int) ir.ValueID {
	tt := mb.m.Types.MustLookup(typ)
	wrapped := numeric.WrapSigned(v, tt.Bits)
	if tt.Bits <= 64 {
		return mb.constant(&ir.Constant{Kind: ir.ConstInt, Type: typ, Int: wrapped.Int64()})
	}
	return mb.constant(&ir.Constant{Kind: ir.ConstBigInt, Type: typ, Big: wrapped})
}

// Float returns a float constant with the exact bits of v.
func (mb *ModuleBuilder) Float(v float32) ir.ValueID {
	return mb.FloatBits(math.Float32bits(v))
}

// FloatBits returns a float constant from raw single bits.
func (mb *ModuleBuilder) FloatBits(bits uint32) ir.ValueID {
	return mb.constant(&ir.Constant{Kind: ir.ConstFloat, Type: mb.m.Types.Builtins().Float, Bits: uint64(bits)})
}

// Double returns a double constant with the exact bits of v.
func (mb *ModuleBuilder) Double(v float64) ir.ValueID {
	return mb.DoubleBits(math.Float64bits(v))
}

// DoubleBits returns a double constant from raw bits.
func (mb *ModuleBuilder) DoubleBits(bits uint64) ir.ValueID {
	return mb.constant(&ir.Constant{Kind: ir.ConstDouble, Type: mb.m.Types.Builtins().Double, Bits: bits})
}

// FP80 returns the x86_fp80 constant equal to v.
func (mb *ModuleBuilder) FP80(v float64) ir.ValueID {
	return mb.FP80Bits(numeric.FP80FromFloat64(math.Float64bits(v)))
}

// FP80Bits returns an x86_fp80 constant from raw bits.
func (mb *ModuleBuilder) FP80Bits(v numeric.FP80) ir.ValueID {
	return mb.constant(&ir.Constant{Kind: ir.ConstFP80, Type: mb.m.Types.Builtins().X86FP80, FP80: v})
}

// FP80SNaN returns the x86_fp80 signaling NaN 0xK7FFFA000000000000000.
func (mb *ModuleBuilder) FP80SNaN() ir.ValueID {
	return mb.FP80Bits(numeric.FP80SNaN)
}

// Null returns null for pointers, zeroinitializer for aggregates and zero
// for scalars.
func (mb *ModuleBuilder) Null(typ types.TypeID) ir.ValueID {
	return mb.constant(&ir.Constant{Kind: ir.ConstNull, Type: typ})
}

// Undef returns undef of typ.
func (mb *ModuleBuilder) Undef(typ types.TypeID) ir.ValueID {
	return mb.constant(&ir.Constant{Kind: ir.ConstUndef, Type: typ})
}

// String returns a c"..." constant of array type arr. When arr is longer
// than data the remaining byte is the implicit NUL.
func (mb *ModuleBuilder) String(arr types.TypeID, data []byte) ir.ValueID {
	return mb.constant(&ir.Constant{Kind: ir.ConstString, Type: arr, Bytes: slices.Clone(data)})
}

func (mb *ModuleBuilder) aggregate(op string, kind ir.ConstKind, typ types.TypeID, elems []ir.ValueID) (ir.ValueID, error) {
	for i, e := range elems {
		if _, ok := mb.m.Symbols.Lookup(e); !ok {
			return ir.NoValueID, buildErr(KindUnknownValue, op, "element %d", i)
		}
	}
	return mb.constant(&ir.Constant{Kind: kind, Type: typ, Elems: slices.Clone(elems)}), nil
}

// Array returns [elem...] of type [n x T].
func (mb *ModuleBuilder) Array(elem types.TypeID, elems ...ir.ValueID) (ir.ValueID, error) {
	return mb.aggregate("array", ir.ConstArray, mb.m.Types.Array(elem, uint64(len(elems))), elems)
}

// Vector returns <elem...> of type <n x T>.
func (mb *ModuleBuilder) Vector(elem types.TypeID, elems ...ir.ValueID) (ir.ValueID, error) {
	return mb.aggregate("vector", ir.ConstVector, mb.m.Types.Vector(elem, uint64(len(elems))), elems)
}

// Struct returns { elems... } of the given struct type.
func (mb *ModuleBuilder) Struct(typ types.TypeID, elems ...ir.ValueID) (ir.ValueID, error) {
	info, ok := mb.m.Types.StructInfo(typ)
	if !ok || !info.HasBody {
		return ir.NoValueID, buildErr(KindUnsupportedType, "struct", "%s has no body", mb.m.Types.Format(typ))
	}
	if len(info.Fields) != len(elems) {
		return ir.NoValueID, buildErr(KindArityMismatch, "struct", "%d fields, %d values", len(info.Fields), len(elems))
	}
	return mb.aggregate("struct", ir.ConstStruct, typ, elems)
}

// CastExpr returns a constant cast expression.
func (mb *ModuleBuilder) CastExpr(op ir.CastOp, v ir.ValueID, to types.TypeID) (ir.ValueID, error) {
	sym, ok := mb.m.Symbols.Lookup(v)
	if !ok {
		return ir.NoValueID, buildErr(KindUnknownValue, op.String(), "operand %d", v)
	}
	if err := mb.checkCast(op, sym.Type, to); err != nil {
		return ir.NoValueID, err
	}
	return mb.constant(&ir.Constant{Kind: ir.ConstCast, Type: to, Cast: op, Operands: []ir.ValueID{v}}), nil
}

// BinaryExpr returns a constant binary expression typed by lhs.
func (mb *ModuleBuilder) BinaryExpr(op ir.BinaryOp, lhs, rhs ir.ValueID) (ir.ValueID, error) {
	lt, rt, err := mb.operandTypes(op.String(), lhs, rhs)
	if err != nil {
		return ir.NoValueID, err
	}
	if lt != rt {
		return ir.NoValueID, buildErr(KindOperandMismatch, op.String(), "%s vs %s", mb.m.Types.Format(lt), mb.m.Types.Format(rt))
	}
	return mb.constant(&ir.Constant{Kind: ir.ConstBinary, Type: lt, Binary: op, Operands: []ir.ValueID{lhs, rhs}}), nil
}

// CompareExpr returns a constant icmp/fcmp expression.
func (mb *ModuleBuilder) CompareExpr(pred ir.CmpPred, lhs, rhs ir.ValueID) (ir.ValueID, error) {
	lt, rt, err := mb.operandTypes(pred.Opcode(), lhs, rhs)
	if err != nil {
		return ir.NoValueID, err
	}
	if lt != rt {
		return ir.NoValueID, buildErr(KindOperandMismatch, pred.Opcode(), "%s vs %s", mb.m.Types.Format(lt), mb.m.Types.Format(rt))
	}
	return mb.constant(&ir.Constant{Kind: ir.ConstCompare, Type: mb.cmpResultType(lt), Pred: pred, Operands: []ir.ValueID{lhs, rhs}}), nil
}

// GEPExpr returns a constant getelementptr expression.
func (mb *ModuleBuilder) GEPExpr(base ir.ValueID, inbounds bool, indices ...ir.ValueID) (ir.ValueID, error) {
	resTy, srcElem, err := mb.resolveGEP("getelementptr", base, indices)
	if err != nil {
		return ir.NoValueID, err
	}
	ops := append([]ir.ValueID{base}, indices...)
	return mb.constant(&ir.Constant{Kind: ir.ConstGEP, Type: resTy, Operands: ops, Inbounds: inbounds, SrcElem: srcElem}), nil
}

// InlineAsm returns an inline assembly callee of function type fnType. Its
// symbol type is a pointer to fnType, like any other callee.
func (mb *ModuleBuilder) InlineAsm(fnType types.TypeID, asm ir.InlineAsm) ir.ValueID {
	return mb.constant(&ir.Constant{Kind: ir.ConstInlineAsm, Type: mb.m.Types.Pointer(fnType), Asm: asm})
}

// BlockAddress returns blockaddress(@fn, %block).
func (mb *ModuleBuilder) BlockAddress(fn *ir.Function, block ir.BlockID) ir.ValueID {
	i8p := mb.m.Types.Pointer(mb.m.Types.Builtins().I8)
	return mb.constant(&ir.Constant{Kind: ir.ConstBlockAddress, Type: i8p, Func: fn.ID, Block: block})
}

// Const converts a Go literal into a constant of typ. Integer slots accept
// booleans, integers and floats (converted numerically); floating slots
// accept the same, converted to the slot's precision.
func (mb *ModuleBuilder) Const(typ types.TypeID, lit any) (ir.ValueID, error) {
	tt, ok := mb.m.Types.Lookup(typ)
	if !ok {
		return ir.NoValueID, buildErr(KindUnsupportedType, "const", "type#%d", typ)
	}
	switch {
	case tt.IsInteger():
		switch v := lit.(type) {
		case bool:
			if v {
				return mb.Int(typ, 1), nil
			}
			return mb.Int(typ, 0), nil
		case int:
			return mb.Int(typ, int64(v)), nil
		case int64:
			return mb.Int(typ, v), nil
		case uint64:
			return mb.BigInt(typ, new(big.Int).SetUint64(v)), nil
		case *big.Int:
			return mb.BigInt(typ, v), nil
		case float32:
			return mb.Int(typ, int64(v)), nil
		case float64:
			return mb.Int(typ, int64(v)), nil
		}
	case tt.IsFloat():
		var f float64
		switch v := lit.(type) {
		case bool:
			if v {
				f = 1
			}
		case int:
			f = float64(v)
		case int64:
			f = float64(v)
		case uint64:
			f = float64(v)
		case *big.Int:
			f, _ = new(big.Float).SetInt(v).Float64()
		case float32:
			f = float64(v)
		case float64:
			f = v
		default:
			return ir.NoValueID, buildErr(KindUnsupportedType, "const", "literal %T", lit)
		}
		switch tt.Bits {
		case types.WidthFloat:
			return mb.Float(float32(f)), nil
		case types.WidthDouble:
			return mb.Double(f), nil
		case types.WidthX86FP80:
			return mb.FP80(f), nil
		}
	}
	return ir.NoValueID, buildErr(KindUnsupportedType, "const", "cannot build %T literal of type %s", lit, mb.m.Types.Format(typ))
}

func (mb *ModuleBuilder) operandTypes(op string, lhs, rhs ir.ValueID) (types.TypeID, types.TypeID, error) {
	l, ok := mb.m.Symbols.Lookup(lhs)
	if !ok {
		return types.NoTypeID, types.NoTypeID, buildErr(KindUnknownValue, op, "lhs %d", lhs)
	}
	r, ok := mb.m.Symbols.Lookup(rhs)
	if !ok {
		return types.NoTypeID, types.NoTypeID, buildErr(KindUnknownValue, op, "rhs %d", rhs)
	}
	return l.Type, r.Type, nil
}

// cmpResultType is i1, or <N x i1> for vector operands.
func (mb *ModuleBuilder) cmpResultType(operand types.TypeID) types.TypeID {
	in := mb.m.Types
	if in.Is(operand, types.KindVector) {
		return in.Vector(in.Builtins().I1, in.Count(operand))
	}
	return in.Builtins().I1
}

// resolveGEP computes the result type of an indexed access from base
// through indices. The first index steps through the base pointer itself.
func (mb *ModuleBuilder) resolveGEP(op string, base ir.ValueID, indices []ir.ValueID) (types.TypeID, types.TypeID, error) {
	in := mb.m.Types
	sym, ok := mb.m.Symbols.Lookup(base)
	if !ok {
		return types.NoTypeID, types.NoTypeID, buildErr(KindUnknownValue, op, "base %d", base)
	}
	srcElem, ok := in.Elem(sym.Type)
	if !ok || !in.Is(sym.Type, types.KindPointer) {
		return types.NoTypeID, types.NoTypeID, buildErr(KindOperandMismatch, op, "base %s is not a pointer", in.Format(sym.Type))
	}
	if len(indices) == 0 {
		return sym.Type, srcElem, nil
	}
	steps := make([]types.Index, len(indices))
	for i, id := range indices {
		isym, ok := mb.m.Symbols.Lookup(id)
		if !ok {
			return types.NoTypeID, types.NoTypeID, buildErr(KindUnknownValue, op, "index %d", i)
		}
		if isym.Kind == ir.SymConst && isym.Const.Kind == ir.ConstInt {
			steps[i] = types.ConstIndex(isym.Const.Int)
		} else {
			steps[i] = types.DynIndex()
		}
	}
	final, err := in.Resolve(sym.Type, steps)
	if err != nil {
		return types.NoTypeID, types.NoTypeID, &BuildError{Kind: KindInvalidIndex, Op: op, Err: err}
	}
	return in.Pointer(final), srcElem, nil
}
