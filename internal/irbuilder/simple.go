package irbuilder

import (
	"math/big"

	"irforge/internal/ir"
	"irforge/internal/types"
)

// Operand is either an existing value or a Go literal. Literals are turned
// into constants of the type of the other operand at the use site.
type Operand struct {
	id  ir.ValueID
	lit any
}

// V wraps an existing value.
func V(id ir.ValueID) Operand { return Operand{id: id} }

func Bool(v bool) Operand       { return Operand{id: ir.NoValueID, lit: v} }
func Int(v int64) Operand       { return Operand{id: ir.NoValueID, lit: v} }
func Big(v *big.Int) Operand    { return Operand{id: ir.NoValueID, lit: v} }
func Float(v float64) Operand   { return Operand{id: ir.NoValueID, lit: v} }
func (o Operand) IsValue() bool { return o.lit == nil }

// Simple accepts literals wherever a value is expected.
type Simple struct {
	b *Builder
}

// NewSimple wraps b.
func NewSimple(b *Builder) *Simple {
	return &Simple{b: b}
}

// Builder exposes the wrapped instruction builder.
func (s *Simple) Builder() *Builder {
	return s.b
}

func (s *Simple) resolve(op string, typ types.TypeID, o Operand) (ir.ValueID, error) {
	if o.IsValue() {
		return o.id, nil
	}
	id, err := s.b.mb.Const(typ, o.lit)
	if err != nil {
		if be, ok := err.(*BuildError); ok {
			be.Op = op
		}
		return ir.NoValueID, err
	}
	return id, nil
}

// pair resolves lhs and rhs, typing a literal after the value on the other
// side.
func (s *Simple) pair(op string, lhs, rhs Operand) (ir.ValueID, ir.ValueID, error) {
	var typ types.TypeID
	switch {
	case lhs.IsValue():
		t, err := s.b.typeOf(op, lhs.id)
		if err != nil {
			return ir.NoValueID, ir.NoValueID, err
		}
		typ = t
	case rhs.IsValue():
		t, err := s.b.typeOf(op, rhs.id)
		if err != nil {
			return ir.NoValueID, ir.NoValueID, err
		}
		typ = t
	default:
		return ir.NoValueID, ir.NoValueID, buildErr(KindOperandMismatch, op, "both operands are literals")
	}
	l, err := s.resolve(op, typ, lhs)
	if err != nil {
		return ir.NoValueID, ir.NoValueID, err
	}
	r, err := s.resolve(op, typ, rhs)
	if err != nil {
		return ir.NoValueID, ir.NoValueID, err
	}
	return l, r, nil
}

// NextParameter creates the next parameter with the type the function
// signature declares for it.
func (s *Simple) NextParameter() (ir.ValueID, error) {
	info, ok := s.b.types().FnInfo(s.b.fn.Type)
	if !ok || len(info.Params) == 0 {
		return ir.NoValueID, buildErr(KindArityMismatch, "param", "@%s takes no parameters", s.b.fn.Name)
	}
	i := len(s.b.fn.Params)
	if i >= len(info.Params) {
		return ir.NoValueID, buildErr(KindArityMismatch, "param", "@%s takes %d parameters", s.b.fn.Name, len(info.Params))
	}
	return s.b.Param(info.Params[i])
}

func (s *Simple) Alloca(typ types.TypeID) (ir.ValueID, error) { return s.b.Alloca(typ) }
func (s *Simple) Load(ptr ir.ValueID) (ir.ValueID, error)     { return s.b.Load(ptr) }

// BinOp emits lhs op rhs.
func (s *Simple) BinOp(op ir.BinaryOp, lhs, rhs Operand) (ir.ValueID, error) {
	l, r, err := s.pair(op.String(), lhs, rhs)
	if err != nil {
		return ir.NoValueID, err
	}
	return s.b.BinOp(op, l, r)
}

// Cmp emits a comparison.
func (s *Simple) Cmp(pred ir.CmpPred, lhs, rhs Operand) (ir.ValueID, error) {
	l, r, err := s.pair(pred.Opcode(), lhs, rhs)
	if err != nil {
		return ir.NoValueID, err
	}
	return s.b.Cmp(pred, l, r)
}

// CompareVector compares two vectors lane by lane and folds the lanes into
// one i1: or for not-equal predicates, and otherwise.
func (s *Simple) CompareVector(pred ir.CmpPred, lhs, rhs ir.ValueID) (ir.ValueID, error) {
	vec, err := s.b.Cmp(pred, lhs, rhs)
	if err != nil {
		return ir.NoValueID, err
	}
	lanes := s.b.types().Count(s.b.mb.m.TypeOf(vec))
	fold := ir.OpAnd
	if pred.IsNotEqual() {
		fold = ir.OpOr
	}
	res, err := s.ExtractElement(vec, 0)
	if err != nil {
		return ir.NoValueID, err
	}
	for i := uint64(1); i < lanes; i++ {
		lane, err := s.ExtractElement(vec, int(i))
		if err != nil {
			return ir.NoValueID, err
		}
		if res, err = s.b.BinOp(fold, res, lane); err != nil {
			return ir.NoValueID, err
		}
	}
	return res, nil
}

// ExtractElement reads lane index.
func (s *Simple) ExtractElement(vec ir.ValueID, index int) (ir.ValueID, error) {
	return s.b.ExtractElement(vec, s.b.mb.I32(int32(index)))
}

// InsertElement writes value into lane index, typing a literal after the
// vector's element type.
func (s *Simple) InsertElement(vec ir.ValueID, value Operand, index int) (ir.ValueID, error) {
	_, elem, err := s.b.vectorElem("insertelement", vec)
	if err != nil {
		return ir.NoValueID, err
	}
	v, err := s.resolve("insertelement", elem, value)
	if err != nil {
		return ir.NoValueID, err
	}
	return s.b.InsertElement(vec, v, s.b.mb.I32(int32(index)))
}

// FillVector loads the vector behind src and overwrites its leading lanes.
func (s *Simple) FillVector(src ir.ValueID, values ...Operand) (ir.ValueID, error) {
	vec, err := s.b.Load(src)
	if err != nil {
		return ir.NoValueID, err
	}
	for i, v := range values {
		if vec, err = s.InsertElement(vec, v, i); err != nil {
			return ir.NoValueID, err
		}
	}
	return vec, nil
}

// Store writes src through dst; a literal takes the pointee type.
func (s *Simple) Store(dst ir.ValueID, src Operand, align int) error {
	_, elem, err := s.b.pointee("store", dst)
	if err != nil {
		return err
	}
	v, err := s.resolve("store", elem, src)
	if err != nil {
		return err
	}
	return s.b.Store(dst, v, align)
}

// Call converts literal arguments to the declared parameter types.
// Literals in the variadic tail are rejected.
func (s *Simple) Call(callee ir.ValueID, args ...Operand) (ir.ValueID, error) {
	fnType, err := s.b.calleeType(callee)
	if err != nil {
		return ir.NoValueID, err
	}
	info, _ := s.b.types().FnInfo(fnType)
	ids := make([]ir.ValueID, len(args))
	for i, a := range args {
		if a.IsValue() {
			ids[i] = a.id
			continue
		}
		if i >= len(info.Params) {
			return ir.NoValueID, buildErr(KindOperandMismatch, "call", "literal variadic argument %d has no type", i)
		}
		if ids[i], err = s.resolve("call", info.Params[i], a); err != nil {
			return ir.NoValueID, err
		}
	}
	return s.b.Call(callee, ids...)
}

// Ret returns v, typing a literal after the function result.
func (s *Simple) Ret(v Operand) error {
	id, err := s.resolve("ret", s.b.resultType(), v)
	if err != nil {
		return err
	}
	return s.b.Ret(id)
}

func (s *Simple) RetVoid() error { return s.b.RetVoid() }

// ReturnWithCast returns v, converting it with op first when its type
// differs from the function result.
func (s *Simple) ReturnWithCast(v ir.ValueID, op ir.CastOp) error {
	vt, err := s.b.typeOf("ret", v)
	if err != nil {
		return err
	}
	if want := s.b.resultType(); vt != want {
		if v, err = s.b.Cast(op, v, want); err != nil {
			return err
		}
	}
	return s.b.Ret(v)
}

// vaListPtr computes the i8* view of the first va_list element.
func (s *Simple) vaListPtr(tag ir.ValueID) (ir.ValueID, error) {
	mb := s.b.mb
	arr, err := s.b.GEP(tag, true, mb.I32(0), mb.I32(0))
	if err != nil {
		return ir.NoValueID, err
	}
	return s.b.Cast(ir.CastBitcast, arr, mb.m.Types.Pointer(mb.m.Types.Builtins().I8))
}

// VaStart emits the x86-64 va_start sequence for the [1 x __va_list_tag]
// storage at tag.
func (s *Simple) VaStart(tag ir.ValueID) error {
	decl, err := s.b.mb.VaStartDecl()
	if err != nil {
		return err
	}
	p, err := s.vaListPtr(tag)
	if err != nil {
		return err
	}
	_, err = s.b.Call(decl.ID, p)
	return err
}

// VaEnd emits the matching va_end.
func (s *Simple) VaEnd(tag ir.ValueID) error {
	decl, err := s.b.mb.VaEndDecl()
	if err != nil {
		return err
	}
	p, err := s.vaListPtr(tag)
	if err != nil {
		return err
	}
	_, err = s.b.Call(decl.ID, p)
	return err
}

// VaArg reads the next integer-class argument of type typ. Three blocks
// are spliced in after the current one: the register save area path, the
// overflow area path and the join. The cursor ends in the join block.
func (s *Simple) VaArg(tag ir.ValueID, typ types.TypeID) (ir.ValueID, error) {
	b, mb := s.b, s.b.mb
	in := mb.m.Types
	resPtr := in.Pointer(typ)

	listPtr, err := b.GEP(tag, true, mb.I32(0), mb.I32(0))
	if err != nil {
		return ir.NoValueID, err
	}
	gpOffsetPtr, err := b.GEP(listPtr, true, mb.I32(0), mb.I32(0))
	if err != nil {
		return ir.NoValueID, err
	}
	gpOffset, err := b.Load(gpOffsetPtr)
	if err != nil {
		return ir.NoValueID, err
	}
	inRegs, err := s.Cmp(ir.ICmpULE, V(gpOffset), Int(40))
	if err != nil {
		return ir.NoValueID, err
	}
	if err := b.InsertBlocks(3); err != nil {
		return ir.NoValueID, err
	}
	regBlk, memBlk, joinBlk := b.cur+1, b.cur+2, b.cur+3
	if err := b.CondBr(inRegs, regBlk, memBlk); err != nil {
		return ir.NoValueID, err
	}

	b.NextBlock()
	saveAreaPtr, err := b.GEP(listPtr, true, mb.I32(0), mb.I32(3))
	if err != nil {
		return ir.NoValueID, err
	}
	saveArea, err := b.Load(saveAreaPtr)
	if err != nil {
		return ir.NoValueID, err
	}
	regAddr, err := b.GEP(saveArea, false, gpOffset)
	if err != nil {
		return ir.NoValueID, err
	}
	regArg, err := b.Cast(ir.CastBitcast, regAddr, resPtr)
	if err != nil {
		return ir.NoValueID, err
	}
	nextOffset, err := s.BinOp(ir.OpAdd, V(gpOffset), Int(8))
	if err != nil {
		return ir.NoValueID, err
	}
	if err := b.Store(gpOffsetPtr, nextOffset, 16); err != nil {
		return ir.NoValueID, err
	}
	if err := b.Br(joinBlk); err != nil {
		return ir.NoValueID, err
	}

	b.NextBlock()
	overflowPtr, err := b.GEP(listPtr, true, mb.I32(0), mb.I32(2))
	if err != nil {
		return ir.NoValueID, err
	}
	overflow, err := b.Load(overflowPtr)
	if err != nil {
		return ir.NoValueID, err
	}
	memArg, err := b.Cast(ir.CastBitcast, overflow, resPtr)
	if err != nil {
		return ir.NoValueID, err
	}
	nextOverflow, err := b.GEP(overflow, false, mb.I32(8))
	if err != nil {
		return ir.NoValueID, err
	}
	if err := b.Store(overflowPtr, nextOverflow, 8); err != nil {
		return ir.NoValueID, err
	}
	if err := b.Br(joinBlk); err != nil {
		return ir.NoValueID, err
	}

	b.NextBlock()
	argPtr, err := b.Phi(resPtr, []ir.ValueID{regArg, memArg}, []ir.BlockID{regBlk, memBlk})
	if err != nil {
		return ir.NoValueID, err
	}
	return b.Load(argPtr)
}
