package irbuilder

import (
	"strconv"

	"irforge/internal/ir"
	"irforge/internal/layout"
	"irforge/internal/types"
)

// Builder is the per-function emission cursor. It is not safe for
// concurrent use; builders of different functions may share a module.
type Builder struct {
	mb  *ModuleBuilder
	fn  *ir.Function
	cur ir.BlockID

	counter    int // next numeric name for values and blocks
	argCounter int // next arg_N suffix
	pending    string
}

// New starts emitting into block 0 of a function definition.
func New(mb *ModuleBuilder, fn *ir.Function) (*Builder, error) {
	if fn == nil || !fn.IsDefinition() {
		return nil, buildErr(KindUnsupportedType, "builder", "not a function definition")
	}
	fn.Blocks.EnsureBlockCount(1)
	return &Builder{mb: mb, fn: fn, counter: 1, argCounter: 1}, nil
}

func (b *Builder) Module() *ModuleBuilder { return b.mb }
func (b *Builder) Function() *ir.Function { return b.fn }

func (b *Builder) types() *types.Interner { return b.mb.m.Types }
func (b *Builder) void() types.TypeID     { return b.mb.m.Types.Builtins().Void }

// Named gives the next value-producing instruction an explicit name.
func (b *Builder) Named(name string) *Builder {
	b.pending = name
	return b
}

// Param creates the next formal parameter, named arg_N.
func (b *Builder) Param(typ types.TypeID) (ir.ValueID, error) {
	info, _ := b.types().FnInfo(b.fn.Type)
	if info != nil && len(b.fn.Params) >= len(info.Params) {
		return ir.NoValueID, buildErr(KindArityMismatch, "param", "@%s takes %d parameters", b.fn.Name, len(info.Params))
	}
	if info != nil && info.Params[len(b.fn.Params)] != typ {
		return ir.NoValueID, buildErr(KindOperandMismatch, "param", "parameter %d is %s, got %s",
			len(b.fn.Params), b.types().Format(info.Params[len(b.fn.Params)]), b.types().Format(typ))
	}
	name := "arg_" + strconv.Itoa(b.argCounter)
	b.argCounter++
	id := b.mb.m.Symbols.Register(ir.Symbol{Kind: ir.SymParam, Type: typ, Name: name})
	b.fn.Params = append(b.fn.Params, id)
	return id, nil
}

// CurrentBlock returns the index of the block receiving instructions.
func (b *Builder) CurrentBlock() ir.BlockID {
	return b.cur
}

// NextBlockIndex returns the index NextBlock would move to.
func (b *Builder) NextBlockIndex() ir.BlockID {
	return b.cur + 1
}

// NextBlock moves the cursor to the following block, growing the array if
// needed, and gives it the next implicit label.
func (b *Builder) NextBlock() ir.BlockID {
	b.cur++
	b.fn.Blocks.EnsureBlockCount(int(b.cur) + 1)
	blk := b.fn.Blocks.At(b.cur)
	if blk.Name == "" {
		blk.Name = strconv.Itoa(b.counter)
		b.counter++
	}
	return b.cur
}

// Block returns a reference to block i, creating empty blocks up to it.
func (b *Builder) Block(i int) ir.BlockID {
	b.fn.Blocks.EnsureBlockCount(i + 1)
	return ir.BlockIDOf(i)
}

// InsertBlocks splices n empty blocks right after the current block.
// References to later blocks are shifted by n.
func (b *Builder) InsertBlocks(n int) error {
	at := b.cur + 1
	if err := b.fn.Blocks.InsertBlocksAt(at, n); err != nil {
		return err
	}
	b.mb.m.RemapBlockAddresses(b.fn.ID, at, n)
	return nil
}

// ExitFunction marks the function complete. No check is enforced.
func (b *Builder) ExitFunction() {
	b.fn.Exited = true
}

func (b *Builder) lookup(op string, id ir.ValueID) (ir.Symbol, error) {
	sym, ok := b.mb.m.Symbols.Lookup(id)
	if !ok {
		return ir.Symbol{}, buildErr(KindUnknownValue, op, "value %d", id)
	}
	return sym, nil
}

func (b *Builder) typeOf(op string, id ir.ValueID) (types.TypeID, error) {
	sym, err := b.lookup(op, id)
	if err != nil {
		return types.NoTypeID, err
	}
	return sym.Type, nil
}

func (b *Builder) fmt(id types.TypeID) string {
	return b.types().Format(id)
}

// emit appends in to the current block. A non-void result type registers
// the result symbol and names it.
func (b *Builder) emit(in ir.Instr, result types.TypeID) ir.ValueID {
	in.Result = ir.NoValueID
	in.Type = b.void()
	if result != types.NoTypeID && result != b.void() {
		in.Type = result
		name := b.pending
		if name == "" {
			name = strconv.Itoa(b.counter)
			b.counter++
		}
		b.pending = ""
		in.Result = b.mb.m.Symbols.Register(ir.Symbol{Kind: ir.SymInstr, Type: result, Name: name})
	}
	blk := b.fn.Blocks.At(b.cur)
	blk.Instrs = append(blk.Instrs, in)
	return in.Result
}

func (b *Builder) alignOf(op string, typ types.TypeID) (uint8, error) {
	exp, err := b.mb.layout.AlignExponent(typ)
	if err != nil {
		return 0, &BuildError{Kind: KindUnsupportedType, Op: op, Detail: b.fmt(typ), Err: err}
	}
	return exp, nil
}

func (b *Builder) pointee(op string, ptr ir.ValueID) (types.TypeID, types.TypeID, error) {
	pt, err := b.typeOf(op, ptr)
	if err != nil {
		return types.NoTypeID, types.NoTypeID, err
	}
	elem, ok := b.types().Elem(pt)
	if !ok || !b.types().Is(pt, types.KindPointer) {
		return types.NoTypeID, types.NoTypeID, buildErr(KindOperandMismatch, op, "%s is not a pointer", b.fmt(pt))
	}
	return pt, elem, nil
}

// Alloca reserves stack space for one typ, aligned to its natural alignment.
func (b *Builder) Alloca(typ types.TypeID) (ir.ValueID, error) {
	align, err := b.alignOf("alloca", typ)
	if err != nil {
		return ir.NoValueID, err
	}
	count := b.mb.I32(1)
	return b.emit(ir.Instr{Kind: ir.InstrAlloca, Alloca: ir.AllocaInstr{Elem: typ, Count: count, Align: align}},
		b.types().Pointer(typ)), nil
}

// Load reads the pointee of ptr with its natural alignment. Loads are
// never volatile; use AtomicLoad for ordered accesses.
func (b *Builder) Load(ptr ir.ValueID) (ir.ValueID, error) {
	_, elem, err := b.pointee("load", ptr)
	if err != nil {
		return ir.NoValueID, err
	}
	align, err := b.alignOf("load", elem)
	if err != nil {
		return ir.NoValueID, err
	}
	return b.emit(ir.Instr{Kind: ir.InstrLoad, Load: ir.LoadInstr{Ptr: ptr, Align: align}}, elem), nil
}

// AtomicLoad emits load atomic with the given ordering. align is in bytes.
func (b *Builder) AtomicLoad(ptr ir.ValueID, align int, order ir.MemOrder) (ir.ValueID, error) {
	_, elem, err := b.pointee("load atomic", ptr)
	if err != nil {
		return ir.NoValueID, err
	}
	order.Atomic = true
	return b.emit(ir.Instr{Kind: ir.InstrLoad, Load: ir.LoadInstr{Ptr: ptr, Align: layout.EncodeAlign(align), MemOrder: order}}, elem), nil
}

func (b *Builder) checkStore(op string, dst, src ir.ValueID) error {
	_, elem, err := b.pointee(op, dst)
	if err != nil {
		return err
	}
	st, err := b.typeOf(op, src)
	if err != nil {
		return err
	}
	if st != elem {
		return buildErr(KindOperandMismatch, op, "storing %s through %s*", b.fmt(st), b.fmt(elem))
	}
	return nil
}

// Store writes src through dst. align is in bytes; 0 leaves it unspecified.
func (b *Builder) Store(dst, src ir.ValueID, align int) error {
	if err := b.checkStore("store", dst, src); err != nil {
		return err
	}
	b.emit(ir.Instr{Kind: ir.InstrStore, Store: ir.StoreInstr{Ptr: dst, Value: src, Align: layout.EncodeAlign(align)}}, types.NoTypeID)
	return nil
}

// AtomicStore emits store atomic with the given ordering.
func (b *Builder) AtomicStore(dst, src ir.ValueID, align int, order ir.MemOrder) error {
	if err := b.checkStore("store atomic", dst, src); err != nil {
		return err
	}
	order.Atomic = true
	b.emit(ir.Instr{Kind: ir.InstrStore, Store: ir.StoreInstr{
		Ptr: dst, Value: src, Align: layout.EncodeAlign(align), MemOrder: order,
	}}, types.NoTypeID)
	return nil
}

// BinOp emits lhs op rhs. The result has lhs's type; operands are not
// coerced.
func (b *Builder) BinOp(op ir.BinaryOp, lhs, rhs ir.ValueID) (ir.ValueID, error) {
	return b.BinOpFlags(op, 0, lhs, rhs)
}

// BinOpFlags is BinOp with nuw/nsw/exact modifiers.
func (b *Builder) BinOpFlags(op ir.BinaryOp, flags ir.BinaryFlags, lhs, rhs ir.ValueID) (ir.ValueID, error) {
	lt, rt, err := b.mb.operandTypes(op.String(), lhs, rhs)
	if err != nil {
		return ir.NoValueID, err
	}
	if lt != rt {
		return ir.NoValueID, buildErr(KindOperandMismatch, op.String(), "%s vs %s", b.fmt(lt), b.fmt(rt))
	}
	scalar := b.types().MustLookup(b.types().Scalar(lt))
	switch {
	case op.IsFloat() && !scalar.IsFloat():
		return ir.NoValueID, buildErr(KindUnsupportedType, op.String(), "%s is not floating point", b.fmt(lt))
	case !op.IsFloat() && !scalar.IsInteger():
		return ir.NoValueID, buildErr(KindUnsupportedType, op.String(), "%s is not an integer", b.fmt(lt))
	}
	return b.emit(ir.Instr{Kind: ir.InstrBinary, Binary: ir.BinaryInstr{Op: op, Flags: flags, LHS: lhs, RHS: rhs}}, lt), nil
}

// Cmp emits icmp or fcmp. Vector operands give a vector of i1.
func (b *Builder) Cmp(pred ir.CmpPred, lhs, rhs ir.ValueID) (ir.ValueID, error) {
	lt, rt, err := b.mb.operandTypes(pred.Opcode(), lhs, rhs)
	if err != nil {
		return ir.NoValueID, err
	}
	if lt != rt {
		return ir.NoValueID, buildErr(KindOperandMismatch, pred.Opcode(), "%s vs %s", b.fmt(lt), b.fmt(rt))
	}
	scalar := b.types().MustLookup(b.types().Scalar(lt))
	switch {
	case pred.IsFloat() && !scalar.IsFloat():
		return ir.NoValueID, buildErr(KindUnsupportedType, "fcmp", "%s is not floating point", b.fmt(lt))
	case !pred.IsFloat() && !scalar.IsInteger() && scalar.Kind != types.KindPointer:
		return ir.NoValueID, buildErr(KindUnsupportedType, "icmp", "%s is not an integer or pointer", b.fmt(lt))
	}
	return b.emit(ir.Instr{Kind: ir.InstrCmp, Cmp: ir.CmpInstr{Pred: pred, LHS: lhs, RHS: rhs}}, b.mb.cmpResultType(lt)), nil
}

// Cast converts value to type to.
func (b *Builder) Cast(op ir.CastOp, value ir.ValueID, to types.TypeID) (ir.ValueID, error) {
	from, err := b.typeOf(op.String(), value)
	if err != nil {
		return ir.NoValueID, err
	}
	if err := b.mb.checkCast(op, from, to); err != nil {
		return ir.NoValueID, err
	}
	return b.emit(ir.Instr{Kind: ir.InstrCast, Cast: ir.CastInstr{Op: op, Value: value}}, to), nil
}

// calleeType finds the function type behind a callee, unwrapping pointers.
func (b *Builder) calleeType(callee ir.ValueID) (types.TypeID, error) {
	t, err := b.typeOf("call", callee)
	if err != nil {
		return types.NoTypeID, err
	}
	in := b.types()
	for t != types.NoTypeID {
		tt, ok := in.Lookup(t)
		if !ok {
			break
		}
		switch tt.Kind {
		case types.KindFunc:
			return t, nil
		case types.KindPointer:
			t = tt.Elem
			continue
		}
		break
	}
	return types.NoTypeID, buildErr(KindUnresolvedCallTarget, "call", "callee of type %s is not a function", b.fmt(b.mb.m.TypeOf(callee)))
}

// Call emits a call. The callee may be a function, a loaded function
// pointer or inline assembly. Void calls return NoValueID.
func (b *Builder) Call(callee ir.ValueID, args ...ir.ValueID) (ir.ValueID, error) {
	fnType, err := b.calleeType(callee)
	if err != nil {
		return ir.NoValueID, err
	}
	info, _ := b.types().FnInfo(fnType)
	if len(args) < len(info.Params) || (!info.Variadic && len(args) != len(info.Params)) {
		return ir.NoValueID, buildErr(KindArityMismatch, "call", "%s called with %d arguments", b.fmt(fnType), len(args))
	}
	for i, a := range args {
		at, err := b.typeOf("call", a)
		if err != nil {
			return ir.NoValueID, err
		}
		if i < len(info.Params) && at != info.Params[i] {
			return ir.NoValueID, buildErr(KindOperandMismatch, "call", "argument %d is %s, want %s", i, b.fmt(at), b.fmt(info.Params[i]))
		}
	}
	call := ir.CallInstr{Callee: callee, FnType: fnType, Args: append([]ir.ValueID(nil), args...)}
	return b.emit(ir.Instr{Kind: ir.InstrCall, Call: call}, info.Result), nil
}

// GEP emits getelementptr. The result is a pointer to the type reached by
// stepping through base with each index.
func (b *Builder) GEP(base ir.ValueID, inbounds bool, indices ...ir.ValueID) (ir.ValueID, error) {
	resTy, srcElem, err := b.mb.resolveGEP("getelementptr", base, indices)
	if err != nil {
		return ir.NoValueID, err
	}
	gep := ir.GEPInstr{Base: base, SrcElem: srcElem, Indices: append([]ir.ValueID(nil), indices...), Inbounds: inbounds}
	return b.emit(ir.Instr{Kind: ir.InstrGEP, GEP: gep}, resTy), nil
}

func (b *Builder) touch(blocks ...ir.BlockID) {
	for _, blk := range blocks {
		b.fn.Blocks.EnsureBlockCount(int(blk) + 1)
	}
}

// Br emits an unconditional branch. Forward references grow the block array.
func (b *Builder) Br(target ir.BlockID) error {
	b.touch(target)
	b.emit(ir.Instr{Kind: ir.InstrBr, Br: ir.BrInstr{Target: target}}, types.NoTypeID)
	return nil
}

// CondBr emits br i1 cond, then, else.
func (b *Builder) CondBr(cond ir.ValueID, then, els ir.BlockID) error {
	ct, err := b.typeOf("br", cond)
	if err != nil {
		return err
	}
	if ct != b.types().Builtins().I1 {
		return buildErr(KindOperandMismatch, "br", "condition is %s, want i1", b.fmt(ct))
	}
	b.touch(then, els)
	b.emit(ir.Instr{Kind: ir.InstrCondBr, CondBr: ir.CondBrInstr{Cond: cond, Then: then, Else: els}}, types.NoTypeID)
	return nil
}

// Switch emits a switch whose case values are registered constants.
func (b *Builder) Switch(cond ir.ValueID, def ir.BlockID, values []ir.ValueID, targets []ir.BlockID) error {
	if len(values) != len(targets) {
		return buildErr(KindArityMismatch, "switch", "%d values, %d targets", len(values), len(targets))
	}
	ct, err := b.typeOf("switch", cond)
	if err != nil {
		return err
	}
	cases := make([]ir.SwitchCase, len(values))
	for i, v := range values {
		vt, err := b.typeOf("switch", v)
		if err != nil {
			return err
		}
		if vt != ct {
			return buildErr(KindOperandMismatch, "switch", "case %d is %s, condition is %s", i, b.fmt(vt), b.fmt(ct))
		}
		if sym, _ := b.mb.m.Symbols.Lookup(v); sym.Kind != ir.SymConst || sym.Const == nil || sym.Const.Kind != ir.ConstInt {
			return buildErr(KindOperandMismatch, "switch", "case %d is not an integer constant", i)
		}
		cases[i] = ir.SwitchCase{Value: v, Target: targets[i]}
	}
	b.touch(def)
	b.touch(targets...)
	b.emit(ir.Instr{Kind: ir.InstrSwitch, Switch: ir.SwitchInstr{Cond: cond, Default: def, Cases: cases}}, types.NoTypeID)
	return nil
}

// SwitchOld emits the legacy switch encoding with raw integer cases.
func (b *Builder) SwitchOld(cond ir.ValueID, def ir.BlockID, values []int64, targets []ir.BlockID) error {
	if len(values) != len(targets) {
		return buildErr(KindArityMismatch, "switch", "%d values, %d targets", len(values), len(targets))
	}
	if _, err := b.typeOf("switch", cond); err != nil {
		return err
	}
	cases := make([]ir.SwitchOldCase, len(values))
	for i, v := range values {
		cases[i] = ir.SwitchOldCase{Value: v, Target: targets[i]}
	}
	b.touch(def)
	b.touch(targets...)
	b.emit(ir.Instr{Kind: ir.InstrSwitchOld, SwitchOld: ir.SwitchOldInstr{Cond: cond, Default: def, Cases: cases}}, types.NoTypeID)
	return nil
}

// IndirectBr emits indirectbr to addr with the possible destinations.
func (b *Builder) IndirectBr(addr ir.ValueID, targets ...ir.BlockID) error {
	if _, _, err := b.pointee("indirectbr", addr); err != nil {
		return err
	}
	b.touch(targets...)
	b.emit(ir.Instr{Kind: ir.InstrIndirectBr, IndirectBr: ir.IndirectBrInstr{Addr: addr, Targets: append([]ir.BlockID(nil), targets...)}}, types.NoTypeID)
	return nil
}

// Phi pairs values with predecessor blocks positionally.
func (b *Builder) Phi(typ types.TypeID, values []ir.ValueID, blocks []ir.BlockID) (ir.ValueID, error) {
	if len(values) != len(blocks) {
		return ir.NoValueID, buildErr(KindArityMismatch, "phi", "%d values, %d blocks", len(values), len(blocks))
	}
	if len(values) == 0 {
		return ir.NoValueID, buildErr(KindArityMismatch, "phi", "no incoming values")
	}
	inc := make([]ir.PhiIncoming, len(values))
	for i, v := range values {
		vt, err := b.typeOf("phi", v)
		if err != nil {
			return ir.NoValueID, err
		}
		if vt != typ {
			return ir.NoValueID, buildErr(KindOperandMismatch, "phi", "incoming %d is %s, want %s", i, b.fmt(vt), b.fmt(typ))
		}
		inc[i] = ir.PhiIncoming{Value: v, Block: blocks[i]}
	}
	b.touch(blocks...)
	return b.emit(ir.Instr{Kind: ir.InstrPhi, Phi: ir.PhiInstr{Incoming: inc}}, typ), nil
}

// Select emits select cond, t, f.
func (b *Builder) Select(cond, t, f ir.ValueID) (ir.ValueID, error) {
	ct, err := b.typeOf("select", cond)
	if err != nil {
		return ir.NoValueID, err
	}
	if b.types().Scalar(ct) != b.types().Builtins().I1 {
		return ir.NoValueID, buildErr(KindOperandMismatch, "select", "condition is %s", b.fmt(ct))
	}
	tt, ft, err := b.mb.operandTypes("select", t, f)
	if err != nil {
		return ir.NoValueID, err
	}
	if tt != ft {
		return ir.NoValueID, buildErr(KindOperandMismatch, "select", "%s vs %s", b.fmt(tt), b.fmt(ft))
	}
	return b.emit(ir.Instr{Kind: ir.InstrSelect, Select: ir.SelectInstr{Cond: cond, True: t, False: f}}, tt), nil
}

func (b *Builder) vectorElem(op string, vec ir.ValueID) (types.TypeID, types.TypeID, error) {
	vt, err := b.typeOf(op, vec)
	if err != nil {
		return types.NoTypeID, types.NoTypeID, err
	}
	if !b.types().Is(vt, types.KindVector) {
		return types.NoTypeID, types.NoTypeID, buildErr(KindOperandMismatch, op, "%s is not a vector", b.fmt(vt))
	}
	elem, _ := b.types().Elem(vt)
	return vt, elem, nil
}

// ExtractElement reads one lane of a vector.
func (b *Builder) ExtractElement(vec, index ir.ValueID) (ir.ValueID, error) {
	_, elem, err := b.vectorElem("extractelement", vec)
	if err != nil {
		return ir.NoValueID, err
	}
	if _, err := b.typeOf("extractelement", index); err != nil {
		return ir.NoValueID, err
	}
	return b.emit(ir.Instr{Kind: ir.InstrExtractElement, ExtractElement: ir.ExtractElementInstr{Vector: vec, Index: index}}, elem), nil
}

// InsertElement replaces one lane of a vector.
func (b *Builder) InsertElement(vec, value, index ir.ValueID) (ir.ValueID, error) {
	vt, elem, err := b.vectorElem("insertelement", vec)
	if err != nil {
		return ir.NoValueID, err
	}
	et, err := b.typeOf("insertelement", value)
	if err != nil {
		return ir.NoValueID, err
	}
	if et != elem {
		return ir.NoValueID, buildErr(KindOperandMismatch, "insertelement", "value is %s, lane is %s", b.fmt(et), b.fmt(elem))
	}
	if _, err := b.typeOf("insertelement", index); err != nil {
		return ir.NoValueID, err
	}
	return b.emit(ir.Instr{Kind: ir.InstrInsertElement, InsertElement: ir.InsertElementInstr{Vector: vec, Value: value, Index: index}}, vt), nil
}

func toPath(indices []uint32) []int64 {
	out := make([]int64, len(indices))
	for i, v := range indices {
		out[i] = int64(v)
	}
	return out
}

// ExtractValue reads a member of an aggregate by constant path.
func (b *Builder) ExtractValue(agg ir.ValueID, indices ...uint32) (ir.ValueID, error) {
	at, err := b.typeOf("extractvalue", agg)
	if err != nil {
		return ir.NoValueID, err
	}
	ft, err := b.types().FieldType(at, toPath(indices)...)
	if err != nil {
		return ir.NoValueID, &BuildError{Kind: KindInvalidIndex, Op: "extractvalue", Err: err}
	}
	ev := ir.ExtractValueInstr{Agg: agg, Indices: append([]uint32(nil), indices...)}
	return b.emit(ir.Instr{Kind: ir.InstrExtractValue, ExtractValue: ev}, ft), nil
}

// InsertValue replaces a member of an aggregate by constant path.
func (b *Builder) InsertValue(agg, value ir.ValueID, indices ...uint32) (ir.ValueID, error) {
	at, err := b.typeOf("insertvalue", agg)
	if err != nil {
		return ir.NoValueID, err
	}
	ft, err := b.types().FieldType(at, toPath(indices)...)
	if err != nil {
		return ir.NoValueID, &BuildError{Kind: KindInvalidIndex, Op: "insertvalue", Err: err}
	}
	vt, err := b.typeOf("insertvalue", value)
	if err != nil {
		return ir.NoValueID, err
	}
	if vt != ft {
		return ir.NoValueID, buildErr(KindOperandMismatch, "insertvalue", "value is %s, member is %s", b.fmt(vt), b.fmt(ft))
	}
	iv := ir.InsertValueInstr{Agg: agg, Value: value, Indices: append([]uint32(nil), indices...)}
	return b.emit(ir.Instr{Kind: ir.InstrInsertValue, InsertValue: iv}, at), nil
}

// ShuffleVector builds a vector with as many lanes as mask.
func (b *Builder) ShuffleVector(v1, v2, mask ir.ValueID) (ir.ValueID, error) {
	vt, elem, err := b.vectorElem("shufflevector", v1)
	if err != nil {
		return ir.NoValueID, err
	}
	v2t, err := b.typeOf("shufflevector", v2)
	if err != nil {
		return ir.NoValueID, err
	}
	if v2t != vt {
		return ir.NoValueID, buildErr(KindOperandMismatch, "shufflevector", "%s vs %s", b.fmt(vt), b.fmt(v2t))
	}
	mt, _, err := b.vectorElem("shufflevector", mask)
	if err != nil {
		return ir.NoValueID, err
	}
	res := b.types().Vector(elem, b.types().Count(mt))
	sv := ir.ShuffleVectorInstr{V1: v1, V2: v2, Mask: mask}
	return b.emit(ir.Instr{Kind: ir.InstrShuffleVector, ShuffleVector: sv}, res), nil
}

func (b *Builder) resultType() types.TypeID {
	info, ok := b.types().FnInfo(b.fn.Type)
	if !ok {
		return b.void()
	}
	return info.Result
}

// Ret returns value, which must have the function's result type.
func (b *Builder) Ret(value ir.ValueID) error {
	vt, err := b.typeOf("ret", value)
	if err != nil {
		return err
	}
	if want := b.resultType(); vt != want {
		return buildErr(KindOperandMismatch, "ret", "returning %s from a function returning %s", b.fmt(vt), b.fmt(want))
	}
	b.emit(ir.Instr{Kind: ir.InstrRet, Ret: ir.RetInstr{HasValue: true, Value: value}}, types.NoTypeID)
	return nil
}

// RetVoid emits ret void.
func (b *Builder) RetVoid() error {
	if want := b.resultType(); want != b.void() {
		return buildErr(KindOperandMismatch, "ret", "ret void in a function returning %s", b.fmt(want))
	}
	b.emit(ir.Instr{Kind: ir.InstrRet}, types.NoTypeID)
	return nil
}

// Unreachable emits unreachable.
func (b *Builder) Unreachable() {
	b.emit(ir.Instr{Kind: ir.InstrUnreachable}, types.NoTypeID)
}

// Attach adds a metadata attachment to the most recent instruction.
func (b *Builder) Attach(kind string, node ir.MDID) {
	blk := b.fn.Blocks.At(b.cur)
	if len(blk.Instrs) == 0 {
		return
	}
	last := &blk.Instrs[len(blk.Instrs)-1]
	last.MD = append(last.MD, ir.MDAttachment{Kind: kind, Node: node})
}
