package irbuilder_test

import (
	"errors"
	"testing"

	"irforge/internal/ir"
	"irforge/internal/irbuilder"
	"irforge/internal/types"
)

func newFunc(t *testing.T, mb *irbuilder.ModuleBuilder, name string, blocks int, fnType types.TypeID) *irbuilder.Builder {
	t.Helper()
	fn, err := mb.DefineFunction(name, blocks, fnType)
	if err != nil {
		t.Fatalf("define %s: %v", name, err)
	}
	b, err := irbuilder.New(mb, fn)
	if err != nil {
		t.Fatalf("builder: %v", err)
	}
	return b
}

// valueOf returns a helper that unwraps (ValueID, error) results.
func valueOf(t *testing.T) func(ir.ValueID, error) ir.ValueID {
	return func(id ir.ValueID, err error) ir.ValueID {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		return id
	}
}

func nameOf(t *testing.T, mb *irbuilder.ModuleBuilder, id ir.ValueID) string {
	t.Helper()
	sym, ok := mb.Module().Symbol(id)
	if !ok {
		t.Fatalf("value %d not registered", id)
	}
	return sym.Name
}

func TestForwardBranchGrowsBlocks(t *testing.T) {
	mb := irbuilder.NewModuleBuilder()
	in := mb.Types()
	b := newFunc(t, mb, "f", 1, in.Func(in.Builtins().Void, false))

	if err := b.Br(b.Block(1)); err != nil {
		t.Fatal(err)
	}
	if got := b.Function().Blocks.Len(); got != 2 {
		t.Fatalf("blocks = %d, want 2", got)
	}
	if blk := b.NextBlock(); blk != 1 {
		t.Fatalf("NextBlock = %d, want 1", blk)
	}
	if err := b.RetVoid(); err != nil {
		t.Fatal(err)
	}
	entry := b.Function().Block(0)
	if len(entry.Instrs) != 1 || entry.Instrs[0].Br.Target != 1 {
		t.Fatalf("entry = %+v", entry.Instrs)
	}
	if name := b.Function().Block(1).Name; name != "1" {
		t.Fatalf("block 1 name = %q, want 1", name)
	}
	if err := ir.Validate(mb.Module()); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestNamesIncreaseAcrossValuesAndBlocks(t *testing.T) {
	mv := valueOf(t)
	mb := irbuilder.NewModuleBuilder()
	in := mb.Types()
	i32 := in.Builtins().I32
	b := newFunc(t, mb, "f", 1, in.Func(i32, false, i32))

	p := mv(b.Param(i32))
	slot := mv(b.Alloca(i32))
	if err := b.Store(slot, p, 4); err != nil {
		t.Fatal(err)
	}
	v := mv(b.Load(slot))
	sum := mv(b.BinOp(ir.OpAdd, v, mb.I32(1)))
	next := b.NextBlock()
	named := mv(b.Named("result").BinOp(ir.OpMul, sum, sum))

	tests := []struct {
		id   ir.ValueID
		want string
	}{
		{p, "arg_1"},
		{slot, "1"},
		{v, "2"},
		{sum, "3"},
		{named, "result"},
	}
	for _, tt := range tests {
		if got := nameOf(t, mb, tt.id); got != tt.want {
			t.Errorf("name = %q, want %q", got, tt.want)
		}
	}
	if got := b.Function().Block(next).Name; got != "4" {
		t.Fatalf("block name = %q, want 4", got)
	}
	after := mv(b.BinOp(ir.OpSub, named, sum))
	if got := nameOf(t, mb, after); got != "5" {
		t.Fatalf("name after explicit = %q, want 5", got)
	}
}

func TestInsertBlocksShiftsLaterReferences(t *testing.T) {
	mb := irbuilder.NewModuleBuilder()
	in := mb.Types()
	b := newFunc(t, mb, "f", 3, in.Func(in.Builtins().Void, false))

	if err := b.CondBr(mb.I1(true), b.Block(1), b.Block(2)); err != nil {
		t.Fatal(err)
	}
	addr := mb.BlockAddress(b.Function(), 2)
	if err := b.InsertBlocks(2); err != nil {
		t.Fatal(err)
	}
	if got := b.Function().Blocks.Len(); got != 5 {
		t.Fatalf("blocks = %d, want 5", got)
	}
	br := b.Function().Block(0).Instrs[0].CondBr
	if br.Then != 3 || br.Else != 4 {
		t.Fatalf("condbr targets = %d/%d, want 3/4", br.Then, br.Else)
	}
	sym, _ := mb.Module().Symbol(addr)
	if sym.Const.Block != 4 {
		t.Fatalf("blockaddress = %d, want 4", sym.Const.Block)
	}
}

func TestIntrinsicsAreDeclaredOnce(t *testing.T) {
	mb := irbuilder.NewModuleBuilder()
	first, err := mb.VaStartDecl()
	if err != nil {
		t.Fatal(err)
	}
	second, err := mb.VaStartDecl()
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("va_start declared twice")
	}
	if _, err := mb.VaEndDecl(); err != nil {
		t.Fatal(err)
	}
	if got := len(mb.Module().Funcs); got != 2 {
		t.Fatalf("funcs = %d, want 2", got)
	}

	tag1, err := mb.VaListTag()
	if err != nil {
		t.Fatal(err)
	}
	tag2, err := mb.VaListTag()
	if err != nil {
		t.Fatal(err)
	}
	if tag1 != tag2 || len(mb.Module().NamedTypes) != 1 {
		t.Fatalf("va_list_tag registered %d times", len(mb.Module().NamedTypes))
	}
	if body := mb.Types().FormatBody(tag1); body != "{ i32, i32, i8*, i8* }" {
		t.Fatalf("va_list_tag = %q", body)
	}
}

func TestIOFileMatchesGlibcLayout(t *testing.T) {
	mb := irbuilder.NewModuleBuilder()
	file, err := mb.IOFile()
	if err != nil {
		t.Fatal(err)
	}
	info, ok := mb.Types().StructInfo(file)
	if !ok || len(info.Fields) != 29 {
		t.Fatalf("_IO_FILE fields = %v", info)
	}
	size, err := mb.Layout().SizeOf(file)
	if err != nil || size != 216 {
		t.Fatalf("sizeof(_IO_FILE) = %d, %v; want 216", size, err)
	}
	again, err := mb.IOFile()
	if err != nil || again != file || len(mb.Module().NamedTypes) != 2 {
		t.Fatalf("IOFile not idempotent: %d named types", len(mb.Module().NamedTypes))
	}
}

func TestGEPResultTypes(t *testing.T) {
	mv := valueOf(t)
	mb := irbuilder.NewModuleBuilder()
	in := mb.Types()
	tag, err := mb.VaListTag()
	if err != nil {
		t.Fatal(err)
	}
	b := newFunc(t, mb, "f", 1, in.Func(in.Builtins().Void, false))
	list := mv(b.Alloca(in.Array(tag, 1)))

	first := mv(b.GEP(list, true, mb.I32(0), mb.I32(0)))
	if got := in.Format(mb.Module().TypeOf(first)); got != "%struct.__va_list_tag*" {
		t.Fatalf("gep type = %s", got)
	}
	area := mv(b.GEP(first, true, mb.I32(0), mb.I32(2)))
	if got := in.Format(mb.Module().TypeOf(area)); got != "i8**" {
		t.Fatalf("gep type = %s", got)
	}

	slot := mv(b.Alloca(in.Builtins().I32))
	same := mv(b.GEP(slot, false))
	if mb.Module().TypeOf(same) != mb.Module().TypeOf(slot) {
		t.Fatalf("gep without indices = %s, base %s",
			in.Format(mb.Module().TypeOf(same)), in.Format(mb.Module().TypeOf(slot)))
	}

	n := len(b.Function().Block(0).Instrs)
	dyn := mv(b.Load(mv(b.Alloca(in.Builtins().I32))))
	_, err = b.GEP(first, true, mb.I32(0), dyn)
	if !errors.Is(err, irbuilder.ErrInvalidIndex) || !errors.Is(err, types.ErrInvalidIndex) {
		t.Fatalf("dynamic struct index: err = %v", err)
	}
	if _, err := b.GEP(first, true, mb.I32(0), mb.I32(4)); !errors.Is(err, irbuilder.ErrInvalidIndex) {
		t.Fatalf("out of range: err = %v", err)
	}
	if got := len(b.Function().Block(0).Instrs); got != n+2 {
		t.Fatalf("failed geps appended instructions: %d", got-n)
	}
}

func TestUsageErrors(t *testing.T) {
	mb := irbuilder.NewModuleBuilder()
	in := mb.Types()
	i32 := in.Builtins().I32
	b := newFunc(t, mb, "f", 2, in.Func(i32, false))
	callee, err := mb.DeclareFunction("g", in.Func(i32, false, i32))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"call through integer", func() error {
			_, err := b.Call(mb.I32(3))
			return err
		}, irbuilder.ErrUnresolvedCallTarget},
		{"call arity", func() error {
			_, err := b.Call(callee.ID)
			return err
		}, irbuilder.ErrArityMismatch},
		{"call argument type", func() error {
			_, err := b.Call(callee.ID, mb.I64(1))
			return err
		}, irbuilder.ErrOperandMismatch},
		{"phi arity", func() error {
			_, err := b.Phi(i32, []ir.ValueID{mb.I32(1)}, nil)
			return err
		}, irbuilder.ErrArityMismatch},
		{"unknown value", func() error {
			_, err := b.BinOp(ir.OpAdd, ir.ValueID(99999), mb.I32(1))
			return err
		}, irbuilder.ErrUnknownValue},
		{"float op on ints", func() error {
			_, err := b.BinOp(ir.OpFAdd, mb.I32(1), mb.I32(2))
			return err
		}, irbuilder.ErrUnsupportedType},
		{"ret type", func() error {
			return b.Ret(mb.I64(0))
		}, irbuilder.ErrOperandMismatch},
		{"ret void", b.RetVoid, irbuilder.ErrOperandMismatch},
		{"switch on a non-constant case", func() error {
			cond := mb.I32(1)
			return b.Switch(cond, b.Block(1), []ir.ValueID{mb.I32(2), mb.Undef(i32)}, []ir.BlockID{b.Block(1), b.Block(1)})
		}, irbuilder.ErrOperandMismatch},
		{"load non-pointer", func() error {
			_, err := b.Load(mb.I32(0))
			return err
		}, irbuilder.ErrOperandMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if got := len(b.Function().Block(0).Instrs); got != 0 {
		t.Fatalf("failed calls appended %d instructions", got)
	}
	var be *irbuilder.BuildError
	_, err = b.Call(mb.I32(3))
	if !errors.As(err, &be) || be.Op != "call" {
		t.Fatalf("BuildError = %+v", be)
	}
}

func TestCastChecksOperandAndResult(t *testing.T) {
	mb := irbuilder.NewModuleBuilder()
	in := mb.Types()
	bi := in.Builtins()
	i8p, i32p := in.Pointer(bi.I8), in.Pointer(bi.I32)
	v4i32, v2i64 := in.Vector(bi.I32, 4), in.Vector(bi.I64, 2)
	v4i16, v2i16 := in.Vector(bi.I16, 4), in.Vector(bi.I16, 2)
	b := newFunc(t, mb, "f", 1, in.Func(bi.Void, false, bi.I32, bi.I64, bi.Float, bi.Double, i8p, v4i32))
	params := make(map[types.TypeID]ir.ValueID)
	for _, typ := range []types.TypeID{bi.I32, bi.I64, bi.Float, bi.Double, i8p, v4i32} {
		id, err := b.Param(typ)
		if err != nil {
			t.Fatal(err)
		}
		params[typ] = id
	}

	tests := []struct {
		name     string
		op       ir.CastOp
		from, to types.TypeID
		ok       bool
	}{
		{"trunc narrows", ir.CastTrunc, bi.I64, bi.I32, true},
		{"trunc widens", ir.CastTrunc, bi.I32, bi.I64, false},
		{"trunc same width", ir.CastTrunc, bi.I32, bi.I32, false},
		{"zext widens", ir.CastZExt, bi.I32, bi.I64, true},
		{"sext narrows", ir.CastSExt, bi.I64, bi.I32, false},
		{"zext from float", ir.CastZExt, bi.Float, bi.I64, false},
		{"fptrunc narrows", ir.CastFPTrunc, bi.Double, bi.Float, true},
		{"fpext widens", ir.CastFPExt, bi.Float, bi.Double, true},
		{"fpext narrows", ir.CastFPExt, bi.Double, bi.Float, false},
		{"fptosi", ir.CastFPToSI, bi.Double, bi.I32, true},
		{"fptosi from int", ir.CastFPToSI, bi.I64, bi.Double, false},
		{"sitofp", ir.CastSIToFP, bi.I32, bi.Double, true},
		{"uitofp from float", ir.CastUIToFP, bi.Double, bi.I32, false},
		{"ptrtoint", ir.CastPtrToInt, i8p, bi.I64, true},
		{"ptrtoint from int", ir.CastPtrToInt, bi.I64, i8p, false},
		{"inttoptr", ir.CastIntToPtr, bi.I64, i8p, true},
		{"bitcast pointers", ir.CastBitcast, i8p, i32p, true},
		{"bitcast same size vectors", ir.CastBitcast, v4i32, v2i64, true},
		{"bitcast int to double", ir.CastBitcast, bi.I64, bi.Double, true},
		{"bitcast size change", ir.CastBitcast, bi.I32, bi.I64, false},
		{"bitcast pointer to int", ir.CastBitcast, i8p, bi.I64, false},
		{"trunc vector lanes", ir.CastTrunc, v4i32, v4i16, true},
		{"trunc vector lane count", ir.CastTrunc, v4i32, v2i16, false},
		{"trunc vector to scalar", ir.CastTrunc, v4i32, bi.I16, false},
		{"trunc to void", ir.CastTrunc, bi.I32, bi.Void, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := len(b.Function().Block(0).Instrs)
			id, err := b.Cast(tt.op, params[tt.from], tt.to)
			if tt.ok {
				if err != nil {
					t.Fatalf("%s %s to %s: %v", tt.op, in.Format(tt.from), in.Format(tt.to), err)
				}
				if mb.Module().TypeOf(id) != tt.to {
					t.Fatalf("result type = %s", in.Format(mb.Module().TypeOf(id)))
				}
				return
			}
			if !errors.Is(err, irbuilder.ErrUnsupportedType) {
				t.Fatalf("%s %s to %s: err = %v", tt.op, in.Format(tt.from), in.Format(tt.to), err)
			}
			if got := len(b.Function().Block(0).Instrs); got != n {
				t.Fatalf("rejected cast appended an instruction")
			}
		})
	}

	if _, err := mb.CastExpr(ir.CastTrunc, mb.I32(1), bi.I64); !errors.Is(err, irbuilder.ErrUnsupportedType) {
		t.Fatalf("constant trunc to wider: err = %v", err)
	}
}

func TestVoidCallHasNoResult(t *testing.T) {
	mv := valueOf(t)
	mb := irbuilder.NewModuleBuilder()
	in := mb.Types()
	void := in.Builtins().Void
	decl, err := mb.DeclareFunction("sink", in.Func(void, true, in.Builtins().I32))
	if err != nil {
		t.Fatal(err)
	}
	b := newFunc(t, mb, "f", 1, in.Func(void, false))
	id := mv(b.Call(decl.ID, mb.I32(1), mb.Double(2)))
	if id != ir.NoValueID {
		t.Fatalf("void call returned %d", id)
	}
	next := mv(b.Alloca(in.Builtins().I8))
	if got := nameOf(t, mb, next); got != "1" {
		t.Fatalf("void call consumed a name: next = %q", got)
	}
}

func TestExtractInsertValue(t *testing.T) {
	mv := valueOf(t)
	mb := irbuilder.NewModuleBuilder()
	in := mb.Types()
	bi := in.Builtins()
	pair := in.Struct(false, bi.I32, in.Array(bi.Double, 2))
	b := newFunc(t, mb, "f", 1, in.Func(bi.Void, false))
	agg := mb.Undef(pair)

	d := mv(b.ExtractValue(agg, 1, 0))
	if mb.Module().TypeOf(d) != bi.Double {
		t.Fatalf("extractvalue type = %s", in.Format(mb.Module().TypeOf(d)))
	}
	upd := mv(b.InsertValue(agg, mb.I32(7), 0))
	if mb.Module().TypeOf(upd) != pair {
		t.Fatalf("insertvalue type = %s", in.Format(mb.Module().TypeOf(upd)))
	}
	if _, err := b.ExtractValue(agg, 2); !errors.Is(err, irbuilder.ErrInvalidIndex) {
		t.Fatalf("err = %v", err)
	}
}
