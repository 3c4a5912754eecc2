package irbuilder_test

import (
	"errors"
	"testing"

	"irforge/internal/ir"
	"irforge/internal/irbuilder"
)

func constOf(t *testing.T, mb *irbuilder.ModuleBuilder, id ir.ValueID) *ir.Constant {
	t.Helper()
	sym, ok := mb.Module().Symbol(id)
	if !ok || sym.Const == nil {
		t.Fatalf("value %d is not a constant", id)
	}
	return sym.Const
}

func TestSimpleLiteralTakesOtherOperandType(t *testing.T) {
	mv := valueOf(t)
	mb := irbuilder.NewModuleBuilder()
	in := mb.Types()
	bi := in.Builtins()
	b := newFunc(t, mb, "f", 1, in.Func(bi.Void, false, bi.I16, bi.Double))
	s := irbuilder.NewSimple(b)

	short := mv(s.NextParameter())
	dbl := mv(s.NextParameter())
	if mb.Module().TypeOf(short) != bi.I16 || mb.Module().TypeOf(dbl) != bi.Double {
		t.Fatalf("parameters typed %s, %s", in.Format(mb.Module().TypeOf(short)), in.Format(mb.Module().TypeOf(dbl)))
	}

	sum := mv(s.BinOp(ir.OpAdd, irbuilder.V(short), irbuilder.Float(2.9)))
	rhs := b.Function().Block(0).Instrs[0].Binary.RHS
	if c := constOf(t, mb, rhs); c.Type != bi.I16 || c.Int != 2 {
		t.Fatalf("rhs = %s %d, want i16 2", in.Format(c.Type), c.Int)
	}
	if mb.Module().TypeOf(sum) != bi.I16 {
		t.Fatalf("sum type = %s", in.Format(mb.Module().TypeOf(sum)))
	}

	mv(s.Cmp(ir.FCmpOLT, irbuilder.Int(3), irbuilder.V(dbl)))
	lhs := b.Function().Block(0).Instrs[1].Cmp.LHS
	if c := constOf(t, mb, lhs); c.Type != bi.Double || c.Kind != ir.ConstDouble {
		t.Fatalf("lhs = %s kind %d, want double", in.Format(c.Type), c.Kind)
	}

	if _, err := s.BinOp(ir.OpAdd, irbuilder.Int(1), irbuilder.Int(2)); !errors.Is(err, irbuilder.ErrOperandMismatch) {
		t.Fatalf("two literals: err = %v", err)
	}
	if _, err := s.NextParameter(); !errors.Is(err, irbuilder.ErrArityMismatch) {
		t.Fatalf("third parameter: err = %v", err)
	}
}

func TestNextParameterStopsAtFixedParamsOfVariadic(t *testing.T) {
	mb := irbuilder.NewModuleBuilder()
	in := mb.Types()
	bi := in.Builtins()
	b := newFunc(t, mb, "f", 1, in.Func(bi.Void, true, bi.I32))
	s := irbuilder.NewSimple(b)

	if _, err := s.NextParameter(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.NextParameter(); !errors.Is(err, irbuilder.ErrArityMismatch) {
		t.Fatalf("second parameter: err = %v", err)
	}
	if got := len(b.Function().Params); got != 1 {
		t.Fatalf("params = %d, want 1", got)
	}
}

func TestCompareVectorFoldsLanes(t *testing.T) {
	tests := []struct {
		name string
		pred ir.CmpPred
		fold ir.BinaryOp
	}{
		{"ne folds with or", ir.ICmpNE, ir.OpOr},
		{"eq folds with and", ir.ICmpEQ, ir.OpAnd},
		{"slt folds with and", ir.ICmpSLT, ir.OpAnd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mv := valueOf(t)
			mb := irbuilder.NewModuleBuilder()
			in := mb.Types()
			bi := in.Builtins()
			vec := in.Vector(bi.I32, 4)
			b := newFunc(t, mb, "f", 1, in.Func(bi.I1, false))
			s := irbuilder.NewSimple(b)

			l := mv(s.FillVector(mv(b.Alloca(vec)), irbuilder.Int(1), irbuilder.Int(2), irbuilder.Int(3), irbuilder.Int(4)))
			r := mv(s.Load(mv(b.Alloca(vec))))
			res := mv(s.CompareVector(tt.pred, l, r))
			if mb.Module().TypeOf(res) != bi.I1 {
				t.Fatalf("result type = %s", in.Format(mb.Module().TypeOf(res)))
			}
			if err := b.Ret(res); err != nil {
				t.Fatal(err)
			}

			counts := map[ir.InstrKind]int{}
			folds := 0
			for _, instr := range b.Function().Block(0).Instrs {
				counts[instr.Kind]++
				if instr.Kind == ir.InstrBinary {
					if instr.Binary.Op != tt.fold {
						t.Fatalf("fold op = %s, want %s", instr.Binary.Op, tt.fold)
					}
					folds++
				}
			}
			if counts[ir.InstrInsertElement] != 4 || counts[ir.InstrExtractElement] != 4 || folds != 3 {
				t.Fatalf("instruction mix = %v", counts)
			}
		})
	}
}

func TestReturnWithCast(t *testing.T) {
	mv := valueOf(t)
	mb := irbuilder.NewModuleBuilder()
	in := mb.Types()
	bi := in.Builtins()
	b := newFunc(t, mb, "f", 1, in.Func(bi.I32, false, bi.I8))
	s := irbuilder.NewSimple(b)
	p := mv(s.NextParameter())
	if err := s.ReturnWithCast(p, ir.CastSExt); err != nil {
		t.Fatal(err)
	}
	instrs := b.Function().Block(0).Instrs
	if len(instrs) != 2 || instrs[0].Kind != ir.InstrCast || instrs[0].Cast.Op != ir.CastSExt {
		t.Fatalf("instrs = %+v", instrs)
	}
}

func TestVaArgBuildsDiamond(t *testing.T) {
	mv := valueOf(t)
	mb := irbuilder.NewModuleBuilder()
	in := mb.Types()
	bi := in.Builtins()
	tag, err := mb.VaListTag()
	if err != nil {
		t.Fatal(err)
	}
	b := newFunc(t, mb, "foo", 1, in.Func(bi.I32, true, bi.I32))
	s := irbuilder.NewSimple(b)
	mv(s.NextParameter())
	list := mv(b.Alloca(in.Array(tag, 1)))
	if err := s.VaStart(list); err != nil {
		t.Fatal(err)
	}
	arg := mv(s.VaArg(list, bi.I32))
	if err := s.VaEnd(list); err != nil {
		t.Fatal(err)
	}
	if err := b.Ret(arg); err != nil {
		t.Fatal(err)
	}

	fn := b.Function()
	if fn.Blocks.Len() != 4 || b.CurrentBlock() != 3 {
		t.Fatalf("blocks = %d, cursor = %d", fn.Blocks.Len(), b.CurrentBlock())
	}
	entry := fn.Block(0).Instrs
	br := entry[len(entry)-1]
	if br.Kind != ir.InstrCondBr || br.CondBr.Then != 1 || br.CondBr.Else != 2 {
		t.Fatalf("entry terminator = %+v", br)
	}
	phi := fn.Block(3).Instrs[0]
	if phi.Kind != ir.InstrPhi || phi.Phi.Incoming[0].Block != 1 || phi.Phi.Incoming[1].Block != 2 {
		t.Fatalf("join = %+v", phi)
	}
	if mb.Module().TypeOf(arg) != bi.I32 {
		t.Fatalf("va_arg type = %s", in.Format(mb.Module().TypeOf(arg)))
	}
	// va_start, va_end and @foo
	if len(mb.Module().Funcs) != 3 {
		t.Fatalf("funcs = %d", len(mb.Module().Funcs))
	}
	if err := ir.Validate(mb.Module()); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestDebugInfoFields(t *testing.T) {
	mb := irbuilder.NewModuleBuilder()
	file := mb.DIFile("test.c", "/tmp")
	empty := mb.MDTuple()
	cu := mb.DICompileUnit(irbuilder.CompileUnit{
		Language:       "DW_LANG_C99",
		File:           file,
		Producer:       "clang",
		RuntimeVersion: 0,
		Enums:          empty,
		Globals:        irbuilder.Ref(empty),
	})
	mb.NamedMetadata("llvm.dbg.cu", cu)

	node, ok := mb.Metadata().Node(cu)
	if !ok || !node.Distinct || node.DIName != "DICompileUnit" {
		t.Fatalf("compile unit = %+v", node)
	}
	var keys []string
	for _, f := range node.Fields {
		keys = append(keys, f.Key)
	}
	want := []string{"language", "file", "producer", "isOptimized", "runtimeVersion", "enums", "globals"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}

	unbounded, _ := mb.Metadata().Node(mb.DISubrange(-1, 0))
	if len(unbounded.Fields) != 1 {
		t.Fatalf("unbounded subrange fields = %+v", unbounded.Fields)
	}
	bounded, _ := mb.Metadata().Node(mb.DISubrange(4, 0))
	if len(bounded.Fields) != 2 {
		t.Fatalf("bounded subrange fields = %+v", bounded.Fields)
	}
	if len(mb.Metadata().Named) != 1 || mb.Metadata().Named[0].Nodes[0] != cu {
		t.Fatalf("named metadata = %+v", mb.Metadata().Named)
	}
}
