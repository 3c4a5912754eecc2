package layout

import (
	"errors"
	"testing"

	"irforge/internal/types"
)

func newEngine() (*LayoutEngine, *types.Interner) {
	in := types.NewInterner()
	return New(X86_64LinuxGNU(), in), in
}

func TestScalarLayouts(t *testing.T) {
	e, in := newEngine()
	b := in.Builtins()
	tests := []struct {
		name  string
		id    types.TypeID
		size  int
		align int
	}{
		{"i1", b.I1, 1, 1},
		{"i8", b.I8, 1, 1},
		{"i16", b.I16, 2, 2},
		{"i32", b.I32, 4, 4},
		{"i64", b.I64, 8, 8},
		{"i24", in.Int(24), 4, 4},
		{"float", b.Float, 4, 4},
		{"double", b.Double, 8, 8},
		{"x86_fp80", b.X86FP80, 16, 16},
		{"pointer", in.Pointer(b.I8), 8, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := e.LayoutOf(tt.id)
			if err != nil {
				t.Fatalf("LayoutOf: %v", err)
			}
			if l.Size != tt.size || l.Align != tt.align {
				t.Fatalf("got size=%d align=%d, want size=%d align=%d", l.Size, l.Align, tt.size, tt.align)
			}
		})
	}
}

func TestStructLayout(t *testing.T) {
	e, in := newEngine()
	b := in.Builtins()
	st := in.Struct(false, b.I8, b.I32, b.I8)
	l, err := e.LayoutOf(st)
	if err != nil {
		t.Fatal(err)
	}
	if l.Size != 12 || l.Align != 4 {
		t.Fatalf("size=%d align=%d", l.Size, l.Align)
	}
	if off, _ := e.FieldOffset(st, 1); off != 4 {
		t.Fatalf("field 1 offset = %d", off)
	}

	packed := in.Struct(true, b.I8, b.I32)
	pl, err := e.LayoutOf(packed)
	if err != nil {
		t.Fatal(err)
	}
	if pl.Size != 5 || pl.Align != 1 {
		t.Fatalf("packed size=%d align=%d", pl.Size, pl.Align)
	}
}

func TestVaListTagLayout(t *testing.T) {
	e, in := newEngine()
	b := in.Builtins()
	tag, _ := in.NamedStruct("struct.__va_list_tag")
	i8p := in.Pointer(b.I8)
	if err := in.SetBody(tag, false, b.I32, b.I32, i8p, i8p); err != nil {
		t.Fatal(err)
	}
	arr := in.Array(tag, 1)
	l, err := e.LayoutOf(arr)
	if err != nil {
		t.Fatal(err)
	}
	if l.Size != 24 || l.Align != 8 {
		t.Fatalf("size=%d align=%d", l.Size, l.Align)
	}
	exp, err := e.AlignExponent(arr)
	if err != nil || exp != 4 {
		t.Fatalf("align exponent = %d, %v", exp, err)
	}
}

func TestVectorLayout(t *testing.T) {
	e, in := newEngine()
	b := in.Builtins()
	if a, _ := e.AlignOf(in.Vector(b.Float, 4)); a != 16 {
		t.Fatalf("<4 x float> align = %d", a)
	}
	if a, _ := e.AlignOf(in.Vector(b.I32, 2)); a != 8 {
		t.Fatalf("<2 x i32> align = %d", a)
	}
}

func TestRecursiveByValueStruct(t *testing.T) {
	e, in := newEngine()
	b := in.Builtins()
	node, _ := in.NamedStruct("node")
	if err := in.SetBody(node, false, b.I32, node); err != nil {
		t.Fatal(err)
	}
	_, err := e.LayoutOf(node)
	var le *LayoutError
	if !errors.As(err, &le) || le.Kind != LayoutErrRecursiveUnsized {
		t.Fatalf("expected recursive layout error, got %v", err)
	}
	if want := "%node contains itself by value (%node -> %node)"; err.Error() != want {
		t.Fatalf("error = %q, want %q", err.Error(), want)
	}

	// Self-reference through a pointer is fine.
	list, _ := in.NamedStruct("list")
	if err := in.SetBody(list, false, b.I32, in.Pointer(list)); err != nil {
		t.Fatal(err)
	}
	if size, err := e.SizeOf(list); err != nil || size != 16 {
		t.Fatalf("list size = %d, %v", size, err)
	}
}

func TestAlignEncoding(t *testing.T) {
	for _, tc := range []struct {
		align int
		exp   uint8
	}{{0, 0}, {1, 1}, {2, 2}, {4, 3}, {8, 4}, {16, 5}} {
		if got := EncodeAlign(tc.align); got != tc.exp {
			t.Fatalf("EncodeAlign(%d) = %d, want %d", tc.align, got, tc.exp)
		}
		if got := DecodeAlign(tc.exp); got != tc.align {
			t.Fatalf("DecodeAlign(%d) = %d, want %d", tc.exp, got, tc.align)
		}
	}
}

func TestParseSpec(t *testing.T) {
	spec, err := ParseSpec(X86_64DataLayout)
	if err != nil {
		t.Fatal(err)
	}
	if !spec.LittleEndian || spec.PtrBits != 64 || spec.StackAlign != 128 {
		t.Fatalf("unexpected spec: %+v", spec)
	}
	if got := spec.intAlign(1); got != 8 {
		t.Fatalf("i1 align bits = %d", got)
	}
	if _, err := ParseSpec("i32"); err == nil {
		t.Fatalf("expected malformed entry error")
	}
}
