package irwriter_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/llir/llvm/ir/enum"

	"irforge/internal/ir"
	"irforge/internal/irbuilder"
	"irforge/internal/irwriter"
	"irforge/internal/layout"
	"irforge/internal/types"
)

var preamble = `target datalayout = "` + layout.X86_64DataLayout + `"` + "\n"

func newFunc(t *testing.T, mb *irbuilder.ModuleBuilder, name string, fnType types.TypeID) *irbuilder.Builder {
	t.Helper()
	fn, err := mb.DefineFunction(name, 1, fnType)
	if err != nil {
		t.Fatalf("define %s: %v", name, err)
	}
	b, err := irbuilder.New(mb, fn)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func valueOf(t *testing.T) func(ir.ValueID, error) ir.ValueID {
	return func(id ir.ValueID, err error) ir.ValueID {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		return id
	}
}

func render(t *testing.T, mb *irbuilder.ModuleBuilder, d irwriter.Dialect) string {
	t.Helper()
	text, err := irwriter.Text(mb.Module(), d)
	if err != nil {
		t.Fatalf("write %s: %v", d, err)
	}
	return text
}

func hasLine(text, line string) bool {
	for _, l := range strings.Split(text, "\n") {
		if l == line {
			return true
		}
	}
	return false
}

func TestCompareOfConstants(t *testing.T) {
	mv := valueOf(t)
	mb := irbuilder.NewModuleBuilder()
	in := mb.Types()
	b := newFunc(t, mb, "f", in.Func(in.Builtins().I1, false))
	r := mv(b.Cmp(ir.ICmpNE, mb.I1(true), mb.I1(true)))
	if err := b.Ret(r); err != nil {
		t.Fatal(err)
	}

	want := preamble + `
define i1 @f() {
  %1 = icmp ne i1 true, true
  ret i1 %1
}
`
	for _, d := range irwriter.Dialects() {
		if got := render(t, mb, d); got != want {
			t.Errorf("%s:\n%s\nwant:\n%s", d, got, want)
		}
	}
}

func TestIntrinsicDeclaredOnce(t *testing.T) {
	mb := irbuilder.NewModuleBuilder()
	for range 2 {
		if _, err := mb.VaStartDecl(); err != nil {
			t.Fatal(err)
		}
	}
	text := render(t, mb, irwriter.V38)
	if n := strings.Count(text, "@llvm.va_start("); n != 1 {
		t.Fatalf("va_start appears %d times:\n%s", n, text)
	}
	for _, line := range []string{
		"; Function Attrs: nounwind",
		"declare void @llvm.va_start(i8*) #0",
		"attributes #0 = { nounwind }",
	} {
		if !hasLine(text, line) {
			t.Errorf("missing %q in:\n%s", line, text)
		}
	}
	if !hasLine(render(t, mb, irwriter.V32), "declare void @llvm.va_start(i8*) nounwind") {
		t.Errorf("3.2 keeps attributes inline")
	}
}

// dialectModule exercises every construct whose syntax differs between
// dialects.
func dialectModule(t *testing.T) *irbuilder.ModuleBuilder {
	t.Helper()
	mv := valueOf(t)
	mb := irbuilder.NewModuleBuilder()
	in := mb.Types()
	bi := in.Builtins()
	i8p := in.Pointer(bi.I8)

	g := mv(mb.GlobalVariable("g", bi.I32, mb.I32(7), irbuilder.GlobalOptions{Align: 4}))
	s := mv(mb.GlobalString("s", "hi"))
	mv(mb.Alias("a", g, enum.LinkageNone))
	printf, err := mb.DeclareFunction("printf", in.Func(bi.I32, true, i8p))
	if err != nil {
		t.Fatal(err)
	}

	b := newFunc(t, mb, "main", in.Func(bi.I32, false))
	p := mv(b.GEP(s, true, mb.I32(0), mb.I32(0)))
	mv(b.Call(printf.ID, p))
	v := mv(b.Load(g))
	if err := b.Ret(v); err != nil {
		t.Fatal(err)
	}
	return mb
}

func TestDialectSyntax(t *testing.T) {
	tests := []struct {
		dialect irwriter.Dialect
		lines   []string
	}{
		{irwriter.V32, []string{
			"@g = global i32 7, align 4",
			`@s = internal constant [3 x i8] c"hi\00"`,
			"@a = alias i32* @g",
			"declare i32 @printf(i8*, ...)",
			"  %1 = getelementptr inbounds [3 x i8]* @s, i32 0, i32 0",
			"  %2 = call i32 (i8*, ...)* @printf(i8* %1)",
			"  %3 = load i32* @g, align 4",
			"  ret i32 %3",
		}},
		{irwriter.V38, []string{
			"@g = global i32 7, align 4",
			`@s = internal constant [3 x i8] c"hi\00"`,
			"@a = alias i32, i32* @g",
			"declare i32 @printf(i8*, ...)",
			"  %1 = getelementptr inbounds [3 x i8], [3 x i8]* @s, i32 0, i32 0",
			"  %2 = call i32 (i8*, ...) @printf(i8* %1)",
			"  %3 = load i32, i32* @g, align 4",
			"  ret i32 %3",
		}},
	}
	mb := dialectModule(t)
	for _, tt := range tests {
		t.Run(tt.dialect.String(), func(t *testing.T) {
			text := render(t, mb, tt.dialect)
			for _, line := range tt.lines {
				if !hasLine(text, line) {
					t.Errorf("missing %q in:\n%s", line, text)
				}
			}
		})
	}
}

func TestSwitchAndPhiLayout(t *testing.T) {
	mv := valueOf(t)
	mb := irbuilder.NewModuleBuilder()
	in := mb.Types()
	i32 := in.Builtins().I32
	b := newFunc(t, mb, "sel", in.Func(i32, false, i32))
	p := mv(b.Param(i32))
	if err := b.Switch(p, b.Block(3), []ir.ValueID{mb.I32(1), mb.I32(2)}, []ir.BlockID{b.Block(1), b.Block(2)}); err != nil {
		t.Fatal(err)
	}
	for range 2 {
		b.NextBlock()
		if err := b.Br(b.Block(3)); err != nil {
			t.Fatal(err)
		}
	}
	b.NextBlock()
	r := mv(b.Phi(i32, []ir.ValueID{mb.I32(0), mb.I32(10), mb.I32(20)}, []ir.BlockID{0, 1, 2}))
	if err := b.Ret(r); err != nil {
		t.Fatal(err)
	}

	want := preamble + `
define i32 @sel(i32 %arg_1) {
  switch i32 %arg_1, label %3 [
    i32 1, label %1
    i32 2, label %2
  ]

; <label>:1
  br label %3

; <label>:2
  br label %3

; <label>:3
  %4 = phi i32 [ 0, %0 ], [ 10, %1 ], [ 20, %2 ]
  ret i32 %4
}
`
	if got := render(t, mb, irwriter.V38); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestConstantSpelling(t *testing.T) {
	mv := valueOf(t)
	mb := irbuilder.NewModuleBuilder()
	in := mb.Types()
	bi := in.Builtins()
	i8p := in.Pointer(bi.I8)
	pair, err := mb.StructType("pair", false, bi.I32, i8p)
	if err != nil {
		t.Fatal(err)
	}
	arr4 := in.Array(bi.I8, 4)

	g := mv(mb.GlobalVariable("i", bi.I32, mb.I32(-3), irbuilder.GlobalOptions{}))
	cases := []struct {
		name string
		typ  types.TypeID
		init ir.ValueID
		want string
	}{
		{"b", bi.I1, mb.I1(false), "@b = global i1 false"},
		{"f", bi.Float, mb.Float(1.5), "@f = global float 0x3FF8000000000000"},
		{"d", bi.Double, mb.Double(0.1), "@d = global double 0x3FB999999999999A"},
		{"x", bi.X86FP80, mb.FP80SNaN(), "@x = global x86_fp80 0xK7FFFA000000000000000"},
		{"z", in.Array(bi.I32, 2), mb.Null(in.Array(bi.I32, 2)), "@z = global [2 x i32] zeroinitializer"},
		{"n", i8p, mb.Null(i8p), "@n = global i8* null"},
		{"u", bi.I64, mb.Undef(bi.I64), "@u = global i64 undef"},
		{"str", arr4, mb.String(arr4, []byte("a\"\n")), `@str = global [4 x i8] c"a\22\0A\00"`},
		{"p", pair, mv(mb.Struct(pair, mb.I32(1), mb.Null(i8p))), "@p = global %pair { i32 1, i8* null }"},
		{"c", bi.I64, mv(mb.CastExpr(ir.CastPtrToInt, g, bi.I64)), "@c = global i64 ptrtoint (i32* @i to i64)"},
		{"v", in.Vector(bi.I16, 2), mv(mb.Vector(bi.I16, mb.I16(1), mb.I16(-1))), "@v = global <2 x i16> <i16 1, i16 -1>"},
		{"7", bi.I32, mb.I32(7), `@"7" = global i32 7`},
		{"a b", bi.I32, mb.I32(0), `@"a b" = global i32 0`},
	}
	for _, c := range cases {
		mv(mb.GlobalVariable(c.name, c.typ, c.init, irbuilder.GlobalOptions{}))
	}
	text := render(t, mb, irwriter.V38)
	if !hasLine(text, "%pair = type { i32, i8* }") {
		t.Errorf("named type missing:\n%s", text)
	}
	for _, c := range cases {
		if !hasLine(text, c.want) {
			t.Errorf("%s: missing %q in:\n%s", c.name, c.want, text)
		}
	}
}

func TestAttributeGroupsAreShared(t *testing.T) {
	mb := irbuilder.NewModuleBuilder()
	in := mb.Types()
	void := in.Func(in.Builtins().Void, false)
	sets := map[string]ir.AttrSet{
		"a": {ir.AttrNoUnwind},
		"b": {ir.AttrNoUnwind},
		"c": {ir.AttrNoReturn, ir.AttrNoUnwind, ir.StringAttr("frame-pointer", "all")},
	}
	for _, name := range []string{"a", "b", "c"} {
		fn, err := mb.DeclareFunction(name, void)
		if err != nil {
			t.Fatal(err)
		}
		mb.SetFuncAttrs(fn, ir.FuncAttrs{Fn: sets[name]})
	}

	text := render(t, mb, irwriter.V38)
	for _, line := range []string{
		"declare void @a() #0",
		"declare void @b() #0",
		"; Function Attrs: noreturn nounwind",
		"declare void @c() #1",
		"attributes #0 = { nounwind }",
		`attributes #1 = { noreturn nounwind "frame-pointer"="all" }`,
	} {
		if !hasLine(text, line) {
			t.Errorf("missing %q in:\n%s", line, text)
		}
	}
	if strings.Contains(text, "attributes #2") {
		t.Errorf("identical sets must share a group:\n%s", text)
	}
}

func TestMetadataIsDedupedAndHoisted(t *testing.T) {
	mb := irbuilder.NewModuleBuilder()
	f1 := mb.DIFile("a.c", "/src")
	f2 := mb.DIFile("a.c", "/src")
	mb.NamedMetadata("foo", mb.MDTuple(f1, f2, ir.NoMDID, mb.MDString("x")), mb.MDPlaceholder("DIModule"))

	want := preamble + `
!foo = !{!0, !2}

!0 = !{!1, !1, null, !"x"}
!1 = !DIFile(filename: "a.c", directory: "/src")
!2 = !{} ; TODO: DIModule
`
	if got := render(t, mb, irwriter.V38); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
	if got := render(t, mb, irwriter.V32); got != preamble {
		t.Fatalf("3.2 must not print metadata:\n%s", got)
	}
}

func TestDebugAttachments(t *testing.T) {
	mb := irbuilder.NewModuleBuilder()
	in := mb.Types()
	b := newFunc(t, mb, "f", in.Func(in.Builtins().Void, false))
	file := mb.DIFile("a.c", "/src")
	mb.AttachMetadata(b.Function(), "dbg", file)
	if err := b.RetVoid(); err != nil {
		t.Fatal(err)
	}
	b.Attach("dbg", mb.DILocation(3, 7, file, nil))

	want := preamble + `
define void @f() !dbg !0 {
  ret void, !dbg !1
}

!0 = !DIFile(filename: "a.c", directory: "/src")
!1 = !DILocation(line: 3, column: 7, scope: !0)
`
	if got := render(t, mb, irwriter.V38); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestMetadataCycle(t *testing.T) {
	mb := irbuilder.NewModuleBuilder()
	md := mb.Metadata()
	self := mb.MDTuple(ir.NoMDID)
	node, _ := md.Node(self)
	node.Elems[0] = self
	mb.NamedMetadata("loop", self)

	text := render(t, mb, irwriter.V38)
	if !hasLine(text, "!0 = !{!0}") {
		t.Fatalf("self reference lost:\n%s", text)
	}
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"3.2", "3.2", true},
		{"v3.8", "3.8", true},
		{" 3.8 ", "3.8", true},
		{"3.9", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		d, err := irwriter.ParseDialect(tt.in)
		if tt.ok != (err == nil) {
			t.Errorf("ParseDialect(%q) err = %v", tt.in, err)
			continue
		}
		if !tt.ok {
			if !errors.Is(err, irwriter.ErrUnknownDialect) {
				t.Errorf("ParseDialect(%q) err = %v, want ErrUnknownDialect", tt.in, err)
			}
			continue
		}
		if d.Name != tt.want {
			t.Errorf("ParseDialect(%q) = %s, want %s", tt.in, d, tt.want)
		}
	}
}

type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }

func TestSinkErrors(t *testing.T) {
	mb := irbuilder.NewModuleBuilder()
	boom := errors.New("disk full")

	err := irwriter.Write(failingWriter{boom}, mb.Module(), irwriter.V38)
	var se *irwriter.SinkError
	if !errors.As(err, &se) || se.Op != "write" || !errors.Is(err, boom) {
		t.Fatalf("Write err = %v", err)
	}

	missing := filepath.Join(t.TempDir(), "no", "such", "dir", "out.ll")
	err = irwriter.WriteFile(missing, mb.Module(), irwriter.V38)
	if !errors.As(err, &se) || se.Op != "create" || se.Path != missing {
		t.Fatalf("WriteFile err = %v", err)
	}
}

func TestWriteFile(t *testing.T) {
	mb := irbuilder.NewModuleBuilder()
	path := filepath.Join(t.TempDir(), "m.ll")
	if err := irwriter.WriteFile(path, mb.Module(), irwriter.V38); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != preamble {
		t.Fatalf("file = %q", data)
	}
}
