package fixtures

import (
	"irforge/internal/ir"
	"irforge/internal/irbuilder"
)

func fibonacciCases() []Case {
	return []Case{{File: "test_fibonacci.ll", Build: lazy(fibonacci)}}
}

// fibonacci computes fib(10) recursively and compares it with 55. The
// recursive function carries debug info so the later dialect emits a
// metadata section.
func fibonacci(g *gen) {
	i32 := g.t.I32
	fib := g.define("fibonacci", g.fn(i32, i32))
	g.mb.SetFuncAttrs(fib.f, ir.FuncAttrs{Fn: ir.AttrSet{ir.AttrNoUnwind, ir.AttrUWTable}})
	b, s := fib.b, fib.s

	n := g.v(s.NextParameter())
	small := g.v(s.Cmp(ir.ICmpSLE, val(n), num(1)))
	g.ok(b.CondBr(small, b.Block(1), b.Block(2)))

	b.NextBlock()
	g.ok(b.Ret(n))

	b.NextBlock()
	n1 := g.v(s.BinOp(ir.OpSub, val(n), num(1)))
	f1 := g.v(s.Call(fib.f.ID, val(n1)))
	n2 := g.v(s.BinOp(ir.OpSub, val(n), num(2)))
	f2 := g.v(s.Call(fib.f.ID, val(n2)))
	sum := g.v(s.BinOp(ir.OpAdd, val(f1), val(f2)))
	g.ok(b.Ret(sum))
	b.Attach("dbg", g.mb.DILocation(4, 3, fibDebugInfo(g, fib), nil))
	b.ExitFunction()

	main := g.mainI1()
	res := g.v(main.s.Call(fib.f.ID, num(10)))
	bad := g.v(main.s.Cmp(ir.ICmpNE, val(res), num(55)))
	g.ok(main.b.Ret(bad))
	main.b.ExitFunction()
}

// fibDebugInfo describes @fibonacci and returns its subprogram scope.
func fibDebugInfo(g *gen, fib *body) ir.MDID {
	mb := g.mb
	file := mb.DIFile("fibonacci.c", "/tmp")
	cu := mb.DICompileUnit(irbuilder.CompileUnit{
		Language:       "DW_LANG_C99",
		File:           file,
		Producer:       "irforge",
		RuntimeVersion: 0,
		Enums:          mb.MDTuple(),
	})
	intTy := mb.DIBasicType("int", 32, 32, "DW_ATE_signed")
	sig := mb.DISubroutineType(mb.MDTuple(intTy, intTy))
	sp := mb.DISubprogram(irbuilder.Subprogram{
		Name:       "fibonacci",
		Scope:      file,
		File:       file,
		Line:       1,
		Type:       sig,
		Definition: true,
		ScopeLine:  1,
		Unit:       cu,
		Variables:  mb.MDTuple(),
	})
	mb.AttachMetadata(fib.f, "dbg", sp)
	mb.NamedMetadata("llvm.dbg.cu", cu)
	behavior := g.md(mb.MDValue(mb.I32(2)))
	version := g.md(mb.MDValue(mb.I32(3)))
	mb.NamedMetadata("llvm.module.flags", mb.MDTuple(behavior, mb.MDString("Debug Info Version"), version))
	return sp
}
