package fixtures

import "irforge/internal/ir"

const (
	varargFirst  = 32
	varargSecond = 1 << 40
)

func varargCases() []Case {
	return []Case{{File: "test_vararg.ll", Build: lazy(vararg)}}
}

// vararg passes two integer-class arguments through "..." and reads them
// back with the x86-64 va_list protocol. The callee has a success and a
// failure block at its end; every check branches to the failure block.
func vararg(g *gen) {
	i32, i64 := g.t.I32, g.t.I64
	foo := g.define("foo", g.in.Func(i32, true, i32))
	b, s := foo.b, foo.s
	b.Block(2) // 1: success, 2: failure

	g.v(s.NextParameter())
	tag := g.typ(g.mb.VaListTag())
	list := g.v(s.Alloca(g.in.Array(tag, 1)))
	g.ok(s.VaStart(list))

	first := g.v(s.VaArg(list, i32))
	ok := g.v(s.Cmp(ir.ICmpEQ, val(first), num(varargFirst)))
	g.ok(b.InsertBlocks(1))
	g.ok(b.CondBr(ok, b.NextBlockIndex(), foo.lastBlock()))

	b.NextBlock()
	second := g.v(s.VaArg(list, i64))
	ok = g.v(s.Cmp(ir.ICmpEQ, val(second), num(varargSecond)))
	g.ok(b.CondBr(ok, b.NextBlockIndex(), foo.lastBlock()))

	b.NextBlock()
	g.ok(s.VaEnd(list))
	g.ok(s.Ret(num(0)))

	b.NextBlock()
	g.ok(s.VaEnd(list))
	g.ok(s.Ret(num(1)))
	b.ExitFunction()

	main := g.define("main", g.fn(i32))
	res := g.v(main.b.Call(foo.f.ID, g.mb.I32(2), g.mb.I32(varargFirst), g.mb.I64(varargSecond)))
	g.ok(main.b.Ret(res))
	main.b.ExitFunction()
}
