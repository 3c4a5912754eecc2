package fixtures

import (
	"fmt"

	"github.com/llir/llvm/ir/enum"

	"irforge/internal/ir"
	"irforge/internal/irbuilder"
)

const maxTargets = 7

func polymorphicCases() []Case {
	cases := make([]Case, 0, maxTargets)
	for n := 1; n <= maxTargets; n++ {
		cases = append(cases, Case{
			File:  fmt.Sprintf("test_polymorphic_call_%d_i32.ll", n),
			Build: lazy(func(g *gen) { polymorphic(g, n) }),
		})
	}
	return cases
}

func targetResult(k int) int32 { return int32(k*k + 1) }

// polymorphic calls n functions through a constant table of function
// pointers reached via an alias, stores the sum in a global and compares
// it with the expected total.
func polymorphic(g *gen, n int) {
	i32 := g.t.I32
	sig := g.fn(i32)
	ptr := g.in.Pointer(sig)

	impls := make([]ir.ValueID, n)
	var want int32
	for k := range n {
		fb := g.define(fmt.Sprintf("impl_%d", k+1), sig)
		g.mb.SetFuncAttrs(fb.f, ir.FuncAttrs{Fn: ir.AttrSet{ir.AttrNoInline, ir.AttrNoUnwind}})
		g.ok(fb.s.Ret(num(int64(targetResult(k + 1)))))
		fb.b.ExitFunction()
		impls[k] = fb.f.ID
		want += targetResult(k + 1)
	}

	tableType := g.in.Array(ptr, uint64(n))
	table := g.v(g.mb.Array(ptr, impls...))
	vtable := g.v(g.mb.GlobalConstant("vtable", tableType, table))
	dispatch := g.v(g.mb.Alias("dispatch", vtable, enum.LinkageInternal))
	total := g.v(g.mb.GlobalVariable("total", i32, g.mb.I32(0), irbuilder.GlobalOptions{Align: 4}))

	main := g.mainI1()
	b, s := main.b, main.s
	sum := g.mb.I32(0)
	for k := range n {
		slot := g.v(b.GEP(dispatch, true, g.mb.I32(0), g.mb.I32(int32(k))))
		target := g.v(b.Load(slot))
		r := g.v(b.Call(target))
		sum = g.v(b.BinOp(ir.OpAdd, sum, r))
	}
	g.ok(b.Store(total, sum, 4))
	stored := g.v(b.Load(total))
	bad := g.v(s.Cmp(ir.ICmpNE, val(stored), num(int64(want))))
	g.ok(b.Ret(bad))
	b.ExitFunction()
}
