package fixtures

import (
	"fmt"
	"strings"

	"irforge/internal/ir"
	"irforge/internal/irbuilder"
	"irforge/internal/types"
)

const vectorLoopIterations = 10_000_000

func vectorLoopCases() []Case {
	return []Case{{File: "test_vector_loop.ll", Build: lazy(vectorLoop)}}
}

// vectorLoop adds <1, 2, 3, 4> to an accumulator ten million times and
// checks lane 0.
func vectorLoop(g *gen) {
	main := g.define("main", g.fn(g.t.I32))
	b, s := main.b, main.s
	v4 := g.in.Vector(g.t.I32, 4)
	loop, done := b.Block(1), b.Block(2)

	acc := g.v(s.Alloca(v4))
	step := g.v(s.Alloca(v4))
	counter := g.v(s.Alloca(g.t.I64))
	g.ok(s.Store(counter, num(0), 8))
	zero := g.v(s.FillVector(acc, num(0), num(0), num(0), num(0)))
	g.ok(b.Store(acc, zero, 16))
	inc := g.v(s.FillVector(step, num(1), num(2), num(3), num(4)))
	g.ok(b.Store(step, inc, 16))
	g.ok(b.Br(loop))

	b.NextBlock()
	cur := g.v(s.Load(acc))
	delta := g.v(s.Load(step))
	sum := g.v(b.BinOp(ir.OpAdd, cur, delta))
	g.ok(b.Store(acc, sum, 16))
	n := g.v(s.Load(counter))
	n1 := g.v(s.BinOp(ir.OpAdd, val(n), num(1)))
	g.ok(b.Store(counter, n1, 8))
	more := g.v(s.Cmp(ir.ICmpULT, val(n1), num(vectorLoopIterations)))
	g.ok(b.CondBr(more, loop, done))

	b.NextBlock()
	final := g.v(s.Load(acc))
	lane := g.v(s.ExtractElement(final, 0))
	bad := g.v(s.Cmp(ir.ICmpNE, val(lane), num(vectorLoopIterations)))
	g.ok(s.ReturnWithCast(bad, ir.CastZExt))
	b.ExitFunction()
}

type bitcastPair struct {
	src, dst func(in *types.Interner) types.TypeID
}

func vecOf(bits uint32, n uint64) func(*types.Interner) types.TypeID {
	return func(in *types.Interner) types.TypeID { return in.Vector(in.Int(bits), n) }
}

func scalarOf(kind types.Kind, bits uint32) func(*types.Interner) types.TypeID {
	return func(in *types.Interner) types.TypeID {
		if kind == types.KindFloat {
			return in.Float(bits)
		}
		return in.Int(bits)
	}
}

func vectorBitcastPairs() []bitcastPair {
	fp80 := scalarOf(types.KindFloat, types.WidthX86FP80)
	double := scalarOf(types.KindFloat, types.WidthDouble)
	float := scalarOf(types.KindFloat, types.WidthFloat)
	i64, i32 := scalarOf(types.KindInt, 64), scalarOf(types.KindInt, 32)
	i16, i8, i1 := scalarOf(types.KindInt, 16), scalarOf(types.KindInt, 8), scalarOf(types.KindInt, 1)

	pairs := []bitcastPair{
		{vecOf(16, 5), fp80}, {vecOf(8, 10), fp80}, {vecOf(1, 80), fp80},
		{vecOf(64, 1), i64}, {vecOf(32, 2), i64}, {vecOf(16, 4), i64}, {vecOf(8, 8), i64}, {vecOf(1, 64), i64},
		{vecOf(64, 1), double}, {vecOf(32, 2), double}, {vecOf(16, 4), double}, {vecOf(8, 8), double}, {vecOf(1, 64), double},
		{vecOf(32, 1), i32}, {vecOf(16, 2), i32}, {vecOf(8, 4), i32}, {vecOf(1, 32), i32},
		{vecOf(32, 1), float}, {vecOf(16, 2), float}, {vecOf(8, 4), float}, {vecOf(1, 32), float},
		{vecOf(16, 1), i16}, {vecOf(8, 2), i16}, {vecOf(1, 16), i16},
		{vecOf(8, 1), i8}, {vecOf(1, 8), i8},
		{vecOf(1, 1), i1},
	}
	vec128 := []func(*types.Interner) types.TypeID{
		vecOf(64, 2), vecOf(32, 4), vecOf(16, 8), vecOf(8, 16), vecOf(1, 128),
	}
	for _, src := range vec128 {
		for _, dst := range vec128 {
			pairs = append(pairs, bitcastPair{src, dst})
		}
	}
	return pairs
}

func vectorBitcastCases() []Case {
	in := types.NewInterner()
	var cases []Case
	for _, p := range vectorBitcastPairs() {
		name := fmt.Sprintf("test_vector_%s_%s.ll", typeSlug(in, p.src(in)), typeSlug(in, p.dst(in)))
		cases = append(cases, Case{File: name, Build: lazy(func(g *gen) { vectorBitcast(g, p) })})
	}
	return cases
}

// typeSlug spells a type without spaces or brackets: v4i32, x86_fp80.
func typeSlug(in *types.Interner, id types.TypeID) string {
	t := in.MustLookup(id)
	if t.Kind == types.KindVector {
		return fmt.Sprintf("v%d%s", t.Count, typeSlug(in, t.Elem))
	}
	return strings.ReplaceAll(in.Format(id), " ", "")
}

// vectorBitcast round-trips a filled vector through dst and back three
// times: all lanes at their maximum, every other bit set, and zero. main
// ors the three mismatches.
func vectorBitcast(g *gen, p bitcastPair) {
	src, dst := p.src(g.in), p.dst(g.in)
	srcT := g.in.MustLookup(src)
	elemBits := g.in.MustLookup(srcT.Elem).Bits

	ones := uint64(1)<<elemBits - 1
	if elemBits >= 64 {
		ones = ^uint64(0)
	}
	checks := []struct {
		name string
		lane uint64
	}{
		{"max", ones},
		{"mid", ones & 0xAAAAAAAAAAAAAAAA},
		{"min", 0},
	}

	fns := make([]*ir.Function, 0, len(checks))
	for _, c := range checks {
		fb := g.define(c.name, g.fn(g.t.I1))
		ptr := g.v(fb.s.Alloca(src))
		lanes := make([]irbuilder.Operand, srcT.Count)
		for i := range lanes {
			lanes[i] = num(int64(c.lane))
		}
		filled := g.v(fb.s.FillVector(ptr, lanes...))
		there := g.v(fb.b.Cast(ir.CastBitcast, filled, dst))
		back := g.v(fb.b.Cast(ir.CastBitcast, there, src))
		bad := g.v(fb.s.CompareVector(ir.ICmpNE, filled, back))
		g.ok(fb.b.Ret(bad))
		fb.b.ExitFunction()
		fns = append(fns, fb.f)
	}

	main := g.mainI1()
	var acc ir.ValueID
	for i, f := range fns {
		r := g.v(main.b.Call(f.ID))
		if i == 0 {
			acc = r
			continue
		}
		acc = g.v(main.b.BinOp(ir.OpOr, acc, r))
	}
	g.ok(main.b.Ret(acc))
	main.b.ExitFunction()
}
