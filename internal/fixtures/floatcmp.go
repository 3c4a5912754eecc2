package fixtures

import (
	"math"

	"irforge/internal/ir"
	"irforge/internal/types"
)

// fcmpCheck is one predicate evaluation with its expected outcome. snan
// replaces both operands' NaNs with the x86_fp80 signalling NaN.
type fcmpCheck struct {
	pred     ir.CmpPred
	lhs, rhs float64
	want     bool
	snan     bool
}

var (
	nan    = math.NaN()
	posInf = math.Inf(1)
	negInf = math.Inf(-1)
	negZ   = math.Copysign(0, -1)
)

var fcmpChecks = []fcmpCheck{
	{pred: ir.FCmpOEQ, lhs: 0, rhs: negZ, want: true},
	{pred: ir.FCmpONE, lhs: 0, rhs: negZ, want: false},
	{pred: ir.FCmpUEQ, lhs: negZ, rhs: 0, want: true},
	{pred: ir.FCmpOEQ, lhs: nan, rhs: nan, want: false},
	{pred: ir.FCmpUNE, lhs: nan, rhs: nan, want: true},
	{pred: ir.FCmpORD, lhs: 1, rhs: nan, want: false},
	{pred: ir.FCmpUNO, lhs: 1, rhs: nan, want: true},
	{pred: ir.FCmpORD, lhs: 1, rhs: 2, want: true},
	{pred: ir.FCmpOLT, lhs: negInf, rhs: posInf, want: true},
	{pred: ir.FCmpOGT, lhs: posInf, rhs: negInf, want: true},
	{pred: ir.FCmpOEQ, lhs: posInf, rhs: posInf, want: true},
	{pred: ir.FCmpOLT, lhs: 1, rhs: nan, want: false},
	{pred: ir.FCmpULT, lhs: 1, rhs: nan, want: true},
	{pred: ir.FCmpOLE, lhs: 1, rhs: 1, want: true},
	{pred: ir.FCmpOGE, lhs: 2, rhs: 1, want: true},
	{pred: ir.FCmpUGE, lhs: 1, rhs: 2, want: false},
	{pred: ir.FCmpUGT, lhs: nan, rhs: 1, want: true},
	{pred: ir.FCmpULE, lhs: 2, rhs: 1, want: false},
	{pred: ir.FCmpFalse, lhs: 1, rhs: 1, want: false},
	{pred: ir.FCmpTrue, lhs: nan, rhs: nan, want: true},
	{pred: ir.FCmpUNO, lhs: nan, rhs: 1, want: true, snan: true},
	{pred: ir.FCmpOEQ, lhs: nan, rhs: nan, want: false, snan: true},
}

func floatCompareCases() []Case {
	var cases []Case
	for _, ft := range []struct {
		name  string
		width uint32
	}{{"float", types.WidthFloat}, {"double", types.WidthDouble}, {"x86_fp80", types.WidthX86FP80}} {
		width := ft.width
		cases = append(cases, Case{
			File:  "cmp_" + ft.name + ".ll",
			Build: lazy(func(g *gen) { floatCompare(g, width) }),
		})
	}
	return cases
}

// floatCompare runs every check in sequence. A failing check returns its
// 1-based position; main returns 0 when all pass.
func floatCompare(g *gen, width uint32) {
	main := g.define("main", g.fn(g.t.I32))
	b := main.b
	code := int32(0)
	for _, c := range fcmpChecks {
		if c.snan && width != types.WidthX86FP80 {
			continue
		}
		code++
		lhs, rhs := g.floatConst(width, c.lhs, c.snan), g.floatConst(width, c.rhs, c.snan)
		res := g.v(b.Cmp(c.pred, lhs, rhs))

		g.ok(b.InsertBlocks(2))
		fail, next := b.NextBlockIndex(), b.NextBlockIndex()+1
		if c.want {
			g.ok(b.CondBr(res, next, fail))
		} else {
			g.ok(b.CondBr(res, fail, next))
		}
		b.NextBlock()
		g.ok(b.Ret(g.mb.I32(code)))
		b.NextBlock()
	}
	g.ok(b.Ret(g.mb.I32(0)))
	b.ExitFunction()
}

// floatConst builds v in the given float width. With snan set, NaN becomes
// the x86_fp80 signalling NaN.
func (g *gen) floatConst(width uint32, v float64, snan bool) ir.ValueID {
	switch width {
	case types.WidthFloat:
		return g.mb.Float(float32(v))
	case types.WidthDouble:
		return g.mb.Double(v)
	default:
		if snan && math.IsNaN(v) {
			return g.mb.FP80SNaN()
		}
		return g.mb.FP80(v)
	}
}
