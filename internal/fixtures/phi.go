package fixtures

import "irforge/internal/ir"

const phiArms = 5

func phiCases() []Case {
	return []Case{{File: "test_phi.ll", Build: lazy(phi)}}
}

// phi switches on a constant into one of five arms, each producing its own
// index, and joins them in a phi. main returns 0 when the selected arm's
// value came through.
func phi(g *gen) {
	const selected = 3
	main := g.define("main", g.fn(g.t.I32))
	b, s := main.b, main.s
	join := b.Block(phiArms + 1)

	values := make([]ir.ValueID, 0, phiArms)
	targets := make([]ir.BlockID, 0, phiArms)
	for k := 1; k <= phiArms; k++ {
		values = append(values, g.mb.I32(int32(k)))
		targets = append(targets, b.Block(k))
	}
	g.ok(b.Switch(g.mb.I32(selected), b.Block(1), values, targets))

	arms := make([]ir.ValueID, 0, phiArms)
	for k := 1; k <= phiArms; k++ {
		b.NextBlock()
		arms = append(arms, g.v(b.BinOp(ir.OpAdd, g.mb.I32(0), g.mb.I32(int32(k)))))
		g.ok(b.Br(join))
	}

	b.NextBlock()
	joined := g.v(b.Phi(g.t.I32, arms, targets))
	diff := g.v(s.BinOp(ir.OpSub, val(joined), num(selected)))
	g.ok(b.Ret(diff))
	b.ExitFunction()
}
