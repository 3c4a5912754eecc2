package fixtures

import (
	"fmt"

	"irforge/internal/ir"
)

type extCase struct {
	op       ir.CastOp
	from, to uint32
}

func varICastCases() []Case {
	var specs []extCase
	for wide := uint32(8); wide <= 64; wide += 4 {
		for narrow := uint32(4); narrow < wide; narrow += 4 {
			specs = append(specs,
				extCase{ir.CastZExt, narrow, wide},
				extCase{ir.CastSExt, narrow, wide},
				extCase{ir.CastZExt, narrow - 1, wide - 1},
				extCase{ir.CastSExt, narrow - 1, wide - 1},
			)
		}
	}
	cases := make([]Case, 0, len(specs))
	for _, c := range specs {
		cases = append(cases, Case{
			File:  fmt.Sprintf("cast_i%d_i%d_(%s).ll", c.to, c.from, c.op),
			Build: lazy(func(g *gen) { varICast(g, c) }),
		})
	}
	return cases
}

// extensionResult is what extending (1 << (from-1)) | 1 must produce.
func (c extCase) extensionResult() int64 {
	if c.op == ir.CastSExt {
		return -1<<(c.from-1) | 1
	}
	return 1<<(c.from-1) | 1
}

// varICast checks two properties of an extension between odd widths:
// bits truncated away stay away, and the top bit of the narrow value is
// extended according to the cast.
func varICast(g *gen, c extCase) {
	wide, narrow := g.in.Int(c.to), g.in.Int(c.from)
	main := g.define("main", g.fn(g.t.I32))
	b, s := main.b, main.s

	truncated := g.v(b.Cast(ir.CastTrunc, g.mb.Int(wide, 1<<c.from), narrow))
	back := g.v(b.Cast(c.op, truncated, wide))
	badTrunc := g.v(s.Cmp(ir.ICmpNE, val(back), num(0)))

	extended := g.v(b.Cast(c.op, g.mb.Int(narrow, 1<<(c.from-1)|1), wide))
	badExt := g.v(s.Cmp(ir.ICmpNE, val(extended), num(c.extensionResult())))

	bad := g.v(b.BinOp(ir.OpOr, badTrunc, badExt))
	g.ok(s.ReturnWithCast(bad, ir.CastZExt))
	b.ExitFunction()
}

func asmCastCases() []Case {
	var specs []extCase
	for to := uint32(8); to <= 64; to *= 2 {
		for from := uint32(8); from < to; from *= 2 {
			specs = append(specs, extCase{ir.CastSExt, from, to})
			if from == 32 && to == 64 {
				continue // there is no movzlq
			}
			specs = append(specs, extCase{ir.CastZExt, from, to})
		}
	}
	cases := make([]Case, 0, len(specs))
	for _, c := range specs {
		cases = append(cases, Case{
			File:  fmt.Sprintf("cast_i%d_to_i%d_(%s).ll", c.from, c.to, c.op),
			Build: lazy(func(g *gen) { asmCast(g, c) }),
		})
	}
	return cases
}

// asmCast runs the varICast checks with the extension done by a movz/movs
// instruction in inline assembly.
func asmCast(g *gen, c extCase) {
	wide, narrow := g.in.Int(c.to), g.in.Int(c.from)
	text, err := c.asmText()
	g.ok(err)
	asm := g.mb.InlineAsm(g.fn(wide, narrow), ir.InlineAsm{
		Asm:         text,
		Constraints: "=r,r,~{dirflag},~{fpsr},~{flags}",
		SideEffect:  true,
	})
	main := g.mainI1()
	b, s := main.b, main.s

	truncated := g.v(b.Cast(ir.CastTrunc, g.mb.Int(wide, 1<<c.from), narrow))
	back := g.v(b.Call(asm, truncated))
	badTrunc := g.v(s.Cmp(ir.ICmpNE, val(back), num(0)))

	extended := g.v(b.Call(asm, g.mb.Int(narrow, 1<<(c.from-1)|1)))
	badExt := g.v(s.Cmp(ir.ICmpNE, val(extended), num(c.extensionResult())))

	g.ok(b.Ret(g.v(b.BinOp(ir.OpOr, badTrunc, badExt))))
	b.ExitFunction()
}

func (c extCase) asmText() (string, error) {
	var mode byte
	switch c.op {
	case ir.CastZExt:
		mode = 'z'
	case ir.CastSExt:
		mode = 's'
	default:
		return "", fmt.Errorf("no assembly for %s", c.op)
	}
	from, err := sizeSuffix(c.from)
	if err != nil {
		return "", err
	}
	to, err := sizeSuffix(c.to)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("mov%c%c%c $1, $0;", mode, from, to), nil
}

// sizeSuffix is the AT&T operand size letter of an integer width.
func sizeSuffix(bits uint32) (byte, error) {
	switch bits {
	case 8:
		return 'b', nil
	case 16:
		return 'w', nil
	case 32:
		return 'l', nil
	case 64:
		return 'q', nil
	}
	return 0, fmt.Errorf("no operand size for i%d", bits)
}
