package fixtures

import (
	"fmt"

	"irforge/internal/ir"
	"irforge/internal/irbuilder"
	"irforge/internal/types"
)

// gen carries one module under construction. Builder failures abort the
// whole program: v and ok panic with a failure that build recovers.
type gen struct {
	mb *irbuilder.ModuleBuilder
	in *types.Interner
	t  types.Builtins
}

type failure struct{ err error }

// body is one function definition being filled in.
type body struct {
	f *ir.Function
	b *irbuilder.Builder
	s *irbuilder.Simple
}

// build runs program against a fresh module and validates the result.
func build(program func(g *gen)) (m *ir.Module, err error) {
	mb := irbuilder.NewModuleBuilder()
	g := &gen{mb: mb, in: mb.Types(), t: mb.Types().Builtins()}
	defer func() {
		if r := recover(); r != nil {
			f, ok := r.(failure)
			if !ok {
				panic(r)
			}
			m, err = nil, f.err
		}
	}()
	program(g)
	if err := ir.Validate(mb.Module()); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return mb.Module(), nil
}

// lazy wraps a program as a Case builder.
func lazy(program func(g *gen)) func() (*ir.Module, error) {
	return func() (*ir.Module, error) { return build(program) }
}

func (g *gen) ok(err error) {
	if err != nil {
		panic(failure{err})
	}
}

func (g *gen) v(id ir.ValueID, err error) ir.ValueID {
	g.ok(err)
	return id
}

func (g *gen) md(id ir.MDID, err error) ir.MDID {
	g.ok(err)
	return id
}

func (g *gen) typ(id types.TypeID, err error) types.TypeID {
	g.ok(err)
	return id
}

func (g *gen) fn(result types.TypeID, params ...types.TypeID) types.TypeID {
	return g.in.Func(result, false, params...)
}

// define starts a definition with one pre-allocated block.
func (g *gen) define(name string, fnType types.TypeID) *body {
	f, err := g.mb.DefineFunction(name, 1, fnType)
	g.ok(err)
	b, err := irbuilder.New(g.mb, f)
	g.ok(err)
	return &body{f: f, b: b, s: irbuilder.NewSimple(b)}
}

// mainI1 starts "define i1 @main()"; false means success.
func (g *gen) mainI1() *body {
	return g.define("main", g.fn(g.t.I1))
}

// lastBlock is the index of the final block of the function.
func (fb *body) lastBlock() ir.BlockID {
	return ir.BlockIDOf(fb.f.Blocks.Len() - 1)
}

func val(id ir.ValueID) irbuilder.Operand { return irbuilder.V(id) }
func num(v int64) irbuilder.Operand       { return irbuilder.Int(v) }
