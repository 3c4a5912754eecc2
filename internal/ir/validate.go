package ir

import (
	"errors"
	"fmt"

	"irforge/internal/types"
)

// Validate checks module invariants the builder relies on: every operand is
// registered, block references are in range, phi nodes are well formed and
// every block of a definition is terminated.
func Validate(m *Module) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, f := range m.Funcs {
		if f == nil || !f.IsDefinition() {
			continue
		}
		if err := validateFunc(m, f); err != nil {
			errs = append(errs, fmt.Errorf("function @%s: %w", f.Name, err))
		}
	}
	for _, g := range m.Globals {
		if g.Init == NoValueID {
			continue
		}
		if _, ok := m.Symbols.Lookup(g.Init); !ok {
			errs = append(errs, fmt.Errorf("global @%s: initializer %%%d not registered", g.Name, g.Init))
		}
	}
	return errors.Join(errs...)
}

func validateFunc(m *Module, f *Function) error {
	var errs []error

	if err := validateBlocksTerminated(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateBlockTargets(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateOperands(m, f); err != nil {
		errs = append(errs, err)
	}
	if err := validatePhis(m, f); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// validateBlocksTerminated checks that every block ends with a terminator.
func validateBlocksTerminated(f *Function) error {
	var errs []error
	for i, b := range f.Blocks.All() {
		if !b.Terminated() {
			errs = append(errs, fmt.Errorf("bb%d: unterminated block", i))
		}
	}
	return errors.Join(errs...)
}

// validateBlockTargets checks that all referenced blocks exist.
func validateBlockTargets(f *Function) error {
	var errs []error
	n := f.Blocks.Len()
	for bi, b := range f.Blocks.All() {
		for ii := range b.Instrs {
			for _, target := range b.Instrs[ii].Successors() {
				if target < 0 || int(target) >= n {
					errs = append(errs, fmt.Errorf("bb%d instr %d: block %d out of range (have %d)", bi, ii, target, n))
				}
			}
		}
	}
	return errors.Join(errs...)
}

func validateOperands(m *Module, f *Function) error {
	var errs []error
	for bi, b := range f.Blocks.All() {
		for ii := range b.Instrs {
			for _, op := range b.Instrs[ii].Operands() {
				if _, ok := m.Symbols.Lookup(op); !ok {
					errs = append(errs, fmt.Errorf("bb%d instr %d: operand %d not registered", bi, ii, op))
				}
			}
		}
	}
	return errors.Join(errs...)
}

func validatePhis(m *Module, f *Function) error {
	var errs []error
	for bi, b := range f.Blocks.All() {
		for ii := range b.Instrs {
			in := &b.Instrs[ii]
			if in.Kind != InstrPhi {
				continue
			}
			if len(in.Phi.Incoming) == 0 {
				errs = append(errs, fmt.Errorf("bb%d instr %d: phi without incoming values", bi, ii))
			}
			for _, inc := range in.Phi.Incoming {
				sym, ok := m.Symbols.Lookup(inc.Value)
				if ok && sym.Type != in.Type && sym.Type != types.NoTypeID {
					errs = append(errs, fmt.Errorf("bb%d instr %d: phi incoming %s, want %s",
						bi, ii, m.Types.Format(sym.Type), m.Types.Format(in.Type)))
				}
			}
		}
	}
	return errors.Join(errs...)
}
