// Package ir holds the in-memory module model: symbols, constants,
// functions with owned block arrays, globals, attributes and metadata.
package ir

import (
	"irforge/internal/layout"
	"irforge/internal/types"
)

// Module is the root container. Functions, globals and aliases are kept in
// registration order, which is also the emission order.
type Module struct {
	Types   *types.Interner
	Target  layout.Target
	Symbols *Symbols

	NamedTypes []types.TypeID
	Globals    []*Global
	Aliases    []*Alias
	Funcs      []*Function

	Metadata Metadata
}

// NewModule creates an empty module for the x86-64 target.
func NewModule(in *types.Interner) *Module {
	if in == nil {
		in = types.NewInterner()
	}
	return &Module{
		Types:   in,
		Target:  layout.X86_64LinuxGNU(),
		Symbols: &Symbols{},
	}
}

// Symbol returns the symbol for id.
func (m *Module) Symbol(id ValueID) (Symbol, bool) {
	return m.Symbols.Lookup(id)
}

// TypeOf returns the type of a registered value.
func (m *Module) TypeOf(id ValueID) types.TypeID {
	sym, ok := m.Symbols.Lookup(id)
	if !ok {
		return types.NoTypeID
	}
	return sym.Type
}

// HasNamedType reports whether id is already listed in NamedTypes.
func (m *Module) HasNamedType(id types.TypeID) bool {
	for _, t := range m.NamedTypes {
		if t == id {
			return true
		}
	}
	return false
}

// FindFunc returns the first function with the given name and type.
func (m *Module) FindFunc(name string, fnType types.TypeID) (*Function, bool) {
	for _, f := range m.Funcs {
		if f.Name == name && f.Type == fnType {
			return f, true
		}
	}
	return nil, false
}

// RemapBlockAddresses shifts blockaddress constants that point into fn
// after blocks were inserted at position at.
func (m *Module) RemapBlockAddresses(fn ValueID, at BlockID, n int) {
	m.Symbols.mu.Lock()
	defer m.Symbols.mu.Unlock()
	for i := range m.Symbols.syms {
		c := m.Symbols.syms[i].Const
		if c == nil || c.Kind != ConstBlockAddress || c.Func != fn {
			continue
		}
		if c.Block >= at {
			c.Block += BlockIDOf(n)
		}
	}
}
