package ir

import (
	"fmt"
	"sync"

	"fortio.org/safecast"

	"irforge/internal/types"
)

// SymbolKind distinguishes what a ValueID refers to.
type SymbolKind uint8

const (
	SymConst SymbolKind = iota
	SymInstr
	SymParam
	SymFunc
	SymGlobal
	SymAlias
)

func (k SymbolKind) String() string {
	switch k {
	case SymConst:
		return "const"
	case SymInstr:
		return "instr"
	case SymParam:
		return "param"
	case SymFunc:
		return "func"
	case SymGlobal:
		return "global"
	case SymAlias:
		return "alias"
	default:
		return fmt.Sprintf("SymbolKind(%d)", k)
	}
}

// Symbol is anything an operand can reference.
type Symbol struct {
	Kind SymbolKind
	Type types.TypeID
	Name string // without sigil; empty for constants and not yet named values

	Const  *Constant
	Func   *Function
	Global *Global
	Alias  *Alias
}

// IsGlobal reports symbols printed with the @ sigil.
func (s Symbol) IsGlobal() bool {
	return s.Kind == SymFunc || s.Kind == SymGlobal || s.Kind == SymAlias
}

// Symbols is the module-wide append-only symbol table. Registration is
// serialized so builders for different functions may share one module.
type Symbols struct {
	mu   sync.Mutex
	syms []Symbol
}

// Register appends sym and returns its index. Indices are never reused and
// identical symbols are not merged.
func (s *Symbols) Register(sym Symbol) ValueID {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := safecast.Conv[int32](len(s.syms))
	if err != nil {
		panic(fmt.Errorf("symbol table overflow: %w", err))
	}
	s.syms = append(s.syms, sym)
	return ValueID(n)
}

// Lookup returns a copy of the symbol at id.
func (s *Symbols) Lookup(id ValueID) (Symbol, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 0 || int(id) >= len(s.syms) {
		return Symbol{}, false
	}
	return s.syms[id], true
}

// SetName assigns the name of an instruction result or parameter.
func (s *Symbols) SetName(id ValueID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id >= 0 && int(id) < len(s.syms) {
		s.syms[id].Name = name
	}
}

// Len returns the number of registered symbols.
func (s *Symbols) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.syms)
}
