package ir

import (
	"github.com/llir/llvm/ir/enum"

	"irforge/internal/types"
)

// Global is a module-level variable or constant. Its symbol type is a
// pointer to ValueType.
type Global struct {
	ID         ValueID
	Name       string
	ValueType  types.TypeID
	Init       ValueID // NoValueID for external declarations
	Constant   bool
	Linkage    enum.Linkage
	Visibility enum.Visibility
	Align      uint8
}

// Alias is @name = alias of another global value.
type Alias struct {
	ID         ValueID
	Name       string
	Type       types.TypeID // pointer type of the alias
	Aliasee    ValueID
	Linkage    enum.Linkage
	Visibility enum.Visibility
}
