package ir

import (
	"github.com/llir/llvm/ir/enum"

	"irforge/internal/types"
)

// Function is a declaration (no blocks) or a definition.
type Function struct {
	ID         ValueID
	Name       string
	Type       types.TypeID // function type, not the pointer to it
	Linkage    enum.Linkage
	Visibility enum.Visibility
	Declared   bool

	Params []ValueID
	Blocks Blocks
	Attrs  FuncAttrs

	Exited bool
	MD     []MDAttachment
}

// IsDefinition reports functions with a body.
func (f *Function) IsDefinition() bool {
	return f != nil && !f.Declared
}

// Block returns the block at i.
func (f *Function) Block(i BlockID) *Block {
	return f.Blocks.At(i)
}
