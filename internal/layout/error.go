package layout

import (
	"fmt"
	"strings"

	"irforge/internal/types"
)

// LayoutErrorKind classifies layout failures.
type LayoutErrorKind uint8

const (
	// LayoutErrRecursiveUnsized is a struct that contains itself by value.
	LayoutErrRecursiveUnsized LayoutErrorKind = iota + 1
	// LayoutErrLengthConversion is an array or vector count that does not
	// fit a size in bytes.
	LayoutErrLengthConversion
	// LayoutErrUnsized is a type without storage: void, label, function
	// or opaque struct.
	LayoutErrUnsized
)

// LayoutError reports a type whose size cannot be computed. Names holds
// the IR spelling of Type and Cycle when the engine could format them.
type LayoutError struct {
	Kind  LayoutErrorKind
	Type  types.TypeID
	Cycle []types.TypeID
	Err   error

	Names map[types.TypeID]string
}

func (e *LayoutError) name(id types.TypeID) string {
	if n, ok := e.Names[id]; ok {
		return n
	}
	return fmt.Sprintf("type#%d", id)
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case LayoutErrRecursiveUnsized:
		msg := fmt.Sprintf("%s contains itself by value", e.name(e.Type))
		if len(e.Cycle) > 1 {
			parts := make([]string, len(e.Cycle))
			for i, id := range e.Cycle {
				parts[i] = e.name(id)
			}
			msg += " (" + strings.Join(parts, " -> ") + ")"
		}
		return msg
	case LayoutErrLengthConversion:
		return fmt.Sprintf("element count of %s does not fit a size: %v", e.name(e.Type), e.Err)
	case LayoutErrUnsized:
		return fmt.Sprintf("%s has no size", e.name(e.Type))
	}
	return fmt.Sprintf("layout error kind=%d for %s", e.Kind, e.name(e.Type))
}

func (e *LayoutError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// named returns a copy of e with Names filled from in, leaving the
// cached error untouched.
func (e *LayoutError) named(in *types.Interner) *LayoutError {
	if e == nil || in == nil {
		return e
	}
	out := *e
	out.Names = make(map[types.TypeID]string, len(e.Cycle)+1)
	for _, id := range append([]types.TypeID{e.Type}, e.Cycle...) {
		out.Names[id] = in.Format(id)
	}
	return &out
}
