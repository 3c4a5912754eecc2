package irwriter

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDialect is returned by ParseDialect for unsupported versions.
var ErrUnknownDialect = errors.New("unknown dialect")

// Dialect selects the textual syntax of one IR version. Each toggle covers
// one place where the versions disagree; everything else is shared.
type Dialect struct {
	Name string

	// AttrGroups prints function attributes as #N references with the
	// groups hoisted into the epilogue, preceded by a "; Function Attrs:"
	// comment. Otherwise attributes follow the parameter list inline.
	AttrGroups bool
	// Metadata enables attachments and the metadata table.
	Metadata bool
	// ExplicitPointee adds the pointee type to load and getelementptr.
	ExplicitPointee bool
	// CallPointerType spells the callee signature of a call as a pointer
	// type, "(i8*, ...)*", instead of a function type.
	CallPointerType bool
	// AliasPointee uses "@a = [linkage ]alias Pointee, T val" instead of
	// "@a = alias [linkage ]T val".
	AliasPointee bool
}

var (
	V32 = Dialect{
		Name:            "3.2",
		CallPointerType: true,
	}
	V38 = Dialect{
		Name:            "3.8",
		AttrGroups:      true,
		Metadata:        true,
		ExplicitPointee: true,
		AliasPointee:    true,
	}
)

// Dialects lists the supported versions, oldest first.
func Dialects() []Dialect {
	return []Dialect{V32, V38}
}

// ParseDialect maps a version string such as "3.8" or "v3.2" to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	v := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "v")
	for _, d := range Dialects() {
		if d.Name == v {
			return d, nil
		}
	}
	return Dialect{}, fmt.Errorf("%w %q (supported: 3.2, 3.8)", ErrUnknownDialect, s)
}

func (d Dialect) String() string {
	if d.Name == "" {
		return "custom"
	}
	return d.Name
}
