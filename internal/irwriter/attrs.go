package irwriter

import "irforge/internal/ir"

// attrGroups numbers distinct function attribute sets in first-use order.
type attrGroups struct {
	index map[string]int
	list  []ir.AttrSet
}

func newAttrGroups() *attrGroups {
	return &attrGroups{index: make(map[string]int)}
}

// id returns the group number of attrs, allocating one on first sight.
// Empty sets have no group.
func (g *attrGroups) id(attrs ir.AttrSet) int {
	if len(attrs) == 0 {
		return -1
	}
	key := attrs.Join()
	if n, ok := g.index[key]; ok {
		return n
	}
	n := len(g.list)
	g.index[key] = n
	g.list = append(g.list, attrs)
	return n
}

func (g *attrGroups) len() int {
	return len(g.list)
}
