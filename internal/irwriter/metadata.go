package irwriter

import (
	"strconv"
	"strings"

	"irforge/internal/ir"
	"irforge/internal/numeric"
)

// mdTable hoists metadata nodes into the epilogue. Structurally equal
// uniqued nodes share one slot; distinct nodes always get their own.
// Slots are assigned on first reference, parent before children.
type mdTable struct {
	e  *Emitter
	md *ir.Metadata

	canon    map[ir.MDID]ir.MDID
	byKey    map[string]ir.MDID
	visiting map[ir.MDID]bool

	slot  map[ir.MDID]int
	order []ir.MDID
}

func newMDTable(e *Emitter) *mdTable {
	return &mdTable{
		e:        e,
		md:       &e.mod.Metadata,
		canon:    make(map[ir.MDID]ir.MDID),
		byKey:    make(map[string]ir.MDID),
		visiting: make(map[ir.MDID]bool),
		slot:     make(map[ir.MDID]int),
	}
}

// numberModule assigns slots in reading order: named metadata first, then
// function and instruction attachments.
func (t *mdTable) numberModule() {
	for _, nm := range t.md.Named {
		for _, id := range nm.Nodes {
			t.ref(id)
		}
	}
	for _, f := range t.e.mod.Funcs {
		for _, a := range f.MD {
			t.ref(a.Node)
		}
		for _, b := range f.Blocks.All() {
			for i := range b.Instrs {
				for _, a := range b.Instrs[i].MD {
					t.ref(a.Node)
				}
			}
		}
	}
}

// canonical returns the representative of id's equivalence class. A node
// reached again while its own key is being built stands for itself.
func (t *mdTable) canonical(id ir.MDID) ir.MDID {
	if r, ok := t.canon[id]; ok {
		return r
	}
	n, ok := t.md.Node(id)
	if !ok {
		return id
	}
	if n.Distinct || t.visiting[id] {
		if n.Distinct {
			t.canon[id] = id
		}
		return id
	}
	t.visiting[id] = true
	key := t.key(n)
	delete(t.visiting, id)
	if r, ok := t.byKey[key]; ok {
		t.canon[id] = r
		return r
	}
	t.byKey[key] = id
	t.canon[id] = id
	return id
}

func (t *mdTable) childKey(id ir.MDID) string {
	if id == ir.NoMDID {
		return "null"
	}
	if n, ok := t.md.Node(id); ok && n.Inline() {
		return t.inline(n)
	}
	return "!" + strconv.Itoa(int(t.canonical(id)))
}

func (t *mdTable) key(n *ir.MDNode) string {
	var sb strings.Builder
	sb.WriteString(n.Kind.String())
	sb.WriteByte('|')
	sb.WriteString(n.DIName)
	for _, el := range n.Elems {
		sb.WriteByte('|')
		sb.WriteString(t.childKey(el))
	}
	for _, f := range n.Fields {
		sb.WriteByte('|')
		sb.WriteString(f.Key)
		sb.WriteByte('=')
		if f.Kind == ir.FieldRef {
			sb.WriteString(t.childKey(f.Ref))
		} else {
			sb.WriteString(t.field(f))
		}
	}
	return sb.String()
}

// ref returns the textual reference to id, allocating slots as needed.
func (t *mdTable) ref(id ir.MDID) string {
	if id == ir.NoMDID {
		return "null"
	}
	n, ok := t.md.Node(id)
	if !ok {
		return "null"
	}
	if n.Inline() {
		return t.inline(n)
	}
	r := t.canonical(id)
	if s, ok := t.slot[r]; ok {
		return "!" + strconv.Itoa(s)
	}
	s := len(t.order)
	t.slot[r] = s
	t.order = append(t.order, r)
	rn, _ := t.md.Node(r)
	for _, el := range rn.Elems {
		t.ref(el)
	}
	for _, f := range rn.Fields {
		if f.Kind == ir.FieldRef {
			t.ref(f.Ref)
		}
	}
	return "!" + strconv.Itoa(s)
}

func (t *mdTable) inline(n *ir.MDNode) string {
	if n.Kind == ir.MDString {
		return `!"` + numeric.EscapeBytes([]byte(n.Str)) + `"`
	}
	return t.e.typed(n.Value)
}

func (t *mdTable) field(f ir.MDField) string {
	switch f.Kind {
	case ir.FieldInt:
		return strconv.FormatInt(f.Int, 10)
	case ir.FieldBool:
		return strconv.FormatBool(f.Bool)
	case ir.FieldString:
		return `"` + numeric.EscapeBytes([]byte(f.Raw)) + `"`
	case ir.FieldRef:
		return t.ref(f.Ref)
	default:
		return f.Raw
	}
}

func (t *mdTable) node(n *ir.MDNode) string {
	prefix := ""
	if n.Distinct {
		prefix = "distinct "
	}
	switch n.Kind {
	case ir.MDTuple:
		elems := make([]string, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = t.ref(el)
		}
		return prefix + "!{" + strings.Join(elems, ", ") + "}"
	case ir.MDDebug:
		fields := make([]string, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = f.Key + ": " + t.field(f)
		}
		return prefix + "!" + n.DIName + "(" + strings.Join(fields, ", ") + ")"
	case ir.MDPlaceholder:
		return "!{} ; TODO: " + n.DIName
	default:
		return t.inline(n)
	}
}

func (t *mdTable) emit() {
	out := t.e.out
	if len(t.md.Named) > 0 {
		out.blank()
		for _, nm := range t.md.Named {
			refs := make([]string, len(nm.Nodes))
			for i, id := range nm.Nodes {
				refs[i] = t.ref(id)
			}
			out.line("!" + nm.Name + " = !{" + strings.Join(refs, ", ") + "}")
		}
	}
	if len(t.order) == 0 {
		return
	}
	out.blank()
	// Children are numbered with their parents; rendering adds no slots.
	for i := 0; i < len(t.order); i++ {
		n, _ := t.md.Node(t.order[i])
		out.line("!" + strconv.Itoa(i) + " = " + t.node(n))
	}
}
