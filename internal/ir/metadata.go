package ir

import (
	"fmt"

	"fortio.org/safecast"
)

// MDKind enumerates metadata node kinds.
type MDKind uint8

const (
	MDTuple MDKind = iota
	MDString
	MDValue
	// MDDebug is a specialized !DIxxx(...) node.
	MDDebug
	// MDPlaceholder stands for kinds without a textual rendering.
	MDPlaceholder
)

// MDFieldKind selects how a DI field value is printed.
type MDFieldKind uint8

const (
	// FieldRaw is printed verbatim, e.g. DW_TAG_member.
	FieldRaw MDFieldKind = iota
	FieldInt
	FieldBool
	FieldString
	FieldRef
)

// MDField is one key: value pair of a specialized node.
type MDField struct {
	Key  string
	Kind MDFieldKind
	Raw  string
	Int  int64
	Bool bool
	Ref  MDID
}

// MDNode is a metadata node. Tuples reference their elements by MDID;
// NoMDID elements print as null.
type MDNode struct {
	Kind     MDKind
	Distinct bool

	Elems  []MDID
	Str    string
	Value  ValueID
	DIName string // DICompileUnit, DIFile, ...; placeholder kind name for MDPlaceholder
	Fields []MDField
}

// NamedMD is a !name = !{...} entry.
type NamedMD struct {
	Name  string
	Nodes []MDID
}

// MDAttachment attaches a node to an instruction, e.g. !dbg.
type MDAttachment struct {
	Kind string
	Node MDID
}

// Inline reports nodes printed in place instead of being hoisted.
func (n *MDNode) Inline() bool {
	return n.Kind == MDString || n.Kind == MDValue
}

func RawField(key, v string) MDField { return MDField{Key: key, Kind: FieldRaw, Raw: v} }

func IntField(key string, v int64) MDField { return MDField{Key: key, Kind: FieldInt, Int: v} }

func BoolField(key string, v bool) MDField { return MDField{Key: key, Kind: FieldBool, Bool: v} }

func StrField(key, v string) MDField { return MDField{Key: key, Kind: FieldString, Raw: v} }

func RefField(key string, ref MDID) MDField { return MDField{Key: key, Kind: FieldRef, Ref: ref} }

// Metadata owns the module's metadata nodes.
type Metadata struct {
	Nodes []MDNode
	Named []NamedMD
}

// Add appends a node and returns its id.
func (md *Metadata) Add(n MDNode) MDID {
	id, err := safecast.Conv[int32](len(md.Nodes))
	if err != nil {
		panic(fmt.Errorf("metadata table overflow: %w", err))
	}
	md.Nodes = append(md.Nodes, n)
	return MDID(id)
}

// Node returns the node with the given id.
func (md *Metadata) Node(id MDID) (*MDNode, bool) {
	if id < 0 || int(id) >= len(md.Nodes) {
		return nil, false
	}
	return &md.Nodes[id], true
}

// AddNamed appends refs to the named node, creating it on first use.
func (md *Metadata) AddNamed(name string, refs ...MDID) {
	for i := range md.Named {
		if md.Named[i].Name == name {
			md.Named[i].Nodes = append(md.Named[i].Nodes, refs...)
			return
		}
	}
	md.Named = append(md.Named, NamedMD{Name: name, Nodes: append([]MDID(nil), refs...)})
}

func (k MDKind) String() string {
	switch k {
	case MDTuple:
		return "tuple"
	case MDString:
		return "string"
	case MDValue:
		return "value"
	case MDDebug:
		return "debug"
	case MDPlaceholder:
		return "placeholder"
	default:
		return fmt.Sprintf("MDKind(%d)", k)
	}
}
