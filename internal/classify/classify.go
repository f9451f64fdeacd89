// Package classify maps type tree nodes to their marshalling category and byte width.
package classify

import (
	"github.com/wippyai/cdr-streamer/errors"
	"github.com/wippyai/cdr-streamer/idl"
)

type Category uint8

const (
	CategoryInvalid Category = iota
	CategoryPrimitive
	CategoryInstance
	CategoryTemplate
	CategoryModule
	CategoryConstructed
)

var categoryNames = [...]string{
	CategoryInvalid:     "invalid",
	CategoryPrimitive:   "primitive",
	CategoryInstance:    "instance",
	CategoryTemplate:    "template",
	CategoryModule:      "module",
	CategoryConstructed: "constructed",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// Descriptor is computed per node on demand and never stored in the tree.
type Descriptor struct {
	Kind     idl.Kind
	Category Category

	// Width is the fixed wire width in bytes for primitives, 0 otherwise.
	Width uint32
}

// Width returns the wire width of a base kind.
func Width(k idl.Kind) (uint32, bool) {
	switch k {
	case idl.KindOctet, idl.KindChar, idl.KindWChar, idl.KindBool, idl.KindInt8, idl.KindUInt8:
		return 1, true
	case idl.KindInt16, idl.KindUInt16:
		return 2, true
	case idl.KindInt32, idl.KindUInt32, idl.KindFloat:
		return 4, true
	case idl.KindInt64, idl.KindUInt64, idl.KindDouble, idl.KindLongDouble:
		return 8, true
	default:
		return 0, false
	}
}

// Describe classifies n. Any kind outside the closed set is an invalid tree.
func Describe(n *idl.Node) (Descriptor, error) {
	if n == nil {
		return Descriptor{}, errors.InvalidTree(errors.PhaseClassify, nil, "nil node")
	}
	d := Descriptor{Kind: n.Kind}
	switch n.Kind {
	case idl.KindModule:
		d.Category = CategoryModule
	case idl.KindStruct, idl.KindUnion, idl.KindEnum:
		d.Category = CategoryConstructed
	case idl.KindSequence, idl.KindString, idl.KindWString, idl.KindFixed:
		d.Category = CategoryTemplate
	case idl.KindScopedName:
		if n.Name == "" {
			return Descriptor{}, errors.InvalidTree(errors.PhaseClassify, []string{n.Label()}, "scoped name without referenced type")
		}
		d.Category = CategoryInstance
	case idl.KindInt8, idl.KindUInt8, idl.KindInt16, idl.KindUInt16,
		idl.KindInt32, idl.KindUInt32, idl.KindInt64, idl.KindUInt64,
		idl.KindFloat, idl.KindDouble, idl.KindLongDouble,
		idl.KindChar, idl.KindWChar, idl.KindBool, idl.KindOctet:
		d.Category = CategoryPrimitive
		d.Width, _ = Width(n.Kind)
	default:
		return Descriptor{}, errors.New(errors.PhaseClassify, errors.KindInvalidTree).
			Path(n.Label()).
			IDLType(n.Kind.String()).
			Detail("node kind %d matches no category", uint8(n.Kind)).
			Build()
	}
	return d, nil
}

// Definition classifies a node at root or module level. path is the enclosing
// module chain. Modules and constructed types need a name; primitives,
// instances and template types there are members outside a struct.
func Definition(phase errors.Phase, path []string, n *idl.Node) (Descriptor, error) {
	d, err := Describe(n)
	if err != nil {
		return d, err
	}
	switch d.Category {
	case CategoryModule, CategoryConstructed:
		if n.Name == "" {
			return d, errors.InvalidTree(phase, path, n.Kind.String()+" without name")
		}
	case CategoryPrimitive, CategoryInstance, CategoryTemplate:
		return d, errors.New(phase, errors.KindInvalidTree).
			Path(join(path, n.Label())...).
			IDLType(n.Kind.String()).
			Detail("member outside a struct").
			Build()
	default:
		return d, errors.InvalidTree(phase, join(path, n.Label()), "unrecognized node category "+d.Category.String())
	}
	return d, nil
}

// Member classifies a struct member. structPath names the struct.
func Member(phase errors.Phase, structPath []string, m *idl.Node) (Descriptor, error) {
	d, err := Describe(m)
	if err != nil {
		return d, err
	}
	if m.Declarator == "" {
		return d, errors.New(phase, errors.KindInvalidTree).
			Path(structPath...).
			IDLType(m.Kind.String()).
			Detail("member without declarator").
			Build()
	}
	switch d.Category {
	case CategoryPrimitive, CategoryInstance, CategoryTemplate, CategoryConstructed:
		return d, nil
	case CategoryModule:
		return d, errors.InvalidTree(phase, join(structPath, m.Declarator), "module inside a struct")
	default:
		return d, errors.InvalidTree(phase, join(structPath, m.Declarator), "unrecognized member category "+d.Category.String())
	}
}

func join(path []string, name string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, name)
}
