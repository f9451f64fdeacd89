package idl

import "strings"

// Node is one element of the type tree.
type Node struct {
	Kind       Kind    `yaml:"kind"`
	Name       string  `yaml:"name,omitempty"`
	Declarator string  `yaml:"declarator,omitempty"`
	Children   []*Node `yaml:"children,omitempty"`
}

// Tree holds the top-level definitions of one IDL specification in declaration order.
type Tree struct {
	Definitions []*Node `yaml:"definitions"`
}

// NewTree builds a tree from top-level definitions.
func NewTree(defs ...*Node) *Tree {
	return &Tree{Definitions: defs}
}

func Module(name string, defs ...*Node) *Node {
	return &Node{Kind: KindModule, Name: name, Children: defs}
}

func Struct(name string, members ...*Node) *Node {
	return &Node{Kind: KindStruct, Name: name, Children: members}
}

func Union(name string) *Node {
	return &Node{Kind: KindUnion, Name: name}
}

func Enum(name string) *Node {
	return &Node{Kind: KindEnum, Name: name}
}

// Member declares a struct member of a base or template kind.
func Member(kind Kind, declarator string) *Node {
	return &Node{Kind: kind, Declarator: declarator}
}

// Instance declares a member typed by the constructed type ref.
func Instance(ref, declarator string) *Node {
	return &Node{Kind: KindScopedName, Name: ref, Declarator: declarator}
}

// Sequence declares a sequence member with the given element type.
func Sequence(elem *Node, declarator string) *Node {
	return &Node{Kind: KindSequence, Declarator: declarator, Children: []*Node{elem}}
}

// Label names the node for paths and diagnostics: the declarator for members,
// the type name otherwise.
func (n *Node) Label() string {
	if n.Declarator != "" {
		return n.Declarator
	}
	return n.Name
}

// HasChildren reports whether n has at least one child.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// SplitScoped splits "A::B::C" (optionally "::"-prefixed) into its parts and
// reports whether the name was absolute.
func SplitScoped(name string) ([]string, bool) {
	abs := strings.HasPrefix(name, "::")
	name = strings.TrimPrefix(name, "::")
	if name == "" {
		return nil, abs
	}
	return strings.Split(name, "::"), abs
}

// JoinScoped is the inverse of SplitScoped for relative names.
func JoinScoped(parts ...string) string {
	return strings.Join(parts, "::")
}
