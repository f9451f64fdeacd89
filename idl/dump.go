package idl

import (
	"fmt"
	"io"
	"strings"
)

// Dump prints an indented, one-line-per-node view of the tree.
func Dump(w io.Writer, t *Tree) error {
	for _, n := range t.Definitions {
		if err := dumpNode(w, 0, n); err != nil {
			return err
		}
	}
	return nil
}

func dumpNode(w io.Writer, depth int, n *Node) error {
	if n == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), describe(n)); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := dumpNode(w, depth+1, c); err != nil {
			return err
		}
	}
	return nil
}

func describe(n *Node) string {
	switch {
	case n.Kind == KindModule:
		return n.Name + ": MODULE"
	case n.Kind.IsConstructed() && n.Declarator == "":
		return n.Name + ": CONSTRUCTED TYPE " + strings.ToUpper(n.Kind.String())
	case n.Kind.IsTemplate():
		return n.Label() + ": TEMPLATE TYPE " + strings.ToUpper(n.Kind.String())
	case n.Kind == KindScopedName:
		return n.Declarator + ": SCOPED NAME " + n.Name
	case n.Kind.IsBase():
		return n.Declarator + ": " + baseLabel(n.Kind)
	default:
		return n.Label() + ": UNKNOWN"
	}
}

func baseLabel(k Kind) string {
	switch k {
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return "INT_" + strings.TrimPrefix(k.String(), "int")
	case KindUInt8, KindUInt16, KindUInt32, KindUInt64:
		return "UNSIGNED INT_" + strings.TrimPrefix(k.String(), "uint")
	case KindFloat:
		return "FLOAT_32"
	case KindDouble, KindLongDouble:
		return "FLOAT_64"
	default:
		return strings.ToUpper(k.String())
	}
}
