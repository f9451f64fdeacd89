package idl

import (
	"github.com/wippyai/cdr-streamer/errors"
)

// Index resolves scoped names to constructed type definitions.
type Index struct {
	defs map[string]*Node
}

// NewIndex records every constructed type of the tree under its fully scoped name.
// A name defined twice is reported as an invalid tree.
func NewIndex(t *Tree) (*Index, error) {
	idx := &Index{defs: make(map[string]*Node)}
	if t == nil {
		return idx, nil
	}
	if err := idx.add(nil, t.Definitions); err != nil {
		return nil, err
	}
	return idx, nil
}

func (idx *Index) add(scope []string, nodes []*Node) error {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		switch {
		case n.Kind == KindModule:
			if err := idx.add(append(append([]string{}, scope...), n.Name), n.Children); err != nil {
				return err
			}
		case n.Kind.IsConstructed():
			full := JoinScoped(append(append([]string{}, scope...), n.Name)...)
			if _, dup := idx.defs[full]; dup {
				return errors.InvalidTree(errors.PhaseLoad, append(scope, n.Name), "duplicate definition "+full)
			}
			idx.defs[full] = n
		}
	}
	return nil
}

// Lookup resolves name as seen from the module path scope. Relative names are
// tried from the innermost enclosing module outward; names starting with "::"
// are absolute. It returns the definition and its fully scoped name.
func (idx *Index) Lookup(scope []string, name string) (*Node, string, bool) {
	parts, abs := SplitScoped(name)
	if len(parts) == 0 {
		return nil, "", false
	}
	if abs {
		full := JoinScoped(parts...)
		n, ok := idx.defs[full]
		return n, full, ok
	}
	for i := len(scope); i >= 0; i-- {
		full := JoinScoped(append(append([]string{}, scope[:i]...), parts...)...)
		if n, ok := idx.defs[full]; ok {
			return n, full, true
		}
	}
	return nil, "", false
}

// Structs returns the fully scoped names of all struct definitions, in tree order.
// Nil nodes are skipped; rejecting them is the walkers' job.
func (idx *Index) Structs(t *Tree) []string {
	var out []string
	var walk func(scope []string, nodes []*Node)
	walk = func(scope []string, nodes []*Node) {
		for _, n := range nodes {
			if n == nil {
				continue
			}
			switch n.Kind {
			case KindModule:
				walk(append(append([]string{}, scope...), n.Name), n.Children)
			case KindStruct:
				out = append(out, JoinScoped(append(append([]string{}, scope...), n.Name)...))
			}
		}
	}
	if t != nil {
		walk(nil, t.Definitions)
	}
	return out
}

// Len returns the number of indexed definitions.
func (idx *Index) Len() int {
	return len(idx.defs)
}
