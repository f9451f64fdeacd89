// Package witsource builds type trees from WIT type definitions.
//
// Records become structs, enums and flags become enums, variants become
// unions. Record fields map as follows:
//
//	u8 -> octet    s8 -> int8
//	u16 -> uint16  s16 -> int16
//	u32 -> uint32  s32 -> int32
//	u64 -> uint64  s64 -> int64
//	f32 -> float   f64 -> double
//	bool -> boolean char -> wchar
//	string -> string
//	list<T> -> sequence of T
//	named record, enum, flags or variant -> scoped name reference
//
// Type aliases are followed. Options, results, tuples and handles have no
// counterpart; fields of those types are dropped and reported.
package witsource

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/cdr-streamer/errors"
	"github.com/wippyai/cdr-streamer/idl"
)

// Converter maps WIT definitions and collects what it could not map.
type Converter struct {
	Diagnostics errors.Diagnostics
	refs        map[*wit.TypeDef]string
}

func NewConverter() *Converter {
	return &Converter{refs: make(map[*wit.TypeDef]string)}
}

// Identifier turns a kebab-case WIT name into an IDL identifier.
func Identifier(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// FromTypeDefs converts defs into a tree with a single module.
func FromTypeDefs(module string, defs []*wit.TypeDef) (*idl.Tree, errors.Diagnostics, error) {
	c := NewConverter()
	for _, td := range defs {
		if td != nil && td.Name != nil {
			c.refs[td] = Identifier(*td.Name)
		}
	}
	mod, err := c.Module(Identifier(module), defs)
	if err != nil {
		return nil, c.Diagnostics, err
	}
	return idl.NewTree(mod), c.Diagnostics, nil
}

// FromResolve converts every named type of res, one module per owning
// interface or world, in order of first appearance.
func FromResolve(res *wit.Resolve) (*idl.Tree, errors.Diagnostics, error) {
	if res == nil {
		return nil, nil, errors.InvalidInput(errors.PhaseLoad, "nil WIT resolve")
	}

	c := NewConverter()
	var order []string
	groups := make(map[string][]*wit.TypeDef)
	for _, td := range res.TypeDefs {
		if td == nil || td.Name == nil {
			continue
		}
		mod := Identifier(ownerName(td))
		if _, seen := groups[mod]; !seen {
			order = append(order, mod)
		}
		groups[mod] = append(groups[mod], td)
		c.refs[td] = idl.JoinScoped(mod, Identifier(*td.Name))
	}

	tree := idl.NewTree()
	for _, name := range order {
		mod, err := c.Module(name, groups[name])
		if err != nil {
			return nil, c.Diagnostics, err
		}
		tree.Definitions = append(tree.Definitions, mod)
	}
	return tree, c.Diagnostics, nil
}

// LoadJSON decodes the JSON form of a resolved WIT package
// (wasm-tools component wit --json) and converts it.
func LoadJSON(r io.Reader) (*idl.Tree, errors.Diagnostics, error) {
	res, err := wit.DecodeJSON(r)
	if err != nil {
		return nil, nil, errors.ParseFailed("WIT JSON", err)
	}
	return FromResolve(res)
}

// LoadFile is LoadJSON on a file.
func LoadFile(path string) (*idl.Tree, errors.Diagnostics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.New(errors.PhaseLoad, errors.KindNotFound).
			Cause(err).
			Detail("open WIT document %s", path).
			Build()
	}
	defer f.Close()
	return LoadJSON(f)
}

func ownerName(td *wit.TypeDef) string {
	switch o := td.Owner.(type) {
	case *wit.Interface:
		if o.Name != nil {
			return *o.Name
		}
	case *wit.World:
		return o.Name
	}
	return "types"
}

// Module converts defs into one module node.
func (c *Converter) Module(name string, defs []*wit.TypeDef) (*idl.Node, error) {
	if name == "" {
		return nil, errors.InvalidInput(errors.PhaseLoad, "empty module name")
	}
	mod := idl.Module(name)
	for _, td := range defs {
		if td == nil || td.Name == nil {
			continue
		}
		n := c.definition(name, td)
		if n != nil {
			mod.Children = append(mod.Children, n)
		}
	}
	return mod, nil
}

func (c *Converter) definition(module string, td *wit.TypeDef) *idl.Node {
	name := Identifier(*td.Name)
	switch k := td.Kind.(type) {
	case *wit.Record:
		s := idl.Struct(name)
		for _, f := range k.Fields {
			path := []string{module, name, Identifier(f.Name)}
			if m, ok := c.member(Identifier(f.Name), f.Type, path); ok {
				s.Children = append(s.Children, m)
			}
		}
		return s
	case *wit.Enum, *wit.Flags:
		return idl.Enum(name)
	case *wit.Variant:
		return idl.Union(name)
	default:
		return nil
	}
}

func (c *Converter) member(decl string, t wit.Type, path []string) (*idl.Node, bool) {
	switch t := t.(type) {
	case wit.U8:
		return idl.Member(idl.KindOctet, decl), true
	case wit.S8:
		return idl.Member(idl.KindInt8, decl), true
	case wit.U16:
		return idl.Member(idl.KindUInt16, decl), true
	case wit.S16:
		return idl.Member(idl.KindInt16, decl), true
	case wit.U32:
		return idl.Member(idl.KindUInt32, decl), true
	case wit.S32:
		return idl.Member(idl.KindInt32, decl), true
	case wit.U64:
		return idl.Member(idl.KindUInt64, decl), true
	case wit.S64:
		return idl.Member(idl.KindInt64, decl), true
	case wit.F32:
		return idl.Member(idl.KindFloat, decl), true
	case wit.F64:
		return idl.Member(idl.KindDouble, decl), true
	case wit.Bool:
		return idl.Member(idl.KindBool, decl), true
	case wit.Char:
		return idl.Member(idl.KindWChar, decl), true
	case wit.String:
		return idl.Member(idl.KindString, decl), true
	case *wit.TypeDef:
		return c.typeDefMember(decl, t, path)
	default:
		c.skip(path, fmt.Sprintf("%T", t))
		return nil, false
	}
}

func (c *Converter) typeDefMember(decl string, td *wit.TypeDef, path []string) (*idl.Node, bool) {
	switch k := td.Kind.(type) {
	case *wit.Record, *wit.Enum, *wit.Flags, *wit.Variant:
		ref, ok := c.refs[td]
		if !ok {
			c.Diagnostics.Add(errors.New(errors.PhaseLoad, errors.KindNotFound).
				Path(path...).
				Detail("field references an unnamed or foreign %T", k).
				Build())
			return nil, false
		}
		return idl.Instance(ref, decl), true
	case *wit.List:
		elem, ok := c.member("", k.Type, path)
		if !ok {
			return nil, false
		}
		return idl.Sequence(elem, decl), true
	case *wit.TypeDef:
		return c.typeDefMember(decl, k, path)
	case wit.Type:
		return c.member(decl, k, path)
	default:
		c.skip(path, fmt.Sprintf("%T", k))
		return nil, false
	}
}

func (c *Converter) skip(path []string, witType string) {
	c.Diagnostics.Add(errors.Unsupported(errors.PhaseLoad, path, witType))
}
