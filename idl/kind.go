package idl

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type Kind uint8

const (
	KindInvalid Kind = iota
	KindModule
	KindStruct
	KindUnion
	KindEnum
	KindSequence
	KindString
	KindWString
	KindFixed
	KindInt8
	KindUInt8
	KindInt16
	KindUInt16
	KindInt32
	KindUInt32
	KindInt64
	KindUInt64
	KindFloat
	KindDouble
	KindLongDouble
	KindChar
	KindWChar
	KindBool
	KindOctet
	KindScopedName

	kindCount
)

var kindNames = [...]string{
	KindInvalid:    "invalid",
	KindModule:     "module",
	KindStruct:     "struct",
	KindUnion:      "union",
	KindEnum:       "enum",
	KindSequence:   "sequence",
	KindString:     "string",
	KindWString:    "wstring",
	KindFixed:      "fixed",
	KindInt8:       "int8",
	KindUInt8:      "uint8",
	KindInt16:      "int16",
	KindUInt16:     "uint16",
	KindInt32:      "int32",
	KindUInt32:     "uint32",
	KindInt64:      "int64",
	KindUInt64:     "uint64",
	KindFloat:      "float",
	KindDouble:     "double",
	KindLongDouble: "long_double",
	KindChar:       "char",
	KindWChar:      "wchar",
	KindBool:       "bool",
	KindOctet:      "octet",
	KindScopedName: "scoped_name",
}

// IDL spellings accepted in tree documents besides the canonical names.
var kindAliases = map[string]Kind{
	"short":              KindInt16,
	"unsigned short":     KindUInt16,
	"long":               KindInt32,
	"unsigned long":      KindUInt32,
	"long long":          KindInt64,
	"unsigned long long": KindUInt64,
	"long double":        KindLongDouble,
	"boolean":            KindBool,
	"byte":               KindOctet,
	"scoped":             KindScopedName,
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Kinds returns every valid kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := KindModule; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// ParseKind maps a canonical name or IDL spelling to its kind.
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	for k := KindModule; k < kindCount; k++ {
		if kindNames[k] == s {
			return k, true
		}
	}
	k, ok := kindAliases[s]
	return k, ok
}

func (k Kind) IsBase() bool {
	return k >= KindInt8 && k <= KindOctet
}

func (k Kind) IsTemplate() bool {
	return k >= KindSequence && k <= KindFixed
}

func (k Kind) IsConstructed() bool {
	return k >= KindStruct && k <= KindEnum
}

func (k Kind) IsSigned() bool {
	switch k {
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return true
	default:
		return false
	}
}

// MarshalYAML writes the canonical kind name.
func (k Kind) MarshalYAML() (any, error) {
	if k == KindInvalid || k >= kindCount {
		return nil, fmt.Errorf("cannot encode kind %d", uint8(k))
	}
	return k.String(), nil
}

// UnmarshalYAML accepts canonical names and IDL spellings.
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, ok := ParseKind(s)
	if !ok {
		return fmt.Errorf("line %d: unknown node kind %q", value.Line, s)
	}
	*k = parsed
	return nil
}
