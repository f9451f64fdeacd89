package streamer

import (
	"strings"

	"github.com/wippyai/cdr-streamer/idl"
)

// Mangler maps IDL identifiers to target-language identifiers.
type Mangler interface {
	Mangle(name string) string
}

// ManglerFunc adapts a function to Mangler.
type ManglerFunc func(string) string

func (f ManglerFunc) Mangle(name string) string { return f(name) }

// CXXPrefix is prepended to identifiers colliding with C++ keywords.
const CXXPrefix = "_cxx_"

// CXX is the default mangler: C++11 keywords get CXXPrefix, everything else
// passes through.
var CXX Mangler = ManglerFunc(func(name string) string {
	if _, ok := cxxKeywords[name]; ok {
		return CXXPrefix + name
	}
	return name
})

var cxxKeywords = map[string]struct{}{}

func init() {
	for _, kw := range strings.Fields(`
		alignas alignof and and_eq asm auto bitand bitor bool break case catch
		char char16_t char32_t class compl const constexpr const_cast continue
		decltype default delete do double dynamic_cast else enum explicit export
		extern false float for friend goto if inline int long mutable namespace
		new noexcept not not_eq nullptr operator or or_eq private protected public
		register reinterpret_cast return short signed sizeof static static_assert
		static_cast struct switch template this thread_local throw true try
		typedef typeid typename union unsigned using virtual void volatile
		wchar_t while xor xor_eq`) {
		cxxKeywords[kw] = struct{}{}
	}
}

// scopedName mangles every segment of a scoped reference and keeps a leading "::".
func scopedName(m Mangler, ref string) string {
	parts, abs := idl.SplitScoped(ref)
	for i, p := range parts {
		parts[i] = m.Mangle(p)
	}
	out := strings.Join(parts, "::")
	if abs {
		out = "::" + out
	}
	return out
}

// readSizeName names the read-size procedure of the referenced type.
func readSizeName(m Mangler, ref string) string {
	return scopedName(m, ref) + "_read_size"
}
