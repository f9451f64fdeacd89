package streamer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	cerrors "github.com/wippyai/cdr-streamer/errors"
	"github.com/wippyai/cdr-streamer/idl"
)

func generate(t *testing.T, opts Options, tree *idl.Tree) (string, string, *Report) {
	t.Helper()
	var hdr, impl bytes.Buffer
	report, err := New(opts).Generate(tree, &hdr, &impl)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return hdr.String(), impl.String(), report
}

func errKind(err error) cerrors.Kind {
	var e *cerrors.Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func TestGenerateExact(t *testing.T) {
	tree := idl.NewTree(
		idl.Struct("S",
			idl.Member(idl.KindOctet, "a"),
			idl.Member(idl.KindInt32, "b"),
		),
	)

	hdr, impl, report := generate(t, Options{}, tree)

	wantHdr := "size_t write_struct(const S &write, void *data, size_t position);\n\n" +
		"size_t write_size(const S &write, size_t offset);\n\n" +
		"size_t read_struct(S &read, void *data, size_t position);\n\n" +
		"size_t S_read_size(void *data, size_t offset);\n\n"
	if hdr != wantHdr {
		t.Errorf("header:\n%s\nwant:\n%s", hdr, wantHdr)
	}

	wantImpl := `size_t write_struct(const S &write, void *data, size_t position)
{
  memcpy(static_cast<char*>(data)+position,&write.a(),1);  //bytes for member: a
  position += 1;  //moving position indicator
  size_t alignmentbytes = (4 - position%4)%4;  //alignment for: b
  memset(static_cast<char*>(data)+position,0x0,alignmentbytes);  //setting alignment bytes to 0x0
  position += alignmentbytes;  //moving position indicator
  memcpy(static_cast<char*>(data)+position,&write.b(),4);  //bytes for member: b
  position += 4;  //moving position indicator
  return position;
}

size_t write_size(const S &write, size_t offset)
{
  size_t position = offset;
  position += 1;  //bytes for member: a
  position += (4 - position%4)%4;  //alignment for: b
  position += 4;  //bytes for member: b
  return position-offset;
}

size_t read_struct(S &read, void *data, size_t position)
{
  memcpy(&read.a(),static_cast<char*>(data)+position,1);  //bytes for member: a
  position += 1;  //moving position indicator
  size_t alignmentbytes = (4 - position%4)%4;  //alignment for: b
  position += alignmentbytes;  //moving position indicator
  memcpy(&read.b(),static_cast<char*>(data)+position,4);  //bytes for member: b
  position += 4;  //moving position indicator
  return position;
}

size_t S_read_size(void *data, size_t offset)
{
  size_t position = offset;
  position += 1;  //bytes for member: a
  position += (4 - position%4)%4;  //alignment for: b
  position += 4;  //bytes for member: b
  return position-offset;
}

`
	if impl != wantImpl {
		t.Errorf("implementation:\n%s\nwant:\n%s", impl, wantImpl)
	}

	if report.Structs != 1 || report.Members != 2 || report.RuntimeAlignments != 1 {
		t.Errorf("report = %+v", report)
	}
	if report.HeaderBytes != len(hdr) || report.SourceBytes != len(impl) {
		t.Errorf("byte counts %d/%d, want %d/%d", report.HeaderBytes, report.SourceBytes, len(hdr), len(impl))
	}
}

func TestModuleNesting(t *testing.T) {
	tree := idl.NewTree(
		idl.Module("Outer",
			idl.Module("Inner",
				idl.Struct("S", idl.Member(idl.KindInt32, "x")),
			),
		),
	)

	hdr, impl, report := generate(t, Options{}, tree)

	wantHdr := "namespace Outer\n{\n\n" +
		"  namespace Inner\n  {\n\n" +
		"    size_t write_struct(const S &write, void *data, size_t position);\n\n" +
		"    size_t write_size(const S &write, size_t offset);\n\n" +
		"    size_t read_struct(S &read, void *data, size_t position);\n\n" +
		"    size_t S_read_size(void *data, size_t offset);\n\n" +
		"  }\n\n" +
		"}\n\n"
	if hdr != wantHdr {
		t.Errorf("header:\n%s\nwant:\n%s", hdr, wantHdr)
	}

	if !strings.HasPrefix(impl, "namespace Outer\n{\n\n  namespace Inner\n  {\n\n    size_t write_struct(const S &write") {
		t.Errorf("implementation prefix:\n%s", impl)
	}
	if !strings.HasSuffix(impl, "    return position-offset;\n    }\n\n  }\n\n}\n\n") {
		t.Errorf("implementation suffix:\n%s", impl)
	}
	if strings.Count(impl, "{") != strings.Count(impl, "}") {
		t.Error("unbalanced braces in implementation")
	}
	if report.Modules != 2 {
		t.Errorf("Modules = %d, want 2", report.Modules)
	}
}

func TestEmptyModuleEmitsNothing(t *testing.T) {
	hdr, impl, _ := generate(t, Options{}, idl.NewTree(idl.Module("Empty")))
	if hdr != "" || impl != "" {
		t.Errorf("got %q / %q", hdr, impl)
	}
}

func TestSiblingModulesKeepOrder(t *testing.T) {
	tree := idl.NewTree(
		idl.Module("A", idl.Struct("X", idl.Member(idl.KindOctet, "v"))),
		idl.Struct("Top", idl.Member(idl.KindOctet, "v")),
		idl.Module("B", idl.Struct("Y", idl.Member(idl.KindOctet, "v"))),
	)
	hdr, impl, _ := generate(t, Options{}, tree)

	for _, out := range []string{hdr, impl} {
		a := strings.Index(out, "namespace A")
		top := strings.Index(out, "Top &")
		b := strings.Index(out, "namespace B")
		if !(a >= 0 && a < top && top < b) {
			t.Errorf("order A=%d Top=%d B=%d in:\n%s", a, top, b, out)
		}
	}
}

func TestDeterministic(t *testing.T) {
	tree := idl.NewTree(
		idl.Module("M",
			idl.Struct("Inner", idl.Member(idl.KindInt16, "v")),
			idl.Struct("Outer",
				idl.Member(idl.KindInt8, "a"),
				idl.Instance("Inner", "in"),
				idl.Member(idl.KindDouble, "d"),
			),
		),
	)
	h1, i1, _ := generate(t, Options{}, tree)
	h2, i2, _ := generate(t, Options{}, tree)
	if h1 != h2 || i1 != i2 {
		t.Error("output differs between runs")
	}
}

func TestAllSingleByteStruct(t *testing.T) {
	tree := idl.NewTree(idl.Struct("B",
		idl.Member(idl.KindOctet, "a"),
		idl.Member(idl.KindChar, "b"),
		idl.Member(idl.KindBool, "c"),
	))
	_, impl, report := generate(t, Options{}, tree)

	if strings.Contains(impl, "alignment") || strings.Contains(impl, "padding") {
		t.Errorf("unexpected alignment text:\n%s", impl)
	}
	if report.RuntimeAlignments != 0 || report.StaticPads != 0 {
		t.Errorf("report = %+v", report)
	}
	if got := sizeOf(t, impl, "B", 0); got != 3 {
		t.Errorf("write_size = %d, want 3", got)
	}
}

func TestMixedWidths(t *testing.T) {
	tree := idl.NewTree(idl.Struct("Mixed",
		idl.Member(idl.KindInt8, "a"),
		idl.Member(idl.KindInt32, "b"),
		idl.Member(idl.KindInt8, "c"),
		idl.Member(idl.KindInt64, "d"),
	))

	t.Run("compat", func(t *testing.T) {
		_, impl, report := generate(t, Options{}, tree)
		for _, want := range []string{
			"size_t alignmentbytes = (4 - position%4)%4;  //alignment for: b",
			"memset(static_cast<char*>(data)+position,0x0,3);  //setting padding bytes to 0x0",
			"position += 3;  //padding bytes for: d",
		} {
			if !strings.Contains(impl, want) {
				t.Errorf("missing %q", want)
			}
		}
		if strings.Contains(impl, "alignment for: c") || strings.Contains(impl, "padding bytes for: c") {
			t.Error("c must not be aligned")
		}
		if report.StaticPads != 1 || report.RuntimeAlignments != 1 {
			t.Errorf("report = %+v", report)
		}
		if got := sizeOf(t, impl, "Mixed", 0); got != 20 {
			t.Errorf("size = %d, want 20", got)
		}
	})

	t.Run("strict", func(t *testing.T) {
		_, impl, report := generate(t, Options{Policy: PolicyStrict}, tree)
		if !strings.Contains(impl, "  alignmentbytes = (8 - position%8)%8;  //alignment for: d") {
			t.Errorf("d not aligned at run time:\n%s", impl)
		}
		if report.StaticPads != 0 || report.RuntimeAlignments != 2 {
			t.Errorf("report = %+v", report)
		}
		if got := sizeOf(t, impl, "Mixed", 0); got != 24 {
			t.Errorf("size = %d, want 24", got)
		}
	})
}

func TestShortAlignmentFormula(t *testing.T) {
	tree := idl.NewTree(idl.Struct("H", idl.Member(idl.KindOctet, "a"), idl.Member(idl.KindUInt16, "h")))
	_, impl, _ := generate(t, Options{}, tree)
	if !strings.Contains(impl, "size_t alignmentbytes = position%2;  //alignment for: h") {
		t.Errorf("implementation:\n%s", impl)
	}
}

func TestNestedInstanceResetsAlignment(t *testing.T) {
	tree := idl.NewTree(
		idl.Struct("Inner", idl.Member(idl.KindInt32, "v")),
		idl.Struct("Outer",
			idl.Member(idl.KindInt32, "a"),
			idl.Instance("Inner", "in"),
			idl.Member(idl.KindOctet, "b"),
			idl.Member(idl.KindInt32, "c"),
		),
	)
	_, impl, _ := generate(t, Options{}, tree)

	outer := impl[strings.Index(impl, "const Outer &write, void"):]
	for _, want := range []string{
		"  position = write_struct(write.in(), data, position);\n",
		"  position += write_size(write.in(), position);\n",
		"  position = read_struct(read.in(), data, position);\n",
		"  position += Inner_read_size(data, position);\n",
		"  alignmentbytes = (4 - position%4)%4;  //alignment for: c\n",
		"  position += (4 - position%4)%4;  //alignment for: c\n",
	} {
		if !strings.Contains(outer, want) {
			t.Errorf("missing %q", want)
		}
	}
	if strings.Contains(outer, "alignment for: b") || strings.Contains(outer, "padding bytes for: b") {
		t.Error("single byte after instance must not be aligned")
	}
}

func TestScopedInstanceName(t *testing.T) {
	tree := idl.NewTree(
		idl.Module("Geo", idl.Struct("Point", idl.Member(idl.KindDouble, "x"))),
		idl.Struct("Shape", idl.Instance("Geo::Point", "origin")),
	)
	_, impl, report := generate(t, Options{}, tree)
	if !strings.Contains(impl, "  position += Geo::Point_read_size(data, position);\n") {
		t.Errorf("implementation:\n%s", impl)
	}
	if len(report.Diagnostics) != 0 {
		t.Errorf("diagnostics: %v", report.Diagnostics)
	}
}

func TestUnresolvedInstanceStillEmitted(t *testing.T) {
	tree := idl.NewTree(idl.Struct("S", idl.Instance("External", "ext")))
	_, impl, report := generate(t, Options{}, tree)
	if !strings.Contains(impl, "External_read_size(data, position)") {
		t.Error("call to external procedures missing")
	}
	if report.Diagnostics.Count(cerrors.KindNotFound) != 1 {
		t.Errorf("diagnostics: %v", report.Diagnostics)
	}
}

func TestUnsupportedConstructs(t *testing.T) {
	tree := idl.NewTree(
		idl.Enum("Color"),
		idl.Union("U"),
		idl.Struct("S",
			idl.Member(idl.KindString, "name"),
			idl.Sequence(idl.Member(idl.KindFloat, ""), "values"),
			idl.Instance("Color", "color"),
			idl.Member(idl.KindInt32, "x"),
		),
	)
	hdr, impl, report := generate(t, Options{}, tree)

	if got := report.Diagnostics.Count(cerrors.KindUnsupported); got != 5 {
		t.Fatalf("unsupported diagnostics = %d, want 5: %v", got, report.Diagnostics)
	}
	d := report.Diagnostics[2].Err
	if strings.Join(d.Path, ".") != "S.name" || d.Phase != cerrors.PhaseEmit {
		t.Errorf("diagnostic = %v", d)
	}
	for _, skipped := range []string{"name", "values", "color", "Color", "U &"} {
		if strings.Contains(impl, skipped) || strings.Contains(hdr, skipped) {
			t.Errorf("%q must not be emitted", skipped)
		}
	}
	if !strings.Contains(impl, "size_t alignmentbytes = (4 - position%4)%4;  //alignment for: x") {
		t.Error("x must be aligned at run time after skipped members")
	}
	if report.Members != 1 {
		t.Errorf("Members = %d, want 1", report.Members)
	}
}

func TestZeroMemberStruct(t *testing.T) {
	_, impl, _ := generate(t, Options{}, idl.NewTree(idl.Struct("Empty")))
	want := "size_t write_struct(const Empty &write, void *data, size_t position)\n{\n  return position;\n}\n\n" +
		"size_t write_size(const Empty &write, size_t offset)\n{\n  size_t position = offset;\n  return position-offset;\n}\n\n" +
		"size_t read_struct(Empty &read, void *data, size_t position)\n{\n  return position;\n}\n\n" +
		"size_t Empty_read_size(void *data, size_t offset)\n{\n  size_t position = offset;\n  return position-offset;\n}\n\n"
	if impl != want {
		t.Errorf("implementation:\n%s", impl)
	}
}

func TestKeywordMangling(t *testing.T) {
	tree := idl.NewTree(idl.Module("namespace", idl.Struct("delete", idl.Member(idl.KindInt32, "class"))))
	hdr, impl, _ := generate(t, Options{}, tree)

	for _, want := range []string{"namespace _cxx_namespace\n", "const _cxx_delete &write", "_cxx_delete_read_size"} {
		if !strings.Contains(hdr, want) {
			t.Errorf("header missing %q", want)
		}
	}
	if !strings.Contains(impl, "&write._cxx_class(),4);  //bytes for member: _cxx_class") {
		t.Errorf("implementation:\n%s", impl)
	}

	custom := ManglerFunc(strings.ToUpper)
	hdr, _, _ = generate(t, Options{Mangler: custom}, tree)
	if !strings.Contains(hdr, "namespace NAMESPACE\n") {
		t.Errorf("custom mangler ignored:\n%s", hdr)
	}
}

// invalidTrees are malformed trees every consumer of a tree must reject.
func invalidTrees() map[string]*idl.Tree {
	return map[string]*idl.Tree{
		"invalid member kind": idl.NewTree(
			idl.Struct("Good", idl.Member(idl.KindInt32, "x")),
			idl.Struct("Bad", &idl.Node{Kind: idl.KindInvalid, Declarator: "y"}),
		),
		"out of range kind": idl.NewTree(
			idl.Module("M", idl.Struct("S", &idl.Node{Kind: idl.Kind(99), Declarator: "z"})),
		),
		"member outside struct": idl.NewTree(idl.Member(idl.KindInt32, "loose")),
		"missing declarator":    idl.NewTree(idl.Struct("S", idl.Member(idl.KindInt32, ""))),
		"module in struct":      idl.NewTree(idl.Struct("S", &idl.Node{Kind: idl.KindModule, Name: "M", Declarator: "m"})),
		"nil definition":        idl.NewTree(nil),
		"unnamed struct":        idl.NewTree(idl.Struct("")),
		"duplicate definition":  idl.NewTree(idl.Struct("S"), idl.Struct("S")),
		"unnamed module":        idl.NewTree(idl.Module("", idl.Struct("S", idl.Member(idl.KindInt32, "x")))),
		"unnamed union":         idl.NewTree(&idl.Node{Kind: idl.KindUnion}),
		"nil module child":      idl.NewTree(idl.Module("M", nil)),
		"nil member":            idl.NewTree(idl.Struct("S", idl.Member(idl.KindInt8, "a"), nil)),
	}
}

func TestInvalidTreeLeavesNoOutput(t *testing.T) {
	for name, tree := range invalidTrees() {
		t.Run(name, func(t *testing.T) {
			var hdr, impl bytes.Buffer
			_, err := New(Options{}).Generate(tree, &hdr, &impl)
			if errKind(err) != cerrors.KindInvalidTree {
				t.Fatalf("err = %v, want invalid tree", err)
			}
			if hdr.Len() != 0 || impl.Len() != 0 {
				t.Errorf("partial output written: %q / %q", hdr.String(), impl.String())
			}
		})
	}

	if _, err := New(Options{}).Generate(nil, &bytes.Buffer{}, &bytes.Buffer{}); errKind(err) != cerrors.KindInvalidTree {
		t.Errorf("nil tree: %v", err)
	}
}

func TestOutputLimit(t *testing.T) {
	tree := idl.NewTree(idl.Struct("S", idl.Member(idl.KindInt32, "x")))
	var hdr, impl bytes.Buffer
	_, err := New(Options{MaxOutputBytes: 64}).Generate(tree, &hdr, &impl)
	if !errors.Is(err, &cerrors.Error{Phase: cerrors.PhaseEmit, Kind: cerrors.KindAllocation}) {
		t.Fatalf("err = %v", err)
	}
	if hdr.Len() != 0 || impl.Len() != 0 {
		t.Error("output written past limit")
	}

	if _, err := New(Options{MaxOutputBytes: 1 << 20}).Generate(tree, &hdr, &impl); err != nil {
		t.Errorf("generous limit: %v", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("no space left on device")
}

func TestSinkWriteFailure(t *testing.T) {
	tree := idl.NewTree(idl.Struct("S", idl.Member(idl.KindInt32, "x")))

	_, err := New(Options{}).Generate(tree, failingWriter{}, &bytes.Buffer{})
	if !errors.Is(err, &cerrors.Error{Phase: cerrors.PhaseFlush, Kind: cerrors.KindAllocation}) {
		t.Errorf("declaration sink: %v", err)
	}

	_, err = New(Options{}).Generate(tree, &bytes.Buffer{}, failingWriter{})
	if errKind(err) != cerrors.KindAllocation {
		t.Errorf("implementation sink: %v", err)
	}
}

func TestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var hdr, impl bytes.Buffer
	tree := idl.NewTree(idl.Struct("S", idl.Member(idl.KindInt32, "x")))
	_, err := New(Options{}).GenerateContext(ctx, tree, &hdr, &impl)
	if errKind(err) != cerrors.KindCanceled {
		t.Fatalf("err = %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("cause not preserved")
	}
	if hdr.Len() != 0 || impl.Len() != 0 {
		t.Error("output written after cancel")
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("strict")
	if err != nil || p != PolicyStrict {
		t.Errorf("got %v, %v", p, err)
	}
	if _, err := ParsePolicy("tight"); errKind(err) != cerrors.KindInvalidInput {
		t.Errorf("err = %v", err)
	}
}
