package idl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/cdr-streamer/errors"
)

const geoDoc = `
definitions:
  - kind: module
    name: Geo
    children:
      - kind: struct
        name: Inner
        children:
          - {kind: short, declarator: s}
      - kind: struct
        name: Point
        children:
          - {kind: int8, declarator: a}
          - {kind: scoped_name, name: Inner, declarator: inner}
          - kind: sequence
            declarator: tags
            children:
              - {kind: long}
`

func TestDecode(t *testing.T) {
	tree, err := Decode(strings.NewReader(geoDoc))
	require.NoError(t, err)
	require.Len(t, tree.Definitions, 1)

	geo := tree.Definitions[0]
	assert.Equal(t, KindModule, geo.Kind)
	require.Len(t, geo.Children, 2)

	point := geo.Children[1]
	assert.Equal(t, "Point", point.Name)
	require.Len(t, point.Children, 3)
	assert.Equal(t, KindInt8, point.Children[0].Kind)
	assert.Equal(t, KindScopedName, point.Children[1].Kind)
	assert.Equal(t, "Inner", point.Children[1].Name)
	assert.Equal(t, KindSequence, point.Children[2].Kind)
	assert.Equal(t, KindInt32, point.Children[2].Children[0].Kind)
}

func TestDecodeJSON(t *testing.T) {
	doc := `{"definitions": [{"kind": "struct", "name": "S", "children": [{"kind": "octet", "declarator": "a"}]}]}`
	tree, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, tree.Definitions, 1)
	assert.Equal(t, KindOctet, tree.Definitions[0].Children[0].Kind)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(strings.NewReader("definitions:\n  - kind: matrix\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindInvalidData})
	assert.Contains(t, err.Error(), "matrix")

	_, err = Decode(strings.NewReader("definitions:\n  - kind: struct\n    colour: red\n"))
	require.Error(t, err, "unknown fields are rejected")

	tree, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, tree.Definitions)
}

func TestEncodeRoundTrip(t *testing.T) {
	tree, err := Decode(strings.NewReader(geoDoc))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, tree))
	assert.Contains(t, buf.String(), "kind: scoped_name")
	assert.Contains(t, buf.String(), "kind: int16")

	again, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, tree, again)
}

func TestEncodeRejectsInvalidKind(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, NewTree(&Node{Kind: KindInvalid, Name: "x"}))
	require.Error(t, err)
}

func TestDump(t *testing.T) {
	tree := NewTree(Module("Geo",
		Struct("Point",
			Member(KindInt16, "a"),
			Member(KindUInt32, "b"),
			Member(KindDouble, "c"),
			Member(KindOctet, "d"),
			Instance("Inner", "e"),
			Sequence(Member(KindFloat, ""), "f"),
		),
	))

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, tree))

	want := `Geo: MODULE
  Point: CONSTRUCTED TYPE STRUCT
    a: INT_16
    b: UNSIGNED INT_32
    c: FLOAT_64
    d: OCTET
    e: SCOPED NAME Inner
    f: TEMPLATE TYPE SEQUENCE
      : FLOAT_32
`
	assert.Equal(t, want, buf.String())
}
