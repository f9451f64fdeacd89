// Package codec encodes and decodes values with exactly the layout the
// generated C++ procedures use.
//
// Compile turns a type tree into one plan per struct. A plan is the ordered
// list of field operations together with the alignment step the tracker chose
// for each, so the codec and the generator cannot disagree about padding.
// Nodes are validated by the same classify.Definition and classify.Member
// checks the generator uses, so both reject the same trees.
//
// Values are map[string]any keyed by declarator. Primitive members accept any
// Go integer, float or bool that fits the member's kind; decoding returns the
// canonical type for the kind (int8, uint16, float32, ...). Nested instances
// are nested maps. Members the generator skips (strings, sequences, fixed)
// are ignored here too.
//
// Multi-byte values are little-endian, matching memcpy on the usual targets.
package codec
