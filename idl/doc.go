// Package idl defines the type tree the stream generator consumes.
//
// The tree is produced by an IDL front end (not part of this module) or loaded from
// a serialized tree document. Nodes are immutable once handed to the generator.
//
// # Node kinds
//
// Kind is a closed enumeration:
//
//	module                     namespace; children are definitions
//	struct union enum          constructed types; struct children are members
//	sequence string wstring    template types; a sequence's child is its element type
//	fixed
//	int8 ... uint64            base types, carried by struct members
//	float double long_double
//	char wchar bool octet
//	scoped_name                member typed by another constructed type
//
// Struct members carry the member name in Declarator. A scoped_name member also
// carries the referenced type in Name, relative ("Inner") or absolute ("::Geo::Inner").
//
// # Tree documents
//
// Decode and Encode read and write the YAML (or JSON) form:
//
//	definitions:
//	  - kind: module
//	    name: Geo
//	    children:
//	      - kind: struct
//	        name: Point
//	        children:
//	          - {kind: int32, declarator: x}
//	          - {kind: scoped_name, name: Inner, declarator: inner}
package idl
