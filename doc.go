// Package cdrstreamer generates CDR-style marshalling procedures from IDL type trees.
//
// Given the parsed type tree of an IDL specification, the generator produces
// for every struct a write procedure, a write-size procedure, a read procedure
// and a read-size procedure, as C++ text split across a declaration surface
// and an implementation surface.
//
// # Architecture Overview
//
//	cdrstreamer/          Root package with the Memory interface
//	├── idl/              Type tree model, YAML documents, scoped name index
//	├── streamer/         Tree-walking generator for the C++ procedures
//	├── codec/            Reference encoder/decoder using the same layout rules
//	├── memory/           Memory implementations (Go slice, wazero linear memory)
//	├── witsource/        Type trees from WIT record definitions
//	├── errors/           Structured error types and diagnostics
//	├── internal/         Classifier, alignment tracker, scope contexts
//	└── cmd/cdrgen/       Command line front end
//
// # Quick Start
//
// Generate procedures for a tree document:
//
//	tree, err := idl.LoadFile("types.yaml")
//	if err != nil {
//	    return err
//	}
//	gen := streamer.New(streamer.Options{})
//	report, err := gen.Generate(tree, header, source)
//
// Encode a value with the layout the generated code uses:
//
//	set, err := codec.Compile(tree, codec.Options{})
//	mem := memory.NewBytes(0)
//	end, err := set.Encoder(mem).Write("Geo::Point", value, 0)
//
// # Layout
//
// Fields are written in declaration order. Before each primitive field the
// alignment tracker either computes padding from the current position at run
// time or emits a fixed number of zero bytes. A nested struct instance is
// written by its own procedures, after which the alignment is unknown again.
// Strings, sequences and fixed-point members are reported as diagnostics and
// skipped.
package cdrstreamer
