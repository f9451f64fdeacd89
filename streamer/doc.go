// Package streamer generates C++ marshalling procedures from an IDL type tree.
//
// For every struct S the generator emits four procedures:
//
//	size_t write_struct(const S &write, void *data, size_t position);
//	size_t write_size(const S &write, size_t offset);
//	size_t read_struct(S &read, void *data, size_t position);
//	size_t S_read_size(void *data, size_t offset);
//
// Signatures go to the declaration sink, bodies to the implementation sink.
// Modules become C++ namespaces. Fields are laid out in declaration order; the
// padding before each primitive field is decided by an alignment tracker
// (see Options.Policy) and is either computed from the position at run time
// or emitted as a fixed byte count.
//
// Basic usage:
//
//	gen := streamer.New(streamer.Options{})
//	report, err := gen.Generate(tree, headerFile, sourceFile)
//
// Unsupported members (strings, sequences, fixed) are skipped and listed in
// Report.Diagnostics. A malformed tree aborts generation before anything is
// written to the sinks.
package streamer
