// Package errors provides structured error types for the stream generator.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the node path inside the type tree, the IDL type involved,
// a detail message and an optional cause.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEmit, errors.KindInvalidTree).
//		Path("Geo", "Point", "x").
//		IDLType("invalid").
//		Detail("member has no recognised category").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidTree(errors.PhaseClassify, path, "unknown kind 42")
//	err := errors.OutOfBounds(errors.PhaseDecode, path, 10, 5)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
