package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad     Phase = "load"     // tree document / WIT decoding
	PhaseClassify Phase = "classify" // node category and width lookup
	PhaseEmit     Phase = "emit"     // tree walk and text emission
	PhaseFlush    Phase = "flush"    // scope flush into sinks
	PhaseEncode   Phase = "encode"   // reference codec, value to buffer
	PhaseDecode   Phase = "decode"   // reference codec, buffer to value
	PhaseConfig   Phase = "config"   // CLI configuration
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidTree  Kind = "invalid_tree"
	KindUnsupported  Kind = "unsupported"
	KindAllocation   Kind = "allocation"
	KindTypeMismatch Kind = "type_mismatch"
	KindFieldMissing Kind = "field_missing"
	KindOutOfBounds  Kind = "out_of_bounds"
	KindInvalidData  Kind = "invalid_data"
	KindNotFound     Kind = "not_found"
	KindInvalidInput Kind = "invalid_input"
	KindCanceled     Kind = "canceled"
	KindScopeClosed  Kind = "scope_closed"
)

// Error is the structured error type used throughout the generator
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	IDLType string
	Detail  string
	Path    []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.IDLType != "" {
		b.WriteString(": IDL type ")
		b.WriteString(e.IDLType)
	}

	if e.Detail != "" {
		if e.IDLType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the node path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// IDLType sets the IDL type name
func (b *Builder) IDLType(t string) *Builder {
	b.err.IDLType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidTree reports a node the upstream producer should never have emitted.
func InvalidTree(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidTree,
		Path:   path,
		Detail: detail,
	}
}

// Unsupported creates an unsupported construct error
func Unsupported(phase Phase, path []string, idlType string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindUnsupported,
		Path:    path,
		IDLType: idlType,
		Detail:  "no marshalling available",
	}
}

// OutputLimit reports generated text growing past the configured limit.
func OutputLimit(phase Phase, size, limit int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("generated output of %d bytes exceeds limit of %d bytes", size, limit),
		Value:  size,
	}
}

// SinkWrite wraps a failed write to an output sink.
func SinkWrite(sink string, cause error) *Error {
	return &Error{
		Phase:  PhaseFlush,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("write %s sink", sink),
		Cause:  cause,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, idlType string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindTypeMismatch,
		Path:    path,
		IDLType: idlType,
		Detail:  fmt.Sprintf("cannot use Go value of type %s", goType),
	}
}

// FieldMissing creates a missing field error
func FieldMissing(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldMissing,
		Path:   path,
		Detail: fmt.Sprintf("required field %q not found", fieldName),
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, offset, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("offset %d out of bounds (length %d)", offset, length),
		Value:  offset,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Canceled wraps a context cancellation observed during generation.
func Canceled(phase Phase, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCanceled,
		Detail: "generation canceled",
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a document decoding error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}

// Diagnostic is a non-fatal finding recorded during generation. The artifact
// stays valid but does not cover the reported field.
type Diagnostic struct {
	Err *Error
}

func (d Diagnostic) String() string {
	return d.Err.Error()
}

// Diagnostics is an ordered list of findings.
type Diagnostics []Diagnostic

// Add records err as a diagnostic.
func (ds *Diagnostics) Add(err *Error) {
	*ds = append(*ds, Diagnostic{Err: err})
}

// Count returns how many diagnostics carry the given kind.
func (ds Diagnostics) Count(kind Kind) int {
	n := 0
	for _, d := range ds {
		if d.Err.Kind == kind {
			n++
		}
	}
	return n
}
