// Package scope manages the nested output contexts of one generation run.
//
// Every context owns five text streams. Closing a context flushes them, in a
// fixed order, into its parent (or, for the root, into the caller's sinks), so
// text produced inside a module ends up between that module's brackets.
package scope

import (
	"io"
	"strings"

	"github.com/wippyai/cdr-streamer/errors"
)

type Stream uint8

const (
	StreamDecl Stream = iota
	StreamWrite
	StreamWriteSize
	StreamRead
	StreamReadSize
	streamCount
)

var streamNames = [...]string{
	StreamDecl:      "declaration",
	StreamWrite:     "write",
	StreamWriteSize: "write-size",
	StreamRead:      "read",
	StreamReadSize:  "read-size",
}

func (s Stream) String() string {
	if s < streamCount {
		return streamNames[s]
	}
	return "invalid"
}

// Streams returns the streams in flush order.
func Streams() []Stream {
	return []Stream{StreamDecl, StreamWrite, StreamWriteSize, StreamRead, StreamReadSize}
}

type Kind uint8

const (
	KindRoot Kind = iota
	KindModule
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindModule:
		return "module"
	case KindStruct:
		return "struct"
	default:
		return "invalid"
	}
}

// Sinks are the two destinations of the root context.
type Sinks struct {
	Decl io.Writer
	Impl io.Writer
}

// Context is one level of the output stack.
type Context struct {
	parent  *Context
	sinks   Sinks
	name    string
	kind    Kind
	depth   int
	closed  bool
	buffers [streamCount]strings.Builder
}

// Root opens the outermost context writing into sinks.
func Root(sinks Sinks) *Context {
	return &Context{sinks: sinks, kind: KindRoot}
}

// Open creates a child of parent. The child's indentation depth is fixed here:
// children of a module sit one level deeper, anything else keeps the parent's depth.
func Open(parent *Context, name string, kind Kind) *Context {
	if parent.closed {
		panic("scope: open under closed context " + parent.name)
	}
	depth := parent.depth
	if parent.kind == KindModule {
		depth++
	}
	sinks := Sinks{
		Decl: &parent.buffers[StreamDecl],
		Impl: &parent.buffers[StreamWrite],
	}
	return &Context{
		parent: parent,
		sinks:  sinks,
		name:   name,
		kind:   kind,
		depth:  depth,
	}
}

func (c *Context) Name() string {
	return c.name
}

func (c *Context) Kind() Kind {
	return c.kind
}

func (c *Context) Depth() int {
	return c.depth
}

func (c *Context) Parent() *Context {
	return c.parent
}

func (c *Context) Closed() bool {
	return c.closed
}

// Path returns the names from the outermost named context down to c.
func (c *Context) Path() []string {
	var path []string
	for cur := c; cur != nil && cur.kind != KindRoot; cur = cur.parent {
		path = append(path, cur.name)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Append adds text to stream s, prefixed with 2×depth spaces when indent is set.
// It returns the number of bytes appended.
func (c *Context) Append(s Stream, text string, indent bool) int {
	b := &c.buffers[s]
	n := len(text)
	if indent && c.depth > 0 {
		pad := strings.Repeat("  ", c.depth)
		b.WriteString(pad)
		n += len(pad)
	}
	b.WriteString(text)
	return n
}

// Len returns the bytes currently buffered in stream s.
func (c *Context) Len(s Stream) int {
	return c.buffers[s].Len()
}

// Written returns the bytes buffered across all streams.
func (c *Context) Written() int {
	n := 0
	for i := range c.buffers {
		n += c.buffers[i].Len()
	}
	return n
}

// Close flushes the streams in order and releases them. A context closes once.
func (c *Context) Close() error {
	if c.closed {
		return errors.New(errors.PhaseFlush, errors.KindScopeClosed).
			Path(c.Path()...).
			Detail("%s context closed twice", c.kind).
			Build()
	}
	c.closed = true

	var first error
	for _, s := range Streams() {
		sink, label := c.sinks.Impl, "implementation"
		if s == StreamDecl {
			sink, label = c.sinks.Decl, "declaration"
		}
		b := &c.buffers[s]
		if first == nil && b.Len() > 0 {
			if _, err := io.WriteString(sink, b.String()); err != nil {
				first = errors.SinkWrite(label, err)
			}
		}
		b.Reset()
	}
	return first
}
