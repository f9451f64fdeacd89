package streamer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/cdr-streamer/errors"
	"github.com/wippyai/cdr-streamer/idl"
	"github.com/wippyai/cdr-streamer/internal/align"
	"github.com/wippyai/cdr-streamer/internal/classify"
	"github.com/wippyai/cdr-streamer/internal/scope"
)

// walker carries the state of one Generate call.
type walker struct {
	ctx     context.Context
	opts    Options
	index   *idl.Index
	tracker *align.Tracker
	report  *Report
	log     *zap.Logger
	written int
}

func (w *walker) emit(c *scope.Context, s scope.Stream, text string) {
	w.written += c.Append(s, text, true)
}

func (w *walker) emitf(c *scope.Context, s scope.Stream, format string, args ...any) {
	w.emit(c, s, fmt.Sprintf(format, args...))
}

func (w *walker) checkLimit() error {
	if w.opts.MaxOutputBytes > 0 && w.written > w.opts.MaxOutputBytes {
		return errors.OutputLimit(errors.PhaseEmit, w.written, w.opts.MaxOutputBytes)
	}
	return nil
}

func (w *walker) diagnose(err *errors.Error) {
	w.report.Diagnostics.Add(err)
	w.log.Warn("construct skipped",
		zap.Strings("path", err.Path),
		zap.String("kind", string(err.Kind)),
		zap.String("idl_type", err.IDLType))
}

func childPath(path []string, name string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, name)
}

func (w *walker) open(parent *scope.Context, name string, kind scope.Kind) *scope.Context {
	c := scope.Open(parent, name, kind)
	w.log.Debug("scope opened",
		zap.String("kind", kind.String()),
		zap.Strings("path", c.Path()),
		zap.Int("depth", c.Depth()))
	return c
}

func (w *walker) closeScope(c *scope.Context, err *error) {
	cerr := c.Close()
	w.log.Debug("scope closed", zap.Strings("path", c.Path()))
	if *err == nil {
		*err = cerr
	}
}

// definitions handles the children of the root or of a module.
func (w *walker) definitions(c *scope.Context, path []string, nodes []*idl.Node) error {
	for _, n := range nodes {
		if err := w.ctx.Err(); err != nil {
			return errors.Canceled(errors.PhaseEmit, err)
		}

		d, err := classify.Definition(errors.PhaseEmit, path, n)
		if err != nil {
			return err
		}

		switch {
		case d.Category == classify.CategoryModule:
			err = w.module(c, path, n)
		case n.Kind == idl.KindStruct:
			err = w.structure(c, path, n)
		default:
			w.diagnose(errors.Unsupported(errors.PhaseEmit, childPath(path, n.Name), n.Kind.String()))
		}
		if err != nil {
			return err
		}
		if err := w.checkLimit(); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) module(parent *scope.Context, path []string, n *idl.Node) (err error) {
	if !n.HasChildren() {
		return nil
	}

	c := w.open(parent, n.Name, scope.KindModule)
	defer w.closeScope(c, &err)

	name := w.opts.Mangler.Mangle(n.Name)
	for _, s := range []scope.Stream{scope.StreamDecl, scope.StreamWrite} {
		w.emitf(c, s, namespaceOpen, name)
		w.emit(c, s, namespaceBrace)
	}

	if err := w.definitions(c, childPath(path, n.Name), n.Children); err != nil {
		return err
	}

	w.emit(c, scope.StreamDecl, namespaceClose)
	w.emit(c, scope.StreamReadSize, namespaceClose)
	w.report.Modules++
	return nil
}

func (w *walker) structure(parent *scope.Context, path []string, n *idl.Node) (err error) {
	c := w.open(parent, n.Name, scope.KindStruct)
	defer w.closeScope(c, &err)

	typ := w.opts.Mangler.Mangle(n.Name)
	sigs := [...]struct {
		stream scope.Stream
		format string
	}{
		{scope.StreamWrite, sigWrite},
		{scope.StreamWriteSize, sigWriteSize},
		{scope.StreamRead, sigRead},
		{scope.StreamReadSize, sigReadSize},
	}
	for _, sig := range sigs {
		text := fmt.Sprintf(sig.format, typ)
		w.emit(c, scope.StreamDecl, text+declEnd)
		w.emit(c, sig.stream, text+"\n")
		w.emit(c, sig.stream, bodyOpen)
	}
	w.emit(c, scope.StreamWriteSize, sizeStart)
	w.emit(c, scope.StreamReadSize, sizeStart)

	w.tracker.Start()
	structPath := childPath(path, n.Name)
	for _, m := range n.Children {
		if err := w.member(c, path, structPath, m); err != nil {
			return err
		}
		if err := w.checkLimit(); err != nil {
			return err
		}
	}

	w.emit(c, scope.StreamWrite, returnWritten)
	w.emit(c, scope.StreamWriteSize, returnSize)
	w.emit(c, scope.StreamRead, returnWritten)
	w.emit(c, scope.StreamReadSize, returnSize)
	for _, sig := range sigs {
		w.emit(c, sig.stream, bodyClose)
	}
	w.report.Structs++
	return nil
}

// member emits one struct member. modulePath is the enclosing module chain,
// used to resolve scoped references.
func (w *walker) member(c *scope.Context, modulePath, structPath []string, m *idl.Node) error {
	d, err := classify.Member(errors.PhaseEmit, structPath, m)
	if err != nil {
		return err
	}
	path := childPath(structPath, m.Declarator)

	switch d.Category {
	case classify.CategoryPrimitive:
		w.primitive(c, w.opts.Mangler.Mangle(m.Declarator), d.Width)
	case classify.CategoryInstance:
		w.instance(c, modulePath, path, m)
	default:
		w.diagnose(errors.Unsupported(errors.PhaseEmit, path, m.Kind.String()))
	}
	return nil
}

func (w *walker) primitive(c *scope.Context, name string, width uint32) {
	step := w.tracker.Align(width)

	switch step.Mode {
	case align.ModeRuntime:
		formula := alignFormula(width)
		line := alignAssign
		if step.Declare {
			line = alignDeclare
		}
		w.emitf(c, scope.StreamWrite, line, formula, name)
		w.emit(c, scope.StreamWrite, alignZero)
		w.emit(c, scope.StreamWrite, alignAdvance)
		w.emitf(c, scope.StreamRead, line, formula, name)
		w.emit(c, scope.StreamRead, alignAdvance)
		w.emitf(c, scope.StreamWriteSize, alignSize, formula, name)
		w.emitf(c, scope.StreamReadSize, alignSize, formula, name)
		w.report.RuntimeAlignments++
	case align.ModeStatic:
		w.emitf(c, scope.StreamWrite, padZero, step.Pad)
		w.emitf(c, scope.StreamWrite, padAdvance, step.Pad)
		w.emitf(c, scope.StreamRead, padSize, step.Pad, name)
		w.emitf(c, scope.StreamWriteSize, padSize, step.Pad, name)
		w.emitf(c, scope.StreamReadSize, padSize, step.Pad, name)
		w.report.StaticPads++
	}

	w.emitf(c, scope.StreamWrite, copyWrite, name, width, name)
	w.emitf(c, scope.StreamWrite, padAdvance, width)
	w.emitf(c, scope.StreamRead, copyRead, name, width, name)
	w.emitf(c, scope.StreamRead, padAdvance, width)
	w.emitf(c, scope.StreamWriteSize, copySize, width, name)
	w.emitf(c, scope.StreamReadSize, copySize, width, name)
	w.report.Members++
}

// instance delegates to the referenced type's own procedures. The referenced
// size is unknown here, so alignment is forgotten afterwards.
func (w *walker) instance(c *scope.Context, modulePath, path []string, m *idl.Node) {
	target, full, ok := w.index.Lookup(modulePath, m.Name)
	switch {
	case !ok:
		w.diagnose(errors.New(errors.PhaseEmit, errors.KindNotFound).
			Path(path...).
			Detail("type %q is not defined in this tree; assuming external procedures", m.Name).
			Build())
	case target.Kind != idl.KindStruct:
		w.diagnose(errors.New(errors.PhaseEmit, errors.KindUnsupported).
			Path(path...).
			IDLType(target.Kind.String()).
			Detail("instance of %s %s has no marshalling", target.Kind, full).
			Build())
		return
	}

	name := w.opts.Mangler.Mangle(m.Declarator)
	w.emitf(c, scope.StreamWrite, instanceWrite, name)
	w.emitf(c, scope.StreamWriteSize, instanceWriteSize, name)
	w.emitf(c, scope.StreamRead, instanceRead, name)
	w.emitf(c, scope.StreamReadSize, instanceReadSize, readSizeName(w.opts.Mangler, m.Name))
	w.tracker.Reset()
	w.report.Members++
}
