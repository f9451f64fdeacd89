package streamer

import (
	"bytes"
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/wippyai/cdr-streamer/errors"
	"github.com/wippyai/cdr-streamer/idl"
	"github.com/wippyai/cdr-streamer/internal/align"
	"github.com/wippyai/cdr-streamer/internal/scope"
)

// Generator turns type trees into marshalling procedures. It holds no state
// between runs and may be reused sequentially.
type Generator struct {
	opts Options
}

func New(opts Options) *Generator {
	if opts.Mangler == nil {
		opts.Mangler = CXX
	}
	return &Generator{opts: opts}
}

func (g *Generator) Options() Options {
	return g.opts
}

// Generate walks tree and writes declarations to decl and procedure bodies to impl.
func (g *Generator) Generate(tree *idl.Tree, decl, impl io.Writer) (*Report, error) {
	return g.GenerateContext(context.Background(), tree, decl, impl)
}

// GenerateContext is Generate with cooperative cancellation between nodes.
// Nothing reaches decl or impl unless the whole walk succeeds.
func (g *Generator) GenerateContext(ctx context.Context, tree *idl.Tree, decl, impl io.Writer) (*Report, error) {
	report := &Report{}
	if tree == nil {
		return report, errors.InvalidTree(errors.PhaseEmit, nil, "nil tree")
	}

	index, err := idl.NewIndex(tree)
	if err != nil {
		return report, err
	}

	var header, source bytes.Buffer
	root := scope.Root(scope.Sinks{Decl: &header, Impl: &source})

	w := &walker{
		ctx:     ctx,
		opts:    g.opts,
		index:   index,
		tracker: align.NewTracker(g.opts.Policy),
		report:  report,
		log:     Logger(),
	}

	err = w.definitions(root, nil, tree.Definitions)
	if cerr := root.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		w.log.Debug("generation aborted", zap.Error(err))
		return report, err
	}

	if _, err := decl.Write(header.Bytes()); err != nil {
		return report, errors.SinkWrite("declaration", err)
	}
	report.HeaderBytes = header.Len()
	if _, err := impl.Write(source.Bytes()); err != nil {
		return report, errors.SinkWrite("implementation", err)
	}
	report.SourceBytes = source.Len()

	w.log.Debug("generation complete",
		zap.Int("structs", report.Structs),
		zap.Int("modules", report.Modules),
		zap.Int("diagnostics", len(report.Diagnostics)))
	return report, nil
}
