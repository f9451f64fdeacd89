package codec

import (
	"go.uber.org/zap"

	"github.com/wippyai/cdr-streamer/errors"
	"github.com/wippyai/cdr-streamer/idl"
	"github.com/wippyai/cdr-streamer/internal/align"
	"github.com/wippyai/cdr-streamer/internal/classify"
)

type OpKind uint8

const (
	OpField OpKind = iota
	OpInstance
)

func (k OpKind) String() string {
	if k == OpInstance {
		return "instance"
	}
	return "field"
}

// Op is one marshalled member.
type Op struct {
	Name string
	Kind OpKind
	IDL  idl.Kind

	// Width is the primitive width; zero for instances.
	Width uint32

	// Step is the alignment chosen before a field.
	Step align.Step

	// Ref is the fully scoped name of the instance's struct, or the name as
	// written when it could not be resolved.
	Ref      string
	Resolved bool
}

// Plan is the compiled layout of one struct.
type Plan struct {
	Name    string
	Ops     []Op
	Skipped []string
}

// Options configures Compile.
type Options struct {
	Policy align.Policy
}

// Set holds the plans of every struct in a tree.
type Set struct {
	plans       map[string]*Plan
	order       []string
	policy      align.Policy
	Diagnostics errors.Diagnostics
}

// Compile builds plans for every struct of tree. Invalid trees fail the same
// way they fail generation.
func Compile(tree *idl.Tree, opts Options) (*Set, error) {
	if tree == nil {
		return nil, errors.InvalidTree(errors.PhaseLoad, nil, "nil tree")
	}
	index, err := idl.NewIndex(tree)
	if err != nil {
		return nil, err
	}

	s := &Set{plans: make(map[string]*Plan), policy: opts.Policy}
	c := &compiler{set: s, index: index, tracker: align.NewTracker(opts.Policy)}
	if err := c.definitions(nil, tree.Definitions); err != nil {
		return nil, err
	}

	Logger().Debug("plans compiled",
		zap.Int("structs", len(s.order)),
		zap.String("policy", opts.Policy.String()))
	return s, nil
}

// Names returns the fully scoped struct names in tree order.
func (s *Set) Names() []string {
	return s.order
}

func (s *Set) Policy() align.Policy {
	return s.policy
}

// Plan returns the plan of the named struct.
func (s *Set) Plan(name string) (*Plan, bool) {
	p, ok := s.plans[name]
	return p, ok
}

func (s *Set) plan(phase errors.Phase, name string) (*Plan, error) {
	p, ok := s.plans[name]
	if !ok {
		return nil, errors.NotFound(phase, "struct", name)
	}
	return p, nil
}

type compiler struct {
	set     *Set
	index   *idl.Index
	tracker *align.Tracker
}

func (c *compiler) definitions(scope []string, nodes []*idl.Node) error {
	for _, n := range nodes {
		d, err := classify.Definition(errors.PhaseLoad, scope, n)
		if err != nil {
			return err
		}
		switch {
		case d.Category == classify.CategoryModule:
			err = c.definitions(join(scope, n.Name), n.Children)
		case n.Kind == idl.KindStruct:
			err = c.structure(scope, n)
		default:
			c.set.Diagnostics.Add(errors.Unsupported(errors.PhaseLoad, join(scope, n.Name), n.Kind.String()))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) structure(scope []string, n *idl.Node) error {
	structPath := join(scope, n.Name)
	full := idl.JoinScoped(structPath...)
	p := &Plan{Name: full}
	c.tracker.Start()

	for _, m := range n.Children {
		d, err := classify.Member(errors.PhaseLoad, structPath, m)
		if err != nil {
			return err
		}
		path := join(structPath, m.Declarator)

		switch d.Category {
		case classify.CategoryPrimitive:
			p.Ops = append(p.Ops, Op{
				Name:  m.Declarator,
				Kind:  OpField,
				IDL:   m.Kind,
				Width: d.Width,
				Step:  c.tracker.Align(d.Width),
			})
		case classify.CategoryInstance:
			target, ref, ok := c.index.Lookup(scope, m.Name)
			if ok && target.Kind != idl.KindStruct {
				p.Skipped = append(p.Skipped, m.Declarator)
				c.set.Diagnostics.Add(errors.Unsupported(errors.PhaseLoad, path, target.Kind.String()))
				continue
			}
			if !ok {
				ref = m.Name
			}
			p.Ops = append(p.Ops, Op{Name: m.Declarator, Kind: OpInstance, IDL: m.Kind, Ref: ref, Resolved: ok})
			c.tracker.Reset()
		default:
			p.Skipped = append(p.Skipped, m.Declarator)
			c.set.Diagnostics.Add(errors.Unsupported(errors.PhaseLoad, path, m.Kind.String()))
		}
	}

	c.set.plans[full] = p
	c.set.order = append(c.set.order, full)
	return nil
}

func join(path []string, name string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, name)
}

// padBefore is the number of bytes inserted before op at pos.
func padBefore(op *Op, pos uint32) uint32 {
	switch op.Step.Mode {
	case align.ModeRuntime:
		return align.RuntimePad(pos, op.Width)
	case align.ModeStatic:
		return op.Step.Pad
	default:
		return 0
	}
}
