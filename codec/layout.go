package codec

import (
	"github.com/wippyai/cdr-streamer/errors"
	"github.com/wippyai/cdr-streamer/idl"
	"github.com/wippyai/cdr-streamer/internal/align"
)

// Slot is the placement of one primitive field.
type Slot struct {
	Path   string
	Kind   idl.Kind
	Offset uint32
	Width  uint32
	Pad    uint32
	Mode   align.Mode
}

// Layout places every primitive field of the named struct, nested instances
// flattened with dotted paths, starting at start. It returns the slots and the
// first unused offset.
func (s *Set) Layout(name string, start uint32) ([]Slot, uint32, error) {
	var slots []Slot
	end, err := s.walk(name, start, "", map[string]bool{}, func(sl Slot) {
		slots = append(slots, sl)
	})
	return slots, end, err
}

// Size returns the bytes the named struct occupies when written at offset.
func (s *Set) Size(name string, offset uint32) (uint32, error) {
	end, err := s.walk(name, offset, "", map[string]bool{}, nil)
	if err != nil {
		return 0, err
	}
	return end - offset, nil
}

func (s *Set) walk(name string, pos uint32, prefix string, active map[string]bool, visit func(Slot)) (uint32, error) {
	p, err := s.plan(errors.PhaseEncode, name)
	if err != nil {
		return 0, err
	}
	if active[name] {
		return 0, errors.InvalidTree(errors.PhaseEncode, []string{name}, "struct contains itself")
	}
	active[name] = true
	defer delete(active, name)

	for i := range p.Ops {
		op := &p.Ops[i]
		path := prefix + op.Name
		if op.Kind == OpInstance {
			pos, err = s.walk(op.Ref, pos, path+".", active, visit)
			if err != nil {
				return 0, err
			}
			continue
		}
		pad := padBefore(op, pos)
		pos += pad
		if visit != nil {
			visit(Slot{Path: path, Kind: op.IDL, Offset: pos, Width: op.Width, Pad: pad, Mode: op.Step.Mode})
		}
		pos += op.Width
	}
	return pos, nil
}
