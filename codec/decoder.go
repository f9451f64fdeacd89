package codec

import (
	cdrstreamer "github.com/wippyai/cdr-streamer"
	"github.com/wippyai/cdr-streamer/errors"
)

// Decoder reads values from a Memory.
type Decoder struct {
	set *Set
	mem cdrstreamer.Memory
}

func (s *Set) Decoder(mem cdrstreamer.Memory) *Decoder {
	return &Decoder{set: s, mem: mem}
}

// Read deserializes the named struct at position and returns the value and
// the first unused offset.
func (d *Decoder) Read(name string, position uint32) (map[string]any, uint32, error) {
	return d.read(name, position, nil, map[string]bool{})
}

// ReadSize returns what Read would consume at offset.
func (d *Decoder) ReadSize(name string, offset uint32) (uint32, error) {
	return d.set.Size(name, offset)
}

func (d *Decoder) read(name string, pos uint32, path []string, active map[string]bool) (map[string]any, uint32, error) {
	p, err := d.set.plan(errors.PhaseDecode, name)
	if err != nil {
		return nil, 0, err
	}
	if active[name] {
		return nil, 0, errors.InvalidTree(errors.PhaseDecode, []string{name}, "struct contains itself")
	}
	active[name] = true
	defer delete(active, name)

	out := make(map[string]any, len(p.Ops))
	for i := range p.Ops {
		op := &p.Ops[i]
		fieldPath := append(append([]string{}, path...), op.Name)

		if op.Kind == OpInstance {
			var nested map[string]any
			nested, pos, err = d.read(op.Ref, pos, fieldPath, active)
			if err != nil {
				return nil, 0, err
			}
			out[op.Name] = nested
			continue
		}

		pos += padBefore(op, pos)
		bits, err := d.load(pos, op.Width)
		if err != nil {
			return nil, 0, withPath(err, fieldPath)
		}
		out[op.Name] = valueOf(bits, op.IDL)
		pos += op.Width
	}
	return out, pos, nil
}

func (d *Decoder) load(pos, width uint32) (uint64, error) {
	switch width {
	case 1:
		v, err := d.mem.ReadU8(pos)
		return uint64(v), err
	case 2:
		v, err := d.mem.ReadU16(pos)
		return uint64(v), err
	case 4:
		v, err := d.mem.ReadU32(pos)
		return uint64(v), err
	default:
		return d.mem.ReadU64(pos)
	}
}
