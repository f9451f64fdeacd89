package codec

import (
	"fmt"

	cdrstreamer "github.com/wippyai/cdr-streamer"
	"github.com/wippyai/cdr-streamer/errors"
)

// Encoder writes values into a Memory.
type Encoder struct {
	set *Set
	mem cdrstreamer.Memory
}

func (s *Set) Encoder(mem cdrstreamer.Memory) *Encoder {
	return &Encoder{set: s, mem: mem}
}

// Write serializes value as the named struct starting at position, zero-filling
// padding, and returns the first unused offset.
func (e *Encoder) Write(name string, value map[string]any, position uint32) (uint32, error) {
	return e.write(name, value, position, nil, map[string]bool{})
}

// WriteSize returns what Write would consume at offset.
func (e *Encoder) WriteSize(name string, offset uint32) (uint32, error) {
	return e.set.Size(name, offset)
}

func (e *Encoder) write(name string, value map[string]any, pos uint32, path []string, active map[string]bool) (uint32, error) {
	p, err := e.set.plan(errors.PhaseEncode, name)
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
		fieldPath := append(append([]string{}, path...), op.Name)

		v, ok := value[op.Name]
		if !ok {
			return 0, errors.FieldMissing(errors.PhaseEncode, path, op.Name)
		}

		if op.Kind == OpInstance {
			nested, ok := v.(map[string]any)
			if !ok {
				return 0, errors.TypeMismatch(errors.PhaseEncode, fieldPath, fmt.Sprintf("%T", v), op.Ref)
			}
			pos, err = e.write(op.Ref, nested, pos, fieldPath, active)
			if err != nil {
				return 0, err
			}
			continue
		}

		if pad := padBefore(op, pos); pad > 0 {
			if err := e.mem.Write(pos, make([]byte, pad)); err != nil {
				return 0, withPath(err, fieldPath)
			}
			pos += pad
		}

		bits, err := bitsOf(v, op.IDL, fieldPath)
		if err != nil {
			return 0, err
		}
		if err := e.store(pos, op.Width, bits); err != nil {
			return 0, withPath(err, fieldPath)
		}
		pos += op.Width
	}
	return pos, nil
}

func (e *Encoder) store(pos, width uint32, bits uint64) error {
	switch width {
	case 1:
		return e.mem.WriteU8(pos, uint8(bits))
	case 2:
		return e.mem.WriteU16(pos, uint16(bits))
	case 4:
		return e.mem.WriteU32(pos, uint32(bits))
	default:
		return e.mem.WriteU64(pos, bits)
	}
}

// withPath attaches the field path to structured memory errors that lack one.
func withPath(err error, path []string) error {
	if e, ok := err.(*errors.Error); ok && len(e.Path) == 0 {
		c := *e
		c.Path = path
		return &c
	}
	return err
}
