package memory

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	cdrstreamer "github.com/wippyai/cdr-streamer"
	"github.com/wippyai/cdr-streamer/errors"
)

var (
	_ cdrstreamer.Memory      = (*Wazero)(nil)
	_ cdrstreamer.MemorySizer = (*Wazero)(nil)
)

// Wazero adapts wazero api.Memory so values can be encoded straight into a
// guest's linear memory.
type Wazero struct {
	Mem api.Memory
}

// WrapWazero returns nil for a nil memory.
func WrapWazero(mem api.Memory) *Wazero {
	if mem == nil {
		return nil
	}
	return &Wazero{Mem: mem}
}

// FromModule wraps the memory exported under name.
func FromModule(mod api.Module, name string) (*Wazero, error) {
	mem := mod.ExportedMemory(name)
	if mem == nil {
		return nil, errors.NotFound(errors.PhaseLoad, "exported memory", name)
	}
	return &Wazero{Mem: mem}, nil
}

// Guest is a standalone module exporting only a linear memory.
type Guest struct {
	*Wazero
	runtime wazero.Runtime
}

// NewGuest instantiates a module with pages of exported memory in a fresh runtime.
func NewGuest(ctx context.Context, pages uint32) (*Guest, error) {
	r := wazero.NewRuntime(ctx)
	mod, err := r.Instantiate(ctx, memoryModule(pages))
	if err != nil {
		_ = r.Close(ctx)
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "instantiate memory module")
	}
	mem, err := FromModule(mod, "memory")
	if err != nil {
		_ = r.Close(ctx)
		return nil, err
	}
	return &Guest{Wazero: mem, runtime: r}, nil
}

func (g *Guest) Close(ctx context.Context) error {
	return g.runtime.Close(ctx)
}

// memoryModule encodes the smallest binary module that exports one memory.
func memoryModule(pages uint32) []byte {
	limits := append([]byte{0x01, 0x00}, uleb128(pages)...)
	bin := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	bin = append(bin, 0x05, byte(len(limits)))
	bin = append(bin, limits...)
	bin = append(bin, 0x07, 0x0a, 0x01, 0x06)
	bin = append(bin, "memory"...)
	return append(bin, 0x02, 0x00)
}

func uleb128(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}

func (m *Wazero) Size() uint32 {
	return m.Mem.Size()
}

func (m *Wazero) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.Mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseDecode, nil, int(offset), int(m.Mem.Size()))
	}
	return data, nil
}

func (m *Wazero) Write(offset uint32, data []byte) error {
	if !m.Mem.Write(offset, data) {
		return errors.OutOfBounds(errors.PhaseEncode, nil, int(offset), int(m.Mem.Size()))
	}
	return nil
}

func (m *Wazero) ReadU8(offset uint32) (uint8, error) {
	v, ok := m.Mem.ReadByte(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseDecode, nil, int(offset), int(m.Mem.Size()))
	}
	return v, nil
}

func (m *Wazero) ReadU16(offset uint32) (uint16, error) {
	v, ok := m.Mem.ReadUint16Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseDecode, nil, int(offset), int(m.Mem.Size()))
	}
	return v, nil
}

func (m *Wazero) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.Mem.ReadUint32Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseDecode, nil, int(offset), int(m.Mem.Size()))
	}
	return v, nil
}

func (m *Wazero) ReadU64(offset uint32) (uint64, error) {
	v, ok := m.Mem.ReadUint64Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseDecode, nil, int(offset), int(m.Mem.Size()))
	}
	return v, nil
}

func (m *Wazero) WriteU8(offset uint32, value uint8) error {
	if !m.Mem.WriteByte(offset, value) {
		return errors.OutOfBounds(errors.PhaseEncode, nil, int(offset), int(m.Mem.Size()))
	}
	return nil
}

func (m *Wazero) WriteU16(offset uint32, value uint16) error {
	if !m.Mem.WriteUint16Le(offset, value) {
		return errors.OutOfBounds(errors.PhaseEncode, nil, int(offset), int(m.Mem.Size()))
	}
	return nil
}

func (m *Wazero) WriteU32(offset uint32, value uint32) error {
	if !m.Mem.WriteUint32Le(offset, value) {
		return errors.OutOfBounds(errors.PhaseEncode, nil, int(offset), int(m.Mem.Size()))
	}
	return nil
}

func (m *Wazero) WriteU64(offset uint32, value uint64) error {
	if !m.Mem.WriteUint64Le(offset, value) {
		return errors.OutOfBounds(errors.PhaseEncode, nil, int(offset), int(m.Mem.Size()))
	}
	return nil
}
