package memory

import (
	"encoding/binary"

	cdrstreamer "github.com/wippyai/cdr-streamer"
	"github.com/wippyai/cdr-streamer/errors"
)

var (
	_ cdrstreamer.Memory      = (*Bytes)(nil)
	_ cdrstreamer.MemorySizer = (*Bytes)(nil)
)

// DefaultLimit caps how far a Bytes memory grows unless SetLimit says otherwise.
const DefaultLimit = 64 << 20

// Bytes is a slice-backed memory. Writes past the end grow it up to its limit,
// zero-filling any gap; reads past the end fail.
type Bytes struct {
	buf   []byte
	limit uint32
}

// NewBytes returns an empty memory with the given capacity hint.
func NewBytes(capacity int) *Bytes {
	return &Bytes{buf: make([]byte, 0, capacity)}
}

// FromBytes wraps data without copying.
func FromBytes(data []byte) *Bytes {
	return &Bytes{buf: data}
}

// Bytes returns the written contents.
func (m *Bytes) Bytes() []byte {
	return m.buf
}

// SetLimit sets the largest size writes may grow the memory to. Zero restores
// DefaultLimit.
func (m *Bytes) SetLimit(n uint32) {
	m.limit = n
}

// Limit returns the largest size writes may grow the memory to.
func (m *Bytes) Limit() uint32 {
	if m.limit == 0 {
		return DefaultLimit
	}
	return m.limit
}

func (m *Bytes) Size() uint32 {
	return uint32(len(m.buf))
}

func (m *Bytes) Reset() {
	m.buf = m.buf[:0]
}

func (m *Bytes) grow(end uint32) {
	if int(end) <= len(m.buf) {
		return
	}
	if int(end) <= cap(m.buf) {
		old := len(m.buf)
		m.buf = m.buf[:end]
		clear(m.buf[old:])
		return
	}
	next := make([]byte, end, max(int(end), 2*cap(m.buf)))
	copy(next, m.buf)
	m.buf = next
}

func (m *Bytes) span(offset, length uint32) ([]byte, error) {
	end := uint64(offset) + uint64(length)
	if end > uint64(len(m.buf)) {
		return nil, errors.OutOfBounds(errors.PhaseDecode, nil, int(offset), len(m.buf))
	}
	return m.buf[offset:end], nil
}

// Read returns a view of length bytes at offset.
func (m *Bytes) Read(offset uint32, length uint32) ([]byte, error) {
	return m.span(offset, length)
}

func (m *Bytes) Write(offset uint32, data []byte) error {
	end := uint64(offset) + uint64(len(data))
	if end > uint64(len(m.buf)) && end > uint64(m.Limit()) {
		return errors.OutOfBounds(errors.PhaseEncode, nil, int(offset), int(m.Limit()))
	}
	m.grow(uint32(end))
	copy(m.buf[offset:], data)
	return nil
}

func (m *Bytes) ReadU8(offset uint32) (uint8, error) {
	b, err := m.span(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (m *Bytes) ReadU16(offset uint32) (uint16, error) {
	b, err := m.span(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (m *Bytes) ReadU32(offset uint32) (uint32, error) {
	b, err := m.span(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (m *Bytes) ReadU64(offset uint32) (uint64, error) {
	b, err := m.span(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (m *Bytes) WriteU8(offset uint32, value uint8) error {
	return m.Write(offset, []byte{value})
}

func (m *Bytes) WriteU16(offset uint32, value uint16) error {
	return m.Write(offset, binary.LittleEndian.AppendUint16(nil, value))
}

func (m *Bytes) WriteU32(offset uint32, value uint32) error {
	return m.Write(offset, binary.LittleEndian.AppendUint32(nil, value))
}

func (m *Bytes) WriteU64(offset uint32, value uint64) error {
	return m.Write(offset, binary.LittleEndian.AppendUint64(nil, value))
}
