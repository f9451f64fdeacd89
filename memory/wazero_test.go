package memory

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/tetratelabs/wazero"

	cerrors "github.com/wippyai/cdr-streamer/errors"
)

func TestMemoryModuleEncoding(t *testing.T) {
	want := []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		0x05, 0x03, 0x01, 0x00, 0x01,
		0x07, 0x0a, 0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
	}
	if got := memoryModule(1); !bytes.Equal(got, want) {
		t.Errorf("memoryModule(1) = % x", got)
	}
	if got := uleb128(300); !bytes.Equal(got, []byte{0xac, 0x02}) {
		t.Errorf("uleb128(300) = % x", got)
	}
}

func TestGuestMemory(t *testing.T) {
	ctx := context.Background()
	g, err := NewGuest(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close(ctx)

	if g.Size() != 65536 {
		t.Fatalf("Size() = %d, want one page", g.Size())
	}

	if err := g.WriteU16(10, 0xbeef); err != nil {
		t.Fatal(err)
	}
	if err := g.WriteU64(16, 42); err != nil {
		t.Fatal(err)
	}
	if err := g.Write(32, []byte("cdr")); err != nil {
		t.Fatal(err)
	}

	if v, err := g.ReadU16(10); err != nil || v != 0xbeef {
		t.Errorf("ReadU16 = %x, %v", v, err)
	}
	if v, err := g.ReadU64(16); err != nil || v != 42 {
		t.Errorf("ReadU64 = %d, %v", v, err)
	}
	if b, err := g.Read(32, 3); err != nil || string(b) != "cdr" {
		t.Errorf("Read = %q, %v", b, err)
	}
	if v, err := g.ReadU8(11); err != nil || v != 0xbe {
		t.Errorf("ReadU8 = %x, %v", v, err)
	}

	oob := &cerrors.Error{Phase: cerrors.PhaseEncode, Kind: cerrors.KindOutOfBounds}
	if err := g.WriteU32(65534, 1); !errors.Is(err, oob) {
		t.Errorf("WriteU32 past end: %v", err)
	}
	if _, err := g.ReadU32(65534); err == nil {
		t.Error("ReadU32 past end must fail")
	}
}

func TestFromModuleMissingExport(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	mod, err := r.Instantiate(ctx, []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00})
	if err != nil {
		t.Fatal(err)
	}
	_, err = FromModule(mod, "memory")
	if !errors.Is(err, &cerrors.Error{Phase: cerrors.PhaseLoad, Kind: cerrors.KindNotFound}) {
		t.Errorf("err = %v", err)
	}
	if WrapWazero(nil) != nil {
		t.Error("WrapWazero(nil) must be nil")
	}
}
