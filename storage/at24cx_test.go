package storage

import (
	"bytes"
	"testing"

	"tinygo.org/x/drivers"
)

// Compile-time check.
var _ drivers.I2C = (*fakeEEPROMBus)(nil)

// fakeEEPROMBus emulates 24LC512 parts on the wire, one 64 KiB array per
// device address: a write transfer carries a two-byte big-endian word
// address followed by data, a read transfer sets the address and clocks
// data out.
type fakeEEPROMBus struct {
	mem map[uint16]*[0x10000]byte
}

func newFakeEEPROMBus() *fakeEEPROMBus {
	return &fakeEEPROMBus{mem: make(map[uint16]*[0x10000]byte)}
}

func (f *fakeEEPROMBus) chip(addr uint16) *[0x10000]byte {
	m, ok := f.mem[addr]
	if !ok {
		m = &[0x10000]byte{}
		for i := range m {
			m[i] = 0xFF
		}
		f.mem[addr] = m
	}
	return m
}

func (f *fakeEEPROMBus) Tx(addr uint16, w, r []byte) error {
	if len(w) < 2 {
		return nil
	}
	m := f.chip(addr)
	at := int(w[0])<<8 | int(w[1])
	for i, b := range w[2:] {
		m[(at+i)&0xFFFF] = b
	}
	for i := range r {
		r[i] = m[(at+i)&0xFFFF]
	}
	return nil
}

func TestAT24CX_ErasedReadsOnes(t *testing.T) {
	dev := NewAT24CX(newFakeEEPROMBus(), 0x51)

	var buf [PageSize]byte
	if err := dev.ReadBlock(0x1000, buf[:]); err != nil {
		t.Fatal(err)
	}
	for i, b := range buf {
		if b != 0xFF {
			t.Fatalf("byte %d = %#x, want erased", i, b)
		}
	}
}

func TestAT24CX_WriteReadBack(t *testing.T) {
	bus := newFakeEEPROMBus()
	dev := NewAT24CX(bus, 0x50)

	data := bytes.Repeat([]byte{0xA5, 0x5A}, 32) // one 64-byte record
	if err := dev.WriteBlock(0x0480, data); err != nil {
		t.Fatal(err)
	}

	var got [64]byte
	if err := dev.ReadBlock(0x0480, got[:]); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got[:], data) {
		t.Fatalf("read back %x, want %x", got, data)
	}

	// Neighbouring bytes stay erased.
	m := bus.chip(0x50)
	if m[0x047F] != 0xFF || m[0x04C0] != 0xFF {
		t.Fatal("write spilled outside the block")
	}
}

func TestAT24CX_TwoChipsShareOneBus(t *testing.T) {
	bus := newFakeEEPROMBus()
	meta := NewAT24CX(bus, 0x50)
	data := NewAT24CX(bus, 0x51)

	if err := meta.WriteBlock(0xFF80, []byte{1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}

	var got [4]byte
	if err := data.ReadBlock(0xFF80, got[:]); err != nil {
		t.Fatal(err)
	}
	if got != [4]byte{0xFF, 0xFF, 0xFF, 0xFF} {
		t.Fatalf("header write leaked onto the data chip: %v", got)
	}
	if err := meta.ReadBlock(0xFF80, got[:]); err != nil {
		t.Fatal(err)
	}
	if got != [4]byte{1, 2, 3, 4} {
		t.Fatalf("got %v", got)
	}
}
