package clock

import (
	"testing"
	"time"

	"tinygo.org/x/drivers"
)

// Compile-time check.
var _ drivers.I2C = (*fakeRTC)(nil)

// DS3231 register addresses used by the fake.
const (
	regSeconds = 0x00
	regControl = 0x0E
	regStatus  = 0x0F
)

// fakeRTC emulates the DS3231 register file: a one-byte write sets the
// register pointer for a read, a longer write stores bytes from that
// register onward.
type fakeRTC struct {
	regs [0x13]byte
}

func (f *fakeRTC) Tx(addr uint16, w, r []byte) error {
	if len(w) == 0 {
		return nil
	}
	at := int(w[0])
	for i, b := range w[1:] {
		f.regs[at+i] = b
	}
	for i := range r {
		r[i] = f.regs[at+i]
	}
	return nil
}

func bcd(v int) byte { return byte(v/10<<4 | v%10) }

// load stores t into the timekeeping registers the way the chip holds it.
func (f *fakeRTC) load(t time.Time) {
	f.regs[regSeconds+0] = bcd(t.Second())
	f.regs[regSeconds+1] = bcd(t.Minute())
	f.regs[regSeconds+2] = bcd(t.Hour()) // 24h mode, bit 6 clear
	f.regs[regSeconds+3] = byte(t.Weekday() + 1)
	f.regs[regSeconds+4] = bcd(t.Day())
	f.regs[regSeconds+5] = bcd(int(t.Month()))
	f.regs[regSeconds+6] = bcd(t.Year() - 2000)
}

func TestDS3231_ReadsLoadedTime(t *testing.T) {
	bus := &fakeRTC{}
	want := time.Date(2026, time.March, 7, 4, 5, 9, 0, time.UTC)
	bus.load(want)

	clk, err := NewDS3231(bus)
	if err != nil {
		t.Fatal(err)
	}
	got, err := clk.Now()
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDS3231_SetReadRoundTrip(t *testing.T) {
	bus := &fakeRTC{}
	bus.load(time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC))

	clk, err := NewDS3231(bus)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2026, time.June, 1, 8, 30, 15, 0, time.UTC)
	if err := clk.Set(want); err != nil {
		t.Fatal(err)
	}
	got, err := clk.Now()
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDS3231_StartsStoppedOscillator(t *testing.T) {
	bus := &fakeRTC{}
	bus.load(time.Date(2026, time.March, 7, 4, 5, 9, 0, time.UTC))
	bus.regs[regControl] = 0x80 // EOSC set: oscillator stopped on battery

	if _, err := NewDS3231(bus); err != nil {
		t.Fatal(err)
	}
	if bus.regs[regControl]&0x80 != 0 {
		t.Fatal("oscillator still stopped after open")
	}
}
