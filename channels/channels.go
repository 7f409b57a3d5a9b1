// Package channels keeps the 32 input names on the header store, below the
// header slot range. Slot addresses derive from the bank and line alone, so
// the table needs no index: bank*0x0800 + line*0x0080.
package channels

import (
	"datalogger-go/errcode"
	"datalogger-go/inputs"
	"datalogger-go/storage"
	"datalogger-go/x/fixfmt"
)

// LabelSize is the fixed width of a stored name, space padded on the right.
const LabelSize = 40

// Address strides of the name table on device A.
const (
	bankStride = 0x0800
	lineStride = 0x0080
)

// Table reads and writes channel names. It is independent of the event log
// and mutated only by explicit rename or reset requests.
type Table struct {
	dev storage.BlockDevice
}

// NewTable wraps the name region of the header store.
func NewTable(dev storage.BlockDevice) *Table {
	return &Table{dev: dev}
}

func slotAddr(bank, line int) uint16 {
	return uint16(bank*bankStride + line*lineStride)
}

func validSlot(bank, line int) bool {
	return bank >= 0 && bank < inputs.BankCount &&
		line >= 0 && line < inputs.LinesPerBank
}

// Get returns the stored name with its padding trimmed.
func (t *Table) Get(bank, line int) (string, error) {
	raw, err := t.GetPadded(bank, line)
	if err != nil {
		return "", err
	}
	return string(fixfmt.TrimTrailing([]byte(raw))), nil
}

// GetPadded returns the full 40-byte slot as stored.
func (t *Table) GetPadded(bank, line int) (string, error) {
	if !validSlot(bank, line) {
		return "", &errcode.E{C: errcode.BadRequest, Op: "channels.get",
			Msg: "bank or line out of range"}
	}
	var buf [LabelSize]byte
	if err := t.dev.ReadBlock(slotAddr(bank, line), buf[:]); err != nil {
		return "", errcode.Wrap(errcode.ReadFailed, "channels.get", err)
	}
	return string(buf[:]), nil
}

// Set stores name, space padded to the slot width. Empty names and names
// longer than the slot are rejected without touching storage.
func (t *Table) Set(bank, line int, name string) error {
	if !validSlot(bank, line) {
		return &errcode.E{C: errcode.BadRequest, Op: "channels.set",
			Msg: "bank or line out of range"}
	}
	if len(name) == 0 || len(name) > LabelSize {
		return &errcode.E{C: errcode.BadRequest, Op: "channels.set",
			Msg: "name must be 1..40 bytes"}
	}
	var buf [LabelSize]byte
	fixfmt.PutPadded(buf[:], name)
	return errcode.Wrap(errcode.WriteFailed, "channels.set",
		t.dev.WriteBlock(slotAddr(bank, line), buf[:]))
}

// DefaultLabel is the placeholder a slot resets to: the bank and line as
// hex digits, right aligned in the slot.
func DefaultLabel(bank, line int) string {
	var buf [LabelSize]byte
	for i := range buf {
		buf[i] = ' '
	}
	buf[LabelSize-4] = 'b'
	buf[LabelSize-3] = fixfmt.HexDigit(uint(bank))
	buf[LabelSize-2] = 'c'
	buf[LabelSize-1] = fixfmt.HexDigit(uint(line))
	return string(buf[:])
}

// Initialized reports whether the table has ever been written. Erased
// storage reads as 0xFF, which no stored name can start with.
func (t *Table) Initialized() (bool, error) {
	raw, err := t.GetPadded(0, 0)
	if err != nil {
		return false, err
	}
	return raw[0] != 0xFF, nil
}

// Reset writes the default placeholder into every slot.
func (t *Table) Reset() error {
	for bank := 0; bank < inputs.BankCount; bank++ {
		for line := 0; line < inputs.LinesPerBank; line++ {
			label := DefaultLabel(bank, line)
			if err := t.dev.WriteBlock(slotAddr(bank, line), []byte(label)); err != nil {
				return errcode.Wrap(errcode.WriteFailed, "channels.reset", err)
			}
		}
	}
	return nil
}

// List calls fn for every slot in bank-then-line order with the padded name.
func (t *Table) List(fn func(bank, line int, padded string) error) error {
	for bank := 0; bank < inputs.BankCount; bank++ {
		for line := 0; line < inputs.LinesPerBank; line++ {
			padded, err := t.GetPadded(bank, line)
			if err != nil {
				return err
			}
			if err := fn(bank, line, padded); err != nil {
				return err
			}
		}
	}
	return nil
}
