// Package inputs is the boundary to the digital input banks. A bank is one
// group of 16 lines behind one expander (or one Modbus block, or one Linux
// gpiochip request); a Source returns the whole bank in a single atomic
// 16-bit snapshot so the debounce filter always sees a coherent sample.
//
// Bit order is fixed: bit n is line n of the bank, and it stays stable
// across calls. Lines idle high (pulled up), active low wiring is the
// caller's concern.
package inputs

// BankCount and LinesPerBank fix the channel space at 32 inputs.
const (
	BankCount    = 2
	LinesPerBank = 16
)

// Source reads one input bank.
type Source interface {
	// ReadSnapshot returns all 16 line states in one read.
	ReadSnapshot() (uint16, error)
}
