package inputs

import (
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/mcp23017"

	"datalogger-go/errcode"
)

// MCP23017 reads one bank from an MCP23017 I/O expander. The expander holds
// the hardware addresses 0x20 and 0x21 for bank 0 and bank 1.
type MCP23017 struct {
	dev *mcp23017.Device
}

// NewMCP23017 wraps the expander at addr and configures all 16 pins as
// pulled-up inputs.
func NewMCP23017(bus drivers.I2C, addr uint8) (*MCP23017, error) {
	dev, err := mcp23017.NewI2C(bus, addr)
	if err != nil {
		return nil, errcode.Wrap(errcode.InputFailed, "mcp23017.open", err)
	}
	modes := make([]mcp23017.PinMode, LinesPerBank)
	for i := range modes {
		modes[i] = mcp23017.Input | mcp23017.Pullup
	}
	if err := dev.SetModes(modes); err != nil {
		return nil, errcode.Wrap(errcode.InputFailed, "mcp23017.modes", err)
	}
	return &MCP23017{dev: dev}, nil
}

func (s *MCP23017) ReadSnapshot() (uint16, error) {
	pins, err := s.dev.GetPins()
	if err != nil {
		return 0, errcode.Wrap(errcode.InputFailed, "mcp23017.read", err)
	}
	return uint16(pins), nil
}
