package storage

import (
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/at24cx"

	"datalogger-go/errcode"
)

// AT24CX adapts a 24LC512-class I2C EEPROM to BlockDevice. The part has
// 128-byte pages and a 16-bit address space; both devices of the logger
// (header/name store at 0x50, data store at 0x51) are this chip.
type AT24CX struct {
	dev at24cx.Device
}

// NewAT24CX wraps the EEPROM at addr on bus. The bus must be configured.
func NewAT24CX(bus drivers.I2C, addr uint16) *AT24CX {
	dev := at24cx.New(bus)
	dev.Address = addr
	dev.Configure(at24cx.Config{
		PageSize:        PageSize,
		StartRAMAddress: 0x0000,
		EndRAMAddress:   0xFFFF,
	})
	return &AT24CX{dev: dev}
}

func (d *AT24CX) ReadBlock(addr uint16, buf []byte) error {
	_, err := d.dev.ReadAt(buf, int64(addr))
	return errcode.Wrap(errcode.ReadFailed, "at24cx.read", err)
}

func (d *AT24CX) WriteBlock(addr uint16, data []byte) error {
	_, err := d.dev.WriteAt(data, int64(addr))
	return errcode.Wrap(errcode.WriteFailed, "at24cx.write", err)
}
