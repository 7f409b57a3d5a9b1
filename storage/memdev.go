package storage

// MemDevice is an in-memory BlockDevice covering the full 16-bit address
// space. It backs tests and the host simulator. Fresh cells read as 0xFF,
// matching erased EEPROM.
type MemDevice struct {
	cells [0x10000]byte

	// WriteErr, if set, is returned by the next WriteBlock calls without
	// touching the cells. Clear it to recover.
	WriteErr error

	// ReadErr does the same for ReadBlock.
	ReadErr error

	// Writes counts WriteBlock calls, one per call regardless of length.
	Writes int
}

// NewMemDevice returns a device with every cell erased (0xFF).
func NewMemDevice() *MemDevice {
	d := &MemDevice{}
	for i := range d.cells {
		d.cells[i] = 0xFF
	}
	return d
}

func (d *MemDevice) ReadBlock(addr uint16, buf []byte) error {
	if d.ReadErr != nil {
		return d.ReadErr
	}
	for i := range buf {
		buf[i] = d.cells[addr+uint16(i)]
	}
	return nil
}

func (d *MemDevice) WriteBlock(addr uint16, data []byte) error {
	if d.WriteErr != nil {
		return d.WriteErr
	}
	d.Writes++
	for i, b := range data {
		d.cells[addr+uint16(i)] = b
	}
	return nil
}

// Peek returns n bytes starting at addr without going through ReadBlock.
func (d *MemDevice) Peek(addr uint16, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = d.cells[addr+uint16(i)]
	}
	return out
}
