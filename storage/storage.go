// Package storage defines the block-level boundary to the two non-volatile
// devices the logger writes to: device A keeps the rotating log header and
// the channel name table, device B keeps the event records.
//
// Addresses are 16-bit, matching a 64 KiB part. A write must never cross a
// page boundary: the parts wrap inside the page and silently corrupt the
// neighbouring bytes. That is a caller-enforced precondition; implementations
// do not validate it.
package storage

// PageSize is the physical write-page size of the supported parts.
const PageSize = 0x80

// BlockDevice is a byte-addressed non-volatile device.
type BlockDevice interface {
	// ReadBlock fills buf from the device starting at addr.
	ReadBlock(addr uint16, buf []byte) error
	// WriteBlock stores data at addr. Callers keep writes inside one page.
	WriteBlock(addr uint16, data []byte) error
}
