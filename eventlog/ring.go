package eventlog

// Ring describes a circular region of record-aligned slots on a storage
// device. All cursor movement in the store goes through it; call sites never
// do raw address arithmetic.
//
// One slot's worth of distance is kept ambiguous on purpose: when the write
// cursor catches the read cursor the store advances both, so Distance never
// reaches Size and full/empty stay distinguishable.
type Ring struct {
	Base   uint32 // first byte of the region
	Size   uint32 // region length in bytes, a multiple of Stride
	Stride uint32 // slot size in bytes
}

// Next returns the slot after off, wrapping at the region boundary.
func (r Ring) Next(off uint32) uint32 {
	off += r.Stride
	if off >= r.Base+r.Size {
		off = r.Base
	}
	return off
}

// Prev returns the slot before off, wrapping at the region base.
func (r Ring) Prev(off uint32) uint32 {
	if off == r.Base {
		return r.Base + r.Size - r.Stride
	}
	return off - r.Stride
}

// Contains reports whether off is a slot boundary inside the region.
func (r Ring) Contains(off uint32) bool {
	if off < r.Base || off >= r.Base+r.Size {
		return false
	}
	return (off-r.Base)%r.Stride == 0
}

// Distance returns how many slots lie from older up to (not including)
// newer, walking forward with wrap.
func (r Ring) Distance(older, newer uint32) uint32 {
	if newer >= older {
		return (newer - older) / r.Stride
	}
	return (r.Size - (older - newer)) / r.Stride
}

// Slots returns the total slot count of the region.
func (r Ring) Slots() uint32 { return r.Size / r.Stride }
