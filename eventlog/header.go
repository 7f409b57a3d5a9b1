package eventlog

import (
	"encoding/binary"

	"datalogger-go/errcode"
	"datalogger-go/storage"
)

// HeaderSize is the serialized size of a log header. A header occupies the
// first bytes of its page-aligned slot; the rest of the page stays blank.
const HeaderSize = 8

// Header slot geometry on the header store. Slots run from the top of the
// device down to the bottom bound in page strides; the channel name table
// lives below the bound.
const (
	slotTop    = 0xFF80
	slotBottom = 0x1000
	slotStride = storage.PageSize
)

// Header describes the ring's state: the write cursor, the oldest retained
// record, and the inverse epoch captured when the header was written.
type Header struct {
	InvEpoch uint32 // ^uint32(0) - epoch seconds at write time
	Latest   uint16 // next free slot in the data region
	Earliest uint16 // oldest retained record
}

// Encode serializes h into buf, which must be HeaderSize bytes.
func (h Header) Encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.InvEpoch)
	binary.LittleEndian.PutUint16(buf[4:6], h.Latest)
	binary.LittleEndian.PutUint16(buf[6:8], h.Earliest)
}

// DecodeHeader parses a serialized header.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, &errcode.E{C: errcode.BadHeader, Op: "header.decode",
			Msg: "short buffer"}
	}
	return Header{
		InvEpoch: binary.LittleEndian.Uint32(buf[0:4]),
		Latest:   binary.LittleEndian.Uint16(buf[4:6]),
		Earliest: binary.LittleEndian.Uint16(buf[6:8]),
	}, nil
}

// headerSlots is the fixed descending rotation over the reserved range.
type headerSlots struct {
	top    uint16
	bottom uint16
	stride uint16
}

// next returns the slot written after addr: one stride down, wrapping back
// to the top at the lower bound.
func (s headerSlots) next(addr uint16) uint16 {
	if addr == s.bottom {
		return s.top
	}
	return addr - s.stride
}

// HeaderStore owns header persistence: slot selection, the recovery scan,
// and round-robin rotation on every write.
type HeaderStore struct {
	dev    storage.BlockDevice
	slots  headerSlots
	active uint16
}

// NewHeaderStore wraps the header device.
func NewHeaderStore(dev storage.BlockDevice) *HeaderStore {
	return &HeaderStore{
		dev:    dev,
		slots:  headerSlots{top: slotTop, bottom: slotBottom, stride: slotStride},
		active: slotTop,
	}
}

// Recover scans every slot in the fixed descending sequence and loads the
// one with the numerically smallest inverse epoch — the most recently
// written, since the field decreases as real time increases. Erased slots
// read all ones and sort last. Ties go to the later-scanned (lower) slot.
//
// This is best-effort: a slot torn by power loss mid-write carries a higher
// apparent inverse epoch or a near-identical one, so it is excluded or
// harmless. No checksum positively rejects torn writes.
func (hs *HeaderStore) Recover() (Header, error) {
	var buf [HeaderSize]byte
	best := ^uint32(0)
	bestAddr := hs.slots.top

	addr := hs.slots.top
	for {
		if err := hs.dev.ReadBlock(addr, buf[:4]); err != nil {
			return Header{}, errcode.Wrap(errcode.ReadFailed, "header.scan", err)
		}
		if inv := binary.LittleEndian.Uint32(buf[:4]); inv <= best {
			best = inv
			bestAddr = addr
		}
		if addr == hs.slots.bottom {
			break
		}
		addr -= hs.slots.stride
	}

	if err := hs.dev.ReadBlock(bestAddr, buf[:]); err != nil {
		return Header{}, errcode.Wrap(errcode.ReadFailed, "header.load", err)
	}
	hs.active = bestAddr
	h, err := DecodeHeader(buf[:])
	if err != nil {
		return Header{}, err
	}
	return h, nil
}

// Persist writes h to the slot after the active one and commits the
// rotation only on success, so a failed write is retried on the same slot.
func (hs *HeaderStore) Persist(h Header) error {
	var buf [HeaderSize]byte
	h.Encode(buf[:])
	slot := hs.slots.next(hs.active)
	if err := hs.dev.WriteBlock(slot, buf[:]); err != nil {
		return errcode.Wrap(errcode.WriteFailed, "header.persist", err)
	}
	hs.active = slot
	return nil
}

// Active returns the address of the slot holding the current header.
func (hs *HeaderStore) Active() uint16 { return hs.active }
