package eventlog

import (
	"time"

	"datalogger-go/clock"
	"datalogger-go/errcode"
	"datalogger-go/storage"
)

// Data region geometry: the whole 64 KiB data store is one ring of
// record-size slots.
const (
	dataBase = 0x0000
	dataSize = 0x10000
)

// Store is the persistent event log. It owns the write cursor and the
// header slot rotation exclusively; callers append, read ranges and clear,
// and never see raw addresses except through Addr.
//
// The store never reports full: when the write cursor catches the oldest
// record, the oldest record is silently overwritten. One data slot always
// stays unoccupied so empty (Latest == Earliest) is unambiguous.
type Store struct {
	data storage.BlockDevice
	hdr  *HeaderStore
	ring Ring
	h    Header
}

// Open recovers the most recent header from the header store and returns a
// ready Store. A fresh (erased) header store, or one whose offsets are not
// record-aligned, yields an empty log rather than a poisoned cursor.
func Open(data storage.BlockDevice, hdr *HeaderStore) (*Store, error) {
	s := &Store{
		data: data,
		hdr:  hdr,
		ring: Ring{Base: dataBase, Size: dataSize, Stride: RecordSize},
	}
	h, err := hdr.Recover()
	if err != nil {
		return nil, err
	}
	if !s.ring.Contains(uint32(h.Latest)) || !s.ring.Contains(uint32(h.Earliest)) {
		h.Latest = dataBase
		h.Earliest = dataBase
	}
	s.h = h
	return s, nil
}

// Append writes rec at the current write cursor, then persists an updated
// header to the next slot in the rotation. The record write and the header
// write are not atomic together: power lost between them leaves the previous
// header in charge and the new record invisible until the next append
// overwrites it — a loss window of at most one record.
//
// On any write failure the in-memory cursors are left untouched, so a retry
// starts from a consistent state.
func (s *Store) Append(rec Record) error {
	var buf [RecordSize]byte
	rec.Encode(buf[:])
	if err := s.data.WriteBlock(s.h.Latest, buf[:]); err != nil {
		return errcode.Wrap(errcode.WriteFailed, "store.append", err)
	}

	next := Header{
		InvEpoch: clock.InvEpoch(rec.At),
		Latest:   uint16(s.ring.Next(uint32(s.h.Latest))),
		Earliest: s.h.Earliest,
	}
	if next.Latest == next.Earliest {
		// The ring is full: the oldest record is silently discarded.
		next.Earliest = uint16(s.ring.Next(uint32(next.Earliest)))
	}
	if err := s.hdr.Persist(next); err != nil {
		return err
	}
	s.h = next
	return nil
}

// Clear moves the logical read boundary up to the write cursor and persists
// the header. No data bytes are touched — like append's soft overwrite,
// deletion is purely a header operation.
func (s *Store) Clear(now time.Time) error {
	next := s.h
	next.Earliest = next.Latest
	next.InvEpoch = clock.InvEpoch(now)
	if err := s.hdr.Persist(next); err != nil {
		return err
	}
	s.h = next
	return nil
}

// ReadBetween returns an iterator walking backward from `from` toward `to`
// in record steps, newest first. The sequence is empty when the offsets are
// equal. Each call returns a fresh iterator, so a range can be re-read.
func (s *Store) ReadBetween(from, to uint16) *Iterator {
	return &Iterator{s: s, cur: uint32(from), stop: uint32(to)}
}

// ReadAll iterates the whole retained range, newest first.
func (s *Store) ReadAll() *Iterator {
	return s.ReadBetween(s.h.Latest, s.h.Earliest)
}

// Len returns the number of retained records.
func (s *Store) Len() int {
	return int(s.ring.Distance(uint32(s.h.Earliest), uint32(s.h.Latest)))
}

// Addr reports the active header slot address and both cursors, for the
// diagnostic request surface.
func (s *Store) Addr() (slot, latest, earliest uint16) {
	return s.hdr.Active(), s.h.Latest, s.h.Earliest
}

// LastAt reports when the header was last persisted. ok is false on a
// device that has never been written.
func (s *Store) LastAt() (t time.Time, ok bool) {
	if s.h.InvEpoch == ^uint32(0) {
		return time.Time{}, false
	}
	return time.Unix(int64(clock.EpochOf(s.h.InvEpoch)), 0).UTC(), true
}

// Iterator is a finite backward walk over stored records.
type Iterator struct {
	s    *Store
	cur  uint32
	stop uint32
	err  error
}

// Next decodes the record before the current position. It returns false at
// the end of the range or on the first decode/read error; check Err.
func (it *Iterator) Next() (Record, bool) {
	if it.err != nil || it.cur == it.stop {
		return Record{}, false
	}
	it.cur = it.s.ring.Prev(it.cur)
	var buf [RecordSize]byte
	if err := it.s.data.ReadBlock(uint16(it.cur), buf[:]); err != nil {
		it.err = errcode.Wrap(errcode.ReadFailed, "store.read", err)
		return Record{}, false
	}
	rec, err := DecodeRecord(buf[:])
	if err != nil {
		it.err = err
		return Record{}, false
	}
	return rec, true
}

// Err returns the error that terminated the walk, if any.
func (it *Iterator) Err() error { return it.err }
