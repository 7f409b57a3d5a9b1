package eventlog

import (
	"errors"
	"testing"
	"time"

	"datalogger-go/storage"
)

var errSimulated = errors.New("simulated i2c nak")

func newTestStore(t *testing.T) (*Store, *storage.MemDevice, *storage.MemDevice) {
	t.Helper()
	data := storage.NewMemDevice()
	hdrDev := storage.NewMemDevice()
	s, err := Open(data, NewHeaderStore(hdrDev))
	if err != nil {
		t.Fatal(err)
	}
	return s, data, hdrDev
}

func rec(i int, on bool) Record {
	return Record{
		At:    time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Second),
		Label: "CHANNEL",
		On:    on,
	}
}

func drain(t *testing.T, it *Iterator) []Record {
	t.Helper()
	var out []Record
	for {
		r, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, r)
	}
	if err := it.Err(); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestStore_FreshDeviceIsEmpty(t *testing.T) {
	s, _, _ := newTestStore(t)
	if s.Len() != 0 {
		t.Fatalf("len = %d", s.Len())
	}
	if got := drain(t, s.ReadAll()); len(got) != 0 {
		t.Fatalf("read %d records from fresh store", len(got))
	}
}

func TestStore_AppendReadBack_NewestFirst(t *testing.T) {
	s, _, _ := newTestStore(t)
	const n = 5
	for i := 0; i < n; i++ {
		if err := s.Append(rec(i, i%2 == 0)); err != nil {
			t.Fatal(err)
		}
	}
	got := drain(t, s.ReadAll())
	if len(got) != n {
		t.Fatalf("len = %d", len(got))
	}
	for i, r := range got {
		want := rec(n-1-i, (n-1-i)%2 == 0)
		if !r.At.Equal(want.At) || r.On != want.On || r.Label != want.Label {
			t.Fatalf("record %d: got %+v want %+v", i, r, want)
		}
	}
}

func TestStore_ReadBetween_Restartable(t *testing.T) {
	s, _, _ := newTestStore(t)
	for i := 0; i < 3; i++ {
		if err := s.Append(rec(i, true)); err != nil {
			t.Fatal(err)
		}
	}
	_, latest, earliest := s.Addr()
	first := drain(t, s.ReadBetween(latest, earliest))
	second := drain(t, s.ReadBetween(latest, earliest))
	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("runs: %d then %d", len(first), len(second))
	}
}

func TestStore_OverflowDropsOldest(t *testing.T) {
	s, _, _ := newTestStore(t)
	capacity := int(s.ring.Slots()) - 1

	for i := 0; i < capacity; i++ {
		if err := s.Append(rec(i, true)); err != nil {
			t.Fatal(err)
		}
	}
	if s.Len() != capacity {
		t.Fatalf("len = %d, want %d", s.Len(), capacity)
	}
	_, _, earliestBefore := s.Addr()

	// Each excess append must advance the oldest boundary by exactly one
	// record and keep the count pinned at capacity.
	for i := 0; i < 3; i++ {
		if err := s.Append(rec(capacity+i, true)); err != nil {
			t.Fatal(err)
		}
		if s.Len() != capacity {
			t.Fatalf("len after overflow %d = %d", i, s.Len())
		}
		_, _, earliest := s.Addr()
		want := uint16(s.ring.Next(uint32(earliestBefore)))
		if earliest != want {
			t.Fatalf("earliest = %#x, want %#x", earliest, want)
		}
		earliestBefore = earliest
	}

	// Newest record is the last appended; the very first is gone.
	got := drain(t, s.ReadAll())
	if !got[0].At.Equal(rec(capacity+2, true).At) {
		t.Fatalf("newest = %v", got[0].At)
	}
	if !got[len(got)-1].At.Equal(rec(3, true).At) {
		t.Fatalf("oldest = %v", got[len(got)-1].At)
	}
}

func TestStore_ClearThenAppend(t *testing.T) {
	s, _, _ := newTestStore(t)
	for i := 0; i < 4; i++ {
		if err := s.Append(rec(i, true)); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Clear(rec(4, true).At); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 0 {
		t.Fatalf("len after clear = %d", s.Len())
	}
	if got := drain(t, s.ReadAll()); len(got) != 0 {
		t.Fatalf("read %d records after clear", len(got))
	}

	if err := s.Append(rec(5, false)); err != nil {
		t.Fatal(err)
	}
	got := drain(t, s.ReadAll())
	if len(got) != 1 || got[0].On {
		t.Fatalf("after clear+append: %+v", got)
	}
}

func TestStore_WriteFailureLeavesCursors(t *testing.T) {
	s, data, _ := newTestStore(t)
	if err := s.Append(rec(0, true)); err != nil {
		t.Fatal(err)
	}
	slot, latest, earliest := s.Addr()

	data.WriteErr = errSimulated
	if err := s.Append(rec(1, true)); !errors.Is(err, errSimulated) {
		t.Fatalf("err = %v", err)
	}
	if s2, l2, e2 := s.Addr(); s2 != slot || l2 != latest || e2 != earliest {
		t.Fatal("cursors mutated by failed append")
	}

	// A retry after the fault clears lands in the same slot.
	data.WriteErr = nil
	if err := s.Append(rec(1, true)); err != nil {
		t.Fatal(err)
	}
	if got := drain(t, s.ReadAll()); len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
}

func TestStore_HeaderWriteFailureLeavesCursors(t *testing.T) {
	s, _, hdrDev := newTestStore(t)
	if err := s.Append(rec(0, true)); err != nil {
		t.Fatal(err)
	}
	_, latest, _ := s.Addr()

	hdrDev.WriteErr = errSimulated
	if err := s.Append(rec(1, true)); !errors.Is(err, errSimulated) {
		t.Fatalf("err = %v", err)
	}
	if _, l2, _ := s.Addr(); l2 != latest {
		t.Fatal("write cursor advanced although header persist failed")
	}

	hdrDev.WriteErr = nil
	if err := s.Append(rec(1, true)); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d", s.Len())
	}
}

func TestStore_RecoverAfterReopen(t *testing.T) {
	s, data, hdrDev := newTestStore(t)
	for i := 0; i < 10; i++ {
		if err := s.Append(rec(i, true)); err != nil {
			t.Fatal(err)
		}
	}
	slot, latest, earliest := s.Addr()

	reopened, err := Open(data, NewHeaderStore(hdrDev))
	if err != nil {
		t.Fatal(err)
	}
	if s2, l2, e2 := reopened.Addr(); s2 != slot || l2 != latest || e2 != earliest {
		t.Fatalf("recovered (%#x %#x %#x), want (%#x %#x %#x)",
			s2, l2, e2, slot, latest, earliest)
	}
	if got := drain(t, reopened.ReadAll()); len(got) != 10 {
		t.Fatalf("len = %d", len(got))
	}
}
