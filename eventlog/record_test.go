package eventlog

import (
	"strings"
	"testing"
	"time"
)

func TestRecord_EncodeLayout(t *testing.T) {
	r := Record{
		At:    time.Date(2026, time.March, 7, 4, 5, 9, 0, time.UTC),
		Label: "DOOR",
		On:    true,
	}
	var buf [RecordSize]byte
	r.Encode(buf[:])

	got := string(buf[:])
	want := "2026-03-07 04:05:09 DOOR" + strings.Repeat(" ", 36) + "  ON"
	if got != want {
		t.Fatalf("encoded\n%q\nwant\n%q", got, want)
	}
	if len(got) != RecordSize {
		t.Fatalf("size = %d", len(got))
	}
}

func TestRecord_RoundTrip(t *testing.T) {
	for _, r := range []Record{
		{At: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), Label: "PROGRAM LINK FAILURE", On: false},
		{At: time.Date(1999, time.December, 31, 23, 59, 59, 0, time.UTC), Label: strings.Repeat("X", LabelSize), On: true},
		{At: time.Date(2026, time.August, 26, 12, 30, 0, 0, time.UTC), Label: "b1cf", On: true},
	} {
		var buf [RecordSize]byte
		r.Encode(buf[:])
		got, err := DecodeRecord(buf[:])
		if err != nil {
			t.Fatalf("decode %q: %v", buf, err)
		}
		if !got.At.Equal(r.At) || got.Label != r.Label || got.On != r.On {
			t.Fatalf("round trip: got %+v want %+v", got, r)
		}
	}
}

func TestDecodeRecord_RejectsErased(t *testing.T) {
	buf := make([]byte, RecordSize)
	for i := range buf {
		buf[i] = 0xFF
	}
	if _, err := DecodeRecord(buf); err == nil {
		t.Fatal("decoded erased storage")
	}
}

func TestDecodeRecord_RejectsBadState(t *testing.T) {
	r := Record{At: time.Date(2026, time.May, 1, 1, 2, 3, 0, time.UTC), Label: "A", On: true}
	var buf [RecordSize]byte
	r.Encode(buf[:])
	copy(buf[61:], "XXX")
	if _, err := DecodeRecord(buf[:]); err == nil {
		t.Fatal("accepted bad state field")
	}
}
