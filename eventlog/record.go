// Package eventlog owns the persistent event log: the fixed 64-byte record
// codec, the circular data region on the data store, and the wear-leveled
// header rotation on the header store.
package eventlog

import (
	"time"

	"datalogger-go/errcode"
	"datalogger-go/x/fixfmt"
)

// RecordSize is the serialized size of one record and the atomic unit of
// the data store: a 19-byte timestamp, a space, a 40-byte label, a space
// and a 3-byte state field. Two records fit one storage page.
const RecordSize = 0x40

// LabelSize is the fixed width of a channel label.
const LabelSize = 40

// Field offsets inside a serialized record.
const (
	offTimestamp = 0  // "YYYY-MM-DD HH:MM:SS"
	offLabel     = 20 // 40 bytes, space padded
	offState     = 61 // " ON" or "OFF"
)

// Record is one logged input transition.
type Record struct {
	At    time.Time
	Label string // at most LabelSize bytes, stored space padded
	On    bool
}

// Encode serializes r into buf, which must be RecordSize bytes.
func (r Record) Encode(buf []byte) {
	_ = buf[RecordSize-1]

	fixfmt.PutUint(buf[0:4], uint(r.At.Year()))
	buf[4] = '-'
	fixfmt.PutUint(buf[5:7], uint(r.At.Month()))
	buf[7] = '-'
	fixfmt.PutUint(buf[8:10], uint(r.At.Day()))
	buf[10] = ' '
	fixfmt.PutUint(buf[11:13], uint(r.At.Hour()))
	buf[13] = ':'
	fixfmt.PutUint(buf[14:16], uint(r.At.Minute()))
	buf[16] = ':'
	fixfmt.PutUint(buf[17:19], uint(r.At.Second()))
	buf[19] = ' '

	fixfmt.PutPadded(buf[offLabel:offLabel+LabelSize], r.Label)
	buf[offLabel+LabelSize] = ' '

	if r.On {
		copy(buf[offState:], " ON")
	} else {
		copy(buf[offState:], "OFF")
	}
}

// DecodeRecord parses a serialized record. The state field accepts only the
// two values Encode produces; anything else (including erased storage) is a
// BadRecord.
func DecodeRecord(buf []byte) (Record, error) {
	if len(buf) < RecordSize {
		return Record{}, &errcode.E{C: errcode.BadRecord, Op: "record.decode",
			Msg: "short buffer"}
	}

	year, ok1 := fixfmt.ParseUint(buf[0:4])
	mon, ok2 := fixfmt.ParseUint(buf[5:7])
	day, ok3 := fixfmt.ParseUint(buf[8:10])
	hour, ok4 := fixfmt.ParseUint(buf[11:13])
	min, ok5 := fixfmt.ParseUint(buf[14:16])
	sec, ok6 := fixfmt.ParseUint(buf[17:19])
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6) {
		return Record{}, &errcode.E{C: errcode.BadRecord, Op: "record.decode",
			Msg: "bad timestamp"}
	}

	var on bool
	switch string(buf[offState : offState+3]) {
	case " ON":
		on = true
	case "OFF":
		on = false
	default:
		return Record{}, &errcode.E{C: errcode.BadRecord, Op: "record.decode",
			Msg: "bad state field"}
	}

	return Record{
		At: time.Date(int(year), time.Month(mon), int(day),
			int(hour), int(min), int(sec), 0, time.UTC),
		Label: string(fixfmt.TrimTrailing(buf[offLabel : offLabel+LabelSize])),
		On:    on,
	}, nil
}

// Text renders r exactly as it sits in storage. Responses stream this form,
// one record per line.
func (r Record) Text() string {
	var buf [RecordSize]byte
	r.Encode(buf[:])
	return string(buf[:])
}
