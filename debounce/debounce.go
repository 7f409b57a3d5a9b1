// Package debounce filters raw input-bank snapshots into confirmed
// transitions. Contacts bounce for a few milliseconds after switching; the
// filter requires a line to hold one value for two consecutive polls before
// it accepts the change, so a bounce that reverts within one poll interval
// never becomes an event. Detection latency is bounded at two poll periods,
// with no per-line timers.
package debounce

// Transition is one confirmed line state change.
type Transition struct {
	Line int  // 0..15 within the bank
	On   bool // settled state
}

// Bank holds the volatile sample history for one 16-line input bank. It is
// never persisted; after a restart the first tick re-baselines against the
// all-high idle state.
type Bank struct {
	prev      uint16 // sample from two ticks ago
	curr      uint16 // most recent sample
	committed uint16 // last value accepted as genuine
}

// NewBank returns a bank with all lines idle (pulled up, high).
func NewBank() *Bank {
	return &Bank{prev: 0xFFFF, curr: 0xFFFF, committed: 0xFFFF}
}

// Tick consumes one snapshot and returns the transitions it confirms, in
// line order. It must be called at a fixed period; the two-sample agreement
// below is only a debounce filter if the samples are evenly spaced.
func (b *Bank) Tick(snapshot uint16) []Transition {
	changed := b.prev ^ snapshot
	b.prev = b.curr
	b.curr = snapshot

	if changed == 0 {
		return nil
	}

	var out []Transition
	for line := 0; line < 16; line++ {
		mask := uint16(1) << uint(line)
		if changed&mask == 0 {
			continue
		}
		// Settled only if the line held one value for the last two polls.
		if b.prev&mask != b.curr&mask {
			continue
		}
		settled := b.curr&mask != 0
		if settled == (b.committed&mask != 0) {
			continue
		}
		if settled {
			b.committed |= mask
		} else {
			b.committed &^= mask
		}
		out = append(out, Transition{Line: line, On: settled})
	}
	return out
}

// Committed returns the last accepted value of every line.
func (b *Bank) Committed() uint16 { return b.committed }
