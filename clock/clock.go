// Package clock is the boundary to the battery-backed wall clock. Records
// are stamped from it, and the header's inverse epoch derives from it, so
// every implementation must report a monotonically non-decreasing epoch as
// long as nobody sets the time backwards.
package clock

import "time"

// Clock reads and sets the wall clock.
type Clock interface {
	Now() (time.Time, error)
	Set(t time.Time) error
}

// InvEpoch maps t onto the header's inverse epoch: ^uint32(0) minus the
// epoch seconds. Freshly erased storage reads as all ones, which is the
// largest possible value here, so erased header slots sort last instead of
// looking most recent.
func InvEpoch(t time.Time) uint32 {
	return ^uint32(0) - uint32(t.Unix())
}

// EpochOf inverts InvEpoch.
func EpochOf(inv uint32) uint32 {
	return ^uint32(0) - inv
}
