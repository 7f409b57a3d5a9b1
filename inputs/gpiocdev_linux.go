//go:build linux

package inputs

import (
	"github.com/warthog618/go-gpiocdev"

	"datalogger-go/errcode"
)

// GPIOCdev reads one bank from a Linux GPIO character device. The 16 line
// offsets are requested together so Values returns one coherent sample.
type GPIOCdev struct {
	lines *gpiocdev.Lines
	vals  []int
}

// NewGPIOCdev requests offsets (exactly 16) on the named chip as pulled-up
// inputs.
func NewGPIOCdev(chip string, offsets []int) (*GPIOCdev, error) {
	if len(offsets) != LinesPerBank {
		return nil, &errcode.E{C: errcode.InputFailed, Op: "gpiocdev.request",
			Msg: "need exactly 16 line offsets"}
	}
	lines, err := gpiocdev.RequestLines(chip, offsets,
		gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		return nil, errcode.Wrap(errcode.InputFailed, "gpiocdev.request", err)
	}
	return &GPIOCdev{lines: lines, vals: make([]int, LinesPerBank)}, nil
}

func (s *GPIOCdev) ReadSnapshot() (uint16, error) {
	if err := s.lines.Values(s.vals); err != nil {
		return 0, errcode.Wrap(errcode.InputFailed, "gpiocdev.read", err)
	}
	var snap uint16
	for i, v := range s.vals {
		if v != 0 {
			snap |= 1 << uint(i)
		}
	}
	return snap, nil
}

// Close releases the requested lines.
func (s *GPIOCdev) Close() error { return s.lines.Close() }
