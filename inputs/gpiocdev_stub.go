//go:build !linux

package inputs

import "datalogger-go/errcode"

// GPIOCdev is only available on Linux hosts.
type GPIOCdev struct{}

func NewGPIOCdev(chip string, offsets []int) (*GPIOCdev, error) {
	return nil, &errcode.E{C: errcode.InputFailed, Op: "gpiocdev.request",
		Msg: "gpio character devices need linux"}
}

func (s *GPIOCdev) ReadSnapshot() (uint16, error) {
	return 0, &errcode.E{C: errcode.InputFailed, Op: "gpiocdev.read",
		Msg: "gpio character devices need linux"}
}

func (s *GPIOCdev) Close() error { return nil }
