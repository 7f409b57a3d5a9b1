package clock

import (
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ds3231"

	"datalogger-go/errcode"
)

// DS3231 adapts the temperature-compensated RTC module to Clock.
type DS3231 struct {
	dev ds3231.Device
}

// NewDS3231 wraps the RTC on bus and starts its oscillator if the backup
// battery left it stopped.
func NewDS3231(bus drivers.I2C) (*DS3231, error) {
	dev := ds3231.New(bus)
	dev.Configure()
	if !dev.IsRunning() {
		if err := dev.SetRunning(true); err != nil {
			return nil, errcode.Wrap(errcode.ClockFailed, "ds3231.start", err)
		}
	}
	return &DS3231{dev: dev}, nil
}

func (c *DS3231) Now() (time.Time, error) {
	t, err := c.dev.ReadTime()
	if err != nil {
		return time.Time{}, errcode.Wrap(errcode.ClockFailed, "ds3231.read", err)
	}
	return t, nil
}

func (c *DS3231) Set(t time.Time) error {
	return errcode.Wrap(errcode.ClockFailed, "ds3231.set", c.dev.SetTime(t))
}

// Valid reports whether the RTC considers its time plausible (no oscillator
// stop since it was last set).
func (c *DS3231) Valid() bool { return c.dev.IsTimeValid() }
