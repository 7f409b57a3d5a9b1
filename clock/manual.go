package clock

import "time"

// Manual is a test clock. It only moves when stepped.
type Manual struct {
	t time.Time

	// Err, if set, is returned by Now.
	Err error
}

// NewManual starts a manual clock at t.
func NewManual(t time.Time) *Manual { return &Manual{t: t} }

func (c *Manual) Now() (time.Time, error) {
	if c.Err != nil {
		return time.Time{}, c.Err
	}
	return c.t, nil
}

func (c *Manual) Set(t time.Time) error {
	c.t = t
	return nil
}

// Step advances the clock by d.
func (c *Manual) Step(d time.Duration) { c.t = c.t.Add(d) }
