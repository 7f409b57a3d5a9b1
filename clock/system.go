package clock

import (
	"sync"
	"time"
)

// System is the host wall clock. Set does not touch the operating system
// clock; it records an offset, so the /time? request works without
// privileges on a host deployment.
type System struct {
	mu     sync.Mutex
	offset time.Duration
}

func NewSystem() *System { return &System{} }

func (c *System) Now() (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Now().Add(c.offset).Truncate(time.Second), nil
}

func (c *System) Set(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = t.Sub(time.Now().Truncate(time.Second))
	return nil
}
