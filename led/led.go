// Package led abstracts the three front-panel indicators (system heartbeat,
// network activity, storage activity).
package led

import (
	"log"
	"sync"
)

// Pin is a single output indicator.
type Pin interface {
	Set(on bool)
	Toggle()
}

// Fake records transitions for tests. Safe for concurrent use, since
// services drive pins from their own goroutines.
type Fake struct {
	mu      sync.Mutex
	on      bool
	changes int
}

func NewFake() *Fake { return &Fake{} }

func (f *Fake) Set(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.on != on {
		f.changes++
	}
	f.on = on
}

func (f *Fake) Toggle() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.on = !f.on
	f.changes++
}

func (f *Fake) On() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.on
}

func (f *Fake) Changes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.changes
}

// Noop discards all writes.
type Noop struct{}

func (Noop) Set(bool) {}
func (Noop) Toggle()  {}

// Log prints transitions, the host stand-in for a physical LED.
type Log struct {
	Name string
	on   bool
}

func (l *Log) Set(on bool) {
	if l.on == on {
		return
	}
	l.on = on
	log.Printf("led %s: %v", l.Name, on)
}

func (l *Log) Toggle() { l.Set(!l.on) }
