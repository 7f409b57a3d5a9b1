// Package recorder runs the control loop. One goroutine owns every piece of
// mutable core state — the log store, the debounce history, the name table,
// the clock — and everything else reaches that state by submitting a task
// that the loop executes between polls. A full append (record write plus
// header write) always completes before the next tick or task runs, which
// is what keeps the header consistent without locks.
package recorder

import (
	"context"
	"time"

	"datalogger-go/bus"
	"datalogger-go/channels"
	"datalogger-go/clock"
	"datalogger-go/debounce"
	"datalogger-go/errcode"
	"datalogger-go/eventlog"
	"datalogger-go/inputs"
)

// Event is the bus payload published for every confirmed transition.
type Event struct {
	Bank   int
	Line   int
	Record eventlog.Record
}

// Config controls loop timing. Zero values get defaults.
type Config struct {
	// PollPeriod is the snapshot cadence. The debounce filter confirms a
	// transition after two stable polls, so worst-case detection latency
	// is twice this. Default 20ms.
	PollPeriod time.Duration
	// TaskTimeout bounds how long a request handler waits for the loop
	// to accept its task before getting Busy. Default 500ms.
	TaskTimeout time.Duration
}

func (c *Config) setDefaults() {
	if c.PollPeriod <= 0 {
		c.PollPeriod = 20 * time.Millisecond
	}
	if c.TaskTimeout <= 0 {
		c.TaskTimeout = 500 * time.Millisecond
	}
}

type task struct {
	fn   func()
	done chan struct{}
}

// Service is the control loop. Construct with New, run with Start.
type Service struct {
	cfg   Config
	store *eventlog.Store
	names *channels.Table
	clk   clock.Clock
	banks [inputs.BankCount]inputs.Source
	hist  [inputs.BankCount]*debounce.Bank
	conn  *bus.Connection

	tasks   chan task
	stopped chan struct{}
}

// New wires the loop. The store, table and clock must not be touched from
// outside once the loop starts; use Do.
func New(cfg Config, store *eventlog.Store, names *channels.Table,
	clk clock.Clock, banks [inputs.BankCount]inputs.Source,
	conn *bus.Connection) *Service {
	cfg.setDefaults()
	s := &Service{
		cfg:     cfg,
		store:   store,
		names:   names,
		clk:     clk,
		banks:   banks,
		conn:    conn,
		tasks:   make(chan task),
		stopped: make(chan struct{}),
	}
	for i := range s.hist {
		s.hist[i] = debounce.NewBank()
	}
	return s
}

// Start launches the loop goroutine.
func (s *Service) Start(ctx context.Context) error {
	go s.loop(ctx)
	return nil
}

func (s *Service) loop(ctx context.Context) {
	defer close(s.stopped)

	tick := time.NewTicker(s.cfg.PollPeriod)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("Info: recorder stopping")
			return
		case <-tick.C:
			s.poll()
		case t := <-s.tasks:
			t.fn()
			close(t.done)
		}
	}
}

// poll samples every bank, runs the debounce filter and appends a record
// per confirmed transition. Failures are reported and skipped; the loop
// never stops on them.
func (s *Service) poll() {
	for bank := 0; bank < inputs.BankCount; bank++ {
		snap, err := s.banks[bank].ReadSnapshot()
		if err != nil {
			println("Error: bank", bank, "snapshot:", err.Error())
			continue
		}
		for _, tr := range s.hist[bank].Tick(snap) {
			s.record(bank, tr)
		}
	}
}

func (s *Service) record(bank int, tr debounce.Transition) {
	now, err := s.clk.Now()
	if err != nil {
		// Without a timestamp the record would be garbage; the
		// transition is committed in the filter but not logged.
		println("Error: clock read:", err.Error())
		return
	}
	label, err := s.names.Get(bank, tr.Line)
	if err != nil || label == "" {
		// A readable record beats a lost one: fall back to the
		// placeholder when the name slot is unreadable or blank.
		label = channels.DefaultLabel(bank, tr.Line)
	}

	rec := eventlog.Record{At: now, Label: label, On: tr.On}

	s.conn.Publish(bus.TopicStoreWrite, true)
	err = s.store.Append(rec)
	s.conn.Publish(bus.TopicStoreWrite, false)
	if err != nil {
		println("Error: append:", err.Error())
		return
	}
	s.conn.Publish(bus.TopicTransition, Event{Bank: bank, Line: tr.Line, Record: rec})
}

// Do runs fn on the loop goroutine and waits for it to finish. It returns
// Busy if the loop cannot accept the task within the configured timeout or
// has already stopped.
func (s *Service) Do(fn func()) error {
	t := task{fn: fn, done: make(chan struct{})}
	timer := time.NewTimer(s.cfg.TaskTimeout)
	defer timer.Stop()

	select {
	case s.tasks <- t:
	case <-s.stopped:
		return errcode.Busy
	case <-timer.C:
		return errcode.Busy
	}
	select {
	case <-t.done:
		return nil
	case <-s.stopped:
		return errcode.Busy
	}
}

// Store exposes the log engine. Only call from inside a Do task.
func (s *Service) Store() *eventlog.Store { return s.store }

// Names exposes the channel table. Only call from inside a Do task.
func (s *Service) Names() *channels.Table { return s.names }

// Clock exposes the wall clock. Only call from inside a Do task.
func (s *Service) Clock() clock.Clock { return s.clk }

// RawSnapshot reads bank directly, bypassing the debounce filter. Only call
// from inside a Do task.
func (s *Service) RawSnapshot(bank int) (uint16, error) {
	if bank < 0 || bank >= inputs.BankCount {
		return 0, &errcode.E{C: errcode.BadRequest, Op: "recorder.raw",
			Msg: "bank out of range"}
	}
	return s.banks[bank].ReadSnapshot()
}
