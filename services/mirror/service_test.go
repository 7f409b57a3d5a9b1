package mirror

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"datalogger-go/bus"
	"datalogger-go/eventlog"
	"datalogger-go/services/recorder"
)

// fakePublisher records published payloads and can play dead.
type fakePublisher struct {
	mu        sync.Mutex
	connected bool
	published []string
	closed    bool
}

func (f *fakePublisher) Publish(topic string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, string(payload))
	return nil
}

func (f *fakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakePublisher) setConnected(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = on
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

func (f *fakePublisher) at(i int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.published[i]
}

func waitPublished(t *testing.T, pub *fakePublisher, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if pub.count() >= want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("only %d messages published, want %d", pub.count(), want)
}

func testEvent(line int, on bool) recorder.Event {
	return recorder.Event{
		Bank: 0,
		Line: line,
		Record: eventlog.Record{
			At:    time.Date(2026, time.June, 1, 8, 0, line, 0, time.UTC),
			Label: "DOOR",
			On:    on,
		},
	}
}

func TestMirror_PublishesTransitions(t *testing.T) {
	pub := &fakePublisher{connected: true}
	b := bus.New(8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := New(pub, "").Start(ctx, b.Connect("mirror")); err != nil {
		t.Fatal(err)
	}

	b.Connect("recorder").Publish(bus.TopicTransition, testEvent(4, true))
	waitPublished(t, pub, 1)

	got := pub.at(0)
	for _, want := range []string{`"timestamp":"2026-06-01T08:00:04Z"`, `"line":4`, `"label":"DOOR"`, `"state":"ON"`} {
		if !strings.Contains(got, want) {
			t.Errorf("payload %s missing %s", got, want)
		}
	}
}

func TestMirror_BuffersWhileDisconnected(t *testing.T) {
	pub := &fakePublisher{connected: false}
	b := bus.New(8)
	svc := New(pub, "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := svc.Start(ctx, b.Connect("mirror")); err != nil {
		t.Fatal(err)
	}

	rec := b.Connect("recorder")
	rec.Publish(bus.TopicTransition, testEvent(1, true))
	rec.Publish(bus.TopicTransition, testEvent(2, false))

	// Nothing goes out while down; the next event after reconnection
	// replays the backlog first, in order.
	time.Sleep(20 * time.Millisecond)
	if pub.count() != 0 {
		t.Fatalf("%d messages published while disconnected", pub.count())
	}

	pub.setConnected(true)
	rec.Publish(bus.TopicTransition, testEvent(3, true))
	waitPublished(t, pub, 3)

	if !strings.Contains(pub.at(0), `"line":1`) ||
		!strings.Contains(pub.at(1), `"line":2`) ||
		!strings.Contains(pub.at(2), `"line":3`) {
		t.Fatalf("replay out of order: %q %q %q", pub.at(0), pub.at(1), pub.at(2))
	}
}
