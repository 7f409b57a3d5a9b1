// Package mirror forwards logged transitions to an MQTT broker so a site
// controller can watch the panel remotely. The persistent log on the device
// stays the source of truth: mirroring is best-effort, with a bounded replay
// buffer covering broker outages.
package mirror

import (
	"encoding/json"
	"time"

	"datalogger-go/services/recorder"
)

// DefaultTopic is where transition events are published.
const DefaultTopic = "datalogger/events"

// Publisher is the broker-facing half, separable for tests.
type Publisher interface {
	Publish(topic string, payload []byte) error
	IsConnected() bool
	Close() error
}

// Payload is the wire shape of one mirrored transition.
type Payload struct {
	Event EventPayload `json:"event"`
}

type EventPayload struct {
	Timestamp string `json:"timestamp"`
	Bank      int    `json:"bank"`
	Line      int    `json:"line"`
	Label     string `json:"label"`
	State     string `json:"state"`
}

// FormatPayload serializes a transition for the broker.
func FormatPayload(ev recorder.Event) ([]byte, error) {
	state := "OFF"
	if ev.Record.On {
		state = "ON"
	}
	return json.Marshal(Payload{
		Event: EventPayload{
			Timestamp: ev.Record.At.UTC().Format(time.RFC3339),
			Bank:      ev.Bank,
			Line:      ev.Line,
			Label:     ev.Record.Label,
			State:     state,
		},
	})
}
