package mirror

import (
	"context"
	"time"

	"datalogger-go/bus"
	"datalogger-go/services/recorder"
)

// BufferCap bounds the replay buffer. Matches the capacity of the
// persistent log, so a full outage window is replayable.
const BufferCap = 1023

// retryPeriod paces replay attempts while the broker is down.
const retryPeriod = 5 * time.Second

type Service struct {
	pub   Publisher
	topic string
	buf   *ringBuffer
}

// New builds the service. An empty topic selects DefaultTopic.
func New(pub Publisher, topic string) *Service {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Service{pub: pub, topic: topic, buf: newRingBuffer(BufferCap)}
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, sub *bus.Subscription) {
	defer conn.Unsubscribe(sub)

	retry := time.NewTicker(retryPeriod)
	defer retry.Stop()

	for {
		select {
		case <-ctx.Done():
			println("Info: mirror service stopping")
			s.flush()
			s.pub.Close()
			return
		case msg := <-sub.Channel():
			ev, ok := msg.Payload.(recorder.Event)
			if !ok {
				continue
			}
			payload, err := FormatPayload(ev)
			if err != nil {
				println("Error: mirror: encode:", err.Error())
				continue
			}
			s.send(bufferedMsg{topic: s.topic, payload: payload})
		case <-retry.C:
			s.flush()
		}
	}
}

// send delivers one message, replaying any backlog first so ordering holds.
func (s *Service) send(msg bufferedMsg) {
	if !s.pub.IsConnected() || !s.flush() {
		s.buf.push(msg)
		return
	}
	if err := s.pub.Publish(msg.topic, msg.payload); err != nil {
		println("Error: mirror: publish:", err.Error())
		s.buf.push(msg)
	}
}

// flush replays the backlog. Returns false if the broker is unreachable;
// whatever did not go out is re-buffered in order.
func (s *Service) flush() bool {
	if s.buf.len() == 0 {
		return s.pub.IsConnected()
	}
	if !s.pub.IsConnected() {
		return false
	}
	backlog := s.buf.drainAll()
	for i, msg := range backlog {
		if err := s.pub.Publish(msg.topic, msg.payload); err != nil {
			println("Error: mirror: replay:", err.Error())
			for _, rest := range backlog[i:] {
				s.buf.push(rest)
			}
			return false
		}
	}
	return true
}

// Start the mirror service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	sub := conn.Subscribe(bus.TopicTransition)
	go s.serviceLoop(ctx, conn, sub)
	return nil
}
