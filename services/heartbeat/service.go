// Package heartbeat drives the status LED. The normal rhythm is one short
// pulse per cycle; if the clock is reported degraded the LED switches to a
// fast blink until the condition clears.
package heartbeat

import (
	"context"
	"time"

	"datalogger-go/bus"
	"datalogger-go/led"
)

const (
	// DefaultTick is the step period; 32 steps make one ~1.6s cycle.
	DefaultTick = 50 * time.Millisecond

	cycleSteps = 32
	pulseOff   = 0x2 // LED goes dark two steps into the cycle

	// In degraded mode the LED toggles every fourth step.
	blinkMask = 0x3
)

type Service struct {
	pin  led.Pin
	tick time.Duration
}

func New(pin led.Pin) *Service {
	return &Service{pin: pin, tick: DefaultTick}
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, clockSub, cfgSub *bus.Subscription) {
	defer conn.Unsubscribe(clockSub)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(s.tick)
	defer tick.Stop()

	step := 0
	degraded := false
	for {
		select {
		case <-ctx.Done():
			println("Info: heartbeat service stopping")
			s.pin.Set(false)
			return
		case <-tick.C:
			step = (step + 1) % cycleSteps
			if degraded {
				if step&blinkMask == 0 {
					s.pin.Toggle()
				}
				continue
			}
			switch step {
			case 0:
				s.pin.Set(true)
			case pulseOff:
				s.pin.Set(false)
			}
		case msg := <-clockSub.Channel():
			if bad, ok := msg.Payload.(bool); ok && bad != degraded {
				degraded = bad
				s.pin.Set(false)
				step = 0
				if degraded {
					println("Error: heartbeat: clock degraded, fast blink")
				} else {
					println("Info: heartbeat: clock healthy")
				}
			}
		case msg := <-cfgSub.Channel():
			if d, ok := msg.Payload.(time.Duration); ok && d > 0 {
				s.tick = d
				tick.Reset(d)
				println("Info: heartbeat tick set to", d.String())
			}
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	clockSub := conn.Subscribe(bus.TopicClockHealth)
	cfgSub := conn.Subscribe(bus.TopicHeartbeatCfg)
	go s.serviceLoop(ctx, conn, clockSub, cfgSub)
	return nil
}
