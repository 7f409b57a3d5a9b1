// Package indicator mirrors bus activity onto the front-panel LEDs: the
// network LED lights while a request is in flight and the storage LED
// lights while a record or header write is underway.
package indicator

import (
	"context"

	"datalogger-go/bus"
	"datalogger-go/led"
)

type Service struct {
	net   led.Pin
	store led.Pin
}

func New(net, store led.Pin) *Service {
	return &Service{net: net, store: store}
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, netSub, storeSub *bus.Subscription) {
	defer conn.Unsubscribe(netSub)
	defer conn.Unsubscribe(storeSub)

	for {
		select {
		case <-ctx.Done():
			println("Info: indicator service stopping")
			s.net.Set(false)
			s.store.Set(false)
			return
		case msg := <-netSub.Channel():
			if on, ok := msg.Payload.(bool); ok {
				s.net.Set(on)
			}
		case msg := <-storeSub.Channel():
			if on, ok := msg.Payload.(bool); ok {
				s.store.Set(on)
			}
		}
	}
}

// Start the indicator service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	netSub := conn.Subscribe(bus.TopicNetActivity)
	storeSub := conn.Subscribe(bus.TopicStoreWrite)
	go s.serviceLoop(ctx, conn, netSub, storeSub)
	return nil
}
