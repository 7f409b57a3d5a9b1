// Package config broadcasts the loaded configuration onto the bus as
// retained messages, so services pick their settings up whenever they
// subscribe, including after the publisher has finished.
package config

import (
	"context"

	"datalogger-go/bus"
	cfgfile "datalogger-go/config"
)

type Service struct {
	cfg *cfgfile.Config
}

func New(cfg *cfgfile.Config) *Service {
	return &Service{cfg: cfg}
}

func (s *Service) publish(conn *bus.Connection) {
	conn.PublishRetained(bus.TopicHeartbeatCfg, s.cfg.HeartbeatTick())
}

// Start publishes the retained config messages and returns.
func (s *Service) Start(_ context.Context, conn *bus.Connection) error {
	s.publish(conn)
	return nil
}
