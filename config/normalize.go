package config

import "datalogger-go/inputs"

// Defaults match the device's original behavior.
const (
	DefaultListen = ":80"
	DefaultPollMs = 20
	DefaultTickMs = 50
)

// Normalize fills defaults for everything left unset.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if cfg.PollMs == 0 {
		cfg.PollMs = DefaultPollMs
	}
	if cfg.Heartbeat.TickMs == 0 {
		cfg.Heartbeat.TickMs = DefaultTickMs
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "mem"
	}

	// Unconfigured banks read as all lines idle.
	if len(cfg.Banks) == 0 {
		cfg.Banks = make([]BankConfig, inputs.BankCount)
	}
	for i := range cfg.Banks {
		if cfg.Banks[i].Source == "" {
			cfg.Banks[i].Source = "script"
		}
		if cfg.Banks[i].Source == "modbus" && cfg.Banks[i].TimeoutMs == 0 {
			cfg.Banks[i].TimeoutMs = 1000
		}
	}

	if cfg.Mirror.Enabled {
		if cfg.Mirror.ClientID == "" {
			cfg.Mirror.ClientID = "datalogger"
		}
	}
}
