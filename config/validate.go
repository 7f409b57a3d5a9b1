package config

import (
	"fmt"

	"datalogger-go/inputs"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	switch cfg.Storage.Backend {
	case "", "file", "mem":
	default:
		return fmt.Errorf("storage: unknown backend %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Backend == "file" {
		if cfg.Storage.DataPath == "" || cfg.Storage.MetaPath == "" {
			return fmt.Errorf("storage: file backend needs data_path and meta_path")
		}
		if cfg.Storage.DataPath == cfg.Storage.MetaPath {
			return fmt.Errorf("storage: data_path and meta_path must differ")
		}
	}

	if len(cfg.Banks) != 0 && len(cfg.Banks) != inputs.BankCount {
		return fmt.Errorf("banks: need exactly %d entries, got %d", inputs.BankCount, len(cfg.Banks))
	}
	for i, b := range cfg.Banks {
		switch b.Source {
		case "", "script":
		case "gpiocdev":
			if b.Chip == "" {
				return fmt.Errorf("bank %d: gpiocdev source needs chip", i)
			}
			if len(b.Offsets) != inputs.LinesPerBank {
				return fmt.Errorf("bank %d: gpiocdev source needs %d offsets, got %d",
					i, inputs.LinesPerBank, len(b.Offsets))
			}
		case "modbus":
			if b.Endpoint == "" {
				return fmt.Errorf("bank %d: modbus source needs endpoint", i)
			}
		default:
			return fmt.Errorf("bank %d: unknown source %q", i, b.Source)
		}
	}

	if cfg.Mirror.Enabled && cfg.Mirror.Broker == "" {
		return fmt.Errorf("mirror: enabled but no broker")
	}

	if cfg.PollMs < 0 {
		return fmt.Errorf("poll_ms must not be negative")
	}
	if cfg.Heartbeat.TickMs < 0 {
		return fmt.Errorf("heartbeat: tick_ms must not be negative")
	}
	return nil
}
