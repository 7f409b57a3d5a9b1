// Package config loads the logger's YAML configuration: where to listen,
// how fast to poll, which storage backend holds the log and which input
// backend feeds each bank.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"datalogger-go/errcode"
)

type Config struct {
	Listen    string          `yaml:"listen"`
	PollMs    int             `yaml:"poll_ms"`
	Storage   StorageConfig   `yaml:"storage"`
	Banks     []BankConfig    `yaml:"banks"`
	Mirror    MirrorConfig    `yaml:"mirror"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
}

// ---- STORAGE ----

// StorageConfig selects the pair of block devices: one holds the record
// ring, the other the header rotation and the channel name table.
type StorageConfig struct {
	Backend  string `yaml:"backend"` // "file" or "mem"
	DataPath string `yaml:"data_path"`
	MetaPath string `yaml:"meta_path"`
}

// ---- INPUT BANKS ----

type BankConfig struct {
	Source string `yaml:"source"` // "script", "gpiocdev" or "modbus"

	// gpiocdev
	Chip    string `yaml:"chip"`
	Offsets []int  `yaml:"offsets"`

	// modbus
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	Start     uint16 `yaml:"start"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- MIRROR ----

type MirrorConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
}

// ---- HEARTBEAT ----

type HeartbeatConfig struct {
	TickMs int `yaml:"tick_ms"`
}

// Load reads and parses path. Call Validate and then Normalize on the
// result before use.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errcode.Wrap(errcode.ReadFailed, "config.load", err)
	}
	return Parse(raw)
}

// Parse decodes raw YAML.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errcode.Wrap(errcode.BadRequest, "config.parse", err)
	}
	return &cfg, nil
}

// PollPeriod returns the input poll period. Only meaningful after
// Normalize.
func (c *Config) PollPeriod() time.Duration {
	return time.Duration(c.PollMs) * time.Millisecond
}

// HeartbeatTick returns the heartbeat step period. Only meaningful after
// Normalize.
func (c *Config) HeartbeatTick() time.Duration {
	return time.Duration(c.Heartbeat.TickMs) * time.Millisecond
}
