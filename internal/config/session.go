// Package config loads SessionConfig, the connection/router/telemetry
// tuning knobs for a client process (SPEC_FULL §3). Grounded on the
// teacher's internal/config.go LoadConfig: read the whole file, unmarshal
// into zero values, then backfill every zero field with its default.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mangosgo/wowcore/internal/wowerr"
)

type RealmConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type RouterConfig struct {
	BacklogLimit int `yaml:"backlog_limit"`
}

type SendQueueConfig struct {
	Size         int           `yaml:"size"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type TelemetryConfig struct {
	Enable bool   `yaml:"enable"`
	Listen string `yaml:"listen"`
}

type DebugTapConfig struct {
	Enable bool   `yaml:"enable"`
	Listen string `yaml:"listen"`
}

// SessionConfig is the top-level shape for a client process (SPEC_FULL §3).
type SessionConfig struct {
	Realm     RealmConfig     `yaml:"realm"`
	Router    RouterConfig    `yaml:"router"`
	SendQueue SendQueueConfig `yaml:"send_queue"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	DebugTap  DebugTapConfig  `yaml:"debug_tap"`
}

// LoadConfig reads and parses a SessionConfig from path, backfilling every
// zero-valued field with its default (mirrors the teacher's LoadConfig).
func LoadConfig(path string) (*SessionConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, wowerr.Wrapf(err, "config: read %s", path)
	}
	var c SessionConfig
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, wowerr.Wrapf(err, "config: parse %s", path)
	}
	applyDefaults(&c)
	return &c, nil
}

func applyDefaults(c *SessionConfig) {
	if c.Realm.Host == "" {
		c.Realm.Host = "127.0.0.1"
	}
	if c.Realm.Port == 0 {
		c.Realm.Port = 8085
	}
	if c.Router.BacklogLimit == 0 {
		c.Router.BacklogLimit = 1024
	}
	if c.SendQueue.Size == 0 {
		c.SendQueue.Size = 256
	}
	if c.SendQueue.WriteTimeout == 0 {
		c.SendQueue.WriteTimeout = 5 * time.Second
	}
	if c.Telemetry.Listen == "" {
		c.Telemetry.Listen = "127.0.0.1:9111"
	}
	if c.DebugTap.Listen == "" {
		c.DebugTap.Listen = "127.0.0.1:9112"
	}
}
