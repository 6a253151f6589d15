// Package config describes how a validator node wires its clock, timestamp
// checker and identity service.
//
// Example (JSON; YAML with the same keys is accepted for .yaml/.yml files):
//
//	{
//	  "timestamp": {"tolerance": "30s"},
//	  "clock": {"type": "ntp", "ntp_server": "time.google.com", "sync_interval": "5m"},
//	  "identity": {"target": "127.0.0.1:7070", "timeout": "2s"},
//	  "log": {"level": "info", "format": "json"}
//	}
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"xdao.co/ledgertrust/clock"
	"xdao.co/ledgertrust/timestamp"
)

const (
	ClockSystem = "system"
	ClockNTP    = "ntp"
)

type Config struct {
	Timestamp Timestamp `json:"timestamp" yaml:"timestamp"`
	Clock     Clock     `json:"clock" yaml:"clock"`
	Identity  Identity  `json:"identity" yaml:"identity"`
	Log       Log       `json:"log" yaml:"log"`
}

type Timestamp struct {
	Tolerance Duration `json:"tolerance" yaml:"tolerance"`
}

type Clock struct {
	// Type is "system" or "ntp".
	Type           string   `json:"type" yaml:"type"`
	NTPServer      string   `json:"ntp_server,omitempty" yaml:"ntp_server,omitempty"`
	SyncInterval   Duration `json:"sync_interval,omitempty" yaml:"sync_interval,omitempty"`
	BackoffInitial Duration `json:"backoff_initial,omitempty" yaml:"backoff_initial,omitempty"`
	BackoffMax     Duration `json:"backoff_max,omitempty" yaml:"backoff_max,omitempty"`
	// UnhealthyOffset marks the NTP clock unhealthy beyond this offset; zero disables.
	UnhealthyOffset Duration `json:"unhealthy_offset,omitempty" yaml:"unhealthy_offset,omitempty"`
}

// Identity points at a remote identity gRPC service. An empty Target means
// identities are resolved locally.
type Identity struct {
	Target  string   `json:"target,omitempty" yaml:"target,omitempty"`
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

type Log struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

func Default() Config {
	return Config{
		Timestamp: Timestamp{Tolerance: Duration(timestamp.DefaultTolerance)},
		Clock: Clock{
			Type:           ClockSystem,
			NTPServer:      clock.DefaultNTPServer,
			SyncInterval:   Duration(clock.DefaultSyncInterval),
			BackoffInitial: Duration(clock.DefaultBackoffInitial),
			BackoffMax:     Duration(clock.DefaultBackoffMax),
		},
		Identity: Identity{Timeout: Duration(5 * time.Second)},
		Log:      Log{Level: "info", Format: "console"},
	}
}

// LoadFile reads path over Default, then validates. Files ending in .yaml
// or .yml are YAML; anything else is JSON.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, errors.New("config: empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	default:
		err = json.Unmarshal(b, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Environment overrides applied by ApplyEnv.
const (
	EnvTolerance       = "LEDGERTRUST_TIMESTAMP_TOLERANCE"
	EnvClockType       = "LEDGERTRUST_CLOCK_TYPE"
	EnvNTPServer       = "LEDGERTRUST_CLOCK_NTP_SERVER"
	EnvSyncInterval    = "LEDGERTRUST_CLOCK_SYNC_INTERVAL"
	EnvBackoffInitial  = "LEDGERTRUST_CLOCK_BACKOFF_INITIAL"
	EnvBackoffMax      = "LEDGERTRUST_CLOCK_BACKOFF_MAX"
	EnvUnhealthyOffset = "LEDGERTRUST_CLOCK_UNHEALTHY_OFFSET"
	EnvIdentityTarget  = "LEDGERTRUST_IDENTITY_TARGET"
	EnvIdentityTimeout = "LEDGERTRUST_IDENTITY_TIMEOUT"
	EnvLogLevel        = "LEDGERTRUST_LOG_LEVEL"
	EnvLogFormat       = "LEDGERTRUST_LOG_FORMAT"
)

// ApplyEnv overrides fields from LEDGERTRUST_* environment variables that
// are set and non-empty.
func (c *Config) ApplyEnv() error {
	strs := []struct {
		env string
		dst *string
	}{
		{EnvClockType, &c.Clock.Type},
		{EnvNTPServer, &c.Clock.NTPServer},
		{EnvIdentityTarget, &c.Identity.Target},
		{EnvLogLevel, &c.Log.Level},
		{EnvLogFormat, &c.Log.Format},
	}
	for _, s := range strs {
		if v := os.Getenv(s.env); v != "" {
			*s.dst = v
		}
	}

	durs := []struct {
		env string
		dst *Duration
	}{
		{EnvTolerance, &c.Timestamp.Tolerance},
		{EnvSyncInterval, &c.Clock.SyncInterval},
		{EnvBackoffInitial, &c.Clock.BackoffInitial},
		{EnvBackoffMax, &c.Clock.BackoffMax},
		{EnvUnhealthyOffset, &c.Clock.UnhealthyOffset},
		{EnvIdentityTimeout, &c.Identity.Timeout},
	}
	for _, d := range durs {
		v := os.Getenv(d.env)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", d.env, err)
		}
		*d.dst = Duration(parsed)
	}
	return nil
}

// Validate checks the settings NewClock and NewChecker rely on. An empty
// clock.type means the system clock.
func (c Config) Validate() error {
	if c.Timestamp.Tolerance < 0 {
		return errors.New("config: timestamp.tolerance must not be negative")
	}
	if c.Clock.UnhealthyOffset < 0 {
		return errors.New("config: clock.unhealthy_offset must not be negative")
	}
	switch c.Clock.Type {
	case ClockSystem, "":
	case ClockNTP:
		if strings.TrimSpace(c.Clock.NTPServer) == "" {
			return errors.New("config: clock.ntp_server is required for the ntp clock")
		}
		if c.Clock.SyncInterval <= 0 {
			return errors.New("config: clock.sync_interval must be positive")
		}
		if c.Clock.BackoffInitial <= 0 || c.Clock.BackoffMax < c.Clock.BackoffInitial {
			return errors.New("config: clock backoff requires 0 < backoff_initial <= backoff_max")
		}
	default:
		return fmt.Errorf("config: invalid clock.type %q", c.Clock.Type)
	}
	if c.Identity.Timeout < 0 {
		return errors.New("config: identity.timeout must not be negative")
	}
	return nil
}

// NewClock builds the configured clock. An NTP clock performs its initial
// sync here.
func (c Config) NewClock(logger *zap.Logger) (clock.Clock, error) {
	switch c.Clock.Type {
	case ClockSystem, "":
		return clock.System(), nil
	case ClockNTP:
		return clock.NewNTP(c.Clock.NTPServer,
			clock.WithSyncInterval(c.Clock.SyncInterval.Std()),
			clock.WithBackoff(c.Clock.BackoffInitial.Std(), c.Clock.BackoffMax.Std()),
			clock.WithUnhealthyOffset(c.Clock.UnhealthyOffset.Std()),
			clock.WithLogger(logger),
		), nil
	default:
		return nil, fmt.Errorf("config: invalid clock.type %q", c.Clock.Type)
	}
}

// NewChecker builds a timestamp checker on the configured clock.
func (c Config) NewChecker(logger *zap.Logger) (*timestamp.Checker, error) {
	clk, err := c.NewClock(logger)
	if err != nil {
		return nil, err
	}
	return timestamp.NewChecker(
		timestamp.WithClock(clk),
		timestamp.WithTolerance(c.Timestamp.Tolerance.Std()),
		timestamp.WithLogger(logger),
	), nil
}
