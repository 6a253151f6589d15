package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"xdao.co/ledgertrust/clock"
	"xdao.co/ledgertrust/timestamp"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, timestamp.DefaultTolerance, cfg.Timestamp.Tolerance.Std())
	assert.Equal(t, ClockSystem, cfg.Clock.Type)
	assert.Equal(t, clock.DefaultNTPServer, cfg.Clock.NTPServer)
}

func TestLoadFile_JSON(t *testing.T) {
	path := writeFile(t, "node.json", `{
		"timestamp": {"tolerance": "10s"},
		"clock": {"type": "ntp", "ntp_server": "pool.ntp.org", "sync_interval": "1m"},
		"identity": {"target": "127.0.0.1:7070"}
	}`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Timestamp.Tolerance.Std())
	assert.Equal(t, ClockNTP, cfg.Clock.Type)
	assert.Equal(t, "pool.ntp.org", cfg.Clock.NTPServer)
	assert.Equal(t, time.Minute, cfg.Clock.SyncInterval.Std())
	// Unset fields keep their defaults.
	assert.Equal(t, clock.DefaultBackoffMax, cfg.Clock.BackoffMax.Std())
	assert.Equal(t, "127.0.0.1:7070", cfg.Identity.Target)
	assert.Equal(t, 5*time.Second, cfg.Identity.Timeout.Std())
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeFile(t, "node.yaml", `
timestamp:
  tolerance: 45s
clock:
  type: system
log:
  level: debug
  format: json
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.Timestamp.Tolerance.Std())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile("")
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = LoadFile(writeFile(t, "bad.json", `{"timestamp": {"tolerance": 30}}`))
	assert.Error(t, err)

	_, err = LoadFile(writeFile(t, "bad.yml", "timestamp:\n  tolerance: soon\n"))
	assert.Error(t, err)

	_, err = LoadFile(writeFile(t, "clock.json", `{"clock": {"type": "sundial"}}`))
	assert.ErrorContains(t, err, "clock.type")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvTolerance, "2m")
	t.Setenv(EnvClockType, ClockNTP)
	t.Setenv(EnvNTPServer, "ntp.example")
	t.Setenv(EnvBackoffInitial, "1s")
	t.Setenv(EnvUnhealthyOffset, "750ms")
	t.Setenv(EnvIdentityTarget, "id.example:443")
	t.Setenv(EnvLogLevel, "warn")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, 2*time.Minute, cfg.Timestamp.Tolerance.Std())
	assert.Equal(t, ClockNTP, cfg.Clock.Type)
	assert.Equal(t, "ntp.example", cfg.Clock.NTPServer)
	assert.Equal(t, time.Second, cfg.Clock.BackoffInitial.Std())
	assert.Equal(t, 750*time.Millisecond, cfg.Clock.UnhealthyOffset.Std())
	assert.Equal(t, "id.example:443", cfg.Identity.Target)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format, "unset variables leave fields alone")
	require.NoError(t, cfg.Validate())

	t.Setenv(EnvSyncInterval, "often")
	assert.ErrorContains(t, cfg.ApplyEnv(), EnvSyncInterval)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative tolerance", func(c *Config) { c.Timestamp.Tolerance = -1 }},
		{"unknown clock", func(c *Config) { c.Clock.Type = "atomic" }},
		{"ntp without server", func(c *Config) { c.Clock.Type = ClockNTP; c.Clock.NTPServer = " " }},
		{"ntp zero interval", func(c *Config) { c.Clock.Type = ClockNTP; c.Clock.SyncInterval = 0 }},
		{"ntp inverted backoff", func(c *Config) {
			c.Clock.Type = ClockNTP
			c.Clock.BackoffInitial = Duration(time.Minute)
			c.Clock.BackoffMax = Duration(time.Second)
		}},
		{"negative identity timeout", func(c *Config) { c.Identity.Timeout = -1 }},
		{"negative unhealthy offset", func(c *Config) { c.Clock.UnhealthyOffset = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEmptyClockTypeMeansSystem(t *testing.T) {
	cfg := Default()
	cfg.Clock.Type = ""
	require.NoError(t, cfg.Validate())
	clk, err := cfg.NewClock(zap.NewNop())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), clk.Now(), time.Second)
}

func TestNewChecker(t *testing.T) {
	cfg := Default()
	cfg.Timestamp.Tolerance = Duration(time.Minute)
	ch, err := cfg.NewChecker(zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ch.Tolerance())
	assert.True(t, ch.IsValid(timestamp.Around(time.Now(), time.Second)))

	cfg.Clock.Type = "atomic"
	_, err = cfg.NewChecker(nil)
	assert.Error(t, err)
}

func TestDuration_JSONRoundTrip(t *testing.T) {
	d := Duration(90 * time.Second)
	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `"1m30s"`, string(b))

	var back Duration
	require.NoError(t, back.UnmarshalJSON(b))
	assert.Equal(t, d, back)
}
