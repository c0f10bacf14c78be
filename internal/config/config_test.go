package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[feed]
fetch_interval_seconds = 30
user_agent = "kiosk-test"

[reference]
airports_source = "data/VATSpy.dat"
airlines_source = "data/airlines.yaml"

[board]
airport = "kbos"
direction = "arrivals"
page_size = 12

[rotation]
enabled = true
advance_interval_seconds = 20

[logging]
level = "debug"
format = "json"
file = "logs/flightboard.log"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAndValidate(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultFeedURL, cfg.Feed.URL)
	assert.Equal(t, 30, cfg.Feed.FetchIntervalSecs)
	assert.Equal(t, DefaultRequestTimeoutSecs, cfg.Feed.RequestTimeoutSecs)
	assert.Equal(t, "kiosk-test", cfg.Feed.UserAgent)

	assert.Equal(t, "data/VATSpy.dat", cfg.Reference.AirportsSource)
	assert.Equal(t, "data/airlines.yaml", cfg.Reference.AirlinesSource)

	assert.Equal(t, "KBOS", cfg.Board.Airport)
	assert.Equal(t, "arrival", cfg.Board.Direction)
	assert.Equal(t, 12, cfg.Board.PageSize)
	assert.Equal(t, DefaultLocale, cfg.Board.Locale)

	assert.True(t, cfg.Rotation.Enabled)
	assert.Equal(t, 20, cfg.Rotation.AdvanceIntervalSecs)
	assert.Equal(t, DefaultTickIntervalSecs, cfg.Rotation.TickIntervalSecs)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultAirportsSource, cfg.Reference.AirportsSource)
	assert.Equal(t, "departure", cfg.Board.Direction)
	assert.Equal(t, DefaultPageSize, cfg.Board.PageSize)

	// Airport is the one thing without a default
	assert.Error(t, cfg.Validate())
	cfg.Board.Airport = "egll"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "EGLL", cfg.Board.Airport)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"missing airport", func(c *Config) { c.Board.Airport = " " }, "airport is required"},
		{"bad direction", func(c *Config) { c.Board.Direction = "up" }, "invalid board direction"},
		{"negative page size", func(c *Config) { c.Board.PageSize = -1 }, "page_size"},
		{"negative fetch interval", func(c *Config) { c.Feed.FetchIntervalSecs = -5 }, "fetch_interval_seconds"},
		{"tick longer than advance", func(c *Config) {
			c.Rotation.AdvanceIntervalSecs = 2
			c.Rotation.TickIntervalSecs = 5
		}, "must not exceed"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "invalid logging format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Board.Airport = "KBOS"
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")

	_, err = Load(writeConfig(t, "[board\nairport = "))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode config file")
}

func TestLoadWithFallback(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	cfg, err := LoadWithFallback(path)
	require.NoError(t, err)
	assert.Equal(t, "kbos", cfg.Board.Airport)

	// Run from an empty directory so the fallback locations do not exist
	t.Chdir(t.TempDir())
	_, err = LoadWithFallback(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected locations")
}

func TestLoadWithFallbackSearchesConfigsDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "config.toml"), []byte(sampleConfig), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not = [valid"), 0o644))
	t.Chdir(dir)

	cfg, err := LoadWithFallback("")
	require.NoError(t, err)
	assert.Equal(t, "kiosk-test", cfg.Feed.UserAgent)
}
