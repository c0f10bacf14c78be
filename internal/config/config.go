package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/yegors/flightboard/internal/board"
)

// Defaults
const (
	DefaultFeedURL             = "https://data.vatsim.net/v3/vatsim-data.json"
	DefaultAirportsSource      = "https://raw.githubusercontent.com/vatsimnetwork/vatspy-data-project/master/VATSpy.dat"
	DefaultUserAgent           = "flightboard"
	DefaultFetchIntervalSecs   = 15
	DefaultRequestTimeoutSecs  = 10
	DefaultLocale              = "en"
	DefaultPageSize            = 10
	DefaultAdvanceIntervalSecs = 15
	DefaultTickIntervalSecs    = 1
	DefaultLogLevel            = "info"
	DefaultLogFormat           = "console"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Feed      FeedConfig      `toml:"feed"`      // Live traffic feed settings
	Reference ReferenceConfig `toml:"reference"` // Airport and airline tables
	Board     BoardConfig     `toml:"board"`     // Which board to show
	Rotation  RotationConfig  `toml:"rotation"`  // Unattended page/direction cycling
	Display   DisplayConfig   `toml:"display"`   // Terminal display settings
	Logging   LoggingConfig   `toml:"logging"`   // Application logging settings
}

// FeedConfig contains the network data feed settings
type FeedConfig struct {
	URL                string `toml:"url"`                     // v3 JSON data feed URL
	FetchIntervalSecs  int    `toml:"fetch_interval_seconds"`  // How often to refresh the snapshot (in seconds)
	RequestTimeoutSecs int    `toml:"request_timeout_seconds"` // HTTP request timeout (in seconds)
	UserAgent          string `toml:"user_agent"`              // User-Agent header sent with every request
}

// ReferenceConfig locates the reference tables. Sources are file paths or
// http(s) URLs.
type ReferenceConfig struct {
	AirportsSource string `toml:"airports_source"` // VATSpy.dat
	AirlinesSource string `toml:"airlines_source"` // JSON or YAML prefix table; empty uses the built-in table
}

// BoardConfig selects the airport and starting direction
type BoardConfig struct {
	Airport   string `toml:"airport"`   // ICAO code of the airport to display
	Direction string `toml:"direction"` // "departure" or "arrival"
	Locale    string `toml:"locale"`    // BCP 47 tag used to sort destinations
	PageSize  int    `toml:"page_size"` // Rows per page
}

// RotationConfig contains the unattended mode settings
type RotationConfig struct {
	Enabled             bool `toml:"enabled"`                  // Cycle pages and directions automatically
	AdvanceIntervalSecs int  `toml:"advance_interval_seconds"` // Seconds per page
	TickIntervalSecs    int  `toml:"tick_interval_seconds"`    // Countdown resolution
}

// DisplayConfig contains terminal display settings
type DisplayConfig struct {
	Title     string `toml:"title"`      // Header title; defaults to the airport name
	ShowClock bool   `toml:"show_clock"` // Show the UTC clock in the header
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `toml:"level"`        // debug, info, warn, error
	Format     string `toml:"format"`       // console or json
	File       string `toml:"file"`         // Optional log file; rotated with lumberjack
	MaxSizeMB  int    `toml:"max_size_mb"`  // Rotate after this many megabytes
	MaxBackups int    `toml:"max_backups"`  // Rotated files to keep
	MaxAgeDays int    `toml:"max_age_days"` // Days to keep rotated files
}

// Default returns a configuration with every default applied
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load loads the configuration from the specified file path
func Load(path string) (*Config, error) {
	var config Config

	// Check if the file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	// Read the config file
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &config, nil
}

// DefaultSearchPaths are tried after the path given on the command line
var DefaultSearchPaths = []string{"configs/config.toml", "config.toml"}

// LoadWithFallback loads the first board config that exists, starting with
// preferredPath. A file that exists but fails to decode does not stop the
// search.
func LoadWithFallback(preferredPath string) (*Config, error) {
	var candidates []string
	for _, path := range append([]string{preferredPath}, DefaultSearchPaths...) {
		if path != "" && !slices.Contains(candidates, path) {
			candidates = append(candidates, path)
		}
	}

	var lastErr error
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			lastErr = fmt.Errorf("config file not found: %s", path)
			continue
		}
		cfg, err := Load(path)
		if err != nil {
			lastErr = fmt.Errorf("failed to load config from %s: %w", path, err)
			continue
		}
		return cfg, nil
	}

	return nil, fmt.Errorf("no board config in any of the expected locations %v: %w", candidates, lastErr)
}

// Validate fills defaults and validates the configuration
func (c *Config) Validate() error {
	c.applyDefaults()

	// Board
	c.Board.Airport = strings.ToUpper(strings.TrimSpace(c.Board.Airport))
	if c.Board.Airport == "" {
		return fmt.Errorf("board airport is required")
	}
	dir, err := board.ParseDirection(c.Board.Direction)
	if err != nil {
		return fmt.Errorf("invalid board direction: %w", err)
	}
	c.Board.Direction = string(dir)
	if c.Board.PageSize < 0 {
		return fmt.Errorf("invalid page_size: %d (must be > 0)", c.Board.PageSize)
	}

	// Feed
	if c.Feed.FetchIntervalSecs < 0 {
		return fmt.Errorf("invalid fetch_interval_seconds: %d (must be > 0)", c.Feed.FetchIntervalSecs)
	}
	if c.Feed.RequestTimeoutSecs < 0 {
		return fmt.Errorf("invalid request_timeout_seconds: %d (must be > 0)", c.Feed.RequestTimeoutSecs)
	}

	// Rotation
	if c.Rotation.AdvanceIntervalSecs < 0 || c.Rotation.TickIntervalSecs < 0 {
		return fmt.Errorf("rotation intervals must be positive")
	}
	if c.Rotation.TickIntervalSecs > c.Rotation.AdvanceIntervalSecs {
		return fmt.Errorf("rotation tick_interval_seconds (%d) must not exceed advance_interval_seconds (%d)",
			c.Rotation.TickIntervalSecs, c.Rotation.AdvanceIntervalSecs)
	}

	// Logging
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("invalid logging format: %s (must be 'console' or 'json')", c.Logging.Format)
	}

	return nil
}

// applyDefaults sets every zero value that has a default. Negative values
// are left for Validate to reject.
func (c *Config) applyDefaults() {
	if c.Feed.URL == "" {
		c.Feed.URL = DefaultFeedURL
	}
	if c.Feed.FetchIntervalSecs == 0 {
		c.Feed.FetchIntervalSecs = DefaultFetchIntervalSecs
	}
	if c.Feed.RequestTimeoutSecs == 0 {
		c.Feed.RequestTimeoutSecs = DefaultRequestTimeoutSecs
	}
	if c.Feed.UserAgent == "" {
		c.Feed.UserAgent = DefaultUserAgent
	}

	if c.Reference.AirportsSource == "" {
		c.Reference.AirportsSource = DefaultAirportsSource
	}

	if c.Board.Direction == "" {
		c.Board.Direction = string(board.Departure)
	}
	if c.Board.Locale == "" {
		c.Board.Locale = DefaultLocale
	}
	if c.Board.PageSize == 0 {
		c.Board.PageSize = DefaultPageSize
	}

	if c.Rotation.AdvanceIntervalSecs == 0 {
		c.Rotation.AdvanceIntervalSecs = DefaultAdvanceIntervalSecs
	}
	if c.Rotation.TickIntervalSecs == 0 {
		c.Rotation.TickIntervalSecs = DefaultTickIntervalSecs
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}
