package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all venue-events configuration.
type Config struct {
	Listen    string        `yaml:"listen"`
	LogLevel  string        `yaml:"log_level"`  // "debug", "info", "warn", "error"
	LogFile   string        `yaml:"log_file"`   // empty logs to stdout
	UserAgent string        `yaml:"user_agent"` // sent on every venue request
	Timeout   time.Duration `yaml:"timeout"`    // per HTTP request
	Year      int           `yaml:"year"`       // pins the fallback year; 0 uses the current year
	// DetailRate caps detail-page requests per second across all venues; 0 disables.
	DetailRate float64 `yaml:"detail_rate"`
}

// Defaults used when neither the file nor the environment sets a value.
const (
	DefaultListen    = ":8080"
	DefaultLogLevel  = "info"
	DefaultUserAgent = "venue-events/1.0 (github.com/pfrederiksen/venue-events)"
	DefaultTimeout   = 30 * time.Second
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen:    DefaultListen,
		LogLevel:  DefaultLogLevel,
		UserAgent: DefaultUserAgent,
		Timeout:   DefaultTimeout,
	}
}

// Load reads the YAML file at path, if any, then applies VENUE_EVENTS_* overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.Listen = getenv("VENUE_EVENTS_LISTEN", cfg.Listen)
	cfg.LogLevel = getenv("VENUE_EVENTS_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getenv("VENUE_EVENTS_LOG_FILE", cfg.LogFile)
	cfg.UserAgent = getenv("VENUE_EVENTS_USER_AGENT", cfg.UserAgent)
	cfg.Timeout = getenvDuration("VENUE_EVENTS_TIMEOUT", cfg.Timeout)
	cfg.Year = getenvInt("VENUE_EVENTS_YEAR", cfg.Year)
	cfg.DetailRate = getenvFloat("VENUE_EVENTS_DETAIL_RATE", cfg.DetailRate)

	if cfg.Timeout <= 0 {
		return Config{}, fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.Year < 0 {
		return Config{}, fmt.Errorf("year must not be negative, got %d", cfg.Year)
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
