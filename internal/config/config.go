package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable, e.g. BILLT_API_KEY
const Prefix = "BILLT"

// ErrMissingAPIKey is returned by RequireAPIKey when no key is configured
var ErrMissingAPIKey = errors.New("missing LegiScan API key: set BILLT_API_KEY")

// APIConfig is read from BILLT_API_KEY and BILLT_API_URL
type APIConfig struct {
	Key string
	URL string `default:"https://api.legiscan.com/"`
}

// Config holds process-wide settings loaded once at startup.
// Only DatabaseURL honours an unprefixed variable.
type Config struct {
	API         APIConfig
	Timeout     time.Duration `split_words:"true" default:"30s"`
	MaxRetries  uint64        `split_words:"true" default:"0"`
	RateLimit   float64       `split_words:"true" default:"0"`
	Concurrency int           `default:"4"`

	// DBPath is the local JSON store. Empty means ~/.billt/db.json.
	DBPath string `split_words:"true"`

	// DatabaseURL is the PostgreSQL archive; falls back to unprefixed DATABASE_URL
	DatabaseURL string `envconfig:"DATABASE_URL"`

	SheetsCredentials string `split_words:"true"`
	LogLevel          string `split_words:"true" default:"info"`
}

// Load reads configuration from the environment
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath()
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("%s_TIMEOUT must be > 0", Prefix)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%s_CONCURRENCY must be >= 1", Prefix)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%s_RATE_LIMIT must be >= 0", Prefix)
	}
	if !strings.HasPrefix(c.API.URL, "http://") && !strings.HasPrefix(c.API.URL, "https://") {
		return fmt.Errorf("%s_API_URL must be an http(s) URL, got %q", Prefix, c.API.URL)
	}
	return nil
}

// RequireAPIKey fails when commands that talk to LegiScan have no key
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.API.Key) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "billt.json"
	}
	return filepath.Join(home, ".billt", "db.json")
}
