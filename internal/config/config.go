package config

import (
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
	"log"
	"os"
	"stock-crawler/pkg/models"
	"time"
)

type Config struct {
	// URLsFile maps to URLS_FILE. One product URL per line.
	URLsFile string `envconfig:"URLS_FILE" default:"urls.txt"`

	// ChromeBinary maps to CHROME_BINARY and wins over any lookup.
	ChromeBinary string `envconfig:"CHROME_BINARY"`

	// RemoteURL maps to CHROME_REMOTE_URL, a DevTools endpoint of a browser
	// that is already running. When set nothing is launched locally.
	RemoteURL string `envconfig:"CHROME_REMOTE_URL"`

	Headless bool `envconfig:"CHROME_HEADLESS" default:"true"`

	// Download allows fetching a Chromium build when no browser is installed.
	Download bool `envconfig:"CHROME_DOWNLOAD" default:"true"`

	UserAgent string `envconfig:"USER_AGENT"`

	// PanelWait bounds both the wait for the panel button and for the first store row.
	PanelWait time.Duration `envconfig:"PANEL_WAIT" default:"20s"`

	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"1s"`
	StablePolls  int           `envconfig:"STABLE_POLLS" default:"3"`
	MaxPolls     int           `envconfig:"MAX_POLLS" default:"30"`

	NavTimeout time.Duration `envconfig:"NAV_TIMEOUT" default:"60s"`

	// RateLimit is the minimum gap between two navigations to the same host.
	// Zero disables pacing.
	RateLimit     time.Duration `envconfig:"RATE_LIMIT" default:"0s"`
	RespectRobots bool          `envconfig:"RESPECT_ROBOTS" default:"false"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// SelectorsFile maps to SELECTORS_FILE, an optional YAML override for Selectors.
	SelectorsFile string `envconfig:"SELECTORS_FILE"`

	Selectors models.Selectors `ignored:"true"`
}

// Load processes environment variables and populates the Config struct.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil {
		if _, statErr := os.Stat(".env"); statErr == nil {
			log.Printf("Warning: .env file found but could not be loaded: %v", err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	cfg.Selectors = models.DefaultSelectors()
	if cfg.SelectorsFile != "" {
		sel, err := LoadSelectors(cfg.SelectorsFile, cfg.Selectors)
		if err != nil {
			return nil, err
		}
		cfg.Selectors = sel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.URLsFile == "" {
		return errors.New("URLS_FILE must not be empty")
	}
	if c.PanelWait <= 0 {
		return fmt.Errorf("PANEL_WAIT must be positive, got %v", c.PanelWait)
	}
	if c.NavTimeout <= 0 {
		return fmt.Errorf("NAV_TIMEOUT must be positive, got %v", c.NavTimeout)
	}
	if c.StablePolls < 1 {
		return fmt.Errorf("STABLE_POLLS must be at least 1, got %d", c.StablePolls)
	}
	if c.MaxPolls < 1 {
		return fmt.Errorf("MAX_POLLS must be at least 1, got %d", c.MaxPolls)
	}
	if c.PollInterval < 0 || c.RateLimit < 0 {
		return errors.New("POLL_INTERVAL and RATE_LIMIT must not be negative")
	}
	if c.Selectors.PanelButton == "" || c.Selectors.StoreRow == "" || c.Selectors.Quantity == "" {
		return errors.New("all selectors must be set")
	}
	return nil
}

// LoadSelectors reads a YAML selectors file. Keys missing from the file keep
// the value from base.
func LoadSelectors(path string, base models.Selectors) (models.Selectors, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read selectors file: %w", err)
	}

	var override models.Selectors
	if err := yaml.Unmarshal(data, &override); err != nil {
		return base, fmt.Errorf("failed to parse selectors file: %w", err)
	}

	if override.PanelButton != "" {
		base.PanelButton = override.PanelButton
	}
	if override.StoreRow != "" {
		base.StoreRow = override.StoreRow
	}
	if override.Quantity != "" {
		base.Quantity = override.Quantity
	}
	return base, nil
}
