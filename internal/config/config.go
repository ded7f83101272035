package config

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/common"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/envelope"
)

// Config holds runtime settings for the dashsync CLI.
//
// Units: SyncInterval, PageTimeout and OnlineCheckInterval are time.Duration
// values (e.g., 60*time.Second).
type Config struct {
	// BaseURL is the root of the remote endpoint, e.g. "https://api.example.com".
	BaseURL string
	// DatabaseDSN is the path of the local mirror database file.
	DatabaseDSN string
	// EncryptionKey is the base64-encoded 16-byte payload key.
	EncryptionKey string
	// Resource is the remote collection to mirror.
	Resource string
	// LegacyCipher selects the CBC envelope variant instead of GCM.
	LegacyCipher bool

	MaxPages            int
	MaxRecords          int
	SyncInterval        time.Duration
	PageTimeout         time.Duration
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults. The encryption key has no
// default; it must come from the environment or the JSON file.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://127.0.0.1:8080"
	c.DatabaseDSN = "dashsync.db"
	c.Resource = "users"
	c.MaxPages = 10
	c.MaxRecords = 1000
	c.SyncInterval = 60 * time.Second
	c.PageTimeout = 10 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the environment and from a JSON file (if jsonPath is non-empty).
// Later sources take precedence over earlier ones; command-line flags are
// overlaid by the CLI after this returns.
func LoadConfig(jsonPath string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	if err := parseJSON(cfg, jsonPath); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Key decodes the configured encryption key and checks its size.
func (c *Config) Key() ([]byte, error) {
	if c.EncryptionKey == "" {
		return nil, fmt.Errorf("%w: encryption key is not set", common.ErrConfig)
	}
	key, err := base64.StdEncoding.DecodeString(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("%w: encryption key is not valid base64: %v", common.ErrConfig, err)
	}
	if len(key) != envelope.KeyLength {
		return nil, fmt.Errorf("%w: encryption key must be %d bytes, got %d", common.ErrConfig, envelope.KeyLength, len(key))
	}
	return key, nil
}

// Validate checks the settings a running engine cannot tolerate being wrong.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL is required", common.ErrConfig)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("%w: database path is required", common.ErrConfig)
	}
	if _, err := c.Key(); err != nil {
		return err
	}
	if c.MaxPages <= 0 || c.MaxRecords <= 0 {
		return fmt.Errorf("%w: page and record bounds must be positive", common.ErrConfig)
	}
	if c.SyncInterval <= 0 || c.PageTimeout <= 0 || c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("%w: intervals must be positive", common.ErrConfig)
	}
	return nil
}
