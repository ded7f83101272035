package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/common"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "60s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config (which uses time.Duration).
type JsonConfig struct {
	BaseURL             string          `json:"base_url"`
	DatabaseDSN         string          `json:"database"`
	EncryptionKey       string          `json:"encryption_key"`
	Resource            string          `json:"resource"`
	LegacyCipher        *bool           `json:"legacy_cipher"`
	MaxPages            *int            `json:"max_pages"`
	MaxRecords          *int            `json:"max_records"`
	SyncInterval        *timex.Duration `json:"sync_interval"`
	PageTimeout         *timex.Duration `json:"page_timeout"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
}

// parseJSON overlays cfg with values loaded from a JSON file. An empty path
// means no file is used. Absent fields keep their current values; pointer
// fields distinguish "absent" from a deliberate zero.
func parseJSON(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", common.ErrConfig, path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", common.ErrConfig, path, err)
	}

	if jc.BaseURL != "" {
		cfg.BaseURL = jc.BaseURL
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.EncryptionKey != "" {
		cfg.EncryptionKey = jc.EncryptionKey
	}
	if jc.Resource != "" {
		cfg.Resource = jc.Resource
	}
	if jc.LegacyCipher != nil {
		cfg.LegacyCipher = *jc.LegacyCipher
	}
	if jc.MaxPages != nil {
		cfg.MaxPages = *jc.MaxPages
	}
	if jc.MaxRecords != nil {
		cfg.MaxRecords = *jc.MaxRecords
	}
	if jc.SyncInterval != nil {
		cfg.SyncInterval = time.Duration(jc.SyncInterval.Duration)
	}
	if jc.PageTimeout != nil {
		cfg.PageTimeout = time.Duration(jc.PageTimeout.Duration)
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	return nil
}
