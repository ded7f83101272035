package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays cfg with DASHSYNC_* environment variables. A .env file
// in the working directory is loaded first if present; real environment
// variables win over the file.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	setString(&cfg.BaseURL, "DASHSYNC_BASE_URL")
	setString(&cfg.DatabaseDSN, "DASHSYNC_DATABASE")
	setString(&cfg.EncryptionKey, "DASHSYNC_ENCRYPTION_KEY")
	setString(&cfg.Resource, "DASHSYNC_RESOURCE")
	setBool(&cfg.LegacyCipher, "DASHSYNC_LEGACY_CIPHER")
	setInt(&cfg.MaxPages, "DASHSYNC_MAX_PAGES")
	setInt(&cfg.MaxRecords, "DASHSYNC_MAX_RECORDS")
	setDuration(&cfg.SyncInterval, "DASHSYNC_SYNC_INTERVAL")
	setDuration(&cfg.PageTimeout, "DASHSYNC_PAGE_TIMEOUT")
	setDuration(&cfg.OnlineCheckInterval, "DASHSYNC_ONLINE_CHECK_INTERVAL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
