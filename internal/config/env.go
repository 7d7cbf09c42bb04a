package config

import (
	"os"
	"strconv"
)

// FromEnv overlays BERYL_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("BERYL_EPOCH"); v != "" {
		cfg.Epoch = v
	}
	if v := os.Getenv("BERYL_BLOCK_STRATEGY"); v != "" {
		cfg.BlockStrategy = v
	}
	if v := os.Getenv("BERYL_MAX_PRODUCERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxProducers = n
		}
	}
	if v := os.Getenv("BERYL_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("BERYL_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("BERYL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("BERYL_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}
