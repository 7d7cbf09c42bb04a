package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// DefaultEpoch is the zero point Crystal timestamps are measured from unless
// configured otherwise: 2020-01-01T00:00:00Z.
var DefaultEpoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// Epoch is the RFC3339 reference point for Crystal timestamps. All
	// producers in one deployment must share it.
	Epoch string `json:"epoch"`
	// BlockStrategy selects the default blocking policy: "spin" or "sleep".
	BlockStrategy string `json:"blockStrategy"`
	// MaxProducers caps how many producer names the registry may allocate.
	// Zero means the full 14-bit space (16384).
	MaxProducers int `json:"maxProducers"`

	HTTPAddr string `json:"httpAddr"`
	DataDir  string `json:"dataDir"`

	LogLevel  string `json:"logLevel"`
	LogFormat string `json:"logFormat"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Epoch:         DefaultEpoch.Format(time.RFC3339),
		BlockStrategy: "spin",
		HTTPAddr:      ":8080",
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// Load reads configuration from a JSON file. If path is empty, returns
// defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads a .env file from the working directory into the process
// environment when present, so FromEnv can pick the values up. A missing file
// is not an error.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// EpochTime parses the configured epoch. The epoch must not be in the future.
func (c Config) EpochTime() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, c.Epoch)
	if err != nil {
		return time.Time{}, fmt.Errorf("config: parse epoch %q: %w", c.Epoch, err)
	}
	if t.After(time.Now()) {
		return time.Time{}, fmt.Errorf("config: epoch %s is in the future", c.Epoch)
	}
	return t, nil
}

// Validate checks cross-field constraints that FromEnv and Load cannot.
func (c Config) Validate() error {
	if _, err := c.EpochTime(); err != nil {
		return err
	}
	switch c.BlockStrategy {
	case "spin", "sleep":
	default:
		return fmt.Errorf("config: unknown block strategy %q (use spin|sleep)", c.BlockStrategy)
	}
	if c.MaxProducers < 0 || c.MaxProducers > 1<<14 {
		return fmt.Errorf("config: maxProducers %d out of range (0..16384)", c.MaxProducers)
	}
	return nil
}
