/*
Package config loads server configuration from an optional TOML file.

PURPOSE:
  One place for everything tunable at deploy time. Flags in main cover
  the common cases (port, db path); a TOML file covers the rest and
  wins over nothing - explicit flags still take precedence in main.

FILE FORMAT:
  addr = ":8080"
  db_path = "./data/cashflow.db"
  log_level = "info"
  cors_origins = ["http://localhost:5173"]

  [snapshots]
  enabled = true
  cron = "0 * * * *"
*/
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Snapshots configures the background snapshot scheduler.
type Snapshots struct {
	Enabled bool   `toml:"enabled"`
	Cron    string `toml:"cron"`
}

// Config is the full server configuration.
type Config struct {
	Addr        string    `toml:"addr"`
	DBPath      string    `toml:"db_path"`
	LogLevel    string    `toml:"log_level"`
	CORSOrigins []string  `toml:"cors_origins"`
	Snapshots   Snapshots `toml:"snapshots"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Addr:     ":8080",
		DBPath:   "cashflow.db",
		LogLevel: "info",
		Snapshots: Snapshots{
			Enabled: true,
			Cron:    "0 * * * *",
		},
	}
}

// Load reads a TOML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "cashflow.db"
	}
	if cfg.Snapshots.Cron == "" {
		cfg.Snapshots.Cron = "0 * * * *"
	}
	return cfg, nil
}
