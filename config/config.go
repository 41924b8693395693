// Package config resolves where scrapers cache pages and write
// exports. Directories are explicit values handed to each scraper, not
// process-wide defaults, so two agencies can run in one process against
// different locations.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvOutputDir overrides the root output directory when set.
const EnvOutputDir = "CLEAN_OUTPUT_DIR"

// Config holds the filesystem layout and scraping defaults.
type Config struct {
	// OutputDir is the root under which everything else lives.
	// Defaults to ~/.clean-scraper.
	OutputDir string `yaml:"output_dir"`

	// CacheDir holds downloaded pages. Defaults to {OutputDir}/cache.
	CacheDir string `yaml:"cache_dir"`

	// DataDir holds metadata exports. Defaults to {OutputDir}/exports.
	DataDir string `yaml:"data_dir"`

	// LedgerPath is the scrape-run ledger database. Defaults to
	// {OutputDir}/ledger.db.
	LedgerPath string `yaml:"ledger_path"`

	// ThrottleSeconds is the default pause between page downloads.
	ThrottleSeconds int `yaml:"throttle_seconds"`

	// UserAgent overrides the fetch layer's default User-Agent.
	UserAgent string `yaml:"user_agent"`
}

// Throttle returns the configured throttle as a duration.
func (c Config) Throttle() time.Duration {
	return time.Duration(c.ThrottleSeconds) * time.Second
}

// Default returns the configuration used when no config file exists.
// The root honors CLEAN_OUTPUT_DIR, falling back to ~/.clean-scraper.
func Default() (Config, error) {
	root := os.Getenv(EnvOutputDir)
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("failed to get user home directory: %w", err)
		}
		root = filepath.Join(home, ".clean-scraper")
	}
	cfg := Config{OutputDir: root, ThrottleSeconds: 2}
	cfg.fillDerived()
	return cfg, nil
}

// Load returns the default configuration overlaid with
// {OutputDir}/config.yaml when that file exists; a missing file is not
// an error.
func Load() (Config, error) {
	cfg, err := Default()
	if err != nil {
		return Config{}, err
	}

	path := filepath.Join(cfg.OutputDir, "config.yaml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	// File values win; derived paths are recomputed against the file's
	// output root when the file leaves them blank.
	if fileCfg.OutputDir == "" {
		fileCfg.OutputDir = cfg.OutputDir
	}
	if fileCfg.ThrottleSeconds == 0 {
		fileCfg.ThrottleSeconds = cfg.ThrottleSeconds
	}
	fileCfg.fillDerived()
	return fileCfg, nil
}

// fillDerived computes the subdirectory paths left empty by the file.
func (c *Config) fillDerived() {
	if c.CacheDir == "" {
		c.CacheDir = filepath.Join(c.OutputDir, "cache")
	}
	if c.DataDir == "" {
		c.DataDir = filepath.Join(c.OutputDir, "exports")
	}
	if c.LedgerPath == "" {
		c.LedgerPath = filepath.Join(c.OutputDir, "ledger.db")
	}
}
