package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Defaults applied when a field is absent from config.json.
const (
	DefaultWorkerCount          = 4
	DefaultQueueDepth           = 64
	DefaultActionTimeoutSeconds = 10
	DefaultScanSchedule         = "@hourly"
	DefaultDueSoonDays          = 3
)

// Config represents the flat tempo configuration
type Config struct {
	Version              string `json:"version"`
	DBPath               string `json:"db_path,omitempty"`                // defaults to ~/.tempo/tempo.db
	WorkerCount          int    `json:"worker_count,omitempty"`           // event bus worker shards
	QueueDepth           int    `json:"queue_depth,omitempty"`            // per-shard queue bound
	ActionTimeoutSeconds int    `json:"action_timeout_seconds,omitempty"` // per-action budget
	ScanSchedule         string `json:"scan_schedule,omitempty"`          // cron spec for the due-date scanner
	DueSoonDays          int    `json:"due_soon_days,omitempty"`          // window for due_date_approaching
}

// LoadConfig reads .tempo/config.json from the specified directory.
// Resolution order: cwd only (no home fallback).
// Returns error if no config found - caller should handle accordingly.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, ".tempo", "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// Default returns a config with all defaults applied.
func Default() *Config {
	cfg := &Config{Version: "1"}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.WorkerCount <= 0 {
		c.WorkerCount = DefaultWorkerCount
	}
	if c.QueueDepth <= 0 {
		c.QueueDepth = DefaultQueueDepth
	}
	if c.ActionTimeoutSeconds <= 0 {
		c.ActionTimeoutSeconds = DefaultActionTimeoutSeconds
	}
	if c.ScanSchedule == "" {
		c.ScanSchedule = DefaultScanSchedule
	}
	if c.DueSoonDays <= 0 {
		c.DueSoonDays = DefaultDueSoonDays
	}
}

// SaveConfig writes config.json to directory
func SaveConfig(dir string, cfg *Config) error {
	tempoDir := filepath.Join(dir, ".tempo")
	if err := os.MkdirAll(tempoDir, 0755); err != nil {
		return fmt.Errorf("failed to create .tempo dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(tempoDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
