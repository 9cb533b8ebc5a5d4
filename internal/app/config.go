package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "repairbot/core/config"
	coredatabase "repairbot/core/database"
)

const (
	// StorageMemory keeps orders in process memory (default).
	StorageMemory = "memory"
	// StoragePostgres persists orders via the database stack.
	StoragePostgres = "postgres"
)

// StorageConfig selects the order ledger backend.
type StorageConfig struct {
	Driver string `yaml:"driver" envconfig:"STORAGE_DRIVER"`
}

// ServiceConfig describes one catalog entry in the config file.
type ServiceConfig struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	PriceMinor int64  `yaml:"price_minor"`
}

// Config aggregates the core bot configuration with this bot's own sections.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	Storage  StorageConfig       `yaml:"storage"`
	// Catalog overrides the built-in service list when present.
	Catalog []ServiceConfig `yaml:"catalog"`
}

// CoreConfig exposes the embedded core configuration for the shared runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// LoadConfig reads the combined configuration from a YAML file and applies
// environment overrides.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if err := normalizeStorage(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalizeStorage(cfg *Config) error {
	driver := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if driver == "" {
		driver = StorageMemory
	}
	switch driver {
	case StorageMemory:
	case StoragePostgres:
		if strings.TrimSpace(cfg.Database.Host) == "" {
			return fmt.Errorf("database.host is required when storage.driver is 'postgres'")
		}
		if strings.TrimSpace(cfg.Database.Name) == "" {
			return fmt.Errorf("database.name is required when storage.driver is 'postgres'")
		}
	default:
		return fmt.Errorf("invalid storage.driver %q; allowed: memory, postgres", cfg.Storage.Driver)
	}
	cfg.Storage.Driver = driver
	return nil
}
