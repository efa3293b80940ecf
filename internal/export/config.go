package export

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"pixnox/internal/core"
)

// Config holds presentation overrides for the report CLI.
type Config struct {
	// Currency is an ISO code; empty means DefaultCurrency.
	Currency string `yaml:"currency,omitempty"`
	// Labels renames categories by key, e.g. food: "Eating out".
	Labels map[string]string `yaml:"labels,omitempty"`
	// TopCategories bounds the dashboard's top list; 0 keeps the default.
	TopCategories int `yaml:"top_categories,omitempty"`
	// RecentLimit bounds the dashboard's recent list; 0 keeps the default.
	RecentLimit int `yaml:"recent_limit,omitempty"`
}

// DefaultConfigPath is ~/.pixnox/report.yaml, or "" without a home directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".pixnox", "report.yaml")
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if cfg.TopCategories < 0 || cfg.RecentLimit < 0 {
		return nil, fmt.Errorf("parsing config file: negative list length")
	}
	return &cfg, nil
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Label returns the configured label for c, falling back to its default.
func (c *Config) Label(cat core.Category) string {
	if c != nil {
		if l, ok := c.Labels[cat.String()]; ok && l != "" {
			return l
		}
	}
	return cat.Label()
}
