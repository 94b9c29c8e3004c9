package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type ProjectConfig struct {
	Project  string         `yaml:"project"`
	Version  int            `yaml:"version"`
	Database DatabaseConfig `yaml:"database"`
	Data     DataConfig     `yaml:"data"`
	Rules    RulesConfig    `yaml:"rules"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type DataConfig struct {
	Path string `yaml:"path"`
}

type RulesConfig struct {
	XML            string `yaml:"xml"`
	ManualMappings string `yaml:"manual_mappings"`
	NotFoundExport string `yaml:"not_found_export"`
}

func Load(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *ProjectConfig) {
	if cfg.Rules.NotFoundExport == "" {
		cfg.Rules.NotFoundExport = "not_found_manual_review.csv"
	}
}

func validate(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return fmt.Errorf("database dsn is required")
	}
	if !strings.HasPrefix(cfg.Database.DSN, "sqlite://") && !strings.HasPrefix(cfg.Database.DSN, "postgres://") {
		return fmt.Errorf("unsupported database dsn scheme (expected sqlite:// or postgres://)")
	}
	if strings.TrimSpace(cfg.Data.Path) == "" {
		return fmt.Errorf("data path is required")
	}
	return nil
}
