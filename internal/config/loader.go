package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TRADEFURY_CONFIG is set
//  3. env (prefix TRADEFURY_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("TRADEFURY_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: TRADEFURY_DATA_DIR, TRADEFURY_RETENTION_LIMIT, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("TRADEFURY_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "tradefury_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	}
	if c.RetentionLimit < 1 {
		return fmt.Errorf("%w: retention_limit must be positive", ErrInvalidConfig)
	}
	if c.UnitSeconds < 1 {
		return fmt.Errorf("%w: unit_seconds must be positive", ErrInvalidConfig)
	}
	if c.LookupConcurrency < 1 {
		return fmt.Errorf("%w: lookup_concurrency must be positive", ErrInvalidConfig)
	}
	if c.PriceTable == "" || c.HistoryTable == "" {
		return fmt.Errorf("%w: table names must not be empty", ErrInvalidConfig)
	}
	return nil
}
