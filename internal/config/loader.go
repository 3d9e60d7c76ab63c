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
//  2. file (YAML) if VARUNA_CONFIG is set
//  3. env (prefix VARUNA_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("VARUNA_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrLoadConfig, err)
		}
	}

	// Environment variables: VARUNA_ADDR, VARUNA_DSN, VARUNA_LOG_LEVEL, ...
	// Map env keys like VARUNA_LOG_LEVEL -> log_level (flat keys, underscores
	// preserved to match the koanf tags on the struct).
	envProvider := env.Provider("VARUNA_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "varuna_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLoadConfig, err)
	}

	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("%w: dsn must not be empty", ErrInvalidConfig)
	}
	return &cfg, nil
}
