package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds process-level settings read from the environment.
type Env struct {
	DataDir string `env:"SIMSCAT_DATA_DIR" envDefault:"runs"`
	LogMode string `env:"SIMSCAT_LOG_MODE" envDefault:"dev"`
	Seed    *int64 `env:"SIMSCAT_SEED"`
	Workers int    `env:"SIMSCAT_WORKERS"`
}

func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Apply copies environment overrides onto a run config.
func (e Env) Apply(c *Config) {
	if e.Seed != nil {
		c.Seed = *e.Seed
	}
}
