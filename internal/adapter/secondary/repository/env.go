package repository

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"volnudge/internal/domain"
)

// envOverrides are read from the process environment on every Load.
type envOverrides struct {
	Step     *float64 `env:"STEP"`
	Addr     string   `env:"REMOTE_ADDR"`
	Password string   `env:"REMOTE_PASSWORD"`
}

const envPrefix = "VOLNUDGE_"

// envRepository layers environment overrides on top of another repository.
// Overrides are never written back.
type envRepository struct {
	base    domain.ConfigRepository
	environ map[string]string
}

// WithEnv wraps repo so that VOLNUDGE_* variables take precedence on Load.
func WithEnv(repo domain.ConfigRepository) domain.ConfigRepository {
	return &envRepository{base: repo}
}

func (r *envRepository) Load() (domain.Config, error) {
	config, err := r.base.Load()
	if err != nil {
		return domain.Config{}, err
	}

	opts := env.Options{Prefix: envPrefix}
	if r.environ != nil {
		opts.Environment = r.environ
	}
	var o envOverrides
	if err := env.ParseWithOptions(&o, opts); err != nil {
		return domain.Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if o.Step != nil {
		config.Step = *o.Step
	}
	if o.Addr != "" {
		config.Remote.Addr = o.Addr
	}
	if o.Password != "" {
		config.Remote.Password = o.Password
	}
	return config, nil
}

func (r *envRepository) Save(config domain.Config) error {
	return r.base.Save(config)
}
