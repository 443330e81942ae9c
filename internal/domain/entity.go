package domain

import (
	"math"
	"time"
)

const (
	// MinScalar and MaxScalar bound every scalar volume committed to a device.
	MinScalar = 0.0
	MaxScalar = 1.0
)

// Config represents the user preferences shared by the CLI and the remote API.
// This is a pure domain model with no dependencies on external concerns.
type Config struct {
	Step   float64
	Remote RemoteConfig
}

// RemoteConfig holds the settings of the remote control listener.
type RemoteConfig struct {
	Addr      string
	Password  string
	Heartbeat time.Duration
	RateLimit int
	// AllowPower lets the remote client shut down or restart the host.
	AllowPower bool
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if err := ValidateStep(c.Step); err != nil {
		return err
	}
	if c.Remote.Heartbeat < time.Second {
		return ErrInvalidHeartbeat
	}
	if c.Remote.RateLimit < 1 {
		return ErrInvalidRateLimit
	}
	return nil
}

// ValidateStep checks a step size for up/down nudges.
func ValidateStep(step float64) error {
	if math.IsNaN(step) || step <= 0 || step > MaxScalar {
		return ErrInvalidStep
	}
	return nil
}

// DefaultConfig returns the default configuration values.
func DefaultConfig() Config {
	return Config{
		Step: 0.05,
		Remote: RemoteConfig{
			Addr:      "127.0.0.1:40000",
			Heartbeat: 5 * time.Second,
			RateLimit: 10,
		},
	}
}
