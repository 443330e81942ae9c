package domain

import "math"

// VolumeService provides pure domain logic for volume nudges.
// This service has no side effects and no dependencies on external concerns.
type VolumeService struct{}

// NewVolumeService creates a new volume service.
func NewVolumeService() *VolumeService {
	return &VolumeService{}
}

// ValidateDelta rejects deltas that would make the clamp meaningless.
// Infinite values are accepted and end up at a bound.
func (s *VolumeService) ValidateDelta(delta float64) error {
	if math.IsNaN(delta) {
		return ErrInvalidDelta
	}
	return nil
}

// NextLevel returns current+delta clamped to [MinScalar, MaxScalar].
// In-range sums are returned as is, without rounding.
func (s *VolumeService) NextLevel(current, delta float64) float64 {
	proposed := current + delta
	if proposed > MaxScalar {
		return MaxScalar
	}
	if proposed < MinScalar {
		return MinScalar
	}
	return proposed
}

// ValidateAndNormalize validates a config and returns a normalized version.
func (s *VolumeService) ValidateAndNormalize(config Config) (Config, error) {
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}
