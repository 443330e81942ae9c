// Package audio holds the secondary adapters that reach the platform's
// default render endpoint.
package audio

import (
	"math"

	"volnudge/internal/domain"
)

// NewSystem returns the audio system for the running platform.
func NewSystem() domain.AudioSystem {
	return newPlatformSystem()
}

// toPercent converts a scalar level to the 0-100 integer scale used by
// mixers that do not accept fractions.
func toPercent(level float64) int {
	p := int(math.Round(level * 100))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func fromPercent(p int) float64 {
	return float64(p) / 100
}
