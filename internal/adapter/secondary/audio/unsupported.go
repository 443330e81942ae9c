//go:build !windows && !darwin && !linux

package audio

import (
	"runtime"

	"volnudge/internal/domain"
	"volnudge/internal/logging"
)

// UnsupportedSystem implements domain.AudioSystem for platforms without a
// default audio endpoint. Every Open fails.
type UnsupportedSystem struct{}

func newPlatformSystem() domain.AudioSystem {
	return UnsupportedSystem{}
}

// Open always fails with domain.ErrUnsupportedPlatform.
func (UnsupportedSystem) Open() (domain.AudioSession, error) {
	logging.Debugf("no audio backend for %s", runtime.GOOS)
	return nil, domain.ErrUnsupportedPlatform
}
