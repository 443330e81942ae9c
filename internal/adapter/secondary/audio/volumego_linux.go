//go:build linux

package audio

import (
	"fmt"

	"github.com/itchyny/volume-go"

	"volnudge/internal/domain"
)

// MixerSystem implements domain.AudioSystem on the default PulseAudio/ALSA
// sink through volume-go. This is a secondary adapter.
type MixerSystem struct{}

// NewMixerSystem creates a mixer backed audio system.
func NewMixerSystem() domain.AudioSystem {
	return &MixerSystem{}
}

func newPlatformSystem() domain.AudioSystem {
	return NewMixerSystem()
}

func (m *MixerSystem) Open() (domain.AudioSession, error) {
	return mixerSession{}, nil
}

type mixerSession struct{}

// DefaultRenderEndpoint checks that a default sink answers before any write.
func (mixerSession) DefaultRenderEndpoint() (domain.Endpoint, error) {
	if _, err := volume.GetMuted(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDeviceEnumeration, err)
	}
	return mixerEndpoint{}, nil
}

func (mixerSession) Close() {}

type mixerEndpoint struct{}

func (mixerEndpoint) ID() string { return "default-sink" }

func (mixerEndpoint) ActivateVolume() (domain.EndpointVolume, error) {
	return mixerVolume{}, nil
}

func (mixerEndpoint) Release() {}

type mixerVolume struct{}

func (mixerVolume) MasterScalar() (float64, error) {
	p, err := volume.GetVolume()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrVolumeRead, err)
	}
	return fromPercent(p), nil
}

func (mixerVolume) SetMute(muted bool) error {
	var err error
	if muted {
		err = volume.Mute()
	} else {
		err = volume.Unmute()
	}
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCommit, err)
	}
	return nil
}

func (mixerVolume) SetMasterScalar(level float64) error {
	if err := volume.SetVolume(toPercent(level)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCommit, err)
	}
	return nil
}

func (mixerVolume) Release() {}
