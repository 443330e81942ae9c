package usecase

import (
	"errors"
	"fmt"
	"math"

	"volnudge/internal/domain"
	"volnudge/internal/logging"
)

// VolumeAdjuster is the primary port for nudging the default output volume.
type VolumeAdjuster interface {
	// Adjust moves the default render endpoint's volume by delta, clamped to
	// [0, 1], and unmutes it. Failures leave the device untouched and are not
	// reported.
	Adjust(delta float64)
	// TryAdjust is Adjust with the failure returned instead of dropped.
	TryAdjust(delta float64) error
}

// adjusterInteractor implements VolumeAdjuster.
// It keeps no state between calls: every call resolves the default endpoint again.
type adjusterInteractor struct {
	audio   domain.AudioSystem
	service *domain.VolumeService
}

// NewVolumeAdjuster creates a new volume adjuster on top of an audio system.
func NewVolumeAdjuster(audio domain.AudioSystem) VolumeAdjuster {
	return &adjusterInteractor{
		audio:   audio,
		service: domain.NewVolumeService(),
	}
}

// Adjust implements VolumeAdjuster.
func (a *adjusterInteractor) Adjust(delta float64) {
	if err := a.TryAdjust(delta); err != nil {
		logging.Debugf("volume adjust %+.3f skipped: %v", delta, err)
	}
}

// TryAdjust implements VolumeAdjuster.
// The read and the write are two separate platform calls; another process may
// change the volume in between and that change is overwritten.
func (a *adjusterInteractor) TryAdjust(delta float64) error {
	if err := a.service.ValidateDelta(delta); err != nil {
		return err
	}

	session, err := a.audio.Open()
	if err != nil {
		return wrapStep(domain.ErrDeviceEnumeration, "open audio session", err)
	}
	defer session.Close()

	endpoint, err := session.DefaultRenderEndpoint()
	if err != nil {
		return wrapStep(domain.ErrDeviceEnumeration, "resolve default endpoint", err)
	}
	defer endpoint.Release()
	logging.Tracef("default render endpoint %s", endpoint.ID())

	control, err := endpoint.ActivateVolume()
	if err != nil {
		return wrapStep(domain.ErrActivation, "activate endpoint volume", err)
	}
	defer control.Release()

	current, err := control.MasterScalar()
	if err != nil {
		return wrapStep(domain.ErrVolumeRead, "read volume", err)
	}
	if math.IsNaN(current) {
		return fmt.Errorf("%w: device reported NaN", domain.ErrVolumeRead)
	}

	next := a.service.NextLevel(current, delta)

	// Unmute regardless of direction.
	if err := control.SetMute(false); err != nil {
		return wrapStep(domain.ErrCommit, "clear mute", err)
	}
	if err := control.SetMasterScalar(next); err != nil {
		return wrapStep(domain.ErrCommit, "set volume", err)
	}

	logging.Debugf("volume %.3f -> %.3f (delta %+.3f)", current, next, delta)
	return nil
}

// wrapStep tags err with the taxonomy sentinel unless an adapter already did.
func wrapStep(kind error, step string, err error) error {
	if errors.Is(err, kind) {
		return fmt.Errorf("%s: %w", step, err)
	}
	return fmt.Errorf("%s: %w: %w", step, kind, err)
}
