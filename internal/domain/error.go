package domain

import "errors"

var (
	// ErrDeviceEnumeration indicates that the default render endpoint could not be resolved.
	ErrDeviceEnumeration = errors.New("default audio endpoint unavailable")

	// ErrActivation indicates that the endpoint volume control could not be activated.
	ErrActivation = errors.New("endpoint volume activation failed")

	// ErrVolumeRead indicates that the current scalar volume could not be read.
	ErrVolumeRead = errors.New("read endpoint volume failed")

	// ErrCommit indicates that the mute flag or the new volume could not be written.
	ErrCommit = errors.New("commit endpoint volume failed")

	// ErrInvalidDelta indicates a delta that cannot produce an in-range volume.
	ErrInvalidDelta = errors.New("delta must be a number")

	// ErrUnsupportedPlatform indicates that no default audio endpoint exists on this OS.
	ErrUnsupportedPlatform = errors.New("platform has no default audio endpoint")

	ErrInvalidStep      = errors.New("step must be in (0, 1]")
	ErrInvalidHeartbeat = errors.New("heartbeat must be at least 1 second")
	ErrInvalidRateLimit = errors.New("rate limit must be at least 1 request per second")
	ErrMissingPassword  = errors.New("remote password is not configured")

	// ErrAlreadyConnected indicates that another remote client holds the session.
	ErrAlreadyConnected = errors.New("remote client already connected")

	ErrBadPassword  = errors.New("invalid password")
	ErrInvalidToken = errors.New("invalid token")

	// ErrPowerDisabled indicates that remote shutdown and restart are not enabled.
	ErrPowerDisabled = errors.New("remote power control is disabled")
)
