package domain

// ConfigRepository is a secondary port that defines how to persist configuration.
// This interface is defined in the domain layer and implemented by adapters.
type ConfigRepository interface {
	Load() (Config, error)
	Save(config Config) error
}

// AudioSystem is a secondary port giving access to the platform audio subsystem.
// Each Open starts a session that must be closed by the caller, whatever happens in between.
type AudioSystem interface {
	Open() (AudioSession, error)
}

// AudioSession is a platform session scoped to a single volume operation.
type AudioSession interface {
	// DefaultRenderEndpoint resolves the default output device for the console role.
	DefaultRenderEndpoint() (Endpoint, error)
	Close()
}

// Endpoint is a handle to an audio device. Release must be called exactly once.
type Endpoint interface {
	ID() string
	ActivateVolume() (EndpointVolume, error)
	Release()
}

// EndpointVolume is the volume control activated on an Endpoint.
type EndpointVolume interface {
	MasterScalar() (float64, error)
	SetMute(muted bool) error
	SetMasterScalar(level float64) error
	Release()
}

// PowerController is a secondary port that shuts down or restarts the host.
type PowerController interface {
	Shutdown() error
	Restart() error
}
