package usecase

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"volnudge/internal/domain"
	"volnudge/internal/logging"
)

// RemoteControl is the primary port for a single remote client nudging the volume.
type RemoteControl interface {
	Start(ctx context.Context)
	Connect(password string) (string, error)
	Ping(token string) error
	Disconnect(token string) error
	ChangeVolume(token string, delta float64) error
	Shutdown(token string) error
	Restart(token string) error
	Connected() bool
}

// remoteInteractor implements RemoteControl.
// One client at a time holds a token; a client silent for a whole heartbeat
// period loses it.
type remoteInteractor struct {
	adjuster  VolumeAdjuster
	power     domain.PowerController
	password  string
	heartbeat time.Duration
	newToken  func() string

	mu     sync.Mutex
	token  string
	pinged bool
}

// NewRemoteControl creates the remote control use case.
// power is only used when cfg.AllowPower is set; it may be nil otherwise.
func NewRemoteControl(adjuster VolumeAdjuster, power domain.PowerController, cfg domain.RemoteConfig) (RemoteControl, error) {
	if cfg.Password == "" {
		return nil, domain.ErrMissingPassword
	}
	if cfg.Heartbeat < time.Second {
		return nil, domain.ErrInvalidHeartbeat
	}
	if !cfg.AllowPower {
		power = nil
	}
	return &remoteInteractor{
		adjuster:  adjuster,
		power:     power,
		password:  cfg.Password,
		heartbeat: cfg.Heartbeat,
		newToken:  func() string { return uuid.NewString() },
	}, nil
}

// Start begins the heartbeat loop.
func (r *remoteInteractor) Start(ctx context.Context) {
	go r.loop(ctx)
}

func (r *remoteInteractor) loop(ctx context.Context) {
	ticker := time.NewTicker(r.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.checkHeartbeat()
		}
	}
}

// checkHeartbeat drops a client that stayed silent since the previous check.
func (r *remoteInteractor) checkHeartbeat() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.token == "" {
		return
	}
	if !r.pinged {
		logging.Infof("remote client timed out")
		r.token = ""
		return
	}
	r.pinged = false
}

// Connect hands out a token if no other client is connected.
func (r *remoteInteractor) Connect(password string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.token != "" {
		logging.Warnf("remote connect refused: client already connected")
		return "", domain.ErrAlreadyConnected
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(r.password)) != 1 {
		logging.Warnf("remote connect refused: invalid password")
		return "", domain.ErrBadPassword
	}

	r.token = r.newToken()
	r.pinged = true
	logging.Infof("remote client connected")
	return r.token, nil
}

// Ping keeps the session alive.
func (r *remoteInteractor) Ping(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.touch(token)
}

// Disconnect ends the session held by token.
func (r *remoteInteractor) Disconnect(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.touch(token); err != nil {
		return err
	}
	r.token = ""
	r.pinged = false
	logging.Infof("remote client disconnected")
	return nil
}

// ChangeVolume nudges the default output volume on behalf of the client.
// Device failures are not reported back, only token errors are.
func (r *remoteInteractor) ChangeVolume(token string, delta float64) error {
	r.mu.Lock()
	err := r.touch(token)
	r.mu.Unlock()
	if err != nil {
		return err
	}

	logging.Debugf("remote volume delta %+.3f", delta)
	r.adjuster.Adjust(delta)
	return nil
}

// Shutdown powers the host off on behalf of the client.
func (r *remoteInteractor) Shutdown(token string) error {
	return r.powerAction(token, "shutdown", func(p domain.PowerController) error { return p.Shutdown() })
}

// Restart reboots the host on behalf of the client.
func (r *remoteInteractor) Restart(token string) error {
	return r.powerAction(token, "restart", func(p domain.PowerController) error { return p.Restart() })
}

func (r *remoteInteractor) powerAction(token, name string, action func(domain.PowerController) error) error {
	r.mu.Lock()
	err := r.touch(token)
	r.mu.Unlock()
	if err != nil {
		return err
	}
	if r.power == nil {
		logging.Warnf("remote %s refused: power control disabled", name)
		return domain.ErrPowerDisabled
	}

	logging.Infof("remote client requested %s", name)
	if err := action(r.power); err != nil {
		logging.Errorf("remote %s failed: %v", name, err)
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Connected reports whether a client currently holds a token.
func (r *remoteInteractor) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token != ""
}

// touch validates token and marks the client alive. Callers hold r.mu.
func (r *remoteInteractor) touch(token string) error {
	if r.token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(r.token)) != 1 {
		logging.Warnf("remote call with invalid token")
		return domain.ErrInvalidToken
	}
	r.pinged = true
	return nil
}
