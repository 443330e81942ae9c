//go:build windows

package audio

import (
	"fmt"
	"runtime"

	ole "github.com/go-ole/go-ole"
	"github.com/moutend/go-wca/pkg/wca"

	"volnudge/internal/domain"
	"volnudge/internal/logging"
)

// WCASystem implements domain.AudioSystem on top of Windows Core Audio.
// This is a secondary adapter.
type WCASystem struct{}

// NewWCASystem creates a Core Audio backed audio system.
func NewWCASystem() domain.AudioSystem {
	return &WCASystem{}
}

func newPlatformSystem() domain.AudioSystem {
	return NewWCASystem()
}

// Open joins a single-threaded COM apartment on the calling OS thread.
// The goroutine stays pinned to that thread until Close.
func (w *WCASystem) Open() (domain.AudioSession, error) {
	runtime.LockOSThread()
	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		if succeeded(err) != nil {
			runtime.UnlockOSThread()
			return nil, fmt.Errorf("%w: initialize COM: %v", domain.ErrDeviceEnumeration, err)
		}
		logging.Tracef("COM already initialized on this thread")
	}
	return &wcaSession{}, nil
}

type wcaSession struct {
	closed bool
}

func (s *wcaSession) DefaultRenderEndpoint() (domain.Endpoint, error) {
	var mmde *wca.IMMDeviceEnumerator
	if err := wca.CoCreateInstance(
		wca.CLSID_MMDeviceEnumerator,
		0,
		wca.CLSCTX_INPROC_SERVER,
		wca.IID_IMMDeviceEnumerator,
		&mmde,
	); err != nil {
		return nil, fmt.Errorf("%w: create device enumerator: %v", domain.ErrDeviceEnumeration, err)
	}
	defer mmde.Release()

	var mmd *wca.IMMDevice
	if err := mmde.GetDefaultAudioEndpoint(wca.ERender, wca.EConsole, &mmd); err != nil {
		return nil, fmt.Errorf("%w: get default render endpoint: %v", domain.ErrDeviceEnumeration, err)
	}
	return &wcaEndpoint{mmd: mmd}, nil
}

func (s *wcaSession) Close() {
	if s.closed {
		return
	}
	s.closed = true
	ole.CoUninitialize()
	runtime.UnlockOSThread()
}

type wcaEndpoint struct {
	mmd *wca.IMMDevice
}

func (e *wcaEndpoint) ID() string {
	if e.mmd == nil {
		return ""
	}
	var id string
	if err := e.mmd.GetId(&id); err != nil {
		return ""
	}
	return id
}

func (e *wcaEndpoint) ActivateVolume() (domain.EndpointVolume, error) {
	var aev *wca.IAudioEndpointVolume
	if err := e.mmd.Activate(wca.IID_IAudioEndpointVolume, wca.CLSCTX_INPROC_SERVER, nil, &aev); err != nil {
		return nil, fmt.Errorf("%w: activate endpoint volume: %v", domain.ErrActivation, err)
	}
	return &wcaVolume{aev: aev}, nil
}

func (e *wcaEndpoint) Release() {
	if e.mmd != nil {
		e.mmd.Release()
		e.mmd = nil
	}
}

type wcaVolume struct {
	aev *wca.IAudioEndpointVolume
}

func (v *wcaVolume) MasterScalar() (float64, error) {
	var level float32
	if err := v.aev.GetMasterVolumeLevelScalar(&level); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrVolumeRead, err)
	}
	return float64(level), nil
}

func (v *wcaVolume) SetMute(muted bool) error {
	if err := succeeded(v.aev.SetMute(muted, nil)); err != nil {
		return fmt.Errorf("%w: set mute: %v", domain.ErrCommit, err)
	}
	return nil
}

func (v *wcaVolume) SetMasterScalar(level float64) error {
	if err := succeeded(v.aev.SetMasterVolumeLevelScalar(float32(level), nil)); err != nil {
		return fmt.Errorf("%w: set scalar volume: %v", domain.ErrCommit, err)
	}
	return nil
}

func (v *wcaVolume) Release() {
	if v.aev != nil {
		v.aev.Release()
		v.aev = nil
	}
}
