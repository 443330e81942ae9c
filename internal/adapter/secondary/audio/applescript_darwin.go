//go:build darwin

package audio

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"volnudge/internal/domain"
)

// AppleScriptSystem implements domain.AudioSystem using macOS osascript.
// This is a secondary adapter.
type AppleScriptSystem struct {
	run func(script string) (string, error)
}

// NewAppleScriptSystem creates a new AppleScript audio system.
func NewAppleScriptSystem() domain.AudioSystem {
	return &AppleScriptSystem{run: runOsascript}
}

func newPlatformSystem() domain.AudioSystem {
	return NewAppleScriptSystem()
}

func runOsascript(script string) (string, error) {
	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("osascript failed: %w, output: %s", err, string(output))
	}
	return strings.TrimSpace(string(output)), nil
}

// Open needs no platform session on macOS.
func (a *AppleScriptSystem) Open() (domain.AudioSession, error) {
	return &appleScriptSession{run: a.run}, nil
}

type appleScriptSession struct {
	run func(string) (string, error)
}

// DefaultRenderEndpoint checks the current output device through its mute state.
func (s *appleScriptSession) DefaultRenderEndpoint() (domain.Endpoint, error) {
	out, err := s.run("output muted of (get volume settings)")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDeviceEnumeration, err)
	}
	if out == "missing value" {
		return nil, fmt.Errorf("%w: output device has no mute control", domain.ErrDeviceEnumeration)
	}
	return &appleScriptEndpoint{run: s.run}, nil
}

func (s *appleScriptSession) Close() {}

type appleScriptEndpoint struct {
	run func(string) (string, error)
}

func (e *appleScriptEndpoint) ID() string {
	return "default-output"
}

func (e *appleScriptEndpoint) ActivateVolume() (domain.EndpointVolume, error) {
	return &appleScriptVolume{run: e.run}, nil
}

func (e *appleScriptEndpoint) Release() {}

type appleScriptVolume struct {
	run func(string) (string, error)
}

func (v *appleScriptVolume) MasterScalar() (float64, error) {
	out, err := v.run("output volume of (get volume settings)")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrVolumeRead, err)
	}
	p, err := strconv.Atoi(out)
	if err != nil {
		return 0, fmt.Errorf("%w: unexpected output %q", domain.ErrVolumeRead, out)
	}
	return fromPercent(p), nil
}

func (v *appleScriptVolume) SetMute(muted bool) error {
	script := "set volume without output muted"
	if muted {
		script = "set volume with output muted"
	}
	if _, err := v.run(script); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCommit, err)
	}
	return nil
}

func (v *appleScriptVolume) SetMasterScalar(level float64) error {
	if _, err := v.run(fmt.Sprintf("set volume output volume %d", toPercent(level))); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCommit, err)
	}
	return nil
}

func (v *appleScriptVolume) Release() {}
