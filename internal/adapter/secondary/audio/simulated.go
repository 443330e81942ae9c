package audio

import (
	"sync"

	ole "github.com/go-ole/go-ole"

	"volnudge/internal/domain"
)

// Simulated implements domain.AudioSystem with an in-memory default endpoint.
// Failures can be injected per step, and every handle it hands out is counted
// so callers can check that nothing leaks.
type Simulated struct {
	mu sync.Mutex

	id     string
	level  float64
	muted  bool
	absent bool

	FailOpen     error
	FailResolve  error
	FailActivate error
	FailRead     error
	FailMute     error
	FailCommit   error

	// ReportUnchanged makes no-op writes answer S_FALSE, as Core Audio does.
	ReportUnchanged bool

	opened, closed     int
	resolved, released int
	activated, dropped int
	writes             int
}

// NewSimulated creates a simulated device at the given level and mute state.
func NewSimulated(level float64, muted bool) *Simulated {
	return &Simulated{id: "{0.0.0.00000000}.{simulated}", level: level, muted: muted}
}

// State returns the device's scalar volume and mute flag.
func (s *Simulated) State() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level, s.muted
}

// SetState changes the device as another process would.
func (s *Simulated) SetState(level float64, muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level, s.muted = level, muted
}

// SetAbsent removes (or restores) the default endpoint.
func (s *Simulated) SetAbsent(absent bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.absent = absent
}

// Writes returns how many mute or volume writes reached the device.
func (s *Simulated) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Leaks reports sessions and handles that were opened but never released.
func (s *Simulated) Leaks() (sessions, endpoints, volumes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened - s.closed, s.resolved - s.released, s.activated - s.dropped
}

// Sessions returns how many sessions were opened.
func (s *Simulated) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened
}

// Open implements domain.AudioSystem.
func (s *Simulated) Open() (domain.AudioSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailOpen != nil {
		return nil, s.FailOpen
	}
	s.opened++
	return &simSession{sys: s}, nil
}

type simSession struct {
	sys    *Simulated
	closed bool
}

func (ss *simSession) DefaultRenderEndpoint() (domain.Endpoint, error) {
	s := ss.sys
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailResolve != nil {
		return nil, s.FailResolve
	}
	if s.absent {
		return nil, domain.ErrDeviceEnumeration
	}
	s.resolved++
	return &simEndpoint{sys: s}, nil
}

func (ss *simSession) Close() {
	if ss.closed {
		return
	}
	ss.closed = true
	ss.sys.mu.Lock()
	ss.sys.closed++
	ss.sys.mu.Unlock()
}

type simEndpoint struct {
	sys      *Simulated
	released bool
}

func (e *simEndpoint) ID() string {
	return e.sys.id
}

func (e *simEndpoint) ActivateVolume() (domain.EndpointVolume, error) {
	s := e.sys
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailActivate != nil {
		return nil, s.FailActivate
	}
	s.activated++
	return &simVolume{sys: s}, nil
}

func (e *simEndpoint) Release() {
	if e.released {
		return
	}
	e.released = true
	e.sys.mu.Lock()
	e.sys.released++
	e.sys.mu.Unlock()
}

type simVolume struct {
	sys      *Simulated
	released bool
}

func (v *simVolume) MasterScalar() (float64, error) {
	s := v.sys
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailRead != nil {
		return 0, s.FailRead
	}
	return s.level, nil
}

func (v *simVolume) SetMute(muted bool) error {
	s := v.sys
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailMute != nil {
		return s.FailMute
	}
	s.writes++
	if s.ReportUnchanged && s.muted == muted {
		return succeeded(ole.NewError(sFalse))
	}
	s.muted = muted
	return nil
}

func (v *simVolume) SetMasterScalar(level float64) error {
	s := v.sys
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCommit != nil {
		return s.FailCommit
	}
	s.writes++
	if s.ReportUnchanged && s.level == level {
		return succeeded(ole.NewError(sFalse))
	}
	s.level = level
	return nil
}

func (v *simVolume) Release() {
	if v.released {
		return
	}
	v.released = true
	v.sys.mu.Lock()
	v.sys.dropped++
	v.sys.mu.Unlock()
}
