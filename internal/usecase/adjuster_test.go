package usecase

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volnudge/internal/adapter/secondary/audio"
	"volnudge/internal/domain"
)

func assertNoLeaks(t *testing.T, sim *audio.Simulated) {
	t.Helper()
	sessions, endpoints, volumes := sim.Leaks()
	assert.Zero(t, sessions, "sessions left open")
	assert.Zero(t, endpoints, "endpoints not released")
	assert.Zero(t, volumes, "volume controls not released")
}

func TestAdjust_ClampsToRange(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		delta   float64
		want    float64
	}{
		{"raise", 0.4, 0.1, 0.5},
		{"lower", 0.5, -0.25, 0.25},
		{"clamp at max", 1.0, 0.5, 1.0},
		{"clamp at min", 0.0, -0.5, 0.0},
		{"beyond unit delta", 0.3, 7, 1.0},
		{"beyond negative unit delta", 0.3, -7, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := audio.NewSimulated(tt.current, false)
			NewVolumeAdjuster(sim).Adjust(tt.delta)

			level, muted := sim.State()
			assert.Equal(t, tt.want, level)
			assert.False(t, muted)
			assertNoLeaks(t, sim)
		})
	}
}

func TestAdjust_ZeroDeltaKeepsVolumeAndUnmutes(t *testing.T) {
	sim := audio.NewSimulated(0.62, true)
	NewVolumeAdjuster(sim).Adjust(0)

	level, muted := sim.State()
	assert.Equal(t, 0.62, level)
	assert.False(t, muted)
}

func TestAdjust_UnmutesMutedDevice(t *testing.T) {
	sim := audio.NewSimulated(0.4, true)
	NewVolumeAdjuster(sim).Adjust(0.1)

	level, muted := sim.State()
	assert.Equal(t, 0.5, level)
	assert.False(t, muted)
}

func TestAdjust_UnmutesEvenWhenLowering(t *testing.T) {
	sim := audio.NewSimulated(0.1, true)
	NewVolumeAdjuster(sim).Adjust(-1)

	level, muted := sim.State()
	assert.Equal(t, 0.0, level)
	assert.False(t, muted)
}

func TestAdjust_RepeatedCallsCompose(t *testing.T) {
	sim := audio.NewSimulated(0.5, false)
	adj := NewVolumeAdjuster(sim)

	adj.Adjust(0.3)
	level, _ := sim.State()
	assert.InDelta(t, 0.8, level, 1e-12)

	adj.Adjust(0.3)
	level, _ = sim.State()
	assert.Equal(t, 1.0, level)

	adj.Adjust(0.3)
	level, _ = sim.State()
	assert.Equal(t, 1.0, level)

	assert.Equal(t, 3, sim.Sessions(), "each call opens its own session")
	assertNoLeaks(t, sim)
}

func TestAdjust_FollowsExternalChanges(t *testing.T) {
	sim := audio.NewSimulated(0.5, false)
	adj := NewVolumeAdjuster(sim)

	adj.Adjust(0.1)
	sim.SetState(0.2, true)
	adj.Adjust(0.1)

	level, muted := sim.State()
	assert.InDelta(t, 0.3, level, 1e-12)
	assert.False(t, muted)
}

func TestAdjust_FailuresLeaveDeviceUntouched(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name   string
		inject func(*audio.Simulated)
		kind   error
	}{
		{"session", func(s *audio.Simulated) { s.FailOpen = boom }, domain.ErrDeviceEnumeration},
		{"no default device", func(s *audio.Simulated) { s.SetAbsent(true) }, domain.ErrDeviceEnumeration},
		{"resolve", func(s *audio.Simulated) { s.FailResolve = boom }, domain.ErrDeviceEnumeration},
		{"activate", func(s *audio.Simulated) { s.FailActivate = boom }, domain.ErrActivation},
		{"read", func(s *audio.Simulated) { s.FailRead = boom }, domain.ErrVolumeRead},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := audio.NewSimulated(0.4, true)
			tt.inject(sim)
			adj := NewVolumeAdjuster(sim)

			assert.NotPanics(t, func() { adj.Adjust(0.3) })
			err := adj.TryAdjust(0.3)
			assert.ErrorIs(t, err, tt.kind)

			level, muted := sim.State()
			assert.Equal(t, 0.4, level)
			assert.True(t, muted)
			assert.Zero(t, sim.Writes())
			assertNoLeaks(t, sim)
		})
	}
}

func TestAdjust_UnsupportedPlatformIsEnumerationFailure(t *testing.T) {
	sim := audio.NewSimulated(0.4, false)
	sim.FailOpen = domain.ErrUnsupportedPlatform

	err := NewVolumeAdjuster(sim).TryAdjust(0.1)
	assert.ErrorIs(t, err, domain.ErrDeviceEnumeration)
	assert.ErrorIs(t, err, domain.ErrUnsupportedPlatform)
}

func TestTryAdjust_MuteFailureAbortsCommit(t *testing.T) {
	sim := audio.NewSimulated(0.4, true)
	sim.FailMute = errors.New("device gone")

	err := NewVolumeAdjuster(sim).TryAdjust(0.2)
	assert.ErrorIs(t, err, domain.ErrCommit)

	level, muted := sim.State()
	assert.Equal(t, 0.4, level)
	assert.True(t, muted)
	assertNoLeaks(t, sim)
}

func TestTryAdjust_CommitFailure(t *testing.T) {
	sim := audio.NewSimulated(0.4, true)
	sim.FailCommit = errors.New("device gone")

	err := NewVolumeAdjuster(sim).TryAdjust(0.2)
	assert.ErrorIs(t, err, domain.ErrCommit)

	level, muted := sim.State()
	assert.Equal(t, 0.4, level)
	assert.False(t, muted, "mute was cleared before the write failed")
	assertNoLeaks(t, sim)
}

func TestTryAdjust_RejectsNaN(t *testing.T) {
	sim := audio.NewSimulated(0.4, true)

	err := NewVolumeAdjuster(sim).TryAdjust(math.NaN())
	assert.ErrorIs(t, err, domain.ErrInvalidDelta)
	assert.Zero(t, sim.Sessions())
}

func TestTryAdjust_InfinityClamps(t *testing.T) {
	sim := audio.NewSimulated(0.4, false)
	adj := NewVolumeAdjuster(sim)

	require.NoError(t, adj.TryAdjust(math.Inf(1)))
	level, _ := sim.State()
	assert.Equal(t, 1.0, level)

	require.NoError(t, adj.TryAdjust(math.Inf(-1)))
	level, _ = sim.State()
	assert.Equal(t, 0.0, level)
}

func TestTryAdjust_CommitsWhenAlreadyUnmuted(t *testing.T) {
	sim := audio.NewSimulated(0.4, false)
	sim.ReportUnchanged = true

	require.NoError(t, NewVolumeAdjuster(sim).TryAdjust(0.1))

	level, muted := sim.State()
	assert.Equal(t, 0.5, level)
	assert.False(t, muted)
	assert.Equal(t, 2, sim.Writes())
	assertNoLeaks(t, sim)
}

func TestTryAdjust_ZeroDeltaOnUnmutedDevice(t *testing.T) {
	sim := audio.NewSimulated(0.4, false)
	sim.ReportUnchanged = true

	require.NoError(t, NewVolumeAdjuster(sim).TryAdjust(0))

	level, muted := sim.State()
	assert.Equal(t, 0.4, level)
	assert.False(t, muted)
}
