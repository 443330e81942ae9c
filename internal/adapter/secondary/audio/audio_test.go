package audio

import (
	"errors"
	"fmt"
	"testing"

	ole "github.com/go-ole/go-ole"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volnudge/internal/domain"
)

func TestPercentConversion(t *testing.T) {
	assert.Equal(t, 0, toPercent(0))
	assert.Equal(t, 100, toPercent(1))
	assert.Equal(t, 50, toPercent(0.5))
	assert.Equal(t, 34, toPercent(0.335))
	assert.Equal(t, 0, toPercent(-0.2))
	assert.Equal(t, 100, toPercent(1.7))
	assert.Equal(t, 0.42, fromPercent(42))
}

func TestNewSystem(t *testing.T) {
	assert.NotNil(t, NewSystem())
}

func TestSimulated_RoundTrip(t *testing.T) {
	sim := NewSimulated(0.3, true)

	sess, err := sim.Open()
	require.NoError(t, err)
	ep, err := sess.DefaultRenderEndpoint()
	require.NoError(t, err)
	assert.NotEmpty(t, ep.ID())
	vol, err := ep.ActivateVolume()
	require.NoError(t, err)

	level, err := vol.MasterScalar()
	require.NoError(t, err)
	assert.Equal(t, 0.3, level)

	require.NoError(t, vol.SetMute(false))
	require.NoError(t, vol.SetMasterScalar(0.6))

	s, e, v := sim.Leaks()
	assert.Equal(t, [3]int{1, 1, 1}, [3]int{s, e, v})

	vol.Release()
	vol.Release()
	ep.Release()
	sess.Close()

	s, e, v = sim.Leaks()
	assert.Equal(t, [3]int{0, 0, 0}, [3]int{s, e, v})

	level, muted := sim.State()
	assert.Equal(t, 0.6, level)
	assert.False(t, muted)
	assert.Equal(t, 2, sim.Writes())
}

func TestSimulated_Failures(t *testing.T) {
	sim := NewSimulated(0.5, false)
	boom := errors.New("boom")

	sim.FailOpen = boom
	_, err := sim.Open()
	assert.ErrorIs(t, err, boom)
	sim.FailOpen = nil

	sim.SetAbsent(true)
	sess, err := sim.Open()
	require.NoError(t, err)
	_, err = sess.DefaultRenderEndpoint()
	assert.ErrorIs(t, err, domain.ErrDeviceEnumeration)
	sess.Close()

	assert.Equal(t, 1, sim.Sessions())
}

func TestSucceeded(t *testing.T) {
	assert.NoError(t, succeeded(nil))
	assert.NoError(t, succeeded(ole.NewError(sFalse)))
	assert.NoError(t, succeeded(fmt.Errorf("set mute: %w", ole.NewError(sFalse))))

	failure := ole.NewError(0x80004005)
	assert.Equal(t, failure, succeeded(failure))

	plain := errors.New("device gone")
	assert.Equal(t, plain, succeeded(plain))
}

func TestSimulated_ReportUnchanged(t *testing.T) {
	sim := NewSimulated(0.4, false)
	sim.ReportUnchanged = true

	sess, err := sim.Open()
	require.NoError(t, err)
	defer sess.Close()
	ep, err := sess.DefaultRenderEndpoint()
	require.NoError(t, err)
	defer ep.Release()
	vol, err := ep.ActivateVolume()
	require.NoError(t, err)
	defer vol.Release()

	assert.NoError(t, vol.SetMute(false))
	assert.NoError(t, vol.SetMasterScalar(0.4))
	assert.NoError(t, vol.SetMasterScalar(0.7))

	level, muted := sim.State()
	assert.Equal(t, 0.7, level)
	assert.False(t, muted)
}
