package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/stride_computer/internal/accel"
)

func restSample() accel.Sample {
	return accel.Sample{Timestamp: accel.MonotonicNanos(), X: 0, Y: 0, Z: 9.80665}
}

func TestNew_RequiresChannels(t *testing.T) {
	_, err := New(Options{Channels: 0})
	require.Error(t, err)
}

func TestProcess_RejectsDegenerateSamples(t *testing.T) {
	p, err := New(Options{Channels: 2})
	require.NoError(t, err)

	cases := []struct {
		name string
		s    accel.Sample
	}{
		{"NaN component", accel.Sample{X: math.NaN(), Y: 0, Z: 9.8}},
		{"positive Inf", accel.Sample{X: 0, Y: math.Inf(1), Z: 9.8}},
		{"negative Inf", accel.Sample{X: 0, Y: 0, Z: math.Inf(-1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Process(tc.s)
			require.ErrorIs(t, err, ErrDegenerateSample)
			// Rejection must leave filter state untouched.
			assert.Equal(t, accel.Vector3{}, p.GravityEstimate())
		})
	}
}

func TestProcess_ProducesOneValuePerChannel(t *testing.T) {
	p, err := New(Options{Channels: 3})
	require.NoError(t, err)

	res, err := p.Process(restSample())
	require.NoError(t, err)
	require.Len(t, res.Values, 3)
	for i, v := range res.Values {
		assert.False(t, math.IsNaN(v), "channel %d", i)
	}
	assert.False(t, res.Step, "resting sample must not register a step")
}

func TestValue_BoundsChecked(t *testing.T) {
	p, err := New(Options{Channels: 2})
	require.NoError(t, err)

	_, err = p.Process(restSample())
	require.NoError(t, err)

	_, err = p.Value(2)
	require.ErrorIs(t, err, ErrChannelRange)
	_, err = p.Value(-1)
	require.ErrorIs(t, err, ErrChannelRange)

	v, err := p.Value(0)
	require.NoError(t, err)
	assert.Greater(t, v, 0.0)
}

func TestProcess_DetectsStepOnSpike(t *testing.T) {
	p, err := New(Options{Channels: 1})
	require.NoError(t, err)

	// Let the gravity estimate and filters settle on a resting sensor.
	for i := 0; i < 200; i++ {
		res, err := p.Process(restSample())
		require.NoError(t, err)
		require.False(t, res.Step, "no step while at rest (sample %d)", i)
	}

	// Tune the detector down and deliver one hard impact.
	p.Detector().OnThresholdChange(0.5)
	res, err := p.Process(accel.Sample{Timestamp: accel.MonotonicNanos(), X: 30, Y: 30, Z: 30})
	require.NoError(t, err)
	assert.True(t, res.Step)
}

func TestInitFilters_LeavesGravityAndDetectorAlone(t *testing.T) {
	p, err := New(Options{Channels: 1})
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		_, err := p.Process(restSample())
		require.NoError(t, err)
	}
	gravityBefore := p.GravityEstimate()
	p.Detector().OnThresholdChange(3.3)

	p.InitFilters(0.01, 0.0025)

	assert.Equal(t, gravityBefore, p.GravityEstimate())
	assert.Equal(t, 3.3, p.Detector().ThresholdValue())
}
