package signal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/stride_computer/internal/accel"
)

func TestGravityIsolator_ConvergesMonotonically(t *testing.T) {
	sample := accel.Vector3{X: 1.5, Y: -2.0, Z: 9.6}

	g := NewGravityIsolator(DefaultGravityAlpha)

	prevErr := math.Inf(1)
	for i := 0; i < 100; i++ {
		g.Update(sample)
		est := g.Estimate()
		errNow := math.Abs(est.X-sample.X) + math.Abs(est.Y-sample.Y) + math.Abs(est.Z-sample.Z)
		require.Less(t, errNow, prevErr, "update %d", i)
		prevErr = errNow
	}
	assert.InDelta(t, sample.X, g.Estimate().X, 1e-3)
	assert.InDelta(t, sample.Y, g.Estimate().Y, 1e-3)
	assert.InDelta(t, sample.Z, g.Estimate().Z, 1e-3)
}

func TestGravityIsolator_IsolateStationary(t *testing.T) {
	sample := accel.Vector3{X: 0, Y: 0, Z: 9.80665}

	g := NewGravityIsolator(DefaultGravityAlpha)
	for i := 0; i < 300; i++ {
		g.Update(sample)
	}

	lin := g.Isolate(sample)
	assert.InDelta(t, 0, lin.X, 1e-6)
	assert.InDelta(t, 0, lin.Y, 1e-6)
	assert.InDelta(t, 0, lin.Z, 1e-6)
}

func TestGravityIsolator_UpdateAndIsolateAreSeparate(t *testing.T) {
	g := NewGravityIsolator(DefaultGravityAlpha)

	// Isolate must not refine the estimate.
	before := g.Estimate()
	g.Isolate(accel.Vector3{X: 5, Y: 5, Z: 5})
	assert.Equal(t, before, g.Estimate())
}
