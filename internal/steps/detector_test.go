package steps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feed(t *testing.T, d *Detector, values []float64) (fired []int) {
	t.Helper()
	for i, v := range values {
		if d.Detect(v) {
			fired = append(fired, i)
		}
	}
	return fired
}

func TestDetector_SingleSpikeFiresOnce(t *testing.T) {
	d := NewDetector(10, DefaultRefractory)

	// 20 quiet samples, one spike, quiet again.
	seq := make([]float64, 0, 41)
	for i := 0; i < 20; i++ {
		seq = append(seq, 0)
	}
	seq = append(seq, 15)
	for i := 0; i < 20; i++ {
		seq = append(seq, 0)
	}

	fired := feed(t, d, seq)
	assert.Equal(t, []int{20}, fired, "exactly the spike sample fires")
}

func TestDetector_RefractoryWindowSuppressesFiring(t *testing.T) {
	d := NewDetector(10, DefaultRefractory)

	require.True(t, d.Detect(15), "armed detector fires on first crossing")

	// Values stay above threshold: the next 12 samples are inside the
	// refractory window and must not fire.
	for i := 0; i < DefaultRefractory; i++ {
		require.False(t, d.Detect(20), "sample %d after firing", i+1)
	}

	// 13th sample: the counter hits the refractory length, which
	// re-arms and fires in the same call.
	assert.True(t, d.Detect(20))
}

func TestDetector_ReArmAfterExactlyRefractorySamples(t *testing.T) {
	d := NewDetector(10, DefaultRefractory)

	require.True(t, d.Detect(15))

	// Exactly 12 sub-threshold samples: none fire.
	for i := 0; i < DefaultRefractory; i++ {
		require.False(t, d.Detect(0), "sample %d after firing", i+1)
	}

	// A quiet sample consumes the re-arm without producing an event…
	require.False(t, d.Detect(0))
	// …and the next crossing fires.
	assert.True(t, d.Detect(15))
}

func TestDetector_ReArmAndFireSameSample(t *testing.T) {
	// Pins the evaluation order: the re-arm check runs before the fire
	// check, so the sample arriving when the counter reaches the
	// refractory length can do both at once.
	d := NewDetector(10, DefaultRefractory)

	require.True(t, d.Detect(15))
	for i := 0; i < DefaultRefractory; i++ {
		require.False(t, d.Detect(0))
	}
	assert.True(t, d.Detect(15), "re-arms and fires in one call")
}

func TestDetector_BelowThresholdNeverReArms(t *testing.T) {
	d := NewDetector(10, 1000) // long refractory so the counter never gets there

	require.True(t, d.Detect(15))

	// Dropping below threshold does not re-arm by itself.
	for i := 0; i < 500; i++ {
		require.False(t, d.Detect(0))
	}
	assert.False(t, d.Detect(15), "still disarmed inside the refractory window")
}

func TestDetector_ThresholdChangeAppliesImmediately(t *testing.T) {
	d := NewDetector(DefaultThreshold, DefaultRefractory)

	// 6.0 is below the default threshold of 12.72…
	require.False(t, d.Detect(6.0))

	// …but a pushed threshold applies on the very next sample.
	d.OnThresholdChange(5.0)
	assert.Equal(t, 5.0, d.ThresholdValue())
	assert.True(t, d.Detect(6.0))
}

func TestDetector_ThresholdChangeKeepsCounters(t *testing.T) {
	d := NewDetector(10, DefaultRefractory)

	require.True(t, d.Detect(15))
	require.False(t, d.Detect(0))

	// A threshold change mid-refractory must not reset the window.
	d.OnThresholdChange(1)
	for i := 0; i < DefaultRefractory-1; i++ {
		require.False(t, d.Detect(2), "still refractory at sample %d", i+2)
	}
	assert.True(t, d.Detect(2), "fires once the original window has elapsed")
}
