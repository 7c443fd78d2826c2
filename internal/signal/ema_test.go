package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEMA_ConvergesToConstant(t *testing.T) {
	const v = 8.0

	e := NewEMA(DefaultEMAAlpha)

	var out float64
	for i := 0; i < 30; i++ {
		out = e.Smooth(v)
	}
	// From a 0 initial state with alpha=0.1, 30 iterations land within
	// 5% of the input (1 - 0.9^30 ≈ 0.958).
	assert.InDelta(t, v, out, 0.05*v)
}

func TestEMA_WeightsNewestByAlpha(t *testing.T) {
	e := NewEMA(DefaultEMAAlpha)
	assert.InDelta(t, 1.0, e.Smooth(10), 1e-12) // 0.1*10 + 0.9*0
	assert.InDelta(t, 1.9, e.Smooth(10), 1e-12) // 0.1*10 + 0.9*1
}
