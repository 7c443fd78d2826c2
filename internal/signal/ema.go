package signal

// DefaultEMAAlpha weights the newest sample in the moving average.
const DefaultEMAAlpha = 0.1

// EMA is an exponential moving average over one scalar channel:
// out = alpha*value + (1-alpha)*previous. Previous starts at 0.
type EMA struct {
	alpha float64
	prev  float64
}

// NewEMA creates an average with the given smoothing factor.
func NewEMA(alpha float64) *EMA {
	return &EMA{alpha: alpha}
}

// Smooth folds one value into the average and returns the new output.
func (e *EMA) Smooth(value float64) float64 {
	out := e.alpha*value + (1-e.alpha)*e.prev
	e.prev = out
	return out
}
