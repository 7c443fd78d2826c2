package signal

import "github.com/relabs-tech/stride_computer/internal/accel"

// DefaultGravityAlpha is the low-pass smoothing factor for the gravity
// estimate, chosen for ~20 ms sample delivery.
const DefaultGravityAlpha = 0.9

// GravityIsolator keeps a running low-pass estimate of the constant
// gravitational component of acceleration so it can be subtracted out
// to reveal motion-induced ("linear") acceleration.
//
// Update and Isolate are deliberately separate operations: some signal
// strategies need the estimate refreshed but reduce the raw vector.
type GravityIsolator struct {
	alpha   float64
	gravity accel.Vector3
}

// NewGravityIsolator creates an isolator with a zero initial estimate.
// The estimate is never reset; it lives as long as the pipeline.
func NewGravityIsolator(alpha float64) *GravityIsolator {
	return &GravityIsolator{alpha: alpha}
}

// Update refines the gravity estimate with one sample:
// g = alpha*g + (1-alpha)*s per axis.
func (g *GravityIsolator) Update(s accel.Vector3) {
	g.gravity.X = g.alpha*g.gravity.X + (1-g.alpha)*s.X
	g.gravity.Y = g.alpha*g.gravity.Y + (1-g.alpha)*s.Y
	g.gravity.Z = g.alpha*g.gravity.Z + (1-g.alpha)*s.Z
}

// Isolate returns the sample minus the current gravity estimate.
func (g *GravityIsolator) Isolate(s accel.Vector3) accel.Vector3 {
	return accel.Vector3{
		X: s.X - g.gravity.X,
		Y: s.Y - g.gravity.Y,
		Z: s.Z - g.gravity.Z,
	}
}

// Estimate returns the current gravity estimate.
func (g *GravityIsolator) Estimate() accel.Vector3 {
	return g.gravity
}
