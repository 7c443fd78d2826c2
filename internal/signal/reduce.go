package signal

import (
	"math"

	"github.com/relabs-tech/stride_computer/internal/accel"
)

// StandardGravity is standard gravitational acceleration in m/s².
const StandardGravity = 9.80665

// Reducer turns one tri-axial sample into one scalar. Strategies are
// interchangeable per signal channel.
type Reducer interface {
	Reduce(v accel.Vector3) float64
}

// LinearMagnitude reduces a sample to the Euclidean norm of its
// gravity-isolated acceleration. Sensitive to both direction and
// gravity removal; this is the primary step-detection signal.
type LinearMagnitude struct {
	Gravity *GravityIsolator
}

func (r LinearMagnitude) Reduce(v accel.Vector3) float64 {
	lin := r.Gravity.Isolate(v)
	return math.Sqrt(lin.X*lin.X + lin.Y*lin.Y + lin.Z*lin.Z)
}

// GravityRatio reduces a sample to its squared magnitude relative to
// squared standard gravity: (x²+y²+z²)/G². Cheaper, not gravity
// compensated; useful as an alternate/diagnostic channel.
type GravityRatio struct{}

func (GravityRatio) Reduce(v accel.Vector3) float64 {
	return (v.X*v.X + v.Y*v.Y + v.Z*v.Z) / (StandardGravity * StandardGravity)
}
