// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package signal

// Default variances for the step-signal cascade. A single low-variance
// stage under-smooths accelerometer spikes; three in series give the
// smoothing the detector needs.
const (
	DefaultProcessVariance     = 0.01
	DefaultMeasurementVariance = 0.0025
)

// ScalarKalmanFilter is a one-dimensional recursive estimator with
// fixed process-noise and measurement-noise variances. Each Correct
// call mutates the estimate and covariance, so call order matters.
type ScalarKalmanFilter struct {
	q float64 // process-noise variance
	r float64 // measurement-noise variance
	p float64 // error covariance
	x float64 // current estimate
}

// NewScalarKalmanFilter creates a filter seeded with the given initial
// estimate and covariance. State is meant to converge once and track
// drift for the lifetime of the pipeline; there is no reset.
func NewScalarKalmanFilter(initialEstimate, initialCovariance, processVariance, measurementVariance float64) *ScalarKalmanFilter {
	return &ScalarKalmanFilter{
		q: processVariance,
		r: measurementVariance,
		p: initialCovariance,
		x: initialEstimate,
	}
}

// Correct runs one predict+correct step on the measurement and returns
// the updated estimate.
func (f *ScalarKalmanFilter) Correct(measurement float64) float64 {
	f.p += f.q
	k := f.p / (f.p + f.r)
	f.x += k * (measurement - f.x)
	f.p *= 1 - k
	return f.x
}

// Estimate returns the current estimate without advancing the filter.
func (f *ScalarKalmanFilter) Estimate() float64 {
	return f.x
}
