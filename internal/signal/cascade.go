package signal

import "errors"

// ErrUninitialized is returned when a cascade is used before its
// filter stages have been built with Init.
var ErrUninitialized = errors.New("filter cascade not initialized")

const cascadeStages = 3

// FilterCascade chains three independently-seeded scalar Kalman
// filters in series for heavier smoothing at the cost of added lag.
// The zero value is not usable; call Init (or NewFilterCascade) first.
type FilterCascade struct {
	stages [cascadeStages]*ScalarKalmanFilter
}

// NewFilterCascade returns an initialized cascade.
func NewFilterCascade(processVariance, measurementVariance float64) *FilterCascade {
	c := &FilterCascade{}
	c.Init(processVariance, measurementVariance)
	return c
}

// Init (re)builds the three filter stages, each seeded with estimate
// and covariance 1. Re-initializing resets cascade state only; callers
// that share gravity or detector state are not affected.
func (c *FilterCascade) Init(processVariance, measurementVariance float64) {
	for i := range c.stages {
		c.stages[i] = NewScalarKalmanFilter(1, 1, processVariance, measurementVariance)
	}
}

// Filter feeds the measurement through the three stages in series and
// returns the final estimate.
func (c *FilterCascade) Filter(measurement float64) (float64, error) {
	v := measurement
	for _, s := range c.stages {
		if s == nil {
			return 0, ErrUninitialized
		}
		v = s.Correct(v)
	}
	return v, nil
}
