// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package steps

import "sync"

// Detector defaults.
//
// Refractory length: with ~20 ms delivery (f = 50 Hz) and a 240 bpm
// step-rate ceiling, the minimum step spacing is 250 ms, so
// n = 250 / 20 ≈ 12 inactive periods.
const (
	DefaultThreshold  = 12.72
	DefaultRefractory = 12
)

// ThresholdListener is the one-way seam an external tuner (UI slider,
// MQTT topic) pushes new threshold values through. Last write wins; no
// queue, no history.
type ThresholdListener interface {
	OnThresholdChange(value float64)
}

// Detector is a threshold-crossing state machine with a refractory
// period to debounce noisy crossings. It is armed exactly when it is
// eligible to signal a new step: it disarms on firing and re-arms only
// when the inactive counter reaches the refractory length — a value
// dropping back below threshold does not re-arm by itself.
//
// Detect must be called from the single sample-processing goroutine.
// The threshold alone may be written concurrently from other
// goroutines, so it sits behind its own lock.
type Detector struct {
	mu        sync.RWMutex
	threshold float64

	refractory int
	inactive   int  // consecutive non-triggering samples
	armed      bool // eligible to fire
}

// NewDetector creates an armed detector. refractory is the number of
// samples after a step during which no new step can fire.
func NewDetector(threshold float64, refractory int) *Detector {
	return &Detector{
		threshold:  threshold,
		refractory: refractory,
		armed:      true,
	}
}

// Detect evaluates one smoothed scalar value and reports whether a new
// step fired.
//
// The re-arm check runs before the fire check, so a sample arriving
// exactly when the counter reaches the refractory length can both
// re-arm and fire in the same call. Reordering the checks changes
// step counting.
func (d *Detector) Detect(v float64) bool {
	if d.inactive == d.refractory {
		d.inactive = 0
		if !d.armed {
			d.armed = true
		}
	}
	if v > d.ThresholdValue() && d.armed {
		d.inactive = 0
		d.armed = false
		return true
	}
	d.inactive++
	return false
}

// OnThresholdChange overwrites the threshold. Takes effect on the very
// next evaluated sample; counters and armed state are untouched.
func (d *Detector) OnThresholdChange(value float64) {
	d.mu.Lock()
	d.threshold = value
	d.mu.Unlock()
}

// ThresholdValue returns the current threshold.
func (d *Detector) ThresholdValue() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.threshold
}
