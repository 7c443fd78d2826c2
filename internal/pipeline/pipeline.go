// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package pipeline

import (
	"errors"
	"fmt"

	"github.com/relabs-tech/stride_computer/internal/accel"
	"github.com/relabs-tech/stride_computer/internal/signal"
	"github.com/relabs-tech/stride_computer/internal/steps"
)

var (
	// ErrChannelRange is returned for a channel id outside the
	// configured table.
	ErrChannelRange = errors.New("channel index out of range")

	// ErrDegenerateSample is returned when a sample carries NaN or Inf.
	// Such a value would poison the recursive filter state forever, so
	// the sample is rejected and no state is touched.
	ErrDegenerateSample = errors.New("sample contains NaN or Inf")
)

// Options configures a Pipeline. Zero fields fall back to the signal
// and detector defaults.
type Options struct {
	Channels            int // signal channels; channel 0 drives detection
	GravityAlpha        float64
	EMAAlpha            float64
	ProcessVariance     float64
	MeasurementVariance float64
	Threshold           float64
	Refractory          int
}

// Result is the outcome of processing one sample.
type Result struct {
	TimeMillis int64     `json:"t"`      // wall-clock milliseconds
	Values     []float64 `json:"values"` // one smoothed scalar per channel
	Step       bool      `json:"step"`
}

// channelSlot owns everything one signal channel tracks: its reduction
// strategy, its Kalman cascade, and its EMA state. Slots are
// independent; there is no cross-slot interaction.
type channelSlot struct {
	reducer signal.Reducer
	cascade *signal.FilterCascade
	ema     *signal.EMA
}

// Pipeline is one explicitly-owned processing instance: raw sample →
// gravity update → per-channel reduce → Kalman cascade → EMA → step
// detection. Construct it once, hand it to whoever needs it; there is
// no global lookup.
//
// Process must be driven from a single goroutine, one sample at a
// time. Only the detector threshold may be touched concurrently.
type Pipeline struct {
	gravity  *signal.GravityIsolator
	channels []channelSlot
	detector *steps.Detector
	last     []float64
}

// New builds a pipeline. Channel 0 uses the linear-magnitude strategy
// (the primary step signal); further channels use the gravity-ratio
// strategy as diagnostic signals.
func New(opts Options) (*Pipeline, error) {
	if opts.Channels < 1 {
		return nil, fmt.Errorf("pipeline needs at least one channel, got %d", opts.Channels)
	}
	if opts.GravityAlpha == 0 {
		opts.GravityAlpha = signal.DefaultGravityAlpha
	}
	if opts.EMAAlpha == 0 {
		opts.EMAAlpha = signal.DefaultEMAAlpha
	}
	if opts.ProcessVariance == 0 {
		opts.ProcessVariance = signal.DefaultProcessVariance
	}
	if opts.MeasurementVariance == 0 {
		opts.MeasurementVariance = signal.DefaultMeasurementVariance
	}
	if opts.Threshold == 0 {
		opts.Threshold = steps.DefaultThreshold
	}
	if opts.Refractory == 0 {
		opts.Refractory = steps.DefaultRefractory
	}

	p := &Pipeline{
		gravity:  signal.NewGravityIsolator(opts.GravityAlpha),
		channels: make([]channelSlot, opts.Channels),
		detector: steps.NewDetector(opts.Threshold, opts.Refractory),
		last:     make([]float64, opts.Channels),
	}
	for i := range p.channels {
		var r signal.Reducer
		if i == 0 {
			r = signal.LinearMagnitude{Gravity: p.gravity}
		} else {
			r = signal.GravityRatio{}
		}
		p.channels[i] = channelSlot{
			reducer: r,
			cascade: signal.NewFilterCascade(opts.ProcessVariance, opts.MeasurementVariance),
			ema:     signal.NewEMA(opts.EMAAlpha),
		}
	}
	return p, nil
}

// Process runs one sample through the full chain and returns the
// smoothed value of every channel plus the step decision for channel 0.
func (p *Pipeline) Process(s accel.Sample) (Result, error) {
	if !s.Vector().Finite() {
		return Result{}, ErrDegenerateSample
	}

	p.gravity.Update(s.Vector())

	values := make([]float64, len(p.channels))
	for i, ch := range p.channels {
		v := ch.reducer.Reduce(s.Vector())
		v, err := ch.cascade.Filter(v)
		if err != nil {
			return Result{}, fmt.Errorf("channel %d: %w", i, err)
		}
		values[i] = ch.ema.Smooth(v)
	}
	copy(p.last, values)

	return Result{
		TimeMillis: accel.EventTimeMillis(s.Timestamp),
		Values:     values,
		Step:       p.detector.Detect(values[0]),
	}, nil
}

// Value returns the most recent smoothed value of one channel.
func (p *Pipeline) Value(channel int) (float64, error) {
	if channel < 0 || channel >= len(p.channels) {
		return 0, fmt.Errorf("%w: %d (have %d)", ErrChannelRange, channel, len(p.channels))
	}
	return p.last[channel], nil
}

// InitFilters rebuilds every channel's Kalman cascade. Gravity and
// detector state are deliberately untouched.
func (p *Pipeline) InitFilters(processVariance, measurementVariance float64) {
	for i := range p.channels {
		p.channels[i].cascade.Init(processVariance, measurementVariance)
	}
}

// Detector exposes the step detector so callers can wire threshold
// updates and read the current value.
func (p *Pipeline) Detector() *steps.Detector {
	return p.detector
}

// GravityEstimate returns the current gravity estimate, mainly for
// diagnostics.
func (p *Pipeline) GravityEstimate() accel.Vector3 {
	return p.gravity.Estimate()
}
