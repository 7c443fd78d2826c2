// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package accel

import (
	"math"
	"time"
)

const standardGravity = 9.80665

type mockSource struct {
	start time.Time
}

// NewMockSource creates a mock accelerometer source that generates a
// walking-like waveform: gravity on Z plus a ~2 Hz impact component and
// smaller sway on X/Y. Useful for bring-up without hardware.
func NewMockSource() Source {
	return &mockSource{start: time.Now()}
}

func (m *mockSource) Next() (Sample, error) {
	elapsed := time.Since(m.start).Seconds()

	// Heel strikes at roughly 2 steps per second.
	stride := math.Sin(2 * math.Pi * 2 * elapsed)
	impact := 6 * math.Max(0, stride) * math.Max(0, stride)

	return Sample{
		Timestamp: MonotonicNanos(),
		X:         1.2 * math.Sin(2*math.Pi*1*elapsed),
		Y:         0.8 * math.Cos(2*math.Pi*1.3*elapsed),
		Z:         standardGravity + impact,
	}, nil
}
