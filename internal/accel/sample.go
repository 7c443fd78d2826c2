package accel

import (
	"math"
	"time"
)

// Vector3 is a tri-axial acceleration vector in m/s².
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Finite reports whether all three components are plain numbers
// (no NaN, no Inf).
func (v Vector3) Finite() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Sample is a single timestamped accelerometer reading. Timestamp is
// nanoseconds on the process monotonic clock (see MonotonicNanos), the
// way the sensor subsystem stamps events.
type Sample struct {
	Timestamp int64   `json:"ts"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
}

// Vector returns the sample's acceleration vector.
func (s Sample) Vector() Vector3 {
	return Vector3{X: s.X, Y: s.Y, Z: s.Z}
}

// Source is anything that can deliver accelerometer samples over time:
// real chip, serial-attached board, mock, replay from file, etc.
type Source interface {
	Next() (Sample, error)
}

var processStart = time.Now()

// MonotonicNanos returns nanoseconds since process start on the
// monotonic clock. Sample producers stamp events with this so that
// EventTimeMillis can convert them back to wall-clock time.
func MonotonicNanos() int64 {
	return time.Since(processStart).Nanoseconds()
}

// EventTimeMillis converts a monotonic event timestamp to a wall-clock
// millisecond value: wallNow + (eventTimestamp - monotonicNow) / 1e6.
// The two clocks are read non-atomically, so the result is a
// best-effort approximation, not an exact instant.
func EventTimeMillis(eventTimestamp int64) int64 {
	return time.Now().UnixMilli() + (eventTimestamp-MonotonicNanos())/1_000_000
}
