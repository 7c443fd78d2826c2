package steps

// Event is one detected step, suitable for JSON and MQTT.
type Event struct {
	TimeMillis int64 `json:"t"`     // wall-clock milliseconds
	Count      int64 `json:"count"` // running step count since process start
}

// ThresholdUpdate is the wire form of a threshold change pushed by an
// external tuner.
type ThresholdUpdate struct {
	Value float64 `json:"value"`
}
