package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `# test config
MQTT_BROKER=tcp://localhost:1883
TOPIC_ACCEL_RAW=stride/accel/raw
TOPIC_ACTIVITY=stride/activity
TOPIC_STEPS=stride/steps
TOPIC_THRESHOLD=stride/threshold
`

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stride_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_DefaultsApplied(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, 12.72, cfg.DetectorThreshold)
	assert.Equal(t, 12, cfg.DetectorRefractory)
	assert.Equal(t, 2, cfg.PipelineChannels)
	assert.Equal(t, 0.9, cfg.GravityAlpha)
	assert.Equal(t, 0.1, cfg.EMAAlpha)
	assert.Equal(t, 0.01, cfg.ProcessVariance)
	assert.Equal(t, 0.0025, cfg.MeasurementVariance)
	assert.Equal(t, 20, cfg.AccelSampleInterval)
	assert.Equal(t, uint16(0x53), cfg.AccelI2CAddr)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, minimalConfig+`
DETECTOR_THRESHOLD=9.5
DETECTOR_REFRACTORY=25
PIPELINE_CHANNELS=3
ACCEL_I2C_ADDR=0x1D
ACCEL_SAMPLE_INTERVAL=10
`))
	require.NoError(t, err)

	assert.Equal(t, 9.5, cfg.DetectorThreshold)
	assert.Equal(t, 25, cfg.DetectorRefractory)
	assert.Equal(t, 3, cfg.PipelineChannels)
	assert.Equal(t, uint16(0x1D), cfg.AccelI2CAddr)
	assert.Equal(t, 10, cfg.AccelSampleInterval)
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name     string
		contents string
		wantErr  string
	}{
		{"missing broker", "TOPIC_ACCEL_RAW=a\nTOPIC_ACTIVITY=b\nTOPIC_STEPS=c\nTOPIC_THRESHOLD=d\n", "MQTT_BROKER is required"},
		{"missing topic", "MQTT_BROKER=tcp://localhost:1883\n", "TOPIC_ACCEL_RAW is required"},
		{"unknown key", minimalConfig + "NO_SUCH_KEY=1\n", "unknown config key"},
		{"malformed line", minimalConfig + "JUSTAKEY\n", "invalid config line"},
		{"bad channel count", minimalConfig + "PIPELINE_CHANNELS=0\n", "PIPELINE_CHANNELS must be >= 1"},
		{"bad alpha", minimalConfig + "EMA_ALPHA=1.5\n", "EMA_ALPHA must be in (0,1)"},
		{"bad variance", minimalConfig + "KALMAN_PROCESS_VARIANCE=-1\n", "KALMAN_PROCESS_VARIANCE must be > 0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeTempConfig(t, tc.contents))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
