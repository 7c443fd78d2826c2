package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker            string
	MQTTClientIDProducer  string
	MQTTClientIDProcessor string
	MQTTClientIDConsole   string
	MQTTClientIDWeb       string
	MQTTClientIDDisplay   string

	// Topics
	TopicAccelRaw  string
	TopicActivity  string
	TopicSteps     string
	TopicThreshold string

	// Accelerometer hardware
	AccelI2CBus  string // "" selects the first available bus
	AccelI2CAddr uint16

	// Serial-attached sensor board
	SerialPort     string
	SerialBaudRate int

	// Pipeline tuning
	PipelineChannels    int
	GravityAlpha        float64
	EMAAlpha            float64
	ProcessVariance     float64
	MeasurementVariance float64

	// Step detector
	DetectorThreshold  float64
	DetectorRefractory int

	// Timing
	AccelSampleInterval int // milliseconds

	// Web Server
	WebServerPort int

	// Display
	DisplayUpdateInterval int // milliseconds
}

// Package-level unexported variables for the process-wide config:
//   - globalConfig is unexported so other packages cannot mutate it directly.
//   - configOnce ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu protects concurrent access: write lock for initialization,
//     read lock for Get() so concurrent readers do not block each other.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// defaults returns a Config pre-seeded with the pipeline's tuning
// constants so a deployment only has to set transport and hardware keys.
func defaults() *Config {
	return &Config{
		AccelI2CAddr:          0x53, // ADXL345 with SDO low
		SerialBaudRate:        115200,
		PipelineChannels:      2,
		GravityAlpha:          0.9,
		EMAAlpha:              0.1,
		ProcessVariance:       0.01,
		MeasurementVariance:   0.0025,
		DetectorThreshold:     12.72,
		DetectorRefractory:    12,
		AccelSampleInterval:   20, // ~50 Hz
		WebServerPort:         8080,
		DisplayUpdateInterval: 250,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_PROCESSOR":
		c.MQTTClientIDProcessor = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_ACCEL_RAW":
		c.TopicAccelRaw = value
	case "TOPIC_ACTIVITY":
		c.TopicActivity = value
	case "TOPIC_STEPS":
		c.TopicSteps = value
	case "TOPIC_THRESHOLD":
		c.TopicThreshold = value

	// Accelerometer hardware
	case "ACCEL_I2C_BUS":
		c.AccelI2CBus = value
	case "ACCEL_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid ACCEL_I2C_ADDR %q: %w", value, err)
		}
		c.AccelI2CAddr = uint16(addr)

	// Serial-attached sensor board
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD_RATE %q: %w", value, err)
		}
		c.SerialBaudRate = rate

	// Pipeline tuning
	case "PIPELINE_CHANNELS":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid PIPELINE_CHANNELS %q: %w", value, err)
		}
		if n < 1 {
			return fmt.Errorf("PIPELINE_CHANNELS must be >= 1, got %d", n)
		}
		c.PipelineChannels = n
	case "GRAVITY_ALPHA":
		a, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid GRAVITY_ALPHA %q: %w", value, err)
		}
		if a <= 0 || a >= 1 {
			return fmt.Errorf("GRAVITY_ALPHA must be in (0,1), got %g", a)
		}
		c.GravityAlpha = a
	case "EMA_ALPHA":
		a, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid EMA_ALPHA %q: %w", value, err)
		}
		if a <= 0 || a >= 1 {
			return fmt.Errorf("EMA_ALPHA must be in (0,1), got %g", a)
		}
		c.EMAAlpha = a
	case "KALMAN_PROCESS_VARIANCE":
		q, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid KALMAN_PROCESS_VARIANCE %q: %w", value, err)
		}
		if q <= 0 {
			return fmt.Errorf("KALMAN_PROCESS_VARIANCE must be > 0, got %g", q)
		}
		c.ProcessVariance = q
	case "KALMAN_MEASUREMENT_VARIANCE":
		r, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid KALMAN_MEASUREMENT_VARIANCE %q: %w", value, err)
		}
		if r <= 0 {
			return fmt.Errorf("KALMAN_MEASUREMENT_VARIANCE must be > 0, got %g", r)
		}
		c.MeasurementVariance = r

	// Step detector
	case "DETECTOR_THRESHOLD":
		t, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid DETECTOR_THRESHOLD %q: %w", value, err)
		}
		c.DetectorThreshold = t
	case "DETECTOR_REFRACTORY":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DETECTOR_REFRACTORY %q: %w", value, err)
		}
		if n < 1 {
			return fmt.Errorf("DETECTOR_REFRACTORY must be >= 1, got %d", n)
		}
		c.DetectorRefractory = n

	// Timing
	case "ACCEL_SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid ACCEL_SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.AccelSampleInterval = interval

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Display
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicAccelRaw == "" {
		return fmt.Errorf("TOPIC_ACCEL_RAW is required")
	}
	if c.TopicActivity == "" {
		return fmt.Errorf("TOPIC_ACTIVITY is required")
	}
	if c.TopicSteps == "" {
		return fmt.Errorf("TOPIC_STEPS is required")
	}
	if c.TopicThreshold == "" {
		return fmt.Errorf("TOPIC_THRESHOLD is required")
	}
	if c.AccelSampleInterval <= 0 {
		return fmt.Errorf("ACCEL_SAMPLE_INTERVAL must be > 0")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
