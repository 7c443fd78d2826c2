package app

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/stride_computer/internal/accel"
	"github.com/relabs-tech/stride_computer/internal/config"
)

// RunSerialProducer reads acceleration frames from a UART-attached
// sensor board and publishes them as JSON to the accel topic. The
// board emits one "x,y,z" line per sample (m/s², decimal); malformed
// lines are skipped.
func RunSerialProducer() error {
	cfg := config.Get()

	if cfg.SerialPort == "" {
		return fmt.Errorf("SERIAL_PORT is required for the serial producer")
	}

	// ---- 1) Connect to MQTT broker ----
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("serial producer connected to MQTT broker at %s", cfg.MQTTBroker)

	// ---- 2) Open sensor serial port ----
	serialOpts := serial.OpenOptions{
		PortName:              cfg.SerialPort,
		BaudRate:              uint(cfg.SerialBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return err
	}
	defer port.Close()
	log.Printf("sensor serial port opened on %s at %d baud", serialOpts.PortName, serialOpts.BaudRate)

	reader := bufio.NewReader(port)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			log.Printf("serial read error: %v", err)
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		sample, ok := parseAccelLine(line)
		if !ok {
			// noisy boot output or partial frames; skip quietly
			continue
		}

		payload, err := json.Marshal(sample)
		if err != nil {
			log.Printf("serial sample marshal error: %v", err)
			continue
		}

		if token := client.Publish(cfg.TopicAccelRaw, 0, false, payload); token.Wait() && token.Error() != nil {
			log.Printf("serial sample publish error: %v", token.Error())
			continue
		}
	}
}

// parseAccelLine parses one "x,y,z" frame. Samples are stamped on
// arrival; the board's own clock is not trusted.
func parseAccelLine(line string) (accel.Sample, bool) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return accel.Sample{}, false
	}

	var vals [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return accel.Sample{}, false
		}
		vals[i] = v
	}

	return accel.Sample{
		Timestamp: accel.MonotonicNanos(),
		X:         vals[0],
		Y:         vals[1],
		Z:         vals[2],
	}, true
}
