// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/stride_computer/internal/accel"
	"github.com/relabs-tech/stride_computer/internal/config"
	"github.com/relabs-tech/stride_computer/internal/sensors"
)

// RunAccelProducer reads the ADXL345 on a fixed tick and publishes raw
// samples as JSON to the accel topic. With -mock, a synthetic walking
// source replaces the hardware.
func RunAccelProducer(useMock bool) error {
	log.Println("starting stride-computer accel producer (sensor → MQTT)")

	cfg := config.Get()

	var src accel.Source
	if useMock {
		log.Println("using mock walking-motion source")
		src = accel.NewMockSource()
	} else {
		var err error
		src, err = sensors.NewAccelSource()
		if err != nil {
			return err
		}
	}

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)

	log.Println("connected to MQTT, starting publish loop")

	ticker := time.NewTicker(time.Duration(cfg.AccelSampleInterval) * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		sample, err := src.Next()
		if err != nil {
			log.Printf("accel read error: %v", err)
			continue
		}

		payload, err := json.Marshal(sample)
		if err != nil {
			log.Printf("json marshal error (sample): %v", err)
			continue
		}

		if token := client.Publish(cfg.TopicAccelRaw, 0, false, payload); token.Wait() && token.Error() != nil {
			log.Printf("MQTT publish error (accel): %v", token.Error())
			continue
		}
	}
	return nil
}
