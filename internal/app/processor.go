// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/stride_computer/internal/accel"
	"github.com/relabs-tech/stride_computer/internal/config"
	"github.com/relabs-tech/stride_computer/internal/pipeline"
	"github.com/relabs-tech/stride_computer/internal/steps"
)

// RunProcessor subscribes to raw accel samples, runs the signal
// pipeline over them one at a time, and publishes the smoothed
// activity signal plus step events. Threshold updates pushed on the
// threshold topic take effect on the next processed sample.
//
// Paho delivers messages for one connection sequentially, so the
// sample handler is the single processing goroutine the pipeline
// requires.
func RunProcessor() error {
	log.Println("starting stride-computer processor (raw samples → activity/steps)")

	cfg := config.Get()

	pipe, err := pipeline.New(pipeline.Options{
		Channels:            cfg.PipelineChannels,
		GravityAlpha:        cfg.GravityAlpha,
		EMAAlpha:            cfg.EMAAlpha,
		ProcessVariance:     cfg.ProcessVariance,
		MeasurementVariance: cfg.MeasurementVariance,
		Threshold:           cfg.DetectorThreshold,
		Refractory:          cfg.DetectorRefractory,
	})
	if err != nil {
		return err
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProcessor)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("processor: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Threshold tuning channel: one-way, last write wins, applied on
	// the next evaluated sample.
	thrToken := client.Subscribe(cfg.TopicThreshold, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var upd steps.ThresholdUpdate
		if err := json.Unmarshal(msg.Payload(), &upd); err != nil {
			log.Printf("processor: threshold unmarshal error: %v", err)
			return
		}
		pipe.Detector().OnThresholdChange(upd.Value)
		log.Printf("processor: threshold set to %.2f", upd.Value)
	})
	thrToken.Wait()
	if thrToken.Error() != nil {
		return thrToken.Error()
	}
	log.Printf("processor: subscribed to %s", cfg.TopicThreshold)

	var stepCount int64

	rawToken := client.Subscribe(cfg.TopicAccelRaw, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s accel.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("processor: sample unmarshal error: %v", err)
			return
		}

		res, err := pipe.Process(s)
		if err != nil {
			if errors.Is(err, pipeline.ErrDegenerateSample) {
				log.Printf("processor: WARNING: dropping degenerate sample %+v", s)
				return
			}
			log.Printf("processor: pipeline error: %v", err)
			return
		}

		payload, err := json.Marshal(res)
		if err != nil {
			log.Printf("processor: activity marshal error: %v", err)
			return
		}
		if token := client.Publish(cfg.TopicActivity, 0, false, payload); token.Wait() && token.Error() != nil {
			log.Printf("processor: activity publish error: %v", token.Error())
		}

		if res.Step {
			stepCount++
			ev := steps.Event{TimeMillis: res.TimeMillis, Count: stepCount}
			payload, err := json.Marshal(ev)
			if err != nil {
				log.Printf("processor: step marshal error: %v", err)
				return
			}
			if token := client.Publish(cfg.TopicSteps, 0, false, payload); token.Wait() && token.Error() != nil {
				log.Printf("processor: step publish error: %v", token.Error())
			}
		}
	})
	rawToken.Wait()
	if rawToken.Error() != nil {
		return rawToken.Error()
	}
	log.Printf("processor: subscribed to %s", cfg.TopicAccelRaw)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("processor: shutting down")
	client.Disconnect(250)
	return nil
}
