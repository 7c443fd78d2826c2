package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/stride_computer/internal/config"
	"github.com/relabs-tech/stride_computer/internal/pipeline"
	"github.com/relabs-tech/stride_computer/internal/steps"
)

// RunConsole subscribes to the activity, step and threshold topics and
// prints them, one line per message. Handy for tuning the threshold
// while watching the smoothed signal.
func RunConsole() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Subscribe to activity
	actToken := client.Subscribe(cfg.TopicActivity, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var res pipeline.Result
		if err := json.Unmarshal(msg.Payload(), &res); err != nil {
			log.Printf("console: activity unmarshal error: %v", err)
			return
		}

		mark := " "
		if res.Step {
			mark = "*"
		}
		fmt.Printf("[ACT%s] t=%d", mark, res.TimeMillis)
		for i, v := range res.Values {
			fmt.Printf("  ch%d=%7.3f", i, v)
		}
		fmt.Println()
	})
	actToken.Wait()
	if actToken.Error() != nil {
		return actToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicActivity)

	// Subscribe to step events
	stepToken := client.Subscribe(cfg.TopicSteps, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var ev steps.Event
		if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
			log.Printf("console: step unmarshal error: %v", err)
			return
		}

		fmt.Printf("[STEP] t=%d count=%d\n", ev.TimeMillis, ev.Count)
	})
	stepToken.Wait()
	if stepToken.Error() != nil {
		return stepToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicSteps)

	// Subscribe to threshold changes
	thrToken := client.Subscribe(cfg.TopicThreshold, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var upd steps.ThresholdUpdate
		if err := json.Unmarshal(msg.Payload(), &upd); err != nil {
			log.Printf("console: threshold unmarshal error: %v", err)
			return
		}

		fmt.Printf("[THR ] value=%.2f\n", upd.Value)
	})
	thrToken.Wait()
	if thrToken.Error() != nil {
		return thrToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicThreshold)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
