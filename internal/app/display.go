package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/stride_computer/internal/config"
	"github.com/relabs-tech/stride_computer/internal/pipeline"
	"github.com/relabs-tech/stride_computer/internal/steps"
)

// DisplayData holds the latest data for the OLED panel.
type DisplayData struct {
	mu sync.RWMutex

	stepCount    int64
	lastStepMS   int64
	prevStepMS   int64
	haveStep     bool
	threshold    float64
	activity     float64
	haveActivity bool
}

// tempoBPM derives walking tempo from the spacing of the last two
// step events. Zero until two steps have been seen.
func (d *DisplayData) tempoBPM() float64 {
	if d.prevStepMS == 0 || d.lastStepMS <= d.prevStepMS {
		return 0
	}
	return 60_000 / float64(d.lastStepMS-d.prevStepMS)
}

// RunDisplay drives an ssd1306 OLED with the current step count,
// tempo and threshold.
func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("display: ssd1306 initialized")

	if err := showSplash(dev); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &DisplayData{threshold: cfg.DetectorThreshold}

	// Connect to MQTT
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDDisplay)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	stepToken := client.Subscribe(cfg.TopicSteps, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var ev steps.Event
		if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
			log.Printf("display: step unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.stepCount = ev.Count
		data.prevStepMS = data.lastStepMS
		data.lastStepMS = ev.TimeMillis
		data.haveStep = true
		data.mu.Unlock()
	})
	stepToken.Wait()
	if stepToken.Error() != nil {
		return stepToken.Error()
	}
	log.Printf("display: subscribed to %s", cfg.TopicSteps)

	thrToken := client.Subscribe(cfg.TopicThreshold, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var upd steps.ThresholdUpdate
		if err := json.Unmarshal(msg.Payload(), &upd); err != nil {
			log.Printf("display: threshold unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.threshold = upd.Value
		data.mu.Unlock()
	})
	thrToken.Wait()
	if thrToken.Error() != nil {
		return thrToken.Error()
	}
	log.Printf("display: subscribed to %s", cfg.TopicThreshold)

	actToken := client.Subscribe(cfg.TopicActivity, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var res pipeline.Result
		if err := json.Unmarshal(msg.Payload(), &res); err != nil {
			log.Printf("display: activity unmarshal error: %v", err)
			return
		}
		if len(res.Values) == 0 {
			return
		}
		data.mu.Lock()
		data.activity = res.Values[0]
		data.haveActivity = true
		data.mu.Unlock()
	})
	actToken.Wait()
	if actToken.Error() != nil {
		return actToken.Error()
	}
	log.Printf("display: subscribed to %s", cfg.TopicActivity)

	// Display update loop
	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		data.mu.RLock()
		snapshot := DisplayData{
			stepCount:    data.stepCount,
			lastStepMS:   data.lastStepMS,
			prevStepMS:   data.prevStepMS,
			haveStep:     data.haveStep,
			threshold:    data.threshold,
			activity:     data.activity,
			haveActivity: data.haveActivity,
		}
		data.mu.RUnlock()

		if err := updateStepDisplay(dev, &snapshot); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}

	return nil
}

func updateStepDisplay(dev *ssd1306.Dev, data *DisplayData) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))

	// Blank image
	for i := 0; i < 1024; i++ {
		img.Pix[i] = 0
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	if !data.haveActivity && !data.haveStep {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("Stride Pi"))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte("Waiting..."))
	} else {
		drawer.Dot = fixed.P(0, 13)
		drawer.DrawBytes([]byte(fmt.Sprintf("Steps: %d", data.stepCount)))

		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte(fmt.Sprintf("Tempo: %5.1f bpm", data.tempoBPM())))

		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte(fmt.Sprintf("Act:   %6.2f", data.activity)))

		drawer.Dot = fixed.P(0, 52)
		drawer.DrawBytes([]byte(fmt.Sprintf("Thr:   %6.2f", data.threshold)))
	}

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

func showSplash(dev *ssd1306.Dev) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))

	// Blank image
	for i := 0; i < 1024; i++ {
		img.Pix[i] = 0
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawBytes([]byte("Stride Pi"))

	drawer.Dot = fixed.P(5, 43)
	drawer.DrawBytes([]byte("Waiting for"))

	drawer.Dot = fixed.P(25, 56)
	drawer.DrawBytes([]byte("steps"))

	return dev.Draw(dev.Bounds(), img, image.Point{})
}
