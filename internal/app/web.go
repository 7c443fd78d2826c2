package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/stride_computer/internal/config"
	"github.com/relabs-tech/stride_computer/internal/pipeline"
	"github.com/relabs-tech/stride_computer/internal/steps"
)

// graphResolution bounds the activity tail kept for plotting; the UI
// shows a moving window, not full history.
const graphResolution = 150

// webState is the latest data the UI can ask for. Updated from MQTT
// callbacks, read from HTTP handlers.
type webState struct {
	mu           sync.RWMutex
	last         pipeline.Result
	haveActivity bool
	tail         []pipeline.Result
	lastStep     steps.Event
	haveStep     bool
	threshold    float64
}

// wsHub fans activity frames out to connected plotting clients.
type wsHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{conns: make(map[*websocket.Conn]struct{})}
}

func (h *wsHub) add(c *websocket.Conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

func (h *wsHub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
	c.Close()
}

// readPump drains inbound frames so close and ping control frames get
// processed; a client that goes away is removed as soon as the read
// fails rather than on the next broadcast.
func (h *wsHub) readPump(c *websocket.Conn) {
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			h.remove(c)
			return
		}
	}
}

func (h *wsHub) broadcast(v any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		if err := c.WriteJSON(v); err != nil {
			c.Close()
			delete(h.conns, c)
		}
	}
}

// RunWeb bridges MQTT to the browser: a JSON API for the latest
// values, a websocket stream of activity frames for the live plot, and
// a threshold endpoint the UI slider posts to. The slider path only
// publishes to the threshold topic; the processor owns applying it.
func RunWeb() error {
	cfg := config.Get()

	state := &webState{threshold: cfg.DetectorThreshold}
	hub := newWSHub()

	// 1) Connect to MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to activity, steps, threshold
	actToken := client.Subscribe(cfg.TopicActivity, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var res pipeline.Result
		if err := json.Unmarshal(msg.Payload(), &res); err != nil {
			log.Printf("web: activity unmarshal error: %v", err)
			return
		}
		state.mu.Lock()
		state.last = res
		state.haveActivity = true
		state.tail = append(state.tail, res)
		if len(state.tail) > graphResolution {
			state.tail = state.tail[len(state.tail)-graphResolution:]
		}
		state.mu.Unlock()

		hub.broadcast(res)
	})
	actToken.Wait()
	if actToken.Error() != nil {
		return actToken.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicActivity)

	stepToken := client.Subscribe(cfg.TopicSteps, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var ev steps.Event
		if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
			log.Printf("web: step unmarshal error: %v", err)
			return
		}
		state.mu.Lock()
		state.lastStep = ev
		state.haveStep = true
		state.mu.Unlock()
	})
	stepToken.Wait()
	if stepToken.Error() != nil {
		return stepToken.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicSteps)

	thrToken := client.Subscribe(cfg.TopicThreshold, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var upd steps.ThresholdUpdate
		if err := json.Unmarshal(msg.Payload(), &upd); err != nil {
			log.Printf("web: threshold unmarshal error: %v", err)
			return
		}
		state.mu.Lock()
		state.threshold = upd.Value
		state.mu.Unlock()
	})
	thrToken.Wait()
	if thrToken.Error() != nil {
		return thrToken.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicThreshold)

	// 3) JSON API endpoints
	http.HandleFunc("/api/activity", func(w http.ResponseWriter, r *http.Request) {
		state.mu.RLock()
		defer state.mu.RUnlock()

		if !state.haveActivity {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(state.tail); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	http.HandleFunc("/api/steps", func(w http.ResponseWriter, r *http.Request) {
		state.mu.RLock()
		defer state.mu.RUnlock()

		if !state.haveStep {
			http.Error(w, "no steps yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(state.lastStep); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	http.HandleFunc("/api/threshold", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			state.mu.RLock()
			upd := steps.ThresholdUpdate{Value: state.threshold}
			state.mu.RUnlock()

			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(upd); err != nil {
				log.Printf("web: json encode error: %v", err)
			}

		case http.MethodPost:
			var upd steps.ThresholdUpdate
			if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
				http.Error(w, "bad threshold payload", http.StatusBadRequest)
				return
			}

			payload, err := json.Marshal(upd)
			if err != nil {
				http.Error(w, "encode error", http.StatusInternalServerError)
				return
			}
			// Retained, so the processor picks the tuning back up
			// after a restart.
			if token := client.Publish(cfg.TopicThreshold, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("web: threshold publish error: %v", token.Error())
				http.Error(w, "publish failed", http.StatusBadGateway)
				return
			}
			w.WriteHeader(http.StatusAccepted)

		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// 4) Websocket stream for the live plot
	upgrader := websocket.Upgrader{
		// Same-host UI only; the broker is the authenticated surface.
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web: websocket upgrade error: %v", err)
			return
		}
		hub.add(conn)
		go hub.readPump(conn)
	})

	// 5) Static files from ./web as the root
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
