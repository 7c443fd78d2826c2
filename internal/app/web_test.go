package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func wsConnCount(h *wsHub) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func newWSTestServer(t *testing.T, hub *wsHub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.add(conn)
		go hub.readPump(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return client
}

func TestWSHub_BroadcastReachesClient(t *testing.T) {
	hub := newWSHub()
	srv := newWSTestServer(t, hub)

	client := dialWS(t, srv)
	defer client.Close()

	require.Eventually(t, func() bool { return wsConnCount(hub) == 1 },
		time.Second, 10*time.Millisecond)

	hub.broadcast(map[string]float64{"value": 12.72})

	var got map[string]float64
	require.NoError(t, client.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, client.ReadJSON(&got))
	require.Equal(t, 12.72, got["value"])
}

func TestWSHub_RemovesDepartedClient(t *testing.T) {
	hub := newWSHub()
	srv := newWSTestServer(t, hub)

	client := dialWS(t, srv)
	require.Eventually(t, func() bool { return wsConnCount(hub) == 1 },
		time.Second, 10*time.Millisecond)

	require.NoError(t, client.Close())

	// The read pump notices the departed client on its own; no
	// broadcast has to fail first.
	require.Eventually(t, func() bool { return wsConnCount(hub) == 0 },
		time.Second, 10*time.Millisecond)
}
