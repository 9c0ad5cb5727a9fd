package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nick-dorsch/tasktimer/pkg/models"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(url, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]json.RawMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var event map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func TestHubBroadcast(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := NewHub(logger)
	ts := httptest.NewServer(httptestMux(hub))
	defer ts.Close()

	a := dialHub(t, ts.URL)
	b := dialHub(t, ts.URL)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, time.Millisecond)

	require.NoError(t, hub.Play(context.Background(), nil))
	for _, conn := range []*websocket.Conn{a, b} {
		event := readEvent(t, conn)
		require.JSONEq(t, `"alert"`, string(event["type"]))
	}

	b.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, time.Millisecond)
}

func TestServerPushesTaskUpdates(t *testing.T) {
	srv, ctl, notifier := newTestServer(t)
	notifier.SetOnChange(srv.NotificationsChanged)
	go srv.pushLoop()
	defer srv.Shutdown(context.Background())

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialHub(t, ts.URL)
	require.Eventually(t, func() bool { return srv.hub.ClientCount() == 1 }, time.Second, time.Millisecond)

	_, err := ctl.AddTask(context.Background(), "Push me")
	require.NoError(t, err)
	srv.TasksChanged(context.Background())

	seen := map[string]string{}
	for len(seen) < 2 {
		event := readEvent(t, conn)
		var typ string
		require.NoError(t, json.Unmarshal(event["type"], &typ))
		seen[typ] = string(event["payload"])
	}

	require.Contains(t, seen[EventTasks], "Push me")

	var notes []models.Notification
	require.NoError(t, json.Unmarshal([]byte(seen[EventNotifications]), &notes))
	require.Len(t, notes, 1)
	require.Equal(t, "Added task: Push me", notes[0].Message)
}

func httptestMux(hub *Hub) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", hub.ServeWS)
	return mux
}
