package sse

import (
	"bufio"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/testutil"
)

// readEvent reads one "event:/data:" block from an SSE body
func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var name, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSuffix(line, "\n")
		switch {
		case line == "":
			return name, data
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestServeSSEAnnouncesRoom(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()
	hub := manager.GetOrCreateHub("room-1")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeSSE(w, r, hub, "alice")
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body := bufio.NewReader(resp.Body)
	name, data := readEvent(t, body)
	assert.Equal(t, string(model.EventConnected), name)

	var hello model.Event
	require.NoError(t, json.Unmarshal([]byte(data), &hello))
	assert.Equal(t, model.RoomID("room-1"), hello.RoomID)
	assert.Equal(t, model.PlayerID("alice"), hello.PlayerID)

	waitForClients(t, hub, 1)
	hub.BroadcastEvent("room-updated", "x")
	name, data = readEvent(t, body)
	assert.Equal(t, "room-updated", name)
	assert.Equal(t, "x", data)

	// Removing the room's hub ends the stream
	manager.RemoveHub("room-1")
	_, err = io.ReadAll(body)
	assert.NoError(t, err)
}
