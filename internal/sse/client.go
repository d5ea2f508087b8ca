package sse

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/spectrumgame-go/internal/model"
)

const (
	// Time between keepalive comments
	pingPeriod = 15 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 64
)

// Client is one participant's event stream for a room
type Client struct {
	hub         *Hub
	roomID      model.RoomID
	playerID    model.PlayerID
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a stream for playerID on the hub's room
func NewClient(hub *Hub, playerID model.PlayerID) *Client {
	return &Client{
		hub:         hub,
		roomID:      hub.roomID,
		playerID:    playerID,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// hello is the first event on a stream. It names the room so a subscriber
// can tell a stream for a room it already left apart from the current one.
func (c *Client) hello() []byte {
	data, err := json.Marshal(model.Event{
		Type:      model.EventConnected,
		RoomID:    c.roomID,
		PlayerID:  c.playerID,
		Timestamp: c.connectedAt,
	})
	if err != nil {
		data = []byte(`{"type":"connected"}`)
	}
	return formatSSEMessage(string(model.EventConnected), string(data))
}

// ServeSSE streams the room's events to one participant until either side
// goes away. A closed hub ends the stream.
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, playerID model.PlayerID) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	client := NewClient(hub, playerID)
	logger := hub.logger.With(slog.String("player_id", string(playerID)))
	hub.Register(client)
	defer hub.Unregister(client)

	if _, err := w.Write(client.hello()); err != nil {
		return
	}
	flusher.Flush()
	logger.Debug("sse stream opened", slog.String("remote_addr", r.RemoteAddr))

	reason := stream(w, r, flusher, client)
	logger.Debug("sse stream closed",
		slog.String("reason", reason),
		slog.Duration("connection_duration", time.Since(client.connectedAt)))
}

// stream copies queued events to w and reports why it stopped
func stream(w http.ResponseWriter, r *http.Request, flusher http.Flusher, client *Client) string {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return "hub closed"
			}
			if _, err := w.Write(message); err != nil {
				return "write failed"
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return "write failed"
			}
			flusher.Flush()

		case <-r.Context().Done():
			return "client gone"
		}
	}
}
