package poller

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mcoot/spectrumgame-go/internal/api/middleware"
	"github.com/mcoot/spectrumgame-go/internal/model"
)

// SSEListener subscribes to a room's event stream and nudges a poller on
// every change notification. It never carries state itself, so a dropped
// connection only costs latency.
type SSEListener struct {
	baseURL    string
	roomID     model.RoomID
	playerID   model.PlayerID
	httpClient *http.Client
	retryDelay time.Duration
	logger     *slog.Logger
}

// NewSSEListener creates a listener for the room's events endpoint
func NewSSEListener(baseURL string, roomID model.RoomID, playerID model.PlayerID, logger *slog.Logger) *SSEListener {
	return &SSEListener{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		roomID:     roomID,
		playerID:   playerID,
		httpClient: &http.Client{Timeout: 0}, // No timeout for SSE
		retryDelay: 2 * time.Second,
		logger:     logger.With(slog.String("component", "sse-listener")),
	}
}

// Run reconnects until ctx is cancelled, calling nudge for every event
func (l *SSEListener) Run(ctx context.Context, nudge func()) {
	for {
		err := l.stream(ctx, nudge)
		if ctx.Err() != nil {
			return
		}
		l.logger.Debug("event stream dropped", slog.Any("error", err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.retryDelay):
		}
	}
}

func (l *SSEListener) stream(ctx context.Context, nudge func()) error {
	u := l.baseURL + "/api/v1/rooms/" + url.PathEscape(string(l.roomID)) + "/events"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if l.playerID != "" {
		req.Header.Set(middleware.PlayerHeader, string(l.playerID))
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	var event string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case line == "":
			if event != "" && event != string(model.EventConnected) {
				nudge()
			}
			event = ""
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return fmt.Errorf("stream closed")
}
