package sse

import (
	"encoding/json"
	"log/slog"

	"github.com/mcoot/spectrumgame-go/internal/dependencies/clock"
	"github.com/mcoot/spectrumgame-go/internal/model"
)

// Broadcaster announces record changes to a room's subscribers. Events
// carry no state; receivers refetch from the store.
type Broadcaster struct {
	hubManager *HubManager
	clock      clock.Clock
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, clock clock.Clock, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		clock:      clock,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// RoomUpdated announces a change to the room record
func (b *Broadcaster) RoomUpdated(roomID model.RoomID) {
	b.send(model.Event{Type: model.EventRoomUpdated, RoomID: roomID})
}

// PlayersUpdated announces a change to one roster row
func (b *Broadcaster) PlayersUpdated(roomID model.RoomID, playerID model.PlayerID) {
	b.send(model.Event{Type: model.EventPlayersUpdated, RoomID: roomID, PlayerID: playerID})
}

// RoomDeleted announces that the room is gone. The hub is left for
// CleanupEmptyHubs once subscribers disconnect.
func (b *Broadcaster) RoomDeleted(roomID model.RoomID) {
	b.send(model.Event{Type: model.EventRoomDeleted, RoomID: roomID})
}

func (b *Broadcaster) send(event model.Event) {
	hub := b.hubManager.GetHub(event.RoomID)
	if hub == nil {
		return
	}

	event.Timestamp = b.clock.Now()
	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("sse failed to encode event",
			slog.String("room_id", string(event.RoomID)),
			slog.Any("error", err))
		return
	}
	hub.BroadcastEvent(string(event.Type), string(data))
}
