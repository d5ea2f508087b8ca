package model

import "time"

// EventType names a change notification pushed to subscribers of a room
type EventType string

const (
	EventConnected      EventType = "connected"
	EventRoomUpdated    EventType = "room-updated"
	EventPlayersUpdated EventType = "players-updated"
	EventRoomDeleted    EventType = "room-deleted"
)

// Event is a change notification. It carries no state: receivers refetch.
type Event struct {
	Type      EventType `json:"type"`
	RoomID    RoomID    `json:"room_id"`
	PlayerID  PlayerID  `json:"player_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is the full state of a room as observed by one poll
type Snapshot struct {
	Room      *Room
	Players   []Player // party mode only
	FetchedAt time.Time
}

// Clone returns a deep copy of the snapshot
func (s Snapshot) Clone() Snapshot {
	c := Snapshot{Room: s.Room.Clone(), FetchedAt: s.FetchedAt}
	if s.Players != nil {
		c.Players = make([]Player, len(s.Players))
		for i, p := range s.Players {
			c.Players[i] = p.Clone()
		}
	}
	return c
}
