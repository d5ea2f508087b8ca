package redis

import (
	"fmt"

	"github.com/mcoot/spectrumgame-go/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "spectrum"

// roomKey returns the Redis key for a Room
func roomKey(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, id)
}

// roomCodeIndexKey returns the Redis key for the room_code -> room id index
func roomCodeIndexKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:idx:room_code:%s", keyPrefix, code)
}

// playerKey returns the Redis key for one roster row
func playerKey(roomID model.RoomID, playerID model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s:%s", keyPrefix, roomID, playerID)
}

// playersForRoomIndexKey returns the Redis key for the ZSET of roster rows,
// scored by join time
func playersForRoomIndexKey(roomID model.RoomID) string {
	return fmt.Sprintf("%s:idx:players_for_room:%s", keyPrefix, roomID)
}
