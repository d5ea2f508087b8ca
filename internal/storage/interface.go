package storage

import (
	"context"

	"github.com/mcoot/spectrumgame-go/internal/model"
)

// Storage is the shared record store every client reads and writes. It
// enforces no game rules beyond record shape.
type Storage interface {
	// Room operations
	InsertRoom(ctx context.Context, room *model.Room) (*model.Room, error)
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	GetRoomByCode(ctx context.Context, code model.RoomCode) (*model.Room, error)
	UpdateRoom(ctx context.Context, id model.RoomID, patch model.RoomPatch) (*model.Room, error)
	DeleteRoom(ctx context.Context, id model.RoomID) error

	// Player operations (party mode roster)
	InsertPlayer(ctx context.Context, player *model.Player) (*model.Player, error)
	GetPlayersForRoom(ctx context.Context, roomID model.RoomID) ([]model.Player, error)
	UpdatePlayer(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, patch model.PlayerPatch) (*model.Player, error)
	DeletePlayer(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) error
}

// ValidateNewRoom checks the shape constraints every store enforces on insert
func ValidateNewRoom(room *model.Room) error {
	if !room.RoomCode.Valid() {
		return model.ErrInvalidRoomCode
	}
	if !room.GameMode.Valid() {
		return model.ErrInvalidGameMode
	}
	return nil
}
