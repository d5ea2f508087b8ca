package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/services/cards"
	"github.com/mcoot/spectrumgame-go/internal/storage"
)

// MaxCodeAttempts bounds how many codes AllocateRoomCode tries
const MaxCodeAttempts = 10

// AllocateRoomCode picks a code that no live room is using. A code whose
// latest room has ended is free again.
func AllocateRoomCode(ctx context.Context, store storage.Storage, gen *cards.Generator) (model.RoomCode, error) {
	for i := 0; i < MaxCodeAttempts; i++ {
		code := gen.RoomCode()
		if !code.Valid() {
			continue
		}
		existing, err := store.GetRoomByCode(ctx, code)
		if errors.Is(err, model.ErrRoomNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
		if existing.IsEnded() {
			return code, nil
		}
	}
	return "", model.ErrRoomCodeExhausted
}

// InsertRoom writes a new room. If the store's schema lacks the display
// metadata columns the room is written again without them and degraded is
// true; the caller keeps the metadata locally.
func InsertRoom(ctx context.Context, store storage.Storage, room *model.Room, logger *slog.Logger) (created *model.Room, degraded bool, err error) {
	created, err = store.InsertRoom(ctx, room)
	if err == nil || !errors.Is(err, model.ErrUnknownColumn) || !model.RoomHasMetadata(room) {
		return created, false, err
	}

	logger.Info("store has no metadata columns, keeping metadata locally",
		slog.String("room_code", string(room.RoomCode)))

	bare := room.Clone()
	bare.Player1Name, bare.Player1Avatar = nil, nil
	bare.Player2Name, bare.Player2Avatar = nil, nil
	created, err = store.InsertRoom(ctx, bare)
	return created, err == nil, err
}

// UpdateRoom applies a patch with the same metadata fallback as InsertRoom
func UpdateRoom(ctx context.Context, store storage.Storage, id model.RoomID, patch model.RoomPatch, logger *slog.Logger) (updated *model.Room, degraded bool, err error) {
	updated, err = store.UpdateRoom(ctx, id, patch)
	if err == nil || !errors.Is(err, model.ErrUnknownColumn) || !patch.HasMetadata() {
		return updated, false, err
	}

	logger.Info("store has no metadata columns, keeping metadata locally",
		slog.String("room_id", string(id)))

	bare := patch.WithoutMetadata()
	if bare.IsEmpty() {
		updated, err = store.GetRoom(ctx, id)
	} else {
		updated, err = store.UpdateRoom(ctx, id, bare)
	}
	return updated, err == nil, err
}
