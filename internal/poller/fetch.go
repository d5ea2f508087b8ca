package poller

import (
	"context"

	"github.com/mcoot/spectrumgame-go/internal/dependencies/clock"
	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/storage"
)

// RoomFetcher reads the room record only, which is all classic mode needs
func RoomFetcher(store storage.Storage, roomID model.RoomID, clock clock.Clock) FetchFunc {
	return func(ctx context.Context) (model.Snapshot, error) {
		room, err := store.GetRoom(ctx, roomID)
		if err != nil {
			return model.Snapshot{}, err
		}
		return model.Snapshot{Room: room, FetchedAt: clock.Now()}, nil
	}
}

// PartyFetcher reads the room and, for party rooms, its roster
func PartyFetcher(store storage.Storage, roomID model.RoomID, clock clock.Clock) FetchFunc {
	return func(ctx context.Context) (model.Snapshot, error) {
		room, err := store.GetRoom(ctx, roomID)
		if err != nil {
			return model.Snapshot{}, err
		}
		snap := model.Snapshot{Room: room, FetchedAt: clock.Now()}
		if room.GameMode == model.GameModeParty {
			players, err := store.GetPlayersForRoom(ctx, roomID)
			if err != nil {
				return model.Snapshot{}, err
			}
			snap.Players = players
		}
		return snap, nil
	}
}

// ForMode picks the fetcher for a game mode
func ForMode(mode model.GameMode, store storage.Storage, roomID model.RoomID, clock clock.Clock) FetchFunc {
	if mode == model.GameModeParty {
		return PartyFetcher(store, roomID, clock)
	}
	return RoomFetcher(store, roomID, clock)
}
