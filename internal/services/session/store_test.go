package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/spectrumgame-go/internal/dependencies/mocks"
	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/services/cards"
	"github.com/mcoot/spectrumgame-go/internal/storage/memory"
	"github.com/mcoot/spectrumgame-go/internal/storage/storagetest"
	"github.com/mcoot/spectrumgame-go/internal/testutil"
)

func TestAllocateRoomCodeSkipsLiveRooms(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	_, err := store.InsertRoom(ctx, storagetest.NewClassicRoom("ABCD"))
	require.NoError(t, err)

	rnd := mocks.NewMockRandom()
	rnd.QueueString("ABCD", "bad", "WXYZ")

	code, err := AllocateRoomCode(ctx, store, cards.New(rnd))
	require.NoError(t, err)
	assert.Equal(t, model.RoomCode("WXYZ"), code)
}

func TestAllocateRoomCodeReusesEndedRooms(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	room, err := store.InsertRoom(ctx, storagetest.NewClassicRoom("ABCD"))
	require.NoError(t, err)
	_, err = store.UpdateRoom(ctx, room.ID, model.RoomPatch{Phase: model.Ptr(model.PhaseEnded)})
	require.NoError(t, err)

	rnd := mocks.NewMockRandom()
	rnd.QueueString("ABCD")

	code, err := AllocateRoomCode(ctx, store, cards.New(rnd))
	require.NoError(t, err)
	assert.Equal(t, model.RoomCode("ABCD"), code)
}

func TestAllocateRoomCodeGivesUp(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	_, err := store.InsertRoom(ctx, storagetest.NewClassicRoom("ABCD"))
	require.NoError(t, err)

	rnd := mocks.NewMockRandom()
	for i := 0; i < MaxCodeAttempts; i++ {
		rnd.QueueString("ABCD")
	}

	_, err = AllocateRoomCode(ctx, store, cards.New(rnd))
	assert.ErrorIs(t, err, model.ErrRoomCodeExhausted)
}

func TestInsertRoomFallsBackWithoutMetadata(t *testing.T) {
	ctx := context.Background()
	store := memory.New(memory.WithLegacySchema())

	room := storagetest.NewClassicRoom("ABCD")
	room.Player1Name = model.Ptr("Alice")
	room.Player1Avatar = model.Ptr("fox")

	created, degraded, err := InsertRoom(ctx, store, room, testutil.NopLogger())
	require.NoError(t, err)
	assert.True(t, degraded)
	assert.Nil(t, created.Player1Name)
	assert.Equal(t, model.RoomCode("ABCD"), created.RoomCode)

	// caller's room is untouched
	assert.Equal(t, "Alice", *room.Player1Name)
}

func TestInsertRoomKeepsMetadataWhenSupported(t *testing.T) {
	ctx := context.Background()
	room := storagetest.NewClassicRoom("ABCD")
	room.Player1Name = model.Ptr("Alice")

	created, degraded, err := InsertRoom(ctx, memory.New(), room, testutil.NopLogger())
	require.NoError(t, err)
	assert.False(t, degraded)
	assert.Equal(t, "Alice", *created.Player1Name)
}

func TestInsertRoomPassesOtherErrorsThrough(t *testing.T) {
	_, degraded, err := InsertRoom(context.Background(), memory.New(), storagetest.NewClassicRoom("AB"), testutil.NopLogger())
	assert.ErrorIs(t, err, model.ErrInvalidRoomCode)
	assert.False(t, degraded)
}

func TestUpdateRoomFallsBackWithoutMetadata(t *testing.T) {
	ctx := context.Background()
	store := memory.New(memory.WithLegacySchema())
	room, err := store.InsertRoom(ctx, storagetest.NewClassicRoom("ABCD"))
	require.NoError(t, err)

	bob := model.PlayerID("bob")
	updated, degraded, err := UpdateRoom(ctx, store, room.ID, model.RoomPatch{
		GuesserID:   &bob,
		Player2Name: model.Ptr("Bob"),
	}, testutil.NopLogger())
	require.NoError(t, err)
	assert.True(t, degraded)
	assert.True(t, updated.IsGuesser("bob"))
	assert.Nil(t, updated.Player2Name)
}

func TestUpdateRoomMetadataOnly(t *testing.T) {
	ctx := context.Background()
	store := memory.New(memory.WithLegacySchema())
	room, err := store.InsertRoom(ctx, storagetest.NewClassicRoom("ABCD"))
	require.NoError(t, err)

	updated, degraded, err := UpdateRoom(ctx, store, room.ID, model.RoomPatch{
		Player2Avatar: model.Ptr("owl"),
	}, testutil.NopLogger())
	require.NoError(t, err)
	assert.True(t, degraded)
	assert.Equal(t, room.ID, updated.ID)
}
