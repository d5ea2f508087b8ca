package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.Store = New()
	s.Ctx = context.Background()
}

func (s *StorageSuite) TestReturnedRoomsAreCopies() {
	room, err := s.Store.InsertRoom(s.Ctx, storagetest.NewClassicRoom("ABCD"))
	s.Require().NoError(err)

	room.Phase = model.PhaseEnded

	got, err := s.Store.GetRoom(s.Ctx, room.ID)
	s.Require().NoError(err)
	s.Equal(model.PhaseWaiting, got.Phase)
}

func (s *StorageSuite) TestTimestampsFromClock() {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	store := New(WithNow(func() time.Time { return now }))

	room, err := store.InsertRoom(s.Ctx, storagetest.NewClassicRoom("ABCD"))
	s.Require().NoError(err)
	s.Equal(now, room.CreatedAt)
	s.Equal(now, room.UpdatedAt)

	p, err := store.InsertPlayer(s.Ctx, &model.Player{RoomID: room.ID, PlayerID: "bob", Name: "Bob"})
	s.Require().NoError(err)
	s.Equal(now, p.JoinedAt)
}

func TestLegacySchemaRejectsMetadata(t *testing.T) {
	ctx := context.Background()
	store := New(WithLegacySchema())

	room := storagetest.NewClassicRoom("ABCD")
	room.Player1Name = model.Ptr("Alice")
	_, err := store.InsertRoom(ctx, room)
	assert.ErrorIs(t, err, model.ErrUnknownColumn)

	inserted, err := store.InsertRoom(ctx, storagetest.NewClassicRoom("ABCD"))
	require.NoError(t, err)

	_, err = store.UpdateRoom(ctx, inserted.ID, model.RoomPatch{Player2Name: model.Ptr("Bob")})
	assert.ErrorIs(t, err, model.ErrUnknownColumn)
}
