package httpstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/spectrumgame-go/internal/api"
	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/storage/memory"
	"github.com/mcoot/spectrumgame-go/internal/storage/storagetest"
	"github.com/mcoot/spectrumgame-go/internal/testutil"
)

type StorageSuite struct {
	storagetest.Suite
	backing *memory.Storage
	server  *httptest.Server
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.backing = memory.New()
	s.server = httptest.NewServer(api.NewRouter(api.RouterConfig{
		Logger:      testutil.NopLogger(),
		Storage:     s.backing,
		StorageType: "memory",
	}))
	s.Store = New(Config{BaseURL: s.server.URL, PlayerID: "alice"})
	s.Ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	s.server.Close()
}

func (s *StorageSuite) TestUnknownColumnSurvivesTheWire() {
	legacy := memory.New(memory.WithLegacySchema())
	server := httptest.NewServer(api.NewRouter(api.RouterConfig{
		Logger:  testutil.NopLogger(),
		Storage: legacy,
	}))
	defer server.Close()
	store := New(Config{BaseURL: server.URL})

	room := storagetest.NewClassicRoom("ABCD")
	room.Player1Name = model.Ptr("Alice")
	_, err := store.InsertRoom(s.Ctx, room)
	s.ErrorIs(err, model.ErrUnknownColumn)
}

func (s *StorageSuite) TestServerDown() {
	store := New(Config{BaseURL: "http://127.0.0.1:1"})
	_, err := store.GetRoom(s.Ctx, "anything")
	s.Error(err)
	s.NotErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestWritesAreVisibleToOtherClients() {
	other := NewWithClient(Config{BaseURL: s.server.URL, PlayerID: "bob"}, http.DefaultClient)

	room, err := s.Store.InsertRoom(s.Ctx, storagetest.NewClassicRoom("ABCD"))
	s.Require().NoError(err)

	_, err = other.UpdateRoom(s.Ctx, room.ID, model.RoomPatch{GuesserID: model.Ptr(model.PlayerID("bob"))})
	s.Require().NoError(err)

	got, err := s.Store.GetRoom(s.Ctx, room.ID)
	s.Require().NoError(err)
	s.True(got.IsGuesser("bob"))
}
