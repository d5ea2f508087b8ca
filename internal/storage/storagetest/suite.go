// Package storagetest holds the behaviour every storage.Storage
// implementation must share. Store packages embed Suite in their own test
// suite and set Store in SetupTest.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/storage"
)

// Suite is the shared storage contract test suite
type Suite struct {
	suite.Suite
	Store storage.Storage
	Ctx   context.Context
}

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// NewClassicRoom returns a room in the waiting phase with the given code
func NewClassicRoom(code model.RoomCode) *model.Room {
	return &model.Room{
		RoomCode:    code,
		PsychicID:   "alice",
		TargetAngle: 42,
		GuessAngle:  model.NeutralAngle,
		Phase:       model.PhaseWaiting,
		CurrentCard: model.Card{Left: "Hot", Right: "Cold"},
		RoundNumber: 1,
		GameMode:    model.GameModeClassic,
	}
}

func (s *Suite) insertRoom(code model.RoomCode) *model.Room {
	room, err := s.Store.InsertRoom(s.Ctx, NewClassicRoom(code))
	s.Require().NoError(err)
	return room
}

func (s *Suite) insertPlayer(roomID model.RoomID, id model.PlayerID, joined time.Time) *model.Player {
	p, err := s.Store.InsertPlayer(s.Ctx, &model.Player{
		RoomID:   roomID,
		PlayerID: id,
		Name:     string(id),
		Avatar:   "fox",
		Role:     model.RoleGuesser,
		JoinedAt: joined,
	})
	s.Require().NoError(err)
	return p
}

// Room tests

func (s *Suite) TestInsertAndGetRoom() {
	room := s.insertRoom("ABCD")
	s.NotEmpty(room.ID)
	s.False(room.CreatedAt.IsZero())

	got, err := s.Store.GetRoom(s.Ctx, room.ID)
	s.Require().NoError(err)
	s.Equal(model.RoomCode("ABCD"), got.RoomCode)
	s.Equal(model.PlayerID("alice"), got.PsychicID)
	s.Nil(got.GuesserID)
	s.Nil(got.Clue)
	s.Equal(42, got.TargetAngle)
	s.Equal(model.NeutralAngle, got.GuessAngle)
	s.Equal(model.PhaseWaiting, got.Phase)
	s.Equal(model.Card{Left: "Hot", Right: "Cold"}, got.CurrentCard)
	s.Equal(1, got.RoundNumber)
	s.Equal(model.GameModeClassic, got.GameMode)
}

func (s *Suite) TestInsertRoomWithMetadata() {
	room := NewClassicRoom("MNPR")
	room.Player1Name = model.Ptr("Alice")
	room.Player1Avatar = model.Ptr("cat")

	inserted, err := s.Store.InsertRoom(s.Ctx, room)
	s.Require().NoError(err)

	got, err := s.Store.GetRoom(s.Ctx, inserted.ID)
	s.Require().NoError(err)
	meta, ok := got.Player1()
	s.Require().True(ok)
	s.Equal(model.SeatMetadata{Name: "Alice", Avatar: "cat"}, meta)
	_, ok = got.Player2()
	s.False(ok)
}

func (s *Suite) TestInsertRoomRejectsBadCode() {
	for _, code := range []model.RoomCode{"abcd", "ABC", "ABCDE", "AB1D", ""} {
		_, err := s.Store.InsertRoom(s.Ctx, NewClassicRoom(code))
		s.ErrorIs(err, model.ErrInvalidRoomCode, "code %q", code)
	}
}

func (s *Suite) TestGetRoomNotFound() {
	_, err := s.Store.GetRoom(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *Suite) TestGetRoomByCode() {
	room := s.insertRoom("WXYZ")

	got, err := s.Store.GetRoomByCode(s.Ctx, "WXYZ")
	s.Require().NoError(err)
	s.Equal(room.ID, got.ID)

	_, err = s.Store.GetRoomByCode(s.Ctx, "ZZZZ")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *Suite) TestGetRoomByCodeReturnsLatest() {
	old := NewClassicRoom("HJKL")
	old.Phase = model.PhaseEnded
	old.CreatedAt = baseTime
	_, err := s.Store.InsertRoom(s.Ctx, old)
	s.Require().NoError(err)

	fresh := NewClassicRoom("HJKL")
	fresh.CreatedAt = baseTime.Add(time.Hour)
	inserted, err := s.Store.InsertRoom(s.Ctx, fresh)
	s.Require().NoError(err)

	got, err := s.Store.GetRoomByCode(s.Ctx, "HJKL")
	s.Require().NoError(err)
	s.Equal(inserted.ID, got.ID)
	s.Equal(model.PhaseWaiting, got.Phase)
}

func (s *Suite) TestUpdateRoomPartial() {
	room := s.insertRoom("ABCD")

	updated, err := s.Store.UpdateRoom(s.Ctx, room.ID, model.RoomPatch{
		Phase: model.Ptr(model.PhaseGuessing),
		Clue:  model.Ptr("lukewarm tea"),
	})
	s.Require().NoError(err)
	s.Equal(model.PhaseGuessing, updated.Phase)

	got, err := s.Store.GetRoom(s.Ctx, room.ID)
	s.Require().NoError(err)
	s.Equal(model.PhaseGuessing, got.Phase)
	s.Require().NotNil(got.Clue)
	s.Equal("lukewarm tea", *got.Clue)
	// Untouched fields survive
	s.Equal(42, got.TargetAngle)
	s.Equal(model.PlayerID("alice"), got.PsychicID)
	s.Equal(model.Card{Left: "Hot", Right: "Cold"}, got.CurrentCard)
}

func (s *Suite) TestUpdateRoomClearsClue() {
	room := s.insertRoom("ABCD")
	_, err := s.Store.UpdateRoom(s.Ctx, room.ID, model.RoomPatch{Clue: model.Ptr("x")})
	s.Require().NoError(err)

	_, err = s.Store.UpdateRoom(s.Ctx, room.ID, model.RoomPatch{ClearClue: true, RoundNumber: model.Ptr(2)})
	s.Require().NoError(err)

	got, err := s.Store.GetRoom(s.Ctx, room.ID)
	s.Require().NoError(err)
	s.Nil(got.Clue)
	s.Equal(2, got.RoundNumber)
}

func (s *Suite) TestUpdateRoomSeatsAndScores() {
	room := s.insertRoom("ABCD")

	_, err := s.Store.UpdateRoom(s.Ctx, room.ID, model.RoomPatch{
		GuesserID:     model.Ptr(model.PlayerID("bob")),
		Player2Name:   model.Ptr("Bob"),
		Player2Avatar: model.Ptr("owl"),
		GuesserScore:  model.Ptr(4),
		PsychicScore:  model.Ptr(1),
		CurrentCard:   &model.Card{Left: "Soft", Right: "Loud"},
	})
	s.Require().NoError(err)

	got, err := s.Store.GetRoom(s.Ctx, room.ID)
	s.Require().NoError(err)
	s.True(got.IsGuesser("bob"))
	s.Equal(4, got.GuesserScore)
	s.Equal(1, got.PsychicScore)
	s.Equal(model.Card{Left: "Soft", Right: "Loud"}, got.CurrentCard)
	meta, ok := got.Player2()
	s.Require().True(ok)
	s.Equal("Bob", meta.Name)
}

func (s *Suite) TestUpdateRoomNotFound() {
	_, err := s.Store.UpdateRoom(s.Ctx, "missing", model.RoomPatch{Phase: model.Ptr(model.PhaseEnded)})
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *Suite) TestDeleteRoom() {
	room := s.insertRoom("ABCD")
	s.insertPlayer(room.ID, "bob", baseTime)

	s.Require().NoError(s.Store.DeleteRoom(s.Ctx, room.ID))

	_, err := s.Store.GetRoom(s.Ctx, room.ID)
	s.ErrorIs(err, model.ErrRoomNotFound)
	_, err = s.Store.GetRoomByCode(s.Ctx, "ABCD")
	s.ErrorIs(err, model.ErrRoomNotFound)
	players, err := s.Store.GetPlayersForRoom(s.Ctx, room.ID)
	s.Require().NoError(err)
	s.Empty(players)

	// Deleting again is harmless
	s.NoError(s.Store.DeleteRoom(s.Ctx, room.ID))
}

// Player tests

func (s *Suite) TestInsertAndListPlayersInJoinOrder() {
	room := s.insertRoom("ABCD")
	s.insertPlayer(room.ID, "carol", baseTime.Add(2*time.Second))
	s.insertPlayer(room.ID, "alice", baseTime)
	s.insertPlayer(room.ID, "bob", baseTime.Add(time.Second))

	players, err := s.Store.GetPlayersForRoom(s.Ctx, room.ID)
	s.Require().NoError(err)
	s.Require().Len(players, 3)
	s.Equal(model.PlayerID("alice"), players[0].PlayerID)
	s.Equal(model.PlayerID("bob"), players[1].PlayerID)
	s.Equal(model.PlayerID("carol"), players[2].PlayerID)
	for _, p := range players {
		s.NotEmpty(p.ID)
		s.Equal(room.ID, p.RoomID)
		s.Nil(p.GuessAngle)
		s.False(p.LockedIn)
	}
}

func (s *Suite) TestInsertPlayerUnknownRoom() {
	_, err := s.Store.InsertPlayer(s.Ctx, &model.Player{RoomID: "missing", PlayerID: "bob", Name: "Bob"})
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *Suite) TestPlayersAreScopedToRoom() {
	a := s.insertRoom("ABCD")
	b := s.insertRoom("EFGH")
	s.insertPlayer(a.ID, "alice", baseTime)
	s.insertPlayer(b.ID, "bob", baseTime)

	players, err := s.Store.GetPlayersForRoom(s.Ctx, a.ID)
	s.Require().NoError(err)
	s.Require().Len(players, 1)
	s.Equal(model.PlayerID("alice"), players[0].PlayerID)
}

func (s *Suite) TestGetPlayersEmpty() {
	room := s.insertRoom("ABCD")
	players, err := s.Store.GetPlayersForRoom(s.Ctx, room.ID)
	s.Require().NoError(err)
	s.NotNil(players)
	s.Empty(players)
}

func (s *Suite) TestUpdatePlayerPartial() {
	room := s.insertRoom("ABCD")
	s.insertPlayer(room.ID, "bob", baseTime)

	updated, err := s.Store.UpdatePlayer(s.Ctx, room.ID, "bob", model.PlayerPatch{
		GuessAngle: model.Ptr(70),
		LockedIn:   model.Ptr(true),
	})
	s.Require().NoError(err)
	s.True(updated.LockedIn)

	players, err := s.Store.GetPlayersForRoom(s.Ctx, room.ID)
	s.Require().NoError(err)
	s.Require().Len(players, 1)
	s.Require().NotNil(players[0].GuessAngle)
	s.Equal(70, *players[0].GuessAngle)
	s.True(players[0].LockedIn)
	s.Equal("bob", players[0].Name)
	s.Equal(model.RoleGuesser, players[0].Role)

	_, err = s.Store.UpdatePlayer(s.Ctx, room.ID, "bob", model.PlayerPatch{
		ClearGuessAngle: true,
		LockedIn:        model.Ptr(false),
		Role:            model.Ptr(model.RolePsychic),
		Score:           model.Ptr(3),
	})
	s.Require().NoError(err)

	players, err = s.Store.GetPlayersForRoom(s.Ctx, room.ID)
	s.Require().NoError(err)
	s.Nil(players[0].GuessAngle)
	s.False(players[0].LockedIn)
	s.Equal(model.RolePsychic, players[0].Role)
	s.Equal(3, players[0].Score)
}

func (s *Suite) TestUpdatePlayerNotFound() {
	room := s.insertRoom("ABCD")
	_, err := s.Store.UpdatePlayer(s.Ctx, room.ID, "nobody", model.PlayerPatch{Score: model.Ptr(1)})
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestDeletePlayer() {
	room := s.insertRoom("ABCD")
	s.insertPlayer(room.ID, "alice", baseTime)
	s.insertPlayer(room.ID, "bob", baseTime.Add(time.Second))

	s.Require().NoError(s.Store.DeletePlayer(s.Ctx, room.ID, "alice"))

	players, err := s.Store.GetPlayersForRoom(s.Ctx, room.ID)
	s.Require().NoError(err)
	s.Require().Len(players, 1)
	s.Equal(model.PlayerID("bob"), players[0].PlayerID)

	s.NoError(s.Store.DeletePlayer(s.Ctx, room.ID, "alice"))
}
