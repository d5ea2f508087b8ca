package classic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/spectrumgame-go/internal/dependencies/mocks"
	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/services/cards"
	"github.com/mcoot/spectrumgame-go/internal/services/identity"
	"github.com/mcoot/spectrumgame-go/internal/services/session"
	"github.com/mcoot/spectrumgame-go/internal/storage/memory"
	"github.com/mcoot/spectrumgame-go/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	alice   *Controller
	bob     *Controller
	ctx     context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.alice = s.newController(identity.Fixed("alice"))
	s.bob = s.newController(identity.Fixed("bob"))
	s.ctx = context.Background()
}

func (s *ControllerSuite) newController(id identity.Provider) *Controller {
	return NewController(s.storage, id, cards.New(s.random), s.clock, testutil.NopLogger())
}

// createRoom has alice open ABCD with the given target and the first card of
// the classic deck
func (s *ControllerSuite) createRoom(target int) *model.Room {
	s.random.QueueIntn(0, target)
	s.random.QueueString("ABCD")
	room, err := s.alice.CreateRoom(s.ctx, "Alice", "fox")
	s.Require().NoError(err)
	return room
}

func (s *ControllerSuite) startedRoom(target int) *model.Room {
	room := s.createRoom(target)
	_, err := s.bob.JoinRoom(s.ctx, "ABCD", "Bob", "owl")
	s.Require().NoError(err)
	s.Require().NoError(s.alice.StartGame(s.ctx))
	return room
}

func (s *ControllerSuite) guessingRoom(target int) *model.Room {
	room := s.startedRoom(target)
	s.Require().NoError(s.alice.SubmitClue(s.ctx, "Coffee"))
	return room
}

func (s *ControllerSuite) stored(id model.RoomID) *model.Room {
	room, err := s.storage.GetRoom(s.ctx, id)
	s.Require().NoError(err)
	return room
}

func (s *ControllerSuite) observe(c *Controller, id model.RoomID) {
	s.Require().NoError(c.Observe(s.ctx, model.Snapshot{Room: s.stored(id), FetchedAt: s.clock.Now()}))
}

// CreateRoom tests

func (s *ControllerSuite) TestCreateRoom() {
	room := s.createRoom(42)

	s.Equal(model.RoomCode("ABCD"), room.RoomCode)
	s.Equal(model.PlayerID("alice"), room.PsychicID)
	s.Nil(room.GuesserID)
	s.Equal(42, room.TargetAngle)
	s.Equal(model.NeutralAngle, room.GuessAngle)
	s.Equal(model.PhaseWaiting, room.Phase)
	s.Equal(model.Card{Left: "Hot", Right: "Cold"}, room.CurrentCard)
	s.Equal(1, room.RoundNumber)
	s.Equal(model.GameModeClassic, room.GameMode)

	stored := s.stored(room.ID)
	s.Equal("Alice", *stored.Player1Name)
	s.Equal("fox", *stored.Player1Avatar)

	view := s.alice.View()
	s.True(view.IsPsychic)
	s.False(view.IsGuesser)
	s.False(view.HasPlayer2)
	s.Equal(model.SeatMetadata{Name: "Alice", Avatar: "fox"}, view.Player1)
}

func (s *ControllerSuite) TestCreateRoomWaitsForIdentity() {
	c := s.newController(identity.Pending("alice"))
	s.random.QueueString("ABCD")

	_, err := c.CreateRoom(s.ctx, "Alice", "fox")
	s.ErrorIs(err, model.ErrIdentityNotReady)

	_, err = s.storage.GetRoomByCode(s.ctx, "ABCD")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ControllerSuite) TestCreateRoomRequiresName() {
	_, err := s.alice.CreateRoom(s.ctx, "  ", "fox")
	s.ErrorIs(err, model.ErrEmptyName)
}

func (s *ControllerSuite) TestCreateRoomSkipsTakenCode() {
	s.createRoom(42)

	s.random.QueueIntn(0, 10)
	s.random.QueueString("ABCD", "WXYZ")
	room, err := s.bob.CreateRoom(s.ctx, "Bob", "owl")
	s.Require().NoError(err)
	s.Equal(model.RoomCode("WXYZ"), room.RoomCode)
}

func (s *ControllerSuite) TestCreateRoomWithoutMetadataColumns() {
	s.storage = memory.New(memory.WithLegacySchema())
	s.alice = s.newController(identity.Fixed("alice"))
	s.bob = s.newController(identity.Fixed("bob"))

	room := s.createRoom(42)
	s.Nil(s.stored(room.ID).Player1Name)

	view := s.alice.View()
	s.Equal(model.SeatMetadata{Name: "Alice", Avatar: "fox"}, view.Player1)

	_, err := s.bob.JoinRoom(s.ctx, "ABCD", "Bob", "owl")
	s.Require().NoError(err)
	s.True(s.stored(room.ID).IsGuesser("bob"))

	view = s.bob.View()
	s.True(view.HasPlayer2)
	s.Equal(model.SeatMetadata{Name: "Bob", Avatar: "owl"}, view.Player2)
}

// JoinRoom tests

func (s *ControllerSuite) TestJoinRoom() {
	room := s.createRoom(42)

	joined, err := s.bob.JoinRoom(s.ctx, "abcd", "Bob", "owl")
	s.Require().NoError(err)
	s.Equal(room.ID, joined.ID)
	s.True(joined.IsGuesser("bob"))

	stored := s.stored(room.ID)
	s.Equal("Bob", *stored.Player2Name)
	s.Equal("owl", *stored.Player2Avatar)

	view := s.bob.View()
	s.True(view.IsGuesser)
	s.Equal(model.SeatMetadata{Name: "Alice", Avatar: "fox"}, view.Player1)
	s.Equal(model.SeatMetadata{Name: "Bob", Avatar: "owl"}, view.Player2)
}

func (s *ControllerSuite) TestJoinOwnRoomIsRejoin() {
	room := s.createRoom(42)

	again, err := s.alice.JoinRoom(s.ctx, "ABCD", "Alice", "fox")
	s.Require().NoError(err)
	s.Equal(room.ID, again.ID)
	s.Nil(s.stored(room.ID).GuesserID)
}

func (s *ControllerSuite) TestGuesserCanRejoin() {
	s.createRoom(42)
	_, err := s.bob.JoinRoom(s.ctx, "ABCD", "Bob", "owl")
	s.Require().NoError(err)

	_, err = s.bob.JoinRoom(s.ctx, "ABCD", "Bob", "owl")
	s.NoError(err)
}

func (s *ControllerSuite) TestJoinFullRoom() {
	s.createRoom(42)
	_, err := s.bob.JoinRoom(s.ctx, "ABCD", "Bob", "owl")
	s.Require().NoError(err)

	carol := s.newController(identity.Fixed("carol"))
	_, err = carol.JoinRoom(s.ctx, "ABCD", "Carol", "cat")
	s.ErrorIs(err, model.ErrRoomFull)
}

func (s *ControllerSuite) TestJoinRoomErrors() {
	_, err := s.bob.JoinRoom(s.ctx, "ABC", "Bob", "owl")
	s.ErrorIs(err, model.ErrInvalidRoomCode)

	_, err = s.bob.JoinRoom(s.ctx, "ABCD", "", "owl")
	s.ErrorIs(err, model.ErrEmptyName)

	_, err = s.bob.JoinRoom(s.ctx, "ZZZZ", "Bob", "owl")
	s.ErrorIs(err, model.ErrRoomNotFound)

	_, err = s.storage.InsertRoom(s.ctx, &model.Room{
		RoomCode:    "PRTY",
		PsychicID:   "carol",
		Phase:       model.PhaseWaiting,
		RoundNumber: 1,
		GameMode:    model.GameModeParty,
	})
	s.Require().NoError(err)
	_, err = s.bob.JoinRoom(s.ctx, "PRTY", "Bob", "owl")
	s.ErrorIs(err, model.ErrWrongGameMode)
}

func (s *ControllerSuite) TestJoinEndedRoom() {
	s.createRoom(42)
	s.Require().NoError(s.alice.EndGame(s.ctx))

	_, err := s.bob.JoinRoom(s.ctx, "ABCD", "Bob", "owl")
	s.ErrorIs(err, model.ErrGameEnded)
}

func (s *ControllerSuite) TestResume() {
	room := s.createRoom(42)

	c := s.newController(identity.Fixed("alice"))
	resumed, err := c.Resume(s.ctx, room.ID)
	s.Require().NoError(err)
	s.Equal(room.ID, resumed.ID)
	s.True(c.View().IsPsychic)

	_, err = s.bob.Resume(s.ctx, room.ID)
	s.ErrorIs(err, model.ErrNotInRoom)
}

// Phase tests

func (s *ControllerSuite) TestActionsRequireRoom() {
	s.ErrorIs(s.alice.StartGame(s.ctx), model.ErrNotInRoom)
	s.ErrorIs(s.alice.SubmitClue(s.ctx, "x"), model.ErrNotInRoom)
	s.ErrorIs(s.alice.EndGame(s.ctx), model.ErrNotInRoom)
	s.ErrorIs(s.alice.LeaveRoom(s.ctx), model.ErrNotInRoom)
	_, err := s.alice.FinalizeGuess(s.ctx, 90)
	s.ErrorIs(err, model.ErrNotInRoom)
}

func (s *ControllerSuite) TestStartGame() {
	room := s.createRoom(42)
	s.ErrorIs(s.alice.StartGame(s.ctx), model.ErrInsufficientPlayers)

	_, err := s.bob.JoinRoom(s.ctx, "ABCD", "Bob", "owl")
	s.Require().NoError(err)
	s.ErrorIs(s.bob.StartGame(s.ctx), model.ErrNotPsychic)

	s.Require().NoError(s.alice.StartGame(s.ctx))
	s.Equal(model.PhaseClue, s.stored(room.ID).Phase)

	s.ErrorIs(s.alice.StartGame(s.ctx), model.ErrInvalidPhase)
}

func (s *ControllerSuite) TestOnlyStartLeavesWaiting() {
	s.createRoom(42)
	_, err := s.bob.JoinRoom(s.ctx, "ABCD", "Bob", "owl")
	s.Require().NoError(err)

	s.ErrorIs(s.alice.SubmitClue(s.ctx, "Coffee"), model.ErrInvalidPhase)
	_, err = s.bob.FinalizeGuess(s.ctx, 90)
	s.ErrorIs(err, model.ErrInvalidPhase)
	s.ErrorIs(s.alice.NextRound(s.ctx, ""), model.ErrInvalidPhase)
}

func (s *ControllerSuite) TestSubmitClue() {
	room := s.startedRoom(42)

	s.ErrorIs(s.bob.SubmitClue(s.ctx, "Coffee"), model.ErrNotPsychic)
	s.ErrorIs(s.alice.SubmitClue(s.ctx, " "), model.ErrEmptyClue)

	s.Require().NoError(s.alice.SubmitClue(s.ctx, "Coffee"))
	stored := s.stored(room.ID)
	s.Equal(model.PhaseGuessing, stored.Phase)
	s.Equal("Coffee", *stored.Clue)
	s.Equal(model.PhaseGuessing, s.alice.View().Room.Phase)
}

func (s *ControllerSuite) TestSkipClue() {
	room := s.startedRoom(42)

	s.Require().NoError(s.alice.SkipClue(s.ctx))
	stored := s.stored(room.ID)
	s.Equal(model.PhaseGuessing, stored.Phase)
	s.Equal(model.ClueVerbal, *stored.Clue)
}

func (s *ControllerSuite) TestUpdateGuessAngle() {
	room := s.startedRoom(42)
	s.ErrorIs(s.bob.UpdateGuessAngle(s.ctx, 95), model.ErrInvalidPhase)

	s.Require().NoError(s.alice.SubmitClue(s.ctx, "Coffee"))
	s.ErrorIs(s.alice.UpdateGuessAngle(s.ctx, 95), model.ErrNotGuesser)
	s.ErrorIs(s.bob.UpdateGuessAngle(s.ctx, 181), model.ErrInvalidAngle)

	s.Require().NoError(s.bob.UpdateGuessAngle(s.ctx, 95))
	s.observe(s.alice, room.ID)
	s.Equal(95, s.alice.View().Room.GuessAngle)
	s.Equal(model.PhaseGuessing, s.alice.View().Room.Phase)
}

func (s *ControllerSuite) TestFinalizeGuess() {
	room := s.guessingRoom(90)

	_, err := s.alice.FinalizeGuess(s.ctx, 92)
	s.ErrorIs(err, model.ErrNotGuesser)

	points, err := s.bob.FinalizeGuess(s.ctx, 92)
	s.Require().NoError(err)
	s.Equal(4, points)

	stored := s.stored(room.ID)
	s.Equal(model.PhaseRevealed, stored.Phase)
	s.Equal(92, stored.GuessAngle)
	s.Equal(4, stored.GuesserScore)
	s.Equal(0, stored.PsychicScore)

	_, err = s.bob.FinalizeGuess(s.ctx, 92)
	s.ErrorIs(err, model.ErrInvalidPhase)
	s.Equal(4, s.stored(room.ID).GuesserScore)
}

// scoreFailingStore refuses score writes while failScores is set
type scoreFailingStore struct {
	*memory.Storage
	failScores bool
}

func (f *scoreFailingStore) UpdateRoom(ctx context.Context, id model.RoomID, patch model.RoomPatch) (*model.Room, error) {
	if f.failScores && (patch.GuesserScore != nil || patch.PsychicScore != nil) {
		return nil, errors.New("connection reset")
	}
	return f.Storage.UpdateRoom(ctx, id, patch)
}

func (s *ControllerSuite) TestFinalizeGuessScoreWriteFails() {
	room := s.guessingRoom(90)
	store := &scoreFailingStore{Storage: s.storage, failScores: true}
	bob := NewController(store, identity.Fixed("bob"), cards.New(s.random), s.clock, testutil.NopLogger())
	_, err := bob.Resume(s.ctx, room.ID)
	s.Require().NoError(err)

	points, err := bob.FinalizeGuess(s.ctx, 92)
	s.ErrorIs(err, model.ErrScoreNotRecorded)
	s.Equal(4, points)

	stored := s.stored(room.ID)
	s.Equal(model.PhaseRevealed, stored.Phase)
	s.Equal(0, stored.GuesserScore)

	_, err = bob.FinalizeGuess(s.ctx, 92)
	s.ErrorIs(err, model.ErrInvalidPhase)

	store.failScores = false
	s.Require().NoError(bob.UpdateScore(s.ctx, points))
	s.Equal(4, s.stored(room.ID).GuesserScore)
}

func (s *ControllerSuite) TestFinalizeGuessMiss() {
	room := s.guessingRoom(10)

	points, err := s.bob.FinalizeGuess(s.ctx, 170)
	s.Require().NoError(err)
	s.Equal(0, points)
	s.Equal(0, s.stored(room.ID).GuesserScore)
}

// Round tests

func (s *ControllerSuite) TestNextRoundSwapsSeats() {
	room := s.guessingRoom(90)
	_, err := s.bob.FinalizeGuess(s.ctx, 92)
	s.Require().NoError(err)

	s.random.QueueIntn(1, 33)
	s.Require().NoError(s.alice.NextRound(s.ctx, ""))

	stored := s.stored(room.ID)
	s.Equal(model.PlayerID("bob"), stored.PsychicID)
	s.True(stored.IsGuesser("alice"))
	s.Equal(2, stored.RoundNumber)
	s.Equal(33, stored.TargetAngle)
	s.Equal(model.NeutralAngle, stored.GuessAngle)
	s.Equal(model.PhaseClue, stored.Phase)
	s.Nil(stored.Clue)
	s.Equal(model.Card{Left: "Overrated", Right: "Underrated"}, stored.CurrentCard)

	s.observe(s.bob, room.ID)
	s.True(s.bob.View().IsPsychic)
	s.True(s.alice.View().IsGuesser)
}

func (s *ControllerSuite) TestNextRoundUsesRequestedDeck() {
	room := s.guessingRoom(90)
	_, err := s.bob.FinalizeGuess(s.ctx, 92)
	s.Require().NoError(err)

	s.random.QueueIntn(0, 33)
	s.Require().NoError(s.bob.NextRound(s.ctx, "culture"))
	s.Equal(model.Card{Left: "Bad movie", Right: "Good movie"}, s.stored(room.ID).CurrentCard)

	s.ErrorIs(s.bob.NextRound(s.ctx, "culture"), model.ErrInvalidPhase)
}

func (s *ControllerSuite) TestNextRoundEndsLimitedGame() {
	s.Require().NoError(s.alice.SetSettings(session.Settings{Deck: cards.DefaultDeck, TotalRounds: 1}))
	room := s.guessingRoom(90)
	_, err := s.bob.FinalizeGuess(s.ctx, 92)
	s.Require().NoError(err)

	s.Require().NoError(s.alice.NextRound(s.ctx, ""))
	stored := s.stored(room.ID)
	s.Equal(model.PhaseEnded, stored.Phase)
	s.Equal(1, stored.RoundNumber)
}

func (s *ControllerSuite) TestSettingsSurviveSnapshots() {
	settings := session.Settings{Deck: "food", TotalRounds: 5}
	s.Require().NoError(s.alice.SetSettings(settings))
	room := s.createRoom(42)

	s.observe(s.alice, room.ID)
	s.Equal(settings, s.alice.View().Settings)

	s.ErrorIs(s.alice.SetSettings(session.Settings{Deck: "nope"}), model.ErrUnknownDeck)
	s.Equal(settings, s.alice.Settings())
}

func (s *ControllerSuite) TestScoresAreSeatScoped() {
	room := s.guessingRoom(90)
	_, err := s.bob.FinalizeGuess(s.ctx, 92)
	s.Require().NoError(err)

	// round 2: bob is psychic, alice guesses 10 away from 50
	s.random.QueueIntn(0, 50)
	s.Require().NoError(s.bob.NextRound(s.ctx, ""))
	s.Require().NoError(s.bob.SubmitClue(s.ctx, "Tea"))
	points, err := s.alice.FinalizeGuess(s.ctx, 60)
	s.Require().NoError(err)
	s.Equal(3, points)

	stored := s.stored(room.ID)
	s.Equal(7, stored.GuesserScore)
	s.Equal(0, stored.PsychicScore)
}

func (s *ControllerSuite) TestUpdateScoreUsesCurrentSeat() {
	room := s.startedRoom(42)

	s.Require().NoError(s.alice.UpdateScore(s.ctx, 2))
	s.Require().NoError(s.bob.UpdateScore(s.ctx, 3))

	stored := s.stored(room.ID)
	s.Equal(2, stored.PsychicScore)
	s.Equal(3, stored.GuesserScore)
}

// Card tests

func (s *ControllerSuite) TestSetCustomCard() {
	room := s.startedRoom(42)

	s.ErrorIs(s.bob.SetCustomCard(s.ctx, "Ugly", "Pretty"), model.ErrNotPsychic)
	s.ErrorIs(s.alice.SetCustomCard(s.ctx, "Ugly", ""), model.ErrEmptyCardLabel)

	s.Require().NoError(s.alice.SetCustomCard(s.ctx, "Ugly", "Pretty"))
	s.Equal(model.Card{Left: "Ugly", Right: "Pretty"}, s.stored(room.ID).CurrentCard)

	s.Require().NoError(s.alice.SubmitClue(s.ctx, "Coffee"))
	s.ErrorIs(s.alice.SetCustomCard(s.ctx, "A", "B"), model.ErrInvalidPhase)
}

func (s *ControllerSuite) TestChangeCard() {
	room := s.startedRoom(42)
	s.Require().NoError(s.alice.SetSettings(session.Settings{Deck: "food"}))

	s.random.QueueIntn(1)
	s.Require().NoError(s.alice.ChangeCard(s.ctx))
	s.Equal(model.Card{Left: "Bland", Right: "Spicy"}, s.stored(room.ID).CurrentCard)
}

// End tests

func (s *ControllerSuite) TestEndGameIsTerminal() {
	room := s.guessingRoom(90)

	s.Require().NoError(s.bob.EndGame(s.ctx))
	s.Equal(model.PhaseEnded, s.stored(room.ID).Phase)

	s.Require().NoError(s.alice.EndGame(s.ctx))
	s.ErrorIs(s.alice.StartGame(s.ctx), model.ErrGameEnded)
	s.ErrorIs(s.alice.SubmitClue(s.ctx, "x"), model.ErrGameEnded)
	s.ErrorIs(s.bob.UpdateGuessAngle(s.ctx, 10), model.ErrGameEnded)
	_, err := s.bob.FinalizeGuess(s.ctx, 90)
	s.ErrorIs(err, model.ErrGameEnded)
	s.ErrorIs(s.alice.NextRound(s.ctx, ""), model.ErrGameEnded)
	s.ErrorIs(s.alice.ChangeCard(s.ctx), model.ErrGameEnded)
	s.Equal(model.PhaseEnded, s.stored(room.ID).Phase)
}

func (s *ControllerSuite) TestLeaveRoomEndsItForBoth() {
	room := s.startedRoom(42)

	s.Require().NoError(s.bob.LeaveRoom(s.ctx))
	s.Nil(s.bob.View().Room)
	s.Equal(model.PhaseEnded, s.stored(room.ID).Phase)

	s.observe(s.alice, room.ID)
	s.True(s.alice.View().Room.IsEnded())
}

func (s *ControllerSuite) TestObserveIgnoresOtherRooms() {
	room := s.createRoom(42)

	other := &model.Room{ID: "other", Phase: model.PhaseEnded}
	s.Require().NoError(s.alice.Observe(s.ctx, model.Snapshot{Room: other}))
	s.Equal(room.ID, s.alice.View().Room.ID)
	s.Equal(model.PhaseWaiting, s.alice.View().Room.Phase)
}

// Scenario

func (s *ControllerSuite) TestClassicGameScenario() {
	room := s.createRoom(90)
	_, err := s.bob.JoinRoom(s.ctx, string(room.RoomCode), "Bob", "owl")
	s.Require().NoError(err)

	s.Require().NoError(s.alice.StartGame(s.ctx))
	s.Equal(model.PhaseClue, s.stored(room.ID).Phase)

	s.Require().NoError(s.alice.SubmitClue(s.ctx, "Coffee"))
	s.Equal(model.PhaseGuessing, s.stored(room.ID).Phase)

	s.Require().NoError(s.bob.UpdateGuessAngle(s.ctx, 95))
	s.Require().NoError(s.bob.UpdateGuessAngle(s.ctx, 95))
	points, err := s.bob.FinalizeGuess(s.ctx, 92)
	s.Require().NoError(err)
	s.Equal(4, points)

	stored := s.stored(room.ID)
	s.Equal(model.PhaseRevealed, stored.Phase)
	s.Equal(4, stored.GuesserScore)

	s.random.QueueIntn(0, 120)
	s.Require().NoError(s.bob.NextRound(s.ctx, ""))

	stored = s.stored(room.ID)
	s.Equal(model.PlayerID("bob"), stored.PsychicID)
	s.True(stored.IsGuesser("alice"))
	s.Equal(2, stored.RoundNumber)
}
