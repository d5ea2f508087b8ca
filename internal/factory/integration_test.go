package factory

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/spectrumgame-go/internal/config"
	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/poller"
	"github.com/mcoot/spectrumgame-go/internal/storage/httpstore"
	sqlitestorage "github.com/mcoot/spectrumgame-go/internal/storage/sqlite"
	"github.com/mcoot/spectrumgame-go/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	app    *TestApp
	server *httptest.Server
	ctx    context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.server = httptest.NewServer(s.app.Handler)
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.server.Close()
	s.Require().NoError(s.app.Close())
}

func (s *IntegrationSuite) remoteSession(id model.PlayerID) *Session {
	return s.app.NewSession(id, httpstore.New(httpstore.Config{BaseURL: s.server.URL, PlayerID: id}))
}

func (s *IntegrationSuite) poll(p *poller.Poller) model.Snapshot {
	snap, ok := p.PollOnce(s.ctx)
	s.Require().True(ok)
	return snap
}

// Test: two participants play a classic round through the record store API
func (s *IntegrationSuite) TestClassicGameOverHTTP() {
	alice := s.remoteSession("alice")
	bob := s.remoteSession("bob")

	// Card Hot/Cold, target 100
	s.app.MockRandom.QueueIntn(0, 100)
	s.app.MockRandom.QueueString("WXYZ")
	room, err := alice.Classic.CreateRoom(s.ctx, "Alice", "fox")
	s.Require().NoError(err)
	s.Equal(model.RoomCode("WXYZ"), room.RoomCode)

	_, err = bob.Classic.JoinRoom(s.ctx, "WXYZ", "Bob", "owl")
	s.Require().NoError(err)

	alicePoll := alice.Poller(s.ctx, model.GameModeClassic, room.ID, poller.DefaultConfig())
	bobPoll := bob.Poller(s.ctx, model.GameModeClassic, room.ID, poller.DefaultConfig())

	s.poll(alicePoll)
	s.True(alice.Classic.View().HasPlayer2)
	s.Equal("Bob", alice.Classic.View().Player2.Name)

	s.Require().NoError(alice.Classic.StartGame(s.ctx))
	s.Require().NoError(alice.Classic.SubmitClue(s.ctx, "Coffee"))

	snap := s.poll(bobPoll)
	s.Equal(model.PhaseGuessing, snap.Room.Phase)
	s.Equal("Coffee", *bob.Classic.View().Room.Clue)

	s.Require().NoError(bob.Classic.UpdateGuessAngle(s.ctx, 120))
	s.Equal(120, s.poll(alicePoll).Room.GuessAngle)

	points, err := bob.Classic.FinalizeGuess(s.ctx, 104)
	s.Require().NoError(err)
	s.Equal(4, points)

	snap = s.poll(alicePoll)
	s.Equal(model.PhaseRevealed, snap.Room.Phase)
	s.Equal(4, snap.Room.GuesserScore)
	s.Equal(0, snap.Room.PsychicScore)

	// Next round swaps the seats
	s.app.MockRandom.QueueIntn(1, 30)
	s.Require().NoError(alice.Classic.NextRound(s.ctx, ""))

	snap = s.poll(bobPoll)
	s.Equal(2, snap.Room.RoundNumber)
	s.Equal(model.PhaseClue, snap.Room.Phase)
	s.Equal(model.PlayerID("bob"), snap.Room.PsychicID)
	s.Equal(model.PlayerID("alice"), *snap.Room.GuesserID)
	s.Equal(30, snap.Room.TargetAngle)
	s.Equal(model.NeutralAngle, snap.Room.GuessAngle)
	s.Nil(snap.Room.Clue)
	s.True(bob.Classic.View().IsPsychic)

	s.Require().NoError(bob.Classic.EndGame(s.ctx))
	s.Equal(model.PhaseEnded, s.poll(alicePoll).Room.Phase)

	// The poller stops by itself once it sees the ended room
	s.NoError(alicePoll.Run(s.ctx))
}

// Test: three participants play a party round and rotate the psychic
func (s *IntegrationSuite) TestPartyRoundAndRotation() {
	p1 := s.app.NewSession("p1", nil)
	p2 := s.app.NewSession("p2", nil)
	p3 := s.app.NewSession("p3", nil)

	s.app.MockRandom.QueueIntn(0, 60)
	s.app.MockRandom.QueueString("PRTY")
	room, err := p1.Party.CreateRoom(s.ctx, "One", "fox")
	s.Require().NoError(err)

	s.app.MockClock.Advance(time.Second)
	_, err = p2.Party.JoinRoom(s.ctx, "PRTY", "Two", "owl")
	s.Require().NoError(err)
	s.app.MockClock.Advance(time.Second)
	_, err = p3.Party.JoinRoom(s.ctx, "PRTY", "Three", "cat")
	s.Require().NoError(err)

	pollers := []*poller.Poller{
		p1.Poller(s.ctx, model.GameModeParty, room.ID, poller.DefaultConfig()),
		p2.Poller(s.ctx, model.GameModeParty, room.ID, poller.DefaultConfig()),
		p3.Poller(s.ctx, model.GameModeParty, room.ID, poller.DefaultConfig()),
	}
	pollAll := func() {
		for _, p := range pollers {
			s.poll(p)
		}
	}

	s.Require().NoError(p1.Party.StartGame(s.ctx))
	s.Require().NoError(p1.Party.SubmitClue(s.ctx, "Coffee"))
	pollAll()

	revealed, err := p2.Party.LockInGuess(s.ctx, 50)
	s.Require().NoError(err)
	s.False(revealed)
	revealed, err = p3.Party.LockInGuess(s.ctx, 70)
	s.Require().NoError(err)
	s.True(revealed)

	// Each guesser scores themselves on seeing the reveal
	pollAll()
	pollAll()
	players, err := s.app.Storage.GetPlayersForRoom(s.ctx, room.ID)
	s.Require().NoError(err)
	s.Require().Len(players, 3)
	s.Equal(0, model.FindPlayer(players, "p1").Score)
	s.Equal(3, model.FindPlayer(players, "p2").Score)
	s.Equal(3, model.FindPlayer(players, "p3").Score)

	s.app.MockRandom.QueueIntn(0, 10)
	s.Require().NoError(p1.Party.NextRound(s.ctx, ""))
	pollAll()

	snap := s.poll(pollers[0])
	s.Equal(2, snap.Room.RoundNumber)
	s.Equal(model.PlayerID("p2"), snap.Room.PsychicID)
	for _, p := range snap.Players {
		s.Equal(model.RoleFor(snap.Room, p.PlayerID), p.Role, p.PlayerID)
		s.False(p.LockedIn)
		s.Nil(p.GuessAngle)
	}
	s.Equal(3, model.FindPlayer(snap.Players, "p2").Score)
	s.Equal(model.PlayerID("p3"), p1.Party.View().NextPsychic)
}

func TestNewSelectsStorage(t *testing.T) {
	cfg := config.Config{PublicURL: "http://localhost:8080"}

	cfg.Storage.Type = config.StorageMemory
	app, err := New(cfg, testutil.NopLogger())
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if app.HubManager != nil {
		t.Fatal("events should be off unless enabled")
	}
	_ = app.Close()

	cfg.Storage.Type = config.StorageSQLite
	cfg.Storage.SQLite = sqlitestorage.Config{DSN: ":memory:"}
	cfg.SSE.Enabled = true
	app, err = New(cfg, testutil.NopLogger())
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if app.StorageType != config.StorageSQLite || app.Broadcaster == nil {
		t.Fatalf("unexpected app: %+v", app)
	}
	if err := app.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	cfg.Storage.Type = "postgres"
	if _, err := New(cfg, testutil.NopLogger()); err == nil {
		t.Fatal("expected error for unknown storage type")
	}
}
