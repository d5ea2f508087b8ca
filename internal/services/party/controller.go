package party

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mcoot/spectrumgame-go/internal/dependencies/clock"
	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/services/cards"
	"github.com/mcoot/spectrumgame-go/internal/services/identity"
	"github.com/mcoot/spectrumgame-go/internal/services/session"
	"github.com/mcoot/spectrumgame-go/internal/storage"
)

// MinPlayers is the smallest roster a party game can start with
const MinPlayers = 2

// Controller drives a party room from one participant's side. The caller
// only ever writes its own roster row; when a new round is observed it
// resets that row itself, and when a round is revealed it scores itself.
type Controller struct {
	storage  storage.Storage
	identity identity.Provider
	cards    *cards.Generator
	clock    clock.Clock
	logger   *slog.Logger

	mu       sync.Mutex
	me       model.PlayerID
	room     *model.Room
	players  []model.Player
	settings session.Settings
	scores   *session.ScoreGuard

	// lastProcessedRound is the latest round this client has reset its own
	// row for
	lastProcessedRound int
}

// View is the local participant's picture of the room
type View struct {
	Room           *model.Room
	Players        []model.Player
	Me             model.PlayerID
	Role           model.PlayerRole
	Self           *model.Player
	NextPsychic    model.PlayerID
	IsNextPsychic  bool
	ProcessedRound int
	Settings       session.Settings
}

// NewController creates a party Controller
func NewController(
	storage storage.Storage,
	identity identity.Provider,
	cards *cards.Generator,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:  storage,
		identity: identity,
		cards:    cards,
		clock:    clock,
		logger:   logger.With(slog.String("mode", string(model.GameModeParty))),
		settings: session.DefaultSettings(),
		scores:   session.NewScoreGuard(),
	}
}

// CreateRoom opens a new party room with the caller as the first psychic
func (c *Controller) CreateRoom(ctx context.Context, name, avatar string) (*model.Room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	me, err := session.ResolveIdentity(ctx, c.identity)
	if err != nil {
		return nil, err
	}
	name, err = session.ValidateName(name)
	if err != nil {
		return nil, err
	}

	card, err := c.cards.PickCard(c.settings.Deck)
	if err != nil {
		return nil, err
	}
	code, err := session.AllocateRoomCode(ctx, c.storage, c.cards)
	if err != nil {
		return nil, err
	}

	room, _, err := session.InsertRoom(ctx, c.storage, &model.Room{
		RoomCode:    code,
		PsychicID:   me,
		TargetAngle: c.cards.GenerateTarget(),
		GuessAngle:  model.NeutralAngle,
		Phase:       model.PhaseWaiting,
		CurrentCard: card,
		RoundNumber: 1,
		GameMode:    model.GameModeParty,
	}, c.logger)
	if err != nil {
		return nil, err
	}

	if _, err := c.storage.InsertPlayer(ctx, &model.Player{
		RoomID:   room.ID,
		PlayerID: me,
		Name:     name,
		Avatar:   avatar,
		Role:     model.RolePsychic,
		JoinedAt: c.clock.Now(),
	}); err != nil {
		return nil, err
	}

	c.attach(me, room)
	if err := c.refreshPlayers(ctx); err != nil {
		return nil, err
	}

	c.logger.Info("room created",
		slog.String("room_id", string(room.ID)),
		slog.String("room_code", string(room.RoomCode)))
	return room.Clone(), nil
}

// JoinRoom adds the caller to the roster of the room with the given code.
// Joining a room the caller is already in is a rejoin.
func (c *Controller) JoinRoom(ctx context.Context, code, name, avatar string) (*model.Room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	me, err := session.ResolveIdentity(ctx, c.identity)
	if err != nil {
		return nil, err
	}
	name, err = session.ValidateName(name)
	if err != nil {
		return nil, err
	}
	roomCode, err := session.ParseRoomCode(code)
	if err != nil {
		return nil, err
	}

	room, err := c.storage.GetRoomByCode(ctx, roomCode)
	if err != nil {
		return nil, err
	}
	if room.GameMode != model.GameModeParty {
		return nil, model.ErrWrongGameMode
	}
	if room.IsEnded() {
		return nil, model.ErrGameEnded
	}

	players, err := c.storage.GetPlayersForRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	if model.FindPlayer(players, me) == nil {
		if _, err := c.storage.InsertPlayer(ctx, &model.Player{
			RoomID:   room.ID,
			PlayerID: me,
			Name:     name,
			Avatar:   avatar,
			Role:     model.RoleFor(room, me),
			JoinedAt: c.clock.Now(),
		}); err != nil {
			return nil, err
		}
		c.logger.Info("joined room",
			slog.String("room_id", string(room.ID)),
			slog.String("room_code", string(room.RoomCode)))
	} else {
		c.logger.Info("rejoined room", slog.String("room_id", string(room.ID)))
	}

	c.attach(me, room)
	if err := c.refreshPlayers(ctx); err != nil {
		return nil, err
	}
	return room.Clone(), nil
}

// Resume reattaches the controller to a room the caller is in. processedRound
// is the last round this participant reset its row for; zero means the
// current round.
func (c *Controller) Resume(ctx context.Context, roomID model.RoomID, processedRound int) (*model.Room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	me, err := session.ResolveIdentity(ctx, c.identity)
	if err != nil {
		return nil, err
	}
	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.GameMode != model.GameModeParty {
		return nil, model.ErrWrongGameMode
	}
	players, err := c.storage.GetPlayersForRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if model.FindPlayer(players, me) == nil {
		return nil, model.ErrNotInRoom
	}

	c.attach(me, room)
	c.players = players
	if processedRound > 0 {
		c.lastProcessedRound = processedRound
	}
	if err := c.catchUp(ctx); err != nil {
		return nil, err
	}
	return c.room.Clone(), nil
}

func (c *Controller) attach(me model.PlayerID, room *model.Room) {
	c.me = me
	c.room = room
	c.players = nil
	c.lastProcessedRound = room.RoundNumber
}

// StartGame moves the room from waiting to the first clue once enough
// players have joined
func (c *Controller) StartGame(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, err := c.sync(ctx)
	if err != nil {
		return err
	}
	next, err := session.Next(room.Phase, session.ActionStart)
	if err != nil {
		return err
	}
	if !room.IsPsychic(c.me) {
		return model.ErrNotPsychic
	}
	if len(c.players) < MinPlayers {
		return model.ErrInsufficientPlayers
	}

	return c.write(ctx, model.RoomPatch{Phase: &next})
}

// SubmitClue records the psychic's clue and opens guessing
func (c *Controller) SubmitClue(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	clue, err := session.ValidateClue(text)
	if err != nil {
		return err
	}
	return c.giveClue(ctx, clue)
}

// SkipClue opens guessing with the clue given out loud
func (c *Controller) SkipClue(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.giveClue(ctx, model.ClueVerbal)
}

func (c *Controller) giveClue(ctx context.Context, clue string) error {
	room, err := c.sync(ctx)
	if err != nil {
		return err
	}
	next, err := session.Next(room.Phase, session.ActionGiveClue)
	if err != nil {
		return err
	}
	if !room.IsPsychic(c.me) {
		return model.ErrNotPsychic
	}

	return c.write(ctx, model.RoomPatch{Clue: &clue, Phase: &next})
}

// UpdateGuessAngle publishes the caller's dial position on their own row
func (c *Controller) UpdateGuessAngle(ctx context.Context, angle int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := session.ValidateAngle(angle); err != nil {
		return err
	}
	self, err := c.guesserRow(ctx)
	if err != nil {
		return err
	}
	if self.LockedIn {
		return model.ErrAlreadyLockedIn
	}

	return c.writeSelf(ctx, model.PlayerPatch{GuessAngle: &angle})
}

// LockInGuess commits the caller's guess. If that leaves no guesser
// undecided, the caller reveals the round; it reports whether it did.
func (c *Controller) LockInGuess(ctx context.Context, angle int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := session.ValidateAngle(angle); err != nil {
		return false, err
	}
	self, err := c.guesserRow(ctx)
	if err != nil {
		return false, err
	}
	if self.LockedIn {
		return false, model.ErrAlreadyLockedIn
	}

	if err := c.writeSelf(ctx, model.PlayerPatch{
		GuessAngle: &angle,
		LockedIn:   model.Ptr(true),
	}); err != nil {
		return false, err
	}

	if err := c.refreshPlayers(ctx); err != nil {
		return false, err
	}
	if !AllGuessersLockedIn(c.room, c.players) {
		return false, nil
	}

	// Another guesser may have revealed already; writing it again is harmless
	if err := c.write(ctx, model.RoomPatch{Phase: model.Ptr(model.PhaseRevealed)}); err != nil {
		return false, err
	}
	c.logger.Info("all guesses locked in",
		slog.String("room_id", string(c.room.ID)),
		slog.Int("round_number", c.room.RoundNumber))

	// The next round may start before this client polls again
	if err := c.scoreRound(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// guesserRow syncs and returns the caller's row, checking that the caller
// is a guesser in the guessing phase
func (c *Controller) guesserRow(ctx context.Context) (*model.Player, error) {
	room, err := c.sync(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := session.Next(room.Phase, session.ActionLockGuess); err != nil {
		return nil, err
	}
	if room.IsPsychic(c.me) {
		return nil, model.ErrNotGuesser
	}
	self := model.FindPlayer(c.players, c.me)
	if self == nil {
		return nil, model.ErrNotInRoom
	}
	return self, nil
}

// NextRound starts the next round and hands the psychic role to the next
// player in join order. Only room fields are written; every player resets
// their own row when they see the new round.
func (c *Controller) NextRound(ctx context.Context, deck string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, err := c.sync(ctx)
	if err != nil {
		return err
	}
	if _, err := session.Next(room.Phase, session.ActionAdvance); err != nil {
		return err
	}
	if model.FindPlayer(c.players, c.me) == nil {
		return model.ErrNotInRoom
	}

	if c.settings.IsFinalRound(room.RoundNumber) {
		c.logger.Info("final round played, ending game", slog.String("room_id", string(room.ID)))
		return c.write(ctx, model.RoomPatch{Phase: model.Ptr(model.PhaseEnded)})
	}

	if deck == "" {
		deck = c.settings.Deck
	}
	patch, err := session.RoundStart(c.cards, deck, room.RoundNumber+1)
	if err != nil {
		return err
	}
	next := NextPsychic(c.players, room.PsychicID)
	patch.PsychicID = &next

	if err := c.write(ctx, patch); err != nil {
		return err
	}
	c.logger.Info("round started",
		slog.String("room_id", string(room.ID)),
		slog.Int("round_number", c.room.RoundNumber),
		slog.String("psychic_id", string(next)))
	return c.catchUp(ctx)
}

// EndGame ends the room for everyone. Ending an ended room is a no-op.
func (c *Controller) EndGame(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, err := c.refresh(ctx)
	if err != nil {
		return err
	}
	if room.IsEnded() {
		return nil
	}
	next, err := session.Next(room.Phase, session.ActionEnd)
	if err != nil {
		return err
	}
	if err := c.write(ctx, model.RoomPatch{Phase: &next}); err != nil {
		return err
	}
	c.logger.Info("game ended", slog.String("room_id", string(room.ID)))
	return nil
}

// SetCustomCard replaces the round's card with one the psychic wrote
func (c *Controller) SetCustomCard(ctx context.Context, left, right string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	card, err := session.ValidateCard(left, right)
	if err != nil {
		return err
	}
	return c.replaceCard(ctx, card)
}

// ChangeCard draws a different card from the selected deck
func (c *Controller) ChangeCard(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	card, err := c.cards.PickCard(c.settings.Deck)
	if err != nil {
		return err
	}
	return c.replaceCard(ctx, card)
}

func (c *Controller) replaceCard(ctx context.Context, card model.Card) error {
	room, err := c.refresh(ctx)
	if err != nil {
		return err
	}
	if room.IsEnded() {
		return model.ErrGameEnded
	}
	if !session.CanEditCard(room.Phase) {
		return model.ErrInvalidPhase
	}
	if !room.IsPsychic(c.me) {
		return model.ErrNotPsychic
	}
	return c.write(ctx, model.RoomPatch{CurrentCard: &card})
}

// LeaveRoom removes the caller's row. The room carries on for everyone else.
func (c *Controller) LeaveRoom(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.room == nil {
		return model.ErrNotInRoom
	}
	if err := c.storage.DeletePlayer(ctx, c.room.ID, c.me); err != nil {
		return err
	}
	c.logger.Info("left room", slog.String("room_id", string(c.room.ID)))
	c.room = nil
	c.players = nil
	return nil
}

// Observe replaces the local view with a polled snapshot, then resets the
// caller's row if a new round has started and scores the caller if the
// round has been revealed. Snapshots of other rooms are ignored.
func (c *Controller) Observe(ctx context.Context, snap model.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.room == nil || snap.Room == nil || snap.Room.ID != c.room.ID {
		return nil
	}
	c.room = snap.Room.Clone()
	if snap.Players != nil {
		c.players = snap.Clone().Players
	}

	return errors.Join(c.catchUp(ctx), c.scoreRound(ctx))
}

// catchUp resets the caller's own row once per new round. The row's role
// comes from the room, never from what the row says.
func (c *Controller) catchUp(ctx context.Context) error {
	round := c.room.RoundNumber
	if round <= c.lastProcessedRound {
		return nil
	}
	if model.FindPlayer(c.players, c.me) == nil {
		c.lastProcessedRound = round
		return nil
	}

	role := model.RoleFor(c.room, c.me)
	if err := c.writeSelf(ctx, model.PlayerPatch{
		Role:            &role,
		LockedIn:        model.Ptr(false),
		ClearGuessAngle: true,
	}); err != nil {
		return err
	}
	c.lastProcessedRound = round
	c.logger.Debug("reset own row for new round",
		slog.String("room_id", string(c.room.ID)),
		slog.Int("round_number", round),
		slog.String("role", string(role)))
	return nil
}

// scoreRound credits the caller's locked guess once per revealed round
func (c *Controller) scoreRound(ctx context.Context) error {
	room := c.room
	if room.Phase != model.PhaseRevealed || room.IsPsychic(c.me) {
		return nil
	}
	self := model.FindPlayer(c.players, c.me)
	if self == nil || !self.LockedIn || self.GuessAngle == nil {
		return nil
	}
	if !c.scores.Claim(room.ID, room.RoundNumber) {
		return nil
	}

	points := session.RoundPoints(room, *self.GuessAngle)
	if err := c.writeSelf(ctx, model.PlayerPatch{Score: model.Ptr(self.Score + points)}); err != nil {
		c.scores.Release(room.ID, room.RoundNumber)
		return err
	}
	c.logger.Info("round scored",
		slog.String("room_id", string(room.ID)),
		slog.Int("round_number", room.RoundNumber),
		slog.Int("points", points))
	return nil
}

// View returns a copy of the local view
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{Me: c.me, Settings: c.settings, ProcessedRound: c.lastProcessedRound}
	if c.room == nil {
		return v
	}
	v.Room = c.room.Clone()
	v.Players = TurnOrder(c.players)
	v.Role = model.RoleFor(c.room, c.me)
	if self := model.FindPlayer(v.Players, c.me); self != nil {
		row := self.Clone()
		v.Self = &row
	}
	v.NextPsychic = NextPsychic(c.players, c.room.PsychicID)
	v.IsNextPsychic = v.NextPsychic != "" && v.NextPsychic == c.me
	return v
}

// Settings returns the local game settings
func (c *Controller) Settings() session.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// SetSettings changes the local game settings
func (c *Controller) SetSettings(s session.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = s
	return nil
}

// ScoredRound returns the latest round of the current room the caller has
// scored itself for, or zero
func (c *Controller) ScoredRound() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.room == nil {
		return 0
	}
	return c.scores.Latest(c.room.ID)
}

// MarkScored records that the caller already scored round of the current
// room, so a restarted client does not score it again
func (c *Controller) MarkScored(round int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.room == nil || round <= 0 {
		return
	}
	c.scores.Claim(c.room.ID, round)
}

// refresh re-reads the current room from the store
func (c *Controller) refresh(ctx context.Context) (*model.Room, error) {
	if c.room == nil {
		return nil, model.ErrNotInRoom
	}
	room, err := c.storage.GetRoom(ctx, c.room.ID)
	if err != nil {
		return nil, err
	}
	c.room = room
	return room, nil
}

func (c *Controller) refreshPlayers(ctx context.Context) error {
	players, err := c.storage.GetPlayersForRoom(ctx, c.room.ID)
	if err != nil {
		return err
	}
	c.players = players
	return nil
}

// sync re-reads the room and roster, catches up with any new round and
// scores a revealed round the caller has not been credited for yet
func (c *Controller) sync(ctx context.Context) (*model.Room, error) {
	room, err := c.refresh(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.refreshPlayers(ctx); err != nil {
		return nil, err
	}
	if err := c.catchUp(ctx); err != nil {
		return nil, err
	}
	if err := c.scoreRound(ctx); err != nil {
		return nil, err
	}
	return room, nil
}

// write applies a patch to the current room and keeps the result
func (c *Controller) write(ctx context.Context, patch model.RoomPatch) error {
	updated, err := c.storage.UpdateRoom(ctx, c.room.ID, patch)
	if err != nil {
		return err
	}
	c.room = updated
	return nil
}

// writeSelf applies a patch to the caller's own row and keeps the result
func (c *Controller) writeSelf(ctx context.Context, patch model.PlayerPatch) error {
	updated, err := c.storage.UpdatePlayer(ctx, c.room.ID, c.me, patch)
	if err != nil {
		return err
	}
	for i := range c.players {
		if c.players[i].PlayerID == c.me {
			c.players[i] = *updated
		}
	}
	return nil
}

// ControllerInterface defines the party controller contract
type ControllerInterface interface {
	CreateRoom(ctx context.Context, name, avatar string) (*model.Room, error)
	JoinRoom(ctx context.Context, code, name, avatar string) (*model.Room, error)
	Resume(ctx context.Context, roomID model.RoomID, processedRound int) (*model.Room, error)
	StartGame(ctx context.Context) error
	SubmitClue(ctx context.Context, text string) error
	SkipClue(ctx context.Context) error
	UpdateGuessAngle(ctx context.Context, angle int) error
	LockInGuess(ctx context.Context, angle int) (bool, error)
	NextRound(ctx context.Context, deck string) error
	EndGame(ctx context.Context) error
	SetCustomCard(ctx context.Context, left, right string) error
	ChangeCard(ctx context.Context) error
	LeaveRoom(ctx context.Context) error
	Observe(ctx context.Context, snap model.Snapshot) error
	View() View
}

// Ensure Controller implements ControllerInterface
var _ ControllerInterface = (*Controller)(nil)
