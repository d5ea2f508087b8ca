package classic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/spectrumgame-go/internal/dependencies/clock"
	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/services/cards"
	"github.com/mcoot/spectrumgame-go/internal/services/identity"
	"github.com/mcoot/spectrumgame-go/internal/services/session"
	"github.com/mcoot/spectrumgame-go/internal/storage"
)

// Controller drives a two-player room from one participant's side. Each
// action re-reads the room, checks the phase and the caller's seat, writes
// the change and keeps the written room as the local view until the next
// snapshot replaces it.
type Controller struct {
	storage  storage.Storage
	identity identity.Provider
	cards    *cards.Generator
	clock    clock.Clock
	logger   *slog.Logger

	mu       sync.Mutex
	me       model.PlayerID
	room     *model.Room
	settings session.Settings
	seats    localSeats
	scores   *session.ScoreGuard
}

// localSeats holds seat metadata the store could not persist
type localSeats struct {
	player1 *model.SeatMetadata
	player2 *model.SeatMetadata
}

// View is the local participant's picture of the room
type View struct {
	Room       *model.Room
	Me         model.PlayerID
	IsPsychic  bool
	IsGuesser  bool
	Player1    model.SeatMetadata
	Player2    model.SeatMetadata
	HasPlayer2 bool
	Settings   session.Settings
}

// NewController creates a classic Controller
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
		logger:   logger.With(slog.String("mode", string(model.GameModeClassic))),
		settings: session.DefaultSettings(),
		scores:   session.NewScoreGuard(),
	}
}

// CreateRoom opens a new room with the caller in the psychic seat
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

	room := &model.Room{
		RoomCode:      code,
		PsychicID:     me,
		TargetAngle:   c.cards.GenerateTarget(),
		GuessAngle:    model.NeutralAngle,
		Phase:         model.PhaseWaiting,
		CurrentCard:   card,
		RoundNumber:   1,
		GameMode:      model.GameModeClassic,
		Player1Name:   &name,
		Player1Avatar: &avatar,
	}

	created, degraded, err := session.InsertRoom(ctx, c.storage, room, c.logger)
	if err != nil {
		return nil, err
	}

	c.me = me
	c.room = created
	c.seats = localSeats{}
	if degraded {
		c.seats.player1 = &model.SeatMetadata{Name: name, Avatar: avatar}
	}

	c.logger.Info("room created",
		slog.String("room_id", string(created.ID)),
		slog.String("room_code", string(created.RoomCode)))
	return created.Clone(), nil
}

// JoinRoom claims the guesser seat of the room with the given code. Joining
// a room the caller already sits in is a rejoin and changes nothing.
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
	if room.GameMode != model.GameModeClassic {
		return nil, model.ErrWrongGameMode
	}
	if room.IsEnded() {
		return nil, model.ErrGameEnded
	}

	if room.IsPsychic(me) || room.IsGuesser(me) {
		c.me = me
		c.room = room
		c.logger.Info("rejoined room", slog.String("room_id", string(room.ID)))
		return room.Clone(), nil
	}
	if room.GuesserID != nil {
		return nil, model.ErrRoomFull
	}

	joined, degraded, err := session.UpdateRoom(ctx, c.storage, room.ID, model.RoomPatch{
		GuesserID:     &me,
		Player2Name:   &name,
		Player2Avatar: &avatar,
	}, c.logger)
	if err != nil {
		return nil, err
	}

	c.me = me
	c.room = joined
	c.seats = localSeats{}
	if degraded {
		c.seats.player2 = &model.SeatMetadata{Name: name, Avatar: avatar}
	}

	c.logger.Info("joined room",
		slog.String("room_id", string(joined.ID)),
		slog.String("room_code", string(joined.RoomCode)))
	return joined.Clone(), nil
}

// Resume reattaches the controller to a room the caller already sits in
func (c *Controller) Resume(ctx context.Context, roomID model.RoomID) (*model.Room, error) {
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
	if room.GameMode != model.GameModeClassic {
		return nil, model.ErrWrongGameMode
	}
	if !room.IsPsychic(me) && !room.IsGuesser(me) {
		return nil, model.ErrNotInRoom
	}

	c.me = me
	c.room = room
	return room.Clone(), nil
}

// StartGame moves a full room from waiting to the first clue
func (c *Controller) StartGame(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, err := c.refresh(ctx)
	if err != nil {
		return err
	}
	next, err := session.Next(room.Phase, session.ActionStart)
	if err != nil {
		return err
	}
	if room.HostID() != c.me {
		return model.ErrNotPsychic
	}
	if room.GuesserID == nil {
		return model.ErrInsufficientPlayers
	}

	return c.write(ctx, model.RoomPatch{Phase: &next})
}

// UpdateGuessAngle publishes the guesser's dial position while they are
// still deciding
func (c *Controller) UpdateGuessAngle(ctx context.Context, angle int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := session.ValidateAngle(angle); err != nil {
		return err
	}
	room, err := c.refresh(ctx)
	if err != nil {
		return err
	}
	if room.IsEnded() {
		return model.ErrGameEnded
	}
	if room.Phase != model.PhaseGuessing {
		return model.ErrInvalidPhase
	}
	if !room.IsGuesser(c.me) {
		return model.ErrNotGuesser
	}

	return c.write(ctx, model.RoomPatch{GuessAngle: &angle})
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
	room, err := c.refresh(ctx)
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

// FinalizeGuess locks the guesser's dial, reveals the target and credits the
// round's points. It returns the points scored. If the reveal is written but
// the score is not, the error wraps ErrScoreNotRecorded: the round cannot be
// finalized again, so the points have to be added with UpdateScore.
func (c *Controller) FinalizeGuess(ctx context.Context, angle int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := session.ValidateAngle(angle); err != nil {
		return 0, err
	}
	room, err := c.refresh(ctx)
	if err != nil {
		return 0, err
	}
	next, err := session.Next(room.Phase, session.ActionLockGuess)
	if err != nil {
		return 0, err
	}
	if !room.IsGuesser(c.me) {
		return 0, model.ErrNotGuesser
	}

	if err := c.write(ctx, model.RoomPatch{GuessAngle: &angle, Phase: &next}); err != nil {
		return 0, err
	}

	points := session.RoundPoints(c.room, angle)
	if !c.scores.Claim(c.room.ID, c.room.RoundNumber) {
		return points, nil
	}
	if err := c.updateScore(ctx, points); err != nil {
		c.scores.Release(c.room.ID, c.room.RoundNumber)
		c.logger.Warn("round revealed without its score",
			slog.String("room_id", string(c.room.ID)),
			slog.Int("round_number", c.room.RoundNumber),
			slog.Int("points", points),
			slog.Any("error", err))
		return points, fmt.Errorf("%w (%d points): %w", model.ErrScoreNotRecorded, points, err)
	}

	c.logger.Info("guess revealed",
		slog.String("room_id", string(c.room.ID)),
		slog.Int("round_number", c.room.RoundNumber),
		slog.Int("points", points))
	return points, nil
}

// UpdateScore adds points to the counter of the seat the caller sits in
// right now. The counters belong to seats, so a participant's total is spread
// across both as roles swap.
func (c *Controller) UpdateScore(ctx context.Context, points int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.updateScore(ctx, points)
}

func (c *Controller) updateScore(ctx context.Context, points int) error {
	room, err := c.refresh(ctx)
	if err != nil {
		return err
	}
	if points == 0 {
		return nil
	}

	var patch model.RoomPatch
	switch {
	case room.IsGuesser(c.me):
		patch.GuesserScore = model.Ptr(room.GuesserScore + points)
	case room.IsPsychic(c.me):
		patch.PsychicScore = model.Ptr(room.PsychicScore + points)
	default:
		return model.ErrNotInRoom
	}
	return c.write(ctx, patch)
}

// NextRound starts the next round with the seats swapped. After the final
// round of a limited game it ends the game instead.
func (c *Controller) NextRound(ctx context.Context, deck string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, err := c.refresh(ctx)
	if err != nil {
		return err
	}
	if !room.IsPsychic(c.me) && !room.IsGuesser(c.me) {
		return model.ErrNotInRoom
	}
	if _, err := session.Next(room.Phase, session.ActionAdvance); err != nil {
		return err
	}
	if room.GuesserID == nil {
		return model.ErrInsufficientPlayers
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
	newPsychic := *room.GuesserID
	newGuesser := room.PsychicID
	patch.PsychicID = &newPsychic
	patch.GuesserID = &newGuesser

	return c.write(ctx, patch)
}

// EndGame ends the room for both participants. Ending an ended room is a
// no-op.
func (c *Controller) EndGame(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.end(ctx)
}

func (c *Controller) end(ctx context.Context) error {
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

// LeaveRoom ends the room, since a classic game cannot go on with one
// player, and detaches the controller from it
func (c *Controller) LeaveRoom(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.room == nil {
		return model.ErrNotInRoom
	}
	if err := c.end(ctx); err != nil && !errors.Is(err, model.ErrRoomNotFound) {
		return err
	}
	c.logger.Info("left room", slog.String("room_id", string(c.room.ID)))
	c.room = nil
	c.seats = localSeats{}
	return nil
}

// Observe replaces the local view with a polled snapshot. Snapshots of other
// rooms are ignored.
func (c *Controller) Observe(ctx context.Context, snap model.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.room == nil || snap.Room == nil || snap.Room.ID != c.room.ID {
		return nil
	}
	c.room = snap.Room.Clone()
	return nil
}

// View returns a copy of the local view
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{Me: c.me, Settings: c.settings}
	if c.room == nil {
		return v
	}
	v.Room = c.room.Clone()
	v.IsPsychic = c.room.IsPsychic(c.me)
	v.IsGuesser = c.room.IsGuesser(c.me)

	if m, ok := c.room.Player1(); ok {
		v.Player1 = m
	} else if c.seats.player1 != nil {
		v.Player1 = *c.seats.player1
	}
	if m, ok := c.room.Player2(); ok {
		v.Player2, v.HasPlayer2 = m, true
	} else if c.seats.player2 != nil {
		v.Player2, v.HasPlayer2 = *c.seats.player2, true
	}
	if c.room.GuesserID != nil {
		v.HasPlayer2 = true
	}
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

// LocalSeats returns the seat metadata the store could not persist, so a
// later process can restore it
func (c *Controller) LocalSeats() (player1, player2 *model.SeatMetadata) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return clonedSeat(c.seats.player1), clonedSeat(c.seats.player2)
}

// RestoreLocalSeats puts back seat metadata saved from an earlier process
func (c *Controller) RestoreLocalSeats(player1, player2 *model.SeatMetadata) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seats = localSeats{player1: clonedSeat(player1), player2: clonedSeat(player2)}
}

func clonedSeat(m *model.SeatMetadata) *model.SeatMetadata {
	if m == nil {
		return nil
	}
	out := *m
	return &out
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

// write applies a patch to the current room and keeps the result
func (c *Controller) write(ctx context.Context, patch model.RoomPatch) error {
	updated, _, err := session.UpdateRoom(ctx, c.storage, c.room.ID, patch, c.logger)
	if err != nil {
		return err
	}
	c.room = updated
	return nil
}

// ControllerInterface defines the classic controller contract
type ControllerInterface interface {
	CreateRoom(ctx context.Context, name, avatar string) (*model.Room, error)
	JoinRoom(ctx context.Context, code, name, avatar string) (*model.Room, error)
	Resume(ctx context.Context, roomID model.RoomID) (*model.Room, error)
	StartGame(ctx context.Context) error
	UpdateGuessAngle(ctx context.Context, angle int) error
	SubmitClue(ctx context.Context, text string) error
	SkipClue(ctx context.Context) error
	FinalizeGuess(ctx context.Context, angle int) (int, error)
	UpdateScore(ctx context.Context, points int) error
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
