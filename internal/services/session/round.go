package session

import (
	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/services/cards"
	"github.com/mcoot/spectrumgame-go/internal/services/scoring"
)

// Settings are chosen by the local participant and never written to the
// store, so they survive every snapshot replacement
type Settings struct {
	Deck        string `json:"deck,omitempty"`
	TotalRounds int    `json:"total_rounds,omitempty"`
}

// DefaultSettings uses the default deck with no round limit
func DefaultSettings() Settings {
	return Settings{Deck: cards.DefaultDeck}
}

// Validate checks the deck name and round limit
func (s Settings) Validate() error {
	if s.Deck != "" && !cards.ValidDeck(s.Deck) {
		return model.ErrUnknownDeck
	}
	if s.TotalRounds < 0 {
		return model.ErrInvalidRounds
	}
	return nil
}

// IsFinalRound reports whether round is the last one under the limit
func (s Settings) IsFinalRound(round int) bool {
	return s.TotalRounds > 0 && round >= s.TotalRounds
}

// RoundStart builds the room fields written when round begins: a new target
// and card, no clue and the dial back at neutral
func RoundStart(gen *cards.Generator, deck string, round int) (model.RoomPatch, error) {
	card, err := gen.PickCard(deck)
	if err != nil {
		return model.RoomPatch{}, err
	}
	return model.RoomPatch{
		Phase:       model.Ptr(model.PhaseClue),
		TargetAngle: model.Ptr(gen.GenerateTarget()),
		GuessAngle:  model.Ptr(model.NeutralAngle),
		CurrentCard: &card,
		ClearClue:   true,
		RoundNumber: model.Ptr(round),
	}, nil
}

// RoundKey identifies one round of one room
type RoundKey struct {
	RoomID model.RoomID
	Round  int
}

// ScoreGuard remembers which rounds this client has already scored. It is not
// safe for concurrent use; controllers hold their own lock around it.
type ScoreGuard struct {
	scored map[RoundKey]struct{}
}

// NewScoreGuard creates an empty guard
func NewScoreGuard() *ScoreGuard {
	return &ScoreGuard{scored: make(map[RoundKey]struct{})}
}

// Claim marks the round as scored and reports whether it was unscored before
func (g *ScoreGuard) Claim(roomID model.RoomID, round int) bool {
	key := RoundKey{RoomID: roomID, Round: round}
	if _, ok := g.scored[key]; ok {
		return false
	}
	g.scored[key] = struct{}{}
	return true
}

// Release forgets a claim so a failed score write can be retried
func (g *ScoreGuard) Release(roomID model.RoomID, round int) {
	delete(g.scored, RoundKey{RoomID: roomID, Round: round})
}

// Scored reports whether the round has been claimed
func (g *ScoreGuard) Scored(roomID model.RoomID, round int) bool {
	_, ok := g.scored[RoundKey{RoomID: roomID, Round: round}]
	return ok
}

// Latest returns the highest round claimed for the room, or zero
func (g *ScoreGuard) Latest(roomID model.RoomID) int {
	latest := 0
	for key := range g.scored {
		if key.RoomID == roomID && key.Round > latest {
			latest = key.Round
		}
	}
	return latest
}

// RoundPoints scores a locked guess against the room's target
func RoundPoints(room *model.Room, guess int) int {
	return scoring.Score(room.TargetAngle, guess)
}
