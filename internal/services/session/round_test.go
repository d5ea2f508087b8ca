package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/spectrumgame-go/internal/dependencies/mocks"
	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/services/cards"
)

func TestRoundStart(t *testing.T) {
	rnd := mocks.NewMockRandom()
	rnd.QueueIntn(0, 137)
	gen := cards.New(rnd)

	patch, err := RoundStart(gen, "classic", 3)
	require.NoError(t, err)

	room := &model.Room{
		Phase:       model.PhaseRevealed,
		TargetAngle: 10,
		GuessAngle:  170,
		Clue:        model.Ptr("Coffee"),
		RoundNumber: 2,
	}
	patch.Apply(room)

	assert.Equal(t, model.PhaseClue, room.Phase)
	assert.Equal(t, 137, room.TargetAngle)
	assert.Equal(t, model.NeutralAngle, room.GuessAngle)
	assert.Equal(t, model.Card{Left: "Hot", Right: "Cold"}, room.CurrentCard)
	assert.Nil(t, room.Clue)
	assert.Equal(t, 3, room.RoundNumber)
}

func TestRoundStartUnknownDeck(t *testing.T) {
	_, err := RoundStart(cards.New(mocks.NewMockRandom()), "nope", 2)
	assert.ErrorIs(t, err, model.ErrUnknownDeck)
}

func TestSettings(t *testing.T) {
	assert.NoError(t, DefaultSettings().Validate())
	assert.NoError(t, Settings{Deck: cards.DeckRandom, TotalRounds: 5}.Validate())
	assert.ErrorIs(t, Settings{Deck: "nope"}.Validate(), model.ErrUnknownDeck)
	assert.ErrorIs(t, Settings{TotalRounds: -1}.Validate(), model.ErrInvalidRounds)

	limited := Settings{TotalRounds: 3}
	assert.False(t, limited.IsFinalRound(2))
	assert.True(t, limited.IsFinalRound(3))
	assert.False(t, Settings{}.IsFinalRound(100))
}

func TestScoreGuard(t *testing.T) {
	g := NewScoreGuard()

	assert.True(t, g.Claim("room-1", 1))
	assert.False(t, g.Claim("room-1", 1))
	assert.True(t, g.Scored("room-1", 1))

	assert.True(t, g.Claim("room-1", 2))
	assert.True(t, g.Claim("room-2", 1))

	g.Release("room-1", 1)
	assert.False(t, g.Scored("room-1", 1))
	assert.True(t, g.Claim("room-1", 1))

	assert.Equal(t, 2, g.Latest("room-1"))
	assert.Equal(t, 1, g.Latest("room-2"))
	assert.Equal(t, 0, g.Latest("room-3"))
}

func TestRoundPoints(t *testing.T) {
	room := &model.Room{TargetAngle: 90}
	assert.Equal(t, 4, RoundPoints(room, 92))
	assert.Equal(t, 3, RoundPoints(room, 100))
	assert.Equal(t, 0, RoundPoints(room, 10))
}
