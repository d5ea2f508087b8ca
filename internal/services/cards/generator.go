package cards

import (
	"fmt"

	"github.com/mcoot/spectrumgame-go/internal/dependencies/random"
	"github.com/mcoot/spectrumgame-go/internal/model"
)

// Generator produces targets, cards and room codes
type Generator struct {
	random random.Random
}

// New creates a Generator
func New(random random.Random) *Generator {
	return &Generator{random: random}
}

// GenerateTarget returns a uniformly random dial position in [0, 180]
func (g *Generator) GenerateTarget() int {
	return model.MinAngle + g.random.Intn(model.MaxAngle-model.MinAngle+1)
}

// PickCard draws a card from the named deck. An empty name uses the default
// deck and DeckRandom draws from a randomly chosen deck.
func (g *Generator) PickCard(deck string) (model.Card, error) {
	if deck == "" {
		deck = DefaultDeck
	}

	var d Deck
	if deck == DeckRandom {
		d = builtinDecks[g.random.Intn(len(builtinDecks))]
	} else {
		var ok bool
		d, ok = findDeck(deck)
		if !ok {
			return model.Card{}, fmt.Errorf("%w: %q", model.ErrUnknownDeck, deck)
		}
	}

	return d.Cards[g.random.Intn(len(d.Cards))], nil
}

// RoomCode returns a fresh four letter code. Uniqueness is the caller's
// concern.
func (g *Generator) RoomCode() model.RoomCode {
	return model.RoomCode(g.random.String(model.RoomCodeLength, model.RoomCodeAlphabet))
}
