package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/spectrumgame-go/internal/model"
)

func TestNext(t *testing.T) {
	tests := []struct {
		name    string
		from    model.Phase
		action  Action
		want    model.Phase
		wantErr error
	}{
		{"start from waiting", model.PhaseWaiting, ActionStart, model.PhaseClue, nil},
		{"clue from clue", model.PhaseClue, ActionGiveClue, model.PhaseGuessing, nil},
		{"lock from guessing", model.PhaseGuessing, ActionLockGuess, model.PhaseRevealed, nil},
		{"advance from revealed", model.PhaseRevealed, ActionAdvance, model.PhaseClue, nil},
		{"end from waiting", model.PhaseWaiting, ActionEnd, model.PhaseEnded, nil},
		{"end from clue", model.PhaseClue, ActionEnd, model.PhaseEnded, nil},
		{"end from guessing", model.PhaseGuessing, ActionEnd, model.PhaseEnded, nil},
		{"end from revealed", model.PhaseRevealed, ActionEnd, model.PhaseEnded, nil},
		{"clue before start", model.PhaseWaiting, ActionGiveClue, model.PhaseWaiting, model.ErrInvalidPhase},
		{"lock before clue", model.PhaseClue, ActionLockGuess, model.PhaseClue, model.ErrInvalidPhase},
		{"start twice", model.PhaseClue, ActionStart, model.PhaseClue, model.ErrInvalidPhase},
		{"advance mid round", model.PhaseGuessing, ActionAdvance, model.PhaseGuessing, model.ErrInvalidPhase},
		{"lock twice", model.PhaseRevealed, ActionLockGuess, model.PhaseRevealed, model.ErrInvalidPhase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(tt.from, tt.action)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOnlyStartLeavesWaiting(t *testing.T) {
	for _, action := range []Action{ActionGiveClue, ActionLockGuess, ActionAdvance} {
		assert.False(t, Can(model.PhaseWaiting, action), action)
	}
	assert.True(t, Can(model.PhaseWaiting, ActionStart))
}

func TestEndedIsTerminal(t *testing.T) {
	for _, action := range []Action{ActionStart, ActionGiveClue, ActionLockGuess, ActionAdvance, ActionEnd} {
		got, err := Next(model.PhaseEnded, action)
		assert.ErrorIs(t, err, model.ErrGameEnded, action)
		assert.Equal(t, model.PhaseEnded, got)
	}
}

func TestCanEditCard(t *testing.T) {
	assert.True(t, CanEditCard(model.PhaseWaiting))
	assert.True(t, CanEditCard(model.PhaseClue))
	assert.False(t, CanEditCard(model.PhaseGuessing))
	assert.False(t, CanEditCard(model.PhaseRevealed))
	assert.False(t, CanEditCard(model.PhaseEnded))
}
