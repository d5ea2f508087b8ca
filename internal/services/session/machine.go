package session

import (
	"fmt"

	"github.com/mcoot/spectrumgame-go/internal/model"
)

// Action is something a participant does that may move the room between
// phases
type Action string

const (
	ActionStart     Action = "start"
	ActionGiveClue  Action = "give-clue"
	ActionLockGuess Action = "lock-guess"
	ActionAdvance   Action = "advance"
	ActionEnd       Action = "end"
)

var transitions = map[model.Phase]map[Action]model.Phase{
	model.PhaseWaiting: {
		ActionStart: model.PhaseClue,
		ActionEnd:   model.PhaseEnded,
	},
	model.PhaseClue: {
		ActionGiveClue: model.PhaseGuessing,
		ActionEnd:      model.PhaseEnded,
	},
	model.PhaseGuessing: {
		ActionLockGuess: model.PhaseRevealed,
		ActionEnd:       model.PhaseEnded,
	},
	model.PhaseRevealed: {
		ActionAdvance: model.PhaseClue,
		ActionEnd:     model.PhaseEnded,
	},
}

// Next returns the phase reached by applying action in phase from. Nothing
// leaves the ended phase.
func Next(from model.Phase, action Action) (model.Phase, error) {
	if from == model.PhaseEnded {
		return from, model.ErrGameEnded
	}
	to, ok := transitions[from][action]
	if !ok {
		return from, fmt.Errorf("%w: cannot %s during %s", model.ErrInvalidPhase, action, from)
	}
	return to, nil
}

// Can reports whether action is allowed in phase
func Can(phase model.Phase, action Action) bool {
	_, err := Next(phase, action)
	return err == nil
}

// CanEditCard reports whether the psychic may still swap the card, which is
// only before the clue is given
func CanEditCard(phase model.Phase) bool {
	return phase == model.PhaseWaiting || phase == model.PhaseClue
}
