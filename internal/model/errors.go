package model

import "errors"

// Common errors used across the application
var (
	// Precondition errors
	ErrIdentityNotReady = errors.New("identity not ready yet")
	ErrEmptyName        = errors.New("name is required")
	ErrInvalidRoomCode  = errors.New("room code must be 4 letters")
	ErrEmptyClue        = errors.New("clue is required")
	ErrInvalidAngle     = errors.New("angle must be between 0 and 180")
	ErrEmptyCardLabel   = errors.New("card labels are required")
	ErrUnknownDeck      = errors.New("unknown deck")
	ErrInvalidRounds    = errors.New("round limit cannot be negative")
	ErrInvalidGameMode  = errors.New("invalid game mode")

	// Lookup errors
	ErrRoomNotFound   = errors.New("room not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrRoomFull       = errors.New("room is full")
	ErrWrongGameMode  = errors.New("room uses a different game mode")
	ErrNotInRoom      = errors.New("not in a room")

	// State errors
	ErrInvalidPhase        = errors.New("action not allowed in current phase")
	ErrGameEnded           = errors.New("game has ended")
	ErrInsufficientPlayers = errors.New("not enough players to start")
	ErrAlreadyLockedIn     = errors.New("guess already locked in")
	ErrScoreNotRecorded    = errors.New("round revealed but its score was not recorded")

	// Role errors
	ErrNotPsychic = errors.New("only the psychic can do that")
	ErrNotGuesser = errors.New("only a guesser can do that")

	// Store errors
	ErrUnknownColumn     = errors.New("store schema is missing a column")
	ErrRoomCodeExhausted = errors.New("could not generate a free room code")
)

var userMessages = map[error]string{
	ErrIdentityNotReady:    "Please wait a moment and try again.",
	ErrEmptyName:           "Enter your name first.",
	ErrInvalidRoomCode:     "Room codes are 4 letters.",
	ErrRoomNotFound:        "Room not found. Check the code and try again.",
	ErrRoomFull:            "That room already has two players.",
	ErrWrongGameMode:       "That room is playing a different mode.",
	ErrGameEnded:           "This game has ended.",
	ErrInsufficientPlayers: "Waiting for more players to join.",
	ErrEmptyClue:           "Enter a clue first.",
	ErrScoreNotRecorded:    "The round was revealed but the score was not saved. Add the points by hand.",
}

// UserMessage returns a short message suitable for showing a participant
func UserMessage(err error) string {
	if msg, ok := LookupUserMessage(err); ok {
		return msg
	}
	return "Something went wrong. Please try again."
}

// LookupUserMessage returns the participant-facing message for a known error
func LookupUserMessage(err error) (string, bool) {
	for target, msg := range userMessages {
		if errors.Is(err, target) {
			return msg, true
		}
	}
	return "", false
}
