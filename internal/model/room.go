package model

import (
	"strings"
	"time"
)

// RoomID uniquely identifies a room record
type RoomID string

// RoomCode is the short human-shareable code used to join a room
type RoomCode string

const (
	// RoomCodeLength is the number of characters in a room code
	RoomCodeLength = 4
	// RoomCodeAlphabet excludes I, O and Q, which read too much like 1, 0 and O
	RoomCodeAlphabet = "ABCDEFGHJKLMNPRSTUVWXYZ"
)

// NormalizeRoomCode trims whitespace and uppercases user input
func NormalizeRoomCode(s string) RoomCode {
	return RoomCode(strings.ToUpper(strings.TrimSpace(s)))
}

// Valid reports whether the code is exactly four uppercase letters
func (c RoomCode) Valid() bool {
	if len(c) != RoomCodeLength {
		return false
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Phase is the position of a room in the round state machine
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhaseClue     Phase = "clue"
	PhaseGuessing Phase = "guessing"
	PhaseRevealed Phase = "revealed"
	PhaseEnded    Phase = "ended"
)

// Valid reports whether the phase is one of the known phases
func (p Phase) Valid() bool {
	switch p {
	case PhaseWaiting, PhaseClue, PhaseGuessing, PhaseRevealed, PhaseEnded:
		return true
	}
	return false
}

// GameMode selects between the two-seat and the roster variant
type GameMode string

const (
	GameModeClassic GameMode = "classic"
	GameModeParty   GameMode = "party"
)

// Valid reports whether the mode is known
func (m GameMode) Valid() bool {
	return m == GameModeClassic || m == GameModeParty
}

const (
	// MinAngle and MaxAngle bound every target and guess on the dial
	MinAngle = 0
	MaxAngle = 180
	// NeutralAngle is where the dial rests at the start of every round
	NeutralAngle = 90
)

// ValidAngle reports whether a dial position is within range
func ValidAngle(angle int) bool {
	return angle >= MinAngle && angle <= MaxAngle
}

// ClueVerbal marks a clue that was given out loud instead of typed
const ClueVerbal = "[verbal]"

// Card is the pair of opposing concepts that label the ends of the dial
type Card struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Room is the shared record every participant polls
type Room struct {
	ID          RoomID    `json:"id"`
	RoomCode    RoomCode  `json:"room_code"`
	PsychicID   PlayerID  `json:"psychic_id"`
	GuesserID   *PlayerID `json:"guesser_id"`
	TargetAngle int       `json:"target_angle"`
	GuessAngle  int       `json:"guess_angle"`
	Phase       Phase     `json:"phase"`
	CurrentCard Card      `json:"current_card"`
	Clue        *string   `json:"clue"`
	RoundNumber int       `json:"round_number"`

	// Classic mode score counters are per seat, not per person
	PsychicScore int `json:"psychic_score"`
	GuesserScore int `json:"guesser_score"`

	GameMode GameMode `json:"game_mode"`

	// Optional display metadata. Player1 is whoever created the room.
	Player1Name   *string `json:"player1_name,omitempty"`
	Player1Avatar *string `json:"player1_avatar,omitempty"`
	Player2Name   *string `json:"player2_name,omitempty"`
	Player2Avatar *string `json:"player2_avatar,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsEnded reports whether the room has reached its terminal phase
func (r *Room) IsEnded() bool {
	return r.Phase == PhaseEnded
}

// IsPsychic reports whether the given identity holds the psychic role
func (r *Room) IsPsychic(id PlayerID) bool {
	return id != "" && r.PsychicID == id
}

// IsGuesser reports whether the given identity sits in the classic guesser seat
func (r *Room) IsGuesser(id PlayerID) bool {
	return id != "" && r.GuesserID != nil && *r.GuesserID == id
}

// HostID returns the classic room creator. Roles swap every round, so the
// creator is the psychic on odd rounds and the guesser on even ones.
func (r *Room) HostID() PlayerID {
	if r.RoundNumber%2 == 1 || r.GuesserID == nil {
		return r.PsychicID
	}
	return *r.GuesserID
}

// HasClue reports whether a clue (typed or verbal) has been given this round
func (r *Room) HasClue() bool {
	return r.Clue != nil
}

// Clone returns a deep copy safe to hand to another goroutine
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	c := *r
	c.GuesserID = clonePtr(r.GuesserID)
	c.Clue = clonePtr(r.Clue)
	c.Player1Name = clonePtr(r.Player1Name)
	c.Player1Avatar = clonePtr(r.Player1Avatar)
	c.Player2Name = clonePtr(r.Player2Name)
	c.Player2Avatar = clonePtr(r.Player2Avatar)
	return &c
}

// SeatMetadata is the display name and avatar for one classic seat
type SeatMetadata struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Player1 returns the creator's metadata if stored on the room
func (r *Room) Player1() (SeatMetadata, bool) {
	return seat(r.Player1Name, r.Player1Avatar)
}

// Player2 returns the joiner's metadata if stored on the room
func (r *Room) Player2() (SeatMetadata, bool) {
	return seat(r.Player2Name, r.Player2Avatar)
}

func seat(name, avatar *string) (SeatMetadata, bool) {
	if name == nil {
		return SeatMetadata{}, false
	}
	m := SeatMetadata{Name: *name}
	if avatar != nil {
		m.Avatar = *avatar
	}
	return m, true
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
