package model

import "time"

// PlayerID is the anonymous, persistent identity of one participant
type PlayerID string

// RowID uniquely identifies a party roster row
type RowID string

// PlayerRole is the role recorded on a party roster row
type PlayerRole string

const (
	RolePsychic PlayerRole = "psychic"
	RoleGuesser PlayerRole = "guesser"
)

// Player is one row of a party room roster. Each participant writes only
// their own row.
type Player struct {
	ID         RowID      `json:"id"`
	RoomID     RoomID     `json:"room_id"`
	PlayerID   PlayerID   `json:"player_id"`
	Name       string     `json:"name"`
	Avatar     string     `json:"avatar"`
	Role       PlayerRole `json:"role"`
	Score      int        `json:"score"`
	GuessAngle *int       `json:"guess_angle"`
	LockedIn   bool       `json:"locked_in"`
	JoinedAt   time.Time  `json:"joined_at"`
}

// Clone returns a deep copy of the row
func (p Player) Clone() Player {
	p.GuessAngle = clonePtr(p.GuessAngle)
	return p
}

// FindPlayer returns the row for the given identity, or nil
func FindPlayer(players []Player, id PlayerID) *Player {
	for i := range players {
		if players[i].PlayerID == id {
			return &players[i]
		}
	}
	return nil
}

// RoleFor derives a participant's role from the room, which is authoritative
// over whatever is written on the roster row.
func RoleFor(room *Room, id PlayerID) PlayerRole {
	if room.IsPsychic(id) {
		return RolePsychic
	}
	return RoleGuesser
}
