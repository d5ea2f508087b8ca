package model

// RoomPatch is a partial update of a room. Nil fields are left untouched.
type RoomPatch struct {
	PsychicID    *PlayerID `json:"psychic_id,omitempty"`
	GuesserID    *PlayerID `json:"guesser_id,omitempty"`
	TargetAngle  *int      `json:"target_angle,omitempty"`
	GuessAngle   *int      `json:"guess_angle,omitempty"`
	Phase        *Phase    `json:"phase,omitempty"`
	CurrentCard  *Card     `json:"current_card,omitempty"`
	Clue         *string   `json:"clue,omitempty"`
	ClearClue    bool      `json:"clear_clue,omitempty"`
	RoundNumber  *int      `json:"round_number,omitempty"`
	PsychicScore *int      `json:"psychic_score,omitempty"`
	GuesserScore *int      `json:"guesser_score,omitempty"`

	Player1Name   *string `json:"player1_name,omitempty"`
	Player1Avatar *string `json:"player1_avatar,omitempty"`
	Player2Name   *string `json:"player2_name,omitempty"`
	Player2Avatar *string `json:"player2_avatar,omitempty"`
}

// HasMetadata reports whether the patch writes any of the optional
// display metadata columns
func (p RoomPatch) HasMetadata() bool {
	return p.Player1Name != nil || p.Player1Avatar != nil ||
		p.Player2Name != nil || p.Player2Avatar != nil
}

// WithoutMetadata returns a copy of the patch with the metadata columns dropped
func (p RoomPatch) WithoutMetadata() RoomPatch {
	p.Player1Name = nil
	p.Player1Avatar = nil
	p.Player2Name = nil
	p.Player2Avatar = nil
	return p
}

// IsEmpty reports whether the patch changes nothing
func (p RoomPatch) IsEmpty() bool {
	return p == RoomPatch{}
}

// Apply writes the set fields of the patch onto the room
func (p RoomPatch) Apply(r *Room) {
	if p.PsychicID != nil {
		r.PsychicID = *p.PsychicID
	}
	if p.GuesserID != nil {
		r.GuesserID = clonePtr(p.GuesserID)
	}
	if p.TargetAngle != nil {
		r.TargetAngle = *p.TargetAngle
	}
	if p.GuessAngle != nil {
		r.GuessAngle = *p.GuessAngle
	}
	if p.Phase != nil {
		r.Phase = *p.Phase
	}
	if p.CurrentCard != nil {
		r.CurrentCard = *p.CurrentCard
	}
	if p.ClearClue {
		r.Clue = nil
	}
	if p.Clue != nil {
		r.Clue = clonePtr(p.Clue)
	}
	if p.RoundNumber != nil {
		r.RoundNumber = *p.RoundNumber
	}
	if p.PsychicScore != nil {
		r.PsychicScore = *p.PsychicScore
	}
	if p.GuesserScore != nil {
		r.GuesserScore = *p.GuesserScore
	}
	if p.Player1Name != nil {
		r.Player1Name = clonePtr(p.Player1Name)
	}
	if p.Player1Avatar != nil {
		r.Player1Avatar = clonePtr(p.Player1Avatar)
	}
	if p.Player2Name != nil {
		r.Player2Name = clonePtr(p.Player2Name)
	}
	if p.Player2Avatar != nil {
		r.Player2Avatar = clonePtr(p.Player2Avatar)
	}
}

// RoomHasMetadata reports whether a room being inserted carries metadata
func RoomHasMetadata(r *Room) bool {
	return r.Player1Name != nil || r.Player1Avatar != nil ||
		r.Player2Name != nil || r.Player2Avatar != nil
}

// PlayerPatch is a partial update of a roster row
type PlayerPatch struct {
	Name            *string     `json:"name,omitempty"`
	Avatar          *string     `json:"avatar,omitempty"`
	Role            *PlayerRole `json:"role,omitempty"`
	Score           *int        `json:"score,omitempty"`
	GuessAngle      *int        `json:"guess_angle,omitempty"`
	ClearGuessAngle bool        `json:"clear_guess_angle,omitempty"`
	LockedIn        *bool       `json:"locked_in,omitempty"`
}

// Apply writes the set fields of the patch onto the row
func (p PlayerPatch) Apply(pl *Player) {
	if p.Name != nil {
		pl.Name = *p.Name
	}
	if p.Avatar != nil {
		pl.Avatar = *p.Avatar
	}
	if p.Role != nil {
		pl.Role = *p.Role
	}
	if p.Score != nil {
		pl.Score = *p.Score
	}
	if p.ClearGuessAngle {
		pl.GuessAngle = nil
	}
	if p.GuessAngle != nil {
		pl.GuessAngle = clonePtr(p.GuessAngle)
	}
	if p.LockedIn != nil {
		pl.LockedIn = *p.LockedIn
	}
}
