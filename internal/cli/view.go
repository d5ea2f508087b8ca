package cli

import (
	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/services/classic"
	"github.com/mcoot/spectrumgame-go/internal/services/party"
	"github.com/mcoot/spectrumgame-go/internal/services/session"
)

// RoomView is what a participant is shown of a room. The target stays
// hidden from guessers until the round is revealed.
type RoomView struct {
	RoomID      model.RoomID   `json:"room_id"`
	RoomCode    model.RoomCode `json:"room_code"`
	Mode        model.GameMode `json:"mode"`
	Phase       model.Phase    `json:"phase"`
	Round       int            `json:"round"`
	TotalRounds int            `json:"total_rounds,omitempty"`
	Card        model.Card     `json:"card"`
	Clue        *string        `json:"clue"`
	Me          model.PlayerID `json:"me"`
	Role        string         `json:"role"`
	GuessAngle  int            `json:"guess_angle"`
	TargetAngle *int           `json:"target_angle,omitempty"`
	Points      *int           `json:"points,omitempty"`
	NextPsychic model.PlayerID `json:"next_psychic,omitempty"`
	Scores      []ScoreLine    `json:"scores"`
	Players     []PlayerLine   `json:"players,omitempty"`
}

// ScoreLine is one score counter
type ScoreLine struct {
	Label string `json:"label"`
	Score int    `json:"score"`
}

// PlayerLine is one participant as others see them
type PlayerLine struct {
	PlayerID   model.PlayerID `json:"player_id"`
	Name       string         `json:"name"`
	Avatar     string         `json:"avatar,omitempty"`
	Role       string         `json:"role"`
	Score      int            `json:"score"`
	LockedIn   bool           `json:"locked_in"`
	GuessAngle *int           `json:"guess_angle,omitempty"`
}

// Role labels
const (
	rolePsychic = "psychic"
	roleGuesser = "guesser"
	roleNone    = "spectator"
)

func revealed(room *model.Room) bool {
	return room.Phase == model.PhaseRevealed || room.Phase == model.PhaseEnded
}

func baseView(room *model.Room, me model.PlayerID, settings session.Settings) RoomView {
	return RoomView{
		RoomID:      room.ID,
		RoomCode:    room.RoomCode,
		Mode:        room.GameMode,
		Phase:       room.Phase,
		Round:       room.RoundNumber,
		TotalRounds: settings.TotalRounds,
		Card:        room.CurrentCard,
		Clue:        room.Clue,
		Me:          me,
		GuessAngle:  room.GuessAngle,
	}
}

func classicView(v classic.View) RoomView {
	if v.Room == nil {
		return RoomView{Me: v.Me}
	}
	room := v.Room
	view := baseView(room, v.Me, v.Settings)

	switch {
	case v.IsPsychic:
		view.Role = rolePsychic
	case v.IsGuesser:
		view.Role = roleGuesser
	default:
		view.Role = roleNone
	}

	if v.IsPsychic || revealed(room) {
		view.TargetAngle = model.Ptr(room.TargetAngle)
	}
	if room.Phase == model.PhaseRevealed {
		view.Points = model.Ptr(session.RoundPoints(room, room.GuessAngle))
	}

	view.Scores = []ScoreLine{
		{Label: "psychic seat", Score: room.PsychicScore},
		{Label: "guesser seat", Score: room.GuesserScore},
	}

	view.Players = []PlayerLine{{
		PlayerID: room.HostID(),
		Name:     v.Player1.Name,
		Avatar:   v.Player1.Avatar,
		Role:     seatRole(room, room.HostID()),
	}}
	if v.HasPlayer2 {
		line := PlayerLine{Name: v.Player2.Name, Avatar: v.Player2.Avatar}
		if room.GuesserID != nil {
			line.PlayerID = otherSeat(room, room.HostID())
			line.Role = seatRole(room, line.PlayerID)
		}
		view.Players = append(view.Players, line)
	}
	return view
}

func seatRole(room *model.Room, id model.PlayerID) string {
	if room.IsPsychic(id) {
		return rolePsychic
	}
	return roleGuesser
}

func otherSeat(room *model.Room, id model.PlayerID) model.PlayerID {
	if room.PsychicID == id {
		return *room.GuesserID
	}
	return room.PsychicID
}

func partyView(v party.View) RoomView {
	if v.Room == nil {
		return RoomView{Me: v.Me}
	}
	room := v.Room
	view := baseView(room, v.Me, v.Settings)
	view.Role = string(v.Role)
	if v.Self == nil {
		view.Role = roleNone
	}
	view.NextPsychic = v.NextPsychic

	if room.IsPsychic(v.Me) || revealed(room) {
		view.TargetAngle = model.Ptr(room.TargetAngle)
	}
	if v.Self != nil && v.Self.GuessAngle != nil {
		view.GuessAngle = *v.Self.GuessAngle
		if room.Phase == model.PhaseRevealed && v.Self.LockedIn {
			view.Points = model.Ptr(session.RoundPoints(room, *v.Self.GuessAngle))
		}
	}

	for _, p := range v.Players {
		line := PlayerLine{
			PlayerID: p.PlayerID,
			Name:     p.Name,
			Avatar:   p.Avatar,
			Role:     string(model.RoleFor(room, p.PlayerID)),
			Score:    p.Score,
			LockedIn: p.LockedIn,
		}
		if p.GuessAngle != nil && (p.PlayerID == v.Me || revealed(room)) {
			line.GuessAngle = model.Ptr(*p.GuessAngle)
		}
		view.Players = append(view.Players, line)
		view.Scores = append(view.Scores, ScoreLine{Label: p.Name, Score: p.Score})
	}
	return view
}
