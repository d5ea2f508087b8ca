package party

import (
	"slices"

	"github.com/mcoot/spectrumgame-go/internal/model"
)

// TurnOrder returns the roster sorted by join time, earliest first
func TurnOrder(players []model.Player) []model.Player {
	order := make([]model.Player, len(players))
	for i, p := range players {
		order[i] = p.Clone()
	}
	slices.SortStableFunc(order, func(a, b model.Player) int {
		return a.JoinedAt.Compare(b.JoinedAt)
	})
	return order
}

// NextPsychic returns who takes the psychic role after current: the next
// player in join order, wrapping to the first. If current is no longer in
// the roster the first player is chosen.
func NextPsychic(players []model.Player, current model.PlayerID) model.PlayerID {
	if len(players) == 0 {
		return ""
	}
	order := TurnOrder(players)
	for i, p := range order {
		if p.PlayerID == current {
			return order[(i+1)%len(order)].PlayerID
		}
	}
	return order[0].PlayerID
}

// AllGuessersLockedIn reports whether every guesser has committed a guess.
// Rows still showing the psychic role belong to players who have not yet
// caught up with the round and are skipped.
func AllGuessersLockedIn(room *model.Room, players []model.Player) bool {
	guessers := 0
	for _, p := range players {
		if room.IsPsychic(p.PlayerID) || p.Role != model.RoleGuesser {
			continue
		}
		guessers++
		if !p.LockedIn {
			return false
		}
	}
	return guessers > 0
}
