package handler

import "github.com/mcoot/spectrumgame-go/internal/model"

// Notifier is told about every successful write. The SSE broadcaster
// implements it; a nil Notifier disables push.
type Notifier interface {
	RoomUpdated(roomID model.RoomID)
	PlayersUpdated(roomID model.RoomID, playerID model.PlayerID)
	RoomDeleted(roomID model.RoomID)
}

type nopNotifier struct{}

func (nopNotifier) RoomUpdated(model.RoomID)                     {}
func (nopNotifier) PlayersUpdated(model.RoomID, model.PlayerID) {}
func (nopNotifier) RoomDeleted(model.RoomID)                     {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
