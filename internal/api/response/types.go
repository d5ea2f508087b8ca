package response

import "github.com/mcoot/spectrumgame-go/internal/model"

// Players is the roster listing for a room
type Players struct {
	Players []model.Player `json:"players"`
}

// Health is the health check body
type Health struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}
