package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/spectrumgame-go/internal/api/apierr"
	"github.com/mcoot/spectrumgame-go/internal/api/middleware"
	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/sse"
	"github.com/mcoot/spectrumgame-go/internal/storage"
)

// EventsHandler streams change notifications for a room
type EventsHandler struct {
	storage    storage.Storage
	hubManager *sse.HubManager
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(storage storage.Storage, hubManager *sse.HubManager) *EventsHandler {
	return &EventsHandler{storage: storage, hubManager: hubManager}
}

// Stream handles GET /api/v1/rooms/{id}/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	roomID := model.RoomID(mux.Vars(r)["id"])
	if _, err := h.storage.GetRoom(r.Context(), roomID); err != nil {
		apierr.WriteError(w, err)
		return
	}

	hub := h.hubManager.GetOrCreateHub(roomID)
	sse.ServeSSE(w, r, hub, middleware.PlayerID(r.Context()))
}
