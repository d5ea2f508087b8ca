package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/spectrumgame-go/internal/api/apierr"
	"github.com/mcoot/spectrumgame-go/internal/api/request"
	"github.com/mcoot/spectrumgame-go/internal/api/response"
	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/storage"
)

// PlayerHandler exposes the party roster rows of the store
type PlayerHandler struct {
	storage  storage.Storage
	notifier Notifier
	logger   *slog.Logger
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(storage storage.Storage, notifier Notifier, logger *slog.Logger) *PlayerHandler {
	return &PlayerHandler{
		storage:  storage,
		notifier: orNop(notifier),
		logger:   logger,
	}
}

// Create handles POST /api/v1/rooms/{id}/players
func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var player model.Player
	if err := request.Decode(r, &player); err != nil {
		apierr.WriteError(w, err)
		return
	}

	roomID := model.RoomID(mux.Vars(r)["id"])
	if player.RoomID != "" && player.RoomID != roomID {
		apierr.WriteError(w, apierr.NewInvalidRequestError("room_id does not match path"))
		return
	}
	player.RoomID = roomID
	if player.PlayerID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("player_id is required"))
		return
	}

	created, err := h.storage.InsertPlayer(r.Context(), &player)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	h.logger.Info("player joined room",
		slog.String("room_id", string(roomID)),
		slog.String("player_id", string(created.PlayerID)))
	h.notifier.PlayersUpdated(roomID, created.PlayerID)
	response.JSON(w, http.StatusCreated, created)
}

// List handles GET /api/v1/rooms/{id}/players
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	players, err := h.storage.GetPlayersForRoom(r.Context(), model.RoomID(mux.Vars(r)["id"]))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Players{Players: players})
}

// Update handles PATCH /api/v1/rooms/{id}/players/{player_id}
func (h *PlayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.PlayerPatch
	if err := request.Decode(r, &patch); err != nil {
		apierr.WriteError(w, err)
		return
	}

	vars := mux.Vars(r)
	roomID := model.RoomID(vars["id"])
	playerID := model.PlayerID(vars["player_id"])

	player, err := h.storage.UpdatePlayer(r.Context(), roomID, playerID, patch)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	h.notifier.PlayersUpdated(roomID, playerID)
	response.JSON(w, http.StatusOK, player)
}

// Delete handles DELETE /api/v1/rooms/{id}/players/{player_id}
func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomID := model.RoomID(vars["id"])
	playerID := model.PlayerID(vars["player_id"])

	if err := h.storage.DeletePlayer(r.Context(), roomID, playerID); err != nil {
		apierr.WriteError(w, err)
		return
	}

	h.logger.Info("player left room",
		slog.String("room_id", string(roomID)),
		slog.String("player_id", string(playerID)))
	h.notifier.PlayersUpdated(roomID, playerID)
	response.NoContent(w)
}
