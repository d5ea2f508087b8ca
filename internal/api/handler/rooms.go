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

// RoomHandler exposes the room records of the store
type RoomHandler struct {
	storage  storage.Storage
	notifier Notifier
	logger   *slog.Logger
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(storage storage.Storage, notifier Notifier, logger *slog.Logger) *RoomHandler {
	return &RoomHandler{
		storage:  storage,
		notifier: orNop(notifier),
		logger:   logger,
	}
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var room model.Room
	if err := request.Decode(r, &room); err != nil {
		apierr.WriteError(w, err)
		return
	}

	created, err := h.storage.InsertRoom(r.Context(), &room)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("room created",
		slog.String("room_id", string(created.ID)),
		slog.String("room_code", string(created.RoomCode)),
		slog.String("game_mode", string(created.GameMode)))
	response.JSON(w, http.StatusCreated, created)
}

// Get handles GET /api/v1/rooms/{id}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	room, err := h.storage.GetRoom(r.Context(), model.RoomID(mux.Vars(r)["id"]))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, room)
}

// GetByCode handles GET /api/v1/rooms/by-code/{code}
func (h *RoomHandler) GetByCode(w http.ResponseWriter, r *http.Request) {
	code := model.NormalizeRoomCode(mux.Vars(r)["code"])
	if !code.Valid() {
		apierr.WriteError(w, model.ErrInvalidRoomCode)
		return
	}

	room, err := h.storage.GetRoomByCode(r.Context(), code)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, room)
}

// Update handles PATCH /api/v1/rooms/{id}
func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.RoomPatch
	if err := request.Decode(r, &patch); err != nil {
		apierr.WriteError(w, err)
		return
	}
	if patch.Phase != nil && !patch.Phase.Valid() {
		apierr.WriteError(w, apierr.NewInvalidRequestError("unknown phase"))
		return
	}

	id := model.RoomID(mux.Vars(r)["id"])
	room, err := h.storage.UpdateRoom(r.Context(), id, patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.notifier.RoomUpdated(id)
	response.JSON(w, http.StatusOK, room)
}

// Delete handles DELETE /api/v1/rooms/{id}
func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := model.RoomID(mux.Vars(r)["id"])
	if err := h.storage.DeleteRoom(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.notifier.RoomDeleted(id)
	response.NoContent(w)
}

func (h *RoomHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if apierr.Status(err) >= http.StatusInternalServerError {
		h.logger.Error("room store failure",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
	apierr.WriteError(w, err)
}
