package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/spectrumgame-go/internal/api/apierr"
	"github.com/mcoot/spectrumgame-go/internal/api/response"
	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/share"
	"github.com/mcoot/spectrumgame-go/internal/storage"
)

const maxQRSize = 1024

// ShareHandler renders join QR codes for rooms
type ShareHandler struct {
	storage storage.Storage
	baseURL string
}

// NewShareHandler creates a new share handler. baseURL is the public join
// page; empty means the QR encodes the bare room code.
func NewShareHandler(storage storage.Storage, baseURL string) *ShareHandler {
	return &ShareHandler{storage: storage, baseURL: baseURL}
}

// QR handles GET /api/v1/rooms/by-code/{code}/qr.png
func (h *ShareHandler) QR(w http.ResponseWriter, r *http.Request) {
	code := model.NormalizeRoomCode(mux.Vars(r)["code"])
	if !code.Valid() {
		apierr.WriteError(w, model.ErrInvalidRoomCode)
		return
	}
	if _, err := h.storage.GetRoomByCode(r.Context(), code); err != nil {
		apierr.WriteError(w, err)
		return
	}

	size := share.DefaultSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxQRSize {
			apierr.WriteError(w, apierr.NewInvalidRequestError("size must be between 1 and 1024"))
			return
		}
		size = n
	}

	png, err := share.PNG(h.baseURL, code, size)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.PNG(w, png)
}
