package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/spectrumgame-go/internal/api/handler"
	"github.com/mcoot/spectrumgame-go/internal/api/middleware"
	"github.com/mcoot/spectrumgame-go/internal/api/response"
	"github.com/mcoot/spectrumgame-go/internal/sse"
	"github.com/mcoot/spectrumgame-go/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	Storage     storage.Storage
	StorageType string

	// HubManager and Broadcaster enable the push endpoint. Both nil means
	// clients rely on polling alone.
	HubManager  *sse.HubManager
	Broadcaster *sse.Broadcaster

	// PublicURL is the join page encoded into share QR codes
	PublicURL string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	var notifier handler.Notifier
	if cfg.Broadcaster != nil {
		notifier = cfg.Broadcaster
	}

	roomHandler := handler.NewRoomHandler(cfg.Storage, notifier, cfg.Logger)
	playerHandler := handler.NewPlayerHandler(cfg.Storage, notifier, cfg.Logger)
	shareHandler := handler.NewShareHandler(cfg.Storage, cfg.PublicURL)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))
	api.Use(middleware.Identity)

	// Room records
	api.HandleFunc("/rooms", roomHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/rooms/by-code/{code}", roomHandler.GetByCode).Methods(http.MethodGet)
	api.HandleFunc("/rooms/by-code/{code}/qr.png", shareHandler.QR).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{id}", roomHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{id}", roomHandler.Update).Methods(http.MethodPatch)
	api.HandleFunc("/rooms/{id}", roomHandler.Delete).Methods(http.MethodDelete)

	// Party roster rows
	api.HandleFunc("/rooms/{id}/players", playerHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{id}/players", playerHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{id}/players/{player_id}", playerHandler.Update).Methods(http.MethodPatch)
	api.HandleFunc("/rooms/{id}/players/{player_id}", playerHandler.Delete).Methods(http.MethodDelete)

	if cfg.HubManager != nil {
		eventsHandler := handler.NewEventsHandler(cfg.Storage, cfg.HubManager)
		api.HandleFunc("/rooms/{id}/events", eventsHandler.Stream).Methods(http.MethodGet)
	}

	api.HandleFunc("/health", healthHandler(cfg.StorageType)).Methods(http.MethodGet)

	return r
}

func healthHandler(storageType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, response.Health{Status: "ok", Storage: storageType})
	}
}
