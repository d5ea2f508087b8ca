package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/spectrumgame-go/internal/middleware"
)

// Logging logs API requests with the caller and room they touch
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger, RequestAttrs)
}

// RequestAttrs names the caller and room of an API request
func RequestAttrs(r *http.Request) []slog.Attr {
	var attrs []slog.Attr
	if id := r.Header.Get(PlayerHeader); id != "" {
		attrs = append(attrs, slog.String("player_id", id))
	}
	if id, ok := mux.Vars(r)["id"]; ok {
		attrs = append(attrs, slog.String("room_id", id))
	}
	return attrs
}
