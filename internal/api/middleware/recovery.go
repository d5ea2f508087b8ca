package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/spectrumgame-go/internal/api/apierr"
	"github.com/mcoot/spectrumgame-go/internal/middleware"
)

// Recovery answers a panicking API handler with the JSON internal error.
// The log line names the route as well as the caller and room.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, panicAttrs, apiPanicHandler)
}

func panicAttrs(r *http.Request) []slog.Attr {
	attrs := RequestAttrs(r)
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			attrs = append(attrs, slog.String("route", tpl))
		}
	}
	return attrs
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
