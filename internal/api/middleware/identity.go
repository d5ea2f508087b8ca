package middleware

import (
	"context"
	"net/http"

	"github.com/mcoot/spectrumgame-go/internal/model"
)

// PlayerHeader carries the caller's anonymous identity. It is informational
// only: the record store performs no authorization.
const PlayerHeader = "X-Spectrum-Player"

type contextKey string

const playerContextKey contextKey = "player_id"

// Identity copies the caller's identity header into the request context
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get(PlayerHeader); id != "" {
			r = r.WithContext(context.WithValue(r.Context(), playerContextKey, model.PlayerID(id)))
		}
		next.ServeHTTP(w, r)
	})
}

// PlayerID returns the caller identity from the context, if one was sent
func PlayerID(ctx context.Context) model.PlayerID {
	id, _ := ctx.Value(playerContextKey).(model.PlayerID)
	return id
}
