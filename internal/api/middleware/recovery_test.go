package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/mcoot/spectrumgame-go/internal/api/apierr"
	"github.com/mcoot/spectrumgame-go/internal/api/middleware"
	"github.com/mcoot/spectrumgame-go/internal/testutil"
)

func TestRecoveryNamesRouteAndRoom(t *testing.T) {
	logger, logs := testutil.CaptureLogger()
	r := mux.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.HandleFunc("/rooms/{id}", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/rooms/r9", nil)
	req.Header.Set(middleware.PlayerHeader, "alice")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), apierr.CodeInternalError)
	assert.Contains(t, logs.String(), `"route":"/rooms/{id}"`)
	assert.Contains(t, logs.String(), `"room_id":"r9"`)
	assert.Contains(t, logs.String(), `"player_id":"alice"`)
}
