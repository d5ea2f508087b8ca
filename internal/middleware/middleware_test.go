package middleware_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/spectrumgame-go/internal/middleware"
	"github.com/mcoot/spectrumgame-go/internal/testutil"
)

func roomAttr(r *http.Request) []slog.Attr {
	return []slog.Attr{slog.String("room_id", r.URL.Query().Get("room"))}
}

func TestLoggingLevels(t *testing.T) {
	tests := []struct {
		name   string
		method string
		status int
		level  string
	}{
		{"poll read", http.MethodGet, http.StatusOK, `"level":"DEBUG"`},
		{"missing room", http.MethodGet, http.StatusNotFound, `"level":"DEBUG"`},
		{"write", http.MethodPatch, http.StatusOK, `"level":"INFO"`},
		{"bad request", http.MethodPost, http.StatusBadRequest, `"level":"WARN"`},
		{"store failure", http.MethodGet, http.StatusInternalServerError, `"level":"ERROR"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.CaptureLogger()
			h := middleware.Logging(logger, roomAttr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("body"))
			}))

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(tt.method, "/api/v1/rooms?room=r1", nil))

			assert.Equal(t, tt.status, rr.Code)
			assert.Contains(t, logs.String(), tt.level)
			assert.Contains(t, logs.String(), `"room_id":"r1"`)
			assert.Contains(t, logs.String(), `"size":4`)
		})
	}
}

func TestRecoveryWritesPanicResponse(t *testing.T) {
	logger, logs := testutil.CaptureLogger()
	h := middleware.Recovery(logger, roomAttr, middleware.DefaultPanicHandler)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/rooms?room=r2", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, logs.String(), "panic recovered")
	assert.Contains(t, logs.String(), `"room_id":"r2"`)
}

func TestRecoveryAbortsStartedResponse(t *testing.T) {
	logger, logs := testutil.CaptureLogger()
	h := middleware.Recovery(logger, roomAttr, middleware.DefaultPanicHandler)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("event: connected\n\n"))
			panic("boom")
		}))

	rr := httptest.NewRecorder()
	assert.PanicsWithError(t, http.ErrAbortHandler.Error(), func() {
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/rooms/r3/events?room=r3", nil))
	})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "Internal Server Error")
	assert.Contains(t, logs.String(), `"response_started":true`)
	assert.Contains(t, logs.String(), `"room_id":"r3"`)
}

func TestRecoveryPassesAbortThrough(t *testing.T) {
	logger, logs := testutil.CaptureLogger()
	h := middleware.Recovery(logger, roomAttr, middleware.DefaultPanicHandler)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(http.ErrAbortHandler)
		}))

	assert.Panics(t, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.NotContains(t, logs.String(), "panic recovered")
}
