package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/spectrumgame-go/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeInvalidRoomCode = "INVALID_ROOM_CODE"
	CodeInvalidGameMode = "INVALID_GAME_MODE"
	CodeRoomNotFound    = "ROOM_NOT_FOUND"
	CodePlayerNotFound  = "PLAYER_NOT_FOUND"
	CodeUnknownColumn   = "UNKNOWN_COLUMN"
	CodeInternalError   = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

type mapping struct {
	err    error
	status int
	code   string
}

// mappings is the single table used in both directions, so a store error
// survives a round trip through the API
var mappings = []mapping{
	{model.ErrRoomNotFound, http.StatusNotFound, CodeRoomNotFound},
	{model.ErrPlayerNotFound, http.StatusNotFound, CodePlayerNotFound},
	{model.ErrInvalidRoomCode, http.StatusBadRequest, CodeInvalidRoomCode},
	{model.ErrInvalidGameMode, http.StatusBadRequest, CodeInvalidGameMode},
	{model.ErrUnknownColumn, http.StatusUnprocessableEntity, CodeUnknownColumn},
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error is reported with
func Status(err error) int {
	return toHTTPError(err).status
}

func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return &httpError{m.status, APIError{m.code, m.err.Error()}}
		}
	}
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

// FromResponse turns a decoded error body back into the model error it was
// produced from, or a plain error carrying the message
func FromResponse(status int, apiErr APIError) error {
	for _, m := range mappings {
		if m.code == apiErr.Code {
			return m.err
		}
	}
	if apiErr.Code == "" {
		return &httpError{status, APIError{CodeInternalError, http.StatusText(status)}}
	}
	return &httpError{status, apiErr}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
