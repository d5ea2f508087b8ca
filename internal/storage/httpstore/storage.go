package httpstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mcoot/spectrumgame-go/internal/api/apierr"
	"github.com/mcoot/spectrumgame-go/internal/api/middleware"
	"github.com/mcoot/spectrumgame-go/internal/api/response"
	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/storage"
)

// Config holds HTTP store client settings
type Config struct {
	BaseURL string
	Timeout time.Duration

	// PlayerID is sent with each request for server-side logging
	PlayerID model.PlayerID
}

// Storage is a storage.Storage that talks to the record store API
type Storage struct {
	baseURL    string
	playerID   model.PlayerID
	httpClient *http.Client
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// New creates a new HTTP store client
func New(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return NewWithClient(cfg, &http.Client{Timeout: timeout})
}

// NewWithClient creates a store using the given HTTP client (for testing)
func NewWithClient(cfg Config, client *http.Client) *Storage {
	return &Storage{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		playerID:   cfg.PlayerID,
		httpClient: client,
	}
}

// BaseURL returns the API root this store talks to
func (s *Storage) BaseURL() string {
	return s.baseURL
}

func (s *Storage) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if s.playerID != "" {
		req.Header.Set(middleware.PlayerHeader, string(s.playerID))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp apierr.ErrorResponse
		_ = json.Unmarshal(respBody, &errResp)
		return apierr.FromResponse(resp.StatusCode, errResp.Error)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

func roomPath(id model.RoomID) string {
	return "/api/v1/rooms/" + url.PathEscape(string(id))
}

func playerPath(roomID model.RoomID, playerID model.PlayerID) string {
	return roomPath(roomID) + "/players/" + url.PathEscape(string(playerID))
}

// Room operations

func (s *Storage) InsertRoom(ctx context.Context, room *model.Room) (*model.Room, error) {
	if err := storage.ValidateNewRoom(room); err != nil {
		return nil, err
	}
	var created model.Room
	if err := s.do(ctx, http.MethodPost, "/api/v1/rooms", room, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	var room model.Room
	if err := s.do(ctx, http.MethodGet, roomPath(id), nil, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) GetRoomByCode(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	var room model.Room
	if err := s.do(ctx, http.MethodGet, "/api/v1/rooms/by-code/"+url.PathEscape(string(code)), nil, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) UpdateRoom(ctx context.Context, id model.RoomID, patch model.RoomPatch) (*model.Room, error) {
	var room model.Room
	if err := s.do(ctx, http.MethodPatch, roomPath(id), patch, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	return s.do(ctx, http.MethodDelete, roomPath(id), nil, nil)
}

// Player operations

func (s *Storage) InsertPlayer(ctx context.Context, player *model.Player) (*model.Player, error) {
	var created model.Player
	if err := s.do(ctx, http.MethodPost, roomPath(player.RoomID)+"/players", player, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Storage) GetPlayersForRoom(ctx context.Context, roomID model.RoomID) ([]model.Player, error) {
	var resp response.Players
	if err := s.do(ctx, http.MethodGet, roomPath(roomID)+"/players", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Players == nil {
		resp.Players = []model.Player{}
	}
	return resp.Players, nil
}

func (s *Storage) UpdatePlayer(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, patch model.PlayerPatch) (*model.Player, error) {
	var player model.Player
	if err := s.do(ctx, http.MethodPatch, playerPath(roomID, playerID), patch, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) error {
	return s.do(ctx, http.MethodDelete, playerPath(roomID, playerID), nil, nil)
}
