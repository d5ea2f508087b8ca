package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	rooms     map[model.RoomID]*model.Room
	codeIndex map[model.RoomCode]model.RoomID
	players   map[playerKey]*model.Player

	legacySchema bool
	now          func() time.Time
}

type playerKey struct {
	roomID   model.RoomID
	playerID model.PlayerID
}

// Option configures a memory Storage
type Option func(*Storage)

// WithLegacySchema makes the store reject the optional room metadata
// columns, as a deployment that predates them would
func WithLegacySchema() Option {
	return func(s *Storage) { s.legacySchema = true }
}

// WithNow overrides the timestamp source for created_at/updated_at
func WithNow(now func() time.Time) Option {
	return func(s *Storage) { s.now = now }
}

// New creates a new in-memory storage instance
func New(opts ...Option) *Storage {
	s := &Storage{
		rooms:     make(map[model.RoomID]*model.Room),
		codeIndex: make(map[model.RoomCode]model.RoomID),
		players:   make(map[playerKey]*model.Player),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) InsertRoom(ctx context.Context, room *model.Room) (*model.Room, error) {
	if err := storage.ValidateNewRoom(room); err != nil {
		return nil, err
	}
	if s.legacySchema && model.RoomHasMetadata(room) {
		return nil, model.ErrUnknownColumn
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := room.Clone()
	if stored.ID == "" {
		stored.ID = model.RoomID(uuid.NewString())
	}
	now := s.now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	s.rooms[stored.ID] = stored
	s.codeIndex[stored.RoomCode] = stored.ID
	return stored.Clone(), nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room.Clone(), nil
}

func (s *Storage) GetRoomByCode(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.codeIndex[code]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room.Clone(), nil
}

func (s *Storage) UpdateRoom(ctx context.Context, id model.RoomID, patch model.RoomPatch) (*model.Room, error) {
	if s.legacySchema && patch.HasMetadata() {
		return nil, model.ErrUnknownColumn
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	patch.Apply(room)
	room.UpdatedAt = s.now()
	return room.Clone(), nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil
	}
	if s.codeIndex[room.RoomCode] == id {
		delete(s.codeIndex, room.RoomCode)
	}
	delete(s.rooms, id)
	for key := range s.players {
		if key.roomID == id {
			delete(s.players, key)
		}
	}
	return nil
}

// Player operations

func (s *Storage) InsertPlayer(ctx context.Context, player *model.Player) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[player.RoomID]; !ok {
		return nil, model.ErrRoomNotFound
	}

	stored := player.Clone()
	if stored.ID == "" {
		stored.ID = model.RowID(uuid.NewString())
	}
	if stored.JoinedAt.IsZero() {
		stored.JoinedAt = s.now()
	}
	s.players[playerKey{stored.RoomID, stored.PlayerID}] = &stored

	out := stored.Clone()
	return &out, nil
}

func (s *Storage) GetPlayersForRoom(ctx context.Context, roomID model.RoomID) ([]model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := []model.Player{}
	for key, p := range s.players {
		if key.roomID == roomID {
			players = append(players, p.Clone())
		}
	}
	sort.SliceStable(players, func(i, j int) bool {
		if players[i].JoinedAt.Equal(players[j].JoinedAt) {
			return players[i].ID < players[j].ID
		}
		return players[i].JoinedAt.Before(players[j].JoinedAt)
	})
	return players, nil
}

func (s *Storage) UpdatePlayer(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, patch model.PlayerPatch) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[playerKey{roomID, playerID}]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	patch.Apply(p)
	out := p.Clone()
	return &out, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, playerKey{roomID, playerID})
	return nil
}
