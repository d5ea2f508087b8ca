package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/storage"
)

// ErrTooMuchContention is returned when an update keeps losing the
// optimistic lock to concurrent writers
var ErrTooMuchContention = errors.New("redis: too many concurrent updates")

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
	now    func() time.Time
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.MaxUpdateRetries <= 0 {
		cfg.MaxUpdateRetries = 1
	}
	return &Storage{
		client: client,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) InsertRoom(ctx context.Context, room *model.Room) (*model.Room, error) {
	if err := storage.ValidateNewRoom(room); err != nil {
		return nil, err
	}

	stored := room.Clone()
	if stored.ID == "" {
		stored.ID = model.RoomID(uuid.NewString())
	}
	now := s.now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	data, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, roomKey(stored.ID), data, s.cfg.RoomTTL)
	pipe.Set(ctx, roomCodeIndexKey(stored.RoomCode), string(stored.ID), s.cfg.RoomTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	return s.getRoom(ctx, s.client, id)
}

// getter is satisfied by both *redis.Client and *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *Storage) getRoom(ctx context.Context, c getter, id model.RoomID) (*model.Room, error) {
	data, err := c.Get(ctx, roomKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) GetRoomByCode(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	id, err := s.client.Get(ctx, roomCodeIndexKey(code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}
	return s.GetRoom(ctx, model.RoomID(id))
}

// UpdateRoom applies the patch under WATCH so concurrent writers to other
// fields are not lost
func (s *Storage) UpdateRoom(ctx context.Context, id model.RoomID, patch model.RoomPatch) (*model.Room, error) {
	key := roomKey(id)
	var updated *model.Room

	txf := func(tx *redis.Tx) error {
		room, err := s.getRoom(ctx, tx, id)
		if err != nil {
			return err
		}
		patch.Apply(room)
		room.UpdatedAt = s.now()

		data, err := json.Marshal(room)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.cfg.RoomTTL)
			pipe.Expire(ctx, roomCodeIndexKey(room.RoomCode), s.cfg.RoomTTL)
			pipe.Expire(ctx, playersForRoomIndexKey(id), s.cfg.RoomTTL)
			return nil
		})
		if err == nil {
			updated = room
		}
		return err
	}

	for i := 0; i < s.cfg.MaxUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, ErrTooMuchContention
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	room, err := s.GetRoom(ctx, id)
	if errors.Is(err, model.ErrRoomNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	indexKey := playersForRoomIndexKey(id)
	playerKeys, err := s.client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	for _, key := range playerKeys {
		pipe.Del(ctx, key)
	}
	pipe.Del(ctx, indexKey, roomKey(id))
	// Only drop the code index if it still points at this room
	codeKey := roomCodeIndexKey(room.RoomCode)
	current, err := s.client.Get(ctx, codeKey).Result()
	if err == nil && current == string(id) {
		pipe.Del(ctx, codeKey)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Player operations

func (s *Storage) InsertPlayer(ctx context.Context, player *model.Player) (*model.Player, error) {
	exists, err := s.client.Exists(ctx, roomKey(player.RoomID)).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, model.ErrRoomNotFound
	}

	stored := player.Clone()
	if stored.ID == "" {
		stored.ID = model.RowID(uuid.NewString())
	}
	if stored.JoinedAt.IsZero() {
		stored.JoinedAt = s.now()
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}

	pKey := playerKey(stored.RoomID, stored.PlayerID)
	indexKey := playersForRoomIndexKey(stored.RoomID)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, pKey, data, s.cfg.RoomTTL)
	pipe.ZAdd(ctx, indexKey, redis.Z{Score: float64(stored.JoinedAt.UnixMilli()), Member: pKey})
	pipe.Expire(ctx, indexKey, s.cfg.RoomTTL) // Keep index TTL in sync
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *Storage) GetPlayersForRoom(ctx context.Context, roomID model.RoomID) ([]model.Player, error) {
	playerKeys, err := s.client.ZRange(ctx, playersForRoomIndexKey(roomID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	if len(playerKeys) == 0 {
		return []model.Player{}, nil
	}

	values, err := s.client.MGet(ctx, playerKeys...).Result()
	if err != nil {
		return nil, err
	}

	players := make([]model.Player, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // Row may have expired
		}
		var p model.Player
		if err := json.Unmarshal([]byte(str), &p); err != nil {
			continue // Skip invalid data
		}
		players = append(players, p)
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
	key := playerKey(roomID, playerID)
	var updated *model.Player

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrPlayerNotFound
			}
			return err
		}
		var p model.Player
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		patch.Apply(&p)

		out, err := json.Marshal(p)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, s.cfg.RoomTTL)
			return nil
		})
		if err == nil {
			updated = &p
		}
		return err
	}

	for i := 0; i < s.cfg.MaxUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, ErrTooMuchContention
}

func (s *Storage) DeletePlayer(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) error {
	key := playerKey(roomID, playerID)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.ZRem(ctx, playersForRoomIndexKey(roomID), key)
	_, err := pipe.Exec(ctx)
	return err
}
