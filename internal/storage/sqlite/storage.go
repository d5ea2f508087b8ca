package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/storage"
)

// Storage is a gorm-backed implementation of the storage interface
type Storage struct {
	db  *gorm.DB
	now func() time.Time
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// New opens the database and migrates the schema
func New(cfg Config) (*Storage, error) {
	logLevel := logger.Silent
	if cfg.LogQueries {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// Every connection to :memory: is a separate database
	if strings.Contains(cfg.DSN, ":memory:") {
		sqlDB.SetMaxOpenConns(1)
	}

	s := &Storage{db: db, now: time.Now}
	if err := s.migrate(cfg.LegacySchema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Storage) migrate(legacy bool) error {
	var room any = &roomRow{}
	if legacy {
		room = &legacyRoomRow{}
	}
	return s.db.AutoMigrate(room, &playerRow{})
}

// Close closes the underlying connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translateError maps driver errors onto model errors
func translateError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "has no column named") || strings.Contains(msg, "no such column") {
		return fmt.Errorf("%w: %s", model.ErrUnknownColumn, msg)
	}
	return err
}

// Room operations

func (s *Storage) InsertRoom(ctx context.Context, room *model.Room) (*model.Room, error) {
	if err := storage.ValidateNewRoom(room); err != nil {
		return nil, err
	}

	row := toRoomRow(room)
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	now := s.now()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now

	// Leave unset metadata out of the INSERT so older schemas accept it
	var omit []string
	for _, col := range metadataColumns {
		if isNilMetadata(row, col) {
			omit = append(omit, col)
		}
	}

	q := s.db.WithContext(ctx)
	if len(omit) > 0 {
		q = q.Omit(omit...)
	}
	if err := q.Create(&row).Error; err != nil {
		return nil, translateError(err)
	}
	return row.toModel(), nil
}

func isNilMetadata(row roomRow, col string) bool {
	switch col {
	case "player1_name":
		return row.Player1Name == nil
	case "player1_avatar":
		return row.Player1Avatar == nil
	case "player2_name":
		return row.Player2Name == nil
	case "player2_avatar":
		return row.Player2Avatar == nil
	}
	return true
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	return getRoom(s.db.WithContext(ctx), id)
}

func getRoom(db *gorm.DB, id model.RoomID) (*model.Room, error) {
	var row roomRow
	if err := db.Where("id = ?", string(id)).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrRoomNotFound
		}
		return nil, translateError(err)
	}
	return row.toModel(), nil
}

func (s *Storage) GetRoomByCode(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	var row roomRow
	err := s.db.WithContext(ctx).
		Where("room_code = ?", string(code)).
		Order("created_at DESC").
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrRoomNotFound
		}
		return nil, translateError(err)
	}
	return row.toModel(), nil
}

func (s *Storage) UpdateRoom(ctx context.Context, id model.RoomID, patch model.RoomPatch) (*model.Room, error) {
	var updated *model.Room
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getRoom(tx, id); err != nil {
			return err
		}

		cols := roomPatchColumns(patch)
		cols["updated_at"] = s.now()
		if err := tx.Model(&roomRow{}).Where("id = ?", string(id)).Updates(cols).Error; err != nil {
			return translateError(err)
		}

		room, err := getRoom(tx, id)
		if err != nil {
			return err
		}
		updated = room
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", string(id)).Delete(&playerRow{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", string(id)).Delete(&roomRow{}).Error
	})
}

// Player operations

func (s *Storage) InsertPlayer(ctx context.Context, player *model.Player) (*model.Player, error) {
	row := toPlayerRow(player)
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.JoinedAt.IsZero() {
		row.JoinedAt = s.now()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&roomRow{}).Where("id = ?", row.RoomID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return model.ErrRoomNotFound
		}
		// A rejoining identity replaces its previous row
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "room_id"}, {Name: "player_id"}},
			UpdateAll: true,
		}).Create(&row).Error
	})
	if err != nil {
		return nil, err
	}

	out := row.toModel()
	return &out, nil
}

func (s *Storage) GetPlayersForRoom(ctx context.Context, roomID model.RoomID) ([]model.Player, error) {
	var rows []playerRow
	err := s.db.WithContext(ctx).
		Where("room_id = ?", string(roomID)).
		Order("joined_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	players := make([]model.Player, 0, len(rows))
	for _, row := range rows {
		players = append(players, row.toModel())
	}
	return players, nil
}

func (s *Storage) UpdatePlayer(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, patch model.PlayerPatch) (*model.Player, error) {
	var updated model.Player
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		where := tx.Where("room_id = ? AND player_id = ?", string(roomID), string(playerID))

		cols := playerPatchColumns(patch)
		if len(cols) > 0 {
			if err := where.Model(&playerRow{}).Updates(cols).Error; err != nil {
				return err
			}
		}

		var row playerRow
		err := tx.Where("room_id = ? AND player_id = ?", string(roomID), string(playerID)).Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ErrPlayerNotFound
		}
		if err != nil {
			return err
		}
		updated = row.toModel()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) error {
	return s.db.WithContext(ctx).
		Where("room_id = ? AND player_id = ?", string(roomID), string(playerID)).
		Delete(&playerRow{}).Error
}
