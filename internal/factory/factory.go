package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/spectrumgame-go/internal/api"
	"github.com/mcoot/spectrumgame-go/internal/config"
	"github.com/mcoot/spectrumgame-go/internal/dependencies/clock"
	"github.com/mcoot/spectrumgame-go/internal/dependencies/random"
	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/poller"
	"github.com/mcoot/spectrumgame-go/internal/services/cards"
	"github.com/mcoot/spectrumgame-go/internal/services/classic"
	"github.com/mcoot/spectrumgame-go/internal/services/identity"
	"github.com/mcoot/spectrumgame-go/internal/services/party"
	"github.com/mcoot/spectrumgame-go/internal/sse"
	"github.com/mcoot/spectrumgame-go/internal/storage"
	"github.com/mcoot/spectrumgame-go/internal/storage/memory"
	redisstorage "github.com/mcoot/spectrumgame-go/internal/storage/redis"
	sqlitestorage "github.com/mcoot/spectrumgame-go/internal/storage/sqlite"
)

// App contains the wired record store server
type App struct {
	// Storage
	Storage     storage.Storage
	StorageType string

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Logger *slog.Logger

	// Change notifications, nil when disabled
	HubManager  *sse.HubManager
	Broadcaster *sse.Broadcaster

	// Handler serves the record store API
	Handler http.Handler

	closers []io.Closer
}

// New creates the server application from configuration
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, closer, err := newStorage(cfg.Storage)
	if err != nil {
		return nil, err
	}

	app := newWithDependencies(store, cfg.Storage.Type, clock.New(), random.New(), logger, cfg.SSE.Enabled, cfg.PublicURL)
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	return app, nil
}

// newStorage opens the configured backend
func newStorage(cfg config.StorageConfig) (storage.Storage, io.Closer, error) {
	switch cfg.Type {
	case "", config.StorageMemory:
		return memory.New(), nil, nil
	case config.StorageRedis:
		store, err := redisstorage.New(cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis storage: %w", err)
		}
		return store, store, nil
	case config.StorageSQLite:
		store, err := sqlitestorage.New(cfg.SQLite)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("invalid storage type %q", cfg.Type)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	storageType string,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
	events bool,
	publicURL string,
) *App {
	if storageType == "" {
		storageType = config.StorageMemory
	}

	app := &App{
		Storage:     store,
		StorageType: storageType,
		Clock:       clk,
		Random:      rnd,
		Logger:      logger,
	}

	if events {
		app.HubManager = sse.NewHubManager(logger)
		app.Broadcaster = sse.NewBroadcaster(app.HubManager, clk, logger)
	}

	app.Handler = api.NewRouter(api.RouterConfig{
		Logger:      logger,
		Storage:     store,
		StorageType: storageType,
		HubManager:  app.HubManager,
		Broadcaster: app.Broadcaster,
		PublicURL:   publicURL,
	})

	return app
}

// Close stops the event hubs and releases the storage backend
func (a *App) Close() error {
	if a.HubManager != nil {
		a.HubManager.Close()
	}
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// SessionConfig holds the dependencies of one participant's client
type SessionConfig struct {
	// Storage is the shared record store, usually an httpstore client
	Storage  storage.Storage
	Identity identity.Provider

	// Clock and Random default to the real implementations
	Clock  clock.Clock
	Random random.Random

	// Logger is optional; nil discards
	Logger *slog.Logger
}

// Session contains the controllers one participant drives a room with
type Session struct {
	Storage  storage.Storage
	Identity identity.Provider
	Clock    clock.Clock
	Logger   *slog.Logger

	Cards   *cards.Generator
	Classic *classic.Controller
	Party   *party.Controller
}

// NewSession wires the classic and party controllers over one store
func NewSession(cfg SessionConfig) *Session {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	rnd := cfg.Random
	if rnd == nil {
		rnd = random.New()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	gen := cards.New(rnd)
	return &Session{
		Storage:  cfg.Storage,
		Identity: cfg.Identity,
		Clock:    clk,
		Logger:   logger,
		Cards:    gen,
		Classic:  classic.NewController(cfg.Storage, cfg.Identity, gen, clk, logger),
		Party:    party.NewController(cfg.Storage, cfg.Identity, gen, clk, logger),
	}
}

// Poller returns a synchronizer for the room whose snapshots feed the
// controller for mode. ctx bounds the writes the controller makes in
// reaction to a snapshot.
func (s *Session) Poller(ctx context.Context, mode model.GameMode, roomID model.RoomID, cfg poller.Config) *poller.Poller {
	p := poller.New(poller.ForMode(mode, s.Storage, roomID, s.Clock), cfg, s.Clock, s.Logger)
	p.Subscribe(func(snap model.Snapshot) {
		if err := s.Observe(ctx, mode, snap); err != nil {
			s.Logger.Warn("failed to apply snapshot",
				slog.String("room_id", string(roomID)),
				slog.String("error", err.Error()))
		}
	})
	return p
}

// Observe hands a snapshot to the controller for mode
func (s *Session) Observe(ctx context.Context, mode model.GameMode, snap model.Snapshot) error {
	if mode == model.GameModeParty {
		return s.Party.Observe(ctx, snap)
	}
	return s.Classic.Observe(ctx, snap)
}
