package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/spectrumgame-go/internal/api/response"
	"github.com/mcoot/spectrumgame-go/internal/dependencies/random"
	"github.com/mcoot/spectrumgame-go/internal/factory"
	"github.com/mcoot/spectrumgame-go/internal/logging"
	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/poller"
	"github.com/mcoot/spectrumgame-go/internal/services/identity"
	"github.com/mcoot/spectrumgame-go/internal/services/session"
	"github.com/mcoot/spectrumgame-go/internal/storage/httpstore"
)

var errNoRoom = errors.New("not in a room: create or join one first")

// roomController is what both game modes let a participant do
type roomController interface {
	StartGame(ctx context.Context) error
	SubmitClue(ctx context.Context, text string) error
	SkipClue(ctx context.Context) error
	UpdateGuessAngle(ctx context.Context, angle int) error
	NextRound(ctx context.Context, deck string) error
	EndGame(ctx context.Context) error
	SetCustomCard(ctx context.Context, left, right string) error
	ChangeCard(ctx context.Context) error
	LeaveRoom(ctx context.Context) error
	SetSettings(s session.Settings) error
}

// Client is one participant's connection to the record store. It carries
// the room the participant is in from one invocation to the next.
type Client struct {
	cfg     *Config
	me      model.PlayerID
	store   *httpstore.Storage
	session *factory.Session
	state   *State
	logger  *slog.Logger
	logs    io.Closer
}

// NewClient resolves the local identity and loads the saved room state
func NewClient(ctx context.Context, cfg *Config, stderr io.Writer) (*Client, error) {
	logCfg := logging.DefaultConfig()
	logCfg.Format = "text"
	logCfg.Level = "warn"
	if cfg.Verbose {
		logCfg.Level = "debug"
	}
	logger, logs, err := logging.New(logCfg, stderr)
	if err != nil {
		return nil, err
	}

	rnd := random.New()
	ident := identity.NewFileProvider(cfg.IdentityFile, rnd)
	me, err := ident.GetOrCreate(ctx)
	if err != nil {
		_ = logs.Close()
		return nil, err
	}

	st, err := cfg.LoadState()
	if err != nil {
		_ = logs.Close()
		return nil, err
	}

	store := httpstore.New(httpstore.Config{BaseURL: cfg.ServerURL, PlayerID: me})
	return &Client{
		cfg:   cfg,
		me:    me,
		store: store,
		session: factory.NewSession(factory.SessionConfig{
			Storage:  store,
			Identity: ident,
			Random:   rnd,
			Logger:   logger,
		}),
		state:  st,
		logger: logger,
		logs:   logs,
	}, nil
}

// PlayerID returns the local identity
func (c *Client) PlayerID() model.PlayerID {
	return c.me
}

// State returns the saved room state
func (c *Client) State() *State {
	return c.state
}

// Close releases the logger
func (c *Client) Close() error {
	return c.logs.Close()
}

// controller returns the controller for the current room's mode
func (c *Client) controller() roomController {
	if c.state.Mode == model.GameModeParty {
		return c.session.Party
	}
	return c.session.Classic
}

// applySettings hands the saved settings to both controllers
func (c *Client) applySettings() error {
	if err := c.session.Classic.SetSettings(c.state.Settings); err != nil {
		return err
	}
	return c.session.Party.SetSettings(c.state.Settings)
}

// Resume reattaches to the saved room
func (c *Client) Resume(ctx context.Context) error {
	if !c.state.InRoom() {
		return errNoRoom
	}
	if err := c.applySettings(); err != nil {
		return err
	}

	var err error
	switch c.state.Mode {
	case model.GameModeParty:
		_, err = c.session.Party.Resume(ctx, c.state.RoomID, c.state.ProcessedRound)
		c.session.Party.MarkScored(c.state.ScoredRound)
	default:
		_, err = c.session.Classic.Resume(ctx, c.state.RoomID)
		c.session.Classic.RestoreLocalSeats(c.state.Player1, c.state.Player2)
	}
	if err != nil {
		return err
	}

	// Apply one snapshot so this invocation reacts to the room the way a
	// watching client would
	snap, err := poller.ForMode(c.state.Mode, c.store, c.state.RoomID, c.session.Clock)(ctx)
	if err != nil {
		return err
	}
	return c.session.Observe(ctx, c.state.Mode, snap)
}

// Enter makes room the saved room
func (c *Client) Enter(room *model.Room) {
	c.state.RoomID = room.ID
	c.state.RoomCode = room.RoomCode
	c.state.Mode = room.GameMode
	c.state.ProcessedRound = 0
	c.state.ScoredRound = 0
	c.state.Player1 = nil
	c.state.Player2 = nil
}

// Save records the current room and settings for the next invocation
func (c *Client) Save() error {
	if c.state.InRoom() {
		switch c.state.Mode {
		case model.GameModeParty:
			c.state.ProcessedRound = c.session.Party.View().ProcessedRound
			c.state.ScoredRound = c.session.Party.ScoredRound()
		default:
			c.state.Player1, c.state.Player2 = c.session.Classic.LocalSeats()
		}
	}
	return c.cfg.SaveState(c.state)
}

// Forget drops the saved room but keeps the settings
func (c *Client) Forget() error {
	settings := c.state.Settings
	c.state = &State{Settings: settings}
	return c.cfg.SaveState(c.state)
}

// View renders the local picture of the saved room
func (c *Client) View() RoomView {
	if c.state.Mode == model.GameModeParty {
		return partyView(c.session.Party.View())
	}
	return classicView(c.session.Classic.View())
}

// Health calls the server health check
func (c *Client) Health(ctx context.Context) (response.Health, error) {
	var health response.Health

	url := strings.TrimSuffix(c.cfg.ServerURL, "/") + "/api/v1/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return health, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	httpClient := &http.Client{Timeout: 10 * time.Second}
	resp, err := httpClient.Do(req)
	if err != nil {
		return health, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return health, fmt.Errorf("health check returned %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return health, fmt.Errorf("failed to parse response: %w", err)
	}
	return health, nil
}
