package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/services/identity"
	"github.com/mcoot/spectrumgame-go/internal/services/session"
)

// Config holds CLI configuration
type Config struct {
	ServerURL    string
	IdentityFile string
	StateFile    string
	Output       string
	Verbose      bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:    getEnvOrDefault("SPECTRUM_SERVER", "http://localhost:8080"),
		IdentityFile: getEnvOrDefault("SPECTRUM_IDENTITY_FILE", identity.DefaultPath()),
		StateFile:    getEnvOrDefault("SPECTRUM_STATE_FILE", defaultStateFile()),
		Output:       "text",
		Verbose:      false,
	}
}

// State is what one CLI invocation hands to the next: the room the user is
// in and the local settings that never reach the store
type State struct {
	RoomID   model.RoomID     `json:"room_id"`
	RoomCode model.RoomCode   `json:"room_code"`
	Mode     model.GameMode   `json:"mode"`
	Settings session.Settings `json:"settings"`

	// ProcessedRound is the last party round this participant reset their
	// row for
	ProcessedRound int `json:"processed_round,omitempty"`
	// ScoredRound is the last party round this participant scored
	// themselves for
	ScoredRound int `json:"scored_round,omitempty"`

	// Classic seat names and avatars the store had no columns for
	Player1 *model.SeatMetadata `json:"player1,omitempty"`
	Player2 *model.SeatMetadata `json:"player2,omitempty"`
}

// InRoom reports whether the state points at a room
func (s *State) InRoom() bool {
	return s.RoomID != ""
}

// LoadState reads the state file. A missing file is an empty state.
func (c *Config) LoadState() (*State, error) {
	data, err := os.ReadFile(c.StateFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &State{Settings: session.DefaultSettings()}, nil
		}
		return nil, err
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", c.StateFile, err)
	}
	return &st, nil
}

// SaveState writes the state file
func (c *Config) SaveState(st *State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.StateFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.StateFile, data, 0600)
}

// ClearState forgets the current room
func (c *Config) ClearState() error {
	if err := os.Remove(c.StateFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func defaultStateFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".spectrum/state.json"
	}
	return filepath.Join(home, ".spectrum", "state.json")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
