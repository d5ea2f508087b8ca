package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/services/session"
)

func TestStateFileLifecycle(t *testing.T) {
	c := &Config{StateFile: filepath.Join(t.TempDir(), "nested", "state.json")}

	st, err := c.LoadState()
	require.NoError(t, err)
	assert.False(t, st.InRoom())
	assert.Equal(t, session.DefaultSettings(), st.Settings)

	st.RoomID = "room-1"
	st.RoomCode = "ABCD"
	st.Mode = model.GameModeParty
	st.ProcessedRound = 3
	st.ScoredRound = 2
	st.Settings.TotalRounds = 5
	require.NoError(t, c.SaveState(st))

	loaded, err := c.LoadState()
	require.NoError(t, err)
	assert.Equal(t, st, loaded)

	require.NoError(t, c.ClearState())
	require.NoError(t, c.ClearState())
	loaded, err = c.LoadState()
	require.NoError(t, err)
	assert.False(t, loaded.InRoom())
}

func TestCorruptStateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := (&Config{StateFile: path}).LoadState()
	assert.Error(t, err)
}

func TestDefaultConfigFromEnv(t *testing.T) {
	t.Setenv("SPECTRUM_SERVER", "http://game.example:9000")
	t.Setenv("SPECTRUM_STATE_FILE", "/tmp/spectrum-state.json")

	c := DefaultConfig()
	assert.Equal(t, "http://game.example:9000", c.ServerURL)
	assert.Equal(t, "/tmp/spectrum-state.json", c.StateFile)
	assert.Equal(t, "text", c.Output)
}
