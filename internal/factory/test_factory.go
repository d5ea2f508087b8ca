package factory

import (
	"time"

	"github.com/mcoot/spectrumgame-go/internal/config"
	"github.com/mcoot/spectrumgame-go/internal/dependencies/mocks"
	"github.com/mcoot/spectrumgame-go/internal/model"
	"github.com/mcoot/spectrumgame-go/internal/services/identity"
	"github.com/mcoot/spectrumgame-go/internal/storage"
	"github.com/mcoot/spectrumgame-go/internal/storage/memory"
	"github.com/mcoot/spectrumgame-go/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App backed by memory storage with mocked dependencies
// and change notifications enabled
func NewTestApp() *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	store := memory.New(memory.WithNow(mockClock.Now))

	app := newWithDependencies(store, config.StorageMemory, mockClock, mockRandom, testutil.NopLogger(), true, "http://localhost:8080")

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// NewSession creates a participant with a fixed identity that shares the
// app's mocks. A nil store talks to the app's storage directly.
func (t *TestApp) NewSession(id model.PlayerID, store storage.Storage) *Session {
	if store == nil {
		store = t.Storage
	}
	return NewSession(SessionConfig{
		Storage:  store,
		Identity: identity.Fixed(id),
		Clock:    t.MockClock,
		Random:   t.MockRandom,
		Logger:   testutil.NopLogger(),
	})
}
