package identity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mcoot/spectrumgame-go/internal/dependencies/random"
	"github.com/mcoot/spectrumgame-go/internal/model"
)

// Provider hands out the anonymous identity of the local participant. The
// same identity is returned for the lifetime of the underlying storage.
type Provider interface {
	GetOrCreate(ctx context.Context) (model.PlayerID, error)
}

// FileProvider keeps the identity in a file, creating it on first use
type FileProvider struct {
	path   string
	random random.Random

	mu     sync.Mutex
	cached model.PlayerID
}

// Ensure FileProvider implements Provider
var _ Provider = (*FileProvider)(nil)

// NewFileProvider creates a provider backed by the file at path
func NewFileProvider(path string, random random.Random) *FileProvider {
	return &FileProvider{path: path, random: random}
}

// DefaultPath returns ~/.spectrum/identity, or a relative path if the home
// directory is unknown
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".spectrum", "identity")
	}
	return filepath.Join(home, ".spectrum", "identity")
}

// GetOrCreate reads the stored identity or writes a new one
func (p *FileProvider) GetOrCreate(ctx context.Context) (model.PlayerID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != "" {
		return p.cached, nil
	}

	data, err := os.ReadFile(p.path)
	switch {
	case err == nil:
		id := strings.TrimSpace(string(data))
		if _, perr := uuid.Parse(id); perr == nil {
			p.cached = model.PlayerID(id)
			return p.cached, nil
		}
		// Unreadable contents are replaced rather than trusted
	case !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("read identity: %w", err)
	}

	id := model.PlayerID(p.random.UUID())
	if err := os.MkdirAll(filepath.Dir(p.path), 0700); err != nil {
		return "", fmt.Errorf("create identity dir: %w", err)
	}
	if err := os.WriteFile(p.path, []byte(id), 0600); err != nil {
		return "", fmt.Errorf("write identity: %w", err)
	}

	p.cached = id
	return id, nil
}

// MemoryProvider keeps the identity for the lifetime of the process
type MemoryProvider struct {
	mu     sync.Mutex
	id     model.PlayerID
	random random.Random
	ready  bool
}

// Ensure MemoryProvider implements Provider
var _ Provider = (*MemoryProvider)(nil)

// NewMemoryProvider returns a provider that generates its identity on first use
func NewMemoryProvider(random random.Random) *MemoryProvider {
	return &MemoryProvider{random: random, ready: true}
}

// Fixed returns a provider that always yields id
func Fixed(id model.PlayerID) *MemoryProvider {
	return &MemoryProvider{id: id, ready: true}
}

// Pending returns a provider whose identity has not resolved yet. Calls
// fail with model.ErrIdentityNotReady until Resolve is called.
func Pending(id model.PlayerID) *MemoryProvider {
	return &MemoryProvider{id: id}
}

// Resolve makes a pending provider ready
func (p *MemoryProvider) Resolve() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ready = true
}

// GetOrCreate returns the identity, generating one if needed
func (p *MemoryProvider) GetOrCreate(ctx context.Context) (model.PlayerID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ready {
		return "", model.ErrIdentityNotReady
	}
	if p.id == "" {
		p.id = model.PlayerID(p.random.UUID())
	}
	return p.id, nil
}
