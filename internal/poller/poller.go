package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/spectrumgame-go/internal/dependencies/clock"
	"github.com/mcoot/spectrumgame-go/internal/model"
)

// FetchFunc reads the current state of one room
type FetchFunc func(ctx context.Context) (model.Snapshot, error)

// Handler receives every snapshot the poller observes. Handlers run on the
// poller goroutine and get their own copy.
type Handler func(model.Snapshot)

// Config holds poller settings
type Config struct {
	Interval time.Duration

	// StopOnEnded makes Run return after publishing a snapshot whose room
	// has ended
	StopOnEnded bool
}

// DefaultConfig polls once a second and stops when the game ends
func DefaultConfig() Config {
	return Config{
		Interval:    time.Second,
		StopOnEnded: true,
	}
}

// Poller periodically fetches a room and publishes full snapshots
type Poller struct {
	fetch  FetchFunc
	cfg    Config
	clock  clock.Clock
	logger *slog.Logger

	mu       sync.Mutex
	handlers map[int]Handler
	nextID   int
	last     *model.Snapshot

	trigger chan struct{}
}

// New creates a Poller
func New(fetch FetchFunc, cfg Config, clock clock.Clock, logger *slog.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	return &Poller{
		fetch:    fetch,
		cfg:      cfg,
		clock:    clock,
		logger:   logger.With(slog.String("component", "poller")),
		handlers: make(map[int]Handler),
		trigger:  make(chan struct{}, 1),
	}
}

// Subscribe registers a handler and returns a function that removes it
func (p *Poller) Subscribe(h Handler) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.handlers[id] = h
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.handlers, id)
	}
}

// Trigger asks for a poll as soon as possible. Repeated triggers before the
// next poll collapse into one.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Last returns the most recent snapshot, if any poll has succeeded
func (p *Poller) Last() (model.Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return model.Snapshot{}, false
	}
	return p.last.Clone(), true
}

// PollOnce fetches and publishes a single snapshot. Fetch failures are
// logged at debug level and reported as false; the next poll retries.
func (p *Poller) PollOnce(ctx context.Context) (model.Snapshot, bool) {
	snap, err := p.fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Debug("poll failed", slog.Any("error", err))
		}
		return model.Snapshot{}, false
	}
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = p.clock.Now()
	}

	p.mu.Lock()
	stored := snap.Clone()
	p.last = &stored
	handlers := make([]Handler, 0, len(p.handlers))
	for id := 0; id < p.nextID; id++ {
		if h, ok := p.handlers[id]; ok {
			handlers = append(handlers, h)
		}
	}
	p.mu.Unlock()

	for _, h := range handlers {
		h(snap.Clone())
	}
	return snap, true
}

// Run polls immediately, then on every tick and trigger, until ctx is
// cancelled or, with StopOnEnded, the room has ended
func (p *Poller) Run(ctx context.Context) error {
	ticker := p.clock.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	if p.pollAndCheckEnded(ctx) {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
		case <-p.trigger:
		}
		if p.pollAndCheckEnded(ctx) {
			return nil
		}
	}
}

func (p *Poller) pollAndCheckEnded(ctx context.Context) bool {
	snap, ok := p.PollOnce(ctx)
	if !ok || !p.cfg.StopOnEnded {
		return false
	}
	if snap.Room != nil && snap.Room.IsEnded() {
		p.logger.Info("room ended, polling stopped", slog.String("room_id", string(snap.Room.ID)))
		return true
	}
	return false
}

// Start runs the poller on its own goroutine. The returned stop function
// cancels it and waits for it to exit.
func (p *Poller) Start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = p.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}
