package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"PortfolioGuard/internal/model"

	"go.uber.org/zap"
)

// Options configures a Store.
type Options struct {
	Seed     []model.Position
	Window   TradingWindow
	Location *time.Location
	Clock    Clock
	Logger   *zap.Logger
}

// Store owns the persisted positions. All access goes through a single
// mutex so that one evaluation pass at a time can load, rebase and save.
type Store struct {
	mu      sync.Mutex
	backend Backend
	seed    []model.Position
	window  TradingWindow
	loc     *time.Location
	clock   Clock
	log     *zap.Logger
}

// New creates a Store on top of backend.
func New(backend Backend, opts Options) *Store {
	s := &Store{
		backend: backend,
		seed:    model.ClonePositions(opts.Seed),
		window:  opts.Window,
		loc:     opts.Location,
		clock:   opts.Clock,
		log:     opts.Logger,
	}
	if s.seed == nil {
		s.seed = DefaultSeed()
	}
	if s.window == (TradingWindow{}) {
		s.window = DefaultTradingWindow
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Load returns the persisted positions, seeding the backend on first run.
func (s *Store) Load(ctx context.Context) ([]model.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Save writes positions if the clock is inside the trading window. It
// reports whether anything was written.
func (s *Store) Save(ctx context.Context, positions []model.Position) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, positions)
}

// Update runs load, fn and save under one lock. If fn fails nothing is saved.
func (s *Store) Update(ctx context.Context, fn func([]model.Position) ([]model.Position, error)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	positions, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	next, err := fn(positions)
	if err != nil {
		return false, err
	}
	return s.save(ctx, next)
}

// InWindow reports whether a Save issued now would be written.
func (s *Store) InWindow() bool {
	return s.window.Contains(s.clock().In(s.loc))
}

// Backend returns the underlying backend name.
func (s *Store) Backend() string {
	return s.backend.Name()
}

func (s *Store) load(ctx context.Context) ([]model.Position, error) {
	positions, err := s.backend.Read(ctx)
	if errors.Is(err, ErrNotFound) {
		seed := model.ClonePositions(s.seed)
		if err := s.backend.Write(ctx, seed); err != nil {
			return nil, fmt.Errorf("seed %s store: %w", s.backend.Name(), err)
		}
		s.log.Info("position store seeded",
			zap.String("backend", s.backend.Name()),
			zap.Int("positions", len(seed)))
		return seed, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load positions: %w", err)
	}
	if err := Validate(positions); err != nil {
		return nil, fmt.Errorf("load positions: %w", err)
	}
	return positions, nil
}

func (s *Store) save(ctx context.Context, positions []model.Position) (bool, error) {
	now := s.clock().In(s.loc)
	if !s.window.Contains(now) {
		s.log.Debug("outside trading window, skipping save",
			zap.Int("hour", now.Hour()),
			zap.Int("window_start", s.window.StartHour),
			zap.Int("window_end", s.window.EndHour))
		return false, nil
	}
	if err := Validate(positions); err != nil {
		return false, fmt.Errorf("save positions: %w", err)
	}
	if err := s.backend.Write(ctx, positions); err != nil {
		return false, fmt.Errorf("save positions: %w", err)
	}
	return true, nil
}

// Validate checks symbols are present and unique.
func Validate(positions []model.Position) error {
	seen := make(map[string]bool, len(positions))
	for i, p := range positions {
		if p.Symbol == "" {
			return fmt.Errorf("position %d: empty symbol", i)
		}
		if seen[p.Symbol] {
			return fmt.Errorf("position %d: duplicate symbol %s", i, p.Symbol)
		}
		seen[p.Symbol] = true
	}
	return nil
}
