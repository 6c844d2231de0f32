package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"SignalSentinel/internal/model"
)

// Store is the single owner of persisted ticker state. Every operation holds mu for
// its whole read-modify-write, so Reset can never interleave with an Update.
type Store struct {
	mu      sync.Mutex
	backend Backend
	tickers []string
	log     zerolog.Logger
}

// NewStore creates a Store for the configured ticker universe.
func NewStore(backend Backend, tickers []string, log zerolog.Logger) *Store {
	t := make([]string, len(tickers))
	copy(t, tickers)
	return &Store{
		backend: backend,
		tickers: t,
		log:     log.With().Str("component", "state").Str("backend", backend.Name()).Logger(),
	}
}

// Tickers returns the configured ticker list in order.
func (s *Store) Tickers() []string {
	t := make([]string, len(s.tickers))
	copy(t, s.tickers)
	return t
}

// Load returns the current state, initialising and persisting a flat map on first use.
func (s *Store) Load(ctx context.Context) (model.StateMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Save persists m for the configured tickers. Tickers missing from m are stored flat.
func (s *Store) Save(ctx context.Context, m model.StateMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, m)
}

// Reset sets every ticker flat and persists immediately.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save(ctx, model.NewStateMap(s.tickers)); err != nil {
		return err
	}
	s.log.Info().Int("tickers", len(s.tickers)).Msg("signal states reset")
	return nil
}

// Update loads the state, applies fn to a private copy and saves the result, all under
// one lock hold. If fn returns an error nothing is written.
func (s *Store) Update(ctx context.Context, fn func(model.StateMap) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return err
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return err
	}
	return s.save(ctx, next)
}

func (s *Store) load(ctx context.Context) (model.StateMap, error) {
	stored, exists, err := s.backend.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load: %w", model.ErrPersistence, err)
	}
	if !exists {
		fresh := model.NewStateMap(s.tickers)
		if err := s.save(ctx, fresh); err != nil {
			return nil, err
		}
		s.log.Info().Int("tickers", len(s.tickers)).Msg("initialised state")
		return fresh.Clone(), nil
	}

	out, changed := s.reconcile(stored)
	if changed {
		s.log.Warn().Msg("persisted tickers differ from configuration, reconciling")
		if err := s.save(ctx, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// reconcile restricts stored to the configured tickers, adding missing ones as flat.
func (s *Store) reconcile(stored model.StateMap) (model.StateMap, bool) {
	out := make(model.StateMap, len(s.tickers))
	changed := len(stored) != len(s.tickers)
	for _, t := range s.tickers {
		st, ok := stored[t]
		if !ok {
			changed = true
		}
		out[t] = st
	}
	return out, changed
}

func (s *Store) save(ctx context.Context, m model.StateMap) error {
	out := make(model.StateMap, len(s.tickers))
	for _, t := range s.tickers {
		out[t] = m[t]
	}
	if err := s.backend.Write(ctx, out); err != nil {
		return fmt.Errorf("%w: save: %w", model.ErrPersistence, err)
	}
	return nil
}
