package repository

import (
	"context"
	"sync"

	"github.com/levelup/heist/internal/domain/model"
)

// defaultStackLimit caps identical power-ups held by one team.
const defaultStackLimit = 2

// MemoryPowerUpStore implements PowerUpStore with a mutex-guarded map of
// per-team power-up slices.
type MemoryPowerUpStore struct {
	mu         sync.RWMutex
	byTeam     map[string][]model.PowerUp
	stackLimit int
}

// PowerUpOption applies a configuration option to the MemoryPowerUpStore.
type PowerUpOption func(*MemoryPowerUpStore)

// WithStackLimit overrides the per-kind stack cap.
func WithStackLimit(limit int) PowerUpOption {
	return func(s *MemoryPowerUpStore) {
		if limit > 0 {
			s.stackLimit = limit
		}
	}
}

// NewMemoryPowerUpStore creates an empty in-memory power-up store.
func NewMemoryPowerUpStore(opts ...PowerUpOption) *MemoryPowerUpStore {
	s := &MemoryPowerUpStore{
		byTeam:     make(map[string][]model.PowerUp),
		stackLimit: defaultStackLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Has reports whether the team holds at least one power-up of kind.
func (s *MemoryPowerUpStore) Has(ctx context.Context, teamID string, kind model.PowerUpKind) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.byTeam[teamID] {
		if p.Kind == kind {
			return true
		}
	}
	return false
}

// ConsumeOne removes one instance of kind. Returns false if none present.
func (s *MemoryPowerUpStore) ConsumeOne(ctx context.Context, teamID string, kind model.PowerUpKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	held := s.byTeam[teamID]
	for i, p := range held {
		if p.Kind == kind {
			s.byTeam[teamID] = append(held[:i], held[i+1:]...)
			return true
		}
	}
	return false
}

// Grant adds one instance of kind, capped per team by the stack limit.
func (s *MemoryPowerUpStore) Grant(ctx context.Context, teamID string, kind model.PowerUpKind) error {
	def, ok := model.Definitions[kind]
	if !ok {
		return ErrPowerUpNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, p := range s.byTeam[teamID] {
		if p.Kind == kind {
			count++
		}
	}
	if count >= s.stackLimit {
		return ErrStackLimit
	}
	s.byTeam[teamID] = append(s.byTeam[teamID], def)
	return nil
}

// Remove deletes one instance of kind.
func (s *MemoryPowerUpStore) Remove(ctx context.Context, teamID string, kind model.PowerUpKind) error {
	if !s.ConsumeOne(ctx, teamID, kind) {
		return ErrPowerUpNotFound
	}
	return nil
}

// List returns a copy of the team's power-ups.
func (s *MemoryPowerUpStore) List(ctx context.Context, teamID string) []model.PowerUp {
	s.mu.RLock()
	defer s.mu.RUnlock()

	held := s.byTeam[teamID]
	out := make([]model.PowerUp, len(held))
	copy(out, held)
	return out
}

// All returns every team's power-ups keyed by team id.
func (s *MemoryPowerUpStore) All(ctx context.Context) map[string][]model.PowerUp {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]model.PowerUp, len(s.byTeam))
	for teamID, held := range s.byTeam {
		cp := make([]model.PowerUp, len(held))
		copy(cp, held)
		out[teamID] = cp
	}
	return out
}

// Restore replaces the store contents. Used by snapshot recovery on boot.
func (s *MemoryPowerUpStore) Restore(byTeam map[string][]model.PowerUp) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byTeam = make(map[string][]model.PowerUp, len(byTeam))
	for teamID, held := range byTeam {
		cp := make([]model.PowerUp, len(held))
		copy(cp, held)
		s.byTeam[teamID] = cp
	}
}
