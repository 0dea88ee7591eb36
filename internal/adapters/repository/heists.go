package repository

import (
	"context"
	"sync"

	"github.com/levelup/heist/internal/domain/model"
)

// MemoryHeistStore implements HeistStore with a mutex-guarded map.
//
// Records cross the store boundary by deep copy in both directions, so the
// snapshot saver and admin handlers can read state while the heist engine
// mutates its own copy and persists it with Put.
type MemoryHeistStore struct {
	mu     sync.RWMutex
	heists map[string]*model.Heist
}

// cloneHeist copies a record including its progress slice.
func cloneHeist(h *model.Heist) *model.Heist {
	c := *h
	if h.CompoundProgress != nil {
		c.CompoundProgress = append([]string(nil), h.CompoundProgress...)
	}
	return &c
}

// NewMemoryHeistStore creates an empty in-memory heist store.
func NewMemoryHeistStore() *MemoryHeistStore {
	return &MemoryHeistStore{
		heists: make(map[string]*model.Heist),
	}
}

// Get returns the heist for id.
func (s *MemoryHeistStore) Get(ctx context.Context, id string) (*model.Heist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.heists[id]
	if !ok {
		return nil, ErrHeistNotFound
	}
	return cloneHeist(h), nil
}

// Put inserts or replaces a heist record.
func (s *MemoryHeistStore) Put(ctx context.Context, h *model.Heist) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.heists[h.ID] = cloneHeist(h)
}

// ActiveByAttacker returns the active heist where the team attacks, or nil.
func (s *MemoryHeistStore) ActiveByAttacker(ctx context.Context, teamID string) *model.Heist {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, h := range s.heists {
		if h.Status == model.StatusActive && h.AttackerID == teamID {
			return cloneHeist(h)
		}
	}
	return nil
}

// ActiveByTarget returns the active heist where the team defends, or nil.
func (s *MemoryHeistStore) ActiveByTarget(ctx context.Context, teamID string) *model.Heist {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, h := range s.heists {
		if h.Status == model.StatusActive && h.TargetTeamID == teamID {
			return cloneHeist(h)
		}
	}
	return nil
}

// Active returns all active heists.
func (s *MemoryHeistStore) Active(ctx context.Context) []*model.Heist {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Heist
	for _, h := range s.heists {
		if h.Status == model.StatusActive {
			out = append(out, cloneHeist(h))
		}
	}
	return out
}

// ActiveCount returns the number of active heists.
func (s *MemoryHeistStore) ActiveCount(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, h := range s.heists {
		if h.Status == model.StatusActive {
			n++
		}
	}
	return n
}

// All returns every heist record, terminal ones included.
func (s *MemoryHeistStore) All(ctx context.Context) []*model.Heist {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Heist, 0, len(s.heists))
	for _, h := range s.heists {
		out = append(out, cloneHeist(h))
	}
	return out
}

// Restore replaces the store contents. Used by snapshot recovery on boot.
func (s *MemoryHeistStore) Restore(heists []*model.Heist) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.heists = make(map[string]*model.Heist, len(heists))
	for _, h := range heists {
		s.heists[h.ID] = cloneHeist(h)
	}
}
