package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/levelup/heist/internal/domain/model"
)

// MemoryTeamStore implements TeamStore with a mutex-guarded map.
type MemoryTeamStore struct {
	mu    sync.RWMutex
	teams map[string]model.Team
}

// NewMemoryTeamStore creates an empty in-memory team store.
func NewMemoryTeamStore() *MemoryTeamStore {
	return &MemoryTeamStore{
		teams: make(map[string]model.Team),
	}
}

// Get returns the team record for id.
func (s *MemoryTeamStore) Get(ctx context.Context, id string) (model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.teams[id]
	if !ok {
		return model.Team{}, ErrTeamNotFound
	}
	return t, nil
}

// GetByAccessCode returns the team matching an access code.
func (s *MemoryTeamStore) GetByAccessCode(ctx context.Context, code string) (model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.teams {
		if t.AccessCode == code {
			return t, nil
		}
	}
	return model.Team{}, ErrTeamNotFound
}

// Create inserts a new team record.
func (s *MemoryTeamStore) Create(ctx context.Context, team model.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.teams[team.ID]; ok {
		return ErrTeamExists
	}
	s.teams[team.ID] = team
	return nil
}

// ApplyCashDelta adjusts a team's cash balance, flooring at 0.
func (s *MemoryTeamStore) ApplyCashDelta(ctx context.Context, id string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.teams[id]
	if !ok {
		return 0, ErrTeamNotFound
	}
	t.Cash += delta
	if t.Cash < 0 {
		t.Cash = 0
	}
	s.teams[id] = t
	return t.Cash, nil
}

// SetHeistStatus updates a team's heist involvement marker.
func (s *MemoryTeamStore) SetHeistStatus(ctx context.Context, id string, status model.TeamHeistStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.teams[id]
	if !ok {
		return ErrTeamNotFound
	}
	t.HeistStatus = status
	s.teams[id] = t
	return nil
}

// SetOnline flips the online marker.
func (s *MemoryTeamStore) SetOnline(ctx context.Context, id string, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.teams[id]
	if !ok {
		return ErrTeamNotFound
	}
	t.Online = online
	s.teams[id] = t
	return nil
}

// List returns all teams in unspecified order.
func (s *MemoryTeamStore) List(ctx context.Context) []model.Team {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Team, 0, len(s.teams))
	for _, t := range s.teams {
		out = append(out, t)
	}
	return out
}

// Leaderboard returns all teams ordered by cash descending, name ascending on
// ties so the ordering is stable for display.
func (s *MemoryTeamStore) Leaderboard(ctx context.Context) []model.Team {
	out := s.List(ctx)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cash != out[j].Cash {
			return out[i].Cash > out[j].Cash
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Restore replaces the store contents. Used by snapshot recovery on boot.
func (s *MemoryTeamStore) Restore(teams []model.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teams = make(map[string]model.Team, len(teams))
	for _, t := range teams {
		s.teams[t.ID] = t
	}
}
