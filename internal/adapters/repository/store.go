// Package repository defines the game state store interfaces and errors.
package repository

import (
	"context"

	"github.com/levelup/heist/internal/domain/model"
)

// TeamStore provides read/write access to team records.
type TeamStore interface {
	// Get returns the team record for id. Returns ErrTeamNotFound if unknown.
	Get(ctx context.Context, id string) (model.Team, error)

	// GetByAccessCode returns the team matching an access code.
	GetByAccessCode(ctx context.Context, code string) (model.Team, error)

	// Create inserts a new team record.
	Create(ctx context.Context, team model.Team) error

	// ApplyCashDelta adjusts a team's cash balance, flooring at 0.
	// Returns the new balance.
	ApplyCashDelta(ctx context.Context, id string, delta int64) (int64, error)

	// SetHeistStatus updates a team's heist involvement marker.
	SetHeistStatus(ctx context.Context, id string, status model.TeamHeistStatus) error

	// SetOnline flips the online marker.
	SetOnline(ctx context.Context, id string, online bool) error

	// List returns all teams in unspecified order.
	List(ctx context.Context) []model.Team

	// Leaderboard returns all teams ordered by cash descending.
	Leaderboard(ctx context.Context) []model.Team
}

// PowerUpStore holds each team's multiset of active power-ups.
type PowerUpStore interface {
	// Has reports whether the team holds at least one power-up of kind.
	Has(ctx context.Context, teamID string, kind model.PowerUpKind) bool

	// ConsumeOne removes one instance of kind. Returns false if none present.
	ConsumeOne(ctx context.Context, teamID string, kind model.PowerUpKind) bool

	// Grant adds one instance of kind, capped per team by the stack limit.
	// Returns ErrStackLimit when the cap is reached.
	Grant(ctx context.Context, teamID string, kind model.PowerUpKind) error

	// Remove deletes one instance of kind. Returns ErrPowerUpNotFound if absent.
	Remove(ctx context.Context, teamID string, kind model.PowerUpKind) error

	// List returns the team's power-ups.
	List(ctx context.Context, teamID string) []model.PowerUp
}

// HeistStore owns heist records. Terminal heists are retained for audit but
// excluded from the active queries.
type HeistStore interface {
	// Get returns the heist for id. Returns ErrHeistNotFound if unknown.
	Get(ctx context.Context, id string) (*model.Heist, error)

	// Put inserts or replaces a heist record.
	Put(ctx context.Context, h *model.Heist)

	// ActiveByAttacker returns the active heist where the team attacks, or nil.
	ActiveByAttacker(ctx context.Context, teamID string) *model.Heist

	// ActiveByTarget returns the active heist where the team defends, or nil.
	ActiveByTarget(ctx context.Context, teamID string) *model.Heist

	// Active returns all active heists.
	Active(ctx context.Context) []*model.Heist

	// ActiveCount returns the number of active heists.
	ActiveCount(ctx context.Context) int
}
