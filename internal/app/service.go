// Package app provides the core business service that implements the
// dependencies required by the HTTP API.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/levelup/heist/internal/adapters/catalog"
	"github.com/levelup/heist/internal/adapters/notify"
	"github.com/levelup/heist/internal/adapters/repository"
	"github.com/levelup/heist/internal/adapters/snapshot"
	"github.com/levelup/heist/internal/auth"
	"github.com/levelup/heist/internal/config"
	"github.com/levelup/heist/internal/domain/heist"
	"github.com/levelup/heist/internal/domain/model"
	"github.com/levelup/heist/pkg/logger"
	"github.com/levelup/heist/pkg/metrics"
)

// accessCodeLength is the generated suffix length for admin-created teams.
const accessCodeLength = 6

// seedTeams are created on first boot so the event is playable out of the box.
var seedTeams = []string{"Cyber Wolves", "Digital Pirates", "Neon Raiders", "Shadow Coders", "Quantum Thieves"}

// Service implements the API dependencies for the heist backend.
type Service struct {
	mu sync.RWMutex

	// Core components
	teams       *repository.MemoryTeamStore
	powerups    *repository.MemoryPowerUpStore
	heists      *repository.MemoryHeistStore
	catalog     catalog.Catalog
	broadcaster *notify.Broadcaster
	engine      *heist.Engine
	sweeper     *heist.Sweeper
	saver       *snapshot.Saver
	limiter     *auth.RateLimiter

	// Configuration
	cfg   *config.Config
	clock heist.Clock

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the service configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source used by the heist engine.
func WithClock(c heist.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cfg:   config.New(),
		clock: heist.SystemClock,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting heist service...")

	cfg := s.cfg
	s.teams = repository.NewMemoryTeamStore()
	s.powerups = repository.NewMemoryPowerUpStore(
		repository.WithStackLimit(cfg.MaxPowerUpStack),
	)
	s.heists = repository.NewMemoryHeistStore()
	s.catalog = catalog.NewStaticCatalog()
	s.broadcaster = notify.NewBroadcaster(
		notify.WithBufferSize(cfg.NotifyBuffer),
	)
	s.limiter = auth.NewRateLimiter(
		auth.WithLimit(cfg.LoginRateLimit),
	)

	if cfg.SnapshotPath != "" {
		if err := snapshot.Load(ctx, cfg.SnapshotPath, s.restore); err != nil {
			s.logger.Warn(ctx, "could not restore state", logger.Error(err))
		}
	}
	if len(s.teams.List(ctx)) == 0 {
		s.seedTeams(ctx)
	}

	s.engine = heist.New(s.teams, s.powerups, s.heists, s.catalog, s.broadcaster,
		heist.WithClock(s.clock),
		heist.WithLogger(s.logger.Named("heist")),
		heist.WithBaseTimeLimit(time.Duration(cfg.HeistBaseSeconds)*time.Second),
		heist.WithTimeFreezeBonus(time.Duration(cfg.TimeFreezeBonusSeconds)*time.Second),
		heist.WithGuardianPenalty(time.Duration(cfg.GuardianPenaltySeconds)*time.Second),
		heist.WithMinTimeLimit(time.Duration(cfg.MinHeistSeconds)*time.Second),
		heist.WithSubmitGrace(time.Duration(cfg.SubmitGraceSeconds)*time.Second),
		heist.WithSweepGrace(time.Duration(cfg.SweepGraceSeconds)*time.Second),
		heist.WithMaxSafeAttempts(cfg.MaxSafeAttempts),
		heist.WithTransferRates(cfg.SuccessTakeRate, cfg.FailurePenaltyRate),
	)

	s.sweeper = heist.NewSweeper(s.engine,
		heist.WithSweepInterval(time.Duration(cfg.SweepIntervalSeconds)*time.Second),
		heist.WithSweeperLogger(s.logger.Named("sweeper")),
	)
	s.sweeper.Start(ctx)

	if cfg.SnapshotPath != "" {
		s.saver = snapshot.NewSaver(cfg.SnapshotPath, s.collect,
			snapshot.WithInterval(time.Duration(cfg.SnapshotIntervalSeconds)*time.Second),
			snapshot.WithLogger(s.logger.Named("snapshot")),
		)
		s.saver.Start(ctx)
	}

	s.started = true
	s.logger.Info(ctx, "heist service started",
		logger.Int("teams", len(s.teams.List(ctx))),
		logger.Int("sweepIntervalSeconds", cfg.SweepIntervalSeconds),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping heist service...")

	if s.sweeper != nil {
		s.sweeper.Stop()
	}
	if s.saver != nil {
		s.saver.Stop(ctx)
	}

	s.started = false
	s.logger.Info(ctx, "heist service stopped")
}

// seedTeams creates the initial team roster with sequential access codes.
func (s *Service) seedTeams(ctx context.Context) {
	for i, name := range seedTeams {
		t := model.Team{
			ID:          uuid.NewString(),
			Name:        name,
			AccessCode:  fmt.Sprintf("TEAM%03d", i+1),
			Cash:        0,
			HeistStatus: model.HeistNone,
		}
		if err := s.teams.Create(ctx, t); err != nil {
			s.logger.Warn(ctx, "seed team failed", logger.String("name", name), logger.Error(err))
		}
	}
	s.logger.Info(ctx, "seeded sample teams", logger.Int("count", len(seedTeams)))
}

// collect gathers state for snapshotting.
func (s *Service) collect(ctx context.Context) ([]model.Team, map[string]string, map[string][]model.PowerUp, []*model.Heist) {
	teams := s.teams.List(ctx)
	codes := make(map[string]string, len(teams))
	for _, t := range teams {
		codes[t.ID] = t.AccessCode
	}
	return teams, codes, s.powerups.All(ctx), s.heists.All(ctx)
}

// restore pushes a loaded snapshot into the stores.
func (s *Service) restore(ctx context.Context, teams []model.Team, codes map[string]string, powerUps map[string][]model.PowerUp, heists []*model.Heist) {
	for i := range teams {
		teams[i].AccessCode = codes[teams[i].ID]
	}
	s.teams.Restore(teams)
	if powerUps != nil {
		s.powerups.Restore(powerUps)
	}
	if heists != nil {
		s.heists.Restore(heists)
	}
	s.logger.Info(ctx, "state restored",
		logger.Int("teams", len(teams)),
		logger.Int("heists", len(heists)),
	)
}

// TeamLogin authenticates a team by access code and issues a session token.
func (s *Service) TeamLogin(ctx context.Context, accessCode, clientKey string) (string, model.Team, []model.PowerUp, error) {
	if !s.limiter.Allow("team-login:" + clientKey) {
		metrics.RecordLoginRateLimited()
		return "", model.Team{}, nil, auth.ErrRateLimited
	}

	team, err := s.teams.GetByAccessCode(ctx, accessCode)
	if err != nil {
		metrics.RecordAuthFailure()
		return "", model.Team{}, nil, auth.ErrInvalidAccessCode
	}

	token, err := auth.GenerateToken(team.ID, auth.RoleTeam, []byte(s.cfg.JWTSecret), time.Duration(s.cfg.TokenTTLHours)*time.Hour)
	if err != nil {
		return "", model.Team{}, nil, fmt.Errorf("issue token: %w", err)
	}

	_ = s.teams.SetOnline(ctx, team.ID, true)
	team.Online = true
	s.broadcaster.Notify(ctx, notify.AudienceAll, "teamStatusUpdate", map[string]interface{}{
		"teamId":   team.ID,
		"isOnline": true,
	})

	return token, team, s.powerups.List(ctx, team.ID), nil
}

// AdminLogin authenticates the admin console and issues a session token.
func (s *Service) AdminLogin(ctx context.Context, password, clientKey string) (string, error) {
	if !s.limiter.Allow("admin-login:" + clientKey) {
		metrics.RecordLoginRateLimited()
		return "", auth.ErrRateLimited
	}

	if password != s.cfg.AdminPassword {
		metrics.RecordAuthFailure()
		return "", auth.ErrInvalidAdminSecret
	}

	token, err := auth.GenerateToken("", auth.RoleAdmin, []byte(s.cfg.JWTSecret), time.Duration(s.cfg.TokenTTLHours)*time.Hour)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// VerifyToken validates a session token and returns its claims.
func (s *Service) VerifyToken(tokenString string) (*auth.Claims, error) {
	claims, err := auth.ParseToken(tokenString, []byte(s.cfg.JWTSecret))
	if err != nil {
		metrics.RecordAuthFailure()
		return nil, err
	}
	return claims, nil
}

// InitiateHeist starts a heist on behalf of the calling team.
func (s *Service) InitiateHeist(ctx context.Context, attackerID, targetTeamID string) (heist.InitResult, error) {
	return s.engine.Initiate(ctx, attackerID, targetTeamID)
}

// SubmitCompoundAnswer grades a compound-stage submission.
func (s *Service) SubmitCompoundAnswer(ctx context.Context, heistID, callerID, challengeID, answer string) (heist.CompoundResult, error) {
	return s.engine.SubmitCompound(ctx, heistID, callerID, challengeID, answer)
}

// SubmitSafeAnswer grades a safe-cracking submission.
func (s *Service) SubmitSafeAnswer(ctx context.Context, heistID, callerID, answer string) (heist.SafeResult, error) {
	return s.engine.SubmitSafe(ctx, heistID, callerID, answer)
}

// Leaderboard returns all teams ordered by cash descending.
func (s *Service) Leaderboard(ctx context.Context) []model.Team {
	return s.teams.Leaderboard(ctx)
}

// TeamState returns a team's record, power-ups and active heist, if any.
func (s *Service) TeamState(ctx context.Context, teamID string) (model.Team, []model.PowerUp, *model.Heist, error) {
	team, err := s.teams.Get(ctx, teamID)
	if err != nil {
		return model.Team{}, nil, nil, fmt.Errorf("%w: %s", heist.ErrTeamNotFound, teamID)
	}

	var active *model.Heist
	if h := s.heists.ActiveByAttacker(ctx, teamID); h != nil {
		active = h
	} else if h := s.heists.ActiveByTarget(ctx, teamID); h != nil {
		active = h
	}

	return team, s.powerups.List(ctx, teamID), active, nil
}

// Subscribe registers an event stream listener.
func (s *Service) Subscribe(teamID string, admin bool) (<-chan notify.Event, func()) {
	return s.broadcaster.Subscribe(teamID, admin)
}

// AddCash adjusts a team's cash balance (admin operation), floored at 0.
func (s *Service) AddCash(ctx context.Context, teamID string, amount int64) (int64, error) {
	newCash, err := s.teams.ApplyCashDelta(ctx, teamID, amount)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", heist.ErrTeamNotFound, teamID)
	}

	s.broadcaster.Notify(ctx, teamID, "notification", map[string]interface{}{
		"type":    "cash",
		"message": fmt.Sprintf("Admin adjusted your cash by %d", amount),
	})
	s.logger.Info(ctx, "admin cash adjustment",
		logger.String("teamID", teamID),
		logger.Int64("amount", amount),
		logger.Int64("newCash", newCash),
	)
	return newCash, nil
}

// GrantPowerUp gives a team one power-up instance (admin operation).
func (s *Service) GrantPowerUp(ctx context.Context, teamID string, kind model.PowerUpKind) error {
	if _, err := s.teams.Get(ctx, teamID); err != nil {
		return fmt.Errorf("%w: %s", heist.ErrTeamNotFound, teamID)
	}
	if err := s.powerups.Grant(ctx, teamID, kind); err != nil {
		return err
	}

	s.broadcaster.Notify(ctx, teamID, "powerUpReceived", model.Definitions[kind])
	return nil
}

// RemovePowerUp removes one power-up instance from a team (admin operation).
func (s *Service) RemovePowerUp(ctx context.Context, teamID string, kind model.PowerUpKind) error {
	if _, err := s.teams.Get(ctx, teamID); err != nil {
		return fmt.Errorf("%w: %s", heist.ErrTeamNotFound, teamID)
	}
	return s.powerups.Remove(ctx, teamID, kind)
}

// CreateTeam registers a new team with a generated access code (admin
// operation).
func (s *Service) CreateTeam(ctx context.Context, name string) (model.Team, error) {
	t := model.Team{
		ID:          uuid.NewString(),
		Name:        name,
		AccessCode:  generateAccessCode(),
		Cash:        0,
		HeistStatus: model.HeistNone,
	}
	if err := s.teams.Create(ctx, t); err != nil {
		return model.Team{}, fmt.Errorf("create team: %w", err)
	}

	s.logger.Info(ctx, "team created",
		logger.String("teamID", t.ID),
		logger.String("name", name),
	)
	return t, nil
}

// AdminState returns the full event state for the admin console.
func (s *Service) AdminState(ctx context.Context) map[string]interface{} {
	active := s.heists.Active(ctx)
	return map[string]interface{}{
		"teams":          s.teams.List(ctx),
		"activeHeists":   active,
		"powerUpsByTeam": s.powerups.All(ctx),
		"powerUps":       model.Definitions,
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started": s.started,
	}

	if s.started {
		stats["teams"] = len(s.teams.List(ctx))
		stats["activeHeists"] = s.heists.ActiveCount(ctx)
		stats["subscribers"] = s.broadcaster.SubscriberCount()

		metrics.UpdateActiveHeists(s.heists.ActiveCount(ctx))
	}

	return stats
}

// generateAccessCode builds a short, unpredictable login code.
func generateAccessCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "GDG-" + raw[:accessCodeLength]
}
