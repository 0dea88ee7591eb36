// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/levelup/heist/internal/adapters/notify"
	"github.com/levelup/heist/internal/auth"
	"github.com/levelup/heist/internal/domain/heist"
	"github.com/levelup/heist/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Auth
	TeamLogin(ctx context.Context, accessCode, clientKey string) (string, model.Team, []model.PowerUp, error)
	AdminLogin(ctx context.Context, password, clientKey string) (string, error)
	VerifyToken(tokenString string) (*auth.Claims, error)

	// Heist operations. Caller identity comes from the session token.
	InitiateHeist(ctx context.Context, attackerID, targetTeamID string) (heist.InitResult, error)
	SubmitCompoundAnswer(ctx context.Context, heistID, callerID, challengeID, answer string) (heist.CompoundResult, error)
	SubmitSafeAnswer(ctx context.Context, heistID, callerID, answer string) (heist.SafeResult, error)

	// Reads
	Leaderboard(ctx context.Context) []model.Team
	TeamState(ctx context.Context, teamID string) (model.Team, []model.PowerUp, *model.Heist, error)

	// Event stream
	Subscribe(teamID string, admin bool) (<-chan notify.Event, func())

	// Admin operations
	AddCash(ctx context.Context, teamID string, amount int64) (int64, error)
	GrantPowerUp(ctx context.Context, teamID string, kind model.PowerUpKind) error
	RemovePowerUp(ctx context.Context, teamID string, kind model.PowerUpKind) error
	CreateTeam(ctx context.Context, name string) (model.Team, error)
	AdminState(ctx context.Context) map[string]interface{}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	loginHandler       *LoginHandler
	leaderboardHandler *LeaderboardHandler
	teamHandler        *TeamHandler
	heistHandler       *HeistHandler
	eventsHandler      *EventsHandler
	adminHandler       *AdminHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		loginHandler:       NewLoginHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		teamHandler:        NewTeamHandler(deps),
		heistHandler:       NewHeistHandler(deps),
		eventsHandler:      NewEventsHandler(deps),
		adminHandler:       NewAdminHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux, deps Dependencies) {
	authn := NewAuthMiddleware(deps)

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/api/auth/team-login", MetricsMiddleware(s.loginHandler.HandleTeamLogin, "team_login"))
	mux.HandleFunc("/api/auth/admin-login", MetricsMiddleware(s.loginHandler.HandleAdminLogin, "admin_login"))

	// Leaderboard is intentionally public for spectators and display screens.
	mux.HandleFunc("/api/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))

	mux.HandleFunc("/api/team/", MetricsMiddleware(authn.Require(s.teamHandler.HandleGetTeam), "team"))

	mux.HandleFunc("/api/heist/initiate", MetricsMiddleware(authn.RequireTeam(s.heistHandler.HandleInitiate), "heist_initiate"))
	mux.HandleFunc("/api/heist/compound", MetricsMiddleware(authn.RequireTeam(s.heistHandler.HandleCompound), "heist_compound"))
	mux.HandleFunc("/api/heist/safe", MetricsMiddleware(authn.RequireTeam(s.heistHandler.HandleSafe), "heist_safe"))

	mux.HandleFunc("/api/events", authn.Require(s.eventsHandler.HandleEvents))

	mux.HandleFunc("/api/admin/state", MetricsMiddleware(authn.RequireAdmin(s.adminHandler.HandleState), "admin_state"))
	mux.HandleFunc("/api/admin/cash", MetricsMiddleware(authn.RequireAdmin(s.adminHandler.HandleAddCash), "admin_cash"))
	mux.HandleFunc("/api/admin/powerup/grant", MetricsMiddleware(authn.RequireAdmin(s.adminHandler.HandleGrantPowerUp), "admin_powerup_grant"))
	mux.HandleFunc("/api/admin/powerup/remove", MetricsMiddleware(authn.RequireAdmin(s.adminHandler.HandleRemovePowerUp), "admin_powerup_remove"))
	mux.HandleFunc("/api/admin/team", MetricsMiddleware(authn.RequireAdmin(s.adminHandler.HandleCreateTeam), "admin_team"))
}

type errorResponse struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	HeistFailed bool   `json:"heistFailed,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeEngineError maps heist engine errors onto the API error taxonomy.
// "Answer wrong, try again" never travels this path; only state problems do.
func writeEngineError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, heist.ErrExpired):
		// The heist was force-failed as a side effect; the caller must be
		// told the heist terminated, not just that the request failed.
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:        "heist_expired",
			Message:     err.Error(),
			HeistFailed: true,
		})
	case errors.Is(err, heist.ErrTeamNotFound),
		errors.Is(err, heist.ErrHeistNotFound),
		errors.Is(err, heist.ErrChallengeNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, heist.ErrCallerMismatch):
		writeError(w, http.StatusForbidden, "forbidden", err)
	case heist.IsConflict(err):
		writeError(w, http.StatusConflict, "conflict", err)
	case heist.IsValidation(err):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		// Store or infrastructure failure, not a game-logic outcome.
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// clientKey identifies the request source for login rate limiting.
func clientKey(r *http.Request) string {
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
