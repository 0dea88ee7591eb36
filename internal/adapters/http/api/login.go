package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/levelup/heist/internal/auth"
	"github.com/levelup/heist/internal/domain/model"
)

// LoginHandler handles authentication requests.
type LoginHandler struct {
	deps Dependencies
}

// NewLoginHandler creates a new login handler.
func NewLoginHandler(deps Dependencies) *LoginHandler {
	return &LoginHandler{deps: deps}
}

type teamLoginRequest struct {
	AccessCode string `json:"accessCode"`
}

type teamLoginResponse struct {
	Token    string          `json:"token"`
	Team     model.Team      `json:"team"`
	PowerUps []model.PowerUp `json:"powerUps"`
}

type adminLoginRequest struct {
	Password string `json:"password"`
}

type adminLoginResponse struct {
	Token string `json:"token"`
}

// HandleTeamLogin handles POST /api/auth/team-login requests.
func (h *LoginHandler) HandleTeamLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.team_login"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req teamLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.AccessCode == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	token, team, powerUps, err := h.deps.TeamLogin(r.Context(), req.AccessCode, clientKey(r))
	if err != nil {
		writeAuthError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, teamLoginResponse{Token: token, Team: team, PowerUps: powerUps})
}

// HandleAdminLogin handles POST /api/auth/admin-login requests.
func (h *LoginHandler) HandleAdminLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.admin_login"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	token, err := h.deps.AdminLogin(r.Context(), req.Password, clientKey(r))
	if err != nil {
		writeAuthError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, adminLoginResponse{Token: token})
}

func writeAuthError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, auth.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate_limited", err)
	case errors.Is(err, auth.ErrInvalidAccessCode), errors.Is(err, auth.ErrInvalidAdminSecret):
		writeError(w, http.StatusUnauthorized, "unauthorized", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
