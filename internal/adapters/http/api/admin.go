package api

import (
	"encoding/json"
	"net/http"

	"github.com/levelup/heist/internal/domain/model"
)

// AdminHandler handles admin console requests.
type AdminHandler struct {
	deps Dependencies
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(deps Dependencies) *AdminHandler {
	return &AdminHandler{deps: deps}
}

type addCashRequest struct {
	TeamID string `json:"teamId"`
	Amount int64  `json:"amount"`
}

type addCashResponse struct {
	TeamID  string `json:"teamId"`
	NewCash int64  `json:"newCash"`
}

type powerUpRequest struct {
	TeamID string            `json:"teamId"`
	Kind   model.PowerUpKind `json:"powerUpId"`
}

type createTeamRequest struct {
	Name string `json:"name"`
}

type createTeamResponse struct {
	Team       model.Team `json:"team"`
	AccessCode string     `json:"accessCode"`
}

// HandleState handles GET /api/admin/state requests.
func (h *AdminHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.AdminState(r.Context()))
}

// HandleAddCash handles POST /api/admin/cash requests.
func (h *AdminHandler) HandleAddCash(w http.ResponseWriter, r *http.Request) {
	const op = "api.admin_cash"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req addCashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.TeamID == "" || req.Amount == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	newCash, err := h.deps.AddCash(r.Context(), req.TeamID, req.Amount)
	if err != nil {
		writeEngineError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, addCashResponse{TeamID: req.TeamID, NewCash: newCash})
}

// HandleGrantPowerUp handles POST /api/admin/powerup/grant requests.
func (h *AdminHandler) HandleGrantPowerUp(w http.ResponseWriter, r *http.Request) {
	const op = "api.admin_powerup_grant"
	req, ok := h.decodePowerUpRequest(w, r, op)
	if !ok {
		return
	}

	if err := h.deps.GrantPowerUp(r.Context(), req.TeamID, req.Kind); err != nil {
		writeEngineError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "granted"})
}

// HandleRemovePowerUp handles POST /api/admin/powerup/remove requests.
func (h *AdminHandler) HandleRemovePowerUp(w http.ResponseWriter, r *http.Request) {
	const op = "api.admin_powerup_remove"
	req, ok := h.decodePowerUpRequest(w, r, op)
	if !ok {
		return
	}

	if err := h.deps.RemovePowerUp(r.Context(), req.TeamID, req.Kind); err != nil {
		writeEngineError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *AdminHandler) decodePowerUpRequest(w http.ResponseWriter, r *http.Request, op string) (powerUpRequest, bool) {
	var req powerUpRequest
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return req, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return req, false
	}
	if req.TeamID == "" || req.Kind == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return req, false
	}
	return req, true
}

// HandleCreateTeam handles POST /api/admin/team requests. The response is the
// only place a generated access code is ever exposed.
func (h *AdminHandler) HandleCreateTeam(w http.ResponseWriter, r *http.Request) {
	const op = "api.admin_team"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req createTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	team, err := h.deps.CreateTeam(r.Context(), req.Name)
	if err != nil {
		writeEngineError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, createTeamResponse{Team: team, AccessCode: team.AccessCode})
}
