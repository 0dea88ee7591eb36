package api

import (
	"net/http"
	"strings"

	"github.com/levelup/heist/internal/domain/model"
)

// TeamHandler handles team state requests.
type TeamHandler struct {
	deps Dependencies
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(deps Dependencies) *TeamHandler {
	return &TeamHandler{deps: deps}
}

type teamStateResponse struct {
	Team        model.Team      `json:"team"`
	PowerUps    []model.PowerUp `json:"powerUps"`
	ActiveHeist *model.Heist    `json:"activeHeist,omitempty"`
}

// HandleGetTeam handles GET /api/team/{id} requests. Teams may only read
// their own state; admins may read anyone's.
func (h *TeamHandler) HandleGetTeam(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_team"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	teamID := strings.TrimPrefix(r.URL.Path, "/api/team/")
	if teamID == "" || strings.Contains(teamID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	claims := ClaimsFrom(r.Context())
	if claims == nil || (!claims.IsAdmin() && claims.TeamID != teamID) {
		writeError(w, http.StatusForbidden, "forbidden", NewKind(op, ErrForbidden))
		return
	}

	team, powerUps, active, err := h.deps.TeamState(r.Context(), teamID)
	if err != nil {
		writeEngineError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, teamStateResponse{Team: team, PowerUps: powerUps, ActiveHeist: active})
}
