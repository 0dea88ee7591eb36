package api

import (
	"encoding/json"
	"net/http"
)

// HeistHandler handles heist lifecycle requests.
type HeistHandler struct {
	deps Dependencies
}

// NewHeistHandler creates a new heist handler.
func NewHeistHandler(deps Dependencies) *HeistHandler {
	return &HeistHandler{deps: deps}
}

type initiateRequest struct {
	TargetTeamID string `json:"targetTeamId"`
}

type initiateResponse struct {
	Blocked            bool        `json:"blocked"`
	HeistID            string      `json:"heistId,omitempty"`
	TimeLimitSeconds   int         `json:"timeLimitSeconds,omitempty"`
	CompoundChallenges interface{} `json:"compoundChallenges,omitempty"`
}

type compoundRequest struct {
	HeistID     string `json:"heistId"`
	ChallengeID string `json:"challengeId"`
	Answer      string `json:"answer"`
}

type safeRequest struct {
	HeistID string `json:"heistId"`
	Answer  string `json:"answer"`
}

// HandleInitiate handles POST /api/heist/initiate requests. The attacker is
// always the authenticated team; a target id comes from the body.
func (h *HeistHandler) HandleInitiate(w http.ResponseWriter, r *http.Request) {
	const op = "api.heist_initiate"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.TargetTeamID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	claims := ClaimsFrom(r.Context())
	res, err := h.deps.InitiateHeist(r.Context(), claims.TeamID, req.TargetTeamID)
	if err != nil {
		writeEngineError(w, op, err)
		return
	}

	resp := initiateResponse{Blocked: res.Blocked}
	if !res.Blocked {
		resp.HeistID = res.HeistID
		resp.TimeLimitSeconds = int(res.TimeLimit.Seconds())
		resp.CompoundChallenges = res.CompoundChallenges
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleCompound handles POST /api/heist/compound requests.
func (h *HeistHandler) HandleCompound(w http.ResponseWriter, r *http.Request) {
	const op = "api.heist_compound"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req compoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.HeistID == "" || req.ChallengeID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	claims := ClaimsFrom(r.Context())
	res, err := h.deps.SubmitCompoundAnswer(r.Context(), req.HeistID, claims.TeamID, req.ChallengeID, req.Answer)
	if err != nil {
		writeEngineError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleSafe handles POST /api/heist/safe requests.
func (h *HeistHandler) HandleSafe(w http.ResponseWriter, r *http.Request) {
	const op = "api.heist_safe"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req safeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.HeistID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	claims := ClaimsFrom(r.Context())
	res, err := h.deps.SubmitSafeAnswer(r.Context(), req.HeistID, claims.TeamID, req.Answer)
	if err != nil {
		writeEngineError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
