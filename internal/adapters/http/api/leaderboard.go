package api

import (
	"net/http"

	"github.com/levelup/heist/internal/domain/model"
)

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps Dependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps Dependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

type leaderboardEntry struct {
	Rank int `json:"rank"`
	model.Team
}

type leaderboardResponse struct {
	Entries []leaderboardEntry `json:"entries"`
}

// HandleGetLeaderboard handles GET /api/leaderboard requests.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	teams := h.deps.Leaderboard(r.Context())
	entries := make([]leaderboardEntry, 0, len(teams))
	for i, t := range teams {
		entries = append(entries, leaderboardEntry{Rank: i + 1, Team: t})
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Entries: entries})
}
