package web

import (
	"net/http"
)

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.league.Snapshot())
}

// handleLeaderboard lists the best players of the current season.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	season, ok := s.league.CurrentSeason()
	if !ok {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	limit := parseLimit(r.URL.Query().Get("limit"), leaderboardSize, 50)
	writeJSON(w, http.StatusOK, s.league.TopPerformers(season.ID, 1, limit))
}

func (s *Server) handleTeamsBalance(w http.ResponseWriter, r *http.Request) {
	var req balanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, r, err)
		return
	}
	teams, err := s.league.ProposeTeams(req.Players)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}
