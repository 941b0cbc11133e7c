package web

import (
	"net/http"

	"volleyball-league/internal/league"
	"volleyball-league/internal/model"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handlePlayersList(w http.ResponseWriter, r *http.Request) {
	players := s.league.Players()
	views := make([]PlayerView, 0, len(players))
	for _, p := range players {
		views = append(views, PlayerView{Player: p, Stats: s.league.PlayerStats(p.ID, "")})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handlePlayerCreate(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, r, err)
		return
	}
	player, err := s.league.AddPlayer(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, player)
}

func (s *Server) handlePlayerShow(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	player, ok := s.league.PlayerByID(playerID)
	if !ok {
		writeError(w, r, &league.NotFoundError{Kind: "player", ID: playerID})
		return
	}
	view := PlayerDetailView{
		Player:  player,
		AllTime: s.league.PlayerStats(player.ID, ""),
		Games:   s.league.PlayerGames(player.ID),
	}
	if season, ok := s.league.CurrentSeason(); ok {
		current := s.league.PlayerStats(player.ID, season.ID)
		view.CurrentSeason = &current
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handlePlayerUpdate(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, r, err)
		return
	}
	player, err := s.league.UpdatePlayer(r.Context(), model.Player{ID: chi.URLParam(r, "playerID"), Name: req.Name})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

func (s *Server) handlePlayerDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.league.RemovePlayer(r.Context(), chi.URLParam(r, "playerID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
