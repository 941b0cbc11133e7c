package web

import (
	"net/http"
	"strings"

	"volleyball-league/internal/league"
	"volleyball-league/internal/model"

	"github.com/go-chi/chi/v5"
)

// handleGamesList returns games newest first. ?season=all lists every
// season; without it the current season is used.
func (s *Server) handleGamesList(w http.ResponseWriter, r *http.Request) {
	seasonID := strings.TrimSpace(r.URL.Query().Get("season"))
	switch seasonID {
	case "":
		writeJSON(w, http.StatusOK, s.league.CurrentSeasonGames())
	case allSeasons:
		writeJSON(w, http.StatusOK, s.league.SeasonGames(""))
	default:
		if _, ok := s.league.SeasonByID(seasonID); !ok {
			writeError(w, r, &league.NotFoundError{Kind: "season", ID: seasonID})
			return
		}
		writeJSON(w, http.StatusOK, s.league.SeasonGames(seasonID))
	}
}

func (s *Server) handleGameCreate(w http.ResponseWriter, r *http.Request) {
	var req gameCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, r, err)
		return
	}
	game, err := s.league.AddGame(r.Context(), req.GameInput, req.Team1, req.Team2)
	if err != nil {
		if game.ID != "" {
			writePartialError(w, r, err, game)
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, game)
}

func (s *Server) handleGameShow(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	roster, ok := s.league.GameRoster(gameID)
	if !ok {
		writeError(w, r, &league.NotFoundError{Kind: "game", ID: gameID})
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

func (s *Server) handleGameUpdate(w http.ResponseWriter, r *http.Request) {
	var req gameUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, r, err)
		return
	}
	game, err := s.league.UpdateGame(r.Context(), model.Game{
		ID:           chi.URLParam(r, "gameID"),
		Team1Score:   req.Team1Score,
		Team2Score:   req.Team2Score,
		Team1Captain: req.Team1Captain,
		Team2Captain: req.Team2Captain,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (s *Server) handleGameRosterUpdate(w http.ResponseWriter, r *http.Request) {
	var req league.Lineup
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, r, err)
		return
	}
	game, err := s.league.UpdateGameRoster(r.Context(), chi.URLParam(r, "gameID"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (s *Server) handleGameDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.league.RemoveGame(r.Context(), chi.URLParam(r, "gameID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
