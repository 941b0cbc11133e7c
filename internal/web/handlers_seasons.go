package web

import (
	"net/http"

	"volleyball-league/internal/league"
	"volleyball-league/internal/model"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleSeasonsList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.league.SeasonSummaries())
}

func (s *Server) handleSeasonCreate(w http.ResponseWriter, r *http.Request) {
	var req seasonRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, r, err)
		return
	}
	season, err := s.league.AddSeason(r.Context(), req.Name, req.StartDate.Time, endOfDay(req.EndDate.Time))
	if err != nil {
		if season.ID != "" {
			writePartialError(w, r, err, season)
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, season)
}

func (s *Server) handleSeasonShow(w http.ResponseWriter, r *http.Request) {
	seasonID := chi.URLParam(r, "seasonID")
	season, ok := s.league.SeasonByID(seasonID)
	if !ok {
		writeError(w, r, &league.NotFoundError{Kind: "season", ID: seasonID})
		return
	}
	standings := s.league.SeasonStandings(season.ID)
	writeJSON(w, http.StatusOK, SeasonDetailView{
		Season:        season,
		Standings:     standings,
		TopPerformers: s.league.TopPerformers(season.ID, topPerformersGames, topPerformersSize),
		Games:         s.league.SeasonGames(season.ID),
	})
}

func (s *Server) handleSeasonUpdate(w http.ResponseWriter, r *http.Request) {
	var req seasonRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, r, err)
		return
	}
	season, err := s.league.UpdateSeason(r.Context(), model.Season{
		ID:        chi.URLParam(r, "seasonID"),
		Name:      req.Name,
		StartDate: req.StartDate.Time,
		EndDate:   endOfDay(req.EndDate.Time),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, season)
}

func (s *Server) handleSeasonDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.league.RemoveSeason(r.Context(), chi.URLParam(r, "seasonID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSeasonSetCurrent(w http.ResponseWriter, r *http.Request) {
	seasonID := chi.URLParam(r, "seasonID")
	if err := s.league.SetCurrentSeason(r.Context(), seasonID); err != nil {
		writeError(w, r, err)
		return
	}
	season, _ := s.league.SeasonByID(seasonID)
	writeJSON(w, http.StatusOK, season)
}
