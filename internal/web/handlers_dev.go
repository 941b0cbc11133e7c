package web

import (
	"net/http"

	"github.com/rs/zerolog"
)

// handleDevReload drops the caches and reads everything back from the store.
func (s *Server) handleDevReload(w http.ResponseWriter, r *http.Request) {
	if !s.dev {
		http.NotFound(w, r)
		return
	}
	if err := s.league.Refresh(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	zerolog.Ctx(r.Context()).Info().Msg("caches reloaded")
	writeJSON(w, http.StatusOK, s.league.Snapshot())
}
