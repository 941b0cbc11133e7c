package web

import (
	"net/http"

	"volleyball-league/internal/league"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type Options struct {
	Logger zerolog.Logger
	// WriteKeyHash is a bcrypt hash; empty leaves writes open.
	WriteKeyHash string
	// Metrics is served on /metrics when set.
	Metrics http.Handler
	Dev     bool
}

type Server struct {
	league       *league.Manager
	log          zerolog.Logger
	writeKeyHash []byte
	metrics      http.Handler
	dev          bool
}

func NewServer(manager *league.Manager, opts Options) *Server {
	s := &Server{
		league:  manager,
		log:     opts.Logger,
		metrics: opts.Metrics,
		dev:     opts.Dev,
	}
	if opts.WriteKeyHash != "" {
		s.writeKeyHash = []byte(opts.WriteKeyHash)
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.withLogging)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireWriteKey)

		r.Get("/state", s.handleState)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Post("/teams/balance", s.handleTeamsBalance)

		r.Get("/players", s.handlePlayersList)
		r.Post("/players", s.handlePlayerCreate)
		r.Get("/players/{playerID}", s.handlePlayerShow)
		r.Put("/players/{playerID}", s.handlePlayerUpdate)
		r.Delete("/players/{playerID}", s.handlePlayerDelete)

		r.Get("/seasons", s.handleSeasonsList)
		r.Post("/seasons", s.handleSeasonCreate)
		r.Get("/seasons/{seasonID}", s.handleSeasonShow)
		r.Put("/seasons/{seasonID}", s.handleSeasonUpdate)
		r.Delete("/seasons/{seasonID}", s.handleSeasonDelete)
		r.Post("/seasons/{seasonID}/current", s.handleSeasonSetCurrent)

		r.Get("/games", s.handleGamesList)
		r.Post("/games", s.handleGameCreate)
		r.Get("/games/{gameID}", s.handleGameShow)
		r.Put("/games/{gameID}", s.handleGameUpdate)
		r.Delete("/games/{gameID}", s.handleGameDelete)
		r.Put("/games/{gameID}/roster", s.handleGameRosterUpdate)
	})

	r.With(s.requireWriteKey).Post("/dev/reload", s.handleDevReload)

	return r
}
