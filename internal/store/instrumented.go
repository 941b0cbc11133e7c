package store

import (
	"context"
	"fmt"
	"time"

	"volleyball-league/internal/model"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "league",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Store calls by table, operation and result.",
		}, []string{"table", "op", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "league",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Store call latency by table and operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"table", "op"}),
	}
	for _, c := range []prometheus.Collector{m.operations, m.latency} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register store metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) observe(table, op string, started time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	switch {
	case IsNotFound(err):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	m.operations.WithLabelValues(table, op, result).Inc()
	m.latency.WithLabelValues(table, op).Observe(time.Since(started).Seconds())
}

// InstrumentedStore records every call it forwards to the wrapped Store.
type InstrumentedStore struct {
	next    Store
	metrics *Metrics
}

func Instrument(next Store, metrics *Metrics) *InstrumentedStore {
	return &InstrumentedStore{next: next, metrics: metrics}
}

func (s *InstrumentedStore) ListPlayers(ctx context.Context) ([]model.Player, error) {
	started := time.Now()
	players, err := s.next.ListPlayers(ctx)
	s.metrics.observe(TablePlayers, "select", started, err)
	return players, err
}

func (s *InstrumentedStore) CreatePlayer(ctx context.Context, player model.Player) (model.Player, error) {
	started := time.Now()
	created, err := s.next.CreatePlayer(ctx, player)
	s.metrics.observe(TablePlayers, "insert", started, err)
	return created, err
}

func (s *InstrumentedStore) UpdatePlayer(ctx context.Context, player model.Player) error {
	started := time.Now()
	err := s.next.UpdatePlayer(ctx, player)
	s.metrics.observe(TablePlayers, "update", started, err)
	return err
}

func (s *InstrumentedStore) DeletePlayer(ctx context.Context, id string) error {
	started := time.Now()
	err := s.next.DeletePlayer(ctx, id)
	s.metrics.observe(TablePlayers, "delete", started, err)
	return err
}

func (s *InstrumentedStore) ListSeasons(ctx context.Context) ([]model.Season, error) {
	started := time.Now()
	seasons, err := s.next.ListSeasons(ctx)
	s.metrics.observe(TableSeasons, "select", started, err)
	return seasons, err
}

func (s *InstrumentedStore) CreateSeason(ctx context.Context, season model.Season) (model.Season, error) {
	started := time.Now()
	created, err := s.next.CreateSeason(ctx, season)
	s.metrics.observe(TableSeasons, "insert", started, err)
	return created, err
}

func (s *InstrumentedStore) UpdateSeason(ctx context.Context, season model.Season) error {
	started := time.Now()
	err := s.next.UpdateSeason(ctx, season)
	s.metrics.observe(TableSeasons, "update", started, err)
	return err
}

func (s *InstrumentedStore) ClearCurrentSeasons(ctx context.Context) error {
	started := time.Now()
	err := s.next.ClearCurrentSeasons(ctx)
	s.metrics.observe(TableSeasons, "clear_current", started, err)
	return err
}

func (s *InstrumentedStore) MarkCurrentSeason(ctx context.Context, id string) error {
	started := time.Now()
	err := s.next.MarkCurrentSeason(ctx, id)
	s.metrics.observe(TableSeasons, "mark_current", started, err)
	return err
}

func (s *InstrumentedStore) DeleteSeason(ctx context.Context, id string) error {
	started := time.Now()
	err := s.next.DeleteSeason(ctx, id)
	s.metrics.observe(TableSeasons, "delete", started, err)
	return err
}

func (s *InstrumentedStore) ListGames(ctx context.Context) ([]model.Game, error) {
	started := time.Now()
	games, err := s.next.ListGames(ctx)
	s.metrics.observe(TableGames, "select", started, err)
	return games, err
}

func (s *InstrumentedStore) CreateGame(ctx context.Context, game model.Game) (model.Game, error) {
	started := time.Now()
	created, err := s.next.CreateGame(ctx, game)
	s.metrics.observe(TableGames, "insert", started, err)
	return created, err
}

func (s *InstrumentedStore) UpdateGame(ctx context.Context, game model.Game) error {
	started := time.Now()
	err := s.next.UpdateGame(ctx, game)
	s.metrics.observe(TableGames, "update", started, err)
	return err
}

func (s *InstrumentedStore) ClearCaptain(ctx context.Context, playerID string) error {
	started := time.Now()
	err := s.next.ClearCaptain(ctx, playerID)
	s.metrics.observe(TableGames, "clear_captain", started, err)
	return err
}

func (s *InstrumentedStore) DeleteGame(ctx context.Context, id string) error {
	started := time.Now()
	err := s.next.DeleteGame(ctx, id)
	s.metrics.observe(TableGames, "delete", started, err)
	return err
}

func (s *InstrumentedStore) ListGamePlayers(ctx context.Context) ([]model.GamePlayer, error) {
	started := time.Now()
	rows, err := s.next.ListGamePlayers(ctx)
	s.metrics.observe(TableGamePlayers, "select", started, err)
	return rows, err
}

func (s *InstrumentedStore) CreateGamePlayers(ctx context.Context, rows []model.GamePlayer) error {
	started := time.Now()
	err := s.next.CreateGamePlayers(ctx, rows)
	s.metrics.observe(TableGamePlayers, "insert", started, err)
	return err
}

func (s *InstrumentedStore) DeleteGamePlayersByGame(ctx context.Context, gameID string) error {
	started := time.Now()
	err := s.next.DeleteGamePlayersByGame(ctx, gameID)
	s.metrics.observe(TableGamePlayers, "delete", started, err)
	return err
}

func (s *InstrumentedStore) DeleteGamePlayersByPlayer(ctx context.Context, playerID string) error {
	started := time.Now()
	err := s.next.DeleteGamePlayersByPlayer(ctx, playerID)
	s.metrics.observe(TableGamePlayers, "delete", started, err)
	return err
}
