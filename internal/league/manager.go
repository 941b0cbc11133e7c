// Package league keeps the in-memory view of players, games, seasons and team
// memberships consistent with the backing store.
package league

import (
	"context"
	"errors"
	"sync"
	"time"

	"volleyball-league/internal/model"
	"volleyball-league/internal/stats"
	"volleyball-league/internal/store"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Option func(*Manager)

func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) { m.log = logger }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager owns the cached collections. Mutations run one at a time and patch
// the cache only after the store confirms each step.
type Manager struct {
	store store.Store
	log   zerolog.Logger
	now   func() time.Time

	opMu sync.Mutex

	mu          sync.RWMutex
	players     []model.Player
	games       []model.Game
	seasons     []model.Season
	gamePlayers []model.GamePlayer

	memoMu sync.Mutex
	memo   map[statsKey]stats.PlayerStats
}

type statsKey struct {
	playerID string
	seasonID string
}

func New(st store.Store, opts ...Option) *Manager {
	m := &Manager{
		store: st,
		log:   zerolog.Nop(),
		now:   time.Now,
		memo:  make(map[statsKey]stats.PlayerStats),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GameInput carries the caller-controlled fields of a new game.
type GameInput struct {
	Team1Score   int    `json:"team1Score"`
	Team2Score   int    `json:"team2Score"`
	Team1Captain string `json:"team1Captain"`
	Team2Captain string `json:"team2Captain"`
}

type Lineup struct {
	Team1        []string `json:"team1"`
	Team2        []string `json:"team2"`
	Team1Captain string   `json:"team1Captain"`
	Team2Captain string   `json:"team2Captain"`
}

// Init loads every collection and makes sure exactly one season is current,
// creating the default season for the current month when none exist. It is
// safe to call more than once.
func (m *Manager) Init(ctx context.Context) (err error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	defer func() { m.logFailure("init", err) }()

	if err := m.refresh(ctx); err != nil {
		return err
	}

	seasons := m.Seasons()
	var current []model.Season
	for _, s := range seasons {
		if s.IsCurrent {
			current = append(current, s)
		}
	}

	switch {
	case len(seasons) == 0:
		season, err := m.bootstrapSeason(ctx)
		if err != nil {
			return err
		}
		m.log.Info().Str("season_id", season.ID).Str("name", season.Name).Msg("created default season")
	case len(current) == 0:
		m.log.Info().Str("season_id", seasons[0].ID).Msg("no current season, selecting earliest")
		return m.setCurrent(ctx, seasons[0].ID)
	case len(current) > 1:
		latest := current[0]
		for _, s := range current[1:] {
			if s.StartDate.After(latest.StartDate) {
				latest = s
			}
		}
		m.log.Warn().Int("current", len(current)).Str("season_id", latest.ID).Msg("several current seasons, keeping latest")
		return m.setCurrent(ctx, latest.ID)
	}
	return nil
}

// Refresh reloads every cache from the store. On failure the caches are left
// as they were.
func (m *Manager) Refresh(ctx context.Context) (err error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	defer func() { m.logFailure("refresh", err) }()

	return m.refresh(ctx)
}

func (m *Manager) refresh(ctx context.Context) error {
	var (
		players     []model.Player
		games       []model.Game
		seasons     []model.Season
		gamePlayers []model.GamePlayer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		players, err = m.store.ListPlayers(gctx)
		return wrapStore("select", store.TablePlayers, err)
	})
	g.Go(func() (err error) {
		games, err = m.store.ListGames(gctx)
		return wrapStore("select", store.TableGames, err)
	})
	g.Go(func() (err error) {
		seasons, err = m.store.ListSeasons(gctx)
		return wrapStore("select", store.TableSeasons, err)
	})
	g.Go(func() (err error) {
		gamePlayers, err = m.store.ListGamePlayers(gctx)
		return wrapStore("select", store.TableGamePlayers, err)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	model.SortPlayers(players)
	model.SortGames(games)
	model.SortSeasons(seasons)

	m.mu.Lock()
	m.players = players
	m.games = games
	m.seasons = seasons
	m.gamePlayers = gamePlayers
	m.invalidateStats()
	m.mu.Unlock()
	return nil
}

// Players

func (m *Manager) AddPlayer(ctx context.Context, name string) (player model.Player, err error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	defer func() { m.logFailure("add_player", err) }()

	name = model.NormalizeName(name)
	if name == "" {
		return model.Player{}, invalid("name", "must not be empty")
	}
	player, err = m.store.CreatePlayer(ctx, model.Player{Name: name})
	if err != nil {
		return model.Player{}, wrapStore("insert", store.TablePlayers, err)
	}

	m.mu.Lock()
	m.players = append(m.players, player)
	model.SortPlayers(m.players)
	m.mu.Unlock()
	return player, nil
}

func (m *Manager) UpdatePlayer(ctx context.Context, player model.Player) (_ model.Player, err error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	defer func() { m.logFailure("update_player", err) }()

	player.Name = model.NormalizeName(player.Name)
	if player.Name == "" {
		return model.Player{}, invalid("name", "must not be empty")
	}
	if _, ok := m.PlayerByID(player.ID); !ok {
		return model.Player{}, notFound("player", player.ID)
	}
	if err := m.store.UpdatePlayer(ctx, player); err != nil {
		return model.Player{}, wrapStoreFor("update", store.TablePlayers, "player", player.ID, err)
	}

	m.mu.Lock()
	for i := range m.players {
		if m.players[i].ID == player.ID {
			m.players[i] = player
		}
	}
	model.SortPlayers(m.players)
	m.mu.Unlock()
	return player, nil
}

// RemovePlayer clears the player's captaincies and memberships before
// deleting the player row.
func (m *Manager) RemovePlayer(ctx context.Context, id string) (err error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	defer func() { m.logFailure("remove_player", err) }()

	if _, ok := m.PlayerByID(id); !ok {
		return notFound("player", id)
	}

	return runSteps(ctx, "remove_player", []step{
		{"clear captaincies", func(ctx context.Context) error {
			if err := m.store.ClearCaptain(ctx, id); err != nil {
				return wrapStore("clear_captain", store.TableGames, err)
			}
			m.mu.Lock()
			for i := range m.games {
				if m.games[i].Team1Captain == id {
					m.games[i].Team1Captain = ""
				}
				if m.games[i].Team2Captain == id {
					m.games[i].Team2Captain = ""
				}
			}
			m.mu.Unlock()
			return nil
		}},
		{"delete memberships", func(ctx context.Context) error {
			if err := m.store.DeleteGamePlayersByPlayer(ctx, id); err != nil {
				return wrapStore("delete", store.TableGamePlayers, err)
			}
			m.mu.Lock()
			m.gamePlayers = filterMemberships(m.gamePlayers, func(gp model.GamePlayer) bool { return gp.PlayerID != id })
			m.invalidateStats()
			m.mu.Unlock()
			return nil
		}},
		{"delete player", func(ctx context.Context) error {
			if err := m.store.DeletePlayer(ctx, id); err != nil {
				return wrapStoreFor("delete", store.TablePlayers, "player", id, err)
			}
			m.mu.Lock()
			m.players = filterPlayers(m.players, id)
			m.mu.Unlock()
			return nil
		}},
	})
}

// Seasons

// AddSeason creates a season and makes it the current one.
func (m *Manager) AddSeason(ctx context.Context, name string, start, end time.Time) (season model.Season, err error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	defer func() { m.logFailure("add_season", err) }()

	season = model.Season{Name: model.NormalizeName(name), StartDate: start, EndDate: end}
	if err := validateSeason(season); err != nil {
		return model.Season{}, err
	}

	err = runSteps(ctx, "add_season", []step{
		{"insert season", func(ctx context.Context) error {
			created, err := m.store.CreateSeason(ctx, season)
			if err != nil {
				return wrapStore("insert", store.TableSeasons, err)
			}
			season = created
			m.mu.Lock()
			m.seasons = append(m.seasons, created)
			model.SortSeasons(m.seasons)
			m.mu.Unlock()
			return nil
		}},
		{"set current season", func(ctx context.Context) error {
			return m.setCurrent(ctx, season.ID)
		}},
	})
	if season.ID == "" {
		return model.Season{}, err
	}
	if cached, ok := m.SeasonByID(season.ID); ok {
		season = cached
	}
	return season, err
}

// UpdateSeason replaces the name and dates. Whether the season is current
// only changes through SetCurrentSeason.
func (m *Manager) UpdateSeason(ctx context.Context, season model.Season) (_ model.Season, err error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	defer func() { m.logFailure("update_season", err) }()

	season.Name = model.NormalizeName(season.Name)
	if err := validateSeason(season); err != nil {
		return model.Season{}, err
	}
	existing, ok := m.SeasonByID(season.ID)
	if !ok {
		return model.Season{}, notFound("season", season.ID)
	}
	season.IsCurrent = existing.IsCurrent
	if err := m.store.UpdateSeason(ctx, season); err != nil {
		return model.Season{}, wrapStoreFor("update", store.TableSeasons, "season", season.ID, err)
	}

	m.mu.Lock()
	for i := range m.seasons {
		if m.seasons[i].ID == season.ID {
			m.seasons[i] = season
		}
	}
	model.SortSeasons(m.seasons)
	m.mu.Unlock()
	return season, nil
}

// RemoveSeason deletes the season's games with their memberships, then the
// season. When the current season goes, the first remaining season takes
// over, or a default season is created if none remain.
func (m *Manager) RemoveSeason(ctx context.Context, id string) (err error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	defer func() { m.logFailure("remove_season", err) }()

	season, ok := m.SeasonByID(id)
	if !ok {
		return notFound("season", id)
	}

	var steps []step
	for _, g := range m.Games() {
		if g.SeasonID == id {
			steps = append(steps, m.removeGameSteps(g.ID)...)
		}
	}
	steps = append(steps, step{"delete season", func(ctx context.Context) error {
		if err := m.store.DeleteSeason(ctx, id); err != nil {
			return wrapStoreFor("delete", store.TableSeasons, "season", id, err)
		}
		m.mu.Lock()
		m.seasons = filterSeasons(m.seasons, id)
		m.mu.Unlock()
		return nil
	}})
	if season.IsCurrent {
		steps = append(steps, step{"replace current season", func(ctx context.Context) error {
			remaining := m.Seasons()
			if len(remaining) == 0 {
				_, err := m.bootstrapSeason(ctx)
				return err
			}
			return m.setCurrent(ctx, remaining[0].ID)
		}})
	}
	return runSteps(ctx, "remove_season", steps)
}

// SetCurrentSeason clears every current flag and then marks id. If the second
// phase fails no season is current until the call is repeated.
func (m *Manager) SetCurrentSeason(ctx context.Context, id string) (err error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	defer func() { m.logFailure("set_current_season", err) }()

	if _, ok := m.SeasonByID(id); !ok {
		return notFound("season", id)
	}
	return m.setCurrent(ctx, id)
}

func (m *Manager) setCurrent(ctx context.Context, id string) error {
	return runSteps(ctx, "set_current_season", []step{
		{"clear current seasons", func(ctx context.Context) error {
			if err := m.store.ClearCurrentSeasons(ctx); err != nil {
				return wrapStore("clear_current", store.TableSeasons, err)
			}
			m.mu.Lock()
			for i := range m.seasons {
				m.seasons[i].IsCurrent = false
			}
			m.mu.Unlock()
			return nil
		}},
		{"mark current season", func(ctx context.Context) error {
			if err := m.store.MarkCurrentSeason(ctx, id); err != nil {
				return wrapStoreFor("mark_current", store.TableSeasons, "season", id, err)
			}
			m.mu.Lock()
			for i := range m.seasons {
				if m.seasons[i].ID == id {
					m.seasons[i].IsCurrent = true
				}
			}
			m.mu.Unlock()
			return nil
		}},
	})
}

func (m *Manager) bootstrapSeason(ctx context.Context) (model.Season, error) {
	season := model.DefaultSeason(m.now())
	season.IsCurrent = true
	created, err := m.store.CreateSeason(ctx, season)
	if err != nil {
		return model.Season{}, wrapStore("insert", store.TableSeasons, err)
	}
	m.mu.Lock()
	m.seasons = append(m.seasons, created)
	model.SortSeasons(m.seasons)
	m.mu.Unlock()
	return created, nil
}

// Games

// AddGame records a game in the current season. If the memberships cannot be
// stored the created game is returned together with an
// InconsistentStateError.
func (m *Manager) AddGame(ctx context.Context, in GameInput, team1, team2 []string) (game model.Game, err error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	defer func() { m.logFailure("add_game", err) }()

	if err := m.validateLineup(Lineup{Team1: team1, Team2: team2, Team1Captain: in.Team1Captain, Team2Captain: in.Team2Captain}); err != nil {
		return model.Game{}, err
	}
	if err := validateScores(in.Team1Score, in.Team2Score); err != nil {
		return model.Game{}, err
	}
	season, ok := m.CurrentSeason()
	if !ok {
		return model.Game{}, invalid("season", "no current season")
	}

	game = model.Game{
		Date:         m.now().UTC().Truncate(time.Microsecond),
		Team1Score:   in.Team1Score,
		Team2Score:   in.Team2Score,
		Team1Captain: in.Team1Captain,
		Team2Captain: in.Team2Captain,
		SeasonID:     season.ID,
	}
	err = runSteps(ctx, "add_game", []step{
		{"insert game", func(ctx context.Context) error {
			created, err := m.store.CreateGame(ctx, game)
			if err != nil {
				return wrapStore("insert", store.TableGames, err)
			}
			game = created
			m.mu.Lock()
			m.games = append(m.games, created)
			model.SortGames(m.games)
			m.invalidateStats()
			m.mu.Unlock()
			return nil
		}},
		{"insert memberships", func(ctx context.Context) error {
			return m.insertMemberships(ctx, game.ID, team1, team2)
		}},
	})
	if game.ID == "" {
		return model.Game{}, err
	}
	return game, err
}

// UpdateGame replaces scores and captains. The date, season and team
// memberships stay as they are.
func (m *Manager) UpdateGame(ctx context.Context, game model.Game) (_ model.Game, err error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	defer func() { m.logFailure("update_game", err) }()

	existing, ok := m.GameByID(game.ID)
	if !ok {
		return model.Game{}, notFound("game", game.ID)
	}
	if err := validateScores(game.Team1Score, game.Team2Score); err != nil {
		return model.Game{}, err
	}
	team1, team2 := m.teamsOf(game.ID)
	if err := validateCaptain("team1Captain", game.Team1Captain, team1); err != nil {
		return model.Game{}, err
	}
	if err := validateCaptain("team2Captain", game.Team2Captain, team2); err != nil {
		return model.Game{}, err
	}
	game.Date = existing.Date
	game.SeasonID = existing.SeasonID

	if err := m.store.UpdateGame(ctx, game); err != nil {
		return model.Game{}, wrapStoreFor("update", store.TableGames, "game", game.ID, err)
	}
	m.replaceGame(game)
	return game, nil
}

// UpdateGameRoster swaps the teams of an existing game.
func (m *Manager) UpdateGameRoster(ctx context.Context, id string, lineup Lineup) (game model.Game, err error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	defer func() { m.logFailure("update_game_roster", err) }()

	game, ok := m.GameByID(id)
	if !ok {
		return model.Game{}, notFound("game", id)
	}
	if err := m.validateLineup(lineup); err != nil {
		return model.Game{}, err
	}
	game.Team1Captain = lineup.Team1Captain
	game.Team2Captain = lineup.Team2Captain

	err = runSteps(ctx, "update_game_roster", []step{
		{"update captains", func(ctx context.Context) error {
			if err := m.store.UpdateGame(ctx, game); err != nil {
				return wrapStoreFor("update", store.TableGames, "game", id, err)
			}
			m.replaceGame(game)
			return nil
		}},
		{"delete memberships", func(ctx context.Context) error {
			return m.deleteMemberships(ctx, id)
		}},
		{"insert memberships", func(ctx context.Context) error {
			return m.insertMemberships(ctx, id, lineup.Team1, lineup.Team2)
		}},
	})
	if err != nil {
		if cached, ok := m.GameByID(id); ok {
			return cached, err
		}
		return model.Game{}, err
	}
	return game, nil
}

func (m *Manager) RemoveGame(ctx context.Context, id string) (err error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	defer func() { m.logFailure("remove_game", err) }()

	if _, ok := m.GameByID(id); !ok {
		return notFound("game", id)
	}
	return runSteps(ctx, "remove_game", m.removeGameSteps(id))
}

func (m *Manager) removeGameSteps(id string) []step {
	return []step{
		{"delete memberships of game " + id, func(ctx context.Context) error {
			return m.deleteMemberships(ctx, id)
		}},
		{"delete game " + id, func(ctx context.Context) error {
			if err := m.store.DeleteGame(ctx, id); err != nil {
				return wrapStoreFor("delete", store.TableGames, "game", id, err)
			}
			m.mu.Lock()
			m.games = filterGames(m.games, id)
			m.invalidateStats()
			m.mu.Unlock()
			return nil
		}},
	}
}

func (m *Manager) insertMemberships(ctx context.Context, gameID string, team1, team2 []string) error {
	rows := make([]model.GamePlayer, 0, len(team1)+len(team2))
	for _, id := range team1 {
		rows = append(rows, model.GamePlayer{GameID: gameID, PlayerID: id, Team: model.Team1})
	}
	for _, id := range team2 {
		rows = append(rows, model.GamePlayer{GameID: gameID, PlayerID: id, Team: model.Team2})
	}
	if err := m.store.CreateGamePlayers(ctx, rows); err != nil {
		return wrapStore("insert", store.TableGamePlayers, err)
	}
	m.mu.Lock()
	m.gamePlayers = append(m.gamePlayers, rows...)
	m.invalidateStats()
	m.mu.Unlock()
	return nil
}

func (m *Manager) deleteMemberships(ctx context.Context, gameID string) error {
	if err := m.store.DeleteGamePlayersByGame(ctx, gameID); err != nil {
		return wrapStore("delete", store.TableGamePlayers, err)
	}
	m.mu.Lock()
	m.gamePlayers = filterMemberships(m.gamePlayers, func(gp model.GamePlayer) bool { return gp.GameID != gameID })
	m.invalidateStats()
	m.mu.Unlock()
	return nil
}

func (m *Manager) replaceGame(game model.Game) {
	m.mu.Lock()
	for i := range m.games {
		if m.games[i].ID == game.ID {
			m.games[i] = game
		}
	}
	m.invalidateStats()
	m.mu.Unlock()
}

func (m *Manager) teamsOf(gameID string) (team1, team2 []string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, gp := range m.gamePlayers {
		if gp.GameID != gameID {
			continue
		}
		switch gp.Team {
		case model.Team1:
			team1 = append(team1, gp.PlayerID)
		case model.Team2:
			team2 = append(team2, gp.PlayerID)
		}
	}
	return team1, team2
}

// invalidateStats must be called with mu held for writing.
func (m *Manager) invalidateStats() {
	m.memoMu.Lock()
	m.memo = make(map[statsKey]stats.PlayerStats)
	m.memoMu.Unlock()
}

func (m *Manager) logFailure(op string, err error) {
	if err == nil {
		return
	}
	ev := m.log.Error()
	if (IsValidation(err) || IsNotFound(err)) && !IsInconsistent(err) {
		ev = m.log.Warn()
	}
	var inconsistent *InconsistentStateError
	if errors.As(err, &inconsistent) {
		ev = ev.Str("step", inconsistent.Step).Strs("completed", inconsistent.Completed)
	}
	ev.Err(err).Str("op", op).Msg("league operation failed")
}

// step is one remote call of a multi-step operation. run patches the cache
// itself once the store confirms the call.
type step struct {
	name string
	run  func(ctx context.Context) error
}

// runSteps runs steps in order and stops at the first failure. A failure in
// the first step is returned as is; later failures are reported as an
// InconsistentStateError naming what already happened.
func runSteps(ctx context.Context, op string, steps []step) error {
	completed := make([]string, 0, len(steps))
	for _, s := range steps {
		if err := s.run(ctx); err != nil {
			if len(completed) == 0 {
				return err
			}
			return &InconsistentStateError{Op: op, Step: s.name, Completed: completed, Err: err}
		}
		completed = append(completed, s.name)
	}
	return nil
}

func wrapStore(op, table string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Table: table, Err: err}
}

// wrapStoreFor reports a missing row as a NotFoundError.
func wrapStoreFor(op, table, kind, id string, err error) error {
	if store.IsNotFound(err) {
		return notFound(kind, id)
	}
	return wrapStore(op, table, err)
}

func filterPlayers(players []model.Player, id string) []model.Player {
	out := players[:0]
	for _, p := range players {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

func filterSeasons(seasons []model.Season, id string) []model.Season {
	out := seasons[:0]
	for _, s := range seasons {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}

func filterGames(games []model.Game, id string) []model.Game {
	out := games[:0]
	for _, g := range games {
		if g.ID != id {
			out = append(out, g)
		}
	}
	return out
}

func filterMemberships(rows []model.GamePlayer, keep func(model.GamePlayer) bool) []model.GamePlayer {
	out := rows[:0]
	for _, gp := range rows {
		if keep(gp) {
			out = append(out, gp)
		}
	}
	return out
}
