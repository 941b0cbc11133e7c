package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"volleyball-league/internal/model"

	"github.com/google/uuid"
)

type membershipKey struct {
	gameID   string
	playerID string
}

type MemoryStore struct {
	mu          sync.RWMutex
	players     map[string]model.Player
	seasons     map[string]model.Season
	games       map[string]model.Game
	gamePlayers map[membershipKey]model.GamePlayer
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players:     make(map[string]model.Player),
		seasons:     make(map[string]model.Season),
		games:       make(map[string]model.Game),
		gamePlayers: make(map[membershipKey]model.GamePlayer),
	}
}

func (s *MemoryStore) ListPlayers(ctx context.Context) ([]model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := make([]model.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p)
	}
	model.SortPlayers(players)
	return players, nil
}

func (s *MemoryStore) CreatePlayer(ctx context.Context, player model.Player) (model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if player.ID == "" {
		player.ID = uuid.NewString()
	}
	if _, exists := s.players[player.ID]; exists {
		return model.Player{}, errors.New("player already exists")
	}
	s.players[player.ID] = player
	return player, nil
}

func (s *MemoryStore) UpdatePlayer(ctx context.Context, player model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[player.ID]; !ok {
		return fmt.Errorf("player %s: %w", player.ID, ErrNotFound)
	}
	s.players[player.ID] = player
	return nil
}

func (s *MemoryStore) DeletePlayer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[id]; !ok {
		return fmt.Errorf("player %s: %w", id, ErrNotFound)
	}
	delete(s.players, id)
	return nil
}

func (s *MemoryStore) ListSeasons(ctx context.Context) ([]model.Season, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seasons := make([]model.Season, 0, len(s.seasons))
	for _, season := range s.seasons {
		seasons = append(seasons, season)
	}
	model.SortSeasons(seasons)
	return seasons, nil
}

func (s *MemoryStore) CreateSeason(ctx context.Context, season model.Season) (model.Season, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if season.ID == "" {
		season.ID = uuid.NewString()
	}
	if _, exists := s.seasons[season.ID]; exists {
		return model.Season{}, errors.New("season already exists")
	}
	s.seasons[season.ID] = season
	return season, nil
}

func (s *MemoryStore) UpdateSeason(ctx context.Context, season model.Season) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seasons[season.ID]; !ok {
		return fmt.Errorf("season %s: %w", season.ID, ErrNotFound)
	}
	s.seasons[season.ID] = season
	return nil
}

func (s *MemoryStore) ClearCurrentSeasons(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, season := range s.seasons {
		if season.IsCurrent {
			season.IsCurrent = false
			s.seasons[id] = season
		}
	}
	return nil
}

func (s *MemoryStore) MarkCurrentSeason(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	season, ok := s.seasons[id]
	if !ok {
		return fmt.Errorf("season %s: %w", id, ErrNotFound)
	}
	season.IsCurrent = true
	s.seasons[id] = season
	return nil
}

func (s *MemoryStore) DeleteSeason(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seasons[id]; !ok {
		return fmt.Errorf("season %s: %w", id, ErrNotFound)
	}
	delete(s.seasons, id)
	return nil
}

func (s *MemoryStore) ListGames(ctx context.Context) ([]model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	games := make([]model.Game, 0, len(s.games))
	for _, g := range s.games {
		games = append(games, g)
	}
	model.SortGames(games)
	return games, nil
}

func (s *MemoryStore) CreateGame(ctx context.Context, game model.Game) (model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if game.ID == "" {
		game.ID = uuid.NewString()
	}
	if game.Date.IsZero() {
		game.Date = time.Now()
	}
	if _, exists := s.games[game.ID]; exists {
		return model.Game{}, errors.New("game already exists")
	}
	s.games[game.ID] = game
	return game, nil
}

func (s *MemoryStore) UpdateGame(ctx context.Context, game model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[game.ID]; !ok {
		return fmt.Errorf("game %s: %w", game.ID, ErrNotFound)
	}
	s.games[game.ID] = game
	return nil
}

func (s *MemoryStore) ClearCaptain(ctx context.Context, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, g := range s.games {
		changed := false
		if g.Team1Captain == playerID {
			g.Team1Captain = ""
			changed = true
		}
		if g.Team2Captain == playerID {
			g.Team2Captain = ""
			changed = true
		}
		if changed {
			s.games[id] = g
		}
	}
	return nil
}

func (s *MemoryStore) DeleteGame(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[id]; !ok {
		return fmt.Errorf("game %s: %w", id, ErrNotFound)
	}
	delete(s.games, id)
	return nil
}

func (s *MemoryStore) ListGamePlayers(ctx context.Context) ([]model.GamePlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]model.GamePlayer, 0, len(s.gamePlayers))
	for _, gp := range s.gamePlayers {
		rows = append(rows, gp)
	}
	sortGamePlayers(rows)
	return rows, nil
}

// CreateGamePlayers inserts every row or none of them.
func (s *MemoryStore) CreateGamePlayers(ctx context.Context, rows []model.GamePlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[membershipKey]bool, len(rows))
	for _, row := range rows {
		if !row.Team.Valid() {
			return fmt.Errorf("game player %s/%s: invalid team %d", row.GameID, row.PlayerID, row.Team)
		}
		key := membershipKey{gameID: row.GameID, playerID: row.PlayerID}
		if _, exists := s.gamePlayers[key]; exists || seen[key] {
			return fmt.Errorf("game player %s/%s already exists", row.GameID, row.PlayerID)
		}
		seen[key] = true
	}
	for _, row := range rows {
		s.gamePlayers[membershipKey{gameID: row.GameID, playerID: row.PlayerID}] = row
	}
	return nil
}

func (s *MemoryStore) DeleteGamePlayersByGame(ctx context.Context, gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.gamePlayers {
		if key.gameID == gameID {
			delete(s.gamePlayers, key)
		}
	}
	return nil
}

func (s *MemoryStore) DeleteGamePlayersByPlayer(ctx context.Context, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.gamePlayers {
		if key.playerID == playerID {
			delete(s.gamePlayers, key)
		}
	}
	return nil
}

func sortGamePlayers(rows []model.GamePlayer) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].GameID != rows[j].GameID {
			return rows[i].GameID < rows[j].GameID
		}
		if rows[i].Team != rows[j].Team {
			return rows[i].Team < rows[j].Team
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})
}
