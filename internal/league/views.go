package league

import (
	"sort"

	"volleyball-league/internal/balance"
	"volleyball-league/internal/model"
	"volleyball-league/internal/stats"
)

type Snapshot struct {
	Players       []model.Player     `json:"players"`
	Games         []model.Game       `json:"games"`
	Seasons       []model.Season     `json:"seasons"`
	GamePlayers   []model.GamePlayer `json:"gamePlayers"`
	CurrentSeason *model.Season      `json:"currentSeason"`
}

type Roster struct {
	Game  model.Game     `json:"game"`
	Team1 []model.Player `json:"team1"`
	Team2 []model.Player `json:"team2"`
}

func (m *Manager) PlayerByID(id string) (model.Player, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.players {
		if p.ID == id {
			return p, true
		}
	}
	return model.Player{}, false
}

func (m *Manager) GameByID(id string) (model.Game, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, g := range m.games {
		if g.ID == id {
			return g, true
		}
	}
	return model.Game{}, false
}

func (m *Manager) SeasonByID(id string) (model.Season, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.seasons {
		if s.ID == id {
			return s, true
		}
	}
	return model.Season{}, false
}

func (m *Manager) CurrentSeason() (model.Season, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.seasons {
		if s.IsCurrent {
			return s, true
		}
	}
	return model.Season{}, false
}

func (m *Manager) Players() []model.Player {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Player(nil), m.players...)
}

// Games returns every game, oldest first.
func (m *Manager) Games() []model.Game {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Game(nil), m.games...)
}

// Seasons returns every season ordered by start date.
func (m *Manager) Seasons() []model.Season {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Season(nil), m.seasons...)
}

func (m *Manager) GamePlayers() []model.GamePlayer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.GamePlayer(nil), m.gamePlayers...)
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := Snapshot{
		Players:     append([]model.Player{}, m.players...),
		Games:       append([]model.Game{}, m.games...),
		Seasons:     append([]model.Season{}, m.seasons...),
		GamePlayers: append([]model.GamePlayer{}, m.gamePlayers...),
	}
	for _, s := range m.seasons {
		if s.IsCurrent {
			current := s
			snap.CurrentSeason = &current
			break
		}
	}
	return snap
}

// CurrentSeasonGames returns the current season's games, newest first.
func (m *Manager) CurrentSeasonGames() []model.Game {
	season, ok := m.CurrentSeason()
	if !ok {
		return []model.Game{}
	}
	return m.SeasonGames(season.ID)
}

// SeasonGames returns the season's games newest first. An empty seasonID
// returns every game.
func (m *Manager) SeasonGames(seasonID string) []model.Game {
	games := m.Games()
	out := make([]model.Game, 0, len(games))
	for i := len(games) - 1; i >= 0; i-- {
		if seasonID == "" || games[i].SeasonID == seasonID {
			out = append(out, games[i])
		}
	}
	return out
}

// PlayerStats is memoized until the next change to games or memberships.
func (m *Manager) PlayerStats(playerID, seasonID string) stats.PlayerStats {
	key := statsKey{playerID: playerID, seasonID: seasonID}
	m.memoMu.Lock()
	cached, ok := m.memo[key]
	m.memoMu.Unlock()
	if ok {
		return cached
	}

	m.mu.RLock()
	result := stats.CalculatePlayerStats(playerID, m.games, m.gamePlayers, seasonID)
	m.memoMu.Lock()
	m.memo[key] = result
	m.memoMu.Unlock()
	m.mu.RUnlock()
	return result
}

// PlayerGames returns the games the player took part in, newest first.
func (m *Manager) PlayerGames(playerID string) []model.Game {
	m.mu.RLock()
	played := make(map[string]bool)
	for _, gp := range m.gamePlayers {
		if gp.PlayerID == playerID {
			played[gp.GameID] = true
		}
	}
	out := make([]model.Game, 0, len(played))
	for i := len(m.games) - 1; i >= 0; i-- {
		if played[m.games[i].ID] {
			out = append(out, m.games[i])
		}
	}
	m.mu.RUnlock()
	return out
}

// GameRoster resolves both teams of a game to players sorted by name.
// Memberships pointing at unknown players are skipped.
func (m *Manager) GameRoster(gameID string) (Roster, bool) {
	game, ok := m.GameByID(gameID)
	if !ok {
		return Roster{}, false
	}
	m.mu.RLock()
	players := make(map[string]model.Player, len(m.players))
	for _, p := range m.players {
		players[p.ID] = p
	}
	roster := Roster{Game: game, Team1: []model.Player{}, Team2: []model.Player{}}
	for _, gp := range m.gamePlayers {
		if gp.GameID != gameID {
			continue
		}
		p, ok := players[gp.PlayerID]
		if !ok {
			continue
		}
		switch gp.Team {
		case model.Team1:
			roster.Team1 = append(roster.Team1, p)
		case model.Team2:
			roster.Team2 = append(roster.Team2, p)
		}
	}
	m.mu.RUnlock()
	byName := func(team []model.Player) {
		sort.Slice(team, func(i, j int) bool { return team[i].Name < team[j].Name })
	}
	byName(roster.Team1)
	byName(roster.Team2)
	return roster, true
}

func (m *Manager) SeasonStandings(seasonID string) []stats.Standing {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return stats.Standings(m.players, m.games, m.gamePlayers, seasonID)
}

func (m *Manager) TopPerformers(seasonID string, minGames, limit int) []stats.Standing {
	return stats.TopPerformers(m.SeasonStandings(seasonID), minGames, limit)
}

func (m *Manager) SeasonSummaries() []stats.SeasonSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return stats.Summarize(m.seasons, m.games, m.gamePlayers)
}

// ProposeTeams splits the selected players using their recent form.
func (m *Manager) ProposeTeams(selected []string) (balance.Teams, error) {
	distinct := make([]string, 0, len(selected))
	seen := make(map[string]bool, len(selected))
	for _, id := range selected {
		if seen[id] {
			continue
		}
		if _, ok := m.PlayerByID(id); !ok {
			return balance.Teams{}, invalid("players", "unknown player "+id)
		}
		seen[id] = true
		distinct = append(distinct, id)
	}
	if len(distinct) < 2 {
		return balance.Teams{}, invalid("players", "select at least two players")
	}

	m.mu.RLock()
	games := m.games
	gamePlayers := m.gamePlayers
	teams := balance.BalanceTeams(distinct, func(id string) float64 {
		return stats.RecentPerformance(id, games, gamePlayers, balance.RecentGames)
	})
	m.mu.RUnlock()
	return teams, nil
}
