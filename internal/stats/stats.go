// Package stats derives player records from the game log. Nothing here is
// stored; every figure is recomputed from games and memberships.
package stats

import (
	"math"
	"sort"

	"volleyball-league/internal/model"
)

type PlayerStats struct {
	GamesPlayed int `json:"gamesPlayed"`
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`
	WinRate     int `json:"winRate"`
}

// CalculatePlayerStats counts the player's wins and losses. An empty seasonID
// covers every season. A tie is a loss for both sides, so GamesPlayed always
// equals Wins+Losses.
func CalculatePlayerStats(playerID string, games []model.Game, memberships []model.GamePlayer, seasonID string) PlayerStats {
	byID := indexGames(games)
	var s PlayerStats
	for _, gp := range memberships {
		if gp.PlayerID != playerID {
			continue
		}
		game, ok := byID[gp.GameID]
		if !ok {
			continue
		}
		if seasonID != "" && game.SeasonID != seasonID {
			continue
		}
		if game.ScoreFor(gp.Team) > game.ScoreFor(gp.Team.Opponent()) {
			s.Wins++
		} else {
			s.Losses++
		}
	}
	s.GamesPlayed = s.Wins + s.Losses
	s.WinRate = winRate(s.Wins, s.GamesPlayed)
	return s
}

func winRate(wins, played int) int {
	if played == 0 {
		return 0
	}
	return int(math.Round(100 * float64(wins) / float64(played)))
}

// RecentPerformance is the player's win fraction over at most limit of their
// most recent games, or DefaultPerformance with no history.
func RecentPerformance(playerID string, games []model.Game, memberships []model.GamePlayer, limit int) float64 {
	byID := indexGames(games)
	type result struct {
		game model.Game
		won  bool
	}
	var played []result
	for _, gp := range memberships {
		if gp.PlayerID != playerID {
			continue
		}
		game, ok := byID[gp.GameID]
		if !ok {
			continue
		}
		played = append(played, result{
			game: game,
			won:  game.ScoreFor(gp.Team) > game.ScoreFor(gp.Team.Opponent()),
		})
	}
	if len(played) == 0 || limit <= 0 {
		return DefaultPerformance
	}
	sort.SliceStable(played, func(i, j int) bool {
		if played[i].game.Date.Equal(played[j].game.Date) {
			return played[i].game.ID > played[j].game.ID
		}
		return played[i].game.Date.After(played[j].game.Date)
	})
	if len(played) > limit {
		played = played[:limit]
	}
	wins := 0
	for _, r := range played {
		if r.won {
			wins++
		}
	}
	return float64(wins) / float64(len(played))
}

const DefaultPerformance = 0.5

type Standing struct {
	Player model.Player `json:"player"`
	PlayerStats
}

// Standings returns one entry per player, ordered by win rate, then games
// played, then name.
func Standings(players []model.Player, games []model.Game, memberships []model.GamePlayer, seasonID string) []Standing {
	standings := make([]Standing, 0, len(players))
	for _, p := range players {
		standings = append(standings, Standing{
			Player:      p,
			PlayerStats: CalculatePlayerStats(p.ID, games, memberships, seasonID),
		})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		if a.GamesPlayed != b.GamesPlayed {
			return a.GamesPlayed > b.GamesPlayed
		}
		return a.Player.Name < b.Player.Name
	})
	return standings
}

// TopPerformers keeps standings with at least minGames games, in order, up to
// limit entries. A non-positive limit keeps them all.
func TopPerformers(standings []Standing, minGames, limit int) []Standing {
	top := make([]Standing, 0, len(standings))
	for _, s := range standings {
		if s.GamesPlayed < minGames {
			continue
		}
		top = append(top, s)
		if limit > 0 && len(top) == limit {
			break
		}
	}
	return top
}

type SeasonSummary struct {
	Season      model.Season `json:"season"`
	GameCount   int          `json:"gameCount"`
	PlayerCount int          `json:"playerCount"`
}

// Summarize counts games and distinct players per season, keeping the order
// of seasons.
func Summarize(seasons []model.Season, games []model.Game, memberships []model.GamePlayer) []SeasonSummary {
	seasonOf := make(map[string]string, len(games))
	gameCount := make(map[string]int, len(seasons))
	for _, g := range games {
		seasonOf[g.ID] = g.SeasonID
		gameCount[g.SeasonID]++
	}
	players := make(map[string]map[string]struct{}, len(seasons))
	for _, gp := range memberships {
		seasonID, ok := seasonOf[gp.GameID]
		if !ok {
			continue
		}
		if players[seasonID] == nil {
			players[seasonID] = make(map[string]struct{})
		}
		players[seasonID][gp.PlayerID] = struct{}{}
	}
	summaries := make([]SeasonSummary, 0, len(seasons))
	for _, s := range seasons {
		summaries = append(summaries, SeasonSummary{
			Season:      s,
			GameCount:   gameCount[s.ID],
			PlayerCount: len(players[s.ID]),
		})
	}
	return summaries
}

func indexGames(games []model.Game) map[string]model.Game {
	byID := make(map[string]model.Game, len(games))
	for _, g := range games {
		byID[g.ID] = g
	}
	return byID
}
