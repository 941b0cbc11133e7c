// Package balance splits a group of players into two teams of similar
// recent form.
package balance

import (
	"sort"

	"volleyball-league/internal/stats"
)

const (
	// RecentGames is how many of a player's latest games feed their
	// performance score.
	RecentGames        = 10
	DefaultPerformance = stats.DefaultPerformance
)

type Teams struct {
	Team1         []string `json:"team1"`
	Team2         []string `json:"team2"`
	Team1Strength float64  `json:"team1Strength"`
	Team2Strength float64  `json:"team2Strength"`
	Team1Captain  string   `json:"team1Captain"`
	Team2Captain  string   `json:"team2Captain"`
}

// BalanceTeams assigns the strongest remaining player to whichever team is
// weaker, team 1 winning ties. Duplicate ids are ignored and scores are
// clamped to [0,1]. The first player placed on each team is its captain.
func BalanceTeams(selected []string, performanceOf func(string) float64) Teams {
	type rated struct {
		id    string
		score float64
	}
	seen := make(map[string]bool, len(selected))
	players := make([]rated, 0, len(selected))
	for _, id := range selected {
		if seen[id] {
			continue
		}
		seen[id] = true
		score := DefaultPerformance
		if performanceOf != nil {
			score = clamp(performanceOf(id))
		}
		players = append(players, rated{id: id, score: score})
	}
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].score > players[j].score
	})

	teams := Teams{Team1: []string{}, Team2: []string{}}
	for _, p := range players {
		if teams.Team1Strength <= teams.Team2Strength {
			teams.Team1 = append(teams.Team1, p.id)
			teams.Team1Strength += p.score
		} else {
			teams.Team2 = append(teams.Team2, p.id)
			teams.Team2Strength += p.score
		}
	}
	if len(teams.Team1) > 0 {
		teams.Team1Captain = teams.Team1[0]
	}
	if len(teams.Team2) > 0 {
		teams.Team2Captain = teams.Team2[0]
	}
	return teams
}

func clamp(v float64) float64 {
	switch {
	case v != v:
		return DefaultPerformance
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
