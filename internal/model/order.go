package model

import "sort"

// SortPlayers orders players by name, then id.
func SortPlayers(players []Player) {
	sort.Slice(players, func(i, j int) bool {
		if players[i].Name == players[j].Name {
			return players[i].ID < players[j].ID
		}
		return players[i].Name < players[j].Name
	})
}

// SortSeasons orders seasons by start date, then id.
func SortSeasons(seasons []Season) {
	sort.Slice(seasons, func(i, j int) bool {
		if seasons[i].StartDate.Equal(seasons[j].StartDate) {
			return seasons[i].ID < seasons[j].ID
		}
		return seasons[i].StartDate.Before(seasons[j].StartDate)
	})
}

// SortGames orders games oldest first, then by id.
func SortGames(games []Game) {
	sort.Slice(games, func(i, j int) bool {
		if games[i].Date.Equal(games[j].Date) {
			return games[i].ID < games[j].ID
		}
		return games[i].Date.Before(games[j].Date)
	})
}
