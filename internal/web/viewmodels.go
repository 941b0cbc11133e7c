package web

import (
	"volleyball-league/internal/league"
	"volleyball-league/internal/model"
	"volleyball-league/internal/stats"
)

type PlayerView struct {
	model.Player
	Stats stats.PlayerStats `json:"stats"`
}

type PlayerDetailView struct {
	Player        model.Player       `json:"player"`
	AllTime       stats.PlayerStats  `json:"allTime"`
	CurrentSeason *stats.PlayerStats `json:"currentSeason,omitempty"`
	Games         []model.Game       `json:"games"`
}

type SeasonDetailView struct {
	Season        model.Season     `json:"season"`
	Standings     []stats.Standing `json:"standings"`
	TopPerformers []stats.Standing `json:"topPerformers"`
	Games         []model.Game     `json:"games"`
}

type playerRequest struct {
	Name string `json:"name"`
}

type seasonRequest struct {
	Name      string `json:"name"`
	StartDate date   `json:"startDate"`
	EndDate   date   `json:"endDate"`
}

type gameCreateRequest struct {
	league.GameInput
	Team1 []string `json:"team1"`
	Team2 []string `json:"team2"`
}

type gameUpdateRequest struct {
	Team1Score   int    `json:"team1Score"`
	Team2Score   int    `json:"team2Score"`
	Team1Captain string `json:"team1Captain"`
	Team2Captain string `json:"team2Captain"`
}

type balanceRequest struct {
	Players []string `json:"players"`
}
