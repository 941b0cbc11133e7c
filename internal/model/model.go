package model

import (
	"strings"
	"time"
)

type Team int

const (
	NoTeam Team = 0
	Team1  Team = 1
	Team2  Team = 2
)

func (t Team) Valid() bool {
	return t == Team1 || t == Team2
}

func (t Team) Opponent() Team {
	switch t {
	case Team1:
		return Team2
	case Team2:
		return Team1
	}
	return NoTeam
}

type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Season struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	IsCurrent bool      `json:"isCurrent"`
}

// DefaultSeason returns the "<Month> <Year>" season covering the calendar
// month of now.
func DefaultSeason(now time.Time) Season {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return Season{
		Name:      start.Month().String() + " " + start.Format("2006"),
		StartDate: start,
		EndDate:   end,
	}
}

type Game struct {
	ID           string    `json:"id"`
	Date         time.Time `json:"date"`
	Team1Score   int       `json:"team1Score"`
	Team2Score   int       `json:"team2Score"`
	Team1Captain string    `json:"team1Captain,omitempty"`
	Team2Captain string    `json:"team2Captain,omitempty"`
	SeasonID     string    `json:"seasonId"`
}

func (g Game) ScoreFor(team Team) int {
	switch team {
	case Team1:
		return g.Team1Score
	case Team2:
		return g.Team2Score
	}
	return 0
}

func (g Game) CaptainFor(team Team) string {
	switch team {
	case Team1:
		return g.Team1Captain
	case Team2:
		return g.Team2Captain
	}
	return ""
}

// Winner reports the team with the strictly higher score, or NoTeam on a tie.
func (g Game) Winner() Team {
	switch {
	case g.Team1Score > g.Team2Score:
		return Team1
	case g.Team2Score > g.Team1Score:
		return Team2
	}
	return NoTeam
}

func (g Game) IsTie() bool {
	return g.Winner() == NoTeam
}

type GamePlayer struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
	Team     Team   `json:"team"`
}

func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
