package league

import (
	"fmt"

	"volleyball-league/internal/model"
)

func validateSeason(season model.Season) error {
	if season.Name == "" {
		return invalid("name", "must not be empty")
	}
	if season.StartDate.IsZero() || season.EndDate.IsZero() {
		return invalid("dates", "start and end are required")
	}
	if season.EndDate.Before(season.StartDate) {
		return invalid("endDate", "must not be before startDate")
	}
	return nil
}

func validateScores(team1, team2 int) error {
	if team1 < 0 {
		return invalid("team1Score", "must not be negative")
	}
	if team2 < 0 {
		return invalid("team2Score", "must not be negative")
	}
	return nil
}

func validateCaptain(field, captain string, team []string) error {
	if captain == "" {
		return nil
	}
	for _, id := range team {
		if id == captain {
			return nil
		}
	}
	return invalid(field, fmt.Sprintf("player %s is not on the team", captain))
}

// validateLineup checks both rosters against the cached players. A lineup
// always names both captains; only UpdateGame accepts a cleared one.
func (m *Manager) validateLineup(lineup Lineup) error {
	if len(lineup.Team1) == 0 {
		return invalid("team1", "must not be empty")
	}
	if len(lineup.Team2) == 0 {
		return invalid("team2", "must not be empty")
	}
	if lineup.Team1Captain == "" {
		return invalid("team1Captain", "must not be empty")
	}
	if lineup.Team2Captain == "" {
		return invalid("team2Captain", "must not be empty")
	}

	m.mu.RLock()
	known := make(map[string]bool, len(m.players))
	for _, p := range m.players {
		known[p.ID] = true
	}
	m.mu.RUnlock()

	onTeam := make(map[string]string, len(lineup.Team1)+len(lineup.Team2))
	for _, side := range []struct {
		field string
		ids   []string
	}{{"team1", lineup.Team1}, {"team2", lineup.Team2}} {
		for _, id := range side.ids {
			if prev, ok := onTeam[id]; ok {
				if prev == side.field {
					return invalid(side.field, fmt.Sprintf("player %s is listed twice", id))
				}
				return invalid("teams", fmt.Sprintf("player %s is on both teams", id))
			}
			if !known[id] {
				return invalid(side.field, fmt.Sprintf("unknown player %s", id))
			}
			onTeam[id] = side.field
		}
	}

	if err := validateCaptain("team1Captain", lineup.Team1Captain, lineup.Team1); err != nil {
		return err
	}
	return validateCaptain("team2Captain", lineup.Team2Captain, lineup.Team2)
}
