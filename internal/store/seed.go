package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"volleyball-league/internal/model"

	"gopkg.in/yaml.v3"
)

type Seed struct {
	Players []string     `yaml:"players"`
	Seasons []SeedSeason `yaml:"seasons"`
	Games   []SeedGame   `yaml:"games"`
}

type SeedSeason struct {
	Name    string    `yaml:"name"`
	Start   time.Time `yaml:"start"`
	End     time.Time `yaml:"end"`
	Current bool      `yaml:"current"`
}

// SeedGame references players and seasons by name.
type SeedGame struct {
	Season       string    `yaml:"season"`
	Date         time.Time `yaml:"date"`
	Team1        []string  `yaml:"team1"`
	Team2        []string  `yaml:"team2"`
	Team1Score   int       `yaml:"team1Score"`
	Team2Score   int       `yaml:"team2Score"`
	Team1Captain string    `yaml:"team1Captain"`
	Team2Captain string    `yaml:"team2Captain"`
}

func LoadSeed(r io.Reader) (Seed, error) {
	var seed Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		if errors.Is(err, io.EOF) {
			return Seed{}, nil
		}
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	if err := seed.validate(); err != nil {
		return Seed{}, err
	}
	return seed, nil
}

func (s Seed) validate() error {
	players := make(map[string]bool, len(s.Players))
	for _, name := range s.Players {
		name = model.NormalizeName(name)
		if name == "" {
			return errors.New("seed: player name is empty")
		}
		if players[name] {
			return fmt.Errorf("seed: duplicate player %q", name)
		}
		players[name] = true
	}
	seasons := make(map[string]bool, len(s.Seasons))
	current := 0
	for _, season := range s.Seasons {
		name := strings.TrimSpace(season.Name)
		if name == "" {
			return errors.New("seed: season name is empty")
		}
		if seasons[name] {
			return fmt.Errorf("seed: duplicate season %q", name)
		}
		if season.End.Before(season.Start) {
			return fmt.Errorf("seed: season %q ends before it starts", season.Name)
		}
		if season.Current {
			current++
		}
		seasons[name] = true
	}
	if current > 1 {
		return errors.New("seed: more than one current season")
	}
	for i, g := range s.Games {
		if !seasons[strings.TrimSpace(g.Season)] {
			return fmt.Errorf("seed: game %d references unknown season %q", i, g.Season)
		}
		if len(g.Team1) == 0 || len(g.Team2) == 0 {
			return fmt.Errorf("seed: game %d needs players on both teams", i)
		}
		if g.Team1Score < 0 || g.Team2Score < 0 {
			return fmt.Errorf("seed: game %d has a negative score", i)
		}
		onTeam := map[string]bool{}
		for _, name := range append(append([]string{}, g.Team1...), g.Team2...) {
			name = model.NormalizeName(name)
			if !players[name] {
				return fmt.Errorf("seed: game %d references unknown player %q", i, name)
			}
			if onTeam[name] {
				return fmt.Errorf("seed: game %d lists %q twice", i, name)
			}
			onTeam[name] = true
		}
		if err := seedCaptain(i, "team1Captain", g.Team1Captain, g.Team1); err != nil {
			return err
		}
		if err := seedCaptain(i, "team2Captain", g.Team2Captain, g.Team2); err != nil {
			return err
		}
	}
	return nil
}

// seedCaptain accepts an empty captain, which ApplySeed fills with the first
// player of the team.
func seedCaptain(game int, field, captain string, team []string) error {
	captain = model.NormalizeName(captain)
	if captain == "" {
		return nil
	}
	for _, name := range team {
		if model.NormalizeName(name) == captain {
			return nil
		}
	}
	return fmt.Errorf("seed: game %d %s %q is not on the team", game, field, captain)
}

// ApplySeed writes seed into st. Stores that already hold players or seasons
// are left untouched.
func ApplySeed(ctx context.Context, st Store, seed Seed) (bool, error) {
	existingPlayers, err := st.ListPlayers(ctx)
	if err != nil {
		return false, err
	}
	existingSeasons, err := st.ListSeasons(ctx)
	if err != nil {
		return false, err
	}
	if len(existingPlayers) > 0 || len(existingSeasons) > 0 {
		return false, nil
	}

	playerIDs := make(map[string]string, len(seed.Players))
	for _, name := range seed.Players {
		name = model.NormalizeName(name)
		p, err := st.CreatePlayer(ctx, model.Player{Name: name})
		if err != nil {
			return false, fmt.Errorf("seed player %q: %w", name, err)
		}
		playerIDs[name] = p.ID
	}

	seasonIDs := make(map[string]string, len(seed.Seasons))
	for _, ss := range seed.Seasons {
		season, err := st.CreateSeason(ctx, model.Season{
			Name:      strings.TrimSpace(ss.Name),
			StartDate: ss.Start,
			EndDate:   ss.End,
			IsCurrent: ss.Current,
		})
		if err != nil {
			return false, fmt.Errorf("seed season %q: %w", ss.Name, err)
		}
		seasonIDs[strings.TrimSpace(ss.Name)] = season.ID
	}

	for i, sg := range seed.Games {
		team1 := resolveNames(sg.Team1, playerIDs)
		team2 := resolveNames(sg.Team2, playerIDs)
		captain1 := playerIDs[model.NormalizeName(sg.Team1Captain)]
		if captain1 == "" {
			captain1 = team1[0]
		}
		captain2 := playerIDs[model.NormalizeName(sg.Team2Captain)]
		if captain2 == "" {
			captain2 = team2[0]
		}
		game, err := st.CreateGame(ctx, model.Game{
			Date:         sg.Date,
			Team1Score:   sg.Team1Score,
			Team2Score:   sg.Team2Score,
			Team1Captain: captain1,
			Team2Captain: captain2,
			SeasonID:     seasonIDs[strings.TrimSpace(sg.Season)],
		})
		if err != nil {
			return false, fmt.Errorf("seed game %d: %w", i, err)
		}
		rows := make([]model.GamePlayer, 0, len(team1)+len(team2))
		for _, id := range team1 {
			rows = append(rows, model.GamePlayer{GameID: game.ID, PlayerID: id, Team: model.Team1})
		}
		for _, id := range team2 {
			rows = append(rows, model.GamePlayer{GameID: game.ID, PlayerID: id, Team: model.Team2})
		}
		if err := st.CreateGamePlayers(ctx, rows); err != nil {
			return false, fmt.Errorf("seed game %d players: %w", i, err)
		}
	}
	return true, nil
}

func resolveNames(names []string, ids map[string]string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, ids[model.NormalizeName(name)])
	}
	return out
}
