package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"volleyball-league/internal/model"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := migratePostgres(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) ListPlayers(ctx context.Context) ([]model.Player, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM players ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	players := []model.Player{}
	for rows.Next() {
		var p model.Player
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return players, nil
}

func (s *PostgresStore) CreatePlayer(ctx context.Context, player model.Player) (model.Player, error) {
	if player.ID == "" {
		player.ID = uuid.NewString()
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO players (id, name) VALUES ($1, $2)`, player.ID, player.Name); err != nil {
		return model.Player{}, fmt.Errorf("insert player: %w", err)
	}
	return player, nil
}

func (s *PostgresStore) UpdatePlayer(ctx context.Context, player model.Player) error {
	res, err := s.db.ExecContext(ctx, `UPDATE players SET name = $1 WHERE id = $2`, player.Name, player.ID)
	if err != nil {
		return fmt.Errorf("update player: %w", err)
	}
	return requireAffected(res, "player", player.ID)
}

func (s *PostgresStore) DeletePlayer(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	return requireAffected(res, "player", id)
}

func (s *PostgresStore) ListSeasons(ctx context.Context) ([]model.Season, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, start_date, end_date, is_current FROM seasons ORDER BY start_date, id`)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	defer rows.Close()

	seasons := []model.Season{}
	for rows.Next() {
		var season model.Season
		if err := rows.Scan(&season.ID, &season.Name, &season.StartDate, &season.EndDate, &season.IsCurrent); err != nil {
			return nil, fmt.Errorf("scan season: %w", err)
		}
		seasons = append(seasons, season)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	return seasons, nil
}

func (s *PostgresStore) CreateSeason(ctx context.Context, season model.Season) (model.Season, error) {
	if season.ID == "" {
		season.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO seasons (id, name, start_date, end_date, is_current) VALUES ($1,$2,$3,$4,$5)`,
		season.ID, season.Name, season.StartDate, season.EndDate, season.IsCurrent,
	)
	if err != nil {
		return model.Season{}, fmt.Errorf("insert season: %w", err)
	}
	return season, nil
}

func (s *PostgresStore) UpdateSeason(ctx context.Context, season model.Season) error {
	res, err := s.db.ExecContext(ctx, `UPDATE seasons SET name = $1, start_date = $2, end_date = $3, is_current = $4 WHERE id = $5`,
		season.Name, season.StartDate, season.EndDate, season.IsCurrent, season.ID,
	)
	if err != nil {
		return fmt.Errorf("update season: %w", err)
	}
	return requireAffected(res, "season", season.ID)
}

func (s *PostgresStore) ClearCurrentSeasons(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE seasons SET is_current = false WHERE is_current = true`); err != nil {
		return fmt.Errorf("clear current seasons: %w", err)
	}
	return nil
}

func (s *PostgresStore) MarkCurrentSeason(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE seasons SET is_current = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark current season: %w", err)
	}
	return requireAffected(res, "season", id)
}

func (s *PostgresStore) DeleteSeason(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM seasons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete season: %w", err)
	}
	return requireAffected(res, "season", id)
}

func (s *PostgresStore) ListGames(ctx context.Context) ([]model.Game, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, played_at, team1_score, team2_score, team1_captain, team2_captain, season_id FROM games ORDER BY played_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	games := []model.Game{}
	for rows.Next() {
		var g model.Game
		var captain1, captain2 sql.NullString
		if err := rows.Scan(&g.ID, &g.Date, &g.Team1Score, &g.Team2Score, &captain1, &captain2, &g.SeasonID); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		g.Team1Captain = captain1.String
		g.Team2Captain = captain2.String
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

func (s *PostgresStore) CreateGame(ctx context.Context, game model.Game) (model.Game, error) {
	if game.ID == "" {
		game.ID = uuid.NewString()
	}
	if game.Date.IsZero() {
		game.Date = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO games (id, played_at, team1_score, team2_score, team1_captain, team2_captain, season_id) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		game.ID, game.Date, game.Team1Score, game.Team2Score, nullString(game.Team1Captain), nullString(game.Team2Captain), game.SeasonID,
	)
	if err != nil {
		return model.Game{}, fmt.Errorf("insert game: %w", err)
	}
	return game, nil
}

func (s *PostgresStore) UpdateGame(ctx context.Context, game model.Game) error {
	res, err := s.db.ExecContext(ctx, `UPDATE games SET played_at = $1, team1_score = $2, team2_score = $3, team1_captain = $4, team2_captain = $5, season_id = $6 WHERE id = $7`,
		game.Date, game.Team1Score, game.Team2Score, nullString(game.Team1Captain), nullString(game.Team2Captain), game.SeasonID, game.ID,
	)
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	return requireAffected(res, "game", game.ID)
}

func (s *PostgresStore) ClearCaptain(ctx context.Context, playerID string) error {
	_, err := s.db.ExecContext(ctx, `
UPDATE games SET
  team1_captain = CASE WHEN team1_captain = $1 THEN NULL ELSE team1_captain END,
  team2_captain = CASE WHEN team2_captain = $1 THEN NULL ELSE team2_captain END
WHERE team1_captain = $1 OR team2_captain = $1`, playerID)
	if err != nil {
		return fmt.Errorf("clear captain: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteGame(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	return requireAffected(res, "game", id)
}

func (s *PostgresStore) ListGamePlayers(ctx context.Context) ([]model.GamePlayer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT game_id, player_id, team FROM game_players ORDER BY game_id, team, player_id`)
	if err != nil {
		return nil, fmt.Errorf("list game players: %w", err)
	}
	defer rows.Close()

	memberships := []model.GamePlayer{}
	for rows.Next() {
		var gp model.GamePlayer
		var team int
		if err := rows.Scan(&gp.GameID, &gp.PlayerID, &team); err != nil {
			return nil, fmt.Errorf("scan game player: %w", err)
		}
		gp.Team = model.Team(team)
		memberships = append(memberships, gp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list game players: %w", err)
	}
	return memberships, nil
}

func (s *PostgresStore) CreateGamePlayers(ctx context.Context, memberships []model.GamePlayer) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert game players: %w", err)
	}
	for _, gp := range memberships {
		if _, err := tx.ExecContext(ctx, `INSERT INTO game_players (game_id, player_id, team) VALUES ($1,$2,$3)`, gp.GameID, gp.PlayerID, int(gp.Team)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert game player %s/%s: %w", gp.GameID, gp.PlayerID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit game players: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteGamePlayersByGame(ctx context.Context, gameID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM game_players WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("delete game players: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteGamePlayersByPlayer(ctx context.Context, playerID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM game_players WHERE player_id = $1`, playerID); err != nil {
		return fmt.Errorf("delete game players: %w", err)
	}
	return nil
}
