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
	_ "modernc.org/sqlite"
)

const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open("sqlite", ensureForeignKeysDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := migrateSQLite(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListPlayers(ctx context.Context) ([]model.Player, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM players`)
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
	model.SortPlayers(players)
	return players, nil
}

func (s *SQLiteStore) CreatePlayer(ctx context.Context, player model.Player) (model.Player, error) {
	if player.ID == "" {
		player.ID = uuid.NewString()
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO players (id, name) VALUES (?, ?)`, player.ID, player.Name); err != nil {
		return model.Player{}, fmt.Errorf("insert player: %w", err)
	}
	return player, nil
}

func (s *SQLiteStore) UpdatePlayer(ctx context.Context, player model.Player) error {
	res, err := s.db.ExecContext(ctx, `UPDATE players SET name = ? WHERE id = ?`, player.Name, player.ID)
	if err != nil {
		return fmt.Errorf("update player: %w", err)
	}
	return requireAffected(res, "player", player.ID)
}

func (s *SQLiteStore) DeletePlayer(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	return requireAffected(res, "player", id)
}

func (s *SQLiteStore) ListSeasons(ctx context.Context) ([]model.Season, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, start_date, end_date, is_current FROM seasons`)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	defer rows.Close()

	seasons := []model.Season{}
	for rows.Next() {
		var season model.Season
		var startDate, endDate string
		var isCurrent int
		if err := rows.Scan(&season.ID, &season.Name, &startDate, &endDate, &isCurrent); err != nil {
			return nil, fmt.Errorf("scan season: %w", err)
		}
		if season.StartDate, err = parseTimeString(startDate); err != nil {
			return nil, fmt.Errorf("scan season %s start: %w", season.ID, err)
		}
		if season.EndDate, err = parseTimeString(endDate); err != nil {
			return nil, fmt.Errorf("scan season %s end: %w", season.ID, err)
		}
		season.IsCurrent = isCurrent != 0
		seasons = append(seasons, season)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	model.SortSeasons(seasons)
	return seasons, nil
}

func (s *SQLiteStore) CreateSeason(ctx context.Context, season model.Season) (model.Season, error) {
	if season.ID == "" {
		season.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO seasons (id, name, start_date, end_date, is_current) VALUES (?,?,?,?,?)`,
		season.ID, season.Name, timeValueString(season.StartDate), timeValueString(season.EndDate), boolInt(season.IsCurrent),
	)
	if err != nil {
		return model.Season{}, fmt.Errorf("insert season: %w", err)
	}
	return season, nil
}

func (s *SQLiteStore) UpdateSeason(ctx context.Context, season model.Season) error {
	res, err := s.db.ExecContext(ctx, `UPDATE seasons SET name = ?, start_date = ?, end_date = ?, is_current = ? WHERE id = ?`,
		season.Name, timeValueString(season.StartDate), timeValueString(season.EndDate), boolInt(season.IsCurrent), season.ID,
	)
	if err != nil {
		return fmt.Errorf("update season: %w", err)
	}
	return requireAffected(res, "season", season.ID)
}

func (s *SQLiteStore) ClearCurrentSeasons(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE seasons SET is_current = 0 WHERE is_current = 1`); err != nil {
		return fmt.Errorf("clear current seasons: %w", err)
	}
	return nil
}

func (s *SQLiteStore) MarkCurrentSeason(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE seasons SET is_current = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark current season: %w", err)
	}
	return requireAffected(res, "season", id)
}

func (s *SQLiteStore) DeleteSeason(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM seasons WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete season: %w", err)
	}
	return requireAffected(res, "season", id)
}

func (s *SQLiteStore) ListGames(ctx context.Context) ([]model.Game, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, played_at, team1_score, team2_score, team1_captain, team2_captain, season_id FROM games`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	games := []model.Game{}
	for rows.Next() {
		var g model.Game
		var playedAt string
		var captain1, captain2 sql.NullString
		if err := rows.Scan(&g.ID, &playedAt, &g.Team1Score, &g.Team2Score, &captain1, &captain2, &g.SeasonID); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		if g.Date, err = parseTimeString(playedAt); err != nil {
			return nil, fmt.Errorf("scan game %s: %w", g.ID, err)
		}
		g.Team1Captain = captain1.String
		g.Team2Captain = captain2.String
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	model.SortGames(games)
	return games, nil
}

func (s *SQLiteStore) CreateGame(ctx context.Context, game model.Game) (model.Game, error) {
	if game.ID == "" {
		game.ID = uuid.NewString()
	}
	if game.Date.IsZero() {
		game.Date = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO games (id, played_at, team1_score, team2_score, team1_captain, team2_captain, season_id) VALUES (?,?,?,?,?,?,?)`,
		game.ID, timeValueString(game.Date), game.Team1Score, game.Team2Score, nullString(game.Team1Captain), nullString(game.Team2Captain), game.SeasonID,
	)
	if err != nil {
		return model.Game{}, fmt.Errorf("insert game: %w", err)
	}
	return game, nil
}

func (s *SQLiteStore) UpdateGame(ctx context.Context, game model.Game) error {
	res, err := s.db.ExecContext(ctx, `UPDATE games SET played_at = ?, team1_score = ?, team2_score = ?, team1_captain = ?, team2_captain = ?, season_id = ? WHERE id = ?`,
		timeValueString(game.Date), game.Team1Score, game.Team2Score, nullString(game.Team1Captain), nullString(game.Team2Captain), game.SeasonID, game.ID,
	)
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	return requireAffected(res, "game", game.ID)
}

func (s *SQLiteStore) ClearCaptain(ctx context.Context, playerID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear captain: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE games SET team1_captain = NULL WHERE team1_captain = ?`, playerID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear team1 captain: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE games SET team2_captain = NULL WHERE team2_captain = ?`, playerID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear team2 captain: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear captain: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteGame(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	return requireAffected(res, "game", id)
}

func (s *SQLiteStore) ListGamePlayers(ctx context.Context) ([]model.GamePlayer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT game_id, player_id, team FROM game_players`)
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
	sortGamePlayers(memberships)
	return memberships, nil
}

func (s *SQLiteStore) CreateGamePlayers(ctx context.Context, memberships []model.GamePlayer) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert game players: %w", err)
	}
	for _, gp := range memberships {
		if _, err := tx.ExecContext(ctx, `INSERT INTO game_players (game_id, player_id, team) VALUES (?,?,?)`, gp.GameID, gp.PlayerID, int(gp.Team)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert game player %s/%s: %w", gp.GameID, gp.PlayerID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit game players: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteGamePlayersByGame(ctx context.Context, gameID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM game_players WHERE game_id = ?`, gameID); err != nil {
		return fmt.Errorf("delete game players: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteGamePlayersByPlayer(ctx context.Context, playerID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM game_players WHERE player_id = ?`, playerID); err != nil {
		return fmt.Errorf("delete game players: %w", err)
	}
	return nil
}

func ensureForeignKeysDSN(path string) string {
	if strings.Contains(path, "foreign_keys") {
		return path
	}
	if strings.Contains(path, "?") {
		return path + "&_pragma=foreign_keys(1)"
	}
	return path + "?_pragma=foreign_keys(1)"
}

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s rows affected: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func timeValueString(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(sqliteTimeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", value, err)
	}
	return parsed, nil
}
