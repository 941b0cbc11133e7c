package store

import (
	"context"
	"errors"

	"volleyball-league/internal/model"
)

const (
	TablePlayers     = "players"
	TableSeasons     = "seasons"
	TableGames       = "games"
	TableGamePlayers = "game_players"
)

// ErrNotFound is returned by updates and deletes that matched no row.
var ErrNotFound = errors.New("not found")

// Store is the tabular backend the league manager persists through. Every
// call may fail; implementations never report success for a write that did
// not happen.
type Store interface {
	ListPlayers(ctx context.Context) ([]model.Player, error)
	CreatePlayer(ctx context.Context, player model.Player) (model.Player, error)
	UpdatePlayer(ctx context.Context, player model.Player) error
	DeletePlayer(ctx context.Context, id string) error

	ListSeasons(ctx context.Context) ([]model.Season, error)
	CreateSeason(ctx context.Context, season model.Season) (model.Season, error)
	UpdateSeason(ctx context.Context, season model.Season) error
	ClearCurrentSeasons(ctx context.Context) error
	MarkCurrentSeason(ctx context.Context, id string) error
	DeleteSeason(ctx context.Context, id string) error

	ListGames(ctx context.Context) ([]model.Game, error)
	CreateGame(ctx context.Context, game model.Game) (model.Game, error)
	UpdateGame(ctx context.Context, game model.Game) error
	ClearCaptain(ctx context.Context, playerID string) error
	DeleteGame(ctx context.Context, id string) error

	ListGamePlayers(ctx context.Context) ([]model.GamePlayer, error)
	CreateGamePlayers(ctx context.Context, rows []model.GamePlayer) error
	DeleteGamePlayersByGame(ctx context.Context, gameID string) error
	DeleteGamePlayersByPlayer(ctx context.Context, playerID string) error
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
