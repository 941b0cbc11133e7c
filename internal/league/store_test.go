package league

import (
	"context"
	"sync"

	"volleyball-league/internal/model"
	"volleyball-league/internal/store"
)

// faultyStore wraps a MemoryStore, counting calls and failing the methods
// named in fail.
type faultyStore struct {
	store.Store

	mu    sync.Mutex
	calls map[string]int
	fail  map[string]error
}

func newFaultyStore() *faultyStore {
	return &faultyStore{
		Store: store.NewMemoryStore(),
		calls: make(map[string]int),
		fail:  make(map[string]error),
	}
}

func (f *faultyStore) hit(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	return f.fail[method]
}

func (f *faultyStore) failOn(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[method] = err
}

func (f *faultyStore) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *faultyStore) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *faultyStore) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = make(map[string]int)
	f.fail = make(map[string]error)
}

func (f *faultyStore) ListPlayers(ctx context.Context) ([]model.Player, error) {
	if err := f.hit("ListPlayers"); err != nil {
		return nil, err
	}
	return f.Store.ListPlayers(ctx)
}

func (f *faultyStore) CreatePlayer(ctx context.Context, p model.Player) (model.Player, error) {
	if err := f.hit("CreatePlayer"); err != nil {
		return model.Player{}, err
	}
	return f.Store.CreatePlayer(ctx, p)
}

func (f *faultyStore) UpdatePlayer(ctx context.Context, p model.Player) error {
	if err := f.hit("UpdatePlayer"); err != nil {
		return err
	}
	return f.Store.UpdatePlayer(ctx, p)
}

func (f *faultyStore) DeletePlayer(ctx context.Context, id string) error {
	if err := f.hit("DeletePlayer"); err != nil {
		return err
	}
	return f.Store.DeletePlayer(ctx, id)
}

func (f *faultyStore) ListSeasons(ctx context.Context) ([]model.Season, error) {
	if err := f.hit("ListSeasons"); err != nil {
		return nil, err
	}
	return f.Store.ListSeasons(ctx)
}

func (f *faultyStore) CreateSeason(ctx context.Context, s model.Season) (model.Season, error) {
	if err := f.hit("CreateSeason"); err != nil {
		return model.Season{}, err
	}
	return f.Store.CreateSeason(ctx, s)
}

func (f *faultyStore) UpdateSeason(ctx context.Context, s model.Season) error {
	if err := f.hit("UpdateSeason"); err != nil {
		return err
	}
	return f.Store.UpdateSeason(ctx, s)
}

func (f *faultyStore) ClearCurrentSeasons(ctx context.Context) error {
	if err := f.hit("ClearCurrentSeasons"); err != nil {
		return err
	}
	return f.Store.ClearCurrentSeasons(ctx)
}

func (f *faultyStore) MarkCurrentSeason(ctx context.Context, id string) error {
	if err := f.hit("MarkCurrentSeason"); err != nil {
		return err
	}
	return f.Store.MarkCurrentSeason(ctx, id)
}

func (f *faultyStore) DeleteSeason(ctx context.Context, id string) error {
	if err := f.hit("DeleteSeason"); err != nil {
		return err
	}
	return f.Store.DeleteSeason(ctx, id)
}

func (f *faultyStore) ListGames(ctx context.Context) ([]model.Game, error) {
	if err := f.hit("ListGames"); err != nil {
		return nil, err
	}
	return f.Store.ListGames(ctx)
}

func (f *faultyStore) CreateGame(ctx context.Context, g model.Game) (model.Game, error) {
	if err := f.hit("CreateGame"); err != nil {
		return model.Game{}, err
	}
	return f.Store.CreateGame(ctx, g)
}

func (f *faultyStore) UpdateGame(ctx context.Context, g model.Game) error {
	if err := f.hit("UpdateGame"); err != nil {
		return err
	}
	return f.Store.UpdateGame(ctx, g)
}

func (f *faultyStore) ClearCaptain(ctx context.Context, playerID string) error {
	if err := f.hit("ClearCaptain"); err != nil {
		return err
	}
	return f.Store.ClearCaptain(ctx, playerID)
}

func (f *faultyStore) DeleteGame(ctx context.Context, id string) error {
	if err := f.hit("DeleteGame"); err != nil {
		return err
	}
	return f.Store.DeleteGame(ctx, id)
}

func (f *faultyStore) ListGamePlayers(ctx context.Context) ([]model.GamePlayer, error) {
	if err := f.hit("ListGamePlayers"); err != nil {
		return nil, err
	}
	return f.Store.ListGamePlayers(ctx)
}

func (f *faultyStore) CreateGamePlayers(ctx context.Context, rows []model.GamePlayer) error {
	if err := f.hit("CreateGamePlayers"); err != nil {
		return err
	}
	return f.Store.CreateGamePlayers(ctx, rows)
}

func (f *faultyStore) DeleteGamePlayersByGame(ctx context.Context, gameID string) error {
	if err := f.hit("DeleteGamePlayersByGame"); err != nil {
		return err
	}
	return f.Store.DeleteGamePlayersByGame(ctx, gameID)
}

func (f *faultyStore) DeleteGamePlayersByPlayer(ctx context.Context, playerID string) error {
	if err := f.hit("DeleteGamePlayersByPlayer"); err != nil {
		return err
	}
	return f.Store.DeleteGamePlayersByPlayer(ctx, playerID)
}
