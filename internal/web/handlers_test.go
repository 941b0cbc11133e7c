package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"volleyball-league/internal/balance"
	"volleyball-league/internal/league"
	"volleyball-league/internal/model"
	"volleyball-league/internal/stats"
	"volleyball-league/internal/store"
)

// failingStore fails the calls named in fail.
type failingStore struct {
	store.Store
	fail map[string]bool
}

var errUnavailable = errors.New("backend unavailable")

func (f *failingStore) CreatePlayer(ctx context.Context, p model.Player) (model.Player, error) {
	if f.fail["CreatePlayer"] {
		return model.Player{}, errUnavailable
	}
	return f.Store.CreatePlayer(ctx, p)
}

func (f *failingStore) CreateGamePlayers(ctx context.Context, rows []model.GamePlayer) error {
	if f.fail["CreateGamePlayers"] {
		return errUnavailable
	}
	return f.Store.CreateGamePlayers(ctx, rows)
}

type testServer struct {
	handler http.Handler
	league  *league.Manager
	store   *failingStore
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	st := &failingStore{Store: store.NewMemoryStore(), fail: map[string]bool{}}
	manager := league.New(st)
	if err := manager.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return &testServer{
		handler: NewServer(manager, opts).Routes(),
		league:  manager,
		store:   st,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func (ts *testServer) addPlayer(t *testing.T, name string) model.Player {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/players", map[string]string{"name": name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create player: status %d body %s", rec.Code, rec.Body.String())
	}
	return decode[model.Player](t, rec)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, Options{})
	if rec := ts.do(t, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestMetricsRoute(t *testing.T) {
	ts := newTestServer(t, Options{})
	if rec := ts.do(t, http.MethodGet, "/metrics", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without metrics handler, got %d", rec.Code)
	}

	ts = newTestServer(t, Options{Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})})
	if rec := ts.do(t, http.MethodGet, "/metrics", nil); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("expected metrics handler, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestPlayerLifecycle(t *testing.T) {
	ts := newTestServer(t, Options{})
	alice := ts.addPlayer(t, "Alice")

	rec := ts.do(t, http.MethodGet, "/api/players/"+alice.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("show player: %d", rec.Code)
	}
	detail := decode[PlayerDetailView](t, rec)
	if detail.Player.Name != "Alice" || detail.AllTime != (stats.PlayerStats{}) || detail.CurrentSeason == nil {
		t.Fatalf("unexpected detail %+v", detail)
	}

	rec = ts.do(t, http.MethodPut, "/api/players/"+alice.ID, map[string]string{"name": "Alicia"})
	if rec.Code != http.StatusOK || decode[model.Player](t, rec).Name != "Alicia" {
		t.Fatalf("update player: %d %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(t, http.MethodGet, "/api/players", nil)
	players := decode[[]PlayerView](t, rec)
	if len(players) != 1 || players[0].Name != "Alicia" {
		t.Fatalf("unexpected players %+v", players)
	}

	if rec := ts.do(t, http.MethodDelete, "/api/players/"+alice.ID, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete player: %d", rec.Code)
	}
	if rec := ts.do(t, http.MethodGet, "/api/players/"+alice.ID, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	ts := newTestServer(t, Options{})

	rec := ts.do(t, http.MethodPost, "/api/players", map[string]string{"name": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decode[errorResponse](t, rec)
	if body.Error == "" || body.RequestID == "" {
		t.Fatalf("expected error and request id, got %+v", body)
	}

	if rec := ts.do(t, http.MethodDelete, "/api/players/ghost", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	if rec := ts.do(t, http.MethodPost, "/api/players", map[string]string{"nickname": "x"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}

	ts.store.fail["CreatePlayer"] = true
	if rec := ts.do(t, http.MethodPost, "/api/players", map[string]string{"name": "Bob"}); rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestGames(t *testing.T) {
	ts := newTestServer(t, Options{})
	a := ts.addPlayer(t, "Alice")
	b := ts.addPlayer(t, "Bob")
	c := ts.addPlayer(t, "Cara")

	rec := ts.do(t, http.MethodPost, "/api/games", map[string]any{
		"team1": []string{a.ID, b.ID}, "team2": []string{b.ID, c.ID},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for overlapping rosters, got %d", rec.Code)
	}

	rec = ts.do(t, http.MethodPost, "/api/games", map[string]any{
		"team1Score": 25, "team2Score": 21, "team1Captain": a.ID, "team2Captain": c.ID,
		"team1": []string{a.ID, b.ID}, "team2": []string{c.ID},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create game: %d %s", rec.Code, rec.Body.String())
	}
	game := decode[model.Game](t, rec)

	rec = ts.do(t, http.MethodGet, "/api/games/"+game.ID, nil)
	roster := decode[league.Roster](t, rec)
	if len(roster.Team1) != 2 || len(roster.Team2) != 1 || roster.Team2[0].ID != c.ID {
		t.Fatalf("unexpected roster %+v", roster)
	}

	for _, path := range []string{"/api/games", "/api/games?season=all", "/api/games?season=" + game.SeasonID} {
		games := decode[[]model.Game](t, ts.do(t, http.MethodGet, path, nil))
		if len(games) != 1 || games[0].ID != game.ID {
			t.Fatalf("%s: unexpected games %+v", path, games)
		}
	}
	if rec := ts.do(t, http.MethodGet, "/api/games?season=ghost", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown season, got %d", rec.Code)
	}

	rec = ts.do(t, http.MethodPut, "/api/games/"+game.ID, map[string]any{"team1Score": 10, "team2Score": 25})
	if rec.Code != http.StatusOK || decode[model.Game](t, rec).Team2Score != 25 {
		t.Fatalf("update game: %d %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(t, http.MethodPut, "/api/games/"+game.ID+"/roster", map[string]any{
		"team1": []string{c.ID}, "team2": []string{a.ID, b.ID}, "team1Captain": c.ID, "team2Captain": b.ID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update roster: %d %s", rec.Code, rec.Body.String())
	}
	if s := ts.league.PlayerStats(c.ID, ""); s.Losses != 1 {
		t.Fatalf("expected roster change to move the loss, got %+v", s)
	}

	board := decode[[]stats.Standing](t, ts.do(t, http.MethodGet, "/api/leaderboard", nil))
	if len(board) != 3 || board[0].WinRate != 100 {
		t.Fatalf("unexpected leaderboard %+v", board)
	}

	if rec := ts.do(t, http.MethodDelete, "/api/games/"+game.ID, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete game: %d", rec.Code)
	}
}

func TestGameCreateInconsistent(t *testing.T) {
	ts := newTestServer(t, Options{})
	a := ts.addPlayer(t, "Alice")
	b := ts.addPlayer(t, "Bob")
	ts.store.fail["CreateGamePlayers"] = true

	rec := ts.do(t, http.MethodPost, "/api/games", map[string]any{
		"team1": []string{a.ID}, "team2": []string{b.ID}, "team1Captain": a.ID, "team2Captain": b.ID,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	body := decode[errorResponse](t, rec)
	if body.Step != "insert memberships" || len(body.Completed) != 1 {
		t.Fatalf("expected step details, got %+v", body)
	}
	created, ok := body.Created.(map[string]any)
	if !ok {
		t.Fatalf("expected the created game in the body, got %+v", body.Created)
	}
	games := ts.league.Games()
	if len(games) != 1 || created["id"] != games[0].ID {
		t.Fatalf("created game %v does not match cache %+v", created, games)
	}

	ts.store.fail["CreateGamePlayers"] = false
	rec = ts.do(t, http.MethodPost, "/api/games", map[string]any{
		"team1": []string{a.ID}, "team2": []string{b.ID},
	})
	if rec.Code != http.StatusBadRequest || decode[errorResponse](t, rec).Created != nil {
		t.Fatalf("expected 400 without a created game, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestSeasons(t *testing.T) {
	ts := newTestServer(t, Options{})
	first, _ := ts.league.CurrentSeason()

	rec := ts.do(t, http.MethodPost, "/api/seasons", map[string]string{
		"name": "Winter League", "startDate": "2026-11-01", "endDate": "2026-12-31",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create season: %d %s", rec.Code, rec.Body.String())
	}
	season := decode[model.Season](t, rec)
	if !season.IsCurrent || season.EndDate.Day() != 31 || season.EndDate.Hour() != 23 {
		t.Fatalf("unexpected season %+v", season)
	}

	rec = ts.do(t, http.MethodPost, "/api/seasons", map[string]string{
		"name": "Backwards", "startDate": "2026-12-01", "endDate": "2026-11-01",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	summaries := decode[[]stats.SeasonSummary](t, ts.do(t, http.MethodGet, "/api/seasons", nil))
	if len(summaries) != 2 {
		t.Fatalf("expected 2 seasons, got %d", len(summaries))
	}

	rec = ts.do(t, http.MethodPost, "/api/seasons/"+first.ID+"/current", nil)
	if rec.Code != http.StatusOK || !decode[model.Season](t, rec).IsCurrent {
		t.Fatalf("set current: %d %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(t, http.MethodGet, "/api/seasons/"+season.ID, nil)
	detail := decode[SeasonDetailView](t, rec)
	if detail.Season.ID != season.ID || detail.Season.IsCurrent {
		t.Fatalf("unexpected detail %+v", detail)
	}

	rec = ts.do(t, http.MethodPut, "/api/seasons/"+season.ID, map[string]string{
		"name": "Winter", "startDate": "2026-11-01T00:00:00Z", "endDate": "2026-12-31T23:00:00Z",
	})
	if rec.Code != http.StatusOK || decode[model.Season](t, rec).Name != "Winter" {
		t.Fatalf("update season: %d %s", rec.Code, rec.Body.String())
	}

	if rec := ts.do(t, http.MethodDelete, "/api/seasons/"+first.ID, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete season: %d", rec.Code)
	}
	if current, ok := ts.league.CurrentSeason(); !ok || current.ID != season.ID {
		t.Fatalf("expected remaining season to be current, got %+v", current)
	}
}

func TestTeamsBalance(t *testing.T) {
	ts := newTestServer(t, Options{})
	var ids []string
	for _, name := range []string{"Alice", "Bob", "Cara", "Dev"} {
		ids = append(ids, ts.addPlayer(t, name).ID)
	}

	rec := ts.do(t, http.MethodPost, "/api/teams/balance", map[string]any{"players": ids})
	if rec.Code != http.StatusOK {
		t.Fatalf("balance: %d %s", rec.Code, rec.Body.String())
	}
	teams := decode[balance.Teams](t, rec)
	if len(teams.Team1) != 2 || len(teams.Team2) != 2 || teams.Team1Captain != ids[0] {
		t.Fatalf("unexpected teams %+v", teams)
	}

	rec = ts.do(t, http.MethodPost, "/api/teams/balance", map[string]any{"players": ids[:1]})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a single player, got %d", rec.Code)
	}
}

func TestState(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.addPlayer(t, "Alice")

	snap := decode[league.Snapshot](t, ts.do(t, http.MethodGet, "/api/state", nil))
	if len(snap.Players) != 1 || snap.CurrentSeason == nil || len(snap.Seasons) != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestDevReload(t *testing.T) {
	ts := newTestServer(t, Options{})
	if rec := ts.do(t, http.MethodPost, "/dev/reload", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 outside dev, got %d", rec.Code)
	}

	ts = newTestServer(t, Options{Dev: true})
	if _, err := ts.store.Store.CreatePlayer(context.Background(), model.Player{Name: "Direct"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	rec := ts.do(t, http.MethodPost, "/dev/reload", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reload: %d", rec.Code)
	}
	if snap := decode[league.Snapshot](t, rec); len(snap.Players) != 1 {
		t.Fatalf("expected reloaded player, got %+v", snap.Players)
	}
}
