package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalobadob/congressle/apps/go-server/internal/daily"
	"github.com/robalobadob/congressle/apps/go-server/internal/game"
	"github.com/robalobadob/congressle/apps/go-server/internal/roster"
	"github.com/robalobadob/congressle/apps/go-server/internal/store"
)

var testNow = time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)

func testMembers() []roster.Member {
	return []roster.Member{
		{ID: "A", Name: "Alpha Adams", State: "TX", Party: roster.PartyRepublican, Chamber: roster.ChamberSenate, Lat: 31, Lon: -99},
		{ID: "B", Name: "Bravo Brown", State: "TX", Party: roster.PartyDemocrat, Chamber: roster.ChamberHouse, Lat: 30, Lon: -97},
		{ID: "C", Name: "Charlie Chen", State: "OH", Party: roster.PartyRepublican, Chamber: roster.ChamberHouse, Lat: 41.5, Lon: -83.6},
		{ID: "D", Name: "Delta Diaz", State: "GA", Party: roster.PartyDemocrat, Chamber: roster.ChamberHouse, Lat: 33.7, Lon: -84.4},
		{ID: "E", Name: "Echo Evans", State: "CA", Party: roster.PartyDemocrat, Chamber: roster.ChamberSenate, Lat: 36.8, Lon: -119.4},
		{ID: "F", Name: "Foxtrot Fox", State: "MT", Party: roster.PartyRepublican, Chamber: roster.ChamberHouse, Lat: 47, Lon: -109.6},
	}
}

type harness struct {
	t      *testing.T
	srv    *Server
	ts     *httptest.Server
	client *http.Client
	sel    *daily.Selector
}

func newHarness(t *testing.T, members []roster.Member) *harness {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sel := daily.NewSelector(roster.New(members), daily.DefaultPolicy("test"))
	srv := New(sel, store.NewSQLiteStore(db), db, Options{
		JWTSecret: "test_secret",
		Clock:     daily.ClockFunc(func() time.Time { return testNow }),
	})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	jar, _ := cookiejar.New(nil)
	return &harness{t: t, srv: srv, ts: ts, client: &http.Client{Jar: jar}, sel: sel}
}

// newClient returns a second client with its own cookies.
func (h *harness) newClient() *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{Jar: jar}
}

func (h *harness) do(c *http.Client, method, path string, body any, out any) *http.Response {
	h.t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		rd = bytes.NewReader(raw)
	}
	req, _ := http.NewRequest(method, h.ts.URL+path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := c.Do(req)
	if err != nil {
		h.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			h.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return res
}

func (h *harness) answer() roster.Member {
	m, _ := h.sel.SelectForInstant(testNow)
	return m
}

func (h *harness) wrongID() string {
	for _, m := range testMembers() {
		if m.ID != h.answer().ID {
			return m.ID
		}
	}
	return ""
}

func TestHealth(t *testing.T) {
	h := newHarness(t, testMembers())
	var body map[string]bool
	res := h.do(h.client, http.MethodGet, "/health", nil, &body)
	if res.StatusCode != http.StatusOK || !body["ok"] {
		t.Errorf("unexpected health: %d %v", res.StatusCode, body)
	}
}

func TestNotFoundIsJSON(t *testing.T) {
	h := newHarness(t, testMembers())
	var body map[string]string
	res := h.do(h.client, http.MethodGet, "/nope", nil, &body)
	if res.StatusCode != http.StatusNotFound || body["error"] != "not_found" {
		t.Errorf("unexpected 404: %d %v", res.StatusCode, body)
	}
}

func TestPuzzleIsNeverCached(t *testing.T) {
	h := newHarness(t, testMembers())
	var body puzzleRes
	res := h.do(h.client, http.MethodGet, "/api/puzzle", nil, &body)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	want := map[string]string{
		"Cache-Control": "no-cache, no-store, must-revalidate",
		"Pragma":        "no-cache",
		"Expires":       "0",
	}
	for k, v := range want {
		if got := res.Header.Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
	if body.Period != "2026-10-19" || body.Answer.Name != h.answer().Name {
		t.Errorf("unexpected puzzle: %+v", body)
	}
}

func TestPuzzleEmptyRoster(t *testing.T) {
	h := newHarness(t, nil)
	res := h.do(h.client, http.MethodGet, "/api/puzzle", nil, nil)
	if res.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", res.StatusCode)
	}
}

func TestRosterSearch(t *testing.T) {
	h := newHarness(t, testMembers())
	var out []suggestion
	h.do(h.client, http.MethodGet, "/api/roster/search?q=chen", nil, &out)
	if len(out) != 1 || out[0].ID != "C" || out[0].Label != "Republican" {
		t.Errorf("unexpected suggestions: %+v", out)
	}
}

func TestSessionFlow(t *testing.T) {
	h := newHarness(t, testMembers())

	var view sessionView
	h.do(h.client, http.MethodGet, "/api/session", nil, &view)
	if view.State != game.StateActive || view.Remaining != game.AttemptCap {
		t.Fatalf("unexpected initial session: %+v", view)
	}
	if view.Puzzle == nil || view.Puzzle.Answer.Name != "" || view.Puzzle.SourceID != "" {
		t.Fatalf("answer must be hidden while active: %+v", view.Puzzle)
	}

	var res sessionGuessRes
	r := h.do(h.client, http.MethodPost, "/api/session/guess", map[string]string{"memberId": h.wrongID()}, &res)
	if r.StatusCode != http.StatusOK || res.Guess.Correct || len(res.Session.Guesses) != 1 {
		t.Fatalf("wrong guess: %d %+v", r.StatusCode, res)
	}
	if res.Guess.ActualState != "" || res.Session.Guesses[0].ActualState != "" {
		t.Error("actual state leaked while active")
	}

	r = h.do(h.client, http.MethodPost, "/api/session/guess", map[string]string{"name": h.answer().Name}, &res)
	if r.StatusCode != http.StatusOK || !res.Guess.Correct || res.Session.State != game.StateSolved {
		t.Fatalf("correct guess: %d %+v", r.StatusCode, res)
	}
	if res.Session.Puzzle.Answer.Name != h.answer().Name {
		t.Error("answer must be revealed once solved")
	}

	r = h.do(h.client, http.MethodPost, "/api/session/guess", map[string]string{"memberId": h.wrongID()}, nil)
	if r.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 after solve, got %d", r.StatusCode)
	}

	var lb lbRes
	h.do(h.client, http.MethodGet, "/api/leaderboard", nil, &lb)
	if lb.Period != "2026-10-19" || !lb.Played || len(lb.Top) != 1 || !lb.Top[0].Solved || lb.Top[0].Guesses != 2 {
		t.Errorf("unexpected leaderboard: %+v", lb)
	}
}

func TestGuessErrors(t *testing.T) {
	h := newHarness(t, testMembers())
	tests := []struct {
		name string
		body any
		want int
	}{
		{"bad json", "{nope", http.StatusBadRequest},
		{"missing member", map[string]string{}, http.StatusBadRequest},
		{"unknown id", map[string]string{"memberId": "ZZ"}, http.StatusNotFound},
		{"unknown name", map[string]string{"name": "Nobody"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := h.do(h.client, http.MethodPost, "/api/session/guess", tt.body, nil)
			if res.StatusCode != tt.want {
				t.Errorf("got %d, want %d", res.StatusCode, tt.want)
			}
		})
	}
}

func TestExhaustedSessionCannotBeReplayed(t *testing.T) {
	h := newHarness(t, testMembers())
	for i := 0; i < game.AttemptCap; i++ {
		if res := h.do(h.client, http.MethodPost, "/api/session/guess", map[string]string{"memberId": h.wrongID()}, nil); res.StatusCode != http.StatusOK {
			t.Fatalf("guess %d: %d", i+1, res.StatusCode)
		}
	}

	if res := h.do(h.client, http.MethodPost, "/api/session/reset", nil, nil); res.StatusCode != http.StatusNotFound && res.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("reset must not be exposed, got %d", res.StatusCode)
	}

	var view sessionView
	h.do(h.client, http.MethodGet, "/api/session", nil, &view)
	if view.State != game.StateExhausted || view.Remaining != 0 {
		t.Errorf("unexpected view: %+v", view)
	}

	// Even a server-side reset keeps the period closed for this player.
	if _, err := h.srv.Sessions().Reset(context.Background(), "anon:"+h.anonID()); err != nil {
		t.Fatal(err)
	}
	if res := h.do(h.client, http.MethodPost, "/api/session/guess", map[string]string{"memberId": h.answer().ID}, nil); res.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 after reset in the same period, got %d", res.StatusCode)
	}
}

// anonID returns the anonymous cookie the default client holds.
func (h *harness) anonID() string {
	u, _ := url.Parse(h.ts.URL)
	for _, c := range h.client.Jar.Cookies(u) {
		if c.Name == anonCookieName {
			return c.Value
		}
	}
	h.t.Fatal("no anonymous cookie")
	return ""
}

func TestPlayersAreIsolated(t *testing.T) {
	h := newHarness(t, testMembers())
	h.do(h.client, http.MethodPost, "/api/session/guess", map[string]string{"memberId": h.wrongID()}, nil)

	var other sessionView
	h.do(h.newClient(), http.MethodGet, "/api/session", nil, &other)
	if len(other.Guesses) != 0 {
		t.Errorf("second player saw first player's guesses: %+v", other)
	}
}

func TestAuthFlowClaimsSessionAndCountsStats(t *testing.T) {
	h := newHarness(t, testMembers())

	if res := h.do(h.client, http.MethodGet, "/auth/me", nil, nil); res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 before signup, got %d", res.StatusCode)
	}

	var guest sessionGuessRes
	h.do(h.client, http.MethodPost, "/api/session/guess", map[string]string{"memberId": h.wrongID()}, &guest)

	creds := map[string]string{"username": "voter_1", "password": "hunter2hunter2"}
	if res := h.do(h.client, http.MethodPost, "/auth/signup", creds, nil); res.StatusCode != http.StatusOK {
		t.Fatalf("signup: %d", res.StatusCode)
	}
	if res := h.do(h.newClient(), http.MethodPost, "/auth/signup", creds, nil); res.StatusCode != http.StatusConflict {
		t.Errorf("duplicate signup: expected 409, got %d", res.StatusCode)
	}

	var me authUser
	h.do(h.client, http.MethodGet, "/auth/me", nil, &me)
	if me.Username != "voter_1" {
		t.Fatalf("unexpected /auth/me: %+v", me)
	}

	var view sessionView
	h.do(h.client, http.MethodGet, "/api/session", nil, &view)
	if view.ID != guest.Session.ID || len(view.Guesses) != 1 {
		t.Fatalf("guest session not claimed: %+v", view)
	}

	h.do(h.client, http.MethodPost, "/api/session/guess", map[string]string{"memberId": h.answer().ID}, nil)

	var stats map[string]any
	h.do(h.client, http.MethodGet, "/stats/me", nil, &stats)
	if stats["gamesPlayed"] != float64(1) || stats["wins"] != float64(1) || stats["streak"] != float64(1) {
		t.Errorf("unexpected stats: %v", stats)
	}

	h.do(h.client, http.MethodPost, "/auth/logout", nil, nil)
	if res := h.do(h.client, http.MethodGet, "/auth/me", nil, nil); res.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", res.StatusCode)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	h := newHarness(t, testMembers())
	h.do(h.client, http.MethodPost, "/auth/signup", map[string]string{"username": "voter_2", "password": "correcthorse"}, nil)

	res := h.do(h.newClient(), http.MethodPost, "/auth/login", map[string]string{"username": "voter_2", "password": "wrongwrong"}, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", res.StatusCode)
	}
	res = h.do(h.newClient(), http.MethodPost, "/auth/login", map[string]string{"username": "VOTER_2", "password": "correcthorse"}, nil)
	if res.StatusCode != http.StatusOK {
		t.Errorf("expected case-insensitive login, got %d", res.StatusCode)
	}
}

func TestViewOfRedaction(t *testing.T) {
	p := game.Project(testMembers()[0])
	s := game.Init("2026-10-19", p, testNow)
	s, _ = s.Guess(game.Guess{Guess: "x", ActualState: "TX"})

	v := viewOf(s, s.Period)
	if v.Puzzle.Answer.Name != "" || v.Guesses[0].ActualState != "" {
		t.Errorf("active view leaked answer: %+v", v)
	}
	if s.Guesses[0].ActualState != "TX" {
		t.Error("viewOf mutated the session")
	}
}
