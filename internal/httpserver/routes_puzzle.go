// internal/httpserver/routes_puzzle.go
//
// Puzzle endpoints:
//   - GET /api/puzzle         → the current period's puzzle (never cached)
//   - GET /api/roster/search  → name suggestions for the guess input
//
// The puzzle is recomputed from the clock on every request, so a poll right
// after a period boundary already sees the new member. It includes the
// answer; clients are trusted to keep it hidden until the game ends, so the
// redaction in the session view is not a secrecy boundary.

package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/congressle/apps/go-server/internal/game"
	"github.com/robalobadob/congressle/apps/go-server/internal/roster"
)

func (s *Server) mountPuzzle(r chi.Router) {
	r.Get("/api/puzzle", s.handlePuzzle)
	r.Get("/api/roster/search", s.handleSearch)
}

// noStore disables every layer of HTTP caching.
func noStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}

// puzzleRes wraps the puzzle with its period key.
type puzzleRes struct {
	Period string `json:"period"`
	game.Puzzle
}

func (s *Server) handlePuzzle(w http.ResponseWriter, r *http.Request) {
	noStore(w)
	now := s.opts.Clock.Now()
	p, ok := s.selector.PuzzleAt(now)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no_puzzle")
		return
	}
	period := s.selector.Key(now)
	log.Debug().Str("period", period).Msg("puzzle served")
	writeJSON(w, http.StatusOK, puzzleRes{Period: period, Puzzle: p})
}

// suggestion is the public part of a roster member used for autocomplete.
type suggestion struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	State string       `json:"state"`
	Party roster.Party `json:"party"`
	Label string       `json:"partyName"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit > 25 {
		limit = 25
	}
	matches := s.selector.Roster().Search(r.URL.Query().Get("q"), limit)
	out := make([]suggestion, 0, len(matches))
	for _, m := range matches {
		out = append(out, suggestion{ID: m.ID, Name: m.Name, State: m.State, Party: m.Party, Label: m.Party.Name()})
	}
	writeJSON(w, http.StatusOK, out)
}
