// internal/httpserver/routes_session.go
//
// Session endpoints (optional auth; guests play under an anonymous cookie):
//   - GET  /api/session        → current session, started on first visit
//   - POST /api/session/guess  → evaluate a guess ({"memberId"} or {"name"})
//
// Players cannot reset their own session; sessions only start over when the
// period rolls over.
//
// While a session is active the response hides the answer and the actual
// state column of each guess. This is presentation only: /api/puzzle serves
// the answer to anyone who asks.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/congressle/apps/go-server/internal/game"
	"github.com/robalobadob/congressle/apps/go-server/internal/session"
)

func (s *Server) mountSession(r chi.Router) {
	r.Route("/api/session", func(r chi.Router) {
		r.Get("/", s.handleSession)
		r.Post("/guess", s.handleSessionGuess)
	})
}

// sessionView is the client-facing session.
type sessionView struct {
	ID        string       `json:"id,omitempty"`
	Period    string       `json:"period"`
	State     game.State   `json:"state"`
	Puzzle    *game.Puzzle `json:"puzzle,omitempty"`
	Guesses   []game.Guess `json:"guesses"`
	Remaining int          `json:"remaining"`
	Solved    bool         `json:"solved"`
}

// viewOf projects sess for the wire, redacting while it is still in play.
func viewOf(sess game.Session, period string) sessionView {
	v := sessionView{
		ID:        sess.ID,
		Period:    period,
		State:     sess.State(),
		Guesses:   make([]game.Guess, len(sess.Guesses)),
		Remaining: sess.Remaining(),
		Solved:    sess.Solved,
	}
	copy(v.Guesses, sess.Guesses)
	if sess.Puzzle != nil {
		p := *sess.Puzzle
		if !sess.Finished() {
			p = p.Redacted()
		}
		v.Puzzle = &p
	}
	if !sess.Finished() {
		for i := range v.Guesses {
			v.Guesses[i].ActualState = ""
		}
	}
	return v
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	noStore(w)
	player := s.playerID(w, r)
	sess, err := s.sessions.Load(r.Context(), player)
	if err != nil {
		s.sessionError(w, player, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess, s.sessions.Period()))
}

type sessionGuessReq struct {
	MemberID string `json:"memberId"`
	Name     string `json:"name"`
}

type sessionGuessRes struct {
	Session sessionView `json:"session"`
	Guess   game.Guess  `json:"guess"`
}

func (s *Server) handleSessionGuess(w http.ResponseWriter, r *http.Request) {
	noStore(w)
	var req sessionGuessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	id := strings.TrimSpace(req.MemberID)
	if id == "" {
		name := strings.TrimSpace(req.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "missing_member")
			return
		}
		m, ok := s.selector.Roster().ByName(name)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown_member")
			return
		}
		id = m.ID
	}

	player := s.playerID(w, r)
	sess, g, err := s.sessions.Guess(r.Context(), player, id)
	if err != nil {
		s.sessionError(w, player, err)
		return
	}
	view := viewOf(sess, sess.Period)
	if !sess.Finished() {
		g.ActualState = ""
	}
	writeJSON(w, http.StatusOK, sessionGuessRes{Session: view, Guess: g})
}

// sessionError maps session failures onto statuses.
func (s *Server) sessionError(w http.ResponseWriter, player string, err error) {
	switch {
	case errors.Is(err, session.ErrUnknownMember):
		writeError(w, http.StatusNotFound, "unknown_member")
	case errors.Is(err, game.ErrNotActive):
		writeError(w, http.StatusConflict, "not_active")
	case errors.Is(err, session.ErrNoPuzzle):
		writeError(w, http.StatusServiceUnavailable, "no_puzzle")
	default:
		log.Error().Err(err).Str("player", player).Msg("session")
		writeError(w, http.StatusInternalServerError, "save_failed")
	}
}
