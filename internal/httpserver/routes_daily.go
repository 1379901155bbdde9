// internal/httpserver/routes_daily.go
//
// Results for the daily puzzle:
//   - GET /api/leaderboard → top 20 finished games for a period (default current)
//
// Rows are written by the session finish hook (Server.recordFinish); each
// player has at most one row per period.

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/congressle/apps/go-server/internal/daily"
)

// mountDaily registers the results routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Get("/api/leaderboard", s.handleLeaderboard)
}

// lbRes is returned by /api/leaderboard.
type lbRes struct {
	Period string        `json:"period"`
	Played bool          `json:"played"` // whether the caller has a row
	Top    []daily.LBRow `json:"top"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = s.sessions.Period()
	}
	rows, err := s.results.Leaderboard(r.Context(), period, 20)
	if err != nil {
		log.Error().Err(err).Str("period", period).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	played, err := s.results.AlreadyPlayed(r.Context(), s.playerID(w, r), period)
	if err != nil {
		log.Warn().Err(err).Msg("already played")
	}
	writeJSON(w, http.StatusOK, lbRes{Period: period, Played: played, Top: rows})
}
