// internal/httpserver/server.go
//
// HTTP server wiring for the Congressle backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Puzzle endpoints: GET /api/puzzle (no-store), GET /api/roster/search.
//   - Session endpoints (optional auth): /api/session, /api/session/guess.
//   - Leaderboard: GET /api/leaderboard.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me (see auth.go).
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - A player is the signed-in user when a valid token is present, otherwise
//     an anonymous cookie identity.
//   - Finished sessions are recorded in daily_results and bump user stats.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/congressle/apps/go-server/internal/daily"
	"github.com/robalobadob/congressle/apps/go-server/internal/game"
	"github.com/robalobadob/congressle/apps/go-server/internal/session"
	"github.com/robalobadob/congressle/apps/go-server/internal/store"
)

// Options carries the knobs the server reads from configuration.
type Options struct {
	ClientOrigin string        // CORS origin; default http://localhost:5173
	JWTSecret    string        // HS256 signing key
	JWTTTL       time.Duration // token lifetime; default 14 days
	CookieName   string        // auth cookie; default congressle_token
	Production   bool          // Secure + SameSite=None cookies
	Clock        daily.Clock   // time source; default daily.SystemClock
}

func (o *Options) defaults() {
	if o.ClientOrigin == "" {
		o.ClientOrigin = "http://localhost:5173"
	}
	if o.JWTSecret == "" {
		o.JWTSecret = "dev_secret_change_me"
	}
	if o.JWTTTL <= 0 {
		o.JWTTTL = 14 * 24 * time.Hour
	}
	if o.CookieName == "" {
		o.CookieName = "congressle_token"
	}
	if o.Clock == nil {
		o.Clock = daily.SystemClock
	}
}

// Server bundles router, puzzle selector, session manager and DB handle.
type Server struct {
	r        *chi.Mux
	opts     Options
	db       *sql.DB
	selector *daily.Selector
	sessions *session.Manager
	results  *daily.Store
}

// New constructs a Server, installs middleware, and registers routes.
// Sessions persist through st; results and accounts live in db.
func New(sel *daily.Selector, st store.Store, db *sql.DB, opts Options) *Server {
	opts.defaults()
	s := &Server{
		r:        chi.NewRouter(),
		opts:     opts,
		db:       db,
		selector: sel,
		results:  daily.NewStore(db),
	}
	s.sessions = session.NewManager(st, sel,
		session.WithClock(opts.Clock),
		session.WithOnFinish(s.recordFinish),
	)

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)                   // zerolog access log
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"congressle-go","endpoints":["/health","GET /api/puzzle","GET /api/session","POST /api/session/guess","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/roster", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(s.selector.Roster().Stats())
	})

	s.mountPuzzle(s.r)
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		s.mountSession(r)
		s.mountDaily(r)
	})
	s.mountAuthRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Sessions exposes the session manager.
func (s *Server) Sessions() *session.Manager { return s.sessions }

// Start serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// recordFinish stores a finished session's result and updates user stats.
// Failures are logged; they never affect the player's session.
func (s *Server) recordFinish(ctx context.Context, player string, sess game.Session) {
	if sess.Puzzle == nil {
		return
	}
	won := sess.State() == game.StateSolved
	elapsed := s.opts.Clock.Now().Sub(sess.StartedAt).Milliseconds()
	if elapsed < 0 || sess.StartedAt.IsZero() {
		elapsed = 0
	}
	res := daily.Result{
		PlayerID:  player,
		Period:    sess.Period,
		MemberID:  sess.Puzzle.SourceID,
		Guesses:   len(sess.Guesses),
		Solved:    won,
		ElapsedMs: elapsed,
	}
	played, err := s.results.AlreadyPlayed(ctx, player, sess.Period)
	if err != nil {
		log.Warn().Err(err).Str("player", player).Msg("check daily result")
	}
	if err := s.results.InsertResult(ctx, res); err != nil {
		log.Warn().Err(err).Str("player", player).Msg("insert daily result")
		return
	}
	if played {
		return
	}
	if userID, ok := userFromPlayer(player); ok {
		if err := s.bumpStats(ctx, userID, won); err != nil {
			log.Warn().Err(err).Str("user", userID).Msg("bump stats")
		}
	}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.opts.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger writes one debug line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Str("requestId", chimw.GetReqID(r.Context())).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// ------------------------------- helpers -----------------------------------

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the {"error": code} body used across the API.
func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
