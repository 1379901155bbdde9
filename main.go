package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/congressle/apps/go-server/internal/daily"
	"github.com/robalobadob/congressle/apps/go-server/internal/httpserver"
	"github.com/robalobadob/congressle/apps/go-server/internal/roster"
	"github.com/robalobadob/congressle/apps/go-server/internal/session"
	"github.com/robalobadob/congressle/apps/go-server/internal/store"
)

const releaseVersion = "0.1.0"

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &Config{}
	if err := newCmd(cfg).ExecuteContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("congressle exited")
	}
}

// serve opens the database and roster, then runs the HTTP server and the
// rollover watcher until ctx ends.
func serve(ctx context.Context, cfg *Config) error {
	db, err := store.Open(cfg.db)
	if err != nil {
		return err
	}
	defer db.Close()

	r, err := roster.Open(cfg.roster)
	if err != nil {
		return err
	}
	if r.Len() == 0 {
		log.Warn().Msg("roster is empty; puzzle endpoints will return 503")
	}
	sel := daily.NewSelector(r, cfg.policy())

	srv := httpserver.New(sel, store.NewSQLiteStore(db), db, cfg.serverOptions())

	w := session.NewWatcher(sel, daily.SystemClock, cfg.pollInterval)
	go w.Run(ctx, func(key string) {
		n, err := srv.Sessions().Rollover(ctx)
		if err != nil {
			log.Warn().Err(err).Str("period", key).Msg("rollover")
			return
		}
		log.Info().Str("period", key).Int("reset", n).Msg("puzzle rolled over")
	})

	log.Info().
		Str("addr", cfg.addr()).
		Str("period", w.Current()).
		Int("members", r.Len()).
		Msg("starting congressle server")
	return srv.Start(ctx, cfg.addr())
}
