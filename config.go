package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/robalobadob/congressle/apps/go-server/internal/daily"
	"github.com/robalobadob/congressle/apps/go-server/internal/httpserver"
)

type Config struct {
	bind         string
	port         int
	db           string
	roster       string
	salt         string
	period       time.Duration
	pollInterval time.Duration
	logLevel     string
	clientOrigin string
	jwtSecret    string
	jwtDays      int
	cookieName   string
	production   bool
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.period < time.Second {
		return fmt.Errorf("invalid period (must be at least 1s): %s", c.period)
	}
	if c.pollInterval <= 0 {
		return errors.New("poll interval must be positive")
	}
	if c.jwtDays < 1 {
		return fmt.Errorf("invalid jwt lifetime (must be at least 1 day): %d", c.jwtDays)
	}
	if _, err := zerolog.ParseLevel(c.logLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.logLevel, err)
	}
	return nil
}

func (c *Config) addr() string {
	return fmt.Sprintf("%s:%d", c.bind, c.port)
}

func (c *Config) policy() daily.Policy {
	return daily.Policy{Period: c.period, Salt: c.salt}
}

func (c *Config) serverOptions() httpserver.Options {
	return httpserver.Options{
		ClientOrigin: c.clientOrigin,
		JWTSecret:    c.jwtSecret,
		JWTTTL:       time.Duration(c.jwtDays) * 24 * time.Hour,
		CookieName:   c.cookieName,
		Production:   c.production,
	}
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CONGRESSLE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "congressle",
		Short:         "Daily guess-the-member-of-Congress puzzle server.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			lvl, _ := zerolog.ParseLevel(cfg.logLevel)
			zerolog.SetGlobalLevel(lvl)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.PersistentFlags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: CONGRESSLE_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 5175, "port to listen on (env: CONGRESSLE_PORT)")
	fs.StringVar(&cfg.db, "db", "./data/app.db", "path to the SQLite database (env: CONGRESSLE_DB)")
	fs.StringVar(&cfg.roster, "roster", "", "roster JSON export; empty uses the embedded roster (env: CONGRESSLE_ROSTER)")
	fs.StringVar(&cfg.salt, "salt", "local_dev_salt", "secret mixed into puzzle selection (env: CONGRESSLE_SALT)")
	fs.DurationVar(&cfg.period, "period", daily.Day, "length of one puzzle period (env: CONGRESSLE_PERIOD)")
	fs.DurationVar(&cfg.pollInterval, "poll-interval", time.Minute, "how often to check for a period rollover (env: CONGRESSLE_POLL_INTERVAL)")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "zerolog level (env: CONGRESSLE_LOG_LEVEL)")
	fs.StringVar(&cfg.clientOrigin, "client-origin", "http://localhost:5173", "origin allowed by CORS (env: CONGRESSLE_CLIENT_ORIGIN)")
	fs.StringVar(&cfg.jwtSecret, "jwt-secret", "dev_secret_change_me", "HS256 key for account tokens (env: CONGRESSLE_JWT_SECRET)")
	fs.IntVar(&cfg.jwtDays, "jwt-days", 14, "account token lifetime in days (env: CONGRESSLE_JWT_DAYS)")
	fs.StringVar(&cfg.cookieName, "cookie-name", "congressle_token", "auth cookie name (env: CONGRESSLE_COOKIE_NAME)")
	fs.BoolVar(&cfg.production, "production", false, "secure cross-site cookies (env: CONGRESSLE_PRODUCTION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server (default).",
			Args:  cobra.ExactArgs(0),
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context(), cfg)
			},
		},
		newPuzzleCmd(cfg),
		newRosterCmd(cfg),
	)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("congressle v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
