package main

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		port:         5175,
		period:       24 * time.Hour,
		pollInterval: time.Minute,
		jwtDays:      14,
		logLevel:     "info",
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"port zero", func(c *Config) { c.port = 0 }, true},
		{"port too high", func(c *Config) { c.port = 70000 }, true},
		{"sub-second period", func(c *Config) { c.period = 500 * time.Millisecond }, true},
		{"one second period", func(c *Config) { c.period = time.Second }, false},
		{"zero poll", func(c *Config) { c.pollInterval = 0 }, true},
		{"zero jwt days", func(c *Config) { c.jwtDays = 0 }, true},
		{"bad log level", func(c *Config) { c.logLevel = "loud" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			if err := c.validate(); (err != nil) != tt.wantErr {
				t.Errorf("validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("CONGRESSLE_PORT", "9000")
	t.Setenv("CONGRESSLE_SALT", "pepper")
	t.Setenv("CONGRESSLE_POLL_INTERVAL", "30s")

	cfg := &Config{}
	newCmd(cfg)
	if cfg.port != 9000 || cfg.salt != "pepper" || cfg.pollInterval != 30*time.Second {
		t.Errorf("env not applied: port=%d salt=%q poll=%s", cfg.port, cfg.salt, cfg.pollInterval)
	}
	if cfg.db != "./data/app.db" || cfg.period != 24*time.Hour {
		t.Errorf("defaults changed: db=%q period=%s", cfg.db, cfg.period)
	}
	if got := cfg.addr(); got != "0.0.0.0:9000" {
		t.Errorf("addr() = %q", got)
	}
}

func TestPuzzleCommandIsDeterministic(t *testing.T) {
	run := func() string {
		var out bytes.Buffer
		cmd := newCmd(&Config{})
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"puzzle", "--at", "2026-10-19T12:00:00Z"})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("puzzle: %v", err)
		}
		return out.String()
	}
	first := run()
	if !strings.Contains(first, "Period:        2026-10-19") || !strings.Contains(first, "Answer:") {
		t.Fatalf("unexpected output:\n%s", first)
	}
	if second := run(); second != first {
		t.Errorf("same instant printed different puzzles:\n%s\n---\n%s", first, second)
	}
}

func TestPuzzleCommandRejectsBadInstant(t *testing.T) {
	cmd := newCmd(&Config{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"puzzle", "--at", "yesterday"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected parse error")
	}
}

func TestRosterCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newCmd(&Config{})
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"roster"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("roster: %v", err)
	}
	if !strings.Contains(out.String(), "total") || !strings.Contains(out.String(), "Senate") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}
