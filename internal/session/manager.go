// internal/session/manager.go
//
// Per-player session lifecycle on top of the game state machine.
// Responsibilities:
//   - Restore a player's session from the persistence port, discarding it when
//     the stored period no longer matches the current one.
//   - Apply INIT / GUESS / RESET transitions and persist the full session after
//     every one of them.
//   - Notify a finish hook when a session reaches a terminal state.
//
// Blob format (JSON): {"period": "<period key>", "session": {...}}.
// Blobs that cannot be decoded are logged and treated as absent.

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/congressle/apps/go-server/internal/daily"
	"github.com/robalobadob/congressle/apps/go-server/internal/game"
	"github.com/robalobadob/congressle/apps/go-server/internal/store"
)

var (
	// ErrUnknownMember is returned when a guess names no roster member.
	ErrUnknownMember = errors.New("session: unknown member")

	// ErrNoPuzzle is returned when the roster cannot produce a puzzle.
	ErrNoPuzzle = errors.New("session: no puzzle available")
)

// FinishFunc is called once a session becomes solved or exhausted.
type FinishFunc func(ctx context.Context, player string, s game.Session)

// record is the persisted blob.
type record struct {
	Period  string       `json:"period"`
	Session game.Session `json:"session"`
}

const keyPrefix = "session:"

// Key returns the store key for a player's session.
func Key(player string) string { return keyPrefix + player }

// Manager owns session transitions for all players.
type Manager struct {
	mu       sync.Mutex // serialises load-modify-persist cycles
	store    store.Store
	selector *daily.Selector
	clock    daily.Clock
	onFinish FinishFunc
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(c daily.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithOnFinish registers a hook for terminal transitions.
func WithOnFinish(fn FinishFunc) Option {
	return func(m *Manager) { m.onFinish = fn }
}

// NewManager builds a Manager persisting through st and drawing puzzles from sel.
func NewManager(st store.Store, sel *daily.Selector, opts ...Option) *Manager {
	m := &Manager{store: st, selector: sel, clock: daily.SystemClock}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Period returns the current period key.
func (m *Manager) Period() string {
	return m.selector.Key(m.clock.Now())
}

// Restore reads the player's stored session for the current period.
// Missing, unreadable, or stale blobs all yield the empty session.
func (m *Manager) Restore(ctx context.Context, player string) game.Session {
	s, _ := m.restore(ctx, player)
	return s
}

// restore is Restore plus whether a record for the current period exists.
// A current record may hold the empty session after a Reset.
func (m *Manager) restore(ctx context.Context, player string) (game.Session, bool) {
	empty := game.Session{}.Reset()

	raw, ok, err := m.store.Get(ctx, Key(player))
	if err != nil {
		log.Warn().Err(err).Str("player", player).Msg("read session")
		return empty, false
	}
	if !ok {
		return empty, false
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		log.Warn().Err(err).Str("player", player).Msg("discarding corrupt session")
		return empty, false
	}
	if current := m.Period(); rec.Period != current {
		log.Debug().Str("player", player).Str("stored", rec.Period).Str("current", current).Msg("stale session discarded")
		return empty, false
	}
	if rec.Session.Guesses == nil {
		rec.Session.Guesses = []game.Guess{}
	}
	return rec.Session, true
}

// Load returns the player's session for the current period. A new session
// (RESET then INIT) starts only when no record exists for this period, so a
// reset within the period never hands out fresh attempts.
func (m *Manager) Load(ctx context.Context, player string) (game.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(ctx, player)
}

func (m *Manager) load(ctx context.Context, player string) (game.Session, error) {
	if s, current := m.restore(ctx, player); current {
		return s, nil
	}

	now := m.clock.Now()
	p, ok := m.selector.PuzzleAt(now)
	if !ok {
		return game.Session{}.Reset(), ErrNoPuzzle
	}
	s := game.Init(m.selector.Key(now), p, now)
	if err := m.persist(ctx, player, s.Period, s); err != nil {
		return s, err
	}
	log.Debug().Str("player", player).Str("period", s.Period).Msg("session initialised")
	return s, nil
}

// Guess evaluates memberID against the player's puzzle and records it.
// It returns the updated session and the evaluated guess.
func (m *Manager) Guess(ctx context.Context, player, memberID string) (game.Session, game.Guess, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.load(ctx, player)
	if err != nil {
		return s, game.Guess{}, err
	}
	r := m.selector.Roster()
	member, ok := r.ByID(memberID)
	if !ok {
		return s, game.Guess{}, fmt.Errorf("%w: %q", ErrUnknownMember, memberID)
	}
	if s.State() != game.StateActive {
		return s, game.Guess{}, game.ErrNotActive
	}

	g := game.Evaluate(member, *s.Puzzle, r)
	next, err := s.Guess(g)
	if err != nil {
		return s, g, err
	}
	if err := m.persist(ctx, player, next.Period, next); err != nil {
		return s, g, err
	}

	log.Info().
		Str("player", player).
		Str("period", next.Period).
		Int("attempt", len(next.Guesses)).
		Bool("correct", g.Correct).
		Str("state", string(next.State())).
		Msg("guess recorded")

	if next.Finished() && m.onFinish != nil {
		m.onFinish(ctx, player, next)
	}
	return next, g, nil
}

// Reset moves the player's session to the empty state for the rest of the
// current period. The next period starts a new session.
func (m *Manager) Reset(ctx context.Context, player string) (game.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := game.Session{}.Reset()
	if err := m.persist(ctx, player, m.Period(), s); err != nil {
		return s, err
	}
	return s, nil
}

// Claim moves from's current-period session to player to, unless to already
// has one. Used when an anonymous player signs in.
func (m *Manager) Claim(ctx context.Context, from, to string) error {
	if from == "" || to == "" || from == to {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, current := m.restore(ctx, to); current {
		return nil
	}
	s, current := m.restore(ctx, from)
	if !current || s.State() == game.StateEmpty {
		return nil
	}
	if err := m.persist(ctx, to, s.Period, s); err != nil {
		return err
	}
	return m.store.Delete(ctx, Key(from))
}

// Rollover drops every stored session that does not belong to the current
// period (the RESET half of a rollover); each player's next Load runs INIT.
// It returns how many sessions were dropped.
func (m *Manager) Rollover(ctx context.Context) (int, error) {
	keys, err := m.store.Keys(ctx, keyPrefix)
	if err != nil {
		return 0, fmt.Errorf("list sessions: %w", err)
	}
	n := 0
	for _, k := range keys {
		dropped, err := m.dropStale(ctx, strings.TrimPrefix(k, keyPrefix))
		if err != nil {
			return n, err
		}
		if dropped {
			n++
		}
	}
	return n, nil
}

func (m *Manager) dropStale(ctx context.Context, player string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, current := m.restore(ctx, player); current {
		return false, nil
	}
	if err := m.store.Delete(ctx, Key(player)); err != nil {
		return false, fmt.Errorf("reset session: %w", err)
	}
	return true, nil
}

// persist writes the full session blob tagged with period.
func (m *Manager) persist(ctx context.Context, player, period string, s game.Session) error {
	raw, err := json.Marshal(record{Period: period, Session: s})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := m.store.Set(ctx, Key(player), raw); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}
