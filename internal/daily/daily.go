// internal/daily/daily.go
//
// Deterministic puzzle-of-the-period selection.
//
// Time is cut into fixed-length periods counted from the Unix epoch. Each
// period's key is hashed with HMAC-SHA256(salt, key); the first 8 bytes give a
// fraction in [0,1) that picks a roster index. Any process with the same salt
// and roster picks the same member for the same period, with no coordination.
//
// The canonical deployment uses 24h periods (UTC midnight boundaries) and
// keys periods by date. Shorter periods are for development only.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"strconv"
	"time"

	"github.com/robalobadob/congressle/apps/go-server/internal/game"
	"github.com/robalobadob/congressle/apps/go-server/internal/roster"
)

// Day is the canonical period length.
const Day = 24 * time.Hour

// Clock is the time source. Tests substitute a fixed or stepped clock.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock in UTC.
var SystemClock Clock = ClockFunc(func() time.Time { return time.Now().UTC() })

// Policy fixes how time maps to puzzles.
type Policy struct {
	Period time.Duration
	Salt   string
}

// DefaultPolicy is the daily policy with the given salt.
func DefaultPolicy(salt string) Policy {
	return Policy{Period: Day, Salt: salt}
}

func (p Policy) period() time.Duration {
	if p.Period < time.Second {
		return Day
	}
	return p.Period
}

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// PeriodIndex is floor(t / period) counted from the epoch.
func (p Policy) PeriodIndex(t time.Time) int64 {
	ms := t.UnixMilli()
	per := p.period().Milliseconds()
	idx := ms / per
	if ms%per != 0 && ms < 0 {
		idx--
	}
	return idx
}

// Key identifies the period containing t: a date for daily periods,
// "p<index>" otherwise.
func (p Policy) Key(t time.Time) string {
	return p.keyFor(p.PeriodIndex(t))
}

func (p Policy) keyFor(idx int64) string {
	if p.period() == Day {
		return DateKey(time.UnixMilli(idx * Day.Milliseconds()))
	}
	return "p" + strconv.FormatInt(idx, 10)
}

// Fraction derives a value in [0,1) from a period index.
func (p Policy) Fraction(idx int64) float64 {
	h := hmac.New(sha256.New, []byte(p.Salt))
	h.Write([]byte(p.keyFor(idx)))
	sum := h.Sum(nil)
	// top 53 bits fit a float64 mantissa exactly
	n := binary.BigEndian.Uint64(sum[:8]) >> 11
	return float64(n) / (1 << 53)
}

// Index returns the roster position for the period containing t.
func (p Policy) Index(t time.Time, n int) int {
	if n <= 0 {
		return 0
	}
	i := int(p.Fraction(p.PeriodIndex(t)) * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Selector picks the period's member from a roster.
type Selector struct {
	roster *roster.Roster
	policy Policy
}

// NewSelector binds a roster to a policy.
func NewSelector(r *roster.Roster, p Policy) *Selector {
	return &Selector{roster: r, policy: p}
}

// Roster exposes the roster the selector draws from.
func (s *Selector) Roster() *roster.Roster { return s.roster }

// Policy returns the selection policy.
func (s *Selector) Policy() Policy { return s.policy }

// Key returns the period key for t.
func (s *Selector) Key(t time.Time) string { return s.policy.Key(t) }

// SelectForInstant returns the member for the period containing t.
// It reports false only when the roster is empty.
func (s *Selector) SelectForInstant(t time.Time) (roster.Member, bool) {
	n := s.roster.Len()
	if n == 0 {
		return roster.Member{}, false
	}
	return s.roster.At(s.policy.Index(t, n)), true
}

// PuzzleAt returns the public puzzle for the period containing t.
func (s *Selector) PuzzleAt(t time.Time) (game.Puzzle, bool) {
	m, ok := s.SelectForInstant(t)
	if !ok {
		return game.Puzzle{}, false
	}
	return game.Project(m), true
}
