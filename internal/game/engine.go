// internal/game/engine.go
//
// Session state machine for a single player's daily puzzle.
// Responsibilities:
//   - Hold the active puzzle and the ordered guesses made against it.
//   - Enforce the attempt cap and the solved/exhausted terminal states.
//   - Expose transitions (Init/Guess/Reset) as values: each returns a new
//     Session and leaves the receiver untouched.
//
// States:
//   empty     → no puzzle loaded
//   active    → puzzle loaded, fewer than AttemptCap guesses, none correct
//   solved    → last guess correct (terminal)
//   exhausted → AttemptCap guesses, none correct (terminal)

package game

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotActive is returned when a guess arrives outside the active state.
var ErrNotActive = errors.New("game: session is not active")

// Session is the persisted state of one player's game for one period.
type Session struct {
	ID        string    `json:"id,omitempty"`
	Period    string    `json:"period,omitempty"`
	StartedAt time.Time `json:"startedAt"`
	Puzzle    *Puzzle   `json:"puzzle"`
	Guesses   []Guess   `json:"guesses"`
	Solved    bool      `json:"solved"`
}

// Init starts a fresh session for period with an empty guess list.
// Valid from any state.
func Init(period string, p Puzzle, at time.Time) Session {
	return Session{
		ID:        uuid.NewString(),
		Period:    period,
		StartedAt: at,
		Puzzle:    &p,
		Guesses:   []Guess{},
	}
}

// Reset returns the empty session. Valid from any state.
func (s Session) Reset() Session {
	return Session{Guesses: []Guess{}}
}

// Guess appends g and recomputes Solved. Only valid while active.
func (s Session) Guess(g Guess) (Session, error) {
	if s.State() != StateActive {
		return s, ErrNotActive
	}
	next := s
	next.Guesses = append(append(make([]Guess, 0, len(s.Guesses)+1), s.Guesses...), g)
	next.Solved = g.Correct || len(next.Guesses) >= AttemptCap
	return next, nil
}

// State reports the coarse status of the session.
func (s Session) State() State {
	switch {
	case s.Puzzle == nil:
		return StateEmpty
	case len(s.Guesses) > 0 && s.Guesses[len(s.Guesses)-1].Correct:
		return StateSolved
	case len(s.Guesses) >= AttemptCap:
		return StateExhausted
	default:
		return StateActive
	}
}

// Finished reports whether the session reached a terminal state.
func (s Session) Finished() bool {
	st := s.State()
	return st == StateSolved || st == StateExhausted
}

// Remaining is the number of guesses still allowed.
func (s Session) Remaining() int {
	if s.Puzzle == nil || s.Finished() {
		return 0
	}
	return AttemptCap - len(s.Guesses)
}

// FirstCorrect returns the index of the first correct guess, or -1.
func (s Session) FirstCorrect() int {
	for i, g := range s.Guesses {
		if g.Correct {
			return i
		}
	}
	return -1
}
