// internal/game/types.go
//
// Core type definitions for the guessing game.
// Defines:
//   - Puzzle / Answer: the player-facing projection of one roster member.
//   - Direction / Proximity: location feedback for a guess.
//   - Guess: the evaluated result of one submission.
//   - State: coarse session status (empty/active/solved/exhausted).

package game

import "github.com/robalobadob/congressle/apps/go-server/internal/roster"

// AttemptCap is the number of guesses allowed per puzzle.
const AttemptCap = 5

// Answer is the identity a player is trying to guess.
// Clients must not show it until the session is finished.
type Answer struct {
	Name       string       `json:"fullName"`
	State      string       `json:"state"`
	Party      roster.Party `json:"party"`
	Lat        float64      `json:"lat"`
	Lon        float64      `json:"lon"`
	PhotoURL   string       `json:"photoUrl,omitempty"`
	WebsiteURL string       `json:"websiteUrl,omitempty"`
}

// Puzzle is the public view of the period's member.
// Metrics are copied verbatim; identity lives only in Answer.
type Puzzle struct {
	SourceID string `json:"memberId"`
	roster.Metrics
	Answer Answer `json:"answer"`
}

// Direction points from the guessed member toward the answer.
type Direction string

const (
	DirNorth     Direction = "N"
	DirNorthEast Direction = "NE"
	DirEast      Direction = "E"
	DirSouthEast Direction = "SE"
	DirSouth     Direction = "S"
	DirSouthWest Direction = "SW"
	DirWest      Direction = "W"
	DirNorthWest Direction = "NW"
	DirExact     Direction = "exact"
	DirUnknown   Direction = "unknown"
)

// Symbol returns the arrow shown next to a guess.
func (d Direction) Symbol() string {
	switch d {
	case DirNorth:
		return "⬆️"
	case DirNorthEast:
		return "↗️"
	case DirEast:
		return "➡️"
	case DirSouthEast:
		return "↘️"
	case DirSouth:
		return "⬇️"
	case DirSouthWest:
		return "↙️"
	case DirWest:
		return "⬅️"
	case DirNorthWest:
		return "↖️"
	case DirExact:
		return "✅"
	default:
		return "❓"
	}
}

// Proximity is distance/direction feedback. Known is false when either
// location could not be resolved; Miles is then meaningless.
type Proximity struct {
	Miles     float64   `json:"miles"`
	Direction Direction `json:"direction"`
	Symbol    string    `json:"symbol"`
	Known     bool      `json:"known"`
}

// Guess is one evaluated submission.
type Guess struct {
	Guess       string         `json:"guess"`
	MemberID    string         `json:"memberId"`
	Party       roster.Party   `json:"party"`
	State       string         `json:"state"`
	Chamber     roster.Chamber `json:"chamber"`
	ActualState string         `json:"actualState"`
	Correct     bool           `json:"correct"`
	SameState   bool           `json:"sameState"`
	SameParty   bool           `json:"sameParty"`
	SameChamber bool           `json:"sameChamber"`
	Proximity   Proximity      `json:"proximity"`
}

// Label formats the guess for history rows, e.g. "Jane Doe (D-TX)".
func (g Guess) Label() string {
	if g.Party != "" && g.State != "" {
		return g.Guess + " (" + string(g.Party) + "-" + g.State + ")"
	}
	return g.Guess
}

// State is the coarse status of a session.
type State string

const (
	StateEmpty     State = "empty"
	StateActive    State = "active"
	StateSolved    State = "solved"
	StateExhausted State = "exhausted"
)
