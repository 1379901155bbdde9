// internal/game/evaluate.go
//
// Guess evaluation.
// Responsibilities:
//   - Compare a guessed member against the puzzle's answer (id/state/party/chamber).
//   - Compute haversine proximity feedback between the two members.
//
// Notes:
//   - Puzzle.Answer carries no chamber, so the answer member is resolved
//     through a Lookup (the roster) by ID, then by name.
//   - A Senator represents the whole state: if either side is a Senator and
//     both share the state, distance is forced to 0 and direction to exact.

package game

import (
	"math"

	"github.com/robalobadob/congressle/apps/go-server/internal/roster"
)

const (
	earthRadiusMiles = 3959.0

	// directionDeadZone is the lat/lon delta (degrees) under which an axis
	// counts as aligned.
	directionDeadZone = 0.5
)

// Lookup resolves roster members. *roster.Roster satisfies it.
type Lookup interface {
	ByID(id string) (roster.Member, bool)
	ByName(name string) (roster.Member, bool)
}

// Evaluate scores guessed against the puzzle.
func Evaluate(guessed roster.Member, p Puzzle, lookup Lookup) Guess {
	answer, found := resolveAnswer(p, lookup)

	g := Guess{
		Guess:       guessed.Name,
		MemberID:    guessed.ID,
		Party:       guessed.Party,
		State:       guessed.State,
		Chamber:     guessed.Chamber,
		ActualState: p.Answer.State,
		Correct:     guessed.ID == p.SourceID,
		SameState:   guessed.State == p.Answer.State,
		SameParty:   guessed.Party == p.Answer.Party,
		SameChamber: found && guessed.Chamber == answer.Chamber,
	}
	if found {
		g.Proximity = Locate(guessed, answer)
	} else {
		g.Proximity = unknownProximity()
	}
	return g
}

// resolveAnswer finds the roster member behind a puzzle.
func resolveAnswer(p Puzzle, lookup Lookup) (roster.Member, bool) {
	if lookup == nil {
		return roster.Member{}, false
	}
	if m, ok := lookup.ByID(p.SourceID); ok {
		return m, true
	}
	return lookup.ByName(p.Answer.Name)
}

// Locate computes distance and direction from guessed to answer.
func Locate(guessed, answer roster.Member) Proximity {
	if guessed.State != "" && guessed.State == answer.State &&
		(guessed.Chamber == roster.ChamberSenate || answer.Chamber == roster.ChamberSenate) {
		return Proximity{Miles: 0, Direction: DirExact, Symbol: DirExact.Symbol(), Known: true}
	}
	if !guessed.HasCoords() || !answer.HasCoords() {
		return unknownProximity()
	}
	miles := Haversine(guessed.Lat, guessed.Lon, answer.Lat, answer.Lon)
	dir := Bearing(answer.Lat-guessed.Lat, answer.Lon-guessed.Lon)
	return Proximity{Miles: miles, Direction: dir, Symbol: dir.Symbol(), Known: true}
}

func unknownProximity() Proximity {
	return Proximity{Direction: DirUnknown, Symbol: DirUnknown.Symbol()}
}

// Haversine returns the great-circle distance in miles between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMiles * c
}

// Bearing maps latitude/longitude deltas (answer minus guess) to a compass
// point. Deltas inside the dead zone on both axes are exact.
func Bearing(dLat, dLon float64) Direction {
	north := dLat > directionDeadZone
	south := dLat < -directionDeadZone
	east := dLon > directionDeadZone
	west := dLon < -directionDeadZone

	switch {
	case north && east:
		return DirNorthEast
	case north && west:
		return DirNorthWest
	case south && east:
		return DirSouthEast
	case south && west:
		return DirSouthWest
	case north:
		return DirNorth
	case south:
		return DirSouth
	case east:
		return DirEast
	case west:
		return DirWest
	default:
		return DirExact
	}
}
