package game

import "github.com/robalobadob/congressle/apps/go-server/internal/roster"

// Project builds the public puzzle for a member.
// Chamber and ID stay out of Answer; the ID is kept as SourceID so guesses
// can be checked without a name comparison.
func Project(m roster.Member) Puzzle {
	return Puzzle{
		SourceID: m.ID,
		Metrics:  m.Metrics.Clone(),
		Answer: Answer{
			Name:       m.Name,
			State:      m.State,
			Party:      m.Party,
			Lat:        m.Lat,
			Lon:        m.Lon,
			PhotoURL:   m.PhotoURL,
			WebsiteURL: m.WebsiteURL,
		},
	}
}

// Redacted returns a copy with the answer blanked, for clients that have
// not finished the puzzle yet.
func (p Puzzle) Redacted() Puzzle {
	p.SourceID = ""
	p.Answer = Answer{}
	return p
}
