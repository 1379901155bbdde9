// internal/roster/roster.go
//
// Provides the read-only roster the puzzle selector and evaluator work from.
//
// Responsibilities:
//   - Decode the upstream JSON export (an array of spreadsheet rows).
//   - Normalise each row fail-soft (see parse.go).
//   - Index members by ID and by folded name for lookups and search.
//
// Loading behaviour:
//   1. If a roster file is configured, load it.
//   2. Otherwise fall back to the embedded default roster (assets package).
//
// A Roster never changes after construction, so it is safe to share across
// goroutines without locking.

package roster

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/robalobadob/congressle/apps/go-server/assets"
)

// DefaultSearchLimit caps suggestions when the caller passes no limit.
const DefaultSearchLimit = 5

// Roster is an ordered, immutable collection of members.
type Roster struct {
	members []Member
	folded  []string       // folded display names, same order as members
	byID    map[string]int // member ID -> index
	byName  map[string]int // folded name -> index
}

// New builds a Roster from already-normalised members.
// Later duplicates of an ID are dropped.
func New(members []Member) *Roster {
	r := &Roster{
		members: make([]Member, 0, len(members)),
		byID:    make(map[string]int, len(members)),
		byName:  make(map[string]int, len(members)),
	}
	for _, m := range members {
		if _, dup := r.byID[m.ID]; dup {
			log.Warn().Str("member", m.ID).Msg("duplicate roster id skipped")
			continue
		}
		i := len(r.members)
		f := fold(m.Name)
		r.members = append(r.members, m)
		r.folded = append(r.folded, f)
		r.byID[m.ID] = i
		if _, ok := r.byName[f]; !ok {
			r.byName[f] = i
		}
	}
	return r
}

// Load decodes a JSON array of export rows.
// Only a malformed document is an error; bad fields inside a row are zeroed.
func Load(rd io.Reader) (*Roster, error) {
	var raw []map[string]any
	if err := json.NewDecoder(rd).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	members := make([]Member, 0, len(raw))
	for _, row := range raw {
		m := memberFromRaw(row)
		if m.ID == "" {
			log.Warn().Msg("roster row without a name skipped")
			continue
		}
		members = append(members, m)
	}
	return New(members), nil
}

// LoadFile reads a roster export from disk.
func LoadFile(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Default loads the roster embedded in the binary.
func Default() (*Roster, error) {
	return Load(bytes.NewReader(assets.RosterJSON()))
}

// Open loads path when it is set, else the embedded roster.
func Open(path string) (*Roster, error) {
	if path != "" {
		return LoadFile(path)
	}
	return Default()
}

// Len returns the number of members.
func (r *Roster) Len() int { return len(r.members) }

// At returns the member at position i.
func (r *Roster) At(i int) Member { return r.members[i] }

// Members returns a copy of the ordered member list.
func (r *Roster) Members() []Member {
	return append([]Member(nil), r.members...)
}

// ByID looks a member up by ID.
func (r *Roster) ByID(id string) (Member, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Member{}, false
	}
	return r.members[i], true
}

// ByName looks a member up by display name, ignoring case and accents.
func (r *Roster) ByName(name string) (Member, bool) {
	i, ok := r.byName[fold(name)]
	if !ok {
		return Member{}, false
	}
	return r.members[i], true
}

// Search returns members whose name contains query, in roster order.
// Matching ignores case and accents. An empty query matches nothing.
func (r *Roster) Search(query string, limit int) []Member {
	q := fold(query)
	if q == "" {
		return []Member{}
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	out := []Member{}
	for i, f := range r.folded {
		if strings.Contains(f, q) {
			out = append(out, r.members[i])
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// Stats counts members per chamber and party.
func (r *Roster) Stats() map[string]int {
	out := map[string]int{"total": len(r.members)}
	for _, m := range r.members {
		out[string(m.Chamber)]++
		out[string(m.Party)]++
	}
	return out
}

// fold strips diacritics and case-folds s for comparisons.
// Transformers carry state, so a fresh chain is built per call.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = strings.TrimSpace(s)
	}
	return cases.Fold().String(out)
}
