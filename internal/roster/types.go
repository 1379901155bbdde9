// internal/roster/types.go
//
// Core type definitions for the roster of members of Congress.
// Defines:
//   - Party / Chamber: identity enums a player has to guess.
//   - Slice / FinanceMix: contribution-source mixture (percent + amount).
//   - Named: a ranked contributor or industry with its computed share.
//   - Metrics: every public financial/activity figure shown in a puzzle.
//   - Member: one roster entry (identity + coordinates + Metrics).

package roster

// Party is the member's party affiliation.
type Party string

const (
	PartyDemocrat    Party = "D"
	PartyRepublican  Party = "R"
	PartyIndependent Party = "I"
)

// Name returns the long display form of the party.
func (p Party) Name() string {
	switch p {
	case PartyDemocrat:
		return "Democrat"
	case PartyRepublican:
		return "Republican"
	default:
		return "Independent"
	}
}

// Chamber is the legislative chamber the member sits in.
type Chamber string

const (
	ChamberHouse  Chamber = "House"
	ChamberSenate Chamber = "Senate"
)

// Slice is one source in the finance mix.
type Slice struct {
	Pct    float64 `json:"pct"`
	Amount float64 `json:"amount"`
}

// FinanceMix splits the total amount raised by contribution source.
type FinanceMix struct {
	Large Slice `json:"large"`
	Small Slice `json:"small"`
	PAC   Slice `json:"pac"`
	Other Slice `json:"other"`
	Self  Slice `json:"self"`
}

// Named is an entry of a ranked list (top contributors, top industries).
// Share is always computed from the amounts of its list, never read from input.
type Named struct {
	Name   string  `json:"name"`
	Share  float64 `json:"share"`
	Amount float64 `json:"amount"`
}

// Metrics holds the public figures a puzzle reveals about a member.
type Metrics struct {
	AmountRaised       float64    `json:"amountRaised"`
	FinanceMix         FinanceMix `json:"financeMix"`
	TopContributors    []Named    `json:"topContributors"`
	TopIndustries      []Named    `json:"topIndustries"`
	StockValueUSD      float64    `json:"stockValueUSD"`
	TradesCount        int        `json:"tradesCount"`
	TickerHoldingCount int        `json:"tickerHoldingCount"`
	CurrentNetWorth    float64    `json:"currentNetWorth"`
	Committees         []string   `json:"committees"`
	CorporatePACMoney  float64    `json:"corporatePACMoney"`
	MaxDonors          []string   `json:"maxDonors"`
	UniqueDonors       []string   `json:"uniqueDonors"`
}

// Clone returns a deep copy so callers can hand Metrics out without
// sharing the roster's backing slices.
func (m Metrics) Clone() Metrics {
	out := m
	out.TopContributors = append([]Named{}, m.TopContributors...)
	out.TopIndustries = append([]Named{}, m.TopIndustries...)
	out.Committees = append([]string{}, m.Committees...)
	out.MaxDonors = append([]string{}, m.MaxDonors...)
	out.UniqueDonors = append([]string{}, m.UniqueDonors...)
	return out
}

// Member is a single roster entry.
type Member struct {
	ID         string  `json:"memberId"`
	Name       string  `json:"fullName"`
	State      string  `json:"state"`
	Party      Party   `json:"party"`
	Chamber    Chamber `json:"chamber"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	PhotoURL   string  `json:"photoUrl,omitempty"`
	WebsiteURL string  `json:"websiteUrl,omitempty"`

	Metrics
}

// HasCoords reports whether the member carries usable coordinates.
// Upstream rows without a centroid decode as 0,0.
func (m Member) HasCoords() bool {
	return m.Lat != 0 || m.Lon != 0
}
