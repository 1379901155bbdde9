// internal/roster/parse.go
//
// Fail-soft field parsing for upstream roster records.
//
// The export is a spreadsheet dump: numbers arrive either as JSON numbers or
// as strings like "$1,234,567" or "42.5%". Nothing here returns an error;
// a field that cannot be read becomes 0 (or an empty list).

package roster

import (
	"math"
	"strconv"
	"strings"
)

var numberDecor = strings.NewReplacer("$", "", ",", "", "%", "")

// ParseNumber reads a number from a native JSON value or a decorated string.
// Missing, malformed, NaN and infinite values all yield 0.
func ParseNumber(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		s := strings.TrimSpace(numberDecor.Replace(x))
		if s == "" {
			return 0
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = n
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ParseCount reads a whole-number count, truncating any fraction.
func ParseCount(v any) int {
	return int(ParseNumber(v))
}

// text renders a raw value as a trimmed string.
func text(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

// placeholders are committee entries the export uses for "nothing here".
// Single letters come from a "None" cell that was split per character.
var placeholders = map[string]struct{}{
	"n":       {},
	"o":       {},
	"e":       {},
	"no":      {},
	"none":    {},
	"n/a":     {},
	"no data": {},
}

// SplitList splits a ';'-separated cell, trims entries and drops empties
// and placeholder values.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ";") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		if _, skip := placeholders[strings.ToLower(p)]; skip {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SplitDonors is SplitList for donor cells, where "No donors" marks an empty list.
func SplitDonors(s string) []string {
	if strings.Contains(strings.ToLower(s), "no donors") {
		return []string{}
	}
	out := []string{}
	for _, d := range SplitList(s) {
		if strings.Contains(strings.ToLower(d), "no donors") {
			continue
		}
		out = append(out, d)
	}
	return out
}

// ComputeShares sets Share = Amount / total on every entry.
// A list whose amounts sum to zero (or less) gets Share 0 throughout.
func ComputeShares(list []Named) []Named {
	var total float64
	for _, n := range list {
		total += n.Amount
	}
	out := make([]Named, len(list))
	for i, n := range list {
		n.Share = 0
		if total > 0 {
			n.Share = n.Amount / total
		}
		out[i] = n
	}
	return out
}

// slice builds one finance-mix component from its percentage.
// Multiplying before dividing keeps round inputs exact (40% of 100000 is 40000).
func slice(pct, raised float64) Slice {
	return Slice{Pct: pct, Amount: pct * raised / 100}
}

// parseParty maps the export's party cell onto D/R/I.
func parseParty(s string) Party {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "D", "DEM", "DEMOCRAT", "DEMOCRATIC":
		return PartyDemocrat
	case "R", "REP", "REPUBLICAN":
		return PartyRepublican
	default:
		return PartyIndependent
	}
}

// parseChamber defaults anything unrecognised to the House.
func parseChamber(s string) Chamber {
	if strings.EqualFold(strings.TrimSpace(s), string(ChamberSenate)) {
		return ChamberSenate
	}
	return ChamberHouse
}

// parseState takes the state code from a "CA-12" style cell.
func parseState(s string) string {
	state, _, _ := strings.Cut(strings.TrimSpace(s), "-")
	return strings.ToUpper(strings.TrimSpace(state))
}

// parseNamed reads a list of {name, amount} objects and computes shares.
func parseNamed(v any) []Named {
	items, ok := v.([]any)
	if !ok {
		return []Named{}
	}
	out := make([]Named, 0, len(items))
	for _, it := range items {
		obj, ok := it.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Named{
			Name:   text(obj["name"]),
			Amount: ParseNumber(obj["amount"]),
		})
	}
	return ComputeShares(out)
}

// memberFromRaw converts one export row into a Member.
func memberFromRaw(m map[string]any) Member {
	name := text(m["Name"])
	id := text(m["ID"])
	if id == "" {
		id = name
	}
	raised := ParseNumber(m["Amount Raised"])

	return Member{
		ID:         id,
		Name:       name,
		State:      parseState(text(m["State and District"])),
		Party:      parseParty(text(m["Party"])),
		Chamber:    parseChamber(text(m["Chamber"])),
		Lat:        ParseNumber(m["INTPTLAT"]),
		Lon:        ParseNumber(m["INTPTLON"]),
		PhotoURL:   text(m["PHOTOURL"]),
		WebsiteURL: text(m["WEBSITEURL"]),
		Metrics: Metrics{
			AmountRaised: raised,
			FinanceMix: FinanceMix{
				Large: slice(ParseNumber(m["% Large Donors"]), raised),
				Small: slice(ParseNumber(m["% (<$200)"]), raised),
				PAC:   slice(ParseNumber(m["% PACs"]), raised),
				Other: slice(ParseNumber(m["% Other"]), raised),
				Self:  slice(ParseNumber(m["% Self-financed"]), raised),
			},
			TopContributors:    parseNamed(m["topContributors"]),
			TopIndustries:      parseNamed(m["topIndustries"]),
			StockValueUSD:      ParseNumber(m["Est Trade Volume"]),
			TradesCount:        ParseCount(m["Trade Count"]),
			TickerHoldingCount: ParseCount(m["Ticker Holding Count"]),
			CurrentNetWorth:    ParseNumber(m["Current_Net_Worth"]),
			Committees:         SplitList(text(m["Committees"])),
			CorporatePACMoney:  ParseNumber(m["CorporatePAC Money"]),
			MaxDonors:          SplitDonors(text(m["2024 Max Donors"])),
			UniqueDonors:       SplitDonors(text(m["2024 Unique Donors"])),
		},
	}
}
