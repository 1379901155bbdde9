// Package assets embeds the default data files shipped with the server.
package assets

import (
	_ "embed"
)

//go:embed roster.json
var rosterJSON []byte

// RosterJSON returns the embedded roster export (a JSON array of rows).
func RosterJSON() []byte {
	return rosterJSON
}
