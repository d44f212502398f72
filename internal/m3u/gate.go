package m3u

import "strings"

// defaultBlockedMarkers is the built-in adult-content blocklist, matched
// case-insensitively against the group title.
var defaultBlockedMarkers = []string{
	"ADULT",
	"XXX",
	"PORN",
	"18+",
	"FOR ADULTS",
}

// Gate blocks entries whose group title matches a substring blocklist. The
// check runs before any per-entry work so the common non-blocked case stays
// cheap.
type Gate struct {
	markers []string
}

// NewGate returns a gate with the built-in blocklist plus any extra markers.
func NewGate(extra ...string) *Gate {
	markers := make([]string, 0, len(defaultBlockedMarkers)+len(extra))
	markers = append(markers, defaultBlockedMarkers...)
	for _, m := range extra {
		if m = strings.ToUpper(strings.TrimSpace(m)); m != "" {
			markers = append(markers, m)
		}
	}
	return &Gate{markers: markers}
}

// Blocked reports whether a group title matches the blocklist.
func (g *Gate) Blocked(groupTitle string) bool {
	upper := strings.ToUpper(groupTitle)
	for _, m := range g.markers {
		if strings.Contains(upper, m) {
			return true
		}
	}
	return false
}
