package m3u

import "strings"

// Attribute keys carry the trailing `="` so a lookup is a single substring
// scan with no backtracking. The source format does not escape quotes inside
// values, so the first closing quote always ends the value.
const (
	attrTvgID      = `tvg-id="`
	attrTvgName    = `tvg-name="`
	attrTvgLogo    = `tvg-logo="`
	attrGroupTitle = `group-title="`
)

// extinfPrefix marks a metadata line in extended M3U.
const extinfPrefix = "#EXTINF:"

// fallbackName is used when a metadata line carries no usable display name.
const fallbackName = "Unknown"

// extractAttribute returns the value between key and the next double quote.
// It returns "" when the key is missing, the line ends before a value starts,
// the closing quote is missing, or the value is empty. Callers treat "" as
// absent; the format has no meaningful empty values.
func extractAttribute(line, key string) string {
	idx := strings.Index(line, key)
	if idx == -1 {
		return ""
	}
	start := idx + len(key)
	if start >= len(line) {
		return ""
	}
	end := strings.IndexByte(line[start:], '"')
	if end <= 0 {
		return ""
	}
	return line[start : start+end]
}

// displayName resolves the entry name: tvg-name when present, otherwise the
// text after the final comma, otherwise a literal placeholder.
func displayName(line string) string {
	if name := extractAttribute(line, attrTvgName); name != "" {
		return name
	}
	if c := strings.LastIndexByte(line, ','); c != -1 {
		if name := strings.TrimSpace(line[c+1:]); name != "" {
			return name
		}
	}
	return fallbackName
}
