package m3u

import "strings"

// SeriesInfo is the result of matching a season/episode marker in a title.
type SeriesInfo struct {
	Name    string
	Season  int
	Episode int
}

// ExtractSeriesInfo scans a display title for season/episode markers. Two
// grammars are recognized, tried in order:
//
//	A: S<digits>[ ]E<digits>  — e.g. "S01E05", "S1 E5"
//	B: <digits>x<digits>      — e.g. "12x05"
//
// The series name is the trimmed text before the marker. Both numbers must be
// positive or the candidate is rejected and scanning continues from the next
// character. Titles with no marker return ok=false; callers still treat such
// entries as series content, just without an episode.
func ExtractSeriesInfo(title string) (SeriesInfo, bool) {
	if info, ok := matchSeasonEpisode(title); ok {
		return info, true
	}
	return matchCompact(title)
}

// matchSeasonEpisode implements grammar A.
func matchSeasonEpisode(title string) (SeriesInfo, bool) {
	for i := 0; i < len(title); i++ {
		if title[i] != 'S' && title[i] != 's' {
			continue
		}
		season, j := scanNumber(title, i+1)
		if j == i+1 {
			continue
		}
		k := j
		if k < len(title) && title[k] == ' ' {
			k++
		}
		if k >= len(title) || (title[k] != 'E' && title[k] != 'e') {
			continue
		}
		episode, end := scanNumber(title, k+1)
		if end == k+1 || season <= 0 || episode <= 0 {
			continue
		}
		return SeriesInfo{Name: seriesPrefix(title, i), Season: season, Episode: episode}, true
	}
	return SeriesInfo{}, false
}

// matchCompact implements grammar B.
func matchCompact(title string) (SeriesInfo, bool) {
	for i := 0; i < len(title); i++ {
		if !isDigit(title[i]) {
			continue
		}
		season, j := scanNumber(title, i)
		if j < len(title) && title[j] == 'x' {
			episode, end := scanNumber(title, j+1)
			if end > j+1 && season > 0 && episode > 0 {
				return SeriesInfo{Name: seriesPrefix(title, i), Season: season, Episode: episode}, true
			}
		}
		// Skip the rest of this digit run so "12x05" is not re-matched at "2x05".
		i = j - 1
	}
	return SeriesInfo{}, false
}

// seriesPrefix trims the text before a marker; single specials sometimes put
// the marker first, in which case the whole title is the series name.
func seriesPrefix(title string, end int) string {
	name := strings.TrimSpace(title[:end])
	if name == "" {
		return strings.TrimSpace(title)
	}
	return name
}

// scanNumber parses a digit run starting at i, returning the value and the
// index after the run. Returns next == i when no digit is present.
func scanNumber(s string, i int) (int, int) {
	n := 0
	j := i
	for j < len(s) && isDigit(s[j]) {
		n = n*10 + int(s[j]-'0')
		j++
	}
	return n, j
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
