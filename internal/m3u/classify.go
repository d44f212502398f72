package m3u

import (
	"strings"

	"github.com/abdougueye/diiokko-tv-sub000/internal/models"
)

// classifierRule is one predicate in the classification chain. Rules run in
// order and the first match wins, so precedence lives in the slice below and
// not in nested conditionals.
type classifierRule func(urlLower, groupLower, title string) (models.ContentKind, bool)

// The URL path is the most reliable provider-supplied signal; group-title
// keywords catch providers that encode type only in the category name; the
// title pattern is the last resort for feeds that tag everything as live but
// embed S01E02-style markers in the name.
var classifierRules = []classifierRule{
	func(urlLower, _, _ string) (models.ContentKind, bool) {
		return models.ContentMovie, strings.Contains(urlLower, "/movie/")
	},
	func(urlLower, _, _ string) (models.ContentKind, bool) {
		return models.ContentSeries, strings.Contains(urlLower, "/series/")
	},
	func(_, groupLower, _ string) (models.ContentKind, bool) {
		return models.ContentMovie, containsAny(groupLower, "vod", "movie", "film")
	},
	func(_, groupLower, _ string) (models.ContentKind, bool) {
		return models.ContentSeries, containsAny(groupLower, "series", "serie")
	},
	func(_, _, title string) (models.ContentKind, bool) {
		_, ok := ExtractSeriesInfo(title)
		return models.ContentSeries, ok
	},
}

// Classify decides the content category for one entry. Falls through to live
// TV when no rule matches.
func Classify(streamURL, groupTitle, title string) models.ContentKind {
	urlLower := strings.ToLower(streamURL)
	groupLower := strings.ToLower(groupTitle)
	for _, rule := range classifierRules {
		if kind, ok := rule(urlLower, groupLower, title); ok {
			return kind
		}
	}
	return models.ContentLiveTV
}

// IsDivider reports whether a live entry is a non-selectable section divider:
// no tvg-id and a name made of divider markers. Dividers still become channel
// rows so ordering is preserved.
func IsDivider(tvgID, name string) bool {
	return tvgID == "" && strings.Contains(name, "####")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
