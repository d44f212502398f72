package m3u

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSeriesInfoSeasonEpisode(t *testing.T) {
	cases := []struct {
		title   string
		name    string
		season  int
		episode int
	}{
		{"The Office S01E05", "The Office", 1, 5},
		{"NF - Show (2023) S01 E05", "NF - Show (2023)", 1, 5},
		{"Show s2e10", "Show", 2, 10},
		{"Show S10E100", "Show", 10, 100},
	}
	for _, tc := range cases {
		info, ok := ExtractSeriesInfo(tc.title)
		assert.True(t, ok, "title %q", tc.title)
		assert.Equal(t, tc.name, info.Name, "title %q", tc.title)
		assert.Equal(t, tc.season, info.Season, "title %q", tc.title)
		assert.Equal(t, tc.episode, info.Episode, "title %q", tc.title)
	}
}

func TestExtractSeriesInfoCompact(t *testing.T) {
	info, ok := ExtractSeriesInfo("Dexter 12x05")
	assert.True(t, ok)
	assert.Equal(t, "Dexter", info.Name)
	assert.Equal(t, 12, info.Season)
	assert.Equal(t, 5, info.Episode)
}

func TestExtractSeriesInfoCompactDigitRunNotRescanned(t *testing.T) {
	// "12x05" must match as 12x05, never fall back to 2x05.
	info, ok := ExtractSeriesInfo("Show 12x05")
	assert.True(t, ok)
	assert.Equal(t, 12, info.Season)
}

func TestExtractSeriesInfoZeroNumbersRejected(t *testing.T) {
	// Zero season or episode rejects the candidate; scanning continues.
	_, ok := ExtractSeriesInfo("Show S00E00")
	assert.False(t, ok)

	info, ok := ExtractSeriesInfo("Show S0E0 S01E02")
	assert.True(t, ok)
	assert.Equal(t, 1, info.Season)
	assert.Equal(t, 2, info.Episode)
}

func TestExtractSeriesInfoSeasonEpisodePrecedesCompact(t *testing.T) {
	info, ok := ExtractSeriesInfo("Show 3x04 S01E02")
	assert.True(t, ok)
	assert.Equal(t, 1, info.Season)
	assert.Equal(t, 2, info.Episode)
}

func TestExtractSeriesInfoMarkerFirst(t *testing.T) {
	// Nothing before the marker: the whole title names the series.
	info, ok := ExtractSeriesInfo("S01E05")
	assert.True(t, ok)
	assert.Equal(t, "S01E05", info.Name)
}

func TestExtractSeriesInfoNoMarker(t *testing.T) {
	for _, title := range []string{"BBC One", "Top Gun (1986)", "Sports 24", "SxEy"} {
		_, ok := ExtractSeriesInfo(title)
		assert.False(t, ok, "title %q", title)
	}
}
