package m3u

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abdougueye/diiokko-tv-sub000/internal/models"
)

func TestClassifyURLPathWins(t *testing.T) {
	// URL signal beats a conflicting group keyword.
	assert.Equal(t, models.ContentMovie,
		Classify("http://host/MOVIE/123.mkv", "Series Channel", "Anything"))
	assert.Equal(t, models.ContentSeries,
		Classify("http://host/series/123/1/2.mkv", "Movies", "Anything"))
}

func TestClassifyGroupKeywords(t *testing.T) {
	cases := []struct {
		group string
		want  models.ContentKind
	}{
		{"VOD | Action", models.ContentMovie},
		{"Top Movies", models.ContentMovie},
		{"Filmovi", models.ContentMovie},
		{"TV Series", models.ContentSeries},
		{"Serien DE", models.ContentSeries},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify("http://host/stream/1.ts", tc.group, "Title"), "group %q", tc.group)
	}
}

func TestClassifyMovieKeywordBeatsSeriesKeyword(t *testing.T) {
	// "vod" is checked before "series".
	assert.Equal(t, models.ContentMovie,
		Classify("http://host/stream/1.ts", "VOD Series", "Title"))
}

func TestClassifyEpisodeTitleReclassifies(t *testing.T) {
	assert.Equal(t, models.ContentSeries,
		Classify("http://host/stream/1.ts", "General", "The Office S01E02"))
}

func TestClassifyDefaultsToLiveTV(t *testing.T) {
	assert.Equal(t, models.ContentLiveTV,
		Classify("http://host/stream/1.ts", "UK News", "BBC One"))
}

func TestIsDivider(t *testing.T) {
	assert.True(t, IsDivider("", "#### SPORTS ####"))
	assert.False(t, IsDivider("id.1", "#### SPORTS ####"))
	assert.False(t, IsDivider("", "BBC One"))
}
