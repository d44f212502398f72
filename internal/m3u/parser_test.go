package m3u

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdougueye/diiokko-tv-sub000/internal/models"
)

// fakeSink records everything and hands out sequential series and category
// identifiers.
type fakeSink struct {
	channels   []*models.Channel
	movies     []*models.Movie
	series     []*models.Series
	episodes   []*models.Episode
	categories []*models.Category
	groups     []string

	channelBatches int
	nextID         int64
}

func (f *fakeSink) ChannelBatch(_ context.Context, channels []*models.Channel) error {
	f.channels = append(f.channels, channels...)
	f.channelBatches++
	return nil
}

func (f *fakeSink) MovieBatch(_ context.Context, movies []*models.Movie) error {
	f.movies = append(f.movies, movies...)
	return nil
}

func (f *fakeSink) SeriesBatch(_ context.Context, series []*models.Series) (map[string]int64, error) {
	ids := make(map[string]int64, len(series))
	for _, s := range series {
		f.nextID++
		s.ID = f.nextID
		ids[s.Name] = s.ID
	}
	f.series = append(f.series, series...)
	return ids, nil
}

func (f *fakeSink) EpisodeBatch(_ context.Context, episodes []*models.Episode) error {
	f.episodes = append(f.episodes, episodes...)
	return nil
}

func (f *fakeSink) CategoryFound(_ context.Context, c *models.Category) (int64, error) {
	f.nextID++
	c.ID = f.nextID
	f.categories = append(f.categories, c)
	return c.ID, nil
}

func (f *fakeSink) GroupsFound(_ context.Context, groups []string) error {
	f.groups = groups
	return nil
}

func parseString(t *testing.T, sink Sink, input string) *models.RefreshStats {
	t.Helper()
	p := &Parser{PlaylistID: 1, Sink: sink}
	stats, err := p.Parse(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	return stats
}

func TestParseSingleMovie(t *testing.T) {
	sink := &fakeSink{}
	stats := parseString(t, sink, `#EXTM3U
#EXTINF:-1 tvg-id="" tvg-name="A" group-title="G",A
http://h/movie/1.mkv
`)

	require.Len(t, sink.movies, 1)
	assert.Equal(t, "A", sink.movies[0].Name)
	assert.Equal(t, "G", sink.movies[0].GroupName)
	assert.Empty(t, sink.channels)
	assert.Equal(t, 1, stats.Movies)
	assert.Equal(t, 0, stats.Channels)
}

func TestParseSeriesWithEpisode(t *testing.T) {
	sink := &fakeSink{}
	stats := parseString(t, sink, `#EXTM3U
#EXTINF:-1 tvg-name="NF - Show (2023) S01 E05" group-title="Series",ignored
http://h/series/55/1/5.mkv
`)

	require.Len(t, sink.series, 1)
	assert.Equal(t, "NF - Show (2023)", sink.series[0].Name)
	require.Len(t, sink.episodes, 1)
	assert.Equal(t, sink.series[0].ID, sink.episodes[0].SeriesID)
	assert.Equal(t, 1, sink.episodes[0].Season)
	assert.Equal(t, 5, sink.episodes[0].Episode)
	assert.Equal(t, 1, stats.Series)
	assert.Equal(t, 1, stats.Episodes)
}

func TestParseSeriesDedup(t *testing.T) {
	sink := &fakeSink{}
	stats := parseString(t, sink, `#EXTM3U
#EXTINF:-1 tvg-name="The Office S01E01" group-title="Series",x
http://h/series/1/1/1.mkv
#EXTINF:-1 tvg-name="The Office S01E02" group-title="Series",x
http://h/series/1/1/2.mkv
`)

	require.Len(t, sink.series, 1)
	assert.Equal(t, "The Office", sink.series[0].Name)
	require.Len(t, sink.episodes, 2)
	for _, ep := range sink.episodes {
		assert.Equal(t, sink.series[0].ID, ep.SeriesID)
	}
	assert.Equal(t, 1, stats.Series)
	assert.Equal(t, 2, stats.Episodes)
}

func TestParseBlockedGroup(t *testing.T) {
	sink := &fakeSink{}
	stats := parseString(t, sink, `#EXTM3U
#EXTINF:-1 tvg-name="Something" group-title="18+ Content",Something
http://h/movie/1.mkv
`)

	assert.Empty(t, sink.movies)
	assert.Empty(t, sink.channels)
	assert.Empty(t, sink.categories)
	assert.Equal(t, 1, stats.Blocked)
	assert.Equal(t, 0, stats.Movies)
}

func TestParseLiveChannelAndDivider(t *testing.T) {
	sink := &fakeSink{}
	stats := parseString(t, sink, `#EXTM3U
#EXTINF:-1 tvg-id="" tvg-name="#### SPORTS ####" group-title="Sports",#### SPORTS ####
http://h/stream/0.ts
#EXTINF:-1 tvg-id="sky.uk" tvg-name="Sky Sports" group-title="Sports",Sky Sports
http://h/stream/1.ts
`)

	require.Len(t, sink.channels, 2)
	assert.True(t, sink.channels[0].IsDivider)
	assert.False(t, sink.channels[1].IsDivider)
	assert.Equal(t, 1, sink.channels[0].Position)
	assert.Equal(t, 2, sink.channels[1].Position)
	assert.Equal(t, 2, stats.Channels)
}

func TestParseDefaultGroup(t *testing.T) {
	sink := &fakeSink{}
	parseString(t, sink, `#EXTM3U
#EXTINF:-1 tvg-name="BBC One",BBC One
http://h/stream/1.ts
`)

	require.Len(t, sink.channels, 1)
	assert.Equal(t, "Other", sink.channels[0].GroupName)
}

func TestParseOrphanedMetadataDropped(t *testing.T) {
	sink := &fakeSink{}
	stats := parseString(t, sink, `#EXTM3U
#EXTINF:-1 tvg-name="Dangling",Dangling
`)

	assert.Empty(t, sink.channels)
	assert.Equal(t, 0, stats.Channels)
}

func TestParseDoubleMetadataKeepsLatest(t *testing.T) {
	sink := &fakeSink{}
	parseString(t, sink, `#EXTM3U
#EXTINF:-1 tvg-name="First",First
#EXTINF:-1 tvg-name="Second",Second
http://h/stream/1.ts
`)

	require.Len(t, sink.channels, 1)
	assert.Equal(t, "Second", sink.channels[0].Name)
}

func TestParseURLWithoutMetadataIgnored(t *testing.T) {
	sink := &fakeSink{}
	parseString(t, sink, `#EXTM3U
http://h/stream/1.ts
#EXTINF:-1 tvg-name="BBC One",BBC One
http://h/stream/2.ts
`)

	require.Len(t, sink.channels, 1)
	assert.Equal(t, "http://h/stream/2.ts", sink.channels[0].StreamURL)
}

func TestParseCategoriesOncePerKindAndGroup(t *testing.T) {
	sink := &fakeSink{}
	stats := parseString(t, sink, `#EXTM3U
#EXTINF:-1 tvg-name="C1" group-title="Mixed",C1
http://h/stream/1.ts
#EXTINF:-1 tvg-name="C2" group-title="Mixed",C2
http://h/stream/2.ts
#EXTINF:-1 tvg-name="M1" group-title="Mixed",M1
http://h/movie/1.mkv
`)

	// Same group name, two content kinds, one category each.
	require.Len(t, sink.categories, 2)
	assert.Equal(t, models.ContentLiveTV, sink.categories[0].Kind)
	assert.Equal(t, models.ContentMovie, sink.categories[1].Kind)
	assert.Equal(t, []string{"Mixed"}, sink.groups)
	assert.Equal(t, 1, stats.Groups)

	require.Len(t, sink.channels, 2)
	require.NotNil(t, sink.channels[0].CategoryID)
	require.NotNil(t, sink.channels[1].CategoryID)
	assert.Equal(t, *sink.channels[0].CategoryID, *sink.channels[1].CategoryID)
}

func TestParseBatchFlushing(t *testing.T) {
	sink := &fakeSink{}
	p := &Parser{PlaylistID: 1, Sink: sink, BatchSize: 2}

	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	for i := 0; i < 5; i++ {
		b.WriteString(`#EXTINF:-1 tvg-name="Ch" group-title="G",Ch` + "\n")
		b.WriteString("http://h/stream/1.ts\n")
	}

	stats, err := p.Parse(context.Background(), strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Channels)
	assert.Len(t, sink.channels, 5)
	// Two full batches plus the finish flush.
	assert.Equal(t, 3, sink.channelBatches)
}

func TestParseEpisodeAfterSeriesFlushConvertsImmediately(t *testing.T) {
	sink := &fakeSink{}
	p := &Parser{PlaylistID: 1, Sink: sink, BatchSize: 1}

	input := `#EXTM3U
#EXTINF:-1 tvg-name="Show S01E01" group-title="Series",x
http://h/series/1/1/1.mkv
#EXTINF:-1 tvg-name="Show S01E02" group-title="Series",x
http://h/series/1/1/2.mkv
`
	_, err := p.Parse(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, sink.series, 1)
	require.Len(t, sink.episodes, 2)
}

func TestParseIdempotentCounts(t *testing.T) {
	input := `#EXTM3U
#EXTINF:-1 tvg-name="Show S01E01" group-title="Series",x
http://h/series/1/1/1.mkv
#EXTINF:-1 tvg-name="M" group-title="VOD",M
http://h/movie/1.mkv
#EXTINF:-1 tvg-name="BBC One" group-title="UK",BBC One
http://h/stream/1.ts
`
	first := parseString(t, &fakeSink{}, input)
	second := parseString(t, &fakeSink{}, input)
	assert.Equal(t, first, second)
}

type failingReader struct {
	data string
	read bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.read {
		r.read = true
		return copy(p, r.data), nil
	}
	return 0, errors.New("connection reset")
}

func TestParseStreamError(t *testing.T) {
	sink := &fakeSink{}
	p := &Parser{PlaylistID: 1, Sink: sink}

	r := &failingReader{data: "#EXTM3U\n#EXTINF:-1 tvg-name=\"A\" group-title=\"G\",A\nhttp://h/movie/1.mkv\n"}
	_, err := p.Parse(context.Background(), r)

	var serr *StreamError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 1, serr.Entries)
}
