package m3u

import (
	"context"

	"github.com/abdougueye/diiokko-tv-sub000/internal/models"
)

// Sink receives parsed entities in bounded batches. SeriesBatch must return a
// persisted identifier for every series it is given within the same run;
// episodes are only emitted once their series identifier is known. The sink
// serializes its own writes.
type Sink interface {
	ChannelBatch(ctx context.Context, channels []*models.Channel) error
	MovieBatch(ctx context.Context, movies []*models.Movie) error
	SeriesBatch(ctx context.Context, series []*models.Series) (map[string]int64, error)
	EpisodeBatch(ctx context.Context, episodes []*models.Episode) error
	CategoryFound(ctx context.Context, category *models.Category) (int64, error)
	GroupsFound(ctx context.Context, groups []string) error
}

// pendingEpisode carries episode data keyed by series name until the series
// batch flush returns a real identifier.
type pendingEpisode struct {
	seriesName string
	season     int
	episode    int
	streamURL  string
}

// batcher buffers entities per kind and flushes them through the sink at a
// fixed capacity, resolving the series→episode forward reference as series
// identifiers come back.
type batcher struct {
	sink Sink
	size int

	channels []*models.Channel
	movies   []*models.Movie
	series   []*models.Series
	episodes []*models.Episode
	pending  []pendingEpisode

	seriesIDs map[string]int64
}

func newBatcher(sink Sink, size int) *batcher {
	return &batcher{
		sink:      sink,
		size:      size,
		seriesIDs: make(map[string]int64),
	}
}

func (b *batcher) addChannel(ctx context.Context, c *models.Channel) error {
	b.channels = append(b.channels, c)
	if len(b.channels) >= b.size {
		return b.flushChannels(ctx)
	}
	return nil
}

func (b *batcher) addMovie(ctx context.Context, m *models.Movie) error {
	b.movies = append(b.movies, m)
	if len(b.movies) >= b.size {
		return b.flushMovies(ctx)
	}
	return nil
}

func (b *batcher) addSeries(ctx context.Context, s *models.Series) error {
	b.series = append(b.series, s)
	if len(b.series) >= b.size {
		return b.flushSeries(ctx)
	}
	return nil
}

// addEpisode queues an episode under its series name. Episodes whose series
// has already been flushed convert immediately; the rest wait for the next
// series flush.
func (b *batcher) addEpisode(ctx context.Context, p pendingEpisode) error {
	if id, ok := b.seriesIDs[p.seriesName]; ok {
		return b.appendEpisode(ctx, id, p)
	}
	b.pending = append(b.pending, p)
	return nil
}

func (b *batcher) flushChannels(ctx context.Context) error {
	if len(b.channels) == 0 {
		return nil
	}
	if err := b.sink.ChannelBatch(ctx, b.channels); err != nil {
		return err
	}
	b.channels = nil
	return nil
}

func (b *batcher) flushMovies(ctx context.Context) error {
	if len(b.movies) == 0 {
		return nil
	}
	if err := b.sink.MovieBatch(ctx, b.movies); err != nil {
		return err
	}
	b.movies = nil
	return nil
}

// flushSeries sends the series buffer and converts any pending episodes whose
// series just resolved.
func (b *batcher) flushSeries(ctx context.Context) error {
	if len(b.series) == 0 {
		return nil
	}
	ids, err := b.sink.SeriesBatch(ctx, b.series)
	if err != nil {
		return err
	}
	for name, id := range ids {
		b.seriesIDs[name] = id
	}
	b.series = nil
	return b.resolvePending(ctx)
}

func (b *batcher) resolvePending(ctx context.Context) error {
	unresolved := b.pending[:0]
	for _, p := range b.pending {
		id, ok := b.seriesIDs[p.seriesName]
		if !ok {
			unresolved = append(unresolved, p)
			continue
		}
		if err := b.appendEpisode(ctx, id, p); err != nil {
			return err
		}
	}
	b.pending = unresolved
	return nil
}

func (b *batcher) appendEpisode(ctx context.Context, seriesID int64, p pendingEpisode) error {
	b.episodes = append(b.episodes, &models.Episode{
		SeriesID:  seriesID,
		Season:    p.season,
		Episode:   p.episode,
		StreamURL: p.streamURL,
	})
	if len(b.episodes) >= b.size {
		return b.flushEpisodes(ctx)
	}
	return nil
}

func (b *batcher) flushEpisodes(ctx context.Context) error {
	if len(b.episodes) == 0 {
		return nil
	}
	if err := b.sink.EpisodeBatch(ctx, b.episodes); err != nil {
		return err
	}
	b.episodes = nil
	return nil
}

// finish force-flushes everything at end of stream. Series flush strictly
// precedes the remaining episodes so no episode is orphaned when its series
// appeared earlier in the run. Episodes whose series never resolved are
// dropped, not error'd.
func (b *batcher) finish(ctx context.Context) error {
	if err := b.flushChannels(ctx); err != nil {
		return err
	}
	if err := b.flushMovies(ctx); err != nil {
		return err
	}
	if err := b.flushSeries(ctx); err != nil {
		return err
	}
	if err := b.resolvePending(ctx); err != nil {
		return err
	}
	b.pending = nil
	return b.flushEpisodes(ctx)
}
