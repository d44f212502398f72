package database

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/abdougueye/diiokko-tv-sub000/internal/models"
)

// Catalog adapts the per-entity stores to the parser's sink interface and to
// the refresher's cleanup/bookkeeping needs. It serializes its own writes:
// two playlists refreshing concurrently share only this object.
type Catalog struct {
	mu sync.Mutex

	playlists  *PlaylistStore
	channels   *ChannelStore
	movies     *MovieStore
	series     *SeriesStore
	episodes   *EpisodeStore
	categories *CategoryStore
	logger     zerolog.Logger
}

func NewCatalog(db *sql.DB, logger zerolog.Logger) *Catalog {
	return &Catalog{
		playlists:  NewPlaylistStore(db),
		channels:   NewChannelStore(db),
		movies:     NewMovieStore(db),
		series:     NewSeriesStore(db),
		episodes:   NewEpisodeStore(db),
		categories: NewCategoryStore(db),
		logger:     logger,
	}
}

func (c *Catalog) ChannelBatch(ctx context.Context, channels []*models.Channel) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channels.AddBatch(ctx, channels)
}

func (c *Catalog) MovieBatch(ctx context.Context, movies []*models.Movie) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.movies.AddBatch(ctx, movies)
}

func (c *Catalog) SeriesBatch(ctx context.Context, series []*models.Series) (map[string]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.series.AddBatch(ctx, series)
}

func (c *Catalog) EpisodeBatch(ctx context.Context, episodes []*models.Episode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.episodes.AddBatch(ctx, episodes)
}

func (c *Catalog) CategoryFound(ctx context.Context, category *models.Category) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.categories.Add(ctx, category)
}

func (c *Catalog) GroupsFound(ctx context.Context, groups []string) error {
	c.logger.Debug().Int("groups", len(groups)).Msg("refresh discovered groups")
	return nil
}

// ClearPlaylist removes every catalog row for a playlist: the full-refresh
// "clear then repopulate" contract, and the retry-attempt cleanup. Episodes
// go first because they reference series.
func (c *Catalog) ClearPlaylist(ctx context.Context, playlistID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.episodes.DeleteByPlaylist(ctx, playlistID); err != nil {
		return err
	}
	if err := c.series.DeleteByPlaylist(ctx, playlistID); err != nil {
		return err
	}
	if err := c.movies.DeleteByPlaylist(ctx, playlistID); err != nil {
		return err
	}
	if err := c.channels.DeleteByPlaylist(ctx, playlistID); err != nil {
		return err
	}
	return c.categories.DeleteByPlaylist(ctx, playlistID)
}

// SavePlaylistStats records a run's outcome on the playlist row.
func (c *Catalog) SavePlaylistStats(ctx context.Context, playlistID int64, stats *models.RefreshStats, refreshedAt time.Time, lastError string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playlists.SaveStats(ctx, playlistID, stats, refreshedAt, lastError)
}
