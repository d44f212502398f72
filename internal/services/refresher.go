package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/abdougueye/diiokko-tv-sub000/internal/fetch"
	"github.com/abdougueye/diiokko-tv-sub000/internal/m3u"
	"github.com/abdougueye/diiokko-tv-sub000/internal/models"
	"github.com/abdougueye/diiokko-tv-sub000/internal/xtream"
)

const (
	// maxAttempts bounds the outer download+parse retry loop.
	maxAttempts = 3
	// backoffStep is multiplied by the attempt number: linear backoff.
	backoffStep = 3 * time.Second
)

// Catalog is what the refresher needs from persistence: the parser sink plus
// per-playlist cleanup and stats bookkeeping. database.Catalog implements it.
type Catalog interface {
	m3u.Sink
	ClearPlaylist(ctx context.Context, playlistID int64) error
	SavePlaylistStats(ctx context.Context, playlistID int64, stats *models.RefreshStats, refreshedAt time.Time, lastError string) error
}

// Downloader stages a remote playlist to a local file. fetch.Fetcher
// implements it.
type Downloader interface {
	Download(ctx context.Context, url string) (string, error)
}

// Refresher runs the full refresh cycle for one playlist: download to a
// staging file, clear the previous catalog, stream-parse into the sink, and
// record statistics. Transient failures retry up to maxAttempts with partial
// rows cleaned up between attempts.
type Refresher struct {
	catalog    Catalog
	downloader Downloader
	logger     zerolog.Logger

	// Backoff overrides backoffStep when > 0. Tests use small values.
	Backoff time.Duration

	// ExtraBlockedGroups extends the adult-content blocklist from config.
	ExtraBlockedGroups []string
}

func NewRefresher(catalog Catalog, downloader Downloader, logger zerolog.Logger) *Refresher {
	return &Refresher{catalog: catalog, downloader: downloader, logger: logger}
}

// Refresh ingests one playlist. On success the playlist row carries fresh
// statistics; on failure the returned error is already user-presentable via
// UserMessage. A failed scheduled refresh leaves the previous catalog state
// untouched unless a run had already been decided (download succeeded).
func (r *Refresher) Refresh(ctx context.Context, p *models.Playlist) (*models.RefreshStats, error) {
	srcURL, err := sourceURL(p)
	if err != nil {
		return nil, err
	}

	step := r.Backoff
	if step <= 0 {
		step = backoffStep
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			// Drop whatever the failed attempt committed before going again.
			if err := r.catalog.ClearPlaylist(ctx, p.ID); err != nil {
				return nil, err
			}
			select {
			case <-time.After(step * time.Duration(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		stats, err := r.runOnce(ctx, p, srcURL)
		if err == nil {
			now := time.Now()
			if err := r.catalog.SavePlaylistStats(ctx, p.ID, stats, now, ""); err != nil {
				return nil, err
			}
			r.logger.Info().
				Int64("playlist", p.ID).
				Int("channels", stats.Channels).
				Int("movies", stats.Movies).
				Int("series", stats.Series).
				Int("episodes", stats.Episodes).
				Int("blocked", stats.Blocked).
				Msg("playlist refresh complete")
			return stats, nil
		}

		lastErr = err
		r.logger.Warn().Int64("playlist", p.ID).Int("attempt", attempt).Err(err).Msg("playlist refresh attempt failed")

		if !isRetryable(err) || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

// runOnce is one Downloading→Parsing pass. The catalog is cleared only after
// the download succeeded, so a dead provider never wipes an existing catalog.
// The staging file is removed on every exit path.
func (r *Refresher) runOnce(ctx context.Context, p *models.Playlist, srcURL string) (*models.RefreshStats, error) {
	path, err := r.downloader.Download(ctx, srcURL)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open staged playlist: %w", err)
	}
	defer f.Close()

	if err := r.catalog.ClearPlaylist(ctx, p.ID); err != nil {
		return nil, err
	}

	parser := &m3u.Parser{
		PlaylistID: p.ID,
		Sink:       r.catalog,
		Gate:       m3u.NewGate(r.ExtraBlockedGroups...),
	}
	return parser.Parse(ctx, bufio.NewReaderSize(f, 256*1024))
}

// sourceURL resolves the playlist's download URL from its locator fields.
func sourceURL(p *models.Playlist) (string, error) {
	switch p.Kind {
	case models.PlaylistKindXtream:
		return xtream.PlaylistURL(p.ServerURL, p.Username, p.Password)
	case models.PlaylistKindM3U:
		if p.URL == "" {
			return "", errors.New("playlist has no URL")
		}
		return p.URL, nil
	default:
		return "", fmt.Errorf("unknown playlist kind %q", p.Kind)
	}
}

// isRetryable decides whether the outer attempt loop should go again.
func isRetryable(err error) bool {
	var ferr *fetch.Error
	if errors.As(err, &ferr) {
		return ferr.Class != fetch.ClassFatal
	}
	var serr *m3u.StreamError
	if errors.As(err, &serr) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return false
}
