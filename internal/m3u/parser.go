package m3u

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/abdougueye/diiokko-tv-sub000/internal/models"
)

const (
	// defaultBatchSize bounds every per-kind buffer.
	defaultBatchSize = 5000

	// checkCancelEvery is how often the scan loop looks at the context. Large
	// playlists run for a while; this is the cooperative yield point.
	checkCancelEvery = 100_000

	// maxLineBytes accommodates the very long URL lines some providers emit.
	maxLineBytes = 1024 * 1024
)

// StreamError reports an I/O failure while reading the playlist stream. It
// carries how many entries parsed before the failure so the caller can set
// expectations about partial progress.
type StreamError struct {
	Entries int
	Err     error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("playlist stream failed after %d entries: %v", e.Entries, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// Parser turns a line-oriented extended-M3U stream into catalog entities,
// emitted through a Sink in bounded batches. One Parser handles one refresh
// run of one playlist; all dedup state is scoped to the Parse call.
type Parser struct {
	PlaylistID int64
	Sink       Sink

	// BatchSize overrides the flush bound when > 0. Tests use small values.
	BatchSize int

	// Gate defaults to the built-in blocklist when nil.
	Gate *Gate
}

// parse state: either waiting for a metadata line, or holding one and waiting
// for its URL line.
type parseState int

const (
	awaitingMetadata parseState = iota
	awaitingURL
)

// Parse consumes the stream and returns per-kind counts. Malformed input is
// absorbed silently: orphaned metadata lines are dropped and a second
// metadata line while awaiting a URL replaces the pending one. Read errors
// surface as *StreamError.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*models.RefreshStats, error) {
	size := p.BatchSize
	if size <= 0 {
		size = defaultBatchSize
	}
	gate := p.Gate
	if gate == nil {
		gate = NewGate()
	}

	b := newBatcher(p.Sink, size)
	cats := newCategoryAssigner(p.PlaylistID, p.Sink)
	stats := &models.RefreshStats{}
	seenSeries := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	state := awaitingMetadata
	var meta string
	seq := 0
	lines := 0

	for scanner.Scan() {
		lines++
		if lines%checkCancelEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, extinfPrefix) {
			// In awaitingURL this discards the pending metadata: stray EXTINF
			// lines are common in malformed feeds.
			meta = line
			state = awaitingURL
			continue
		}
		if state != awaitingURL || strings.HasPrefix(line, "#") {
			continue
		}

		seq++
		if err := p.emit(ctx, b, cats, gate, stats, seenSeries, meta, line, seq); err != nil {
			return nil, err
		}
		state = awaitingMetadata
	}
	if err := scanner.Err(); err != nil {
		return nil, &StreamError{Entries: seq, Err: err}
	}

	if err := b.finish(ctx); err != nil {
		return nil, err
	}

	groups := cats.groupNames()
	if err := p.Sink.GroupsFound(ctx, groups); err != nil {
		return nil, err
	}
	stats.Series = len(seenSeries)
	stats.Groups = len(groups)
	return stats, nil
}

// emit materializes one metadata/URL pair. The adult gate runs right after
// group extraction so blocked entries cost nothing beyond the substring scan
// and create no category.
func (p *Parser) emit(ctx context.Context, b *batcher, cats *categoryAssigner, gate *Gate, stats *models.RefreshStats, seenSeries map[string]bool, meta, streamURL string, seq int) error {
	group := extractAttribute(meta, attrGroupTitle)
	if group == "" {
		group = "Other"
	}
	if gate.Blocked(group) {
		stats.Blocked++
		return nil
	}

	name := displayName(meta)
	tvgID := extractAttribute(meta, attrTvgID)
	logo := extractAttribute(meta, attrTvgLogo)

	switch Classify(streamURL, group, name) {
	case models.ContentLiveTV:
		catID, err := cats.assign(ctx, models.ContentLiveTV, group)
		if err != nil {
			return err
		}
		stats.Channels++
		return b.addChannel(ctx, &models.Channel{
			PlaylistID: p.PlaylistID,
			TvgID:      tvgID,
			Name:       name,
			LogoURL:    logo,
			StreamURL:  streamURL,
			GroupName:  group,
			Position:   seq,
			IsDivider:  IsDivider(tvgID, name),
			CategoryID: catID,
		})

	case models.ContentMovie:
		catID, err := cats.assign(ctx, models.ContentMovie, group)
		if err != nil {
			return err
		}
		stats.Movies++
		return b.addMovie(ctx, &models.Movie{
			PlaylistID: p.PlaylistID,
			Name:       name,
			PosterURL:  logo,
			StreamURL:  streamURL,
			GroupName:  group,
			Position:   seq,
			CategoryID: catID,
		})

	default: // series
		info, hasEpisode := ExtractSeriesInfo(name)
		seriesName := name
		if hasEpisode {
			seriesName = info.Name
		}
		if !seenSeries[seriesName] {
			seenSeries[seriesName] = true
			catID, err := cats.assign(ctx, models.ContentSeries, group)
			if err != nil {
				return err
			}
			if err := b.addSeries(ctx, &models.Series{
				PlaylistID: p.PlaylistID,
				Name:       seriesName,
				PosterURL:  logo,
				GroupName:  group,
				Position:   seq,
				CategoryID: catID,
			}); err != nil {
				return err
			}
		}
		if hasEpisode {
			stats.Episodes++
			return b.addEpisode(ctx, pendingEpisode{
				seriesName: seriesName,
				season:     info.Season,
				episode:    info.Episode,
				streamURL:  streamURL,
			})
		}
		return nil
	}
}
