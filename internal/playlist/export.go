package playlist

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/abdougueye/diiokko-tv-sub000/internal/database"
)

// Exporter re-serializes a stored catalog as an extended M3U file, so other
// players on the network can consume the merged, filtered catalog instead of
// hitting the provider directly.
type Exporter struct {
	channels *database.ChannelStore
	movies   *database.MovieStore
	series   *database.SeriesStore
	episodes *database.EpisodeStore
}

func NewExporter(channels *database.ChannelStore, movies *database.MovieStore, series *database.SeriesStore, episodes *database.EpisodeStore) *Exporter {
	return &Exporter{channels: channels, movies: movies, series: series, episodes: episodes}
}

// WriteM3U writes the full catalog of one playlist. Dividers are skipped;
// they carry no stream.
func (e *Exporter) WriteM3U(ctx context.Context, w io.Writer, playlistID int64) error {
	if _, err := io.WriteString(w, "#EXTM3U\n"); err != nil {
		return err
	}

	channels, err := e.channels.ListByPlaylist(ctx, playlistID)
	if err != nil {
		return err
	}
	for _, c := range channels {
		if c.IsDivider {
			continue
		}
		writeEntry(w, entry{
			tvgID:   c.TvgID,
			name:    c.Name,
			logo:    c.LogoURL,
			group:   c.GroupName,
			url:     c.StreamURL,
		})
	}

	movies, err := e.movies.ListByPlaylist(ctx, playlistID)
	if err != nil {
		return err
	}
	for _, m := range movies {
		writeEntry(w, entry{
			name:  m.Name,
			logo:  m.PosterURL,
			group: m.GroupName,
			url:   m.StreamURL,
		})
	}

	series, err := e.series.ListByPlaylist(ctx, playlistID)
	if err != nil {
		return err
	}
	for _, s := range series {
		episodes, err := e.episodes.ListBySeries(ctx, s.ID)
		if err != nil {
			return err
		}
		for _, ep := range episodes {
			writeEntry(w, entry{
				name:  fmt.Sprintf("%s S%02d E%02d", s.Name, ep.Season, ep.Episode),
				logo:  s.PosterURL,
				group: s.GroupName,
				url:   ep.StreamURL,
			})
		}
	}
	return nil
}

type entry struct {
	tvgID string
	name  string
	logo  string
	group string
	url   string
}

func writeEntry(w io.Writer, e entry) {
	var b strings.Builder
	b.WriteString(`#EXTINF:-1`)
	if e.tvgID != "" {
		fmt.Fprintf(&b, ` tvg-id=%q`, e.tvgID)
	}
	fmt.Fprintf(&b, ` tvg-name=%q`, e.name)
	if e.logo != "" {
		fmt.Fprintf(&b, ` tvg-logo=%q`, e.logo)
	}
	fmt.Fprintf(&b, ` group-title=%q`, e.group)
	b.WriteString(",")
	b.WriteString(e.name)
	b.WriteString("\n")
	b.WriteString(e.url)
	b.WriteString("\n")
	io.WriteString(w, b.String())
}
