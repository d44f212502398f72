package models

import "time"

// PlaylistKind identifies how a playlist source is located.
type PlaylistKind string

const (
	PlaylistKindM3U    PlaylistKind = "m3u"
	PlaylistKindXtream PlaylistKind = "xtream"
)

// ContentKind is the classified content category of a catalog entry.
type ContentKind string

const (
	ContentLiveTV ContentKind = "live_tv"
	ContentMovie  ContentKind = "movie"
	ContentSeries ContentKind = "series"
)

// Playlist is one subscribed feed. For kind "m3u" the URL points at the
// playlist file; for kind "xtream" the server/username/password triple is
// used to build the download URL.
type Playlist struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Kind      PlaylistKind `json:"kind"`
	URL       string       `json:"url,omitempty"`
	ServerURL string       `json:"server_url,omitempty"`
	Username  string       `json:"username,omitempty"`
	Password  string       `json:"-"`
	EPGURL    string       `json:"epg_url,omitempty"`
	Active    bool         `json:"active"`

	// Last refresh statistics.
	ChannelCount  int        `json:"channel_count"`
	MovieCount    int        `json:"movie_count"`
	SeriesCount   int        `json:"series_count"`
	EpisodeCount  int        `json:"episode_count"`
	GroupCount    int        `json:"group_count"`
	LastRefreshAt *time.Time `json:"last_refresh_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Channel is a live TV entry. Dividers are placeholder rows some providers
// insert to separate sections; they keep their position but are not playable.
type Channel struct {
	ID         int64  `json:"id"`
	PlaylistID int64  `json:"playlist_id"`
	TvgID      string `json:"tvg_id,omitempty"`
	Name       string `json:"name"`
	LogoURL    string `json:"logo_url,omitempty"`
	StreamURL  string `json:"stream_url"`
	GroupName  string `json:"group_name"`
	Position   int    `json:"position"`
	IsDivider  bool   `json:"is_divider"`
	CategoryID *int64 `json:"category_id,omitempty"`
}

// Movie is a VOD entry. Watch progress lives on the row and is lost on
// refresh: a refresh clears and repopulates the whole catalog, so
// PositionSecs and DurationSecs start over at zero.
type Movie struct {
	ID           int64  `json:"id"`
	PlaylistID   int64  `json:"playlist_id"`
	Name         string `json:"name"`
	PosterURL    string `json:"poster_url,omitempty"`
	StreamURL    string `json:"stream_url"`
	GroupName    string `json:"group_name"`
	Position     int    `json:"position"`
	CategoryID   *int64 `json:"category_id,omitempty"`
	PositionSecs int64  `json:"position_secs"`
	DurationSecs int64  `json:"duration_secs"`
}

// Series is the parent of zero or more episodes. Identity within one refresh
// run is the extracted series name.
type Series struct {
	ID         int64  `json:"id"`
	PlaylistID int64  `json:"playlist_id"`
	Name       string `json:"name"`
	PosterURL  string `json:"poster_url,omitempty"`
	GroupName  string `json:"group_name"`
	Position   int    `json:"position"`
	CategoryID *int64 `json:"category_id,omitempty"`
}

// Episode always carries a persisted series identifier by the time it reaches
// the sink.
type Episode struct {
	ID           int64  `json:"id"`
	SeriesID     int64  `json:"series_id"`
	Season       int    `json:"season"`
	Episode      int    `json:"episode"`
	StreamURL    string `json:"stream_url"`
	PositionSecs int64  `json:"position_secs"`
	DurationSecs int64  `json:"duration_secs"`
}

// Category is a (playlist, content kind, group name) triple created at most
// once per refresh run. Position gives stable display ordering.
type Category struct {
	ID         int64       `json:"id"`
	PlaylistID int64       `json:"playlist_id"`
	Kind       ContentKind `json:"kind"`
	Name       string      `json:"name"`
	Position   int         `json:"position"`
}

// RefreshStats summarizes one refresh run for the user-facing summary.
type RefreshStats struct {
	Channels int `json:"channels"`
	Movies   int `json:"movies"`
	Series   int `json:"series"`
	Episodes int `json:"episodes"`
	Groups   int `json:"groups"`
	Blocked  int `json:"blocked"`
}

// User is an API account. Passwords are stored bcrypt-hashed.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}
