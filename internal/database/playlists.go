package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/abdougueye/diiokko-tv-sub000/internal/models"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

type PlaylistStore struct {
	db *sql.DB
}

func NewPlaylistStore(db *sql.DB) *PlaylistStore {
	return &PlaylistStore{db: db}
}

// Add inserts a new playlist source.
func (s *PlaylistStore) Add(ctx context.Context, p *models.Playlist) error {
	query := `
		INSERT INTO playlists (name, kind, url, server_url, username, password, epg_url, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRowContext(
		ctx, query,
		p.Name, p.Kind, p.URL, p.ServerURL, p.Username, p.Password, p.EPGURL, p.Active,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to add playlist: %w", err)
	}
	return nil
}

// Get retrieves a playlist by ID.
func (s *PlaylistStore) Get(ctx context.Context, id int64) (*models.Playlist, error) {
	query := `
		SELECT id, name, kind, url, server_url, username, password, epg_url, active,
			channel_count, movie_count, series_count, episode_count, group_count,
			last_refresh_at, last_error, created_at, updated_at
		FROM playlists
		WHERE id = $1
	`
	p, err := scanPlaylist(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}
	return p, nil
}

// List returns all playlists.
func (s *PlaylistStore) List(ctx context.Context) ([]*models.Playlist, error) {
	return s.list(ctx, `
		SELECT id, name, kind, url, server_url, username, password, epg_url, active,
			channel_count, movie_count, series_count, episode_count, group_count,
			last_refresh_at, last_error, created_at, updated_at
		FROM playlists
		ORDER BY id ASC
	`)
}

// ListActive returns playlists eligible for scheduled refresh.
func (s *PlaylistStore) ListActive(ctx context.Context) ([]*models.Playlist, error) {
	return s.list(ctx, `
		SELECT id, name, kind, url, server_url, username, password, epg_url, active,
			channel_count, movie_count, series_count, episode_count, group_count,
			last_refresh_at, last_error, created_at, updated_at
		FROM playlists
		WHERE active = true
		ORDER BY id ASC
	`)
}

func (s *PlaylistStore) list(ctx context.Context, query string) ([]*models.Playlist, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.Playlist
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

// Update rewrites the mutable source fields.
func (s *PlaylistStore) Update(ctx context.Context, p *models.Playlist) error {
	query := `
		UPDATE playlists
		SET name = $1, kind = $2, url = $3, server_url = $4, username = $5,
			password = $6, epg_url = $7, active = $8, updated_at = $9
		WHERE id = $10
	`
	result, err := s.db.ExecContext(
		ctx, query,
		p.Name, p.Kind, p.URL, p.ServerURL, p.Username, p.Password, p.EPGURL,
		p.Active, time.Now(), p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}
	return requireRow(result)
}

// SaveStats records the outcome of a refresh run on the playlist row.
func (s *PlaylistStore) SaveStats(ctx context.Context, id int64, stats *models.RefreshStats, refreshedAt time.Time, lastError string) error {
	query := `
		UPDATE playlists
		SET channel_count = $1, movie_count = $2, series_count = $3,
			episode_count = $4, group_count = $5, last_refresh_at = $6,
			last_error = $7, updated_at = $8
		WHERE id = $9
	`
	result, err := s.db.ExecContext(
		ctx, query,
		stats.Channels, stats.Movies, stats.Series, stats.Episodes, stats.Groups,
		refreshedAt, lastError, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to save refresh stats: %w", err)
	}
	return requireRow(result)
}

// SaveError records a failed refresh without touching counts or the last
// successful refresh time.
func (s *PlaylistStore) SaveError(ctx context.Context, id int64, lastError string) error {
	query := `UPDATE playlists SET last_error = $1, updated_at = $2 WHERE id = $3`
	result, err := s.db.ExecContext(ctx, query, lastError, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to save refresh error: %w", err)
	}
	return requireRow(result)
}

// Delete removes a playlist. Catalog rows cascade via foreign keys.
func (s *PlaylistStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	return requireRow(result)
}

func scanPlaylist(row interface{ Scan(...interface{}) error }) (*models.Playlist, error) {
	var p models.Playlist
	var lastRefresh sql.NullTime
	var lastError sql.NullString
	err := row.Scan(
		&p.ID, &p.Name, &p.Kind, &p.URL, &p.ServerURL, &p.Username, &p.Password,
		&p.EPGURL, &p.Active, &p.ChannelCount, &p.MovieCount, &p.SeriesCount,
		&p.EpisodeCount, &p.GroupCount, &lastRefresh, &lastError,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastRefresh.Valid {
		p.LastRefreshAt = &lastRefresh.Time
	}
	if lastError.Valid {
		p.LastError = lastError.String
	}
	return &p, nil
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
