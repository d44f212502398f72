package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/abdougueye/diiokko-tv-sub000/internal/models"
)

type MovieStore struct {
	db *sql.DB
}

func NewMovieStore(db *sql.DB) *MovieStore {
	return &MovieStore{db: db}
}

// AddBatch inserts movies in a single transaction.
func (s *MovieStore) AddBatch(ctx context.Context, movies []*models.Movie) error {
	if len(movies) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO movies (playlist_id, name, poster_url, stream_url,
			group_name, position, category_id, position_secs, duration_secs)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, m := range movies {
		err = stmt.QueryRowContext(
			ctx,
			m.PlaylistID, m.Name, m.PosterURL, m.StreamURL,
			m.GroupName, m.Position, m.CategoryID, m.PositionSecs, m.DurationSecs,
		).Scan(&m.ID)
		if err != nil {
			return fmt.Errorf("failed to add movie: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListByPlaylist returns movies in display order.
func (s *MovieStore) ListByPlaylist(ctx context.Context, playlistID int64) ([]*models.Movie, error) {
	query := `
		SELECT id, playlist_id, name, poster_url, stream_url,
			group_name, position, category_id, position_secs, duration_secs
		FROM movies
		WHERE playlist_id = $1
		ORDER BY position ASC
	`
	rows, err := s.db.QueryContext(ctx, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	defer rows.Close()

	var movies []*models.Movie
	for rows.Next() {
		var m models.Movie
		var categoryID sql.NullInt64
		err := rows.Scan(
			&m.ID, &m.PlaylistID, &m.Name, &m.PosterURL, &m.StreamURL,
			&m.GroupName, &m.Position, &categoryID, &m.PositionSecs, &m.DurationSecs,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		if categoryID.Valid {
			m.CategoryID = &categoryID.Int64
		}
		movies = append(movies, &m)
	}
	return movies, rows.Err()
}

// UpdateProgress stores player watch progress for a movie.
func (s *MovieStore) UpdateProgress(ctx context.Context, id, positionSecs, durationSecs int64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE movies SET position_secs = $1, duration_secs = $2 WHERE id = $3`,
		positionSecs, durationSecs, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update movie progress: %w", err)
	}
	return requireRow(result)
}

// DeleteByPlaylist clears all movies for a playlist ahead of repopulation.
func (s *MovieStore) DeleteByPlaylist(ctx context.Context, playlistID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM movies WHERE playlist_id = $1`, playlistID); err != nil {
		return fmt.Errorf("failed to delete movies: %w", err)
	}
	return nil
}
