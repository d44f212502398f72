package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/abdougueye/diiokko-tv-sub000/internal/models"
)

type SeriesStore struct {
	db *sql.DB
}

func NewSeriesStore(db *sql.DB) *SeriesStore {
	return &SeriesStore{db: db}
}

// AddBatch inserts series in a single transaction and returns the assigned
// identifier for every series name in the batch. The parser uses the map to
// resolve episodes it had to hold back.
func (s *SeriesStore) AddBatch(ctx context.Context, series []*models.Series) (map[string]int64, error) {
	ids := make(map[string]int64, len(series))
	if len(series) == 0 {
		return ids, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO series (playlist_id, name, poster_url, group_name, position, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, sr := range series {
		err = stmt.QueryRowContext(
			ctx,
			sr.PlaylistID, sr.Name, sr.PosterURL, sr.GroupName, sr.Position, sr.CategoryID,
		).Scan(&sr.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to add series: %w", err)
		}
		ids[sr.Name] = sr.ID
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return ids, nil
}

// ListByPlaylist returns series in display order.
func (s *SeriesStore) ListByPlaylist(ctx context.Context, playlistID int64) ([]*models.Series, error) {
	query := `
		SELECT id, playlist_id, name, poster_url, group_name, position, category_id
		FROM series
		WHERE playlist_id = $1
		ORDER BY position ASC
	`
	rows, err := s.db.QueryContext(ctx, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}
	defer rows.Close()

	var series []*models.Series
	for rows.Next() {
		var sr models.Series
		var categoryID sql.NullInt64
		err := rows.Scan(
			&sr.ID, &sr.PlaylistID, &sr.Name, &sr.PosterURL,
			&sr.GroupName, &sr.Position, &categoryID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan series: %w", err)
		}
		if categoryID.Valid {
			sr.CategoryID = &categoryID.Int64
		}
		series = append(series, &sr)
	}
	return series, rows.Err()
}

// DeleteByPlaylist clears all series for a playlist; episodes cascade.
func (s *SeriesStore) DeleteByPlaylist(ctx context.Context, playlistID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM series WHERE playlist_id = $1`, playlistID); err != nil {
		return fmt.Errorf("failed to delete series: %w", err)
	}
	return nil
}
