package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/abdougueye/diiokko-tv-sub000/internal/models"
)

type EpisodeStore struct {
	db *sql.DB
}

func NewEpisodeStore(db *sql.DB) *EpisodeStore {
	return &EpisodeStore{db: db}
}

// AddBatch inserts episodes in a single transaction. Every episode carries a
// persisted series identifier by the time it gets here.
func (s *EpisodeStore) AddBatch(ctx context.Context, episodes []*models.Episode) error {
	if len(episodes) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO episodes (series_id, season, episode, stream_url, position_secs, duration_secs)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range episodes {
		err = stmt.QueryRowContext(
			ctx,
			e.SeriesID, e.Season, e.Episode, e.StreamURL, e.PositionSecs, e.DurationSecs,
		).Scan(&e.ID)
		if err != nil {
			return fmt.Errorf("failed to add episode: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListBySeries returns a series' episodes in season/episode order.
func (s *EpisodeStore) ListBySeries(ctx context.Context, seriesID int64) ([]*models.Episode, error) {
	query := `
		SELECT id, series_id, season, episode, stream_url, position_secs, duration_secs
		FROM episodes
		WHERE series_id = $1
		ORDER BY season ASC, episode ASC
	`
	rows, err := s.db.QueryContext(ctx, query, seriesID)
	if err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}
	defer rows.Close()

	var episodes []*models.Episode
	for rows.Next() {
		var e models.Episode
		err := rows.Scan(
			&e.ID, &e.SeriesID, &e.Season, &e.Episode, &e.StreamURL,
			&e.PositionSecs, &e.DurationSecs,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan episode: %w", err)
		}
		episodes = append(episodes, &e)
	}
	return episodes, rows.Err()
}

// UpdateProgress stores player watch progress for an episode.
func (s *EpisodeStore) UpdateProgress(ctx context.Context, id, positionSecs, durationSecs int64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE episodes SET position_secs = $1, duration_secs = $2 WHERE id = $3`,
		positionSecs, durationSecs, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update episode progress: %w", err)
	}
	return requireRow(result)
}

// DeleteByPlaylist clears episodes for a playlist via their parent series.
func (s *EpisodeStore) DeleteByPlaylist(ctx context.Context, playlistID int64) error {
	query := `
		DELETE FROM episodes
		WHERE series_id IN (SELECT id FROM series WHERE playlist_id = $1)
	`
	if _, err := s.db.ExecContext(ctx, query, playlistID); err != nil {
		return fmt.Errorf("failed to delete episodes: %w", err)
	}
	return nil
}
