package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/abdougueye/diiokko-tv-sub000/internal/models"
)

type ChannelStore struct {
	db *sql.DB
}

func NewChannelStore(db *sql.DB) *ChannelStore {
	return &ChannelStore{db: db}
}

// AddBatch inserts channels in a single transaction.
func (s *ChannelStore) AddBatch(ctx context.Context, channels []*models.Channel) error {
	if len(channels) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO channels (playlist_id, tvg_id, name, logo_url, stream_url,
			group_name, position, is_divider, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range channels {
		err = stmt.QueryRowContext(
			ctx,
			c.PlaylistID, c.TvgID, c.Name, c.LogoURL, c.StreamURL,
			c.GroupName, c.Position, c.IsDivider, c.CategoryID,
		).Scan(&c.ID)
		if err != nil {
			return fmt.Errorf("failed to add channel: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListByPlaylist returns channels in display order, dividers included.
func (s *ChannelStore) ListByPlaylist(ctx context.Context, playlistID int64) ([]*models.Channel, error) {
	query := `
		SELECT id, playlist_id, tvg_id, name, logo_url, stream_url,
			group_name, position, is_divider, category_id
		FROM channels
		WHERE playlist_id = $1
		ORDER BY position ASC
	`
	rows, err := s.db.QueryContext(ctx, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	var channels []*models.Channel
	for rows.Next() {
		var c models.Channel
		var categoryID sql.NullInt64
		err := rows.Scan(
			&c.ID, &c.PlaylistID, &c.TvgID, &c.Name, &c.LogoURL, &c.StreamURL,
			&c.GroupName, &c.Position, &c.IsDivider, &categoryID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		if categoryID.Valid {
			c.CategoryID = &categoryID.Int64
		}
		channels = append(channels, &c)
	}
	return channels, rows.Err()
}

// DeleteByPlaylist clears all channels for a playlist ahead of repopulation.
func (s *ChannelStore) DeleteByPlaylist(ctx context.Context, playlistID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM channels WHERE playlist_id = $1`, playlistID); err != nil {
		return fmt.Errorf("failed to delete channels: %w", err)
	}
	return nil
}
