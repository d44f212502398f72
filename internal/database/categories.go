package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/abdougueye/diiokko-tv-sub000/internal/models"
)

type CategoryStore struct {
	db *sql.DB
}

func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// Add inserts one category and returns its identifier. The parser creates at
// most one category per (kind, group) pair per run, so this stays off the hot
// path.
func (s *CategoryStore) Add(ctx context.Context, c *models.Category) (int64, error) {
	query := `
		INSERT INTO categories (playlist_id, kind, name, position)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query, c.PlaylistID, c.Kind, c.Name, c.Position).Scan(&c.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to add category: %w", err)
	}
	return c.ID, nil
}

// ListByPlaylist returns categories in display order, optionally filtered by
// content kind.
func (s *CategoryStore) ListByPlaylist(ctx context.Context, playlistID int64, kind models.ContentKind) ([]*models.Category, error) {
	query := `
		SELECT id, playlist_id, kind, name, position
		FROM categories
		WHERE playlist_id = $1 AND ($2 = '' OR kind = $2)
		ORDER BY position ASC
	`
	rows, err := s.db.QueryContext(ctx, query, playlistID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.PlaylistID, &c.Kind, &c.Name, &c.Position); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

// DeleteByPlaylist clears categories for a playlist ahead of repopulation.
func (s *CategoryStore) DeleteByPlaylist(ctx context.Context, playlistID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE playlist_id = $1`, playlistID); err != nil {
		return fmt.Errorf("failed to delete categories: %w", err)
	}
	return nil
}
