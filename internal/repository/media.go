package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soukly/storefront/internal/domain/media"
)

const (
	mediaColumns = `id, product_id, file_url, file_type, public_id, is_main, created_at`

	listMediaByProductSQL = `SELECT ` + mediaColumns + `
		FROM product_media WHERE product_id = $1
		ORDER BY is_main DESC, created_at, id`

	getMediaByIDSQL = `SELECT ` + mediaColumns + `
		FROM product_media WHERE id = $1`

	insertMediaSQL = `INSERT INTO product_media
		(id, product_id, file_url, file_type, public_id, is_main)
		VALUES ($1, $2, $3, $4, $5, $6)`

	clearMainMediaSQL = `UPDATE product_media SET is_main = FALSE
		WHERE product_id = $1 AND is_main`

	setMainMediaSQL = `UPDATE product_media SET is_main = TRUE
		WHERE id = $1 AND product_id = $2`

	deleteMediaSQL = `DELETE FROM product_media WHERE id = $1`
)

var _ media.Store = (*MediaStore)(nil)

// MediaStore implements media.Store backed by PostgreSQL.
type MediaStore struct {
	pool *pgxpool.Pool
}

// NewMediaStore returns a MediaStore that uses the given pool.
func NewMediaStore(pool *pgxpool.Pool) *MediaStore {
	return &MediaStore{pool: pool}
}

// Insert persists a batch of media rows in one transaction, so a partially
// failed upload never leaves a partial collection behind.
func (s *MediaStore) Insert(ctx context.Context, items []media.Item) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning media insert: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, item := range items {
		_, err := tx.Exec(ctx, insertMediaSQL,
			item.ID, item.ProductID, item.FileURL, string(item.FileType),
			item.PublicID, item.IsMain,
		)
		if err != nil {
			return fmt.Errorf("inserting media %q: %w", item.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing media insert: %w", err)
	}
	return nil
}

// ListByProduct returns the product's media, main row first.
func (s *MediaStore) ListByProduct(ctx context.Context, productID string) ([]media.Item, error) {
	rows, err := s.pool.Query(ctx, listMediaByProductSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("listing media for product %q: %w", productID, err)
	}
	return pgx.CollectRows(rows, scanMedia)
}

// GetByID returns a single media row by its identifier.
func (s *MediaStore) GetByID(ctx context.Context, id string) (*media.Item, error) {
	rows, err := s.pool.Query(ctx, getMediaByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting media %q: %w", id, err)
	}

	item, err := pgx.CollectExactlyOneRow(rows, scanMedia)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, media.ErrNotFound
		}
		return nil, fmt.Errorf("getting media %q: %w", id, err)
	}
	return &item, nil
}

// SetMain clears the product's current main row and flags the given row, in
// one transaction. The partial unique index on (product_id) WHERE is_main
// backstops the invariant.
func (s *MediaStore) SetMain(ctx context.Context, productID, mediaID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning set-main: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, clearMainMediaSQL, productID); err != nil {
		return fmt.Errorf("clearing main media for product %q: %w", productID, err)
	}

	tag, err := tx.Exec(ctx, setMainMediaSQL, mediaID, productID)
	if err != nil {
		return fmt.Errorf("setting main media %q: %w", mediaID, err)
	}
	if tag.RowsAffected() == 0 {
		return media.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing set-main: %w", err)
	}
	return nil
}

// Delete removes the media row.
func (s *MediaStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, deleteMediaSQL, id)
	if err != nil {
		return fmt.Errorf("deleting media %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return media.ErrNotFound
	}
	return nil
}

func scanMedia(row pgx.CollectableRow) (media.Item, error) {
	var (
		item     media.Item
		fileType string
	)
	err := row.Scan(
		&item.ID, &item.ProductID, &item.FileURL, &fileType,
		&item.PublicID, &item.IsMain, &item.CreatedAt,
	)
	item.FileType = media.FileType(fileType)
	return item, err
}
