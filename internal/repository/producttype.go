package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soukly/storefront/internal/domain/catalog"
)

const (
	listProductTypesSQL = `SELECT id, name_en, name_ar, created_at
		FROM product_types ORDER BY created_at, id`

	getProductTypeByIDSQL = `SELECT id, name_en, name_ar, created_at
		FROM product_types WHERE id = $1`

	insertProductTypeSQL = `INSERT INTO product_types (id, name_en, name_ar)
		VALUES ($1, $2, $3)`

	updateProductTypeSQL = `UPDATE product_types SET name_en = $2, name_ar = $3
		WHERE id = $1`

	deleteProductTypeSQL = `DELETE FROM product_types WHERE id = $1`
)

var _ catalog.ProductTypeRepository = (*ProductTypeRepository)(nil)

// ProductTypeRepository implements catalog.ProductTypeRepository backed by
// PostgreSQL.
type ProductTypeRepository struct {
	pool *pgxpool.Pool
}

// NewProductTypeRepository returns a ProductTypeRepository that uses the
// given pool.
func NewProductTypeRepository(pool *pgxpool.Pool) *ProductTypeRepository {
	return &ProductTypeRepository{pool: pool}
}

func (r *ProductTypeRepository) List(ctx context.Context) ([]catalog.ProductType, error) {
	rows, err := r.pool.Query(ctx, listProductTypesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing product types: %w", err)
	}
	return pgx.CollectRows(rows, scanProductType)
}

func (r *ProductTypeRepository) GetByID(ctx context.Context, id string) (*catalog.ProductType, error) {
	rows, err := r.pool.Query(ctx, getProductTypeByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product type %q: %w", id, err)
	}

	t, err := pgx.CollectExactlyOneRow(rows, scanProductType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrProductTypeNotFound
		}
		return nil, fmt.Errorf("getting product type %q: %w", id, err)
	}
	return &t, nil
}

func (r *ProductTypeRepository) Create(ctx context.Context, t *catalog.ProductType) error {
	_, err := r.pool.Exec(ctx, insertProductTypeSQL, t.ID, t.NameEN, t.NameAR)
	if err != nil {
		return fmt.Errorf("creating product type %q: %w", t.ID, err)
	}
	return nil
}

func (r *ProductTypeRepository) Update(ctx context.Context, t *catalog.ProductType) error {
	tag, err := r.pool.Exec(ctx, updateProductTypeSQL, t.ID, t.NameEN, t.NameAR)
	if err != nil {
		return fmt.Errorf("updating product type %q: %w", t.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrProductTypeNotFound
	}
	return nil
}

func (r *ProductTypeRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteProductTypeSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product type %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrProductTypeNotFound
	}
	return nil
}

func scanProductType(row pgx.CollectableRow) (catalog.ProductType, error) {
	var t catalog.ProductType
	err := row.Scan(&t.ID, &t.NameEN, &t.NameAR, &t.CreatedAt)
	return t, err
}
