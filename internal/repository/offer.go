package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soukly/storefront/internal/domain/discount"
	"github.com/soukly/storefront/internal/domain/offer"
)

const (
	offerColumns = `id, title_en, title_ar, description_en, description_ar,
		discount_type, discount_value, start_date, end_date, is_active,
		applies_to, category_id, product_id`

	listOffersSQL = `SELECT ` + offerColumns + `
		FROM offers ORDER BY created_at, id`

	listActiveOffersSQL = `SELECT ` + offerColumns + `
		FROM offers
		WHERE is_active AND start_date <= now() AND end_date >= now()
		ORDER BY created_at, id`

	getOfferByIDSQL = `SELECT ` + offerColumns + `
		FROM offers WHERE id = $1`

	insertOfferSQL = `INSERT INTO offers
		(id, title_en, title_ar, description_en, description_ar,
		 discount_type, discount_value, start_date, end_date, is_active,
		 applies_to, category_id, product_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	updateOfferSQL = `UPDATE offers SET
		title_en = $2, title_ar = $3, description_en = $4, description_ar = $5,
		discount_type = $6, discount_value = $7, start_date = $8, end_date = $9,
		is_active = $10, applies_to = $11, category_id = $12, product_id = $13
		WHERE id = $1`

	deleteOfferSQL = `DELETE FROM offers WHERE id = $1`
)

var _ offer.Repository = (*OfferRepository)(nil)

// OfferRepository implements offer.Repository backed by PostgreSQL.
type OfferRepository struct {
	pool *pgxpool.Pool
}

// NewOfferRepository returns an OfferRepository that uses the given pool.
func NewOfferRepository(pool *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{pool: pool}
}

// List returns every offer, including inactive and expired ones, for the
// admin listing.
func (r *OfferRepository) List(ctx context.Context) ([]offer.Offer, error) {
	rows, err := r.pool.Query(ctx, listOffersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing offers: %w", err)
	}
	return pgx.CollectRows(rows, scanOffer)
}

// ListActive returns offers whose flag is on and whose window contains the
// database's current time. Selection between them happens in the domain.
func (r *OfferRepository) ListActive(ctx context.Context) ([]offer.Offer, error) {
	rows, err := r.pool.Query(ctx, listActiveOffersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing active offers: %w", err)
	}
	return pgx.CollectRows(rows, scanOffer)
}

// GetByID returns a single offer by its identifier.
func (r *OfferRepository) GetByID(ctx context.Context, id string) (*offer.Offer, error) {
	rows, err := r.pool.Query(ctx, getOfferByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting offer %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOffer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, offer.ErrNotFound
		}
		return nil, fmt.Errorf("getting offer %q: %w", id, err)
	}
	return &o, nil
}

// Create persists a new offer.
func (r *OfferRepository) Create(ctx context.Context, o *offer.Offer) error {
	_, err := r.pool.Exec(ctx, insertOfferSQL,
		o.ID, o.TitleEN, o.TitleAR, o.DescriptionEN, o.DescriptionAR,
		string(o.Discount.Type), o.Discount.Value, o.StartAt, o.EndAt, o.Active,
		string(o.Scope), nullIfEmpty(o.CategoryID), nullIfEmpty(o.ProductID),
	)
	if err != nil {
		return fmt.Errorf("creating offer %q: %w", o.ID, err)
	}
	return nil
}

// Update overwrites all mutable offer fields.
func (r *OfferRepository) Update(ctx context.Context, o *offer.Offer) error {
	tag, err := r.pool.Exec(ctx, updateOfferSQL,
		o.ID, o.TitleEN, o.TitleAR, o.DescriptionEN, o.DescriptionAR,
		string(o.Discount.Type), o.Discount.Value, o.StartAt, o.EndAt, o.Active,
		string(o.Scope), nullIfEmpty(o.CategoryID), nullIfEmpty(o.ProductID),
	)
	if err != nil {
		return fmt.Errorf("updating offer %q: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return offer.ErrNotFound
	}
	return nil
}

// Delete removes the offer.
func (r *OfferRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteOfferSQL, id)
	if err != nil {
		return fmt.Errorf("deleting offer %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return offer.ErrNotFound
	}
	return nil
}

func scanOffer(row pgx.CollectableRow) (offer.Offer, error) {
	var (
		o            offer.Offer
		discountType string
		scope        string
		categoryID   *string
		productID    *string
	)
	err := row.Scan(
		&o.ID, &o.TitleEN, &o.TitleAR, &o.DescriptionEN, &o.DescriptionAR,
		&discountType, &o.Discount.Value, &o.StartAt, &o.EndAt, &o.Active,
		&scope, &categoryID, &productID,
	)
	o.Discount.Type = discount.Type(discountType)
	o.Scope = offer.Scope(scope)
	if categoryID != nil {
		o.CategoryID = *categoryID
	}
	if productID != nil {
		o.ProductID = *productID
	}
	return o, err
}
