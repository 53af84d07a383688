package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soukly/storefront/internal/domain/coupon"
	"github.com/soukly/storefront/internal/domain/discount"
)

const (
	couponColumns = `id, code, discount_type, discount_value, usage_limit,
		min_order_value, start_date, end_date, is_active, created_at`

	getCouponByCodeSQL = `SELECT ` + couponColumns + `
		FROM coupons WHERE UPPER(code) = UPPER($1)`

	listCouponsSQL = `SELECT ` + couponColumns + `
		FROM coupons ORDER BY created_at, id`

	getCouponByIDSQL = `SELECT ` + couponColumns + `
		FROM coupons WHERE id = $1`

	insertCouponSQL = `INSERT INTO coupons
		(id, code, discount_type, discount_value, usage_limit,
		 min_order_value, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	updateCouponSQL = `UPDATE coupons SET
		code = $2, discount_type = $3, discount_value = $4, usage_limit = $5,
		min_order_value = $6, start_date = $7, end_date = $8, is_active = $9
		WHERE id = $1`

	deleteCouponSQL = `DELETE FROM coupons WHERE id = $1`

	countCouponUsageSQL = `SELECT count(*) FROM coupon_usages WHERE coupon_id = $1`

	// Locks the coupon row so the count-then-insert below cannot race with
	// a concurrent redemption of the same coupon.
	lockCouponSQL = `SELECT usage_limit FROM coupons WHERE id = $1 FOR UPDATE`

	insertCouponUsageSQL = `INSERT INTO coupon_usages (id, coupon_id) VALUES ($1, $2)`
)

var (
	_ coupon.Repository = (*CouponRepository)(nil)
	_ coupon.Ledger     = (*CouponLedger)(nil)
)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// FindByCode looks up a coupon by its code, case-insensitively. Returns
// coupon.ErrNotFound when no coupon has the code; inactive coupons are
// still returned so validation can report the precise rejection.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, getCouponByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrNotFound
		}
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}
	return &c, nil
}

// List returns every coupon for the admin listing.
func (r *CouponRepository) List(ctx context.Context) ([]coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, listCouponsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing coupons: %w", err)
	}
	return pgx.CollectRows(rows, scanCoupon)
}

// GetByID returns a single coupon by its identifier.
func (r *CouponRepository) GetByID(ctx context.Context, id string) (*coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, getCouponByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting coupon %q: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrNotFound
		}
		return nil, fmt.Errorf("getting coupon %q: %w", id, err)
	}
	return &c, nil
}

// Create persists a new coupon. The code is stored in its normalized form.
func (r *CouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	_, err := r.pool.Exec(ctx, insertCouponSQL,
		c.ID, coupon.NormalizeCode(c.Code), string(c.Discount.Type), c.Discount.Value,
		c.UsageLimit, c.MinOrderValue, c.StartAt, c.EndAt, c.Active,
	)
	if err != nil {
		return fmt.Errorf("creating coupon %q: %w", c.Code, err)
	}
	return nil
}

// Update overwrites all mutable coupon fields.
func (r *CouponRepository) Update(ctx context.Context, c *coupon.Coupon) error {
	tag, err := r.pool.Exec(ctx, updateCouponSQL,
		c.ID, coupon.NormalizeCode(c.Code), string(c.Discount.Type), c.Discount.Value,
		c.UsageLimit, c.MinOrderValue, c.StartAt, c.EndAt, c.Active,
	)
	if err != nil {
		return fmt.Errorf("updating coupon %q: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return coupon.ErrNotFound
	}
	return nil
}

// Delete removes the coupon definition. Ledger entries reference it, so
// deleting a redeemed coupon fails at the database; deactivate instead.
func (r *CouponRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteCouponSQL, id)
	if err != nil {
		return fmt.Errorf("deleting coupon %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return coupon.ErrNotFound
	}
	return nil
}

func scanCoupon(row pgx.CollectableRow) (coupon.Coupon, error) {
	var (
		c            coupon.Coupon
		discountType string
		usageLimit   *int32
	)
	err := row.Scan(
		&c.ID, &c.Code, &discountType, &c.Discount.Value, &usageLimit,
		&c.MinOrderValue, &c.StartAt, &c.EndAt, &c.Active, &c.CreatedAt,
	)
	c.Discount.Type = discount.Type(discountType)
	if usageLimit != nil {
		limit := int(*usageLimit)
		c.UsageLimit = &limit
	}
	return c, err
}

// CouponLedger implements coupon.Ledger on the append-only coupon_usages
// table.
type CouponLedger struct {
	pool *pgxpool.Pool
}

// NewCouponLedger returns a CouponLedger that uses the given pool.
func NewCouponLedger(pool *pgxpool.Pool) *CouponLedger {
	return &CouponLedger{pool: pool}
}

// CountUsage returns the number of ledger entries for the coupon.
func (l *CouponLedger) CountUsage(ctx context.Context, couponID string) (int, error) {
	var n int
	if err := l.pool.QueryRow(ctx, countCouponUsageSQL, couponID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting usage for coupon %q: %w", couponID, err)
	}
	return n, nil
}

// Redeem appends one usage entry unless doing so would exceed the coupon's
// limit. The coupon row is locked for the duration of the transaction, so
// the count and the insert are one atomic step: two concurrent redemptions
// of a coupon with one remaining use serialize on the lock and the loser
// gets coupon.ErrUsageLimitReached.
func (l *CouponLedger) Redeem(ctx context.Context, couponID string) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning redeem transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var usageLimit *int32
	if err := tx.QueryRow(ctx, lockCouponSQL, couponID).Scan(&usageLimit); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return coupon.ErrNotFound
		}
		return fmt.Errorf("locking coupon %q: %w", couponID, err)
	}

	if usageLimit != nil {
		var used int
		if err := tx.QueryRow(ctx, countCouponUsageSQL, couponID).Scan(&used); err != nil {
			return fmt.Errorf("counting usage for coupon %q: %w", couponID, err)
		}
		if used >= int(*usageLimit) {
			return coupon.ErrUsageLimitReached
		}
	}

	if _, err := tx.Exec(ctx, insertCouponUsageSQL, uuid.New().String(), couponID); err != nil {
		return fmt.Errorf("recording usage for coupon %q: %w", couponID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing redeem transaction: %w", err)
	}
	return nil
}
