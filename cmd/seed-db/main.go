// Command seed-db loads the demo catalog, a couple of launch promotions and
// coupons, and an admin API key into the database. All writes are upserts,
// so running it repeatedly is safe.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/soukly/storefront/internal/handler"
	"github.com/soukly/storefront/internal/repository"
)

type categoryJSON struct {
	ID     string `json:"id"`
	NameEN string `json:"name_en"`
	NameAR string `json:"name_ar"`
}

type productJSON struct {
	ID            string          `json:"id"`
	NameEN        string          `json:"name_en"`
	NameAR        string          `json:"name_ar"`
	DescriptionEN string          `json:"description_en"`
	DescriptionAR string          `json:"description_ar"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	CategoryID    string          `json:"category_id"`
	TypeID        string          `json:"type_id"`
}

type catalogJSON struct {
	Categories   []categoryJSON `json:"categories"`
	ProductTypes []categoryJSON `json:"product_types"`
	Products     []productJSON  `json:"products"`
}

func main() {
	var (
		databaseURL  string
		catalogFile  string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json", "path to catalog JSON file")
	flag.StringVar(&apiKey, "api-key", "", "admin API key to seed (or STORE_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or STORE_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("STORE_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or STORE_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("STORE_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedCatalog(ctx, pool, catalogFile); err != nil {
		return errors.Wrap(err, "seed catalog")
	}

	if err := seedOffers(ctx, pool); err != nil {
		return errors.Wrap(err, "seed offers")
	}

	if err := seedCoupons(ctx, pool); err != nil {
		return errors.Wrap(err, "seed coupons")
	}

	if err := seedAPIKey(ctx, pool, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

const (
	upsertCategorySQL = `
		INSERT INTO categories (id, name_en, name_ar)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name_en = EXCLUDED.name_en, name_ar = EXCLUDED.name_ar`

	upsertProductTypeSQL = `
		INSERT INTO product_types (id, name_en, name_ar)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name_en = EXCLUDED.name_en, name_ar = EXCLUDED.name_ar`

	upsertProductSQL = `
		INSERT INTO products (id, name_en, name_ar, description_en, description_ar, price, quantity, is_active, category_id, type_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name_en = EXCLUDED.name_en, name_ar = EXCLUDED.name_ar,
			description_en = EXCLUDED.description_en, description_ar = EXCLUDED.description_ar,
			price = EXCLUDED.price, quantity = EXCLUDED.quantity,
			category_id = EXCLUDED.category_id, type_id = EXCLUDED.type_id`

	upsertOfferSQL = `
		INSERT INTO offers (id, title_en, title_ar, description_en, description_ar, discount_type, discount_value, start_date, end_date, is_active, applies_to, category_id, product_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			title_en = EXCLUDED.title_en, title_ar = EXCLUDED.title_ar,
			discount_type = EXCLUDED.discount_type, discount_value = EXCLUDED.discount_value,
			start_date = EXCLUDED.start_date, end_date = EXCLUDED.end_date,
			applies_to = EXCLUDED.applies_to, category_id = EXCLUDED.category_id, product_id = EXCLUDED.product_id`

	upsertCouponSQL = `
		INSERT INTO coupons (id, code, discount_type, discount_value, usage_limit, min_order_value, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
		ON CONFLICT (UPPER(code)) DO UPDATE SET
			discount_type = EXCLUDED.discount_type, discount_value = EXCLUDED.discount_value,
			usage_limit = EXCLUDED.usage_limit, min_order_value = EXCLUDED.min_order_value,
			start_date = EXCLUDED.start_date, end_date = EXCLUDED.end_date,
			is_active = EXCLUDED.is_active`

	upsertAPIKeySQL = `
		INSERT INTO api_keys (id, key_hash, name, active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (key_hash) DO UPDATE SET name = EXCLUDED.name, active = TRUE`
)

func seedCatalog(ctx context.Context, pool *pgxpool.Pool, catalogFile string) error {
	slog.Info("reading catalog file", slog.String("path", catalogFile))

	data, err := os.ReadFile(catalogFile)
	if err != nil {
		return errors.Wrap(err, "read catalog file")
	}

	var cat catalogJSON
	if err := json.Unmarshal(data, &cat); err != nil {
		return errors.Wrap(err, "parse catalog JSON")
	}

	for _, c := range cat.Categories {
		if _, err := pool.Exec(ctx, upsertCategorySQL, c.ID, c.NameEN, c.NameAR); err != nil {
			return errors.Wrapf(err, "upsert category %s", c.ID)
		}
		slog.Info("upserted category", slog.String("id", c.ID), slog.String("name", c.NameEN))
	}

	for _, t := range cat.ProductTypes {
		if _, err := pool.Exec(ctx, upsertProductTypeSQL, t.ID, t.NameEN, t.NameAR); err != nil {
			return errors.Wrapf(err, "upsert product type %s", t.ID)
		}
		slog.Info("upserted product type", slog.String("id", t.ID), slog.String("name", t.NameEN))
	}

	for _, p := range cat.Products {
		var typeID *string
		if p.TypeID != "" {
			typeID = &p.TypeID
		}
		if _, err := pool.Exec(ctx, upsertProductSQL,
			p.ID, p.NameEN, p.NameAR, p.DescriptionEN, p.DescriptionAR,
			p.Price, p.Quantity, p.CategoryID, typeID,
		); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}
		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.NameEN))
	}

	return nil
}

func seedOffers(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding launch offers")

	now := time.Now().UTC().Truncate(time.Hour)

	type offerSeed struct {
		id, titleEN, titleAR string
		discountType         string
		value                decimal.Decimal
		appliesTo            string
		categoryID           *string
		productID            *string
	}

	skincare := "11111111-0000-4000-8000-000000000001"
	mist := "33333333-0000-4000-8000-000000000004"

	offers := []offerSeed{
		{
			id:           "44444444-0000-4000-8000-000000000001",
			titleEN:      "Skincare week",
			titleAR:      "أسبوع العناية بالبشرة",
			discountType: "percentage",
			value:        decimal.NewFromInt(15),
			appliesTo:    "category",
			categoryID:   &skincare,
		},
		{
			id:           "44444444-0000-4000-8000-000000000002",
			titleEN:      "Oud mist launch price",
			titleAR:      "سعر إطلاق بخاخ العود",
			discountType: "fixed",
			value:        decimal.NewFromInt(30),
			appliesTo:    "product",
			productID:    &mist,
		},
	}

	for _, o := range offers {
		if _, err := pool.Exec(ctx, upsertOfferSQL,
			o.id, o.titleEN, o.titleAR, "", "",
			o.discountType, o.value, now, now.AddDate(0, 1, 0),
			o.appliesTo, o.categoryID, o.productID,
		); err != nil {
			return errors.Wrapf(err, "upsert offer %s", o.id)
		}
		slog.Info("upserted offer", slog.String("id", o.id), slog.String("title", o.titleEN))
	}

	return nil
}

func seedCoupons(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding coupons")

	now := time.Now().UTC().Truncate(time.Hour)

	welcomeLimit := 500
	minOrder := decimal.NewFromInt(300)

	type couponSeed struct {
		id, code     string
		discountType string
		value        decimal.Decimal
		usageLimit   *int
		minOrder     *decimal.Decimal
	}

	coupons := []couponSeed{
		{
			id:           "55555555-0000-4000-8000-000000000001",
			code:         "WELCOME10",
			discountType: "percentage",
			value:        decimal.NewFromInt(10),
			usageLimit:   &welcomeLimit,
		},
		{
			id:           "55555555-0000-4000-8000-000000000002",
			code:         "SAVE50",
			discountType: "fixed",
			value:        decimal.NewFromInt(50),
			minOrder:     &minOrder,
		},
	}

	for _, c := range coupons {
		if _, err := pool.Exec(ctx, upsertCouponSQL,
			c.id, c.code, c.discountType, c.value,
			c.usageLimit, c.minOrder, now, now.AddDate(0, 3, 0),
		); err != nil {
			return errors.Wrapf(err, "upsert coupon %s", c.code)
		}
		slog.Info("upserted coupon", slog.String("code", c.code))
	}

	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	slog.Info("seeding admin API key")

	keyHash := handler.HashAPIKey(apiKey, []byte(pepper))

	id := uuid.NewString()
	if _, err := pool.Exec(ctx, upsertAPIKeySQL, id, keyHash, "Admin dashboard key"); err != nil {
		return errors.Wrap(err, "upsert admin API key")
	}

	slog.Info("upserted API key", slog.String("name", "Admin dashboard key"))

	return nil
}
