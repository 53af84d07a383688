// Package catalog holds the product catalog: products, categories, and
// product types, with bilingual naming throughout.
package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrProductNotFound is returned when a requested product does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrCategoryNotFound is returned when a requested category does not exist.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrProductTypeNotFound is returned when a requested product type does not exist.
	ErrProductTypeNotFound = errors.New("product type not found")
	// ErrNegativePrice is returned when a product price is negative.
	ErrNegativePrice = errors.New("product price must not be negative")
)

// Product is a catalog item.
type Product struct {
	ID            string
	NameEN        string
	NameAR        string
	DescriptionEN string
	DescriptionAR string
	Price         decimal.Decimal
	Quantity      int
	Active        bool
	CategoryID    string
	TypeID        string
	CreatedAt     time.Time
}

// Validate checks a product at the admin write boundary.
func (p Product) Validate() error {
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if p.NameEN == "" && p.NameAR == "" {
		return errors.New("product needs a name in at least one language")
	}
	if p.CategoryID == "" {
		return errors.New("product needs a category")
	}
	return nil
}

// Category groups products.
type Category struct {
	ID        string
	NameEN    string
	NameAR    string
	CreatedAt time.Time
}

// ProductType is an admin-managed classification orthogonal to categories.
type ProductType struct {
	ID        string
	NameEN    string
	NameAR    string
	CreatedAt time.Time
}

// ProductRepository provides persistence for products.
type ProductRepository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}

// CategoryRepository provides persistence for categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id string) error
}

// ProductTypeRepository provides persistence for product types.
type ProductTypeRepository interface {
	List(ctx context.Context) ([]ProductType, error)
	GetByID(ctx context.Context, id string) (*ProductType, error)
	Create(ctx context.Context, t *ProductType) error
	Update(ctx context.Context, t *ProductType) error
	Delete(ctx context.Context, id string) error
}
