package repository

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// CartRepository defines the interface for cart snapshot persistence. A
// snapshot is the ordered list of cart lines for one session; writes always
// replace the whole snapshot (last writer wins).
type CartRepository interface {
	// Get retrieves the cart lines for a session.
	Get(ctx context.Context, sessionID string) ([]domain.CartLine, error)

	// Save persists the cart lines for a session, overwriting any
	// existing snapshot and refreshing its TTL.
	Save(ctx context.Context, sessionID string, lines []domain.CartLine) error

	// Delete removes the cart snapshot for a session.
	Delete(ctx context.Context, sessionID string) error
}

// ProductFilter holds the filtering and pagination options for listing
// products. Nil pointer fields mean "no filter on this column".
type ProductFilter struct {
	Category *string
	IsActive *bool
	OnSale   *bool
	Search   *string
	Page     int
	PerPage  int
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product and populates its generated ID.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its numeric ID.
	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	// GetBySlug retrieves a product by its URL slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)

	// List retrieves products matching the filter, returning the page of
	// products and the total count of matches.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// Update replaces all mutable fields of an existing product.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product by ID.
	Delete(ctx context.Context, id int64) error
}
