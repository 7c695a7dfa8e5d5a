// Package store provides the product storage layer.
package store

import (
	"context"
	"time"

	"github.com/abgdnv/gocatalog/internal/query"
)

// Product is a stored product record.
type Product struct {
	ID           string
	SellerID     string
	Name         string
	Brand        string
	Price        float64
	Quantity     int
	Category     string
	FreeShipping bool
	Description  string
	Image        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store (MongoDB, PostgreSQL, in-memory).
// Implementations must be safe for concurrent use.
type ProductStore interface {
	// Create stores a new product. The store assigns ID, CreatedAt and UpdatedAt;
	// any ID on the argument is ignored, so every call creates a distinct record.
	Create(ctx context.Context, product Product) (*Product, error)

	// FindOne retrieves a single product by its key.
	// Returns ErrProductNotFound if no product exists with the given key.
	FindOne(ctx context.Context, id string) (*Product, error)

	// DeleteOne removes a product by its key.
	// Returns ErrProductNotFound if no product exists with the given key.
	DeleteOne(ctx context.Context, id string) error

	// FindPage returns the products matching q.Filter ordered by key,
	// skipping q.Skip records and returning at most q.Limit.
	// Returns an empty slice if nothing matches.
	FindPage(ctx context.Context, q query.PageQuery) ([]Product, error)

	// Ping reports whether the backing database is reachable.
	Ping(ctx context.Context) error
}
