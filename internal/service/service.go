// Package service provides the implementation of product catalog business logic.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	perrors "github.com/abgdnv/gocatalog/internal/errors"
	"github.com/abgdnv/gocatalog/internal/identity"
	"github.com/abgdnv/gocatalog/internal/query"
	"github.com/abgdnv/gocatalog/internal/store"
	"github.com/abgdnv/gocatalog/internal/validation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// ProductService defines the methods for managing catalog products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// Add creates a new product owned by callerID.
	Add(ctx context.Context, callerID string, product validation.NewProduct) (*ProductDto, error)

	// FindByID retrieves a single product by its key.
	// Returns ErrInvalidProductID for a malformed key and ErrProductNotFound if no product exists.
	FindByID(ctx context.Context, id string) (*ProductDto, error)

	// Delete removes a product owned by callerID.
	// Returns ErrInvalidProductID, ErrProductNotFound or ErrAccessDenied.
	Delete(ctx context.Context, callerID, id string) error

	// List returns one page of the whole catalog.
	// Returns an empty slice if the page is beyond the last product.
	List(ctx context.Context, page validation.Page) ([]ProductDto, error)

	// ListBySeller returns one page of the products owned by callerID.
	ListBySeller(ctx context.Context, callerID string, page validation.Page) ([]ProductDto, error)
}

// Service implements ProductService.
type Service struct {
	store          store.ProductStore
	createdCounter metric.Int64Counter
	deletedCounter metric.Int64Counter
}

// NewService creates a new instance of ProductService with the provided store.
func NewService(productStore store.ProductStore) *Service {
	meter := otel.Meter("catalog-service")
	createdCounter, err := meter.Int64Counter("products_created", metric.WithDescription("Total number of created products"))
	if err != nil {
		panic(fmt.Sprintf("failed to create products_created counter: %v", err))
	}
	deletedCounter, err := meter.Int64Counter("products_deleted", metric.WithDescription("Total number of deleted products"))
	if err != nil {
		panic(fmt.Sprintf("failed to create products_deleted counter: %v", err))
	}
	return &Service{
		store:          productStore,
		createdCounter: createdCounter,
		deletedCounter: deletedCounter,
	}
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID           string    `json:"id"`
	SellerID     string    `json:"sellerId"`
	Name         string    `json:"name"`
	Brand        string    `json:"brand"`
	Price        float64   `json:"price"`
	Quantity     int       `json:"quantity"`
	Category     string    `json:"category"`
	FreeShipping bool      `json:"freeShipping"`
	Description  string    `json:"description"`
	Image        string    `json:"image,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Add stores a new product. The owner is always the caller.
func (s *Service) Add(ctx context.Context, callerID string, product validation.NewProduct) (*ProductDto, error) {
	created, err := s.store.Create(ctx, store.Product{
		SellerID:     callerID,
		Name:         product.Name,
		Brand:        product.Brand,
		Price:        product.Price,
		Quantity:     product.Quantity,
		Category:     product.Category,
		FreeShipping: product.FreeShipping,
		Description:  product.Description,
		Image:        product.Image,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.createdCounter.Add(ctx, 1)

	return toDto(created), nil
}

// FindByID retrieves a product by its key and returns it as a ProductDto.
func (s *Service) FindByID(ctx context.Context, id string) (*ProductDto, error) {
	key, err := parseKey(id)
	if err != nil {
		return nil, err
	}
	product, err := s.store.FindOne(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", key, err)
	}

	return toDto(product), nil
}

// Delete removes a product after checking that the caller owns it.
// Lookup and removal are separate store calls; a product that disappears
// in between is reported as ErrProductNotFound.
func (s *Service) Delete(ctx context.Context, callerID, id string) error {
	key, err := parseKey(id)
	if err != nil {
		return err
	}
	product, err := s.store.FindOne(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to fetch product by ID %s: %w", key, err)
	}
	if err := assertOwner(callerID, product.SellerID); err != nil {
		return err
	}
	if err := s.store.DeleteOne(ctx, key); err != nil {
		return fmt.Errorf("failed to delete product with ID %s: %w", key, err)
	}
	s.deletedCounter.Add(ctx, 1)

	return nil
}

// List returns one page of the catalog, optionally narrowed to a category.
func (s *Service) List(ctx context.Context, page validation.Page) ([]ProductDto, error) {
	return s.findPage(ctx, query.BuildPageQuery(page, query.CatalogFilter(page)))
}

// ListBySeller returns one page of the caller's own products.
func (s *Service) ListBySeller(ctx context.Context, callerID string, page validation.Page) ([]ProductDto, error) {
	return s.findPage(ctx, query.BuildPageQuery(page, query.SellerFilter(callerID, page)))
}

func (s *Service) findPage(ctx context.Context, q query.PageQuery) ([]ProductDto, error) {
	products, err := s.store.FindPage(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productDTOs := make([]ProductDto, len(products))

	for i, item := range products {
		productDTOs[i] = *toDto(&item)
	}

	return productDTOs, nil
}

// parseKey rejects malformed keys before any store access and
// returns the key in its canonical lower-case form.
func parseKey(id string) (string, error) {
	if !identity.IsValidKey(id) {
		return "", fmt.Errorf("%w: %q", perrors.ErrInvalidProductID, id)
	}
	return strings.ToLower(id), nil
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:           product.ID,
		SellerID:     product.SellerID,
		Name:         product.Name,
		Brand:        product.Brand,
		Price:        product.Price,
		Quantity:     product.Quantity,
		Category:     product.Category,
		FreeShipping: product.FreeShipping,
		Description:  product.Description,
		Image:        product.Image,
		CreatedAt:    product.CreatedAt,
		UpdatedAt:    product.UpdatedAt,
	}
}
