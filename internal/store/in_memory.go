package store

import (
	"context"
	"slices"
	"sync"
	"time"

	perrors "github.com/abgdnv/gocatalog/internal/errors"
	"github.com/abgdnv/gocatalog/internal/identity"
	"github.com/abgdnv/gocatalog/internal/query"
)

// InMemoryStore implements ProductStore using an in-memory map.
type InMemoryStore struct {
	mu       sync.RWMutex
	products map[string]Product
	keys     []string // creation order
	now      func() time.Time
}

// NewInMemoryStore creates a new empty in-memory ProductStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		products: make(map[string]Product),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a copy of the product under a fresh key.
func (s *InMemoryStore) Create(_ context.Context, product Product) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product.ID = identity.NewKey()
	product.CreatedAt = s.now()
	product.UpdatedAt = product.CreatedAt
	s.products[product.ID] = product
	s.keys = append(s.keys, product.ID)

	return &product, nil
}

// FindOne retrieves a product by its key.
func (s *InMemoryStore) FindOne(_ context.Context, id string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, perrors.ErrProductNotFound
	}
	return &p, nil
}

// DeleteOne removes a product by its key.
func (s *InMemoryStore) DeleteOne(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return perrors.ErrProductNotFound
	}
	delete(s.products, id)
	s.keys = slices.DeleteFunc(s.keys, func(k string) bool { return k == id })
	return nil
}

// FindPage walks the products in creation order and applies filter, skip and limit.
func (s *InMemoryStore) FindPage(_ context.Context, q query.PageQuery) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	page := make([]Product, 0, min(q.Limit, int64(len(s.keys))))
	var skipped int64
	for _, key := range s.keys {
		if int64(len(page)) >= q.Limit {
			break
		}
		p := s.products[key]
		if !q.Filter.Matches(p.SellerID, p.Category) {
			continue
		}
		if skipped < q.Skip {
			skipped++
			continue
		}
		page = append(page, p)
	}
	return page, nil
}

// Ping always succeeds.
func (s *InMemoryStore) Ping(_ context.Context) error {
	return nil
}

// Len returns the number of stored products.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}
