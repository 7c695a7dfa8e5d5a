package store

import (
	"context"
	"fmt"
	"testing"

	perrors "github.com/abgdnv/gocatalog/internal/errors"
	"github.com/abgdnv/gocatalog/internal/identity"
	"github.com/abgdnv/gocatalog/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProduct(sellerID, name, category string) Product {
	return Product{
		SellerID:     sellerID,
		Name:         name,
		Brand:        "Acme",
		Price:        19.99,
		Quantity:     3,
		Category:     category,
		FreeShipping: true,
		Description:  "A product used by the store tests.",
	}
}

// testProductStore runs the behaviour every ProductStore implementation must share.
// newStore must return an empty store.
func testProductStore(t *testing.T, newStore func(t *testing.T) ProductStore) {
	ctx := context.Background()

	t.Run("Create assigns a fresh key on every call", func(t *testing.T) {
		s := newStore(t)
		p := sampleProduct("seller-1", "Kettle", "kitchen")
		p.ID = "65f1c2a9e4b0a1b2c3d4e5f6"

		first, err := s.Create(ctx, p)
		require.NoError(t, err)
		second, err := s.Create(ctx, p)
		require.NoError(t, err)

		assert.True(t, identity.IsValidKey(first.ID))
		assert.NotEqual(t, p.ID, first.ID)
		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, "seller-1", first.SellerID)
		assert.False(t, first.CreatedAt.IsZero())
	})

	t.Run("FindOne returns the stored product", func(t *testing.T) {
		s := newStore(t)
		created, err := s.Create(ctx, sampleProduct("seller-1", "Kettle", "kitchen"))
		require.NoError(t, err)

		found, err := s.FindOne(ctx, created.ID)

		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, "Kettle", found.Name)
		assert.Equal(t, "seller-1", found.SellerID)
		assert.Equal(t, 19.99, found.Price)
		assert.True(t, found.FreeShipping)
		assert.True(t, created.CreatedAt.Equal(found.CreatedAt))
	})

	t.Run("FindOne of an absent key is not found", func(t *testing.T) {
		s := newStore(t)
		_, err := s.FindOne(ctx, identity.NewKey())
		assert.ErrorIs(t, err, perrors.ErrProductNotFound)
	})

	t.Run("DeleteOne removes the product once", func(t *testing.T) {
		s := newStore(t)
		created, err := s.Create(ctx, sampleProduct("seller-1", "Kettle", "kitchen"))
		require.NoError(t, err)

		require.NoError(t, s.DeleteOne(ctx, created.ID))

		_, err = s.FindOne(ctx, created.ID)
		assert.ErrorIs(t, err, perrors.ErrProductNotFound)
		assert.ErrorIs(t, s.DeleteOne(ctx, created.ID), perrors.ErrProductNotFound)
	})

	t.Run("FindPage applies filter skip and limit in creation order", func(t *testing.T) {
		s := newStore(t)
		var sellerNames []string
		for i := range 5 {
			name := fmt.Sprintf("Seller item %d", i)
			_, err := s.Create(ctx, sampleProduct("seller-S", name, "grocery"))
			require.NoError(t, err)
			sellerNames = append(sellerNames, name)
			_, err = s.Create(ctx, sampleProduct("seller-T", fmt.Sprintf("Other item %d", i), "bakery"))
			require.NoError(t, err)
		}

		firstPage, err := s.FindPage(ctx, query.PageQuery{Filter: query.Filter{SellerID: "seller-S"}, Skip: 0, Limit: 2})
		require.NoError(t, err)
		secondPage, err := s.FindPage(ctx, query.PageQuery{Filter: query.Filter{SellerID: "seller-S"}, Skip: 2, Limit: 2})
		require.NoError(t, err)
		lastPage, err := s.FindPage(ctx, query.PageQuery{Filter: query.Filter{SellerID: "seller-S"}, Skip: 4, Limit: 2})
		require.NoError(t, err)
		beyond, err := s.FindPage(ctx, query.PageQuery{Filter: query.Filter{SellerID: "seller-S"}, Skip: 10, Limit: 2})
		require.NoError(t, err)

		assert.Equal(t, sellerNames[0:2], names(firstPage))
		assert.Equal(t, sellerNames[2:4], names(secondPage))
		assert.Equal(t, sellerNames[4:5], names(lastPage))
		assert.Empty(t, beyond)
		for _, p := range append(append(firstPage, secondPage...), lastPage...) {
			assert.Equal(t, "seller-S", p.SellerID)
		}

		all, err := s.FindPage(ctx, query.PageQuery{Limit: 100})
		require.NoError(t, err)
		assert.Len(t, all, 10)

		bakery, err := s.FindPage(ctx, query.PageQuery{Filter: query.Filter{Category: "bakery"}, Limit: 100})
		require.NoError(t, err)
		assert.Len(t, bakery, 5)
		for _, p := range bakery {
			assert.Equal(t, "seller-T", p.SellerID)
		}
	})

	t.Run("Ping succeeds", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(ctx))
	})
}

func names(products []Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}
