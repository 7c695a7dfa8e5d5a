// Package query composes the filter, skip and limit of a product page query.
package query

import "github.com/abgdnv/gocatalog/internal/validation"

// Filter constrains which products a page query matches.
// Zero values mean "no constraint".
type Filter struct {
	SellerID string
	Category string
}

// IsEmpty reports whether the filter matches every product.
func (f Filter) IsEmpty() bool {
	return f.SellerID == "" && f.Category == ""
}

// Matches applies the filter to a single product's attributes.
// Stores that cannot push the filter down to the database use it directly.
func (f Filter) Matches(sellerID, category string) bool {
	if f.SellerID != "" && f.SellerID != sellerID {
		return false
	}
	if f.Category != "" && f.Category != category {
		return false
	}
	return true
}

// PageQuery is the (filter, skip, limit) triple handed to the storage layer.
type PageQuery struct {
	Filter Filter
	Skip   int64
	Limit  int64
}

// CatalogFilter is the filter of the public listing: only the optional category.
func CatalogFilter(page validation.Page) Filter {
	return Filter{Category: page.Category()}
}

// SellerFilter restricts a listing to the authenticated caller's own products.
// The seller id always comes from the caller identity, never from the request body.
func SellerFilter(callerID string, page validation.Page) Filter {
	return Filter{SellerID: callerID, Category: page.Category()}
}

// BuildPageQuery derives skip and limit from a validated page:
// skip = (page - 1) * limit.
func BuildPageQuery(page validation.Page, filter Filter) PageQuery {
	limit := int64(page.Size())
	return PageQuery{
		Filter: filter,
		Skip:   int64(page.Number()-1) * limit,
		Limit:  limit,
	}
}
