// Package validation checks incoming product payloads against their schemas
// before any storage access happens.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"

	perrors "github.com/abgdnv/gocatalog/internal/errors"
	"github.com/go-playground/validator/v10"
)

// Categories lists the accepted product categories.
var Categories = []string{
	"grocery",
	"kitchen",
	"clothing",
	"electronics",
	"furniture",
	"cosmetics",
	"bakery",
	"liquor",
	"sports",
	"pharmaceuticals",
}

// AddProductRequest is the body of an add-product request.
// It has no seller field: the owner always comes from the authenticated caller.
type AddProductRequest struct {
	Name         string  `json:"name"         validate:"required,min=2,max=60"`
	Brand        string  `json:"brand"        validate:"required,min=2,max=60"`
	Price        float64 `json:"price"        validate:"required,gt=0"`
	Quantity     int     `json:"quantity"     validate:"required,min=1"`
	Category     string  `json:"category"     validate:"required,category"`
	FreeShipping bool    `json:"freeShipping"`
	Description  string  `json:"description"  validate:"required,min=10,max=1000"`
	Image        string  `json:"image"        validate:"omitempty,url"`
}

// PaginationRequest is the body of the list endpoints.
// Page and Limit are pointers so an absent field fails "required"
// while an explicit zero fails "min".
type PaginationRequest struct {
	Page     *int   `json:"page"     validate:"required,min=1"`
	Limit    *int   `json:"limit"    validate:"required,min=1"`
	Category string `json:"category" validate:"omitempty,category"`
}

// NewPaginationRequest builds a request with both page and limit present.
func NewPaginationRequest(page, limit int, category string) PaginationRequest {
	return PaginationRequest{Page: &page, Limit: &limit, Category: category}
}

// NewProduct holds the normalized attributes of a product that passed validation.
type NewProduct struct {
	Name         string
	Brand        string
	Price        float64
	Quantity     int
	Category     string
	FreeShipping bool
	Description  string
	Image        string
}

// Page is a validated pagination request. Only Validator.Pagination creates
// non-zero values, so holding a Page means page and limit are both >= 1.
type Page struct {
	number   int
	size     int
	category string
}

// Number is the 1-based page number.
func (p Page) Number() int { return p.number }

// Size is the maximum number of items on the page.
func (p Page) Size() int { return p.size }

// Category is the optional category filter, empty when absent.
func (p Page) Category() string { return p.category }

// Validator validates request payloads.
type Validator struct {
	validate *validator.Validate
	maxLimit int
}

// New creates a Validator. A positive maxLimit caps the page size; zero leaves it uncapped.
func New(maxLimit int) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	// registration only fails for an empty tag or nil func
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return slices.Contains(Categories, fl.Field().String())
	})
	return &Validator{validate: v, maxLimit: maxLimit}
}

// AddProduct validates an add-product payload and returns its normalized attributes.
// Leading and trailing blanks of text fields are dropped before validation.
func (v *Validator) AddProduct(req AddProductRequest) (NewProduct, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Brand = strings.TrimSpace(req.Brand)
	req.Category = strings.ToLower(strings.TrimSpace(req.Category))
	req.Description = strings.TrimSpace(req.Description)
	req.Image = strings.TrimSpace(req.Image)

	if err := v.check(req); err != nil {
		return NewProduct{}, err
	}
	return NewProduct{
		Name:         req.Name,
		Brand:        req.Brand,
		Price:        req.Price,
		Quantity:     req.Quantity,
		Category:     req.Category,
		FreeShipping: req.FreeShipping,
		Description:  req.Description,
		Image:        req.Image,
	}, nil
}

// Pagination validates a pagination payload and returns the resulting Page.
func (v *Validator) Pagination(req PaginationRequest) (Page, error) {
	req.Category = strings.ToLower(strings.TrimSpace(req.Category))

	if err := v.check(req); err != nil {
		return Page{}, err
	}
	number, size := *req.Page, *req.Limit
	if v.maxLimit > 0 && size > v.maxLimit {
		return Page{}, perrors.NewValidationError(
			[]string{"limit"},
			map[string]string{"limit": fmt.Sprintf("must not exceed %d", v.maxLimit)},
		)
	}
	// (page-1)*limit is the store offset and must fit in an int64.
	if maxSkipped := math.MaxInt64 / int64(size); int64(number-1) > maxSkipped {
		return Page{}, perrors.NewValidationError(
			[]string{"page"},
			map[string]string{"page": fmt.Sprintf("must not exceed %d", maxSkipped+1)},
		)
	}
	return Page{number: number, size: size, category: req.Category}, nil
}

// check runs the struct rules and converts failures into a ValidationError.
func (v *Validator) check(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("failed to validate payload: %w", err)
	}
	order := make([]string, 0, len(validationErrors))
	fields := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		// fieldErr.Tag() returns "required", "max", etc.
		order = append(order, fieldErr.Field())
		fields[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
	}
	return perrors.NewValidationError(order, fields)
}

// jsonFieldName reports fields by their JSON name so messages match the request body.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}
