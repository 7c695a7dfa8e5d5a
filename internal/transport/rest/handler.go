// Package rest provides HTTP handlers for the product catalog.
package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	perrors "github.com/abgdnv/gocatalog/internal/errors"
	"github.com/abgdnv/gocatalog/internal/service"
	"github.com/abgdnv/gocatalog/internal/validation"
	"github.com/abgdnv/gocatalog/pkg/web"
	"github.com/go-chi/chi/v5"
)

const (
	msgAdded         = "Product is added successfully."
	msgDeleted       = "Product is deleted successfully."
	msgInvalidID     = "Invalid product id."
	msgNotFound      = "Product does not exist."
	msgNotOwner      = "You are not owner of this product."
	msgInternal      = "Something went wrong."
	msgInvalidBody   = "Invalid request body"
	msgEmptyBody     = "Request body is required"
	msgBodyTooLarge  = "Request body is too large"
	msgStoreNotReady = "Storage is not reachable"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	service      service.ProductService
	validator    *validation.Validator
	store        Pinger
	maxBodyBytes int64
	logger       *slog.Logger
}

// AddResponse acknowledges a created product.
type AddResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// ValidationErrorResponse is returned when a body fails schema validation.
type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	ValidationErrors map[string]string `json:"validation_errors"`
}

// NewHandler creates a new instance of the catalog API.
func NewHandler(service service.ProductService, validator *validation.Validator, store Pinger, maxBodyBytes int64, logger *slog.Logger) *Handler {
	return &Handler{
		service:      service,
		validator:    validator,
		store:        store,
		maxBodyBytes: maxBodyBytes,
		logger:       logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the catalog routes. Product routes sit behind authMiddleware.
func (h *Handler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Add)
		r.Post("/list", h.List)
		r.Post("/seller/list", h.ListBySeller)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Delete("/", h.Delete)
		})
	})

	r.Get("/healthz", h.HealthCheck)
	r.Get("/readyz", h.ReadinessCheck)
}

// Add creates a product owned by the authenticated caller.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	callerID, ok := web.GetUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req validation.AddProductRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to add product", "name", req.Name, "category", req.Category)

	product, err := h.validator.AddProduct(req)
	if err != nil {
		h.respondValidationError(w, r, err)
		return
	}

	created, err := h.service.Add(r.Context(), callerID, product)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "Product added successfully", "ID", created.ID, "sellerID", callerID)
	web.RespondJSON(w, h.logger, http.StatusCreated, AddResponse{Message: msgAdded, ID: created.ID})
}

// Delete removes a product owned by the authenticated caller.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID, ok := web.GetUserID(w, r, h.logger)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	h.logger.DebugContext(r.Context(), "Received request to delete product", "ID", id)

	if err := h.service.Delete(r.Context(), callerID, id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	web.RespondMessage(w, h.logger, http.StatusOK, msgDeleted)
}

// FindByID returns a single product.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.logger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)

	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// List returns one page of the catalog.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, ok := h.decodePage(w, r)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to list products", "page", page.Number(), "limit", page.Size())

	list, err := h.service.List(r.Context(), page)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// ListBySeller returns one page of the caller's products. Any seller id in the body is ignored.
func (h *Handler) ListBySeller(w http.ResponseWriter, r *http.Request) {
	callerID, ok := web.GetUserID(w, r, h.logger)
	if !ok {
		return
	}
	page, ok := h.decodePage(w, r)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to list seller products", "page", page.Number(), "limit", page.Size())

	list, err := h.service.ListBySeller(r.Context(), callerID, page)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// HealthCheck is a simple liveness endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ReadinessCheck answers 503 while the store is unreachable.
func (h *Handler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "Readiness check failed", "error", err)
		web.RespondError(w, h.logger, http.StatusServiceUnavailable, msgStoreNotReady)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) decodePage(w http.ResponseWriter, r *http.Request) (validation.Page, bool) {
	var req validation.PaginationRequest
	if !h.decode(w, r, &req) {
		return validation.Page{}, false
	}
	page, err := h.validator.Pagination(req)
	if err != nil {
		h.respondValidationError(w, r, err)
		return validation.Page{}, false
	}
	return page, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := web.DecodeJSON(w, r, h.maxBodyBytes, dst)
	if err == nil {
		return true
	}
	h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, web.ErrEmptyBody):
		web.RespondError(w, h.logger, http.StatusBadRequest, msgEmptyBody)
	case errors.As(err, &maxBytesErr):
		web.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
	default:
		web.RespondError(w, h.logger, http.StatusBadRequest, msgInvalidBody)
	}
	return false
}

func (h *Handler) respondValidationError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *perrors.ValidationError
	if errors.As(err, &validationErr) {
		h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", validationErr.Fields)
		web.RespondJSON(w, h.logger, http.StatusBadRequest, ValidationErrorResponse{
			Message:          validationErr.Message,
			ValidationErrors: validationErr.Fields,
		})
		return
	}
	h.logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
	web.RespondError(w, h.logger, http.StatusBadRequest, msgInvalidBody)
}

// respondServiceError maps service error kinds to status codes.
// Unknown errors are logged and answered with a generic 500.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, perrors.ErrInvalidProductID):
		h.logger.WarnContext(r.Context(), "Invalid product id", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, msgInvalidID)
	case errors.Is(err, perrors.ErrProductNotFound):
		h.logger.WarnContext(r.Context(), "Product not found", "error", err)
		web.RespondError(w, h.logger, http.StatusNotFound, msgNotFound)
	case errors.Is(err, perrors.ErrAccessDenied):
		h.logger.WarnContext(r.Context(), "Caller is not the product owner", "error", err)
		web.RespondError(w, h.logger, http.StatusForbidden, msgNotOwner)
	default:
		h.logger.ErrorContext(r.Context(), "Error processing request", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, msgInternal)
	}
}
