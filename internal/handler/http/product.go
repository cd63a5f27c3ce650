package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront-admin/internal/domain"
	"github.com/utafrali/storefront-admin/internal/repository"
	"github.com/utafrali/storefront-admin/internal/service"
	apperrors "github.com/utafrali/storefront-admin/pkg/errors"
	"github.com/utafrali/storefront-admin/pkg/httputil"
	"github.com/utafrali/storefront-admin/pkg/pagination"
)

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateProductRequest is the JSON request body for creating or validating a
// product. Price may be sent as a JSON number or a decimal string.
type CreateProductRequest struct {
	Name        string      `json:"name" validate:"max=1000"`
	Description string      `json:"description" validate:"max=65535"`
	SKU         string      `json:"sku" validate:"max=255"`
	Price       json.Number `json:"price"`
	Quantity    int         `json:"quantity"`
	Type        string      `json:"type" validate:"omitempty,oneof=downloadable deliverable"`
	IsVisible   *bool       `json:"is_visible"`
	IsFeatured  *bool       `json:"is_featured"`
	PublishedAt string      `json:"published_at"`
	Image       string      `json:"image" validate:"max=2048"`
	BrandID     string      `json:"brand_id" validate:"omitempty,uuid"`
}

// UpdateProductRequest is the JSON request body for updating a product. All
// fields are optional and slug is ignored.
type UpdateProductRequest struct {
	Name        *string      `json:"name" validate:"omitempty,max=1000"`
	Slug        *string      `json:"slug"`
	Description *string      `json:"description" validate:"omitempty,max=65535"`
	SKU         *string      `json:"sku" validate:"omitempty,max=255"`
	Price       *json.Number `json:"price"`
	Quantity    *int         `json:"quantity"`
	Type        *string      `json:"type" validate:"omitempty,oneof=downloadable deliverable"`
	IsVisible   *bool        `json:"is_visible"`
	IsFeatured  *bool        `json:"is_featured"`
	PublishedAt *string      `json:"published_at"`
	Image       *string      `json:"image" validate:"omitempty,max=2048"`
	BrandID     *string      `json:"brand_id" validate:"omitempty,uuid"`
}

func (req *CreateProductRequest) input() (*service.CreateProductInput, error) {
	in := &service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		SKU:         req.SKU,
		Price:       req.Price.String(),
		Quantity:    req.Quantity,
		Type:        req.Type,
		IsVisible:   req.IsVisible,
		IsFeatured:  req.IsFeatured,
		Image:       req.Image,
		BrandID:     req.BrandID,
	}
	if req.PublishedAt != "" {
		at, err := parsePublishedAt(req.PublishedAt)
		if err != nil {
			return nil, err
		}
		in.PublishedAt = at
	}
	return in, nil
}

func (req *UpdateProductRequest) input() (*service.UpdateProductInput, error) {
	in := &service.UpdateProductInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		SKU:         req.SKU,
		Quantity:    req.Quantity,
		Type:        req.Type,
		IsVisible:   req.IsVisible,
		IsFeatured:  req.IsFeatured,
		Image:       req.Image,
		BrandID:     req.BrandID,
	}
	if req.Price != nil {
		price := req.Price.String()
		in.Price = &price
	}
	if req.PublishedAt != nil {
		at, err := parsePublishedAt(*req.PublishedAt)
		if err != nil {
			return nil, err
		}
		in.PublishedAt = &at
	}
	return in, nil
}

// parsePublishedAt accepts a calendar date or an RFC 3339 timestamp.
func parsePublishedAt(raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, apperrors.InvalidFormat("published_at", "a date like 2006-01-02")
}

// --- Handlers ---

// ListProducts handles GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	filter := repository.ProductFilter{
		BrandID: queryString(r, "brand_id"),
		Search:  queryString(r, "search"),
		Page:    params.Page,
		PerPage: params.PerPage,
	}

	if v := queryString(r, "type"); v != nil {
		t := domain.ProductType(*v)
		if !t.IsValid() {
			writeInvalidParameter(w, "type must be one of: downloadable, deliverable")
			return
		}
		filter.Type = &t
	}

	var ok bool
	if filter.IsVisible, ok = queryBool(w, r, "is_visible"); !ok {
		return
	}
	if filter.IsFeatured, ok = queryBool(w, r, "is_featured"); !ok {
		return
	}
	includeDeleted, ok := queryBool(w, r, "include_deleted")
	if !ok {
		return
	}
	filter.IncludeDeleted = includeDeleted != nil && *includeDeleted

	products, total, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(products, total, params))
}

// GetProduct handles GET /api/v1/products/{id}. The path segment may be a
// product UUID or a slug. The response carries the brand and image URL.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	idOrSlug := chi.URLParam(r, "id")
	if idOrSlug == "" {
		writeInvalidParameter(w, "product id or slug is required")
		return
	}

	detail, err := h.service.GetProductDetail(r.Context(), idOrSlug)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: detail})
}

// CreateProduct handles POST /api/v1/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !decode(w, r, &req) {
		return
	}

	input, err := req.input()
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// ValidateProduct handles POST /api/v1/products/validate. It runs every
// create check without storing anything.
func (h *ProductHandler) ValidateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !decode(w, r, &req) {
		return
	}

	input, err := req.input()
	if err == nil {
		err = h.service.ValidateProduct(r.Context(), input)
	}
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]bool{"valid": true}})
}

// UpdateProduct handles PUT /api/v1/products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateProductRequest
	if !decode(w, r, &req) {
		return
	}

	input, err := req.input()
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id.String(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// DeleteProduct handles DELETE /api/v1/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.SoftDeleteProduct(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id.String(), "status": "deleted"}})
}

// BulkDeleteProducts handles POST /api/v1/products/bulk-delete
func (h *ProductHandler) BulkDeleteProducts(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.service.SoftDeleteProducts(r.Context(), req.IDs)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}
