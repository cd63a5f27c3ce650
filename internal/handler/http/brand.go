package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront-admin/internal/domain"
	"github.com/utafrali/storefront-admin/internal/repository"
	"github.com/utafrali/storefront-admin/internal/service"
	"github.com/utafrali/storefront-admin/pkg/httputil"
	"github.com/utafrali/storefront-admin/pkg/pagination"
)

// BrandHandler handles HTTP requests for brand endpoints.
type BrandHandler struct {
	service *service.BrandService
	logger  *slog.Logger
}

// NewBrandHandler creates a new brand HTTP handler.
func NewBrandHandler(svc *service.BrandService, logger *slog.Logger) *BrandHandler {
	return &BrandHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateBrandRequest is the JSON request body for creating or validating a
// brand. Field rules beyond shape are enforced by the service.
type CreateBrandRequest struct {
	Name        string  `json:"name" validate:"max=1000"`
	URL         string  `json:"url" validate:"max=2048"`
	Description string  `json:"description" validate:"max=10000"`
	IsVisible   *bool   `json:"is_visible"`
	PrimaryHex  *string `json:"primary_hex" validate:"omitempty,hexcolor"`
}

// UpdateBrandRequest is the JSON request body for updating a brand. Slug is
// accepted and ignored.
type UpdateBrandRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=1000"`
	Slug        *string `json:"slug"`
	URL         *string `json:"url" validate:"omitempty,max=2048"`
	Description *string `json:"description" validate:"omitempty,max=10000"`
	IsVisible   *bool   `json:"is_visible"`
	PrimaryHex  *string `json:"primary_hex" validate:"omitempty,hexcolor"`
}

func (req *CreateBrandRequest) input() *service.CreateBrandInput {
	return &service.CreateBrandInput{
		Name:        req.Name,
		URL:         req.URL,
		Description: req.Description,
		IsVisible:   req.IsVisible,
		PrimaryHex:  req.PrimaryHex,
	}
}

// --- Handlers ---

// ListBrands handles GET /api/v1/brands
func (h *BrandHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	filter := repository.BrandFilter{
		Search:  queryString(r, "search"),
		Page:    params.Page,
		PerPage: params.PerPage,
	}

	var ok bool
	if filter.IsVisible, ok = queryBool(w, r, "is_visible"); !ok {
		return
	}
	includeDeleted, ok := queryBool(w, r, "include_deleted")
	if !ok {
		return
	}
	filter.IncludeDeleted = includeDeleted != nil && *includeDeleted

	brands, total, err := h.service.ListBrands(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(brands, total, params))
}

// GetBrand handles GET /api/v1/brands/{id}
func (h *BrandHandler) GetBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	brand, err := h.service.GetBrand(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: brand})
}

// CreateBrand handles POST /api/v1/brands
func (h *BrandHandler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var req CreateBrandRequest
	if !decode(w, r, &req) {
		return
	}

	brand, err := h.service.CreateBrand(r.Context(), req.input())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: brand})
}

// ValidateBrand handles POST /api/v1/brands/validate. It runs every create
// check without storing anything.
func (h *BrandHandler) ValidateBrand(w http.ResponseWriter, r *http.Request) {
	var req CreateBrandRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.service.ValidateBrand(r.Context(), req.input()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]bool{"valid": true}})
}

// UpdateBrand handles PUT /api/v1/brands/{id}
func (h *BrandHandler) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateBrandRequest
	if !decode(w, r, &req) {
		return
	}

	patch := domain.BrandPatch{
		Name:        req.Name,
		Slug:        req.Slug,
		URL:         req.URL,
		Description: req.Description,
		IsVisible:   req.IsVisible,
		PrimaryHex:  req.PrimaryHex,
	}

	brand, err := h.service.UpdateBrand(r.Context(), id.String(), patch)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: brand})
}

// DeleteBrand handles DELETE /api/v1/brands/{id}
func (h *BrandHandler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.SoftDeleteBrand(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id.String(), "status": "deleted"}})
}

// BulkDeleteBrands handles POST /api/v1/brands/bulk-delete
func (h *BrandHandler) BulkDeleteBrands(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.service.SoftDeleteBrands(r.Context(), req.IDs)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}
