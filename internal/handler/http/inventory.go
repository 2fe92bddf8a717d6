package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/PosGo/internal/service"
	"github.com/utafrali/PosGo/pkg/httputil"
	"github.com/utafrali/PosGo/pkg/validator"
)

// InventoryHandler handles HTTP requests for product endpoints.
type InventoryHandler struct {
	service *service.InventoryService
	logger  *slog.Logger
}

// NewInventoryHandler creates a new inventory HTTP handler.
func NewInventoryHandler(svc *service.InventoryService, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: svc,
		logger:  logger,
	}
}

// ProductRequest is the JSON request body for creating or updating a product.
type ProductRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description string  `json:"description" validate:"max=1000"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
}

// productListResponse carries the snapshot contents plus its age so the UI
// can flag stale stock figures.
type productListResponse struct {
	Products  any        `json:"products"`
	FetchedAt *time.Time `json:"fetched_at,omitempty"`
}

// ListProducts handles GET /api/v1/products
func (h *InventoryHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, fetchedAt, err := h.service.ListProducts(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	resp := productListResponse{Products: products}
	if !fetchedAt.IsZero() {
		resp.FetchedAt = &fetchedAt
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: resp})
}

// GetProduct handles GET /api/v1/products/{pid}
func (h *InventoryHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	pid := chi.URLParam(r, "pid")

	product, err := h.service.GetProduct(r.Context(), pid)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// RefreshInventory handles POST /api/v1/products/refresh
func (h *InventoryHandler) RefreshInventory(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Refresh(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data:    productListResponse{Products: products},
		Message: "Inventory refreshed",
	})
}

// AddProduct handles POST /api/v1/products
func (h *InventoryHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.service.AddProduct(r.Context(), service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	}); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Message: "Product added"})
}

// UpdateProduct handles PUT /api/v1/products/{pid}
func (h *InventoryHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	pid := chi.URLParam(r, "pid")
	if pid == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "pid is required"},
		})
		return
	}

	var req ProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.service.UpdateProduct(r.Context(), pid, service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	}); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Message: "Product updated"})
}
