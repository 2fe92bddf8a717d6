package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/PosGo/internal/service"
	"github.com/utafrali/PosGo/pkg/httputil"
	"github.com/utafrali/PosGo/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// AddItemRequest is the JSON request body for adding an item to the cart.
// Quantity is optional and defaults to one unit.
type AddItemRequest struct {
	PID      string `json:"pid" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

// UpdateQuantityRequest is the JSON request body for setting an item quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	operatorID, _ := operatorIDFromContext(r.Context())

	view, err := h.service.GetCart(r.Context(), operatorID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	operatorID, _ := operatorIDFromContext(r.Context())

	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	view, err := h.service.AddItem(r.Context(), operatorID, service.AddItemInput{
		PID:      req.PID,
		Quantity: req.Quantity,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data:    view,
		Message: addedMessage(view, req.PID),
	})
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{pid}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	operatorID, _ := operatorIDFromContext(r.Context())

	pid := chi.URLParam(r, "pid")
	if pid == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "pid is required"},
		})
		return
	}

	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	view, err := h.service.SetQuantity(r.Context(), operatorID, pid, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view, Message: "Quantity updated"})
}

// RemoveItem handles DELETE /api/v1/cart/items/{pid}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	operatorID, _ := operatorIDFromContext(r.Context())

	pid := chi.URLParam(r, "pid")
	if pid == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "pid is required"},
		})
		return
	}

	view, err := h.service.RemoveItem(r.Context(), operatorID, pid)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view, Message: "Item removed"})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	operatorID, _ := operatorIDFromContext(r.Context())

	if err := h.service.ClearCart(r.Context(), operatorID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data:    map[string]string{"status": "cleared"},
		Message: "Cart cleared",
	})
}

func addedMessage(view *service.CartView, pid string) string {
	if idx := view.Cart.FindItemIndex(pid); idx >= 0 {
		return fmt.Sprintf("Added %s to cart", view.Cart.Items[idx].Name)
	}
	return "Added item to cart"
}
