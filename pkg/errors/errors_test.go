package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_SentinelMatching(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		status   int
		code     string
	}{
		{"not found", NotFound("product", "P100"), ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"invalid input", InvalidInput("bad"), ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
		{"out of stock", OutOfStock("Rice", 3), ErrOutOfStock, http.StatusConflict, "OUT_OF_STOCK"},
		{"empty cart", EmptyCart(), ErrEmptyCart, http.StatusBadRequest, "EMPTY_CART"},
		{"checkout in progress", CheckoutInProgress(), ErrCheckoutInProgress, http.StatusConflict, "CHECKOUT_IN_PROGRESS"},
		{"checkout failed", CheckoutFailed("backend said no"), ErrCheckoutFailed, http.StatusBadGateway, "CHECKOUT_FAILED"},
		{"unavailable", Unavailable("backend down"), ErrServiceUnavail, http.StatusServiceUnavailable, "BACKEND_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.status, HTTPStatus(tt.err))

			var appErr *AppError
			require.ErrorAs(t, tt.err, &appErr)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
}

func TestOutOfStock_Message(t *testing.T) {
	err := OutOfStock("Rice", 3)
	assert.Equal(t, "insufficient stock for Rice: only 3 available", err.Message)
}

func TestHTTPStatus_WrappedError(t *testing.T) {
	err := fmt.Errorf("save cart: %w", OutOfStock("Rice", 0))
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))
}

func TestHTTPStatus_UnknownError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestWrap(t *testing.T) {
	base := errors.New("connection reset")
	wrapped := Wrap(base, "redis get")
	assert.ErrorIs(t, wrapped, base)
	assert.Contains(t, wrapped.Error(), "redis get")
}
