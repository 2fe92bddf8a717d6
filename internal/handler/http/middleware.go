package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/utafrali/PosGo/pkg/httputil"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// operatorIDKey is the context key for the till operator identity.
const operatorIDKey contextKey = "operator_id"

// OperatorIDFromHeader is middleware that reads the X-Operator-ID header set
// by the terminal frontend and stores it in the request context. Requests
// without an operator identity are rejected; there is no anonymous cart.
func OperatorIDFromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		oid := r.Header.Get("X-Operator-ID")
		if oid == "" {
			httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "X-Operator-ID header is required"},
			})
			return
		}
		ctx := context.WithValue(r.Context(), operatorIDKey, oid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// operatorIDFromContext extracts the operator ID from the request context.
func operatorIDFromContext(ctx context.Context) (string, bool) {
	oid, ok := ctx.Value(operatorIDKey).(string)
	return oid, ok && oid != ""
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "Content-Type must be application/json"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
