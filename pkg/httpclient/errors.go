package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/PosGo/pkg/errors"
)

// backendErrorBody mirrors the `{"error": "..."}` shape the billing backend
// returns on non-2xx responses.
type backendErrorBody struct {
	Error string `json:"error"`
}

// ParseResponseError reads the body of a non-2xx HTTP response from the
// billing backend and translates it into an appropriate AppError. Bodies
// matching the backend's `{"error": "..."}` shape keep their message;
// anything else is surfaced with the status code and raw body.
//
// The caller should only invoke this when resp.StatusCode indicates an error
// (i.e., not 2xx). The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	message := string(bodyBytes)
	var backend backendErrorBody
	if json.Unmarshal(bodyBytes, &backend) == nil && backend.Error != "" {
		message = backend.Error
	}

	return mapBackendError(resp.StatusCode, message, serviceName)
}

// mapBackendError translates the backend's HTTP status code into an AppError
// that preserves the error semantics.
func mapBackendError(status int, message, serviceName string) error {
	qualifiedMsg := fmt.Sprintf("%s: %s", serviceName, message)

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(serviceName, message)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(qualifiedMsg)
	case status == http.StatusServiceUnavailable:
		return apperrors.Unavailable(qualifiedMsg)
	case status >= 500:
		return fmt.Errorf("%s server error (%d): %s", serviceName, status, message)
	default:
		return &apperrors.AppError{
			Code:    "BACKEND_ERROR",
			Message: qualifiedMsg,
			Status:  status,
		}
	}
}
