package ramekin

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ramekin/ramekin-web/internal/errors"
)

// APIError is a non-2xx response from the backend. Message is the server's
// {"error": ...} text when one was sent.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ramekin: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("ramekin: unexpected status %d", e.Status)
}

// Unwrap maps the status onto the shared error codes so callers can use
// errors.Is(err, errors.ErrUnauthorized) and friends.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return errors.ErrUnauthorized
	case http.StatusNotFound:
		return errors.ErrNotFound
	case http.StatusConflict:
		return errors.ErrConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return errors.ErrValidation
	default:
		return errors.ErrInternal
	}
}

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil {
		apiErr.Message = strings.TrimSpace(body.Error)
	}
	return apiErr
}

// ErrorMessage returns the server-provided message carried by err, or
// fallback when the backend sent none (or the request never completed).
func ErrorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}
