package bexio

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingToken indicates no access token was configured
	ErrMissingToken = errors.New("Bexio access token not configured. Set BEXIO_ACCESS_TOKEN or run 'bexmcp config set token <token>'")

	// ErrRetriesExhausted indicates a transient remote failure persisted across all attempts
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// APIError is a non-2xx response from the Bexio API. The raw body is kept so
// the error translator can map 422 field errors into caller guidance.
type APIError struct {
	StatusCode  int
	Message     string
	FieldErrors []string
	Body        []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("bexio API error: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("bexio API error: HTTP %d", e.StatusCode)
}

// Transient reports whether the status is worth retrying (429 or 5xx).
// Validation and auth failures need caller correction, not resubmission.
func (e *APIError) Transient() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
