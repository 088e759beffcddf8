package completion

import (
	"errors"
	"fmt"
	"strings"

	"bexmcp/internal/bexio"
)

// RemoteErrorKind classifies a non-validation remote failure.
type RemoteErrorKind int

const (
	// AuthExpired means the access token was rejected; retrying cannot help.
	AuthExpired RemoteErrorKind = iota

	// RemoteTransient means the remote system was unavailable or throttling
	// even after retries; the same request may succeed later.
	RemoteTransient

	// RemoteRejected covers every other remote refusal (404, 403, ...).
	RemoteRejected
)

func (k RemoteErrorKind) String() string {
	switch k {
	case AuthExpired:
		return "auth_expired"
	case RemoteTransient:
		return "remote_transient"
	case RemoteRejected:
		return "remote_rejected"
	}
	return "unknown"
}

// RemoteError is a remote failure translated into caller guidance.
type RemoteError struct {
	Kind       RemoteErrorKind
	StatusCode int
	Message    string
	Guidance   string
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Translate maps a remote API error into the same vocabulary the completion
// engine uses, so a 422 the remote catches looks identical to one caught
// locally. Errors that are not remote failures pass through unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *bexio.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 422:
			return translateValidation(apiErr)
		case apiErr.StatusCode == 401:
			return &RemoteError{
				Kind:       AuthExpired,
				StatusCode: apiErr.StatusCode,
				Message:    apiErr.Message,
				Guidance:   "The Bexio access token was rejected. Issue a new token in the Bexio admin area and update BEXIO_ACCESS_TOKEN.",
			}
		case apiErr.Transient():
			return &RemoteError{
				Kind:       RemoteTransient,
				StatusCode: apiErr.StatusCode,
				Message:    apiErr.Message,
				Guidance:   "Bexio is temporarily unavailable or rate limiting. Retry the request shortly.",
			}
		default:
			return &RemoteError{
				Kind:       RemoteRejected,
				StatusCode: apiErr.StatusCode,
				Message:    apiErr.Message,
				Guidance:   fmt.Sprintf("Bexio rejected the request with HTTP %d. Check that the referenced record exists and the token has the required scopes.", apiErr.StatusCode),
			}
		}
	}

	if errors.Is(err, bexio.ErrRetriesExhausted) {
		return &RemoteError{
			Kind:     RemoteTransient,
			Message:  err.Error(),
			Guidance: "Bexio stayed unavailable across all retry attempts. Retry the request later.",
		}
	}

	return err
}

// translateValidation turns a remote 422 into a ValidationFailure carrying
// the same per-field kinds and guidance the engine would have produced.
func translateValidation(apiErr *bexio.APIError) error {
	failure := &ValidationFailure{}

	for _, fe := range apiErr.FieldErrors {
		field, reason := splitFieldError(fe)
		kind := InvalidFieldValue
		if isMissingReason(reason) {
			kind = MissingRequiredField
		}
		guidance := guidanceFor(field, kind)
		if reason != "" {
			guidance = reason + " " + guidance
		}
		failure.add(field, kind, guidance)
	}

	if len(failure.Fields) == 0 {
		msg := apiErr.Message
		if msg == "" {
			msg = "the submitted data was rejected"
		}
		failure.add("", InvalidFieldValue, "Bexio rejected the payload: "+msg)
	}
	return failure
}

// splitFieldError parses the "field: reason" strings the client assembles
// from 422 bodies. Lines without a separator keep the whole text as reason.
func splitFieldError(s string) (field, reason string) {
	if i := strings.Index(s, ":"); i >= 0 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
	}
	return "", strings.TrimSpace(s)
}

func isMissingReason(reason string) bool {
	lower := strings.ToLower(reason)
	for _, marker := range []string{"blank", "required", "missing", "not set", "must be set"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
