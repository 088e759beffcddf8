// Package bexio is a minimal REST client for the Bexio API. It owns the
// outbound concerns the completion engine must not: bearer auth, timeouts,
// rate limiting, and bounded retries on transient statuses.
package bexio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the production Bexio API host (version paths are
	// part of each endpoint, e.g. /2.0/contact vs /3.0/taxes).
	DefaultBaseURL = "https://api.bexio.com"

	defaultTimeout    = 120 * time.Second
	defaultMaxRetries = 3
	initialBackoff    = 500 * time.Millisecond

	// Bexio allows roughly 2 requests per second per token.
	defaultRateLimit = rate.Limit(2)
)

// Options configure a Client. Zero values fall back to defaults.
type Options struct {
	Token      string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int // attempts on 429/5xx and transport errors
}

// Client talks to the Bexio REST API.
type Client struct {
	token      string
	baseURL    string
	maxRetries int
	backoff    time.Duration
	limiter    *rate.Limiter
	client     *http.Client
}

// New creates a Bexio API client.
func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	retries := opts.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}
	return &Client{
		token:      opts.Token,
		baseURL:    baseURL,
		maxRetries: retries,
		backoff:    initialBackoff,
		limiter:    rate.NewLimiter(defaultRateLimit, 1),
		client:     &http.Client{Timeout: timeout},
	}
}

// do performs one API request with rate limiting and bounded retries.
// Transport errors and 429/5xx responses are retried with exponential
// backoff; all other 4xx responses surface immediately as *APIError.
func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values, body any) (json.RawMessage, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff << (attempt - 1)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return respBody, nil
		}

		apiErr := parseAPIError(resp.StatusCode, respBody)
		if !apiErr.Transient() {
			return nil, apiErr
		}
		lastErr = apiErr
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, c.maxRetries, lastErr)
}

// parseAPIError extracts the remote message and field errors from an error
// body. Bexio reports either {"message": ...} or {"error": ...} plus an
// optional "errors" member that is a list or a field→reasons map.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: body}

	var parsed struct {
		Message string          `json:"message"`
		Error   string          `json:"error"`
		Detail  string          `json:"detail"`
		Errors  json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}

	switch {
	case parsed.Message != "":
		apiErr.Message = parsed.Message
	case parsed.Error != "":
		apiErr.Message = parsed.Error
	case parsed.Detail != "":
		apiErr.Message = parsed.Detail
	}

	if len(parsed.Errors) > 0 {
		var asList []string
		if err := json.Unmarshal(parsed.Errors, &asList); err == nil {
			apiErr.FieldErrors = asList
			return apiErr
		}
		var asMap map[string][]string
		if err := json.Unmarshal(parsed.Errors, &asMap); err == nil {
			for field, reasons := range asMap {
				for _, reason := range reasons {
					apiErr.FieldErrors = append(apiErr.FieldErrors, field+": "+reason)
				}
			}
		}
	}

	return apiErr
}

// Get performs a GET request against an API endpoint.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, endpoint, params, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, endpoint, nil, body)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, endpoint, nil, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil)
}
