package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/MrSnakeDoc/reel/internal/apperr"
	"github.com/MrSnakeDoc/reel/internal/logger"
	"github.com/MrSnakeDoc/reel/internal/utils"
)

// Client is an authenticated channel to the backend's auth and data APIs.
// It is safe for concurrent use.
type Client struct {
	url        string
	key        string
	jwtSecret  []byte
	httpClient *http.Client
	logger     logger.Logger
}

// APIError is a non-2xx answer from the auth or data API.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	Hint       string `json:"hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return apperr.ErrRemoteRequest }

// request describes one call against the project.
type request struct {
	method  string
	path    string
	query   url.Values
	token   string // bearer token, falls back to the API key
	body    any
	headers map[string]string
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	endpoint := c.url + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, body)
	if err != nil {
		return &apperr.TransportError{Endpoint: r.path, Err: fmt.Errorf("create request: %w", err)}
	}

	token := r.token
	if token == "" {
		token = c.key
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apperr.TransportError{Endpoint: r.path, Err: err}
	}
	defer utils.DrainClose(resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apperr.TransportError{Endpoint: r.path, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseAPIError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &apperr.TransportError{Endpoint: r.path, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// parseAPIError understands both auth-style ({"error_description": ...},
// {"msg": ...}) and data-style ({"code","message","details","hint"}) bodies.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		apiErr.Message = http.StatusText(status)
		return apiErr
	}

	apiErr.Code = firstString(fields, "error_code", "code", "error")
	apiErr.Message = firstString(fields, "message", "msg", "error_description", "error")
	apiErr.Details = firstString(fields, "details")
	apiErr.Hint = firstString(fields, "hint")
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

func firstString(fields map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := fields[k]
		if !ok || v == nil {
			continue
		}
		if s := fmt.Sprint(v); s != "" {
			return s
		}
	}
	return ""
}
