package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MrSnakeDoc/reel/internal/apperr"
	"github.com/MrSnakeDoc/reel/internal/logger"
	"github.com/MrSnakeDoc/reel/internal/utils"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public v3 API root.
	DefaultBaseURL = "https://api.themoviedb.org/3"

	defaultTimeout = 10 * time.Second
)

// Options configures a Client.
type Options struct {
	BaseURL    string       // API root, defaults to DefaultBaseURL
	Token      string       // v4 read access token, sent as a bearer token
	HTTPClient *http.Client // optional, defaults to a client with a 10s timeout
	RateLimit  float64      // requests per second, 0 disables pacing
	Burst      int          // limiter burst, defaults to 1
}

// Client issues authenticated GET requests against the catalog API.
// It never retries; failures are logged and returned to the caller.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logger.Logger
}

// New creates a catalog client.
func New(opts Options, log logger.Logger) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		baseURL:    baseURL,
		token:      opts.Token,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     log,
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Fetch performs GET {baseURL}/{endpoint}?{params} and decodes the JSON body into out.
func (c *Client) Fetch(ctx context.Context, endpoint string, params Params, out any) error {
	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		err = &apperr.TransportError{Endpoint: endpoint, Err: fmt.Errorf("decode response: %w", err)}
		c.logger.Error("tmdb fetch failed",
			logger.String("endpoint", endpoint),
			logger.Error(err))
		return err
	}
	return nil
}

// FetchRaw is Fetch without decoding. The body is checked to be valid JSON.
func (c *Client) FetchRaw(ctx context.Context, endpoint string, params Params) (json.RawMessage, error) {
	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		err = &apperr.TransportError{Endpoint: endpoint, Err: errors.New("response is not valid JSON")}
		c.logger.Error("tmdb fetch failed",
			logger.String("endpoint", endpoint),
			logger.Error(err))
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *Client) get(ctx context.Context, endpoint string, params Params) ([]byte, error) {
	endpoint = strings.TrimLeft(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, apperr.InvalidArgument("endpoint must not be empty")
	}

	fullURL := c.baseURL + "/" + endpoint
	if q := params.encode(); q != "" {
		fullURL += "?" + q
	}

	body, err := c.do(ctx, endpoint, fullURL)
	if err != nil {
		c.logger.Error("tmdb fetch failed",
			logger.String("endpoint", endpoint),
			logger.Error(err))
		return nil, err
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, endpoint, fullURL string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &apperr.TransportError{Endpoint: endpoint, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &apperr.TransportError{Endpoint: endpoint, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &apperr.TransportError{Endpoint: endpoint, Err: err}
	}
	defer utils.DrainClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apperr.RequestError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperr.TransportError{Endpoint: endpoint, Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug("tmdb fetch",
		logger.String("endpoint", endpoint),
		logger.Int("status", resp.StatusCode),
		logger.Duration("took", time.Since(start)))

	return body, nil
}
