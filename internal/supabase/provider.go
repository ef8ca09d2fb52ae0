package supabase

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/reel/internal/apperr"
	"github.com/MrSnakeDoc/reel/internal/logger"
)

const defaultTimeout = 10 * time.Second

// Options holds the connection parameters for the hosted backend.
type Options struct {
	URL        string       // project URL, e.g. https://xyz.supabase.co
	Key        string       // anon (public) API key
	JWTSecret  string       // optional, enables local access-token verification
	HTTPClient *http.Client // optional
}

// Provider lazily builds the process-wide Client.
//
// The first successful Handle call is memoized. A failed call caches
// nothing, so fixing the configuration and calling again works.
type Provider struct {
	opts   Options
	logger logger.Logger

	mu     sync.Mutex
	client *Client
}

// NewProvider returns a Provider. Options are not validated until Handle.
func NewProvider(opts Options, log logger.Logger) *Provider {
	return &Provider{
		opts:   opts,
		logger: log,
	}
}

// Handle returns the shared client, creating it on first use.
func (p *Provider) Handle() (*Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	url := strings.TrimRight(strings.TrimSpace(p.opts.URL), "/")
	if url == "" {
		err := &apperr.ConfigurationError{Field: "SUPABASE_URL"}
		p.logger.Error("supabase handle unavailable", logger.Error(err))
		return nil, err
	}
	key := strings.TrimSpace(p.opts.Key)
	if key == "" {
		err := &apperr.ConfigurationError{Field: "SUPABASE_KEY"}
		p.logger.Error("supabase handle unavailable", logger.Error(err))
		return nil, err
	}

	httpClient := p.opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	p.client = &Client{
		url:        url,
		key:        key,
		jwtSecret:  []byte(p.opts.JWTSecret),
		httpClient: httpClient,
		logger:     p.logger.With(logger.String("component", "supabase")),
	}
	p.logger.Info("supabase handle ready", logger.String("url", url))

	return p.client, nil
}
