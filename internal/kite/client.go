package kite

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"kitescreener/models"
)

const defaultBaseURL = "https://api.kite.trade"

// DefaultMinInterval is the minimum gap between any two outbound API calls.
const DefaultMinInterval = 350 * time.Millisecond

// Client talks to the Kite Connect REST API. Every network call, regardless
// of endpoint, passes through one shared limiter: a single serialized gate
// enforcing the minimum inter-call interval.
type Client struct {
	http    *resty.Client
	apiKey  string
	session models.SessionProvider
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// ClientOptions holds options for creating a new Client
type ClientOptions struct {
	APIKey      string
	Session     models.SessionProvider
	BaseURL     string
	Timeout     time.Duration
	MinInterval time.Duration
}

// NewClient creates a new Kite API client with a global throttle
func NewClient(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MinInterval == 0 {
		opts.MinInterval = DefaultMinInterval
	}

	httpClient := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("X-Kite-Version", "3")

	return &Client{
		http:    httpClient,
		apiKey:  opts.APIKey,
		session: opts.Session,
		limiter: rate.NewLimiter(rate.Every(opts.MinInterval), 1),
		logger:  log.With().Str("component", "kite_client").Logger(),
	}
}

// get performs one throttled, authenticated GET and classifies failures.
func (c *Client) get(ctx context.Context, path string, query url.Values) (*resty.Response, error) {
	if c.session == nil || !c.session.Valid() {
		return nil, ErrNotAuthenticated
	}

	// Wait for the shared gate
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "token "+c.apiKey+":"+c.session.Token())
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}

	c.logger.Debug().Str("path", path).Msg("GET")

	resp, err := req.Get(path)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode() == http.StatusForbidden:
		// Kite reports an expired or invalid token as a 403 TokenException
		return nil, ErrNotAuthenticated
	case resp.StatusCode() == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode() != http.StatusOK:
		return nil, &HTTPError{Status: resp.StatusCode(), Body: string(resp.Body())}
	}

	return resp, nil
}
