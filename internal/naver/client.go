// Package naver talks to the Naver Cloud Platform Maps geocoding and
// directions APIs.
package naver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/seoul-transit/service-route-search/internal/config"
)

const (
	headerKeyID = "X-NCP-APIGW-API-KEY-ID"
	headerKey   = "X-NCP-APIGW-API-KEY"

	// defaultRouteOption is the candidate list the transit endpoint returns
	// without an explicit option parameter.
	defaultRouteOption = "trafast"

	// maxBodyBytes bounds how much of a provider response is read.
	maxBodyBytes = 4 << 20

	// maxLoggedBody bounds how much of a raw response is written to logs.
	maxLoggedBody = 512

	httpMaxIdleConns    = 10
	httpIdleConnTimeout = 30 * time.Second
)

// Client calls the Naver Maps APIs. It is safe for concurrent use.
type Client struct {
	clientID      string
	clientSecret  string
	geocodeURL    string
	directionsURL string
	routeOption   string
	httpClient    *http.Client
	validate      *validator.Validate
	logger        *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Client from the immutable Naver configuration.
func NewClient(cfg config.NaverConfig, logger *zap.Logger, opts ...Option) *Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        httpMaxIdleConns,
		MaxIdleConnsPerHost: httpMaxIdleConns,
		IdleConnTimeout:     httpIdleConnTimeout,
	}

	routeOption := cfg.RouteOption
	if routeOption == "" {
		routeOption = defaultRouteOption
	}

	c := &Client{
		clientID:      cfg.ClientID,
		clientSecret:  cfg.ClientSecret,
		geocodeURL:    cfg.GeocodeURL,
		directionsURL: cfg.DirectionsURL,
		routeOption:   routeOption,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		validate: validator.New(),
		logger:   logger.Named("naver"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// HasCredentials reports whether both API credentials are configured.
func (c *Client) HasCredentials() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// get performs an authenticated GET and returns the HTTP status and body.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (int, []byte, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return 0, nil, fmt.Errorf("parse endpoint: %w", err)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(headerKeyID, c.clientID)
	req.Header.Set(headerKey, c.clientSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("http: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// truncate shortens a raw body for logging.
func truncate(body []byte) string {
	if len(body) <= maxLoggedBody {
		return string(body)
	}
	return string(body[:maxLoggedBody]) + "..."
}
