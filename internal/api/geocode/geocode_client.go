// Package geocode resolves free-text places to coordinates with the Google Geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/maypok86/otter/v2"

	"github.com/Danielle-Barbieri/seat-scout/app/observability/metrics"
	"github.com/Danielle-Barbieri/seat-scout/internal/types"
)

const DefaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

var (
	// ErrNoMatch is returned when the provider found nothing for the query.
	ErrNoMatch = errors.New("no geocoding match")
	// ErrUpstream wraps transport and provider failures.
	ErrUpstream = errors.New("geocoding failed")
)

// HTTPClient is satisfied by *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Options struct {
	APIKey    string
	BaseURL   string
	CacheSize int
	CacheTTL  time.Duration
}

// Client geocodes text and remembers answers in a bounded TTL cache.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPClient
	logger     *slog.Logger
	cache      *otter.Cache[string, types.GeocodeResult]
}

func NewClient(opts Options, httpClient HTTPClient, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 10_000
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 24 * time.Hour
	}
	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    opts.BaseURL,
		httpClient: httpClient,
		logger:     logger,
		cache: otter.Must(&otter.Options[string, types.GeocodeResult]{
			MaximumSize:      opts.CacheSize,
			ExpiryCalculator: otter.ExpiryWriting[string, types.GeocodeResult](opts.CacheTTL),
		}),
	}
}

type geocodeResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

// Geocode returns the first match for text.
func (c *Client) Geocode(ctx context.Context, text string) (*types.GeocodeResult, error) {
	query := strings.TrimSpace(text)
	if query == "" {
		return nil, ErrNoMatch
	}
	key := strings.ToLower(query)
	if cached, ok := c.cache.GetIfPresent(key); ok {
		metrics.Get().CacheHitsTotal.Add(ctx, 1)
		return &cached, nil
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: api key not configured", ErrUpstream)
	}

	params := url.Values{}
	params.Set("address", query)
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.Get().UpstreamErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Debug("failed to close response body", slog.Any("error", err))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %w", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.Get().UpstreamErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var result geocodeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %w", ErrUpstream, err)
	}

	switch result.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, ErrNoMatch
	default:
		metrics.Get().UpstreamErrorsTotal.Add(ctx, 1)
		c.logger.WarnContext(ctx, "Geocoding rejected", slog.String("status", result.Status), slog.String("message", result.ErrorMessage))
		return nil, fmt.Errorf("%w: status %s", ErrUpstream, result.Status)
	}
	if len(result.Results) == 0 {
		return nil, ErrNoMatch
	}

	first := result.Results[0]
	out := types.GeocodeResult{
		Lat:              first.Geometry.Location.Lat,
		Lng:              first.Geometry.Location.Lng,
		FormattedAddress: first.FormattedAddress,
	}
	c.cache.Set(key, out)
	return &out, nil
}
