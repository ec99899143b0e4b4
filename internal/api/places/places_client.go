// Package places talks to the Google Places API (New) nearby search endpoint.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"golang.org/x/time/rate"

	"github.com/Danielle-Barbieri/seat-scout/internal/types"
)

const (
	DefaultBaseURL      = "https://places.googleapis.com/v1"
	DefaultRadiusMeters = 2000
	DefaultMaxResults   = 20

	nearbyPath = "/places:searchNearby"
	fieldMask  = "places.id,places.displayName,places.types,places.formattedAddress,places.location," +
		"places.rating,places.userRatingCount,places.regularOpeningHours.weekdayDescriptions," +
		"places.currentOpeningHours.openNow,places.dineIn,places.takeout"
	maxBodyBytes = 4 << 20
)

// ErrUpstream wraps every failure of the place-search provider.
var ErrUpstream = errors.New("place search failed")

// includedTypes lists the provider types searched for each venue kind.
var includedTypes = map[types.VenueKind][]string{
	types.VenueCafe:    {"cafe", "coffee_shop", "bakery"},
	types.VenueLibrary: {"library"},
}

// Query is one nearby search around a point.
type Query struct {
	Lat  float64
	Lng  float64
	Kind types.KindFilter
}

type Options struct {
	APIKey        string
	BaseURL       string
	RadiusMeters  float64
	MaxResults    int
	Timeout       time.Duration
	RatePerSecond float64
	Retries       uint
}

// Client is a rate-limited, retrying Places API client.
type Client struct {
	httpClient   *http.Client
	logger       *slog.Logger
	limiter      *rate.Limiter
	apiKey       string
	baseURL      string
	radiusMeters float64
	maxResults   int
	retries      uint
	retryDelay   time.Duration
}

func NewClient(opts Options, logger *slog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.RadiusMeters <= 0 {
		opts.RadiusMeters = DefaultRadiusMeters
	}
	if opts.MaxResults <= 0 || opts.MaxResults > DefaultMaxResults {
		opts.MaxResults = DefaultMaxResults
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Retries == 0 {
		opts.Retries = 1
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	return &Client{
		httpClient:   &http.Client{Timeout: opts.Timeout},
		logger:       logger,
		limiter:      rate.NewLimiter(limit, 1),
		apiKey:       opts.APIKey,
		baseURL:      strings.TrimSuffix(opts.BaseURL, "/"),
		radiusMeters: opts.RadiusMeters,
		maxResults:   opts.MaxResults,
		retries:      opts.Retries,
		retryDelay:   200 * time.Millisecond,
	}
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type nearbyRequest struct {
	IncludedTypes       []string `json:"includedTypes"`
	MaxResultCount      int      `json:"maxResultCount"`
	RankPreference      string   `json:"rankPreference"`
	LocationRestriction struct {
		Circle struct {
			Center latLng  `json:"center"`
			Radius float64 `json:"radius"`
		} `json:"circle"`
	} `json:"locationRestriction"`
}

type nearbyResponse struct {
	Places []googlePlace `json:"places"`
}

type googlePlace struct {
	ID          string   `json:"id"`
	DisplayName struct {
		Text string `json:"text"`
	} `json:"displayName"`
	Types               []string `json:"types"`
	FormattedAddress    string   `json:"formattedAddress"`
	Location            latLng   `json:"location"`
	Rating              *float64 `json:"rating"`
	UserRatingCount     *int     `json:"userRatingCount"`
	RegularOpeningHours *struct {
		WeekdayDescriptions []string `json:"weekdayDescriptions"`
	} `json:"regularOpeningHours"`
	CurrentOpeningHours *struct {
		OpenNow *bool `json:"openNow"`
	} `json:"currentOpeningHours"`
	DineIn  *bool `json:"dineIn"`
	Takeout *bool `json:"takeout"`
}

func (p googlePlace) toRecord() types.PlaceRecord {
	rec := types.PlaceRecord{
		ID:          p.ID,
		Name:        p.DisplayName.Text,
		Types:       p.Types,
		Address:     p.FormattedAddress,
		Latitude:    p.Location.Latitude,
		Longitude:   p.Location.Longitude,
		Rating:      p.Rating,
		RatingCount: p.UserRatingCount,
		DineIn:      p.DineIn,
		Takeout:     p.Takeout,
	}
	if p.RegularOpeningHours != nil {
		rec.WeekdayDescriptions = p.RegularOpeningHours.WeekdayDescriptions
	}
	if p.CurrentOpeningHours != nil {
		rec.OpenNow = p.CurrentOpeningHours.OpenNow
	}
	return rec
}

// SearchNearby runs a single nearby search for one venue kind.
func (c *Client) SearchNearby(ctx context.Context, lat, lng float64, kind types.VenueKind) ([]types.PlaceRecord, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: api key not configured", ErrUpstream)
	}

	var reqBody nearbyRequest
	reqBody.IncludedTypes = includedTypes[kind]
	reqBody.MaxResultCount = c.maxResults
	reqBody.RankPreference = "POPULARITY"
	reqBody.LocationRestriction.Circle.Center = latLng{Latitude: lat, Longitude: lng}
	reqBody.LocationRestriction.Circle.Radius = c.radiusMeters

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal nearby request: %w", err)
	}

	var body []byte
	err = retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			b, status, err := c.post(ctx, payload)
			if err != nil {
				return err
			}
			if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
				return fmt.Errorf("places API returned %d: %s", status, truncate(b))
			}
			if status != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("places API returned %d: %s", status, truncate(b)))
			}
			body = b
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.retries),
		retry.Delay(c.retryDelay),
		retry.MaxDelay(5*time.Second),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.DebugContext(ctx, "Retrying places search", slog.Uint64("attempt", uint64(n+1)), slog.Any("error", err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	var resp nearbyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %w", ErrUpstream, err)
	}

	records := make([]types.PlaceRecord, 0, len(resp.Places))
	for _, p := range resp.Places {
		records = append(records, p.toRecord())
	}
	return records, nil
}

func (c *Client) post(ctx context.Context, payload []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+nearbyPath, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func truncate(b []byte) string {
	const limit = 256
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
