package places

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Danielle-Barbieri/seat-scout/internal/types"
)

const samplePlaces = `{
  "places": [
    {
      "id": "p1",
      "displayName": {"text": "Grind Coffee"},
      "types": ["cafe", "food"],
      "formattedAddress": "1 High St",
      "location": {"latitude": 51.5, "longitude": -0.12},
      "rating": 4.5,
      "userRatingCount": 120,
      "regularOpeningHours": {"weekdayDescriptions": ["Monday: 8:00 AM – 5:00 PM"]},
      "currentOpeningHours": {"openNow": true},
      "dineIn": true,
      "takeout": true
    },
    {
      "id": "p2",
      "displayName": {"text": "No Hours"},
      "types": ["bakery"],
      "location": {"latitude": 51.6, "longitude": -0.13}
    }
  ]
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(baseURL string, retries uint) *Client {
	c := NewClient(Options{APIKey: "test-key", BaseURL: baseURL, Retries: retries}, testLogger())
	c.retryDelay = time.Millisecond
	return c
}

func TestSearchNearby_RequestShape(t *testing.T) {
	var got nearbyRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, nearbyPath, r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Equal(t, fieldMask, r.Header.Get("X-Goog-FieldMask"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(samplePlaces))
	}))
	defer server.Close()

	c := newTestClient(server.URL, 1)
	recs, err := c.SearchNearby(context.Background(), 51.5, -0.12, types.VenueCafe)
	require.NoError(t, err)

	assert.Equal(t, []string{"cafe", "coffee_shop", "bakery"}, got.IncludedTypes)
	assert.Equal(t, DefaultMaxResults, got.MaxResultCount)
	assert.Equal(t, "POPULARITY", got.RankPreference)
	assert.InDelta(t, DefaultRadiusMeters, got.LocationRestriction.Circle.Radius, 0.001)
	assert.InDelta(t, 51.5, got.LocationRestriction.Circle.Center.Latitude, 1e-9)

	require.Len(t, recs, 2)
	first := recs[0]
	assert.Equal(t, "p1", first.ID)
	assert.Equal(t, "Grind Coffee", first.Name)
	assert.Equal(t, "1 High St", first.Address)
	require.NotNil(t, first.Rating)
	assert.InDelta(t, 4.5, *first.Rating, 1e-9)
	require.NotNil(t, first.RatingCount)
	assert.Equal(t, 120, *first.RatingCount)
	assert.Equal(t, []string{"Monday: 8:00 AM – 5:00 PM"}, first.WeekdayDescriptions)
	require.NotNil(t, first.OpenNow)
	assert.True(t, *first.OpenNow)
	require.NotNil(t, first.DineIn)
	assert.True(t, *first.DineIn)

	second := recs[1]
	assert.Nil(t, second.Rating)
	assert.Nil(t, second.WeekdayDescriptions)
	assert.Nil(t, second.OpenNow)
}

func TestSearchNearby_LibraryTypes(t *testing.T) {
	var got nearbyRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	recs, err := newTestClient(server.URL, 1).SearchNearby(context.Background(), 1, 2, types.VenueLibrary)
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Equal(t, []string{"library"}, got.IncludedTypes)
}

func TestSearchNearby_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(samplePlaces))
	}))
	defer server.Close()

	recs, err := newTestClient(server.URL, 3).SearchNearby(context.Background(), 1, 2, types.VenueCafe)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSearchNearby_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"bad key"}`, http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 3).SearchNearby(context.Background(), 1, 2, types.VenueCafe)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstream))
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearchNearby_ExhaustedRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 2).SearchNearby(context.Background(), 1, 2, types.VenueCafe)
	require.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearchNearby_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 1).SearchNearby(context.Background(), 1, 2, types.VenueCafe)
	require.ErrorIs(t, err, ErrUpstream)
}

func TestSearchNearby_MissingAPIKey(t *testing.T) {
	c := NewClient(Options{BaseURL: "http://127.0.0.1:0"}, testLogger())
	_, err := c.SearchNearby(context.Background(), 1, 2, types.VenueCafe)
	require.ErrorIs(t, err, ErrUpstream)
}
