package locations

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Danielle-Barbieri/seat-scout/internal/api/places"
	"github.com/Danielle-Barbieri/seat-scout/internal/availability"
	"github.com/Danielle-Barbieri/seat-scout/internal/types"
)

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, q places.Query) ([]types.PlaceRecord, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.PlaceRecord), args.Error(1)
}

type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Geocode(ctx context.Context, text string) (*types.GeocodeResult, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.GeocodeResult), args.Error(1)
}

type fixedRand int

func (f fixedRand) IntN(n int) int { return min(int(f), n-1) }

// Monday 2024-01-01 10:00 local.
var testNow = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

var weekHours = []string{
	"Monday: 8:00 AM – 5:00 PM",
	"Tuesday: 8:00 AM – 5:00 PM",
	"Wednesday: 8:00 AM – 5:00 PM",
	"Thursday: 8:00 AM – 5:00 PM",
	"Friday: 8:00 AM – 5:00 PM",
	"Saturday: Closed",
	"Sunday: Closed",
}

func sampleRecords() []types.PlaceRecord {
	return []types.PlaceRecord{
		{
			ID: "cafe-1", Name: "Grind", Types: []string{"cafe"},
			Latitude: 51.5010, Longitude: -0.1200,
			Rating: ptr(4.6), RatingCount: ptr(300),
			WeekdayDescriptions: weekHours, OpenNow: ptr(true),
			Popularity: ptr(10),
		},
		{
			ID: "lib-1", Name: "Camden Town Public Library", Types: []string{"library"},
			Latitude: 51.5020, Longitude: -0.1210,
			Rating: ptr(4.2), WeekdayDescriptions: weekHours, OpenNow: ptr(false),
			Popularity: ptr(75),
		},
		{
			ID: "uni-lib", Name: "University Library", Types: []string{"library", "university"},
			Latitude: 51.5030, Longitude: -0.1220,
			Rating: ptr(4.8), WeekdayDescriptions: weekHours,
		},
		{
			ID: "unrated", Name: "Mystery Cafe", Types: []string{"cafe"},
			Latitude: 51.5040, Longitude: -0.1230, WeekdayDescriptions: weekHours,
		},
	}
}

func newTestService(searcher Searcher, geocoder Geocoder) *ServiceImpl {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	signals := availability.DeclaredSignal{Fallback: availability.NewSimulatedSignal(fixedRand(0))}
	s := NewService(searcher, geocoder, signals, fixedRand(5), logger)
	s.now = func() time.Time { return testNow }
	return s
}

func TestNearby_DeviceOrigin(t *testing.T) {
	searcher := new(MockSearcher)
	searcher.On("Search", mock.Anything, places.Query{Lat: 51.5, Lng: -0.12, Kind: types.KindAll}).
		Return(sampleRecords(), nil)

	views, err := newTestService(searcher, nil).Nearby(context.Background(), SearchParams{Lat: 51.5, Lng: -0.12})
	require.NoError(t, err)
	require.Len(t, views, 2)

	cafe := views[0]
	assert.Equal(t, "cafe-1", cafe.ID)
	assert.Equal(t, types.VenueCafe, cafe.Kind)
	assert.Equal(t, types.BusynessLow, cafe.Busyness)
	assert.Equal(t, 85, cafe.Likelihood)
	assert.True(t, cafe.HasWifi)
	require.NotNil(t, cafe.Distance)
	require.NotNil(t, cafe.WalkingTime)
	assert.InDelta(t, 111, *cafe.Distance, 2)
	assert.Equal(t, 2, *cafe.WalkingTime)
	assert.Equal(t, "5:00 PM", cafe.ClosesAt)

	lib := views[1]
	assert.Equal(t, types.VenueLibrary, lib.Kind)
	assert.Equal(t, types.BusynessHigh, lib.Busyness)
	assert.Equal(t, 20, lib.Likelihood)
	assert.False(t, lib.HasWifi)
	assert.Empty(t, lib.ClosesAt)
	searcher.AssertExpectations(t)
}

func TestNearby_SearchOriginHidesDistance(t *testing.T) {
	searcher := new(MockSearcher)
	searcher.On("Search", mock.Anything, mock.Anything).Return(sampleRecords(), nil)

	views, err := newTestService(searcher, nil).Nearby(context.Background(),
		SearchParams{Lat: 51.5, Lng: -0.12, Kind: types.KindCafe, Origin: OriginSearch})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Nil(t, views[0].Distance)
	assert.Nil(t, views[0].WalkingTime)
}

func TestNearby_OpenAtFilter(t *testing.T) {
	searcher := new(MockSearcher)
	searcher.On("Search", mock.Anything, mock.Anything).Return(sampleRecords(), nil)
	s := newTestService(searcher, nil)

	// Saturday is five days after Monday and every venue is closed.
	views, err := s.Nearby(context.Background(), SearchParams{Lat: 51.5, Lng: -0.12, DayOffset: ptr(5), Hour: ptr(10)})
	require.NoError(t, err)
	assert.Empty(t, views)

	views, err = s.Nearby(context.Background(), SearchParams{Lat: 51.5, Lng: -0.12, DayOffset: ptr(1), Hour: ptr(9)})
	require.NoError(t, err)
	assert.Len(t, views, 2)

	views, err = s.Nearby(context.Background(), SearchParams{Lat: 51.5, Lng: -0.12, DayOffset: ptr(1), Hour: ptr(17)})
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestNearby_UpstreamFailure(t *testing.T) {
	searcher := new(MockSearcher)
	searcher.On("Search", mock.Anything, mock.Anything).Return(nil, places.ErrUpstream)

	views, err := newTestService(searcher, nil).Nearby(context.Background(), SearchParams{Lat: 1, Lng: 2})
	require.ErrorIs(t, err, places.ErrUpstream)
	assert.Nil(t, views)
}

func TestNearby_EmptyResults(t *testing.T) {
	searcher := new(MockSearcher)
	searcher.On("Search", mock.Anything, mock.Anything).Return([]types.PlaceRecord{}, nil)

	views, err := newTestService(searcher, nil).Nearby(context.Background(), SearchParams{Lat: 1, Lng: 2})
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestSearchParams_Validate(t *testing.T) {
	tests := []struct {
		name   string
		params SearchParams
		valid  bool
	}{
		{"ok", SearchParams{Lat: 51.5, Lng: -0.12}, true},
		{"ok with slot", SearchParams{Lat: 0, Lng: 0, DayOffset: ptr(0), Hour: ptr(23)}, true},
		{"lat too large", SearchParams{Lat: 91, Lng: 0}, false},
		{"lng too small", SearchParams{Lat: 0, Lng: -181}, false},
		{"nan lat", SearchParams{Lat: math.NaN(), Lng: 0}, false},
		{"day without hour", SearchParams{DayOffset: ptr(1)}, false},
		{"hour without day", SearchParams{Hour: ptr(1)}, false},
		{"day out of range", SearchParams{DayOffset: ptr(7), Hour: ptr(1)}, false},
		{"hour out of range", SearchParams{DayOffset: ptr(1), Hour: ptr(24)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidQuery)
			}
		})
	}
}

func TestNearby_InvalidQuerySkipsSearch(t *testing.T) {
	searcher := new(MockSearcher)
	_, err := newTestService(searcher, nil).Nearby(context.Background(), SearchParams{Lat: 100})
	require.ErrorIs(t, err, ErrInvalidQuery)
	searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestForecast(t *testing.T) {
	s := newTestService(new(MockSearcher), nil)

	today, err := s.Forecast(context.Background(), 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "Monday", today.Weekday)
	require.Len(t, today.Slots, 6)
	assert.Equal(t, "8 AM", today.Slots[0].TimeLabel)
	assert.Equal(t, 90, today.Slots[0].Likelihood)
	assert.Equal(t, "Likely Available", today.Slots[0].Category)
	assert.Equal(t, 30, today.Slots[2].Likelihood)
	assert.Equal(t, "Limited Seating", today.Slots[2].Category)

	// fixedRand(5) yields zero jitter; Saturday adds 15 within [9,17].
	saturday, err := s.Forecast(context.Background(), 5, nil)
	require.NoError(t, err)
	assert.Equal(t, "Saturday", saturday.Weekday)
	assert.Equal(t, 85, saturday.Slots[1].Likelihood)
	for _, slot := range saturday.Slots {
		assert.GreaterOrEqual(t, slot.Likelihood, 20)
		assert.LessOrEqual(t, slot.Likelihood, 95)
	}

	_, err = s.Forecast(context.Background(), 7, nil)
	require.ErrorIs(t, err, ErrInvalidQuery)
	_, err = s.Forecast(context.Background(), -1, nil)
	require.ErrorIs(t, err, ErrInvalidQuery)
}

func TestNearby_UsesCallerTimeZone(t *testing.T) {
	losAngeles, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	// Tuesday 04:00 UTC is still Monday 21:00 in Los Angeles.
	serverNow := time.Date(2026, 10, 20, 4, 0, 0, 0, time.UTC)
	lateCafe := types.PlaceRecord{
		ID: "late", Name: "Night Owl", Types: []string{"cafe"},
		Latitude: 37.77, Longitude: -122.42, Rating: ptr(4.4),
		WeekdayDescriptions: []string{
			"Monday: 7:00 AM – 11:00 PM",
			"Tuesday: Closed",
		},
		OpenNow:    ptr(true),
		Popularity: ptr(20),
	}

	searcher := new(MockSearcher)
	searcher.On("Search", mock.Anything, mock.Anything).Return([]types.PlaceRecord{lateCafe}, nil)
	s := newTestService(searcher, nil)
	s.now = func() time.Time { return serverNow }

	params := SearchParams{Lat: 37.77, Lng: -122.42, DayOffset: ptr(0), Hour: ptr(21), Location: losAngeles}
	views, err := s.Nearby(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "11:00 PM", views[0].ClosesAt)

	params.Location = nil
	views, err = s.Nearby(context.Background(), params)
	require.NoError(t, err)
	assert.Empty(t, views)

	forecast, err := s.Forecast(context.Background(), 0, losAngeles)
	require.NoError(t, err)
	assert.Equal(t, "Monday", forecast.Weekday)

	forecast, err = s.Forecast(context.Background(), 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "Tuesday", forecast.Weekday)
}

func TestGeocode(t *testing.T) {
	geocoder := new(MockGeocoder)
	geocoder.On("Geocode", mock.Anything, "Soho").Return(&types.GeocodeResult{Lat: 51.51, Lng: -0.13}, nil)
	geocoder.On("Geocode", mock.Anything, "Atlantis").Return(nil, errors.New("no match"))

	s := newTestService(new(MockSearcher), geocoder)
	res, err := s.Geocode(context.Background(), "Soho")
	require.NoError(t, err)
	assert.InDelta(t, 51.51, res.Lat, 1e-9)

	_, err = s.Geocode(context.Background(), "Atlantis")
	require.Error(t, err)

	_, err = newTestService(new(MockSearcher), nil).Geocode(context.Background(), "Soho")
	require.ErrorIs(t, err, ErrInvalidQuery)
}
