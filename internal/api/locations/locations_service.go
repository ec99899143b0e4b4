package locations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/Danielle-Barbieri/seat-scout/app/observability/metrics"
	"github.com/Danielle-Barbieri/seat-scout/internal/api/places"
	"github.com/Danielle-Barbieri/seat-scout/internal/assembler"
	"github.com/Danielle-Barbieri/seat-scout/internal/availability"
	"github.com/Danielle-Barbieri/seat-scout/internal/openhours"
	"github.com/Danielle-Barbieri/seat-scout/internal/types"
)

// ErrInvalidQuery is returned for malformed search or forecast parameters.
var ErrInvalidQuery = errors.New("invalid query")

const maxDayOffset = 6

// Origin says where the query point came from.
type Origin string

const (
	// OriginDevice is the caller's own position. Distances are meaningful.
	OriginDevice Origin = "device"
	// OriginSearch is a searched or dragged point. Distances are hidden.
	OriginSearch Origin = "search"
)

// ParseOrigin maps query text to an Origin. Empty input means device.
func ParseOrigin(s string) (Origin, bool) {
	switch Origin(s) {
	case "", OriginDevice:
		return OriginDevice, true
	case OriginSearch:
		return OriginSearch, true
	}
	return "", false
}

// SearchParams is one nearby query. DayOffset and Hour must be set together.
// Location is the caller's time zone; "today", the open-at slot and the current hour are
// all read on its wall clock. Nil means the server's zone.
type SearchParams struct {
	Lat       float64
	Lng       float64
	Kind      types.KindFilter
	DayOffset *int
	Hour      *int
	Origin    Origin
	Location  *time.Location
}

// Searcher is the place-search collaborator.
type Searcher interface {
	Search(ctx context.Context, q places.Query) ([]types.PlaceRecord, error)
}

// Geocoder is the geocoding collaborator.
type Geocoder interface {
	Geocode(ctx context.Context, text string) (*types.GeocodeResult, error)
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Nearby(ctx context.Context, params SearchParams) ([]types.LocationView, error)
	Forecast(ctx context.Context, dayOffset int, loc *time.Location) (*types.ForecastResponse, error)
	Geocode(ctx context.Context, text string) (*types.GeocodeResult, error)
}

type ServiceImpl struct {
	logger    *slog.Logger
	searcher  Searcher
	geocoder  Geocoder
	assembler *assembler.Assembler
	rng       availability.Rand
	now       func() time.Time
}

func NewService(searcher Searcher, geocoder Geocoder, signals availability.SignalProvider, rng availability.Rand, logger *slog.Logger) *ServiceImpl {
	if rng == nil {
		rng = availability.DefaultRand()
	}
	return &ServiceImpl{
		logger:   logger,
		searcher: searcher,
		geocoder: geocoder,
		assembler: assembler.New(signals, assembler.WithRejectionObserver(func(rec types.PlaceRecord, reason assembler.Rejection) {
			metrics.Get().PlacesDroppedTotal.Add(context.Background(), 1,
				metric.WithAttributes(attribute.String("reason", string(reason))))
			logger.Debug("Place dropped", slog.String("place_id", rec.ID), slog.String("reason", string(reason)))
		})),
		rng: rng,
		now: time.Now,
	}
}

// Validate checks coordinates and the optional open-at slot.
func (p SearchParams) Validate() error {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: lat must be within [-90, 90]", ErrInvalidQuery)
	}
	if math.IsNaN(p.Lng) || p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: lng must be within [-180, 180]", ErrInvalidQuery)
	}
	if (p.DayOffset == nil) != (p.Hour == nil) {
		return fmt.Errorf("%w: day and hour must be given together", ErrInvalidQuery)
	}
	if p.DayOffset != nil && (*p.DayOffset < 0 || *p.DayOffset > maxDayOffset) {
		return fmt.Errorf("%w: day must be within [0, %d]", ErrInvalidQuery, maxDayOffset)
	}
	if p.Hour != nil && (*p.Hour < 0 || *p.Hour > 23) {
		return fmt.Errorf("%w: hour must be within [0, 23]", ErrInvalidQuery)
	}
	return nil
}

// Nearby fetches, assembles and optionally re-filters locations around the query point,
// then applies the presentation overlay.
func (s *ServiceImpl) Nearby(ctx context.Context, params SearchParams) ([]types.LocationView, error) {
	searchID := uuid.New()
	ctx, span := otel.Tracer("LocationsService").Start(ctx, "Nearby", trace.WithAttributes(
		attribute.String("search.id", searchID.String()),
		attribute.Float64("query.lat", params.Lat),
		attribute.Float64("query.lng", params.Lng),
		attribute.String("query.kind", string(params.Kind)),
	))
	defer span.End()

	if err := params.Validate(); err != nil {
		span.SetStatus(codes.Error, "Invalid query")
		return nil, err
	}
	if params.Kind == "" {
		params.Kind = types.KindAll
	}

	l := s.logger.With(slog.String("search_id", searchID.String()))
	start := time.Now()
	m := metrics.Get()
	kindAttr := metric.WithAttributes(attribute.String("kind", string(params.Kind)))
	m.SearchRequestsTotal.Add(ctx, 1, kindAttr)
	defer func() {
		m.SearchDurationSeconds.Record(ctx, time.Since(start).Seconds(), kindAttr)
	}()

	records, err := s.searcher.Search(ctx, places.Query{Lat: params.Lat, Lng: params.Lng, Kind: params.Kind})
	if err != nil {
		l.ErrorContext(ctx, "Place search failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Place search failed")
		return nil, fmt.Errorf("failed to search nearby places: %w", err)
	}

	now := s.localNow(params.Location)
	origin := &types.Coordinates{Lat: params.Lat, Lng: params.Lng}
	locs := s.assembler.Assemble(ctx, records, origin, params.Kind, now)
	if params.DayOffset != nil {
		locs = assembler.PostFilter(locs, assembler.Filter{
			Kind:      params.Kind,
			DayOffset: params.DayOffset,
			Hour:      params.Hour,
		}, now)
	}

	views := make([]types.LocationView, 0, len(locs))
	for _, loc := range locs {
		views = append(views, present(loc, params.Origin, now))
	}

	l.InfoContext(ctx, "Nearby search completed",
		slog.Int("raw", len(records)),
		slog.Int("returned", len(views)),
		slog.String("kind", string(params.Kind)))
	span.SetAttributes(attribute.Int("results.count", len(views)))
	span.SetStatus(codes.Ok, "Search completed")
	return views, nil
}

// present wraps loc in a request-scoped view. loc itself is left untouched.
func present(loc types.NormalizedLocation, origin Origin, now time.Time) types.LocationView {
	view := types.LocationView{NormalizedLocation: loc}
	if origin == OriginSearch {
		view.Distance = nil
		view.WalkingTime = nil
	}
	if oh := loc.OpeningHours; oh != nil && oh.OpenNow != nil {
		if label, ok := openhours.ClosingTimeLabel(oh.WeekdayDescriptions, now, *oh.OpenNow); ok {
			view.ClosesAt = label
		}
	}
	return view
}

// localNow is the current instant on the wall clock of loc.
func (s *ServiceImpl) localNow(loc *time.Location) time.Time {
	if loc == nil {
		return s.now()
	}
	return s.now().In(loc)
}

// Forecast returns the predicted availability curve for today plus dayOffset days, where
// today is read in loc.
func (s *ServiceImpl) Forecast(ctx context.Context, dayOffset int, loc *time.Location) (*types.ForecastResponse, error) {
	_, span := otel.Tracer("LocationsService").Start(ctx, "Forecast", trace.WithAttributes(
		attribute.Int("day_offset", dayOffset),
	))
	defer span.End()

	if dayOffset < 0 || dayOffset > maxDayOffset {
		span.SetStatus(codes.Error, "Invalid day offset")
		return nil, fmt.Errorf("%w: day must be within [0, %d]", ErrInvalidQuery, maxDayOffset)
	}

	now := s.localNow(loc)
	resp := &types.ForecastResponse{
		DayOffset: dayOffset,
		Weekday:   now.AddDate(0, 0, dayOffset).Weekday().String(),
		Slots:     make([]types.ForecastSlot, 0, 6),
	}
	for p := range availability.PredictedAvailabilityCurve(now, dayOffset, s.rng) {
		resp.Slots = append(resp.Slots, types.ForecastSlot{
			TimeLabel:  p.TimeLabel,
			Hour:       p.Hour,
			Category:   string(p.Category),
			Likelihood: p.Likelihood,
		})
	}
	span.SetStatus(codes.Ok, "Forecast built")
	return resp, nil
}

func (s *ServiceImpl) Geocode(ctx context.Context, text string) (*types.GeocodeResult, error) {
	ctx, span := otel.Tracer("LocationsService").Start(ctx, "Geocode")
	defer span.End()

	if s.geocoder == nil {
		return nil, fmt.Errorf("%w: geocoding is not configured", ErrInvalidQuery)
	}
	res, err := s.geocoder.Geocode(ctx, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Geocode failed")
		return nil, err
	}
	span.SetStatus(codes.Ok, "Geocoded")
	return res, nil
}
